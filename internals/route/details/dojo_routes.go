// internals/route/details/dojo_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	memberRoute "dojoku_backend/internals/features/dojo/members/routes"
	programRoute "dojoku_backend/internals/features/dojo/programs/routes"
)

func DojoUserRoutes(r fiber.Router, db *gorm.DB) {
	memberRoute.MemberUserRoutes(r, db)
}

func DojoAdminRoutes(r fiber.Router, db *gorm.DB) {
	memberRoute.MemberAdminRoutes(r, db)
	programRoute.ProgramAdminRoutes(r, db)
}
