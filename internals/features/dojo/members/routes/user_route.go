// internals/features/dojo/members/routes/user_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	memberCtl "dojoku_backend/internals/features/dojo/members/controller"
)

func MemberUserRoutes(r fiber.Router, db *gorm.DB) {
	families := memberCtl.NewFamilyController(db)

	f := r.Group("/families")
	f.Get("/me", families.GetMine) // GET /families/me
}
