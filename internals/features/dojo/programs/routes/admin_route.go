// internals/features/dojo/programs/routes/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	programCtl "dojoku_backend/internals/features/dojo/programs/controller"
)

func ProgramAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := programCtl.NewProgramController(db)

	programs := r.Group("/programs")

	programs.Post("/", ctl.Create)                      // POST  /programs
	programs.Get("/", ctl.List)                         // GET   /programs
	programs.Post("/classes", ctl.CreateClass)          // POST  /programs/classes
	programs.Get("/classes", ctl.ListClasses)           // GET   /programs/classes
	programs.Get("/:id", ctl.GetByID)                   // GET   /programs/:id
	programs.Patch("/:id/deactivate", ctl.Deactivate)   // PATCH /programs/:id/deactivate
}
