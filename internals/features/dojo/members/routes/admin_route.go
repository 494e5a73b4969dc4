// internals/features/dojo/members/routes/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	memberCtl "dojoku_backend/internals/features/dojo/members/controller"
)

func MemberAdminRoutes(r fiber.Router, db *gorm.DB) {
	families := memberCtl.NewFamilyController(db)
	students := memberCtl.NewStudentController(db)

	f := r.Group("/families")
	f.Post("/", families.Create)                    // POST /families
	f.Post("/referrals", families.RecordReferral)   // POST /families/referrals
	f.Get("/", families.List)                       // GET  /families
	f.Get("/:id", families.GetByID)                 // GET  /families/:id

	s := r.Group("/students")
	s.Post("/", students.Create)                    // POST /students
	s.Get("/", students.List)                       // GET  /students
	s.Get("/:id", students.GetByID)                 // GET  /students/:id
	s.Post("/:id/promote", students.PromoteBelt)    // POST /students/:id/promote
}
