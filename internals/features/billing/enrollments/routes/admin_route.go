// internals/features/billing/enrollments/routes/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	enrollmentCtl "dojoku_backend/internals/features/billing/enrollments/controller"
)

func EnrollmentAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := enrollmentCtl.NewEnrollmentController(db)
	elig := enrollmentCtl.NewEligibilityController(db)

	enrollments := r.Group("/enrollments")

	enrollments.Post("/", ctl.Create)                                // POST  /enrollments
	enrollments.Get("/", ctl.List)                                   // GET   /enrollments
	enrollments.Get("/expiring", ctl.ListExpiring)                   // GET   /enrollments/expiring
	enrollments.Get("/eligibility/:student_id", elig.GetForStudent)  // GET   /enrollments/eligibility/:student_id
	enrollments.Patch("/:id/paid-until", ctl.OverridePaidUntil)      // PATCH /enrollments/:id/paid-until
	enrollments.Patch("/:id/status", ctl.UpdateStatus)               // PATCH /enrollments/:id/status
}
