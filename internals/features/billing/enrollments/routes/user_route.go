// internals/features/billing/enrollments/routes/user_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	enrollmentCtl "dojoku_backend/internals/features/billing/enrollments/controller"
)

func EnrollmentUserRoutes(r fiber.Router, db *gorm.DB) {
	elig := enrollmentCtl.NewEligibilityController(db)

	enrollments := r.Group("/enrollments")

	enrollments.Get("/eligibility/:student_id", elig.GetMine) // GET /enrollments/eligibility/:student_id
}
