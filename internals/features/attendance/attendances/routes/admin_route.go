// internals/features/attendance/attendances/routes/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	attendanceCtl "dojoku_backend/internals/features/attendance/attendances/controller"
)

func AttendanceAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := attendanceCtl.NewAttendanceController(db)

	attendances := r.Group("/attendances")

	attendances.Post("/check-in", ctl.CheckIn)                       // POST /attendances/check-in
	attendances.Get("/student/:student_id", ctl.ListForStudent)      // GET  /attendances/student/:student_id
}
