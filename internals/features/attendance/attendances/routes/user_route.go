// internals/features/attendance/attendances/routes/user_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	attendanceCtl "dojoku_backend/internals/features/attendance/attendances/controller"
)

func AttendanceUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := attendanceCtl.NewAttendanceController(db)

	attendances := r.Group("/attendances")

	attendances.Get("/student/:student_id", ctl.ListMine) // GET /attendances/student/:student_id
}
