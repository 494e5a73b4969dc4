// internals/route/details/attendance_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	attendanceRoute "dojoku_backend/internals/features/attendance/attendances/routes"
)

func AttendanceUserRoutes(r fiber.Router, db *gorm.DB) {
	attendanceRoute.AttendanceUserRoutes(r, db)
}

func AttendanceAdminRoutes(r fiber.Router, db *gorm.DB) {
	attendanceRoute.AttendanceAdminRoutes(r, db)
}
