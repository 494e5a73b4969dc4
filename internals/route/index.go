// file: internals/route/index.go
package routes

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dojoMiddleware "dojoku_backend/internals/middlewares/auth_dojo"
	routeDetails "dojoku_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	// ===================== GROUPS =====================

	// PUBLIC → tanpa JWT (webhook gateway, ping)
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public")

	// PRIVATE (WALI) → JWT wajib
	log.Println("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api/u",
		dojoMiddleware.AuthJWT(dojoMiddleware.AuthJWTOpts{
			Secret:              os.Getenv("JWT_SECRET"),
			AllowCookieFallback: true,
		}),
	)

	// ADMIN (per dojo) → JWT + role check
	log.Println("[INFO] Setting up ADMIN group (Auth + RoleCheck)...")
	admin := app.Group("/api/a",
		dojoMiddleware.AuthJWT(dojoMiddleware.AuthJWTOpts{
			Secret:              os.Getenv("JWT_SECRET"),
			AllowCookieFallback: true,
		}),
		dojoMiddleware.OnlyAdmin(),
	)

	// ===================== MOUNT ROUTES =====================

	log.Println("[INFO] Mounting Billing routes...")
	routeDetails.BillingPublicRoutes(public, db)
	routeDetails.BillingUserRoutes(private, db)
	routeDetails.BillingAdminRoutes(admin, db)

	log.Println("[INFO] Mounting Dojo routes...")
	routeDetails.DojoUserRoutes(private, db)
	routeDetails.DojoAdminRoutes(admin, db)

	log.Println("[INFO] Mounting Attendance routes...")
	routeDetails.AttendanceUserRoutes(private, db)
	routeDetails.AttendanceAdminRoutes(admin, db)
}
