// internals/features/billing/reconciliation/routes/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	reconCtl "dojoku_backend/internals/features/billing/reconciliation/controller"
)

func ReconciliationAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := reconCtl.NewReconciliationController(db)

	recon := r.Group("/reconciliation")

	recon.Post("/run", ctl.RunNow)   // POST /reconciliation/run
	recon.Get("/runs", ctl.ListRuns) // GET  /reconciliation/runs
}
