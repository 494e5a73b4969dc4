// internals/features/billing/payments/routes/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	paymentCtl "dojoku_backend/internals/features/billing/payments/controller"
)

func PaymentAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := paymentCtl.NewPaymentAdminController(db)

	payments := r.Group("/payments")

	payments.Get("/", ctl.List)                 // GET  /payments
	payments.Post("/:id/confirm", ctl.Confirm)  // POST /payments/:id/confirm
	payments.Post("/:id/fail", ctl.MarkFailed)  // POST /payments/:id/fail
}
