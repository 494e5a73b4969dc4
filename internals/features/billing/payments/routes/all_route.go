// internals/features/billing/payments/routes/all_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	paymentCtl "dojoku_backend/internals/features/billing/payments/controller"
	middlewares "dojoku_backend/internals/middlewares"
)

// Rute publik tanpa JWT: endpoint notifikasi gateway.
func PaymentPublicRoutes(r fiber.Router, db *gorm.DB) {
	ctl := paymentCtl.NewWebhookController(db)

	payments := r.Group("/payments")

	payments.Get("/midtrans/webhook", ctl.MidtransWebhookPing)                             // GET  /payments/midtrans/webhook
	payments.Post("/midtrans/webhook", middlewares.WebhookRateLimiter(), ctl.MidtransWebhook) // POST /payments/midtrans/webhook
}
