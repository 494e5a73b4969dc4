// internals/features/billing/payments/routes/user_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	paymentCtl "dojoku_backend/internals/features/billing/payments/controller"
	middlewares "dojoku_backend/internals/middlewares"
)

func PaymentUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := paymentCtl.NewPaymentController(db)

	payments := r.Group("/payments")

	payments.Post("/checkout", middlewares.CheckoutRateLimiter(), ctl.CreateCheckout) // POST /payments/checkout
	payments.Get("/", ctl.ListMine)                                                   // GET  /payments
	payments.Get("/:id", ctl.GetByID)                                                 // GET  /payments/:id
}
