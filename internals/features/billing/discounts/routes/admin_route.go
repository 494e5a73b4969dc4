// internals/features/billing/discounts/routes/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	discountCtl "dojoku_backend/internals/features/billing/discounts/controller"
)

func DiscountAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := discountCtl.NewDiscountCodeAdminController(db)

	codes := r.Group("/discount-codes")

	codes.Post("/", ctl.Create)                     // POST  /discount-codes
	codes.Get("/", ctl.List)                        // GET   /discount-codes
	codes.Get("/:id", ctl.GetByID)                  // GET   /discount-codes/:id
	codes.Patch("/:id/deactivate", ctl.Deactivate)  // PATCH /discount-codes/:id/deactivate
	codes.Get("/:id/usages", ctl.ListUsages)        // GET   /discount-codes/:id/usages
}
