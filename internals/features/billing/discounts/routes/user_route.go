// internals/features/billing/discounts/routes/user_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	discountCtl "dojoku_backend/internals/features/billing/discounts/controller"
)

func DiscountUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := discountCtl.NewDiscountController(db)

	discounts := r.Group("/discounts")

	discounts.Post("/validate", ctl.Validate) // POST /discounts/validate
	discounts.Post("/apply", ctl.Apply)       // POST /discounts/apply
}
