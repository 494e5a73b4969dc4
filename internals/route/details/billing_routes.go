// internals/route/details/billing_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	automationRoute "dojoku_backend/internals/features/billing/automation/routes"
	discountRoute "dojoku_backend/internals/features/billing/discounts/routes"
	enrollmentRoute "dojoku_backend/internals/features/billing/enrollments/routes"
	paymentRoute "dojoku_backend/internals/features/billing/payments/routes"
	reconciliationRoute "dojoku_backend/internals/features/billing/reconciliation/routes"
)

func BillingPublicRoutes(r fiber.Router, db *gorm.DB) {
	paymentRoute.PaymentPublicRoutes(r, db) // webhook gateway
}

func BillingUserRoutes(r fiber.Router, db *gorm.DB) {
	paymentRoute.PaymentUserRoutes(r, db)
	discountRoute.DiscountUserRoutes(r, db)
	enrollmentRoute.EnrollmentUserRoutes(r, db)
}

func BillingAdminRoutes(r fiber.Router, db *gorm.DB) {
	paymentRoute.PaymentAdminRoutes(r, db)
	discountRoute.DiscountAdminRoutes(r, db)
	enrollmentRoute.EnrollmentAdminRoutes(r, db)
	automationRoute.AutomationAdminRoutes(r, db)
	reconciliationRoute.ReconciliationAdminRoutes(r, db)
}
