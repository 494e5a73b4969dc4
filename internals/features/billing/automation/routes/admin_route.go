// internals/features/billing/automation/routes/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	automationCtl "dojoku_backend/internals/features/billing/automation/controller"
)

// Contoh pemakaian: route.AutomationAdminRoutes(adminGroup, db)
func AutomationAdminRoutes(r fiber.Router, db *gorm.DB) {
	ruleCtl := automationCtl.NewAutomationRuleController(db)
	eventCtl := automationCtl.NewDiscountEventController(db)

	automation := r.Group("/automation")

	automation.Post("/templates", ruleCtl.CreateTemplate) // POST  /automation/templates
	automation.Get("/templates", ruleCtl.ListTemplates)   // GET   /automation/templates

	automation.Post("/rules", ruleCtl.CreateRule)      // POST  /automation/rules
	automation.Get("/rules", ruleCtl.ListRules)        // GET   /automation/rules
	automation.Patch("/rules/:id", ruleCtl.UpdateRule) // PATCH /automation/rules/:id

	automation.Get("/assignments", ruleCtl.ListAssignments) // GET /automation/assignments

	automation.Post("/events", eventCtl.RecordEvent)          // POST /automation/events
	automation.Get("/events", eventCtl.ListEvents)            // GET  /automation/events
	automation.Post("/events/process", eventCtl.ProcessBatch) // POST /automation/events/process
}
