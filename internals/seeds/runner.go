package seeds

import (
	"gorm.io/gorm"

	rule "dojoku_backend/internals/seeds/billing/automation_rules"
	template "dojoku_backend/internals/seeds/billing/discount_templates"
	program "dojoku_backend/internals/seeds/dojo/programs"
)

// RunAllSeeds mengisi data demo satu dojo. Urutan penting: template
// dulu, baru rule (rule menunjuk template lewat code_prefix).
func RunAllSeeds(db *gorm.DB) {

	//* Dojo
	program.SeedProgramsFromJSON(db, "internals/seeds/dojo/programs/data_programs.json")

	//* Billing
	template.SeedDiscountTemplatesFromJSON(db, "internals/seeds/billing/discount_templates/data_discount_templates.json")
	rule.SeedAutomationRulesFromJSON(db, "internals/seeds/billing/automation_rules/data_automation_rules.json")
}
