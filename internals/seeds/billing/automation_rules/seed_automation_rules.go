package rule

import (
	"log"
	"os"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"dojoku_backend/internals/features/billing/automation/model"
)

// Rule menunjuk template lewat code_prefix, bukan UUID, supaya file
// data bisa ditulis tangan tanpa tahu ID hasil seed template.
type AutomationRuleSeed struct {
	AutomationRuleDojoID            string         `json:"automation_rule_dojo_id"`
	AutomationRuleName              string         `json:"automation_rule_name"`
	AutomationRuleEventType         string         `json:"automation_rule_event_type"`
	AutomationRuleConditions        datatypes.JSON `json:"automation_rule_conditions"`
	AutomationRuleTemplatePrefix    string         `json:"automation_rule_template_prefix"`
	AutomationRulePrograms          []string       `json:"automation_rule_programs"`
	AutomationRuleMaxUsesPerStudent int            `json:"automation_rule_max_uses_per_student"`
	AutomationRulePriority          int            `json:"automation_rule_priority"`
}

func SeedAutomationRulesFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Membaca file:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatalf("❌ Gagal membaca file JSON: %v", err)
	}

	var input []AutomationRuleSeed
	if err := sonic.Unmarshal(file, &input); err != nil {
		log.Fatalf("❌ Gagal decode JSON: %v", err)
	}

	for _, r := range input {
		dojoID, err := uuid.Parse(r.AutomationRuleDojoID)
		if err != nil {
			log.Printf("❌ Rule %s: dojo_id tidak valid: %v", r.AutomationRuleName, err)
			continue
		}
		if !model.ValidEventType(r.AutomationRuleEventType) {
			log.Printf("❌ Rule %s: tipe event tidak dikenal: %s", r.AutomationRuleName, r.AutomationRuleEventType)
			continue
		}

		var existing model.AutomationRuleModel
		if err := db.Where("automation_rule_dojo_id = ? AND automation_rule_name = ?", dojoID, r.AutomationRuleName).
			First(&existing).Error; err == nil {
			log.Printf("ℹ️ Rule %s sudah ada, lewati...", r.AutomationRuleName)
			continue
		}

		var tpl model.DiscountTemplateModel
		if err := db.Where("discount_template_dojo_id = ? AND discount_template_code_prefix = ?", dojoID, r.AutomationRuleTemplatePrefix).
			First(&tpl).Error; err != nil {
			log.Printf("❌ Rule %s: template %s tidak ditemukan, seed template dulu", r.AutomationRuleName, r.AutomationRuleTemplatePrefix)
			continue
		}

		maxUses := r.AutomationRuleMaxUsesPerStudent
		if maxUses <= 0 {
			maxUses = 1
		}

		row := model.AutomationRuleModel{
			AutomationRuleDojoID:            dojoID,
			AutomationRuleName:              r.AutomationRuleName,
			AutomationRuleEventType:         r.AutomationRuleEventType,
			AutomationRuleConditions:        r.AutomationRuleConditions,
			AutomationRuleTemplateID:        tpl.DiscountTemplateID,
			AutomationRulePrograms:          pq.StringArray(r.AutomationRulePrograms),
			AutomationRuleMaxUsesPerStudent: maxUses,
			AutomationRulePriority:          r.AutomationRulePriority,
			AutomationRuleIsActive:          true,
		}

		if err := db.Create(&row).Error; err != nil {
			log.Printf("❌ Gagal insert Rule %s: %v", r.AutomationRuleName, err)
		} else {
			log.Printf("✅ Berhasil insert Rule %s (event %s → %s)", r.AutomationRuleName, r.AutomationRuleEventType, r.AutomationRuleTemplatePrefix)
		}
	}
}
