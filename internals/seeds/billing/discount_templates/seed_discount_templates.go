package template

import (
	"log"
	"os"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dojoku_backend/internals/features/billing/automation/model"
	"dojoku_backend/internals/helpers/money"
)

type DiscountTemplateSeed struct {
	DiscountTemplateDojoID         string `json:"discount_template_dojo_id"`
	DiscountTemplateName           string `json:"discount_template_name"`
	DiscountTemplateKind           string `json:"discount_template_kind"`
	DiscountTemplateValue          int64  `json:"discount_template_value"`
	DiscountTemplateMaxAmountCents *int64 `json:"discount_template_max_amount_cents"`
	DiscountTemplateUsageType      string `json:"discount_template_usage_type"`
	DiscountTemplateMaxUses        *int   `json:"discount_template_max_uses"`
	DiscountTemplateScope          string `json:"discount_template_scope"`
	DiscountTemplateApplicableTo   string `json:"discount_template_applicable_to"`
	DiscountTemplateValidDays      *int   `json:"discount_template_valid_days"`
	DiscountTemplateCodePrefix     string `json:"discount_template_code_prefix"`
}

func SeedDiscountTemplatesFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Membaca file:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatalf("❌ Gagal membaca file JSON: %v", err)
	}

	var input []DiscountTemplateSeed
	if err := sonic.Unmarshal(file, &input); err != nil {
		log.Fatalf("❌ Gagal decode JSON: %v", err)
	}

	for _, t := range input {
		dojoID, err := uuid.Parse(t.DiscountTemplateDojoID)
		if err != nil {
			log.Printf("❌ Template %s: dojo_id tidak valid: %v", t.DiscountTemplateCodePrefix, err)
			continue
		}

		var existing model.DiscountTemplateModel
		if err := db.Where("discount_template_dojo_id = ? AND discount_template_code_prefix = ?", dojoID, t.DiscountTemplateCodePrefix).
			First(&existing).Error; err == nil {
			log.Printf("ℹ️ Template %s sudah ada, lewati...", t.DiscountTemplateCodePrefix)
			continue
		}

		row := model.DiscountTemplateModel{
			DiscountTemplateDojoID:       dojoID,
			DiscountTemplateName:         t.DiscountTemplateName,
			DiscountTemplateKind:         t.DiscountTemplateKind,
			DiscountTemplateValue:        t.DiscountTemplateValue,
			DiscountTemplateUsageType:    t.DiscountTemplateUsageType,
			DiscountTemplateMaxUses:      t.DiscountTemplateMaxUses,
			DiscountTemplateScope:        t.DiscountTemplateScope,
			DiscountTemplateApplicableTo: t.DiscountTemplateApplicableTo,
			DiscountTemplateValidDays:    t.DiscountTemplateValidDays,
			DiscountTemplateCodePrefix:   t.DiscountTemplateCodePrefix,
		}
		if t.DiscountTemplateMaxAmountCents != nil {
			max := money.Cents(*t.DiscountTemplateMaxAmountCents)
			row.DiscountTemplateMaxAmountCents = &max
		}

		if err := db.Create(&row).Error; err != nil {
			log.Printf("❌ Gagal insert Template %s: %v", t.DiscountTemplateCodePrefix, err)
		} else {
			log.Printf("✅ Berhasil insert Template %s (%s)", t.DiscountTemplateCodePrefix, t.DiscountTemplateName)
		}
	}
}
