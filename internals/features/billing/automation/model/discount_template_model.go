package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dojoku_backend/internals/helpers/money"
)

// DiscountTemplateModel adalah cetakan kode diskon yang dimint aturan
// otomatis. Field nilainya sejajar dengan discount_codes.
type DiscountTemplateModel struct {
	DiscountTemplateID uuid.UUID `gorm:"column:discount_template_id;type:uuid;primaryKey" json:"discount_template_id"`

	DiscountTemplateDojoID uuid.UUID `gorm:"column:discount_template_dojo_id;type:uuid;not null;index" json:"discount_template_dojo_id"`

	DiscountTemplateName string `gorm:"column:discount_template_name;type:text;not null" json:"discount_template_name"`

	DiscountTemplateKind  string `gorm:"column:discount_template_kind;type:text;not null"  json:"discount_template_kind"`
	DiscountTemplateValue int64  `gorm:"column:discount_template_value;type:bigint;not null" json:"discount_template_value"`

	DiscountTemplateMaxAmountCents *money.Cents `gorm:"column:discount_template_max_amount_cents;type:bigint" json:"discount_template_max_amount_cents,omitempty"`

	DiscountTemplateUsageType string `gorm:"column:discount_template_usage_type;type:text;not null" json:"discount_template_usage_type"`
	DiscountTemplateMaxUses   *int   `gorm:"column:discount_template_max_uses;type:int"             json:"discount_template_max_uses,omitempty"`

	DiscountTemplateScope        string `gorm:"column:discount_template_scope;type:text;not null"         json:"discount_template_scope"`
	DiscountTemplateApplicableTo string `gorm:"column:discount_template_applicable_to;type:text;not null" json:"discount_template_applicable_to"`

	// Masa berlaku kode hasil mint, dihitung dari waktu mint. NULL = tanpa batas.
	DiscountTemplateValidDays *int `gorm:"column:discount_template_valid_days;type:int" json:"discount_template_valid_days,omitempty"`

	// Prefix kode hasil mint, mis. "PROMOSI" → "PROMOSI-AB12CD34".
	DiscountTemplateCodePrefix string `gorm:"column:discount_template_code_prefix;type:text;not null" json:"discount_template_code_prefix"`

	DiscountTemplateCreatedAt time.Time      `gorm:"column:discount_template_created_at;autoCreateTime" json:"discount_template_created_at"`
	DiscountTemplateUpdatedAt *time.Time     `gorm:"column:discount_template_updated_at;autoUpdateTime" json:"discount_template_updated_at,omitempty"`
	DiscountTemplateDeletedAt gorm.DeletedAt `gorm:"column:discount_template_deleted_at;index"          json:"discount_template_deleted_at,omitempty"`
}

func (DiscountTemplateModel) TableName() string { return "discount_templates" }

func (m *DiscountTemplateModel) BeforeCreate(tx *gorm.DB) error {
	if m.DiscountTemplateID == uuid.Nil {
		m.DiscountTemplateID = uuid.New()
	}
	return nil
}
