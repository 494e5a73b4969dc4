package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dojoku_backend/internals/helpers/money"
)

/* ===============================
   Jenis, scope, & sasaran diskon
=================================*/

const (
	DiscountKindPercentage  = "percentage"
	DiscountKindFixedAmount = "fixed_amount"
)

const (
	UsageTypeOneTime = "one_time"
	UsageTypeOngoing = "ongoing"
)

const (
	ScopePerFamily  = "per_family"
	ScopePerStudent = "per_student"
)

const (
	ApplicableToTraining = "training"
	ApplicableToStore    = "store"
	ApplicableToBoth     = "both"
)

type DiscountCodeModel struct {
	DiscountCodeID uuid.UUID `gorm:"column:discount_code_id;type:uuid;primaryKey" json:"discount_code_id"`

	DiscountCodeDojoID uuid.UUID `gorm:"column:discount_code_dojo_id;type:uuid;not null;uniqueIndex:uq_discount_codes_dojo_code" json:"discount_code_dojo_id"`

	// Kode selalu disimpan uppercase.
	DiscountCodeCode string `gorm:"column:discount_code_code;type:text;not null;uniqueIndex:uq_discount_codes_dojo_code" json:"discount_code_code"`

	DiscountCodeKind string `gorm:"column:discount_code_kind;type:text;not null" json:"discount_code_kind"`

	// percentage: 1..100, fixed_amount: nominal sen.
	DiscountCodeValue int64 `gorm:"column:discount_code_value;type:bigint;not null" json:"discount_code_value"`

	// Plafon potongan untuk percentage (sen). NULL = tanpa plafon.
	DiscountCodeMaxAmountCents *money.Cents `gorm:"column:discount_code_max_amount_cents;type:bigint" json:"discount_code_max_amount_cents,omitempty"`

	DiscountCodeUsageType string `gorm:"column:discount_code_usage_type;type:text;not null" json:"discount_code_usage_type"`

	// Batas pemakaian per unit scope (keluarga/siswa). NULL = tak terbatas.
	DiscountCodeMaxUses *int `gorm:"column:discount_code_max_uses;type:int" json:"discount_code_max_uses,omitempty"`

	// Penghitung global lintas scope, untuk audit admin.
	DiscountCodeCurrentUses int `gorm:"column:discount_code_current_uses;type:int;not null;default:0" json:"discount_code_current_uses"`

	DiscountCodeScope        string `gorm:"column:discount_code_scope;type:text;not null"         json:"discount_code_scope"`
	DiscountCodeApplicableTo string `gorm:"column:discount_code_applicable_to;type:text;not null" json:"discount_code_applicable_to"`

	DiscountCodeValidFrom  *time.Time `gorm:"column:discount_code_valid_from;type:date"  json:"discount_code_valid_from,omitempty"`
	DiscountCodeValidUntil *time.Time `gorm:"column:discount_code_valid_until;type:date" json:"discount_code_valid_until,omitempty"`

	DiscountCodeIsActive bool `gorm:"column:discount_code_is_active;not null;default:true" json:"discount_code_is_active"`

	DiscountCodeCreatedAt time.Time      `gorm:"column:discount_code_created_at;autoCreateTime" json:"discount_code_created_at"`
	DiscountCodeUpdatedAt *time.Time     `gorm:"column:discount_code_updated_at;autoUpdateTime" json:"discount_code_updated_at,omitempty"`
	DiscountCodeDeletedAt gorm.DeletedAt `gorm:"column:discount_code_deleted_at;index"          json:"discount_code_deleted_at,omitempty"`
}

func (DiscountCodeModel) TableName() string { return "discount_codes" }

func (m *DiscountCodeModel) BeforeCreate(tx *gorm.DB) error {
	if m.DiscountCodeID == uuid.Nil {
		m.DiscountCodeID = uuid.New()
	}
	return nil
}

// UsesBound mengembalikan batas pemakaian efektif per unit scope.
// one_time selalu 1, ongoing ikut max_uses (0 = tak terbatas).
func (m *DiscountCodeModel) UsesBound() int {
	if m.DiscountCodeUsageType == UsageTypeOneTime {
		return 1
	}
	if m.DiscountCodeMaxUses != nil && *m.DiscountCodeMaxUses > 0 {
		return *m.DiscountCodeMaxUses
	}
	return 0
}
