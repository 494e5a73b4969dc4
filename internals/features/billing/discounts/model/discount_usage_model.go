package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dojoku_backend/internals/helpers/money"
)

// DiscountUsageModel mencatat satu pemakaian kode pada satu payment.
// Unique index (code, scope_key, scope_seq) adalah penjaga balapan:
// dua pemakaian serentak memperebutkan seq yang sama, yang kalah
// mendapat duplicate key dan ditolak.
type DiscountUsageModel struct {
	DiscountUsageID uuid.UUID `gorm:"column:discount_usage_id;type:uuid;primaryKey" json:"discount_usage_id"`

	DiscountUsageDojoID uuid.UUID `gorm:"column:discount_usage_dojo_id;type:uuid;not null;index" json:"discount_usage_dojo_id"`

	DiscountUsageCodeID    uuid.UUID `gorm:"column:discount_usage_code_id;type:uuid;not null;uniqueIndex:uq_discount_usages_serial;uniqueIndex:uq_discount_usages_payment" json:"discount_usage_code_id"`
	DiscountUsagePaymentID uuid.UUID `gorm:"column:discount_usage_payment_id;type:uuid;not null;uniqueIndex:uq_discount_usages_payment"                                    json:"discount_usage_payment_id"`

	DiscountUsageFamilyID  uuid.UUID  `gorm:"column:discount_usage_family_id;type:uuid;not null" json:"discount_usage_family_id"`
	DiscountUsageStudentID *uuid.UUID `gorm:"column:discount_usage_student_id;type:uuid"         json:"discount_usage_student_id,omitempty"`

	// Unit scope pemakaian: "family:<uuid>" atau "student:<uuid>".
	DiscountUsageScopeKey string `gorm:"column:discount_usage_scope_key;type:text;not null;uniqueIndex:uq_discount_usages_serial" json:"discount_usage_scope_key"`
	DiscountUsageScopeSeq int    `gorm:"column:discount_usage_scope_seq;type:int;not null;uniqueIndex:uq_discount_usages_serial"  json:"discount_usage_scope_seq"`

	// Snapshot nominal saat apply (audit, tidak pernah diubah).
	DiscountUsageOriginalCents money.Cents `gorm:"column:discount_usage_original_cents;type:bigint;not null" json:"discount_usage_original_cents"`
	DiscountUsageAmountCents   money.Cents `gorm:"column:discount_usage_amount_cents;type:bigint;not null"   json:"discount_usage_amount_cents"`
	DiscountUsageFinalCents    money.Cents `gorm:"column:discount_usage_final_cents;type:bigint;not null"    json:"discount_usage_final_cents"`

	DiscountUsageCreatedAt time.Time `gorm:"column:discount_usage_created_at;autoCreateTime" json:"discount_usage_created_at"`
}

func (DiscountUsageModel) TableName() string { return "discount_code_usages" }

func (m *DiscountUsageModel) BeforeCreate(tx *gorm.DB) error {
	if m.DiscountUsageID == uuid.Nil {
		m.DiscountUsageID = uuid.New()
	}
	return nil
}

// ScopeKeyFor membentuk kunci unit scope sesuai scope kode.
func ScopeKeyFor(scope string, familyID uuid.UUID, studentID *uuid.UUID) string {
	if scope == ScopePerStudent && studentID != nil {
		return "student:" + studentID.String()
	}
	return "family:" + familyID.String()
}
