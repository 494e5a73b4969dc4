package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"dojoku_backend/internals/helpers/money"
)

/* ===============================
   Status, tipe, & gateway payment
=================================*/

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

const (
	PaymentTypeMonthly    = "monthly"
	PaymentTypeYearly     = "yearly"
	PaymentTypePerSession = "per_session"
	PaymentTypeStore      = "store"
	PaymentTypeEvent      = "event"
	PaymentTypeInvoice    = "invoice"
)

const (
	GatewayMidtrans = "midtrans"
	GatewayXendit   = "xendit"
	GatewayManual   = "manual"
)

// IsTerminal melaporkan apakah status tidak boleh berubah lagi.
func IsTerminal(status string) bool {
	return status == PaymentStatusSucceeded || status == PaymentStatusFailed
}

// TrainingTypes: tipe payment yang menggerakkan paid_until.
func IsTrainingType(paymentType string) bool {
	return paymentType == PaymentTypeMonthly ||
		paymentType == PaymentTypeYearly ||
		paymentType == PaymentTypePerSession
}

type PaymentModel struct {
	PaymentID uuid.UUID `gorm:"column:payment_id;type:uuid;primaryKey" json:"payment_id"`

	PaymentDojoID   uuid.UUID `gorm:"column:payment_dojo_id;type:uuid;not null;index"   json:"payment_dojo_id"`
	PaymentFamilyID uuid.UUID `gorm:"column:payment_family_id;type:uuid;not null;index" json:"payment_family_id"`

	PaymentStudentID    *uuid.UUID `gorm:"column:payment_student_id;type:uuid"    json:"payment_student_id,omitempty"`
	PaymentEnrollmentID *uuid.UUID `gorm:"column:payment_enrollment_id;type:uuid" json:"payment_enrollment_id,omitempty"`

	PaymentType   string `gorm:"column:payment_type;type:text;not null"                        json:"payment_type"`
	PaymentStatus string `gorm:"column:payment_status;type:text;not null;default:'pending';index" json:"payment_status"`

	// Order id internal (PAY-...), jadi rujukan di gateway juga.
	PaymentOrderID string `gorm:"column:payment_order_id;type:text;not null;uniqueIndex:uq_payments_order_id" json:"payment_order_id"`

	PaymentGateway          *string `gorm:"column:payment_gateway;type:text"           json:"payment_gateway,omitempty"`
	PaymentGatewayReference *string `gorm:"column:payment_gateway_reference;type:text" json:"payment_gateway_reference,omitempty"`

	// Nominal dalam sen. total = subtotal - discount, tidak pernah negatif.
	PaymentSubtotalCents money.Cents `gorm:"column:payment_subtotal_cents;type:bigint;not null;default:0" json:"payment_subtotal_cents"`
	PaymentDiscountCents money.Cents `gorm:"column:payment_discount_cents;type:bigint;not null;default:0" json:"payment_discount_cents"`
	PaymentTotalCents    money.Cents `gorm:"column:payment_total_cents;type:bigint;not null;default:0"    json:"payment_total_cents"`

	PaymentDiscountCodeID *uuid.UUID `gorm:"column:payment_discount_code_id;type:uuid" json:"payment_discount_code_id,omitempty"`

	// Aturan paid_until yang dipakai saat settle (extension|grace_period|attendance_credit|default)
	PaymentAppliedRule *string `gorm:"column:payment_applied_rule;type:text" json:"payment_applied_rule,omitempty"`

	PaymentPaidAt  *time.Time        `gorm:"column:payment_paid_at"                  json:"payment_paid_at,omitempty"`
	PaymentReceipt datatypes.JSONMap `gorm:"column:payment_receipt;type:jsonb"       json:"payment_receipt,omitempty"`
	PaymentNote    *string           `gorm:"column:payment_note;type:text"           json:"payment_note,omitempty"`

	PaymentCreatedAt time.Time      `gorm:"column:payment_created_at;autoCreateTime;index" json:"payment_created_at"`
	PaymentUpdatedAt *time.Time     `gorm:"column:payment_updated_at;autoUpdateTime"       json:"payment_updated_at,omitempty"`
	PaymentDeletedAt gorm.DeletedAt `gorm:"column:payment_deleted_at;index"                json:"payment_deleted_at,omitempty"`
}

func (PaymentModel) TableName() string { return "payments" }

func (m *PaymentModel) BeforeCreate(tx *gorm.DB) error {
	if m.PaymentID == uuid.Nil {
		m.PaymentID = uuid.New()
	}
	return nil
}
