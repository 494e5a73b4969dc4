package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dojoku_backend/internals/helpers/money"
)

type PaymentItemModel struct {
	PaymentItemID uuid.UUID `gorm:"column:payment_item_id;type:uuid;primaryKey" json:"payment_item_id"`

	PaymentItemPaymentID uuid.UUID `gorm:"column:payment_item_payment_id;type:uuid;not null;index" json:"payment_item_payment_id"`

	PaymentItemDescription string      `gorm:"column:payment_item_description;type:text;not null"        json:"payment_item_description"`
	PaymentItemQty         int         `gorm:"column:payment_item_qty;type:int;not null;default:1"       json:"payment_item_qty"`
	PaymentItemUnitCents   money.Cents `gorm:"column:payment_item_unit_cents;type:bigint;not null"       json:"payment_item_unit_cents"`
	PaymentItemAmountCents money.Cents `gorm:"column:payment_item_amount_cents;type:bigint;not null"     json:"payment_item_amount_cents"`

	PaymentItemCreatedAt time.Time `gorm:"column:payment_item_created_at;autoCreateTime" json:"payment_item_created_at"`
}

func (PaymentItemModel) TableName() string { return "payment_items" }

func (m *PaymentItemModel) BeforeCreate(tx *gorm.DB) error {
	if m.PaymentItemID == uuid.Nil {
		m.PaymentItemID = uuid.New()
	}
	return nil
}
