// internals/features/billing/payments/dto/payment_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	m "dojoku_backend/internals/features/billing/payments/model"
	service "dojoku_backend/internals/features/billing/payments/service"
	"dojoku_backend/internals/helpers/money"
)

/* =============== REQUESTS =============== */

type CheckoutItemRequest struct {
	Description string      `json:"description" validate:"required,min=2"`
	Qty         int         `json:"qty"         validate:"omitempty,gte=1"`
	UnitCents   money.Cents `json:"unit_cents"  validate:"required,gte=0"`
}

type CheckoutRequest struct {
	PaymentType string `json:"payment_type" validate:"required,oneof=monthly yearly per_session store event invoice"`

	PaymentStudentID    *uuid.UUID `json:"payment_student_id"    validate:"omitempty"`
	PaymentEnrollmentID *uuid.UUID `json:"payment_enrollment_id" validate:"omitempty"`

	Items []CheckoutItemRequest `json:"items" validate:"omitempty,dive"`

	DiscountCode *string `json:"discount_code" validate:"omitempty,min=3"`

	Gateway string `json:"gateway" validate:"omitempty,oneof=midtrans xendit manual"`

	PayerName  string  `json:"payer_name"  validate:"omitempty,min=2"`
	PayerEmail string  `json:"payer_email" validate:"omitempty,email"`
	Note       *string `json:"note"        validate:"omitempty"`
}

func (r CheckoutRequest) ToInput(dojoID, familyID uuid.UUID) service.CheckoutInput {
	items := make([]service.CheckoutItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, service.CheckoutItem{
			Description: it.Description,
			Qty:         it.Qty,
			UnitCents:   it.UnitCents,
		})
	}
	return service.CheckoutInput{
		DojoID:       dojoID,
		FamilyID:     familyID,
		StudentID:    r.PaymentStudentID,
		EnrollmentID: r.PaymentEnrollmentID,
		PaymentType:  r.PaymentType,
		Gateway:      r.Gateway,
		Items:        items,
		DiscountCode: r.DiscountCode,
		Note:         r.Note,
		PayerName:    r.PayerName,
		PayerEmail:   r.PayerEmail,
	}
}

// Konfirmasi manual (transfer/tunai) oleh admin.
type ConfirmPaymentRequest struct {
	PaidAt *time.Time `json:"paid_at" validate:"omitempty"`
	Note   *string    `json:"note"    validate:"omitempty"`
}

type FailPaymentRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

/* =============== RESPONSES =============== */

type PaymentItemResponse struct {
	PaymentItemID          uuid.UUID   `json:"payment_item_id"`
	PaymentItemDescription string      `json:"payment_item_description"`
	PaymentItemQty         int         `json:"payment_item_qty"`
	PaymentItemUnitCents   money.Cents `json:"payment_item_unit_cents"`
	PaymentItemAmountCents money.Cents `json:"payment_item_amount_cents"`
}

type PaymentResponse struct {
	PaymentID uuid.UUID `json:"payment_id"`

	PaymentFamilyID     uuid.UUID  `json:"payment_family_id"`
	PaymentStudentID    *uuid.UUID `json:"payment_student_id,omitempty"`
	PaymentEnrollmentID *uuid.UUID `json:"payment_enrollment_id,omitempty"`

	PaymentType    string `json:"payment_type"`
	PaymentStatus  string `json:"payment_status"`
	PaymentOrderID string `json:"payment_order_id"`

	PaymentGateway          *string `json:"payment_gateway,omitempty"`
	PaymentGatewayReference *string `json:"payment_gateway_reference,omitempty"`

	PaymentSubtotalCents money.Cents `json:"payment_subtotal_cents"`
	PaymentDiscountCents money.Cents `json:"payment_discount_cents"`
	PaymentTotalCents    money.Cents `json:"payment_total_cents"`

	// Tampilan rupiah untuk klien, dari shopspring/decimal.
	PaymentTotalDisplay string `json:"payment_total_display"`

	PaymentDiscountCodeID *uuid.UUID `json:"payment_discount_code_id,omitempty"`
	PaymentAppliedRule    *string    `json:"payment_applied_rule,omitempty"`

	PaymentPaidAt    *time.Time `json:"payment_paid_at,omitempty"`
	PaymentNote      *string    `json:"payment_note,omitempty"`
	PaymentCreatedAt time.Time  `json:"payment_created_at"`

	Items []PaymentItemResponse `json:"items,omitempty"`
}

func FromPaymentModel(p m.PaymentModel) PaymentResponse {
	return PaymentResponse{
		PaymentID:               p.PaymentID,
		PaymentFamilyID:         p.PaymentFamilyID,
		PaymentStudentID:        p.PaymentStudentID,
		PaymentEnrollmentID:     p.PaymentEnrollmentID,
		PaymentType:             p.PaymentType,
		PaymentStatus:           p.PaymentStatus,
		PaymentOrderID:          p.PaymentOrderID,
		PaymentGateway:          p.PaymentGateway,
		PaymentGatewayReference: p.PaymentGatewayReference,
		PaymentSubtotalCents:    p.PaymentSubtotalCents,
		PaymentDiscountCents:    p.PaymentDiscountCents,
		PaymentTotalCents:       p.PaymentTotalCents,
		PaymentTotalDisplay:     p.PaymentTotalCents.String(),
		PaymentDiscountCodeID:   p.PaymentDiscountCodeID,
		PaymentAppliedRule:      p.PaymentAppliedRule,
		PaymentPaidAt:           p.PaymentPaidAt,
		PaymentNote:             p.PaymentNote,
		PaymentCreatedAt:        p.PaymentCreatedAt,
	}
}

func FromPaymentModels(rows []m.PaymentModel) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, FromPaymentModel(p))
	}
	return out
}

func FromItemModels(rows []m.PaymentItemModel) []PaymentItemResponse {
	out := make([]PaymentItemResponse, 0, len(rows))
	for _, it := range rows {
		out = append(out, PaymentItemResponse{
			PaymentItemID:          it.PaymentItemID,
			PaymentItemDescription: it.PaymentItemDescription,
			PaymentItemQty:         it.PaymentItemQty,
			PaymentItemUnitCents:   it.PaymentItemUnitCents,
			PaymentItemAmountCents: it.PaymentItemAmountCents,
		})
	}
	return out
}

type CheckoutResponse struct {
	Payment PaymentResponse `json:"payment"`

	SnapToken   *string `json:"snap_token,omitempty"`
	RedirectURL *string `json:"redirect_url,omitempty"`

	DiscountCents *money.Cents `json:"discount_cents,omitempty"`
}

func FromCheckoutResult(res *service.CheckoutResult) CheckoutResponse {
	payment := FromPaymentModel(res.Payment)
	payment.Items = FromItemModels(res.Items)

	out := CheckoutResponse{
		Payment:     payment,
		SnapToken:   res.SnapToken,
		RedirectURL: res.RedirectURL,
	}
	if res.Discount != nil {
		d := res.Discount.DiscountCents
		out.DiscountCents = &d
	}
	return out
}
