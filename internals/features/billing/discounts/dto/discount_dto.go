// internals/features/billing/discounts/dto/discount_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	m "dojoku_backend/internals/features/billing/discounts/model"
	"dojoku_backend/internals/helpers/money"
)

/* =============== REQUESTS =============== */

type CreateDiscountCodeRequest struct {
	DiscountCodeCode string `json:"discount_code_code" validate:"required,min=3,max=40"`

	DiscountCodeKind  string `json:"discount_code_kind"  validate:"required,oneof=fixed_amount percentage"`
	DiscountCodeValue int64  `json:"discount_code_value" validate:"required,gt=0"`

	DiscountCodeMaxAmountCents *money.Cents `json:"discount_code_max_amount_cents" validate:"omitempty,gt=0"`

	DiscountCodeUsageType string `json:"discount_code_usage_type" validate:"required,oneof=one_time ongoing"`
	DiscountCodeMaxUses   *int   `json:"discount_code_max_uses"   validate:"omitempty,gt=0"`

	DiscountCodeScope        string `json:"discount_code_scope"         validate:"required,oneof=per_student per_family"`
	DiscountCodeApplicableTo string `json:"discount_code_applicable_to" validate:"required,oneof=training store both"`

	DiscountCodeValidFrom  *time.Time `json:"discount_code_valid_from"  validate:"omitempty"`
	DiscountCodeValidUntil *time.Time `json:"discount_code_valid_until" validate:"omitempty"`
}

func (r CreateDiscountCodeRequest) ToModel(dojoID uuid.UUID) *m.DiscountCodeModel {
	return &m.DiscountCodeModel{
		DiscountCodeDojoID:         dojoID,
		DiscountCodeCode:           strings.ToUpper(strings.TrimSpace(r.DiscountCodeCode)),
		DiscountCodeKind:           r.DiscountCodeKind,
		DiscountCodeValue:          r.DiscountCodeValue,
		DiscountCodeMaxAmountCents: r.DiscountCodeMaxAmountCents,
		DiscountCodeUsageType:      r.DiscountCodeUsageType,
		DiscountCodeMaxUses:        r.DiscountCodeMaxUses,
		DiscountCodeScope:          r.DiscountCodeScope,
		DiscountCodeApplicableTo:   r.DiscountCodeApplicableTo,
		DiscountCodeValidFrom:      r.DiscountCodeValidFrom,
		DiscountCodeValidUntil:     r.DiscountCodeValidUntil,
		DiscountCodeIsActive:       true,
	}
}

type ValidateDiscountRequest struct {
	Code string `json:"code" validate:"required,min=3"`

	// Konteks pembelian yang akan memakai kode.
	ApplicableTo  string      `json:"applicable_to"  validate:"required,oneof=training store"`
	SubtotalCents money.Cents `json:"subtotal_cents" validate:"required,gt=0"`

	StudentID *uuid.UUID `json:"student_id" validate:"omitempty"`
}

type ApplyDiscountRequest struct {
	PaymentID uuid.UUID `json:"payment_id" validate:"required"`
	Code      string    `json:"code"       validate:"required,min=3"`
}

/* =============== RESPONSES =============== */

type DiscountCodeResponse struct {
	DiscountCodeID uuid.UUID `json:"discount_code_id"`

	DiscountCodeCode  string `json:"discount_code_code"`
	DiscountCodeKind  string `json:"discount_code_kind"`
	DiscountCodeValue int64  `json:"discount_code_value"`

	DiscountCodeMaxAmountCents *money.Cents `json:"discount_code_max_amount_cents,omitempty"`

	DiscountCodeUsageType   string `json:"discount_code_usage_type"`
	DiscountCodeMaxUses     *int   `json:"discount_code_max_uses,omitempty"`
	DiscountCodeCurrentUses int    `json:"discount_code_current_uses"`

	DiscountCodeScope        string `json:"discount_code_scope"`
	DiscountCodeApplicableTo string `json:"discount_code_applicable_to"`

	DiscountCodeValidFrom  *time.Time `json:"discount_code_valid_from,omitempty"`
	DiscountCodeValidUntil *time.Time `json:"discount_code_valid_until,omitempty"`

	DiscountCodeIsActive  bool      `json:"discount_code_is_active"`
	DiscountCodeCreatedAt time.Time `json:"discount_code_created_at"`
}

func FromModel(c m.DiscountCodeModel) DiscountCodeResponse {
	return DiscountCodeResponse{
		DiscountCodeID:             c.DiscountCodeID,
		DiscountCodeCode:           c.DiscountCodeCode,
		DiscountCodeKind:           c.DiscountCodeKind,
		DiscountCodeValue:          c.DiscountCodeValue,
		DiscountCodeMaxAmountCents: c.DiscountCodeMaxAmountCents,
		DiscountCodeUsageType:      c.DiscountCodeUsageType,
		DiscountCodeMaxUses:        c.DiscountCodeMaxUses,
		DiscountCodeCurrentUses:    c.DiscountCodeCurrentUses,
		DiscountCodeScope:          c.DiscountCodeScope,
		DiscountCodeApplicableTo:   c.DiscountCodeApplicableTo,
		DiscountCodeValidFrom:      c.DiscountCodeValidFrom,
		DiscountCodeValidUntil:     c.DiscountCodeValidUntil,
		DiscountCodeIsActive:       c.DiscountCodeIsActive,
		DiscountCodeCreatedAt:      c.DiscountCodeCreatedAt,
	}
}

func FromModels(rows []m.DiscountCodeModel) []DiscountCodeResponse {
	out := make([]DiscountCodeResponse, 0, len(rows))
	for _, c := range rows {
		out = append(out, FromModel(c))
	}
	return out
}

// ValidationResponse membungkus hasil validasi untuk klien: alasan
// stabil + pesan terjemahan.
type ValidationResponse struct {
	Valid         bool        `json:"valid"`
	Reason        string      `json:"reason,omitempty"`
	Message       string      `json:"message,omitempty"`
	DiscountCents money.Cents `json:"discount_cents"`
	FinalCents    money.Cents `json:"final_cents"`
}
