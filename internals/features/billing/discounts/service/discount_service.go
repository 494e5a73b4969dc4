// internals/features/billing/discounts/service/discount_service.go
//
// Validator & applier kode diskon. validate() murni baca; apply()
// menutup celah TOCTOU dengan revalidasi dalam transaksi + unique
// index usage sebagai penjaga balapan + UPDATE kondisional pada
// current_uses.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dm "dojoku_backend/internals/features/billing/discounts/model"
	pm "dojoku_backend/internals/features/billing/payments/model"
	"dojoku_backend/internals/helpers/dates"
	"dojoku_backend/internals/helpers/money"
)

/* ===============================
   Kode alasan penolakan (stabil untuk UI)
=================================*/

const (
	ReasonNotFound      = "not-found"
	ReasonInactive      = "inactive"
	ReasonNotYetValid   = "not-yet-valid"
	ReasonExpired       = "expired"
	ReasonNotApplicable = "not-applicable"
	ReasonUsageExceeded = "usage-exceeded"
)

var reasonMessages = map[string]string{
	ReasonNotFound:      "Kode diskon tidak ditemukan",
	ReasonInactive:      "Kode diskon sudah tidak aktif",
	ReasonNotYetValid:   "Kode diskon belum berlaku",
	ReasonExpired:       "Kode diskon sudah kedaluwarsa",
	ReasonNotApplicable: "Kode diskon tidak berlaku untuk jenis pembelian ini",
	ReasonUsageExceeded: "Kode diskon sudah mencapai batas pemakaian",
}

// ReasonMessage mengembalikan pesan user-facing untuk kode alasan.
func ReasonMessage(reason string) string {
	if msg, ok := reasonMessages[reason]; ok {
		return msg
	}
	return "Kode diskon tidak dapat dipakai"
}

// errApplyRejected dipakai internal untuk rollback transaksi apply
// ketika penolakan bukan error sistem.
var errApplyRejected = errors.New("discount apply rejected")

type DiscountService struct {
	DB *gorm.DB
}

func NewDiscountService(db *gorm.DB) *DiscountService {
	return &DiscountService{DB: db}
}

type ValidationInput struct {
	DojoID       uuid.UUID
	Code         string
	FamilyID     uuid.UUID
	StudentID    *uuid.UUID
	ApplicableTo string // training | store
	Subtotal     money.Cents
	At           time.Time // zero = hari ini
}

type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`

	Code *dm.DiscountCodeModel `json:"-"`

	DiscountCents money.Cents `json:"discount_cents"`
	FinalCents    money.Cents `json:"final_cents"`
}

// Validate mengecek kode tanpa mengubah state apa pun, urutan cek
// berhenti di kegagalan pertama. Boleh dipanggil berulang kali.
func (s *DiscountService) Validate(ctx context.Context, in ValidationInput) (ValidationResult, error) {
	return s.validate(ctx, s.DB, in)
}

func (s *DiscountService) validate(ctx context.Context, db *gorm.DB, in ValidationInput) (ValidationResult, error) {
	rejected := func(reason string) ValidationResult {
		return ValidationResult{Valid: false, Reason: reason, FinalCents: in.Subtotal}
	}

	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return rejected(ReasonNotFound), nil
	}

	var row dm.DiscountCodeModel
	err := db.WithContext(ctx).
		Where("discount_code_dojo_id = ? AND discount_code_code = ?", in.DojoID, code).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return rejected(ReasonNotFound), nil
	}
	if err != nil {
		return ValidationResult{}, err
	}

	if !row.DiscountCodeIsActive {
		return rejected(ReasonInactive), nil
	}

	at := in.At
	if at.IsZero() {
		at = dates.Today()
	}
	at = dates.Day(at)
	if row.DiscountCodeValidFrom != nil && dates.Before(at, *row.DiscountCodeValidFrom) {
		return rejected(ReasonNotYetValid), nil
	}
	if row.DiscountCodeValidUntil != nil && dates.Before(*row.DiscountCodeValidUntil, at) {
		return rejected(ReasonExpired), nil
	}

	if row.DiscountCodeApplicableTo != dm.ApplicableToBoth &&
		row.DiscountCodeApplicableTo != in.ApplicableTo {
		return rejected(ReasonNotApplicable), nil
	}

	// Batas pemakaian per unit scope (keluarga atau siswa).
	if bound := row.UsesBound(); bound > 0 {
		scopeKey := dm.ScopeKeyFor(row.DiscountCodeScope, in.FamilyID, in.StudentID)
		var used int64
		if err := db.WithContext(ctx).
			Model(&dm.DiscountUsageModel{}).
			Where("discount_usage_code_id = ? AND discount_usage_scope_key = ?", row.DiscountCodeID, scopeKey).
			Count(&used).Error; err != nil {
			return ValidationResult{}, err
		}
		if used >= int64(bound) {
			return rejected(ReasonUsageExceeded), nil
		}
	}

	amount := discountAmount(&row, in.Subtotal)
	return ValidationResult{
		Valid:         true,
		Code:          &row,
		DiscountCents: amount,
		FinalCents:    (in.Subtotal - amount).FloorZero(),
	}, nil
}

// discountAmount menghitung potongan; tidak pernah negatif dan tidak
// pernah melebihi subtotal.
func discountAmount(code *dm.DiscountCodeModel, subtotal money.Cents) money.Cents {
	var amount money.Cents
	switch code.DiscountCodeKind {
	case dm.DiscountKindFixedAmount:
		amount = money.Cents(code.DiscountCodeValue)
	case dm.DiscountKindPercentage:
		amount = money.PercentOf(subtotal, code.DiscountCodeValue)
		if code.DiscountCodeMaxAmountCents != nil {
			amount = amount.CapAt(*code.DiscountCodeMaxAmountCents)
		}
	}
	return amount.CapAt(subtotal).FloorZero()
}

// Apply memakai kode pada satu payment pending. Satu transaksi:
// revalidasi, insert usage (seq = jumlah sebelum + 1), increment
// kondisional current_uses, lalu tautkan kode + potongan ke payment.
// Kalah balapan di salah satu langkah = seluruh apply batal.
func (s *DiscountService) Apply(ctx context.Context, dojoID, paymentID uuid.UUID, code string) (ValidationResult, error) {
	var out ValidationResult

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pay pm.PaymentModel
		if err := tx.
			Where("payment_id = ? AND payment_dojo_id = ?", paymentID, dojoID).
			First(&pay).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "Payment tidak ditemukan")
			}
			return err
		}
		if pay.PaymentStatus != pm.PaymentStatusPending {
			return fiber.NewError(fiber.StatusConflict, "Payment sudah tidak pending")
		}
		if pay.PaymentDiscountCodeID != nil {
			return fiber.NewError(fiber.StatusConflict, "Payment sudah memakai kode diskon")
		}

		in := ValidationInput{
			DojoID:       dojoID,
			Code:         code,
			FamilyID:     pay.PaymentFamilyID,
			StudentID:    pay.PaymentStudentID,
			ApplicableTo: applicableToFor(pay.PaymentType),
			Subtotal:     pay.PaymentSubtotalCents,
		}

		res, err := s.validate(ctx, tx, in)
		if err != nil {
			return err
		}
		if !res.Valid {
			out = res
			return errApplyRejected
		}

		dc := res.Code
		scopeKey := dm.ScopeKeyFor(dc.DiscountCodeScope, pay.PaymentFamilyID, pay.PaymentStudentID)

		// Nomor urut pemakaian dalam scope; tabrakan seq = kalah balapan.
		var used int64
		if err := tx.
			Model(&dm.DiscountUsageModel{}).
			Where("discount_usage_code_id = ? AND discount_usage_scope_key = ?", dc.DiscountCodeID, scopeKey).
			Count(&used).Error; err != nil {
			return err
		}

		usage := dm.DiscountUsageModel{
			DiscountUsageDojoID:        dojoID,
			DiscountUsageCodeID:        dc.DiscountCodeID,
			DiscountUsagePaymentID:     pay.PaymentID,
			DiscountUsageFamilyID:      pay.PaymentFamilyID,
			DiscountUsageStudentID:     pay.PaymentStudentID,
			DiscountUsageScopeKey:      scopeKey,
			DiscountUsageScopeSeq:      int(used) + 1,
			DiscountUsageOriginalCents: pay.PaymentSubtotalCents,
			DiscountUsageAmountCents:   res.DiscountCents,
			DiscountUsageFinalCents:    res.FinalCents,
		}
		if err := tx.Create(&usage).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				if dc.UsesBound() > 0 {
					out = ValidationResult{Valid: false, Reason: ReasonUsageExceeded, FinalCents: pay.PaymentSubtotalCents}
					return errApplyRejected
				}
				return fiber.NewError(fiber.StatusConflict, "Kode sedang dipakai, silakan ulangi")
			}
			return err
		}

		// Increment penghitung global sambil menegaskan ulang batas scope
		// di sisi DB; dua apply serentak tidak mungkin dua-duanya lolos.
		inc := tx.Model(&dm.DiscountCodeModel{}).
			Where("discount_code_id = ?", dc.DiscountCodeID)
		if bound := dc.UsesBound(); bound > 0 {
			inc = inc.Where(
				"(SELECT COUNT(*) FROM discount_code_usages WHERE discount_usage_code_id = ? AND discount_usage_scope_key = ?) <= ?",
				dc.DiscountCodeID, scopeKey, bound,
			)
		}
		incRes := inc.Update("discount_code_current_uses", gorm.Expr("discount_code_current_uses + 1"))
		if incRes.Error != nil {
			return incRes.Error
		}
		if incRes.RowsAffected == 0 {
			out = ValidationResult{Valid: false, Reason: ReasonUsageExceeded, FinalCents: pay.PaymentSubtotalCents}
			return errApplyRejected
		}

		// Tautkan kode + potongan ke payment, hanya selama masih pending.
		payRes := tx.Model(&pm.PaymentModel{}).
			Where("payment_id = ? AND payment_status = ?", pay.PaymentID, pm.PaymentStatusPending).
			Updates(map[string]interface{}{
				"payment_discount_code_id": dc.DiscountCodeID,
				"payment_discount_cents":   int64(res.DiscountCents),
				"payment_total_cents":      int64(res.FinalCents),
			})
		if payRes.Error != nil {
			return payRes.Error
		}
		if payRes.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "Payment berubah status saat apply")
		}

		out = res
		return nil
	})

	if err != nil && !errors.Is(err, errApplyRejected) {
		return ValidationResult{}, err
	}
	return out, nil
}

// applicableToFor memetakan tipe payment ke sasaran diskon.
// Pembelian toko = store, selain itu biaya latihan/kegiatan = training.
func applicableToFor(paymentType string) string {
	if paymentType == pm.PaymentTypeStore {
		return dm.ApplicableToStore
	}
	return dm.ApplicableToTraining
}
