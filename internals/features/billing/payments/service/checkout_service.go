// internals/features/billing/payments/service/checkout_service.go
//
// Checkout membuat payment pending + item, menerapkan kode diskon
// (opsional) di transaksi yang sama, lalu (untuk gateway midtrans)
// meminta Snap token setelah commit. Total tidak pernah berubah lagi
// setelah token dibuat.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dsvc "dojoku_backend/internals/features/billing/discounts/service"
	em "dojoku_backend/internals/features/billing/enrollments/model"
	m "dojoku_backend/internals/features/billing/payments/model"
	pm "dojoku_backend/internals/features/dojo/programs/model"
	"dojoku_backend/internals/helpers/money"
)

type CheckoutService struct {
	DB *gorm.DB
}

func NewCheckoutService(db *gorm.DB) *CheckoutService {
	return &CheckoutService{DB: db}
}

type CheckoutItem struct {
	Description string
	Qty         int
	UnitCents   money.Cents
}

type CheckoutInput struct {
	DojoID   uuid.UUID
	FamilyID uuid.UUID

	StudentID    *uuid.UUID
	EnrollmentID *uuid.UUID

	PaymentType string
	Gateway     string

	// Untuk tipe non-training wajib diisi; tipe training boleh kosong
	// dan dihitung dari fee program enrollment.
	Items []CheckoutItem

	DiscountCode *string
	Note         *string

	PayerName  string
	PayerEmail string
}

type CheckoutResult struct {
	Payment  m.PaymentModel
	Items    []m.PaymentItemModel
	Discount *dsvc.ValidationResult

	SnapToken   *string
	RedirectURL *string
}

// RecomputeTotals menghitung ulang subtotal dari item dan mematok
// diskon: tidak melebihi subtotal, total tidak pernah negatif.
func RecomputeTotals(items []m.PaymentItemModel, discount money.Cents) (subtotal, capped, total money.Cents) {
	for _, it := range items {
		subtotal += it.PaymentItemAmountCents
	}
	capped = discount.CapAt(subtotal).FloorZero()
	total = (subtotal - capped).FloorZero()
	return subtotal, capped, total
}

func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if in.Gateway == "" {
		in.Gateway = m.GatewayManual
	}

	items, err := s.resolveItems(ctx, &in)
	if err != nil {
		return nil, err
	}

	orderID := fmt.Sprintf("PAY-%d", time.Now().UnixNano())

	payment := m.PaymentModel{
		PaymentDojoID:       in.DojoID,
		PaymentFamilyID:     in.FamilyID,
		PaymentStudentID:    in.StudentID,
		PaymentEnrollmentID: in.EnrollmentID,
		PaymentType:         in.PaymentType,
		PaymentStatus:       m.PaymentStatusPending,
		PaymentOrderID:      orderID,
		PaymentNote:         in.Note,
	}
	if in.Gateway != m.GatewayManual {
		gw := in.Gateway
		payment.PaymentGateway = &gw
		// Referensi di gateway = order id internal.
		payment.PaymentGatewayReference = &orderID
	}

	subtotal, _, total := RecomputeTotals(items, 0)
	payment.PaymentSubtotalCents = subtotal
	payment.PaymentTotalCents = total

	out := &CheckoutResult{}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal menyimpan payment")
		}
		for i := range items {
			items[i].PaymentItemPaymentID = payment.PaymentID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal menyimpan item payment")
		}

		if in.DiscountCode != nil && *in.DiscountCode != "" {
			discounts := &dsvc.DiscountService{DB: tx}
			res, err := discounts.Apply(ctx, in.DojoID, payment.PaymentID, *in.DiscountCode)
			if err != nil {
				return err
			}
			if !res.Valid {
				return fiber.NewError(fiber.StatusUnprocessableEntity, dsvc.ReasonMessage(res.Reason))
			}
			out.Discount = &res
		}

		// Muat ulang: Apply mengubah kolom diskon & total.
		if err := tx.
			Where("payment_id = ?", payment.PaymentID).
			First(&payment).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out.Payment = payment
	out.Items = items

	if in.Gateway == m.GatewayMidtrans {
		token, redirectURL, err := GenerateSnapToken(payment, in.PayerName, in.PayerEmail)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadGateway, "Gagal membuat token pembayaran")
		}
		out.SnapToken = &token
		out.RedirectURL = &redirectURL
	}

	return out, nil
}

// resolveItems memvalidasi tipe payment dan mengisi item dari fee
// program untuk tipe training bila item tidak dikirim.
func (s *CheckoutService) resolveItems(ctx context.Context, in *CheckoutInput) ([]m.PaymentItemModel, error) {
	switch in.PaymentType {
	case m.PaymentTypeMonthly, m.PaymentTypeYearly, m.PaymentTypePerSession,
		m.PaymentTypeStore, m.PaymentTypeEvent, m.PaymentTypeInvoice:
	default:
		return nil, fiber.NewError(fiber.StatusBadRequest, "Tipe payment tidak dikenal: "+in.PaymentType)
	}

	if m.IsTrainingType(in.PaymentType) {
		if in.EnrollmentID == nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "payment_enrollment_id wajib untuk iuran latihan")
		}

		var enr em.EnrollmentModel
		if err := s.DB.WithContext(ctx).
			Where("enrollment_id = ? AND enrollment_dojo_id = ?", *in.EnrollmentID, in.DojoID).
			First(&enr).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fiber.NewError(fiber.StatusBadRequest, "Enrollment tidak ditemukan")
			}
			return nil, err
		}
		if in.StudentID == nil {
			in.StudentID = &enr.EnrollmentStudentID
		}

		if len(in.Items) == 0 {
			var prog pm.ProgramModel
			if err := s.DB.WithContext(ctx).
				Where("program_id = ?", enr.EnrollmentProgramID).
				First(&prog).Error; err != nil {
				return nil, fiber.NewError(fiber.StatusInternalServerError, "Program enrollment tidak ditemukan")
			}
			fee := prog.FeeFor(in.PaymentType)
			if fee <= 0 {
				return nil, fiber.NewError(fiber.StatusBadRequest, "Program belum punya tarif untuk tipe ini")
			}
			in.Items = []CheckoutItem{{
				Description: "Iuran latihan " + prog.ProgramName,
				Qty:         1,
				UnitCents:   fee,
			}}
		}
	}

	if len(in.Items) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Item payment tidak boleh kosong")
	}

	rows := make([]m.PaymentItemModel, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Qty <= 0 {
			it.Qty = 1
		}
		if it.UnitCents < 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Harga item tidak boleh negatif")
		}
		rows = append(rows, m.PaymentItemModel{
			PaymentItemDescription: it.Description,
			PaymentItemQty:         it.Qty,
			PaymentItemUnitCents:   it.UnitCents,
			PaymentItemAmountCents: it.UnitCents * money.Cents(it.Qty),
		})
	}
	return rows, nil
}
