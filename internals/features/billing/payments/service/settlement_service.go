// internals/features/billing/payments/service/settlement_service.go
//
// Satu-satunya jalur perubahan status payment. Webhook, konfirmasi
// manual, dan rekonsiliasi semuanya lewat Settle/Fail di sini; klaim
// status memakai UPDATE bersyarat WHERE payment_status='pending'
// sehingga hanya satu writer yang memproses efek samping (geser
// paid_until, aktivasi trial, event first_payment). Status terminal
// tidak pernah ditimpa.
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"dojoku_backend/internals/configs"
	attsvc "dojoku_backend/internals/features/attendance/attendances/service"
	am "dojoku_backend/internals/features/billing/automation/model"
	autosvc "dojoku_backend/internals/features/billing/automation/service"
	em "dojoku_backend/internals/features/billing/enrollments/model"
	esvc "dojoku_backend/internals/features/billing/enrollments/service"
	m "dojoku_backend/internals/features/billing/payments/model"
	"dojoku_backend/internals/observability/metrics"
)

var (
	// ErrPaymentNotFound: payment/order tidak dikenal.
	ErrPaymentNotFound = errors.New("payment tidak ditemukan")
)

type SettlementService struct {
	DB      *gorm.DB
	Billing configs.BillingConfig
	Metrics *metrics.BillingMetrics
}

func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{
		DB:      db,
		Billing: configs.LoadBillingConfig(),
		Metrics: metrics.Billing(),
	}
}

// FindByOrderID memuat payment dari order id internal (referensi
// gateway memakai nilai yang sama).
func (s *SettlementService) FindByOrderID(ctx context.Context, orderID string) (*m.PaymentModel, error) {
	var p m.PaymentModel
	if err := s.DB.WithContext(ctx).
		Where("payment_order_id = ?", orderID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Settle menandai payment lunas. changed=false berarti payment sudah
// terminal sebelumnya (pemanggilan ulang webhook / rekonsiliasi yang
// kalah cepat) dan tidak ada efek samping yang dijalankan lagi.
func (s *SettlementService) Settle(ctx context.Context, paymentID uuid.UUID, paidAt time.Time, receipt map[string]interface{}, source string) (*m.PaymentModel, bool, error) {
	var out m.PaymentModel
	changed := false

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		patch := map[string]interface{}{
			"payment_status":  m.PaymentStatusSucceeded,
			"payment_paid_at": paidAt,
		}
		if len(receipt) > 0 {
			patch["payment_receipt"] = datatypes.JSONMap(receipt)
		}

		res := tx.Model(&m.PaymentModel{}).
			Where("payment_id = ? AND payment_status = ?", paymentID, m.PaymentStatusPending).
			Updates(patch)
		if res.Error != nil {
			return res.Error
		}

		if err := tx.Where("payment_id = ?", paymentID).First(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		if res.RowsAffected == 0 {
			// Sudah terminal; biarkan apa adanya.
			return nil
		}
		changed = true

		if err := s.afterSettle(ctx, tx, &out, paidAt); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if changed {
		s.Metrics.IncPaymentResolved(source, m.PaymentStatusSucceeded)
		log.Printf("[INFO] ✅ payment %s lunas via %s (total %s)", out.PaymentOrderID, source, out.PaymentTotalCents.String())
	}
	return &out, changed, nil
}

// afterSettle menjalankan efek samping pemenang klaim dalam transaksi
// yang sama: geser paid_until, aktivasi trial, event first_payment.
func (s *SettlementService) afterSettle(ctx context.Context, tx *gorm.DB, p *m.PaymentModel, paidAt time.Time) error {
	if m.IsTrainingType(p.PaymentType) && p.PaymentEnrollmentID != nil {
		var enr em.EnrollmentModel
		if err := tx.Where("enrollment_id = ?", *p.PaymentEnrollmentID).First(&enr).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("[WARN] payment %s menunjuk enrollment yang hilang, lewati geser paid_until", p.PaymentOrderID)
				return nil
			}
			return err
		}

		calc := esvc.NewCalculator(
			s.Billing.GracePeriodDays,
			s.Billing.AttendanceLookbackDays,
			&attsvc.AttendanceService{DB: tx},
		)
		newPaidUntil, rule, advanced, err := calc.ComputePaidUntil(ctx, &enr, paidAt, p.PaymentType)
		if err != nil {
			return err
		}

		enrollments := &esvc.EnrollmentService{DB: tx}
		if advanced {
			moved, err := enrollments.AdvancePaidUntil(ctx, enr.EnrollmentID, newPaidUntil)
			if err != nil {
				return err
			}
			if !moved {
				// paid_until sudah lebih jauh; tetap catat rule untuk audit.
				log.Printf("[INFO] paid_until enrollment %s sudah melewati %s, tidak digeser", enr.EnrollmentID, newPaidUntil.Format("2006-01-02"))
			}

			if err := tx.Model(&m.PaymentModel{}).
				Where("payment_id = ?", p.PaymentID).
				Update("payment_applied_rule", rule).Error; err != nil {
				return err
			}
			p.PaymentAppliedRule = &rule
		}

		if err := enrollments.ActivateFromTrial(ctx, enr.EnrollmentID); err != nil {
			return err
		}
	}

	// Pembayaran sukses pertama keluarga memicu event first_payment.
	// Dua payment keluarga yang sama yang settle bersamaan bisa sama-sama
	// menghitung succeeded == 1 dan mengirim event ganda; itu aman karena
	// grant di engine diserialisasi unique index (rule, subject, seq),
	// sehingga diskon tetap terbit paling banyak sekali.
	var succeeded int64
	if err := tx.Model(&m.PaymentModel{}).
		Where("payment_family_id = ? AND payment_status = ?", p.PaymentFamilyID, m.PaymentStatusSucceeded).
		Count(&succeeded).Error; err != nil {
		return err
	}
	if succeeded == 1 {
		engine := &autosvc.EngineService{DB: tx, Metrics: s.Metrics}
		famID := p.PaymentFamilyID
		if _, err := engine.RecordEvent(ctx, p.PaymentDojoID, am.EventFirstPayment, p.PaymentStudentID, &famID, map[string]interface{}{
			"payment_id":   p.PaymentID.String(),
			"payment_type": p.PaymentType,
			"total_cents":  int64(p.PaymentTotalCents),
		}); err != nil {
			return err
		}
	}

	return nil
}

// Fail menandai payment gagal. Sama seperti Settle: kondisional,
// idempoten, tidak menimpa terminal.
func (s *SettlementService) Fail(ctx context.Context, paymentID uuid.UUID, reason string, receipt map[string]interface{}, source string) (*m.PaymentModel, bool, error) {
	var out m.PaymentModel
	changed := false

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		patch := map[string]interface{}{
			"payment_status": m.PaymentStatusFailed,
		}
		if reason != "" {
			patch["payment_note"] = reason
		}
		if len(receipt) > 0 {
			patch["payment_receipt"] = datatypes.JSONMap(receipt)
		}

		res := tx.Model(&m.PaymentModel{}).
			Where("payment_id = ? AND payment_status = ?", paymentID, m.PaymentStatusPending).
			Updates(patch)
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected > 0

		if err := tx.Where("payment_id = ?", paymentID).First(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if changed {
		s.Metrics.IncPaymentResolved(source, m.PaymentStatusFailed)
		log.Printf("[INFO] ❌ payment %s gagal via %s: %s", out.PaymentOrderID, source, reason)
	}
	return &out, changed, nil
}
