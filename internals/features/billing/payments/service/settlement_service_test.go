package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dojoku_backend/internals/configs"
	attm "dojoku_backend/internals/features/attendance/attendances/model"
	am "dojoku_backend/internals/features/billing/automation/model"
	em "dojoku_backend/internals/features/billing/enrollments/model"
	m "dojoku_backend/internals/features/billing/payments/model"
	prm "dojoku_backend/internals/features/dojo/programs/model"
	"dojoku_backend/internals/helpers/money"
)

func newSettlement(db *gorm.DB) *SettlementService {
	return &SettlementService{
		DB: db,
		Billing: configs.BillingConfig{
			GracePeriodDays:        7,
			AttendanceLookbackDays: 30,
		},
	}
}

func countFirstPaymentEvents(t *testing.T, db *gorm.DB, familyID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&am.DiscountEventModel{}).
		Where("discount_event_type = ? AND discount_event_family_id = ?", am.EventFirstPayment, familyID).
		Count(&n).Error)
	return n
}

func TestSettleFirstTrainingPayment(t *testing.T) {
	db := newTestDB(t)
	svc := newSettlement(db)
	ctx := context.Background()

	dojoID := uuid.New()
	familyID := uuid.New()
	prog := seedProgram(t, db, dojoID, nil)
	enr := seedEnrollment(t, db, dojoID, prog.ProgramID, func(e *em.EnrollmentModel) {
		e.EnrollmentStatus = em.EnrollmentStatusTrial
	})
	pay := seedPendingPayment(t, db, dojoID, func(p *m.PaymentModel) {
		p.PaymentFamilyID = familyID
		p.PaymentStudentID = &enr.EnrollmentStudentID
		p.PaymentEnrollmentID = &enr.EnrollmentID
	})

	out, changed, err := svc.Settle(ctx, pay.PaymentID, d(2025, 10, 5),
		map[string]interface{}{"via": "uji"}, "webhook")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, m.PaymentStatusSucceeded, out.PaymentStatus)
	require.NotNil(t, out.PaymentPaidAt)
	assert.Equal(t, "uji", out.PaymentReceipt["via"])

	// Bayar pertama tanpa paid_until lama: anchor tanggal bayar.
	require.NotNil(t, out.PaymentAppliedRule)
	assert.Equal(t, "default", *out.PaymentAppliedRule)

	var reloaded em.EnrollmentModel
	require.NoError(t, db.First(&reloaded, "enrollment_id = ?", enr.EnrollmentID).Error)
	assert.Equal(t, em.EnrollmentStatusActive, reloaded.EnrollmentStatus)
	require.NotNil(t, reloaded.EnrollmentPaidUntil)
	assert.Equal(t, "2025-11-05", reloaded.EnrollmentPaidUntil.UTC().Format("2006-01-02"))

	assert.EqualValues(t, 1, countFirstPaymentEvents(t, db, familyID))

	// Webhook datang dua kali: tidak ada efek samping kedua.
	_, changed, err = svc.Settle(ctx, pay.PaymentID, d(2025, 10, 6), nil, "webhook")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.EqualValues(t, 1, countFirstPaymentEvents(t, db, familyID))

	require.NoError(t, db.First(&reloaded, "enrollment_id = ?", enr.EnrollmentID).Error)
	assert.Equal(t, "2025-11-05", reloaded.EnrollmentPaidUntil.UTC().Format("2006-01-02"))
}

func TestSettleExtensionAnchorsOnOldPaidUntil(t *testing.T) {
	db := newTestDB(t)
	svc := newSettlement(db)
	ctx := context.Background()

	dojoID := uuid.New()
	familyID := uuid.New()
	prog := seedProgram(t, db, dojoID, nil)
	enr := seedEnrollment(t, db, dojoID, prog.ProgramID, func(e *em.EnrollmentModel) {
		e.EnrollmentPaidUntil = dp(2025, 10, 1)
	})

	// Keluarga sudah pernah bayar sukses sebelumnya.
	seedPendingPayment(t, db, dojoID, func(p *m.PaymentModel) {
		p.PaymentFamilyID = familyID
		p.PaymentStatus = m.PaymentStatusSucceeded
	})

	pay := seedPendingPayment(t, db, dojoID, func(p *m.PaymentModel) {
		p.PaymentFamilyID = familyID
		p.PaymentEnrollmentID = &enr.EnrollmentID
	})

	out, changed, err := svc.Settle(ctx, pay.PaymentID, d(2025, 9, 20), nil, "confirm")
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, out.PaymentAppliedRule)
	assert.Equal(t, "extension", *out.PaymentAppliedRule)

	var reloaded em.EnrollmentModel
	require.NoError(t, db.First(&reloaded, "enrollment_id = ?", enr.EnrollmentID).Error)
	assert.Equal(t, "2025-11-01", reloaded.EnrollmentPaidUntil.UTC().Format("2006-01-02"))

	// Bukan pembayaran sukses pertama keluarga.
	assert.Zero(t, countFirstPaymentEvents(t, db, familyID))
}

func TestSettleAttendanceCreditConsultsAttendance(t *testing.T) {
	db := newTestDB(t)
	svc := newSettlement(db)
	ctx := context.Background()

	dojoID := uuid.New()
	prog := seedProgram(t, db, dojoID, nil)
	enr := seedEnrollment(t, db, dojoID, prog.ProgramID, func(e *em.EnrollmentModel) {
		e.EnrollmentPaidUntil = dp(2025, 10, 1)
	})

	// Siswa tetap hadir setelah masa bayar habis.
	require.NoError(t, db.Create(&attm.AttendanceModel{
		AttendanceDojoID:      dojoID,
		AttendanceStudentID:   enr.EnrollmentStudentID,
		AttendanceDate:        d(2025, 10, 3),
		AttendanceCheckedInAt: d(2025, 10, 3),
	}).Error)

	pay := seedPendingPayment(t, db, dojoID, func(p *m.PaymentModel) {
		p.PaymentEnrollmentID = &enr.EnrollmentID
	})

	// Telat 14 hari, lewat masa tenggang, tapi kehadiran menyelamatkan anchor.
	out, _, err := svc.Settle(ctx, pay.PaymentID, d(2025, 10, 15), nil, "confirm")
	require.NoError(t, err)
	require.NotNil(t, out.PaymentAppliedRule)
	assert.Equal(t, "attendance_credit", *out.PaymentAppliedRule)

	var reloaded em.EnrollmentModel
	require.NoError(t, db.First(&reloaded, "enrollment_id = ?", enr.EnrollmentID).Error)
	assert.Equal(t, "2025-11-01", reloaded.EnrollmentPaidUntil.UTC().Format("2006-01-02"))
}

func TestSettlePerSessionLeavesPaidUntilAlone(t *testing.T) {
	db := newTestDB(t)
	svc := newSettlement(db)
	ctx := context.Background()

	dojoID := uuid.New()
	prog := seedProgram(t, db, dojoID, func(p *prm.ProgramModel) {
		p.ProgramSessionFee = money.Cents(10000)
	})
	enr := seedEnrollment(t, db, dojoID, prog.ProgramID, func(e *em.EnrollmentModel) {
		e.EnrollmentBillingType = em.BillingTypePerSession
		e.EnrollmentPaidUntil = dp(2025, 10, 1)
	})
	pay := seedPendingPayment(t, db, dojoID, func(p *m.PaymentModel) {
		p.PaymentType = m.PaymentTypePerSession
		p.PaymentEnrollmentID = &enr.EnrollmentID
	})

	out, changed, err := svc.Settle(ctx, pay.PaymentID, d(2025, 10, 20), nil, "confirm")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, m.PaymentStatusSucceeded, out.PaymentStatus)
	assert.Nil(t, out.PaymentAppliedRule)

	var reloaded em.EnrollmentModel
	require.NoError(t, db.First(&reloaded, "enrollment_id = ?", enr.EnrollmentID).Error)
	assert.Equal(t, "2025-10-01", reloaded.EnrollmentPaidUntil.UTC().Format("2006-01-02"))
}

func TestSettleStorePaymentSkipsEnrollmentEffects(t *testing.T) {
	db := newTestDB(t)
	svc := newSettlement(db)
	ctx := context.Background()

	dojoID := uuid.New()
	familyID := uuid.New()
	pay := seedPendingPayment(t, db, dojoID, func(p *m.PaymentModel) {
		p.PaymentType = m.PaymentTypeStore
		p.PaymentFamilyID = familyID
	})

	out, changed, err := svc.Settle(ctx, pay.PaymentID, d(2025, 10, 5), nil, "webhook")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, m.PaymentStatusSucceeded, out.PaymentStatus)
	assert.Nil(t, out.PaymentAppliedRule)

	// Pembelian toko tetap bisa jadi pembayaran sukses pertama keluarga.
	assert.EqualValues(t, 1, countFirstPaymentEvents(t, db, familyID))
}

func TestFailIsTerminalAndIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newSettlement(db)
	ctx := context.Background()

	dojoID := uuid.New()
	pay := seedPendingPayment(t, db, dojoID, nil)

	out, changed, err := svc.Fail(ctx, pay.PaymentID, "saldo tidak cukup", nil, "webhook")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, m.PaymentStatusFailed, out.PaymentStatus)
	require.NotNil(t, out.PaymentNote)
	assert.Equal(t, "saldo tidak cukup", *out.PaymentNote)

	// Settle yang datang terlambat tidak membangkitkan payment gagal.
	out, changed, err = svc.Settle(ctx, pay.PaymentID, d(2025, 10, 5), nil, "reconcile")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, m.PaymentStatusFailed, out.PaymentStatus)

	_, changed, err = svc.Fail(ctx, pay.PaymentID, "ulang", nil, "webhook")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSettleUnknownPayment(t *testing.T) {
	db := newTestDB(t)
	svc := newSettlement(db)

	_, _, err := svc.Settle(context.Background(), uuid.New(), d(2025, 10, 5), nil, "webhook")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestFindByOrderID(t *testing.T) {
	db := newTestDB(t)
	svc := newSettlement(db)
	ctx := context.Background()

	pay := seedPendingPayment(t, db, uuid.New(), nil)

	found, err := svc.FindByOrderID(ctx, pay.PaymentOrderID)
	require.NoError(t, err)
	assert.Equal(t, pay.PaymentID, found.PaymentID)

	_, err = svc.FindByOrderID(ctx, "PAY-tidak-ada")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}
