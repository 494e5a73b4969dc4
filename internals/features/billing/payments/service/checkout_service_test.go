package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	attm "dojoku_backend/internals/features/attendance/attendances/model"
	am "dojoku_backend/internals/features/billing/automation/model"
	dm "dojoku_backend/internals/features/billing/discounts/model"
	em "dojoku_backend/internals/features/billing/enrollments/model"
	m "dojoku_backend/internals/features/billing/payments/model"
	prm "dojoku_backend/internals/features/dojo/programs/model"
	"dojoku_backend/internals/helpers/money"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(
		&m.PaymentModel{},
		&m.PaymentItemModel{},
		&em.EnrollmentModel{},
		&prm.ProgramModel{},
		&dm.DiscountCodeModel{},
		&dm.DiscountUsageModel{},
		&am.DiscountEventModel{},
		&attm.AttendanceModel{},
	))
	return db
}

func d(y int, mo time.Month, day int) time.Time {
	return time.Date(y, mo, day, 0, 0, 0, 0, time.UTC)
}

func dp(y int, mo time.Month, day int) *time.Time {
	t := d(y, mo, day)
	return &t
}

func seedProgram(t *testing.T, db *gorm.DB, dojoID uuid.UUID, mut func(*prm.ProgramModel)) *prm.ProgramModel {
	t.Helper()
	prog := &prm.ProgramModel{
		ProgramDojoID:     dojoID,
		ProgramCode:       "KARATE",
		ProgramName:       "Karate Remaja",
		ProgramMonthlyFee: money.Cents(30000),
		ProgramYearlyFee:  money.Cents(300000),
		ProgramIsActive:   true,
	}
	if mut != nil {
		mut(prog)
	}
	require.NoError(t, db.Create(prog).Error)
	return prog
}

func seedEnrollment(t *testing.T, db *gorm.DB, dojoID, programID uuid.UUID, mut func(*em.EnrollmentModel)) *em.EnrollmentModel {
	t.Helper()
	enr := &em.EnrollmentModel{
		EnrollmentDojoID:      dojoID,
		EnrollmentStudentID:   uuid.New(),
		EnrollmentProgramID:   programID,
		EnrollmentBillingType: em.BillingTypeMonthly,
		EnrollmentStatus:      em.EnrollmentStatusActive,
		EnrollmentStartedAt:   d(2025, 1, 1),
	}
	if mut != nil {
		mut(enr)
	}
	require.NoError(t, db.Create(enr).Error)
	return enr
}

func seedPendingPayment(t *testing.T, db *gorm.DB, dojoID uuid.UUID, mut func(*m.PaymentModel)) *m.PaymentModel {
	t.Helper()
	pay := &m.PaymentModel{
		PaymentDojoID:        dojoID,
		PaymentFamilyID:      uuid.New(),
		PaymentType:          m.PaymentTypeMonthly,
		PaymentStatus:        m.PaymentStatusPending,
		PaymentOrderID:       "PAY-" + uuid.NewString(),
		PaymentSubtotalCents: money.Cents(30000),
		PaymentTotalCents:    money.Cents(30000),
	}
	if mut != nil {
		mut(pay)
	}
	require.NoError(t, db.Create(pay).Error)
	return pay
}

/* ===============================
   RecomputeTotals
=================================*/

func TestRecomputeTotals(t *testing.T) {
	items := []m.PaymentItemModel{
		{PaymentItemAmountCents: money.Cents(30000)},
		{PaymentItemAmountCents: money.Cents(20000)},
	}

	subtotal, capped, total := RecomputeTotals(items, money.Cents(10000))
	assert.Equal(t, money.Cents(50000), subtotal)
	assert.Equal(t, money.Cents(10000), capped)
	assert.Equal(t, money.Cents(40000), total)

	// Diskon melebihi subtotal dipatok, total berhenti di nol.
	_, capped, total = RecomputeTotals(items, money.Cents(999999))
	assert.Equal(t, money.Cents(50000), capped)
	assert.Equal(t, money.Cents(0), total)

	// Diskon negatif tidak menambah tagihan.
	_, capped, total = RecomputeTotals(items, money.Cents(-500))
	assert.Equal(t, money.Cents(0), capped)
	assert.Equal(t, money.Cents(50000), total)
}

/* ===============================
   Checkout
=================================*/

func TestCheckoutTrainingFillsItemsFromProgramFee(t *testing.T) {
	db := newTestDB(t)
	svc := NewCheckoutService(db)
	ctx := context.Background()

	dojoID := uuid.New()
	prog := seedProgram(t, db, dojoID, nil)
	enr := seedEnrollment(t, db, dojoID, prog.ProgramID, nil)

	out, err := svc.Checkout(ctx, CheckoutInput{
		DojoID:       dojoID,
		FamilyID:     uuid.New(),
		EnrollmentID: &enr.EnrollmentID,
		PaymentType:  m.PaymentTypeMonthly,
	})
	require.NoError(t, err)

	assert.Equal(t, m.PaymentStatusPending, out.Payment.PaymentStatus)
	assert.True(t, strings.HasPrefix(out.Payment.PaymentOrderID, "PAY-"))
	assert.Equal(t, money.Cents(30000), out.Payment.PaymentSubtotalCents)
	assert.Equal(t, money.Cents(30000), out.Payment.PaymentTotalCents)
	assert.Nil(t, out.Payment.PaymentGateway)

	// Siswa terisi otomatis dari enrollment.
	require.NotNil(t, out.Payment.PaymentStudentID)
	assert.Equal(t, enr.EnrollmentStudentID, *out.Payment.PaymentStudentID)

	require.Len(t, out.Items, 1)
	assert.Equal(t, "Iuran latihan Karate Remaja", out.Items[0].PaymentItemDescription)
	assert.Equal(t, money.Cents(30000), out.Items[0].PaymentItemAmountCents)

	var saved int64
	require.NoError(t, db.Model(&m.PaymentItemModel{}).
		Where("payment_item_payment_id = ?", out.Payment.PaymentID).
		Count(&saved).Error)
	assert.EqualValues(t, 1, saved)
}

func TestCheckoutValidatesInput(t *testing.T) {
	db := newTestDB(t)
	svc := NewCheckoutService(db)
	ctx := context.Background()
	dojoID := uuid.New()

	var fe *fiber.Error

	// Tipe tidak dikenal.
	_, err := svc.Checkout(ctx, CheckoutInput{DojoID: dojoID, FamilyID: uuid.New(), PaymentType: "arisan"})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)

	// Iuran latihan tanpa enrollment.
	_, err = svc.Checkout(ctx, CheckoutInput{DojoID: dojoID, FamilyID: uuid.New(), PaymentType: m.PaymentTypeMonthly})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)

	// Pembelian toko tanpa item.
	_, err = svc.Checkout(ctx, CheckoutInput{DojoID: dojoID, FamilyID: uuid.New(), PaymentType: m.PaymentTypeStore})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
}

func TestCheckoutRejectsProgramWithoutFee(t *testing.T) {
	db := newTestDB(t)
	svc := NewCheckoutService(db)
	ctx := context.Background()

	dojoID := uuid.New()
	prog := seedProgram(t, db, dojoID, func(p *prm.ProgramModel) {
		p.ProgramSessionFee = 0
	})
	enr := seedEnrollment(t, db, dojoID, prog.ProgramID, func(e *em.EnrollmentModel) {
		e.EnrollmentBillingType = em.BillingTypePerSession
	})

	_, err := svc.Checkout(ctx, CheckoutInput{
		DojoID:       dojoID,
		FamilyID:     uuid.New(),
		EnrollmentID: &enr.EnrollmentID,
		PaymentType:  m.PaymentTypePerSession,
	})
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
}

func TestCheckoutStoreSumsItems(t *testing.T) {
	db := newTestDB(t)
	svc := NewCheckoutService(db)
	ctx := context.Background()

	out, err := svc.Checkout(ctx, CheckoutInput{
		DojoID:      uuid.New(),
		FamilyID:    uuid.New(),
		PaymentType: m.PaymentTypeStore,
		Items: []CheckoutItem{
			{Description: "Seragam karate", Qty: 2, UnitCents: money.Cents(15000)},
			{Description: "Pelindung tangan", UnitCents: money.Cents(5000)}, // qty kosong = 1
		},
	})
	require.NoError(t, err)

	assert.Equal(t, money.Cents(35000), out.Payment.PaymentSubtotalCents)
	require.Len(t, out.Items, 2)
	assert.Equal(t, money.Cents(30000), out.Items[0].PaymentItemAmountCents)
	assert.Equal(t, 1, out.Items[1].PaymentItemQty)
}

func TestCheckoutAppliesDiscountInSameTransaction(t *testing.T) {
	db := newTestDB(t)
	svc := NewCheckoutService(db)
	ctx := context.Background()
	dojoID := uuid.New()

	require.NoError(t, db.Create(&dm.DiscountCodeModel{
		DiscountCodeDojoID:       dojoID,
		DiscountCodeCode:         "HEMAT10",
		DiscountCodeKind:         dm.DiscountKindPercentage,
		DiscountCodeValue:        10,
		DiscountCodeUsageType:    dm.UsageTypeOngoing,
		DiscountCodeScope:        dm.ScopePerFamily,
		DiscountCodeApplicableTo: dm.ApplicableToBoth,
		DiscountCodeIsActive:     true,
	}).Error)

	code := "hemat10"
	out, err := svc.Checkout(ctx, CheckoutInput{
		DojoID:       dojoID,
		FamilyID:     uuid.New(),
		PaymentType:  m.PaymentTypeStore,
		DiscountCode: &code,
		Items:        []CheckoutItem{{Description: "Seragam", Qty: 1, UnitCents: money.Cents(50000)}},
	})
	require.NoError(t, err)

	require.NotNil(t, out.Discount)
	assert.True(t, out.Discount.Valid)
	assert.Equal(t, money.Cents(5000), out.Payment.PaymentDiscountCents)
	assert.Equal(t, money.Cents(45000), out.Payment.PaymentTotalCents)
	assert.NotNil(t, out.Payment.PaymentDiscountCodeID)

	var usages int64
	require.NoError(t, db.Model(&dm.DiscountUsageModel{}).Count(&usages).Error)
	assert.EqualValues(t, 1, usages)
}

func TestCheckoutDiscountRejectionAbortsEverything(t *testing.T) {
	db := newTestDB(t)
	svc := NewCheckoutService(db)
	ctx := context.Background()
	dojoID := uuid.New()

	require.NoError(t, db.Create(&dm.DiscountCodeModel{
		DiscountCodeDojoID:       dojoID,
		DiscountCodeCode:         "BASI",
		DiscountCodeKind:         dm.DiscountKindFixedAmount,
		DiscountCodeValue:        10000,
		DiscountCodeUsageType:    dm.UsageTypeOngoing,
		DiscountCodeScope:        dm.ScopePerFamily,
		DiscountCodeApplicableTo: dm.ApplicableToBoth,
		DiscountCodeValidUntil:   dp(2024, 1, 1),
		DiscountCodeIsActive:     true,
	}).Error)

	code := "BASI"
	_, err := svc.Checkout(ctx, CheckoutInput{
		DojoID:       dojoID,
		FamilyID:     uuid.New(),
		PaymentType:  m.PaymentTypeStore,
		DiscountCode: &code,
		Items:        []CheckoutItem{{Description: "Seragam", Qty: 1, UnitCents: money.Cents(50000)}},
	})
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusUnprocessableEntity, fe.Code)
	assert.Equal(t, "Kode diskon sudah kedaluwarsa", fe.Message)

	// Seluruh transaksi batal: tidak ada payment maupun item tersisa.
	var payments, items int64
	require.NoError(t, db.Model(&m.PaymentModel{}).Count(&payments).Error)
	require.NoError(t, db.Model(&m.PaymentItemModel{}).Count(&items).Error)
	assert.Zero(t, payments)
	assert.Zero(t, items)
}
