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

	dm "dojoku_backend/internals/features/billing/discounts/model"
	pm "dojoku_backend/internals/features/billing/payments/model"
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
		&dm.DiscountCodeModel{},
		&dm.DiscountUsageModel{},
		&pm.PaymentModel{},
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

func seedCode(t *testing.T, db *gorm.DB, dojoID uuid.UUID, mut func(*dm.DiscountCodeModel)) *dm.DiscountCodeModel {
	t.Helper()
	code := &dm.DiscountCodeModel{
		DiscountCodeDojoID:       dojoID,
		DiscountCodeCode:         "KARATE10",
		DiscountCodeKind:         dm.DiscountKindPercentage,
		DiscountCodeValue:        10,
		DiscountCodeUsageType:    dm.UsageTypeOngoing,
		DiscountCodeScope:        dm.ScopePerFamily,
		DiscountCodeApplicableTo: dm.ApplicableToBoth,
		DiscountCodeIsActive:     true,
	}
	if mut != nil {
		mut(code)
	}
	require.NoError(t, db.Create(code).Error)
	return code
}

func seedPayment(t *testing.T, db *gorm.DB, dojoID uuid.UUID, mut func(*pm.PaymentModel)) *pm.PaymentModel {
	t.Helper()
	pay := &pm.PaymentModel{
		PaymentDojoID:        dojoID,
		PaymentFamilyID:      uuid.New(),
		PaymentType:          pm.PaymentTypeMonthly,
		PaymentStatus:        pm.PaymentStatusPending,
		PaymentOrderID:       "PAY-" + uuid.NewString(),
		PaymentSubtotalCents: money.Cents(50000),
		PaymentTotalCents:    money.Cents(50000),
	}
	if mut != nil {
		mut(pay)
	}
	require.NoError(t, db.Create(pay).Error)
	return pay
}

func baseInput(dojoID uuid.UUID, code string) ValidationInput {
	return ValidationInput{
		DojoID:       dojoID,
		Code:         code,
		FamilyID:     uuid.New(),
		ApplicableTo: dm.ApplicableToTraining,
		Subtotal:     money.Cents(50000),
		At:           d(2025, 10, 15),
	}
}

/* ===============================
   Validate
=================================*/

func TestValidateReasonOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscountService(db)
	ctx := context.Background()
	dojoID := uuid.New()

	// Tidak ada kodenya sama sekali.
	res, err := svc.Validate(ctx, baseInput(dojoID, "TIDAKADA"))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonNotFound, res.Reason)
	assert.Equal(t, money.Cents(50000), res.FinalCents)

	seedCode(t, db, dojoID, func(c *dm.DiscountCodeModel) {
		c.DiscountCodeCode = "MATI"
		c.DiscountCodeIsActive = false
	})
	res, err = svc.Validate(ctx, baseInput(dojoID, "MATI"))
	require.NoError(t, err)
	assert.Equal(t, ReasonInactive, res.Reason)

	seedCode(t, db, dojoID, func(c *dm.DiscountCodeModel) {
		c.DiscountCodeCode = "BESOK"
		c.DiscountCodeValidFrom = dp(2025, 11, 1)
	})
	res, err = svc.Validate(ctx, baseInput(dojoID, "BESOK"))
	require.NoError(t, err)
	assert.Equal(t, ReasonNotYetValid, res.Reason)

	seedCode(t, db, dojoID, func(c *dm.DiscountCodeModel) {
		c.DiscountCodeCode = "LEWAT"
		c.DiscountCodeValidUntil = dp(2025, 9, 30)
	})
	res, err = svc.Validate(ctx, baseInput(dojoID, "LEWAT"))
	require.NoError(t, err)
	assert.Equal(t, ReasonExpired, res.Reason)

	seedCode(t, db, dojoID, func(c *dm.DiscountCodeModel) {
		c.DiscountCodeCode = "TOKO"
		c.DiscountCodeApplicableTo = dm.ApplicableToStore
	})
	res, err = svc.Validate(ctx, baseInput(dojoID, "TOKO"))
	require.NoError(t, err)
	assert.Equal(t, ReasonNotApplicable, res.Reason)
}

func TestValidateInputNormalized(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscountService(db)
	dojoID := uuid.New()

	seedCode(t, db, dojoID, nil)

	// Kode dari user boleh huruf kecil dan berspasi.
	res, err := svc.Validate(context.Background(), baseInput(dojoID, "  karate10 "))
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidateDateBoundariesInclusive(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscountService(db)
	ctx := context.Background()
	dojoID := uuid.New()

	seedCode(t, db, dojoID, func(c *dm.DiscountCodeModel) {
		c.DiscountCodeValidFrom = dp(2025, 10, 1)
		c.DiscountCodeValidUntil = dp(2025, 10, 31)
	})

	// Hari pertama dan hari terakhir masih berlaku.
	in := baseInput(dojoID, "KARATE10")
	in.At = d(2025, 10, 1)
	res, err := svc.Validate(ctx, in)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	in.At = d(2025, 10, 31)
	res, err = svc.Validate(ctx, in)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	in.At = d(2025, 11, 1)
	res, err = svc.Validate(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, ReasonExpired, res.Reason)
}

func TestValidateComputesAmounts(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscountService(db)
	ctx := context.Background()
	dojoID := uuid.New()

	seedCode(t, db, dojoID, func(c *dm.DiscountCodeModel) {
		c.DiscountCodeCode = "POTONG20"
		c.DiscountCodeKind = dm.DiscountKindFixedAmount
		c.DiscountCodeValue = 20000
	})

	in := baseInput(dojoID, "POTONG20")
	res, err := svc.Validate(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(20000), res.DiscountCents)
	assert.Equal(t, money.Cents(30000), res.FinalCents)

	// Potongan tetap tidak boleh melebihi subtotal.
	in.Subtotal = money.Cents(15000)
	res, err = svc.Validate(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(15000), res.DiscountCents)
	assert.Equal(t, money.Cents(0), res.FinalCents)

	// Persentase dibulatkan half-up di sen terakhir.
	seedCode(t, db, dojoID, func(c *dm.DiscountCodeModel) {
		c.DiscountCodeCode = "PERSEN15"
		c.DiscountCodeValue = 15
	})
	in = baseInput(dojoID, "PERSEN15")
	in.Subtotal = money.Cents(999)
	res, err = svc.Validate(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(150), res.DiscountCents)
	assert.Equal(t, money.Cents(849), res.FinalCents)

	// Plafon nominal untuk persentase.
	cap := money.Cents(20000)
	seedCode(t, db, dojoID, func(c *dm.DiscountCodeModel) {
		c.DiscountCodeCode = "SETENGAH"
		c.DiscountCodeValue = 50
		c.DiscountCodeMaxAmountCents = &cap
	})
	in = baseInput(dojoID, "SETENGAH")
	in.Subtotal = money.Cents(100000)
	res, err = svc.Validate(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(20000), res.DiscountCents)
	assert.Equal(t, money.Cents(80000), res.FinalCents)
}

func TestValidateScopePerStudentCountsSeparately(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscountService(db)
	ctx := context.Background()
	dojoID := uuid.New()
	familyID := uuid.New()
	kakak := uuid.New()
	adik := uuid.New()

	code := seedCode(t, db, dojoID, func(c *dm.DiscountCodeModel) {
		c.DiscountCodeUsageType = dm.UsageTypeOneTime
		c.DiscountCodeScope = dm.ScopePerStudent
	})

	// Si kakak sudah memakai kodenya.
	require.NoError(t, db.Create(&dm.DiscountUsageModel{
		DiscountUsageDojoID:    dojoID,
		DiscountUsageCodeID:    code.DiscountCodeID,
		DiscountUsagePaymentID: uuid.New(),
		DiscountUsageFamilyID:  familyID,
		DiscountUsageStudentID: &kakak,
		DiscountUsageScopeKey:  dm.ScopeKeyFor(dm.ScopePerStudent, familyID, &kakak),
		DiscountUsageScopeSeq:  1,
	}).Error)

	in := baseInput(dojoID, "KARATE10")
	in.FamilyID = familyID
	in.StudentID = &kakak
	res, err := svc.Validate(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, ReasonUsageExceeded, res.Reason)

	// Adiknya masih boleh.
	in.StudentID = &adik
	res, err = svc.Validate(ctx, in)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

/* ===============================
   Apply
=================================*/

func TestApplyLinksPaymentAndRecordsUsage(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscountService(db)
	ctx := context.Background()
	dojoID := uuid.New()

	code := seedCode(t, db, dojoID, nil)
	pay := seedPayment(t, db, dojoID, nil)

	res, err := svc.Apply(ctx, dojoID, pay.PaymentID, "karate10")
	require.NoError(t, err)
	require.True(t, res.Valid)
	assert.Equal(t, money.Cents(5000), res.DiscountCents)
	assert.Equal(t, money.Cents(45000), res.FinalCents)

	var updated pm.PaymentModel
	require.NoError(t, db.First(&updated, "payment_id = ?", pay.PaymentID).Error)
	require.NotNil(t, updated.PaymentDiscountCodeID)
	assert.Equal(t, code.DiscountCodeID, *updated.PaymentDiscountCodeID)
	assert.Equal(t, money.Cents(5000), updated.PaymentDiscountCents)
	assert.Equal(t, money.Cents(45000), updated.PaymentTotalCents)
	assert.Equal(t, pm.PaymentStatusPending, updated.PaymentStatus)

	var usage dm.DiscountUsageModel
	require.NoError(t, db.First(&usage, "discount_usage_payment_id = ?", pay.PaymentID).Error)
	assert.Equal(t, 1, usage.DiscountUsageScopeSeq)
	assert.Equal(t, money.Cents(50000), usage.DiscountUsageOriginalCents)

	var reloaded dm.DiscountCodeModel
	require.NoError(t, db.First(&reloaded, "discount_code_id = ?", code.DiscountCodeID).Error)
	assert.Equal(t, 1, reloaded.DiscountCodeCurrentUses)
}

func TestApplyOneTimeSecondUseRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscountService(db)
	ctx := context.Background()
	dojoID := uuid.New()
	familyID := uuid.New()

	code := seedCode(t, db, dojoID, func(c *dm.DiscountCodeModel) {
		c.DiscountCodeUsageType = dm.UsageTypeOneTime
	})
	pay1 := seedPayment(t, db, dojoID, func(p *pm.PaymentModel) { p.PaymentFamilyID = familyID })
	pay2 := seedPayment(t, db, dojoID, func(p *pm.PaymentModel) { p.PaymentFamilyID = familyID })

	res, err := svc.Apply(ctx, dojoID, pay1.PaymentID, "KARATE10")
	require.NoError(t, err)
	require.True(t, res.Valid)

	// Keluarga yang sama tidak bisa memakai kode one_time dua kali.
	res, err = svc.Apply(ctx, dojoID, pay2.PaymentID, "KARATE10")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonUsageExceeded, res.Reason)

	var count int64
	require.NoError(t, db.Model(&dm.DiscountUsageModel{}).
		Where("discount_usage_code_id = ?", code.DiscountCodeID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var untouched pm.PaymentModel
	require.NoError(t, db.First(&untouched, "payment_id = ?", pay2.PaymentID).Error)
	assert.Nil(t, untouched.PaymentDiscountCodeID)
	assert.Equal(t, money.Cents(50000), untouched.PaymentTotalCents)
}

func TestApplyGuardsPaymentState(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscountService(db)
	ctx := context.Background()
	dojoID := uuid.New()

	seedCode(t, db, dojoID, nil)

	// Payment tidak ada.
	_, err := svc.Apply(ctx, dojoID, uuid.New(), "KARATE10")
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusNotFound, fe.Code)

	// Payment sudah lunas.
	paid := seedPayment(t, db, dojoID, func(p *pm.PaymentModel) {
		p.PaymentStatus = pm.PaymentStatusSucceeded
	})
	_, err = svc.Apply(ctx, dojoID, paid.PaymentID, "KARATE10")
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusConflict, fe.Code)

	// Payment sudah memakai kode lain.
	other := uuid.New()
	taken := seedPayment(t, db, dojoID, func(p *pm.PaymentModel) {
		p.PaymentDiscountCodeID = &other
	})
	_, err = svc.Apply(ctx, dojoID, taken.PaymentID, "KARATE10")
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusConflict, fe.Code)
}

func TestApplyRejectionLeavesNoTrace(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscountService(db)
	ctx := context.Background()
	dojoID := uuid.New()

	// Kode khusus toko dipakai di payment latihan bulanan.
	code := seedCode(t, db, dojoID, func(c *dm.DiscountCodeModel) {
		c.DiscountCodeApplicableTo = dm.ApplicableToStore
	})
	pay := seedPayment(t, db, dojoID, nil)

	res, err := svc.Apply(ctx, dojoID, pay.PaymentID, "KARATE10")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonNotApplicable, res.Reason)

	var count int64
	require.NoError(t, db.Model(&dm.DiscountUsageModel{}).
		Where("discount_usage_code_id = ?", code.DiscountCodeID).
		Count(&count).Error)
	assert.Zero(t, count)

	var reloaded dm.DiscountCodeModel
	require.NoError(t, db.First(&reloaded, "discount_code_id = ?", code.DiscountCodeID).Error)
	assert.Zero(t, reloaded.DiscountCodeCurrentUses)
}

func TestUsageSerialUniqueGuard(t *testing.T) {
	db := newTestDB(t)
	dojoID := uuid.New()
	familyID := uuid.New()
	codeID := uuid.New()

	mk := func() *dm.DiscountUsageModel {
		return &dm.DiscountUsageModel{
			DiscountUsageDojoID:    dojoID,
			DiscountUsageCodeID:    codeID,
			DiscountUsagePaymentID: uuid.New(),
			DiscountUsageFamilyID:  familyID,
			DiscountUsageScopeKey:  dm.ScopeKeyFor(dm.ScopePerFamily, familyID, nil),
			DiscountUsageScopeSeq:  1,
		}
	}

	require.NoError(t, db.Create(mk()).Error)

	// Seq yang sama dalam scope yang sama = kalah balapan.
	err := db.Create(mk()).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
