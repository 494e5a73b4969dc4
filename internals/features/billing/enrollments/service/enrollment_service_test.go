package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	m "dojoku_backend/internals/features/billing/enrollments/model"
	"dojoku_backend/internals/helpers/dates"
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
	require.NoError(t, db.AutoMigrate(&m.EnrollmentModel{}))
	return db
}

func seedEnrollment(t *testing.T, db *gorm.DB, mut func(*m.EnrollmentModel)) *m.EnrollmentModel {
	t.Helper()
	enr := &m.EnrollmentModel{
		EnrollmentDojoID:      uuid.New(),
		EnrollmentStudentID:   uuid.New(),
		EnrollmentProgramID:   uuid.New(),
		EnrollmentBillingType: m.BillingTypeMonthly,
		EnrollmentStatus:      m.EnrollmentStatusActive,
		EnrollmentStartedAt:   d(2025, 1, 1),
	}
	if mut != nil {
		mut(enr)
	}
	require.NoError(t, db.Create(enr).Error)
	return enr
}

func sameDay(t *testing.T, want time.Time, got *time.Time) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.Format("2006-01-02"), got.UTC().Format("2006-01-02"))
}

func TestFindForStudentPrefersActiveOverTrial(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	dojoID := uuid.New()
	studentID := uuid.New()

	trial := seedEnrollment(t, db, func(e *m.EnrollmentModel) {
		e.EnrollmentDojoID = dojoID
		e.EnrollmentStudentID = studentID
		e.EnrollmentStatus = m.EnrollmentStatusTrial
	})
	active := seedEnrollment(t, db, func(e *m.EnrollmentModel) {
		e.EnrollmentDojoID = dojoID
		e.EnrollmentStudentID = studentID
	})

	got, err := svc.FindForStudent(ctx, dojoID, studentID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, active.EnrollmentID, got.EnrollmentID)
	assert.NotEqual(t, trial.EnrollmentID, got.EnrollmentID)
}

func TestFindForStudentIgnoresInactiveAndOtherDojo(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	dojoID := uuid.New()
	studentID := uuid.New()

	seedEnrollment(t, db, func(e *m.EnrollmentModel) {
		e.EnrollmentDojoID = dojoID
		e.EnrollmentStudentID = studentID
		e.EnrollmentStatus = m.EnrollmentStatusDropped
	})
	// Enrollment aktif milik dojo lain tidak boleh bocor.
	seedEnrollment(t, db, func(e *m.EnrollmentModel) {
		e.EnrollmentStudentID = studentID
	})

	got, err := svc.FindForStudent(ctx, dojoID, studentID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAdvancePaidUntilOnlyMovesForward(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	enr := seedEnrollment(t, db, nil)

	// NULL -> terisi.
	moved, err := svc.AdvancePaidUntil(ctx, enr.EnrollmentID, d(2025, 11, 1))
	require.NoError(t, err)
	assert.True(t, moved)

	// Mundur ditolak tanpa error, nilai tidak berubah.
	moved, err = svc.AdvancePaidUntil(ctx, enr.EnrollmentID, d(2025, 10, 1))
	require.NoError(t, err)
	assert.False(t, moved)

	var row m.EnrollmentModel
	require.NoError(t, db.First(&row, "enrollment_id = ?", enr.EnrollmentID).Error)
	sameDay(t, d(2025, 11, 1), row.EnrollmentPaidUntil)

	// Maju lagi tetap boleh.
	moved, err = svc.AdvancePaidUntil(ctx, enr.EnrollmentID, d(2025, 12, 1))
	require.NoError(t, err)
	assert.True(t, moved)

	require.NoError(t, db.First(&row, "enrollment_id = ?", enr.EnrollmentID).Error)
	sameDay(t, d(2025, 12, 1), row.EnrollmentPaidUntil)
}

func TestActivateFromTrialIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	enr := seedEnrollment(t, db, func(e *m.EnrollmentModel) {
		e.EnrollmentStatus = m.EnrollmentStatusTrial
	})

	require.NoError(t, svc.ActivateFromTrial(ctx, enr.EnrollmentID))
	require.NoError(t, svc.ActivateFromTrial(ctx, enr.EnrollmentID))

	var row m.EnrollmentModel
	require.NoError(t, db.First(&row, "enrollment_id = ?", enr.EnrollmentID).Error)
	assert.Equal(t, m.EnrollmentStatusActive, row.EnrollmentStatus)
}

func TestActivateFromTrialLeavesInactiveAlone(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db)

	enr := seedEnrollment(t, db, func(e *m.EnrollmentModel) {
		e.EnrollmentStatus = m.EnrollmentStatusInactive
	})

	require.NoError(t, svc.ActivateFromTrial(context.Background(), enr.EnrollmentID))

	var row m.EnrollmentModel
	require.NoError(t, db.First(&row, "enrollment_id = ?", enr.EnrollmentID).Error)
	assert.Equal(t, m.EnrollmentStatusInactive, row.EnrollmentStatus)
}

func TestOverridePaidUntilMayMoveBackward(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	enr := seedEnrollment(t, db, func(e *m.EnrollmentModel) {
		e.EnrollmentPaidUntil = dp(2025, 11, 1)
	})

	row, err := svc.OverridePaidUntil(ctx, enr.EnrollmentDojoID, enr.EnrollmentID, d(2025, 10, 1))
	require.NoError(t, err)
	sameDay(t, d(2025, 10, 1), row.EnrollmentPaidUntil)

	// Dojo lain tidak boleh menyentuh.
	_, err = svc.OverridePaidUntil(ctx, uuid.New(), enr.EnrollmentID, d(2025, 9, 1))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListExpiringWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	dojoID := uuid.New()
	today := dates.Today()

	within := seedEnrollment(t, db, func(e *m.EnrollmentModel) {
		e.EnrollmentDojoID = dojoID
		pu := dates.AddDays(today, 3)
		e.EnrollmentPaidUntil = &pu
	})
	lapsed := seedEnrollment(t, db, func(e *m.EnrollmentModel) {
		e.EnrollmentDojoID = dojoID
		pu := dates.AddDays(today, -2)
		e.EnrollmentPaidUntil = &pu
	})
	// Masih jauh dari habis: di luar jendela.
	seedEnrollment(t, db, func(e *m.EnrollmentModel) {
		e.EnrollmentDojoID = dojoID
		pu := dates.AddDays(today, 30)
		e.EnrollmentPaidUntil = &pu
	})
	// Belum pernah bayar: tidak masuk daftar.
	seedEnrollment(t, db, func(e *m.EnrollmentModel) {
		e.EnrollmentDojoID = dojoID
	})

	rows, total, err := svc.ListExpiring(ctx, dojoID, 7, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)

	// Terdekat habisnya duluan: yang sudah lewat tampil pertama.
	assert.Equal(t, lapsed.EnrollmentID, rows[0].EnrollmentID)
	assert.Equal(t, within.EnrollmentID, rows[1].EnrollmentID)
}
