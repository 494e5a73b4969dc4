package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "dojoku_backend/internals/features/billing/enrollments/model"
)

func d(y int, mo time.Month, day int) time.Time {
	return time.Date(y, mo, day, 0, 0, 0, 0, time.UTC)
}

func dp(y int, mo time.Month, day int) *time.Time {
	t := d(y, mo, day)
	return &t
}

type fakeAttendance struct {
	visits []time.Time
	err    error
}

func (f *fakeAttendance) AttendanceAfter(_ context.Context, _ uuid.UUID, _ time.Time) ([]time.Time, error) {
	return f.visits, f.err
}

func calc(lookup AttendanceLookup) *Calculator {
	return NewCalculator(7, 30, lookup)
}

/* ===============================
   Eligibility
=================================*/

func TestEligibilityStatuses(t *testing.T) {
	today := d(2025, 10, 10)

	assert.Equal(t, EligibilityNotEnrolled, Eligibility(nil, today))

	assert.Equal(t, EligibilityTrial, Eligibility(&m.EnrollmentModel{
		EnrollmentStatus: m.EnrollmentStatusTrial,
	}, today))

	// Aktif dan masih dalam masa bayar (inklusif).
	assert.Equal(t, EligibilityActive, Eligibility(&m.EnrollmentModel{
		EnrollmentStatus:    m.EnrollmentStatusActive,
		EnrollmentPaidUntil: dp(2025, 10, 10),
	}, today))

	assert.Equal(t, EligibilityExpired, Eligibility(&m.EnrollmentModel{
		EnrollmentStatus:    m.EnrollmentStatusActive,
		EnrollmentPaidUntil: dp(2025, 10, 9),
	}, today))

	// Aktif tapi belum pernah bayar = kedaluwarsa, bukan aktif.
	assert.Equal(t, EligibilityExpired, Eligibility(&m.EnrollmentModel{
		EnrollmentStatus: m.EnrollmentStatusActive,
	}, today))

	assert.Equal(t, EligibilityNotEnrolled, Eligibility(&m.EnrollmentModel{
		EnrollmentStatus: m.EnrollmentStatusDropped,
	}, today))
}

/* ===============================
   ComputePaidUntil
=================================*/

func TestComputePaidUntilPerSessionDoesNotAdvance(t *testing.T) {
	enr := &m.EnrollmentModel{EnrollmentPaidUntil: dp(2025, 10, 1)}

	_, _, advanced, err := calc(nil).ComputePaidUntil(context.Background(), enr, d(2025, 10, 5), m.BillingTypePerSession)
	require.NoError(t, err)
	assert.False(t, advanced)
}

func TestComputePaidUntilExtension(t *testing.T) {
	enr := &m.EnrollmentModel{EnrollmentPaidUntil: dp(2025, 10, 31)}

	// Bayar sebelum habis: anchor = paid_until lama, 31 Okt + 1 bulan = 30 Nov.
	got, rule, advanced, err := calc(nil).ComputePaidUntil(context.Background(), enr, d(2025, 10, 20), m.BillingTypeMonthly)
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, RuleExtension, rule)
	assert.Equal(t, d(2025, 11, 30), got)
}

func TestComputePaidUntilOnExpiryDayIsExtension(t *testing.T) {
	enr := &m.EnrollmentModel{EnrollmentPaidUntil: dp(2025, 10, 1)}

	got, rule, _, err := calc(nil).ComputePaidUntil(context.Background(), enr, d(2025, 10, 1), m.BillingTypeMonthly)
	require.NoError(t, err)
	assert.Equal(t, RuleExtension, rule)
	assert.Equal(t, d(2025, 11, 1), got)
}

func TestComputePaidUntilGracePeriod(t *testing.T) {
	enr := &m.EnrollmentModel{EnrollmentPaidUntil: dp(2025, 10, 1)}

	// Telat 4 hari, masih <= 7: anchor tetap paid_until lama.
	got, rule, _, err := calc(nil).ComputePaidUntil(context.Background(), enr, d(2025, 10, 5), m.BillingTypeMonthly)
	require.NoError(t, err)
	assert.Equal(t, RuleGracePeriod, rule)
	assert.Equal(t, d(2025, 11, 1), got)

	// Tepat di batas tenggang (telat 7 hari) masih grace.
	_, rule, _, err = calc(nil).ComputePaidUntil(context.Background(), enr, d(2025, 10, 8), m.BillingTypeMonthly)
	require.NoError(t, err)
	assert.Equal(t, RuleGracePeriod, rule)
}

func TestComputePaidUntilAttendanceCredit(t *testing.T) {
	enr := &m.EnrollmentModel{
		EnrollmentStudentID: uuid.New(),
		EnrollmentPaidUntil: dp(2025, 10, 1),
	}
	lookup := &fakeAttendance{visits: []time.Time{d(2025, 10, 3)}}

	// Telat 14 hari (lewat tenggang) tapi sempat hadir setelah habis:
	// anchor tetap paid_until lama.
	got, rule, _, err := calc(lookup).ComputePaidUntil(context.Background(), enr, d(2025, 10, 15), m.BillingTypeMonthly)
	require.NoError(t, err)
	assert.Equal(t, RuleAttendanceCredit, rule)
	assert.Equal(t, d(2025, 11, 1), got)
}

func TestComputePaidUntilDefaultWhenNoAttendance(t *testing.T) {
	enr := &m.EnrollmentModel{
		EnrollmentStudentID: uuid.New(),
		EnrollmentPaidUntil: dp(2025, 10, 1),
	}

	got, rule, _, err := calc(&fakeAttendance{}).ComputePaidUntil(context.Background(), enr, d(2025, 10, 20), m.BillingTypeMonthly)
	require.NoError(t, err)
	assert.Equal(t, RuleDefault, rule)
	assert.Equal(t, d(2025, 11, 20), got)
}

func TestComputePaidUntilAttendanceOutsideLookbackIgnored(t *testing.T) {
	enr := &m.EnrollmentModel{
		EnrollmentStudentID: uuid.New(),
		EnrollmentPaidUntil: dp(2025, 1, 1),
	}
	// Hadir 5 Jan, tapi bayar baru 15 Maret: jendela lookback 30 hari
	// mulai 13 Feb, jadi kehadiran itu tidak dihitung.
	lookup := &fakeAttendance{visits: []time.Time{d(2025, 1, 5)}}

	got, rule, _, err := calc(lookup).ComputePaidUntil(context.Background(), enr, d(2025, 3, 15), m.BillingTypeMonthly)
	require.NoError(t, err)
	assert.Equal(t, RuleDefault, rule)
	assert.Equal(t, d(2025, 4, 15), got)
}

func TestComputePaidUntilVisitOnExpiryDayDoesNotCount(t *testing.T) {
	enr := &m.EnrollmentModel{
		EnrollmentStudentID: uuid.New(),
		EnrollmentPaidUntil: dp(2025, 10, 1),
	}
	// Kehadiran harus jatuh SETELAH paid_until, bukan tepat di harinya.
	lookup := &fakeAttendance{visits: []time.Time{d(2025, 10, 1)}}

	_, rule, _, err := calc(lookup).ComputePaidUntil(context.Background(), enr, d(2025, 10, 15), m.BillingTypeMonthly)
	require.NoError(t, err)
	assert.Equal(t, RuleDefault, rule)
}

func TestComputePaidUntilFirstPaymentAnchorsOnPayDay(t *testing.T) {
	enr := &m.EnrollmentModel{EnrollmentStudentID: uuid.New()}

	got, rule, advanced, err := calc(nil).ComputePaidUntil(context.Background(), enr, d(2025, 10, 7), m.BillingTypeMonthly)
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, RuleDefault, rule)
	assert.Equal(t, d(2025, 11, 7), got)
}

func TestComputePaidUntilYearlyAddsTwelveMonths(t *testing.T) {
	enr := &m.EnrollmentModel{EnrollmentPaidUntil: dp(2025, 10, 1)}

	got, rule, _, err := calc(nil).ComputePaidUntil(context.Background(), enr, d(2025, 9, 20), m.BillingTypeYearly)
	require.NoError(t, err)
	assert.Equal(t, RuleExtension, rule)
	assert.Equal(t, d(2026, 10, 1), got)
}

func TestComputePaidUntilClampsEndOfMonth(t *testing.T) {
	enr := &m.EnrollmentModel{EnrollmentPaidUntil: dp(2025, 1, 31)}

	got, _, _, err := calc(nil).ComputePaidUntil(context.Background(), enr, d(2025, 1, 15), m.BillingTypeMonthly)
	require.NoError(t, err)
	assert.Equal(t, d(2025, 2, 28), got)
}

func TestComputePaidUntilLookupErrorPropagates(t *testing.T) {
	enr := &m.EnrollmentModel{
		EnrollmentStudentID: uuid.New(),
		EnrollmentPaidUntil: dp(2025, 10, 1),
	}
	lookup := &fakeAttendance{err: errors.New("koneksi putus")}

	_, _, _, err := calc(lookup).ComputePaidUntil(context.Background(), enr, d(2025, 10, 20), m.BillingTypeMonthly)
	assert.Error(t, err)
}
