// internals/features/billing/enrollments/service/eligibility_service.go
//
// Kalkulator eligibility & paid_until. Inti aturan billing latihan:
// status siswa saat ini, dan sejauh mana paid_until bergerak ketika
// sebuah pembayaran dinyatakan lunas.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	m "dojoku_backend/internals/features/billing/enrollments/model"
	"dojoku_backend/internals/helpers/dates"
)

/* ===============================
   Status eligibility
=================================*/

const (
	EligibilityNotEnrolled = "not_enrolled"
	EligibilityTrial       = "trial"
	EligibilityActive      = "active"
	EligibilityExpired     = "expired"
)

/* ===============================
   Tag aturan paid_until (diaudit di payment_applied_rule)
=================================*/

const (
	RuleExtension        = "extension"
	RuleGracePeriod      = "grace_period"
	RuleAttendanceCredit = "attendance_credit"
	RuleDefault          = "default"
)

// AttendanceLookup dimiliki subsistem kehadiran; kalkulator hanya
// butuh query read-only satu ini.
type AttendanceLookup interface {
	AttendanceAfter(ctx context.Context, studentID uuid.UUID, after time.Time) ([]time.Time, error)
}

// Calculator menghitung status & pergerakan paid_until.
// Deterministik, tanpa efek samping selain satu lookup kehadiran.
type Calculator struct {
	GraceDays    int
	LookbackDays int
	Attendance   AttendanceLookup
}

func NewCalculator(graceDays, lookbackDays int, lookup AttendanceLookup) *Calculator {
	return &Calculator{
		GraceDays:    graceDays,
		LookbackDays: lookbackDays,
		Attendance:   lookup,
	}
}

// Eligibility menentukan status enrollment pada tanggal tertentu.
// Murni: tidak menyentuh DB.
func Eligibility(enr *m.EnrollmentModel, today time.Time) string {
	if enr == nil {
		return EligibilityNotEnrolled
	}
	switch enr.EnrollmentStatus {
	case m.EnrollmentStatusTrial:
		return EligibilityTrial
	case m.EnrollmentStatusActive:
		// lanjut ke cek paid_until
	default:
		return EligibilityNotEnrolled
	}
	if enr.EnrollmentPaidUntil != nil && dates.OnOrBefore(today, *enr.EnrollmentPaidUntil) {
		return EligibilityActive
	}
	return EligibilityExpired
}

// ComputePaidUntil menghitung paid_until baru untuk satu pembayaran
// lunas. advanced=false artinya tipe ini tidak menggerakkan paid_until
// (per_session). Urutan keputusan:
//  1. bayar sebelum/tepat habis  -> anchor = paid_until (extension)
//  2. telat <= masa tenggang     -> anchor = paid_until (grace_period)
//  3. telat tapi tetap hadir     -> anchor = paid_until (attendance_credit)
//  4. selain itu                 -> anchor = tanggal bayar (default)
//
// paid_until NULL (belum pernah bayar) jatuh ke aturan default.
func (c *Calculator) ComputePaidUntil(ctx context.Context, enr *m.EnrollmentModel, paymentDate time.Time, paymentType string) (newPaidUntil time.Time, rule string, advanced bool, err error) {
	var months int
	switch paymentType {
	case m.BillingTypeMonthly:
		months = 1
	case m.BillingTypeYearly:
		months = 12
	default:
		// per_session (dan tipe non-latihan) tidak menggerakkan paid_until.
		return time.Time{}, "", false, nil
	}

	payDay := dates.Day(paymentDate)

	anchor := payDay
	rule = RuleDefault

	if enr.EnrollmentPaidUntil != nil {
		paidUntil := dates.Day(*enr.EnrollmentPaidUntil)

		switch {
		case dates.OnOrBefore(payDay, paidUntil):
			// Bayar tepat di tanggal habis tetap dihitung perpanjangan.
			anchor, rule = paidUntil, RuleExtension

		case dates.DaysBetween(paidUntil, payDay) <= c.GraceDays:
			anchor, rule = paidUntil, RuleGracePeriod

		default:
			hit, lerr := c.attendedSince(ctx, enr.EnrollmentStudentID, paidUntil, payDay)
			if lerr != nil {
				return time.Time{}, "", false, lerr
			}
			if hit {
				anchor, rule = paidUntil, RuleAttendanceCredit
			}
		}
	}

	return dates.AddMonthsClamped(anchor, months), rule, true, nil
}

// attendedSince mengecek ada tidaknya kehadiran yang jatuh setelah
// paid_until DAN masih dalam jendela lookback dari tanggal bayar.
func (c *Calculator) attendedSince(ctx context.Context, studentID uuid.UUID, paidUntil, payDay time.Time) (bool, error) {
	if c.Attendance == nil {
		return false, nil
	}
	visits, err := c.Attendance.AttendanceAfter(ctx, studentID, paidUntil)
	if err != nil {
		return false, err
	}
	windowStart := dates.AddDays(payDay, -c.LookbackDays)
	for _, v := range visits {
		day := dates.Day(v)
		if day.After(paidUntil) && !day.Before(windowStart) && dates.OnOrBefore(day, payDay) {
			return true, nil
		}
	}
	return false, nil
}
