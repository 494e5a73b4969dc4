// internals/features/billing/enrollments/dto/enrollment_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	m "dojoku_backend/internals/features/billing/enrollments/model"
	"dojoku_backend/internals/helpers/dates"
)

/* =============== REQUESTS =============== */

type CreateEnrollmentRequest struct {
	EnrollmentStudentID uuid.UUID  `json:"enrollment_student_id" validate:"required"`
	EnrollmentProgramID uuid.UUID  `json:"enrollment_program_id" validate:"required"`
	EnrollmentClassID   *uuid.UUID `json:"enrollment_class_id"   validate:"omitempty"`

	EnrollmentBillingType string `json:"enrollment_billing_type" validate:"required,oneof=monthly yearly per_session"`

	// Kosong = trial
	EnrollmentStatus string `json:"enrollment_status" validate:"omitempty,oneof=trial active"`

	EnrollmentTrialUntil *time.Time `json:"enrollment_trial_until" validate:"omitempty"`
	EnrollmentStartedAt  *time.Time `json:"enrollment_started_at"  validate:"omitempty"`
}

func (r CreateEnrollmentRequest) ToModel(dojoID uuid.UUID) *m.EnrollmentModel {
	status := r.EnrollmentStatus
	if status == "" {
		status = m.EnrollmentStatusTrial
	}
	startedAt := dates.Today()
	if r.EnrollmentStartedAt != nil {
		startedAt = dates.Day(*r.EnrollmentStartedAt)
	}
	var trialUntil *time.Time
	if r.EnrollmentTrialUntil != nil {
		d := dates.Day(*r.EnrollmentTrialUntil)
		trialUntil = &d
	}
	return &m.EnrollmentModel{
		EnrollmentDojoID:      dojoID,
		EnrollmentStudentID:   r.EnrollmentStudentID,
		EnrollmentProgramID:   r.EnrollmentProgramID,
		EnrollmentClassID:     r.EnrollmentClassID,
		EnrollmentBillingType: r.EnrollmentBillingType,
		EnrollmentStatus:      status,
		EnrollmentTrialUntil:  trialUntil,
		EnrollmentStartedAt:   startedAt,
	}
}

type UpdateEnrollmentStatusRequest struct {
	EnrollmentStatus string `json:"enrollment_status" validate:"required,oneof=trial active inactive dropped"`
}

type OverridePaidUntilRequest struct {
	EnrollmentPaidUntil time.Time `json:"enrollment_paid_until" validate:"required"`
	Note                *string   `json:"note"                  validate:"omitempty,min=3"`
}

/* =============== RESPONSES =============== */

type EnrollmentResponse struct {
	EnrollmentID          uuid.UUID  `json:"enrollment_id"`
	EnrollmentStudentID   uuid.UUID  `json:"enrollment_student_id"`
	EnrollmentProgramID   uuid.UUID  `json:"enrollment_program_id"`
	EnrollmentClassID     *uuid.UUID `json:"enrollment_class_id,omitempty"`
	EnrollmentBillingType string     `json:"enrollment_billing_type"`
	EnrollmentStatus      string     `json:"enrollment_status"`
	EnrollmentTrialUntil  *time.Time `json:"enrollment_trial_until,omitempty"`
	EnrollmentPaidUntil   *time.Time `json:"enrollment_paid_until,omitempty"`
	EnrollmentStartedAt   time.Time  `json:"enrollment_started_at"`
	EnrollmentCreatedAt   time.Time  `json:"enrollment_created_at"`
}

func FromEnrollmentModel(e m.EnrollmentModel) EnrollmentResponse {
	return EnrollmentResponse{
		EnrollmentID:          e.EnrollmentID,
		EnrollmentStudentID:   e.EnrollmentStudentID,
		EnrollmentProgramID:   e.EnrollmentProgramID,
		EnrollmentClassID:     e.EnrollmentClassID,
		EnrollmentBillingType: e.EnrollmentBillingType,
		EnrollmentStatus:      e.EnrollmentStatus,
		EnrollmentTrialUntil:  e.EnrollmentTrialUntil,
		EnrollmentPaidUntil:   e.EnrollmentPaidUntil,
		EnrollmentStartedAt:   e.EnrollmentStartedAt,
		EnrollmentCreatedAt:   e.EnrollmentCreatedAt,
	}
}

func FromEnrollmentModels(rows []m.EnrollmentModel) []EnrollmentResponse {
	out := make([]EnrollmentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromEnrollmentModel(rows[i]))
	}
	return out
}

// EligibilityResponse dipakai gerbang check-in dan banner portal wali.
type EligibilityResponse struct {
	StudentID  uuid.UUID           `json:"student_id"`
	Status     string              `json:"status"`
	PaidUntil  *time.Time          `json:"paid_until,omitempty"`
	Enrollment *EnrollmentResponse `json:"enrollment,omitempty"`
}

func BuildEligibilityResponse(studentID uuid.UUID, status string, enr *m.EnrollmentModel) EligibilityResponse {
	out := EligibilityResponse{StudentID: studentID, Status: status}
	if enr != nil {
		resp := FromEnrollmentModel(*enr)
		out.Enrollment = &resp
		out.PaidUntil = enr.EnrollmentPaidUntil
	}
	return out
}
