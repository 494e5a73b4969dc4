// internals/features/dojo/members/dto/member_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	m "dojoku_backend/internals/features/dojo/members/model"
)

/* =============== REQUESTS =============== */

// Create family
type CreateFamilyRequest struct {
	FamilyName  string  `json:"family_name"  validate:"required,min=2"`
	FamilyEmail *string `json:"family_email" validate:"omitempty,email"`
	FamilyPhone *string `json:"family_phone" validate:"omitempty,min=8"`

	// Kode referral milik keluarga lain (opsional)
	ReferralCode *string `json:"referral_code" validate:"omitempty,min=4"`
}

func (r CreateFamilyRequest) ToModel(dojoID uuid.UUID) *m.FamilyModel {
	return &m.FamilyModel{
		FamilyDojoID: dojoID,
		FamilyName:   r.FamilyName,
		FamilyEmail:  r.FamilyEmail,
		FamilyPhone:  r.FamilyPhone,
	}
}

// Create student
type CreateStudentRequest struct {
	StudentFamilyID  uuid.UUID  `json:"student_family_id" validate:"required"`
	StudentName      string     `json:"student_name"      validate:"required,min=2"`
	StudentBirthDate *time.Time `json:"student_birth_date" validate:"omitempty"`
	StudentBeltLevel *int16     `json:"student_belt_level" validate:"omitempty,gte=0,lte=6"`
}

func (r CreateStudentRequest) ToModel(dojoID uuid.UUID) *m.StudentModel {
	belt := int16(m.BeltWhite)
	if r.StudentBeltLevel != nil {
		belt = *r.StudentBeltLevel
	}
	return &m.StudentModel{
		StudentDojoID:    dojoID,
		StudentFamilyID:  r.StudentFamilyID,
		StudentName:      r.StudentName,
		StudentBirthDate: r.StudentBirthDate,
		StudentBeltLevel: belt,
	}
}

// Promote belt (kenaikan tingkat, memicu event belt_promotion)
type PromoteBeltRequest struct {
	StudentBeltLevel int16      `json:"student_belt_level" validate:"required,gte=1,lte=6"`
	PromotedAt       *time.Time `json:"promoted_at"        validate:"omitempty"`
}

// Record referral manual (admin), memicu event referral untuk keluarga
// yang mengajak. Jalur otomatisnya lewat CreateFamilyRequest.ReferralCode.
type RecordReferralRequest struct {
	ReferrerFamilyID uuid.UUID `json:"referrer_family_id" validate:"required"`
	ReferredFamilyID uuid.UUID `json:"referred_family_id" validate:"required"`
}

/* =============== RESPONSES =============== */

type FamilyResponse struct {
	FamilyID           uuid.UUID  `json:"family_id"`
	FamilyName         string     `json:"family_name"`
	FamilyEmail        *string    `json:"family_email,omitempty"`
	FamilyPhone        *string    `json:"family_phone,omitempty"`
	FamilyReferralCode string     `json:"family_referral_code"`
	FamilyReferredByID *uuid.UUID `json:"family_referred_by_id,omitempty"`
	FamilyCreatedAt    time.Time  `json:"family_created_at"`
}

func FromFamilyModel(mo *m.FamilyModel) FamilyResponse {
	return FamilyResponse{
		FamilyID:           mo.FamilyID,
		FamilyName:         mo.FamilyName,
		FamilyEmail:        mo.FamilyEmail,
		FamilyPhone:        mo.FamilyPhone,
		FamilyReferralCode: mo.FamilyReferralCode,
		FamilyReferredByID: mo.FamilyReferredByID,
		FamilyCreatedAt:    mo.FamilyCreatedAt,
	}
}

func FromFamilyModels(rows []m.FamilyModel) []FamilyResponse {
	out := make([]FamilyResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromFamilyModel(&rows[i]))
	}
	return out
}

type StudentResponse struct {
	StudentID        uuid.UUID  `json:"student_id"`
	StudentFamilyID  uuid.UUID  `json:"student_family_id"`
	StudentName      string     `json:"student_name"`
	StudentBirthDate *time.Time `json:"student_birth_date,omitempty"`
	StudentBeltLevel int16      `json:"student_belt_level"`
	StudentBeltName  string     `json:"student_belt_name"`
	StudentJoinedAt  time.Time  `json:"student_joined_at"`
}

func FromStudentModel(mo *m.StudentModel) StudentResponse {
	return StudentResponse{
		StudentID:        mo.StudentID,
		StudentFamilyID:  mo.StudentFamilyID,
		StudentName:      mo.StudentName,
		StudentBirthDate: mo.StudentBirthDate,
		StudentBeltLevel: mo.StudentBeltLevel,
		StudentBeltName:  m.BeltName(mo.StudentBeltLevel),
		StudentJoinedAt:  mo.StudentJoinedAt,
	}
}

func FromStudentModels(rows []m.StudentModel) []StudentResponse {
	out := make([]StudentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromStudentModel(&rows[i]))
	}
	return out
}
