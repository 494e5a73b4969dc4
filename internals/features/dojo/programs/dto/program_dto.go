// internals/features/dojo/programs/dto/program_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	m "dojoku_backend/internals/features/dojo/programs/model"
	"dojoku_backend/internals/helpers/money"
)

/* =============== REQUESTS =============== */

type CreateProgramRequest struct {
	ProgramCode        string  `json:"program_code" validate:"required,min=2,uppercase"`
	ProgramName        string  `json:"program_name" validate:"required,min=3"`
	ProgramDescription *string `json:"program_description" validate:"omitempty"`

	// Tarif dalam sen
	ProgramMonthlyFee int64 `json:"program_monthly_fee" validate:"gte=0"`
	ProgramYearlyFee  int64 `json:"program_yearly_fee"  validate:"gte=0"`
	ProgramSessionFee int64 `json:"program_session_fee" validate:"gte=0"`
}

func (r CreateProgramRequest) ToModel(dojoID uuid.UUID) *m.ProgramModel {
	return &m.ProgramModel{
		ProgramDojoID:      dojoID,
		ProgramCode:        r.ProgramCode,
		ProgramName:        r.ProgramName,
		ProgramDescription: r.ProgramDescription,
		ProgramMonthlyFee:  money.Cents(r.ProgramMonthlyFee),
		ProgramYearlyFee:   money.Cents(r.ProgramYearlyFee),
		ProgramSessionFee:  money.Cents(r.ProgramSessionFee),
		ProgramIsActive:    true,
	}
}

type CreateClassRequest struct {
	ClassProgramID uuid.UUID `json:"class_program_id" validate:"required"`
	ClassName      string    `json:"class_name"       validate:"required,min=3"`
	ClassSchedule  *string   `json:"class_schedule"   validate:"omitempty"`
	ClassCapacity  *int      `json:"class_capacity"   validate:"omitempty,gt=0"`
}

func (r CreateClassRequest) ToModel(dojoID uuid.UUID) *m.ClassModel {
	return &m.ClassModel{
		ClassDojoID:    dojoID,
		ClassProgramID: r.ClassProgramID,
		ClassName:      r.ClassName,
		ClassSchedule:  r.ClassSchedule,
		ClassCapacity:  r.ClassCapacity,
	}
}

/* =============== RESPONSES =============== */

type ProgramResponse struct {
	ProgramID          uuid.UUID `json:"program_id"`
	ProgramCode        string    `json:"program_code"`
	ProgramName        string    `json:"program_name"`
	ProgramDescription *string   `json:"program_description,omitempty"`
	ProgramMonthlyFee  int64     `json:"program_monthly_fee"`
	ProgramYearlyFee   int64     `json:"program_yearly_fee"`
	ProgramSessionFee  int64     `json:"program_session_fee"`
	ProgramIsActive    bool      `json:"program_is_active"`
	ProgramCreatedAt   time.Time `json:"program_created_at"`
}

func FromProgramModel(mo *m.ProgramModel) ProgramResponse {
	return ProgramResponse{
		ProgramID:          mo.ProgramID,
		ProgramCode:        mo.ProgramCode,
		ProgramName:        mo.ProgramName,
		ProgramDescription: mo.ProgramDescription,
		ProgramMonthlyFee:  int64(mo.ProgramMonthlyFee),
		ProgramYearlyFee:   int64(mo.ProgramYearlyFee),
		ProgramSessionFee:  int64(mo.ProgramSessionFee),
		ProgramIsActive:    mo.ProgramIsActive,
		ProgramCreatedAt:   mo.ProgramCreatedAt,
	}
}

func FromProgramModels(rows []m.ProgramModel) []ProgramResponse {
	out := make([]ProgramResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromProgramModel(&rows[i]))
	}
	return out
}

type ClassResponse struct {
	ClassID        uuid.UUID `json:"class_id"`
	ClassProgramID uuid.UUID `json:"class_program_id"`
	ClassName      string    `json:"class_name"`
	ClassSchedule  *string   `json:"class_schedule,omitempty"`
	ClassCapacity  *int      `json:"class_capacity,omitempty"`
	ClassCreatedAt time.Time `json:"class_created_at"`
}

func FromClassModel(mo *m.ClassModel) ClassResponse {
	return ClassResponse{
		ClassID:        mo.ClassID,
		ClassProgramID: mo.ClassProgramID,
		ClassName:      mo.ClassName,
		ClassSchedule:  mo.ClassSchedule,
		ClassCapacity:  mo.ClassCapacity,
		ClassCreatedAt: mo.ClassCreatedAt,
	}
}

func FromClassModels(rows []m.ClassModel) []ClassResponse {
	out := make([]ClassResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromClassModel(&rows[i]))
	}
	return out
}
