// internals/features/attendance/attendances/dto/attendance_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	m "dojoku_backend/internals/features/attendance/attendances/model"
)

/* =============== REQUESTS =============== */

type CheckInRequest struct {
	AttendanceStudentID uuid.UUID  `json:"attendance_student_id" validate:"required"`
	AttendanceClassID   *uuid.UUID `json:"attendance_class_id"   validate:"omitempty"`

	// Kosong = hari ini. Back-date hanya untuk koreksi admin.
	AttendanceDate *time.Time `json:"attendance_date" validate:"omitempty"`
}

/* =============== RESPONSES =============== */

type AttendanceResponse struct {
	AttendanceID          uuid.UUID  `json:"attendance_id"`
	AttendanceStudentID   uuid.UUID  `json:"attendance_student_id"`
	AttendanceClassID     *uuid.UUID `json:"attendance_class_id,omitempty"`
	AttendanceDate        time.Time  `json:"attendance_date"`
	AttendanceCheckedInAt time.Time  `json:"attendance_checked_in_at"`

	// Total kehadiran setelah check-in ini, plus milestone yang tercapai
	TotalVisits int64 `json:"total_visits,omitempty"`
	Milestone   *int  `json:"milestone,omitempty"`
}

func FromAttendanceModel(a m.AttendanceModel) AttendanceResponse {
	return AttendanceResponse{
		AttendanceID:          a.AttendanceID,
		AttendanceStudentID:   a.AttendanceStudentID,
		AttendanceClassID:     a.AttendanceClassID,
		AttendanceDate:        a.AttendanceDate,
		AttendanceCheckedInAt: a.AttendanceCheckedInAt,
	}
}

func FromAttendanceModels(rows []m.AttendanceModel) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromAttendanceModel(rows[i]))
	}
	return out
}
