package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttendanceModel: satu check-in siswa per kelas per hari.
type AttendanceModel struct {
	AttendanceID uuid.UUID `gorm:"column:attendance_id;type:uuid;primaryKey" json:"attendance_id"`

	AttendanceDojoID    uuid.UUID  `gorm:"column:attendance_dojo_id;type:uuid;not null;index"                                        json:"attendance_dojo_id"`
	AttendanceStudentID uuid.UUID  `gorm:"column:attendance_student_id;type:uuid;not null;uniqueIndex:uq_attendances_student_day"    json:"attendance_student_id"`
	AttendanceClassID   *uuid.UUID `gorm:"column:attendance_class_id;type:uuid;uniqueIndex:uq_attendances_student_day"               json:"attendance_class_id,omitempty"`

	AttendanceDate time.Time `gorm:"column:attendance_date;type:date;not null;uniqueIndex:uq_attendances_student_day" json:"attendance_date"`

	AttendanceCheckedInAt time.Time `gorm:"column:attendance_checked_in_at;not null" json:"attendance_checked_in_at"`

	AttendanceCreatedAt time.Time `gorm:"column:attendance_created_at;autoCreateTime" json:"attendance_created_at"`
}

func (AttendanceModel) TableName() string { return "attendances" }

func (m *AttendanceModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceID == uuid.Nil {
		m.AttendanceID = uuid.New()
	}
	return nil
}
