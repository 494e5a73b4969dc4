package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ===============================
   Status & tipe tagihan enrollment
=================================*/

const (
	EnrollmentStatusTrial    = "trial"
	EnrollmentStatusActive   = "active"
	EnrollmentStatusInactive = "inactive"
	EnrollmentStatusDropped  = "dropped"
)

const (
	BillingTypeMonthly    = "monthly"
	BillingTypeYearly     = "yearly"
	BillingTypePerSession = "per_session"
)

type EnrollmentModel struct {
	EnrollmentID uuid.UUID `gorm:"column:enrollment_id;type:uuid;primaryKey" json:"enrollment_id"`

	EnrollmentDojoID    uuid.UUID  `gorm:"column:enrollment_dojo_id;type:uuid;not null;index"    json:"enrollment_dojo_id"`
	EnrollmentStudentID uuid.UUID  `gorm:"column:enrollment_student_id;type:uuid;not null;index" json:"enrollment_student_id"`
	EnrollmentProgramID uuid.UUID  `gorm:"column:enrollment_program_id;type:uuid;not null"       json:"enrollment_program_id"`
	EnrollmentClassID   *uuid.UUID `gorm:"column:enrollment_class_id;type:uuid"                  json:"enrollment_class_id,omitempty"`

	EnrollmentBillingType string `gorm:"column:enrollment_billing_type;type:text;not null" json:"enrollment_billing_type"`
	EnrollmentStatus      string `gorm:"column:enrollment_status;type:text;not null"       json:"enrollment_status"`

	// Akhir masa trial (tanggal kalender). Hanya terisi saat status trial.
	EnrollmentTrialUntil *time.Time `gorm:"column:enrollment_trial_until;type:date" json:"enrollment_trial_until,omitempty"`

	// Siswa berhak latihan sampai tanggal ini (inklusif). NULL = belum
	// pernah bayar. Kolom ini hanya bergerak maju, kecuali override admin.
	EnrollmentPaidUntil *time.Time `gorm:"column:enrollment_paid_until;type:date" json:"enrollment_paid_until,omitempty"`

	EnrollmentStartedAt time.Time `gorm:"column:enrollment_started_at;type:date;not null" json:"enrollment_started_at"`

	EnrollmentCreatedAt time.Time      `gorm:"column:enrollment_created_at;autoCreateTime" json:"enrollment_created_at"`
	EnrollmentUpdatedAt *time.Time     `gorm:"column:enrollment_updated_at;autoUpdateTime" json:"enrollment_updated_at,omitempty"`
	EnrollmentDeletedAt gorm.DeletedAt `gorm:"column:enrollment_deleted_at;index"          json:"enrollment_deleted_at,omitempty"`
}

func (EnrollmentModel) TableName() string { return "enrollments" }

func (m *EnrollmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.EnrollmentID == uuid.Nil {
		m.EnrollmentID = uuid.New()
	}
	return nil
}
