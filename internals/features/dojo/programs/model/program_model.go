package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dojoku_backend/internals/helpers/money"
)

type ProgramModel struct {
	ProgramID uuid.UUID `gorm:"column:program_id;type:uuid;primaryKey" json:"program_id"`

	ProgramDojoID uuid.UUID `gorm:"column:program_dojo_id;type:uuid;not null;index:idx_programs_dojo;uniqueIndex:uq_programs_dojo_code" json:"program_dojo_id"`

	// Kode pendek yang dirujuk kondisi aturan diskon, mis. "KARATE-JR"
	ProgramCode string `gorm:"column:program_code;type:text;not null;uniqueIndex:uq_programs_dojo_code" json:"program_code"`
	ProgramName string `gorm:"column:program_name;type:text;not null"                                   json:"program_name"`

	ProgramDescription *string `gorm:"column:program_description;type:text" json:"program_description,omitempty"`

	// Tarif dalam sen, 0 = tidak tersedia untuk tipe itu
	ProgramMonthlyFee money.Cents `gorm:"column:program_monthly_fee;type:bigint;not null;default:0" json:"program_monthly_fee"`
	ProgramYearlyFee  money.Cents `gorm:"column:program_yearly_fee;type:bigint;not null;default:0"  json:"program_yearly_fee"`
	ProgramSessionFee money.Cents `gorm:"column:program_session_fee;type:bigint;not null;default:0" json:"program_session_fee"`

	ProgramIsActive bool `gorm:"column:program_is_active;not null;default:true" json:"program_is_active"`

	ProgramCreatedAt time.Time      `gorm:"column:program_created_at;autoCreateTime" json:"program_created_at"`
	ProgramUpdatedAt *time.Time     `gorm:"column:program_updated_at;autoUpdateTime" json:"program_updated_at,omitempty"`
	ProgramDeletedAt gorm.DeletedAt `gorm:"column:program_deleted_at;index"          json:"program_deleted_at,omitempty"`
}

func (ProgramModel) TableName() string { return "programs" }

func (m *ProgramModel) BeforeCreate(tx *gorm.DB) error {
	if m.ProgramID == uuid.Nil {
		m.ProgramID = uuid.New()
	}
	return nil
}

// FeeFor mengembalikan tarif untuk tipe tagihan tertentu.
func (m *ProgramModel) FeeFor(billingType string) money.Cents {
	switch billingType {
	case "monthly":
		return m.ProgramMonthlyFee
	case "yearly":
		return m.ProgramYearlyFee
	case "per_session":
		return m.ProgramSessionFee
	default:
		return 0
	}
}
