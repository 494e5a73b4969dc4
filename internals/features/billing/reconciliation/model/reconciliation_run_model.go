package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReconciliationRunModel: ringkasan satu putaran job rekonsiliasi,
// untuk audit admin ("kenapa payment ini berubah sendiri?").
type ReconciliationRunModel struct {
	ReconciliationRunID uuid.UUID `gorm:"column:reconciliation_run_id;type:uuid;primaryKey" json:"reconciliation_run_id"`

	ReconciliationRunStartedAt  time.Time  `gorm:"column:reconciliation_run_started_at;not null" json:"reconciliation_run_started_at"`
	ReconciliationRunFinishedAt *time.Time `gorm:"column:reconciliation_run_finished_at"         json:"reconciliation_run_finished_at,omitempty"`

	ReconciliationRunChecked int `gorm:"column:reconciliation_run_checked;type:int;not null;default:0" json:"reconciliation_run_checked"`
	ReconciliationRunUpdated int `gorm:"column:reconciliation_run_updated;type:int;not null;default:0" json:"reconciliation_run_updated"`
	ReconciliationRunSkipped int `gorm:"column:reconciliation_run_skipped;type:int;not null;default:0" json:"reconciliation_run_skipped"`
	ReconciliationRunFailed  int `gorm:"column:reconciliation_run_failed;type:int;not null;default:0"  json:"reconciliation_run_failed"`

	// Hitungan per status mentah gateway, mis. {"settlement": 3, "expire": 1}.
	ReconciliationRunBreakdown datatypes.JSONMap `gorm:"column:reconciliation_run_breakdown;type:jsonb" json:"reconciliation_run_breakdown,omitempty"`

	ReconciliationRunNote *string `gorm:"column:reconciliation_run_note;type:text" json:"reconciliation_run_note,omitempty"`

	ReconciliationRunCreatedAt time.Time `gorm:"column:reconciliation_run_created_at;autoCreateTime" json:"reconciliation_run_created_at"`
}

func (ReconciliationRunModel) TableName() string { return "reconciliation_runs" }

func (m *ReconciliationRunModel) BeforeCreate(tx *gorm.DB) error {
	if m.ReconciliationRunID == uuid.Nil {
		m.ReconciliationRunID = uuid.New()
	}
	return nil
}
