package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AutomationRuleModel menghubungkan satu tipe event ke satu template
// diskon, dengan daftar kondisi AND yang dievaluasi atas payload event
// + atribut siswa.
type AutomationRuleModel struct {
	AutomationRuleID uuid.UUID `gorm:"column:automation_rule_id;type:uuid;primaryKey" json:"automation_rule_id"`

	AutomationRuleDojoID uuid.UUID `gorm:"column:automation_rule_dojo_id;type:uuid;not null;index" json:"automation_rule_dojo_id"`

	AutomationRuleName      string `gorm:"column:automation_rule_name;type:text;not null"       json:"automation_rule_name"`
	AutomationRuleEventType string `gorm:"column:automation_rule_event_type;type:text;not null" json:"automation_rule_event_type"`

	// Array klausa {field, op, value}. Kosong = selalu cocok.
	AutomationRuleConditions datatypes.JSON `gorm:"column:automation_rule_conditions;type:jsonb" json:"automation_rule_conditions,omitempty"`

	AutomationRuleTemplateID uuid.UUID `gorm:"column:automation_rule_template_id;type:uuid;not null" json:"automation_rule_template_id"`

	// Filter kode program; kosong = berlaku semua program.
	AutomationRulePrograms pq.StringArray `gorm:"column:automation_rule_programs;type:text[]" json:"automation_rule_programs,omitempty"`

	// Berapa kali satu siswa boleh menerima diskon dari aturan ini.
	AutomationRuleMaxUsesPerStudent int `gorm:"column:automation_rule_max_uses_per_student;type:int;not null;default:1" json:"automation_rule_max_uses_per_student"`

	AutomationRulePriority int  `gorm:"column:automation_rule_priority;type:int;not null;default:0" json:"automation_rule_priority"`
	AutomationRuleIsActive bool `gorm:"column:automation_rule_is_active;not null;default:true"      json:"automation_rule_is_active"`

	// Jendela aktif aturan. NULL = tanpa batas sisi itu.
	AutomationRuleValidFrom  *time.Time `gorm:"column:automation_rule_valid_from;type:date"  json:"automation_rule_valid_from,omitempty"`
	AutomationRuleValidUntil *time.Time `gorm:"column:automation_rule_valid_until;type:date" json:"automation_rule_valid_until,omitempty"`

	AutomationRuleCreatedAt time.Time      `gorm:"column:automation_rule_created_at;autoCreateTime" json:"automation_rule_created_at"`
	AutomationRuleUpdatedAt *time.Time     `gorm:"column:automation_rule_updated_at;autoUpdateTime" json:"automation_rule_updated_at,omitempty"`
	AutomationRuleDeletedAt gorm.DeletedAt `gorm:"column:automation_rule_deleted_at;index"          json:"automation_rule_deleted_at,omitempty"`
}

func (AutomationRuleModel) TableName() string { return "automation_rules" }

func (m *AutomationRuleModel) BeforeCreate(tx *gorm.DB) error {
	if m.AutomationRuleID == uuid.Nil {
		m.AutomationRuleID = uuid.New()
	}
	return nil
}
