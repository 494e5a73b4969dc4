package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClassModel struct {
	ClassID uuid.UUID `gorm:"column:class_id;type:uuid;primaryKey" json:"class_id"`

	ClassDojoID    uuid.UUID `gorm:"column:class_dojo_id;type:uuid;not null;index"    json:"class_dojo_id"`
	ClassProgramID uuid.UUID `gorm:"column:class_program_id;type:uuid;not null;index" json:"class_program_id"`

	ClassName     string  `gorm:"column:class_name;type:text;not null" json:"class_name"`
	ClassSchedule *string `gorm:"column:class_schedule;type:text"      json:"class_schedule,omitempty"` // mis. "Selasa & Kamis 19:00"
	ClassCapacity *int    `gorm:"column:class_capacity;type:int"       json:"class_capacity,omitempty"`

	ClassCreatedAt time.Time      `gorm:"column:class_created_at;autoCreateTime" json:"class_created_at"`
	ClassUpdatedAt *time.Time     `gorm:"column:class_updated_at;autoUpdateTime" json:"class_updated_at,omitempty"`
	ClassDeletedAt gorm.DeletedAt `gorm:"column:class_deleted_at;index"          json:"class_deleted_at,omitempty"`
}

func (ClassModel) TableName() string { return "classes" }

func (m *ClassModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClassID == uuid.Nil {
		m.ClassID = uuid.New()
	}
	return nil
}
