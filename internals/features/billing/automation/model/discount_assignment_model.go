package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DiscountAssignmentModel mencatat pemberian diskon hasil aturan.
// subject_key = "student:<uuid>" (atau "family:<uuid>" untuk event
// tanpa siswa); unique index (rule, subject_key, seq) mencegah satu
// subjek menerima lebih dari max_uses_per_student meski event
// diproses paralel.
type DiscountAssignmentModel struct {
	DiscountAssignmentID uuid.UUID `gorm:"column:discount_assignment_id;type:uuid;primaryKey" json:"discount_assignment_id"`

	DiscountAssignmentDojoID uuid.UUID `gorm:"column:discount_assignment_dojo_id;type:uuid;not null;index" json:"discount_assignment_dojo_id"`

	DiscountAssignmentRuleID     uuid.UUID `gorm:"column:discount_assignment_rule_id;type:uuid;not null;uniqueIndex:uq_discount_assignments_serial" json:"discount_assignment_rule_id"`
	DiscountAssignmentSubjectKey string    `gorm:"column:discount_assignment_subject_key;type:text;not null;uniqueIndex:uq_discount_assignments_serial" json:"discount_assignment_subject_key"`
	DiscountAssignmentSeq        int       `gorm:"column:discount_assignment_seq;type:int;not null;uniqueIndex:uq_discount_assignments_serial"      json:"discount_assignment_seq"`

	DiscountAssignmentStudentID *uuid.UUID `gorm:"column:discount_assignment_student_id;type:uuid;index" json:"discount_assignment_student_id,omitempty"`
	DiscountAssignmentFamilyID  *uuid.UUID `gorm:"column:discount_assignment_family_id;type:uuid"        json:"discount_assignment_family_id,omitempty"`

	DiscountAssignmentEventID uuid.UUID `gorm:"column:discount_assignment_event_id;type:uuid;not null" json:"discount_assignment_event_id"`
	DiscountAssignmentCodeID  uuid.UUID `gorm:"column:discount_assignment_code_id;type:uuid;not null"  json:"discount_assignment_code_id"`

	DiscountAssignmentCreatedAt time.Time `gorm:"column:discount_assignment_created_at;autoCreateTime" json:"discount_assignment_created_at"`
}

// SubjectKeyFor membentuk kunci subjek assignment: siswa bila ada,
// selain itu keluarga.
func SubjectKeyFor(studentID, familyID *uuid.UUID) string {
	if studentID != nil {
		return "student:" + studentID.String()
	}
	if familyID != nil {
		return "family:" + familyID.String()
	}
	return ""
}

func (DiscountAssignmentModel) TableName() string { return "discount_assignments" }

func (m *DiscountAssignmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.DiscountAssignmentID == uuid.Nil {
		m.DiscountAssignmentID = uuid.New()
	}
	return nil
}
