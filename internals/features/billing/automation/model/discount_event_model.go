package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ===============================
   Tipe event domain
=================================*/

const (
	EventEnrollment          = "enrollment"
	EventFirstPayment        = "first_payment"
	EventBeltPromotion       = "belt_promotion"
	EventAttendanceMilestone = "attendance_milestone"
	EventReferral            = "referral"
	EventBirthday            = "birthday"
	EventSeasonal            = "seasonal"
)

// ValidEventType melaporkan apakah tipe event dikenal.
func ValidEventType(t string) bool {
	switch t {
	case EventEnrollment, EventFirstPayment, EventBeltPromotion,
		EventAttendanceMilestone, EventReferral, EventBirthday, EventSeasonal:
		return true
	}
	return false
}

// DiscountEventModel adalah antrian event untuk mesin aturan.
// processed_at NULL = belum diproses. Klaim event memakai UPDATE
// bersyarat WHERE processed_at IS NULL supaya dua worker tidak
// memproses baris yang sama.
type DiscountEventModel struct {
	DiscountEventID uuid.UUID `gorm:"column:discount_event_id;type:uuid;primaryKey" json:"discount_event_id"`

	DiscountEventDojoID uuid.UUID `gorm:"column:discount_event_dojo_id;type:uuid;not null;index" json:"discount_event_dojo_id"`

	DiscountEventType string `gorm:"column:discount_event_type;type:text;not null" json:"discount_event_type"`

	DiscountEventStudentID *uuid.UUID `gorm:"column:discount_event_student_id;type:uuid" json:"discount_event_student_id,omitempty"`
	DiscountEventFamilyID  *uuid.UUID `gorm:"column:discount_event_family_id;type:uuid"  json:"discount_event_family_id,omitempty"`

	DiscountEventPayload datatypes.JSONMap `gorm:"column:discount_event_payload;type:jsonb" json:"discount_event_payload,omitempty"`

	DiscountEventOccurredAt  time.Time  `gorm:"column:discount_event_occurred_at;not null"  json:"discount_event_occurred_at"`
	DiscountEventProcessedAt *time.Time `gorm:"column:discount_event_processed_at;index"    json:"discount_event_processed_at,omitempty"`

	// Error percobaan terakhir (untuk diagnosa admin); dikosongkan
	// lagi begitu event berhasil diproses.
	DiscountEventLastError *string `gorm:"column:discount_event_last_error;type:text" json:"discount_event_last_error,omitempty"`

	DiscountEventCreatedAt time.Time `gorm:"column:discount_event_created_at;autoCreateTime" json:"discount_event_created_at"`
}

func (DiscountEventModel) TableName() string { return "discount_events" }

func (m *DiscountEventModel) BeforeCreate(tx *gorm.DB) error {
	if m.DiscountEventID == uuid.Nil {
		m.DiscountEventID = uuid.New()
	}
	return nil
}
