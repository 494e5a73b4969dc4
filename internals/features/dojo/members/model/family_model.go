package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FamilyModel struct {
	FamilyID uuid.UUID `gorm:"column:family_id;type:uuid;primaryKey" json:"family_id"`

	FamilyDojoID uuid.UUID `gorm:"column:family_dojo_id;type:uuid;not null;index;uniqueIndex:uq_families_dojo_referral" json:"family_dojo_id"`

	FamilyName  string  `gorm:"column:family_name;type:text;not null" json:"family_name"`
	FamilyEmail *string `gorm:"column:family_email;type:text"         json:"family_email,omitempty"`
	FamilyPhone *string `gorm:"column:family_phone;type:text"         json:"family_phone,omitempty"`

	// Kode yang dibagikan keluarga ini untuk mengajak keluarga lain
	FamilyReferralCode string `gorm:"column:family_referral_code;type:text;not null;uniqueIndex:uq_families_dojo_referral" json:"family_referral_code"`

	// Keluarga yang mereferensikan (isi saat daftar lewat kode referral)
	FamilyReferredByID *uuid.UUID `gorm:"column:family_referred_by_id;type:uuid" json:"family_referred_by_id,omitempty"`

	FamilyCreatedAt time.Time      `gorm:"column:family_created_at;autoCreateTime" json:"family_created_at"`
	FamilyUpdatedAt *time.Time     `gorm:"column:family_updated_at;autoUpdateTime" json:"family_updated_at,omitempty"`
	FamilyDeletedAt gorm.DeletedAt `gorm:"column:family_deleted_at;index"          json:"family_deleted_at,omitempty"`
}

func (FamilyModel) TableName() string { return "families" }

func (m *FamilyModel) BeforeCreate(tx *gorm.DB) error {
	if m.FamilyID == uuid.Nil {
		m.FamilyID = uuid.New()
	}
	if m.FamilyReferralCode == "" {
		m.FamilyReferralCode = "AJAK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	}
	return nil
}
