package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ===============================
   Tingkat sabuk (urut naik)
=================================*/

const (
	BeltWhite  int16 = 0
	BeltYellow int16 = 1
	BeltGreen  int16 = 2
	BeltBlue   int16 = 3
	BeltRed    int16 = 4
	BeltBrown  int16 = 5
	BeltBlack  int16 = 6
)

var beltNames = map[int16]string{
	BeltWhite:  "putih",
	BeltYellow: "kuning",
	BeltGreen:  "hijau",
	BeltBlue:   "biru",
	BeltRed:    "merah",
	BeltBrown:  "coklat",
	BeltBlack:  "hitam",
}

func BeltName(level int16) string {
	if n, ok := beltNames[level]; ok {
		return n
	}
	return "tidak dikenal"
}

type StudentModel struct {
	StudentID uuid.UUID `gorm:"column:student_id;type:uuid;primaryKey" json:"student_id"`

	StudentDojoID   uuid.UUID `gorm:"column:student_dojo_id;type:uuid;not null;index"   json:"student_dojo_id"`
	StudentFamilyID uuid.UUID `gorm:"column:student_family_id;type:uuid;not null;index" json:"student_family_id"`

	StudentName      string     `gorm:"column:student_name;type:text;not null" json:"student_name"`
	StudentBirthDate *time.Time `gorm:"column:student_birth_date;type:date"    json:"student_birth_date,omitempty"`

	StudentBeltLevel int16     `gorm:"column:student_belt_level;type:smallint;not null;default:0" json:"student_belt_level"`
	StudentJoinedAt  time.Time `gorm:"column:student_joined_at;type:date;not null"                json:"student_joined_at"`

	StudentCreatedAt time.Time      `gorm:"column:student_created_at;autoCreateTime" json:"student_created_at"`
	StudentUpdatedAt *time.Time     `gorm:"column:student_updated_at;autoUpdateTime" json:"student_updated_at,omitempty"`
	StudentDeletedAt gorm.DeletedAt `gorm:"column:student_deleted_at;index"          json:"student_deleted_at,omitempty"`
}

func (StudentModel) TableName() string { return "students" }

func (m *StudentModel) BeforeCreate(tx *gorm.DB) error {
	if m.StudentID == uuid.Nil {
		m.StudentID = uuid.New()
	}
	return nil
}

// AgeOn menghitung umur penuh (tahun) pada tanggal tertentu.
// -1 bila tanggal lahir tidak diisi.
func (m *StudentModel) AgeOn(at time.Time) int {
	if m.StudentBirthDate == nil {
		return -1
	}
	b := *m.StudentBirthDate
	age := at.Year() - b.Year()
	if at.Month() < b.Month() || (at.Month() == b.Month() && at.Day() < b.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age
}
