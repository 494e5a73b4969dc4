// internals/features/billing/enrollments/service/enrollment_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	m "dojoku_backend/internals/features/billing/enrollments/model"
	"dojoku_backend/internals/helpers/dates"
)

// EnrollmentService membungkus operasi DB di atas enrollments.
// Semua mutasi paid_until lewat sini supaya disiplin monotonic
// terjaga di satu tempat.
type EnrollmentService struct {
	DB *gorm.DB
}

func NewEnrollmentService(db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{DB: db}
}

// FindForStudent memilih enrollment yang menentukan status siswa:
// active dulu, lalu trial, yang terbaru menang. nil = tidak terdaftar.
func (s *EnrollmentService) FindForStudent(ctx context.Context, dojoID, studentID uuid.UUID) (*m.EnrollmentModel, error) {
	var row m.EnrollmentModel
	err := s.DB.WithContext(ctx).
		Where("enrollment_dojo_id = ? AND enrollment_student_id = ?", dojoID, studentID).
		Where("enrollment_status IN ?", []string{m.EnrollmentStatusActive, m.EnrollmentStatusTrial}).
		Order("CASE enrollment_status WHEN 'active' THEN 0 ELSE 1 END, enrollment_created_at DESC").
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// AdvancePaidUntil menggeser paid_until maju secara kondisional.
// Guard NULL-atau-<= menjamin kolom hanya bergerak maju meski dua
// writer (webhook vs rekonsiliasi) menang balapan bergantian.
func (s *EnrollmentService) AdvancePaidUntil(ctx context.Context, enrollmentID uuid.UUID, newPaidUntil time.Time) (bool, error) {
	day := dates.Day(newPaidUntil)
	res := s.DB.WithContext(ctx).
		Model(&m.EnrollmentModel{}).
		Where("enrollment_id = ?", enrollmentID).
		Where("enrollment_paid_until IS NULL OR enrollment_paid_until <= ?", day).
		Update("enrollment_paid_until", day)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ActivateFromTrial menaikkan trial -> active saat pembayaran latihan
// pertama lunas. Kondisional supaya idempoten.
func (s *EnrollmentService) ActivateFromTrial(ctx context.Context, enrollmentID uuid.UUID) error {
	return s.DB.WithContext(ctx).
		Model(&m.EnrollmentModel{}).
		Where("enrollment_id = ? AND enrollment_status = ?", enrollmentID, m.EnrollmentStatusTrial).
		Update("enrollment_status", m.EnrollmentStatusActive).Error
}

// OverridePaidUntil: satu-satunya jalur yang boleh menggeser paid_until
// mundur. Khusus admin, tercatat di log.
func (s *EnrollmentService) OverridePaidUntil(ctx context.Context, dojoID, enrollmentID uuid.UUID, newDate time.Time) (*m.EnrollmentModel, error) {
	day := dates.Day(newDate)
	res := s.DB.WithContext(ctx).
		Model(&m.EnrollmentModel{}).
		Where("enrollment_id = ? AND enrollment_dojo_id = ?", enrollmentID, dojoID).
		Update("enrollment_paid_until", day)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var row m.EnrollmentModel
	if err := s.DB.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListExpiring mengambil enrollment aktif yang habis dalam N hari ke
// depan (termasuk yang sudah lewat), untuk banner & follow-up admin.
func (s *EnrollmentService) ListExpiring(ctx context.Context, dojoID uuid.UUID, withinDays, offset, limit int) ([]m.EnrollmentModel, int64, error) {
	today := dates.Today()
	horizon := dates.AddDays(today, withinDays)

	base := s.DB.WithContext(ctx).
		Model(&m.EnrollmentModel{}).
		Where("enrollment_dojo_id = ?", dojoID).
		Where("enrollment_status = ?", m.EnrollmentStatusActive).
		Where("enrollment_paid_until IS NOT NULL AND enrollment_paid_until <= ?", horizon)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []m.EnrollmentModel
	err := base.
		Order("enrollment_paid_until ASC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	return rows, total, err
}
