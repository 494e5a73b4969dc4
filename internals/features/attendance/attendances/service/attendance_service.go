// internals/features/attendance/attendances/service/attendance_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	m "dojoku_backend/internals/features/attendance/attendances/model"
	"dojoku_backend/internals/helpers/dates"
)

type AttendanceService struct {
	DB *gorm.DB
}

func NewAttendanceService(db *gorm.DB) *AttendanceService {
	return &AttendanceService{DB: db}
}

// AttendanceAfter mengembalikan tanggal kehadiran siswa setelah
// tanggal tertentu (strictly after), urut naik. Dipakai kalkulator
// paid_until untuk aturan attendance_credit.
func (s *AttendanceService) AttendanceAfter(ctx context.Context, studentID uuid.UUID, after time.Time) ([]time.Time, error) {
	var days []time.Time
	err := s.DB.WithContext(ctx).
		Model(&m.AttendanceModel{}).
		Where("attendance_student_id = ?", studentID).
		Where("attendance_date > ?", dates.Day(after)).
		Order("attendance_date ASC").
		Pluck("attendance_date", &days).Error
	return days, err
}

// RecordCheckIn menulis satu kehadiran. Unique index per
// (siswa, kelas, hari) membuat check-in ganda gagal dengan
// gorm.ErrDuplicatedKey.
func (s *AttendanceService) RecordCheckIn(ctx context.Context, row *m.AttendanceModel) error {
	row.AttendanceDate = dates.Day(row.AttendanceDate)
	if row.AttendanceCheckedInAt.IsZero() {
		row.AttendanceCheckedInAt = time.Now()
	}
	return s.DB.WithContext(ctx).Create(row).Error
}

// CountForStudent menghitung total kehadiran siswa (untuk milestone).
func (s *AttendanceService) CountForStudent(ctx context.Context, studentID uuid.UUID) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).
		Model(&m.AttendanceModel{}).
		Where("attendance_student_id = ?", studentID).
		Count(&n).Error
	return n, err
}

// ListForStudent untuk riwayat di portal wali.
func (s *AttendanceService) ListForStudent(ctx context.Context, dojoID, studentID uuid.UUID, offset, limit int) ([]m.AttendanceModel, int64, error) {
	base := s.DB.WithContext(ctx).
		Model(&m.AttendanceModel{}).
		Where("attendance_dojo_id = ? AND attendance_student_id = ?", dojoID, studentID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []m.AttendanceModel
	err := base.
		Order("attendance_date DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	return rows, total, err
}
