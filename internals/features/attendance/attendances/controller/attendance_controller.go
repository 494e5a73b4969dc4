// internals/features/attendance/attendances/controller/attendance_controller.go
package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dojoku_backend/internals/configs"
	dto "dojoku_backend/internals/features/attendance/attendances/dto"
	model "dojoku_backend/internals/features/attendance/attendances/model"
	service "dojoku_backend/internals/features/attendance/attendances/service"
	am "dojoku_backend/internals/features/billing/automation/model"
	autosvc "dojoku_backend/internals/features/billing/automation/service"
	esvc "dojoku_backend/internals/features/billing/enrollments/service"
	smodel "dojoku_backend/internals/features/dojo/members/model"
	helper "dojoku_backend/internals/helpers"
	"dojoku_backend/internals/helpers/dates"
)

type AttendanceController struct {
	DB          *gorm.DB
	Service     *service.AttendanceService
	Enrollments *esvc.EnrollmentService
	Billing     configs.BillingConfig
}

func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{
		DB:          db,
		Service:     service.NewAttendanceService(db),
		Enrollments: esvc.NewEnrollmentService(db),
		Billing:     configs.LoadBillingConfig(),
	}
}

/* ======================= CHECK-IN ======================= */
// POST /api/a/attendances/check-in
// Gerbang kehadiran: siswa expired/belum terdaftar ditolak, trial dan
// active lolos. Milestone kehadiran memicu event diskon.
func (h *AttendanceController) CheckIn(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var student smodel.StudentModel
	if err := h.DB.
		Where("student_id = ? AND student_dojo_id = ?", req.AttendanceStudentID, dojoID).
		First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "Siswa tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	enr, err := h.Enrollments.FindForStudent(c.Context(), dojoID, student.StudentID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	switch esvc.Eligibility(enr, dates.Today()) {
	case esvc.EligibilityNotEnrolled:
		return fiber.NewError(fiber.StatusForbidden, "Siswa belum terdaftar di program aktif")
	case esvc.EligibilityExpired:
		return fiber.NewError(fiber.StatusForbidden, "Masa berlaku pembayaran sudah habis, silakan perpanjang dulu")
	}

	day := dates.Today()
	if req.AttendanceDate != nil {
		day = dates.Day(*req.AttendanceDate)
	}

	row := &model.AttendanceModel{
		AttendanceDojoID:    dojoID,
		AttendanceStudentID: student.StudentID,
		AttendanceClassID:   req.AttendanceClassID,
		AttendanceDate:      day,
	}

	var total int64
	var milestone *int
	if err := h.DB.Transaction(func(tx *gorm.DB) error {
		att := &service.AttendanceService{DB: tx}
		if err := att.RecordCheckIn(c.Context(), row); err != nil {
			return err
		}

		n, err := att.CountForStudent(c.Context(), student.StudentID)
		if err != nil {
			return err
		}
		total = n

		for _, ms := range h.Billing.AttendanceMilestones {
			if int64(ms) != n {
				continue
			}
			milestone = &ms
			engine := &autosvc.EngineService{DB: tx}
			_, err := engine.RecordEvent(c.Context(), dojoID, am.EventAttendanceMilestone,
				&student.StudentID, &student.StudentFamilyID,
				map[string]interface{}{"count": ms})
			return err
		}
		return nil
	}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "Siswa sudah check-in di kelas ini hari ini")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal mencatat kehadiran: "+err.Error())
	}

	if milestone != nil {
		log.Printf("[ATTENDANCE] ✅ %s mencapai %d kehadiran", student.StudentName, *milestone)
	}

	out := dto.FromAttendanceModel(*row)
	out.TotalVisits = total
	out.Milestone = milestone
	return helper.JsonCreated(c, "Check-in tercatat", out)
}

/* ======================= LIST (ADMIN) ======================= */
// GET /api/a/attendances/student/:student_id
func (h *AttendanceController) ListForStudent(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	studentID, err := uuid.Parse(c.Params("student_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID siswa tidak valid")
	}

	paging := helper.ResolvePaging(c, 20, 100)

	rows, total, err := h.Service.ListForStudent(c.Context(), dojoID, studentID, paging.Offset, paging.PerPage)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPagination(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", dto.FromAttendanceModels(rows), &pg)
}

/* ======================= LIST (WALI) ======================= */
// GET /api/u/attendances/student/:student_id
func (h *AttendanceController) ListMine(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}
	familyID, err := helper.GetFamilyIDFromToken(c)
	if err != nil {
		return err
	}

	studentID, err := uuid.Parse(c.Params("student_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID siswa tidak valid")
	}

	var student smodel.StudentModel
	if err := h.DB.
		Where("student_id = ? AND student_dojo_id = ? AND student_family_id = ?", studentID, dojoID, familyID).
		First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	paging := helper.ResolvePaging(c, 20, 100)

	rows, total, err := h.Service.ListForStudent(c.Context(), dojoID, studentID, paging.Offset, paging.PerPage)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPagination(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", dto.FromAttendanceModels(rows), &pg)
}
