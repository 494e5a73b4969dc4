// internals/features/billing/enrollments/controller/enrollment_controller.go
package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	am "dojoku_backend/internals/features/billing/automation/model"
	autosvc "dojoku_backend/internals/features/billing/automation/service"
	dto "dojoku_backend/internals/features/billing/enrollments/dto"
	model "dojoku_backend/internals/features/billing/enrollments/model"
	service "dojoku_backend/internals/features/billing/enrollments/service"
	smodel "dojoku_backend/internals/features/dojo/members/model"
	pmodel "dojoku_backend/internals/features/dojo/programs/model"
	helper "dojoku_backend/internals/helpers"
	"dojoku_backend/internals/helpers/dates"
)

type EnrollmentController struct {
	DB      *gorm.DB
	Service *service.EnrollmentService
}

func NewEnrollmentController(db *gorm.DB) *EnrollmentController {
	return &EnrollmentController{DB: db, Service: service.NewEnrollmentService(db)}
}

/* ======================= CREATE ======================= */
// POST /api/a/enrollments
// Pendaftaran siswa ke program. Memicu event `enrollment` untuk mesin
// diskon dalam transaksi yang sama.
func (h *EnrollmentController) Create(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateEnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var student smodel.StudentModel
	if err := h.DB.
		Where("student_id = ? AND student_dojo_id = ?", req.EnrollmentStudentID, dojoID).
		First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "Siswa tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var program pmodel.ProgramModel
	if err := h.DB.
		Where("program_id = ? AND program_dojo_id = ? AND program_is_active = ?", req.EnrollmentProgramID, dojoID, true).
		First(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "Program tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	row := req.ToModel(dojoID)

	if err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		engine := &autosvc.EngineService{DB: tx}
		_, err := engine.RecordEvent(c.Context(), dojoID, am.EventEnrollment,
			&row.EnrollmentStudentID, &student.StudentFamilyID,
			map[string]interface{}{
				"enrollment_id": row.EnrollmentID.String(),
				"program_code":  program.ProgramCode,
				"billing_type":  row.EnrollmentBillingType,
				"status":        row.EnrollmentStatus,
			})
		return err
	}); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat enrollment: "+err.Error())
	}

	log.Printf("[ENROLLMENT] ✅ siswa %s terdaftar ke program %s (%s)", student.StudentName, program.ProgramCode, row.EnrollmentStatus)
	return helper.JsonCreated(c, "Enrollment berhasil dibuat", dto.FromEnrollmentModel(*row))
}

/* ======================= LIST ======================= */
// GET /api/a/enrollments?status=&student_id=&program_id=
func (h *EnrollmentController) List(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	base := h.DB.Model(&model.EnrollmentModel{}).
		Where("enrollment_dojo_id = ?", dojoID)

	if st := c.Query("status"); st != "" {
		base = base.Where("enrollment_status = ?", st)
	}
	if sid := c.Query("student_id"); sid != "" {
		base = base.Where("enrollment_student_id = ?", sid)
	}
	if pid := c.Query("program_id"); pid != "" {
		base = base.Where("enrollment_program_id = ?", pid)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.EnrollmentModel
	if err := base.
		Order("enrollment_created_at DESC").
		Limit(paging.PerPage).
		Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPagination(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", dto.FromEnrollmentModels(rows), &pg)
}

/* ======================= LIST EXPIRING ======================= */
// GET /api/a/enrollments/expiring?within_days=7
// Enrollment aktif yang segera/atau sudah habis, untuk follow-up admin.
func (h *EnrollmentController) ListExpiring(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	withinDays := c.QueryInt("within_days", 7)
	if withinDays < 0 {
		withinDays = 0
	}

	paging := helper.ResolvePaging(c, 20, 100)

	rows, total, err := h.Service.ListExpiring(c.Context(), dojoID, withinDays, paging.Offset, paging.PerPage)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPagination(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", dto.FromEnrollmentModels(rows), &pg)
}

/* ======================= OVERRIDE PAID UNTIL ======================= */
// PATCH /api/a/enrollments/:id/paid-until
// Satu-satunya jalur yang boleh menggeser paid_until mundur.
func (h *EnrollmentController) OverridePaidUntil(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID tidak valid")
	}

	var req dto.OverridePaidUntilRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	row, err := h.Service.OverridePaidUntil(c.Context(), dojoID, id, req.EnrollmentPaidUntil)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	note := ""
	if req.Note != nil {
		note = " (" + *req.Note + ")"
	}
	log.Printf("[ENROLLMENT] ⚠️ override paid_until %s -> %s%s", id, dates.Day(req.EnrollmentPaidUntil).Format("2006-01-02"), note)
	return helper.JsonUpdated(c, "paid_until berhasil dioverride", dto.FromEnrollmentModel(*row))
}

/* ======================= UPDATE STATUS ======================= */
// PATCH /api/a/enrollments/:id/status
func (h *EnrollmentController) UpdateStatus(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID tidak valid")
	}

	var req dto.UpdateEnrollmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res := h.DB.Model(&model.EnrollmentModel{}).
		Where("enrollment_id = ? AND enrollment_dojo_id = ?", id, dojoID).
		Update("enrollment_status", req.EnrollmentStatus)
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
	}

	var row model.EnrollmentModel
	if err := h.DB.Where("enrollment_id = ?", id).First(&row).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Status enrollment diperbarui", dto.FromEnrollmentModel(row))
}
