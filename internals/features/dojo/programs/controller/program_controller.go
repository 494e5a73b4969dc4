// internals/features/dojo/programs/controller/program_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "dojoku_backend/internals/features/dojo/programs/dto"
	model "dojoku_backend/internals/features/dojo/programs/model"
	helper "dojoku_backend/internals/helpers"
)

type ProgramController struct {
	DB *gorm.DB
}

func NewProgramController(db *gorm.DB) *ProgramController {
	return &ProgramController{DB: db}
}

/* ======================= CREATE PROGRAM ======================= */
// POST /api/a/programs
func (h *ProgramController) Create(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	row := req.ToModel(dojoID)
	if err := h.DB.Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "Kode program sudah dipakai di dojo ini")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat program: "+err.Error())
	}

	return helper.JsonCreated(c, "Program berhasil dibuat", dto.FromProgramModel(row))
}

/* ======================= LIST PROGRAMS ======================= */
// GET /api/a/programs?active=
func (h *ProgramController) List(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	base := h.DB.Model(&model.ProgramModel{}).
		Where("program_dojo_id = ?", dojoID)

	if ac := c.Query("active"); ac != "" {
		base = base.Where("program_is_active = ?", ac == "true")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.ProgramModel
	if err := base.
		Order("program_code ASC").
		Limit(paging.PerPage).
		Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPagination(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", dto.FromProgramModels(rows), &pg)
}

/* ======================= GET PROGRAM ======================= */
// GET /api/a/programs/:id (termasuk kelas-kelasnya)
func (h *ProgramController) GetByID(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID tidak valid")
	}

	var row model.ProgramModel
	if err := h.DB.
		Where("program_id = ? AND program_dojo_id = ?", id, dojoID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var classes []model.ClassModel
	if err := h.DB.
		Where("class_program_id = ?", row.ProgramID).
		Order("class_name ASC").
		Find(&classes).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonOK(c, "OK", fiber.Map{
		"program": dto.FromProgramModel(&row),
		"classes": dto.FromClassModels(classes),
	})
}

/* ======================= DEACTIVATE ======================= */
// PATCH /api/a/programs/:id/deactivate
// Program tidak pernah dihapus, hanya ditutup untuk pendaftaran baru.
func (h *ProgramController) Deactivate(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID tidak valid")
	}

	res := h.DB.Model(&model.ProgramModel{}).
		Where("program_id = ? AND program_dojo_id = ?", id, dojoID).
		Update("program_is_active", false)
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
	}

	return helper.JsonOK(c, "Program dinonaktifkan", fiber.Map{"program_id": id})
}

/* ======================= CREATE CLASS ======================= */
// POST /api/a/programs/classes
func (h *ProgramController) CreateClass(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var program model.ProgramModel
	if err := h.DB.
		Where("program_id = ? AND program_dojo_id = ?", req.ClassProgramID, dojoID).
		First(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "Program tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	row := req.ToModel(dojoID)
	if err := h.DB.Create(row).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat kelas: "+err.Error())
	}

	return helper.JsonCreated(c, "Kelas berhasil dibuat", dto.FromClassModel(row))
}

/* ======================= LIST CLASSES ======================= */
// GET /api/a/programs/classes?program_id=
func (h *ProgramController) ListClasses(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	base := h.DB.Model(&model.ClassModel{}).
		Where("class_dojo_id = ?", dojoID)

	if pid := c.Query("program_id"); pid != "" {
		base = base.Where("class_program_id = ?", pid)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.ClassModel
	if err := base.
		Order("class_name ASC").
		Limit(paging.PerPage).
		Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPagination(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", dto.FromClassModels(rows), &pg)
}
