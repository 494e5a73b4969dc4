// internals/features/dojo/members/controller/student_controller.go
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
	dto "dojoku_backend/internals/features/dojo/members/dto"
	model "dojoku_backend/internals/features/dojo/members/model"
	helper "dojoku_backend/internals/helpers"
	"dojoku_backend/internals/helpers/dates"
)

type StudentController struct {
	DB *gorm.DB
}

func NewStudentController(db *gorm.DB) *StudentController {
	return &StudentController{DB: db}
}

/* ======================= CREATE ======================= */
// POST /api/a/students
func (h *StudentController) Create(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var family model.FamilyModel
	if err := h.DB.
		Where("family_id = ? AND family_dojo_id = ?", req.StudentFamilyID, dojoID).
		First(&family).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "Keluarga tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	row := req.ToModel(dojoID)
	if row.StudentJoinedAt.IsZero() {
		row.StudentJoinedAt = dates.Today()
	}

	if err := h.DB.Create(row).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat siswa: "+err.Error())
	}

	return helper.JsonCreated(c, "Siswa berhasil didaftarkan", dto.FromStudentModel(row))
}

/* ======================= LIST ======================= */
// GET /api/a/students?family_id=&q=
func (h *StudentController) List(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	base := h.DB.Model(&model.StudentModel{}).
		Where("student_dojo_id = ?", dojoID)

	if fid := c.Query("family_id"); fid != "" {
		base = base.Where("student_family_id = ?", fid)
	}
	if q := c.Query("q"); q != "" {
		base = base.Where("student_name ILIKE ?", "%"+q+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.StudentModel
	if err := base.
		Order("student_created_at DESC").
		Limit(paging.PerPage).
		Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPagination(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", dto.FromStudentModels(rows), &pg)
}

/* ======================= GET BY ID ======================= */
// GET /api/a/students/:id
func (h *StudentController) GetByID(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID tidak valid")
	}

	var row model.StudentModel
	if err := h.DB.
		Where("student_id = ? AND student_dojo_id = ?", id, dojoID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonOK(c, "OK", dto.FromStudentModel(&row))
}

/* ======================= PROMOTE BELT ======================= */
// POST /api/a/students/:id/promote
// Kenaikan tingkat sabuk. Memicu event `belt_promotion` dalam
// transaksi yang sama; tingkat hanya boleh naik.
func (h *StudentController) PromoteBelt(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID tidak valid")
	}

	var req dto.PromoteBeltRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var row model.StudentModel
	if err := h.DB.
		Where("student_id = ? AND student_dojo_id = ?", id, dojoID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if req.StudentBeltLevel <= row.StudentBeltLevel {
		return fiber.NewError(fiber.StatusBadRequest, "Tingkat sabuk baru harus lebih tinggi dari sekarang")
	}

	from := row.StudentBeltLevel
	to := req.StudentBeltLevel

	if err := h.DB.Transaction(func(tx *gorm.DB) error {
		// Guard kondisional: dua promosi beruntun tidak boleh saling timpa.
		res := tx.Model(&model.StudentModel{}).
			Where("student_id = ? AND student_belt_level = ?", row.StudentID, from).
			Update("student_belt_level", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "Tingkat sabuk sudah berubah, muat ulang data")
		}

		engine := &autosvc.EngineService{DB: tx}
		_, err := engine.RecordEvent(c.Context(), dojoID, am.EventBeltPromotion,
			&row.StudentID, &row.StudentFamilyID,
			map[string]interface{}{
				"from":      int(from),
				"to":        int(to),
				"from_name": model.BeltName(from),
				"to_name":   model.BeltName(to),
			})
		return err
	}); err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal promosi sabuk: "+err.Error())
	}

	row.StudentBeltLevel = to
	log.Printf("[MEMBER] ✅ %s naik sabuk %s -> %s", row.StudentName, model.BeltName(from), model.BeltName(to))
	return helper.JsonUpdated(c, "Siswa naik tingkat sabuk", dto.FromStudentModel(&row))
}
