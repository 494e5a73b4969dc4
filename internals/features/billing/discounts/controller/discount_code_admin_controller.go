// internals/features/billing/discounts/controller/discount_code_admin_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dto "dojoku_backend/internals/features/billing/discounts/dto"
	model "dojoku_backend/internals/features/billing/discounts/model"
	helper "dojoku_backend/internals/helpers"
)

type DiscountCodeAdminController struct {
	DB *gorm.DB
}

func NewDiscountCodeAdminController(db *gorm.DB) *DiscountCodeAdminController {
	return &DiscountCodeAdminController{DB: db}
}

/* ======================= CREATE ======================= */
// POST /api/a/discount-codes
func (h *DiscountCodeAdminController) Create(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateDiscountCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	m := req.ToModel(dojoID)
	if err := h.DB.Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "Kode diskon sudah ada di dojo ini")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat kode diskon")
	}

	return helper.JsonCreated(c, "Kode diskon berhasil dibuat", dto.FromModel(*m))
}

/* ======================= LIST ======================= */
// GET /api/a/discount-codes?active=&applicable_to=&q=
func (h *DiscountCodeAdminController) List(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	base := h.DB.Model(&model.DiscountCodeModel{}).
		Where("discount_code_dojo_id = ?", dojoID)

	if act := c.Query("active"); act != "" {
		base = base.Where("discount_code_is_active = ?", act == "true" || act == "1")
	}
	if ap := c.Query("applicable_to"); ap != "" {
		base = base.Where("discount_code_applicable_to = ?", ap)
	}
	if q := c.Query("q"); q != "" {
		base = base.Where("discount_code_code ILIKE ?", "%"+q+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.DiscountCodeModel
	if err := base.
		Order("discount_code_created_at DESC").
		Limit(paging.PerPage).
		Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPagination(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", dto.FromModels(rows), &pg)
}

/* ======================= GET BY ID ======================= */
// GET /api/a/discount-codes/:id
func (h *DiscountCodeAdminController) GetByID(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}
	idStr := c.Params("id")
	if idStr == "" {
		return fiber.NewError(fiber.StatusBadRequest, "ID tidak boleh kosong")
	}

	var row model.DiscountCodeModel
	if err := h.DB.
		Where("discount_code_id = ? AND discount_code_dojo_id = ?", idStr, dojoID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonOK(c, "OK", dto.FromModel(row))
}

/* ======================= DEACTIVATE ======================= */
// PATCH /api/a/discount-codes/:id/deactivate
func (h *DiscountCodeAdminController) Deactivate(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}
	idStr := c.Params("id")
	if idStr == "" {
		return fiber.NewError(fiber.StatusBadRequest, "ID tidak boleh kosong")
	}

	res := h.DB.Model(&model.DiscountCodeModel{}).
		Where("discount_code_id = ? AND discount_code_dojo_id = ?", idStr, dojoID).
		Update("discount_code_is_active", false)
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
	}

	return helper.JsonOK(c, "Kode diskon dinonaktifkan", fiber.Map{"id": idStr})
}

/* ======================= USAGES ======================= */
// GET /api/a/discount-codes/:id/usages
func (h *DiscountCodeAdminController) ListUsages(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}
	idStr := c.Params("id")
	if idStr == "" {
		return fiber.NewError(fiber.StatusBadRequest, "ID tidak boleh kosong")
	}

	// Pastikan kode milik dojo ini dulu.
	var code model.DiscountCodeModel
	if err := h.DB.
		Where("discount_code_id = ? AND discount_code_dojo_id = ?", idStr, dojoID).
		First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	paging := helper.ResolvePaging(c, 20, 100)

	base := h.DB.Model(&model.DiscountUsageModel{}).
		Where("discount_usage_code_id = ?", code.DiscountCodeID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.DiscountUsageModel
	if err := base.
		Order("discount_usage_created_at DESC").
		Limit(paging.PerPage).
		Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPagination(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", rows, &pg)
}
