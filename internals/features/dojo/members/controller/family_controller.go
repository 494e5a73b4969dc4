// internals/features/dojo/members/controller/family_controller.go
package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	am "dojoku_backend/internals/features/billing/automation/model"
	autosvc "dojoku_backend/internals/features/billing/automation/service"
	dto "dojoku_backend/internals/features/dojo/members/dto"
	model "dojoku_backend/internals/features/dojo/members/model"
	helper "dojoku_backend/internals/helpers"
)

type FamilyController struct {
	DB *gorm.DB
}

func NewFamilyController(db *gorm.DB) *FamilyController {
	return &FamilyController{DB: db}
}

/* ======================= CREATE ======================= */
// POST /api/a/families
// Daftar lewat kode referral: keluarga pengajak dicatat di
// family_referred_by_id dan mendapat event `referral`.
func (h *FamilyController) Create(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateFamilyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var referrer *model.FamilyModel
	if req.ReferralCode != nil {
		var row model.FamilyModel
		code := strings.ToUpper(strings.TrimSpace(*req.ReferralCode))
		if err := h.DB.
			Where("family_dojo_id = ? AND family_referral_code = ?", dojoID, code).
			First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "Kode referral tidak dikenal")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		referrer = &row
	}

	row := req.ToModel(dojoID)
	if referrer != nil {
		row.FamilyReferredByID = &referrer.FamilyID
	}

	if err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		if referrer == nil {
			return nil
		}
		engine := &autosvc.EngineService{DB: tx}
		_, err := engine.RecordEvent(c.Context(), dojoID, am.EventReferral,
			nil, &referrer.FamilyID,
			map[string]interface{}{
				"referred_family_id": row.FamilyID.String(),
				"referral_code":      referrer.FamilyReferralCode,
			})
		return err
	}); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat keluarga: "+err.Error())
	}

	if referrer != nil {
		log.Printf("[MEMBER] ✅ keluarga %s bergabung lewat referral %s", row.FamilyName, referrer.FamilyName)
	}
	return helper.JsonCreated(c, "Keluarga berhasil didaftarkan", dto.FromFamilyModel(row))
}

/* ======================= RECORD REFERRAL (MANUAL) ======================= */
// POST /api/a/families/referrals
// Untuk referral yang baru dilaporkan belakangan. Kondisional supaya
// satu keluarga hanya tercatat diajak sekali.
func (h *FamilyController) RecordReferral(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.RecordReferralRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.ReferrerFamilyID == req.ReferredFamilyID {
		return fiber.NewError(fiber.StatusBadRequest, "Keluarga tidak bisa mereferensikan dirinya sendiri")
	}

	var referrer model.FamilyModel
	if err := h.DB.
		Where("family_id = ? AND family_dojo_id = ?", req.ReferrerFamilyID, dojoID).
		First(&referrer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "Keluarga pengajak tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if err := h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.FamilyModel{}).
			Where("family_id = ? AND family_dojo_id = ? AND family_referred_by_id IS NULL", req.ReferredFamilyID, dojoID).
			Update("family_referred_by_id", referrer.FamilyID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "Keluarga sudah tercatat diajak, atau tidak ditemukan")
		}

		engine := &autosvc.EngineService{DB: tx}
		_, err := engine.RecordEvent(c.Context(), dojoID, am.EventReferral,
			nil, &referrer.FamilyID,
			map[string]interface{}{
				"referred_family_id": req.ReferredFamilyID.String(),
				"referral_code":      referrer.FamilyReferralCode,
			})
		return err
	}); err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal mencatat referral: "+err.Error())
	}

	return helper.JsonOK(c, "Referral berhasil dicatat", fiber.Map{
		"referrer_family_id": req.ReferrerFamilyID,
		"referred_family_id": req.ReferredFamilyID,
	})
}

/* ======================= LIST ======================= */
// GET /api/a/families?q=
func (h *FamilyController) List(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	base := h.DB.Model(&model.FamilyModel{}).
		Where("family_dojo_id = ?", dojoID)

	if q := c.Query("q"); q != "" {
		base = base.Where("family_name ILIKE ?", "%"+q+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.FamilyModel
	if err := base.
		Order("family_created_at DESC").
		Limit(paging.PerPage).
		Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPagination(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", dto.FromFamilyModels(rows), &pg)
}

/* ======================= GET BY ID ======================= */
// GET /api/a/families/:id
func (h *FamilyController) GetByID(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID tidak valid")
	}

	var row model.FamilyModel
	if err := h.DB.
		Where("family_id = ? AND family_dojo_id = ?", id, dojoID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var students []model.StudentModel
	if err := h.DB.
		Where("student_family_id = ?", row.FamilyID).
		Order("student_created_at ASC").
		Find(&students).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonOK(c, "OK", fiber.Map{
		"family":   dto.FromFamilyModel(&row),
		"students": dto.FromStudentModels(students),
	})
}

/* ======================= GET MINE (WALI) ======================= */
// GET /api/u/families/me
func (h *FamilyController) GetMine(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}
	familyID, err := helper.GetFamilyIDFromToken(c)
	if err != nil {
		return err
	}

	var row model.FamilyModel
	if err := h.DB.
		Where("family_id = ? AND family_dojo_id = ?", familyID, dojoID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var students []model.StudentModel
	if err := h.DB.
		Where("student_family_id = ?", row.FamilyID).
		Order("student_created_at ASC").
		Find(&students).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonOK(c, "OK", fiber.Map{
		"family":   dto.FromFamilyModel(&row),
		"students": dto.FromStudentModels(students),
	})
}
