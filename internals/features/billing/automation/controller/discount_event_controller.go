// internals/features/billing/automation/controller/discount_event_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dto "dojoku_backend/internals/features/billing/automation/dto"
	model "dojoku_backend/internals/features/billing/automation/model"
	service "dojoku_backend/internals/features/billing/automation/service"
	sm "dojoku_backend/internals/features/dojo/members/model"
	helper "dojoku_backend/internals/helpers"
)

type DiscountEventController struct {
	DB     *gorm.DB
	Engine *service.EngineService
}

func NewDiscountEventController(db *gorm.DB) *DiscountEventController {
	return &DiscountEventController{DB: db, Engine: service.NewEngineService(db)}
}

/* ======================= RECORD ======================= */
// POST /api/a/automation/events
// Untuk event manual (seasonal, koreksi); event organik direkam
// langsung oleh fitur terkait.
func (h *DiscountEventController) RecordEvent(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.RecordEventRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	// Guard tenant: subjek harus milik dojo yang sama.
	if req.DiscountEventStudentID != nil {
		var stu sm.StudentModel
		if err := h.DB.
			Where("student_id = ? AND student_dojo_id = ?", *req.DiscountEventStudentID, dojoID).
			First(&stu).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "Siswa tidak ditemukan")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if req.DiscountEventFamilyID == nil {
			req.DiscountEventFamilyID = &stu.StudentFamilyID
		}
	} else if req.DiscountEventFamilyID != nil {
		var fam sm.FamilyModel
		if err := h.DB.
			Where("family_id = ? AND family_dojo_id = ?", *req.DiscountEventFamilyID, dojoID).
			First(&fam).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "Keluarga tidak ditemukan")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}

	ev, err := h.Engine.RecordEvent(c.Context(), dojoID, req.DiscountEventType,
		req.DiscountEventStudentID, req.DiscountEventFamilyID, req.DiscountEventPayload)
	if err != nil {
		return err
	}

	return helper.JsonCreated(c, "Event berhasil direkam", dto.FromEventModel(*ev))
}

/* ======================= LIST ======================= */
// GET /api/a/automation/events?pending=true&event_type=
func (h *DiscountEventController) ListEvents(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	base := h.DB.Model(&model.DiscountEventModel{}).
		Where("discount_event_dojo_id = ?", dojoID)

	if c.Query("pending") == "true" {
		base = base.Where("discount_event_processed_at IS NULL")
	}
	if et := c.Query("event_type"); et != "" {
		base = base.Where("discount_event_type = ?", et)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.DiscountEventModel
	if err := base.
		Order("discount_event_occurred_at DESC").
		Limit(paging.PerPage).
		Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	out := make([]dto.DiscountEventResponse, 0, len(rows))
	for _, e := range rows {
		out = append(out, dto.FromEventModel(e))
	}

	pg := helper.BuildPagination(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", out, &pg)
}

/* ======================= PROCESS ======================= */
// POST /api/a/automation/events/process
// Pemicu manual; scheduler menjalankan hal yang sama secara berkala.
func (h *DiscountEventController) ProcessBatch(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.ProcessBatchRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
		}
	}

	report, err := h.Engine.ProcessBatch(c.Context(), &dojoID, req.Limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memproses event: "+err.Error())
	}

	return helper.JsonOK(c, "Batch selesai diproses", report)
}
