// internals/features/billing/payments/controller/payment_admin_controller.go
package controller

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "dojoku_backend/internals/features/billing/payments/dto"
	model "dojoku_backend/internals/features/billing/payments/model"
	service "dojoku_backend/internals/features/billing/payments/service"
	helper "dojoku_backend/internals/helpers"
)

type PaymentAdminController struct {
	DB         *gorm.DB
	Settlement *service.SettlementService
}

func NewPaymentAdminController(db *gorm.DB) *PaymentAdminController {
	return &PaymentAdminController{DB: db, Settlement: service.NewSettlementService(db)}
}

// loadScoped memastikan payment milik dojo admin yang sedang login.
func (h *PaymentAdminController) loadScoped(c *fiber.Ctx) (*model.PaymentModel, error) {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return nil, err
	}
	idStr := c.Params("id")
	if idStr == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "ID tidak boleh kosong")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "ID tidak valid")
	}

	var row model.PaymentModel
	if err := h.DB.
		Where("payment_id = ? AND payment_dojo_id = ?", id, dojoID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return &row, nil
}

/* ======================= CONFIRM (MANUAL) ======================= */
// POST /api/a/payments/:id/confirm
// Untuk pembayaran transfer/tunai yang diverifikasi admin.
func (h *PaymentAdminController) Confirm(c *fiber.Ctx) error {
	row, err := h.loadScoped(c)
	if err != nil {
		return err
	}

	var req dto.ConfirmPaymentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
		}
		if err := validator.New().Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	receipt := map[string]interface{}{"confirmed_by": "admin"}
	if req.Note != nil {
		receipt["note"] = *req.Note
	}

	updated, changed, err := h.Settlement.Settle(c.Context(), row.PaymentID, paidAt, receipt, "manual")
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal konfirmasi payment: "+err.Error())
	}
	if !changed && updated.PaymentStatus != model.PaymentStatusSucceeded {
		return fiber.NewError(fiber.StatusConflict, "Payment sudah berstatus "+updated.PaymentStatus)
	}

	msg := "Payment berhasil dikonfirmasi"
	if !changed {
		msg = "Payment sudah lunas sebelumnya"
	}
	return helper.JsonOK(c, msg, dto.FromPaymentModel(*updated))
}

/* ======================= MARK FAILED ======================= */
// POST /api/a/payments/:id/fail
func (h *PaymentAdminController) MarkFailed(c *fiber.Ctx) error {
	row, err := h.loadScoped(c)
	if err != nil {
		return err
	}

	var req dto.FailPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	updated, changed, err := h.Settlement.Fail(c.Context(), row.PaymentID, req.Reason, nil, "manual")
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menandai payment: "+err.Error())
	}
	if !changed && updated.PaymentStatus != model.PaymentStatusFailed {
		return fiber.NewError(fiber.StatusConflict, "Payment sudah berstatus "+updated.PaymentStatus)
	}

	return helper.JsonOK(c, "Payment ditandai gagal", dto.FromPaymentModel(*updated))
}

/* ======================= LIST ======================= */
// GET /api/a/payments?status=&type=&family_id=&student_id=
func (h *PaymentAdminController) List(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	base := h.DB.Model(&model.PaymentModel{}).
		Where("payment_dojo_id = ?", dojoID)

	if st := c.Query("status"); st != "" {
		base = base.Where("payment_status = ?", st)
	}
	if tp := c.Query("type"); tp != "" {
		base = base.Where("payment_type = ?", tp)
	}
	if fid := c.Query("family_id"); fid != "" {
		base = base.Where("payment_family_id = ?", fid)
	}
	if sid := c.Query("student_id"); sid != "" {
		base = base.Where("payment_student_id = ?", sid)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.PaymentModel
	if err := base.
		Order("payment_created_at DESC").
		Limit(paging.PerPage).
		Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPagination(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", dto.FromPaymentModels(rows), &pg)
}
