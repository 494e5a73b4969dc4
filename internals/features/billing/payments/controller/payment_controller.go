// internals/features/billing/payments/controller/payment_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dto "dojoku_backend/internals/features/billing/payments/dto"
	model "dojoku_backend/internals/features/billing/payments/model"
	service "dojoku_backend/internals/features/billing/payments/service"
	helper "dojoku_backend/internals/helpers"
)

type PaymentController struct {
	DB       *gorm.DB
	Checkout *service.CheckoutService
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{DB: db, Checkout: service.NewCheckoutService(db)}
}

/* ======================= CHECKOUT ======================= */
// POST /api/u/payments/checkout
func (h *PaymentController) CreateCheckout(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}
	familyID, err := helper.GetFamilyIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := h.Checkout.Checkout(c.Context(), req.ToInput(dojoID, familyID))
	if err != nil {
		return err
	}

	return helper.JsonCreated(c, "Checkout berhasil dibuat", dto.FromCheckoutResult(res))
}

/* ======================= LIST MINE ======================= */
// GET /api/u/payments?status=&type=
func (h *PaymentController) ListMine(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}
	familyID, err := helper.GetFamilyIDFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	base := h.DB.Model(&model.PaymentModel{}).
		Where("payment_dojo_id = ? AND payment_family_id = ?", dojoID, familyID)

	if st := c.Query("status"); st != "" {
		base = base.Where("payment_status = ?", st)
	}
	if tp := c.Query("type"); tp != "" {
		base = base.Where("payment_type = ?", tp)
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

/* ======================= GET BY ID ======================= */
// GET /api/u/payments/:id
func (h *PaymentController) GetByID(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}
	familyID, err := helper.GetFamilyIDFromToken(c)
	if err != nil {
		return err
	}

	idStr := c.Params("id")
	if idStr == "" {
		return fiber.NewError(fiber.StatusBadRequest, "ID tidak boleh kosong")
	}

	var row model.PaymentModel
	if err := h.DB.
		Where("payment_id = ? AND payment_dojo_id = ? AND payment_family_id = ?", idStr, dojoID, familyID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var items []model.PaymentItemModel
	if err := h.DB.
		Where("payment_item_payment_id = ?", row.PaymentID).
		Order("payment_item_created_at ASC").
		Find(&items).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	resp := dto.FromPaymentModel(row)
	resp.Items = dto.FromItemModels(items)
	return helper.JsonOK(c, "OK", resp)
}
