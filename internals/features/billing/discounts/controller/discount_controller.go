// internals/features/billing/discounts/controller/discount_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dto "dojoku_backend/internals/features/billing/discounts/dto"
	service "dojoku_backend/internals/features/billing/discounts/service"
	helper "dojoku_backend/internals/helpers"
)

type DiscountController struct {
	DB      *gorm.DB
	Service *service.DiscountService
}

func NewDiscountController(db *gorm.DB) *DiscountController {
	return &DiscountController{DB: db, Service: service.NewDiscountService(db)}
}

/* ======================= VALIDATE ======================= */
// POST /api/u/discounts/validate
// Murni baca: boleh dipanggil berulang kali dari halaman checkout.
func (h *DiscountController) Validate(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}
	familyID, err := helper.GetFamilyIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.ValidateDiscountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := h.Service.Validate(c.Context(), service.ValidationInput{
		DojoID:       dojoID,
		Code:         req.Code,
		FamilyID:     familyID,
		StudentID:    req.StudentID,
		ApplicableTo: req.ApplicableTo,
		Subtotal:     req.SubtotalCents,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal validasi kode diskon")
	}

	out := dto.ValidationResponse{
		Valid:         res.Valid,
		Reason:        res.Reason,
		DiscountCents: res.DiscountCents,
		FinalCents:    res.FinalCents,
	}
	if !res.Valid {
		out.Message = service.ReasonMessage(res.Reason)
	}
	return helper.JsonOK(c, "OK", out)
}

/* ======================= APPLY ======================= */
// POST /api/u/discounts/apply
// Mengikat kode ke payment pending; satu payment satu kode.
func (h *DiscountController) Apply(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.ApplyDiscountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := h.Service.Apply(c.Context(), dojoID, req.PaymentID, req.Code)
	if err != nil {
		return err
	}

	out := dto.ValidationResponse{
		Valid:         res.Valid,
		Reason:        res.Reason,
		DiscountCents: res.DiscountCents,
		FinalCents:    res.FinalCents,
	}
	if !res.Valid {
		out.Message = service.ReasonMessage(res.Reason)
		return helper.SuccessWithCode(c, fiber.StatusUnprocessableEntity, "Kode diskon ditolak", out)
	}

	return helper.JsonOK(c, "Kode diskon diterapkan", out)
}
