// internals/features/billing/reconciliation/controller/reconciliation_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dojoku_backend/internals/configs"
	"dojoku_backend/internals/features/billing/reconciliation/gateway"
	service "dojoku_backend/internals/features/billing/reconciliation/service"
	helper "dojoku_backend/internals/helpers"
)

type ReconciliationController struct {
	Service *service.ReconciliationService
}

func NewReconciliationController(db *gorm.DB) *ReconciliationController {
	registry := gateway.NewRegistry(
		gateway.NewMidtransDriver(configs.MidtransServerKey),
		gateway.NewXenditDriver(configs.XenditSecretKey),
	)
	return &ReconciliationController{Service: service.NewReconciliationService(db, registry)}
}

/* ======================= RUN ======================= */
// POST /api/a/reconciliation/run?limit=
// Pemicu manual; scheduler menjalankan hal yang sama berkala.
func (h *ReconciliationController) RunNow(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	report, err := h.Service.RunOnce(c.Context(), limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Rekonsiliasi gagal: "+err.Error())
	}

	return helper.JsonOK(c, "Rekonsiliasi selesai", report)
}

/* ======================= RUNS ======================= */
// GET /api/a/reconciliation/runs
func (h *ReconciliationController) ListRuns(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	rows, total, err := h.Service.ListRuns(c.Context(), paging.Offset, paging.PerPage)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPagination(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", rows, &pg)
}
