// internals/features/billing/payments/controller/webhook_controller.go
package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	model "dojoku_backend/internals/features/billing/payments/model"
	service "dojoku_backend/internals/features/billing/payments/service"
	"dojoku_backend/internals/features/billing/reconciliation/gateway"
	helper "dojoku_backend/internals/helpers"
)

type WebhookController struct {
	DB         *gorm.DB
	Settlement *service.SettlementService
}

func NewWebhookController(db *gorm.DB) *WebhookController {
	return &WebhookController{DB: db, Settlement: service.NewSettlementService(db)}
}

// GET ping untuk tombol test di dashboard Midtrans.
func (h *WebhookController) MidtransWebhookPing(c *fiber.Ctx) error {
	log.Println("✅ Midtrans ping (GET) received")
	return c.Status(fiber.StatusOK).SendString("OK")
}

/* ======================= MIDTRANS ======================= */
// POST /api/public/payments/midtrans/webhook
// Selalu balas 200 supaya Midtrans tidak spam retry; kegagalan
// pemrosesan cukup di-log, rekonsiliasi akan menyusul.
func (h *WebhookController) MidtransWebhook(c *fiber.Ctx) error {
	// --- 1) Robust parsing: JSON -> fallback form-urlencoded ---
	var body map[string]interface{}

	ct := strings.ToLower(string(c.Request().Header.ContentType()))
	raw := string(c.Body())

	if strings.Contains(ct, "application/json") && len(raw) > 0 {
		if err := c.BodyParser(&body); err != nil {
			log.Println("[WARN] JSON parse failed:", err)
		}
	}

	// Midtrans kadang kirim form-urlencoded, termasuk tombol Test.
	if len(body) == 0 && (strings.Contains(ct, "application/x-www-form-urlencoded") || ct == "" || len(raw) == 0) {
		form := map[string]interface{}{}
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			form[string(k)] = string(v)
		})
		if len(form) > 0 {
			body = form
		}
	}

	if len(body) == 0 {
		log.Printf("[ERROR] Webhook body kosong. CT=%q raw=%q\n", ct, raw)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "empty body"})
	}

	// --- 2) Ambil field penting ---
	orderID := getString(body, "order_id")
	txStatus := strings.ToLower(getString(body, "transaction_status"))
	fraud := strings.ToLower(getString(body, "fraud_status"))

	log.Printf("📥 Midtrans webhook → order_id=%s, tx_status=%s, fraud=%s", orderID, txStatus, fraud)

	if orderID == "" || txStatus == "" {
		log.Println("[ERROR] Payload webhook tidak lengkap:", body)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "incomplete payload"})
	}

	appStatus, err := h.process(c, orderID, txStatus, fraud, body)
	if err != nil {
		log.Println("[ERROR] Webhook processing failed:", err)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "processed with warning",
			"error":   err.Error(),
		})
	}

	return helper.JsonOK(c, "Webhook Midtrans diproses",
		struct {
			OrderID        string `json:"order_id"`
			MidtransStatus string `json:"midtrans_status"`
			AppStatus      string `json:"app_status"`
		}{
			OrderID:        orderID,
			MidtransStatus: txStatus,
			AppStatus:      appStatus,
		},
	)
}

func (h *WebhookController) process(c *fiber.Ctx, orderID, txStatus, fraud string, body map[string]interface{}) (string, error) {
	payment, err := h.Settlement.FindByOrderID(c.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			return "", errors.New("payment dengan order_id " + orderID + " tidak ditemukan")
		}
		return "", err
	}

	appStatus := gateway.MapMidtransStatus(txStatus, fraud)

	switch appStatus {
	case model.PaymentStatusSucceeded:
		paidAt := time.Now()
		if st := getString(body, "settlement_time"); st != "" {
			if parsed, perr := time.ParseInLocation("2006-01-02 15:04:05", st, time.Local); perr == nil {
				paidAt = parsed
			}
		}
		_, _, err := h.Settlement.Settle(c.Context(), payment.PaymentID, paidAt, body, "webhook")
		return appStatus, err

	case model.PaymentStatusFailed:
		_, _, err := h.Settlement.Fail(c.Context(), payment.PaymentID, "Midtrans melaporkan "+txStatus, body, "webhook")
		return appStatus, err

	default:
		log.Println("[INFO] Status tidak diproses:", txStatus)
		return appStatus, nil
	}
}

func getString(body map[string]interface{}, key string) string {
	if v, ok := body[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
