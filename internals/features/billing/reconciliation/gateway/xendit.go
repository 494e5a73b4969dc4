// internals/features/billing/reconciliation/gateway/xendit.go
package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	pm "dojoku_backend/internals/features/billing/payments/model"
)

const xenditInvoiceURL = "https://api.xendit.co/v2/invoices/"

// Tabel terjemahan status invoice Xendit -> status internal.
var xenditStatusMap = map[string]string{
	"PAID":    pm.PaymentStatusSucceeded,
	"SETTLED": pm.PaymentStatusSucceeded,
	"EXPIRED": pm.PaymentStatusFailed,
	"PENDING": pm.PaymentStatusPending,
}

func MapXenditStatus(invoiceStatus string) string {
	if s, ok := xenditStatusMap[invoiceStatus]; ok {
		return s
	}
	return pm.PaymentStatusPending
}

type XenditDriver struct {
	secretKey string
	http      *http.Client
}

func NewXenditDriver(secretKey string) *XenditDriver {
	return &XenditDriver{
		secretKey: secretKey,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (d *XenditDriver) Name() string { return pm.GatewayXendit }

type xenditInvoice struct {
	ID         string  `json:"id"`
	ExternalID string  `json:"external_id"`
	Status     string  `json:"status"`
	Amount     float64 `json:"amount"`
	PaidAt     *string `json:"paid_at"`
	PaidAmount float64 `json:"paid_amount"`
}

func (d *XenditDriver) Check(ctx context.Context, orderID string) (*Result, error) {
	if d.secretKey == "" {
		return nil, ErrMissingCredentials
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, xenditInvoiceURL+orderID, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(d.secretKey, "")

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &Result{Found: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("xendit invoice %s: HTTP %d: %s", orderID, resp.StatusCode, string(body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var inv xenditInvoice
	if err := sonic.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("xendit invoice %s: decode gagal: %w", orderID, err)
	}

	receipt := map[string]interface{}{
		"gateway":     pm.GatewayXendit,
		"invoice_id":  inv.ID,
		"status":      inv.Status,
		"amount":      inv.Amount,
		"paid_amount": inv.PaidAmount,
	}
	if inv.PaidAt != nil {
		receipt["paid_at"] = *inv.PaidAt
	}

	return &Result{
		Found:     true,
		RawStatus: inv.Status,
		Status:    MapXenditStatus(inv.Status),
		Receipt:   receipt,
	}, nil
}
