// internals/features/billing/reconciliation/gateway/midtrans.go
package gateway

import (
	"context"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"

	pm "dojoku_backend/internals/features/billing/payments/model"
)

// Tabel terjemahan transaction_status Midtrans -> status internal.
// capture dengan fraud_status=challenge dikecualikan (tetap pending
// sampai direview). Status tak dikenal dibiarkan pending.
var midtransStatusMap = map[string]string{
	"capture":    pm.PaymentStatusSucceeded,
	"settlement": pm.PaymentStatusSucceeded,
	"deny":       pm.PaymentStatusFailed,
	"cancel":     pm.PaymentStatusFailed,
	"expire":     pm.PaymentStatusFailed,
	"failure":    pm.PaymentStatusFailed,
	"pending":    pm.PaymentStatusPending,
	"authorize":  pm.PaymentStatusPending,
}

// MapMidtransStatus menerjemahkan status Midtrans; dipakai driver
// rekonsiliasi dan handler webhook supaya keduanya tidak pernah beda
// pendapat.
func MapMidtransStatus(transactionStatus, fraudStatus string) string {
	if transactionStatus == "capture" && fraudStatus == "challenge" {
		return pm.PaymentStatusPending
	}
	if s, ok := midtransStatusMap[transactionStatus]; ok {
		return s
	}
	return pm.PaymentStatusPending
}

type MidtransDriver struct {
	client     coreapi.Client
	configured bool
}

func NewMidtransDriver(serverKey string) *MidtransDriver {
	d := &MidtransDriver{}
	if serverKey != "" {
		d.client.New(serverKey, midtrans.Sandbox)
		d.configured = true
	}
	return d
}

func (d *MidtransDriver) Name() string { return pm.GatewayMidtrans }

func (d *MidtransDriver) Check(ctx context.Context, orderID string) (*Result, error) {
	if !d.configured {
		return nil, ErrMissingCredentials
	}

	resp, mErr := d.client.CheckTransaction(orderID)
	if mErr != nil {
		if mErr.StatusCode == 404 {
			return &Result{Found: false}, nil
		}
		return nil, mErr
	}

	receipt := map[string]interface{}{
		"gateway":            pm.GatewayMidtrans,
		"transaction_status": resp.TransactionStatus,
		"payment_type":       resp.PaymentType,
		"gross_amount":       resp.GrossAmount,
	}
	if resp.FraudStatus != "" {
		receipt["fraud_status"] = resp.FraudStatus
	}
	if resp.SettlementTime != "" {
		receipt["settlement_time"] = resp.SettlementTime
	}

	return &Result{
		Found:     true,
		RawStatus: resp.TransactionStatus,
		Status:    MapMidtransStatus(resp.TransactionStatus, resp.FraudStatus),
		Receipt:   receipt,
	}, nil
}
