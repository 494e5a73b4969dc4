package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	pm "dojoku_backend/internals/features/billing/payments/model"
)

func TestMapMidtransStatus(t *testing.T) {
	assert.Equal(t, pm.PaymentStatusSucceeded, MapMidtransStatus("settlement", ""))
	assert.Equal(t, pm.PaymentStatusSucceeded, MapMidtransStatus("capture", "accept"))
	assert.Equal(t, pm.PaymentStatusFailed, MapMidtransStatus("deny", ""))
	assert.Equal(t, pm.PaymentStatusFailed, MapMidtransStatus("cancel", ""))
	assert.Equal(t, pm.PaymentStatusFailed, MapMidtransStatus("expire", ""))
	assert.Equal(t, pm.PaymentStatusFailed, MapMidtransStatus("failure", ""))
	assert.Equal(t, pm.PaymentStatusPending, MapMidtransStatus("pending", ""))
	assert.Equal(t, pm.PaymentStatusPending, MapMidtransStatus("authorize", ""))

	// capture yang masih direview fraud belum boleh dianggap lunas.
	assert.Equal(t, pm.PaymentStatusPending, MapMidtransStatus("capture", "challenge"))

	// Status asing dibiarkan pending, jangan menebak.
	assert.Equal(t, pm.PaymentStatusPending, MapMidtransStatus("refund", ""))
}

func TestMapXenditStatus(t *testing.T) {
	assert.Equal(t, pm.PaymentStatusSucceeded, MapXenditStatus("PAID"))
	assert.Equal(t, pm.PaymentStatusSucceeded, MapXenditStatus("SETTLED"))
	assert.Equal(t, pm.PaymentStatusFailed, MapXenditStatus("EXPIRED"))
	assert.Equal(t, pm.PaymentStatusPending, MapXenditStatus("PENDING"))
	assert.Equal(t, pm.PaymentStatusPending, MapXenditStatus("paid")) // Xendit selalu kirim huruf besar
}

func TestDriversRequireCredentials(t *testing.T) {
	_, err := NewMidtransDriver("").Check(context.Background(), "ORDER-1")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewXenditDriver("").Check(context.Background(), "ORDER-1")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
