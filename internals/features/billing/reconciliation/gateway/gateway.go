// internals/features/billing/reconciliation/gateway/gateway.go
//
// Abstraksi penyedia pembayaran untuk rekonsiliasi. Driver menarik
// status transaksi dari gateway dan menerjemahkannya ke status
// payment internal lewat tabel pemetaan per gateway; status mentah
// ikut dibawa untuk breakdown laporan.
package gateway

import (
	"context"
	"errors"
)

var (
	// ErrMissingCredentials: kredensial gateway tidak dikonfigurasi;
	// kandidat dilewati, bukan digagalkan.
	ErrMissingCredentials = errors.New("kredensial gateway tidak dikonfigurasi")
)

// Result adalah hasil satu pengecekan status.
type Result struct {
	// Found false = transaksi tidak dikenal di gateway (404).
	Found bool

	// RawStatus apa adanya dari gateway, untuk breakdown laporan.
	RawStatus string

	// Status terjemahan internal: pending | succeeded | failed.
	Status string

	// Receipt mentah untuk disimpan di payment saat status berubah.
	Receipt map[string]interface{}
}

type Driver interface {
	Name() string
	Check(ctx context.Context, orderID string) (*Result, error)
}

// Registry memetakan nama gateway pada payment ke drivernya.
type Registry struct {
	drivers map[string]Driver
}

func NewRegistry(drivers ...Driver) *Registry {
	r := &Registry{drivers: make(map[string]Driver, len(drivers))}
	for _, d := range drivers {
		r.drivers[d.Name()] = d
	}
	return r
}

func (r *Registry) Resolve(name string) (Driver, bool) {
	d, ok := r.drivers[name]
	return d, ok
}
