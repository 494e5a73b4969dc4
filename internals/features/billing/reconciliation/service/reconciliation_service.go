// internals/features/billing/reconciliation/service/reconciliation_service.go
//
// Rekonsiliasi adalah jaring pengaman saat webhook hilang: payment
// pending yang punya referensi gateway dan sudah melewati ambang basi
// dicek ulang statusnya langsung ke gateway. Perubahan status tetap
// lewat SettlementService sehingga semua aturan single-writer dan efek
// samping berlaku sama seperti jalur webhook.
package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"dojoku_backend/internals/configs"
	pm "dojoku_backend/internals/features/billing/payments/model"
	psvc "dojoku_backend/internals/features/billing/payments/service"
	"dojoku_backend/internals/features/billing/reconciliation/gateway"
	rm "dojoku_backend/internals/features/billing/reconciliation/model"
	"dojoku_backend/internals/observability/metrics"
)

const (
	resultUpdated = "updated"
	resultSkipped = "skipped"
	resultFailed  = "failed"
)

type ReconciliationService struct {
	DB         *gorm.DB
	Cfg        configs.ReconcileConfig
	Gateways   *gateway.Registry
	Settlement *psvc.SettlementService
	Metrics    *metrics.BillingMetrics
}

func NewReconciliationService(db *gorm.DB, registry *gateway.Registry) *ReconciliationService {
	return &ReconciliationService{
		DB:         db,
		Cfg:        configs.LoadReconcileConfig(),
		Gateways:   registry,
		Settlement: psvc.NewSettlementService(db),
		Metrics:    metrics.Billing(),
	}
}

// Report merangkum satu putaran; breakdown menghitung status mentah
// per gateway (mis. "midtrans:settlement").
type Report struct {
	RunID     string         `json:"run_id"`
	Checked   int            `json:"checked"`
	Updated   int            `json:"updated"`
	Skipped   int            `json:"skipped"`
	Failed    int            `json:"failed"`
	Breakdown map[string]int `json:"breakdown,omitempty"`
}

// RunOnce menjalankan satu putaran rekonsiliasi dan mencatat hasilnya
// ke reconciliation_runs. Kegagalan satu kandidat tidak menghentikan
// kandidat lain.
func (s *ReconciliationService) RunOnce(ctx context.Context, limit int) (*Report, error) {
	if limit <= 0 {
		limit = 200
	}

	run := rm.ReconciliationRunModel{ReconciliationRunStartedAt: time.Now()}
	if err := s.DB.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, err
	}

	staleBefore := time.Now().Add(-s.Cfg.Staleness)

	var candidates []pm.PaymentModel
	if err := s.DB.WithContext(ctx).
		Where("payment_status = ?", pm.PaymentStatusPending).
		Where("payment_gateway IS NOT NULL AND payment_gateway_reference IS NOT NULL").
		Where("payment_created_at < ?", staleBefore).
		Order("payment_created_at ASC").
		Limit(limit).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		updated   int
		skipped   int
		failed    int
		breakdown = map[string]int{}
	)

	concurrency := s.Cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range candidates {
		p := candidates[i]
		g.Go(func() error {
			result, rawKey := s.reconcileOne(gctx, &p, staleBefore)
			mu.Lock()
			switch result {
			case resultUpdated:
				updated++
			case resultSkipped:
				skipped++
			case resultFailed:
				failed++
			}
			if rawKey != "" {
				breakdown[rawKey]++
			}
			mu.Unlock()
			// Kegagalan per kandidat sudah terhitung; jangan matikan grup.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := time.Now()
	bd := make(datatypes.JSONMap, len(breakdown))
	for k, v := range breakdown {
		bd[k] = v
	}
	if err := s.DB.WithContext(ctx).
		Model(&rm.ReconciliationRunModel{}).
		Where("reconciliation_run_id = ?", run.ReconciliationRunID).
		Updates(map[string]interface{}{
			"reconciliation_run_finished_at": now,
			"reconciliation_run_checked":     len(candidates),
			"reconciliation_run_updated":     updated,
			"reconciliation_run_skipped":     skipped,
			"reconciliation_run_failed":      failed,
			"reconciliation_run_breakdown":   bd,
		}).Error; err != nil {
		return nil, err
	}

	s.Metrics.IncReconcileRun()

	return &Report{
		RunID:     run.ReconciliationRunID.String(),
		Checked:   len(candidates),
		Updated:   updated,
		Skipped:   skipped,
		Failed:    failed,
		Breakdown: breakdown,
	}, nil
}

// reconcileOne mengecek satu kandidat. Nilai balik pertama kategori
// hasil, kedua kunci breakdown "gateway:status_mentah" (kosong bila
// tidak sampai ke gateway).
func (s *ReconciliationService) reconcileOne(ctx context.Context, p *pm.PaymentModel, staleBefore time.Time) (string, string) {
	gwName := ""
	if p.PaymentGateway != nil {
		gwName = *p.PaymentGateway
	}

	driver, ok := s.Gateways.Resolve(gwName)
	if !ok {
		log.Printf("[RECONCILE] ⚠️ payment %s memakai gateway tak dikenal %q, lewati", p.PaymentOrderID, gwName)
		s.Metrics.IncReconcileCheck(gwName, resultSkipped)
		return resultSkipped, ""
	}

	callCtx, cancel := context.WithTimeout(ctx, s.Cfg.CallTimeout)
	defer cancel()

	res, err := driver.Check(callCtx, *p.PaymentGatewayReference)
	if err != nil {
		if errors.Is(err, gateway.ErrMissingCredentials) {
			log.Printf("[RECONCILE] ⚠️ kredensial %s belum diisi, payment %s dilewati", gwName, p.PaymentOrderID)
			s.Metrics.IncReconcileCheck(gwName, resultSkipped)
			return resultSkipped, gwName + ":credentials-missing"
		}
		log.Printf("[RECONCILE ERROR] payment %s: %v", p.PaymentOrderID, err)
		s.Metrics.IncReconcileCheck(gwName, resultFailed)
		return resultFailed, ""
	}

	if !res.Found {
		rawKey := gwName + ":not_found"
		// Tidak dikenal di gateway + sudah basi = order tidak pernah
		// sampai; tutup sebagai gagal supaya tidak dicek selamanya.
		if p.PaymentCreatedAt.Before(staleBefore) {
			_, changed, err := s.Settlement.Fail(ctx, p.PaymentID, "Transaksi tidak ditemukan di gateway", nil, "reconcile")
			if err != nil {
				s.Metrics.IncReconcileCheck(gwName, resultFailed)
				return resultFailed, rawKey
			}
			if changed {
				s.Metrics.IncReconcileCheck(gwName, resultUpdated)
				return resultUpdated, rawKey
			}
		}
		s.Metrics.IncReconcileCheck(gwName, resultSkipped)
		return resultSkipped, rawKey
	}

	rawKey := gwName + ":" + res.RawStatus

	switch res.Status {
	case pm.PaymentStatusSucceeded:
		_, changed, err := s.Settlement.Settle(ctx, p.PaymentID, time.Now(), res.Receipt, "reconcile")
		if err != nil {
			log.Printf("[RECONCILE ERROR] settle payment %s: %v", p.PaymentOrderID, err)
			s.Metrics.IncReconcileCheck(gwName, resultFailed)
			return resultFailed, rawKey
		}
		if changed {
			s.Metrics.IncReconcileCheck(gwName, resultUpdated)
			return resultUpdated, rawKey
		}
		s.Metrics.IncReconcileCheck(gwName, resultSkipped)
		return resultSkipped, rawKey

	case pm.PaymentStatusFailed:
		_, changed, err := s.Settlement.Fail(ctx, p.PaymentID, "Gateway melaporkan "+res.RawStatus, res.Receipt, "reconcile")
		if err != nil {
			log.Printf("[RECONCILE ERROR] fail payment %s: %v", p.PaymentOrderID, err)
			s.Metrics.IncReconcileCheck(gwName, resultFailed)
			return resultFailed, rawKey
		}
		if changed {
			s.Metrics.IncReconcileCheck(gwName, resultUpdated)
			return resultUpdated, rawKey
		}
		s.Metrics.IncReconcileCheck(gwName, resultSkipped)
		return resultSkipped, rawKey

	default:
		// Masih pending di gateway juga; biarkan.
		s.Metrics.IncReconcileCheck(gwName, resultSkipped)
		return resultSkipped, rawKey
	}
}

// ListRuns mengembalikan riwayat putaran, terbaru dulu.
func (s *ReconciliationService) ListRuns(ctx context.Context, offset, limit int) ([]rm.ReconciliationRunModel, int64, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&rm.ReconciliationRunModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []rm.ReconciliationRunModel
	if err := s.DB.WithContext(ctx).
		Order("reconciliation_run_started_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
