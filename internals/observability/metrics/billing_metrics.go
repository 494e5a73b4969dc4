package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// BillingMetrics merangkum counter Prometheus untuk jalur pembayaran,
// rekonsiliasi, dan mesin diskon otomatis.
type BillingMetrics struct {
	paymentsResolved   *prometheus.CounterVec
	reconcileRuns      prometheus.Counter
	reconcileChecks    *prometheus.CounterVec
	eventsProcessed    *prometheus.CounterVec
	assignmentsCreated prometheus.Counter
}

var (
	billingMetricsOnce sync.Once
	billingMetrics     *BillingMetrics
)

func Billing() *BillingMetrics {
	billingMetricsOnce.Do(func() {
		billingMetrics = newBillingMetrics(prometheus.DefaultRegisterer)
	})
	return billingMetrics
}

// ResetBillingMetricsForTest mengganti singleton dengan registry segar
// supaya pendaftaran ulang tidak bentrok dengan DefaultRegisterer.
func ResetBillingMetricsForTest() {
	billingMetricsOnce.Do(func() {})
	billingMetrics = newBillingMetrics(prometheus.NewRegistry())
}

func newBillingMetrics(registerer prometheus.Registerer) *BillingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	paymentsResolved := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dojoku_payments_resolved_total",
			Help: "Payment yang mencapai status terminal, per sumber keputusan.",
		},
		[]string{"source", "status"}, // source: webhook|confirm|reconcile, status: succeeded|failed
	)

	reconcileRuns := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dojoku_reconcile_runs_total",
			Help: "Jumlah putaran job rekonsiliasi yang selesai.",
		},
	)

	reconcileChecks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dojoku_reconcile_checks_total",
			Help: "Hasil pengecekan status per payment saat rekonsiliasi.",
		},
		[]string{"gateway", "result"}, // result: updated|skipped|failed
	)

	eventsProcessed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dojoku_discount_events_processed_total",
			Help: "Event diskon yang diproses mesin aturan.",
		},
		[]string{"event_type", "result"}, // result: matched|no_match|failed
	)

	assignmentsCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dojoku_discount_assignments_created_total",
			Help: "Assignment diskon baru hasil aturan otomatis.",
		},
	)

	registerer.MustRegister(
		paymentsResolved,
		reconcileRuns,
		reconcileChecks,
		eventsProcessed,
		assignmentsCreated,
	)

	return &BillingMetrics{
		paymentsResolved:   paymentsResolved,
		reconcileRuns:      reconcileRuns,
		reconcileChecks:    reconcileChecks,
		eventsProcessed:    eventsProcessed,
		assignmentsCreated: assignmentsCreated,
	}
}

func (m *BillingMetrics) IncPaymentResolved(source, status string) {
	if m == nil {
		return
	}
	m.paymentsResolved.WithLabelValues(source, status).Inc()
}

func (m *BillingMetrics) IncReconcileRun() {
	if m == nil {
		return
	}
	m.reconcileRuns.Inc()
}

func (m *BillingMetrics) IncReconcileCheck(gateway, result string) {
	if m == nil {
		return
	}
	m.reconcileChecks.WithLabelValues(gateway, result).Inc()
}

func (m *BillingMetrics) IncEventProcessed(eventType, result string) {
	if m == nil {
		return
	}
	m.eventsProcessed.WithLabelValues(eventType, result).Inc()
}

func (m *BillingMetrics) IncAssignmentCreated() {
	if m == nil {
		return
	}
	m.assignmentsCreated.Inc()
}
