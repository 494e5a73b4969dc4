package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dojoku_backend/internals/configs"
	am "dojoku_backend/internals/features/billing/automation/model"
	pm "dojoku_backend/internals/features/billing/payments/model"
	psvc "dojoku_backend/internals/features/billing/payments/service"
	"dojoku_backend/internals/features/billing/reconciliation/gateway"
	rm "dojoku_backend/internals/features/billing/reconciliation/model"
	"dojoku_backend/internals/helpers/money"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(
		&pm.PaymentModel{},
		&am.DiscountEventModel{},
		&rm.ReconciliationRunModel{},
	))
	return db
}

// fakeDriver menjawab Check dari tabel referensi → hasil; referensi
// yang tidak terdaftar dijawab not found, persis gateway sungguhan.
type fakeDriver struct {
	name string
	res  map[string]*gateway.Result
	err  error

	mu    sync.Mutex
	calls []string
}

func (f *fakeDriver) Name() string { return f.name }

func (f *fakeDriver) Check(ctx context.Context, ref string) (*gateway.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ref)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.res[ref]; ok {
		return r, nil
	}
	return &gateway.Result{Found: false}, nil
}

func (f *fakeDriver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newRecon(db *gorm.DB, drivers ...gateway.Driver) *ReconciliationService {
	return &ReconciliationService{
		DB: db,
		Cfg: configs.ReconcileConfig{
			Staleness:   15 * time.Minute,
			Concurrency: 2,
			CallTimeout: time.Second,
		},
		Gateways: gateway.NewRegistry(drivers...),
		Settlement: &psvc.SettlementService{
			DB:      db,
			Billing: configs.BillingConfig{GracePeriodDays: 7, AttendanceLookbackDays: 30},
		},
	}
}

func seedGatewayPayment(t *testing.T, db *gorm.DB, gw, ref string, age time.Duration) *pm.PaymentModel {
	t.Helper()
	pay := &pm.PaymentModel{
		PaymentDojoID:        uuid.New(),
		PaymentFamilyID:      uuid.New(),
		PaymentType:          pm.PaymentTypeStore,
		PaymentStatus:        pm.PaymentStatusPending,
		PaymentOrderID:       "PAY-" + uuid.NewString(),
		PaymentSubtotalCents: money.Cents(30000),
		PaymentTotalCents:    money.Cents(30000),
	}
	if gw != "" {
		pay.PaymentGateway = &gw
		pay.PaymentGatewayReference = &ref
	}
	if age > 0 {
		pay.PaymentCreatedAt = time.Now().Add(-age)
	}
	require.NoError(t, db.Create(pay).Error)
	return pay
}

func reloadPayment(t *testing.T, db *gorm.DB, id uuid.UUID) *pm.PaymentModel {
	t.Helper()
	var out pm.PaymentModel
	require.NoError(t, db.First(&out, "payment_id = ?", id).Error)
	return &out
}

func TestRunOnceReconcilesStalePayments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	lunas := seedGatewayPayment(t, db, "midtrans", "MID-1", time.Hour)
	hangus := seedGatewayPayment(t, db, "midtrans", "MID-2", time.Hour)
	masihPending := seedGatewayPayment(t, db, "midtrans", "MID-3", time.Hour)
	baru := seedGatewayPayment(t, db, "midtrans", "MID-4", 0)   // belum basi
	manual := seedGatewayPayment(t, db, "", "", time.Hour)      // tanpa gateway

	driver := &fakeDriver{
		name: "midtrans",
		res: map[string]*gateway.Result{
			"MID-1": {Found: true, RawStatus: "settlement", Status: pm.PaymentStatusSucceeded, Receipt: map[string]interface{}{"transaction_status": "settlement"}},
			"MID-2": {Found: true, RawStatus: "expire", Status: pm.PaymentStatusFailed},
			"MID-3": {Found: true, RawStatus: "pending", Status: pm.PaymentStatusPending},
		},
	}
	svc := newRecon(db, driver)

	report, err := svc.RunOnce(ctx, 50)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, map[string]int{
		"midtrans:settlement": 1,
		"midtrans:expire":     1,
		"midtrans:pending":    1,
	}, report.Breakdown)

	// Hanya kandidat basi yang sampai ke gateway.
	assert.Equal(t, 3, driver.callCount())

	out := reloadPayment(t, db, lunas.PaymentID)
	assert.Equal(t, pm.PaymentStatusSucceeded, out.PaymentStatus)
	assert.Equal(t, "settlement", out.PaymentReceipt["transaction_status"])

	out = reloadPayment(t, db, hangus.PaymentID)
	assert.Equal(t, pm.PaymentStatusFailed, out.PaymentStatus)
	require.NotNil(t, out.PaymentNote)
	assert.Equal(t, "Gateway melaporkan expire", *out.PaymentNote)

	assert.Equal(t, pm.PaymentStatusPending, reloadPayment(t, db, masihPending.PaymentID).PaymentStatus)
	assert.Equal(t, pm.PaymentStatusPending, reloadPayment(t, db, baru.PaymentID).PaymentStatus)
	assert.Equal(t, pm.PaymentStatusPending, reloadPayment(t, db, manual.PaymentID).PaymentStatus)

	// Putaran tercatat lengkap untuk audit.
	var run rm.ReconciliationRunModel
	require.NoError(t, db.First(&run, "reconciliation_run_id = ?", report.RunID).Error)
	require.NotNil(t, run.ReconciliationRunFinishedAt)
	assert.Equal(t, 3, run.ReconciliationRunChecked)
	assert.Equal(t, 2, run.ReconciliationRunUpdated)
	assert.Equal(t, 1, run.ReconciliationRunSkipped)
	assert.EqualValues(t, 1, run.ReconciliationRunBreakdown["midtrans:settlement"])
}

func TestRunOnceClosesOrderUnknownToGateway(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	pay := seedGatewayPayment(t, db, "midtrans", "MID-HILANG", time.Hour)
	svc := newRecon(db, &fakeDriver{name: "midtrans"})

	report, err := svc.RunOnce(ctx, 50)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Breakdown["midtrans:not_found"])

	out := reloadPayment(t, db, pay.PaymentID)
	assert.Equal(t, pm.PaymentStatusFailed, out.PaymentStatus)
	require.NotNil(t, out.PaymentNote)
	assert.Equal(t, "Transaksi tidak ditemukan di gateway", *out.PaymentNote)
}

func TestRunOnceSkipsWhenCredentialsMissing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	pay := seedGatewayPayment(t, db, "midtrans", "MID-1", time.Hour)
	svc := newRecon(db, &fakeDriver{name: "midtrans", err: gateway.ErrMissingCredentials})

	report, err := svc.RunOnce(ctx, 50)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Failed)
	// Alasan skip harus kelihatan di ringkasan run, bukan cuma angka.
	assert.Equal(t, 1, report.Breakdown["midtrans:credentials-missing"])
	assert.Equal(t, pm.PaymentStatusPending, reloadPayment(t, db, pay.PaymentID).PaymentStatus)

	var run rm.ReconciliationRunModel
	require.NoError(t, db.First(&run, "reconciliation_run_id = ?", report.RunID).Error)
	assert.EqualValues(t, 1, run.ReconciliationRunBreakdown["midtrans:credentials-missing"])
}

func TestRunOnceCountsGatewayErrors(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	pay := seedGatewayPayment(t, db, "midtrans", "MID-1", time.Hour)
	svc := newRecon(db, &fakeDriver{name: "midtrans", err: errors.New("timeout menghubungi gateway")})

	report, err := svc.RunOnce(ctx, 50)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Zero(t, report.Updated)
	// Gagal dicek hari ini, dicoba lagi putaran berikutnya.
	assert.Equal(t, pm.PaymentStatusPending, reloadPayment(t, db, pay.PaymentID).PaymentStatus)
}

func TestRunOnceSkipsUnknownGatewayName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedGatewayPayment(t, db, "xendit", "XEN-1", time.Hour)
	svc := newRecon(db, &fakeDriver{name: "midtrans"})

	report, err := svc.RunOnce(ctx, 50)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, report.Breakdown)
}

func TestRunOnceHonorsLimitOldestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tertua := seedGatewayPayment(t, db, "midtrans", "MID-TUA", 3*time.Hour)
	muda := seedGatewayPayment(t, db, "midtrans", "MID-MUDA", time.Hour)

	driver := &fakeDriver{
		name: "midtrans",
		res: map[string]*gateway.Result{
			"MID-TUA":  {Found: true, RawStatus: "settlement", Status: pm.PaymentStatusSucceeded},
			"MID-MUDA": {Found: true, RawStatus: "settlement", Status: pm.PaymentStatusSucceeded},
		},
	}
	svc := newRecon(db, driver)

	report, err := svc.RunOnce(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, []string{"MID-TUA"}, driver.calls)
	assert.Equal(t, pm.PaymentStatusSucceeded, reloadPayment(t, db, tertua.PaymentID).PaymentStatus)
	assert.Equal(t, pm.PaymentStatusPending, reloadPayment(t, db, muda.PaymentID).PaymentStatus)
}

func TestListRuns(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newRecon(db, &fakeDriver{name: "midtrans"})

	_, err := svc.RunOnce(ctx, 10)
	require.NoError(t, err)
	_, err = svc.RunOnce(ctx, 10)
	require.NoError(t, err)

	rows, total, err := svc.ListRuns(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	rows, total, err = svc.ListRuns(ctx, 0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 1)
}
