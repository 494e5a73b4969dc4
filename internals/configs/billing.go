package configs

import "time"

/* ===============================
   Konfigurasi billing & rekonsiliasi
   Semua angka bisa dioverride lewat ENV, lihat .env.example.
=================================*/

type BillingConfig struct {
	// Masa tenggang pembayaran telat (hari) sebelum jatuh ke aturan default.
	GracePeriodDays int
	// Jendela ke belakang untuk mencari kehadiran terakhir (hari).
	AttendanceLookbackDays int
	// Milestone check-in yang memicu event attendance_milestone.
	AttendanceMilestones []int
}

type ReconcileConfig struct {
	// Payment pending lebih tua dari ini dianggap basi dan dicek ulang.
	Staleness time.Duration
	// Jeda antar putaran scheduler.
	Interval time.Duration
	// Jumlah pengecekan gateway paralel per putaran.
	Concurrency int
	// Batas waktu satu panggilan status ke gateway.
	CallTimeout time.Duration
}

func LoadBillingConfig() BillingConfig {
	return BillingConfig{
		GracePeriodDays:        GetEnvInt("BILLING_GRACE_PERIOD_DAYS", 7),
		AttendanceLookbackDays: GetEnvInt("BILLING_ATTENDANCE_LOOKBACK_DAYS", 30),
		AttendanceMilestones:   []int{25, 50, 100},
	}
}

func LoadReconcileConfig() ReconcileConfig {
	return ReconcileConfig{
		Staleness:   time.Duration(GetEnvInt("RECONCILE_STALENESS_MINUTES", 15)) * time.Minute,
		Interval:    time.Duration(GetEnvInt("RECONCILE_INTERVAL_MINUTES", 15)) * time.Minute,
		Concurrency: GetEnvInt("RECONCILE_CONCURRENCY", 4),
		CallTimeout: time.Duration(GetEnvInt("RECONCILE_CALL_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}
