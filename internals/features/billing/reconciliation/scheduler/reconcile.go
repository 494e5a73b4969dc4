package scheduler

import (
	"context"
	"log"
	"time"

	"dojoku_backend/internals/configs"
	"dojoku_backend/internals/features/billing/reconciliation/gateway"
	"dojoku_backend/internals/features/billing/reconciliation/service"

	"gorm.io/gorm"
)

func StartReconciliationScheduler(db *gorm.DB) {
	go func() {
		cfg := configs.LoadReconcileConfig()

		registry := gateway.NewRegistry(
			gateway.NewMidtransDriver(configs.MidtransServerKey),
			gateway.NewXenditDriver(configs.XenditSecretKey),
		)
		svc := service.NewReconciliationService(db, registry)

		for {
			log.Println("[RECONCILE] Menjalankan rekonsiliasi payment pending...")

			report, err := svc.RunOnce(context.Background(), 0)
			if err != nil {
				log.Printf("[RECONCILE ERROR] Putaran gagal: %v", err)
			} else if report.Checked == 0 {
				log.Println("[RECONCILE] Tidak ada payment basi yang perlu dicek")
			} else {
				log.Printf("[RECONCILE] %d dicek, %d diperbarui, %d dilewati, %d gagal",
					report.Checked, report.Updated, report.Skipped, report.Failed)
			}

			time.Sleep(cfg.Interval)
		}
	}()
}
