package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"dojoku_backend/internals/features/billing/automation/service"

	"gorm.io/gorm"
)

func StartEventProcessingScheduler(db *gorm.DB) {
	go func() {
		// Interval & batch dari env (default: 5 menit, 200 event)
		intervalMinutes := 5
		if val := os.Getenv("AUTOMATION_INTERVAL_MINUTES"); val != "" {
			if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
				intervalMinutes = parsed
			}
		}
		batchSize := 200
		if val := os.Getenv("AUTOMATION_BATCH_SIZE"); val != "" {
			if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
				batchSize = parsed
			}
		}

		engine := service.NewEngineService(db)

		for {
			log.Println("[AUTOMATION] Menjalankan pemrosesan discount_events...")

			report, err := engine.ProcessBatch(context.Background(), nil, batchSize)
			if err != nil {
				log.Printf("[AUTOMATION ERROR] Gagal ambil batch event: %v", err)
			} else if report.Processed == 0 && len(report.Failed) == 0 {
				log.Println("[AUTOMATION] Tidak ada event yang menunggu")
			} else {
				log.Printf("[AUTOMATION] %d event diproses, %d assignment dibuat, %d gagal",
					report.Processed, report.Assignments, len(report.Failed))
			}

			time.Sleep(time.Duration(intervalMinutes) * time.Minute)
		}
	}()
}
