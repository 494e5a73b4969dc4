// internals/features/billing/automation/service/batch_service.go
package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	am "dojoku_backend/internals/features/billing/automation/model"
)

// BatchReport merangkum satu putaran pemrosesan event.
type BatchReport struct {
	Processed   int                  `json:"processed"`
	Assignments int                  `json:"assignments"`
	Failed      map[uuid.UUID]string `json:"failed,omitempty"`
}

// ProcessBatch mengambil event yang belum diproses (tertua dulu) dan
// mengevaluasinya satu per satu. Kegagalan satu event dicatat dan
// tidak menghentikan sisanya; event gagal tetap unprocessed sehingga
// terambil lagi di putaran berikut. Ruleset di-load sekali per dojo
// per batch.
func (s *EngineService) ProcessBatch(ctx context.Context, dojoID *uuid.UUID, limit int) (*BatchReport, error) {
	if limit <= 0 {
		limit = 100
	}

	q := s.DB.WithContext(ctx).
		Where("discount_event_processed_at IS NULL").
		Order("discount_event_occurred_at ASC").
		Limit(limit)
	if dojoID != nil {
		q = q.Where("discount_event_dojo_id = ?", *dojoID)
	}

	var events []am.DiscountEventModel
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}

	report := &BatchReport{Failed: map[uuid.UUID]string{}}
	rulesets := map[uuid.UUID]*Ruleset{}

	for i := range events {
		ev := &events[i]

		rs, ok := rulesets[ev.DiscountEventDojoID]
		if !ok {
			loaded, err := s.LoadRuleset(ctx, ev.DiscountEventDojoID)
			if err != nil {
				report.Failed[ev.DiscountEventID] = err.Error()
				s.Metrics.IncEventProcessed(ev.DiscountEventType, "failed")
				continue
			}
			rs = loaded
			rulesets[ev.DiscountEventDojoID] = rs
		}

		created, err := s.ProcessEvent(ctx, ev, rs)
		report.Assignments += created
		if err != nil {
			log.Printf("[AUTOMATION] ❌ event %s (%s) gagal diproses: %v", ev.DiscountEventID, ev.DiscountEventType, err)
			report.Failed[ev.DiscountEventID] = err.Error()
			s.Metrics.IncEventProcessed(ev.DiscountEventType, "failed")
			// Simpan error terakhir di baris event untuk diagnosa admin;
			// event tetap unprocessed supaya terambil lagi putaran depan.
			if uerr := s.DB.WithContext(ctx).
				Model(&am.DiscountEventModel{}).
				Where("discount_event_id = ?", ev.DiscountEventID).
				Update("discount_event_last_error", err.Error()).Error; uerr != nil {
				log.Printf("[AUTOMATION] gagal mencatat last_error event %s: %v", ev.DiscountEventID, uerr)
			}
			continue
		}

		report.Processed++
		if created > 0 {
			s.Metrics.IncEventProcessed(ev.DiscountEventType, "matched")
		} else {
			s.Metrics.IncEventProcessed(ev.DiscountEventType, "no_match")
		}
	}

	if len(report.Failed) == 0 {
		report.Failed = nil
	}
	return report, nil
}
