// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"bounty-marketplace-system/models"
)

// StartJudgingScheduler sweeps bounties past their deadlines once a minute
// and pushes each through the idempotent check-judging transition. Redundant
// runs are harmless; the engine does nothing if preconditions don't hold.
func (s *SettlementService) StartJudgingScheduler() {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("❌ [Scheduler] failed to create scheduler, judging sweep disabled: %v", err)
		return
	}

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := time.Now()
			var ids []uint32
			err := s.DB.Model(&models.Bounty{}).
				Where("(status = ? AND submission_deadline < ?) OR (status <> ? AND judging_deadline < ?)",
					models.StatusActive, now, models.StatusCompleted, now).
				Pluck("id", &ids).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, id := range ids {
				bounty, changed, err := s.Engine.CheckJudging(context.Background(), id)
				if err != nil {
					log.Printf("[Scheduler] Failed to advance bounty #%d: %v", id, err)
					continue
				}
				if changed {
					log.Printf("✅ Auto-advanced bounty #%d → %s", bounty.ID, bounty.Status)
				}
			}
		}),
	)
	if err != nil {
		log.Printf("❌ [Scheduler] failed to register judging sweep: %v", err)
		return
	}

	sched.Start()
}
