// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartExpirySweeper runs the challenge expiry sweep on a fixed cadence
// (CHALLENGE_SWEEP_INTERVAL, default 5m).
func (s *ChallengeService) StartExpirySweeper(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			swept, err := s.ExpireOverdue()
			if err != nil {
				log.Printf("[Sweeper] DB error: %v", err)
				return
			}
			if swept > 0 {
				log.Printf("✅ Expired %d overdue challenge(s)", swept)
			}
		}),
	)
}
