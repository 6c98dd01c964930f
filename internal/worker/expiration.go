// Package worker hosts background jobs that run on a schedule rather
// than in response to a request.
package worker

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/magehall/mission-tracker/internal/repository"
)

// StartExpirationSweep schedules the mission expiration sweep: every
// interval, pending missions whose due date has passed are flipped to
// failed. The returned scheduler should be shut down on exit. The
// first run fires shortly after startup so a long interval does not
// leave stale missions pending for hours after a restart.
func StartExpirationSweep(missions *repository.MissionRepo, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	task := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := missions.SweepExpired(ctx)
		if err != nil {
			log.Printf("[sweep] expiration sweep failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("[sweep] %d overdue missions failed", n)
		}
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithStartAt(gocron.WithStartDateTime(time.Now().Add(10*time.Second))),
	); err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}
