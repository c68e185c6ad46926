// Package jobs hosts scheduled maintenance tasks.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iskolarhub/iskolarhub-backend/internal/db"
)

const sweepTimeout = 2 * time.Minute

// Sweeper periodically closes scholarships whose application deadline has
// passed. The matching engine's deadline gate already excludes them; the
// sweep keeps the stored status column honest for listings and stats.
type Sweeper struct {
	store    *db.Store
	schedule string
	cron     *cron.Cron
}

// NewSweeper takes a cron spec, e.g. "10 0 * * *" for shortly after
// midnight.
func NewSweeper(store *db.Store, schedule string) *Sweeper {
	return &Sweeper{
		store:    store,
		schedule: schedule,
		cron:     cron.New(),
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("Deadline sweeper scheduled: %s", s.schedule)
	return nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}

// Run executes one sweep immediately, outside the schedule.
func (s *Sweeper) Run(ctx context.Context) (int64, error) {
	return s.store.CloseExpired(ctx, time.Now())
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	closed, err := s.store.CloseExpired(ctx, time.Now())
	if err != nil {
		log.Printf("Deadline sweep failed: %v", err)
		return
	}
	if closed > 0 {
		log.Printf("Deadline sweep closed %d scholarships", closed)
	}
}
