package moderation

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/guardbot/internal/observability"
)

const DefaultSweepSchedule = "@every 1m"

// Sweeper periodically drops flood logs of members that went quiet, so that
// long-lived processes do not accumulate one log per user ever seen.
type Sweeper struct {
	store    *Store
	schedule string
	now      func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func NewSweeper(store *Store, schedule string) *Sweeper {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &Sweeper{
		store:    store,
		schedule: schedule,
		now:      time.Now,
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, s.Run); err != nil {
		return errors.Wrapf(err, "invalid sweep schedule %q", s.schedule)
	}
	c.Start()
	s.cron = c
	s.getLogEntry().WithField("schedule", s.schedule).Debug("sweeper started")
	return nil
}

func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sweeper) Run() {
	removed := s.store.Sweep(s.now())
	stats := s.store.Stats()
	observability.SetStateSize(stats.Members, stats.FloodLogs)
	s.getLogEntry().WithFields(log.Fields{
		"removed":    removed,
		"flood_logs": stats.FloodLogs,
		"members":    stats.Members,
	}).Trace("swept moderation state")
}

func (s *Sweeper) getLogEntry() *log.Entry {
	return log.WithField("object", "Sweeper")
}
