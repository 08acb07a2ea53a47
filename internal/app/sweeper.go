package app

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/riftcall/riftcall/internal/core"
)

// Sweeper periodically reaps stale channels as a safety net against leaked
// records whose last-member departure was lost. It only deletes empty
// channels; see ChannelDirectory.Sweep for the policy.
type Sweeper struct {
	Directory *core.ChannelDirectory
	Interval  time.Duration
	MaxAge    time.Duration

	cron *cron.Cron
}

func NewSweeper(dir *core.ChannelDirectory, interval, maxAge time.Duration) *Sweeper {
	return &Sweeper{Directory: dir, Interval: interval, MaxAge: maxAge}
}

func (s *Sweeper) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.Interval), s.sweep); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	s.cron.Start()
	log.Info().Str("module", "app.sweeper").Dur("interval", s.Interval).Dur("max_age", s.MaxAge).Msg("sweeper started")
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Sweeper) sweep() {
	for _, view := range s.Directory.Sweep(s.MaxAge) {
		log.Info().Str("module", "app.sweeper").
			Str("channel", string(view.ID)).
			Time("created_at", view.CreatedAt).
			Msg("swept stale channel")
	}
}
