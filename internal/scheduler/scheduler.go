// Package scheduler runs the periodic alert sweep on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"FriendlyTicker/internal/alerts"
)

// Scheduler wires the alert evaluator to a cron timetable and fans triggered
// alerts out to the configured delivery channels.
type Scheduler struct {
	cron      *cron.Cron
	alerts    *alerts.Service
	notifiers []alerts.Notifier
	ctx       context.Context
	log       zerolog.Logger
}

// New creates a Scheduler. Notifiers may be empty; the sweep still runs and
// records state so alerts resume cleanly once a channel is configured.
func New(ctx context.Context, svc *alerts.Service, notifiers []alerts.Notifier, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		alerts:    svc,
		notifiers: notifiers,
		ctx:       ctx,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the alert sweep at the given cron spec (with seconds field).
func (s *Scheduler) Register(alertCron string) error {
	if _, err := s.cron.AddFunc(alertCron, s.sweep); err != nil {
		return fmt.Errorf("register alert sweep: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes one alert sweep immediately and reports how many alerts
// were delivered. Used by the manual trigger endpoint and RUN_ON_START.
func (s *Scheduler) RunNow(ctx context.Context) (sent int, errs []string) {
	triggered, err := s.alerts.RunOnce(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("alert sweep failed")
		return 0, []string{err.Error()}
	}

	for _, tr := range triggered {
		subject, body := alerts.FormatAlert(tr)
		delivered := false
		for _, n := range s.notifiers {
			if err := n.Notify(ctx, tr.Email, subject, body); err != nil {
				s.log.Error().Err(err).
					Str("channel", n.Name()).
					Str("recipient", tr.Email).
					Str("ticker", tr.Ticker).
					Msg("delivery failed")
				errs = append(errs, fmt.Sprintf("%s/%s: %v", n.Name(), tr.Ticker, err))
				continue
			}
			delivered = true
		}
		if delivered {
			sent++
		}
	}
	return sent, errs
}

func (s *Scheduler) sweep() {
	sent, errs := s.RunNow(s.ctx)
	s.log.Info().Int("sent", sent).Int("errors", len(errs)).Msg("scheduled alert sweep finished")
}
