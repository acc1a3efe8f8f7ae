// Package scheduler drives the daily reminder evaluation: it reads every
// tracked event, classifies its lead time against the alert policy, consults
// the delivery ledger, and dispatches the alerts that are still due.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dukerupert/keepsake/internal/alert"
	"github.com/dukerupert/keepsake/internal/model"
	"github.com/dukerupert/keepsake/internal/occurrence"
	"github.com/dukerupert/keepsake/internal/store"
)

// Dispatcher delivers a rendered message to a chat. Implementations carry
// their own transport; the scheduler only sees success or failure.
type Dispatcher interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Config holds the scheduler's tunables.
type Config struct {
	// TickTime is the local time of day ("HH:MM") the daily tick fires.
	TickTime string
	// Location is the timezone the tick time and "today" are evaluated in.
	Location *time.Location
	// Feb29 fixes where Feb-29 events fall in non-leap years.
	Feb29 occurrence.Feb29Policy
	// DispatchTimeout bounds a single send; a timeout counts as dispatch
	// failure and the alert stays eligible for retry.
	DispatchTimeout time.Duration
}

// Scheduler owns the tick loop. Ticks are strictly sequential: a mutex
// guarantees no tick (including the startup catch-up) overlaps another, so
// duplicate-record races on the ledger cannot happen inside one process.
type Scheduler struct {
	events     *store.EventStore
	ledger     *store.DeliveryStore
	dispatcher Dispatcher
	policy     alert.Policy
	cfg        Config
	logger     *slog.Logger
	now        func() time.Time
	cron       *cron.Cron

	mu sync.Mutex
}

func New(events *store.EventStore, ledger *store.DeliveryStore, dispatcher Dispatcher, policy alert.Policy, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = 10 * time.Second
	}
	if cfg.TickTime == "" {
		cfg.TickTime = "09:00"
	}
	return &Scheduler{
		events:     events,
		ledger:     ledger,
		dispatcher: dispatcher,
		policy:     policy,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Start runs the startup catch-up pass synchronously, then schedules the
// daily tick. The catch-up ensures a tier matching "today" is not missed
// just because the process came up after the configured tick time.
func (s *Scheduler) Start(ctx context.Context) error {
	spec, err := cronSpec(s.cfg.TickTime)
	if err != nil {
		return err
	}

	if err := s.RunTick(ctx, s.today()); err != nil {
		// Store trouble at startup is retried at the next scheduled tick.
		s.logger.Error("startup catch-up failed", "error", err)
	}

	s.cron = cron.New(cron.WithLocation(s.cfg.Location))
	if _, err := s.cron.AddFunc(spec, func() {
		if err := s.RunTick(ctx, s.today()); err != nil {
			s.logger.Error("tick failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule tick: %w", err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "tick_time", s.cfg.TickTime, "timezone", s.cfg.Location.String())
	return nil
}

// Stop halts the daily timer. A tick already in flight runs to completion.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Scheduler) today() time.Time {
	return occurrence.Date(s.now().In(s.cfg.Location))
}

// RunTick performs one full evaluation pass for the given calendar date.
// A store failure listing events aborts the whole tick; failures inside a
// single event's evaluation are logged and do not stop the others.
func (s *Scheduler) RunTick(ctx context.Context, today time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.events.ListAll()
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	for _, e := range events {
		if err := s.evaluate(ctx, e, today); err != nil {
			s.logger.Error("event evaluation failed", "event_id", e.ID, "event", e.Name, "error", err)
		}
	}
	return nil
}

// evaluate decides whether one event owes an alert today and sends it.
// The ledger is written only after a successful dispatch; a crash between
// the two re-sends that one alert on restart, which we accept over the
// alternative of marking alerts that were never delivered.
func (s *Scheduler) evaluate(ctx context.Context, e model.Event, today time.Time) error {
	occ, days := occurrence.Next(e.Month, e.Day, today, s.cfg.Feb29)
	tier, ok := s.policy.TierFor(days)
	if !ok {
		return nil
	}
	year := occ.Year()

	sent, err := s.ledger.HasSent(e.ID, tier.Label, year)
	if err != nil {
		return fmt.Errorf("check ledger: %w", err)
	}
	if sent {
		return nil
	}

	dctx, cancel := context.WithTimeout(ctx, s.cfg.DispatchTimeout)
	defer cancel()
	if err := s.dispatcher.Send(dctx, e.ChatID, alert.Message(e, tier)); err != nil {
		// No ledger write: the alert stays eligible while days-until still
		// matches, i.e. for the rest of today.
		return fmt.Errorf("dispatch: %w", err)
	}

	if err := s.ledger.MarkSent(e.ID, tier.Label, year); err != nil {
		if errors.Is(err, store.ErrConflict) {
			s.logger.Debug("delivery already recorded", "event_id", e.ID, "tier", tier.Label, "year", year)
			return nil
		}
		return fmt.Errorf("mark sent: %w", err)
	}

	s.logger.Info("reminder sent",
		"event_id", e.ID, "event", e.Name, "tier", tier.Label, "year", year, "days_until", days)
	return nil
}

// cronSpec converts an "HH:MM" time of day into a five-field cron spec.
func cronSpec(tickTime string) (string, error) {
	parts := strings.SplitN(tickTime, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid tick_time %q, want HH:MM", tickTime)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid tick_time hour %q", parts[0])
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid tick_time minute %q", parts[1])
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
