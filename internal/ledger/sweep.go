package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/evanesaias-afk/taxbox/internal/domain"
	"github.com/evanesaias-afk/taxbox/internal/infra/observability"
)

// ─── Weekly Reminder Sweep ──────────────────────────────────────────────────
// The sweep is a bounded batch job: suspend every seller with outstanding
// tax, revoke their permission role, and send each one a payment reminder.
// A failure against one seller never aborts the rest of the batch.

// SweepReport summarizes one sweep run.
type SweepReport struct {
	Outstanding int // sellers owing tax at sweep time
	Notified    int // reminders delivered
	Failed      int // reminders that could not be delivered
}

// RunSweep executes one reminder sweep immediately.
func (s *Service) RunSweep(ctx context.Context) (SweepReport, error) {
	s.mu.Lock()
	ledger, err := s.store.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		return SweepReport{}, err
	}
	outstanding := domain.OutstandingSellers(ledger)
	for _, row := range outstanding {
		ledger = domain.SuspendSeller(ledger, row.SellerID)
	}
	if len(outstanding) > 0 {
		if err := s.store.Save(ctx, ledger); err != nil {
			s.mu.Unlock()
			return SweepReport{}, err
		}
	}
	s.mu.Unlock()

	report := SweepReport{Outstanding: len(outstanding)}
	for _, row := range outstanding {
		if s.cfg.SellerRoleID != "" && s.roles != nil {
			if err := s.roles.RevokeRole(ctx, row.SellerID, s.cfg.SellerRoleID); err != nil {
				observability.RoleSyncFailures.WithLabelValues("revoke").Inc()
				s.log.Warn("seller role revoke failed", slog.String("seller", row.SellerID), slog.Any("error", err))
			}
		}
		if s.notifier == nil {
			continue
		}
		if err := s.notifier.NotifyTaxDue(ctx, row.SellerID, row.TaxOwed); err != nil {
			observability.ReminderFailures.Inc()
			report.Failed++
			s.log.Warn("tax reminder failed", slog.String("seller", row.SellerID), slog.Any("error", err))
			continue
		}
		observability.RemindersSent.Inc()
		report.Notified++
	}

	observability.SweepsRun.Inc()
	observability.OutstandingSellers.Set(float64(report.Outstanding))
	s.log.Info("sweep complete",
		slog.Int("outstanding", report.Outstanding),
		slog.Int("notified", report.Notified),
		slog.Int("failed", report.Failed),
	)
	return report, nil
}

// ─── Schedule ───────────────────────────────────────────────────────────────

// Schedule is a weekly instant in a named time zone.
type Schedule struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
	Loc     *time.Location
}

// Next returns the first scheduled instant strictly after t.
func (sc Schedule) Next(t time.Time) time.Time {
	t = t.In(sc.Loc)
	next := time.Date(t.Year(), t.Month(), t.Day(), sc.Hour, sc.Minute, 0, 0, sc.Loc)
	days := (int(sc.Weekday) - int(t.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, days)
	if !next.After(t) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// Sweeper runs RunSweep at each scheduled instant until the context ends.
type Sweeper struct {
	svc   *Service
	sched Schedule
	log   *slog.Logger
}

// NewSweeper creates a sweeper for svc on the given schedule.
func NewSweeper(svc *Service, sched Schedule, log *slog.Logger) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{svc: svc, sched: sched, log: log.With(slog.String("component", "sweep"))}
}

// Run blocks until ctx is done, firing the sweep at each scheduled instant.
// Sweep errors are logged; the loop keeps going.
func (w *Sweeper) Run(ctx context.Context) {
	for {
		next := w.sched.Next(w.svc.now())
		w.log.Info("next sweep scheduled", slog.Time("at", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, err := w.svc.RunSweep(ctx); err != nil {
			w.log.Error("sweep failed", slog.Any("error", err))
		}
	}
}
