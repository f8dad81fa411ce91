// Package ledger is the application service around the accounting engine.
// It serializes every load→mutate→save cycle behind one process-wide lock,
// mirrors ledger-driven role policy into the role directory, and emits
// metrics and optional transaction events. The ledger is the source of
// truth: role and notification failures are logged and swallowed per item,
// never rolled back into the ledger.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/evanesaias-afk/taxbox/internal/domain"
	"github.com/evanesaias-afk/taxbox/internal/infra/observability"
)

// Config carries the policy the service applies on top of the engine.
type Config struct {
	TaxRate      decimal.Decimal
	Tiers        []domain.TierRule
	SellerRoleID string
}

// Service coordinates the accounting engine, the ledger store, and the
// platform-facing collaborators.
type Service struct {
	mu       sync.Mutex
	store    domain.LedgerStore
	roles    domain.RoleDirectory
	notifier domain.Notifier
	events   domain.EventPublisher // nil when event publishing is disabled
	cfg      Config
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates the ledger service.
func NewService(store domain.LedgerStore, roles domain.RoleDirectory, notifier domain.Notifier, cfg Config, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:    store,
		roles:    roles,
		notifier: notifier,
		cfg:      cfg,
		log:      log.With(slog.String("component", "ledger")),
		now:      time.Now,
	}
}

// SetEventPublisher enables the optional transaction event feed.
func (s *Service) SetEventPublisher(p domain.EventPublisher) { s.events = p }

// SetRoleDirectory installs the role adapter. The chat client backing it is
// built after the service, so headless callers construct with nil and wire
// it here once the client exists. A nil directory skips role sync.
func (s *Service) SetRoleDirectory(r domain.RoleDirectory) { s.roles = r }

// SetNotifier installs the reminder channel. Nil means reminders fail and
// sweeps skip notification.
func (s *Service) SetNotifier(n domain.Notifier) { s.notifier = n }

// ─── Commands ───────────────────────────────────────────────────────────────

// RecordTransaction records one purchase and returns the transaction along
// with its ledger effect. Tier roles newly earned by the customer are
// granted through the role directory; grant failures are logged, not
// returned — subsequent transactions reconcile role state.
func (s *Service) RecordTransaction(ctx context.Context, customerID, sellerID string, amount int64) (domain.Transaction, domain.TransactionResult, error) {
	tx := domain.Transaction{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		SellerID:   sellerID,
		Amount:     amount,
		Timestamp:  s.now().UTC(),
	}

	s.mu.Lock()
	ledger, err := s.store.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		return tx, domain.TransactionResult{}, err
	}
	next, res, err := domain.RecordTransaction(ledger, customerID, sellerID, amount, s.cfg.TaxRate)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, domain.ErrInvalidAmount) {
			observability.TransactionsRejected.WithLabelValues("invalid_amount").Inc()
		}
		return tx, domain.TransactionResult{}, err
	}
	if err := s.store.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return tx, domain.TransactionResult{}, fmt.Errorf("persisting transaction: %w", err)
	}
	s.mu.Unlock()

	observability.TransactionsRecorded.Inc()
	observability.TaxAccrued.Add(float64(res.Tax))
	s.refreshOutstandingGauge(next)

	s.syncTierRoles(ctx, customerID, res.CustomerTotalSpent)
	s.publish(ctx, tx, res)

	s.log.Info("transaction recorded",
		slog.String("id", tx.ID),
		slog.String("customer", customerID),
		slog.String("seller", sellerID),
		slog.Int64("amount", amount),
		slog.Int64("tax", res.Tax),
	)
	return tx, res, nil
}

// SettleTax clears a seller's full liability against payment proof. When a
// liability was actually cleared the seller's permission role is restored.
func (s *Service) SettleTax(ctx context.Context, sellerID string) (bool, error) {
	s.mu.Lock()
	ledger, err := s.store.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	next, settled := domain.SettleTax(ledger, sellerID)
	if settled {
		if err := s.store.Save(ctx, next); err != nil {
			s.mu.Unlock()
			return false, fmt.Errorf("persisting settlement: %w", err)
		}
	}
	s.mu.Unlock()

	if !settled {
		return false, nil
	}

	observability.Settlements.Inc()
	s.refreshOutstandingGauge(next)

	if s.cfg.SellerRoleID != "" && s.roles != nil {
		if err := s.roles.GrantRole(ctx, sellerID, s.cfg.SellerRoleID); err != nil {
			observability.RoleSyncFailures.WithLabelValues("grant").Inc()
			s.log.Warn("restoring seller role failed", slog.String("seller", sellerID), slog.Any("error", err))
		}
	}
	s.log.Info("tax settled", slog.String("seller", sellerID))
	return true, nil
}

// RemindSeller sends a one-off tax reminder using the seller's current
// liability. Sellers owing nothing are not messaged.
func (s *Service) RemindSeller(ctx context.Context, sellerID string) (int64, error) {
	owed, err := s.PendingTax(ctx, sellerID)
	if err != nil {
		return 0, err
	}
	if owed == 0 {
		return 0, nil
	}
	if s.notifier == nil {
		return owed, errors.New("no notifier configured")
	}
	if err := s.notifier.NotifyTaxDue(ctx, sellerID, owed); err != nil {
		observability.ReminderFailures.Inc()
		return owed, fmt.Errorf("notifying %s: %w", sellerID, err)
	}
	observability.RemindersSent.Inc()
	return owed, nil
}

// ─── Queries ────────────────────────────────────────────────────────────────

// AccountOf returns a user's current account; unknown users read as zero.
func (s *Service) AccountOf(ctx context.Context, userID string) (domain.Account, error) {
	ledger, err := s.loadLocked(ctx)
	if err != nil {
		return domain.Account{}, err
	}
	return ledger.Account(userID), nil
}

// TotalSpent returns a customer's cumulative spend.
func (s *Service) TotalSpent(ctx context.Context, customerID string) (int64, error) {
	acct, err := s.AccountOf(ctx, customerID)
	return acct.TotalSpent, err
}

// PendingTax returns a seller's outstanding liability.
func (s *Service) PendingTax(ctx context.Context, sellerID string) (int64, error) {
	ledger, err := s.loadLocked(ctx)
	if err != nil {
		return 0, err
	}
	return domain.PendingTax(ledger, sellerID), nil
}

// Outstanding lists all sellers owing tax, ordered by ID.
func (s *Service) Outstanding(ctx context.Context) ([]domain.OutstandingSeller, error) {
	ledger, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}
	return domain.OutstandingSellers(ledger), nil
}

// TiersEarnedBy returns the tier role IDs a customer currently qualifies for.
func (s *Service) TiersEarnedBy(ctx context.Context, customerID string) ([]string, error) {
	acct, err := s.AccountOf(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return domain.TiersEarned(acct.TotalSpent, s.cfg.Tiers), nil
}

// ─── Internal ───────────────────────────────────────────────────────────────

func (s *Service) loadLocked(ctx context.Context) (domain.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load(ctx)
}

// syncTierRoles grants every tier the customer now qualifies for. The
// directory treats re-granting a held role as a no-op, and tiers are never
// revoked here.
func (s *Service) syncTierRoles(ctx context.Context, customerID string, totalSpent int64) {
	if s.roles == nil {
		return
	}
	for _, roleID := range domain.TiersEarned(totalSpent, s.cfg.Tiers) {
		observability.TierRolesGranted.Inc()
		if err := s.roles.GrantRole(ctx, customerID, roleID); err != nil {
			observability.RoleSyncFailures.WithLabelValues("grant").Inc()
			s.log.Warn("tier role grant failed",
				slog.String("customer", customerID),
				slog.String("role", roleID),
				slog.Any("error", err),
			)
		}
	}
}

func (s *Service) publish(ctx context.Context, tx domain.Transaction, res domain.TransactionResult) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransaction(ctx, tx, res); err != nil {
		s.log.Warn("event publish failed", slog.String("transaction", tx.ID), slog.Any("error", err))
	}
}

func (s *Service) refreshOutstandingGauge(ledger domain.Ledger) {
	observability.OutstandingSellers.Set(float64(len(domain.OutstandingSellers(ledger))))
}
