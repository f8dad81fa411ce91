package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; the ledger service depends on them.

// LedgerStore abstracts durable ledger persistence. Load returns the entire
// current mapping; Save replaces it atomically with respect to crashes.
// A store that cannot parse its persisted state must return an error wrapping
// ErrStorageCorrupt — never a silently reset empty ledger.
type LedgerStore interface {
	Load(ctx context.Context) (Ledger, error)
	Save(ctx context.Context, ledger Ledger) error
}

// RoleDirectory reflects ledger-driven role policy into the chat platform.
// Failures are logged by the caller, never rolled back into the ledger:
// the ledger is the source of truth and role state is eventually reconciled
// by subsequent tier checks.
type RoleDirectory interface {
	GrantRole(ctx context.Context, userID, roleID string) error
	RevokeRole(ctx context.Context, userID, roleID string) error
}

// Notifier delivers a tax-due reminder to a single seller.
type Notifier interface {
	NotifyTaxDue(ctx context.Context, sellerID string, owed int64) error
}

// EventPublisher emits a transaction-completed event after a recorded
// transaction. Implementations may be no-ops.
type EventPublisher interface {
	PublishTransaction(ctx context.Context, tx Transaction, res TransactionResult) error
}
