// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of the application — it depends on nothing but
// the decimal arithmetic used for tax computation.
package domain

import (
	"time"
)

// ─── Ledger Types ───────────────────────────────────────────────────────────

// Account tracks one user's marketplace history. Users can be customers and
// sellers at the same time; both sides live on the same record.
type Account struct {
	TotalSpent      int64 `json:"total_spent"`
	TotalEarned     int64 `json:"total_earned"`
	TaxOwed         int64 `json:"tax_owed"`
	SellerSuspended bool  `json:"seller_suspended"`
}

// IsZero reports whether the account carries no history at all.
func (a Account) IsZero() bool {
	return a.TotalSpent == 0 && a.TotalEarned == 0 && a.TaxOwed == 0 && !a.SellerSuspended
}

// Ledger is the full mapping of user ID → account. It is the unit of
// persistence: stores load and save it whole.
type Ledger struct {
	Accounts map[string]Account `json:"accounts"`
}

// NewLedger returns an empty ledger ready for use.
func NewLedger() Ledger {
	return Ledger{Accounts: make(map[string]Account)}
}

// Account returns the account for id. A user with no record reads as an
// all-zero account; absence is never an error.
func (l Ledger) Account(id string) Account {
	return l.Accounts[id]
}

// Clone returns a deep copy. Engine operations mutate copies so a failed
// save never leaves the caller holding half-applied state.
func (l Ledger) Clone() Ledger {
	out := Ledger{Accounts: make(map[string]Account, len(l.Accounts))}
	for id, acct := range l.Accounts {
		out.Accounts[id] = acct
	}
	return out
}

// ─── Tier Rules ─────────────────────────────────────────────────────────────

// TierRule grants a badge role once cumulative spend crosses a threshold.
// Rules are configuration, not stored state.
type TierRule struct {
	MinSpend int64
	RoleID   string
	Name     string
}

// ValidateTierRules checks that thresholds are strictly increasing and that
// every rule names a role.
func ValidateTierRules(rules []TierRule) error {
	var prev int64 = -1
	for i, r := range rules {
		if r.RoleID == "" {
			return &TierRuleError{Index: i, Reason: "missing role id"}
		}
		if r.MinSpend <= prev {
			return &TierRuleError{Index: i, Reason: "thresholds must be strictly increasing"}
		}
		prev = r.MinSpend
	}
	return nil
}

// ─── Transactions ───────────────────────────────────────────────────────────

// Transaction is a single economic event: a customer paying a seller.
// It is ephemeral — only its effect on the ledger is persisted.
type Transaction struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	SellerID   string    `json:"seller_id"`
	Amount     int64     `json:"amount"`
	Timestamp  time.Time `json:"timestamp"`
}

// TransactionResult reports the outcome of recording a transaction.
type TransactionResult struct {
	Tax                int64 `json:"tax"`
	Net                int64 `json:"net"`
	CustomerTotalSpent int64 `json:"customer_total_spent"`
	SellerTaxOwed      int64 `json:"seller_tax_owed"`
}

// OutstandingSeller is one row of the tax summary: a seller with liability.
type OutstandingSeller struct {
	SellerID string `json:"seller_id"`
	TaxOwed  int64  `json:"tax_owed"`
}
