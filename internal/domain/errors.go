package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Transaction errors
	ErrInvalidAmount  = errors.New("transaction amount must be positive")
	ErrInvalidTaxRate = errors.New("tax rate must be in [0, 1)")

	// Store errors
	ErrStorageCorrupt = errors.New("ledger store is corrupt")
)

// TierRuleError reports an invalid tier configuration entry.
type TierRuleError struct {
	Index  int
	Reason string
}

func (e *TierRuleError) Error() string {
	return fmt.Sprintf("tier rule %d: %s", e.Index, e.Reason)
}
