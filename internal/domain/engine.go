package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ─── Accounting Engine ──────────────────────────────────────────────────────
// Pure business rules for transactions, tax, and tier policy. Every operation
// takes a ledger snapshot and returns a new snapshot; nothing here touches
// storage, roles, or the chat platform.

// TaxFor computes the tax on amount at rate, floored. Decimal arithmetic
// keeps rates like 0.25 exact regardless of the amount's magnitude.
func TaxFor(amount int64, rate decimal.Decimal) int64 {
	return rate.Mul(decimal.NewFromInt(amount)).Floor().IntPart()
}

// ValidTaxRate reports whether rate is a usable fraction in [0, 1).
func ValidTaxRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThan(decimal.NewFromInt(1))
}

// RecordTransaction applies one purchase to the ledger: the customer's spend
// grows by amount, the seller earns the net and owes the floored tax.
// Each call is a new economic event — there is no deduplication key, so
// identical calls record identical transactions twice on purpose.
func RecordTransaction(ledger Ledger, customerID, sellerID string, amount int64, rate decimal.Decimal) (Ledger, TransactionResult, error) {
	if amount <= 0 {
		return ledger, TransactionResult{}, ErrInvalidAmount
	}
	if !ValidTaxRate(rate) {
		return ledger, TransactionResult{}, ErrInvalidTaxRate
	}

	tax := TaxFor(amount, rate)
	net := amount - tax

	next := ledger.Clone()

	customer := next.Account(customerID)
	customer.TotalSpent += amount
	next.Accounts[customerID] = customer

	seller := next.Account(sellerID)
	seller.TotalEarned += net
	seller.TaxOwed += tax
	next.Accounts[sellerID] = seller

	return next, TransactionResult{
		Tax:                tax,
		Net:                net,
		CustomerTotalSpent: customer.TotalSpent,
		SellerTaxOwed:      seller.TaxOwed,
	}, nil
}

// TiersEarned returns the role IDs of every tier the customer qualifies for,
// not just the highest. Qualification is monotonic: the engine grants and
// never revokes, even when that policy looks asymmetric.
func TiersEarned(totalSpent int64, rules []TierRule) []string {
	var earned []string
	for _, r := range rules {
		if totalSpent >= r.MinSpend {
			earned = append(earned, r.RoleID)
		}
	}
	return earned
}

// PendingTax returns the seller's current liability; unknown sellers owe 0.
func PendingTax(ledger Ledger, sellerID string) int64 {
	return ledger.Account(sellerID).TaxOwed
}

// SettleTax clears the seller's full liability against payment proof and
// lifts any suspension. Settlement is all-or-nothing: there is no partial
// payment. Returns settled=false when the seller had nothing to settle.
func SettleTax(ledger Ledger, sellerID string) (Ledger, bool) {
	acct, ok := ledger.Accounts[sellerID]
	if !ok || acct.TaxOwed == 0 {
		return ledger, false
	}

	next := ledger.Clone()
	acct.TaxOwed = 0
	acct.SellerSuspended = false
	next.Accounts[sellerID] = acct
	return next, true
}

// SuspendSeller marks the seller as gated pending payment proof. The caller
// mirrors this in the role directory by revoking the permission role.
func SuspendSeller(ledger Ledger, sellerID string) Ledger {
	next := ledger.Clone()
	acct := next.Account(sellerID)
	acct.SellerSuspended = true
	next.Accounts[sellerID] = acct
	return next
}

// OutstandingSellers lists every seller with liability, ordered by ID for
// deterministic sweeps and summaries.
func OutstandingSellers(ledger Ledger) []OutstandingSeller {
	var out []OutstandingSeller
	for id, acct := range ledger.Accounts {
		if acct.TaxOwed > 0 {
			out = append(out, OutstandingSeller{SellerID: id, TaxOwed: acct.TaxOwed})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SellerID < out[j].SellerID })
	return out
}
