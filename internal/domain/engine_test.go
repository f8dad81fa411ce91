package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func rate(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ─── Tax Arithmetic Tests ───────────────────────────────────────────────────

func TestTaxFor(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		rate   string
		want   int64
	}{
		{"quarter of 100", 100, "0.25", 25},
		{"quarter of 99 floors", 99, "0.25", 24},
		{"quarter of 1 floors to zero", 1, "0.25", 0},
		{"zero rate", 500, "0", 0},
		{"tenth of 7", 7, "0.1", 0},
		{"tenth of 30 exact", 30, "0.1", 3},
		{"large amount stays exact", 1_000_000_007, "0.25", 250_000_001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TaxFor(tt.amount, rate(tt.rate)); got != tt.want {
				t.Errorf("TaxFor(%d, %s) = %d, want %d", tt.amount, tt.rate, got, tt.want)
			}
		})
	}
}

func TestTaxFor_NetPlusTaxEqualsAmount(t *testing.T) {
	r := rate("0.25")
	for amount := int64(1); amount <= 1000; amount++ {
		tax := TaxFor(amount, r)
		net := amount - tax
		if net+tax != amount {
			t.Fatalf("amount %d: net %d + tax %d != amount", amount, net, tax)
		}
		if tax < 0 || net < 0 {
			t.Fatalf("amount %d: negative split net=%d tax=%d", amount, net, tax)
		}
	}
}

// ─── RecordTransaction Tests ────────────────────────────────────────────────

func TestRecordTransaction_FreshAccounts(t *testing.T) {
	ledger := NewLedger()

	next, res, err := RecordTransaction(ledger, "alice", "bob", 100, rate("0.25"))
	if err != nil {
		t.Fatalf("RecordTransaction: %v", err)
	}

	if res.Tax != 25 || res.Net != 75 {
		t.Errorf("tax/net = %d/%d, want 25/75", res.Tax, res.Net)
	}
	if res.CustomerTotalSpent != 100 {
		t.Errorf("CustomerTotalSpent = %d, want 100", res.CustomerTotalSpent)
	}
	if res.SellerTaxOwed != 25 {
		t.Errorf("SellerTaxOwed = %d, want 25", res.SellerTaxOwed)
	}

	if got := next.Account("alice").TotalSpent; got != 100 {
		t.Errorf("alice.TotalSpent = %d, want 100", got)
	}
	bob := next.Account("bob")
	if bob.TotalEarned != 75 {
		t.Errorf("bob.TotalEarned = %d, want 75 (net of tax)", bob.TotalEarned)
	}
	if bob.TaxOwed != 25 {
		t.Errorf("bob.TaxOwed = %d, want 25", bob.TaxOwed)
	}
}

func TestRecordTransaction_InvalidAmount(t *testing.T) {
	ledger := NewLedger()
	ledger.Accounts["bob"] = Account{TaxOwed: 10}

	for _, amount := range []int64{0, -1, -100} {
		next, _, err := RecordTransaction(ledger, "alice", "bob", amount, rate("0.25"))
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %d: err = %v, want ErrInvalidAmount", amount, err)
		}
		if got := next.Account("bob").TaxOwed; got != 10 {
			t.Errorf("amount %d: ledger mutated, bob.TaxOwed = %d", amount, got)
		}
		if _, ok := next.Accounts["alice"]; ok {
			t.Errorf("amount %d: alice account created on failed transaction", amount)
		}
	}
}

func TestRecordTransaction_InvalidRate(t *testing.T) {
	for _, r := range []string{"1", "1.5", "-0.1"} {
		_, _, err := RecordTransaction(NewLedger(), "a", "b", 100, rate(r))
		if !errors.Is(err, ErrInvalidTaxRate) {
			t.Errorf("rate %s: err = %v, want ErrInvalidTaxRate", r, err)
		}
	}
}

func TestRecordTransaction_Accumulates(t *testing.T) {
	ledger := NewLedger()
	r := rate("0.25")

	var wantOwed int64
	for i := 0; i < 5; i++ {
		var res TransactionResult
		var err error
		ledger, res, err = RecordTransaction(ledger, "alice", "bob", 99, r)
		if err != nil {
			t.Fatalf("transaction %d: %v", i, err)
		}
		wantOwed += res.Tax
	}

	// taxOwed equals the sum of all tax increments between settlements.
	if got := ledger.Account("bob").TaxOwed; got != wantOwed {
		t.Errorf("bob.TaxOwed = %d, want %d", got, wantOwed)
	}
	if got := ledger.Account("alice").TotalSpent; got != 5*99 {
		t.Errorf("alice.TotalSpent = %d, want %d", got, 5*99)
	}
}

func TestRecordTransaction_NoDeduplication(t *testing.T) {
	ledger := NewLedger()
	r := rate("0.25")

	ledger, _, _ = RecordTransaction(ledger, "alice", "bob", 100, r)
	ledger, _, _ = RecordTransaction(ledger, "alice", "bob", 100, r)

	// Two identical calls are two economic events.
	if got := ledger.Account("alice").TotalSpent; got != 200 {
		t.Errorf("alice.TotalSpent = %d, want 200", got)
	}
	if got := ledger.Account("bob").TaxOwed; got != 50 {
		t.Errorf("bob.TaxOwed = %d, want 50", got)
	}
}

func TestRecordTransaction_SelfPurchase(t *testing.T) {
	ledger := NewLedger()

	ledger, _, err := RecordTransaction(ledger, "alice", "alice", 100, rate("0.25"))
	if err != nil {
		t.Fatalf("RecordTransaction: %v", err)
	}

	acct := ledger.Account("alice")
	if acct.TotalSpent != 100 || acct.TotalEarned != 75 || acct.TaxOwed != 25 {
		t.Errorf("self purchase: got %+v", acct)
	}
}

// ─── Tier Tests ─────────────────────────────────────────────────────────────

func TestTiersEarned(t *testing.T) {
	rules := []TierRule{
		{MinSpend: 100, RoleID: "classic"},
		{MinSpend: 500, RoleID: "deluxe"},
	}

	tests := []struct {
		name  string
		spent int64
		want  []string
	}{
		{"below first threshold", 99, nil},
		{"exactly first threshold", 100, []string{"classic"}},
		{"between thresholds", 250, []string{"classic"}},
		{"all tiers", 600, []string{"classic", "deluxe"}},
		{"zero spend", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TiersEarned(tt.spent, rules)
			if len(got) != len(tt.want) {
				t.Fatalf("TiersEarned(%d) = %v, want %v", tt.spent, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("TiersEarned(%d)[%d] = %q, want %q", tt.spent, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTiersEarned_Monotonic(t *testing.T) {
	rules := []TierRule{
		{MinSpend: 1, RoleID: "classic"},
		{MinSpend: 100, RoleID: "vip"},
		{MinSpend: 250, RoleID: "deluxe"},
		{MinSpend: 500, RoleID: "prestige"},
		{MinSpend: 1000, RoleID: "titan"},
	}

	prev := 0
	for spent := int64(0); spent <= 1200; spent += 7 {
		n := len(TiersEarned(spent, rules))
		if n < prev {
			t.Fatalf("spent %d: tier set shrank from %d to %d", spent, prev, n)
		}
		prev = n
	}
}

func TestValidateTierRules(t *testing.T) {
	tests := []struct {
		name    string
		rules   []TierRule
		wantErr bool
	}{
		{"empty", nil, false},
		{"ascending", []TierRule{{MinSpend: 1, RoleID: "a"}, {MinSpend: 2, RoleID: "b"}}, false},
		{"equal thresholds", []TierRule{{MinSpend: 5, RoleID: "a"}, {MinSpend: 5, RoleID: "b"}}, true},
		{"descending", []TierRule{{MinSpend: 5, RoleID: "a"}, {MinSpend: 1, RoleID: "b"}}, true},
		{"missing role", []TierRule{{MinSpend: 5}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTierRules(tt.rules)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTierRules() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// ─── Settlement Tests ───────────────────────────────────────────────────────

func TestSettleTax(t *testing.T) {
	ledger := NewLedger()
	ledger.Accounts["bob"] = Account{TotalEarned: 150, TaxOwed: 50, SellerSuspended: true}

	next, settled := SettleTax(ledger, "bob")
	if !settled {
		t.Fatal("SettleTax returned settled=false for a seller owing 50")
	}

	bob := next.Account("bob")
	if bob.TaxOwed != 0 {
		t.Errorf("bob.TaxOwed = %d, want 0", bob.TaxOwed)
	}
	if bob.SellerSuspended {
		t.Error("bob still suspended after settlement")
	}
	if bob.TotalEarned != 150 {
		t.Errorf("bob.TotalEarned changed to %d", bob.TotalEarned)
	}

	// Second settlement is a no-op.
	next2, settled2 := SettleTax(next, "bob")
	if settled2 {
		t.Error("second SettleTax returned settled=true")
	}
	if got := next2.Account("bob").TaxOwed; got != 0 {
		t.Errorf("bob.TaxOwed after double settle = %d, want 0", got)
	}
}

func TestSettleTax_UnknownSeller(t *testing.T) {
	_, settled := SettleTax(NewLedger(), "nobody")
	if settled {
		t.Error("SettleTax(settled=true) for an unknown seller")
	}
}

func TestSuspendSeller(t *testing.T) {
	ledger := NewLedger()
	ledger.Accounts["bob"] = Account{TaxOwed: 50}

	next := SuspendSeller(ledger, "bob")
	if !next.Account("bob").SellerSuspended {
		t.Error("bob not suspended")
	}
	if ledger.Account("bob").SellerSuspended {
		t.Error("original snapshot mutated")
	}

	// Suspension of an unknown seller creates the account with the flag set.
	next = SuspendSeller(ledger, "carol")
	if !next.Account("carol").SellerSuspended {
		t.Error("carol not suspended")
	}
}

// ─── Summary Tests ──────────────────────────────────────────────────────────

func TestOutstandingSellers(t *testing.T) {
	ledger := NewLedger()
	ledger.Accounts["zed"] = Account{TaxOwed: 5}
	ledger.Accounts["amy"] = Account{TaxOwed: 30}
	ledger.Accounts["bob"] = Account{TaxOwed: 0, TotalEarned: 100}
	ledger.Accounts["cal"] = Account{TotalSpent: 500}

	got := OutstandingSellers(ledger)
	want := []OutstandingSeller{
		{SellerID: "amy", TaxOwed: 30},
		{SellerID: "zed", TaxOwed: 5},
	}
	if len(got) != len(want) {
		t.Fatalf("OutstandingSellers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOutstandingSellers_Empty(t *testing.T) {
	if got := OutstandingSellers(NewLedger()); len(got) != 0 {
		t.Errorf("OutstandingSellers(empty) = %v, want empty", got)
	}
}

func TestPendingTax(t *testing.T) {
	ledger := NewLedger()
	ledger.Accounts["bob"] = Account{TaxOwed: 42}

	if got := PendingTax(ledger, "bob"); got != 42 {
		t.Errorf("PendingTax(bob) = %d, want 42", got)
	}
	if got := PendingTax(ledger, "nobody"); got != 0 {
		t.Errorf("PendingTax(nobody) = %d, want 0", got)
	}
}

// ─── Ledger Tests ───────────────────────────────────────────────────────────

func TestLedgerClone_Isolated(t *testing.T) {
	ledger := NewLedger()
	ledger.Accounts["a"] = Account{TotalSpent: 1}

	clone := ledger.Clone()
	clone.Accounts["a"] = Account{TotalSpent: 99}
	clone.Accounts["b"] = Account{TotalSpent: 2}

	if got := ledger.Account("a").TotalSpent; got != 1 {
		t.Errorf("original mutated: a.TotalSpent = %d", got)
	}
	if _, ok := ledger.Accounts["b"]; ok {
		t.Error("original gained account b")
	}
}

func TestAccountIsZero(t *testing.T) {
	if !(Account{}).IsZero() {
		t.Error("zero account reported non-zero")
	}
	if (Account{SellerSuspended: true}).IsZero() {
		t.Error("suspended account reported zero")
	}
}
