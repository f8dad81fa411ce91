package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/evanesaias-afk/taxbox/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoad_FreshDatabase(t *testing.T) {
	store := openTestStore(t)

	ledger, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ledger.Accounts) != 0 {
		t.Errorf("fresh ledger has %d accounts", len(ledger.Accounts))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ledger := domain.NewLedger()
	ledger.Accounts["alice"] = domain.Account{TotalSpent: 100}
	ledger.Accounts["bob"] = domain.Account{TotalEarned: 75, TaxOwed: 25, SellerSuspended: true}

	if err := store.Save(ctx, ledger); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.Account("alice").TotalSpent != 100 {
		t.Errorf("alice = %+v", got.Account("alice"))
	}
	bob := got.Account("bob")
	if bob.TotalEarned != 75 || bob.TaxOwed != 25 || !bob.SellerSuspended {
		t.Errorf("bob = %+v", bob)
	}
}

func TestSave_ReplacesPriorContents(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := domain.NewLedger()
	first.Accounts["alice"] = domain.Account{TotalSpent: 100}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := domain.NewLedger()
	second.Accounts["bob"] = domain.Account{TaxOwed: 5}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Accounts) != 1 {
		t.Errorf("got %d accounts, want 1", len(got.Accounts))
	}
	if got.Account("bob").TaxOwed != 5 {
		t.Errorf("bob = %+v", got.Account("bob"))
	}
}

func TestSave_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ledger := domain.NewLedger()
	ledger.Accounts["alice"] = domain.Account{TotalSpent: 42}
	if err := store.Save(ctx, ledger); err != nil {
		t.Fatalf("Save: %v", err)
	}
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Account("alice").TotalSpent != 42 {
		t.Errorf("alice = %+v", got.Account("alice"))
	}
}
