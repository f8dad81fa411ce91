// Package sqlitestore keeps the ledger in a SQLite database. The store
// still trades in whole-ledger snapshots — Save replaces the accounts table
// inside one transaction, so readers never observe a partial write.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/evanesaias-afk/taxbox/internal/domain"
)

// Migrations returns the schema statements. Each string is a single SQL
// statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			user_id          TEXT PRIMARY KEY,
			total_spent      INTEGER NOT NULL DEFAULT 0,
			total_earned     INTEGER NOT NULL DEFAULT 0,
			tax_owed         INTEGER NOT NULL DEFAULT 0,
			seller_suspended INTEGER NOT NULL DEFAULT 0,
			updated_at       TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_tax_owed ON accounts(tax_owed)`,
	}
}

// Store is a SQLite-backed domain.LedgerStore.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite ledger: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}
	for _, stmt := range Migrations() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating sqlite ledger: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Load reads every account row into a ledger snapshot.
func (s *Store) Load(ctx context.Context) (domain.Ledger, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, total_spent, total_earned, tax_owed, seller_suspended
		FROM accounts
	`)
	if err != nil {
		return domain.Ledger{}, fmt.Errorf("%w: %v", domain.ErrStorageCorrupt, err)
	}
	defer rows.Close()

	ledger := domain.NewLedger()
	for rows.Next() {
		var id string
		var acct domain.Account
		var suspended int
		if err := rows.Scan(&id, &acct.TotalSpent, &acct.TotalEarned, &acct.TaxOwed, &suspended); err != nil {
			return domain.Ledger{}, fmt.Errorf("%w: %v", domain.ErrStorageCorrupt, err)
		}
		acct.SellerSuspended = suspended == 1
		ledger.Accounts[id] = acct
	}
	if err := rows.Err(); err != nil {
		return domain.Ledger{}, fmt.Errorf("%w: %v", domain.ErrStorageCorrupt, err)
	}
	return ledger, nil
}

// Save replaces the persisted ledger with the given snapshot in one
// transaction.
func (s *Store) Save(ctx context.Context, ledger domain.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("clearing accounts: %w", err)
	}
	for id, acct := range ledger.Accounts {
		suspended := 0
		if acct.SellerSuspended {
			suspended = 1
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (user_id, total_spent, total_earned, tax_owed, seller_suspended, updated_at)
			VALUES (?, ?, ?, ?, ?, datetime('now'))
		`, id, acct.TotalSpent, acct.TotalEarned, acct.TaxOwed, suspended)
		if err != nil {
			return fmt.Errorf("writing account %s: %w", id, err)
		}
	}
	return tx.Commit()
}

var _ domain.LedgerStore = (*Store)(nil)
