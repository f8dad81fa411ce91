// Package pgstore keeps the ledger in Postgres for deployments where the
// bot host has no durable disk. Semantics match the other backends: Load
// reads the whole mapping, Save replaces it transactionally.
package pgstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/evanesaias-afk/taxbox/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS accounts (
	user_id          TEXT PRIMARY KEY,
	total_spent      BIGINT NOT NULL DEFAULT 0,
	total_earned     BIGINT NOT NULL DEFAULT 0,
	tax_owed         BIGINT NOT NULL DEFAULT 0,
	seller_suspended BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store is a Postgres-backed domain.LedgerStore.
type Store struct {
	db *sql.DB
}

// Open connects using a lib/pq DSN and ensures the schema exists.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres ledger: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres ledger: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating postgres ledger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the connection pool.
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
		if err := rows.Scan(&id, &acct.TotalSpent, &acct.TotalEarned, &acct.TaxOwed, &acct.SellerSuspended); err != nil {
			return domain.Ledger{}, fmt.Errorf("%w: %v", domain.ErrStorageCorrupt, err)
		}
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
		_, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (user_id, total_spent, total_earned, tax_owed, seller_suspended, updated_at)
			VALUES ($1, $2, $3, $4, $5, now())
		`, id, acct.TotalSpent, acct.TotalEarned, acct.TaxOwed, acct.SellerSuspended)
		if err != nil {
			return fmt.Errorf("writing account %s: %w", id, err)
		}
	}
	return tx.Commit()
}

var _ domain.LedgerStore = (*Store)(nil)
