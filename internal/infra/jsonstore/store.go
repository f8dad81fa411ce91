// Package jsonstore persists the ledger as a single JSON document.
// Saves are atomic: the new document is written to a temp file in the same
// directory and renamed over the old one, so a crash mid-write can never
// leave a half-written ledger behind.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/evanesaias-afk/taxbox/internal/domain"
)

// Store is a file-backed domain.LedgerStore.
type Store struct {
	path string
}

// New creates a store rooted at path. The parent directory is created if
// missing; the file itself is created lazily on first save.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger dir: %w", err)
		}
	}
	return &Store{path: path}, nil
}

// Load reads the full ledger. A missing file is an empty ledger; an
// unparseable file is fatal and reported as domain.ErrStorageCorrupt rather
// than silently reset.
func (s *Store) Load(ctx context.Context) (domain.Ledger, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewLedger(), nil
	}
	if err != nil {
		return domain.Ledger{}, fmt.Errorf("reading ledger %s: %w", s.path, err)
	}

	var ledger domain.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return domain.Ledger{}, fmt.Errorf("%w: %s: %v", domain.ErrStorageCorrupt, s.path, err)
	}
	if ledger.Accounts == nil {
		ledger.Accounts = make(map[string]domain.Account)
	}
	return ledger, nil
}

// Save atomically replaces the persisted ledger with the given snapshot.
func (s *Store) Save(ctx context.Context, ledger domain.Ledger) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ledger); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp ledger: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}

var _ domain.LedgerStore = (*Store)(nil)
