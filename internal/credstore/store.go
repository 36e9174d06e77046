package credstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Store is the persistence boundary for credential sets, keyed by
// identity. Implementations must treat undecryptable data as absent.
type Store interface {
	// Get returns the stored set for identity, or nil when absent.
	Get(ctx context.Context, identity string) (*CredentialSet, error)

	// Put persists the full set for identity, replacing any previous one.
	Put(ctx context.Context, identity string, set *CredentialSet) error

	// Delete removes the stored set for identity, if any.
	Delete(ctx context.Context, identity string) error
}

// SQLiteStore keeps encrypted credential blobs in a single SQLite table.
type SQLiteStore struct {
	db     *sql.DB
	box    *Box
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// Open creates the database file (and parent directory) if needed, runs
// the schema migration, and returns a ready store.
func Open(dbPath, secret string, logger *slog.Logger) (*SQLiteStore, error) {
	box, err := NewBox(secret)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("credstore: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("credstore: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("credstore: pragma %q: %w", p, err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS credentials (
			identity   TEXT PRIMARY KEY,
			blob       TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("credstore: migration: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteStore{db: db, box: box, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get loads and decrypts the credential set for identity. A missing row
// and an undecryptable row both return (nil, nil): the caller must
// re-authenticate either way.
func (s *SQLiteStore) Get(ctx context.Context, identity string) (*CredentialSet, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT blob FROM credentials WHERE identity = ?`, identity).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credstore: query: %w", err)
	}

	plaintext, err := s.box.Open(blob)
	if err != nil {
		// Wrong key or corrupted row: force re-authentication instead
		// of surfacing a hard error.
		s.logger.Warn("stored credential undecryptable, treating as absent",
			"identity", identity, "error", err)
		return nil, nil
	}

	var set CredentialSet
	if err := json.Unmarshal(plaintext, &set); err != nil {
		s.logger.Warn("stored credential unparsable, treating as absent",
			"identity", identity, "error", err)
		return nil, nil
	}
	return &set, nil
}

// Put encrypts and upserts the full credential set for identity.
func (s *SQLiteStore) Put(ctx context.Context, identity string, set *CredentialSet) error {
	plaintext, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("credstore: marshal: %w", err)
	}
	blob, err := s.box.Seal(plaintext)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (identity, blob, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(identity) DO UPDATE SET
			blob = excluded.blob,
			updated_at = excluded.updated_at`,
		identity, blob)
	if err != nil {
		return fmt.Errorf("credstore: upsert: %w", err)
	}
	return nil
}

// Delete removes the stored set for identity.
func (s *SQLiteStore) Delete(ctx context.Context, identity string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE identity = ?`, identity); err != nil {
		return fmt.Errorf("credstore: delete: %w", err)
	}
	return nil
}
