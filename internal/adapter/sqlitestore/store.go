// Package sqlitestore persists the vouch ledger in a local SQLite database.
// It suits deployments that outgrow the flat JSON file but still want a
// single-node, zero-service setup.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/quikeats/Vouchy/internal/domain"
)

const busyTimeoutMs = 5000

type Store struct {
	db *sql.DB
}

var _ domain.LedgerStore = (*Store)(nil)

// New opens or creates the database file and prepares the schema. WAL mode
// keeps reads from the sidecar HTTP server from blocking ledger writes.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMs)); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode=WAL").Scan(&mode); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS vouches (
		user_id TEXT PRIMARY KEY,
		points INTEGER NOT NULL CHECK (points >= 0)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vouches table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Load(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT user_id, points FROM vouches")
	if err != nil {
		return nil, fmt.Errorf("querying vouches: %w", err)
	}
	defer rows.Close()

	totals := map[string]int64{}
	for rows.Next() {
		var userID string
		var points int64
		if err := rows.Scan(&userID, &points); err != nil {
			return nil, fmt.Errorf("scanning vouch row: %w", err)
		}
		totals[userID] = points
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vouch rows: %w", err)
	}
	return totals, nil
}

// Save replaces the whole table in one transaction, mirroring the flat-file
// backend's full-document write. A crashed save never leaves a mix of old
// and new rows behind.
func (s *Store) Save(ctx context.Context, totals map[string]int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM vouches"); err != nil {
		tx.Rollback()
		return fmt.Errorf("truncating vouches: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO vouches (user_id, points) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing vouch insert: %w", err)
	}
	defer stmt.Close()

	for userID, points := range totals {
		if _, err := stmt.ExecContext(ctx, userID, points); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting vouch for %s: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save transaction: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
