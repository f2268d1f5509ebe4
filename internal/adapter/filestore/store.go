// Package filestore persists the vouch ledger as a single JSON document on
// local disk. It is the default backend and writes the same flat
// user-ID-to-points object other tooling around the bot expects, so the file
// can be inspected or edited by hand between runs.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quikeats/Vouchy/internal/domain"
)

// Store reads and writes ledger totals at a fixed path. Writes go through a
// temporary file and rename, so readers never observe a partial document.
type Store struct {
	path string
}

var _ domain.LedgerStore = (*Store)(nil)

func New(path string) *Store {
	return &Store{path: path}
}

// Load returns the persisted totals. A missing or empty file is a normal
// first run and yields an empty map. A file that exists but cannot be
// parsed is reported as an error so the caller decides how to degrade.
func (s *Store) Load(_ context.Context) (map[string]int64, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]int64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ledger file %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		// The previous generation of the bot wrote in place and could
		// leave a zero-length file behind on a crash.
		return map[string]int64{}, nil
	}

	var totals map[string]int64
	if err := json.Unmarshal(data, &totals); err != nil {
		return nil, fmt.Errorf("parsing ledger file %s: %w", s.path, err)
	}
	if totals == nil {
		totals = map[string]int64{}
	}
	return totals, nil
}

// Save replaces the whole document. The four-space indentation matches what
// the previous generation of the bot wrote, keeping existing files diffable.
func (s *Store) Save(_ context.Context, totals map[string]int64) error {
	data, err := json.MarshalIndent(totals, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling ledger: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary ledger file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temporary ledger file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temporary ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temporary ledger file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing ledger file %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
