package domain

import "context"

// Entry is one user's row in the vouch ledger.
type Entry struct {
	UserID string `json:"user_id"`
	Points int64  `json:"points"`
}

// RankedEntry is an Entry with its 1-based leaderboard position.
type RankedEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Points int64  `json:"points"`
}

// Rank assigns 1-based ranks to entries already in leaderboard order.
func Rank(entries []Entry) []RankedEntry {
	ranked := make([]RankedEntry, len(entries))
	for i, e := range entries {
		ranked[i] = RankedEntry{Rank: i + 1, UserID: e.UserID, Points: e.Points}
	}
	return ranked
}

// LedgerStore persists the full vouch mapping. Save replaces the previous
// contents wholesale; Load returns an empty map when no data exists yet.
type LedgerStore interface {
	Load(ctx context.Context) (map[string]int64, error)
	Save(ctx context.Context, totals map[string]int64) error
	Close() error
}

// Ledger is the read/write contract of the vouch ledger engine.
type Ledger interface {
	Record(userID string, amount int64) (int64, error)
	Get(userID string) int64
	TopN(n int) []Entry
	Snapshot() []Entry
}
