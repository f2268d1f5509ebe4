// Package ledger implements the vouch ledger engine. A single actor
// goroutine owns the totals map; every mutation persists the full mapping
// to the configured store before the next command is taken, so an
// increment and its durability attempt form one critical section.
package ledger

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/quikeats/Vouchy/internal/domain"
	"github.com/quikeats/Vouchy/internal/metrics"
)

// --- Command types ---

type ledgerCmd interface{ ledgerCmd() }

type cmdRecord struct {
	userID  string
	amount  int64
	replyCh chan recordResult
}

func (cmdRecord) ledgerCmd() {}

type recordResult struct {
	total int64
	err   error
}

type cmdGet struct {
	userID  string
	replyCh chan int64
}

func (cmdGet) ledgerCmd() {}

type cmdTopN struct {
	n       int
	replyCh chan []domain.Entry
}

func (cmdTopN) ledgerCmd() {}

type cmdSnapshot struct {
	replyCh chan []domain.Entry
}

func (cmdSnapshot) ledgerCmd() {}

type cmdSetOnChange struct {
	fn func([]domain.Entry)
}

func (cmdSetOnChange) ledgerCmd() {}

type cmdRetryPersist struct{}

func (cmdRetryPersist) ledgerCmd() {}

type cmdStop struct {
	doneCh chan struct{}
}

func (cmdStop) ledgerCmd() {}

// --- Engine ---

type Engine struct {
	cmdCh chan ledgerCmd
	store domain.LedgerStore
	clock clockwork.Clock
	// totals is owned by the actor goroutine; users with no vouches are
	// absent rather than stored at zero.
	totals        map[string]int64
	dirty         bool
	onChange      func([]domain.Entry)
	retryInterval time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
}

var _ domain.Ledger = (*Engine)(nil)

// New builds an engine seeded from store. A failed or malformed load is
// logged and the ledger starts empty; it is never fatal. Negative totals
// in the loaded data are dropped, valid entries are kept.
func New(ctx context.Context, store domain.LedgerStore, clock clockwork.Clock, retryInterval time.Duration) *Engine {
	e := &Engine{
		cmdCh:         make(chan ledgerCmd, 256),
		store:         store,
		clock:         clock,
		totals:        make(map[string]int64),
		retryInterval: retryInterval,
		stopCh:        make(chan struct{}),
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		slog.Warn("Failed to load ledger, starting empty", "error", err)
		loaded = nil
	}
	for userID, points := range loaded {
		if points < 0 {
			slog.Warn("Dropping negative ledger entry", "user_id", userID, "points", points)
			continue
		}
		e.totals[userID] = points
	}
	metrics.LedgerUsers.Set(float64(len(e.totals)))

	slog.Info("Ledger loaded", "users", len(e.totals))
	return e
}

// SetOnChange registers a callback invoked with a fresh leaderboard-ordered
// snapshot after every successful mutation. Must be called before Start.
func (e *Engine) SetOnChange(fn func([]domain.Entry)) {
	e.cmdCh <- cmdSetOnChange{fn: fn}
}

// Start launches the actor and the persist repair loop.
func (e *Engine) Start() {
	go e.run()
	go e.retryLoop()
}

func (e *Engine) run() {
	ctx := context.Background()
	for cmd := range e.cmdCh {
		switch c := cmd.(type) {
		case cmdSetOnChange:
			e.onChange = c.fn

		case cmdRecord:
			c.replyCh <- e.handleRecord(ctx, c)

		case cmdGet:
			c.replyCh <- e.totals[c.userID]

		case cmdTopN:
			c.replyCh <- e.top(c.n)

		case cmdSnapshot:
			c.replyCh <- e.top(len(e.totals))

		case cmdRetryPersist:
			if e.dirty {
				metrics.PersistRetriesTotal.Inc()
				e.persist(ctx)
			}

		case cmdStop:
			if e.dirty {
				e.persist(ctx)
			}
			close(c.doneCh)
			return
		}
	}
}

func (e *Engine) handleRecord(ctx context.Context, c cmdRecord) recordResult {
	if c.amount < 0 {
		return recordResult{err: domain.ErrNegativeAmount}
	}
	if c.amount == 0 {
		// Reported without creating an entry for absent users.
		return recordResult{total: e.totals[c.userID]}
	}

	e.totals[c.userID] += c.amount
	total := e.totals[c.userID]
	metrics.LedgerUsers.Set(float64(len(e.totals)))

	e.persist(ctx)

	if e.onChange != nil {
		e.onChange(e.top(len(e.totals)))
	}

	return recordResult{total: total}
}

// persist writes the full mapping. On failure the in-memory state is kept
// and the dirty flag hands the write to the repair loop.
func (e *Engine) persist(ctx context.Context) {
	start := e.clock.Now()
	err := e.store.Save(ctx, e.totals)
	metrics.PersistDuration.Observe(e.clock.Since(start).Seconds())

	if err != nil {
		e.dirty = true
		metrics.PersistTotal.WithLabelValues("failure").Inc()
		metrics.LedgerDirty.Set(1)
		slog.Warn("Ledger persist failed, keeping in-memory state", "error", err)
		return
	}

	if e.dirty {
		slog.Info("Ledger persisted after earlier failure")
	}
	e.dirty = false
	metrics.PersistTotal.WithLabelValues("success").Inc()
	metrics.LedgerDirty.Set(0)
}

// top returns up to n entries sorted by points descending, ties broken by
// user ID ascending. The secondary order is what makes leaderboards stable
// across restarts, since insertion order does not survive persistence.
func (e *Engine) top(n int) []domain.Entry {
	if n <= 0 {
		return []domain.Entry{}
	}

	entries := make([]domain.Entry, 0, len(e.totals))
	for userID, points := range e.totals {
		entries = append(entries, domain.Entry{UserID: userID, Points: points})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func (e *Engine) retryLoop() {
	ticker := e.clock.NewTicker(e.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			e.cmdCh <- cmdRetryPersist{}
		case <-e.stopCh:
			return
		}
	}
}

// --- Public API ---

// Record adds amount vouch points to userID and returns the new total.
// The total is persisted before Record returns; a persist failure still
// keeps the new total in memory and is repaired in the background.
func (e *Engine) Record(userID string, amount int64) (int64, error) {
	replyCh := make(chan recordResult, 1)
	e.cmdCh <- cmdRecord{userID: userID, amount: amount, replyCh: replyCh}
	res := <-replyCh
	return res.total, res.err
}

// Get returns userID's current total, zero for unknown users. Never
// creates an entry.
func (e *Engine) Get(userID string) int64 {
	replyCh := make(chan int64, 1)
	e.cmdCh <- cmdGet{userID: userID, replyCh: replyCh}
	return <-replyCh
}

// TopN returns up to n leaderboard entries.
func (e *Engine) TopN(n int) []domain.Entry {
	replyCh := make(chan []domain.Entry, 1)
	e.cmdCh <- cmdTopN{n: n, replyCh: replyCh}
	return <-replyCh
}

// Snapshot returns the whole ledger in leaderboard order.
func (e *Engine) Snapshot() []domain.Entry {
	replyCh := make(chan []domain.Entry, 1)
	e.cmdCh <- cmdSnapshot{replyCh: replyCh}
	return <-replyCh
}

// Stop makes a final persist attempt when state is dirty and terminates
// the actor. Safe to call more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopCh)
		doneCh := make(chan struct{})
		e.cmdCh <- cmdStop{doneCh: doneCh}
		<-doneCh
	})
}
