package httpserver

import (
	"errors"
	"testing"

	"github.com/quikeats/Vouchy/internal/adapter/websocket"
	"github.com/quikeats/Vouchy/internal/domain"
	"github.com/quikeats/Vouchy/internal/platform/config"
)

// --- Mock implementations ---

type mockLedger struct {
	recordFn   func(userID string, amount int64) (int64, error)
	getFn      func(userID string) int64
	topNFn     func(n int) []domain.Entry
	snapshotFn func() []domain.Entry
}

func (m *mockLedger) Record(userID string, amount int64) (int64, error) {
	if m.recordFn != nil {
		return m.recordFn(userID, amount)
	}
	return 0, errors.New("not implemented")
}

func (m *mockLedger) Get(userID string) int64 {
	if m.getFn != nil {
		return m.getFn(userID)
	}
	return 0
}

func (m *mockLedger) TopN(n int) []domain.Entry {
	if m.topNFn != nil {
		return m.topNFn(n)
	}
	return nil
}

func (m *mockLedger) Snapshot() []domain.Entry {
	if m.snapshotFn != nil {
		return m.snapshotFn()
	}
	return nil
}

// --- Test helpers ---

func newTestServer(t *testing.T, ledger domain.Ledger, checks ...HealthCheck) *Server {
	t.Helper()

	hub := websocket.NewHub(4)
	t.Cleanup(hub.Stop)

	cfg := &config.Config{
		Port:                    "0",
		MaxWebSocketConnections: 4,
		WebSocketConnectionRate: 100,
	}

	return NewServer(cfg, ledger, hub, checks)
}
