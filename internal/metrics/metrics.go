package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Message Processing Metrics
var (
	// MessagesTotal tracks inbound messages by outcome
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total inbound chat messages by outcome (vouch/command/ignored)",
		},
		[]string{"outcome"},
	)

	// VouchEventsTotal tracks messages that earned vouch points
	VouchEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vouch_events_total",
			Help: "Total messages that earned vouch points",
		},
	)

	// VouchPointsTotal tracks the sum of vouch points awarded
	VouchPointsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vouch_points_total",
			Help: "Total vouch points awarded",
		},
	)

	// ReactionFailures tracks failed acknowledgement reactions
	ReactionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reaction_failures_total",
			Help: "Total failed acknowledgement reactions",
		},
	)
)

// Command Metrics
var (
	// CommandsTotal tracks chat commands by name
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commands_total",
			Help: "Total chat commands dispatched by name",
		},
		[]string{"command"},
	)

	// CommandErrors tracks failed command dispatches by name
	CommandErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "command_errors_total",
			Help: "Total failed command dispatches by name",
		},
		[]string{"command"},
	)
)

// Ledger Persistence Metrics
var (
	// PersistTotal tracks ledger persist attempts by status
	PersistTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_persist_total",
			Help: "Total ledger persist attempts by status (success/failure)",
		},
		[]string{"status"},
	)

	// PersistDuration tracks ledger persist latency in seconds
	PersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_persist_duration_seconds",
			Help:    "Ledger persist duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// PersistRetriesTotal tracks repair-loop persist retries
	PersistRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_persist_retries_total",
			Help: "Total persist retries triggered by the durability repair loop",
		},
	)

	// LedgerDirty is 1 while in-memory state has not been persisted
	LedgerDirty = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_dirty",
			Help: "1 while the in-memory ledger holds changes that failed to persist",
		},
	)

	// LedgerUsers tracks the number of users with recorded vouches
	LedgerUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_users",
			Help: "Number of users with recorded vouches",
		},
	)
)

// WebSocket Metrics
var (
	// WebSocketConnectionsCurrent tracks currently connected overlay clients
	WebSocketConnectionsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_current",
			Help: "Currently connected WebSocket clients",
		},
	)

	// WebSocketConnectionsTotal tracks accepted WebSocket connections
	WebSocketConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_connections_total",
			Help: "Total accepted WebSocket connections",
		},
	)

	// WebSocketConnectionsRejected tracks rejected upgrade attempts by reason
	WebSocketConnectionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_connections_rejected_total",
			Help: "Total rejected WebSocket connections by reason (capacity/rate_limit)",
		},
		[]string{"reason"},
	)

	// WebSocketSlowClientsEvicted tracks clients dropped for slow consumption
	WebSocketSlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_slow_clients_evicted_total",
			Help: "Total WebSocket clients evicted because their send buffer stayed full",
		},
	)

	// WebSocketBroadcastsTotal tracks leaderboard broadcasts to clients
	WebSocketBroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_broadcasts_total",
			Help: "Total leaderboard broadcasts fanned out to WebSocket clients",
		},
	)
)

// Redis Metrics
var (
	// RedisOpsTotal tracks Redis operations by operation and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis operation latency in seconds
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors tracks Redis connection errors
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Total Redis connection errors",
		},
	)

	// CircuitBreakerStateChanges tracks breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)

// Gateway Metrics
var (
	// GatewayEventsTotal tracks gateway events by type
	GatewayEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_events_total",
			Help: "Total gateway events received by type",
		},
		[]string{"event"},
	)

	// GatewayConnected is 1 while the gateway session is open
	GatewayConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_connected",
			Help: "1 while the chat gateway session is open",
		},
	)
)

// Build Metrics
var (
	// BuildInfo exposes build metadata as labels (value is always 1)
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build information with version, commit, build_time, and go_version labels (value is always 1)",
		},
		[]string{"version", "commit", "build_time", "go_version"},
	)
)

// HTTP Error Metrics
// Note: http_errors_total{type} is provided by internal/platform/errors
