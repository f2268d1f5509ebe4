package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistration(t *testing.T) {
	// Every package-level collector must describe itself without conflicts.
	collectorsUnderTest := []prometheus.Collector{
		MessagesTotal,
		VouchEventsTotal,
		VouchPointsTotal,
		ReactionFailures,

		CommandsTotal,
		CommandErrors,

		PersistTotal,
		PersistDuration,
		PersistRetriesTotal,
		LedgerDirty,
		LedgerUsers,

		WebSocketConnectionsCurrent,
		WebSocketConnectionsTotal,
		WebSocketConnectionsRejected,
		WebSocketSlowClientsEvicted,
		WebSocketBroadcastsTotal,

		RedisOpsTotal,
		CircuitBreakerStateChanges,
		CircuitBreakerState,

		GatewayEventsTotal,
		GatewayConnected,

		BuildInfo,
	}

	for _, collector := range collectorsUnderTest {
		descCh := make(chan *prometheus.Desc, 1)
		collector.Describe(descCh)
		close(descCh)

		require.NotNil(t, <-descCh, "metric should have a valid descriptor")
	}
}

func TestCounterVecLabels(t *testing.T) {
	MessagesTotal.Reset()

	MessagesTotal.WithLabelValues("vouch").Inc()
	MessagesTotal.WithLabelValues("vouch").Inc()
	MessagesTotal.WithLabelValues("ignored").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(MessagesTotal.WithLabelValues("vouch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(MessagesTotal.WithLabelValues("ignored")))
}

func TestGaugeSetAndUnset(t *testing.T) {
	LedgerDirty.Set(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(LedgerDirty))

	LedgerDirty.Set(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(LedgerDirty))
}

func TestBuildInfoLabels(t *testing.T) {
	BuildInfo.Reset()
	BuildInfo.WithLabelValues("v1.2.3", "abc1234", "2025-01-01T00:00:00Z", "go1.24.0").Set(1)

	assert.Equal(t, 1.0, testutil.ToFloat64(BuildInfo.WithLabelValues("v1.2.3", "abc1234", "2025-01-01T00:00:00Z", "go1.24.0")))
}
