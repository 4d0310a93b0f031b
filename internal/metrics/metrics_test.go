package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLeagueMetricsCounts(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewLeagueMetrics(registry)

	m.ObserveOperation("finalize", OutcomeSuccess)
	m.ObserveOperation("finalize", OutcomeSuccess)
	m.ObserveOperation("accept", "STATE_CONFLICT")
	m.AddWalletPoints(30)
	m.AddWalletPoints(-5)
	m.NotificationFailed("wallets_updated")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("finalize", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("accept", "STATE_CONFLICT")))
	assert.Equal(t, 30.0, testutil.ToFloat64(m.walletPointsAwarded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifyFailures.WithLabelValues("wallets_updated")))
}

func TestNilLeagueMetricsIsNoop(t *testing.T) {
	var m *LeagueMetrics

	assert.NotPanics(t, func() {
		m.ObserveOperation("accept", OutcomeSuccess)
		m.AddWalletPoints(10)
		m.NotificationFailed("leaderboard_updated")
	})
}
