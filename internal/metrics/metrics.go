package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeSuccess labels operations that returned no error. Failures are
// labelled with their error code.
const OutcomeSuccess = "success"

// LeagueMetrics records league operation outcomes. A nil *LeagueMetrics is valid
// and records nothing.
type LeagueMetrics struct {
	operations          *prometheus.CounterVec
	walletPointsAwarded prometheus.Counter
	notifyFailures      *prometheus.CounterVec
}

// NewLeagueMetrics creates the league collectors and registers them on registry
func NewLeagueMetrics(registry prometheus.Registerer) *LeagueMetrics {
	m := &LeagueMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "league",
			Name:      "operations_total",
			Help:      "League service operations by name and outcome code.",
		}, []string{"operation", "outcome"}),
		walletPointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "league",
			Name:      "wallet_points_awarded_total",
			Help:      "Wallet points credited by victory point commits.",
		}),
		notifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "league",
			Name:      "notifications_failed_total",
			Help:      "Notifications that failed to dispatch, by event.",
		}, []string{"event"}),
	}

	if registry != nil {
		registry.MustRegister(m.operations, m.walletPointsAwarded, m.notifyFailures)
	}
	return m
}

// ObserveOperation counts one call of operation with the given outcome
func (m *LeagueMetrics) ObserveOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// AddWalletPoints counts wallet points credited in one commit
func (m *LeagueMetrics) AddWalletPoints(points int64) {
	if m == nil || points <= 0 {
		return
	}
	m.walletPointsAwarded.Add(float64(points))
}

// NotificationFailed counts a failed dispatch of event
func (m *LeagueMetrics) NotificationFailed(event string) {
	if m == nil {
		return
	}
	m.notifyFailures.WithLabelValues(event).Inc()
}
