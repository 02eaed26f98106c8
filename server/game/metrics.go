package game

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the prometheus collectors that games and the runner update.
type Metrics struct {
	// RoundsEvaluated counts rounds that have been scored.
	RoundsEvaluated prometheus.Counter
	// DefaultBetrayals counts decisions that were Betray because the player made no choice before the round expired.
	DefaultBetrayals prometheus.Counter
	// DecisionsSubmitted counts accepted decisions, by decision.
	DecisionsSubmitted *prometheus.CounterVec
	// GamesFinished counts games that played their last round, by outcome.
	GamesFinished *prometheus.CounterVec
	// ActiveGames is the number of games the runner is running.
	ActiveGames prometheus.Gauge
}

const metricsNamespace = "prisoners_dilemma"

// NewMetrics creates the metrics and registers them.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := Metrics{
		RoundsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rounds_evaluated_total",
			Help:      "Total number of rounds that have been scored.",
		}),
		DefaultBetrayals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "default_betrayals_total",
			Help:      "Total number of betrayals assigned to players who made no decision before the round expired.",
		}),
		DecisionsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "decisions_submitted_total",
			Help:      "Total number of decisions accepted from players.",
		}, []string{"decision"}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "games_finished_total",
			Help:      "Total number of games that finished their last round.",
		}, []string{"outcome"}),
		ActiveGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_games",
			Help:      "Number of games that are running.",
		}),
	}
	collectors := []prometheus.Collector{
		m.RoundsEvaluated,
		m.DefaultBetrayals,
		m.DecisionsSubmitted,
		m.GamesFinished,
		m.ActiveGames,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering game metrics: %w", err)
		}
	}
	return &m, nil
}

// outcomeLabel is the GamesFinished label for the result.
func outcomeLabel(tie bool) string {
	if tie {
		return "tie"
	}
	return "winner"
}
