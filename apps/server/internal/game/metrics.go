package game

import (
	"github.com/prometheus/client_golang/prometheus"

	"negotiator-lite/negotiation"
)

type Metrics struct {
	attemptsStarted prometheus.Counter
	turns           *prometheus.CounterVec
	outcomes        *prometheus.CounterVec
	fallbacks       prometheus.Counter
	scores          prometheus.Histogram
}

// NewMetrics registers the game collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attemptsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "negotiator",
			Name:      "attempts_started_total",
			Help:      "Negotiation attempts started.",
		}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "negotiator",
			Name:      "turns_total",
			Help:      "Accepted player turns by classified category.",
		}, []string{"category"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "negotiator",
			Name:      "outcomes_total",
			Help:      "Finished attempts by result.",
		}, []string{"result"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "negotiator",
			Name:      "suspect_fallbacks_total",
			Help:      "Suspect replies served from the fallback table.",
		}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "negotiator",
			Name:      "score",
			Help:      "Final scores of finished attempts.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
	}
	reg.MustRegister(m.attemptsStarted, m.turns, m.outcomes, m.fallbacks, m.scores)
	return m
}

func (m *Metrics) turn(c negotiation.Category) {
	m.turns.WithLabelValues(string(c)).Inc()
}

func (m *Metrics) outcome(success bool, score float64) {
	result := "failure"
	if success {
		result = "success"
	}
	m.outcomes.WithLabelValues(result).Inc()
	m.scores.Observe(score)
}
