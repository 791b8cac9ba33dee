/* metrics.go
 * Contains the domain counters the actions update. They are registered on whatever registry the caller passes so tests
 * can use a fresh one
 */

package api

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the pool's domain counters. A nil *Metrics is valid and records nothing
type Metrics struct {
	PredictionsSaved prometheus.Counter
	RoundsScored     prometheus.Counter
	ScoreRecords     prometheus.Counter
	Logins           *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PredictionsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bolao",
			Name:      "predictions_saved_total",
			Help:      "Predictions stored or replaced.",
		}),
		RoundsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bolao",
			Name:      "rounds_scored_total",
			Help:      "Rounds moved to the scored phase.",
		}),
		ScoreRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bolao",
			Name:      "score_records_written_total",
			Help:      "Per user score records written by scoring passes.",
		}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bolao",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.PredictionsSaved, m.RoundsScored, m.ScoreRecords, m.Logins)
	return m
}

func (m *Metrics) predictionSaved() {
	if m != nil {
		m.PredictionsSaved.Inc()
	}
}

func (m *Metrics) roundScored(records int) {
	if m != nil {
		m.RoundsScored.Inc()
		m.ScoreRecords.Add(float64(records))
	}
}

func (m *Metrics) login(result string) {
	if m != nil {
		m.Logins.WithLabelValues(result).Inc()
	}
}
