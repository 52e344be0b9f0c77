package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "prediction_pool"

// Metrics holds the service-level collectors. A nil *Metrics records nothing.
type Metrics struct {
	predictionsSaved    prometheus.Counter
	submissionsRejected *prometheus.CounterVec
	scoringRuns         *prometheus.CounterVec
	scoringDuration     *prometheus.HistogramVec
	predictionsScored   prometheus.Counter
	scoringFailures     prometheus.Counter
	leaderboardCache    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		predictionsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "predictions_saved_total",
			Help:      "Number of predictions written by accepted submissions.",
		}),
		submissionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "submissions_rejected_total",
			Help:      "Number of rejected submission batches by reason.",
		}, []string{"reason"}),
		scoringRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "scoring_runs_total",
			Help:      "Number of scoring passes by kind.",
		}, []string{"kind"}),
		scoringDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "scoring_duration_seconds",
			Help:      "Duration of scoring passes.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		predictionsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "predictions_scored_total",
			Help:      "Number of prediction rows rewritten by scoring.",
		}),
		scoringFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "scoring_match_failures_total",
			Help:      "Number of matches that failed during a full recalculation.",
		}),
		leaderboardCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "leaderboard_cache_lookups_total",
			Help:      "Leaderboard cache lookups by result.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.predictionsSaved,
			m.submissionsRejected,
			m.scoringRuns,
			m.scoringDuration,
			m.predictionsScored,
			m.scoringFailures,
			m.leaderboardCache,
		)
	}
	return m
}

func (m *Metrics) predictionsAccepted(n int) {
	if m == nil {
		return
	}
	m.predictionsSaved.Add(float64(n))
}

func (m *Metrics) submissionRejected(reason string) {
	if m == nil {
		return
	}
	m.submissionsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) scoringPass(kind string, started time.Time, predictions int) {
	if m == nil {
		return
	}
	m.scoringRuns.WithLabelValues(kind).Inc()
	m.scoringDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
	m.predictionsScored.Add(float64(predictions))
}

func (m *Metrics) scoringFailed() {
	if m == nil {
		return
	}
	m.scoringFailures.Inc()
}

func (m *Metrics) cacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.leaderboardCache.WithLabelValues(result).Inc()
}
