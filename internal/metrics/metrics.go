// Package metrics exports projection-run counters and timings for the
// monitoring endpoint. All methods are nil-receiver safe so library
// code can record unconditionally whether or not a registry was wired.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Skip reasons attached to the players_skipped counter.
const (
	SkipMissingBirthYear = "missing_birth_year"
	SkipMissingTeam      = "missing_team"
)

// Metrics holds the projection pipeline's Prometheus collectors.
type Metrics struct {
	playersProjected *prometheus.CounterVec
	playersSkipped   *prometheus.CounterVec
	runDuration      prometheus.Histogram
	calibrationMAE   prometheus.Gauge
	calibrationR2    prometheus.Gauge
}

// New registers the pipeline collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		playersProjected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pennantcast",
			Name:      "players_projected_total",
			Help:      "Players projected, by role.",
		}, []string{"role"}),
		playersSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pennantcast",
			Name:      "players_skipped_total",
			Help:      "Players skipped during projection, by reason.",
		}, []string{"reason"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pennantcast",
			Name:      "run_duration_seconds",
			Help:      "Wall time of full projection runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		calibrationMAE: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pennantcast",
			Name:      "calibration_mae_wins",
			Help:      "Mean absolute error of projected wins on the calibration sample.",
		}),
		calibrationR2: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pennantcast",
			Name:      "calibration_r_squared",
			Help:      "R-squared of the fitted WAR-to-wins mapping.",
		}),
	}
	reg.MustRegister(m.playersProjected, m.playersSkipped, m.runDuration, m.calibrationMAE, m.calibrationR2)
	return m
}

// PlayerProjected counts one projected player by role.
func (m *Metrics) PlayerProjected(role string) {
	if m == nil {
		return
	}
	m.playersProjected.WithLabelValues(role).Inc()
}

// PlayerSkipped counts one skipped player by reason.
func (m *Metrics) PlayerSkipped(reason string) {
	if m == nil {
		return
	}
	m.playersSkipped.WithLabelValues(reason).Inc()
}

// RunObserved records the wall time of one projection run.
func (m *Metrics) RunObserved(d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Observe(d.Seconds())
}

// CalibrationObserved records the quality of a calibration fit.
func (m *Metrics) CalibrationObserved(mae, rSquared float64) {
	if m == nil {
		return
	}
	m.calibrationMAE.Set(mae)
	m.calibrationR2.Set(rSquared)
}
