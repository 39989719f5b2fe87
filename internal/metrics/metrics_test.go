package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestCountersByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.PlayerProjected("starter")
	m.PlayerProjected("starter")
	m.PlayerProjected("lineup")
	m.PlayerSkipped(SkipMissingBirthYear)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			key := fam.GetName()
			for _, lp := range metric.GetLabel() {
				key += "/" + lp.GetValue()
			}
			if metric.GetCounter() != nil {
				counts[key] = metric.GetCounter().GetValue()
			}
		}
	}

	require.Equal(t, 2.0, counts["pennantcast_players_projected_total/starter"])
	require.Equal(t, 1.0, counts["pennantcast_players_projected_total/lineup"])
	require.Equal(t, 1.0, counts["pennantcast_players_skipped_total/missing_birth_year"])
}

func TestCalibrationGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CalibrationObserved(3.25, 0.87)
	m.RunObserved(250 * time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	var mae, r2 *dto.Gauge
	for _, fam := range families {
		switch fam.GetName() {
		case "pennantcast_calibration_mae_wins":
			mae = fam.GetMetric()[0].GetGauge()
		case "pennantcast_calibration_r_squared":
			r2 = fam.GetMetric()[0].GetGauge()
		}
	}
	require.NotNil(t, mae)
	require.NotNil(t, r2)
	require.Equal(t, 3.25, mae.GetValue())
	require.Equal(t, 0.87, r2.GetValue())
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.PlayerProjected("starter")
	m.PlayerSkipped(SkipMissingTeam)
	m.RunObserved(time.Second)
	m.CalibrationObserved(1, 1)
}
