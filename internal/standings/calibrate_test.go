package standings

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halverson/pennantcast/internal/config"
	"github.com/halverson/pennantcast/internal/model"
)

func linearCfg() config.CalibrationTuning {
	cfg := config.Default().Calibration
	cfg.Piecewise = false
	return cfg
}

func TestCalibrate_RecoversExactLinearRelation(t *testing.T) {
	// Four teams with wins generated by wins = 48 + 2.5*WAR exactly.
	samples := []Sample{
		{TeamID: "A", Year: 2023, WAR: 10, Wins: 73},
		{TeamID: "B", Year: 2023, WAR: 20, Wins: 98},
		{TeamID: "C", Year: 2023, WAR: 30, Wins: 123},
		{TeamID: "D", Year: 2023, WAR: 4, Wins: 58},
	}

	fit, err := Calibrate(samples, linearCfg())
	require.NoError(t, err)

	assert.InDelta(t, 48.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 2.5, fit.Slope, 1e-9)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-12)
	assert.Equal(t, 4, fit.Samples)
	assert.Equal(t, 1, fit.Seasons)
}

func TestCalibrate_PiecewiseIndependentSlopes(t *testing.T) {
	cfg := config.Default().Calibration
	require.True(t, cfg.Piecewise)

	// Below the median WAR wins grow at 2/WAR, above at 3/WAR.
	gen := func(war float64) int {
		med := 15.0
		if war < med {
			return int(81 + 2*(war-med))
		}
		return int(81 + 3*(war-med))
	}
	var samples []Sample
	for i, war := range []float64{5, 10, 13, 17, 20, 25} {
		samples = append(samples, Sample{TeamID: fmt.Sprintf("T%d", i), Year: 2023, WAR: war, Wins: gen(war)})
	}

	fit, err := Calibrate(samples, cfg)
	require.NoError(t, err)
	require.True(t, fit.Piecewise)

	assert.InDelta(t, 15.0, fit.MedianWAR, 1e-9)
	assert.InDelta(t, 2.0, fit.LowerSlope, 1e-6)
	assert.InDelta(t, 3.0, fit.UpperSlope, 1e-6)
	assert.InDelta(t, 81.0, fit.BaseWins, 1e-6)
}

func TestCalibrate_SkipsThinSeasons(t *testing.T) {
	cfg := linearCfg()

	samples := []Sample{
		{TeamID: "A", Year: 2022, WAR: 10, Wins: 70},
		{TeamID: "B", Year: 2022, WAR: 20, Wins: 95},
		{TeamID: "LONER", Year: 2021, WAR: 50, Wins: 160}, // one-team season: excluded
	}

	fit, err := Calibrate(samples, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, fit.Samples)
	assert.Equal(t, 1, fit.Seasons)
}

func TestCalibrate_TooFewSamples(t *testing.T) {
	_, err := Calibrate([]Sample{{TeamID: "A", Year: 2023, WAR: 5, Wins: 80}}, linearCfg())
	assert.Error(t, err)
}

func TestApply_ZeroSum(t *testing.T) {
	cfg := linearCfg()
	fit := Fit{Intercept: 60, Slope: 2}

	teams := []model.TeamAggregate{
		{TeamID: "A", Year: 2025, TotalWAR: 35},
		{TeamID: "B", Year: 2025, TotalWAR: 28},
		{TeamID: "C", Year: 2025, TotalWAR: 15},
		{TeamID: "D", Year: 2025, TotalWAR: 8},
		{TeamID: "E", Year: 2025, TotalWAR: 22},
		{TeamID: "F", Year: 2025, TotalWAR: 12},
	}

	records := Apply(fit, teams, cfg)
	require.Len(t, records, 6)

	total := 0
	for _, r := range records {
		total += r.Wins
		assert.Equal(t, cfg.GamesPerSeason, r.Wins+r.Losses)
	}

	expected := len(teams) * cfg.GamesPerSeason / 2
	assert.InDelta(t, float64(expected), float64(total), float64(len(teams)))
}

func TestApply_OrderPreserved(t *testing.T) {
	cfg := linearCfg()
	fit := Fit{Intercept: 60, Slope: 2}

	teams := []model.TeamAggregate{
		{TeamID: "WORST", Year: 2025, TotalWAR: 2},
		{TeamID: "BEST", Year: 2025, TotalWAR: 40},
	}
	records := Apply(fit, teams, cfg)

	assert.Equal(t, "WORST", records[0].TeamID)
	assert.Equal(t, "BEST", records[1].TeamID)
	assert.Greater(t, records[1].Wins, records[0].Wins)
}

func TestApply_Empty(t *testing.T) {
	assert.Nil(t, Apply(Fit{}, nil, linearCfg()))
}
