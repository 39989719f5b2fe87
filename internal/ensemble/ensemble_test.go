package ensemble

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halverson/pennantcast/internal/aggregate"
	"github.com/halverson/pennantcast/internal/config"
	"github.com/halverson/pennantcast/internal/model"
	"github.com/halverson/pennantcast/internal/regress"
	"github.com/halverson/pennantcast/internal/war"
)

func TestBlendWeights_SumToOne(t *testing.T) {
	cfg := config.Default().Pitcher.Ensemble

	for _, age := range []int{20, 24, 27, 31, 36, 42} {
		for _, conf := range []float64{0, 0.3, 0.7, 1.0} {
			w := BlendWeights(age, conf, cfg)
			sum := w.Optimistic + w.Neutral + w.Pessimistic
			assert.InDelta(t, 1.0, sum, 1e-9, "age %d conf %.1f", age, conf)
			assert.GreaterOrEqual(t, w.Optimistic, 0.0)
			assert.GreaterOrEqual(t, w.Neutral, 0.0)
			assert.GreaterOrEqual(t, w.Pessimistic, 0.0)
		}
	}
}

func TestBlendWeights_OldPlayerLeansPessimistic(t *testing.T) {
	cfg := config.Default().Pitcher.Ensemble

	old := BlendWeights(42, 0.5, cfg)
	young := BlendWeights(24, 0.5, cfg)

	assert.Greater(t, old.Pessimistic, young.Pessimistic)
	assert.Greater(t, young.Optimistic, old.Optimistic)
}

func TestBlendWeights_ConfidenceCutsOptimism(t *testing.T) {
	cfg := config.Default().Pitcher.Ensemble

	thin := BlendWeights(27, 0.1, cfg)
	thick := BlendWeights(27, 1.0, cfg)

	assert.Greater(t, thin.Optimistic, thick.Optimistic)
	assert.Greater(t, thick.Neutral, thin.Neutral)
}

func threeYearVeteran() []model.PitcherSeason {
	// 28-year-old with 200/195/180 IP and K9 9.0 / 8.8 / 8.5.
	return []model.PitcherSeason{
		{PlayerID: "p1", TeamID: "NYA", Year: 2024, InningsPitched: 200, Strikeouts: 200, Walks: 44, HomeRuns: 18, GamesStarted: 32},
		{PlayerID: "p1", TeamID: "NYA", Year: 2023, InningsPitched: 195, Strikeouts: 191, Walks: 46, HomeRuns: 15, GamesStarted: 31},
		{PlayerID: "p1", TeamID: "NYA", Year: 2022, InningsPitched: 180, Strikeouts: 170, Walks: 40, HomeRuns: 18, GamesStarted: 30},
	}
}

func TestPitcher_NeutralTracksRecency(t *testing.T) {
	cfg := config.Default().Pitcher

	agg := aggregate.Pitcher(threeYearVeteran(), cfg)
	proxy := war.FIP(agg.Rates, cfg.WAR)
	regressed := regress.Pitcher(agg, cfg, proxy)

	res := Pitcher(agg, regressed, 28, cfg)

	// Aging is flat at 28, so neutral is the regressed line, and the
	// tier-aware regression pulls it toward the most recent year's
	// rates rather than away from them.
	recent := 9.0
	distNeutral := math.Abs(res.Neutral.K9 - recent)
	distWeighted := math.Abs(agg.Rates.K9 - recent)
	assert.Less(t, distNeutral, distWeighted)
}

func TestPitcher_TrendScenario(t *testing.T) {
	cfg := config.Default().Pitcher

	agg := aggregate.Pitcher(threeYearVeteran(), cfg)
	proxy := war.FIP(agg.Rates, cfg.WAR)
	regressed := regress.Pitcher(agg, cfg, proxy)

	res := Pitcher(agg, regressed, 28, cfg)

	require.True(t, res.TrendUsed)
	// Recent K9 9.0, prior 8.815: half-weight extrapolation continues
	// the climb.
	expected := 9.0 + 0.5*(9.0-agg.Prior.K9)
	assert.InDelta(t, expected, res.Pessimistic.K9, 1e-6)
}

func TestPitcher_TrendFallsBackOnThinHistory(t *testing.T) {
	cfg := config.Default().Pitcher

	seasons := []model.PitcherSeason{
		{PlayerID: "p2", TeamID: "SEA", Year: 2024, InningsPitched: 70, Strikeouts: 80, Walks: 25, HomeRuns: 6},
		{PlayerID: "p2", TeamID: "SEA", Year: 2023, InningsPitched: 8, Strikeouts: 6, Walks: 5, HomeRuns: 2},
	}
	agg := aggregate.Pitcher(seasons, cfg)
	proxy := war.FIP(agg.Rates, cfg.WAR)
	regressed := regress.Pitcher(agg, cfg, proxy)

	res := Pitcher(agg, regressed, 24, cfg)

	assert.False(t, res.TrendUsed)
	assert.Equal(t, res.Neutral, res.Pessimistic)
}

func TestPitcher_OldDeclinerWeighting(t *testing.T) {
	cfg := config.Default().Pitcher

	seasons := []model.PitcherSeason{
		{PlayerID: "p3", TeamID: "HOU", Year: 2024, InningsPitched: 60, Strikeouts: 58, Walks: 20, HomeRuns: 7},
		{PlayerID: "p3", TeamID: "HOU", Year: 2023, InningsPitched: 65, Strikeouts: 75, Walks: 18, HomeRuns: 6},
	}
	agg := aggregate.Pitcher(seasons, cfg)
	proxy := war.FIP(agg.Rates, cfg.WAR)
	regressed := regress.Pitcher(agg, cfg, proxy)

	old := Pitcher(agg, regressed, 42, cfg)
	young := Pitcher(agg, regressed, 24, cfg)

	// Same stat line, same declining K9 trend: the 42-year-old's
	// pessimistic weight must strictly exceed the 24-year-old's.
	assert.Greater(t, old.Weights.Pessimistic, young.Weights.Pessimistic)

	// And the declining trend drags the old reliever's blended K9
	// below the young pitcher's.
	assert.Less(t, old.Rates.K9, young.Rates.K9)
}

func TestBatter_SBRatesPassThrough(t *testing.T) {
	cfg := config.Default().Batter

	seasons := []model.BatterSeason{
		{PlayerID: "b1", TeamID: "BOS", Year: 2024, PlateAppearances: 620, AtBats: 560, Hits: 150,
			Doubles: 30, HomeRuns: 20, Walks: 50, Strikeouts: 120, StolenBases: 25, CaughtStealing: 5},
	}
	agg := aggregate.Batter(seasons, cfg)
	proxy := war.WOBA(agg.Rates, cfg.WAR)
	regressed := regress.Batter(agg, cfg, proxy)

	res := Batter(agg, regressed, 26, cfg)

	assert.InDelta(t, regressed.SBRate, res.Rates.SBRate, 1e-12)
	assert.InDelta(t, regressed.CSRate, res.Rates.CSRate, 1e-12)
}
