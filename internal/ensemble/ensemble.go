// Package ensemble blends optimistic, neutral, and pessimistic
// projection scenarios into one rate line. Young players with thin
// track records carry more upside variance than established ones, so
// the blend weights shift with age and sample confidence.
package ensemble

import (
	"github.com/halverson/pennantcast/internal/aggregate"
	"github.com/halverson/pennantcast/internal/aging"
	"github.com/halverson/pennantcast/internal/config"
	"github.com/halverson/pennantcast/internal/model"
	"github.com/halverson/pennantcast/internal/rating"
)

// Weights is the normalized scenario blend.
type Weights struct {
	Optimistic  float64 `json:"optimistic"`
	Neutral     float64 `json:"neutral"`
	Pessimistic float64 `json:"pessimistic"`
}

// BlendWeights derives the scenario weights from age and sample
// confidence (0..1). Weights are floored at zero and renormalized to
// sum to one.
func BlendWeights(age int, confidence float64, t config.EnsembleTuning) Weights {
	ageAdj := t.AgeShift * float64(t.PeakAge-age)

	w := Weights{
		Optimistic:  t.BaseOptimistic + ageAdj - t.ConfidenceShift*confidence,
		Neutral:     t.BaseNeutral + 0.5*t.ConfidenceShift*confidence,
		Pessimistic: t.BasePessimistic - ageAdj + 0.5*t.ConfidenceShift*confidence,
	}

	if w.Optimistic < 0 {
		w.Optimistic = 0
	}
	if w.Neutral < 0 {
		w.Neutral = 0
	}
	if w.Pessimistic < 0 {
		w.Pessimistic = 0
	}

	sum := w.Optimistic + w.Neutral + w.Pessimistic
	if sum <= 0 {
		return Weights{Neutral: 1}
	}
	w.Optimistic /= sum
	w.Neutral /= sum
	w.Pessimistic /= sum
	return w
}

// PitcherResult carries the blended rates plus the scenario detail for
// explainability.
type PitcherResult struct {
	Rates       model.PitcherRates
	Optimistic  model.PitcherRates
	Neutral     model.PitcherRates
	Pessimistic model.PitcherRates
	Weights     Weights
	TrendUsed   bool
}

// Pitcher blends the three scenarios for one pitcher.
//
// Optimistic applies the full aging delta, neutral applies it dampened,
// and pessimistic extrapolates the latest year-over-year rate change at
// the configured trend weight. Pessimistic falls back to neutral when
// fewer than two qualifying years exist or the prior year's sample is
// too small to trust.
func Pitcher(agg aggregate.PitcherAggregate, regressed model.PitcherRates, age int, t config.PitcherTuning) PitcherResult {
	codec := rating.NewPitcher(t.Codec)
	base := codec.Ratings(regressed)
	delta := aging.PitcherDeltaFor(age, t.Aging)

	res := PitcherResult{
		Optimistic: codec.Rates(aging.ApplyPitcher(base, delta, 1.0)),
		Neutral:    codec.Rates(aging.ApplyPitcher(base, delta, t.Ensemble.AgingDampening)),
	}

	if agg.HasRecent && agg.HasPrior && agg.PriorIP >= t.Ensemble.MinPriorVolume {
		trend := model.PitcherRates{
			K9:  agg.Recent.K9 + t.Ensemble.TrendWeight*(agg.Recent.K9-agg.Prior.K9),
			BB9: agg.Recent.BB9 + t.Ensemble.TrendWeight*(agg.Recent.BB9-agg.Prior.BB9),
			HR9: agg.Recent.HR9 + t.Ensemble.TrendWeight*(agg.Recent.HR9-agg.Prior.HR9),
		}
		// Run the trend line through the codec so it lands on the
		// same bounded scale as the other scenarios.
		res.Pessimistic = codec.Rates(codec.Ratings(trend))
		res.TrendUsed = true
	} else {
		res.Pessimistic = res.Neutral
	}

	conf := confidence(agg.Innings, t.Regression.ReferenceInnings)
	res.Weights = BlendWeights(age, conf, t.Ensemble)

	res.Rates = model.PitcherRates{
		K9:  blend(res.Optimistic.K9, res.Neutral.K9, res.Pessimistic.K9, res.Weights),
		BB9: blend(res.Optimistic.BB9, res.Neutral.BB9, res.Pessimistic.BB9, res.Weights),
		HR9: blend(res.Optimistic.HR9, res.Neutral.HR9, res.Pessimistic.HR9, res.Weights),
	}
	return res
}

// BatterResult carries the blended rates plus the scenario detail.
type BatterResult struct {
	Rates       model.BatterRates
	Optimistic  model.BatterRates
	Neutral     model.BatterRates
	Pessimistic model.BatterRates
	Weights     Weights
	TrendUsed   bool
}

// Batter blends the three scenarios for one batter. Stolen-base and
// caught-stealing rates are not rating-backed; the regressed values
// ride through every scenario unchanged.
func Batter(agg aggregate.BatterAggregate, regressed model.BatterRates, age int, t config.BatterTuning) BatterResult {
	codec := rating.NewBatter(t.Codec)
	base := codec.Ratings(regressed)
	delta := aging.BatterDeltaFor(age, t.Aging)

	res := BatterResult{
		Optimistic: codec.Rates(aging.ApplyBatter(base, delta, 1.0)),
		Neutral:    codec.Rates(aging.ApplyBatter(base, delta, t.Ensemble.AgingDampening)),
	}

	if agg.HasRecent && agg.HasPrior && agg.PriorPA >= t.Ensemble.MinPriorVolume {
		trend := model.BatterRates{
			BBPct: agg.Recent.BBPct + t.Ensemble.TrendWeight*(agg.Recent.BBPct-agg.Prior.BBPct),
			KPct:  agg.Recent.KPct + t.Ensemble.TrendWeight*(agg.Recent.KPct-agg.Prior.KPct),
			HRPct: agg.Recent.HRPct + t.Ensemble.TrendWeight*(agg.Recent.HRPct-agg.Prior.HRPct),
			AVG:   agg.Recent.AVG + t.Ensemble.TrendWeight*(agg.Recent.AVG-agg.Prior.AVG),
		}
		res.Pessimistic = codec.Rates(codec.Ratings(trend))
		res.TrendUsed = true
	} else {
		res.Pessimistic = res.Neutral
	}

	conf := confidence(agg.PA, t.Regression.ReferencePA)
	res.Weights = BlendWeights(age, conf, t.Ensemble)

	res.Rates = model.BatterRates{
		BBPct:  blend(res.Optimistic.BBPct, res.Neutral.BBPct, res.Pessimistic.BBPct, res.Weights),
		KPct:   blend(res.Optimistic.KPct, res.Neutral.KPct, res.Pessimistic.KPct, res.Weights),
		HRPct:  blend(res.Optimistic.HRPct, res.Neutral.HRPct, res.Pessimistic.HRPct, res.Weights),
		AVG:    blend(res.Optimistic.AVG, res.Neutral.AVG, res.Pessimistic.AVG, res.Weights),
		SBRate: regressed.SBRate,
		CSRate: regressed.CSRate,
	}
	return res
}

func blend(opt, neu, pes float64, w Weights) float64 {
	return opt*w.Optimistic + neu*w.Neutral + pes*w.Pessimistic
}

func confidence(volume, reference float64) float64 {
	if reference <= 0 {
		return 1
	}
	c := volume / reference
	if c > 1 {
		return 1
	}
	return c
}
