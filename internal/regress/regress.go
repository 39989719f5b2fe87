// Package regress pulls observed rates toward skill-tier-dependent
// league targets. The tier tables live in the tuning config and are the
// single source for both the target offset and the shrinkage strength,
// so no consumer can drift from another.
package regress

import (
	"github.com/halverson/pennantcast/internal/aggregate"
	"github.com/halverson/pennantcast/internal/config"
	"github.com/halverson/pennantcast/internal/curve"
	"github.com/halverson/pennantcast/internal/model"
)

// Stat regresses one observed rate toward its tier target.
//
// The target sits above or below the league average by the tier curve's
// offset, scaled into stat units and signed by the stat's direction.
// The stabilization constant is scaled by a volume confidence factor
// (half weight at zero volume, full at or past refVolume) and by the
// tier strength multiplier, then the observed rate and target are
// combined as a weighted average with volume against the adjusted
// stabilization constant.
func Stat(observed, volume, leagueAvg, proxy float64, p config.StatRegression,
	offsets, strengths curve.Curve, refVolume, strengthScale float64) float64 {

	dir := 1.0
	if p.LowerIsBetter {
		dir = -1.0
	}
	target := leagueAvg + offsets.Eval(proxy)*p.OffsetScale*dir

	conf := 1.0
	if refVolume > 0 {
		conf = 0.5 + 0.5*min(volume/refVolume, 1.0)
	}
	adjStab := p.Stabilization * conf * strengths.Eval(proxy) * strengthScale

	denom := volume + adjStab
	if denom <= 0 {
		return target
	}
	return (observed*volume + target*adjStab) / denom
}

// Pitcher regresses the aggregated pitching rates. proxy is the
// FIP-like composite skill estimate computed from the observed rates.
func Pitcher(agg aggregate.PitcherAggregate, t config.PitcherTuning, proxy float64) model.PitcherRates {
	r := t.Regression
	return model.PitcherRates{
		K9:  Stat(agg.Rates.K9, agg.Innings, t.League.K9, proxy, r.K9, r.TargetOffsets, r.StrengthMultipliers, r.ReferenceInnings, r.StrengthScale),
		BB9: Stat(agg.Rates.BB9, agg.Innings, t.League.BB9, proxy, r.BB9, r.TargetOffsets, r.StrengthMultipliers, r.ReferenceInnings, r.StrengthScale),
		HR9: Stat(agg.Rates.HR9, agg.Innings, t.League.HR9, proxy, r.HR9, r.TargetOffsets, r.StrengthMultipliers, r.ReferenceInnings, r.StrengthScale),
	}
}

// Batter regresses the aggregated batting rates. proxy is the
// wOBA-like composite skill estimate computed from the observed rates.
func Batter(agg aggregate.BatterAggregate, t config.BatterTuning, proxy float64) model.BatterRates {
	r := t.Regression
	return model.BatterRates{
		BBPct:  Stat(agg.Rates.BBPct, agg.PA, t.League.BBPct, proxy, r.BBPct, r.TargetOffsets, r.StrengthMultipliers, r.ReferencePA, r.StrengthScale),
		KPct:   Stat(agg.Rates.KPct, agg.PA, t.League.KPct, proxy, r.KPct, r.TargetOffsets, r.StrengthMultipliers, r.ReferencePA, r.StrengthScale),
		HRPct:  Stat(agg.Rates.HRPct, agg.PA, t.League.HRPct, proxy, r.HRPct, r.TargetOffsets, r.StrengthMultipliers, r.ReferencePA, r.StrengthScale),
		AVG:    Stat(agg.Rates.AVG, agg.PA, t.League.AVG, proxy, r.AVG, r.TargetOffsets, r.StrengthMultipliers, r.ReferencePA, r.StrengthScale),
		SBRate: Stat(agg.Rates.SBRate, agg.PA, t.League.SBRate, proxy, r.SBRate, r.TargetOffsets, r.StrengthMultipliers, r.ReferencePA, r.StrengthScale),
		CSRate: Stat(agg.Rates.CSRate, agg.PA, t.League.CSRate, proxy, r.CSRate, r.TargetOffsets, r.StrengthMultipliers, r.ReferencePA, r.StrengthScale),
	}
}
