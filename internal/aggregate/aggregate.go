// Package aggregate collapses a player's recent seasons into
// recency-weighted rate stats. Aggregation is a pure function of the
// season list; nothing here is cached or persisted.
package aggregate

import (
	"sort"

	"github.com/halverson/pennantcast/internal/config"
	"github.com/halverson/pennantcast/internal/model"
)

// PitcherAggregate is the weighted-rate bundle for one pitcher.
type PitcherAggregate struct {
	Rates   model.PitcherRates // recency-weighted per-nine rates
	Innings float64            // total innings across weighted years
	Years   int                // years meeting the qualifying threshold

	// Most recent and second-most-recent qualifying years, for trend
	// extrapolation downstream.
	Recent    model.PitcherRates
	RecentIP  float64
	Prior     model.PitcherRates
	PriorIP   float64
	HasRecent bool
	HasPrior  bool

	// HistoryIP holds per-year innings, most recent first, for the
	// playing-time projector's historical blend.
	HistoryIP []float64

	// LeagueFallback is set when no year carried any weight and the
	// league-average rates were emitted with zero confidence.
	LeagueFallback bool
}

// Pitcher aggregates seasons with the given year weights, most recent
// year first. A year beyond the weight array contributes nothing, so
// its stats cannot influence the output. Zero total weight falls back
// to league-average rates.
func Pitcher(seasons []model.PitcherSeason, t config.PitcherTuning) PitcherAggregate {
	ordered := make([]model.PitcherSeason, len(seasons))
	copy(ordered, seasons)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Year > ordered[j].Year })

	var agg PitcherAggregate
	var sumW, sumK9, sumBB9, sumHR9 float64

	for i, s := range ordered {
		if i >= len(t.YearWeights) {
			break
		}
		if s.InningsPitched <= 0 {
			continue
		}
		agg.HistoryIP = append(agg.HistoryIP, s.InningsPitched)

		w := t.YearWeights[i] * s.InningsPitched
		if w <= 0 {
			continue
		}
		r := s.Rates()
		sumW += w
		sumK9 += w * r.K9
		sumBB9 += w * r.BB9
		sumHR9 += w * r.HR9
		agg.Innings += s.InningsPitched

		if s.InningsPitched >= t.MinInnings {
			agg.Years++
			if !agg.HasRecent {
				agg.Recent, agg.RecentIP, agg.HasRecent = r, s.InningsPitched, true
			} else if !agg.HasPrior {
				agg.Prior, agg.PriorIP, agg.HasPrior = r, s.InningsPitched, true
			}
		}
	}

	if sumW <= 0 {
		return PitcherAggregate{
			Rates:          model.PitcherRates{K9: t.League.K9, BB9: t.League.BB9, HR9: t.League.HR9},
			LeagueFallback: true,
		}
	}

	agg.Rates = model.PitcherRates{
		K9:  sumK9 / sumW,
		BB9: sumBB9 / sumW,
		HR9: sumHR9 / sumW,
	}
	return agg
}

// BatterAggregate is the weighted-rate bundle for one batter.
type BatterAggregate struct {
	Rates model.BatterRates
	PA    float64
	Years int

	Recent    model.BatterRates
	RecentPA  float64
	Prior     model.BatterRates
	PriorPA   float64
	HasRecent bool
	HasPrior  bool

	// HistoryPA holds per-year plate appearances, most recent first.
	HistoryPA []float64

	LeagueFallback bool
}

// Batter aggregates batting seasons the same way Pitcher aggregates
// pitching seasons, with plate appearances as the opportunity volume.
func Batter(seasons []model.BatterSeason, t config.BatterTuning) BatterAggregate {
	ordered := make([]model.BatterSeason, len(seasons))
	copy(ordered, seasons)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Year > ordered[j].Year })

	var agg BatterAggregate
	var sumW, sumBB, sumK, sumHR, sumAVG, sumSB, sumCS float64

	for i, s := range ordered {
		if i >= len(t.YearWeights) {
			break
		}
		if s.PlateAppearances <= 0 {
			continue
		}
		pa := float64(s.PlateAppearances)
		agg.HistoryPA = append(agg.HistoryPA, pa)

		w := t.YearWeights[i] * pa
		if w <= 0 {
			continue
		}
		r := s.Rates()
		sumW += w
		sumBB += w * r.BBPct
		sumK += w * r.KPct
		sumHR += w * r.HRPct
		sumAVG += w * r.AVG
		sumSB += w * r.SBRate
		sumCS += w * r.CSRate
		agg.PA += pa

		if s.PlateAppearances >= t.MinPA {
			agg.Years++
			if !agg.HasRecent {
				agg.Recent, agg.RecentPA, agg.HasRecent = r, pa, true
			} else if !agg.HasPrior {
				agg.Prior, agg.PriorPA, agg.HasPrior = r, pa, true
			}
		}
	}

	if sumW <= 0 {
		return BatterAggregate{
			Rates: model.BatterRates{
				BBPct:  t.League.BBPct,
				KPct:   t.League.KPct,
				HRPct:  t.League.HRPct,
				AVG:    t.League.AVG,
				SBRate: t.League.SBRate,
				CSRate: t.League.CSRate,
			},
			LeagueFallback: true,
		}
	}

	agg.Rates = model.BatterRates{
		BBPct:  sumBB / sumW,
		KPct:   sumK / sumW,
		HRPct:  sumHR / sumW,
		AVG:    sumAVG / sumW,
		SBRate: sumSB / sumW,
		CSRate: sumCS / sumW,
	}
	return agg
}
