// Package war converts projected rates and playing time into wins
// above replacement. Pitchers go through a FIP-based conversion,
// batters through a wOBA-based one. The elite FIP multiplier is a
// measured correction for projection compression against historical
// seasons; its shape is intentional.
package war

import (
	"github.com/halverson/pennantcast/internal/config"
	"github.com/halverson/pennantcast/internal/model"
)

// FIP computes fielding-independent pitching from per-nine rates.
func FIP(r model.PitcherRates, t config.PitcherWAR) float64 {
	return (13*r.HR9+3*r.BB9-2*r.K9)/9 + t.FIPConstant
}

// Pitcher computes WAR for a projected pitcher season. Zero innings
// yields exactly zero WAR.
func Pitcher(r model.PitcherRates, innings float64, t config.PitcherWAR) float64 {
	if innings <= 0 {
		return 0
	}
	fip := FIP(r, t)
	raw := (t.ReplacementFIP - fip) / t.RunsPerWin * (innings / 9)
	if raw <= 0 {
		return raw
	}

	// Smooth tier multiplier: the curve interpolates across tier
	// boundaries, and EliteScale lets a sweep widen or narrow the
	// correction without editing the table.
	mult := 1 + (t.EliteMultiplier.Eval(fip)-1)*t.EliteScale
	return raw * mult
}

// WOBA computes weighted on-base average from batting rates. The
// hit-type split is estimated from the overall hit rate: a configured
// share of non-homer hits become doubles (rising slightly with batting
// average), a fixed share become triples, and the rest are singles.
func WOBA(r model.BatterRates, t config.BatterWAR) float64 {
	abRate := 1 - r.BBPct // at-bats per plate appearance
	if abRate < 0 {
		abRate = 0
	}
	hitRate := r.AVG * abRate // hits per PA
	nonHR := hitRate - r.HRPct
	if nonHR < 0 {
		nonHR = 0
	}

	doublesShare := t.DoublesShareBase + t.DoublesSharePerAVG*(r.AVG-0.250)
	if doublesShare < 0 {
		doublesShare = 0
	}
	doubles := nonHR * doublesShare
	triples := nonHR * t.TriplesShare
	singles := nonHR - doubles - triples
	if singles < 0 {
		singles = 0
	}

	return t.WalkWeight*r.BBPct +
		t.SingleWeight*singles +
		t.DoubleWeight*doubles +
		t.TripleWeight*triples +
		t.HomeRunWeight*r.HRPct
}

// Batter computes WAR for a projected batter season. Zero plate
// appearances yields exactly zero WAR.
func Batter(r model.BatterRates, pa float64, t config.BatterWAR) float64 {
	if pa <= 0 {
		return 0
	}
	woba := WOBA(r, t)
	wraa := (woba - t.LeagueWOBA) / t.WOBAScale * pa
	replacement := t.ReplacementRunsPerPA * pa
	baserunning := r.SBRate*pa*t.StolenBaseRuns + r.CSRate*pa*t.CaughtStealingRuns

	return (wraa + replacement + baserunning) / t.RunsPerWin
}
