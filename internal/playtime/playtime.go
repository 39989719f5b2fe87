// Package playtime forecasts innings pitched and plate appearances for
// the projection year.
package playtime

import (
	"math"

	"github.com/halverson/pennantcast/internal/config"
	"github.com/halverson/pennantcast/internal/model"
)

// Pitcher projects innings for the target year.
//
// The modeled workload starts from a role- and stamina-dependent base,
// scales with projected FIP relative to the league, blends with the
// recency-weighted historical workload when enough history exists,
// collapses past the age cliff, and earns a small bonus for truly
// elite projections.
func Pitcher(role model.Role, fip, leagueFIP float64, age int, histIP, yearWeights []float64, t config.PitcherPlaytime) int {
	bounds := t.Reliever
	switch role {
	case model.RoleStarter:
		bounds = t.Starter
	case model.RoleSwingman:
		bounds = t.Swingman
	}

	base := bounds.Base + bounds.PerStamina*t.Stamina
	base = clampF(base, bounds.Min, bounds.Max)

	skill := 1 + (leagueFIP-fip)*t.SkillSlope
	skill = clampF(skill, t.SkillMin, t.SkillMax)
	modeled := base * skill

	ip := modeled
	if len(histIP) >= t.MinHistoryYears {
		hist := weightedMean(histIP, yearWeights)
		ip = t.ModelWeight*modeled + (1-t.ModelWeight)*hist
	}

	ip *= t.AgeCliff.Eval(float64(age))

	if fip < t.EliteFIP {
		bonus := (t.EliteFIP - fip) * t.EliteBonusPerRun
		if bonus > t.EliteBonusCap {
			bonus = t.EliteBonusCap
		}
		ip *= 1 + bonus
	}

	if ip < 0 {
		ip = 0
	}
	return int(math.Round(ip))
}

// Batter projects plate appearances for the target year.
//
// The baseline comes from the age-indexed PA curve. The historical
// average is re-scaled by the ratio of the target age's curve value to
// the value at the player's historical average age, then blended with
// the baseline using a trust factor that grows with qualifying years
// but never reaches full trust. A history made up entirely of
// sub-threshold partial seasons caps the baseline so one hot month
// cannot buy a full-time projection.
func Batter(targetAge int, histAvgAge float64, histPA, yearWeights []float64, qualYears int, t config.BatterPlaytime) int {
	modeled := t.MaxPA * t.AgeCurve.Eval(float64(targetAge))

	if len(histPA) == 0 {
		return int(math.Round(clampF(modeled, t.FloorPA, t.CeilPA)))
	}

	if qualYears == 0 && modeled > t.PartialSeasonCap {
		modeled = t.PartialSeasonCap
	}

	histAvg := weightedMean(histPA, yearWeights)
	atHist := t.AgeCurve.Eval(histAvgAge)
	ratio := 1.0
	if atHist > 0 {
		ratio = t.AgeCurve.Eval(float64(targetAge)) / atHist
	}
	adjustedHist := histAvg * ratio

	trust := t.TrustBase + t.TrustPerYear*float64(qualYears)
	if trust > t.TrustCap {
		trust = t.TrustCap
	}

	pa := trust*adjustedHist + (1-trust)*modeled
	return int(math.Round(clampF(pa, t.FloorPA, t.CeilPA)))
}

// weightedMean averages values with positional weights, most recent
// first. Values beyond the weight array are ignored.
func weightedMean(values, weights []float64) float64 {
	var sum, sumW float64
	for i, v := range values {
		if i >= len(weights) {
			break
		}
		sum += weights[i] * v
		sumW += weights[i]
	}
	if sumW <= 0 {
		return 0
	}
	return sum / sumW
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
