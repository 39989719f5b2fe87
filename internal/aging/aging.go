// Package aging applies additive, age-bracketed rating deltas. Pitcher
// and batter curves are independent tables supplied by the tuning
// config; nothing here is shared between the two roles except the
// clamping arithmetic.
package aging

import (
	"github.com/halverson/pennantcast/internal/config"
	"github.com/halverson/pennantcast/internal/rating"
)

// PitcherDelta is the additive rating change for one pitcher-season.
type PitcherDelta struct {
	K9  float64
	BB9 float64
	HR9 float64
}

// BatterDelta is the additive rating change for one batter-season.
type BatterDelta struct {
	Contact  float64
	Patience float64
	AvoidK   float64
	Power    float64
}

// PitcherDeltaFor looks up the bracket for an age. Brackets are
// ordered by MaxAge; the last bracket catches every older age.
func PitcherDeltaFor(age int, table []config.PitcherAgeBracket) PitcherDelta {
	for _, b := range table {
		if age <= b.MaxAge {
			return PitcherDelta{K9: b.K9, BB9: b.BB9, HR9: b.HR9}
		}
	}
	if len(table) == 0 {
		return PitcherDelta{}
	}
	last := table[len(table)-1]
	return PitcherDelta{K9: last.K9, BB9: last.BB9, HR9: last.HR9}
}

// BatterDeltaFor looks up the bracket for an age.
func BatterDeltaFor(age int, table []config.BatterAgeBracket) BatterDelta {
	for _, b := range table {
		if age <= b.MaxAge {
			return BatterDelta{Contact: b.Contact, Patience: b.Patience, AvoidK: b.AvoidK, Power: b.Power}
		}
	}
	if len(table) == 0 {
		return BatterDelta{}
	}
	last := table[len(table)-1]
	return BatterDelta{Contact: last.Contact, Patience: last.Patience, AvoidK: last.AvoidK, Power: last.Power}
}

// ApplyPitcher adds a (possibly scaled) delta to ratings, clamped to
// the 0-100 scale.
func ApplyPitcher(r rating.PitcherRatings, d PitcherDelta, scale float64) rating.PitcherRatings {
	return rating.PitcherRatings{
		K9:  rating.Clamp(r.K9+d.K9*scale, rating.PitcherMin, rating.PitcherMax),
		BB9: rating.Clamp(r.BB9+d.BB9*scale, rating.PitcherMin, rating.PitcherMax),
		HR9: rating.Clamp(r.HR9+d.HR9*scale, rating.PitcherMin, rating.PitcherMax),
	}
}

// ApplyBatter adds a (possibly scaled) delta to ratings, clamped to
// the 20-80 scale.
func ApplyBatter(r rating.BatterRatings, d BatterDelta, scale float64) rating.BatterRatings {
	return rating.BatterRatings{
		Contact:  rating.Clamp(r.Contact+d.Contact*scale, rating.BatterMin, rating.BatterMax),
		Patience: rating.Clamp(r.Patience+d.Patience*scale, rating.BatterMin, rating.BatterMax),
		AvoidK:   rating.Clamp(r.AvoidK+d.AvoidK*scale, rating.BatterMin, rating.BatterMax),
		Power:    rating.Clamp(r.Power+d.Power*scale, rating.BatterMin, rating.BatterMax),
	}
}
