// Package rating converts between rate stats and skill-scale ratings.
// Pitcher components live on a 0-100 scale, batter components on the
// 20-80 scouting scale. Each stat has exactly one coefficient table
// (a monotonic piecewise-linear curve) serving both directions, so the
// forward and inverse maps cannot fall out of lock-step.
package rating

import (
	"github.com/halverson/pennantcast/internal/config"
	"github.com/halverson/pennantcast/internal/curve"
	"github.com/halverson/pennantcast/internal/model"
)

// Rating scale bounds.
const (
	PitcherMin = 0.0
	PitcherMax = 100.0
	BatterMin  = 20.0
	BatterMax  = 80.0
)

// PitcherRatings holds the pitcher skill components on the 0-100 scale.
type PitcherRatings struct {
	K9  float64 `json:"k9"`
	BB9 float64 `json:"bb9"`
	HR9 float64 `json:"hr9"`
}

// BatterRatings holds the batter skill components on the 20-80 scale.
type BatterRatings struct {
	Contact  float64 `json:"contact"`
	Patience float64 `json:"patience"`
	AvoidK   float64 `json:"avoid_k"`
	Power    float64 `json:"power"`
}

// Clamp bounds a rating to its valid scale range.
func Clamp(r, lo, hi float64) float64 {
	if r < lo {
		return lo
	}
	if r > hi {
		return hi
	}
	return r
}

// toRating maps a rate through its table and clamps to the scale.
func toRating(rate float64, table curve.Curve, lo, hi float64) float64 {
	return Clamp(table.Eval(rate), lo, hi)
}

// toRate inverts the table: it finds the segment whose rating span
// contains the (clamped) rating and inverts that segment linearly.
// Tables may be rating-increasing or rating-decreasing in the rate.
func toRate(ratingValue float64, table curve.Curve, lo, hi float64) float64 {
	if len(table) == 0 {
		return 0
	}
	r := Clamp(ratingValue, lo, hi)

	for i := 1; i < len(table); i++ {
		y0, y1 := table[i-1].Y, table[i].Y
		if (r >= y0 && r <= y1) || (r >= y1 && r <= y0) {
			if y1 == y0 {
				return table[i-1].X
			}
			t := (r - y0) / (y1 - y0)
			return table[i-1].X + t*(table[i].X-table[i-1].X)
		}
	}

	// Rating outside the table's span: clamp to the nearer endpoint.
	first, last := table[0], table[len(table)-1]
	increasing := last.Y > first.Y
	if (increasing && r > last.Y) || (!increasing && r < last.Y) {
		return last.X
	}
	return first.X
}

// PitcherCodec converts pitching rates to and from 0-100 ratings.
type PitcherCodec struct {
	tables config.PitcherCodec
}

// NewPitcher creates a pitcher codec from its coefficient tables.
func NewPitcher(tables config.PitcherCodec) PitcherCodec {
	return PitcherCodec{tables: tables}
}

// Ratings converts rate stats to skill ratings.
func (c PitcherCodec) Ratings(r model.PitcherRates) PitcherRatings {
	return PitcherRatings{
		K9:  toRating(r.K9, c.tables.K9, PitcherMin, PitcherMax),
		BB9: toRating(r.BB9, c.tables.BB9, PitcherMin, PitcherMax),
		HR9: toRating(r.HR9, c.tables.HR9, PitcherMin, PitcherMax),
	}
}

// Rates converts skill ratings back to rate stats.
func (c PitcherCodec) Rates(r PitcherRatings) model.PitcherRates {
	return model.PitcherRates{
		K9:  toRate(r.K9, c.tables.K9, PitcherMin, PitcherMax),
		BB9: toRate(r.BB9, c.tables.BB9, PitcherMin, PitcherMax),
		HR9: toRate(r.HR9, c.tables.HR9, PitcherMin, PitcherMax),
	}
}

// BatterCodec converts batting rates to and from 20-80 ratings.
type BatterCodec struct {
	tables config.BatterCodec
}

// NewBatter creates a batter codec from its coefficient tables.
func NewBatter(tables config.BatterCodec) BatterCodec {
	return BatterCodec{tables: tables}
}

// Ratings converts rate stats to skill ratings. Stolen-base and
// caught-stealing rates have no rating component; they ride through the
// pipeline as plain rates.
func (c BatterCodec) Ratings(r model.BatterRates) BatterRatings {
	return BatterRatings{
		Contact:  toRating(r.AVG, c.tables.AVG, BatterMin, BatterMax),
		Patience: toRating(r.BBPct, c.tables.BBPct, BatterMin, BatterMax),
		AvoidK:   toRating(r.KPct, c.tables.KPct, BatterMin, BatterMax),
		Power:    toRating(r.HRPct, c.tables.HRPct, BatterMin, BatterMax),
	}
}

// Rates converts skill ratings back to rate stats. SB/CS rates are not
// rating-backed and come out zero; callers overlay them from the
// regressed rates.
func (c BatterCodec) Rates(r BatterRatings) model.BatterRates {
	return model.BatterRates{
		AVG:   toRate(r.Contact, c.tables.AVG, BatterMin, BatterMax),
		BBPct: toRate(r.Patience, c.tables.BBPct, BatterMin, BatterMax),
		KPct:  toRate(r.AvoidK, c.tables.KPct, BatterMin, BatterMax),
		HRPct: toRate(r.Power, c.tables.HRPct, BatterMin, BatterMax),
	}
}
