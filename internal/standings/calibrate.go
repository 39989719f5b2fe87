// Package standings fits the WAR-to-wins mapping against actual
// historical records and turns projected team WAR into zero-sum
// season standings.
package standings

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/halverson/pennantcast/internal/config"
	"github.com/halverson/pennantcast/internal/model"
)

// Sample pairs one team-season's aggregate WAR with its actual wins.
type Sample struct {
	TeamID string  `json:"team_id"`
	Year   int     `json:"year"`
	WAR    float64 `json:"war"`
	Wins   int     `json:"wins"`
}

// Fit is a fitted WAR-to-wins mapping. Linear fits use Intercept and
// Slope; piecewise fits anchor at the sample's median WAR with
// independent slopes on either side. The asymmetric slopes are a
// measured feature of the historical data, not an artifact.
type Fit struct {
	Piecewise bool `json:"piecewise"`

	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`

	MedianWAR  float64 `json:"median_war"`
	BaseWins   float64 `json:"base_wins"`
	LowerSlope float64 `json:"lower_slope"`
	UpperSlope float64 `json:"upper_slope"`

	RSquared float64 `json:"r_squared"`
	Samples  int     `json:"samples"`
	Seasons  int     `json:"seasons"`
}

// Predict maps team WAR to raw (un-normalized) projected wins.
func (f Fit) Predict(war float64) float64 {
	if !f.Piecewise {
		return f.Intercept + f.Slope*war
	}
	d := war - f.MedianWAR
	if d < 0 {
		return f.BaseWins + f.LowerSlope*d
	}
	return f.BaseWins + f.UpperSlope*d
}

// Calibrate fits the mapping over every usable season in the sample
// set. Seasons with fewer than the minimum team count are excluded
// with a diagnostic log rather than polluting the fit.
func Calibrate(samples []Sample, t config.CalibrationTuning) (Fit, error) {
	byYear := make(map[int][]Sample)
	for _, s := range samples {
		byYear[s.Year] = append(byYear[s.Year], s)
	}

	var usable []Sample
	seasons := 0
	for year, group := range byYear {
		if len(group) < t.MinTeamsPerSeason {
			log.Warn().Int("year", year).Int("teams", len(group)).
				Int("min", t.MinTeamsPerSeason).
				Msg("season excluded from calibration sample")
			continue
		}
		usable = append(usable, group...)
		seasons++
	}
	if len(usable) < 2 {
		return Fit{}, fmt.Errorf("calibration needs at least 2 samples, got %d", len(usable))
	}

	// Deterministic fit regardless of map iteration order.
	sort.Slice(usable, func(i, j int) bool {
		if usable[i].Year != usable[j].Year {
			return usable[i].Year < usable[j].Year
		}
		return usable[i].TeamID < usable[j].TeamID
	})

	var fit Fit
	if t.Piecewise {
		fit = fitPiecewise(usable)
	} else {
		fit = fitLinear(usable)
	}
	fit.Samples = len(usable)
	fit.Seasons = seasons
	fit.RSquared = rSquared(usable, fit)
	return fit, nil
}

func fitLinear(samples []Sample) Fit {
	var sumX, sumY float64
	for _, s := range samples {
		sumX += s.WAR
		sumY += float64(s.Wins)
	}
	n := float64(len(samples))
	meanX, meanY := sumX/n, sumY/n

	var sxx, sxy float64
	for _, s := range samples {
		dx := s.WAR - meanX
		sxx += dx * dx
		sxy += dx * (float64(s.Wins) - meanY)
	}
	if sxx == 0 {
		return Fit{Intercept: meanY}
	}
	slope := sxy / sxx
	return Fit{Slope: slope, Intercept: meanY - slope*meanX}
}

// fitPiecewise solves the three-parameter hinge model
// wins = base + lowerSlope*min(war-median, 0) + upperSlope*max(war-median, 0)
// by least squares. Degenerate samples (all on one side of the median,
// or a singular system) fall back to the linear fit.
func fitPiecewise(samples []Sample) Fit {
	wars := make([]float64, len(samples))
	for i, s := range samples {
		wars[i] = s.WAR
	}
	med := median(wars)

	var below, above int
	for _, w := range wars {
		if w < med {
			below++
		} else if w > med {
			above++
		}
	}
	if below == 0 || above == 0 {
		return fitLinear(samples)
	}

	// Normal equations for [base, lowerSlope, upperSlope].
	var a [3][3]float64
	var b [3]float64
	for _, s := range samples {
		d := s.WAR - med
		lo, hi := math.Min(d, 0), math.Max(d, 0)
		x := [3]float64{1, lo, hi}
		y := float64(s.Wins)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				a[i][j] += x[i] * x[j]
			}
			b[i] += x[i] * y
		}
	}

	sol, ok := solve3(a, b)
	if !ok {
		return fitLinear(samples)
	}
	return Fit{
		Piecewise:  true,
		MedianWAR:  med,
		BaseWins:   sol[0],
		LowerSlope: sol[1],
		UpperSlope: sol[2],
	}
}

func rSquared(samples []Sample, fit Fit) float64 {
	var sumY float64
	for _, s := range samples {
		sumY += float64(s.Wins)
	}
	meanY := sumY / float64(len(samples))

	var ssRes, ssTot float64
	for _, s := range samples {
		resid := float64(s.Wins) - fit.Predict(s.WAR)
		ssRes += resid * resid
		dy := float64(s.Wins) - meanY
		ssTot += dy * dy
	}
	if ssTot == 0 {
		return 1
	}
	return 1 - ssRes/ssTot
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// solve3 solves a 3x3 linear system by Gaussian elimination with
// partial pivoting. Returns false for singular systems.
func solve3(a [3][3]float64, b [3]float64) ([3]float64, bool) {
	const eps = 1e-12
	for col := 0; col < 3; col++ {
		pivot := col
		for row := col + 1; row < 3; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < eps {
			return [3]float64{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < 3; row++ {
			f := a[row][col] / a[col][col]
			for k := col; k < 3; k++ {
				a[row][k] -= f * a[col][k]
			}
			b[row] -= f * b[col]
		}
	}

	var x [3]float64
	for row := 2; row >= 0; row-- {
		x[row] = b[row]
		for k := row + 1; k < 3; k++ {
			x[row] -= a[row][k] * x[k]
		}
		x[row] /= a[row][row]
	}
	return x, true
}

// Apply turns one season's team aggregates into integer win-loss
// records. A common offset shifts every team so the season's total
// wins equals half the league's total games (a closed league), then
// each team rounds to the nearest whole win.
func Apply(fit Fit, teams []model.TeamAggregate, t config.CalibrationTuning) []model.TeamRecord {
	if len(teams) == 0 {
		return nil
	}

	records := make([]model.TeamRecord, len(teams))
	var sumRaw float64
	for i, team := range teams {
		raw := fit.Predict(team.TotalWAR)
		records[i] = model.TeamRecord{
			TeamID:  team.TeamID,
			Year:    team.Year,
			WAR:     team.TotalWAR,
			RawWins: raw,
		}
		sumRaw += raw
	}

	target := float64(len(teams)*t.GamesPerSeason) / 2
	offset := (target - sumRaw) / float64(len(teams))

	for i := range records {
		wins := int(math.Round(records[i].RawWins + offset))
		if wins < 0 {
			wins = 0
		}
		if wins > t.GamesPerSeason {
			wins = t.GamesPerSeason
		}
		records[i].Wins = wins
		records[i].Losses = t.GamesPerSeason - wins
	}
	return records
}
