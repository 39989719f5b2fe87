// Package roster classifies pitching roles and slices a team's
// projected players into rotation, bullpen, lineup, and bench buckets.
// Bucketing is a pure sort-and-slice: stable sort by WAR descending,
// no randomness anywhere.
package roster

import (
	"sort"

	"github.com/halverson/pennantcast/internal/config"
	"github.com/halverson/pennantcast/internal/model"
)

// ClassifyPitcher infers a pitching role from games started per active
// year and is the single place that heuristic lives.
func ClassifyPitcher(seasons []model.PitcherSeason, t config.RosterTuning) model.Role {
	var years int
	var starts int
	for _, s := range seasons {
		if s.InningsPitched <= 0 {
			continue
		}
		years++
		starts += s.GamesStarted
	}
	if years == 0 {
		return model.RoleReliever
	}

	perYear := float64(starts) / float64(years)
	switch {
	case perYear >= t.StarterGSPerYear:
		return model.RoleStarter
	case perYear >= t.SwingmanGSPerYear:
		return model.RoleSwingman
	default:
		return model.RoleReliever
	}
}

// Aggregate bucket-sums projected WAR for one team-year. Starters fill
// the rotation top-down by WAR; every remaining pitcher competes for
// the capped bullpen. The top hitters take the lineup and the rest
// compete for the capped bench. Players squeezed out by the caps do
// not count toward the team.
func Aggregate(teamID string, year int, pitchers []model.ProjectedPitcher, batters []model.ProjectedBatter, t config.RosterTuning) model.TeamAggregate {
	agg := model.TeamAggregate{TeamID: teamID, Year: year}

	sorted := make([]model.ProjectedPitcher, len(pitchers))
	copy(sorted, pitchers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].WAR > sorted[j].WAR })

	var rotation, pen []model.ProjectedPitcher
	for _, p := range sorted {
		if p.Role == model.RoleStarter && len(rotation) < t.RotationSize {
			rotation = append(rotation, p)
			continue
		}
		if len(pen) < t.BullpenCap {
			pen = append(pen, p)
		}
	}
	for _, p := range rotation {
		agg.RotationWAR += p.WAR
	}
	for _, p := range pen {
		agg.BullpenWAR += p.WAR
	}

	sortedB := make([]model.ProjectedBatter, len(batters))
	copy(sortedB, batters)
	sort.SliceStable(sortedB, func(i, j int) bool { return sortedB[i].WAR > sortedB[j].WAR })

	for i, b := range sortedB {
		switch {
		case i < t.LineupSize:
			agg.LineupWAR += b.WAR
		case i < t.LineupSize+t.BenchCap:
			agg.BenchWAR += b.WAR
		}
	}

	agg.PitcherWAR = agg.RotationWAR + agg.BullpenWAR
	agg.BatterWAR = agg.LineupWAR + agg.BenchWAR
	agg.TotalWAR = agg.PitcherWAR + agg.BatterWAR
	return agg
}
