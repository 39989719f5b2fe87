package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlayerAge(t *testing.T) {
	p := Player{ID: "p1", BirthYear: 1996}
	require.Equal(t, 28, p.Age(2024))

	unknown := Player{ID: "p2"}
	require.Equal(t, 0, unknown.Age(2024))
}

func TestPitcherSeasonRates(t *testing.T) {
	s := PitcherSeason{InningsPitched: 180, Strikeouts: 200, Walks: 50, HomeRuns: 20}
	r := s.Rates()
	require.InDelta(t, 10.0, r.K9, 1e-9)
	require.InDelta(t, 2.5, r.BB9, 1e-9)
	require.InDelta(t, 1.0, r.HR9, 1e-9)

	require.Equal(t, PitcherRates{}, PitcherSeason{}.Rates())
}

func TestBatterSeasonRates(t *testing.T) {
	s := BatterSeason{
		PlateAppearances: 600, AtBats: 540,
		Hits: 162, Walks: 60, Strikeouts: 120,
		HomeRuns: 30, StolenBases: 12, CaughtStealing: 6,
	}
	r := s.Rates()
	require.InDelta(t, 0.10, r.BBPct, 1e-9)
	require.InDelta(t, 0.20, r.KPct, 1e-9)
	require.InDelta(t, 0.05, r.HRPct, 1e-9)
	require.InDelta(t, 0.30, r.AVG, 1e-9)
	require.InDelta(t, 0.02, r.SBRate, 1e-9)
	require.InDelta(t, 0.01, r.CSRate, 1e-9)

	require.Equal(t, BatterRates{}, BatterSeason{}.Rates())
}

func TestBatterRatesZeroAtBats(t *testing.T) {
	s := BatterSeason{PlateAppearances: 10, Walks: 10}
	require.Zero(t, s.Rates().AVG)
	require.InDelta(t, 1.0, s.Rates().BBPct, 1e-9)
}
