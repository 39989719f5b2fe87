package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/require"

	"github.com/halverson/pennantcast/internal/cache"
	"github.com/halverson/pennantcast/internal/config"
	"github.com/halverson/pennantcast/internal/model"
)

// twoTeamDataset builds a small league with three seasons of history
// (2021-2023) and standings, enough to project 2024 and to backtest
// 2022-2023.
func twoTeamDataset() Dataset {
	ds := Dataset{Rosters: map[string]string{}}

	type pitcherSpec struct {
		id, team  string
		birthYear int
		k, bb, hr int // per ~180 IP season
		gs        int
	}
	pitchers := []pitcherSpec{
		{"p-ace", "NYA", 1996, 210, 45, 18, 30},
		{"p-mid", "NYA", 1994, 150, 60, 24, 28},
		{"p-pen", "NYA", 1998, 70, 25, 8, 0},
		{"p-two", "BOS", 1995, 170, 55, 22, 29},
		{"p-back", "BOS", 1992, 130, 70, 28, 26},
		{"p-rel", "BOS", 1997, 65, 30, 10, 0},
	}
	for _, ps := range pitchers {
		ds.Players = append(ds.Players, model.Player{ID: ps.id, Name: ps.id, BirthYear: ps.birthYear})
		ds.Rosters[ps.id] = ps.team
		for year := 2021; year <= 2023; year++ {
			ip := 180.0
			if ps.gs == 0 {
				ip = 65.0
			}
			ds.PitcherSeasons = append(ds.PitcherSeasons, model.PitcherSeason{
				PlayerID: ps.id, TeamID: ps.team, Year: year,
				InningsPitched: ip, Strikeouts: ps.k, Walks: ps.bb, HomeRuns: ps.hr,
				GamesStarted: ps.gs,
			})
		}
	}

	type batterSpec struct {
		id, team  string
		birthYear int
		h, hr, bb int // per 600-PA, 540-AB season
	}
	batters := []batterSpec{
		{"b-star", "NYA", 1997, 165, 32, 70},
		{"b-avg1", "NYA", 1995, 140, 18, 50},
		{"b-avg2", "NYA", 1993, 135, 12, 45},
		{"b-star2", "BOS", 1996, 160, 28, 65},
		{"b-avg3", "BOS", 1994, 138, 15, 48},
		{"b-weak", "BOS", 1991, 120, 8, 35},
	}
	for _, bs := range batters {
		ds.Players = append(ds.Players, model.Player{ID: bs.id, Name: bs.id, BirthYear: bs.birthYear})
		ds.Rosters[bs.id] = bs.team
		for year := 2021; year <= 2023; year++ {
			ds.BatterSeasons = append(ds.BatterSeasons, model.BatterSeason{
				PlayerID: bs.id, TeamID: bs.team, Year: year,
				PlateAppearances: 600, AtBats: 540,
				Hits: bs.h, Doubles: 28, Triples: 2, HomeRuns: bs.hr,
				Walks: bs.bb, Strikeouts: 120, StolenBases: 8, CaughtStealing: 3,
			})
		}
	}

	for year := 2021; year <= 2023; year++ {
		ds.Standings = append(ds.Standings,
			model.TeamStanding{Year: year, TeamID: "NYA", Wins: 92, Losses: 70},
			model.TeamStanding{Year: year, TeamID: "BOS", Wins: 70, Losses: 92},
		)
	}
	return ds
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(config.Default())
	require.NoError(t, err)
	return e
}

func TestProjectPitcherBasics(t *testing.T) {
	e := newTestEngine(t)
	ds := twoTeamDataset()

	var hist []model.PitcherSeason
	for _, s := range ds.PitcherSeasons {
		if s.PlayerID == "p-ace" {
			hist = append(hist, s)
		}
	}

	pp, err := e.ProjectPitcher(model.Player{ID: "p-ace", Name: "p-ace", BirthYear: 1996}, "NYA", hist, 2024)
	require.NoError(t, err)

	require.Equal(t, 2024, pp.Year)
	require.Equal(t, 28, pp.Age)
	require.Equal(t, model.RoleStarter, pp.Role)
	require.Greater(t, pp.Innings, 100)
	require.Greater(t, pp.WAR, 0.0)
	// 210 K over 180 IP is a well-above-average strikeout rate; the
	// projection should keep it above league average.
	require.Greater(t, pp.Rates.K9, 8.0)
}

func TestProjectPitcherZeroVolumeStaysAtReplacement(t *testing.T) {
	e := newTestEngine(t)

	hist := []model.PitcherSeason{
		{PlayerID: "p-ghost", TeamID: "NYA", Year: 2023, InningsPitched: 0},
	}

	pp, err := e.ProjectPitcher(model.Player{ID: "p-ghost", Name: "p-ghost", BirthYear: 1999}, "NYA", hist, 2024)
	require.NoError(t, err)

	// No recorded outs means league-average rates with zero confidence:
	// no playing time and replacement-level WAR.
	require.Equal(t, 0, pp.Innings)
	require.Zero(t, pp.WAR)
}

func TestProjectBatterZeroVolumeStaysAtReplacement(t *testing.T) {
	e := newTestEngine(t)

	hist := []model.BatterSeason{
		{PlayerID: "b-ghost", TeamID: "BOS", Year: 2023, PlateAppearances: 0},
	}

	pb, err := e.ProjectBatter(model.Player{ID: "b-ghost", Name: "b-ghost", BirthYear: 1999}, "BOS", hist, 2024)
	require.NoError(t, err)

	require.Equal(t, 0, pb.PA)
	require.Zero(t, pb.WAR)
}

func TestProjectPitcherMissingBirthYear(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.ProjectPitcher(model.Player{ID: "x"}, "NYA", nil, 2024)
	require.ErrorIs(t, err, ErrMissingBirthYear)
}

func TestProjectBatterBasics(t *testing.T) {
	e := newTestEngine(t)
	ds := twoTeamDataset()

	var hist []model.BatterSeason
	for _, s := range ds.BatterSeasons {
		if s.PlayerID == "b-star" {
			hist = append(hist, s)
		}
	}

	pb, err := e.ProjectBatter(model.Player{ID: "b-star", Name: "b-star", BirthYear: 1997}, "NYA", hist, 2024)
	require.NoError(t, err)

	require.Equal(t, 27, pb.Age)
	require.Greater(t, pb.PA, 400)
	require.Greater(t, pb.WOBA, 0.300)
	require.Greater(t, pb.WAR, 0.0)
}

func TestProjectSeasonSkipsAndAggregates(t *testing.T) {
	e := newTestEngine(t)
	ds := twoTeamDataset()

	// One player with history but no roster slot, one with no birth year.
	ds.Players = append(ds.Players,
		model.Player{ID: "p-gone", Name: "p-gone", BirthYear: 1990},
		model.Player{ID: "b-nodob", Name: "b-nodob"},
	)
	ds.PitcherSeasons = append(ds.PitcherSeasons, model.PitcherSeason{
		PlayerID: "p-gone", TeamID: "NYA", Year: 2023,
		InningsPitched: 100, Strikeouts: 80, Walks: 30, HomeRuns: 12,
	})
	ds.BatterSeasons = append(ds.BatterSeasons, model.BatterSeason{
		PlayerID: "b-nodob", TeamID: "BOS", Year: 2023,
		PlateAppearances: 400, AtBats: 360, Hits: 90, Walks: 30, Strikeouts: 80,
	})
	ds.Rosters["b-nodob"] = "BOS"

	proj, err := e.ProjectSeason(context.Background(), ds, 2024)
	require.NoError(t, err)

	require.Equal(t, 2, proj.Skipped)
	require.Len(t, proj.Pitchers, 6)
	require.Len(t, proj.Batters, 6)
	require.Len(t, proj.Teams, 2)

	for _, team := range proj.Teams {
		require.InDelta(t, team.PitcherWAR+team.BatterWAR, team.TotalWAR, 1e-9)
		require.InDelta(t, team.RotationWAR+team.BullpenWAR, team.PitcherWAR, 1e-9)
		require.InDelta(t, team.LineupWAR+team.BenchWAR, team.BatterWAR, 1e-9)
	}
}

func TestProjectSeasonDeterministic(t *testing.T) {
	e := newTestEngine(t)
	ds := twoTeamDataset()

	a, err := e.ProjectSeason(context.Background(), ds, 2024)
	require.NoError(t, err)
	b, err := e.ProjectSeason(context.Background(), ds, 2024)
	require.NoError(t, err)

	require.Equal(t, a.Pitchers, b.Pitchers)
	require.Equal(t, a.Batters, b.Batters)
	require.Equal(t, a.Teams, b.Teams)
}

func TestProjectSeasonContextCancel(t *testing.T) {
	e := newTestEngine(t)
	ds := twoTeamDataset()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ProjectSeason(ctx, ds, 2024)
	require.ErrorIs(t, err, context.Canceled)
}

func TestBacktestProducesFitAndRecords(t *testing.T) {
	e := newTestEngine(t)
	ds := twoTeamDataset()

	res, err := e.Backtest(context.Background(), ds)
	require.NoError(t, err)

	// 2021 has no prior stats; 2022 and 2023 do.
	require.Len(t, res.Records, 2)
	require.Contains(t, res.Records, 2022)
	require.Contains(t, res.Records, 2023)
	require.Equal(t, 4, res.Fit.Samples)

	for year, records := range res.Records {
		require.Len(t, records, 2)
		totalWins := 0
		for _, rec := range records {
			require.Equal(t, year, rec.Year)
			require.Equal(t, 162, rec.Wins+rec.Losses)
			totalWins += rec.Wins
		}
		// Zero-sum: two teams split 162 games' worth of wins, within
		// rounding.
		require.InDelta(t, 162, totalWins, 1.0)
	}
	require.GreaterOrEqual(t, res.MAE, 0.0)
}

func TestBacktestUsesCachedTeamAggregates(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	projCache := cache.New(rdb, time.Hour)

	cfg := config.Default()
	e, err := New(cfg, WithCache(projCache))
	require.NoError(t, err)

	ds := twoTeamDataset()
	hash := cache.ConfigHash(cfg)

	cachedForYear := func(year int, nya, bos float64) []model.TeamAggregate {
		return []model.TeamAggregate{
			{TeamID: "BOS", Year: year, PitcherWAR: bos / 2, BatterWAR: bos / 2, TotalWAR: bos},
			{TeamID: "NYA", Year: year, PitcherWAR: nya / 2, BatterWAR: nya / 2, TotalWAR: nya},
		}
	}
	expectYear := func(year int, teams []model.TeamAggregate) {
		data, err := json.Marshal(teams)
		require.NoError(t, err)
		mock.ExpectGet(fmt.Sprintf("proj:teams:%d:%s", year, hash)).SetVal(string(data))
	}
	expectYear(2022, cachedForYear(2022, 45.0, 30.0))
	expectYear(2023, cachedForYear(2023, 44.0, 29.0))

	res, err := e.Backtest(context.Background(), ds)
	require.NoError(t, err)

	// Both seasons came from the cache, so the fit's samples carry the
	// cached WAR values, not freshly projected ones.
	require.Equal(t, 4, res.Fit.Samples)
	for _, rec := range res.Records[2022] {
		if rec.TeamID == "NYA" {
			require.InDelta(t, 45.0, rec.WAR, 1e-9)
		}
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBacktestNoUsableSeasons(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Backtest(context.Background(), Dataset{})
	require.Error(t, err)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Pitcher.Ensemble.BaseOptimistic = -5

	_, err := New(cfg)
	require.Error(t, err)
}
