// Package store is the PostgreSQL persistence layer: historical season
// rows and standings in, projection results out. Malformed season rows
// are excluded here, at the boundary, so the pipeline never sees them.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/halverson/pennantcast/internal/model"
)

// Store wraps a PostgreSQL connection with per-call timeouts.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

// New builds a store around an open connection.
func New(db *sqlx.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Store{db: db, timeout: timeout}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(dsn string, timeout time.Duration) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetConnMaxLifetime(time.Hour)
	return New(db, timeout), nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Players returns every known player.
func (s *Store) Players(ctx context.Context) ([]model.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var players []model.Player
	query := `SELECT player_id, name, birth_year FROM players ORDER BY player_id`
	if err := s.db.SelectContext(ctx, &players, query); err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	return players, nil
}

// PitcherSeasons returns all pitching season rows up to and including
// maxYear. Rows that fail basic sanity checks are dropped with a
// diagnostic log.
func (s *Store) PitcherSeasons(ctx context.Context, maxYear int) ([]model.PitcherSeason, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []model.PitcherSeason
	query := `
		SELECT player_id, team_id, year, innings_pitched, strikeouts, walks, home_runs, games_started
		FROM pitcher_seasons
		WHERE year <= $1
		ORDER BY player_id, year`
	if err := s.db.SelectContext(ctx, &rows, query, maxYear); err != nil {
		return nil, fmt.Errorf("failed to load pitcher seasons: %w", err)
	}

	out := rows[:0]
	for _, r := range rows {
		if !validPitcherRow(r) {
			log.Warn().Str("player_id", r.PlayerID).Int("year", r.Year).Msg("dropping malformed pitcher season")
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// BatterSeasons returns all batting season rows up to and including
// maxYear, with malformed rows dropped.
func (s *Store) BatterSeasons(ctx context.Context, maxYear int) ([]model.BatterSeason, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []model.BatterSeason
	query := `
		SELECT player_id, team_id, year, position, plate_appearances, at_bats, hits,
		       doubles, triples, home_runs, walks, strikeouts, stolen_bases, caught_stealing
		FROM batter_seasons
		WHERE year <= $1
		ORDER BY player_id, year`
	if err := s.db.SelectContext(ctx, &rows, query, maxYear); err != nil {
		return nil, fmt.Errorf("failed to load batter seasons: %w", err)
	}

	out := rows[:0]
	for _, r := range rows {
		if !validBatterRow(r) {
			log.Warn().Str("player_id", r.PlayerID).Int("year", r.Year).Msg("dropping malformed batter season")
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Standings returns actual win-loss records up to and including maxYear.
func (s *Store) Standings(ctx context.Context, maxYear int) ([]model.TeamStanding, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []model.TeamStanding
	query := `SELECT year, team_id, wins, losses FROM standings WHERE year <= $1 ORDER BY year, team_id`
	if err := s.db.SelectContext(ctx, &rows, query, maxYear); err != nil {
		return nil, fmt.Errorf("failed to load standings: %w", err)
	}
	return rows, nil
}

// Rosters returns the player-to-team assignment for one year, derived
// from that year's season rows. A player appearing in both tables keeps
// the pitching assignment.
func (s *Store) Rosters(ctx context.Context, year int) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type assignment struct {
		PlayerID string `db:"player_id"`
		TeamID   string `db:"team_id"`
		Pri      int    `db:"pri"`
	}

	// Pitcher rows sort after batter rows per player, so the map
	// overwrite below leaves a two-way player with the pitching
	// assignment.
	var rows []assignment
	query := `
		SELECT player_id, team_id, 0 AS pri FROM batter_seasons WHERE year = $1
		UNION
		SELECT player_id, team_id, 1 AS pri FROM pitcher_seasons WHERE year = $1
		ORDER BY player_id, pri`
	if err := s.db.SelectContext(ctx, &rows, query, year); err != nil {
		return nil, fmt.Errorf("failed to load rosters for %d: %w", year, err)
	}

	rosters := make(map[string]string, len(rows))
	for _, r := range rows {
		rosters[r.PlayerID] = r.TeamID
	}
	return rosters, nil
}

// SaveRecords upserts calibrated team records for one run.
func (s *Store) SaveRecords(ctx context.Context, runID string, records []model.TeamRecord) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO projected_records (run_id, team_id, year, war, raw_wins, wins, losses)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id, team_id, year) DO UPDATE SET
			war = EXCLUDED.war,
			raw_wins = EXCLUDED.raw_wins,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses`
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, query,
			runID, rec.TeamID, rec.Year, rec.WAR, rec.RawWins, rec.Wins, rec.Losses); err != nil {
			return fmt.Errorf("failed to save record for %s/%d: %w", rec.TeamID, rec.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

func validPitcherRow(r model.PitcherSeason) bool {
	if r.PlayerID == "" || r.Year <= 0 {
		return false
	}
	if r.InningsPitched <= 0 {
		return false
	}
	if r.Strikeouts < 0 || r.Walks < 0 || r.HomeRuns < 0 || r.GamesStarted < 0 {
		return false
	}
	return true
}

func validBatterRow(r model.BatterSeason) bool {
	if r.PlayerID == "" || r.Year <= 0 {
		return false
	}
	if r.PlateAppearances <= 0 || r.AtBats < 0 || r.AtBats > r.PlateAppearances {
		return false
	}
	if r.Hits < 0 || r.Hits > r.AtBats {
		return false
	}
	if r.Doubles < 0 || r.Triples < 0 || r.HomeRuns < 0 ||
		r.Doubles+r.Triples+r.HomeRuns > r.Hits {
		return false
	}
	if r.Walks < 0 || r.Strikeouts < 0 || r.StolenBases < 0 || r.CaughtStealing < 0 {
		return false
	}
	return true
}
