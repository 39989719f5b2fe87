package store

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/halverson/pennantcast/internal/model"
)

func testRecords() []model.TeamRecord {
	return []model.TeamRecord{
		{TeamID: "NYA", Year: 2024, WAR: 42.5, RawWins: 93.2, Wins: 93, Losses: 69},
		{TeamID: "BOS", Year: 2024, WAR: 30.1, RawWins: 81.0, Wins: 81, Losses: 81},
	}
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "sqlmock"), 5*time.Second), mock
}

func TestPlayers(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT player_id, name, birth_year FROM players").
		WillReturnRows(sqlmock.NewRows([]string{"player_id", "name", "birth_year"}).
			AddRow("p1", "Ace Starter", 1996).
			AddRow("p2", "No Birthday", 0))

	players, err := s.Players(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 2)
	require.Equal(t, "Ace Starter", players[0].Name)
	require.Equal(t, 0, players[1].BirthYear)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPitcherSeasonsDropsMalformedRows(t *testing.T) {
	s, mock := newMockStore(t)

	cols := []string{"player_id", "team_id", "year", "innings_pitched", "strikeouts", "walks", "home_runs", "games_started"}
	mock.ExpectQuery("FROM pitcher_seasons").
		WithArgs(2023).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("p1", "NYA", 2023, 180.0, 200, 50, 20, 30).
			AddRow("p2", "BOS", 2023, 0.0, 10, 5, 2, 0).   // zero innings
			AddRow("p3", "BOS", 2023, 60.0, -5, 20, 8, 0)) // negative strikeouts

	rows, err := s.PitcherSeasons(context.Background(), 2023)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "p1", rows[0].PlayerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatterSeasonsDropsMalformedRows(t *testing.T) {
	s, mock := newMockStore(t)

	cols := []string{"player_id", "team_id", "year", "position", "plate_appearances", "at_bats", "hits",
		"doubles", "triples", "home_runs", "walks", "strikeouts", "stolen_bases", "caught_stealing"}
	mock.ExpectQuery("FROM batter_seasons").
		WithArgs(2023).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("b1", "NYA", 2023, "CF", 600, 540, 160, 30, 3, 25, 55, 110, 10, 4).
			AddRow("b2", "BOS", 2023, "1B", 500, 450, 500, 20, 1, 10, 40, 90, 2, 1). // hits exceed at-bats
			AddRow("b3", "BOS", 2023, "2B", 400, 410, 100, 15, 2, 5, 30, 70, 5, 2))  // at-bats exceed PA

	rows, err := s.BatterSeasons(context.Background(), 2023)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "b1", rows[0].PlayerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosters(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("UNION").
		WithArgs(2023).
		WillReturnRows(sqlmock.NewRows([]string{"player_id", "team_id", "pri"}).
			AddRow("b1", "NYA", 0).
			AddRow("p1", "BOS", 1))

	rosters, err := s.Rosters(context.Background(), 2023)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"b1": "NYA", "p1": "BOS"}, rosters)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRostersTwoWayPlayerKeepsPitchingTeam(t *testing.T) {
	s, mock := newMockStore(t)

	// The query sorts batter rows (pri 0) before pitcher rows (pri 1),
	// so the pitching assignment lands last and wins.
	mock.ExpectQuery("UNION").
		WithArgs(2023).
		WillReturnRows(sqlmock.NewRows([]string{"player_id", "team_id", "pri"}).
			AddRow("p-two-way", "LAA", 0).
			AddRow("p-two-way", "ANA", 1))

	rosters, err := s.Rosters(context.Background(), 2023)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"p-two-way": "ANA"}, rosters)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRecordsCommitsTransaction(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO projected_records").
		WithArgs("run-1", "NYA", 2024, 42.5, 93.2, 93, 69).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO projected_records").
		WithArgs("run-1", "BOS", 2024, 30.1, 81.0, 81, 81).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.SaveRecords(context.Background(), "run-1", testRecords())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRecordsRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO projected_records").
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := s.SaveRecords(context.Background(), "run-1", testRecords())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
