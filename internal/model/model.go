// Package model defines the plain records exchanged between the
// projection pipeline and its collaborators. Records here are inputs or
// outputs only; the pipeline never mutates a season row it was handed.
package model

// Player identifies a player and carries the birth year used for age
// math. BirthYear of zero means unknown; the pipeline skips such players.
type Player struct {
	ID        string `json:"id" db:"player_id"`
	Name      string `json:"name" db:"name"`
	BirthYear int    `json:"birth_year" db:"birth_year"`
}

// Age returns the player's age in the given season, or 0 if the birth
// year is unknown.
func (p Player) Age(year int) int {
	if p.BirthYear == 0 {
		return 0
	}
	return year - p.BirthYear
}

// PitcherSeason is one player-year of raw pitching counting stats.
type PitcherSeason struct {
	PlayerID       string  `json:"player_id" db:"player_id"`
	TeamID         string  `json:"team_id" db:"team_id"`
	Year           int     `json:"year" db:"year"`
	InningsPitched float64 `json:"ip" db:"innings_pitched"`
	Strikeouts     int     `json:"so" db:"strikeouts"`
	Walks          int     `json:"bb" db:"walks"`
	HomeRuns       int     `json:"hr" db:"home_runs"`
	GamesStarted   int     `json:"gs" db:"games_started"`
}

// Rates converts the counting stats to per-nine-inning rates. Zero
// innings yields all-zero rates; callers use volume to detect that.
func (s PitcherSeason) Rates() PitcherRates {
	if s.InningsPitched <= 0 {
		return PitcherRates{}
	}
	return PitcherRates{
		K9:  float64(s.Strikeouts) * 9 / s.InningsPitched,
		BB9: float64(s.Walks) * 9 / s.InningsPitched,
		HR9: float64(s.HomeRuns) * 9 / s.InningsPitched,
	}
}

// BatterSeason is one player-year of raw batting counting stats.
type BatterSeason struct {
	PlayerID         string `json:"player_id" db:"player_id"`
	TeamID           string `json:"team_id" db:"team_id"`
	Year             int    `json:"year" db:"year"`
	Position         string `json:"position" db:"position"`
	PlateAppearances int    `json:"pa" db:"plate_appearances"`
	AtBats           int    `json:"ab" db:"at_bats"`
	Hits             int    `json:"h" db:"hits"`
	Doubles          int    `json:"doubles" db:"doubles"`
	Triples          int    `json:"triples" db:"triples"`
	HomeRuns         int    `json:"hr" db:"home_runs"`
	Walks            int    `json:"bb" db:"walks"`
	Strikeouts       int    `json:"so" db:"strikeouts"`
	StolenBases      int    `json:"sb" db:"stolen_bases"`
	CaughtStealing   int    `json:"cs" db:"caught_stealing"`
}

// Rates converts the counting stats to per-opportunity rates. Zero PA
// yields all-zero rates.
func (s BatterSeason) Rates() BatterRates {
	if s.PlateAppearances <= 0 {
		return BatterRates{}
	}
	pa := float64(s.PlateAppearances)
	r := BatterRates{
		BBPct:  float64(s.Walks) / pa,
		KPct:   float64(s.Strikeouts) / pa,
		HRPct:  float64(s.HomeRuns) / pa,
		SBRate: float64(s.StolenBases) / pa,
		CSRate: float64(s.CaughtStealing) / pa,
	}
	if s.AtBats > 0 {
		r.AVG = float64(s.Hits) / float64(s.AtBats)
	}
	return r
}

// PitcherRates holds per-nine-inning pitching rate stats.
type PitcherRates struct {
	K9  float64 `json:"k9"`
	BB9 float64 `json:"bb9"`
	HR9 float64 `json:"hr9"`
}

// BatterRates holds per-plate-appearance batting rate stats plus batting
// average (per at-bat).
type BatterRates struct {
	BBPct  float64 `json:"bb_pct"`
	KPct   float64 `json:"k_pct"`
	HRPct  float64 `json:"hr_pct"`
	AVG    float64 `json:"avg"`
	SBRate float64 `json:"sb_rate"`
	CSRate float64 `json:"cs_rate"`
}

// Role classifies how a player's playing time is bucketed.
type Role string

const (
	RoleStarter  Role = "starter"
	RoleSwingman Role = "swingman"
	RoleReliever Role = "reliever"
	RoleLineup   Role = "lineup"
	RoleBench    Role = "bench"
)

// ProjectedPitcher is the per-pitcher output bundle of one pipeline run.
type ProjectedPitcher struct {
	PlayerID string       `json:"player_id"`
	Name     string       `json:"name"`
	TeamID   string       `json:"team_id"`
	Year     int          `json:"year"`
	Age      int          `json:"age"`
	Role     Role         `json:"role"`
	Rates    PitcherRates `json:"rates"`
	FIP      float64      `json:"fip"`
	Innings  int          `json:"innings"`
	WAR      float64      `json:"war"`
}

// ProjectedBatter is the per-batter output bundle of one pipeline run.
type ProjectedBatter struct {
	PlayerID string      `json:"player_id"`
	Name     string      `json:"name"`
	TeamID   string      `json:"team_id"`
	Year     int         `json:"year"`
	Age      int         `json:"age"`
	Role     Role        `json:"role"`
	Rates    BatterRates `json:"rates"`
	WOBA     float64     `json:"woba"`
	PA       int         `json:"pa"`
	WAR      float64     `json:"war"`
}

// TeamAggregate sums projected WAR for one team-year by roster bucket.
// TotalWAR is always PitcherWAR + BatterWAR, and the pitcher/batter
// totals are always the sums of their two buckets.
type TeamAggregate struct {
	TeamID      string  `json:"team_id"`
	Year        int     `json:"year"`
	RotationWAR float64 `json:"rotation_war"`
	BullpenWAR  float64 `json:"bullpen_war"`
	LineupWAR   float64 `json:"lineup_war"`
	BenchWAR    float64 `json:"bench_war"`
	PitcherWAR  float64 `json:"pitcher_war"`
	BatterWAR   float64 `json:"batter_war"`
	TotalWAR    float64 `json:"total_war"`
}

// TeamStanding is one row of actual historical standings, used to fit
// the WAR-to-wins calibration.
type TeamStanding struct {
	Year   int    `json:"year" db:"year"`
	TeamID string `json:"team_id" db:"team_id"`
	Wins   int    `json:"wins" db:"wins"`
	Losses int    `json:"losses" db:"losses"`
}

// TeamRecord is a calibrated, zero-sum-normalized projected win/loss
// record for one team-year.
type TeamRecord struct {
	TeamID  string  `json:"team_id"`
	Year    int     `json:"year"`
	WAR     float64 `json:"war"`
	RawWins float64 `json:"raw_wins"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
}
