// Package pipeline orchestrates a full projection run: aggregate each
// player's history, regress it, blend the scenario ensemble, project
// playing time, convert to WAR, and roll the results up by team. The
// engine is a pure function of its tuning config and the dataset it is
// handed; two engines with different configs can run side by side.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/halverson/pennantcast/internal/aggregate"
	"github.com/halverson/pennantcast/internal/cache"
	"github.com/halverson/pennantcast/internal/config"
	"github.com/halverson/pennantcast/internal/ensemble"
	"github.com/halverson/pennantcast/internal/metrics"
	"github.com/halverson/pennantcast/internal/model"
	"github.com/halverson/pennantcast/internal/playtime"
	"github.com/halverson/pennantcast/internal/regress"
	"github.com/halverson/pennantcast/internal/roster"
	"github.com/halverson/pennantcast/internal/standings"
	"github.com/halverson/pennantcast/internal/war"
)

// ErrMissingBirthYear marks a player whose age cannot be computed.
// Callers distinguish the skip from a hard failure with errors.Is.
var ErrMissingBirthYear = errors.New("player has no birth year")

// Dataset is the raw material for one projection run. Season rows may
// span any range of years; each projection filters to the years before
// its target. Rosters maps player ID to the team the player belongs to
// in the target season; players absent from it are skipped.
type Dataset struct {
	Players        []model.Player
	PitcherSeasons []model.PitcherSeason
	BatterSeasons  []model.BatterSeason
	Standings      []model.TeamStanding
	Rosters        map[string]string
}

// SeasonProjection is the output of one ProjectSeason run.
type SeasonProjection struct {
	RunID    string                   `json:"run_id"`
	Year     int                      `json:"year"`
	Pitchers []model.ProjectedPitcher `json:"pitchers"`
	Batters  []model.ProjectedBatter  `json:"batters"`
	Teams    []model.TeamAggregate    `json:"teams"`
	Skipped  int                      `json:"skipped"`
}

// BacktestResult bundles the calibration fit with the per-season
// records it produced on held-out history.
type BacktestResult struct {
	RunID   string                     `json:"run_id"`
	Fit     standings.Fit              `json:"fit"`
	Records map[int][]model.TeamRecord `json:"records"`
	MAE     float64                    `json:"mae"`
}

// Engine runs projections under one tuning config.
type Engine struct {
	cfg     config.TuningConfig
	cfgHash string
	met     *metrics.Metrics
	cache   *cache.Cache
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics wires a metrics recorder into the engine.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.met = m }
}

// WithCache memoizes per-player projections in Redis. Cache failures
// degrade to recomputation, never to a run failure.
func WithCache(c *cache.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithWorkers overrides the projection fan-out width.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New validates the config and builds an engine around it.
func New(cfg config.TuningConfig, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}
	e := &Engine{cfg: cfg, cfgHash: cache.ConfigHash(cfg), workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine's tuning config.
func (e *Engine) Config() config.TuningConfig { return e.cfg }

// ProjectPitcher projects one pitcher for the target year from the
// given history. Seasons at or after the target year are ignored.
func (e *Engine) ProjectPitcher(p model.Player, teamID string, history []model.PitcherSeason, year int) (model.ProjectedPitcher, error) {
	age := p.Age(year)
	if age <= 0 {
		return model.ProjectedPitcher{}, fmt.Errorf("pitcher %s: %w", p.ID, ErrMissingBirthYear)
	}

	hist := priorPitcherSeasons(history, year)
	t := e.cfg.Pitcher

	agg := aggregate.Pitcher(hist, t)
	proxy := war.FIP(agg.Rates, t.WAR)
	regressed := regress.Pitcher(agg, t, proxy)
	ens := ensemble.Pitcher(agg, regressed, age, t)

	role := roster.ClassifyPitcher(hist, e.cfg.Roster)
	fip := war.FIP(ens.Rates, t.WAR)

	// A league-fallback aggregate means the player never recorded an
	// out; league-average rates carry zero confidence and earn zero
	// playing time, which pins WAR at the replacement baseline.
	var innings int
	if !agg.LeagueFallback {
		leagueFIP := war.FIP(model.PitcherRates{K9: t.League.K9, BB9: t.League.BB9, HR9: t.League.HR9}, t.WAR)
		innings = playtime.Pitcher(role, fip, leagueFIP, age, agg.HistoryIP, t.YearWeights, t.Playtime)
	}

	return model.ProjectedPitcher{
		PlayerID: p.ID,
		Name:     p.Name,
		TeamID:   teamID,
		Year:     year,
		Age:      age,
		Role:     role,
		Rates:    ens.Rates,
		FIP:      fip,
		Innings:  innings,
		WAR:      war.Pitcher(ens.Rates, float64(innings), t.WAR),
	}, nil
}

// ProjectBatter projects one batter for the target year. The role is
// provisionally lineup; ProjectSeason reassigns the bottom of each
// team's batter pool to the bench.
func (e *Engine) ProjectBatter(p model.Player, teamID string, history []model.BatterSeason, year int) (model.ProjectedBatter, error) {
	age := p.Age(year)
	if age <= 0 {
		return model.ProjectedBatter{}, fmt.Errorf("batter %s: %w", p.ID, ErrMissingBirthYear)
	}

	hist := priorBatterSeasons(history, year)
	t := e.cfg.Batter

	agg := aggregate.Batter(hist, t)
	proxy := war.WOBA(agg.Rates, t.WAR)
	regressed := regress.Batter(agg, t, proxy)
	ens := ensemble.Batter(agg, regressed, age, t)

	var pa int
	if !agg.LeagueFallback {
		pa = playtime.Batter(age, historyMeanAge(hist, age, year, len(t.YearWeights)), agg.HistoryPA, t.YearWeights, agg.Years, t.Playtime)
	}

	return model.ProjectedBatter{
		PlayerID: p.ID,
		Name:     p.Name,
		TeamID:   teamID,
		Year:     year,
		Age:      age,
		Role:     model.RoleLineup,
		Rates:    ens.Rates,
		WOBA:     war.WOBA(ens.Rates, t.WAR),
		PA:       pa,
		WAR:      war.Batter(ens.Rates, float64(pa), t.WAR),
	}, nil
}

// ProjectSeason projects every rostered player for the target year and
// aggregates the results by team. Players with no birth year or no
// roster assignment are skipped with a diagnostic log; the run carries
// on without them.
func (e *Engine) ProjectSeason(ctx context.Context, ds Dataset, year int) (*SeasonProjection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Int("year", year).Logger()

	pitcherHist := groupPitcherSeasons(ds.PitcherSeasons)
	batterHist := groupBatterSeasons(ds.BatterSeasons)

	proj := &SeasonProjection{RunID: runID, Year: year}

	players := make([]model.Player, len(ds.Players))
	copy(players, ds.Players)
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })

	results := make([]projectionResult, len(players))

	var wg sync.WaitGroup
	jobs := make(chan int)
	workers := e.workers
	if workers < 1 {
		workers = 1
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.projectOne(ctx, players[i], ds.Rosters, pitcherHist, batterHist, year, logger)
			}
		}()
	}

	for i := range players {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	for _, r := range results {
		if r.skipped {
			proj.Skipped++
		}
		if r.pitcher != nil {
			proj.Pitchers = append(proj.Pitchers, *r.pitcher)
		}
		if r.batter != nil {
			proj.Batters = append(proj.Batters, *r.batter)
		}
	}

	assignBenchRoles(proj.Batters, e.cfg.Roster.LineupSize)
	proj.Teams = e.aggregateTeams(proj, year)

	e.met.RunObserved(time.Since(start))
	logger.Info().
		Int("pitchers", len(proj.Pitchers)).
		Int("batters", len(proj.Batters)).
		Int("teams", len(proj.Teams)).
		Int("skipped", proj.Skipped).
		Dur("elapsed", time.Since(start)).
		Msg("season projected")
	return proj, nil
}

type projectionResult struct {
	pitcher *model.ProjectedPitcher
	batter  *model.ProjectedBatter
	skipped bool
}

func (e *Engine) projectOne(ctx context.Context, p model.Player, rosters map[string]string,
	pitcherHist map[string][]model.PitcherSeason, batterHist map[string][]model.BatterSeason,
	year int, logger zerolog.Logger) projectionResult {

	var res projectionResult

	pHist := priorPitcherSeasons(pitcherHist[p.ID], year)
	bHist := priorBatterSeasons(batterHist[p.ID], year)
	if len(pHist) == 0 && len(bHist) == 0 {
		// Nothing to project from; not counted as a skip because the
		// player was never a projection candidate.
		return res
	}

	teamID, ok := rosters[p.ID]
	if !ok || teamID == "" {
		logger.Warn().Str("player_id", p.ID).Str("name", p.Name).Msg("no team for target year, skipping")
		e.met.PlayerSkipped(metrics.SkipMissingTeam)
		res.skipped = true
		return res
	}
	if p.Age(year) <= 0 {
		logger.Warn().Str("player_id", p.ID).Str("name", p.Name).Msg("missing birth year, skipping")
		e.met.PlayerSkipped(metrics.SkipMissingBirthYear)
		res.skipped = true
		return res
	}

	if len(pHist) > 0 {
		if pp := e.cachedPitcher(ctx, p.ID, teamID, year); pp != nil {
			res.pitcher = pp
			e.met.PlayerProjected(string(pp.Role))
		} else if pp, err := e.ProjectPitcher(p, teamID, pHist, year); err == nil {
			res.pitcher = &pp
			e.met.PlayerProjected(string(pp.Role))
			e.storePitcher(ctx, pp)
		}
	}
	if len(bHist) > 0 {
		if pb := e.cachedBatter(ctx, p.ID, teamID, year); pb != nil {
			res.batter = pb
			e.met.PlayerProjected(string(pb.Role))
		} else if pb, err := e.ProjectBatter(p, teamID, bHist, year); err == nil {
			res.batter = &pb
			e.met.PlayerProjected(string(pb.Role))
			e.storeBatter(ctx, pb)
		}
	}
	return res
}

// cachedPitcher returns the cached projection when it exists and was
// computed for the same team assignment.
func (e *Engine) cachedPitcher(ctx context.Context, playerID, teamID string, year int) *model.ProjectedPitcher {
	if e.cache == nil {
		return nil
	}
	pp, ok, err := e.cache.GetPitcher(ctx, playerID, year, e.cfgHash)
	if err != nil || !ok || pp.TeamID != teamID {
		return nil
	}
	return pp
}

func (e *Engine) cachedBatter(ctx context.Context, playerID, teamID string, year int) *model.ProjectedBatter {
	if e.cache == nil {
		return nil
	}
	pb, ok, err := e.cache.GetBatter(ctx, playerID, year, e.cfgHash)
	if err != nil || !ok || pb.TeamID != teamID {
		return nil
	}
	return pb
}

func (e *Engine) storePitcher(ctx context.Context, pp model.ProjectedPitcher) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetPitcher(ctx, e.cfgHash, pp); err != nil {
		log.Debug().Err(err).Str("player_id", pp.PlayerID).Msg("pitcher cache write failed")
	}
}

func (e *Engine) storeBatter(ctx context.Context, pb model.ProjectedBatter) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetBatter(ctx, e.cfgHash, pb); err != nil {
		log.Debug().Err(err).Str("player_id", pb.PlayerID).Msg("batter cache write failed")
	}
}

func (e *Engine) cachedTeams(ctx context.Context, year int) ([]model.TeamAggregate, bool) {
	if e.cache == nil {
		return nil, false
	}
	teams, ok, err := e.cache.GetTeams(ctx, year, e.cfgHash)
	if err != nil || !ok {
		return nil, false
	}
	return teams, true
}

func (e *Engine) storeTeams(ctx context.Context, year int, teams []model.TeamAggregate) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetTeams(ctx, year, e.cfgHash, teams); err != nil {
		log.Debug().Err(err).Int("year", year).Msg("team cache write failed")
	}
}

func (e *Engine) aggregateTeams(proj *SeasonProjection, year int) []model.TeamAggregate {
	byTeamP := map[string][]model.ProjectedPitcher{}
	byTeamB := map[string][]model.ProjectedBatter{}
	teamIDs := map[string]bool{}
	for _, p := range proj.Pitchers {
		byTeamP[p.TeamID] = append(byTeamP[p.TeamID], p)
		teamIDs[p.TeamID] = true
	}
	for _, b := range proj.Batters {
		byTeamB[b.TeamID] = append(byTeamB[b.TeamID], b)
		teamIDs[b.TeamID] = true
	}

	ids := make([]string, 0, len(teamIDs))
	for id := range teamIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	teams := make([]model.TeamAggregate, 0, len(ids))
	for _, id := range ids {
		teams = append(teams, roster.Aggregate(id, year, byTeamP[id], byTeamB[id], e.cfg.Roster))
	}
	return teams
}

// Backtest replays history: for every standings season with prior
// stats available, it projects that season from the seasons before it,
// fits the WAR-to-wins mapping over all of them, then applies the fit
// season by season.
func (e *Engine) Backtest(ctx context.Context, ds Dataset) (*BacktestResult, error) {
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()

	years := backtestYears(ds)
	if len(years) == 0 {
		return nil, errors.New("backtest: no season has both standings and prior stats")
	}

	actual := map[string]int{}
	for _, s := range ds.Standings {
		actual[standingKey(s.TeamID, s.Year)] = s.Wins
	}

	var samples []standings.Sample
	teamsByYear := map[int][]model.TeamAggregate{}
	for _, year := range years {
		// Replayed seasons are pure functions of the dataset and the
		// config, so a cached team table short-circuits the whole
		// season's projection.
		if teams, ok := e.cachedTeams(ctx, year); ok {
			teamsByYear[year] = teams
		} else {
			season := ds
			season.Rosters = rostersForYear(ds, year)
			proj, err := e.ProjectSeason(ctx, season, year)
			if err != nil {
				return nil, err
			}
			teamsByYear[year] = proj.Teams
			e.storeTeams(ctx, year, proj.Teams)
		}
		for _, team := range teamsByYear[year] {
			wins, ok := actual[standingKey(team.TeamID, year)]
			if !ok {
				continue
			}
			samples = append(samples, standings.Sample{
				TeamID: team.TeamID,
				Year:   year,
				WAR:    team.TotalWAR,
				Wins:   wins,
			})
		}
	}

	fit, err := standings.Calibrate(samples, e.cfg.Calibration)
	if err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}

	res := &BacktestResult{RunID: runID, Fit: fit, Records: map[int][]model.TeamRecord{}}
	var absErr float64
	var n int
	for _, year := range years {
		records := standings.Apply(fit, teamsByYear[year], e.cfg.Calibration)
		res.Records[year] = records
		for _, rec := range records {
			wins, ok := actual[standingKey(rec.TeamID, year)]
			if !ok {
				continue
			}
			absErr += abs(float64(rec.Wins - wins))
			n++
		}
	}
	if n > 0 {
		res.MAE = absErr / float64(n)
	}

	e.met.CalibrationObserved(res.MAE, fit.RSquared)
	logger.Info().
		Int("seasons", len(years)).
		Int("samples", fit.Samples).
		Float64("mae", res.MAE).
		Float64("r_squared", fit.RSquared).
		Msg("backtest complete")
	return res, nil
}

// assignBenchRoles demotes everything past each team's lineup cut to
// the bench, ordered by WAR with player ID as the tiebreak.
func assignBenchRoles(batters []model.ProjectedBatter, lineupSize int) {
	byTeam := map[string][]int{}
	for i, b := range batters {
		byTeam[b.TeamID] = append(byTeam[b.TeamID], i)
	}
	for _, idx := range byTeam {
		sort.SliceStable(idx, func(a, b int) bool {
			if batters[idx[a]].WAR != batters[idx[b]].WAR {
				return batters[idx[a]].WAR > batters[idx[b]].WAR
			}
			return batters[idx[a]].PlayerID < batters[idx[b]].PlayerID
		})
		for rank, i := range idx {
			if rank < lineupSize {
				batters[i].Role = model.RoleLineup
			} else {
				batters[i].Role = model.RoleBench
			}
		}
	}
}

func priorPitcherSeasons(seasons []model.PitcherSeason, year int) []model.PitcherSeason {
	var out []model.PitcherSeason
	for _, s := range seasons {
		if s.Year < year {
			out = append(out, s)
		}
	}
	return out
}

func priorBatterSeasons(seasons []model.BatterSeason, year int) []model.BatterSeason {
	var out []model.BatterSeason
	for _, s := range seasons {
		if s.Year < year {
			out = append(out, s)
		}
	}
	return out
}

// historyMeanAge returns the player's mean age over the seasons inside
// the aggregation window, for the playing-time age adjustment. With no
// usable history it falls back to the target age.
func historyMeanAge(hist []model.BatterSeason, targetAge, targetYear, window int) float64 {
	ordered := make([]model.BatterSeason, len(hist))
	copy(ordered, hist)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Year > ordered[j].Year })

	var sum float64
	var n int
	for i, s := range ordered {
		if i >= window {
			break
		}
		if s.PlateAppearances <= 0 {
			continue
		}
		sum += float64(targetAge - (targetYear - s.Year))
		n++
	}
	if n == 0 {
		return float64(targetAge)
	}
	return sum / float64(n)
}

func groupPitcherSeasons(seasons []model.PitcherSeason) map[string][]model.PitcherSeason {
	out := map[string][]model.PitcherSeason{}
	for _, s := range seasons {
		out[s.PlayerID] = append(out[s.PlayerID], s)
	}
	return out
}

func groupBatterSeasons(seasons []model.BatterSeason) map[string][]model.BatterSeason {
	out := map[string][]model.BatterSeason{}
	for _, s := range seasons {
		out[s.PlayerID] = append(out[s.PlayerID], s)
	}
	return out
}

// backtestYears lists the standings seasons that have at least one
// stat row from an earlier year, ascending.
func backtestYears(ds Dataset) []int {
	minStat := 0
	for _, s := range ds.PitcherSeasons {
		if minStat == 0 || s.Year < minStat {
			minStat = s.Year
		}
	}
	for _, s := range ds.BatterSeasons {
		if minStat == 0 || s.Year < minStat {
			minStat = s.Year
		}
	}
	if minStat == 0 {
		return nil
	}

	seen := map[int]bool{}
	var years []int
	for _, s := range ds.Standings {
		if s.Year > minStat && !seen[s.Year] {
			seen[s.Year] = true
			years = append(years, s.Year)
		}
	}
	sort.Ints(years)
	return years
}

// rostersForYear derives the roster map for a backtest season from the
// teams players actually appeared for in that season.
func rostersForYear(ds Dataset, year int) map[string]string {
	rosters := map[string]string{}
	for _, s := range ds.PitcherSeasons {
		if s.Year == year {
			rosters[s.PlayerID] = s.TeamID
		}
	}
	for _, s := range ds.BatterSeasons {
		if s.Year == year {
			rosters[s.PlayerID] = s.TeamID
		}
	}
	return rosters
}

func standingKey(teamID string, year int) string {
	return fmt.Sprintf("%s/%d", teamID, year)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
