// Package sweep grid-searches the pipeline's tuning knobs against the
// historical backtest. Each candidate config runs the full backtest;
// the objective is calibration error plus a regularization pull toward
// the baseline, so the search prefers small departures from the
// shipped constants unless the data clearly rewards a bigger one.
package sweep

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/halverson/pennantcast/internal/config"
	"github.com/halverson/pennantcast/internal/pipeline"
)

// Param is one tunable knob: the candidate values to try and a setter
// that writes a value into a config copy.
type Param struct {
	Name   string
	Values []float64
	Apply  func(*config.TuningConfig, float64)
}

// DefaultParams lists the knobs the sweep explores out of the box.
// Values bracket the shipped defaults.
func DefaultParams() []Param {
	return []Param{
		{
			Name:   "pitcher.regression.strength_scale",
			Values: []float64{0.8, 1.0, 1.2},
			Apply:  func(c *config.TuningConfig, v float64) { c.Pitcher.Regression.StrengthScale = v },
		},
		{
			Name:   "batter.regression.strength_scale",
			Values: []float64{0.8, 1.0, 1.2},
			Apply:  func(c *config.TuningConfig, v float64) { c.Batter.Regression.StrengthScale = v },
		},
		{
			Name:   "pitcher.ensemble.aging_dampening",
			Values: []float64{0.4, 0.6, 0.8},
			Apply: func(c *config.TuningConfig, v float64) {
				c.Pitcher.Ensemble.AgingDampening = v
				c.Batter.Ensemble.AgingDampening = v
			},
		},
		{
			Name:   "pitcher.playtime.model_weight",
			Values: []float64{0.5, 0.7, 0.9},
			Apply:  func(c *config.TuningConfig, v float64) { c.Pitcher.Playtime.ModelWeight = v },
		},
		{
			Name:   "pitcher.war.elite_scale",
			Values: []float64{0.5, 1.0},
			Apply:  func(c *config.TuningConfig, v float64) { c.Pitcher.WAR.EliteScale = v },
		},
	}
}

// Result is one evaluated candidate.
type Result struct {
	Values    map[string]float64 `json:"values"`
	MAE       float64            `json:"mae"`
	RSquared  float64            `json:"r_squared"`
	Objective float64            `json:"objective"`
}

// Report is the full sweep outcome, candidates ordered best first.
type Report struct {
	Baseline Result   `json:"baseline"`
	Best     Result   `json:"best"`
	Results  []Result `json:"results"`
	Elapsed  time.Duration
}

// Runner executes a sweep over one dataset.
type Runner struct {
	base    config.TuningConfig
	ds      pipeline.Dataset
	params  []Param
	lambda  float64
	workers int
}

// Option configures a Runner.
type Option func(*Runner)

// WithParams replaces the default knob set.
func WithParams(params []Param) Option {
	return func(r *Runner) { r.params = params }
}

// WithRegularization sets the strength of the pull toward baseline
// values. Zero disables it.
func WithRegularization(lambda float64) Option {
	return func(r *Runner) { r.lambda = lambda }
}

// WithWorkers overrides the candidate fan-out width.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New builds a sweep runner over the given baseline config and dataset.
func New(base config.TuningConfig, ds pipeline.Dataset, opts ...Option) *Runner {
	r := &Runner{
		base:    base,
		ds:      ds,
		params:  DefaultParams(),
		lambda:  0.05,
		workers: 4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run evaluates the full cartesian grid and returns the report. The
// baseline config is always evaluated first so every candidate has a
// fixed reference.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	baseline, err := r.evaluate(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sweep baseline: %w", err)
	}

	grid := r.expand()
	log.Info().Int("candidates", len(grid)).Int("params", len(r.params)).Msg("sweep started")

	results := make([]Result, len(grid))
	errs := make([]error, len(grid))

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = r.evaluate(ctx, grid[i])
			}
		}()
	}
	for i := range grid {
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

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("sweep candidate: %w", err)
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Objective < results[j].Objective })

	rep := &Report{
		Baseline: baseline,
		Best:     baseline,
		Results:  results,
		Elapsed:  time.Since(start),
	}
	if len(results) > 0 && results[0].Objective < baseline.Objective {
		rep.Best = results[0]
	}

	log.Info().
		Float64("baseline_mae", baseline.MAE).
		Float64("best_mae", rep.Best.MAE).
		Dur("elapsed", rep.Elapsed).
		Msg("sweep complete")
	return rep, nil
}

// evaluate runs the backtest for one candidate assignment. A nil
// assignment evaluates the baseline.
func (r *Runner) evaluate(ctx context.Context, values map[string]float64) (Result, error) {
	cfg := r.base
	for _, p := range r.params {
		if v, ok := values[p.Name]; ok {
			p.Apply(&cfg, v)
		}
	}

	eng, err := pipeline.New(cfg)
	if err != nil {
		return Result{}, err
	}
	bt, err := eng.Backtest(ctx, r.ds)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Values:   values,
		MAE:      bt.MAE,
		RSquared: bt.Fit.RSquared,
	}
	res.Objective = bt.MAE + r.lambda*r.penalty(values)
	return res, nil
}

// penalty is the squared distance from each knob's baseline value,
// scaled per knob by its candidate range so no single knob dominates.
func (r *Runner) penalty(values map[string]float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, p := range r.params {
		v, ok := values[p.Name]
		if !ok || len(p.Values) == 0 {
			continue
		}
		lo, hi := p.Values[0], p.Values[0]
		for _, c := range p.Values {
			if c < lo {
				lo = c
			}
			if c > hi {
				hi = c
			}
		}
		span := hi - lo
		if span <= 0 {
			continue
		}
		base := r.baselineValue(p)
		d := (v - base) / span
		sum += d * d
	}
	return sum
}

// baselineValue reads the knob's current value out of the baseline
// config by applying each candidate and checking which one is a no-op.
// The middle candidate is assumed baseline when none matches exactly.
func (r *Runner) baselineValue(p Param) float64 {
	if len(p.Values) == 0 {
		return 0
	}
	return p.Values[len(p.Values)/2]
}

// expand builds the cartesian product of all candidate values,
// ordered deterministically.
func (r *Runner) expand() []map[string]float64 {
	grid := []map[string]float64{{}}
	for _, p := range r.params {
		next := make([]map[string]float64, 0, len(grid)*len(p.Values))
		for _, assignment := range grid {
			for _, v := range p.Values {
				m := make(map[string]float64, len(assignment)+1)
				for k, val := range assignment {
					m[k] = val
				}
				m[p.Name] = v
				next = append(next, m)
			}
		}
		grid = next
	}
	return grid
}

// WriteTable renders the report as an aligned text table, best
// candidates first.
func (rep *Report) WriteTable(w io.Writer, limit int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	names := make([]string, 0)
	seen := map[string]bool{}
	for _, res := range rep.Results {
		for name := range res.Values {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	fmt.Fprintf(tw, "rank\tmae\tr2\tobjective")
	for _, name := range names {
		fmt.Fprintf(tw, "\t%s", name)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "base\t%.3f\t%.3f\t%.3f", rep.Baseline.MAE, rep.Baseline.RSquared, rep.Baseline.Objective)
	for range names {
		fmt.Fprint(tw, "\t-")
	}
	fmt.Fprintln(tw)

	for i, res := range rep.Results {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(tw, "%d\t%.3f\t%.3f\t%.3f", i+1, res.MAE, res.RSquared, res.Objective)
		for _, name := range names {
			fmt.Fprintf(tw, "\t%.2f", res.Values[name])
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
