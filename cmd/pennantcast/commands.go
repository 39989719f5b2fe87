package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/halverson/pennantcast/internal/cache"
	"github.com/halverson/pennantcast/internal/httpapi"
	"github.com/halverson/pennantcast/internal/metrics"
	"github.com/halverson/pennantcast/internal/model"
	"github.com/halverson/pennantcast/internal/pipeline"
	"github.com/halverson/pennantcast/internal/standings"
	"github.com/halverson/pennantcast/internal/store"
	"github.com/halverson/pennantcast/internal/sweep"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project one season and print the league table",
		Long:  "Projects every rostered player for the target year, calibrates WAR against history, and prints the projected standings.",
		RunE:  runProject,
	}
	cmd.Flags().Int("year", 0, "Target season to project (required)")
	cmd.Flags().String("out", "", "Write the full projection as JSON to this file")
	cmd.Flags().String("redis", "", "Redis address for the projection cache (host:port)")
	cmd.Flags().Duration("cache-ttl", 24*time.Hour, "Projection cache TTL")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func runProject(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	year, _ := cmd.Flags().GetInt("year")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ds, err := loadDataset(ctx, cmd, year)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{}
	var projCache *cache.Cache
	if addr, _ := cmd.Flags().GetString("redis"); addr != "" {
		ttl, _ := cmd.Flags().GetDuration("cache-ttl")
		projCache = cache.New(redis.NewClient(&redis.Options{Addr: addr}), ttl)
		opts = append(opts, pipeline.WithCache(projCache))
	}

	eng, err := pipeline.New(cfg, opts...)
	if err != nil {
		return err
	}

	proj, err := eng.ProjectSeason(ctx, ds, year)
	if err != nil {
		return err
	}

	// Calibrate against whatever history the dataset carries, then map
	// the projected season through the fit.
	bt, err := eng.Backtest(ctx, ds)
	if err != nil {
		return fmt.Errorf("calibration for projection: %w", err)
	}
	records := standings.Apply(bt.Fit, proj.Teams, cfg.Calibration)

	if err := printStandings(records, bt.Fit); err != nil {
		return err
	}

	if projCache != nil {
		stats := projCache.Stats()
		log.Info().Int64("hits", stats.Hits).Int64("misses", stats.Misses).Msg("projection cache")
	}

	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		st, err := store.Open(dsn, 30*time.Second)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveRecords(ctx, proj.RunID, records); err != nil {
			return err
		}
		log.Info().Str("run_id", proj.RunID).Int("records", len(records)).Msg("records saved")
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		payload := struct {
			*pipeline.SeasonProjection
			Records []model.TeamRecord `json:"records"`
			Fit     standings.Fit      `json:"fit"`
		}{SeasonProjection: proj, Records: records, Fit: bt.Fit}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		log.Info().Str("path", out).Msg("projection written")
	}
	return nil
}

func newCalibrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Backtest the WAR-to-wins calibration on historical seasons",
		Long:  "Replays each historical season from its predecessors, fits the WAR-to-wins mapping, and reports the fit quality. With --sweep it grid-searches the tuning knobs.",
		RunE:  runCalibrate,
	}
	cmd.Flags().Bool("sweep", false, "Grid-search the tuning knobs instead of a single backtest")
	cmd.Flags().Int("top", 10, "Number of sweep candidates to print")
	cmd.Flags().Float64("lambda", 0.05, "Sweep regularization strength toward baseline")
	return cmd
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ds, err := loadDataset(ctx, cmd, time.Now().Year())
	if err != nil {
		return err
	}

	doSweep, _ := cmd.Flags().GetBool("sweep")
	if doSweep {
		lambda, _ := cmd.Flags().GetFloat64("lambda")
		top, _ := cmd.Flags().GetInt("top")

		runner := sweep.New(cfg, ds, sweep.WithRegularization(lambda))
		rep, err := runner.Run(ctx)
		if err != nil {
			return err
		}
		return rep.WriteTable(os.Stdout, top)
	}

	eng, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	res, err := eng.Backtest(ctx, ds)
	if err != nil {
		return err
	}

	fmt.Printf("fit: ")
	if res.Fit.Piecewise {
		fmt.Printf("piecewise base=%.1f lower=%.2f upper=%.2f median_war=%.1f\n",
			res.Fit.BaseWins, res.Fit.LowerSlope, res.Fit.UpperSlope, res.Fit.MedianWAR)
	} else {
		fmt.Printf("linear intercept=%.1f slope=%.2f\n", res.Fit.Intercept, res.Fit.Slope)
	}
	fmt.Printf("samples=%d seasons=%d r2=%.3f mae=%.2f wins\n",
		res.Fit.Samples, res.Fit.Seasons, res.Fit.RSquared, res.MAE)
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Project a season and serve the results over HTTP",
		Long:  "Runs the projection and calibration once, then serves /projections/{year}, /standings/{year}, /health, and /metrics until interrupted.",
		RunE:  runServe,
	}
	cmd.Flags().Int("year", 0, "Target season to project (required)")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	year, _ := cmd.Flags().GetInt("year")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ds, err := loadDataset(ctx, cmd, year)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	met := metrics.New(registry)

	eng, err := pipeline.New(cfg, pipeline.WithMetrics(met))
	if err != nil {
		return err
	}

	proj, err := eng.ProjectSeason(ctx, ds, year)
	if err != nil {
		return err
	}
	bt, err := eng.Backtest(ctx, ds)
	if err != nil {
		return err
	}

	results := httpapi.NewMemoryResults()
	results.PutSeason(proj)
	results.PutRecords(year, standings.Apply(bt.Fit, proj.Teams, cfg.Calibration))
	for btYear, records := range bt.Records {
		results.PutRecords(btYear, records)
	}

	srv := httpapi.NewServer(httpapi.DefaultServerConfig(), results, registry)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// printStandings renders the projected league table, best record first.
func printStandings(records []model.TeamRecord, fit standings.Fit) error {
	ordered := make([]model.TeamRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Wins != ordered[j].Wins {
			return ordered[i].Wins > ordered[j].Wins
		}
		return ordered[i].TeamID < ordered[j].TeamID
	})

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "team\tW\tL\twar\traw")
	for _, rec := range ordered {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t%.1f\n", rec.TeamID, rec.Wins, rec.Losses, rec.WAR, rec.RawWins)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("calibration r2=%.3f over %d team-seasons\n", fit.RSquared, fit.Samples)
	return nil
}
