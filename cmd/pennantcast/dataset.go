package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/halverson/pennantcast/internal/config"
	"github.com/halverson/pennantcast/internal/pipeline"
	"github.com/halverson/pennantcast/internal/store"
)

// loadConfig reads the tuning config named by --config, or the baked-in
// defaults when the flag is empty.
func loadConfig(cmd *cobra.Command) (config.TuningConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// loadDataset reads the dataset from --data (JSON file) or --db
// (PostgreSQL). The target year bounds how much history is pulled from
// the database; JSON files are taken as-is.
func loadDataset(ctx context.Context, cmd *cobra.Command, targetYear int) (pipeline.Dataset, error) {
	dataPath, _ := cmd.Flags().GetString("data")
	dsn, _ := cmd.Flags().GetString("db")

	switch {
	case dataPath != "":
		return loadJSONDataset(dataPath)
	case dsn != "":
		return loadDBDataset(ctx, dsn, targetYear)
	default:
		return pipeline.Dataset{}, fmt.Errorf("either --data or --db is required")
	}
}

func loadJSONDataset(path string) (pipeline.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Dataset{}, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	var ds pipeline.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return pipeline.Dataset{}, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	return ds, nil
}

func loadDBDataset(ctx context.Context, dsn string, targetYear int) (pipeline.Dataset, error) {
	st, err := store.Open(dsn, 30*time.Second)
	if err != nil {
		return pipeline.Dataset{}, err
	}
	defer st.Close()

	var ds pipeline.Dataset
	if ds.Players, err = st.Players(ctx); err != nil {
		return pipeline.Dataset{}, err
	}
	if ds.PitcherSeasons, err = st.PitcherSeasons(ctx, targetYear); err != nil {
		return pipeline.Dataset{}, err
	}
	if ds.BatterSeasons, err = st.BatterSeasons(ctx, targetYear); err != nil {
		return pipeline.Dataset{}, err
	}
	if ds.Standings, err = st.Standings(ctx, targetYear); err != nil {
		return pipeline.Dataset{}, err
	}
	// The roster for the target season is whatever assignment the most
	// recent completed season shows.
	if ds.Rosters, err = st.Rosters(ctx, targetYear-1); err != nil {
		return pipeline.Dataset{}, err
	}
	return ds, nil
}
