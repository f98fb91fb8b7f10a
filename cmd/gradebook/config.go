// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gradebook/internal/compare"
	"github.com/pdiddy/gradebook/internal/convert"
	"github.com/pdiddy/gradebook/internal/ingest"
	"github.com/pdiddy/gradebook/internal/lookup"
	"github.com/pdiddy/gradebook/internal/metrics"
	"github.com/pdiddy/gradebook/pkg/types"
)

// configErr holds a config file read failure from initConfig.
var configErr error

// Default file names, matching the layout the scores were published in.
const (
	defaultYear1File  = "23-24.csv"
	defaultYear2File  = "24-25.csv"
	defaultOutputDir  = "final_results"
	defaultFullFile   = "weighted_ranking.csv"
	defaultSimpleFile = "final_ranking.csv"
	defaultJSONFile   = "data.json"
)

func setDefaults(v *viper.Viper) {
	w := types.DefaultCreditWeights()
	v.SetDefault("credits.year1", w.Year1)
	v.SetDefault("credits.year2", w.Year2)
	v.SetDefault("credits.total", w.Total)

	v.SetDefault("rank.year1", defaultYear1File)
	v.SetDefault("rank.year2", defaultYear2File)
	v.SetDefault("rank.tie_break", string(types.TieBreakStable))
	v.SetDefault("rank.score_header", "")

	v.SetDefault("output.dir", defaultOutputDir)
	v.SetDefault("output.full", defaultFullFile)
	v.SetDefault("output.simple", defaultSimpleFile)
	v.SetDefault("output.json", defaultJSONFile)
	v.SetDefault("output.yaml", "")

	v.SetDefault("compare.mode", string(types.CompareAuto))
	v.SetDefault("compare.tolerance", compare.DefaultTolerance)
	v.SetDefault("compare.limit", compare.DefaultLimit)

	v.SetDefault("conversion.cache_dir", ingest.DefaultCacheDir)
	v.SetDefault("conversion.runtime", "")
	v.SetDefault("conversion.image", convert.DefaultImage)
	v.SetDefault("metrics.file", "")
	v.SetDefault("metrics.namespace", "gradebook")
	v.SetDefault("lookup.min_id_length", lookup.DefaultMinIDLength)
	v.SetDefault("log_level", "info")
}

// loadConfig unmarshals the merged config and validates it. Credit weights
// are checked here so every command fails before touching any file.
func loadConfig() (types.Config, error) {
	if configErr != nil {
		return types.Config{}, fmt.Errorf("reading config: %w", configErr)
	}
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Credits.Validate(); err != nil {
		return types.Config{}, err
	}
	tb, err := types.ParseTieBreak(string(cfg.Rank.TieBreak))
	if err != nil {
		return types.Config{}, err
	}
	cfg.Rank.TieBreak = tb

	switch cfg.Compare.Mode {
	case "", types.CompareAuto, types.CompareExact, types.CompareTolerance:
	default:
		return types.Config{}, fmt.Errorf("unknown compare mode %q: use auto, exact, or tolerance", cfg.Compare.Mode)
	}
	if cfg.Compare.Tolerance < 0 {
		return types.Config{}, fmt.Errorf("compare tolerance must not be negative, got %v", cfg.Compare.Tolerance)
	}
	return cfg, nil
}

// stringFlag returns the flag value when it was set on the command line and
// fallback otherwise, so config values apply unless overridden.
func stringFlag(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}

// outputPath joins name onto the configured output directory unless it is
// already a path of its own.
func outputPath(cfg types.Config, name string) string {
	if name == "" || filepath.IsAbs(name) || filepath.Dir(name) != "." {
		return name
	}
	return filepath.Join(cfg.Output.Dir, name)
}

// newMetrics returns the run's metrics manager, named and labelled from cfg.
func newMetrics(cfg types.Config) *metrics.Manager {
	return metrics.NewManager(
		metrics.WithNamespace(cfg.Metrics.Namespace),
		metrics.WithConstLabels(cfg.Metrics.Labels),
	)
}

// finishRun records the run in the metrics textfile when one is configured.
// The command's own error is returned unchanged.
func finishRun(cfg types.Config, m *metrics.Manager, command string, start time.Time, runErr error) error {
	if cfg.Metrics.File == "" || m == nil {
		return runErr
	}
	m.RecordRun(command, time.Since(start), runErr)
	if err := m.WriteFile(cfg.Metrics.File); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config prints the configuration after merging built-in defaults, the
config file, GRADEBOOK_* environment variables, and global flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
