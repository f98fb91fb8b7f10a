// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gradebook/internal/filter"
	"github.com/pdiddy/gradebook/internal/ingest"
	"github.com/pdiddy/gradebook/internal/metrics"
	"github.com/pdiddy/gradebook/internal/report"
	"github.com/pdiddy/gradebook/internal/sink"
	"github.com/pdiddy/gradebook/pkg/types"
)

// missingListed is how many year 2 students without year 1 records are named.
const missingListed = 10

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Keep only year 1 records of students still present in year 2",
	Long: `Filter drops year 1 records of students who no longer appear in year 2
and writes the rest, sorted by student ID and without a header, next to the
year 1 table. It also lists year 2 students with no year 1 record; those are
the transfer students the ranking will score on year 2 alone.`,
	RunE: runFilter,
}

func init() {
	filterCmd.Flags().String("year1", "", "year 1 score table (default from config)")
	filterCmd.Flags().String("year2", "", "year 2 score table (default from config)")
	filterCmd.Flags().StringP("output", "o", "", "output file (default <year1>_neo.csv)")

	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	year1 := stringFlag(cmd, "year1", cfg.Rank.Year1)
	year2 := stringFlag(cmd, "year2", cfg.Rank.Year2)
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = strings.TrimSuffix(year1, filepath.Ext(year1)) + "_neo.csv"
	}

	m := newMetrics(cfg)
	start := time.Now()
	err = filterPipeline(cmd.Context(), cfg, year1, year2, output, os.Stdout, m)
	return finishRun(cfg, m, "filter", start, err)
}

func filterPipeline(ctx context.Context, cfg types.Config, year1Path, year2Path, output string, w io.Writer, m *metrics.Manager) error {
	if ctx == nil {
		ctx = context.Background()
	}

	l := newLoader(cfg, w, m)
	year1, err := l.load(ctx, year1Path, year1Path, ingest.Options{})
	if err != nil {
		return err
	}
	year2, err := l.load(ctx, year2Path, year2Path, ingest.Options{})
	if err != nil {
		return err
	}

	res := filter.Intersect(year1.Table, year2.Table)
	m.RecordMatchRate(res.MatchRate())

	batch := sink.NewBatch(filepath.Dir(output))
	batch.Add(filepath.Base(output), func(w io.Writer) error { return sink.WriteScoreTable(w, res.Kept, nil) })
	if _, err := batch.Commit(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	report.Filter(w, res, missingListed)
	fmt.Fprintf(w, "\nWrote %s\n\n", output)
	report.Preview(w, res.Kept, previewRows)
	return nil
}
