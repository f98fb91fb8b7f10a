// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gradebook/internal/ingest"
	"github.com/pdiddy/gradebook/internal/metrics"
	"github.com/pdiddy/gradebook/internal/rank"
	"github.com/pdiddy/gradebook/internal/report"
	"github.com/pdiddy/gradebook/internal/sink"
	"github.com/pdiddy/gradebook/pkg/types"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Compute the credit-weighted composite ranking",
	Long: `Rank reads the year 1 and year 2 score tables and ranks every student in
year 2. Students with a year 1 score get the credit-weighted mean of both
years; the rest are ranked on their year 2 score alone. Composite scores are
rounded to two decimals and ranks run 1..N with no shared positions.

The full and simplified ranking CSVs (and optionally JSON and YAML) are
written to the output directory only after every file was produced, so a
failed run leaves earlier results untouched.`,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().String("year1", "", "year 1 score table (default from config, 23-24.csv)")
	rankCmd.Flags().String("year2", "", "year 2 score table (default from config, 24-25.csv)")
	rankCmd.Flags().String("tie-break", "", "order of equal composites: stable, student_id, or year2")
	rankCmd.Flags().String("score-header", "", "CSV header naming the score column")
	rankCmd.Flags().String("out-dir", "", "output directory (default from config, final_results)")
	rankCmd.Flags().String("json", "", "also write the ranking as JSON keyed by student ID to this file")
	rankCmd.Flags().String("yaml", "", "also write the ranking as YAML to this file")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Rank.Year1 = stringFlag(cmd, "year1", cfg.Rank.Year1)
	cfg.Rank.Year2 = stringFlag(cmd, "year2", cfg.Rank.Year2)
	cfg.Rank.ScoreHeader = stringFlag(cmd, "score-header", cfg.Rank.ScoreHeader)
	cfg.Output.Dir = stringFlag(cmd, "out-dir", cfg.Output.Dir)
	cfg.Output.JSON = stringFlag(cmd, "json", cfg.Output.JSON)
	cfg.Output.YAML = stringFlag(cmd, "yaml", cfg.Output.YAML)
	tb, err := types.ParseTieBreak(stringFlag(cmd, "tie-break", string(cfg.Rank.TieBreak)))
	if err != nil {
		return err
	}
	cfg.Rank.TieBreak = tb

	m := newMetrics(cfg)
	start := time.Now()
	err = rankPipeline(cmd.Context(), cfg, os.Stdout, m)
	return finishRun(cfg, m, "rank", start, err)
}

// rankPipeline loads both years, ranks, writes every output, and prints the
// summary to w.
func rankPipeline(ctx context.Context, cfg types.Config, w io.Writer, m *metrics.Manager) error {
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintln(w, "Loading score tables")
	l := newLoader(cfg, w, m)
	year1, err := l.load(ctx, cfg.Rank.Year1, cfg.Rank.Year1, ingest.Options{})
	if err != nil {
		return err
	}
	year2, err := l.load(ctx, cfg.Rank.Year2, cfg.Rank.Year2, ingest.Options{KeepMissing: true})
	if err != nil {
		return err
	}

	records, err := rank.Rank(year1.Table, year2.Table, cfg.Credits, rank.Options{TieBreak: cfg.Rank.TieBreak})
	if err != nil {
		return err
	}
	s := rank.Summarize(records)
	slog.Debug("ranked", "students", s.Total, "complete", s.Complete, "transfer", s.Transfer, "tie_break", cfg.Rank.TieBreak)
	m.RecordRanking(s.Complete, s.Transfer)

	batch := sink.NewBatch(cfg.Output.Dir)
	batch.Add(orDefault(cfg.Output.Full, defaultFullFile), func(w io.Writer) error { return sink.WriteFullCSV(w, records) })
	batch.Add(orDefault(cfg.Output.Simple, defaultSimpleFile), func(w io.Writer) error { return sink.WriteSimpleCSV(w, records) })
	batch.Add(cfg.Output.JSON, func(w io.Writer) error { return sink.WriteJSON(w, records) })
	batch.Add(cfg.Output.YAML, func(w io.Writer) error { return sink.WriteYAML(w, records) })
	paths, err := batch.Commit()
	if err != nil {
		return err
	}

	report.Rank(w, records, cfg.Credits)
	fmt.Fprintln(w, "\nWrote:")
	for _, p := range paths {
		fmt.Fprintf(w, "  %s\n", p)
	}
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
