// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gradebook/internal/compare"
	"github.com/pdiddy/gradebook/internal/ingest"
	"github.com/pdiddy/gradebook/internal/metrics"
	"github.com/pdiddy/gradebook/internal/sink"
	"github.com/pdiddy/gradebook/pkg/types"
)

// errMismatch makes a failed comparison exit non-zero.
var errMismatch = errors.New("documents disagree")

var compareCmd = &cobra.Command{
	Use:   "compare <left> <right>",
	Short: "Check two extractions of the same score sheet against each other",
	Long: `Compare extracts student IDs and scores from two documents (PDF, Word,
Markdown, or CSV) and reports every student missing from one side and every
score that differs. Two PDF or Word documents are compared cell text for
cell text; anything else compares numbers within a tolerance.

The command exits non-zero when any mismatch is found.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().String("mode", "", "comparison mode: auto, exact, or tolerance")
	compareCmd.Flags().Float64("tolerance", 0, "largest absolute difference treated as equal (default 0.001)")
	compareCmd.Flags().Int("limit", 0, "mismatches listed before summarizing (default 20)")
	compareCmd.Flags().String("dump-dir", "", "write each side's extracted table as CSV into this directory")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Compare.Mode = types.CompareMode(stringFlag(cmd, "mode", string(cfg.Compare.Mode)))
	if cmd.Flags().Changed("tolerance") {
		cfg.Compare.Tolerance, _ = cmd.Flags().GetFloat64("tolerance")
	}
	if cmd.Flags().Changed("limit") {
		cfg.Compare.Limit, _ = cmd.Flags().GetInt("limit")
	}
	dumpDir, _ := cmd.Flags().GetString("dump-dir")

	m := newMetrics(cfg)
	start := time.Now()
	err = comparePipeline(cmd.Context(), cfg, args[0], args[1], dumpDir, os.Stdout, m)
	return finishRun(cfg, m, "compare", start, err)
}

func comparePipeline(ctx context.Context, cfg types.Config, leftPath, rightPath, dumpDir string, w io.Writer, m *metrics.Manager) error {
	if ctx == nil {
		ctx = context.Background()
	}

	l := newLoader(cfg, w, m)
	opts := ingest.Options{KeepMissing: true}
	left, err := l.load(ctx, leftPath, filepath.Base(leftPath), opts)
	if err != nil {
		return err
	}
	right, err := l.load(ctx, rightPath, filepath.Base(rightPath), opts)
	if err != nil {
		return err
	}

	if dumpDir != "" {
		batch := sink.NewBatch(dumpDir)
		for _, o := range []ingest.Outcome{left, right} {
			table := o.Table
			batch.Add(extractedName(o.Source.Path), func(w io.Writer) error {
				return sink.WriteScoreTable(w, table, []string{"student_id", "score"})
			})
		}
		if _, err := batch.Commit(); err != nil {
			return err
		}
	}

	mode := compare.ResolveMode(cfg.Compare.Mode, isDocument(left.Source.Format) && isDocument(right.Source.Format))
	rep, err := compare.Compare(left.Table, right.Table, compare.Options{Mode: mode, Tolerance: cfg.Compare.Tolerance})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nComparing %s and %s (%s)\n", rep.LeftLabel, rep.RightLabel, mode)
	rep.Write(w, cfg.Compare.Limit)
	for _, k := range []compare.Kind{compare.KindMissingLeft, compare.KindMissingRight, compare.KindValue} {
		m.RecordMismatches(string(k), rep.Count(k))
	}

	if !rep.Match() {
		return fmt.Errorf("%w: %d mismatches", errMismatch, len(rep.Mismatches))
	}
	return nil
}

func isDocument(f ingest.Format) bool {
	return f == ingest.FormatPDF || f == ingest.FormatWord
}

// extractedName names the dump of a source, e.g. scores.pdf -> scores_pdf_extracted.csv.
func extractedName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + strings.TrimPrefix(ext, ".") + "_extracted.csv"
}
