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

	"github.com/pdiddy/gradebook/internal/convert"
	"github.com/pdiddy/gradebook/internal/ingest"
	"github.com/pdiddy/gradebook/internal/metrics"
	"github.com/pdiddy/gradebook/internal/report"
	"github.com/pdiddy/gradebook/internal/sink"
	"github.com/pdiddy/gradebook/pkg/types"
)

const previewRows = 5

var convertCmd = &cobra.Command{
	Use:   "convert <document>...",
	Short: "Normalize score documents into two-column CSV tables",
	Long: `Convert extracts student IDs and scores from PDF, Word, Markdown, or CSV
documents and writes each as a two-column CSV sorted by student ID. PDF and
Word documents are first turned into Markdown by the markitdown container;
the Markdown is cached and reused while it is newer than the document.

With --markdown-only, PDF and Word documents are converted to cached
Markdown and no CSV is written.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("out-dir", ".", "directory for the CSV tables")
	convertCmd.Flags().StringP("output", "o", "", "output file (single input only)")
	convertCmd.Flags().String("header", "学号,课程成绩", "comma-separated CSV header; empty writes data rows only")
	convertCmd.Flags().Bool("markdown-only", false, "only convert PDF and Word documents to cached Markdown")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	outDir, _ := cmd.Flags().GetString("out-dir")
	output, _ := cmd.Flags().GetString("output")
	headerFlag, _ := cmd.Flags().GetString("header")
	markdownOnly, _ := cmd.Flags().GetBool("markdown-only")

	if output != "" && len(args) > 1 {
		return fmt.Errorf("--output needs exactly one input, got %d", len(args))
	}
	var header []string
	if headerFlag != "" {
		header = strings.Split(headerFlag, ",")
	}

	m := newMetrics(cfg)
	start := time.Now()
	if markdownOnly {
		err = convertMarkdown(cmd.Context(), cfg, args, os.Stdout)
	} else {
		err = convertTables(cmd.Context(), cfg, args, outDir, output, header, os.Stdout, m)
	}
	return finishRun(cfg, m, "convert", start, err)
}

// convertTables writes one sorted CSV per input. Every input is loaded
// before anything is written.
func convertTables(ctx context.Context, cfg types.Config, inputs []string, outDir, output string, header []string, w io.Writer, m *metrics.Manager) error {
	if ctx == nil {
		ctx = context.Background()
	}

	l := newLoader(cfg, w, m)
	batch := sink.NewBatch(outDir)
	var tables []*types.YearTable
	for _, in := range inputs {
		o, err := l.load(ctx, in, filepath.Base(in), ingest.Options{})
		if err != nil {
			return err
		}
		table := o.Table
		table.SortByID()
		tables = append(tables, table)

		name := output
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ".csv"
		}
		batch.Add(name, func(w io.Writer) error { return sink.WriteScoreTable(w, table, header) })
	}

	paths, err := batch.Commit()
	if err != nil {
		return err
	}
	for i, p := range paths {
		fmt.Fprintf(w, "\n%s (%d records)\n", p, tables[i].Len())
		report.Preview(w, tables[i], previewRows)
	}
	return nil
}

// convertMarkdown fills the Markdown cache for the PDF and Word inputs.
func convertMarkdown(ctx context.Context, cfg types.Config, inputs []string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var docs []string
	for _, in := range inputs {
		f, err := ingest.DetectFormat(in)
		if err != nil {
			return err
		}
		if !isDocument(f) {
			fmt.Fprintf(w, "skipped:   %s (already text)\n", filepath.Base(in))
			continue
		}
		docs = append(docs, in)
	}
	if len(docs) == 0 {
		return nil
	}

	conv, err := newDocumentConverter(ctx, cfg.Conversion)
	if err != nil {
		return err
	}
	result := convert.ConvertBatch(ctx, conv, docs, cfg.Conversion.CacheDir, w)
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed conversion", result.Failed)
	}
	return nil
}
