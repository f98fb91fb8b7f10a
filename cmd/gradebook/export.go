// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gradebook/internal/report"
	"github.com/pdiddy/gradebook/internal/sink"
	"github.com/pdiddy/gradebook/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert the full ranking CSV to JSON or YAML",
	Long: `Export reads the full ranking CSV written by rank and writes it as a JSON
object keyed by student ID, the format lookup reads. Use --format yaml for a
YAML sequence in rank order instead.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("input", "", "full ranking CSV (default <output.dir>/<output.full>)")
	exportCmd.Flags().StringP("output", "o", "", "output file (default <output.dir>/<output.json>)")
	exportCmd.Flags().String("format", "json", "output format: json or yaml")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	input := stringFlag(cmd, "input", outputPath(cfg, orDefault(cfg.Output.Full, defaultFullFile)))
	format, _ := cmd.Flags().GetString("format")

	var write func(io.Writer, []types.RankedRecord) error
	var fallback string
	switch format {
	case "json", "":
		write, fallback = sink.WriteJSON, orDefault(cfg.Output.JSON, defaultJSONFile)
	case "yaml":
		write, fallback = sink.WriteYAML, orDefault(cfg.Output.YAML, "ranking.yaml")
	default:
		return fmt.Errorf("unsupported format %q: use json or yaml", format)
	}
	output := stringFlag(cmd, "output", outputPath(cfg, fallback))

	m := newMetrics(cfg)
	start := time.Now()
	err = exportRanking(input, output, write, os.Stdout)
	return finishRun(cfg, m, "export", start, err)
}

func exportRanking(input, output string, write func(io.Writer, []types.RankedRecord) error, w io.Writer) error {
	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("opening %s: %w", input, err)
	}
	records, err := sink.ReadRanking(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}
	fmt.Fprintf(w, "Read %d records from %s\n", len(records), input)

	batch := sink.NewBatch(filepath.Dir(output))
	batch.Add(filepath.Base(output), func(w io.Writer) error { return write(w, records) })
	if _, err := batch.Commit(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote %s\n\n", output)
	report.Export(w, records)
	return nil
}
