// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gradebook/internal/lookup"
	"github.com/pdiddy/gradebook/internal/report"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <student-id>",
	Short: "Show one student's rank and scores",
	Long: `Lookup finds a student in the JSON ranking export and prints their rank
out of the cohort, composite score, and per-year scores. IDs must be digits
only and at least lookup.min_id_length characters long.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().String("data", "", "JSON ranking export (default <output.dir>/<output.json>)")

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data := stringFlag(cmd, "data", outputPath(cfg, orDefault(cfg.Output.JSON, defaultJSONFile)))
	return lookupStudent(data, args[0], cfg.Lookup.MinIDLength, os.Stdout)
}

func lookupStudent(data, id string, minLen int, w io.Writer) error {
	if err := lookup.Validate(id, minLen); err != nil {
		return err
	}
	idx, err := lookup.LoadIndex(data)
	if err != nil {
		return err
	}
	res, err := lookup.Find(idx, id, minLen)
	if err != nil {
		return err
	}
	report.Card(w, res.Record, res.Total)
	return nil
}
