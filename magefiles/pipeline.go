//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Pipeline groups the targets that run the built CLI over the score files
// in the current directory.
type Pipeline mg.Namespace

// Filter writes 23-24_neo.csv with the year 1 students still in year 2.
func (Pipeline) Filter() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "filter")
}

// Rank writes the weighted ranking into final_results/.
func (Pipeline) Rank() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "rank")
}

// Export writes the JSON lookup index from the full ranking.
func (Pipeline) Export() error {
	mg.Deps(Pipeline.Rank)
	return sh.RunV(binPath, "export")
}

// Compare checks a PDF against its Word twin. Set LEFT and RIGHT.
func (Pipeline) Compare() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "compare", envOr("LEFT", "scores.pdf"), envOr("RIGHT", "scores.docx"))
}

// Convert turns the Markdown ranking sheet into year 2 CSV. Set INPUT and OUTPUT.
func (Pipeline) Convert() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "convert", envOr("INPUT", "24-25排名.md"), "-o", envOr("OUTPUT", "24-25.csv"))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
