// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report prints human-readable summaries of each stage to an
// io.Writer.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/gradebook/internal/filter"
	"github.com/pdiddy/gradebook/internal/ingest"
	"github.com/pdiddy/gradebook/internal/rank"
	"github.com/pdiddy/gradebook/pkg/types"
)

const rule = "=================================================="

// TopN is how many leaders the rank summary lists.
const TopN = 10

// Ingest prints one line per source: accepted rows and what was dropped.
func Ingest(w io.Writer, o ingest.Outcome) {
	if o.Failed() {
		fmt.Fprintf(w, "%s: failed: %v\n", o.Source.Label, o.Err)
		return
	}
	s := o.Stats
	fmt.Fprintf(w, "%s: %d records", o.Source.Label, s.Accepted)
	var extra []string
	if s.Headers > 0 {
		extra = append(extra, fmt.Sprintf("%d header", s.Headers))
	}
	if s.Skipped > 0 {
		extra = append(extra, fmt.Sprintf("%d skipped", s.Skipped))
	}
	if s.Duplicates > 0 {
		extra = append(extra, fmt.Sprintf("%d duplicate", s.Duplicates))
	}
	if s.Missing > 0 {
		extra = append(extra, fmt.Sprintf("%d missing score", s.Missing))
	}
	if len(extra) > 0 {
		fmt.Fprintf(w, " (%s)", strings.Join(extra, ", "))
	}
	fmt.Fprintln(w)
}

// Rank prints the ranking summary: counts, composite statistics, the top
// TopN students, and the credit split.
func Rank(w io.Writer, records []types.RankedRecord, cw types.CreditWeights) {
	s := rank.Summarize(records)

	fmt.Fprintln(w, "\nSummary")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Students:  %d\n", s.Total)
	fmt.Fprintf(w, "Complete:  %d\n", s.Complete)
	fmt.Fprintf(w, "Transfer:  %d\n", s.Transfer)

	if s.Total > 0 {
		fmt.Fprintln(w, "\nComposite scores")
		fmt.Fprintf(w, "Max:     %.2f (rank 1)\n", s.Max)
		fmt.Fprintf(w, "Min:     %.2f (rank %d)\n", s.Min, s.Total)
		fmt.Fprintf(w, "Mean:    %.2f\n", s.Mean)
		fmt.Fprintf(w, "Median:  %.2f\n", s.Median)

		fmt.Fprintf(w, "\nTop %d\n", min(TopN, s.Total))
		for _, r := range rank.Top(records, TopN) {
			fmt.Fprintf(w, "  %2d. %s %s - %.2f\n", r.Rank, marker(r.Category), r.StudentID, r.CompositeScore)
		}
	}

	fmt.Fprintln(w, "\nCredit weights")
	fmt.Fprintf(w, "Year 1:  %v (%.1f%%)\n", cw.Year1, cw.Year1Share()*100)
	fmt.Fprintf(w, "Year 2:  %v (%.1f%%)\n", cw.Year2, cw.Year2Share()*100)
}

// marker tags transfer students in listings.
func marker(c types.Category) string {
	if c == types.CategoryTransfer {
		return "[T]"
	}
	return "[C]"
}

// Export prints the counts and score range of an exported ranking.
func Export(w io.Writer, records []types.RankedRecord) {
	s := rank.Summarize(records)
	fmt.Fprintf(w, "Students:  %d\n", s.Total)
	fmt.Fprintf(w, "Complete:  %d\n", s.Complete)
	fmt.Fprintf(w, "Transfer:  %d\n", s.Transfer)
	if s.Total > 0 {
		fmt.Fprintf(w, "Max:       %.2f\n", s.Max)
		fmt.Fprintf(w, "Min:       %.2f\n", s.Min)
	}
}

// Filter prints the outcome of intersecting year 1 with year 2. At most
// limit missing IDs are listed.
func Filter(w io.Writer, r filter.Result, limit int) {
	fmt.Fprintf(w, "Year 1 records:  %d\n", r.Year1Count)
	fmt.Fprintf(w, "Year 2 records:  %d\n", r.Year2Count)
	fmt.Fprintf(w, "Kept:            %d\n", r.Kept.Len())
	fmt.Fprintf(w, "Removed:         %d\n", r.Removed)

	if n := len(r.MissingInYear1); n > 0 {
		fmt.Fprintf(w, "\n%d year 2 students have no year 1 record:\n", n)
		for i, id := range r.MissingInYear1 {
			if i == limit {
				fmt.Fprintf(w, "  ... and %d more\n", n-limit)
				break
			}
			fmt.Fprintf(w, "  - %s\n", id)
		}
	} else {
		fmt.Fprintln(w, "\nEvery year 2 student has a year 1 record")
	}
	fmt.Fprintf(w, "\nMatch rate: %.1f%%\n", r.MatchRate())
}
