// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pdiddy/gradebook/pkg/types"
)

// Card prints one student's ranking: position out of total, the composite
// score, and the per-year scores that went into it.
func Card(w io.Writer, r types.RankedRecord, total int) {
	fmt.Fprintf(w, "Student:    %s (%s)\n", r.StudentID, r.Category)
	fmt.Fprintf(w, "Rank:       %d / %d\n", r.Rank, total)
	fmt.Fprintf(w, "Composite:  %s\n", strconv.FormatFloat(r.CompositeScore, 'f', -1, 64))
	if r.Year1Score != nil {
		fmt.Fprintf(w, "Year 1:     %s\n", strconv.FormatFloat(*r.Year1Score, 'f', -1, 64))
	}
	fmt.Fprintf(w, "Year 2:     %s\n", strconv.FormatFloat(r.Year2Score, 'f', -1, 64))
	if r.Category == types.CategoryTransfer {
		fmt.Fprintln(w, "\nTransfer student: only the year 2 score counts toward the ranking.")
	}
}
