// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pdiddy/gradebook/pkg/types"
)

// Preview prints the first and last n records of t followed by the score
// range. Short tables are printed once in full.
func Preview(w io.Writer, t *types.YearTable, n int) {
	recs := t.Records()
	if len(recs) <= 2*n {
		fmt.Fprintln(w, "Records:")
		printRecords(w, recs)
	} else {
		fmt.Fprintf(w, "First %d:\n", n)
		printRecords(w, recs[:n])
		fmt.Fprintf(w, "Last %d:\n", n)
		printRecords(w, recs[len(recs)-n:])
	}

	var (
		count  int
		sum    float64
		hi, lo float64
	)
	for _, r := range recs {
		if !r.HasScore() {
			continue
		}
		v := *r.Score
		if count == 0 || v > hi {
			hi = v
		}
		if count == 0 || v < lo {
			lo = v
		}
		sum += v
		count++
	}
	if count == 0 {
		return
	}
	fmt.Fprintf(w, "\nMax:   %s\n", strconv.FormatFloat(hi, 'f', -1, 64))
	fmt.Fprintf(w, "Min:   %s\n", strconv.FormatFloat(lo, 'f', -1, 64))
	fmt.Fprintf(w, "Mean:  %.2f\n", sum/float64(count))
}

func printRecords(w io.Writer, recs []types.ScoreRecord) {
	for _, r := range recs {
		score := "-"
		if r.Score != nil {
			score = strconv.FormatFloat(*r.Score, 'f', -1, 64)
		}
		fmt.Fprintf(w, "  %s  %s\n", r.StudentID, score)
	}
}
