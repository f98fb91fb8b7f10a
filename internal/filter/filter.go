// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter narrows a first-year table to the students who also
// appear in the second year.
package filter

import (
	"sort"

	"github.com/pdiddy/gradebook/pkg/types"
)

// Result is the outcome of Intersect.
type Result struct {
	// Kept holds the year-1 records whose student is in year 2, sorted by ID.
	Kept *types.YearTable

	// Year1Count and Year2Count are the input sizes.
	Year1Count int
	Year2Count int

	// Removed counts year-1 records dropped because the student left.
	Removed int

	// MissingInYear1 lists, in ID order, year-2 students with no year-1 record.
	MissingInYear1 []string
}

// MatchRate is the share of year-2 students that have a year-1 record, as a
// percentage. It is 0 when year 2 is empty.
func (r Result) MatchRate() float64 {
	if r.Year2Count == 0 {
		return 0
	}
	return float64(r.Kept.Len()) / float64(r.Year2Count) * 100
}

// Intersect keeps the year-1 records whose student ID also appears in year2.
// Neither input is modified.
func Intersect(year1, year2 *types.YearTable) Result {
	kept := types.NewYearTable(year1Label(year1))
	for _, rec := range year1.Records() {
		if year2.Has(rec.StudentID) {
			kept.Add(rec)
		}
	}
	kept.SortByID()

	var missing []string
	for _, id := range year2.IDs() {
		if !year1.Has(id) {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)

	return Result{
		Kept:           kept,
		Year1Count:     year1.Len(),
		Year2Count:     year2.Len(),
		Removed:        year1.Len() - kept.Len(),
		MissingInYear1: missing,
	}
}

func year1Label(t *types.YearTable) string {
	if t == nil {
		return ""
	}
	return t.Label
}
