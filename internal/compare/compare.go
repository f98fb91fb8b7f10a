// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compare checks that two extractions of the same score sheet agree
// student by student.
package compare

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/pdiddy/gradebook/pkg/types"
)

// ErrEmptyDataset is returned when either side has no records.
var ErrEmptyDataset = errors.New("empty dataset")

// Defaults for the compare config. Options.Tolerance is used as given, so
// zero asks for exact numeric equality; Report.Write falls back to
// DefaultLimit for a non-positive limit.
const (
	DefaultTolerance = 0.001
	DefaultLimit     = 20
)

// Kind classifies a mismatch.
type Kind string

const (
	KindMissingLeft  Kind = "missing-left"
	KindMissingRight Kind = "missing-right"
	KindValue        Kind = "value"
)

// Mismatch is one disagreement between the two tables.
type Mismatch struct {
	StudentID string
	Kind      Kind
	Left      string // raw left score; empty when missing
	Right     string // raw right score; empty when missing
}

// Options configure a comparison.
type Options struct {
	Mode      types.CompareMode
	Tolerance float64
}

// Report is the result of Compare.
type Report struct {
	LeftLabel  string
	RightLabel string
	LeftCount  int
	RightCount int

	// Compared is the number of distinct student IDs across both tables.
	Compared   int
	Mismatches []Mismatch
}

// Match reports whether the tables agree completely.
func (r Report) Match() bool { return len(r.Mismatches) == 0 }

// Count returns the number of mismatches of kind k.
func (r Report) Count(k Kind) int {
	n := 0
	for _, m := range r.Mismatches {
		if m.Kind == k {
			n++
		}
	}
	return n
}

// ResolveMode turns CompareAuto into a concrete mode. Two PDF or Word
// extractions are compared as text; anything involving parsed numbers uses
// the tolerance.
func ResolveMode(mode types.CompareMode, bothDocuments bool) types.CompareMode {
	if mode != types.CompareAuto && mode != "" {
		return mode
	}
	if bothDocuments {
		return types.CompareExact
	}
	return types.CompareTolerance
}

// Compare walks the union of student IDs in ascending order and records
// every ID missing from one side and every score that differs.
func Compare(left, right *types.YearTable, opts Options) (Report, error) {
	if left.Len() == 0 {
		return Report{}, fmt.Errorf("%w: %s", ErrEmptyDataset, labelOf(left, "left"))
	}
	if right.Len() == 0 {
		return Report{}, fmt.Errorf("%w: %s", ErrEmptyDataset, labelOf(right, "right"))
	}

	mode := ResolveMode(opts.Mode, false)
	tol := opts.Tolerance
	if tol < 0 || math.IsNaN(tol) {
		return Report{}, fmt.Errorf("invalid tolerance %v", opts.Tolerance)
	}

	report := Report{
		LeftLabel:  labelOf(left, "left"),
		RightLabel: labelOf(right, "right"),
		LeftCount:  left.Len(),
		RightCount: right.Len(),
	}

	ids := union(left, right)
	report.Compared = len(ids)
	for _, id := range ids {
		l, inLeft := left.Get(id)
		r, inRight := right.Get(id)
		switch {
		case !inLeft:
			report.Mismatches = append(report.Mismatches, Mismatch{StudentID: id, Kind: KindMissingLeft, Right: r.Raw})
		case !inRight:
			report.Mismatches = append(report.Mismatches, Mismatch{StudentID: id, Kind: KindMissingRight, Left: l.Raw})
		case !equal(l, r, mode, tol):
			report.Mismatches = append(report.Mismatches, Mismatch{StudentID: id, Kind: KindValue, Left: l.Raw, Right: r.Raw})
		}
	}
	return report, nil
}

func equal(l, r types.ScoreRecord, mode types.CompareMode, tol float64) bool {
	if mode == types.CompareExact {
		return l.Raw == r.Raw
	}
	switch {
	case l.HasScore() && r.HasScore():
		return math.Abs(*l.Score-*r.Score) <= tol
	case !l.HasScore() && !r.HasScore():
		return l.Raw == r.Raw
	default:
		return false
	}
}

func union(a, b *types.YearTable) []string {
	seen := make(map[string]bool, a.Len()+b.Len())
	var ids []string
	for _, t := range []*types.YearTable{a, b} {
		for _, id := range t.IDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

func labelOf(t *types.YearTable, fallback string) string {
	if t == nil || t.Label == "" {
		return fallback
	}
	return t.Label
}

// Write prints the report to w, listing at most limit mismatches. A
// non-positive limit uses DefaultLimit.
func (r Report) Write(w io.Writer, limit int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	fmt.Fprintf(w, "%s: %d records\n", r.LeftLabel, r.LeftCount)
	fmt.Fprintf(w, "%s: %d records\n", r.RightLabel, r.RightCount)

	if r.Match() {
		fmt.Fprintf(w, "All records match (%d students compared)\n", r.Compared)
		return
	}

	fmt.Fprintf(w, "Found %d mismatches (%d students compared):\n", len(r.Mismatches), r.Compared)
	for i, m := range r.Mismatches {
		if i == limit {
			fmt.Fprintf(w, "  ... and %d more\n", len(r.Mismatches)-limit)
			break
		}
		fmt.Fprintf(w, "  - %s\n", r.describe(m))
	}
}

func (r Report) describe(m Mismatch) string {
	switch m.Kind {
	case KindMissingLeft:
		return fmt.Sprintf("student %s: not found in %s", m.StudentID, r.LeftLabel)
	case KindMissingRight:
		return fmt.Sprintf("student %s: not found in %s", m.StudentID, r.RightLabel)
	default:
		return fmt.Sprintf("student %s: score mismatch (%s: %q, %s: %q)", m.StudentID, r.LeftLabel, m.Left, r.RightLabel, m.Right)
	}
}
