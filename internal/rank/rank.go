// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank merges two years of scores into a credit-weighted composite
// and orders students by it.
//
// Rank is a pure function: it reads its inputs, never mutates them, and
// returns a freshly built slice. Writing the result is the sink's job.
package rank

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/pdiddy/gradebook/pkg/types"
)

// ErrMissingRequiredScore is returned when a year-2 record has no usable
// numeric score.
var ErrMissingRequiredScore = errors.New("missing required score")

// MissingScoreError names the student whose year-2 score is missing.
type MissingScoreError struct {
	StudentID string
	Raw       string
}

func (e *MissingScoreError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("%v for student %s (got %q)", ErrMissingRequiredScore, e.StudentID, e.Raw)
	}
	return fmt.Sprintf("%v for student %s", ErrMissingRequiredScore, e.StudentID)
}

// Unwrap lets errors.Is match ErrMissingRequiredScore.
func (e *MissingScoreError) Unwrap() error { return ErrMissingRequiredScore }

// Options controls ordering of the ranking.
type Options struct {
	// TieBreak orders records with equal composite scores. The zero value
	// keeps merge order.
	TieBreak types.TieBreak
}

// Round2 rounds v to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Composite returns the credit-weighted mean of the two years, rounded to
// two decimals.
func Composite(year1, year2 float64, w types.CreditWeights) float64 {
	return Round2((year1*w.Year1 + year2*w.Year2) / w.Total)
}

// Rank builds the ranked sequence for every student in year2. Students with
// a usable year-1 score are Complete and get the weighted composite; the
// rest are Transfer and keep their year-2 score as the composite. A nil
// year1 is treated as empty.
//
// Records are merged complete-first, each group in year-2 order, then
// sorted by composite descending with a stable sort, so TieBreakStable
// preserves that merge order among equal scores.
func Rank(year1, year2 *types.YearTable, w types.CreditWeights, opts Options) ([]types.RankedRecord, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	var complete, transfer []types.RankedRecord
	for _, rec := range year2.Records() {
		if !rec.HasScore() {
			return nil, &MissingScoreError{StudentID: rec.StudentID, Raw: rec.Raw}
		}
		y2 := *rec.Score

		if prev, ok := year1.Get(rec.StudentID); ok && prev.HasScore() {
			y1 := *prev.Score
			complete = append(complete, types.RankedRecord{
				StudentID:      rec.StudentID,
				Year1Score:     types.Float(y1),
				Year2Score:     y2,
				CompositeScore: Composite(y1, y2, w),
				Category:       types.CategoryComplete,
			})
			continue
		}

		transfer = append(transfer, types.RankedRecord{
			StudentID:      rec.StudentID,
			Year2Score:     y2,
			CompositeScore: Round2(y2),
			Category:       types.CategoryTransfer,
		})
	}

	records := make([]types.RankedRecord, 0, len(complete)+len(transfer))
	records = append(records, complete...)
	records = append(records, transfer...)

	sort.SliceStable(records, less(records, opts.TieBreak))

	for i := range records {
		records[i].Rank = i + 1
	}
	return records, nil
}

func less(records []types.RankedRecord, tb types.TieBreak) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := records[i], records[j]
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		switch tb {
		case types.TieBreakStudentID:
			return a.StudentID < b.StudentID
		case types.TieBreakYear2:
			return a.Year2Score > b.Year2Score
		}
		return false
	}
}
