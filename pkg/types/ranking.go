// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidWeightConfiguration is returned when credit weights do not form
// a normalized weighted mean (total must equal year1 + year2).
var ErrInvalidWeightConfiguration = errors.New("invalid weight configuration")

// weightTolerance bounds the floating-point slack allowed between Total and
// Year1 + Year2.
const weightTolerance = 1e-6

// Default credit totals for the two ranked years.
const (
	DefaultYear1Credits = 51.8
	DefaultYear2Credits = 48.3
	DefaultTotalCredits = 100.1
)

// CreditWeights holds the credit totals used to weight each year's score.
// Build it with NewCreditWeights so the sum invariant is checked once.
type CreditWeights struct {
	Year1 float64 `json:"year1" yaml:"year1" mapstructure:"year1"`
	Year2 float64 `json:"year2" yaml:"year2" mapstructure:"year2"`
	Total float64 `json:"total" yaml:"total" mapstructure:"total"`
}

// DefaultCreditWeights returns the built-in weights (51.8 / 48.3 / 100.1).
func DefaultCreditWeights() CreditWeights {
	return CreditWeights{
		Year1: DefaultYear1Credits,
		Year2: DefaultYear2Credits,
		Total: DefaultTotalCredits,
	}
}

// NewCreditWeights validates and returns a CreditWeights value.
func NewCreditWeights(year1, year2, total float64) (CreditWeights, error) {
	w := CreditWeights{Year1: year1, Year2: year2, Total: total}
	if err := w.Validate(); err != nil {
		return CreditWeights{}, err
	}
	return w, nil
}

// Validate checks that every component is a positive finite number and that
// Total equals Year1 + Year2 within 1e-6.
func (w CreditWeights) Validate() error {
	parts := []struct {
		name string
		v    float64
	}{{"year1", w.Year1}, {"year2", w.Year2}, {"total", w.Total}}
	for _, p := range parts {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) || p.v <= 0 {
			return fmt.Errorf("%w: %s credits must be positive, got %v", ErrInvalidWeightConfiguration, p.name, p.v)
		}
	}
	if math.Abs(w.Total-(w.Year1+w.Year2)) > weightTolerance {
		return fmt.Errorf("%w: total %v != year1 %v + year2 %v",
			ErrInvalidWeightConfiguration, w.Total, w.Year1, w.Year2)
	}
	return nil
}

// Year1Share returns the fraction of the total carried by year 1.
func (w CreditWeights) Year1Share() float64 { return w.Year1 / w.Total }

// Year2Share returns the fraction of the total carried by year 2.
func (w CreditWeights) Year2Share() float64 { return w.Year2 / w.Total }

// Category classifies a ranked student by the scores available.
type Category string

const (
	// CategoryComplete marks a student with both year-1 and year-2 scores.
	CategoryComplete Category = "Complete"
	// CategoryTransfer marks a student with a year-2 score only.
	CategoryTransfer Category = "Transfer"
)

// RankedRecord is one row of the final ranking.
type RankedRecord struct {
	Rank           int      `json:"rank" yaml:"rank"`
	StudentID      string   `json:"student_id" yaml:"student_id"`
	Year1Score     *float64 `json:"year1_score" yaml:"year1_score"`
	Year2Score     float64  `json:"year2_score" yaml:"year2_score"`
	CompositeScore float64  `json:"composite_score" yaml:"composite_score"`
	Category       Category `json:"category" yaml:"category"`
}

// TieBreak selects how records with exactly equal composite scores are
// ordered.
type TieBreak string

const (
	// TieBreakStable keeps the merge order (complete students first, each
	// group in year-2 table order).
	TieBreakStable TieBreak = "stable"
	// TieBreakStudentID orders ties by student ID ascending.
	TieBreakStudentID TieBreak = "student_id"
	// TieBreakYear2 orders ties by year-2 score descending, then merge order.
	TieBreakYear2 TieBreak = "year2"
)

// ParseTieBreak converts a config or flag value to a TieBreak. The empty
// string selects TieBreakStable.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(s) {
	case "", TieBreakStable:
		return TieBreakStable, nil
	case TieBreakStudentID, TieBreakYear2:
		return TieBreak(s), nil
	default:
		return "", fmt.Errorf("unknown tie-break %q: use stable, student_id, or year2", s)
	}
}
