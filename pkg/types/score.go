// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the gradebook pipeline:
// per-year score tables, credit weights, ranked records, and the
// configuration structs each stage reads.
package types

import (
	"math"
	"sort"
)

// ScoreRecord is one student's score for a single academic period.
type ScoreRecord struct {
	// StudentID is the opaque student identifier. It is never parsed as a
	// number so leading zeros and other characters survive.
	StudentID string `json:"student_id" yaml:"student_id"`

	// Score is the numeric score; nil when the source cell was empty or
	// could not be parsed.
	Score *float64 `json:"score" yaml:"score"`

	// Raw is the score cell exactly as it appeared in the source document.
	Raw string `json:"-" yaml:"-"`
}

// HasScore reports whether the record carries a usable numeric score.
func (r ScoreRecord) HasScore() bool {
	return r.Score != nil && !math.IsNaN(*r.Score) && !math.IsInf(*r.Score, 0)
}

// Float returns a pointer to v. It keeps table literals in tests and
// parsers short.
func Float(v float64) *float64 {
	return &v
}

// YearTable maps student IDs to score records for one academic period. It
// keeps insertion order, which is the "original order" used when ranking
// ties are left unbroken.
type YearTable struct {
	// Label names the period or document the table came from (e.g. "23-24").
	Label string

	records []ScoreRecord
	index   map[string]int
}

// NewYearTable returns an empty table with the given label.
func NewYearTable(label string) *YearTable {
	return &YearTable{Label: label, index: make(map[string]int)}
}

// YearTableFrom builds a table from a map. Map iteration order is random, so
// records are added in ascending student ID order.
func YearTableFrom(label string, scores map[string]float64) *YearTable {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	t := NewYearTable(label)
	for _, id := range ids {
		t.Add(ScoreRecord{StudentID: id, Score: Float(scores[id])})
	}
	return t
}

// Add appends rec. It returns false and leaves the table unchanged when the
// student ID is already present: the first occurrence wins.
func (t *YearTable) Add(rec ScoreRecord) bool {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if _, ok := t.index[rec.StudentID]; ok {
		return false
	}
	t.index[rec.StudentID] = len(t.records)
	t.records = append(t.records, rec)
	return true
}

// Get returns the record for id.
func (t *YearTable) Get(id string) (ScoreRecord, bool) {
	if t == nil {
		return ScoreRecord{}, false
	}
	i, ok := t.index[id]
	if !ok {
		return ScoreRecord{}, false
	}
	return t.records[i], true
}

// Has reports whether id is present.
func (t *YearTable) Has(id string) bool {
	_, ok := t.Get(id)
	return ok
}

// Len returns the number of records. A nil table is empty.
func (t *YearTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns a copy of the records in table order.
func (t *YearTable) Records() []ScoreRecord {
	if t == nil {
		return nil
	}
	out := make([]ScoreRecord, len(t.records))
	copy(out, t.records)
	return out
}

// IDs returns the student IDs in table order.
func (t *YearTable) IDs() []string {
	if t == nil {
		return nil
	}
	ids := make([]string, len(t.records))
	for i, r := range t.records {
		ids[i] = r.StudentID
	}
	return ids
}

// SortByID reorders the table by student ID ascending (string order).
func (t *YearTable) SortByID() {
	sort.SliceStable(t.records, func(i, j int) bool {
		return t.records[i].StudentID < t.records[j].StudentID
	})
	for i, r := range t.records {
		t.index[r.StudentID] = i
	}
}
