// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compare

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gradebook/pkg/types"
)

// table builds a YearTable from id/raw pairs, parsing raw as the score when
// it is numeric.
func table(label string, pairs ...string) *types.YearTable {
	t := types.NewYearTable(label)
	for i := 0; i+1 < len(pairs); i += 2 {
		rec := types.ScoreRecord{StudentID: pairs[i], Raw: pairs[i+1]}
		var v float64
		if _, err := fmt.Sscan(pairs[i+1], &v); err == nil {
			rec.Score = types.Float(v)
		}
		t.Add(rec)
	}
	return t
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name  string
		left  *types.YearTable
		right *types.YearTable
		opts  Options
		want  []Mismatch
		count int
	}{
		{
			name:  "identical",
			left:  table("pdf", "1001", "88.5", "1002", "79"),
			right: table("docx", "1002", "79", "1001", "88.5"),
			opts:  Options{Mode: types.CompareExact},
			count: 2,
		},
		{
			name:  "exact mode sees formatting differences",
			left:  table("pdf", "1001", "88.50"),
			right: table("docx", "1001", "88.5"),
			opts:  Options{Mode: types.CompareExact},
			want:  []Mismatch{{StudentID: "1001", Kind: KindValue, Left: "88.50", Right: "88.5"}},
			count: 1,
		},
		{
			name:  "tolerance mode ignores formatting",
			left:  table("md", "1001", "88.50"),
			right: table("csv", "1001", "88.5"),
			opts:  Options{Mode: types.CompareTolerance, Tolerance: DefaultTolerance},
			count: 1,
		},
		{
			name:  "tolerance boundary",
			left:  table("md", "1001", "80", "1002", "80"),
			right: table("csv", "1001", "80.0005", "1002", "80.01"),
			opts:  Options{Mode: types.CompareTolerance, Tolerance: DefaultTolerance},
			want:  []Mismatch{{StudentID: "1002", Kind: KindValue, Left: "80", Right: "80.01"}},
			count: 2,
		},
		{
			name:  "zero tolerance requires equal values",
			left:  table("md", "1001", "80", "1002", "88.50"),
			right: table("csv", "1001", "80.0005", "1002", "88.5"),
			opts:  Options{Mode: types.CompareTolerance},
			want:  []Mismatch{{StudentID: "1001", Kind: KindValue, Left: "80", Right: "80.0005"}},
			count: 2,
		},
		{
			name:  "missing on either side in id order",
			left:  table("md", "1003", "70", "1001", "90"),
			right: table("csv", "1002", "60", "1001", "90"),
			want: []Mismatch{
				{StudentID: "1002", Kind: KindMissingLeft, Right: "60"},
				{StudentID: "1003", Kind: KindMissingRight, Left: "70"},
			},
			count: 3,
		},
		{
			name:  "empty score against a number",
			left:  table("pdf", "1001", ""),
			right: table("docx", "1001", "90"),
			opts:  Options{Mode: types.CompareTolerance, Tolerance: DefaultTolerance},
			want:  []Mismatch{{StudentID: "1001", Kind: KindValue, Left: "", Right: "90"}},
			count: 1,
		},
		{
			name:  "matching non-numeric text",
			left:  table("pdf", "1001", "缓考"),
			right: table("docx", "1001", "缓考"),
			opts:  Options{Mode: types.CompareTolerance, Tolerance: DefaultTolerance},
			count: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Compare(tt.left, tt.right, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.Mismatches)
			assert.Equal(t, tt.count, report.Compared)
			assert.Equal(t, len(tt.want) == 0, report.Match())
		})
	}
}

func TestCompareEmpty(t *testing.T) {
	_, err := Compare(types.NewYearTable("a"), table("b", "1", "2"), Options{})
	assert.ErrorIs(t, err, ErrEmptyDataset)
	assert.ErrorContains(t, err, "a")

	_, err = Compare(table("a", "1", "2"), nil, Options{})
	assert.ErrorIs(t, err, ErrEmptyDataset)
	assert.ErrorContains(t, err, "right")
}

func TestCompareNegativeTolerance(t *testing.T) {
	_, err := Compare(table("a", "1", "2"), table("b", "1", "2"), Options{Mode: types.CompareTolerance, Tolerance: -1})
	assert.ErrorContains(t, err, "invalid tolerance")
}

func TestResolveMode(t *testing.T) {
	assert.Equal(t, types.CompareExact, ResolveMode(types.CompareAuto, true))
	assert.Equal(t, types.CompareTolerance, ResolveMode(types.CompareAuto, false))
	assert.Equal(t, types.CompareTolerance, ResolveMode("", false))
	assert.Equal(t, types.CompareTolerance, ResolveMode(types.CompareTolerance, true))
	assert.Equal(t, types.CompareExact, ResolveMode(types.CompareExact, false))
}

func TestReportWrite(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		report, err := Compare(table("pdf", "1", "2"), table("docx", "1", "2"), Options{})
		require.NoError(t, err)

		var buf bytes.Buffer
		report.Write(&buf, 0)
		assert.Contains(t, buf.String(), "All records match (1 students compared)")
	})

	t.Run("limit", func(t *testing.T) {
		var pairs []string
		for i := range 25 {
			pairs = append(pairs, fmt.Sprintf("%04d", i), "50")
		}
		report, err := Compare(table("md", pairs...), table("csv", "9999", "1"), Options{})
		require.NoError(t, err)
		assert.Equal(t, 25, report.Count(KindMissingRight))
		assert.Equal(t, 1, report.Count(KindMissingLeft))

		var buf bytes.Buffer
		report.Write(&buf, 20)
		out := buf.String()
		assert.Contains(t, out, "Found 26 mismatches")
		assert.Equal(t, 20, strings.Count(out, "  - "))
		assert.Contains(t, out, "... and 6 more")
		assert.Contains(t, out, "student 0000: not found in csv")
	})
}
