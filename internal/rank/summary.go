// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"sort"

	"github.com/pdiddy/gradebook/pkg/types"
)

// Summary holds counts and composite-score statistics for a ranking.
type Summary struct {
	Total    int
	Complete int
	Transfer int
	Max      float64
	Min      float64
	Mean     float64
	Median   float64
}

// Summarize computes a Summary. Statistics are zero for an empty ranking.
func Summarize(records []types.RankedRecord) Summary {
	s := Summary{Total: len(records)}
	if len(records) == 0 {
		return s
	}

	scores := make([]float64, len(records))
	var sum float64
	for i, r := range records {
		switch r.Category {
		case types.CategoryComplete:
			s.Complete++
		case types.CategoryTransfer:
			s.Transfer++
		}
		scores[i] = r.CompositeScore
		sum += r.CompositeScore
	}

	sort.Float64s(scores)
	s.Min = scores[0]
	s.Max = scores[len(scores)-1]
	s.Mean = sum / float64(len(scores))

	mid := len(scores) / 2
	if len(scores)%2 == 1 {
		s.Median = scores[mid]
	} else {
		s.Median = (scores[mid-1] + scores[mid]) / 2
	}
	return s
}

// Top returns at most n leading records. The returned slice shares storage
// with records.
func Top(records []types.RankedRecord, n int) []types.RankedRecord {
	if n < 0 {
		n = 0
	}
	if n > len(records) {
		n = len(records)
	}
	return records[:n]
}
