// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/gradebook/pkg/types"
)

// Column headers of the ranking files.
var (
	FullHeader   = []string{"rank", "student_id", "year1_score", "year2_score", "composite_score", "category"}
	SimpleHeader = []string{"rank", "student_id", "composite_score"}
)

// WriteFullCSV writes every field of the ranking. Transfer students have an
// empty year1_score.
func WriteFullCSV(w io.Writer, records []types.RankedRecord) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		year1 := ""
		if r.Year1Score != nil {
			year1 = formatScore(*r.Year1Score)
		}
		rows[i] = []string{
			strconv.Itoa(r.Rank),
			r.StudentID,
			year1,
			formatScore(r.Year2Score),
			formatScore(r.CompositeScore),
			string(r.Category),
		}
	}
	return writeCSV(w, FullHeader, rows)
}

// WriteSimpleCSV writes rank, student ID, and composite score.
func WriteSimpleCSV(w io.Writer, records []types.RankedRecord) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{strconv.Itoa(r.Rank), r.StudentID, formatScore(r.CompositeScore)}
	}
	return writeCSV(w, SimpleHeader, rows)
}

// WriteScoreTable writes a two-column ID,score table in table order. A nil
// header writes data rows only, matching the headerless year-1 files.
// Records without a score are written with an empty score cell.
func WriteScoreTable(w io.Writer, t *types.YearTable, header []string) error {
	recs := t.Records()
	rows := make([][]string, len(recs))
	for i, r := range recs {
		s := ""
		if r.Score != nil {
			s = formatScore(*r.Score)
		}
		rows[i] = []string{r.StudentID, s}
	}
	return writeCSV(w, header, rows)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if header != nil {
		if err := cw.Write(header); err != nil {
			return err
		}
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// ReadRanking parses a file written by WriteFullCSV. Columns are located by
// header name so extra or reordered columns are tolerated.
func ReadRanking(r io.Reader) ([]types.RankedRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no header row", ErrMalformedRanking)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, name := range FullHeader {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedRanking, name)
		}
	}

	var records []types.RankedRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}
		rec, err := parseRankingRow(row, col)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRanking, line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRankingRow(row []string, col map[string]int) (types.RankedRecord, error) {
	cell := func(name string) string {
		i := col[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var rec types.RankedRecord
	var err error
	if rec.Rank, err = strconv.Atoi(cell("rank")); err != nil {
		return rec, fmt.Errorf("rank: %w", err)
	}
	rec.StudentID = cell("student_id")
	if rec.StudentID == "" {
		return rec, errors.New("empty student_id")
	}
	if s := cell("year1_score"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return rec, fmt.Errorf("year1_score: %w", err)
		}
		rec.Year1Score = types.Float(v)
	}
	if rec.Year2Score, err = strconv.ParseFloat(cell("year2_score"), 64); err != nil {
		return rec, fmt.Errorf("year2_score: %w", err)
	}
	if rec.CompositeScore, err = strconv.ParseFloat(cell("composite_score"), 64); err != nil {
		return rec, fmt.Errorf("composite_score: %w", err)
	}
	switch c := types.Category(cell("category")); c {
	case types.CategoryComplete, types.CategoryTransfer:
		rec.Category = c
	default:
		return rec, fmt.Errorf("unknown category %q", c)
	}
	return rec, nil
}
