// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies the kind of score document.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatWord     Format = "docx"
)

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatWord, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Layout says which columns of a row hold the student ID and the score.
type Layout struct {
	// IDColumn is the zero-based column of the student ID.
	IDColumn int

	// ScoreColumn is the zero-based column of the score.
	ScoreColumn int

	// MinColumns is the fewest cells a data row may have.
	MinColumns int

	// ScoreHeader, when set and the table has a header row, selects the
	// score column by its header label instead of ScoreColumn.
	ScoreHeader string

	// NumericID treats any row whose ID cell is not all digits as a header.
	NumericID bool

	// TextFallback parses whitespace-separated text lines when a document
	// contains no table rows.
	TextFallback bool
}

// DefaultLayout returns the column layout for f. PDF and Word score sheets
// list the ID first and the score in the fourth column; Markdown and CSV
// tables are two columns wide.
func DefaultLayout(f Format) Layout {
	switch f {
	case FormatPDF, FormatWord:
		return Layout{IDColumn: 0, ScoreColumn: 3, MinColumns: 4, TextFallback: true}
	case FormatMarkdown:
		return Layout{IDColumn: 0, ScoreColumn: 1, MinColumns: 2, NumericID: true}
	default:
		return Layout{IDColumn: 0, ScoreColumn: 1, MinColumns: 2}
	}
}

// headerLabels are leading-cell prefixes that mark a header row.
var headerLabels = []string{"学号", "序号", "排名", "姓名", "student_id", "rank", "name"}

// idHeaderLabels name the student ID column in a header row.
var idHeaderLabels = []string{"学号", "student_id"}

// isHeader reports whether a row whose ID cell is id should be discarded as
// a header.
func (l Layout) isHeader(id string) bool {
	lower := strings.ToLower(id)
	for _, label := range headerLabels {
		if strings.HasPrefix(lower, label) {
			return true
		}
	}
	return l.NumericID && !isDigits(id)
}

// withHeader returns a copy of l with columns resolved from a header row.
func (l Layout) withHeader(header []string) Layout {
	for i, cell := range header {
		cell = strings.TrimSpace(cell)
		for _, label := range idHeaderLabels {
			if strings.EqualFold(cell, label) {
				l.IDColumn = i
			}
		}
		if l.ScoreHeader != "" && cell == l.ScoreHeader {
			l.ScoreColumn = i
		}
	}
	if need := max(l.IDColumn, l.ScoreColumn) + 1; need > l.MinColumns {
		l.MinColumns = need
	}
	return l
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
