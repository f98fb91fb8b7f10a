// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest reads student-ID/score tables out of CSV, Markdown, PDF,
// and Word documents.
//
// Every load produces an Outcome: either a table with row statistics or
// the reason the source could not be used. Bad rows never fail a load;
// they are skipped and counted.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pdiddy/gradebook/internal/convert"
	"github.com/pdiddy/gradebook/pkg/types"
)

var (
	// ErrFileNotFound is returned when a source path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrEmptyDataset is returned when a source yields no data rows.
	ErrEmptyDataset = errors.New("empty dataset")

	// ErrUnsupportedFormat is returned for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrNoConverter is returned when a PDF or Word source is loaded
	// without a document converter.
	ErrNoConverter = errors.New("no document converter configured")
)

// Source describes one document to ingest.
type Source struct {
	// Path is the document path.
	Path string

	// Label names the resulting table; defaults to Path.
	Label string

	// Format overrides extension-based detection.
	Format Format

	// Layout overrides DefaultLayout(Format).
	Layout *Layout
}

// Options configure a load.
type Options struct {
	// KeepMissing keeps rows with a valid ID but an empty or unparseable
	// score, with a nil score, instead of skipping them.
	KeepMissing bool

	// ScoreHeader selects the score column by header label in CSV sources
	// that do not set their own Layout.
	ScoreHeader string

	// Converter turns PDF and Word documents into Markdown.
	Converter convert.Converter

	// CacheDir receives converted Markdown.
	CacheDir string

	// Progress receives per-document conversion lines; nil discards them.
	Progress io.Writer
}

// Stats counts what happened to the rows of one source.
type Stats struct {
	Rows       int // candidate rows seen, headers included
	Headers    int // rows discarded as headers
	Accepted   int // rows added to the table
	Skipped    int // malformed rows dropped
	Missing    int // rows kept with a missing score (KeepMissing)
	Duplicates int // repeated student IDs dropped
}

// Outcome is the result of one ingestion attempt: a table on success, an
// error on failure. Consumers check Failed before using Table.
type Outcome struct {
	Source Source
	Table  *types.YearTable
	Stats  Stats
	Err    error
}

// Failed reports whether the attempt produced no usable table.
func (o Outcome) Failed() bool { return o.Err != nil }

func failure(src Source, stats Stats, err error) Outcome {
	return Outcome{Source: src, Stats: stats, Err: err}
}

// Load ingests one source.
func Load(ctx context.Context, src Source, opts Options) Outcome {
	if src.Label == "" {
		src.Label = src.Path
	}
	if src.Format == "" {
		f, err := DetectFormat(src.Path)
		if err != nil {
			return failure(src, Stats{}, err)
		}
		src.Format = f
	}

	if _, err := os.Stat(src.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return failure(src, Stats{}, fmt.Errorf("%w: %s", ErrFileNotFound, src.Path))
		}
		return failure(src, Stats{}, fmt.Errorf("checking %s: %w", src.Path, err))
	}

	layout := DefaultLayout(src.Format)
	if src.Layout != nil {
		layout = *src.Layout
	} else if src.Format == FormatCSV {
		layout.ScoreHeader = opts.ScoreHeader
	}

	b := newBuilder(src.Label, layout, opts.KeepMissing)
	var err error
	switch src.Format {
	case FormatCSV:
		err = readCSVFile(src.Path, b)
	case FormatMarkdown:
		err = readMarkdownFile(src.Path, b)
	case FormatPDF, FormatWord:
		err = readDocument(ctx, src.Path, b, opts)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, src.Format)
	}
	if err != nil {
		return failure(src, b.stats, err)
	}

	if b.table.Len() == 0 {
		return failure(src, b.stats, fmt.Errorf("%w: no score rows in %s", ErrEmptyDataset, src.Path))
	}
	return Outcome{Source: src, Table: b.table, Stats: b.stats}
}

// builder accumulates rows into a table according to a layout.
type builder struct {
	layout      Layout
	keepMissing bool
	table       *types.YearTable
	stats       Stats
}

func newBuilder(label string, layout Layout, keepMissing bool) *builder {
	return &builder{
		layout:      layout,
		keepMissing: keepMissing,
		table:       types.NewYearTable(label),
	}
}

// addRow classifies and, when valid, stores one row of cells.
func (b *builder) addRow(cells []string) {
	b.stats.Rows++

	if len(cells) <= b.layout.IDColumn {
		b.stats.Skipped++
		return
	}

	id := strings.TrimSpace(cells[b.layout.IDColumn])
	if id == "" {
		b.stats.Skipped++
		return
	}
	if b.layout.isHeader(id) {
		b.stats.Headers++
		return
	}

	// A short row has no score cell. With keepMissing the student is kept
	// with a nil score so ranking reports it instead of dropping it.
	short := len(cells) < b.layout.MinColumns || len(cells) <= b.layout.ScoreColumn
	if short && !b.keepMissing {
		b.stats.Skipped++
		return
	}

	var raw string
	if !short {
		raw = strings.TrimSpace(cells[b.layout.ScoreColumn])
	}
	rec := types.ScoreRecord{StudentID: id, Raw: raw}
	if v, ok := parseScore(raw); ok {
		rec.Score = types.Float(v)
	} else if !b.keepMissing {
		b.stats.Skipped++
		return
	}

	if !b.table.Add(rec) {
		b.stats.Duplicates++
		return
	}
	if rec.Score == nil {
		b.stats.Missing++
	}
	b.stats.Accepted++
}

// parseScore parses a finite decimal score.
func parseScore(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
