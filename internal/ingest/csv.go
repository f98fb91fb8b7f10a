// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const utf8BOM = "\ufeff"

func readCSVFile(path string, b *builder) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if err := readCSV(f, b); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// readCSV feeds CSV records to b. A header row, when present, is detected
// on the first record and used to resolve column positions. Records with
// a quoting error are counted as skipped rows.
func readCSV(r io.Reader, b *builder) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	first := true
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				b.stats.Rows++
				b.stats.Skipped++
				continue
			}
			return err
		}

		if first {
			first = false
			if len(record) > 0 {
				record[0] = strings.TrimPrefix(record[0], utf8BOM)
			}
			if looksLikeHeader(record, b.layout) {
				b.stats.Rows++
				b.stats.Headers++
				b.layout = b.layout.withHeader(record)
				continue
			}
		}

		if blankRecord(record) {
			continue
		}
		b.addRow(record)
	}
}

// looksLikeHeader reports whether the first record of a file is a header:
// its ID cell carries a header label, or some cell names the ID or score
// column exactly.
func looksLikeHeader(record []string, l Layout) bool {
	if len(record) > l.IDColumn && l.isHeader(strings.TrimSpace(record[l.IDColumn])) {
		return true
	}
	for _, cell := range record {
		cell = strings.TrimSpace(cell)
		if l.ScoreHeader != "" && cell == l.ScoreHeader {
			return true
		}
		for _, label := range idHeaderLabels {
			if strings.EqualFold(cell, label) {
				return true
			}
		}
	}
	return false
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
