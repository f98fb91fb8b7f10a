// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// separatorCell matches the dashes row under a pipe-table header.
var separatorCell = regexp.MustCompile(`^:?-+:?$`)

func readMarkdownFile(path string, b *builder) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return parseMarkdown(strings.TrimPrefix(string(data), utf8BOM), b)
}

// parseMarkdown feeds pipe-table rows from text to b. When the text holds
// no table rows and the layout allows it, whitespace-separated lines that
// start with a numeric ID are used instead.
func parseMarkdown(text string, b *builder) error {
	var tableRows int
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		cells, ok := pipeCells(sc.Text())
		if !ok || isSeparatorRow(cells) {
			continue
		}
		tableRows++
		if len(cells) > b.layout.IDColumn && b.layout.isHeader(strings.TrimSpace(cells[b.layout.IDColumn])) {
			b.stats.Rows++
			b.stats.Headers++
			if b.layout.ScoreHeader != "" {
				b.layout = b.layout.withHeader(cells)
			}
			continue
		}
		b.addRow(cells)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scanning markdown: %w", err)
	}

	if tableRows == 0 && b.layout.TextFallback {
		parseTextLines(text, b)
	}
	return nil
}

// pipeCells splits a "| a | b |" line into trimmed cells.
func pipeCells(line string) ([]string, bool) {
	line = strings.TrimSpace(line)
	if len(line) < 2 || !strings.HasPrefix(line, "|") || !strings.HasSuffix(line, "|") {
		return nil, false
	}
	parts := strings.Split(line[1:len(line)-1], "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, true
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if !separatorCell.MatchString(c) {
			return false
		}
	}
	return len(cells) > 0
}

// parseTextLines handles converter output that lost the table structure.
// Only lines with enough fields and an all-digit first field count as rows.
func parseTextLines(text string, b *builder) {
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) < b.layout.MinColumns || !isDigits(fields[b.layout.IDColumn]) {
			continue
		}
		b.addRow(fields)
	}
}
