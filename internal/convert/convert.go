// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns PDF and Word score sheets into Markdown so the
// ingest stage can read their tables. Converted files are cached with a
// small YAML frontmatter block recording where they came from.
package convert

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

const frontmatterDelim = "---\n"

// Converter transforms a document into Markdown text.
type Converter interface {
	// Convert reads the document at path and returns its Markdown content.
	Convert(ctx context.Context, path string) (string, error)
}

// Status reports what ConvertDocument did.
type Status string

const (
	StatusConverted Status = "converted"
	StatusCached    Status = "cached"
	StatusFailed    Status = "failed"
)

// Frontmatter is the metadata block written at the top of cached Markdown.
type Frontmatter struct {
	Source      string `yaml:"source"`
	ConvertedAt string `yaml:"converted_at"`
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Cached    int
	Failed    int
}

// Total returns the number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Cached + r.Failed
}

// HasFailures reports whether any document failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// CachePath returns where the Markdown for docPath is stored under cacheDir.
// The name carries a hash of the absolute document path, so documents with
// the same base name in different directories never share an entry.
func CachePath(docPath, cacheDir string) string {
	sum := sha256.Sum256([]byte(absPath(docPath)))
	key := hex.EncodeToString(sum[:])[:12]
	return filepath.Join(cacheDir, filepath.Base(docPath)+"-"+key+".md")
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// ConvertDocument converts docPath to Markdown under cacheDir and returns
// the cached file path. A cache entry is reused only when it is not older
// than the document and its frontmatter names the same document.
func ConvertDocument(ctx context.Context, c Converter, docPath, cacheDir string, w io.Writer) (string, Status, error) {
	mdPath := CachePath(docPath, cacheDir)
	name := filepath.Base(docPath)

	docInfo, err := os.Stat(docPath)
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", name, err)
		return "", StatusFailed, fmt.Errorf("reading %s: %w", docPath, err)
	}
	if cacheFresh(mdPath, docPath, docInfo) {
		fmt.Fprintf(w, "cached:    %s\n", name)
		return mdPath, StatusCached, nil
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", name, err)
		return "", StatusFailed, fmt.Errorf("creating cache directory: %w", err)
	}

	body, err := c.Convert(ctx, docPath)
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", name, err)
		return "", StatusFailed, err
	}

	content, err := addFrontmatter(docPath, body)
	if err != nil {
		return "", StatusFailed, err
	}
	if err := os.WriteFile(mdPath, content, 0o644); err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", name, err)
		return "", StatusFailed, fmt.Errorf("writing %s: %w", mdPath, err)
	}

	fmt.Fprintf(w, "converted: %s\n", name)
	return mdPath, StatusConverted, nil
}

func cacheFresh(mdPath, docPath string, docInfo os.FileInfo) bool {
	mdInfo, err := os.Stat(mdPath)
	if err != nil || mdInfo.ModTime().Before(docInfo.ModTime()) {
		return false
	}
	fm, _, err := ReadCached(mdPath)
	if err != nil || fm.Source == "" {
		return false
	}
	return absPath(fm.Source) == absPath(docPath)
}

// ConvertBatch converts every document, printing per-file status to w and
// returning a summary.
func ConvertBatch(ctx context.Context, c Converter, docPaths []string, cacheDir string, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range docPaths {
		_, status, _ := ConvertDocument(ctx, c, p, cacheDir, w)
		switch status {
		case StatusConverted:
			result.Converted++
		case StatusCached:
			result.Cached++
		case StatusFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d cached, %d failed (total: %d)\n",
		result.Converted, result.Cached, result.Failed, result.Total())
	return result
}

// ReadCached reads a cached Markdown file and splits off its frontmatter.
// Files without frontmatter are returned whole with a zero Frontmatter.
func ReadCached(mdPath string) (Frontmatter, string, error) {
	data, err := os.ReadFile(mdPath)
	if err != nil {
		return Frontmatter{}, "", fmt.Errorf("reading %s: %w", mdPath, err)
	}
	return SplitFrontmatter(string(data))
}

// SplitFrontmatter separates a leading YAML frontmatter block from the
// Markdown body.
func SplitFrontmatter(content string) (Frontmatter, string, error) {
	var fm Frontmatter
	if !strings.HasPrefix(content, frontmatterDelim) {
		return fm, content, nil
	}
	rest := content[len(frontmatterDelim):]
	end := strings.Index(rest, "\n"+frontmatterDelim)
	if end < 0 {
		return fm, content, nil
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return fm, "", fmt.Errorf("parsing frontmatter: %w", err)
	}
	body := rest[end+1+len(frontmatterDelim):]
	return fm, strings.TrimLeft(body, "\n"), nil
}

func addFrontmatter(docPath, body string) ([]byte, error) {
	fm := Frontmatter{
		Source:      absPath(docPath),
		ConvertedAt: time.Now().UTC().Format(time.RFC3339),
	}
	meta, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var b bytes.Buffer
	b.WriteString(frontmatterDelim)
	b.Write(meta)
	b.WriteString(frontmatterDelim)
	b.WriteString("\n")
	b.WriteString(body)
	return b.Bytes(), nil
}
