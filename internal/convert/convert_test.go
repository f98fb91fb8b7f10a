// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConverter returns canned Markdown or an error and counts calls.
type fakeConverter struct {
	output string
	err    error
	calls  int
}

func (f *fakeConverter) Convert(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

// setupDoc creates a fake document and returns its path and a cache dir.
func setupDoc(t *testing.T, name string) (docPath, cacheDir string) {
	t.Helper()
	dir := t.TempDir()
	docPath = filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(docPath, []byte("fake document"), 0o644))
	return docPath, filepath.Join(dir, "cache")
}

// writeCache stores a fresh cache entry for docPath whose frontmatter names
// source.
func writeCache(t *testing.T, docPath, cacheDir, source string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(cacheDir, 0o755))
	content, err := addFrontmatter(source, "existing\n")
	require.NoError(t, err)
	mdPath := CachePath(docPath, cacheDir)
	require.NoError(t, os.WriteFile(mdPath, content, 0o644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(mdPath, future, future))
}

func TestConvertDocument(t *testing.T) {
	tests := []struct {
		name       string
		converter  *fakeConverter
		preCreate  bool
		wantStatus Status
		wantLog    string
		wantCalls  int
		wantErr    bool
	}{
		{
			name:       "successful conversion",
			converter:  &fakeConverter{output: "| 学号 | 姓名 | 班级 | 智育成绩 |\n"},
			wantStatus: StatusConverted,
			wantLog:    "converted:",
			wantCalls:  1,
		},
		{
			name:       "reuse fresh cache",
			converter:  &fakeConverter{output: "should not be called"},
			preCreate:  true,
			wantStatus: StatusCached,
			wantLog:    "cached:",
		},
		{
			name:       "conversion failure",
			converter:  &fakeConverter{err: errors.New("container crashed")},
			wantStatus: StatusFailed,
			wantLog:    "failed:",
			wantCalls:  1,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docPath, cacheDir := setupDoc(t, "scores.pdf")
			if tt.preCreate {
				writeCache(t, docPath, cacheDir, docPath)
			}

			var log bytes.Buffer
			mdPath, status, err := ConvertDocument(context.Background(), tt.converter, docPath, cacheDir, &log)

			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, log.String(), tt.wantLog)
			assert.Equal(t, tt.wantCalls, tt.converter.calls)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, CachePath(docPath, cacheDir), mdPath)
		})
	}
}

func TestCachePathSeparatesDirectories(t *testing.T) {
	cacheDir := t.TempDir()
	a := CachePath(filepath.Join("23-24", "scores.pdf"), cacheDir)
	b := CachePath(filepath.Join("24-25", "scores.pdf"), cacheDir)
	assert.NotEqual(t, a, b)
	assert.Equal(t, cacheDir, filepath.Dir(a))
	assert.True(t, strings.HasPrefix(filepath.Base(a), "scores.pdf-"))
	assert.Equal(t, a, CachePath(filepath.Join("23-24", "scores.pdf"), cacheDir))
}

func TestConvertDocumentSameNameDifferentDirs(t *testing.T) {
	root := t.TempDir()
	cacheDir := filepath.Join(root, "cache")
	first := filepath.Join(root, "23-24", "scores.pdf")
	second := filepath.Join(root, "24-25", "scores.pdf")
	for _, p := range []string{first, second} {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("doc"), 0o644))
	}
	conv := &selectiveConverter{outputs: map[string]string{
		first:  "| 1001 | a | b | 80 |\n",
		second: "| 1001 | a | b | 95 |\n",
	}}

	mdFirst, status, err := ConvertDocument(context.Background(), conv, first, cacheDir, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, StatusConverted, status)
	mdSecond, status, err := ConvertDocument(context.Background(), conv, second, cacheDir, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, StatusConverted, status)
	assert.NotEqual(t, mdFirst, mdSecond)

	_, body, err := ReadCached(mdSecond)
	require.NoError(t, err)
	assert.Contains(t, body, "95")

	_, status, err = ConvertDocument(context.Background(), conv, first, cacheDir, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, StatusCached, status)
}

func TestConvertDocumentRejectsForeignCacheEntry(t *testing.T) {
	docPath, cacheDir := setupDoc(t, "scores.pdf")
	writeCache(t, docPath, cacheDir, filepath.Join(t.TempDir(), "other", "scores.pdf"))
	conv := &fakeConverter{output: "| 1001 | a | b | 95 |\n"}

	mdPath, status, err := ConvertDocument(context.Background(), conv, docPath, cacheDir, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, StatusConverted, status)
	assert.Equal(t, 1, conv.calls)

	fm, body, err := ReadCached(mdPath)
	require.NoError(t, err)
	assert.Equal(t, docPath, fm.Source)
	assert.Equal(t, conv.output, body)
}

func TestConvertDocumentMissingSource(t *testing.T) {
	conv := &fakeConverter{output: "x"}
	_, status, err := ConvertDocument(context.Background(), conv, filepath.Join(t.TempDir(), "nope.docx"), t.TempDir(), io.Discard)
	assert.Equal(t, StatusFailed, status)
	assert.Error(t, err)
	assert.Zero(t, conv.calls)
}

func TestConvertDocumentFrontmatterRoundTrip(t *testing.T) {
	docPath, cacheDir := setupDoc(t, "scores.docx")
	conv := &fakeConverter{output: "| 2023211001 | 张三 | 1班 | 88.5 |\n"}

	mdPath, _, err := ConvertDocument(context.Background(), conv, docPath, cacheDir, io.Discard)
	require.NoError(t, err)

	raw, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "---\n"), "output should start with frontmatter")

	fm, body, err := ReadCached(mdPath)
	require.NoError(t, err)
	assert.Equal(t, docPath, fm.Source)
	assert.NotEmpty(t, fm.ConvertedAt)
	assert.Equal(t, conv.output, body)
}

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantSource string
		wantBody   string
		wantErr    bool
	}{
		{
			name:     "no frontmatter",
			content:  "| a | b |\n",
			wantBody: "| a | b |\n",
		},
		{
			name:       "frontmatter and body",
			content:    "---\nsource: a.pdf\nconverted_at: \"2026-01-01T00:00:00Z\"\n---\n\nbody\n",
			wantSource: "a.pdf",
			wantBody:   "body\n",
		},
		{
			name:     "unterminated frontmatter is treated as body",
			content:  "---\nsource: a.pdf\n",
			wantBody: "---\nsource: a.pdf\n",
		},
		{
			name:    "invalid yaml",
			content: "---\n:::bad\n---\nbody",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, err := SplitFrontmatter(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSource, fm.Source)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestConvertBatch(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	var paths []string
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("doc"), 0o644))
		paths = append(paths, p)
	}

	// Pre-create a fresh cache entry for b.
	writeCache(t, paths[1], cacheDir, paths[1])

	conv := &selectiveConverter{
		outputs: map[string]string{paths[0]: "# A"},
		errors:  map[string]error{paths[2]: errors.New("bad pdf")},
	}

	var log bytes.Buffer
	result := ConvertBatch(context.Background(), conv, paths, cacheDir, &log)

	assert.Equal(t, 1, result.Converted)
	assert.Equal(t, 1, result.Cached)
	assert.Equal(t, 1, result.Failed)
	assert.True(t, result.HasFailures())
	assert.Equal(t, 3, result.Total())
	assert.Contains(t, log.String(), "Batch summary:")
}

// selectiveConverter returns different results per file path.
type selectiveConverter struct {
	outputs map[string]string
	errors  map[string]error
}

func (s *selectiveConverter) Convert(_ context.Context, path string) (string, error) {
	if err, ok := s.errors[path]; ok {
		return "", err
	}
	if out, ok := s.outputs[path]; ok {
		return out, nil
	}
	return "", errors.New("unexpected path: " + path)
}
