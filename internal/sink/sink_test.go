// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gradebook/pkg/types"
)

func sampleRanking() []types.RankedRecord {
	return []types.RankedRecord{
		{Rank: 1, StudentID: "1003", Year2Score: 92.4, CompositeScore: 92.4, Category: types.CategoryTransfer},
		{Rank: 2, StudentID: "1001", Year1Score: types.Float(80), Year2Score: 85.25, CompositeScore: 82.54, Category: types.CategoryComplete},
		{Rank: 3, StudentID: "0002", Year1Score: types.Float(70.5), Year2Score: 60, CompositeScore: 65.43, Category: types.CategoryComplete},
	}
}

func TestWriteFullCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFullCSV(&buf, sampleRanking()))

	want := utf8BOM +
		"rank,student_id,year1_score,year2_score,composite_score,category\n" +
		"1,1003,,92.4,92.4,Transfer\n" +
		"2,1001,80,85.25,82.54,Complete\n" +
		"3,0002,70.5,60,65.43,Complete\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSimpleCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSimpleCSV(&buf, sampleRanking()))

	want := utf8BOM +
		"rank,student_id,composite_score\n" +
		"1,1003,92.4\n" +
		"2,1001,82.54\n" +
		"3,0002,65.43\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteScoreTable(t *testing.T) {
	tbl := types.NewYearTable("23-24")
	tbl.Add(types.ScoreRecord{StudentID: "1002", Score: types.Float(88.5)})
	tbl.Add(types.ScoreRecord{StudentID: "1001"})

	var buf bytes.Buffer
	require.NoError(t, WriteScoreTable(&buf, tbl, nil))
	assert.Equal(t, utf8BOM+"1002,88.5\n1001,\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteScoreTable(&buf, tbl, []string{"学号", "课程成绩"}))
	assert.True(t, strings.HasPrefix(buf.String(), utf8BOM+"学号,课程成绩\n"))
}

func TestReadRankingRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFullCSV(&buf, sampleRanking()))

	got, err := ReadRanking(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleRanking(), got)
}

func TestReadRankingErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "empty", content: "", want: "no header row"},
		{name: "missing column", content: "rank,student_id\n1,1001\n", want: `missing column "year1_score"`},
		{name: "bad rank", content: "rank,student_id,year1_score,year2_score,composite_score,category\nx,1,,1,1,Transfer\n", want: "line 2: rank"},
		{name: "bad category", content: "rank,student_id,year1_score,year2_score,composite_score,category\n1,1,,1,1,Other\n", want: "unknown category"},
		{name: "empty id", content: "rank,student_id,year1_score,year2_score,composite_score,category\n1,,,1,1,Transfer\n", want: "empty student_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRanking(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedRanking)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleRanking()))
	out := buf.String()

	// Keys are sorted, so 0002 comes first.
	assert.Less(t, strings.Index(out, `"0002"`), strings.Index(out, `"1001"`))
	assert.Less(t, strings.Index(out, `"1001"`), strings.Index(out, `"1003"`))
	assert.Contains(t, out, `"year1_score": null`)
	assert.Contains(t, out, `"composite_score": 82.54`)

	idx, err := ReadJSON(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, idx, 3)

	rec, err := idx.Lookup("1003")
	require.NoError(t, err)
	assert.Nil(t, rec.Year1Score)
	assert.Equal(t, types.CategoryTransfer, rec.Category)

	_, err = idx.Lookup("9999")
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestReadJSONMalformed(t *testing.T) {
	_, err := ReadJSON(strings.NewReader("[1,2"))
	assert.ErrorIs(t, err, ErrMalformedRanking)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, sampleRanking()[:1]))
	out := buf.String()
	assert.Contains(t, out, "- rank: 1\n")
	assert.Contains(t, out, `student_id: "1003"`)
	assert.Contains(t, out, "year1_score: null")
	assert.Contains(t, out, "category: Transfer")
}

func TestBatchCommit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	b := NewBatch(dir)
	b.Add("full.csv", func(w io.Writer) error { return WriteFullCSV(w, sampleRanking()) })
	b.Add("", func(io.Writer) error { t.Fatal("empty name should be skipped"); return nil })
	b.Add("nested/data.json", func(w io.Writer) error { return WriteJSON(w, sampleRanking()) })
	assert.Equal(t, 2, b.Len())

	paths, err := b.Commit()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "full.csv"), filepath.Join(dir, "nested", "data.json")}, paths)
	for _, p := range paths {
		assert.FileExists(t, p)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
		assert.False(t, strings.HasSuffix(e.Name(), ".bak"), "leftover backup %s", e.Name())
	}
}

func TestBatchFailureLeavesPriorOutputs(t *testing.T) {
	dir := t.TempDir()
	prior := filepath.Join(dir, "full.csv")
	require.NoError(t, os.WriteFile(prior, []byte("previous run"), 0o644))

	b := NewBatch(dir)
	b.Add("full.csv", func(w io.Writer) error { return WriteFullCSV(w, sampleRanking()) })
	b.Add("data.json", func(io.Writer) error { return errors.New("disk full") })

	_, err := b.Commit()
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")

	data, err := os.ReadFile(prior)
	require.NoError(t, err)
	assert.Equal(t, "previous run", string(data))
	assert.NoFileExists(t, filepath.Join(dir, "data.json"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestBatchRenameFailureRestoresPriorOutputs(t *testing.T) {
	tests := []struct {
		name   string
		failOn string
	}{
		{name: "replacing an existing file", failOn: "b.csv"},
		{name: "adding a new file", failOn: "c.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("old a"), 0o644))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("old b"), 0o644))

			failDest := filepath.Join(dir, tt.failOn)
			rename = func(oldpath, newpath string) error {
				if newpath == failDest && strings.HasSuffix(oldpath, ".tmp") {
					return errors.New("device busy")
				}
				return os.Rename(oldpath, newpath)
			}
			t.Cleanup(func() { rename = os.Rename })

			b := NewBatch(dir)
			for _, name := range []string{"a.csv", "b.csv", "c.csv"} {
				b.Add(name, func(w io.Writer) error { return WriteFullCSV(w, sampleRanking()) })
			}
			_, err := b.Commit()
			assert.ErrorContains(t, err, "device busy")

			for name, want := range map[string]string{"a.csv": "old a", "b.csv": "old b"} {
				data, err := os.ReadFile(filepath.Join(dir, name))
				require.NoError(t, err)
				assert.Equal(t, want, string(data), name)
			}
			assert.NoFileExists(t, filepath.Join(dir, "c.csv"))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 2)
		})
	}
}

func TestBatchIsDeterministic(t *testing.T) {
	write := func() []byte {
		dir := t.TempDir()
		b := NewBatch(dir)
		b.Add("full.csv", func(w io.Writer) error { return WriteFullCSV(w, sampleRanking()) })
		b.Add("data.json", func(w io.Writer) error { return WriteJSON(w, sampleRanking()) })
		paths, err := b.Commit()
		require.NoError(t, err)
		var all []byte
		for _, p := range paths {
			data, err := os.ReadFile(p)
			require.NoError(t, err)
			all = append(all, data...)
		}
		return all
	}
	assert.Equal(t, write(), write())
}
