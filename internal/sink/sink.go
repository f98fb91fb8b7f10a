// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sink writes rankings and score tables to disk and reads them back.
//
// Writers take an io.Writer so they can be tested in memory. Files are
// written through a Batch, which stages every output in a temporary file
// and only replaces the destinations once all of them were written.
package sink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

var (
	// ErrMalformedRanking is returned when a ranking file cannot be parsed.
	ErrMalformedRanking = errors.New("malformed ranking")

	// ErrStudentNotFound is returned by Lookup for an unknown student ID.
	ErrStudentNotFound = errors.New("student not found")
)

// utf8BOM starts every CSV written here.
const utf8BOM = "\ufeff"

// formatScore renders v with the fewest digits that round-trip, so the same
// input always produces the same bytes.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteFunc renders one output file.
type WriteFunc func(w io.Writer) error

type pending struct {
	name  string
	write WriteFunc
}

// Batch collects output files and writes them all or none.
type Batch struct {
	dir   string
	files []pending
}

// NewBatch returns a batch writing into dir. An empty dir means the current
// directory.
func NewBatch(dir string) *Batch {
	if dir == "" {
		dir = "."
	}
	return &Batch{dir: dir}
}

// Add queues a file. Empty names are ignored so optional outputs can be
// added unconditionally.
func (b *Batch) Add(name string, write WriteFunc) {
	if name == "" {
		return
	}
	b.files = append(b.files, pending{name: name, write: write})
}

// Len returns the number of queued files.
func (b *Batch) Len() int { return len(b.files) }

// rename is os.Rename; tests replace it to fail part way through a commit.
var rename = os.Rename

// Commit renders every queued file to a temporary file in the destination
// directory, then renames them into place. Existing destinations are moved
// aside first and restored if any step fails, so a failed commit leaves
// every prior output as it was. It returns the written paths in the order
// they were added.
func (b *Batch) Commit() ([]string, error) {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	temps := make([]string, 0, len(b.files))
	for _, f := range b.files {
		tmp, err := stage(b.dir, f)
		if err != nil {
			for _, t := range temps {
				os.Remove(t)
			}
			return nil, fmt.Errorf("writing %s: %w", f.name, err)
		}
		temps = append(temps, tmp)
	}

	swaps := make([]swap, len(b.files))
	for i, f := range b.files {
		swaps[i] = swap{tmp: temps[i], dest: filepath.Join(b.dir, f.name)}
	}
	for i := range swaps {
		if err := swaps[i].install(); err != nil {
			rollback(swaps)
			return nil, fmt.Errorf("replacing %s: %w", swaps[i].dest, err)
		}
	}

	paths := make([]string, len(swaps))
	for i, s := range swaps {
		if s.backup != "" {
			os.Remove(s.backup)
		}
		paths[i] = s.dest
	}
	return paths, nil
}

// swap moves one staged file into place, keeping the previous destination
// as a backup until the whole batch is in.
type swap struct {
	tmp       string
	dest      string
	backup    string
	installed bool
}

func (s *swap) install() error {
	if _, err := os.Lstat(s.dest); err == nil {
		backup := s.tmp + ".bak"
		if err := rename(s.dest, backup); err != nil {
			return err
		}
		s.backup = backup
	}
	if err := rename(s.tmp, s.dest); err != nil {
		return err
	}
	s.installed = true
	return nil
}

// rollback undoes installed swaps in reverse order and removes staged files.
func rollback(swaps []swap) {
	for i := len(swaps) - 1; i >= 0; i-- {
		s := swaps[i]
		if s.installed {
			os.Remove(s.dest)
		} else {
			os.Remove(s.tmp)
		}
		if s.backup != "" {
			os.Rename(s.backup, s.dest)
		}
	}
}

func stage(dir string, f pending) (string, error) {
	if err := os.MkdirAll(filepath.Join(dir, filepath.Dir(f.name)), 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Join(dir, filepath.Dir(f.name)), "."+filepath.Base(f.name)+".*.tmp")
	if err != nil {
		return "", err
	}
	if err := f.write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
