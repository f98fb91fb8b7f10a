// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup finds one student in an exported ranking.
package lookup

import (
	"errors"
	"fmt"
	"os"

	"github.com/pdiddy/gradebook/internal/sink"
	"github.com/pdiddy/gradebook/pkg/types"
)

// ErrInvalidID is returned for IDs that cannot name a student.
var ErrInvalidID = errors.New("invalid student id")

// DefaultMinIDLength is the shortest ID accepted when none is configured.
const DefaultMinIDLength = 8

// Result is a found student and the size of the ranking.
type Result struct {
	Record types.RankedRecord
	Total  int
}

// Validate rejects empty, short, and non-numeric IDs. A non-positive
// minLen uses DefaultMinIDLength.
func Validate(id string, minLen int) error {
	if minLen <= 0 {
		minLen = DefaultMinIDLength
	}
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if len(id) < minLen {
		return fmt.Errorf("%w: %q is shorter than %d characters", ErrInvalidID, id, minLen)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: %q must contain digits only", ErrInvalidID, id)
		}
	}
	return nil
}

// Find validates id and looks it up in idx.
func Find(idx sink.Index, id string, minLen int) (Result, error) {
	if err := Validate(id, minLen); err != nil {
		return Result{}, err
	}
	rec, err := idx.Lookup(id)
	if err != nil {
		return Result{}, err
	}
	return Result{Record: rec, Total: len(idx)}, nil
}

// LoadIndex reads a JSON ranking export from path.
func LoadIndex(path string) (sink.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	idx, err := sink.ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return idx, nil
}
