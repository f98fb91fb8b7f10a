// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gradebook/pkg/types"
)

// Index maps student IDs to their ranked record.
type Index map[string]types.RankedRecord

// NewIndex builds an Index from a ranking.
func NewIndex(records []types.RankedRecord) Index {
	idx := make(Index, len(records))
	for _, r := range records {
		idx[r.StudentID] = r
	}
	return idx
}

// WriteJSON writes the ranking as an object keyed by student ID. Keys are
// sorted and year1_score is null for transfer students.
func WriteJSON(w io.Writer, records []types.RankedRecord) error {
	data, err := json.MarshalIndent(NewIndex(records), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteYAML writes the ranking as a YAML sequence in rank order.
func WriteYAML(w io.Writer, records []types.RankedRecord) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ReadJSON parses a file written by WriteJSON.
func ReadJSON(r io.Reader) (Index, error) {
	var idx Index
	if err := json.NewDecoder(r).Decode(&idx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRanking, err)
	}
	return idx, nil
}

// Lookup returns the record for id.
func (idx Index) Lookup(id string) (types.RankedRecord, error) {
	rec, ok := idx[id]
	if !ok {
		return types.RankedRecord{}, fmt.Errorf("%w: %s", ErrStudentNotFound, id)
	}
	return rec, nil
}
