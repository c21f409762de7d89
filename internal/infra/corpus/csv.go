// Package corpus loads the reference corpus from a CSV file with a header row.
// Every data row is flattened into one retrieval.Entry. Empty cells read as
// MissingValue, the text a pandas-built corpus carries for them, so indexes
// built from the same file agree on vocabulary and row text.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matiasleandrokruk/dispatchrag/internal/domain/retrieval"
)

// MissingValue replaces empty cells.
const MissingValue = "nan"

// LoadCSV reads path and returns one entry per data row.
// Failures are reported as *retrieval.CorpusLoadError.
func LoadCSV(path string) ([]retrieval.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &retrieval.CorpusLoadError{Source: path, Row: -1, Err: err}
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(path, f)
}

// ReadCSV parses CSV from r. source is only used in error messages.
// The first record is treated as the header and skipped; rows must all have
// the header's column count.
func ReadCSV(source string, r io.Reader) ([]retrieval.Entry, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &retrieval.CorpusLoadError{Source: source, Row: -1, Err: errors.New("file is empty")}
	}
	if err != nil {
		return nil, &retrieval.CorpusLoadError{Source: source, Row: -1, Err: fmt.Errorf("read header: %w", err)}
	}
	cr.FieldsPerRecord = len(header)

	var entries []retrieval.Entry
	for {
		record, readErr := cr.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, &retrieval.CorpusLoadError{Source: source, Row: len(entries), Err: readErr}
		}
		for i, field := range record {
			if field == "" {
				record[i] = MissingValue
			}
		}
		entries = append(entries, retrieval.NewEntry(len(entries), record))
	}

	if len(entries) == 0 {
		return nil, &retrieval.CorpusLoadError{Source: source, Row: -1, Err: errors.New("no data rows")}
	}
	return entries, nil
}
