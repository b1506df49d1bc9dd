package source

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Tokenize splits raw CSV text into a row grid for the extraction pipeline.
// Rows may be jagged (FieldsPerRecord is disabled) and quoting is lax, since
// the exports are hand-edited spreadsheets rather than machine output. Blank
// lines are skipped by the reader, which matches the tokenizer settings the
// extraction heuristics were written against: the blank rows that terminate
// sections are rows of empty cells (",,,"), not empty lines.
func Tokenize(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize csv: %w", err)
	}

	return rows, nil
}
