package extract

import (
	"strconv"
	"strings"
)

// Cell normalization helpers. All of these are total functions over a single
// raw CSV cell: malformed input degrades to "" or nil, it never errors.

// CleanText trims whitespace and strips one leading and one trailing quote.
func CleanText(v string) string {
	s := strings.TrimSpace(v)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return s
}

// ParseNumber parses a cell as a float after removing commas and quotes.
// Returns nil for empty or non-numeric cells.
func ParseNumber(v string) *float64 {
	if strings.TrimSpace(v) == "" {
		return nil
	}

	cleaned := strings.NewReplacer(",", "", `"`, "").Replace(v)
	cleaned = strings.TrimSpace(cleaned)

	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &n
}

// ParsePercentage parses a cell like "12.5%" into 12.5 (percentage points,
// not a fraction). Returns nil for empty or non-numeric cells.
func ParsePercentage(v string) *float64 {
	if strings.TrimSpace(v) == "" {
		return nil
	}

	cleaned := strings.NewReplacer("%", "", ",", "", `"`, "").Replace(v)
	cleaned = strings.TrimSpace(cleaned)

	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &n
}

// IsPercentageLike reports whether the cell looks like a percentage value.
func IsPercentageLike(v string) bool {
	return strings.Contains(v, "%")
}

// cellAt returns the i-th cell of a jagged row, or "" when the row is
// shorter than that.
func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
