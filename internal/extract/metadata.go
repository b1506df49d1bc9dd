package extract

import "strings"

// extractMetadata scans the whole grid for the date stamp rows. When a
// marker repeats, the last match wins.
func extractMetadata(rows [][]string) Metadata {
	var md Metadata

	for _, row := range rows {
		key := cellAt(row, 0)
		if key == "" {
			continue
		}

		switch {
		case strings.Contains(key, markerCurrentDate):
			md.CurrentDate = CleanText(cellAt(row, 1))
		case strings.Contains(key, markerPreviousDate):
			md.PreviousDate = CleanText(cellAt(row, 1))
		}
	}

	return md
}
