package extract

import "strings"

// extractCategories parses the allocation section. The primary strategy
// scans forward from the 持仓占比 marker; when the marker is missing or the
// block yields nothing, a full-grid fallback scan trades precision for
// recall, filtering out summary and date rows by their label markers.
func extractCategories(rows [][]string) []Category {
	categories := scanCategoryBlock(rows)
	if len(categories) == 0 {
		categories = scanCategoriesFallback(rows)
	}
	return categories
}

// scanCategoryBlock reads rows after the section marker until a blank first
// cell or a date row.
func scanCategoryBlock(rows [][]string) []Category {
	start := locateCategoryStart(rows)
	if start < 0 {
		return nil
	}

	var categories []Category
	for i := start; i < len(rows); i++ {
		key := cellAt(rows[i], 0)
		if strings.TrimSpace(key) == "" {
			break
		}
		if strings.Contains(key, markerCurrentDate) || strings.Contains(key, markerPreviousDate) {
			break
		}

		value := cellAt(rows[i], 1)
		if !IsPercentageLike(value) {
			continue
		}
		if w := ParsePercentage(value); w != nil {
			categories = append(categories, Category{Label: CleanText(key), Weight: *w})
		}
	}

	return categories
}

// scanCategoriesFallback treats every "label, percentage" row in the grid as
// a category unless the label looks like a total, usage or date row.
func scanCategoriesFallback(rows [][]string) []Category {
	var categories []Category
	for _, row := range rows {
		key := cellAt(row, 0)
		if strings.TrimSpace(key) == "" {
			continue
		}

		value := cellAt(row, 1)
		if !IsPercentageLike(value) {
			continue
		}

		if strings.Contains(key, markerExcludeTotal) ||
			strings.Contains(key, markerExcludeUsage) ||
			strings.Contains(key, markerExcludeDate) {
			continue
		}

		if w := ParsePercentage(value); w != nil {
			categories = append(categories, Category{Label: CleanText(key), Weight: *w})
		}
	}

	return categories
}
