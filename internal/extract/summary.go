package extract

import "strings"

// Row index and columns of the positional daily P&L override, see
// applyDailyPnLOverride.
const (
	dailyPnLOverrideRow      = 14
	dailyPnLOverrideKeyCol   = 8
	dailyPnLOverrideValueCol = 9
)

// extractSummary scans the whole grid for keyed summary rows and routes each
// match through the summary rule table. Keys that never match stay nil.
func extractSummary(rows [][]string) Summary {
	var summary Summary

	for _, row := range rows {
		key := cellAt(row, 0)
		if key == "" {
			continue
		}

		for _, rule := range summaryRules {
			if !strings.Contains(key, rule.marker) {
				continue
			}
			if rule.exclude != "" && strings.Contains(key, rule.exclude) {
				continue
			}

			v := parseRuleValue(row, rule.column, rule.percent)
			if v == nil && rule.fallback >= 0 {
				v = parseRuleValue(row, rule.fallback, rule.percent)
			}
			rule.assign(&summary, v)
			break
		}
	}

	applyDailyPnLOverride(rows, &summary)

	return summary
}

func parseRuleValue(row []string, col int, percent bool) *float64 {
	if percent {
		return ParsePercentage(cellAt(row, col))
	}
	return ParseNumber(cellAt(row, col))
}

// applyDailyPnLOverride handles a quirk of the export: some files repeat the
// daily P&L figure on the 15th row at columns 8/9, outside the keyed layout,
// and that copy is the authoritative one. Known special case of this source
// format only; do not generalize to other offsets.
func applyDailyPnLOverride(rows [][]string, summary *Summary) {
	if len(rows) <= dailyPnLOverrideRow {
		return
	}

	row := rows[dailyPnLOverrideRow]
	if !strings.Contains(cellAt(row, dailyPnLOverrideKeyCol), markerDailyPnL) {
		return
	}

	summary.DailyPnL = ParseNumber(cellAt(row, dailyPnLOverrideValueCol))
}
