package extract

import "strings"

// locateHoldingsBlock finds the half-open row range [start, end) of the
// holdings table. The row whose first cell contains the header marker puts
// start at the following row; the first row after that with a blank first
// cell closes the block. Returns (-1, -1) when no header row exists.
//
// Only the first header is honored: a second 代码 row later in the file is
// not a restart boundary.
func locateHoldingsBlock(rows [][]string) (int, int) {
	start := -1
	for i := 0; i < len(rows); i++ {
		first := cellAt(rows[i], 0)
		if start == -1 {
			if strings.Contains(first, MarkerHoldingsHeader) {
				start = i + 1
			}
			continue
		}
		if strings.TrimSpace(first) == "" {
			return start, i
		}
	}
	if start == -1 {
		return -1, -1
	}
	return start, len(rows)
}

// locateCategoryStart finds the row after the 持仓占比 section marker, or -1
// when the marker is absent.
func locateCategoryStart(rows [][]string) int {
	for i := 0; i < len(rows); i++ {
		if strings.Contains(cellAt(rows[i], 0), MarkerCategoryHeader) {
			return i + 1
		}
	}
	return -1
}
