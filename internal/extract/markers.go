package extract

// Sentinel substrings recognized in the first column of the export. The
// source spreadsheet has no declared schema; these markers ARE the schema,
// so they live in one place and must stay bit-exact with the file format.
const (
	// MarkerHoldingsHeader marks the holdings table header row ("code").
	MarkerHoldingsHeader = "代码"
	// MarkerCategoryHeader marks the start of the allocation section
	// ("position ratio").
	MarkerCategoryHeader = "持仓占比"

	markerTotalAmount    = "总金额"   // total amount
	markerPositionUsage  = "仓位"    // position usage
	markerTotalPnL       = "总盈亏"   // total P&L
	markerPercentSuffix  = "（%）"    // full-width percent suffix on 总盈亏
	markerTotalReturnPct = "总盈亏（%）" // total P&L as percentage
	markerDailyPnL       = "当日盈亏"  // daily P&L

	markerCurrentDate  = "今日日期" // today's date
	markerPreviousDate = "昨天日期" // yesterday's date

	// Labels containing these are excluded by the category fallback scan,
	// which would otherwise pick up summary and date rows.
	markerExcludeTotal = "总"
	markerExcludeUsage = "仓位"
	markerExcludeDate  = "日期"
)

// summaryRule routes a keyed summary row to a Summary field. Rules are
// evaluated in order and the first match wins, so the plain 总盈亏 rule must
// exclude the （%） variant that a later rule claims.
type summaryRule struct {
	marker   string
	exclude  string // skip this rule when the key also contains exclude
	column   int    // value column
	fallback int    // second value column to try, -1 for none
	percent  bool
	assign   func(*Summary, *float64)
}

var summaryRules = []summaryRule{
	{
		marker: markerTotalAmount, column: 1, fallback: -1,
		assign: func(s *Summary, v *float64) { s.TotalAmount = v },
	},
	{
		marker: markerPositionUsage, column: 1, fallback: -1, percent: true,
		assign: func(s *Summary, v *float64) { s.PositionUsage = v },
	},
	{
		marker: markerTotalPnL, exclude: markerPercentSuffix, column: 1, fallback: -1,
		assign: func(s *Summary, v *float64) { s.TotalPnL = v },
	},
	{
		marker: markerTotalReturnPct, column: 1, fallback: -1, percent: true,
		assign: func(s *Summary, v *float64) { s.TotalReturnPct = v },
	},
	{
		// The daily P&L figure usually sits in column 9, with column 1 as
		// a fallback in older exports.
		marker: markerDailyPnL, column: 9, fallback: 1,
		assign: func(s *Summary, v *float64) { s.DailyPnL = v },
	},
}
