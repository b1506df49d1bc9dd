package extract

// Holding represents one portfolio position parsed from a holdings row.
// Numeric fields are pointers: nil means the source cell was missing or
// unparsable. Only Symbol and Quantity are guaranteed present.
type Holding struct {
	Symbol         string   `json:"symbol"`
	NameLocalized  string   `json:"name_localized"`
	Description    string   `json:"description"`
	Quantity       *float64 `json:"quantity"`
	CostPrice      *float64 `json:"cost_price,omitempty"`
	ClosePrice     *float64 `json:"close_price,omitempty"`
	MarketValue    *float64 `json:"market_value,omitempty"`
	PositionRatio  *float64 `json:"position_ratio,omitempty"`
	PrevClosePrice *float64 `json:"prev_close_price,omitempty"`
	DailyPnL       *float64 `json:"daily_pnl,omitempty"`
	TotalPnL       *float64 `json:"total_pnl,omitempty"`
}

// Summary holds the totals the source file states about itself.
// These are observed values, not recomputed ones; see Aggregates.
type Summary struct {
	TotalAmount    *float64 `json:"total_amount,omitempty"`
	PositionUsage  *float64 `json:"position_usage,omitempty"`
	TotalPnL       *float64 `json:"total_pnl,omitempty"`
	TotalReturnPct *float64 `json:"total_return_pct,omitempty"`
	DailyPnL       *float64 `json:"daily_pnl,omitempty"`
}

// Category is one allocation bucket with its weight in percentage points.
// Categories are kept as an ordered slice because the source order matters
// for display and Go maps do not preserve insertion order.
type Category struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// Metadata carries the date stamps embedded in the export.
type Metadata struct {
	CurrentDate  string `json:"current_date,omitempty"`
	PreviousDate string `json:"previous_date,omitempty"`
}

// Aggregates are recomputed from the holdings list only, never from Summary.
// Summary and Aggregates may disagree; both are kept so the dashboard can
// surface source-file inconsistencies.
type Aggregates struct {
	TotalMarketValue float64 `json:"total_market_value"`
	TotalPnL         float64 `json:"total_pnl"`
	DailyTotalPnL    float64 `json:"daily_total_pnl"`
	TotalReturnPct   float64 `json:"total_return_pct"`
}

// Snapshot is one complete parsed view of the portfolio. It is built once
// per load cycle and never mutated afterwards, except for attaching
// Calculated as a separate step after assembly.
type Snapshot struct {
	Holdings   []Holding   `json:"holdings"`
	Summary    Summary     `json:"summary"`
	Categories []Category  `json:"categories"`
	Metadata   Metadata    `json:"metadata"`
	Calculated *Aggregates `json:"calculated,omitempty"`
}
