package extract

// ComputeAggregates recomputes portfolio totals from the holdings list.
// Absent fields count as 0 at the summation sites only; absence is never
// collapsed to 0 anywhere else in the pipeline.
func ComputeAggregates(holdings []Holding) Aggregates {
	var agg Aggregates

	for _, h := range holdings {
		agg.TotalMarketValue += orZero(h.MarketValue)
		agg.TotalPnL += orZero(h.TotalPnL)
		agg.DailyTotalPnL += orZero(h.DailyPnL)
	}

	// Return on cost basis. The denominator is deliberately not guarded
	// beyond the > 0 gate: a portfolio with totalPnL >= totalMarketValue
	// produces an extreme percentage, which matches the source data's own
	// behavior rather than hiding it.
	if agg.TotalMarketValue > 0 {
		agg.TotalReturnPct = 100 * agg.TotalPnL / (agg.TotalMarketValue - agg.TotalPnL)
	}

	return agg
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
