package extract

// Fixed column layout of a holdings row. The export always writes these
// eleven columns in this order; anything beyond a row's actual length is
// treated as absent.
const (
	colSymbol = iota
	colNameLocalized
	colDescription
	colQuantity
	colCostPrice
	colClosePrice
	colMarketValue
	colPositionRatio
	colPrevClosePrice
	colDailyPnL
	colTotalPnL
)

// parseHoldingRow maps one raw row to a Holding. It returns nil when the
// symbol is empty or the quantity is unparsable; every other field degrades
// to nil individually without discarding the record.
func parseHoldingRow(row []string) *Holding {
	h := &Holding{
		Symbol:         CleanText(cellAt(row, colSymbol)),
		NameLocalized:  CleanText(cellAt(row, colNameLocalized)),
		Description:    CleanText(cellAt(row, colDescription)),
		Quantity:       ParseNumber(cellAt(row, colQuantity)),
		CostPrice:      ParseNumber(cellAt(row, colCostPrice)),
		ClosePrice:     ParseNumber(cellAt(row, colClosePrice)),
		MarketValue:    ParseNumber(cellAt(row, colMarketValue)),
		PositionRatio:  ParsePercentage(cellAt(row, colPositionRatio)),
		PrevClosePrice: ParseNumber(cellAt(row, colPrevClosePrice)),
		DailyPnL:       ParseNumber(cellAt(row, colDailyPnL)),
		TotalPnL:       ParseNumber(cellAt(row, colTotalPnL)),
	}

	// Symbol and quantity are the two fields every downstream computation
	// assumes present.
	if h.Symbol == "" || h.Quantity == nil {
		return nil
	}

	return h
}
