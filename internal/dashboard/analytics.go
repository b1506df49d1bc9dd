package dashboard

import (
	"sort"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"

	"github.com/hqwei/stockdash/internal/extract"
)

// Analytics summarizes how concentrated the portfolio is. Weights are
// derived from market values, not from the file's own position ratios, so
// the numbers stay consistent with the recomputed aggregates.
type Analytics struct {
	PositionCount int     `json:"position_count"`
	MeanWeight    float64 `json:"mean_weight"`     // percent
	WeightStdDev  float64 `json:"weight_std_dev"`  // percent
	TopFiveWeight float64 `json:"top_five_weight"` // percent
	HHI           float64 `json:"hhi"`             // Herfindahl-Hirschman index, 0..1
}

// ComputeAnalytics derives concentration metrics from the holdings list.
// Holdings without a market value are skipped; a portfolio with no valued
// holdings yields the zero Analytics.
func ComputeAnalytics(holdings []extract.Holding) Analytics {
	var values []float64
	total := 0.0
	for _, h := range holdings {
		if h.MarketValue == nil || *h.MarketValue <= 0 {
			continue
		}
		values = append(values, *h.MarketValue)
		total += *h.MarketValue
	}

	if len(values) == 0 || total <= 0 {
		return Analytics{}
	}

	weights := make([]float64, len(values))
	hhi := 0.0
	for i, v := range values {
		w := v / total
		weights[i] = w * 100
		hhi += w * w
	}

	sorted := append([]float64(nil), weights...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	topN := 5
	if topN > len(sorted) {
		topN = len(sorted)
	}
	topFive := 0.0
	for _, w := range sorted[:topN] {
		topFive += w
	}

	stdDev := 0.0
	if len(weights) > 1 {
		stdDev = stat.StdDev(weights, nil)
	}

	return Analytics{
		PositionCount: len(weights),
		MeanWeight:    stat.Mean(weights, nil),
		WeightStdDev:  stdDev,
		TopFiveWeight: topFive,
		HHI:           hhi,
	}
}

// SMASeries computes a simple moving average over a value series for the
// history chart. Returns nil when the series is shorter than the period;
// positions before a full window are zero in talib's output and are passed
// through unchanged.
func SMASeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	return talib.Sma(values, period)
}
