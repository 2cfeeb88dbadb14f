// Package dashboard post-processes aggregation results into ranked and
// trended views. It owns no queries of its own beyond what the engine runs.
package dashboard

import (
	"sort"

	"profitdash-backend/internal/finance"
)

// Entry is one ranked entity in a dashboard response. Utilization is optional:
// clients and raw project views have no meaningful utilization base.
type Entry struct {
	ID                 uint     `json:"id"`
	Name               string   `json:"name"`
	Revenue            float64  `json:"revenue"`
	Cost               float64  `json:"cost"`
	Profit             float64  `json:"profit"`
	MarginPercent      float64  `json:"margin_percent"`
	UtilizationPercent *float64 `json:"utilization_percent,omitempty"`
}

// Rankings sorts by margin descending and returns the head as top-N and the
// reversed tail as bottom-N (worst first). The sort is stable: ties keep the
// order the engine produced.
func Rankings(entries []Entry, n int) (top, bottom []Entry) {
	ranked := make([]Entry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MarginPercent > ranked[j].MarginPercent
	})

	if n <= 0 || n > len(ranked) {
		n = len(ranked)
	}

	top = make([]Entry, n)
	copy(top, ranked[:n])

	bottom = make([]Entry, 0, n)
	for i := len(ranked) - 1; i >= len(ranked)-n; i-- {
		bottom = append(bottom, ranked[i])
	}
	return top, bottom
}

// TrendPoint is one month's summary feeding a trend series.
type TrendPoint struct {
	Month              string  `json:"month"`
	Revenue            float64 `json:"revenue"`
	Cost               float64 `json:"cost"`
	MarginPercent      float64 `json:"margin_percent"`
	UtilizationPercent float64 `json:"utilization_percent"`
}

// TrendDelta is the month-over-month change against the previous point.
// Revenue and cost move as percent change; margin and utilization as absolute
// point differences, since a percent change of a percentage reads wrong.
type TrendDelta struct {
	Month                   string  `json:"month"`
	RevenueChangePercent    float64 `json:"revenue_change_percent"`
	CostChangePercent       float64 `json:"cost_change_percent"`
	MarginChangePoints      float64 `json:"margin_change_points"`
	UtilizationChangePoints float64 `json:"utilization_change_points"`
}

// percentChange treats a zero baseline specially: any growth from nothing is
// reported as a flat 100, no movement stays 0.
func percentChange(prev, cur float64) float64 {
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return (cur - prev) / prev * 100
}

// Trend computes trailing deltas for consecutive months; the first point has
// no predecessor and produces no delta.
func Trend(points []TrendPoint) []TrendDelta {
	if len(points) < 2 {
		return []TrendDelta{}
	}

	deltas := make([]TrendDelta, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		deltas = append(deltas, TrendDelta{
			Month:                   cur.Month,
			RevenueChangePercent:    finance.Round2(percentChange(prev.Revenue, cur.Revenue)),
			CostChangePercent:       finance.Round2(percentChange(prev.Cost, cur.Cost)),
			MarginChangePoints:      finance.Round2(cur.MarginPercent - prev.MarginPercent),
			UtilizationChangePoints: finance.Round2(cur.UtilizationPercent - prev.UtilizationPercent),
		})
	}
	return deltas
}
