// Package finance holds the pure cost/profit formulas. Every function is
// side-effect free; callers round with Round2 only at the response boundary,
// intermediate accumulation keeps full float precision.
package finance

import (
	"math"

	"profitdash-backend/internal/apperr"

	"github.com/shopspring/decimal"
)

// num coerces NaN/Inf to 0 so a bad upstream value degrades to "no amount"
// instead of poisoning a whole rollup.
func num(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Round2 rounds to 2 decimals, half away from zero. Goes through decimal to
// avoid float repr artifacts like 937.4999999999999.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(num(v)).Round(2).InexactFloat64()
}

// CostPerHour derives the hourly cost rate of an employee:
// (annual CTC + yearly overhead) / 12 / standard monthly hours.
// Zero standard hours is a hard config error, never a zero-cost default.
func CostPerHour(ctc, overhead, stdHours float64) (float64, error) {
	if stdHours == 0 {
		return 0, apperr.New(apperr.KindConfig, "standard_monthly_hours must be non-zero")
	}
	return Round2((num(ctc) + num(overhead)) / 12 / stdHours), nil
}

// TMRevenue is billed hours times billing rate.
func TMRevenue(hours, rate float64) float64 {
	return num(hours) * num(rate)
}

func Profit(revenue, cost float64) float64 {
	return num(revenue) - num(cost)
}

// MarginPercent with the zero-revenue edge cases: cost with no revenue is a
// -100% margin, no activity at all is 0.
func MarginPercent(revenue, cost float64) float64 {
	revenue, cost = num(revenue), num(cost)
	if revenue == 0 {
		if cost > 0 {
			return -100
		}
		return 0
	}
	return (revenue - cost) / revenue * 100
}

// BurnRate is cumulative cost as a percentage of a fixed contract value.
func BurnRate(costToDate, contractValue float64) float64 {
	costToDate, contractValue = num(costToDate), num(contractValue)
	if contractValue == 0 {
		return 0
	}
	return costToDate / contractValue * 100
}

// UtilizationPercent is uncapped: over-logged billable hours can exceed 100.
func UtilizationPercent(billable, total float64) float64 {
	billable, total = num(billable), num(total)
	if total == 0 {
		return 0
	}
	return billable / total * 100
}
