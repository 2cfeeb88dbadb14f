package sysconfig

import (
	"fmt"
	"strconv"
	"strings"
)

// Label returns the financial-year label for a year starting at
// FinancialYearStart, e.g. 2025 -> "2025-26" for an April start. A January
// start is a plain calendar year.
func (c CostConfig) Label(startYear int) string {
	if c.FinancialYearStart == 1 {
		return strconv.Itoa(startYear)
	}
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// FinancialYearOf returns the label of the financial year a YYYY-MM month
// falls in. Malformed months map to the zero-year label, callers validate the
// format before resolution.
func (c CostConfig) FinancialYearOf(month string) string {
	parts := strings.SplitN(month, "-", 2)
	if len(parts) != 2 {
		return c.Label(0)
	}
	year, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return c.Label(0)
	}
	if m < c.FinancialYearStart {
		year--
	}
	return c.Label(year)
}

// MonthsOfYear returns the twelve YYYY-MM months of the financial year
// starting in startYear, in chronological order.
func (c CostConfig) MonthsOfYear(startYear int) []string {
	months := make([]string, 0, 12)
	year, month := startYear, c.FinancialYearStart
	for i := 0; i < 12; i++ {
		months = append(months, fmt.Sprintf("%04d-%02d", year, month))
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return months
}
