package dashboard

import (
	"profitdash-backend/internal/aggregate"
	"profitdash-backend/internal/database"
	"profitdash-backend/internal/finance"
	"profitdash-backend/internal/sysconfig"

	"github.com/gofiber/fiber/v2"
)

type CompanyYearResponse struct {
	FinancialYear string         `json:"financial_year"`
	Months        []MonthSummary `json:"months"`
	Summary       MonthSummary   `json:"summary"` // year-to-date totals
	Trend         []TrendDelta   `json:"trend"`

	RevenueByVertical    map[string]float64 `json:"revenue_by_vertical"`
	RevenueByProjectType map[string]float64 `json:"revenue_by_project_type"`
	CostByProjectType    map[string]float64 `json:"cost_by_project_type"`
}

// GET /api/dashboard/company?year=2025
// Whole-organization rollup over the twelve months of a financial year.
// Months with no data stay in the series as zero buckets.
func CompanyDashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startYear := c.QueryInt("year", 0)
		if startYear < 2000 || startYear > 2200 {
			return fiber.NewError(fiber.StatusBadRequest, "year query parameter is required (financial year start year)")
		}

		cfg := sysconfig.Resolve(database.DB)
		months := cfg.MonthsOfYear(startYear)

		// company view is unrestricted; route registration limits it to admin/finance
		rollup, err := aggregate.New(database.DB).ProjectTotals(months, aggregate.ScopeFilter{})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "aggregation failed: "+err.Error())
		}

		summaries, points := summarize(months, rollup.Totals)

		var ytd aggregate.Bucket
		for _, m := range months {
			ytd.Revenue += rollup.Totals[m].Revenue
			ytd.Cost += rollup.Totals[m].Cost
		}

		costByType := make(map[string]float64)
		for _, m := range months {
			for projID, b := range rollup.Buckets[m] {
				if p, ok := rollup.Projects[projID]; ok {
					costByType[string(p.ProjectType)] += b.Cost
				}
			}
		}
		for k, v := range costByType {
			costByType[k] = finance.Round2(v)
		}

		revByVertical := make(map[string]float64, len(rollup.RevenueByVertical))
		for k, v := range rollup.RevenueByVertical {
			revByVertical[k] = finance.Round2(v)
		}
		revByType := make(map[string]float64, len(rollup.RevenueByProjectType))
		for k, v := range rollup.RevenueByProjectType {
			revByType[k] = finance.Round2(v)
		}

		return c.JSON(CompanyYearResponse{
			FinancialYear: cfg.Label(startYear),
			Months:        summaries,
			Summary: MonthSummary{
				Month:         cfg.Label(startYear),
				Revenue:       finance.Round2(ytd.Revenue),
				Cost:          finance.Round2(ytd.Cost),
				Profit:        finance.Round2(ytd.Profit()),
				MarginPercent: finance.Round2(ytd.MarginPercent()),
			},
			Trend:                Trend(points),
			RevenueByVertical:    revByVertical,
			RevenueByProjectType: revByType,
			CostByProjectType:    costByType,
		})
	}
}
