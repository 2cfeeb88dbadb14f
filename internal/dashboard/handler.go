package dashboard

import (
	"regexp"
	"sort"
	"strings"

	"profitdash-backend/internal/aggregate"
	"profitdash-backend/internal/auth"
	"profitdash-backend/internal/database"
	"profitdash-backend/internal/finance"
	"profitdash-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// monthsParam parses ?months=2025-04,2025-05 preserving order.
func monthsParam(c *fiber.Ctx) ([]string, error) {
	raw := c.Query("months")
	if raw == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "months query parameter is required (comma separated YYYY-MM)")
	}
	parts := strings.Split(raw, ",")
	months := make([]string, 0, len(parts))
	for _, p := range parts {
		m := strings.TrimSpace(p)
		if !monthPattern.MatchString(m) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid month "+m+", expected YYYY-MM")
		}
		months = append(months, m)
	}
	return months, nil
}

func topNParam(c *fiber.Ctx) int {
	n := c.QueryInt("top", 5)
	if n < 1 {
		n = 5
	}
	return n
}

type MonthSummary struct {
	Month         string  `json:"month"`
	Revenue       float64 `json:"revenue"`
	Cost          float64 `json:"cost"`
	Profit        float64 `json:"profit"`
	MarginPercent float64 `json:"margin_percent"`
}

func summarize(months []string, totals map[string]*aggregate.Bucket) ([]MonthSummary, []TrendPoint) {
	summaries := make([]MonthSummary, 0, len(months))
	points := make([]TrendPoint, 0, len(months))
	for _, m := range months {
		b := totals[m]
		summaries = append(summaries, MonthSummary{
			Month:         m,
			Revenue:       finance.Round2(b.Revenue),
			Cost:          finance.Round2(b.Cost),
			Profit:        finance.Round2(b.Profit()),
			MarginPercent: finance.Round2(b.MarginPercent()),
		})
		points = append(points, TrendPoint{
			Month:              m,
			Revenue:            b.Revenue,
			Cost:               b.Cost,
			MarginPercent:      b.MarginPercent(),
			UtilizationPercent: b.UtilizationPercent(),
		})
	}
	return summaries, points
}

// windowBucket folds one entity's monthly buckets into a whole-window bucket.
func windowBucket(months []string, buckets map[string]map[uint]*aggregate.Bucket, id uint) aggregate.Bucket {
	var w aggregate.Bucket
	for _, m := range months {
		if b, ok := buckets[m][id]; ok {
			w.Revenue += b.Revenue
			w.Cost += b.Cost
			w.BillableHours += b.BillableHours
			w.TotalHours += b.TotalHours
		}
	}
	return w
}

type ProjectEntry struct {
	Entry
	ProjectCode     string   `json:"project_code"`
	ProjectType     string   `json:"project_type"`
	BurnRatePercent *float64 `json:"burn_rate_percent,omitempty"`
}

// GET /api/dashboard/projects?months=...&top=N
func ProjectDashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		months, err := monthsParam(c)
		if err != nil {
			return err
		}
		scope, err := auth.ResolveScope(c)
		if err != nil {
			return err
		}

		rollup, err := aggregate.New(database.DB).ProjectTotals(months, scope)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "aggregation failed: "+err.Error())
		}

		ids := sortedIDs(rollup.Projects)
		entries := make([]ProjectEntry, 0, len(ids))
		ranked := make([]Entry, 0, len(ids))
		for _, id := range ids {
			p := rollup.Projects[id]
			w := windowBucket(months, rollup.Buckets, id)
			e := Entry{
				ID:            id,
				Name:          p.Name,
				Revenue:       finance.Round2(w.Revenue),
				Cost:          finance.Round2(w.Cost),
				Profit:        finance.Round2(w.Profit()),
				MarginPercent: finance.Round2(w.MarginPercent()),
			}
			pe := ProjectEntry{Entry: e, ProjectCode: p.ProjectCode, ProjectType: string(p.ProjectType)}
			if p.ProjectType == models.ProjectTypeFixedCost || p.ProjectType == models.ProjectTypeAMC {
				br := finance.Round2(finance.BurnRate(w.Cost, p.ContractValue))
				pe.BurnRatePercent = &br
			}
			entries = append(entries, pe)
			ranked = append(ranked, e)
		}

		summaries, points := summarize(months, rollup.Totals)
		top, bottom := Rankings(ranked, topNParam(c))

		return c.JSON(fiber.Map{
			"months":   months,
			"projects": entries,
			"summary":  summaries,
			"trend":    Trend(points),
			"top_n":    top,
			"bottom_n": bottom,
		})
	}
}

// GET /api/dashboard/employees?months=...&top=N
func EmployeeDashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		months, err := monthsParam(c)
		if err != nil {
			return err
		}
		scope, err := auth.ResolveScope(c)
		if err != nil {
			return err
		}

		rollup, err := aggregate.New(database.DB).EmployeeTotals(months, scope)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "aggregation failed: "+err.Error())
		}

		ids := sortedIDs(rollup.Employees)
		entries := make([]Entry, 0, len(ids))
		for _, id := range ids {
			emp := rollup.Employees[id]
			w := windowBucket(months, rollup.Buckets, id)
			util := finance.Round2(w.UtilizationPercent())
			entries = append(entries, Entry{
				ID:                 id,
				Name:               emp.Name,
				Revenue:            finance.Round2(w.Revenue),
				Cost:               finance.Round2(w.Cost),
				Profit:             finance.Round2(w.Profit()),
				MarginPercent:      finance.Round2(w.MarginPercent()),
				UtilizationPercent: &util,
			})
		}

		summaries, points := summarize(months, rollup.Totals)
		top, bottom := Rankings(entries, topNParam(c))

		return c.JSON(fiber.Map{
			"months":    months,
			"employees": entries,
			"summary":   summaries,
			"trend":     Trend(points),
			"top_n":     top,
			"bottom_n":  bottom,
		})
	}
}

// GET /api/dashboard/departments?months=...&top=N
func DepartmentDashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		months, err := monthsParam(c)
		if err != nil {
			return err
		}
		scope, err := auth.ResolveScope(c)
		if err != nil {
			return err
		}

		rollup, err := aggregate.New(database.DB).DepartmentTotals(months, scope)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "aggregation failed: "+err.Error())
		}

		entries := make([]Entry, 0, len(rollup.Headcount))
		ids := make([]uint, 0, len(rollup.Headcount))
		for id := range rollup.Headcount {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			w := windowBucket(months, rollup.Buckets, id)
			// capacity-based utilization: TotalHours carries headcount * standard hours
			util := finance.Round2(w.UtilizationPercent())
			entries = append(entries, Entry{
				ID:                 id,
				Name:               rollup.Departments[id].Name,
				Revenue:            finance.Round2(w.Revenue),
				Cost:               finance.Round2(w.Cost),
				Profit:             finance.Round2(w.Profit()),
				MarginPercent:      finance.Round2(w.MarginPercent()),
				UtilizationPercent: &util,
			})
		}

		summaries, points := summarize(months, rollup.Totals)
		top, bottom := Rankings(entries, topNParam(c))

		return c.JSON(fiber.Map{
			"months":      months,
			"departments": entries,
			"summary":     summaries,
			"trend":       Trend(points),
			"top_n":       top,
			"bottom_n":    bottom,
		})
	}
}

// GET /api/dashboard/clients?months=...&top=N
func ClientDashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		months, err := monthsParam(c)
		if err != nil {
			return err
		}
		scope, err := auth.ResolveScope(c)
		if err != nil {
			return err
		}

		rollup, err := aggregate.New(database.DB).ClientTotals(months, scope)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "aggregation failed: "+err.Error())
		}

		seen := make(map[uint]bool)
		for _, m := range months {
			for id := range rollup.Buckets[m] {
				seen[id] = true
			}
		}
		ids := make([]uint, 0, len(seen))
		for id := range seen {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		entries := make([]Entry, 0, len(ids))
		for _, id := range ids {
			name := "Unassigned"
			if cl, ok := rollup.Clients[id]; ok {
				name = cl.Name
			}
			w := windowBucket(months, rollup.Buckets, id)
			entries = append(entries, Entry{
				ID:            id,
				Name:          name,
				Revenue:       finance.Round2(w.Revenue),
				Cost:          finance.Round2(w.Cost),
				Profit:        finance.Round2(w.Profit()),
				MarginPercent: finance.Round2(w.MarginPercent()),
			})
		}

		summaries, points := summarize(months, rollup.Totals)
		top, bottom := Rankings(entries, topNParam(c))

		return c.JSON(fiber.Map{
			"months":   months,
			"clients":  entries,
			"summary":  summaries,
			"trend":    Trend(points),
			"top_n":    top,
			"bottom_n": bottom,
		})
	}
}

// sortedIDs gives a deterministic entity order before ranking; ties in the
// margin sort then keep this insertion order.
func sortedIDs[T any](m map[uint]T) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
