// Package sysconfig turns the SystemConfig key/value rows into a typed config
// struct. Missing keys and fetch failures never abort a calculation: the
// documented defaults apply, and the fallback is logged so "absent" and
// "fetch failed" stay distinguishable in the operational logs.
package sysconfig

import (
	"log"
	"strconv"

	"profitdash-backend/internal/models"

	"gorm.io/gorm"
)

const (
	KeyOverheadCostPerYear  = "overhead_cost_per_year"
	KeyStandardMonthlyHours = "standard_monthly_hours"
	KeyFinancialYearStart   = "financial_year_start_month"
)

const (
	DefaultOverheadCostPerYear  = 180000.0 // INR/year
	DefaultStandardMonthlyHours = 160.0
	DefaultFinancialYearStart   = 4 // April
)

type CostConfig struct {
	OverheadCostPerYear  float64
	StandardMonthlyHours float64
	FinancialYearStart   int // 1-12
}

func defaults() CostConfig {
	return CostConfig{
		OverheadCostPerYear:  DefaultOverheadCostPerYear,
		StandardMonthlyHours: DefaultStandardMonthlyHours,
		FinancialYearStart:   DefaultFinancialYearStart,
	}
}

// Resolve loads all config keys in one query. It never returns an error: on
// any failure the default struct comes back, with the failure mode logged.
func Resolve(db *gorm.DB) CostConfig {
	cfg := defaults()

	var rows []models.SystemConfig
	err := db.Where("key IN ?", []string{
		KeyOverheadCostPerYear,
		KeyStandardMonthlyHours,
		KeyFinancialYearStart,
	}).Find(&rows).Error
	if err != nil {
		log.Printf("[WARN] system config fetch failed, using defaults: %v", err)
		return cfg
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}

	if raw, ok := values[KeyOverheadCostPerYear]; ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 {
			cfg.OverheadCostPerYear = v
		} else {
			log.Printf("[WARN] %s=%q is not a valid amount, using default %v", KeyOverheadCostPerYear, raw, DefaultOverheadCostPerYear)
		}
	} else {
		log.Printf("[INFO] %s absent, using default %v", KeyOverheadCostPerYear, DefaultOverheadCostPerYear)
	}

	if raw, ok := values[KeyStandardMonthlyHours]; ok {
		// zero would make every cost rate a division hazard, treat it like unparsable
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			cfg.StandardMonthlyHours = v
		} else {
			log.Printf("[WARN] %s=%q is not a valid non-zero number, using default %v", KeyStandardMonthlyHours, raw, DefaultStandardMonthlyHours)
		}
	} else {
		log.Printf("[INFO] %s absent, using default %v", KeyStandardMonthlyHours, DefaultStandardMonthlyHours)
	}

	if raw, ok := values[KeyFinancialYearStart]; ok {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 && v <= 12 {
			cfg.FinancialYearStart = v
		} else {
			log.Printf("[WARN] %s=%q is not a valid month, using default %v", KeyFinancialYearStart, raw, DefaultFinancialYearStart)
		}
	}

	return cfg
}
