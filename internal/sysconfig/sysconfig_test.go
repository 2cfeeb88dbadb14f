package sysconfig

import (
	"fmt"
	"testing"

	"profitdash-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupConfigTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.SystemConfig{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestResolveDefaultsWhenEmpty(t *testing.T) {
	db := setupConfigTestDB(t)

	cfg := Resolve(db)
	if cfg.OverheadCostPerYear != DefaultOverheadCostPerYear {
		t.Fatalf("expected default overhead, got %v", cfg.OverheadCostPerYear)
	}
	if cfg.StandardMonthlyHours != DefaultStandardMonthlyHours {
		t.Fatalf("expected default standard hours, got %v", cfg.StandardMonthlyHours)
	}
	if cfg.FinancialYearStart != DefaultFinancialYearStart {
		t.Fatalf("expected default FY start month, got %v", cfg.FinancialYearStart)
	}
}

func TestResolveReadsStoredValues(t *testing.T) {
	db := setupConfigTestDB(t)
	seed := []models.SystemConfig{
		{Key: KeyOverheadCostPerYear, Value: "240000"},
		{Key: KeyStandardMonthlyHours, Value: "168"},
		{Key: KeyFinancialYearStart, Value: "1"},
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg := Resolve(db)
	if cfg.OverheadCostPerYear != 240000 {
		t.Fatalf("expected 240000 got %v", cfg.OverheadCostPerYear)
	}
	if cfg.StandardMonthlyHours != 168 {
		t.Fatalf("expected 168 got %v", cfg.StandardMonthlyHours)
	}
	if cfg.FinancialYearStart != 1 {
		t.Fatalf("expected 1 got %v", cfg.FinancialYearStart)
	}
}

func TestResolveRejectsZeroStandardHours(t *testing.T) {
	db := setupConfigTestDB(t)
	seed := []models.SystemConfig{
		{Key: KeyStandardMonthlyHours, Value: "0"},
		{Key: KeyOverheadCostPerYear, Value: "not-a-number"},
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg := Resolve(db)
	if cfg.StandardMonthlyHours != DefaultStandardMonthlyHours {
		t.Fatalf("zero stored hours must fall back to default, got %v", cfg.StandardMonthlyHours)
	}
	if cfg.OverheadCostPerYear != DefaultOverheadCostPerYear {
		t.Fatalf("unparsable overhead must fall back to default, got %v", cfg.OverheadCostPerYear)
	}
}
