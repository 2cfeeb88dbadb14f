package finance

import (
	"math"
	"testing"

	"profitdash-backend/internal/apperr"
)

func TestCostPerHour(t *testing.T) {
	got, err := CostPerHour(1_800_000, 0, 160)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 937.50 {
		t.Fatalf("expected 937.50 got %v", got)
	}

	got, err = CostPerHour(1_800_000, 180_000, 160)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1031.25 {
		t.Fatalf("expected 1031.25 got %v", got)
	}
}

func TestCostPerHourZeroStdHours(t *testing.T) {
	_, err := CostPerHour(1_800_000, 180_000, 0)
	if err == nil {
		t.Fatal("expected error for zero standard hours")
	}
	if !apperr.IsKind(err, apperr.KindConfig) {
		t.Fatalf("expected config error kind, got %v", apperr.KindOf(err))
	}
}

func TestCostPerHourCoercesNaN(t *testing.T) {
	got, err := CostPerHour(math.NaN(), 0, 160)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected 0 for NaN ctc, got %v", got)
	}
}

func TestMarginPercent(t *testing.T) {
	cases := []struct {
		revenue, cost, want float64
	}{
		{0, 5000, -100},
		{0, 0, 0},
		{10000, 5000, 50},
		{10000, 15000, -50},
		{8000, 0, 100},
	}
	for _, c := range cases {
		if got := MarginPercent(c.revenue, c.cost); got != c.want {
			t.Errorf("MarginPercent(%v, %v) = %v, want %v", c.revenue, c.cost, got, c.want)
		}
	}
}

func TestBurnRate(t *testing.T) {
	if got := BurnRate(50000, 100000); got != 50 {
		t.Fatalf("expected 50 got %v", got)
	}
	if got := BurnRate(50000, 0); got != 0 {
		t.Fatalf("expected 0 for zero contract value, got %v", got)
	}
}

func TestUtilizationPercent(t *testing.T) {
	if got := UtilizationPercent(120, 160); got != 75 {
		t.Fatalf("expected 75 got %v", got)
	}
	if got := UtilizationPercent(10, 0); got != 0 {
		t.Fatalf("expected 0 for zero total, got %v", got)
	}
	// uncapped when over-logged
	if got := UtilizationPercent(200, 160); got != 125 {
		t.Fatalf("expected 125 got %v", got)
	}
}

func TestTMRevenueAndProfit(t *testing.T) {
	if got := TMRevenue(100, 1200); got != 120000 {
		t.Fatalf("expected 120000 got %v", got)
	}
	if got := Profit(120000, 90000); got != 30000 {
		t.Fatalf("expected 30000 got %v", got)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(937.499999999999); got != 937.5 {
		t.Fatalf("expected 937.5 got %v", got)
	}
	if got := Round2(10.005); got != 10.01 {
		t.Fatalf("expected 10.01 got %v", got)
	}
	if got := Round2(math.NaN()); got != 0 {
		t.Fatalf("expected 0 for NaN, got %v", got)
	}
}
