package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEvaluateThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		current, threshold int64
		want               StockStatus
	}{
		{40, 50, StockCritical},
		{50, 50, StockCritical},
		{-10, 50, StockCritical},
		{51, 50, StockLow},
		{75, 50, StockLow},
		{76, 50, StockNormal},
		{0, 0, StockCritical},
		{1, 0, StockNormal},
	}
	for _, tt := range tests {
		got := EvaluateThreshold(decimal.NewFromInt(tt.current), decimal.NewFromInt(tt.threshold))
		if got != tt.want {
			t.Errorf("EvaluateThreshold(%d, %d) = %q, want %q", tt.current, tt.threshold, got, tt.want)
		}
	}
}

func TestEvaluateProjection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		projected, threshold int64
		want                 ProjectionHealth
	}{
		{10, 20, HealthNeedsReorder},
		{25, 20, HealthMonitor},
		{31, 20, HealthHealthy},
	}
	for _, tt := range tests {
		got := EvaluateProjection(decimal.NewFromInt(tt.projected), decimal.NewFromInt(tt.threshold))
		if got != tt.want {
			t.Errorf("EvaluateProjection(%d, %d) = %q, want %q", tt.projected, tt.threshold, got, tt.want)
		}
	}
}

func TestStockPercentage(t *testing.T) {
	t.Parallel()

	if got := StockPercentage(decimal.NewFromInt(40), decimal.NewFromInt(50)); !got.Equal(decimal.NewFromInt(80)) {
		t.Errorf("StockPercentage(40, 50) = %s, want 80", got)
	}
	if got := StockPercentage(decimal.NewFromInt(40), decimal.Zero); !got.IsZero() {
		t.Errorf("StockPercentage(40, 0) = %s, want 0", got)
	}
}

func TestApplyPartialUpdate(t *testing.T) {
	t.Parallel()

	item := &Item{MaterialName: "A4 Paper", Category: "Paper", UnitOfMeasure: "reams",
		CurrentStock: decimal.NewFromInt(100), Threshold: decimal.NewFromInt(50), IsActive: true}
	stock := decimal.NewFromInt(30)
	supplier := "  "
	apply(item, UpdateItemRequest{CurrentStock: &stock, Supplier: &supplier})

	if !item.CurrentStock.Equal(stock) {
		t.Errorf("CurrentStock = %s, want 30", item.CurrentStock)
	}
	if item.Supplier != nil {
		t.Errorf("Supplier = %q, want nil", *item.Supplier)
	}
	if item.MaterialName != "A4 Paper" || !item.Threshold.Equal(decimal.NewFromInt(50)) {
		t.Errorf("untouched fields changed: %+v", item)
	}
	if !item.AtOrBelowThreshold() {
		t.Error("AtOrBelowThreshold() = false, want true")
	}
}
