package workflow

import (
	"math"
	"testing"
	"time"

	"github.com/mmdatafocus/vendex_backend/mlservice"
)

func TestComputeReceiptTotals(t *testing.T) {
	totals := computeReceiptTotals([]mlservice.ReceiptItemBlock{
		{Sku: "SKU-A", Quantity: 10, UnitCost: 4.5},
		{Sku: "SKU-B", Quantity: 3, UnitCost: 12},
	})

	const subtotal = 81.0
	if totals.Subtotal != subtotal {
		t.Fatalf("subtotal = %v, want %v", totals.Subtotal, subtotal)
	}
	if math.Abs(totals.Tax-subtotal*0.05) > 1e-9 {
		t.Fatalf("tax = %v, want %v", totals.Tax, subtotal*0.05)
	}
	if math.Abs(totals.GrandTotal-subtotal*1.05) > 1e-9 {
		t.Fatalf("grand total = %v, want %v", totals.GrandTotal, subtotal*1.05)
	}
}

func TestComputeReceiptTotalsEmpty(t *testing.T) {
	totals := computeReceiptTotals(nil)
	if totals.Subtotal != 0 || totals.Tax != 0 || totals.GrandTotal != 0 {
		t.Fatalf("empty totals = %+v, want zeros", totals)
	}
}

func TestFormatStamp(t *testing.T) {
	if got := formatStamp(nil); got != "" {
		t.Fatalf("nil stamp = %q, want empty", got)
	}
	at := time.Date(2026, 9, 14, 8, 30, 0, 0, time.UTC)
	if got := formatStamp(&at); got != "2026-09-14T08:30:00Z" {
		t.Fatalf("stamp = %q", got)
	}
}
