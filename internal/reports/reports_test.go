package reports

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil, 0, nil, nil)

	if summary.TotalSales != 0 || summary.TotalOrders != 0 ||
		summary.DeliveryOrders != 0 || summary.PickupOrders != 0 {
		t.Fatalf("expected all-zero summary, got %+v", summary)
	}
	if len(summary.TopProducts) != 0 {
		t.Fatalf("expected no top products, got %d", len(summary.TopProducts))
	}
	if summary.DateRange != NoPeriodLabel {
		t.Fatalf("expected sentinel date range, got %q", summary.DateRange)
	}
}

func TestSummarizeDeliveryPickupSplit(t *testing.T) {
	orders := []Order{
		{TotalWithFee: 100, DeliveryFee: &FeeInfo{Fee: 10}},
		{TotalWithFee: 50, DeliveryFee: &FeeInfo{Fee: 0}},
	}

	summary := Summarize(orders, 0, nil, nil)

	if summary.TotalSales != 150 {
		t.Fatalf("expected total sales 150, got %v", summary.TotalSales)
	}
	if summary.DeliveryOrders != 1 || summary.PickupOrders != 1 {
		t.Fatalf("expected 1 delivery / 1 pickup, got %d / %d", summary.DeliveryOrders, summary.PickupOrders)
	}
}

func TestSummarizePartitionInvariant(t *testing.T) {
	orders := []Order{
		{DeliveryFee: &FeeInfo{Fee: 15}},
		{DeliveryFee: &FeeInfo{Fee: 0}},
		{DeliveryFee: nil},
		{DeliveryFee: &FeeInfo{Fee: 25}},
		{},
	}

	summary := Summarize(orders, 0, nil, nil)

	if summary.TotalOrders != int64(len(orders)) {
		t.Fatalf("expected %d total orders, got %d", len(orders), summary.TotalOrders)
	}
	if summary.DeliveryOrders+summary.PickupOrders != summary.TotalOrders {
		t.Fatalf("delivery %d + pickup %d must equal total %d",
			summary.DeliveryOrders, summary.PickupOrders, summary.TotalOrders)
	}
	if summary.DeliveryOrders != 2 {
		t.Fatalf("expected 2 delivery orders, got %d", summary.DeliveryOrders)
	}
}

func TestSummarizePrefersServerTotal(t *testing.T) {
	orders := []Order{{TotalWithFee: 100}, {TotalWithFee: 50}}

	summary := Summarize(orders, 180.5, nil, nil)
	if summary.TotalSales != 180.5 {
		t.Fatalf("expected server total 180.5, got %v", summary.TotalSales)
	}

	summary = Summarize(orders, 0, nil, nil)
	if summary.TotalSales != 150 {
		t.Fatalf("expected client sum 150, got %v", summary.TotalSales)
	}
}

func TestSummarizeTopProducts(t *testing.T) {
	orders := []Order{
		{
			Items: []LineItem{
				{Quantity: 2, TotalPrice: 80, MenuItemName: strPtr("كشري")},
				{Quantity: 1, TotalPrice: 30, MenuItemName: strPtr("طعمية")},
			},
		},
		{
			Items: []LineItem{
				{Quantity: 3, TotalPrice: 120, MenuItemName: strPtr("كشري")},
				{Quantity: 1, TotalPrice: 45, MenuItemName: strPtr("فول")},
				{Quantity: 1, TotalPrice: 20, MenuItemName: strPtr("شاي")},
				{Quantity: 2, TotalPrice: 50, MenuItemName: strPtr("عصير")},
				{Quantity: 1, TotalPrice: 35, MenuItemName: strPtr("سلطة")},
			},
		},
	}

	summary := Summarize(orders, 0, nil, nil)

	if len(summary.TopProducts) != TopProductLimit {
		t.Fatalf("expected %d top products, got %d", TopProductLimit, len(summary.TopProducts))
	}

	top := summary.TopProducts[0]
	if top.Name != "كشري" || top.Quantity != 5 || top.Revenue != 200 {
		t.Fatalf("expected merged leader, got %+v", top)
	}

	for i := 1; i < len(summary.TopProducts); i++ {
		if summary.TopProducts[i].Revenue > summary.TopProducts[i-1].Revenue {
			t.Fatalf("top products not sorted by revenue at index %d", i)
		}
	}
}

func TestSummarizeNameFallback(t *testing.T) {
	orders := []Order{
		{
			Items: []LineItem{
				{Quantity: 1, TotalPrice: 10, NameSnapshot: strPtr("صنف قديم")},
				{Quantity: 1, TotalPrice: 5},
			},
		},
	}

	summary := Summarize(orders, 0, nil, nil)

	names := make(map[string]bool)
	for _, stat := range summary.TopProducts {
		names[stat.Name] = true
	}
	if !names["صنف قديم"] {
		t.Fatal("expected snapshot name to be used when the live name is gone")
	}
	if !names["صنف محذوف"] {
		t.Fatal("expected the deleted-item label for items with no name at all")
	}
}

func TestSummarizeDateRange(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	summary := Summarize(nil, 0, &start, &end)
	expected := "٠١/٠١/٢٠٢٦ - ٣١/٠١/٢٠٢٦"
	if summary.DateRange != expected {
		t.Fatalf("expected %q, got %q", expected, summary.DateRange)
	}

	summary = Summarize(nil, 0, &start, nil)
	if summary.DateRange != NoPeriodLabel {
		t.Fatalf("expected sentinel when end missing, got %q", summary.DateRange)
	}
}
