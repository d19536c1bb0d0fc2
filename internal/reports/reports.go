// Package reports computes sales report summaries from order records
// in a single pass. Everything here is pure: no I/O, no errors, an
// empty input yields an all-zero summary.
package reports

import (
	"sort"
	"strings"
	"time"

	"restaurant-admin-service/internal/arabic"
)

const (
	// TopProductLimit caps the ranked product list.
	TopProductLimit = 5

	// NoPeriodLabel is the date-range sentinel when either bound of
	// the reporting period is missing.
	NoPeriodLabel = "لم يتم تحديد الفترة"

	// deletedItemLabel names line items whose menu item no longer
	// exists and that carried no name snapshot either.
	deletedItemLabel = "صنف محذوف"
)

// FeeInfo is an order's embedded delivery pricing. Fee > 0 classifies
// the order as delivery; zero (or an absent record) means pickup.
type FeeInfo struct {
	Fee      float64 `json:"fee"`
	AreaName string  `json:"areaName"`
	BranchID int64   `json:"branchId"`
}

// LineItem is one ordered product with price snapshots captured at
// order time. MenuItemName is the live menu name when the item still
// exists; NameSnapshot is the denormalized fallback.
type LineItem struct {
	Quantity     int64   `json:"quantity"`
	TotalPrice   float64 `json:"totalPrice"`
	MenuItemName *string `json:"menuItemName,omitempty"`
	NameSnapshot *string `json:"nameSnapshot,omitempty"`
}

// Order is the order record consumed by the aggregator.
type Order struct {
	ID              int64      `json:"id"`
	OrderNumber     string     `json:"orderNumber"`
	TotalWithFee    float64    `json:"totalWithFee"`
	TotalWithoutFee float64    `json:"totalWithoutFee"`
	TotalDiscount   float64    `json:"totalDiscount"`
	DeliveryFee     *FeeInfo   `json:"deliveryFee,omitempty"`
	Items           []LineItem `json:"items"`
	Status          string     `json:"status"`
	ShiftID         *int64     `json:"shiftId,omitempty"`
}

// ProductStat is one entry of the top-products ranking.
type ProductStat struct {
	Name     string  `json:"name"`
	Quantity int64   `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// Summary is the computed report. DeliveryOrders and PickupOrders
// always partition TotalOrders exactly.
type Summary struct {
	TotalSales     float64       `json:"totalSales"`
	TotalOrders    int64         `json:"totalOrders"`
	DeliveryOrders int64         `json:"deliveryOrders"`
	PickupOrders   int64         `json:"pickupOrders"`
	TopProducts    []ProductStat `json:"topProducts"`
	DateRange      string        `json:"dateRange"`
}

// Summarize aggregates orders into a Summary. A positive serverTotal
// is preferred over the client-side sum so a grand total computed by
// the database wins over a sum of paginated partials. Nil start or
// end produces the no-period sentinel label.
func Summarize(orders []Order, serverTotal float64, start, end *time.Time) Summary {
	summary := Summary{
		TopProducts: []ProductStat{},
		DateRange:   formatDateRange(start, end),
	}

	products := make(map[string]*ProductStat)
	clientTotal := 0.0
	for _, order := range orders {
		summary.TotalOrders++
		clientTotal += order.TotalWithFee

		if order.DeliveryFee != nil && order.DeliveryFee.Fee > 0 {
			summary.DeliveryOrders++
		} else {
			summary.PickupOrders++
		}

		for _, item := range order.Items {
			name := resolveItemName(item)
			stat := products[name]
			if stat == nil {
				stat = &ProductStat{Name: name}
				products[name] = stat
			}
			stat.Quantity += item.Quantity
			stat.Revenue += item.TotalPrice
		}
	}

	if serverTotal > 0 {
		summary.TotalSales = serverTotal
	} else {
		summary.TotalSales = clientTotal
	}

	summary.TopProducts = rankProducts(products)
	return summary
}

// resolveItemName prefers the live menu name and falls back to the
// order-time snapshot; items with the same resolved name merge even
// when they came from different menu ids.
func resolveItemName(item LineItem) string {
	if item.MenuItemName != nil {
		if name := strings.TrimSpace(*item.MenuItemName); name != "" {
			return name
		}
	}
	if item.NameSnapshot != nil {
		if name := strings.TrimSpace(*item.NameSnapshot); name != "" {
			return name
		}
	}
	return deletedItemLabel
}

func rankProducts(products map[string]*ProductStat) []ProductStat {
	ranked := make([]ProductStat, 0, len(products))
	for _, stat := range products {
		ranked = append(ranked, *stat)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Revenue != ranked[j].Revenue {
			return ranked[i].Revenue > ranked[j].Revenue
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > TopProductLimit {
		ranked = ranked[:TopProductLimit]
	}
	return ranked
}

func formatDateRange(start, end *time.Time) string {
	if start == nil || end == nil {
		return NoPeriodLabel
	}
	return arabic.Digits(start.Format("02/01/2006")) + " - " + arabic.Digits(end.Format("02/01/2006"))
}
