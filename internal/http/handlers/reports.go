package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"restaurant-admin-service/internal/arabic"
	"restaurant-admin-service/internal/reports"
	"restaurant-admin-service/internal/utils"
	"restaurant-admin-service/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

// reportPeriod is the parsed query window for the sales report.
type reportPeriod struct {
	branchID int64
	start    *time.Time
	end      *time.Time
	shiftID  *int64
}

func (h *Handler) readReportPeriod(r *http.Request) (reportPeriod, error) {
	var period reportPeriod

	branchID, ok := readOptionalInt64(strings.TrimSpace(r.URL.Query().Get("branchId")))
	if !ok {
		return period, fmt.Errorf("branch id is required")
	}
	period.branchID = branchID

	if raw := strings.TrimSpace(r.URL.Query().Get("startDate")); raw != "" {
		start, err := parseDateTimeParam(raw)
		if err != nil {
			return period, fmt.Errorf("invalid start date")
		}
		period.start = &start
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("endDate")); raw != "" {
		end, err := parseDateTimeParam(raw)
		if err != nil {
			return period, fmt.Errorf("invalid end date")
		}
		period.end = &end
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("shiftId")); raw != "" {
		shiftID, ok := readOptionalInt64(raw)
		if !ok {
			return period, fmt.Errorf("invalid shift id")
		}
		period.shiftID = &shiftID
	}

	// An open-ended window closes on today's branch-local date.
	if period.start != nil && period.end == nil {
		today, err := time.Parse("2006-01-02", utils.CurrentDateInTimezone(h.Config.BranchTimezone))
		if err == nil {
			period.end = &today
		}
	}
	return period, nil
}

func (p reportPeriod) cacheKey(prefix string) string {
	parts := []string{}
	if p.start != nil {
		parts = append(parts, p.start.Format("2006-01-02"))
	}
	if p.end != nil {
		parts = append(parts, p.end.Format("2006-01-02"))
	}
	if p.shiftID != nil {
		parts = append(parts, fmt.Sprint(*p.shiftID))
	}
	return reportCacheKey(prefix, p.branchID, parts...)
}

// loadReportOrders fetches the orders in the window together with
// their line items, plus the database-side grand total.
func (h *Handler) loadReportOrders(r *http.Request, period reportPeriod) ([]reports.Order, float64, error) {
	where := []string{"o.branch_id = $1", "o.status <> 'CANCELLED'"}
	args := []any{period.branchID}
	if period.start != nil {
		where = append(where, "o.placed_at >= "+itoaArg(&args, *period.start))
	}
	if period.end != nil {
		where = append(where, "o.placed_at < "+itoaArg(&args, period.end.Add(24*time.Hour)))
	}
	if period.shiftID != nil {
		where = append(where, "o.shift_id = "+itoaArg(&args, *period.shiftID))
	}
	whereClause := strings.Join(where, " and ")

	var serverTotal float64
	if err := h.DB.QueryRow(r.Context(),
		"select coalesce(sum(o.total), 0) from orders o where "+whereClause, args...).Scan(&serverTotal); err != nil {
		return nil, 0, err
	}

	rows, err := h.DB.Query(r.Context(), `
		select o.id, o.order_number, o.total, o.subtotal, o.discount, o.delivery_fee,
			o.delivery_area_name, o.status, o.shift_id
		from orders o
		where `+whereClause+`
		order by o.placed_at
	`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := []reports.Order{}
	index := map[int64]int{}
	orderIDs := []int64{}
	for rows.Next() {
		var order reports.Order
		var deliveryFee float64
		var areaName pgtype.Text
		var shiftID pgtype.Int8
		if err := rows.Scan(&order.ID, &order.OrderNumber, &order.TotalWithFee, &order.TotalWithoutFee,
			&order.TotalDiscount, &deliveryFee, &areaName, &order.Status, &shiftID); err != nil {
			return nil, 0, err
		}
		if deliveryFee > 0 {
			order.DeliveryFee = &reports.FeeInfo{
				Fee:      deliveryFee,
				AreaName: textOrDefault(areaName, ""),
				BranchID: period.branchID,
			}
		}
		order.ShiftID = int8Ptr(shiftID)
		order.Items = []reports.LineItem{}
		index[order.ID] = len(orders)
		orderIDs = append(orderIDs, order.ID)
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(orders) == 0 {
		return orders, serverTotal, nil
	}

	itemRows, err := h.DB.Query(r.Context(), `
		select i.order_id, i.quantity, i.total_price, m.name, i.menu_item_name
		from order_items i
		left join menu_items m on m.id = i.menu_item_id
		where i.order_id = any($1)
	`, orderIDs)
	if err != nil {
		return nil, 0, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID int64
		var item reports.LineItem
		var liveName, snapshot pgtype.Text
		if err := itemRows.Scan(&orderID, &item.Quantity, &item.TotalPrice, &liveName, &snapshot); err != nil {
			return nil, 0, err
		}
		item.MenuItemName = textPtr(liveName)
		item.NameSnapshot = textPtr(snapshot)
		if pos, ok := index[orderID]; ok {
			orders[pos].Items = append(orders[pos].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, 0, err
	}

	return orders, serverTotal, nil
}

// reportPayload renders a Summary as the API response body, carrying
// both raw numbers and the Arabic display strings.
func reportPayload(summary reports.Summary) map[string]any {
	topProducts := make([]map[string]any, 0, len(summary.TopProducts))
	for _, product := range summary.TopProducts {
		topProducts = append(topProducts, map[string]any{
			"name":              product.Name,
			"quantity":          product.Quantity,
			"quantityFormatted": arabic.FormatCount(float64(product.Quantity)),
			"revenue":           product.Revenue,
			"revenueFormatted":  arabic.FormatCurrency(product.Revenue),
		})
	}
	return map[string]any{
		"totalSales":              summary.TotalSales,
		"totalSalesFormatted":     arabic.FormatCurrency(summary.TotalSales),
		"totalOrders":             summary.TotalOrders,
		"totalOrdersFormatted":    arabic.FormatCount(float64(summary.TotalOrders)),
		"deliveryOrders":          summary.DeliveryOrders,
		"deliveryOrdersFormatted": arabic.FormatCount(float64(summary.DeliveryOrders)),
		"pickupOrders":            summary.PickupOrders,
		"pickupOrdersFormatted":   arabic.FormatCount(float64(summary.PickupOrders)),
		"topProducts":             topProducts,
		"dateRange":               summary.DateRange,
	}
}

func (h *Handler) AdminSalesReport(w http.ResponseWriter, r *http.Request) {
	period, err := h.readReportPeriod(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	key := period.cacheKey("sales")
	if cached, ok := getReportCache(key); ok {
		response.Success(w, cached)
		return
	}

	orders, serverTotal, err := h.loadReportOrders(r, period)
	if err != nil {
		h.Logger.Error("failed to load report orders", zapError(err), zap.Int64("branch_id", period.branchID))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to build report")
		return
	}

	summary := reports.Summarize(orders, serverTotal, period.start, period.end)
	payload := reportPayload(summary)
	setReportCache(key, payload, h.Config.ReportCacheTTL)

	response.Success(w, payload)
}

func (h *Handler) reportSummary(r *http.Request, period reportPeriod) (reports.Summary, error) {
	orders, serverTotal, err := h.loadReportOrders(r, period)
	if err != nil {
		return reports.Summary{}, err
	}
	return reports.Summarize(orders, serverTotal, period.start, period.end), nil
}
