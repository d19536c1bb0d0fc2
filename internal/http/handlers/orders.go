package handlers

import (
	"net/http"
	"strings"
	"time"

	"restaurant-admin-service/internal/arabic"
	"restaurant-admin-service/internal/pagination"
	"restaurant-admin-service/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

var orderStatuses = map[string]bool{
	"PENDING":          true,
	"CONFIRMED":        true,
	"PREPARING":        true,
	"OUT_FOR_DELIVERY": true,
	"DELIVERED":        true,
	"CANCELLED":        true,
}

func isValidOrderStatus(status string) bool {
	return orderStatuses[status]
}

func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	page, limit := readPageParams(r)

	where := []string{"1=1"}
	args := []any{}

	if raw := strings.TrimSpace(r.URL.Query().Get("branchId")); raw != "" {
		branchID, ok := readOptionalInt64(raw)
		if !ok {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid branch id")
			return
		}
		where = append(where, "o.branch_id = "+itoaArg(&args, branchID))
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("shiftId")); raw != "" {
		shiftID, ok := readOptionalInt64(raw)
		if !ok {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid shift id")
			return
		}
		where = append(where, "o.shift_id = "+itoaArg(&args, shiftID))
	}
	if status := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))); status != "" {
		if !isValidOrderStatus(status) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid order status")
			return
		}
		where = append(where, "o.status = "+itoaArg(&args, status))
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("startDate")); raw != "" {
		start, err := parseDateTimeParam(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid start date")
			return
		}
		where = append(where, "o.placed_at >= "+itoaArg(&args, start))
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("endDate")); raw != "" {
		end, err := parseDateTimeParam(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid end date")
			return
		}
		where = append(where, "o.placed_at < "+itoaArg(&args, end.Add(24*time.Hour)))
	}

	whereClause := " where " + strings.Join(where, " and ")

	var total int64
	if err := h.DB.QueryRow(r.Context(),
		"select count(*) from orders o"+whereClause, args...).Scan(&total); err != nil {
		h.Logger.Error("failed to count orders", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch orders")
		return
	}

	state := pagination.New(total, limit)
	state.GoToPage(page)

	query := `
		select o.id, o.order_number, o.status, o.total, o.delivery_fee,
			o.delivery_area_name, o.branch_id, o.shift_id, o.customer_name,
			o.customer_phone, o.placed_at
		from orders o` + whereClause + `
		order by o.placed_at desc
		limit ` + itoaArg(&args, state.PageSize) + ` offset ` + itoaArg(&args, state.Offset())

	rows, err := h.DB.Query(r.Context(), query, args...)
	if err != nil {
		h.Logger.Error("failed to list orders", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch orders")
		return
	}
	defer rows.Close()

	orders := []map[string]any{}
	for rows.Next() {
		var id, branchID int64
		var shiftID pgtype.Int8
		var orderNumber, status string
		var orderTotal, deliveryFee float64
		var areaName, customerName, customerPhone pgtype.Text
		var placedAt time.Time
		if err := rows.Scan(&id, &orderNumber, &status, &orderTotal, &deliveryFee,
			&areaName, &branchID, &shiftID, &customerName, &customerPhone, &placedAt); err != nil {
			h.Logger.Error("failed to scan order", zapError(err))
			response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch orders")
			return
		}

		orderType := "pickup"
		if deliveryFee > 0 {
			orderType = "delivery"
		}

		orders = append(orders, map[string]any{
			"id":                id,
			"orderNumber":       orderNumber,
			"status":            status,
			"type":              orderType,
			"total":             orderTotal,
			"totalFormatted":    arabic.FormatCurrency(orderTotal),
			"deliveryFee":       deliveryFee,
			"deliveryArea":      textPtr(areaName),
			"branchId":          branchID,
			"shiftId":           int8Ptr(shiftID),
			"customerName":      textPtr(customerName),
			"customerPhone":     textPtr(customerPhone),
			"placedAt":          placedAt,
			"placedAtFormatted": formatStoredTimestamp(placedAt),
		})
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("order rows error", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch orders")
		return
	}

	response.Success(w, map[string]any{
		"orders": orders,
		"meta": map[string]any{
			"currentPage":         state.CurrentPage,
			"totalPages":          state.TotalPages,
			"totalItems":          state.TotalItems,
			"totalItemsFormatted": arabic.FormatCount(float64(state.TotalItems)),
			"visiblePages":        state.Visible(),
		},
	})
}

func (h *Handler) AdminGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid order id")
		return
	}

	var orderNumber, status string
	var orderTotal, deliveryFee float64
	var areaName, customerName, customerPhone pgtype.Text
	var branchID int64
	var shiftID pgtype.Int8
	var placedAt time.Time
	err = h.DB.QueryRow(r.Context(), `
		select order_number, status, total, delivery_fee, delivery_area_name,
			branch_id, shift_id, customer_name, customer_phone, placed_at
		from orders where id = $1
	`, orderID).Scan(&orderNumber, &status, &orderTotal, &deliveryFee, &areaName,
		&branchID, &shiftID, &customerName, &customerPhone, &placedAt)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}

	items := []map[string]any{}
	rows, err := h.DB.Query(r.Context(), `
		select i.quantity, i.total_price, i.menu_item_name, m.name
		from order_items i
		left join menu_items m on m.id = i.menu_item_id
		where i.order_id = $1
		order by i.id
	`, orderID)
	if err != nil {
		h.Logger.Error("failed to load order items", zapError(err), zap.Int64("order_id", orderID))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch order")
		return
	}
	defer rows.Close()

	for rows.Next() {
		var quantity int
		var totalPrice float64
		var snapshot, liveName pgtype.Text
		if err := rows.Scan(&quantity, &totalPrice, &snapshot, &liveName); err != nil {
			h.Logger.Error("failed to scan order item", zapError(err))
			response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch order")
			return
		}
		name := textOrDefault(liveName, textOrDefault(snapshot, ""))
		items = append(items, map[string]any{
			"name":                name,
			"quantity":            quantity,
			"totalPrice":          totalPrice,
			"totalPriceFormatted": arabic.FormatCurrency(totalPrice),
		})
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("order item rows error", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch order")
		return
	}

	response.Success(w, map[string]any{
		"id":                orderID,
		"orderNumber":       orderNumber,
		"status":            status,
		"total":             orderTotal,
		"totalFormatted":    arabic.FormatCurrency(orderTotal),
		"deliveryFee":       deliveryFee,
		"deliveryArea":      textPtr(areaName),
		"branchId":          branchID,
		"shiftId":           int8Ptr(shiftID),
		"customerName":      textPtr(customerName),
		"customerPhone":     textPtr(customerPhone),
		"placedAt":          placedAt,
		"placedAtFormatted": formatStoredTimestamp(placedAt),
		"items":             items,
	})
}
