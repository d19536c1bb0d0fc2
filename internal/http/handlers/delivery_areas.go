package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"restaurant-admin-service/internal/arabic"
	"restaurant-admin-service/pkg/response"

	"go.uber.org/zap"
)

func (h *Handler) AdminListDeliveryAreas(w http.ResponseWriter, r *http.Request) {
	query := `
		select a.id, a.name, a.fee, a.estimated_minutes_min, a.estimated_minutes_max,
			a.is_active, a.branch_id, c.name
		from delivery_areas a
		join cities c on c.id = a.city_id
	`
	args := []any{}
	if raw := strings.TrimSpace(r.URL.Query().Get("branchId")); raw != "" {
		branchID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid branch id")
			return
		}
		args = append(args, branchID)
		query += " where a.branch_id = $1"
	}
	query += " order by c.name, a.name"

	rows, err := h.DB.Query(r.Context(), query, args...)
	if err != nil {
		h.Logger.Error("failed to list delivery areas", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch delivery areas")
		return
	}
	defer rows.Close()

	areas := []map[string]any{}
	for rows.Next() {
		var id, branchID int64
		var name, cityName string
		var fee float64
		var estMin, estMax int
		var isActive bool
		if err := rows.Scan(&id, &name, &fee, &estMin, &estMax, &isActive, &branchID, &cityName); err != nil {
			h.Logger.Error("failed to scan delivery area", zapError(err))
			response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch delivery areas")
			return
		}
		areas = append(areas, map[string]any{
			"id":                  id,
			"name":                name,
			"city":                cityName,
			"branchId":            branchID,
			"fee":                 fee,
			"feeFormatted":        arabic.FormatCurrency(fee),
			"estimatedMinutesMin": estMin,
			"estimatedMinutesMax": estMax,
			"isActive":            isActive,
		})
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("delivery area rows error", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch delivery areas")
		return
	}

	response.Success(w, map[string]any{"deliveryAreas": areas})
}

func (h *Handler) AdminCreateDeliveryArea(w http.ResponseWriter, r *http.Request) {
	body, err := decodeJSONMap(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	name := readStringField(body["name"])
	cityName := readStringField(body["city"])
	branchID, hasBranch := readOptionalInt64(body["branchId"])
	if name == "" || cityName == "" || !hasBranch {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Name, city and branch are required")
		return
	}

	fee := 0.0
	if v := readOptionalFloat(body["fee"]); v != nil {
		fee = *v
	}
	if fee < 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Delivery fee cannot be negative")
		return
	}

	estMin, estMax := readEstimateRange(body)
	if estMin > estMax {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Estimated time range is invalid")
		return
	}

	tx, err := h.DB.Begin(r.Context())
	if err != nil {
		h.Logger.Error("failed to begin delivery area tx", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create delivery area")
		return
	}
	defer tx.Rollback(r.Context())

	var cityID int64
	err = tx.QueryRow(r.Context(), `
		insert into cities (name) values ($1)
		on conflict (name) do update set name = excluded.name
		returning id
	`, cityName).Scan(&cityID)
	if err != nil {
		h.Logger.Error("failed to upsert city", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create delivery area")
		return
	}

	var areaID int64
	err = tx.QueryRow(r.Context(), `
		insert into delivery_areas (name, city_id, branch_id, fee, estimated_minutes_min, estimated_minutes_max, is_active)
		values ($1, $2, $3, $4, $5, $6, true)
		returning id
	`, name, cityID, branchID, fee, estMin, estMax).Scan(&areaID)
	if err != nil {
		h.Logger.Error("failed to insert delivery area", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create delivery area")
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		h.Logger.Error("failed to commit delivery area", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create delivery area")
		return
	}

	h.Logger.Info("delivery area created",
		zap.Int64("area_id", areaID), zap.Int64("branch_id", branchID), zap.String("name", name))
	response.Success(w, map[string]any{"id": areaID})
}

func (h *Handler) AdminUpdateDeliveryArea(w http.ResponseWriter, r *http.Request) {
	areaID, err := readPathInt64(r, "areaId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid delivery area id")
		return
	}

	body, err := decodeJSONMap(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	setClauses := []string{}
	args := []any{}
	addSet := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, column+" = $"+strconv.Itoa(len(args)))
	}

	if name := readOptionalString(body["name"]); name != nil {
		addSet("name", *name)
	}
	if fee := readOptionalFloat(body["fee"]); fee != nil {
		if *fee < 0 {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Delivery fee cannot be negative")
			return
		}
		addSet("fee", *fee)
	}
	newMin, hasMin := readOptionalInt64(body["estimatedMinutesMin"])
	newMax, hasMax := readOptionalInt64(body["estimatedMinutesMax"])
	if hasMin || hasMax {
		// Validate the range the row will end up with, merging the
		// incoming values over the stored ones when only one side is sent.
		var curMin, curMax int64
		err := h.DB.QueryRow(r.Context(),
			`select estimated_minutes_min, estimated_minutes_max from delivery_areas where id = $1`,
			areaID).Scan(&curMin, &curMax)
		if err != nil {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Delivery area not found")
			return
		}
		effMin, effMax := mergeEstimateRange(curMin, curMax, newMin, hasMin, newMax, hasMax)
		if effMin > effMax {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Estimated time range is invalid")
			return
		}
		if hasMin {
			addSet("estimated_minutes_min", newMin)
		}
		if hasMax {
			addSet("estimated_minutes_max", newMax)
		}
	}
	if active := readOptionalBool(body["isActive"]); active != nil {
		addSet("is_active", *active)
	}

	if len(setClauses) == 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "No fields to update")
		return
	}

	args = append(args, areaID)
	query := "update delivery_areas set " + strings.Join(setClauses, ", ") +
		", updated_at = now() where id = $" + strconv.Itoa(len(args))
	tag, err := h.DB.Exec(r.Context(), query, args...)
	if err != nil {
		h.Logger.Error("failed to update delivery area", zapError(err), zap.Int64("area_id", areaID))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update delivery area")
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Delivery area not found")
		return
	}

	response.Success(w, map[string]any{"id": areaID})
}

func (h *Handler) AdminToggleDeliveryArea(w http.ResponseWriter, r *http.Request) {
	areaID, err := readPathInt64(r, "areaId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid delivery area id")
		return
	}

	var isActive bool
	err = h.DB.QueryRow(r.Context(), `
		update delivery_areas set is_active = not is_active, updated_at = now()
		where id = $1
		returning is_active
	`, areaID).Scan(&isActive)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Delivery area not found")
		return
	}

	response.Success(w, map[string]any{"id": areaID, "isActive": isActive})
}

// mergeEstimateRange overlays the incoming estimate bounds on the
// stored ones, yielding the range an update would leave in place.
func mergeEstimateRange(curMin, curMax, newMin int64, hasMin bool, newMax int64, hasMax bool) (int64, int64) {
	effMin, effMax := curMin, curMax
	if hasMin {
		effMin = newMin
	}
	if hasMax {
		effMax = newMax
	}
	return effMin, effMax
}

func readEstimateRange(body map[string]any) (int64, int64) {
	estMin := int64(30)
	estMax := int64(45)
	if v, ok := readOptionalInt64(body["estimatedMinutesMin"]); ok {
		estMin = v
	}
	if v, ok := readOptionalInt64(body["estimatedMinutesMax"]); ok {
		estMax = v
	}
	return estMin, estMax
}
