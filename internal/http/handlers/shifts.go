package handlers

import (
	"fmt"
	"net/http"
	"time"

	"restaurant-admin-service/internal/middleware"
	"restaurant-admin-service/internal/queue"
	"restaurant-admin-service/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

func (h *Handler) AdminListShifts(w http.ResponseWriter, r *http.Request) {
	branchID, err := readPathInt64(r, "branchId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid branch id")
		return
	}

	rows, err := h.DB.Query(r.Context(), `
		select s.id, s.name, s.status, s.started_at, s.ended_at,
			(select count(*) from orders o where o.shift_id = s.id) as order_count,
			(select coalesce(sum(o.total), 0) from orders o where o.shift_id = s.id) as order_total
		from order_shifts s
		where s.branch_id = $1
		order by s.started_at desc
		limit 100
	`, branchID)
	if err != nil {
		h.Logger.Error("failed to list shifts", zapError(err), zap.Int64("branch_id", branchID))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch shifts")
		return
	}
	defer rows.Close()

	shifts := []map[string]any{}
	for rows.Next() {
		var id int64
		var name, status string
		var startedAt time.Time
		var endedAt pgtype.Timestamptz
		var orderCount int64
		var orderTotal float64
		if err := rows.Scan(&id, &name, &status, &startedAt, &endedAt, &orderCount, &orderTotal); err != nil {
			h.Logger.Error("failed to scan shift", zapError(err))
			response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch shifts")
			return
		}
		shifts = append(shifts, map[string]any{
			"id":                 id,
			"name":               name,
			"status":             status,
			"startedAt":          startedAt,
			"startedAtFormatted": formatStoredTimestamp(startedAt),
			"endedAt":            timePtr(endedAt),
			"orderCount":         orderCount,
			"orderTotal":         orderTotal,
		})
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("shift rows error", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch shifts")
		return
	}

	response.Success(w, map[string]any{"shifts": shifts})
}

func (h *Handler) AdminStartShift(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	branchID, err := readPathInt64(r, "branchId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid branch id")
		return
	}

	body, err := decodeJSONMap(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	name := readStringField(body["name"])
	if name == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Shift name is required")
		return
	}

	// One open shift per branch. The partial unique index on
	// (branch_id) where status = 'OPEN' backs this check against races.
	var openID int64
	err = h.DB.QueryRow(r.Context(),
		`select id from order_shifts where branch_id = $1 and status = 'OPEN'`, branchID).Scan(&openID)
	if err == nil {
		response.Error(w, http.StatusConflict, "SHIFT_ALREADY_OPEN", "Branch already has an open shift")
		return
	}

	var shiftID int64
	var startedAt time.Time
	err = h.DB.QueryRow(r.Context(), `
		insert into order_shifts (branch_id, name, status, started_by, started_at)
		values ($1, $2, 'OPEN', $3, now())
		returning id, started_at
	`, branchID, name, authCtx.UserID).Scan(&shiftID, &startedAt)
	if err != nil {
		if isUniqueViolation(err) {
			response.Error(w, http.StatusConflict, "SHIFT_ALREADY_OPEN", "Branch already has an open shift")
			return
		}
		h.Logger.Error("failed to start shift", zapError(err), zap.Int64("branch_id", branchID))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to start shift")
		return
	}

	event := queue.ShiftEvent{
		Event:     "shift.started",
		ShiftID:   shiftID,
		BranchID:  branchID,
		ShiftName: name,
		ActorID:   authCtx.UserID,
		At:        startedAt,
	}
	if err := queue.PublishShiftEvent(r.Context(), h.Queue, "shift.started", event); err != nil {
		h.Logger.Warn("failed to publish shift started event", zapError(err), zap.Int64("shift_id", shiftID))
	}

	_, _ = h.DB.Exec(r.Context(), `select pg_notify('shift_updates', $1)`, fmt.Sprint(branchID))

	h.Logger.Info("shift started",
		zap.Int64("shift_id", shiftID), zap.Int64("branch_id", branchID), zap.String("name", name))
	response.Success(w, map[string]any{
		"id":        shiftID,
		"name":      name,
		"status":    "OPEN",
		"startedAt": startedAt,
	})
}

func (h *Handler) AdminEndShift(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	shiftID, err := readPathInt64(r, "shiftId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid shift id")
		return
	}

	var branchID int64
	var name string
	var endedAt time.Time
	err = h.DB.QueryRow(r.Context(), `
		update order_shifts
		set status = 'CLOSED', ended_by = $2, ended_at = now()
		where id = $1 and status = 'OPEN'
		returning branch_id, name, ended_at
	`, shiftID, authCtx.UserID).Scan(&branchID, &name, &endedAt)
	if err != nil {
		response.Error(w, http.StatusConflict, "SHIFT_NOT_OPEN", "Shift is not open")
		return
	}

	event := queue.ShiftEvent{
		Event:     "shift.ended",
		ShiftID:   shiftID,
		BranchID:  branchID,
		ShiftName: name,
		ActorID:   authCtx.UserID,
		At:        endedAt,
	}
	if err := queue.PublishShiftEvent(r.Context(), h.Queue, "shift.ended", event); err != nil {
		h.Logger.Warn("failed to publish shift ended event", zapError(err), zap.Int64("shift_id", shiftID))
	}

	_, _ = h.DB.Exec(r.Context(), `select pg_notify('shift_updates', $1)`, fmt.Sprint(branchID))

	h.Logger.Info("shift ended", zap.Int64("shift_id", shiftID), zap.Int64("branch_id", branchID))
	response.Success(w, map[string]any{
		"id":      shiftID,
		"status":  "CLOSED",
		"endedAt": endedAt,
	})
}

// AdminCurrentShift returns the open shift for a branch, if any.
func (h *Handler) AdminCurrentShift(w http.ResponseWriter, r *http.Request) {
	branchID, err := readPathInt64(r, "branchId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid branch id")
		return
	}

	var id int64
	var name string
	var startedAt time.Time
	err = h.DB.QueryRow(r.Context(), `
		select id, name, started_at
		from order_shifts
		where branch_id = $1 and status = 'OPEN'
	`, branchID).Scan(&id, &name, &startedAt)
	if err != nil {
		response.Success(w, map[string]any{"shift": nil})
		return
	}

	response.Success(w, map[string]any{
		"shift": map[string]any{
			"id":        id,
			"name":      name,
			"status":    "OPEN",
			"startedAt": startedAt,
		},
	})
}
