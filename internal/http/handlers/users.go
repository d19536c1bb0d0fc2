package handlers

import (
	"net/http"
	"strings"
	"time"

	"restaurant-admin-service/internal/arabic"
	"restaurant-admin-service/internal/auth"
	"restaurant-admin-service/internal/middleware"
	"restaurant-admin-service/internal/pagination"
	"restaurant-admin-service/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := readPageParams(r)

	where := "where 1=1"
	args := []any{}
	if role := strings.TrimSpace(r.URL.Query().Get("role")); role != "" {
		args = append(args, role)
		where += " and role = $1"
	}

	var total int64
	if err := h.DB.QueryRow(r.Context(),
		"select count(*) from users "+where, args...).Scan(&total); err != nil {
		h.Logger.Error("failed to count users", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch users")
		return
	}

	state := pagination.New(total, limit)
	state.GoToPage(page)

	query := `
		select id, name, email, role, branch_id, is_active, created_at
		from users ` + where + `
		order by created_at desc
		limit ` + itoaArg(&args, limit) + ` offset ` + itoaArg(&args, state.Offset())

	rows, err := h.DB.Query(r.Context(), query, args...)
	if err != nil {
		h.Logger.Error("failed to list users", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch users")
		return
	}
	defer rows.Close()

	users := []map[string]any{}
	for rows.Next() {
		var id int64
		var name, email, role string
		var branchID pgtype.Int8
		var isActive bool
		var createdAt time.Time
		if err := rows.Scan(&id, &name, &email, &role, &branchID, &isActive, &createdAt); err != nil {
			h.Logger.Error("failed to scan user", zapError(err))
			response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch users")
			return
		}
		users = append(users, map[string]any{
			"id":        id,
			"name":      name,
			"email":     email,
			"role":      role,
			"branchId":  int8Ptr(branchID),
			"isActive":  isActive,
			"createdAt": createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("user rows error", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch users")
		return
	}

	response.Success(w, map[string]any{
		"users": users,
		"meta": map[string]any{
			"currentPage":         state.CurrentPage,
			"totalPages":          state.TotalPages,
			"totalItems":          state.TotalItems,
			"totalItemsFormatted": arabic.FormatCount(float64(state.TotalItems)),
			"visiblePages":        pagination.VisiblePages(state.CurrentPage, state.TotalPages, pagination.DefaultDelta),
		},
	})
}

func (h *Handler) AdminCreateUser(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok || !authCtx.IsAdmin {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Admin access required")
		return
	}

	body, err := decodeJSONMap(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	name := readStringField(body["name"])
	email := strings.ToLower(readStringField(body["email"]))
	password := readStringField(body["password"])
	role := auth.UserRole(readStringField(body["role"]))

	if name == "" || email == "" || password == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Name, email and password are required")
		return
	}
	if len(password) < 8 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Password must be at least 8 characters")
		return
	}
	switch role {
	case auth.RoleAdmin, auth.RoleBranchManager, auth.RoleCashier:
	default:
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid role")
		return
	}

	var branchID any
	if v, ok := readOptionalInt64(body["branchId"]); ok {
		branchID = v
	}
	if role != auth.RoleAdmin && branchID == nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Branch is required for this role")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		h.Logger.Error("failed to hash password", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user")
		return
	}

	var userID int64
	err = h.DB.QueryRow(r.Context(), `
		insert into users (name, email, password_hash, role, branch_id, is_active)
		values ($1, $2, $3, $4, $5, true)
		returning id
	`, name, email, string(hashed), string(role), branchID).Scan(&userID)
	if err != nil {
		h.Logger.Error("failed to insert user", zapError(err), zap.String("email", email))
		response.Error(w, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered")
		return
	}

	h.Logger.Info("user created",
		zap.Int64("user_id", userID), zap.String("role", string(role)), zap.Int64("created_by", authCtx.UserID))
	response.Success(w, map[string]any{"id": userID})
}

func (h *Handler) AdminToggleUser(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok || !authCtx.IsAdmin {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Admin access required")
		return
	}

	userID, err := readPathInt64(r, "userId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid user id")
		return
	}
	if userID == authCtx.UserID {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Cannot disable your own account")
		return
	}

	var isActive bool
	err = h.DB.QueryRow(r.Context(), `
		update users set is_active = not is_active, updated_at = now()
		where id = $1
		returning is_active
	`, userID).Scan(&isActive)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}

	// Disabling a user revokes their active sessions immediately.
	if !isActive {
		if _, err := h.DB.Exec(r.Context(),
			`update user_sessions set status = 'REVOKED' where user_id = $1 and status = 'ACTIVE'`,
			userID); err != nil {
			h.Logger.Warn("failed to revoke sessions", zapError(err), zap.Int64("user_id", userID))
		}
	}

	response.Success(w, map[string]any{"id": userID, "isActive": isActive})
}
