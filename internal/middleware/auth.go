package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"restaurant-admin-service/internal/auth"

	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const authContextKey contextKey = "authContext"

type AuthContext struct {
	UserID    int64
	SessionID int64
	Role      auth.UserRole
	Email     string
	BranchID  *int64
	IsAdmin   bool
}

func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	value := ctx.Value(authContextKey)
	if value == nil {
		return nil, false
	}
	ac, ok := value.(*AuthContext)
	return ac, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   "UNAUTHORIZED",
		"message": message,
	})
}

// AdminAuth verifies the bearer token, restricts access to back-office
// roles, and validates the session row is still active.
func AdminAuth(db *pgxpool.Pool, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ParseBearerToken(r.Header.Get("Authorization"))
			claims, err := auth.VerifyAccessToken(token, jwtSecret)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}

			if claims.Role != auth.RoleAdmin && claims.Role != auth.RoleBranchManager {
				writeAuthError(w, http.StatusForbidden, "Admin access required")
				return
			}

			userID, err := strconv.ParseInt(claims.UserID, 10, 64)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			sessionID, err := strconv.ParseInt(claims.SessionID, 10, 64)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			var userActive bool
			query := `
				select u.is_active
				from users u
				join user_sessions s on s.id = $2 and s.user_id = u.id
					and s.status = 'ACTIVE' and s.expires_at > now()
				where u.id = $1
			`
			if err := db.QueryRow(r.Context(), query, userID, sessionID).Scan(&userActive); err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Session is no longer valid")
				return
			}
			if !userActive {
				writeAuthError(w, http.StatusForbidden, "Account is disabled")
				return
			}

			authCtx := &AuthContext{
				UserID:    userID,
				SessionID: sessionID,
				Role:      claims.Role,
				Email:     claims.Email,
				IsAdmin:   claims.Role == auth.RoleAdmin,
			}
			if claims.BranchID != nil {
				if branchID, err := strconv.ParseInt(*claims.BranchID, 10, 64); err == nil {
					authCtx.BranchID = &branchID
				}
			}

			ctx := WithAuthContext(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
