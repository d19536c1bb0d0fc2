package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"restaurant-admin-service/internal/timefmt"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

var errMissingParam = errors.New("missing param")

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func zapError(err error) zap.Field {
	return zap.Error(err)
}

func readPathInt64(r *http.Request, key string) (int64, error) {
	value := chi.URLParam(r, key)
	if value == "" {
		return 0, errMissingParam
	}
	var out int64
	_, err := fmt.Sscan(value, &out)
	return out, err
}

func decodeJSONMap(r *http.Request) (map[string]any, error) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}

func readStringField(value any) string {
	if value == nil {
		return ""
	}
	if str, ok := value.(string); ok {
		return strings.TrimSpace(str)
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

func readOptionalString(value any) *string {
	if value == nil {
		return nil
	}
	str := readStringField(value)
	if str == "" {
		return nil
	}
	return &str
}

func readOptionalBool(value any) *bool {
	if v, ok := value.(bool); ok {
		return &v
	}
	return nil
}

func readOptionalFloat(value any) *float64 {
	if v, ok := value.(float64); ok {
		return &v
	}
	return nil
}

func readOptionalInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		return int64(v), true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// itoaArg appends a query argument and returns its placeholder.
func itoaArg(args *[]any, value any) string {
	*args = append(*args, value)
	return "$" + strconv.Itoa(len(*args))
}

func textOrDefault(v pgtype.Text, fallback string) string {
	if v.Valid {
		return v.String
	}
	return fallback
}

func textPtr(v pgtype.Text) *string {
	if v.Valid {
		return &v.String
	}
	return nil
}

func int8Ptr(v pgtype.Int8) *int64 {
	if v.Valid {
		return &v.Int64
	}
	return nil
}

func timePtr(v pgtype.Timestamptz) *time.Time {
	if v.Valid {
		return &v.Time
	}
	return nil
}

func parseDateTimeParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("invalid datetime")
}

// readPageParams pulls page/limit from the query string with the
// defaults the admin list screens use.
func readPageParams(r *http.Request) (page int, limit int) {
	page = 1
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	limit = 20
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 200 {
		limit = 200
	}
	return page, limit
}

// formatStoredTimestamp renders a stored timestamp for the admin
// screens. Stored timestamps carry the backend clock offset, so the
// display shifts them forward before formatting.
func formatStoredTimestamp(t time.Time) string {
	return timefmt.AddOffsetToTimestamp(t.Format(time.RFC3339), timefmt.BackendOffsetHours)
}

// normalizeWireTime accepts either the "HH:MM" wire form or a 12-hour
// display form and returns the wire form, or "" when unusable.
func normalizeWireTime(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	wire := timefmt.To24Hour(trimmed)
	if wire == "" {
		return ""
	}
	hour, minute, ok := splitWireTime(wire)
	if !ok || hour > 23 || minute > 59 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func splitWireTime(wire string) (hour int, minute int, ok bool) {
	parts := strings.SplitN(wire, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 {
		return 0, 0, false
	}
	return hour, minute, true
}
