package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestNormalizeWireTime(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "wire form passes through", input: "14:30", expected: "14:30"},
		{name: "arabic pm converts", input: "02:30 م", expected: "14:30"},
		{name: "arabic am midnight", input: "12:00 ص", expected: "00:00"},
		{name: "english pm converts", input: "2:30 PM", expected: "14:30"},
		{name: "pads single digits", input: "9:5", expected: "09:05"},
		{name: "rejects out of range hour", input: "25:00", expected: ""},
		{name: "rejects out of range minute", input: "10:75", expected: ""},
		{name: "rejects garbage", input: "lunch", expected: ""},
		{name: "empty stays empty", input: "  ", expected: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeWireTime(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestStorageTimeRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		display string
		stored  string
		back    string
	}{
		{name: "afternoon", display: "02:30 م", stored: "12:30", back: "02:30 م"},
		{name: "just after midnight wraps", display: "12:05 ص", stored: "22:05", back: "12:05 ص"},
		{name: "noon", display: "12:00 م", stored: "10:00", back: "12:00 م"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stored := displayTimeForStorage(tc.display)
			if stored != tc.stored {
				t.Fatalf("expected stored %q, got %q", tc.stored, stored)
			}
			if got := storedTimeForDisplay(stored); got != tc.back {
				t.Fatalf("expected display %q, got %q", tc.back, got)
			}
		})
	}
}

func TestReadOptionalInt64(t *testing.T) {
	if v, ok := readOptionalInt64(float64(42)); !ok || v != 42 {
		t.Fatalf("expected 42 from JSON number, got %d ok=%v", v, ok)
	}
	if v, ok := readOptionalInt64(" 17 "); !ok || v != 17 {
		t.Fatalf("expected 17 from string, got %d ok=%v", v, ok)
	}
	if _, ok := readOptionalInt64("abc"); ok {
		t.Fatal("expected failure for non-numeric string")
	}
	if _, ok := readOptionalInt64(nil); ok {
		t.Fatal("expected failure for nil")
	}
}

func TestReadPhoneList(t *testing.T) {
	phones := readPhoneList([]any{
		map[string]any{"number": "0101234567", "type": "MOBILE", "hasWhatsapp": true},
		map[string]any{"number": "0229876543", "type": "LANDLINE", "hasWhatsapp": true},
		map[string]any{"number": "555", "type": "fax"},
		map[string]any{"number": "  "},
		"0112223334",
	})
	expected := []branchPhone{
		{Number: "0101234567", Type: PhoneTypeMobile, HasWhatsApp: true},
		{Number: "0229876543", Type: PhoneTypeLandline, HasWhatsApp: false},
		{Number: "555", Type: PhoneTypeOther, HasWhatsApp: false},
		{Number: "0112223334", Type: PhoneTypeOther, HasWhatsApp: false},
	}
	if len(phones) != len(expected) {
		t.Fatalf("expected %d phones, got %d", len(expected), len(phones))
	}
	for i := range expected {
		if phones[i] != expected[i] {
			t.Fatalf("expected %+v at %d, got %+v", expected[i], i, phones[i])
		}
	}
	if got := readPhoneList("not a list"); got != nil {
		t.Fatalf("expected nil for non-list input, got %v", got)
	}
}

func TestNormalizePhoneType(t *testing.T) {
	cases := []struct {
		name         string
		input        string
		hasWhatsApp  bool
		wantType     string
		wantWhatsApp bool
	}{
		{name: "mobile keeps whatsapp", input: "mobile", hasWhatsApp: true, wantType: PhoneTypeMobile, wantWhatsApp: true},
		{name: "landline drops whatsapp", input: "LANDLINE", hasWhatsApp: true, wantType: PhoneTypeLandline, wantWhatsApp: false},
		{name: "unknown becomes other", input: "satellite", hasWhatsApp: true, wantType: PhoneTypeOther, wantWhatsApp: false},
		{name: "empty becomes other", input: "", hasWhatsApp: false, wantType: PhoneTypeOther, wantWhatsApp: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotType, gotWhatsApp := normalizePhoneType(tc.input, tc.hasWhatsApp)
			if gotType != tc.wantType || gotWhatsApp != tc.wantWhatsApp {
				t.Fatalf("expected (%s, %v), got (%s, %v)", tc.wantType, tc.wantWhatsApp, gotType, gotWhatsApp)
			}
		})
	}
}

func TestOrderStatusValues(t *testing.T) {
	valid := []string{"PENDING", "CONFIRMED", "PREPARING", "OUT_FOR_DELIVERY", "DELIVERED", "CANCELLED"}
	for _, status := range valid {
		if !isValidOrderStatus(status) {
			t.Fatalf("expected %s to be a valid status", status)
		}
	}
	for _, status := range []string{"READY", "OPEN", ""} {
		if isValidOrderStatus(status) {
			t.Fatalf("expected %s to be rejected", status)
		}
	}
}

func TestAdminListOrdersRejectsUnknownStatus(t *testing.T) {
	h := &Handler{}
	r := httptest.NewRequest(http.MethodGet, "/api/admin/orders?status=READY", nil)
	w := httptest.NewRecorder()
	h.AdminListOrders(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["error"] != "INVALID_REQUEST" {
		t.Fatalf("expected INVALID_REQUEST, got %v", body["error"])
	}
}

func TestMergeEstimateRange(t *testing.T) {
	cases := []struct {
		name           string
		newMin, newMax int64
		hasMin, hasMax bool
		wantMin        int64
		wantMax        int64
	}{
		{name: "both sides sent", newMin: 10, newMax: 20, hasMin: true, hasMax: true, wantMin: 10, wantMax: 20},
		{name: "only min sent", newMin: 50, hasMin: true, wantMin: 50, wantMax: 45},
		{name: "only max sent", newMax: 15, hasMax: true, wantMin: 30, wantMax: 15},
		{name: "neither keeps stored", wantMin: 30, wantMax: 45},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotMin, gotMax := mergeEstimateRange(30, 45, tc.newMin, tc.hasMin, tc.newMax, tc.hasMax)
			if gotMin != tc.wantMin || gotMax != tc.wantMax {
				t.Fatalf("expected (%d, %d), got (%d, %d)", tc.wantMin, tc.wantMax, gotMin, gotMax)
			}
		})
	}
}

func TestFormatStoredTimestamp(t *testing.T) {
	afternoon := time.Date(2026, 1, 15, 13, 0, 0, 0, time.UTC)
	if got := formatStoredTimestamp(afternoon); got != "١٥/٠١/٢٠٢٦ ٠٣:٠٠ م" {
		t.Fatalf("expected two-hour shift, got %q", got)
	}

	// The shift crosses midnight, so the date must roll forward too.
	lateEvening := time.Date(2026, 1, 15, 22, 30, 0, 0, time.UTC)
	if got := formatStoredTimestamp(lateEvening); got != "١٦/٠١/٢٠٢٦ ١٢:٣٠ ص" {
		t.Fatalf("expected rollover to next day, got %q", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "order_shifts_one_open_per_branch"}
	if !isUniqueViolation(pgErr) {
		t.Fatal("expected unique violation to be detected")
	}
	if !isUniqueViolation(fmt.Errorf("insert failed: %w", pgErr)) {
		t.Fatal("expected wrapped unique violation to be detected")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "53300"}) {
		t.Fatal("expected other pg errors to pass through")
	}
	if isUniqueViolation(fmt.Errorf("connection refused")) {
		t.Fatal("expected plain errors to pass through")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{input: "Main Branch", expected: "Main_Branch"},
		{input: "فرع وسط البلد", expected: "branch"},
		{input: "__mixed--99__", expected: "mixed--99"},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.input); got != tc.expected {
			t.Fatalf("sanitizeFilename(%q): expected %q, got %q", tc.input, tc.expected, got)
		}
	}
}

func TestReportCacheExpiry(t *testing.T) {
	key := reportCacheKey("sales", 7, "2026-01-01", "2026-01-31")
	setReportCache(key, "payload", -1)
	if _, ok := getReportCache(key); ok {
		t.Fatal("expected expired entry to be evicted")
	}

	setReportCache(key, "payload", 1e9)
	value, ok := getReportCache(key)
	if !ok || value != "payload" {
		t.Fatalf("expected cached payload, got %v ok=%v", value, ok)
	}
}
