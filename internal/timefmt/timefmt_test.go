package timefmt

import (
	"fmt"
	"testing"
)

func TestTo12Hour(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "afternoon", input: "14:30", expected: "02:30 م"},
		{name: "after midnight", input: "00:05", expected: "12:05 ص"},
		{name: "noon", input: "12:00", expected: "12:00 م"},
		{name: "morning", input: "09:15", expected: "09:15 ص"},
		{name: "last minute", input: "23:59", expected: "11:59 م"},
		{name: "malformed returns input", input: "ab:cd", expected: "ab:cd"},
		{name: "missing colon returns input", input: "1430", expected: "1430"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := To12Hour(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestTo24Hour(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "arabic pm", input: "02:30 م", expected: "14:30"},
		{name: "arabic midnight", input: "12:00 ص", expected: "00:00"},
		{name: "arabic noon", input: "12:00 م", expected: "12:00"},
		{name: "english pm", input: "02:30 PM", expected: "14:30"},
		{name: "english am lowercase", input: "9:05 am", expected: "09:05"},
		{name: "english pm mixed case", input: "02:30 Pm", expected: "14:30"},
		{name: "english am mixed case", input: "9:05 aM", expected: "09:05"},
		{name: "wire passthrough", input: "14:30", expected: "14:30"},
		{name: "garbage", input: "not a time", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := To24Hour(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestRoundTripAllMinutes(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		for minute := 0; minute < 60; minute++ {
			wire := fmt.Sprintf("%02d:%02d", hour, minute)
			if got := To24Hour(To12Hour(wire)); got != wire {
				t.Fatalf("round trip broke for %s: got %s", wire, got)
			}
		}
	}
}

func TestBackendOffset(t *testing.T) {
	cases := []struct {
		input   string
		applied string
		undone  string
	}{
		{input: "10:00", applied: "08:00", undone: "12:00"},
		{input: "01:30", applied: "23:30", undone: "03:30"},
		{input: "00:15", applied: "22:15", undone: "02:15"},
		{input: "23:00", applied: "21:00", undone: "01:00"},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			if got := ApplyBackendOffset(tc.input); got != tc.applied {
				t.Fatalf("apply: expected %s, got %s", tc.applied, got)
			}
			if got := UndoBackendOffset(tc.input); got != tc.undone {
				t.Fatalf("undo: expected %s, got %s", tc.undone, got)
			}
		})
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		wire := fmt.Sprintf("%02d:00", hour)
		if got := UndoBackendOffset(ApplyBackendOffset(wire)); got != wire {
			t.Fatalf("offset round trip broke for %s: got %s", wire, got)
		}
	}
}

func TestBackendOffsetMalformed(t *testing.T) {
	if got := ApplyBackendOffset("xx:yy"); got != "xx:yy" {
		t.Fatalf("expected malformed input back, got %q", got)
	}
	if got := UndoBackendOffset(""); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestAddOffsetToTimestamp(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		hours    int
		expected string
	}{
		{
			name:     "plain shift",
			input:    "2026-05-10T12:30:00",
			hours:    2,
			expected: "١٠/٠٥/٢٠٢٦ ٠٢:٣٠ م",
		},
		{
			name:     "rolls over midnight",
			input:    "2026-05-10T23:30:00",
			hours:    2,
			expected: "١١/٠٥/٢٠٢٦ ٠١:٣٠ ص",
		},
		{
			name:     "rolls over year",
			input:    "2025-12-31T23:00:00",
			hours:    2,
			expected: "٠١/٠١/٢٠٢٦ ٠١:٠٠ ص",
		},
		{
			name:     "empty input",
			input:    "",
			hours:    2,
			expected: NotSpecified,
		},
		{
			name:     "unparseable input",
			input:    "last tuesday",
			hours:    2,
			expected: NotSpecified,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AddOffsetToTimestamp(tc.input, tc.hours); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
