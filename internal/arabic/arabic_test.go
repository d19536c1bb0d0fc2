package arabic

import (
	"math"
	"testing"
)

func TestDigits(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "all digits", input: "0123456789", expected: "٠١٢٣٤٥٦٧٨٩"},
		{name: "mixed", input: "12.5 kg", expected: "١٢.٥ kg"},
		{name: "empty", input: "", expected: ""},
		{name: "no digits", input: "جنيه", expected: "جنيه"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Digits(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		name     string
		amount   float64
		expected string
	}{
		{name: "zero", amount: 0, expected: "٠٫٠٠ ج.م"},
		{name: "simple", amount: 42.5, expected: "٤٢٫٥٠ ج.م"},
		{name: "thousands", amount: 1234.56, expected: "١٬٢٣٤٫٥٦ ج.م"},
		{name: "millions", amount: 1234567.89, expected: "١٬٢٣٤٬٥٦٧٫٨٩ ج.م"},
		{name: "negative", amount: -99.9, expected: "-٩٩٫٩٠ ج.م"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatCurrency(tc.amount); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestFormatCurrencyCollapsesToZero(t *testing.T) {
	zero := FormatCurrency(0)
	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := FormatCurrency(amount); got != zero {
			t.Fatalf("expected canonical zero %q, got %q", zero, got)
		}
	}
	if zero != ZeroCurrency {
		t.Fatalf("expected %q, got %q", ZeroCurrency, zero)
	}
	if zero == "" {
		t.Fatal("currency formatting must never produce an empty string")
	}
}

func TestFormatCount(t *testing.T) {
	cases := []struct {
		name     string
		input    float64
		expected string
	}{
		{name: "zero", input: 0, expected: "٠"},
		{name: "rounds up", input: 7.6, expected: "٨"},
		{name: "rounds down", input: 7.4, expected: "٧"},
		{name: "grouped", input: 125000, expected: "١٢٥٬٠٠٠"},
		{name: "nan", input: math.NaN(), expected: "٠"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatCount(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
