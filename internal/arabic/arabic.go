// Package arabic renders numbers the way the admin screens show them:
// Arabic-indic digits, Arabic separators, and the Egyptian pound suffix.
package arabic

import (
	"math"
	"strconv"
	"strings"
)

const (
	// DecimalSeparator and ThousandsSeparator are the Arabic glyphs,
	// not the ASCII "." and ",".
	DecimalSeparator   = "٫"
	ThousandsSeparator = "٬"

	// CurrencySuffix is the Egyptian pound abbreviation.
	CurrencySuffix = "ج.م"

	// ZeroCurrency is the canonical fallback for missing or non-finite
	// amounts. Formatting is total: callers never see "NaN" or "".
	ZeroCurrency = "٠٫٠٠ " + CurrencySuffix
)

var arabicDigits = [10]rune{'٠', '١', '٢', '٣', '٤', '٥', '٦', '٧', '٨', '٩'}

// Digits maps every ASCII digit in s to its Arabic-indic glyph. All
// other runes pass through unchanged.
func Digits(s string) string {
	if s == "" {
		return ""
	}
	var out strings.Builder
	out.Grow(len(s) * 2)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out.WriteRune(arabicDigits[r-'0'])
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

// FormatCurrency renders amount with two decimals, Arabic digits,
// thousands grouping, and the currency suffix. Non-finite input
// collapses to ZeroCurrency.
func FormatCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ZeroCurrency
	}

	fixed := strconv.FormatFloat(amount, 'f', 2, 64)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	parts := strings.SplitN(fixed, ".", 2)
	grouped := groupThousands(parts[0])
	return sign + Digits(grouped) + DecimalSeparator + Digits(parts[1]) + " " + CurrencySuffix
}

// FormatCount renders n rounded to the nearest integer with Arabic
// digits and thousands grouping, without a currency suffix.
func FormatCount(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return string(arabicDigits[0])
	}

	fixed := strconv.FormatFloat(math.Round(n), 'f', 0, 64)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	return sign + Digits(groupThousands(fixed))
}

// groupThousands inserts the Arabic thousands separator every three
// digits from the right of an ASCII integer string.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var out strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		out.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if out.Len() > 0 {
			out.WriteString(ThousandsSeparator)
		}
		out.WriteString(digits[i : i+3])
	}
	return out.String()
}
