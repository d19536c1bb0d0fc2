package utils

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// NumericToFloat64 unwraps a pgtype.Numeric, treating null and
// unconvertible values as zero.
func NumericToFloat64(value pgtype.Numeric) float64 {
	if !value.Valid {
		return 0
	}
	if f, err := value.Float64Value(); err == nil {
		return f.Float64
	}

	text, err := value.MarshalJSON()
	if err != nil {
		return 0
	}
	parsed, err := strconv.ParseFloat(strings.Trim(string(text), `"`), 64)
	if err != nil {
		return 0
	}
	return parsed
}
