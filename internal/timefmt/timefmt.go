// Package timefmt converts between the "HH:MM" wire format, the
// Arabic 12-hour display format, and the backend storage offset.
package timefmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"restaurant-admin-service/internal/arabic"
)

const (
	PeriodAM = "ص"
	PeriodPM = "م"

	// BackendOffsetHours compensates for the backend storing branch
	// times two hours behind the zone shown to staff. A true zone
	// identifier per branch would replace this constant.
	BackendOffsetHours = 2

	// NotSpecified is the display fallback for missing timestamps.
	NotSpecified = "غير محدد"
)

var (
	clock12Pattern = regexp.MustCompile(`(\d{1,2}):(\d{1,2})\s*(ص|م|[AaPp][Mm])`)
	clock24Pattern = regexp.MustCompile(`^\d{1,2}:\d{1,2}$`)
)

// To12Hour converts a wire "HH:MM" value into the Arabic-labeled
// 12-hour form, e.g. "14:30" -> "02:30 م". Input that does not parse
// is returned unchanged so a bad value never corrupts the display.
func To12Hour(time24 string) string {
	trimmed := strings.TrimSpace(time24)
	if trimmed == "" {
		return ""
	}

	hour, minute, ok := splitClock(trimmed)
	if !ok {
		return time24
	}

	period := PeriodAM
	if hour >= 12 {
		period = PeriodPM
	}
	displayHour := hour % 12
	if displayHour == 0 {
		displayHour = 12
	}
	return fmt.Sprintf("%02d:%02d %s", displayHour, minute, period)
}

// To24Hour converts a 12-hour string carrying an Arabic or English
// period marker back to wire "HH:MM". A bare "HH:MM" value passes
// through unchanged; anything else that fails to parse yields "".
func To24Hour(time12 string) string {
	trimmed := strings.TrimSpace(time12)
	if trimmed == "" {
		return ""
	}

	match := clock12Pattern.FindStringSubmatch(trimmed)
	if match == nil {
		if clock24Pattern.MatchString(trimmed) {
			return trimmed
		}
		return ""
	}

	hour, err := strconv.Atoi(match[1])
	if err != nil {
		return ""
	}
	minute, err := strconv.Atoi(match[2])
	if err != nil {
		return ""
	}

	switch {
	case isPM(match[3]) && hour < 12:
		hour += 12
	case isAM(match[3]) && hour == 12:
		hour = 0
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// ApplyBackendOffset shifts a wall-clock time to the value the backend
// stores. Time-of-day arithmetic only: wraps at midnight, no date.
func ApplyBackendOffset(time24 string) string {
	return shiftClock(time24, -BackendOffsetHours)
}

// UndoBackendOffset restores the staff-facing wall-clock time from a
// stored value.
func UndoBackendOffset(time24 string) string {
	return shiftClock(time24, BackendOffsetHours)
}

// AddOffsetToTimestamp shifts a full timestamp by the given number of
// hours using calendar arithmetic (the date rolls over, unlike the
// time-of-day helpers) and renders it as an Arabic-numeral date plus
// an Arabic 12-hour clock.
func AddOffsetToTimestamp(ts string, hours int) string {
	trimmed := strings.TrimSpace(ts)
	if trimmed == "" {
		return NotSpecified
	}

	parsed, ok := parseTimestamp(trimmed)
	if !ok {
		return NotSpecified
	}

	shifted := parsed.Add(time.Duration(hours) * time.Hour)
	date := arabic.Digits(shifted.Format("02/01/2006"))
	clock := arabic.Digits(To12Hour(shifted.Format("15:04")))
	return date + " " + clock
}

func splitClock(value string) (hour int, minute int, ok bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return hour, minute, true
}

func shiftClock(time24 string, hours int) string {
	trimmed := strings.TrimSpace(time24)
	if trimmed == "" {
		return ""
	}
	hour, minute, ok := splitClock(trimmed)
	if !ok {
		return time24
	}
	hour = ((hour+hours)%24 + 24) % 24
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func parseTimestamp(value string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func isPM(period string) bool {
	return period == PeriodPM || strings.EqualFold(period, "PM")
}

func isAM(period string) bool {
	return period == PeriodAM || strings.EqualFold(period, "AM")
}
