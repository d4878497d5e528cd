package utils

import (
	"fmt"
	"strings"
	"time"
)

// FormatError reports a time string that could not be parsed.
type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("formatError: could not parse time [%s]", e.Value)
}

// UnknownZoneError reports an IANA timezone name missing from the platform
// timezone database.
type UnknownZoneError struct {
	Zone string
}

func (e *UnknownZoneError) Error() string {
	return fmt.Sprintf("unknownZoneError: unknown timezone [%s]", e.Zone)
}

// Layouts tried for a time string carrying a trailing "Z" (already UTC).
var utcLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
}

// Layouts tried when normalizing a bare clock string. Fractional seconds are
// accepted by time.Parse even when absent from the layout.
var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"3 PM",
}

// ResolveDateTime resolves a civil date plus a time string to an absolute
// instant. A trailing "Z" marks the time as already UTC; if it also carries
// its own date component the date argument is ignored entirely. Any other
// time string is read as wall-clock time in the given IANA zone, honoring
// that zone's standard/daylight offset on that date.
func ResolveDateTime(date, timeStr, timeZone string) (time.Time, error) {
	if strings.HasSuffix(timeStr, "Z") {
		full := timeStr
		if !strings.Contains(timeStr, "T") {
			full = date + "T" + timeStr
		}
		for _, layout := range utcLayouts {
			if t, err := time.Parse(layout, full); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, &FormatError{Value: timeStr}
	}

	clock, err := normalizeClock(timeStr)
	if err != nil {
		return time.Time{}, err
	}
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return time.Time{}, &UnknownZoneError{Zone: timeZone}
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, &FormatError{Value: date + " " + timeStr}
	}
	return t.UTC(), nil
}

// normalizeClock reduces the accepted time formats (12-hour with meridiem,
// 24-hour with optional seconds and sub-second precision, bare hour) to
// HH:MM:SS.
func normalizeClock(timeStr string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(timeStr))
	if !strings.Contains(s, ":") && !strings.Contains(s, " ") {
		// Bare hour such as "9" or "17".
		s += ":00:00"
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05"), nil
		}
	}
	return "", &FormatError{Value: timeStr}
}
