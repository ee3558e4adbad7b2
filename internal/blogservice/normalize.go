package blogservice

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 form every normalized CreatedAt uses.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var now = time.Now

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// NormalizeRating rounds v and clamps it into [RatingMin, RatingMax].
// NaN yields RatingDefault.
func NormalizeRating(v float64) int {
	if math.IsNaN(v) {
		return RatingDefault
	}

	r := math.Round(v)
	switch {
	case r < RatingMin:
		return RatingMin
	case r > RatingMax:
		return RatingMax
	default:
		return int(r)
	}
}

// NormalizeTimestamp coerces s into TimestampLayout. It accepts RFC 3339,
// date-only and a few common layouts, plus Unix epochs in seconds or
// milliseconds. Empty or unparsable input yields the current time.
func NormalizeTimestamp(s string) string {
	t, ok := parseTimestamp(s)
	if !ok {
		t = now()
	}
	return t.UTC().Format(TimestampLayout)
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return time.Time{}, false
		}
		// anything below 1e11 is too small to be a millisecond epoch after 1973
		if math.Abs(n) < 1e11 {
			n *= 1000
		}
		if math.Abs(n) > maxEpochMillis {
			return time.Time{}, false
		}
		return inLayoutRange(time.UnixMilli(int64(n)))
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return inLayoutRange(t)
		}
	}

	return time.Time{}, false
}

// maxEpochMillis is the last millisecond of year 9999.
const maxEpochMillis = 253402300799999

// inLayoutRange rejects times whose year TimestampLayout cannot print in
// four digits, which would break lexical ordering.
func inLayoutRange(t time.Time) (time.Time, bool) {
	if y := t.UTC().Year(); y < 0 || y > 9999 {
		return time.Time{}, false
	}
	return t, true
}
