package sys

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidDuration is returned when a token carries no usable <digits><unit> pair.
var ErrInvalidDuration = errors.New("invalid duration")

var durationPattern = regexp.MustCompile(`(\d+)([smhd])`)

var durationUnits = map[string]int64{
	"s": 1000,
	"m": 60 * 1000,
	"h": 60 * 60 * 1000,
	"d": 24 * 60 * 60 * 1000,
}

// ParseGiveawayDuration converts tokens such as "30m" or "2d" into a window.
// The first <digits><unit> pair found anywhere in the token wins, so "1h30m"
// is one hour. Zero and overflowing values are rejected.
func ParseGiveawayDuration(token string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, ErrInvalidDuration
	}

	unit, ok := durationUnits[m[2]]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidDuration, m[2])
	}

	value, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || value > math.MaxInt64/int64(time.Millisecond)/unit {
		return 0, fmt.Errorf("%w: %s%s is out of range", ErrInvalidDuration, m[1], m[2])
	}
	if value == 0 {
		return 0, fmt.Errorf("%w: window must be positive", ErrInvalidDuration)
	}

	return time.Duration(value*unit) * time.Millisecond, nil
}

// FormatWindow renders a window the way users type it back, largest units first.
func FormatWindow(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	days := int64(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	h, m, s := int64(d/time.Hour), int64(d/time.Minute)%60, int64(d/time.Second)%60

	out := ""
	if days > 0 {
		out += fmt.Sprintf("%dd ", days)
	}
	if h > 0 {
		out += fmt.Sprintf("%dh ", h)
	}
	if m > 0 {
		out += fmt.Sprintf("%dm ", m)
	}
	if s > 0 || out == "" {
		out += fmt.Sprintf("%ds ", s)
	}
	return out[:len(out)-1]
}
