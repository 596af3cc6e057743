package sys

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGiveawayDuration(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		wantMs int64
	}{
		{name: "seconds", token: "45s", wantMs: 45_000},
		{name: "minutes", token: "30m", wantMs: 1_800_000},
		{name: "hours", token: "1h", wantMs: 3_600_000},
		{name: "days", token: "2d", wantMs: 172_800_000},
		{name: "first match wins", token: "1h30m", wantMs: 3_600_000},
		{name: "leading text ignored", token: "in 5m please", wantMs: 300_000},
		{name: "leading zeros", token: "007s", wantMs: 7_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGiveawayDuration(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMs, got.Milliseconds())
		})
	}
}

func TestParseGiveawayDuration_UnitTable(t *testing.T) {
	multipliers := map[string]int64{"s": 1000, "m": 60000, "h": 3600000, "d": 86400000}
	for unit, mult := range multipliers {
		for _, n := range []int64{1, 2, 17, 365} {
			got, err := ParseGiveawayDuration(formatToken(n, unit))
			require.NoError(t, err)
			assert.Equal(t, n*mult, got.Milliseconds(), "token %d%s", n, unit)
		}
	}
}

func TestParseGiveawayDuration_Invalid(t *testing.T) {
	tokens := []string{
		"",
		"abc",
		"h1",
		"10",
		"2j",
		"5 m",
		"1H",
		"0m",
		"99999999999999999999999d",
		"9999999999999d",
	}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			_, err := ParseGiveawayDuration(token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDuration))
		})
	}
}

func TestFormatWindow(t *testing.T) {
	assert.Equal(t, "30m", FormatWindow(30*time.Minute))
	assert.Equal(t, "1h 30m", FormatWindow(90*time.Minute))
	assert.Equal(t, "2d", FormatWindow(48*time.Hour))
	assert.Equal(t, "1d 1h 1m 1s", FormatWindow(25*time.Hour+time.Minute+time.Second))
	assert.Equal(t, "0s", FormatWindow(0))
	assert.Equal(t, "0s", FormatWindow(500*time.Millisecond))
}

func formatToken(n int64, unit string) string {
	return strconv.FormatInt(n, 10) + unit
}
