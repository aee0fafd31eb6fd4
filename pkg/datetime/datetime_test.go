package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatementDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{"2024-03-01", "2024-03-01"},
		{"01/03/2024", "2024-03-01"},
		{"2024-03-01 14:30:00", "2024-03-01"},
		{"01-03-2024", "2024-03-01"},
		{"2024/03/01", "2024-03-01"},
	}

	for _, tt := range tests {
		got, err := ParseStatementDate(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got.Format(DateFormat), tt.raw)
		assert.Equal(t, time.UTC, got.Location())
		assert.Zero(t, got.Hour(), "time component truncated")
	}
}

func TestParseStatementDateErrors(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "not a date", "31/31/2024"} {
		_, err := ParseStatementDate(raw)
		assert.Error(t, err, raw)
	}
}

func TestMonthKeyRoundTrip(t *testing.T) {
	t.Parallel()

	d := time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC)
	key := MonthKey(d)
	assert.Equal(t, "2024-03", key)

	parsed, err := ParseMonthKey(key)
	require.NoError(t, err)
	assert.Equal(t, 2024, parsed.Year())
	assert.Equal(t, time.March, parsed.Month())
}

func TestMonthBounds(t *testing.T) {
	t.Parallel()

	d := time.Date(2024, 2, 14, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-02-01", StartOfMonth(d).Format(DateFormat))
	assert.Equal(t, "2024-02-29", EndOfMonth(d).Format(DateFormat), "leap year")
}

func TestDaysBetween(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, DaysBetween(start, end))
}
