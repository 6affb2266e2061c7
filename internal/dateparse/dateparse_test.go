package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate_Formats(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"iso", "2024-01-15", date(2024, 1, 15)},
		{"iso with T", "2024-01-15T10:30:00", date(2024, 1, 15)},
		{"iso with space", "2024-01-15 10:30:00", date(2024, 1, 15)},
		{"iso unpadded", "2024-1-5", date(2024, 1, 5)},
		{"us", "01/15/2024", date(2024, 1, 15)},
		{"european", "15/01/2024", date(2024, 1, 15)},
		{"iso slash", "2024/01/15", date(2024, 1, 15)},
		{"us dash", "01-15-2024", date(2024, 1, 15)},
		{"european dash", "15-01-2024", date(2024, 1, 15)},
		{"ambiguous prefers US", "03/04/2024", date(2024, 3, 4)},
		{"surrounding space", "  2024-01-15  ", date(2024, 1, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.in, "")
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_CallerLayoutWins(t *testing.T) {
	got, ok := ParseDate("03/04/2024", "02/01/2006")
	require.True(t, ok)
	assert.Equal(t, date(2024, 4, 3), got)

	got, ok = ParseDate("01/15/2024", "01/02/2006")
	require.True(t, ok)
	assert.Equal(t, date(2024, 1, 15), got)
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []any{nil, "", "   ", "not-a-date", "invalid", "2024-13-45", 42, (*time.Time)(nil), time.Time{}} {
		_, ok := ParseDate(in, "")
		assert.False(t, ok, "input %v", in)
	}
}

func TestParseDate_Typed(t *testing.T) {
	dt := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	got, ok := ParseDate(dt, "")
	require.True(t, ok)
	assert.Equal(t, date(2024, 1, 15), got)

	got, ok = ParseDate(&dt, "")
	require.True(t, ok)
	assert.Equal(t, date(2024, 1, 15), got)
}

func TestParseDateTime(t *testing.T) {
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	got, ok := ParseDateTime("2024-01-15T10:30:00", "")
	require.True(t, ok)
	assert.Equal(t, want, got)

	got, ok = ParseDateTime("2024-01-15 10:30:00", "")
	require.True(t, ok)
	assert.Equal(t, want, got)

	got, ok = ParseDateTime("01/15/2024 10:30:00", "")
	require.True(t, ok)
	assert.Equal(t, want, got)

	got, ok = ParseDateTime("2024-01-15 10:30:00.250000", "")
	require.True(t, ok)
	assert.Equal(t, want.Add(250*time.Millisecond), got)

	_, ok = ParseDateTime("2024-01-15", "")
	assert.False(t, ok)

	_, ok = ParseDateTime("", "")
	assert.False(t, ok)
}

func TestDaysBetween(t *testing.T) {
	d, ok := DaysBetween("2024-01-15", "2024-01-20")
	require.True(t, ok)
	assert.Equal(t, 5, d)

	d, ok = DaysBetween("2024-01-20", "2024-01-15")
	require.True(t, ok)
	assert.Equal(t, -5, d)

	d, ok = DaysBetween("2024-01-15", "2024-01-15")
	require.True(t, ok)
	assert.Equal(t, 0, d)

	_, ok = DaysBetween("nope", "2024-01-15")
	assert.False(t, ok)
}

func TestDays_AcrossDST(t *testing.T) {
	assert.Equal(t, 1, Days(date(2024, 3, 9), date(2024, 3, 10)))
	assert.Equal(t, 366, Days(date(2024, 1, 1), date(2025, 1, 1)))
}

func TestComparisons(t *testing.T) {
	assert.True(t, IsBefore("2024-01-15", "2024-01-20"))
	assert.False(t, IsBefore("2024-01-20", "2024-01-15"))
	assert.False(t, IsBefore("2024-01-15", "2024-01-15"))

	assert.True(t, IsAfter("2024-01-20", "2024-01-15"))
	assert.False(t, IsAfter("2024-01-15", "2024-01-20"))
	assert.False(t, IsAfter("2024-01-15", "2024-01-15"))

	assert.True(t, IsSameDay("2024-01-15T09:00:00", "01/15/2024"))
	assert.False(t, IsSameDay("2024-01-15", "bad"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "2024-01-15", Format(date(2024, 1, 15)))
	assert.Equal(t, "", Format(time.Time{}))
}
