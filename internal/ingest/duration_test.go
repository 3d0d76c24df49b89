package ingest

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration_BlankAndNaN(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "nan", "NaN"} {
		got, err := ParseDuration(raw)
		require.NoError(t, err, "raw=%q", raw)
		assert.Equal(t, 0.0, got, "raw=%q", raw)
	}
}

func TestParseDuration_DayForm(t *testing.T) {
	t.Parallel()

	got, err := ParseDuration("1 day, 0:03:22")
	require.NoError(t, err)
	assert.Equal(t, 86602.0, got)

	got, err = ParseDuration("2 days, 1:00:00")
	require.NoError(t, err)
	assert.Equal(t, float64(2*86400+3600), got)
}

func TestParseDuration_ClockForms(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"06:44:00": 24240.0,
		"03:22":    202.0,
		"0:03:22":  202.0,
		"1:02:03":  3723.0,
	}
	for raw, want := range cases {
		got, err := ParseDuration(raw)
		require.NoError(t, err, "raw=%q", raw)
		assert.Equal(t, want, got, "raw=%q", raw)
	}
}

func TestParseDuration_PlainNumber(t *testing.T) {
	t.Parallel()

	got, err := ParseDuration("3.5")
	require.NoError(t, err)
	assert.Equal(t, 3.5, got)

	got, err = ParseDuration(" 120 ")
	require.NoError(t, err)
	assert.Equal(t, 120.0, got)
}

func TestParseDuration_Invalid(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"abc", "1:2:x", "one day, 0:03:22", "day"} {
		_, err := ParseDuration(raw)
		require.Error(t, err, "raw=%q", raw)
		assert.ErrorIs(t, err, ErrInvalidDurationFormat, "raw=%q", raw)
		assert.Contains(t, err.Error(), raw)
	}
}

// formatClock reconstructs the textual forms ParseDuration accepts, so the
// parser can be checked for round-trip consistency.
func formatClock(seconds float64) string {
	total := int(seconds)
	days := total / 86400
	total %= 86400
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if days > 0 {
		return fmt.Sprintf("%d day, %d:%02d:%02d", days, h, m, s)
	}
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

func TestParseDuration_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, seconds := range []float64{0, 1, 59, 60, 61, 3599, 3600, 24240, 86399, 86400, 86602, 2*86400 + 12345} {
		formatted := formatClock(seconds)
		got, err := ParseDuration(formatted)
		require.NoError(t, err, "formatted=%q", formatted)
		assert.Equal(t, seconds, got, "formatted=%q", formatted)
	}
}

func TestParseDuration_ErrorIsDistinguishable(t *testing.T) {
	t.Parallel()

	_, err := ParseDuration("abc")
	assert.True(t, errors.Is(err, ErrInvalidDurationFormat))
	assert.False(t, errors.Is(err, ErrInvalidRowData))
}
