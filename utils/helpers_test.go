package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateParam(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		endOfDay bool
		want     time.Time
	}{
		{name: "date start", raw: "2024-03-01", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "date end", raw: "2024-03-01", endOfDay: true, want: time.Date(2024, 3, 1, 23, 59, 59, 999_000_000, time.UTC)},
		{name: "rfc3339 normalized to utc", raw: "2024-03-01T12:00:00+02:00", want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{name: "rfc3339 untouched by end of day", raw: "2024-03-01T12:00:00Z", endOfDay: true, want: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateParam(tt.raw, tt.endOfDay)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseDateParam_EmptyAndInvalid(t *testing.T) {
	got, err := ParseDateParam("", false)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseDateParam("03/01/2024", false)
	assert.Error(t, err)
}

func TestParseNonNegativeInt(t *testing.T) {
	n, err := ParseNonNegativeInt("")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = ParseNonNegativeInt("25")
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	for _, raw := range []string{"-1", "ten", "1.5"} {
		_, err := ParseNonNegativeInt(raw)
		assert.Error(t, err, raw)
	}
}
