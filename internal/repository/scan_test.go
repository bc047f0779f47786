package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBTime_Scan(t *testing.T) {
	want := time.Date(2030, 1, 1, 13, 0, 0, 0, time.UTC)
	for _, raw := range []string{
		"2030-01-01 13:00:00",
		"2030-01-01 13:00:00+00:00",
		"2030-01-01 14:00:00.000+01:00",
		"2030-01-01T13:00:00Z",
		"2030-01-01 13:00:00 +0000 UTC",
	} {
		var got dbTime
		require.NoError(t, got.Scan(raw), raw)
		assert.True(t, got.Valid, raw)
		assert.True(t, want.Equal(got.Time), raw)
	}

	var null dbTime
	require.NoError(t, null.Scan(nil))
	assert.False(t, null.Valid)

	var bad dbTime
	assert.Error(t, bad.Scan("yesterday"))
}
