package timescale

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJulianCenturies(t *testing.T) {
	ts := NewMeeus()

	// Meeus example 12.a: 1987 April 10, 0h UT.
	got := ts.JulianCenturies(time.Date(1987, 4, 10, 0, 0, 0, 0, time.UTC))
	require.InDelta(t, -0.127296372348, got, 1e-11)

	j2000 := ts.JulianCenturies(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC))
	require.InDelta(t, 0, j2000, 1e-12)
}

func TestJulianCenturies_IgnoresZone(t *testing.T) {
	ts := NewMeeus()
	utc := time.Date(2024, 6, 20, 4, 0, 0, 0, time.UTC)
	tokyo := utc.In(time.FixedZone("JST", 9*3600))
	require.InDelta(t, ts.JulianCenturies(utc), ts.JulianCenturies(tokyo), 1e-15)
}

func TestDeltaT(t *testing.T) {
	ts := NewMeeus()

	tests := []struct {
		name   string
		at     time.Time
		lo, hi float64
	}{
		{"1900 near zero", time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), -5, 0},
		{"1990 tabulated", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), 55, 58},
		{"2024 polynomial", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 65, 80},
		{"2100 blend", time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC), 150, 250},
		{"1000 medieval", time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC), 1000, 2000},
		{"2200 long term", time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC), 400, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ts.DeltaT(tt.at)
			require.False(t, math.IsNaN(got))
			require.GreaterOrEqual(t, got, tt.lo)
			require.LessOrEqual(t, got, tt.hi)
		})
	}
}

func TestTimeFromJDE(t *testing.T) {
	ts := NewMeeus()
	want := time.Date(2024, 3, 20, 3, 6, 0, 0, time.UTC)

	jde := 2451545.0 + ts.JulianCenturies(want)*36525 + ts.DeltaT(want)/86400
	got := ts.TimeFromJDE(jde)

	require.WithinDuration(t, want, got, time.Second)
	require.Equal(t, time.UTC, got.Location())
}

func TestDecimalYear(t *testing.T) {
	require.InDelta(t, 2024.0417, decimalYear(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)), 1e-4)
	require.InDelta(t, 2024.9583, decimalYear(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)), 1e-4)
}
