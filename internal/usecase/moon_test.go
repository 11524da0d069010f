package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.ngs.io/almanac-api/internal/adapter/timescale"
)

func newTestMoon() *MoonPhaseUseCase {
	return NewMoonPhaseUseCase(timescale.NewMeeus(), 400)
}

func TestMoonPhaseUseCase_Year(t *testing.T) {
	uc := newTestMoon()

	resp, err := uc.Execute(context.Background(), MoonPhaseRequest{
		Start: day(2024, 1, 1),
		End:   time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, "UTC", resp.Timezone)

	counts := make(map[string]int)
	var prev time.Time
	for _, p := range resp.Phases {
		counts[p.Phase]++
		tm, err := time.Parse(time.RFC3339, p.Time)
		require.NoError(t, err)
		require.True(t, tm.After(prev), "phases out of order at %s", p.Time)
		prev = tm
	}
	require.Equal(t, 13, counts["new_moon"])
	require.Equal(t, 12, counts["full_moon"])
}

func TestMoonPhaseUseCase_KnownInstants(t *testing.T) {
	uc := newTestMoon()

	resp, err := uc.Execute(context.Background(), MoonPhaseRequest{
		Start:  day(2024, 4, 1),
		End:    day(2024, 4, 30),
		Phases: []string{"new", "full"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Phases, 2)

	// Total solar eclipse of 2024-04-08 and the following full moon.
	expected := []struct {
		phase string
		at    time.Time
	}{
		{"new_moon", time.Date(2024, 4, 8, 18, 21, 0, 0, time.UTC)},
		{"full_moon", time.Date(2024, 4, 23, 23, 49, 0, 0, time.UTC)},
	}
	for i, want := range expected {
		got := resp.Phases[i]
		require.Equal(t, want.phase, got.Phase)
		tm, err := time.Parse(time.RFC3339, got.Time)
		require.NoError(t, err)
		require.WithinDuration(t, want.at, tm, 2*time.Minute)
	}
}

func TestMoonPhaseUseCase_Timezone(t *testing.T) {
	mustZone(t, "Asia/Tokyo")
	uc := newTestMoon()

	resp, err := uc.Execute(context.Background(), MoonPhaseRequest{
		Start:    day(2024, 4, 20),
		End:      day(2024, 4, 25),
		Timezone: "Asia/Tokyo",
		Phases:   []string{"full_moon"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Phases, 1)
	require.Equal(t, "2024-04-24", resp.Phases[0].Time[:10])
	require.Contains(t, resp.Phases[0].Time, "+09:00")
}

func TestMoonPhaseUseCase_Invalid(t *testing.T) {
	uc := newTestMoon()
	ctx := context.Background()

	tests := []struct {
		name string
		req  MoonPhaseRequest
	}{
		{"reversed", MoonPhaseRequest{Start: day(2024, 2, 1), End: day(2024, 1, 1)}},
		{"missing start", MoonPhaseRequest{End: day(2024, 1, 1)}},
		{"bad phase", MoonPhaseRequest{Start: day(2024, 1, 1), End: day(2024, 2, 1), Phases: []string{"gibbous"}}},
		{"bad zone", MoonPhaseRequest{Start: day(2024, 1, 1), End: day(2024, 2, 1), Timezone: "Nowhere/Land"}},
		{"too long", MoonPhaseRequest{Start: day(2020, 1, 1), End: day(2024, 1, 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(ctx, tt.req)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestDecimalYear(t *testing.T) {
	require.InDelta(t, 2024.0, decimalYear(day(2024, 1, 1)), 1e-9)
	require.InDelta(t, 2024.5, decimalYear(time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)), 0.002)
}
