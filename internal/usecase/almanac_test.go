package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.ngs.io/almanac-api/internal/adapter/store"
	"go.ngs.io/almanac-api/internal/adapter/timescale"
	"go.ngs.io/almanac-api/internal/domain"
	"go.ngs.io/almanac-api/internal/logging"
)

type memoryStations map[string]domain.Station

func (m memoryStations) LoadStation(id string) (domain.Station, error) {
	st, ok := m[id]
	if !ok {
		return domain.Station{}, fmt.Errorf("%w: %s", store.ErrStationNotFound, id)
	}
	return st, nil
}

func (m memoryStations) ListStations() ([]domain.Station, error) {
	out := make([]domain.Station, 0, len(m))
	for _, st := range m {
		out = append(out, st)
	}
	return out, nil
}

var testStations = memoryStations{
	"tromso": {
		ID:       "tromso",
		Name:     "Tromsø",
		Location: domain.Location{Latitude: 69.65, Longitude: 18.96},
		Timezone: "Europe/Oslo",
	},
	"longyearbyen": {
		ID:       "longyearbyen",
		Name:     "Longyearbyen",
		Location: domain.Location{Latitude: 78.22, Longitude: 15.65},
		Timezone: "Arctic/Longyearbyen",
	},
}

func newTestAlmanac(policy string) *AlmanacUseCase {
	solver := domain.NewSolver(timescale.NewMeeus(), domain.SolverOptions{})
	return NewAlmanacUseCase(solver, testStations, AlmanacOptions{
		NoEventPolicy: policy,
		RiseFallback:  6 * time.Hour,
		SetFallback:   18 * time.Hour,
		MaxRangeDays:  31,
		Workers:       3,
	}, logging.Discard())
}

func ptr[T any](v T) *T { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("time zone %s unavailable: %v", name, err)
	}
	return loc
}

func TestAlmanacRequest_Validate(t *testing.T) {
	valid := AlmanacRequest{
		Lat:      ptr(40.7),
		Lon:      ptr(-74.0),
		Timezone: "America/New_York",
		Start:    day(2024, 6, 20),
		End:      day(2024, 6, 21),
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*AlmanacRequest)
	}{
		{"no location", func(r *AlmanacRequest) { r.Lat, r.Lon = nil, nil }},
		{"both location kinds", func(r *AlmanacRequest) { r.StationID = ptr("tromso") }},
		{"north pole", func(r *AlmanacRequest) { r.Lat = ptr(90.0) }},
		{"south pole", func(r *AlmanacRequest) { r.Lat = ptr(-90.0) }},
		{"longitude", func(r *AlmanacRequest) { r.Lon = ptr(180.5) }},
		{"missing timezone", func(r *AlmanacRequest) { r.Timezone = "" }},
		{"unknown timezone", func(r *AlmanacRequest) { r.Timezone = "Mars/Olympus_Mons" }},
		{"reversed range", func(r *AlmanacRequest) { r.Start = day(2024, 6, 22) }},
		{"missing end", func(r *AlmanacRequest) { r.End = time.Time{} }},
		{"unknown event", func(r *AlmanacRequest) { r.Events = []string{"sunrise", "moonrise"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			require.Error(t, req.Validate())
		})
	}
}

func TestAlmanacUseCase_NewYork(t *testing.T) {
	mustZone(t, "America/New_York")
	uc := newTestAlmanac(PolicyFallbackTime)

	resp, err := uc.Execute(context.Background(), AlmanacRequest{
		Lat:      ptr(40.7128),
		Lon:      ptr(-74.0060),
		Timezone: "America/New_York",
		Start:    day(2024, 6, 19),
		End:      day(2024, 6, 21),
		Events:   []string{"sunrise", "sunset", "transit"},
	})
	require.NoError(t, err)
	require.Equal(t, "America/New_York", resp.Timezone)
	require.Len(t, resp.Days, 3)

	for i, d := range resp.Days {
		require.Equal(t, day(2024, 6, 19+i).Format(DateLayout), d.Date)
		require.Len(t, d.Events, 3)
		require.InDelta(t, 15.1, d.DayLengthHours, 0.1)

		sunrise, err := time.Parse(time.RFC3339, d.Events["sunrise"].Time)
		require.NoError(t, err)
		_, offset := sunrise.Zone()
		require.Equal(t, -4*3600, offset)
		require.Equal(t, 5, sunrise.Hour())
		require.InDelta(t, 25, sunrise.Minute(), 3)
		require.Empty(t, d.Events["sunrise"].Classification)
	}
}

func TestAlmanacUseCase_MidnightSunFallback(t *testing.T) {
	mustZone(t, "Europe/Oslo")
	uc := newTestAlmanac(PolicyFallbackTime)

	resp, err := uc.Execute(context.Background(), AlmanacRequest{
		StationID: ptr("tromso"),
		Start:     day(2024, 6, 21),
		End:       day(2024, 6, 21),
	})
	require.NoError(t, err)
	require.Equal(t, "Europe/Oslo", resp.Timezone)
	require.Equal(t, "tromso", resp.Location.StationID)
	require.Len(t, resp.Days, 1)

	d := resp.Days[0]
	require.Len(t, d.Events, len(domain.AllEvents()))
	require.Equal(t, 24.0, d.DayLengthHours)

	sunrise := d.Events["sunrise"]
	require.Equal(t, "SUN_HIGH", sunrise.Classification)
	require.True(t, sunrise.Fallback)
	require.Equal(t, "2024-06-21T07:00:00+02:00", sunrise.Time)

	sunset := d.Events["sunset"]
	require.Equal(t, "2024-06-21T19:00:00+02:00", sunset.Time)

	transit := d.Events["transit"]
	require.NotEmpty(t, transit.Time)
	require.Empty(t, transit.Classification)
}

func TestAlmanacUseCase_PolarNightClassification(t *testing.T) {
	mustZone(t, "Arctic/Longyearbyen")
	uc := newTestAlmanac(PolicyClassification)

	resp, err := uc.Execute(context.Background(), AlmanacRequest{
		StationID: ptr("longyearbyen"),
		Start:     day(2024, 12, 21),
		End:       day(2024, 12, 21),
		Events:    []string{"sunrise", "sunset"},
	})
	require.NoError(t, err)

	d := resp.Days[0]
	require.Equal(t, 0.0, d.DayLengthHours)
	for _, name := range []string{"sunrise", "sunset"} {
		out := d.Events[name]
		require.Equal(t, "SUN_LOW", out.Classification, name)
		require.Empty(t, out.Time, name)
		require.False(t, out.Fallback, name)
	}
}

func TestAlmanacUseCase_PolarNightFallbackWinterTime(t *testing.T) {
	mustZone(t, "Arctic/Longyearbyen")
	uc := newTestAlmanac(PolicyFallbackTime)

	resp, err := uc.Execute(context.Background(), AlmanacRequest{
		StationID: ptr("longyearbyen"),
		Start:     day(2024, 12, 21),
		End:       day(2024, 12, 21),
		Events:    []string{"sunset"},
	})
	require.NoError(t, err)
	require.Equal(t, "2024-12-21T18:00:00+01:00", resp.Days[0].Events["sunset"].Time)
}

func TestAlmanacUseCase_Errors(t *testing.T) {
	uc := newTestAlmanac(PolicyFallbackTime)
	ctx := context.Background()

	_, err := uc.Execute(ctx, AlmanacRequest{
		StationID: ptr("atlantis"),
		Start:     day(2024, 1, 1),
		End:       day(2024, 1, 1),
	})
	require.ErrorIs(t, err, store.ErrStationNotFound)
	require.False(t, errors.Is(err, ErrValidation))

	_, err = uc.Execute(ctx, AlmanacRequest{
		Lat:      ptr(0.0),
		Lon:      ptr(0.0),
		Timezone: "UTC",
		Start:    day(2024, 1, 1),
		End:      day(2024, 3, 1),
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = uc.Execute(ctx, AlmanacRequest{Start: day(2024, 1, 1), End: day(2024, 1, 1)})
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "invalid request")
}

func TestAlmanacUseCase_Cancelled(t *testing.T) {
	uc := newTestAlmanac(PolicyFallbackTime)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Execute(ctx, AlmanacRequest{
		Lat:      ptr(10.0),
		Lon:      ptr(10.0),
		Timezone: "UTC",
		Start:    day(2024, 1, 1),
		End:      day(2024, 1, 10),
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFallbackTime(t *testing.T) {
	berlin := mustZone(t, "Europe/Berlin")

	summer := fallbackTime(time.Date(2024, 7, 1, 12, 0, 0, 0, berlin), 6*time.Hour)
	require.Equal(t, "2024-07-01T07:00:00+02:00", summer.Format(time.RFC3339))

	winter := fallbackTime(time.Date(2024, 1, 15, 12, 0, 0, 0, berlin), 18*time.Hour)
	require.Equal(t, "2024-01-15T18:00:00+01:00", winter.Format(time.RFC3339))

	springForward := fallbackTime(time.Date(2024, 3, 31, 12, 0, 0, 0, berlin), 18*time.Hour)
	require.Equal(t, "2024-03-31T19:00:00+02:00", springForward.Format(time.RFC3339))

	fallBack := fallbackTime(time.Date(2024, 10, 27, 12, 0, 0, 0, berlin), 6*time.Hour)
	require.Equal(t, "2024-10-27T06:00:00+01:00", fallBack.Format(time.RFC3339))
}

func TestDateRange(t *testing.T) {
	dates := dateRange(time.Date(2024, 2, 27, 23, 0, 0, 0, time.UTC), day(2024, 3, 1))
	require.Len(t, dates, 4)
	require.Equal(t, "2024-02-29", dates[2].Format(DateLayout))
}
