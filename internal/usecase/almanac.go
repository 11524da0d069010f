package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"go.ngs.io/almanac-api/internal/adapter/store"
	"go.ngs.io/almanac-api/internal/domain"
)

// ErrValidation marks request errors the caller can fix.
var ErrValidation = errors.New("invalid request")

// No-event policies.
const (
	PolicyFallbackTime   = "fallback_time"
	PolicyClassification = "classification"
)

// DateLayout is the calendar date format used in requests and responses.
const DateLayout = "2006-01-02"

// AlmanacRequest encapsulates a solar event request
type AlmanacRequest struct {
	// Location parameters (mutually exclusive with StationID)
	Lat *float64
	Lon *float64

	// Station ID (mutually exclusive with Lat/Lon)
	StationID *string

	// IANA zone; required with lat/lon, defaults to the station's zone
	Timezone string

	// Inclusive range of local calendar dates; only Y/M/D are used
	Start time.Time
	End   time.Time

	// Event names, all events if empty
	Events []string
}

// AlmanacResponse contains the solar events of every requested day
type AlmanacResponse struct {
	Location LocationInfo      `json:"location"`
	Timezone string            `json:"timezone"`
	Days     []DayEvents       `json:"days"`
	Meta     map[string]string `json:"meta"`
}

// LocationInfo echoes the resolved observer position
type LocationInfo struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	StationID string  `json:"station_id,omitempty"`
	Name      string  `json:"name,omitempty"`
}

// DayEvents holds the outcomes for one local date
type DayEvents struct {
	Date           string                  `json:"date"`
	Events         map[string]EventOutcome `json:"events"`
	DayLengthHours float64                 `json:"day_length_hours"`
}

// EventOutcome is either a solved instant or the reason there is none.
// Under the fallback policy an unsolvable event carries both.
type EventOutcome struct {
	Time           string `json:"time,omitempty"`
	Classification string `json:"classification,omitempty"`
	Fallback       bool   `json:"fallback,omitempty"`
}

// AlmanacOptions configures the almanac use case
type AlmanacOptions struct {
	NoEventPolicy string
	RiseFallback  time.Duration // offset from local midnight, standard time
	SetFallback   time.Duration
	MaxRangeDays  int
	Workers       int
}

// AlmanacUseCase orchestrates solar event computation
type AlmanacUseCase struct {
	solver   *domain.Solver
	stations store.StationLoader
	opts     AlmanacOptions
	logger   *slog.Logger
}

// NewAlmanacUseCase creates a new almanac use case
func NewAlmanacUseCase(solver *domain.Solver, stations store.StationLoader, opts AlmanacOptions, logger *slog.Logger) *AlmanacUseCase {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.NoEventPolicy == "" {
		opts.NoEventPolicy = PolicyFallbackTime
	}
	return &AlmanacUseCase{
		solver:   solver,
		stations: stations,
		opts:     opts,
		logger:   logger,
	}
}

// Validate checks if the request is valid
func (r *AlmanacRequest) Validate() error {
	// Check mutually exclusive parameters
	hasLatLon := r.Lat != nil && r.Lon != nil
	hasStationID := r.StationID != nil && *r.StationID != ""

	if !hasLatLon && !hasStationID {
		return fmt.Errorf("either lat/lon or station_id must be provided")
	}

	if hasLatLon && hasStationID {
		return fmt.Errorf("lat/lon and station_id are mutually exclusive")
	}

	// The solver divides by cos(latitude), so the poles are excluded
	if hasLatLon {
		if *r.Lat <= -90 || *r.Lat >= 90 {
			return fmt.Errorf("latitude must be strictly between -90 and 90")
		}
		if *r.Lon < -180 || *r.Lon > 180 {
			return fmt.Errorf("longitude must be between -180 and 180")
		}
		if r.Timezone == "" {
			return fmt.Errorf("timezone is required with lat/lon")
		}
	}

	if r.Timezone != "" {
		if _, err := time.LoadLocation(r.Timezone); err != nil {
			return fmt.Errorf("unknown timezone %q", r.Timezone)
		}
	}

	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if civilDate(r.End).Before(civilDate(r.Start)) {
		return fmt.Errorf("start date must not be after end date")
	}

	for _, name := range r.Events {
		if _, err := domain.ParseEvent(name); err != nil {
			return err
		}
	}

	return nil
}

// Execute computes the requested events for every date in the range
func (uc *AlmanacUseCase) Execute(ctx context.Context, req AlmanacRequest) (*AlmanacResponse, error) {
	// Validate request
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	span := int(civilDate(req.End).Sub(civilDate(req.Start)).Hours()/24) + 1
	if uc.opts.MaxRangeDays > 0 && span > uc.opts.MaxRangeDays {
		return nil, fmt.Errorf("%w: date range must be at most %d days", ErrValidation, uc.opts.MaxRangeDays)
	}
	dates := dateRange(req.Start, req.End)

	info, tzName, err := uc.resolveLocation(req)
	if err != nil {
		return nil, err
	}
	zone, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrValidation, tzName)
	}

	events := domain.AllEvents()
	if len(req.Events) > 0 {
		events = make([]domain.Event, 0, len(req.Events))
		for _, name := range req.Events {
			ev, _ := domain.ParseEvent(name)
			events = append(events, ev)
		}
	}

	loc := domain.Location{Latitude: info.Lat, Longitude: info.Lon}
	days := make([]DayEvents, len(dates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.Workers)
	for i, d := range dates {
		i, d := i, d
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			date := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, zone)
			days[i] = uc.computeDay(date, loc, events)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &AlmanacResponse{
		Location: info,
		Timezone: tzName,
		Days:     days,
		Meta: map[string]string{
			"model":           "meeus_low_precision",
			"no_event_policy": uc.opts.NoEventPolicy,
		},
	}, nil
}

func (uc *AlmanacUseCase) resolveLocation(req AlmanacRequest) (LocationInfo, string, error) {
	if req.StationID == nil || *req.StationID == "" {
		return LocationInfo{Lat: *req.Lat, Lon: *req.Lon}, req.Timezone, nil
	}

	st, err := uc.stations.LoadStation(*req.StationID)
	if err != nil {
		return LocationInfo{}, "", fmt.Errorf("failed to load station %s: %w", *req.StationID, err)
	}
	tz := req.Timezone
	if tz == "" {
		tz = st.Timezone
	}
	return LocationInfo{
		Lat:       st.Location.Latitude,
		Lon:       st.Location.Longitude,
		StationID: st.ID,
		Name:      st.Name,
	}, tz, nil
}

func (uc *AlmanacUseCase) computeDay(date time.Time, loc domain.Location, events []domain.Event) DayEvents {
	day := DayEvents{
		Date:   date.Format(DateLayout),
		Events: make(map[string]EventOutcome, len(events)),
	}

	for _, ev := range events {
		t, err := uc.solver.Event(date, loc, ev)
		if err != nil {
			day.Events[ev.String()] = uc.noEventOutcome(date, ev, err)
			continue
		}
		day.Events[ev.String()] = EventOutcome{Time: t.Format(time.RFC3339)}
	}

	day.DayLengthHours = uc.dayLength(date, loc)
	return day
}

func (uc *AlmanacUseCase) noEventOutcome(date time.Time, ev domain.Event, err error) EventOutcome {
	class, _ := domain.ClassificationOf(err)
	uc.logger.Debug("event does not occur",
		"date", date.Format(DateLayout),
		"event", ev.String(),
		"classification", class.String())

	out := EventOutcome{Classification: class.String()}
	if uc.opts.NoEventPolicy != PolicyFallbackTime {
		return out
	}

	clock := uc.opts.RiseFallback
	if ev.Direction() == domain.Set {
		clock = uc.opts.SetFallback
	}
	out.Time = fallbackTime(date, clock).Format(time.RFC3339)
	out.Fallback = true
	return out
}

// fallbackTime returns the standard-time clock reading on the local date of
// date, one hour later when daylight saving time is in effect.
func fallbackTime(date time.Time, clock time.Duration) time.Time {
	y, m, d := date.Date()
	hour := int(clock / time.Hour)
	minute := int((clock % time.Hour) / time.Minute)
	t := time.Date(y, m, d, hour, minute, 0, 0, date.Location())
	if t.IsDST() {
		t = t.Add(time.Hour)
	}
	return t
}

// dayLength returns the hours between sunrise and sunset, 24 under the
// midnight sun and 0 in polar night.
func (uc *AlmanacUseCase) dayLength(date time.Time, loc domain.Location) float64 {
	rise, errRise := uc.solver.Event(date, loc, domain.Sunrise)
	set, errSet := uc.solver.Event(date, loc, domain.Sunset)

	switch {
	case errRise == nil && errSet == nil:
		hours := set.Sub(rise).Hours()
		if hours < 0 {
			hours += 24
		}
		return roundToDecimal(hours, 3)
	case classified(errRise, domain.SunHigh) || classified(errSet, domain.SunHigh):
		return 24
	default:
		return 0
	}
}

func classified(err error, want domain.Classification) bool {
	class, ok := domain.ClassificationOf(err)
	return ok && class == want
}

// ListStations returns the station catalogue
func (uc *AlmanacUseCase) ListStations() ([]domain.Station, error) {
	return uc.stations.ListStations()
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateRange(start, end time.Time) []time.Time {
	dates := make([]time.Time, 0)
	last := civilDate(end)
	for d := civilDate(start); !d.After(last); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Helper function to round to decimal places
func roundToDecimal(val float64, precision int) float64 {
	multiplier := math.Pow(10, float64(precision))
	return math.Round(val*multiplier) / multiplier
}
