package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Horizon depressions in degrees selecting the rise/set event class.
const (
	SunriseOffset      = 50.0 / 60.0 // semidiameter plus standard refraction
	CivilOffset        = 6.0
	NauticalOffset     = 12.0
	AstronomicalOffset = 18.0
)

const (
	maxIterations    = 3
	convergenceLimit = 0.0001 // day fraction, about 8.6 s

	siderealRate  = 360.985647
	secondsPerDay = 86400.0
)

var (
	// ErrNoEvent is matched by every *NoEventError.
	ErrNoEvent = errors.New("event does not occur on this date")
	// ErrInvalidDirection is returned for a direction other than Rise or Set.
	ErrInvalidDirection = errors.New("invalid rise/set direction")
	// ErrUnknownEvent is returned when an event name cannot be parsed.
	ErrUnknownEvent = errors.New("unknown event")
)

// Classification explains why a rise/set event has no solution.
type Classification int

const (
	// SunHigh means the sun stays above the threshold altitude all day.
	SunHigh Classification = iota + 1
	// SunLow means the sun never climbs to the threshold altitude.
	SunLow
)

func (c Classification) String() string {
	switch c {
	case SunHigh:
		return "SUN_HIGH"
	case SunLow:
		return "SUN_LOW"
	default:
		return "UNKNOWN"
	}
}

// NoEventError reports that the rise/set geometry has no real solution.
type NoEventError struct {
	Classification Classification
}

func (e *NoEventError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNoEvent.Error(), e.Classification)
}

// Is makes errors.Is(err, ErrNoEvent) hold for any classification.
func (e *NoEventError) Is(target error) bool {
	return target == ErrNoEvent
}

// ClassificationOf returns the classification carried by err, if any.
func ClassificationOf(err error) (Classification, bool) {
	var noEvent *NoEventError
	if errors.As(err, &noEvent) {
		return noEvent.Classification, true
	}
	return 0, false
}

// Direction selects the rising or the setting crossing of the threshold altitude.
type Direction int

const (
	// Rise is the morning crossing.
	Rise Direction = iota + 1
	// Set is the evening crossing.
	Set
)

func (d Direction) String() string {
	switch d {
	case Rise:
		return "rise"
	case Set:
		return "set"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Event is a named solar event.
type Event int

// Solar events.
const (
	Transit Event = iota + 1
	Sunrise
	Sunset
	CivilDawn
	CivilDusk
	NauticalDawn
	NauticalDusk
	AstronomicalDawn
	AstronomicalDusk
)

type eventSpec struct {
	name   string
	dir    Direction // zero for transit
	offset float64
}

//nolint:gochecknoglobals // Read-only event catalogue.
var eventSpecs = map[Event]eventSpec{
	Transit:          {name: "transit"},
	Sunrise:          {name: "sunrise", dir: Rise, offset: SunriseOffset},
	Sunset:           {name: "sunset", dir: Set, offset: SunriseOffset},
	CivilDawn:        {name: "civil_dawn", dir: Rise, offset: CivilOffset},
	CivilDusk:        {name: "civil_dusk", dir: Set, offset: CivilOffset},
	NauticalDawn:     {name: "nautical_dawn", dir: Rise, offset: NauticalOffset},
	NauticalDusk:     {name: "nautical_dusk", dir: Set, offset: NauticalOffset},
	AstronomicalDawn: {name: "astronomical_dawn", dir: Rise, offset: AstronomicalOffset},
	AstronomicalDusk: {name: "astronomical_dusk", dir: Set, offset: AstronomicalOffset},
}

func (e Event) String() string {
	if spec, ok := eventSpecs[e]; ok {
		return spec.name
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

// Direction returns Rise or Set, or zero for Transit.
func (e Event) Direction() Direction {
	return eventSpecs[e].dir
}

// Offset returns the horizon depression in degrees, zero for Transit.
func (e Event) Offset() float64 {
	return eventSpecs[e].offset
}

// AllEvents returns every event in chronological order of a normal day.
func AllEvents() []Event {
	return []Event{
		AstronomicalDawn, NauticalDawn, CivilDawn, Sunrise,
		Transit,
		Sunset, CivilDusk, NauticalDusk, AstronomicalDusk,
	}
}

// ParseEvent looks an event up by its name.
func ParseEvent(name string) (Event, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for ev, spec := range eventSpecs {
		if spec.name == name {
			return ev, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
}

// Location is an observer position in degrees. Longitude is east-positive;
// negate it when reading west-positive tables.
type Location struct {
	Latitude  float64
	Longitude float64
}

// SolverOptions controls how solved instants are localized.
type SolverOptions struct {
	RoundToNearestMinute bool
}

// Solver computes rise, set and transit instants (Meeus ch. 15).
type Solver struct {
	ts   TimeScale
	opts SolverOptions
}

// NewSolver creates a solver using ts for Julian centuries and ΔT.
func NewSolver(ts TimeScale, opts SolverOptions) *Solver {
	return &Solver{ts: ts, opts: opts}
}

// dayContext holds the per-date quantities shared by every event of a date.
type dayContext struct {
	midnight   time.Time      // 0h UT of the local calendar date
	location   *time.Location // caller's zone
	zoneOffset float64        // caller's UTC offset as a day fraction
	deltaT     float64        // seconds
	theta0     float64        // apparent sidereal time at Greenwich, 0h UT
	raTD       float64        // initial estimate at 0h TD
	decTD      float64
	ra         [3]float64 // 0h UT of the previous, current and next day
	dec        [3]float64
}

func (s *Solver) prepare(date time.Time) dayContext {
	y, mo, d := date.Date()
	midnight := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	_, offsetSec := time.Date(y, mo, d, 0, 0, 0, 0, date.Location()).Zone()

	t := s.ts.JulianCenturies(midnight)
	deltaT := s.ts.DeltaT(midnight)
	td := t - deltaT/(secondsPerDay*daysPerJulianCentury)

	day := dayContext{
		midnight:   midnight,
		location:   date.Location(),
		zoneOffset: float64(offsetSec) / secondsPerDay,
		deltaT:     deltaT,
		theta0:     ApparentSiderealTimeGreenwich(t),
	}
	day.raTD, day.decTD = SunEquatorial(td)
	for i := range day.ra {
		day.ra[i], day.dec[i] = SunEquatorial(t + float64(i-1)/daysPerJulianCentury)
	}
	return day
}

// baseFraction returns the transit estimate m0 as a fraction of the UTC day,
// shifted by whole days so that it lands on the caller's local date.
func (d dayContext) baseFraction(loc Location) float64 {
	return reduceFraction((d.raTD-loc.Longitude-d.theta0)/360, d.zoneOffset)
}

func reduceFraction(m, zoneOffset float64) float64 {
	if math.IsInf(m, 0) {
		return m
	}
	for m+zoneOffset < 0 {
		m++
	}
	for m+zoneOffset >= 1 {
		m--
	}
	return m
}

// position interpolates the sun's coordinates at the day fraction m and
// returns them with the local hour angle folded into (-180, 180].
func (d dayContext) position(m float64, loc Location) (hourAngle, dec float64) {
	theta := d.theta0 + siderealRate*m
	n := m + d.deltaT/864000

	ra := InterpolateFromThree(d.ra[0], d.ra[1], d.ra[2], n, true)
	dec = InterpolateFromThree(d.dec[0], d.dec[1], d.dec[2], n, false)
	hourAngle = foldHourAngle(ReduceAngle(theta + loc.Longitude - ra))
	return hourAngle, dec
}

func (d dayContext) riseSetCorrection(m float64, loc Location, offset float64) float64 {
	hourAngle, dec := d.position(m, loc)
	lat := loc.Latitude
	altitude := asinDeg(sinDeg(lat)*sinDeg(dec) + cosDeg(lat)*cosDeg(dec)*cosDeg(hourAngle))
	return (altitude + offset) / (360 * cosDeg(dec) * cosDeg(lat) * sinDeg(hourAngle))
}

func (d dayContext) localize(m float64, opts SolverOptions) time.Time {
	// Half-second ties round away from zero.
	seconds := math.Round(m * secondsPerDay)
	t := d.midnight.Add(time.Duration(seconds) * time.Second)
	if opts.RoundToNearestMinute {
		t = t.Add(30 * time.Second).Truncate(time.Minute)
	}
	return t.In(d.location)
}

// ApproxLocalHourAngle returns H0 in [0, 180] for a body at declination dec
// crossing the altitude -offset at latitude lat. It fails with a
// *NoEventError when the crossing never happens.
func ApproxLocalHourAngle(lat, dec, offset float64) (float64, error) {
	cosH0 := (sinDeg(-offset) - sinDeg(lat)*sinDeg(dec)) / (cosDeg(lat) * cosDeg(dec))
	switch {
	case cosH0 < -1:
		return 0, &NoEventError{Classification: SunHigh}
	case cosH0 > 1:
		return 0, &NoEventError{Classification: SunLow}
	}
	return acosDeg(cosH0), nil
}

// Transit returns the instant of the sun's upper culmination on the local
// calendar date of date, in date's time zone.
func (s *Solver) Transit(date time.Time, loc Location) time.Time {
	day := s.prepare(date)
	m := day.baseFraction(loc)
	hourAngle, _ := day.position(m, loc)
	m -= hourAngle / 360
	return day.localize(m, s.opts)
}

// RiseSet returns the instant the sun crosses the altitude -offset in the
// given direction on the local calendar date of date.
func (s *Solver) RiseSet(date time.Time, loc Location, offset float64, dir Direction) (time.Time, error) {
	t, _, err := s.RiseSetTrace(date, loc, offset, dir)
	return t, err
}

// RiseSetTrace is RiseSet that also returns every correction Δm applied by
// the iteration, in order.
func (s *Solver) RiseSetTrace(date time.Time, loc Location, offset float64, dir Direction) (time.Time, []float64, error) {
	if dir != Rise && dir != Set {
		return time.Time{}, nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(dir))
	}

	day := s.prepare(date)
	h0, err := ApproxLocalHourAngle(loc.Latitude, day.decTD, offset)
	if err != nil {
		return time.Time{}, nil, err
	}

	m := day.baseFraction(loc)
	if dir == Rise {
		m -= h0 / 360
	} else {
		m += h0 / 360
	}

	corrections := make([]float64, 0, maxIterations)
	for i := 0; i < maxIterations; i++ {
		dm := day.riseSetCorrection(m, loc, offset)
		m += dm
		corrections = append(corrections, dm)
		if math.Abs(dm) <= convergenceLimit {
			break
		}
	}

	return day.localize(m, s.opts), corrections, nil
}

// Event solves a named event.
func (s *Solver) Event(date time.Time, loc Location, ev Event) (time.Time, error) {
	spec, ok := eventSpecs[ev]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %d", ErrUnknownEvent, int(ev))
	}
	if ev == Transit {
		return s.Transit(date, loc), nil
	}
	return s.RiseSet(date, loc, spec.offset, spec.dir)
}
