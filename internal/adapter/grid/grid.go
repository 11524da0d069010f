// Package grid computes sunrise, sunset and day length over a regular
// latitude/longitude grid and stores the result as NetCDF.
package grid

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"go.ngs.io/almanac-api/internal/domain"
)

// FillValue marks grid cells where the event does not occur.
const FillValue = -9999.0

// Spec defines the geographic bounds and resolution
type Spec struct {
	LatMin     float64
	LatMax     float64
	LonMin     float64
	LonMax     float64
	Resolution float64 // degrees
}

// Validate checks the bounds; the poles are excluded.
func (s Spec) Validate() error {
	if s.Resolution <= 0 {
		return errors.New("resolution must be positive")
	}
	if s.LatMin <= -90 || s.LatMax >= 90 {
		return errors.New("latitude bounds must be strictly between -90 and 90")
	}
	if s.LonMin < -180 || s.LonMax > 180 {
		return errors.New("longitude bounds must be between -180 and 180")
	}
	if s.LatMin > s.LatMax || s.LonMin > s.LonMax {
		return errors.New("minimum bound exceeds maximum")
	}
	return nil
}

// Lats returns the latitude axis.
func (s Spec) Lats() []float64 {
	return axis(s.LatMin, s.LatMax, s.Resolution)
}

// Lons returns the longitude axis.
func (s Spec) Lons() []float64 {
	return axis(s.LonMin, s.LonMax, s.Resolution)
}

func axis(lo, hi, step float64) []float64 {
	n := int((hi-lo)/step+1e-9) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Daylight holds one date's results in row-major (lat, lon) order.
type Daylight struct {
	Date time.Time // 0h UTC
	Lat  []float64
	Lon  []float64

	// Minutes after Date; FillValue when the event does not occur.
	Sunrise []float64
	Sunset  []float64

	// Hours of daylight: 24 under the midnight sun, 0 in polar night.
	DayLength []float64
}

// At returns the flat index of cell (i, j).
func (d *Daylight) At(i, j int) int {
	return i*len(d.Lon) + j
}

// Compute solves every cell for the UTC calendar date of date, one latitude
// row per worker.
func Compute(ctx context.Context, solver *domain.Solver, spec Spec, date time.Time, workers int) (*Daylight, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid: %w", err)
	}
	if workers < 1 {
		workers = 1
	}

	y, m, d := date.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	out := &Daylight{
		Date: midnight,
		Lat:  spec.Lats(),
		Lon:  spec.Lons(),
	}
	n := len(out.Lat) * len(out.Lon)
	out.Sunrise = make([]float64, n)
	out.Sunset = make([]float64, n)
	out.DayLength = make([]float64, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, lat := range out.Lat {
		i, lat := i, lat
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for j, lon := range out.Lon {
				out.fill(solver, out.At(i, j), domain.Location{Latitude: lat, Longitude: lon})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Daylight) fill(solver *domain.Solver, idx int, loc domain.Location) {
	rise, errRise := solver.Event(d.Date, loc, domain.Sunrise)
	set, errSet := solver.Event(d.Date, loc, domain.Sunset)

	d.Sunrise[idx] = FillValue
	d.Sunset[idx] = FillValue
	if errRise == nil {
		d.Sunrise[idx] = rise.Sub(d.Date).Minutes()
	}
	if errSet == nil {
		d.Sunset[idx] = set.Sub(d.Date).Minutes()
	}

	switch {
	case errRise == nil && errSet == nil:
		hours := set.Sub(rise).Hours()
		if hours < 0 {
			hours += 24
		}
		d.DayLength[idx] = hours
	case isSunHigh(errRise) || isSunHigh(errSet):
		d.DayLength[idx] = 24
	default:
		d.DayLength[idx] = 0
	}
}

func isSunHigh(err error) bool {
	class, ok := domain.ClassificationOf(err)
	return ok && class == domain.SunHigh
}
