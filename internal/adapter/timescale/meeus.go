// Package timescale converts civil instants to the dynamical time scale used
// by the solar and lunar models.
package timescale

import (
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/deltat"
	"github.com/soniakeys/meeus/v3/julian"
)

// Meeus implements domain.TimeScale with the meeus julian and deltat packages.
// Years from 2000 on use the Espenak-Meeus (2006) polynomials, which track
// observed ΔT far better than the book's 2000–2100 fit.
type Meeus struct{}

// NewMeeus returns the default time scale.
func NewMeeus() Meeus {
	return Meeus{}
}

// JulianCenturies returns centuries of 36525 days since J2000.0 for t, read as UT.
func (Meeus) JulianCenturies(t time.Time) float64 {
	return base.J2000Century(julian.TimeToJD(t.UTC()))
}

// DeltaT returns TD − UT in seconds for the instant t.
func (Meeus) DeltaT(t time.Time) float64 {
	return deltaTAt(decimalYear(t), julian.TimeToJD(t.UTC()))
}

// TimeFromJDE converts a Julian ephemeris day to a UTC instant rounded to the second.
func (m Meeus) TimeFromJDE(jde float64) time.Time {
	approx := julian.JDToTime(jde)
	jd := jde - m.DeltaT(approx)/86400
	return julian.JDToTime(jd).UTC().Round(time.Second)
}

// decimalYear places t at the middle of its month, as the ΔT polynomials expect.
func decimalYear(t time.Time) float64 {
	t = t.UTC()
	return float64(t.Year()) + (float64(t.Month())-0.5)/12
}

func deltaTAt(y, jd float64) float64 {
	switch {
	case y < 948:
		return float64(deltat.PolyBefore948(y))
	case y < 1620:
		return float64(deltat.Poly948to1600(y))
	case y < 2000:
		return float64(deltat.Interp10A(jd))
	case y < 2050:
		t := y - 2000
		return 62.92 + 0.32217*t + 0.005589*t*t
	case y <= 2150:
		u := (y - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-y)
	default:
		u := (y - 1820) / 100
		return -20 + 32*u*u
	}
}
