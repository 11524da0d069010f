package domain

import "time"

// TimeScale converts civil instants into the time arguments the solvers work
// in. Implementations own calendar arithmetic and the ΔT model.
type TimeScale interface {
	// JulianCenturies returns T, Julian centuries from J2000.0, for an instant.
	JulianCenturies(t time.Time) float64
	// DeltaT returns TT − UT in seconds at the instant.
	DeltaT(t time.Time) float64
	// TimeFromJDE converts a Julian ephemeris day to a UTC instant.
	TimeFromJDE(jde float64) time.Time
}
