package domain

// Polynomial coefficients in Julian centuries T from J2000.0 (Meeus ch. 22).
//
//nolint:gochecknoglobals // Read-only coefficient sets.
var (
	// Mean obliquity in arcseconds, polynomial in U = T/100 (Meeus eq. 22.3, truncated).
	obliquityCoeffs = []float64{84381.448, -4680.93, -1.55, 1999.25, -51.38}

	elongationCoeffs  = []float64{297.85036, 445267.111480, -0.0019142, 1.0 / 189474}
	sunAnomalyCoeffs  = []float64{357.52772, 35999.050340, -0.0001603, -1.0 / 300000}
	moonAnomalyCoeffs = []float64{134.96298, 477198.867398, 0.0086972, 1.0 / 56250}
	moonArgLatCoeffs  = []float64{93.27191, 483202.017538, -0.0036825, 1.0 / 327270}
	moonNodeCoeffs    = []float64{125.04452, -1934.136261, 0.0020708, 1.0 / 450000}
)

const (
	// nutationUnit converts 0.0001″ to degrees.
	nutationUnit = 36000000.0

	daysPerJulianCentury = 36525.0
)

// fundamentalArgs holds the Delaunay-style arguments used by the nutation series.
type fundamentalArgs struct {
	D     float64 // mean elongation of the moon from the sun
	M     float64 // mean anomaly of the sun
	Mp    float64 // mean anomaly of the moon
	F     float64 // moon's argument of latitude
	Omega float64 // longitude of the moon's ascending node
}

func newFundamentalArgs(t float64) fundamentalArgs {
	return fundamentalArgs{
		D:     ReduceAngle(Polynomial(t, elongationCoeffs...)),
		M:     ReduceAngle(Polynomial(t, sunAnomalyCoeffs...)),
		Mp:    ReduceAngle(Polynomial(t, moonAnomalyCoeffs...)),
		F:     ReduceAngle(Polynomial(t, moonArgLatCoeffs...)),
		Omega: MoonAscendingNodeLongitude(t),
	}
}

// MoonAscendingNodeLongitude returns Ω, the mean longitude of the moon's
// ascending node, reduced to [0, 360).
func MoonAscendingNodeLongitude(t float64) float64 {
	return ReduceAngle(Polynomial(t, moonNodeCoeffs...))
}

// MeanObliquityOfEcliptic returns ε0 in degrees.
func MeanObliquityOfEcliptic(t float64) float64 {
	return Polynomial(t/100, obliquityCoeffs...) / 3600
}

// NutationInLongitude returns Δψ in degrees.
func NutationInLongitude(t float64) float64 {
	args := newFundamentalArgs(t)
	sum := 0.0
	for _, term := range nutationTerms {
		sum += (term.SinA + term.SinB*t) * sinDeg(term.argument(args))
	}
	return sum / nutationUnit
}

// NutationInObliquity returns Δε in degrees.
func NutationInObliquity(t float64) float64 {
	args := newFundamentalArgs(t)
	sum := 0.0
	for _, term := range nutationTerms {
		sum += (term.CosA + term.CosB*t) * cosDeg(term.argument(args))
	}
	return sum / nutationUnit
}

// TrueObliquityOfEcliptic returns ε = ε0 + Δε in degrees.
func TrueObliquityOfEcliptic(t float64) float64 {
	return MeanObliquityOfEcliptic(t) + NutationInObliquity(t)
}

// MeanSiderealTimeGreenwich returns θ0 in degrees for the instant T (Meeus eq. 12.4).
func MeanSiderealTimeGreenwich(t float64) float64 {
	days := t * daysPerJulianCentury
	theta := 280.46061837 + 360.98564736629*days + Polynomial(t, 0, 0, 0.000387933, -1.0/38710000)
	return ReduceAngle(theta)
}

// ApparentSiderealTimeGreenwich returns the mean sidereal time corrected for
// nutation (the equation of the equinoxes), in degrees.
func ApparentSiderealTimeGreenwich(t float64) float64 {
	correction := NutationInLongitude(t) * cosDeg(TrueObliquityOfEcliptic(t))
	return ReduceAngle(MeanSiderealTimeGreenwich(t) + correction)
}
