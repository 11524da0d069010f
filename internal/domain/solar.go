package domain

// Low-precision solar coordinates (Meeus ch. 25), accurate to about 0.01°.

// SunMeanLongitude returns L0, the geometric mean longitude of the sun referred
// to the mean equinox of the date, reduced to [0, 360).
func SunMeanLongitude(t float64) float64 {
	return ReduceAngle(Polynomial(t, 280.46646, 36000.76983, 0.0003032))
}

// SunMeanAnomaly returns M, the mean anomaly of the sun, reduced to [0, 360).
func SunMeanAnomaly(t float64) float64 {
	return ReduceAngle(Polynomial(t, 357.52911, 35999.05029, -0.0001537))
}

// SunEquationOfCenter returns C in degrees.
func SunEquationOfCenter(t float64) float64 {
	m := SunMeanAnomaly(t)
	return Polynomial(t, 1.914602, -0.004817, -0.000014)*sinDeg(m) +
		Polynomial(t, 0.019993, -0.000101)*sinDeg(2*m) +
		0.000289*sinDeg(3*m)
}

// SunTrueLongitude returns ☉ = L0 + C in degrees.
func SunTrueLongitude(t float64) float64 {
	return SunMeanLongitude(t) + SunEquationOfCenter(t)
}

// SunApparentLongitude returns λ, the true longitude corrected for nutation
// and aberration.
func SunApparentLongitude(t float64) float64 {
	return SunTrueLongitude(t) - 0.00569 - 0.00478*sinDeg(MoonAscendingNodeLongitude(t))
}

// apparentObliquity returns the obliquity used with the apparent longitude.
func apparentObliquity(t float64) float64 {
	return TrueObliquityOfEcliptic(t) + 0.00256*cosDeg(MoonAscendingNodeLongitude(t))
}

// SunApparentRightAscension returns α in degrees, reduced to [0, 360).
func SunApparentRightAscension(t float64) float64 {
	ra, _ := SunEquatorial(t)
	return ra
}

// SunApparentDeclination returns δ in degrees. It is bounded to [-90, 90]
// and never reduced.
func SunApparentDeclination(t float64) float64 {
	_, dec := SunEquatorial(t)
	return dec
}

// SunEquatorial returns the apparent right ascension and declination of the
// sun in degrees, sharing one evaluation of the longitude and obliquity.
func SunEquatorial(t float64) (ra, dec float64) {
	lambda := SunApparentLongitude(t)
	eps := apparentObliquity(t)

	ra = ReduceAngle(atan2Deg(cosDeg(eps)*sinDeg(lambda), cosDeg(lambda)))
	dec = asinDeg(sinDeg(eps) * sinDeg(lambda))
	return ra, dec
}
