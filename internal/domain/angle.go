package domain

import (
	"math"

	"github.com/soniakeys/unit"
)

// Degree-based trigonometry. All angles in the domain package are degrees.

func sinDeg(x float64) float64 { return unit.AngleFromDeg(x).Sin() }
func cosDeg(x float64) float64 { return unit.AngleFromDeg(x).Cos() }

func asinDeg(x float64) float64     { return unit.Angle(math.Asin(x)).Deg() }
func acosDeg(x float64) float64     { return unit.Angle(math.Acos(x)).Deg() }
func atan2Deg(y, x float64) float64 { return unit.Angle(math.Atan2(y, x)).Deg() }

// ReduceAngle folds an angle in degrees into [0, 360).
func ReduceAngle(x float64) float64 {
	x = math.Mod(x, 360)
	if x < 0 {
		x += 360
	}
	// math.Mod of a tiny negative value can round up to exactly 360.
	if x >= 360 {
		x = 0
	}
	return x
}

// foldHourAngle maps a reduced angle into (-180, 180].
func foldHourAngle(h float64) float64 {
	if h > 180 {
		h -= 360
	}
	return h
}

// Polynomial evaluates Σ coeffs[i]·xⁱ with coefficients ordered lowest degree first.
func Polynomial(x float64, coeffs ...float64) float64 {
	y := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		y = y*x + coeffs[i]
	}
	return y
}

// InterpolateFromThree interpolates tabular values y1, y2, y3 taken at equal
// spacing at the fractional offset n from the central value y2 (Meeus eq. 3.3).
//
// Set normalize when the values are reduced angles that may wrap through
// 360° between samples (right ascension). Declination is bounded to
// [-90, 90] and must be interpolated without it.
func InterpolateFromThree(y1, y2, y3, n float64, normalize bool) float64 {
	if normalize {
		y1 = recenter(y1, y2)
		y3 = recenter(y3, y2)
	}
	a := y2 - y1
	b := y3 - y2
	c := b - a
	return y2 + n/2*(a+b+n*c)
}

func recenter(y, center float64) float64 {
	switch {
	case y-center > 180:
		return y - 360
	case center-y > 180:
		return y + 360
	default:
		return y
	}
}
