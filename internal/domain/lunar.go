package domain

import (
	"fmt"
	"strings"
)

// Phase selects one of the four principal lunar phases.
type Phase int

// Lunar phases, in order of their offset within a lunation.
const (
	NewMoon Phase = iota
	FirstQuarter
	FullMoon
	LastQuarter
)

var phaseNames = [...]string{"new_moon", "first_quarter", "full_moon", "last_quarter"}

func (p Phase) String() string {
	if p < NewMoon || p > LastQuarter {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// ParsePhase accepts the phase names and their short forms ("new", "first",
// "full", "last").
func ParsePhase(s string) (Phase, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range phaseNames {
		if s == name || s == strings.SplitN(name, "_", 2)[0] {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("unknown lunar phase %q", s)
}

// AllPhases returns the four phases in lunation order.
func AllPhases() []Phase {
	return []Phase{NewMoon, FirstQuarter, FullMoon, LastQuarter}
}

const lunationsPerCentury = 1236.85

// LunationIndex returns the approximate number of new moons since
// 2000-01-06 for a decimal year (Meeus eq. 49.2). Its integer part selects a
// new moon; add 0.25, 0.5 or 0.75 for the other phases.
func LunationIndex(decimalYear float64) float64 {
	return (decimalYear - 2000) * 12.3685
}

// lunarArgs are the angles of Meeus ch. 49, in degrees.
type lunarArgs struct {
	E     float64 // eccentricity factor, dimensionless
	M     float64 // sun's mean anomaly
	Mp    float64 // moon's mean anomaly
	F     float64 // moon's argument of latitude
	Omega float64 // longitude of the ascending node
}

func newLunarArgs(k, t float64) lunarArgs {
	return lunarArgs{
		E:     Polynomial(t, 1, -0.002516, -0.0000074),
		M:     ReduceAngle(2.5534 + 29.10535670*k + Polynomial(t, 0, 0, -0.0000014, -0.00000011)),
		Mp:    ReduceAngle(201.5643 + 385.81693528*k + Polynomial(t, 0, 0, 0.0107582, 0.00001238, -0.000000058)),
		F:     ReduceAngle(160.7108 + 390.67050284*k + Polynomial(t, 0, 0, -0.0016118, -0.00000227, 0.000000011)),
		Omega: ReduceAngle(124.7746 - 1.56375588*k + Polynomial(t, 0, 0, 0.0020672, 0.00000215)),
	}
}

// phaseTerm contributes Coeff·E^EPower·sin(M·m + Mp·m′ + F·f + Omega·Ω).
type phaseTerm struct {
	Coeff           float64
	EPower          int
	M, Mp, F, Omega int
}

func sumPhaseTerms(terms []phaseTerm, a lunarArgs) float64 {
	sum := 0.0
	for _, term := range terms {
		arg := float64(term.M)*a.M + float64(term.Mp)*a.Mp + float64(term.F)*a.F + float64(term.Omega)*a.Omega
		v := term.Coeff * sinDeg(arg)
		for i := 0; i < term.EPower; i++ {
			v *= a.E
		}
		sum += v
	}
	return sum
}

// minorSyzygyTerms are shared by new and full moon after the leading sin Ω term.
//
//nolint:gochecknoglobals // Read-only periodic terms.
var minorSyzygyTerms = []phaseTerm{
	{-0.00007, 0, 2, 1, 0, 0},
	{0.00004, 0, 0, 2, -2, 0},
	{0.00004, 0, 3, 0, 0, 0},
	{0.00003, 0, 1, 1, -2, 0},
	{0.00003, 0, 0, 2, 2, 0},
	{-0.00003, 0, 1, 1, 2, 0},
	{0.00003, 0, -1, 1, 2, 0},
	{-0.00002, 0, -1, 1, -2, 0},
	{-0.00002, 0, 1, 3, 0, 0},
	{0.00002, 0, 0, 4, 0, 0},
}

//nolint:gochecknoglobals // Read-only periodic terms.
var (
	newMoonTerms = append([]phaseTerm{
		{-0.40720, 0, 0, 1, 0, 0},
		{0.17241, 1, 1, 0, 0, 0},
		{0.01608, 0, 0, 2, 0, 0},
		{0.01039, 0, 0, 0, 2, 0},
		{0.00739, 1, -1, 1, 0, 0},
		{-0.00514, 1, 1, 1, 0, 0},
		{0.00208, 2, 2, 0, 0, 0},
		{-0.00111, 0, 0, 1, -2, 0},
		{-0.00057, 0, 0, 1, 2, 0},
		{0.00056, 1, 1, 2, 0, 0},
		{-0.00042, 0, 0, 3, 0, 0},
		{0.00042, 1, 1, 0, 2, 0},
		{0.00038, 1, 1, 0, -2, 0},
		{-0.00024, 1, -1, 2, 0, 0},
		{-0.00017, 0, 0, 0, 0, 1},
	}, minorSyzygyTerms...)

	fullMoonTerms = append([]phaseTerm{
		{-0.40614, 0, 0, 1, 0, 0},
		{0.17302, 1, 1, 0, 0, 0},
		{0.01614, 0, 0, 2, 0, 0},
		{0.01043, 0, 0, 0, 2, 0},
		{0.00734, 1, -1, 1, 0, 0},
		{-0.00515, 1, 1, 1, 0, 0},
		{0.00209, 2, 2, 0, 0, 0},
		{-0.00111, 0, 0, 1, -2, 0},
		{-0.00057, 0, 0, 1, 2, 0},
		{0.00056, 1, 1, 2, 0, 0},
		{-0.00042, 0, 0, 3, 0, 0},
		{0.00042, 1, 1, 0, 2, 0},
		{0.00038, 1, 1, 0, -2, 0},
		{-0.00024, 1, -1, 2, 0, 0},
		{-0.00017, 0, 0, 0, 0, 1},
	}, minorSyzygyTerms...)

	quarterTerms = []phaseTerm{
		{-0.62801, 0, 0, 1, 0, 0},
		{0.17172, 1, 1, 0, 0, 0},
		{-0.01183, 1, 1, 1, 0, 0},
		{0.00862, 0, 0, 2, 0, 0},
		{0.00804, 0, 0, 0, 2, 0},
		{0.00454, 1, -1, 1, 0, 0},
		{0.00204, 2, 2, 0, 0, 0},
		{-0.00180, 0, 0, 1, -2, 0},
		{-0.00070, 0, 0, 1, 2, 0},
		{-0.00040, 0, 0, 3, 0, 0},
		{-0.00034, 1, -1, 2, 0, 0},
		{0.00032, 1, 1, 0, 2, 0},
		{0.00032, 1, 1, 0, -2, 0},
		{-0.00028, 2, 2, 1, 0, 0},
		{0.00027, 1, 1, 2, 0, 0},
		{-0.00017, 0, 0, 0, 0, 1},
		{-0.00005, 0, -1, 1, -2, 0},
		{0.00004, 0, 0, 2, 2, 0},
		{-0.00004, 0, 1, 1, 2, 0},
		{0.00004, 0, -2, 1, 0, 0},
		{0.00003, 0, 1, 1, -2, 0},
		{0.00003, 0, 3, 0, 0, 0},
		{0.00002, 0, 0, 2, -2, 0},
		{0.00002, 0, -1, 1, 2, 0},
		{-0.00002, 0, 1, 3, 0, 0},
	}
)

// planetaryTerm is Coeff·sin(Base + Rate·k), plus QuadT·T² inside the sine.
type planetaryTerm struct {
	Coeff, Base, Rate, QuadT float64
}

//nolint:gochecknoglobals // Read-only periodic terms.
var planetaryTerms = [14]planetaryTerm{
	{0.000325, 299.77, 0.107408, -0.009173},
	{0.000165, 251.88, 0.016321, 0},
	{0.000164, 251.83, 26.651886, 0},
	{0.000126, 349.42, 36.412478, 0},
	{0.000110, 84.66, 18.206239, 0},
	{0.000062, 141.74, 53.303771, 0},
	{0.000060, 207.14, 2.453732, 0},
	{0.000056, 154.84, 7.306860, 0},
	{0.000047, 34.52, 27.261239, 0},
	{0.000042, 207.19, 0.121824, 0},
	{0.000040, 291.34, 1.844379, 0},
	{0.000037, 161.72, 24.198154, 0},
	{0.000035, 239.56, 25.513099, 0},
	{0.000023, 331.55, 3.592518, 0},
}

// meanPhase returns the JDE of the mean phase (Meeus eq. 49.1).
func meanPhase(k, t float64) float64 {
	return 2451550.09766 + 29.530588861*k + Polynomial(t, 0, 0, 0.00015437, -0.000000150, 0.00000000073)
}

func planetaryCorrection(k, t float64) float64 {
	sum := 0.0
	for _, term := range planetaryTerms {
		sum += term.Coeff * sinDeg(term.Base+term.Rate*k+term.QuadT*t*t)
	}
	return sum
}

// quarterW is the additional correction applied with a positive sign at
// first quarter and a negative sign at last quarter.
func quarterW(a lunarArgs) float64 {
	return 0.00306 -
		0.00038*a.E*cosDeg(a.M) +
		0.00026*cosDeg(a.Mp) -
		0.00002*cosDeg(a.Mp-a.M) +
		0.00002*cosDeg(a.Mp+a.M) +
		0.00002*cosDeg(2*a.F)
}

// TruePhase returns the Julian ephemeris day of the given phase in lunation
// k (Meeus ch. 49). k counts new moons from 2000-01-06 and should be a whole
// number; the phase adds its quarter offset. Accuracy is a few seconds within
// a few centuries of J2000.0.
func TruePhase(k float64, phase Phase) float64 {
	k += float64(phase) / 4
	t := k / lunationsPerCentury
	a := newLunarArgs(k, t)

	jde := meanPhase(k, t) + planetaryCorrection(k, t)
	switch phase {
	case NewMoon:
		jde += sumPhaseTerms(newMoonTerms, a)
	case FullMoon:
		jde += sumPhaseTerms(fullMoonTerms, a)
	case FirstQuarter:
		jde += sumPhaseTerms(quarterTerms, a) + quarterW(a)
	case LastQuarter:
		jde += sumPhaseTerms(quarterTerms, a) - quarterW(a)
	}
	return jde
}
