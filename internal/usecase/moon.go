package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.ngs.io/almanac-api/internal/domain"
)

// MoonPhaseRequest encapsulates a lunar phase request
type MoonPhaseRequest struct {
	// Inclusive instant range
	Start time.Time
	End   time.Time

	// IANA zone for the reported times, UTC if empty
	Timezone string

	// Phase names, all four if empty
	Phases []string
}

// MoonPhaseResponse lists the phases inside the requested range
type MoonPhaseResponse struct {
	Timezone string            `json:"timezone"`
	Phases   []PhaseEvent      `json:"phases"`
	Meta     map[string]string `json:"meta"`
}

// PhaseEvent is a single principal phase
type PhaseEvent struct {
	Phase    string  `json:"phase"`
	Time     string  `json:"time"`
	JDE      float64 `json:"jde"`
	Lunation int     `json:"lunation"`
}

// MoonPhaseUseCase orchestrates lunar phase computation
type MoonPhaseUseCase struct {
	ts           domain.TimeScale
	maxRangeDays int
}

// NewMoonPhaseUseCase creates a new moon phase use case
func NewMoonPhaseUseCase(ts domain.TimeScale, maxRangeDays int) *MoonPhaseUseCase {
	return &MoonPhaseUseCase{
		ts:           ts,
		maxRangeDays: maxRangeDays,
	}
}

// Validate checks if the request is valid
func (r *MoonPhaseRequest) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("start and end are required")
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("start must not be after end")
	}
	if r.Timezone != "" {
		if _, err := time.LoadLocation(r.Timezone); err != nil {
			return fmt.Errorf("unknown timezone %q", r.Timezone)
		}
	}
	for _, name := range r.Phases {
		if _, err := domain.ParsePhase(name); err != nil {
			return err
		}
	}
	return nil
}

// Execute returns the selected phases between Start and End, in order
func (uc *MoonPhaseUseCase) Execute(ctx context.Context, req MoonPhaseRequest) (*MoonPhaseResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if uc.maxRangeDays > 0 && req.End.Sub(req.Start) > time.Duration(uc.maxRangeDays)*24*time.Hour {
		return nil, fmt.Errorf("%w: time range must be at most %d days", ErrValidation, uc.maxRangeDays)
	}

	tzName := req.Timezone
	if tzName == "" {
		tzName = "UTC"
	}
	zone, _ := time.LoadLocation(tzName)

	selected := make(map[domain.Phase]bool)
	for _, name := range req.Phases {
		p, _ := domain.ParsePhase(name)
		selected[p] = true
	}

	phases := make([]PhaseEvent, 0)
	// The estimate can be off by a fraction of a lunation, so start one early.
	k := math.Floor(domain.LunationIndex(decimalYear(req.Start))) - 1
	for ; ; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if uc.ts.TimeFromJDE(domain.TruePhase(k, domain.NewMoon)).After(req.End) {
			break
		}
		for _, phase := range domain.AllPhases() {
			if len(selected) > 0 && !selected[phase] {
				continue
			}
			jde := domain.TruePhase(k, phase)
			t := uc.ts.TimeFromJDE(jde)
			if t.Before(req.Start) || t.After(req.End) {
				continue
			}
			phases = append(phases, PhaseEvent{
				Phase:    phase.String(),
				Time:     t.In(zone).Format(time.RFC3339),
				JDE:      roundToDecimal(jde, 5),
				Lunation: int(k),
			})
		}
	}

	return &MoonPhaseResponse{
		Timezone: tzName,
		Phases:   phases,
		Meta: map[string]string{
			"model": "meeus_ch49",
		},
	}, nil
}

// decimalYear returns the year with the elapsed fraction of it.
func decimalYear(t time.Time) float64 {
	t = t.UTC()
	start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return float64(t.Year()) + t.Sub(start).Seconds()/end.Sub(start).Seconds()
}
