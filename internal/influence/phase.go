package influence

import "github.com/mrcode/glucotrend/internal/models"

// Phase is a menstrual cycle phase label
type Phase string

const (
	PhaseMenstrual  Phase = "Menstrual"
	PhaseFollicular Phase = "Follicular"
	PhaseOvulation  Phase = "Ovulation"
	PhaseLuteal     Phase = "Luteal"
)

// PhaseForDay returns the phase of a cycle day
func PhaseForDay(cycleDay int) Phase {
	switch {
	case cycleDay <= 5:
		return PhaseMenstrual
	case cycleDay <= 13:
		return PhaseFollicular
	case cycleDay <= 15:
		return PhaseOvulation
	default:
		return PhaseLuteal
	}
}

// MenstrualPhase returns the phase for p, and false when the profile has
// no active cycle (not female, or pregnant).
func MenstrualPhase(p models.UserProfile) (Phase, bool) {
	if !p.HasActiveCycle() {
		return "", false
	}
	return PhaseForDay(p.MenstrualCycleDay), true
}
