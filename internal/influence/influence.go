// Package influence maps single physiological or behavioural factors onto
// signed percentage-point adjustments of a baseline glucose value.
//
// Every function here is total and deterministic. Downstream code combines
// them additively; none depends on the output of another.
package influence

import (
	"math"

	"github.com/mrcode/glucotrend/internal/models"
)

// idealSleepHours is the sleep duration with no duration penalty
const idealSleepHours = 7.5

// exerciseWindowHours is how long an exercise session keeps lowering glucose
const exerciseWindowHours = 4.0

// Hormonal returns the cycle-day adjustment for a non-pregnant female profile,
// and 0 for everybody else. Days 12-16 are checked before the late-cycle
// branch, so day 16 is +15 and day 17 is +10.
func Hormonal(gender models.Gender, isPregnant bool, cycleDay int) float64 {
	if gender != models.GenderFemale || isPregnant {
		return 0
	}

	switch {
	case cycleDay >= 12 && cycleDay <= 16:
		return 15
	case cycleDay >= 17:
		return 10
	case cycleDay <= 5:
		return 8
	default:
		return -5
	}
}

// Sleep returns (10 - quality)·2 plus 3 per hour of deviation from 7.5h.
// It is never negative for quality up to 10.
func Sleep(quality int, durationHours float64) float64 {
	qualityImpact := float64(10-quality) * 2
	durationImpact := math.Abs(durationHours-idealSleepHours) * 3
	return qualityImpact + durationImpact
}

// Stress returns (level - 1)·3, zero at the calmest level
func Stress(level int) float64 {
	return float64(level-1) * 3
}

// Experience returns the unpredictability of a short disease history,
// decreasing linearly to 0 at ten years.
func Experience(yearsSinceDiagnosis int) float64 {
	return math.Max(0, float64(10-yearsSinceDiagnosis))
}

// MealTiming returns the post-meal rise for the hours since the last meal
func MealTiming(hoursSinceMeal float64) float64 {
	switch {
	case hoursSinceMeal < 1:
		return 20
	case hoursSinceMeal < 2:
		return 15
	case hoursSinceMeal < 3:
		return 8
	default:
		return 0
	}
}

// Exercise returns the glucose-lowering effect of a session that ended
// hoursSinceExercise ago, decaying linearly to 0 over four hours.
func Exercise(hoursSinceExercise float64, intensity models.Intensity) float64 {
	if hoursSinceExercise > exerciseWindowHours {
		return 0
	}

	var multiplier float64
	switch intensity {
	case models.IntensityLight:
		multiplier = -3
	case models.IntensityModerate:
		multiplier = -8
	case models.IntensityVigorous:
		multiplier = -12
	default:
		return 0
	}

	timeDecay := math.Max(0, 1-hoursSinceExercise/exerciseWindowHours)
	return multiplier * timeDecay
}

// Profile bundles the four profile-driven influences of one UserProfile
type Profile struct {
	Hormonal   float64 `json:"hormonal"`
	Sleep      float64 `json:"sleep"`
	Stress     float64 `json:"stress"`
	Experience float64 `json:"experience"`
}

// ForProfile evaluates the profile-driven influences of p
func ForProfile(p models.UserProfile) Profile {
	return Profile{
		Hormonal:   Hormonal(p.Gender, p.IsPregnant, p.MenstrualCycleDay),
		Sleep:      Sleep(p.SleepQuality, p.SleepDuration),
		Stress:     Stress(p.CurrentStress),
		Experience: Experience(p.YearsSinceDiagnosis),
	}
}
