// Package models contains data structures used throughout the application
package models

import "strings"

// Gender of the profile owner
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
	GenderOther  Gender = "other"
)

// ParseGender maps free text onto a Gender, falling back to GenderOther
func ParseGender(s string) Gender {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case GenderFemale:
		return GenderFemale
	case GenderMale:
		return GenderMale
	default:
		return GenderOther
	}
}

// Intensity of an exercise session
type Intensity string

const (
	IntensityLight    Intensity = "light"
	IntensityModerate Intensity = "moderate"
	IntensityVigorous Intensity = "vigorous"
)

// UserProfile is the health snapshot a calculation session runs against.
// It is passed by value and never mutated while a series is generated.
type UserProfile struct {
	Age                  int     `json:"age"`
	Gender               Gender  `json:"gender"`
	IsPregnant           bool    `json:"isPregnant"`
	MenstrualCycleDay    int     `json:"menstrualCycleDay"`    // 1-based, meaningful for non-pregnant females
	MenstrualCycleLength int     `json:"menstrualCycleLength"` // typically 21-35
	SleepQuality         int     `json:"sleepQuality"`         // 1-10
	SleepDuration        float64 `json:"sleepDuration"`        // hours
	CurrentStress        int     `json:"currentStress"`        // ordinal, higher = more stressed
	YearsSinceDiagnosis  int     `json:"yearsSinceDiagnosis"`

	// Informational only
	BMI    float64 `json:"bmi,omitempty"`
	Height float64 `json:"height,omitempty"` // cm
	Weight float64 `json:"weight,omitempty"` // kg
}

// IsFemale reports whether hormonal cycle effects can apply to this profile
func (p UserProfile) IsFemale() bool {
	return p.Gender == GenderFemale
}

// HasActiveCycle reports whether the menstrual cycle day is meaningful
func (p UserProfile) HasActiveCycle() bool {
	return p.IsFemale() && !p.IsPregnant
}

// DefaultProfile returns the profile used by demo mode
func DefaultProfile() UserProfile {
	return UserProfile{
		Age:                  34,
		Gender:               GenderFemale,
		MenstrualCycleDay:    14,
		MenstrualCycleLength: 28,
		SleepQuality:         7,
		SleepDuration:        7.5,
		CurrentStress:        3,
		YearsSinceDiagnosis:  9,
		BMI:                  23.4,
		Height:               168,
		Weight:               66,
	}
}
