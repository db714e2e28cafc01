// Package models contains data structures used throughout the application
package models

import "strings"

// Period selects the resolution of a generated glucose series
type Period string

const (
	PeriodDays   Period = "days"
	PeriodWeeks  Period = "weeks"
	PeriodMonths Period = "months"
)

// ParsePeriod maps free text onto a Period. Anything that is not "days" or
// "weeks" resolves to PeriodMonths.
func ParsePeriod(s string) Period {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodDays:
		return PeriodDays
	case PeriodWeeks:
		return PeriodWeeks
	default:
		return PeriodMonths
	}
}

// GlucoseDataPoint represents a single point of a displayed glucose series
type GlucoseDataPoint struct {
	Time           float64  `json:"time"`    // hours from period start
	Glucose        *float64 `json:"glucose"` // observed mg/dL, nil = not yet observed
	Predicted      float64  `json:"predicted"`
	PredictedMmol  float64  `json:"predictedMmol"`
	Day            string   `json:"day"`
	Label          string   `json:"label"`
	Factors        []string `json:"factors"`
	RealPrediction bool     `json:"realPrediction,omitempty"`
}

// IsObserved returns true if the point carries an observed glucose value
func (g *GlucoseDataPoint) IsObserved() bool {
	return g.Glucose != nil
}

// ToMmol converts a mg/dL value to mmol/L
func ToMmol(mgdl float64) float64 {
	return mgdl / 18.0182
}
