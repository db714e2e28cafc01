// Package prediction turns a user profile into displayable glucose series,
// summary statistics, and live-prediction enriched evaluations.
package prediction

import (
	"fmt"
	"math"

	"github.com/mrcode/glucotrend/internal/influence"
	"github.com/mrcode/glucotrend/internal/models"
)

const liveFactor = "Live 30-minute forecast"

// GenerateSeries builds the synthetic series for period from the static
// scaffold, adjusting each predicted value by the profile's influences.
// The scaffold tables are never modified.
func GenerateSeries(period models.Period, profile models.UserProfile) []models.GlucoseDataPoint {
	rows := scaffoldFor(period)
	inf := influence.ForProfile(profile)

	series := make([]models.GlucoseDataPoint, 0, len(rows))
	for _, row := range rows {
		series = append(series, buildPoint(row, profile, inf))
	}
	return series
}

func buildPoint(row scaffoldPoint, profile models.UserProfile, inf influence.Profile) models.GlucoseDataPoint {
	w := row.weights

	adjustment := inf.Hormonal*w.hormonal +
		inf.Sleep*w.sleep +
		inf.Stress*w.stress +
		inf.Experience*w.experience

	var meal float64
	if w.meal > 0 {
		meal = influence.MealTiming(row.sinceMeal)
		adjustment += meal * w.meal
	}

	predicted := row.baseline + adjustment

	point := models.GlucoseDataPoint{
		Time:          row.time,
		Predicted:     predicted,
		PredictedMmol: round1(models.ToMmol(predicted)),
		Day:           row.day,
		Label:         row.label,
		Factors:       describeFactors(row, profile, inf, meal),
	}
	if row.hasValue {
		observed := row.observed
		point.Glucose = &observed
	}
	return point
}

// describeFactors lists the influences applied to a row, in a fixed order
func describeFactors(row scaffoldPoint, profile models.UserProfile, inf influence.Profile, meal float64) []string {
	w := row.weights
	factors := []string{row.context}

	if w.hormonal > 0 {
		factors = append(factors, hormonalFactor(profile, inf.Hormonal))
	}
	if w.sleep > 0 && inf.Sleep != 0 {
		factors = append(factors, fmt.Sprintf("Sleep %d/10 for %.1fh (+%.0f%%)",
			profile.SleepQuality, profile.SleepDuration, inf.Sleep))
	}
	if w.stress > 0 && inf.Stress != 0 {
		factors = append(factors, fmt.Sprintf("Stress level %d (%+.0f%%)", profile.CurrentStress, inf.Stress))
	}
	if w.experience > 0 && inf.Experience != 0 {
		factors = append(factors, fmt.Sprintf("%d years since diagnosis (+%.0f%%)",
			profile.YearsSinceDiagnosis, inf.Experience))
	}
	if w.meal > 0 && meal != 0 {
		factors = append(factors, fmt.Sprintf("Meal %.1fh earlier (+%.0f%%)", row.sinceMeal, meal))
	}

	return factors
}

func hormonalFactor(profile models.UserProfile, value float64) string {
	switch {
	case profile.Gender == models.GenderFemale && profile.IsPregnant:
		return "Pregnancy: cycle effects paused"
	case profile.Gender == models.GenderFemale:
		phase := influence.PhaseForDay(profile.MenstrualCycleDay)
		return fmt.Sprintf("%s phase, cycle day %d (%+.0f%%)", phase, profile.MenstrualCycleDay, value)
	case profile.Gender == models.GenderMale:
		return "Stable hormonal baseline"
	default:
		return "No cycle-based adjustment"
	}
}

// SpliceLivePrediction overwrites the forecast point with a live value and
// marks it as the only real prediction. The target is the last unobserved
// point, or the last point when every point is observed. It returns false
// for an empty series.
func SpliceLivePrediction(series []models.GlucoseDataPoint, value float64) bool {
	if len(series) == 0 {
		return false
	}

	target := len(series) - 1
	for i := len(series) - 1; i >= 0; i-- {
		if !series[i].IsObserved() {
			target = i
			break
		}
	}

	for i := range series {
		series[i].RealPrediction = false
	}

	point := &series[target]
	point.Predicted = value
	point.PredictedMmol = round1(models.ToMmol(value))
	point.RealPrediction = true
	point.Factors = append(append([]string(nil), point.Factors...), liveFactor)
	return true
}

// GlucoseData returns the series for period, enriched by live when non-nil
func GlucoseData(period models.Period, profile models.UserProfile, live *models.PredictionResult) []models.GlucoseDataPoint {
	series := GenerateSeries(period, profile)
	if live != nil {
		SpliceLivePrediction(series, live.PredictedGlucose30Min)
	}
	return series
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
