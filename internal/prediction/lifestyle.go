package prediction

import (
	"time"

	"github.com/mrcode/glucotrend/internal/influence"
	"github.com/mrcode/glucotrend/internal/models"
)

// FeatureWindow is the look-back window of the real-mode parameters
const FeatureWindow = 30 * time.Minute

// ParametersFromLogs fills the real-mode parameters from logs recorded in the
// FeatureWindow before now. Glucose and heart rate stay missing without a
// reading in the window; activity and macros are 0 when nothing was logged.
func ParametersFromLogs(logs []models.LogEntry, now time.Time) models.RealModeParameters {
	from := now.Add(-FeatureWindow)

	var params models.RealModeParameters
	var latestGlucose time.Time
	var activity, carbs, protein, fat float64
	var hrWeighted, hrMinutes float64

	for _, entry := range logs {
		switch e := entry.(type) {
		case models.GlucoseLog:
			if inWindow(e.At, from, now) && !e.At.Before(latestGlucose) {
				latestGlucose = e.At
				params.Glucose = models.Float(e.Value)
			}
		case models.MealLog:
			if inWindow(e.At, from, now) {
				carbs += e.Carbs
				protein += e.Protein
				fat += e.Fat
			}
		case models.ExerciseLog:
			minutes := overlapMinutes(e.At, e.EndedAt(), from, now)
			if minutes <= 0 {
				continue
			}
			activity += minutes
			if e.HeartRateMean > 0 {
				hrWeighted += e.HeartRateMean * minutes
				hrMinutes += minutes
			}
		}
	}

	params.Activity30Min = models.Float(activity)
	params.Carbs30Min = models.Float(carbs)
	params.Protein30Min = models.Float(protein)
	params.Fat30Min = models.Float(fat)
	if hrMinutes > 0 {
		params.HRMean30Min = models.Float(hrWeighted / hrMinutes)
	}

	return params
}

// LifestyleInfluence adds the meal-timing influence of the most recent meal
// and the exercise influence of the most recent session at now. A session
// still in progress counts as just finished.
func LifestyleInfluence(logs []models.LogEntry, now time.Time) float64 {
	var lastMeal *models.MealLog
	var lastExercise *models.ExerciseLog

	for _, entry := range logs {
		switch e := entry.(type) {
		case models.MealLog:
			if !e.At.After(now) && (lastMeal == nil || e.At.After(lastMeal.At)) {
				meal := e
				lastMeal = &meal
			}
		case models.ExerciseLog:
			if !e.At.After(now) && (lastExercise == nil || e.At.After(lastExercise.At)) {
				exercise := e
				lastExercise = &exercise
			}
		}
	}

	var total float64
	if lastMeal != nil {
		total += influence.MealTiming(now.Sub(lastMeal.At).Hours())
	}
	if lastExercise != nil {
		hours := now.Sub(lastExercise.EndedAt()).Hours()
		if hours < 0 {
			hours = 0
		}
		total += influence.Exercise(hours, lastExercise.Intensity)
	}
	return total
}

// LatestProfile returns the newest profile snapshot in logs
func LatestProfile(logs []models.LogEntry) (models.UserProfile, bool) {
	var latest *models.ProfileLog
	for _, entry := range logs {
		if p, ok := entry.(models.ProfileLog); ok && (latest == nil || p.At.After(latest.At)) {
			snapshot := p
			latest = &snapshot
		}
	}
	if latest == nil {
		return models.UserProfile{}, false
	}
	return latest.Profile, true
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func overlapMinutes(start, end, from, to time.Time) float64 {
	if start.Before(from) {
		start = from
	}
	if end.After(to) {
		end = to
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start).Minutes()
}
