package prediction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcode/glucotrend/internal/models"
)

var lifestyleNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func minutesAgo(m int) time.Time {
	return lifestyleNow.Add(-time.Duration(m) * time.Minute)
}

func TestParametersFromLogs(t *testing.T) {
	logs := []models.LogEntry{
		models.GlucoseLog{At: minutesAgo(25), Value: 118},
		models.GlucoseLog{At: minutesAgo(5), Value: 131},
		models.GlucoseLog{At: minutesAgo(90), Value: 99},
		models.MealLog{At: minutesAgo(20), Carbs: 40, Protein: 15, Fat: 10},
		models.MealLog{At: minutesAgo(10), Carbs: 12, Protein: 2, Fat: 1},
		models.MealLog{At: minutesAgo(45), Carbs: 80},
		// 10 of its 20 minutes fall inside the window
		models.ExerciseLog{At: minutesAgo(40), DurationMinutes: 20, Intensity: models.IntensityModerate, HeartRateMean: 120},
		models.ExerciseLog{At: minutesAgo(15), DurationMinutes: 10, Intensity: models.IntensityLight, HeartRateMean: 90},
	}

	params := ParametersFromLogs(logs, lifestyleNow)
	require.True(t, params.Complete(), "missing: %v", params.Missing())

	assert.Equal(t, 131.0, *params.Glucose)
	assert.Equal(t, 52.0, *params.Carbs30Min)
	assert.Equal(t, 17.0, *params.Protein30Min)
	assert.Equal(t, 11.0, *params.Fat30Min)
	assert.InDelta(t, 20.0, *params.Activity30Min, 1e-9)
	assert.InDelta(t, (120*10+90*10)/20.0, *params.HRMean30Min, 1e-9)
}

func TestParametersFromLogs_MissingReadings(t *testing.T) {
	logs := []models.LogEntry{
		models.MealLog{At: minutesAgo(10), Carbs: 30},
	}

	params := ParametersFromLogs(logs, lifestyleNow)
	assert.Equal(t, []string{"glucose", "hr_mean_30min"}, params.Missing())
	assert.Equal(t, 0.0, *params.Activity30Min)
	assert.Equal(t, 30.0, *params.Carbs30Min)
}

func TestLifestyleInfluence(t *testing.T) {
	tests := []struct {
		name     string
		logs     []models.LogEntry
		expected float64
	}{
		{"no logs", nil, 0},
		{"fresh meal", []models.LogEntry{models.MealLog{At: minutesAgo(30)}}, 20},
		{"latest meal wins", []models.LogEntry{
			models.MealLog{At: minutesAgo(300)},
			models.MealLog{At: minutesAgo(150)},
		}, 8},
		{"future meal ignored", []models.LogEntry{models.MealLog{At: lifestyleNow.Add(time.Hour)}}, 0},
		{"vigorous session ended two hours ago", []models.LogEntry{
			models.ExerciseLog{At: minutesAgo(150), DurationMinutes: 30, Intensity: models.IntensityVigorous},
		}, -6},
		{"session in progress", []models.LogEntry{
			models.ExerciseLog{At: minutesAgo(10), DurationMinutes: 60, Intensity: models.IntensityModerate},
		}, -8},
		{"meal and exercise combine", []models.LogEntry{
			models.MealLog{At: minutesAgo(90)},
			models.ExerciseLog{At: minutesAgo(60), DurationMinutes: 60, Intensity: models.IntensityLight},
		}, 15 - 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, LifestyleInfluence(tt.logs, lifestyleNow), 1e-9)
		})
	}
}

func TestLatestProfile(t *testing.T) {
	_, ok := LatestProfile(nil)
	assert.False(t, ok)

	logs := []models.LogEntry{
		models.ProfileLog{At: minutesAgo(60), Profile: models.UserProfile{Age: 30}},
		models.GlucoseLog{At: minutesAgo(5), Value: 100},
		models.ProfileLog{At: minutesAgo(10), Profile: models.UserProfile{Age: 31}},
	}
	profile, ok := LatestProfile(logs)
	require.True(t, ok)
	assert.Equal(t, 31, profile.Age)
}
