package prediction

import (
	"math"

	"github.com/mrcode/glucotrend/internal/influence"
	"github.com/mrcode/glucotrend/internal/models"
)

const (
	maxAccuracy    = 96.0
	minTimeInRange = 75.0
	minTIR         = 70.0
)

// Statistics derives the four summary statistics from the same influences
// the series uses. The result is clamped to plausible bounds.
func Statistics(p models.UserProfile) models.SummaryStatistics {
	var hormonal float64
	if p.Gender == models.GenderFemale {
		hormonal = influence.Hormonal(p.Gender, p.IsPregnant, p.MenstrualCycleDay)
	}
	sleep := influence.Sleep(p.SleepQuality, p.SleepDuration)
	stress := influence.Stress(p.CurrentStress)
	experienceBonus := math.Max(0, float64(p.YearsSinceDiagnosis-5)) * 2

	accuracy := 87 + experienceBonus
	if hormonal > 0 {
		accuracy += 3
	}
	if sleep < 5 {
		accuracy += 2
	}

	avgTime := 4.2 + experienceBonus*0.1
	if sleep < 5 {
		avgTime += 0.3
	} else {
		avgTime -= 0.2
	}

	return models.SummaryStatistics{
		Accuracy:    math.Min(maxAccuracy, accuracy),
		TimeInRange: math.Max(minTimeInRange, 82-math.Abs(hormonal)*0.5-stress*0.3-sleep*0.4+experienceBonus),
		AvgTime:     avgTime,
		TIR:         math.Max(minTIR, 82-math.Abs(hormonal)*0.4-stress*0.2-sleep*0.3),
	}
}
