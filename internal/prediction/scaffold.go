package prediction

import "github.com/mrcode/glucotrend/internal/models"

// weights are the fractions of each influence applied to one scaffold point
type weights struct {
	hormonal   float64
	sleep      float64
	stress     float64
	experience float64
	meal       float64
}

// scaffoldPoint is one fixed row of the demo dataset
type scaffoldPoint struct {
	time      float64 // hours from period start
	day       string
	label     string
	observed  float64
	hasValue  bool // false for forecast-only rows
	baseline  float64
	context   string
	sinceMeal float64 // hours since the meal, used when weights.meal > 0
	weights   weights
}

var (
	fastingWeights   = weights{hormonal: 0.6, sleep: 0.5, stress: 0.2, experience: 0.3}
	breakfastWeights = weights{hormonal: 0.4, sleep: 0.3, stress: 0.2, experience: 0.5, meal: 1}
	lunchWeights     = weights{hormonal: 0.3, sleep: 0.1, stress: 0.4, experience: 0.5, meal: 1}
	dinnerWeights    = weights{hormonal: 0.4, sleep: 0.1, stress: 0.3, experience: 0.5, meal: 1}
	bedtimeWeights   = weights{hormonal: 0.3, sleep: 0.1, stress: 0.5, experience: 0.2}
)

// daysScaffold covers three days of five readings each. The last two rows
// are the not-yet-observed evening of day three.
var daysScaffold = []scaffoldPoint{
	{time: 7, day: "Mon", label: "07:00", observed: 104, hasValue: true, baseline: 102, context: "Fasting", weights: fastingWeights},
	{time: 9, day: "Mon", label: "09:00", observed: 151, hasValue: true, baseline: 146, context: "After breakfast", sinceMeal: 1.5, weights: breakfastWeights},
	{time: 13, day: "Mon", label: "13:00", observed: 138, hasValue: true, baseline: 140, context: "After lunch", sinceMeal: 1, weights: lunchWeights},
	{time: 19, day: "Mon", label: "19:00", observed: 162, hasValue: true, baseline: 155, context: "After dinner", sinceMeal: 0.5, weights: dinnerWeights},
	{time: 23, day: "Mon", label: "23:00", observed: 121, hasValue: true, baseline: 118, context: "Bedtime", weights: bedtimeWeights},

	{time: 31, day: "Tue", label: "07:00", observed: 98, hasValue: true, baseline: 100, context: "Fasting", weights: fastingWeights},
	{time: 33, day: "Tue", label: "09:00", observed: 144, hasValue: true, baseline: 142, context: "After breakfast", sinceMeal: 1.5, weights: breakfastWeights},
	{time: 37, day: "Tue", label: "13:00", observed: 147, hasValue: true, baseline: 143, context: "After lunch", sinceMeal: 1, weights: lunchWeights},
	{time: 43, day: "Tue", label: "19:00", observed: 158, hasValue: true, baseline: 152, context: "After dinner", sinceMeal: 0.5, weights: dinnerWeights},
	{time: 47, day: "Tue", label: "23:00", observed: 117, hasValue: true, baseline: 116, context: "Bedtime", weights: bedtimeWeights},

	{time: 55, day: "Wed", label: "07:00", observed: 101, hasValue: true, baseline: 101, context: "Fasting", weights: fastingWeights},
	{time: 57, day: "Wed", label: "09:00", observed: 149, hasValue: true, baseline: 145, context: "After breakfast", sinceMeal: 1.5, weights: breakfastWeights},
	{time: 61, day: "Wed", label: "13:00", observed: 141, hasValue: true, baseline: 141, context: "After lunch", sinceMeal: 1, weights: lunchWeights},
	{time: 67, day: "Wed", label: "19:00", baseline: 154, context: "After dinner", sinceMeal: 0.5, weights: dinnerWeights},
	{time: 71, day: "Wed", label: "23:00", baseline: 117, context: "Bedtime", weights: bedtimeWeights},
}

// weeksScaffold holds one weekly average per row; the last week is a forecast
var weeksScaffold = []scaffoldPoint{
	{time: 0, day: "W1", label: "Week 1", observed: 138, hasValue: true, baseline: 136, context: "Weekly average", weights: weights{hormonal: 0.5, sleep: 0.3, stress: 0.3, experience: 0.4}},
	{time: 168, day: "W2", label: "Week 2", observed: 134, hasValue: true, baseline: 135, context: "Weekly average", weights: weights{hormonal: 0.2, sleep: 0.3, stress: 0.3, experience: 0.4}},
	{time: 336, day: "W3", label: "Week 3", observed: 141, hasValue: true, baseline: 137, context: "Weekly average", weights: weights{hormonal: 0.6, sleep: 0.3, stress: 0.4, experience: 0.4}},
	{time: 504, day: "W4", label: "Week 4", observed: 136, hasValue: true, baseline: 134, context: "Weekly average", weights: weights{hormonal: 0.4, sleep: 0.3, stress: 0.3, experience: 0.3}},
	{time: 672, day: "W5", label: "Week 5", observed: 132, hasValue: true, baseline: 133, context: "Weekly average", weights: weights{hormonal: 0.5, sleep: 0.2, stress: 0.3, experience: 0.3}},
	{time: 840, day: "W6", label: "Week 6", observed: 130, hasValue: true, baseline: 131, context: "Weekly average", weights: weights{hormonal: 0.2, sleep: 0.2, stress: 0.2, experience: 0.3}},
	{time: 1008, day: "W7", label: "Week 7", observed: 133, hasValue: true, baseline: 130, context: "Weekly average", weights: weights{hormonal: 0.6, sleep: 0.2, stress: 0.3, experience: 0.2}},
	{time: 1176, day: "W8", label: "Week 8", baseline: 129, context: "Next week forecast", weights: weights{hormonal: 0.4, sleep: 0.2, stress: 0.3, experience: 0.2}},
}

// monthsScaffold holds one monthly average per row; the last month is a forecast
var monthsScaffold = []scaffoldPoint{
	{time: 0, day: "M1", label: "Month 1", observed: 152, hasValue: true, baseline: 150, context: "Monthly average", weights: weights{hormonal: 0.2, sleep: 0.3, stress: 0.3, experience: 0.6}},
	{time: 730, day: "M2", label: "Month 2", observed: 146, hasValue: true, baseline: 145, context: "Monthly average", weights: weights{hormonal: 0.2, sleep: 0.3, stress: 0.3, experience: 0.5}},
	{time: 1460, day: "M3", label: "Month 3", observed: 141, hasValue: true, baseline: 140, context: "Monthly average", weights: weights{hormonal: 0.2, sleep: 0.3, stress: 0.2, experience: 0.5}},
	{time: 2190, day: "M4", label: "Month 4", observed: 137, hasValue: true, baseline: 136, context: "Monthly average", weights: weights{hormonal: 0.2, sleep: 0.2, stress: 0.2, experience: 0.4}},
	{time: 2920, day: "M5", label: "Month 5", observed: 134, hasValue: true, baseline: 133, context: "Monthly average", weights: weights{hormonal: 0.2, sleep: 0.2, stress: 0.2, experience: 0.4}},
	{time: 3650, day: "M6", label: "Month 6", baseline: 131, context: "Next month forecast", weights: weights{hormonal: 0.2, sleep: 0.2, stress: 0.2, experience: 0.3}},
}

// scaffoldFor returns the table for a period. Any period other than days
// or weeks uses the months table.
func scaffoldFor(period models.Period) []scaffoldPoint {
	switch period {
	case models.PeriodDays:
		return daysScaffold
	case models.PeriodWeeks:
		return weeksScaffold
	default:
		return monthsScaffold
	}
}
