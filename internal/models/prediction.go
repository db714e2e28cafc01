// Package models contains data structures used throughout the application
package models

import (
	"math"
	"time"
)

// PredictionRequest is the feature vector sent to the remote prediction endpoint
type PredictionRequest struct {
	Glucose       float64 `json:"glucose"`
	HRMean30Min   float64 `json:"hr_mean_30min"`
	Activity30Min float64 `json:"activity_30min"`
	Carbs30Min    float64 `json:"carbs_30min"`
	Protein30Min  float64 `json:"protein_30min"`
	Fat30Min      float64 `json:"fat_30min"`
	TimeSin       float64 `json:"time_sin"`
	TimeCos       float64 `json:"time_cos"`
}

// PredictionResult is the response of the remote prediction endpoint
type PredictionResult struct {
	PredictedGlucose30Min float64 `json:"predicted_glucose_30min"`
}

// EncodeTimeOfDay returns sin and cos of 2π·hour/24, where hour includes the
// minute fraction, so 23:59 and 00:00 land next to each other.
func EncodeTimeOfDay(t time.Time) (sin, cos float64) {
	hour := float64(t.Hour()) + float64(t.Minute())/60
	angle := 2 * math.Pi * hour / 24
	return math.Sin(angle), math.Cos(angle)
}

// RealModeParameters holds the six user-entered inputs required in real mode.
// A nil field is treated as not filled in.
type RealModeParameters struct {
	Glucose       *float64 `json:"glucose"`
	HRMean30Min   *float64 `json:"hr_mean_30min"`
	Activity30Min *float64 `json:"activity_30min"`
	Carbs30Min    *float64 `json:"carbs_30min"`
	Protein30Min  *float64 `json:"protein_30min"`
	Fat30Min      *float64 `json:"fat_30min"`
}

// Missing returns the JSON names of the parameters that are not filled in
func (p RealModeParameters) Missing() []string {
	var missing []string
	fields := []struct {
		name  string
		value *float64
	}{
		{"glucose", p.Glucose},
		{"hr_mean_30min", p.HRMean30Min},
		{"activity_30min", p.Activity30Min},
		{"carbs_30min", p.Carbs30Min},
		{"protein_30min", p.Protein30Min},
		{"fat_30min", p.Fat30Min},
	}
	for _, f := range fields {
		if f.value == nil || math.IsNaN(*f.value) {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Complete returns true if all six parameters are filled in
func (p RealModeParameters) Complete() bool {
	return len(p.Missing()) == 0
}

// NewPredictionRequest builds a request from complete parameters at time t.
// Missing parameters are sent as 0; callers check Complete first.
func NewPredictionRequest(p RealModeParameters, t time.Time) PredictionRequest {
	sin, cos := EncodeTimeOfDay(t)
	return PredictionRequest{
		Glucose:       deref(p.Glucose),
		HRMean30Min:   deref(p.HRMean30Min),
		Activity30Min: deref(p.Activity30Min),
		Carbs30Min:    deref(p.Carbs30Min),
		Protein30Min:  deref(p.Protein30Min),
		Fat30Min:      deref(p.Fat30Min),
		TimeSin:       sin,
		TimeCos:       cos,
	}
}

// DemoPredictionRequest returns the fixed feature vector used in demo mode:
// a post-breakfast reading at 08:00.
func DemoPredictionRequest() PredictionRequest {
	angle := 2 * math.Pi * 8.0 / 24
	return PredictionRequest{
		Glucose:       128,
		HRMean30Min:   78,
		Activity30Min: 12,
		Carbs30Min:    45,
		Protein30Min:  18,
		Fat30Min:      9,
		TimeSin:       math.Sin(angle),
		TimeCos:       math.Cos(angle),
	}
}

// SummaryStatistics are the four headline numbers shown next to the chart
type SummaryStatistics struct {
	Accuracy    float64 `json:"accuracy"`    // %, at most 96
	TimeInRange float64 `json:"timeInRange"` // %, at least 75
	AvgTime     float64 `json:"avgTime"`     // hours to return to range
	TIR         float64 `json:"tir"`         // %, at least 70
}

// TIRBaseline is the time-in-range reference the improvement is measured against
const TIRBaseline = 70.0

// Improvement returns the time-in-range gain over TIRBaseline
func (s SummaryStatistics) Improvement() float64 {
	return s.TIR - TIRBaseline
}

// Float returns a pointer to v, for filling optional parameters
func Float(v float64) *float64 {
	return &v
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
