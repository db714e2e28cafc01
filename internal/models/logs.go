// Package models contains data structures used throughout the application
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// LogKind identifies the variant of a LogEntry
type LogKind string

const (
	LogKindMeal     LogKind = "meal"
	LogKindExercise LogKind = "exercise"
	LogKindGlucose  LogKind = "glucose"
	LogKindProfile  LogKind = "profile"
)

// LogEntry is one user log record. Each kind carries only its own fields.
type LogEntry interface {
	Kind() LogKind
	LoggedAt() time.Time
}

// MealLog records food intake
type MealLog struct {
	At          time.Time `json:"at"`
	Carbs       float64   `json:"carbs"`   // grams
	Protein     float64   `json:"protein"` // grams
	Fat         float64   `json:"fat"`     // grams
	Description string    `json:"description,omitempty"`
}

// ExerciseLog records a finished exercise session starting at At
type ExerciseLog struct {
	At              time.Time `json:"at"`
	Intensity       Intensity `json:"intensity"`
	DurationMinutes float64   `json:"durationMinutes"`
	HeartRateMean   float64   `json:"heartRateMean,omitempty"` // bpm, 0 = not recorded
}

// GlucoseLog records a manual or sensor glucose reading
type GlucoseLog struct {
	At    time.Time `json:"at"`
	Value float64   `json:"value"` // mg/dL
}

// ProfileLog records a profile snapshot
type ProfileLog struct {
	At      time.Time   `json:"at"`
	Profile UserProfile `json:"profile"`
}

func (MealLog) Kind() LogKind     { return LogKindMeal }
func (ExerciseLog) Kind() LogKind { return LogKindExercise }
func (GlucoseLog) Kind() LogKind  { return LogKindGlucose }
func (ProfileLog) Kind() LogKind  { return LogKindProfile }

func (m MealLog) LoggedAt() time.Time    { return m.At }
func (e ExerciseLog) LoggedAt() time.Time { return e.At }
func (g GlucoseLog) LoggedAt() time.Time  { return g.At }
func (p ProfileLog) LoggedAt() time.Time  { return p.At }

// EndedAt returns the time the exercise session finished
func (e ExerciseLog) EndedAt() time.Time {
	return e.At.Add(time.Duration(e.DurationMinutes * float64(time.Minute)))
}

// LogRecord is the JSON envelope for a LogEntry: {"kind": "meal", ...fields}
type LogRecord struct {
	Entry LogEntry
}

// MarshalJSON writes the entry fields plus its kind
func (r LogRecord) MarshalJSON() ([]byte, error) {
	if r.Entry == nil {
		return []byte("null"), nil
	}
	body, err := json.Marshal(r.Entry)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	kind, _ := json.Marshal(r.Entry.Kind())
	fields["kind"] = kind
	return json.Marshal(fields)
}

// UnmarshalJSON picks the variant from the "kind" field
func (r *LogRecord) UnmarshalJSON(data []byte) error {
	var head struct {
		Kind LogKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("parsing log kind: %w", err)
	}

	var entry LogEntry
	var err error
	switch head.Kind {
	case LogKindMeal:
		var m MealLog
		err = json.Unmarshal(data, &m)
		entry = m
	case LogKindExercise:
		var e ExerciseLog
		err = json.Unmarshal(data, &e)
		entry = e
	case LogKindGlucose:
		var g GlucoseLog
		err = json.Unmarshal(data, &g)
		entry = g
	case LogKindProfile:
		var p ProfileLog
		err = json.Unmarshal(data, &p)
		entry = p
	default:
		return fmt.Errorf("unknown log kind %q", head.Kind)
	}
	if err != nil {
		return fmt.Errorf("parsing %s log: %w", head.Kind, err)
	}

	r.Entry = entry
	return nil
}

// Entries unwraps a slice of records
func Entries(records []LogRecord) []LogEntry {
	entries := make([]LogEntry, 0, len(records))
	for _, r := range records {
		if r.Entry != nil {
			entries = append(entries, r.Entry)
		}
	}
	return entries
}
