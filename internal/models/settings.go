// Package models contains data structures used throughout the application
package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

const appDirName = "glucotrend"

// Settings contains all persisted user settings
type Settings struct {
	mu sync.RWMutex `json:"-"`

	// Prediction endpoint
	PredictionURL     string `json:"predictionUrl"`
	PredictionTimeout int    `json:"predictionTimeout"` // Seconds
	RefreshInterval   int    `json:"refreshInterval"`   // Seconds (30-600)

	// Session defaults
	DefaultPeriod Period `json:"defaultPeriod"`
	UseDemoData   bool   `json:"useDemoData"`
	Unit          string `json:"unit"` // "mg/dL" or "mmol/L"

	// Glucose thresholds in mg/dL
	TargetLow  int `json:"targetLow"`
	TargetHigh int `json:"targetHigh"`
	UrgentLow  int `json:"urgentLow"`
	UrgentHigh int `json:"urgentHigh"`

	// Alert settings
	EnableHighAlert       bool `json:"enableHighAlert"`
	EnableLowAlert        bool `json:"enableLowAlert"`
	EnableUrgentHighAlert bool `json:"enableUrgentHighAlert"`
	EnableUrgentLowAlert  bool `json:"enableUrgentLowAlert"`
	RepeatAlertMinutes    int  `json:"repeatAlertMinutes"` // 0 = no repeat

	// System
	AutoStart bool `json:"autoStart"`
}

// DefaultSettings returns settings with default values
func DefaultSettings() *Settings {
	return &Settings{
		PredictionURL:     "",
		PredictionTimeout: 10,
		RefreshInterval:   300,

		DefaultPeriod: PeriodDays,
		UseDemoData:   true,
		Unit:          "mg/dL",

		TargetLow:  70,
		TargetHigh: 180,
		UrgentLow:  55,
		UrgentHigh: 250,

		EnableHighAlert:       true,
		EnableLowAlert:        true,
		EnableUrgentHighAlert: true,
		EnableUrgentLowAlert:  true,
		RepeatAlertMinutes:    15,

		AutoStart: false,
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	appDir := filepath.Join(configDir, appDirName)
	if err := os.MkdirAll(appDir, 0750); err != nil {
		return "", err
	}

	return appDir, nil
}

// GetConfigPath returns the full path to the settings file
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// Load loads settings from disk
func (s *Settings) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path) //nolint:gosec // Config path is controlled by the app, not user input
	if err != nil {
		if os.IsNotExist(err) {
			s.copySettingsFields(DefaultSettings())
			return nil
		}
		return err
	}

	return json.Unmarshal(data, s)
}

// Save saves settings to disk
func (s *Settings) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Clone creates a copy of the settings
func (s *Settings) Clone() *Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone := &Settings{}
	clone.copySettingsFields(s)
	return clone
}

// Update updates settings from another Settings object
func (s *Settings) Update(other *Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	s.copySettingsFields(other)
}

// copySettingsFields copies all fields from other to s, excluding the mutex.
// The caller must hold the necessary locks on s and other.
func (s *Settings) copySettingsFields(other *Settings) {
	s.PredictionURL = other.PredictionURL
	s.PredictionTimeout = other.PredictionTimeout
	s.RefreshInterval = other.RefreshInterval
	s.DefaultPeriod = other.DefaultPeriod
	s.UseDemoData = other.UseDemoData
	s.Unit = other.Unit
	s.TargetLow = other.TargetLow
	s.TargetHigh = other.TargetHigh
	s.UrgentLow = other.UrgentLow
	s.UrgentHigh = other.UrgentHigh
	s.EnableHighAlert = other.EnableHighAlert
	s.EnableLowAlert = other.EnableLowAlert
	s.EnableUrgentHighAlert = other.EnableUrgentHighAlert
	s.EnableUrgentLowAlert = other.EnableUrgentLowAlert
	s.RepeatAlertMinutes = other.RepeatAlertMinutes
	s.AutoStart = other.AutoStart
}

// IsConfigured returns true if a prediction endpoint is set
func (s *Settings) IsConfigured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.PredictionURL != ""
}

// GetGlucoseStatus returns the status string for a glucose value
func (s *Settings) GetGlucoseStatus(mgdl float64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case mgdl <= float64(s.UrgentLow):
		return "urgent_low"
	case mgdl <= float64(s.TargetLow):
		return "low"
	case mgdl >= float64(s.UrgentHigh):
		return "urgent_high"
	case mgdl >= float64(s.TargetHigh):
		return "high"
	default:
		return "normal"
	}
}
