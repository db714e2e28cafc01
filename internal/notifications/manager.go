// Package notifications alerts the user when a live prediction leaves the target range
package notifications

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/mrcode/glucotrend/internal/models"
)

// Alert type constants
const (
	alertUrgentLow  = "urgent_low"
	alertLow        = "low"
	alertUrgentHigh = "urgent_high"
	alertHigh       = "high"
)

// NotifyFunc delivers one desktop notification
type NotifyFunc func(title, message string) error

func beeepNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Manager handles prediction alerts and notifications
type Manager struct {
	settings      *models.Settings
	notify        NotifyFunc
	logger        *slog.Logger
	now           func() time.Time
	lastAlertTime map[string]time.Time
	mu            sync.Mutex
}

// NewManager creates a new notification manager that notifies through beeep
func NewManager(settings *models.Settings, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		settings:      settings,
		notify:        beeepNotify,
		logger:        logger,
		now:           time.Now,
		lastAlertTime: make(map[string]time.Time),
	}
}

// SetNotifier replaces the delivery function
func (m *Manager) SetNotifier(notify NotifyFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if notify != nil {
		m.notify = notify
	}
}

// UpdateSettings updates the settings reference
func (m *Manager) UpdateSettings(settings *models.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
}

// CheckPrediction classifies a predicted mg/dL value and sends a notification
// if needed. It returns the alert type that was sent, or "".
func (m *Manager) CheckPrediction(predicted float64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	settings := m.settings.Clone()
	status := settings.GetGlucoseStatus(predicted)
	alertType := shouldAlert(settings, status)
	if alertType == "" {
		return "", nil
	}

	if lastTime, ok := m.lastAlertTime[alertType]; ok {
		if settings.RepeatAlertMinutes <= 0 {
			// no repeat, only alert once per type
			return "", nil
		}
		repeatDuration := time.Duration(settings.RepeatAlertMinutes) * time.Minute
		if m.now().Sub(lastTime) < repeatDuration {
			return "", nil
		}
	}

	title, message := formatNotification(settings, predicted, alertType)
	if err := m.notify(title, message); err != nil {
		return "", fmt.Errorf("sending %s alert: %w", alertType, err)
	}

	m.lastAlertTime[alertType] = m.now()
	m.logger.Info("prediction alert sent", "type", alertType, "predicted", predicted)
	return alertType, nil
}

// shouldAlert determines if an alert should be sent for status
func shouldAlert(settings *models.Settings, status string) string {
	switch status {
	case alertUrgentLow:
		if settings.EnableUrgentLowAlert {
			return alertUrgentLow
		}
	case alertLow:
		if settings.EnableLowAlert {
			return alertLow
		}
	case alertUrgentHigh:
		if settings.EnableUrgentHighAlert {
			return alertUrgentHigh
		}
	case alertHigh:
		if settings.EnableHighAlert {
			return alertHigh
		}
	}
	return ""
}

// formatNotification creates the notification title and message
func formatNotification(settings *models.Settings, predicted float64, alertType string) (string, string) {
	var title, message string
	var valueStr string

	if settings.Unit == "mmol/L" {
		valueStr = fmt.Sprintf("%.1f mmol/L", models.ToMmol(predicted))
	} else {
		valueStr = fmt.Sprintf("%.0f mg/dL", predicted)
	}

	switch alertType {
	case alertUrgentLow:
		title = "⚠️ URGENT LOW PREDICTED"
		message = fmt.Sprintf("Glucose expected critically low in 30 min: %s", valueStr)
	case alertLow:
		title = "⬇️ Low Predicted"
		message = fmt.Sprintf("Glucose expected low in 30 min: %s", valueStr)
	case alertUrgentHigh:
		title = "⚠️ URGENT HIGH PREDICTED"
		message = fmt.Sprintf("Glucose expected critically high in 30 min: %s", valueStr)
	case alertHigh:
		title = "⬆️ High Predicted"
		message = fmt.Sprintf("Glucose expected high in 30 min: %s", valueStr)
	}

	return title, message
}

// ClearAlertState clears the alert state for a specific type or all types
func (m *Manager) ClearAlertState(alertType string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if alertType == "" {
		m.lastAlertTime = make(map[string]time.Time)
	} else {
		delete(m.lastAlertTime, alertType)
	}
}

// SendTestNotification sends a test notification
func (m *Manager) SendTestNotification() error {
	m.mu.Lock()
	notify := m.notify
	m.mu.Unlock()
	return notify("GlucoTrend", "Test notification - alerts are working!")
}
