package notifications

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mrcode/glucotrend/internal/models"
)

// Test constants
const (
	testUrgentLow = "urgent_low"
	testMmolUnit  = "mmol/L"
)

type sentNotification struct {
	title   string
	message string
}

func newTestManager(settings *models.Settings) (*Manager, *[]sentNotification, *time.Time) {
	manager := NewManager(settings, nil)
	var sent []sentNotification
	manager.SetNotifier(func(title, message string) error {
		sent = append(sent, sentNotification{title, message})
		return nil
	})
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return now }
	return manager, &sent, &now
}

func TestShouldAlert(t *testing.T) {
	settings := models.DefaultSettings()

	tests := []struct {
		name     string
		status   string
		expected string
	}{
		{"Urgent low enabled", "urgent_low", "urgent_low"},
		{"Low enabled", "low", "low"},
		{"High enabled", "high", "high"},
		{"Urgent high enabled", "urgent_high", "urgent_high"},
		{"Normal", "normal", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shouldAlert(settings, tt.status)
			if result != tt.expected {
				t.Errorf("shouldAlert() = %s, want %s", result, tt.expected)
			}
		})
	}
}

func TestShouldAlert_Disabled(t *testing.T) {
	settings := models.DefaultSettings()
	settings.EnableLowAlert = false
	settings.EnableHighAlert = false

	if result := shouldAlert(settings, "low"); result != "" {
		t.Errorf("shouldAlert() = %s, want empty (disabled)", result)
	}
	if result := shouldAlert(settings, "high"); result != "" {
		t.Errorf("shouldAlert() = %s, want empty (disabled)", result)
	}
	if result := shouldAlert(settings, testUrgentLow); result != testUrgentLow {
		t.Errorf("shouldAlert() = %s, want %s", result, testUrgentLow)
	}
}

func TestManager_CheckPrediction(t *testing.T) {
	tests := []struct {
		predicted float64
		expected  string
	}{
		{50, "urgent_low"},
		{65, "low"},
		{125.5, ""},
		{190, "high"},
		{260, "urgent_high"},
	}

	for _, tt := range tests {
		manager, sent, _ := newTestManager(models.DefaultSettings())
		alertType, err := manager.CheckPrediction(tt.predicted)
		if err != nil {
			t.Fatalf("CheckPrediction(%v) error = %v", tt.predicted, err)
		}
		if alertType != tt.expected {
			t.Errorf("CheckPrediction(%v) = %q, want %q", tt.predicted, alertType, tt.expected)
		}
		wantSent := 0
		if tt.expected != "" {
			wantSent = 1
		}
		if len(*sent) != wantSent {
			t.Errorf("CheckPrediction(%v) sent %d notifications, want %d", tt.predicted, len(*sent), wantSent)
		}
	}
}

func TestManager_CheckPrediction_Repeat(t *testing.T) {
	settings := models.DefaultSettings()
	settings.RepeatAlertMinutes = 15
	manager, sent, now := newTestManager(settings)

	if _, err := manager.CheckPrediction(200); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(10 * time.Minute)
	alertType, _ := manager.CheckPrediction(205)
	if alertType != "" || len(*sent) != 1 {
		t.Errorf("alert repeated within window: type %q, sent %d", alertType, len(*sent))
	}

	*now = now.Add(6 * time.Minute)
	alertType, _ = manager.CheckPrediction(210)
	if alertType != "high" || len(*sent) != 2 {
		t.Errorf("alert not repeated after window: type %q, sent %d", alertType, len(*sent))
	}
}

func TestManager_CheckPrediction_NoRepeat(t *testing.T) {
	settings := models.DefaultSettings()
	settings.RepeatAlertMinutes = 0
	manager, sent, now := newTestManager(settings)

	_, _ = manager.CheckPrediction(60)
	*now = now.Add(24 * time.Hour)
	_, _ = manager.CheckPrediction(60)

	if len(*sent) != 1 {
		t.Errorf("sent %d notifications, want 1", len(*sent))
	}

	manager.ClearAlertState("low")
	_, _ = manager.CheckPrediction(60)
	if len(*sent) != 2 {
		t.Errorf("sent %d notifications after clearing, want 2", len(*sent))
	}
}

func TestManager_CheckPrediction_NotifyError(t *testing.T) {
	manager, _, _ := newTestManager(models.DefaultSettings())
	manager.SetNotifier(func(string, string) error { return errors.New("no notification daemon") })

	alertType, err := manager.CheckPrediction(300)
	if err == nil {
		t.Fatal("expected error from notifier")
	}
	if alertType != "" {
		t.Errorf("alertType = %q, want empty on failure", alertType)
	}
	if _, ok := manager.lastAlertTime["urgent_high"]; ok {
		t.Error("failed alert should not be recorded")
	}
}

func TestFormatNotification(t *testing.T) {
	settings := models.DefaultSettings()

	tests := []struct {
		alertType     string
		expectedTitle string
	}{
		{"urgent_low", "⚠️ URGENT LOW PREDICTED"},
		{"low", "⬇️ Low Predicted"},
		{"high", "⬆️ High Predicted"},
		{"urgent_high", "⚠️ URGENT HIGH PREDICTED"},
	}

	for _, tt := range tests {
		t.Run(tt.alertType, func(t *testing.T) {
			title, message := formatNotification(settings, 100, tt.alertType)
			if title != tt.expectedTitle {
				t.Errorf("title = %s, want %s", title, tt.expectedTitle)
			}
			if !strings.Contains(message, "100 mg/dL") {
				t.Errorf("message should contain mg/dL value, got: %s", message)
			}
		})
	}
}

func TestFormatNotification_MmolL(t *testing.T) {
	settings := models.DefaultSettings()
	settings.Unit = testMmolUnit

	_, message := formatNotification(settings, 99.1, "low")
	if !strings.Contains(message, "5.5 mmol/L") {
		t.Errorf("Message should contain mmol/L value, got: %s", message)
	}
}

func TestManager_CheckPrediction_ConcurrentSettingsUpdate(t *testing.T) {
	settings := models.DefaultSettings()
	manager, _, _ := newTestManager(settings)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			update := settings.Clone()
			update.Unit = testMmolUnit
			update.TargetHigh = 170 + i%20
			settings.Update(update)
		}
	}()

	for i := 0; i < 100; i++ {
		if _, err := manager.CheckPrediction(float64(150 + i)); err != nil {
			t.Fatalf("CheckPrediction error = %v", err)
		}
	}
	<-done
}

func TestManager_ClearAlertState(t *testing.T) {
	settings := models.DefaultSettings()
	manager := NewManager(settings, nil)

	manager.lastAlertTime["low"] = time.Now()
	manager.lastAlertTime["high"] = time.Now()

	manager.ClearAlertState("low")
	if _, ok := manager.lastAlertTime["low"]; ok {
		t.Error("low alert should be cleared")
	}
	if _, ok := manager.lastAlertTime["high"]; !ok {
		t.Error("high alert should still exist")
	}

	manager.lastAlertTime["low"] = time.Now()
	manager.ClearAlertState("")
	if len(manager.lastAlertTime) != 0 {
		t.Error("All alerts should be cleared")
	}
}

func TestManager_UpdateSettings(t *testing.T) {
	settings := models.DefaultSettings()
	manager := NewManager(settings, nil)

	newSettings := models.DefaultSettings()
	newSettings.Unit = testMmolUnit

	manager.UpdateSettings(newSettings)

	if manager.settings.Unit != testMmolUnit {
		t.Error("Settings were not updated")
	}
}

func TestManager_SendTestNotification(t *testing.T) {
	manager, sent, _ := newTestManager(models.DefaultSettings())

	if err := manager.SendTestNotification(); err != nil {
		t.Fatal(err)
	}
	if len(*sent) != 1 || (*sent)[0].title != "GlucoTrend" {
		t.Errorf("unexpected notifications: %+v", *sent)
	}
}
