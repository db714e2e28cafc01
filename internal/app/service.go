// Package app holds the running calculation session and keeps it fresh
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mrcode/glucotrend/internal/influence"
	"github.com/mrcode/glucotrend/internal/models"
	"github.com/mrcode/glucotrend/internal/prediction"
)

const minRefreshInterval = 30 * time.Second

// ErrNoAlerter is returned by SendTestNotification when alerts are disabled
var ErrNoAlerter = errors.New("alerts not configured")

// Alerter is notified of every fresh live prediction
type Alerter interface {
	CheckPrediction(predicted float64) (string, error)
	UpdateSettings(settings *models.Settings)
	ClearAlertState(alertType string)
	SendTestNotification() error
}

// PredictionGauge records the latest live prediction value
type PredictionGauge interface {
	SetLastPrediction(mgdl float64)
}

// Autostarter installs or removes the login entry
type Autostarter interface {
	Apply(enabled bool) error
}

// PredictorFactory builds a predictor for an endpoint. It returns nil when url is empty.
type PredictorFactory func(url string, timeout time.Duration) prediction.Predictor

// Report is one evaluation plus the values derived from the same profile
type Report struct {
	*prediction.Evaluation
	Statistics  models.SummaryStatistics `json:"statistics"`
	Improvement float64                  `json:"improvement"`
	Phase       *influence.Phase         `json:"phase"`
	Alert       string                   `json:"alert,omitempty"`
}

// TrendService owns the current session and re-evaluates it on every change
// and on a refresh ticker.
type TrendService struct {
	settings    *models.Settings
	predictions *prediction.Service
	alerts      Alerter
	gauge       PredictionGauge
	newClient   PredictorFactory
	autostart   Autostarter
	logger      *slog.Logger

	mu        sync.RWMutex
	session   prediction.Request
	current   *Report
	restart   chan time.Duration
	isRunning bool
}

// Option configures a TrendService
type Option func(*TrendService)

// WithAlerter sets the alert manager
func WithAlerter(alerts Alerter) Option {
	return func(s *TrendService) { s.alerts = alerts }
}

// WithGauge sets the live prediction gauge
func WithGauge(gauge PredictionGauge) Option {
	return func(s *TrendService) { s.gauge = gauge }
}

// WithPredictorFactory sets how a new prediction client is built on settings changes
func WithPredictorFactory(factory PredictorFactory) Option {
	return func(s *TrendService) { s.newClient = factory }
}

// WithAutostart sets the login entry manager applied on settings save
func WithAutostart(autostart Autostarter) Option {
	return func(s *TrendService) { s.autostart = autostart }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *TrendService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewTrendService creates a service whose initial session follows settings
func NewTrendService(settings *models.Settings, predictions *prediction.Service, opts ...Option) *TrendService {
	s := &TrendService{
		settings:    settings,
		predictions: predictions,
		logger:      slog.Default(),
		restart:     make(chan time.Duration, 1),
		session: prediction.Request{
			Period:      settings.DefaultPeriod,
			Profile:     models.DefaultProfile(),
			UseDemoData: settings.UseDemoData,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the current session inputs
func (s *TrendService) Session() prediction.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// UpdateSession replaces the session and re-evaluates it immediately
func (s *TrendService) UpdateSession(ctx context.Context, req prediction.Request) *Report {
	req.Period = models.ParsePeriod(string(req.Period))

	s.mu.Lock()
	s.session = req
	s.mu.Unlock()

	s.logger.Debug("session updated",
		"period", req.Period, "demo", req.UseDemoData, "gender", req.Profile.Gender)
	return s.evaluate(ctx, req)
}

// Refresh re-evaluates the current session
func (s *TrendService) Refresh(ctx context.Context) *Report {
	return s.evaluate(ctx, s.Session())
}

// Current returns the latest non-stale report, or nil before the first evaluation
func (s *TrendService) Current() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *TrendService) evaluate(ctx context.Context, req prediction.Request) *Report {
	eval := s.predictions.Compose(ctx, req)
	report := NewReport(eval, req.Profile)

	if eval.Stale {
		return report
	}

	if eval.LivePrediction != nil {
		value := *eval.LivePrediction
		if s.gauge != nil {
			s.gauge.SetLastPrediction(value)
		}
		if s.alerts != nil {
			alert, err := s.alerts.CheckPrediction(value)
			if err != nil {
				s.logger.Warn("prediction alert failed", "evaluation", eval.ID, "error", err)
			}
			report.Alert = alert
		}
	}

	s.mu.Lock()
	if s.current == nil || s.current.Sequence < eval.Sequence {
		s.current = report
	}
	s.mu.Unlock()

	return report
}

// NewReport derives statistics and phase for eval from the profile it was composed with
func NewReport(eval *prediction.Evaluation, profile models.UserProfile) *Report {
	stats := prediction.Statistics(profile)
	report := &Report{
		Evaluation:  eval,
		Statistics:  stats,
		Improvement: stats.Improvement(),
	}
	if phase, ok := influence.MenstrualPhase(profile); ok {
		report.Phase = &phase
	}
	return report
}

// Run evaluates the session now and then every RefreshInterval until ctx is done
func (s *TrendService) Run(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	ticker := time.NewTicker(s.refreshInterval())
	s.mu.Unlock()

	defer func() {
		ticker.Stop()
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	s.Refresh(ctx)

	for {
		select {
		case <-ticker.C:
			s.Refresh(ctx)
		case interval := <-s.restart:
			ticker.Reset(interval)
		case <-ctx.Done():
			return
		}
	}
}

func (s *TrendService) refreshInterval() time.Duration {
	interval := time.Duration(s.settings.Clone().RefreshInterval) * time.Second
	if interval < minRefreshInterval {
		interval = minRefreshInterval
	}
	return interval
}

// GetSettings returns a copy of the current settings
func (s *TrendService) GetSettings() *models.Settings {
	return s.settings.Clone()
}

// SaveSettings persists settings, rebuilds the prediction client and resets the refresh ticker
func (s *TrendService) SaveSettings(settings *models.Settings) error {
	previous := s.settings.Clone()
	s.settings.Update(settings)

	if err := s.settings.Save(); err != nil {
		return err
	}

	current := s.settings.Clone()
	if s.newClient != nil {
		timeout := time.Duration(current.PredictionTimeout) * time.Second
		s.predictions.SetPredictor(s.newClient(current.PredictionURL, timeout))
	}
	if s.alerts != nil {
		s.alerts.UpdateSettings(s.settings)
		if alertRulesChanged(previous, current) {
			s.alerts.ClearAlertState("")
		}
	}
	s.restartUpdateLoop()

	if s.autostart != nil {
		if err := s.autostart.Apply(current.AutoStart); err != nil {
			s.logger.Warn("could not update autostart", "enabled", current.AutoStart, "error", err)
		}
	}

	s.logger.Info("settings saved",
		"prediction_configured", current.IsConfigured(), "refresh_interval", current.RefreshInterval)
	return nil
}

// alertRulesChanged reports whether thresholds or alert toggles differ
func alertRulesChanged(a, b *models.Settings) bool {
	return a.TargetLow != b.TargetLow || a.TargetHigh != b.TargetHigh ||
		a.UrgentLow != b.UrgentLow || a.UrgentHigh != b.UrgentHigh ||
		a.EnableLowAlert != b.EnableLowAlert || a.EnableHighAlert != b.EnableHighAlert ||
		a.EnableUrgentLowAlert != b.EnableUrgentLowAlert || a.EnableUrgentHighAlert != b.EnableUrgentHighAlert
}

// SendTestNotification delivers a sample alert through the configured alerter
func (s *TrendService) SendTestNotification() error {
	if s.alerts == nil {
		return ErrNoAlerter
	}
	return s.alerts.SendTestNotification()
}

func (s *TrendService) restartUpdateLoop() {
	interval := s.refreshInterval()
	// drop a pending reset so the newest interval wins
	select {
	case <-s.restart:
	default:
	}
	select {
	case s.restart <- interval:
	default:
	}
}
