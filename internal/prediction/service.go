package prediction

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mrcode/glucotrend/internal/models"
)

// State is the compositor state for one evaluation
type State string

const (
	StateDemo           State = "demo"
	StateRealIncomplete State = "real_incomplete"
	StateRealReady      State = "real_ready"
)

// Prediction outcomes reported to the Observer
const (
	OutcomeSuccess     = "success"
	OutcomeUnavailable = "unavailable"
)

// ErrNoPredictor is surfaced when no prediction endpoint is configured
var ErrNoPredictor = errors.New("prediction endpoint not configured")

// Predictor fetches one live 30-minute forecast
type Predictor interface {
	Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error)
}

// Observer receives the outcome and latency of every live prediction attempt
type Observer interface {
	ObservePrediction(outcome string, elapsed time.Duration)
}

// Request is the input of one compositor run
type Request struct {
	Period      models.Period             `json:"period"`
	Profile     models.UserProfile        `json:"profile"`
	UseDemoData bool                      `json:"useDemoData"`
	Parameters  models.RealModeParameters `json:"parameters"`
}

// Evaluation is the result of one compositor run
type Evaluation struct {
	ID                string                    `json:"id"`
	Sequence          uint64                    `json:"sequence,omitempty"` // 0 for one-off evaluations
	State             State                     `json:"state"`
	Period            models.Period             `json:"period"`
	Series            []models.GlucoseDataPoint `json:"series"`
	LivePrediction    *float64                  `json:"livePrediction,omitempty"`
	PredictionError   string                    `json:"predictionError,omitempty"`
	MissingParameters []string                  `json:"missingParameters,omitempty"`
	SyntheticBasis    bool                      `json:"syntheticBasis"` // series rows come from the demo scaffold
	Stale             bool                      `json:"stale,omitempty"`
	EvaluatedAt       time.Time                 `json:"evaluatedAt"`
}

// PredictionFailed reports whether a live prediction was attempted and failed
func (e *Evaluation) PredictionFailed() bool {
	return e.PredictionError != ""
}

// Service decides which series to display for demo and real mode
type Service struct {
	predictor Predictor
	observer  Observer
	logger    *slog.Logger
	now       func() time.Time

	seq atomic.Uint64

	mu        sync.RWMutex
	latest    *Evaluation
	latestSeq uint64
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver sets the prediction observer
func WithObserver(observer Observer) Option {
	return func(s *Service) { s.observer = observer }
}

// WithClock overrides the time source used for time-of-day encoding
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a compositor. A nil predictor makes every live
// prediction fail with ErrNoPredictor.
func NewService(predictor Predictor, opts ...Option) *Service {
	s := &Service{
		predictor: predictor,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPredictor swaps the prediction client, e.g. after a settings change
func (s *Service) SetPredictor(predictor Predictor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predictor = predictor
}

// Compose runs the compositor for req as the next evaluation of the owning
// caller's parameter stream. It never fails: adapter errors are recorded on
// the evaluation. A result that finishes after a newer one is marked Stale
// and does not replace Latest.
func (s *Service) Compose(ctx context.Context, req Request) *Evaluation {
	eval := s.compose(ctx, req, s.seq.Add(1))
	s.publish(eval)
	return eval
}

// Evaluate runs the compositor for a one-off request. It takes no sequence
// number and never touches Latest, so it cannot supersede a Compose caller.
func (s *Service) Evaluate(ctx context.Context, req Request) *Evaluation {
	return s.compose(ctx, req, 0)
}

func (s *Service) compose(ctx context.Context, req Request, seq uint64) *Evaluation {
	eval := &Evaluation{
		ID:          uuid.NewString(),
		Sequence:    seq,
		Period:      models.ParsePeriod(string(req.Period)),
		EvaluatedAt: s.now(),
	}

	switch {
	case req.UseDemoData:
		eval.State = StateDemo
		eval.SyntheticBasis = true
		eval.Series = GenerateSeries(eval.Period, req.Profile)
		if result, err := s.fetch(ctx, eval, models.DemoPredictionRequest()); err == nil {
			s.splice(eval, result)
		}

	case !req.Parameters.Complete():
		eval.State = StateRealIncomplete
		eval.Series = []models.GlucoseDataPoint{}
		eval.MissingParameters = req.Parameters.Missing()

	default:
		eval.State = StateRealReady
		eval.Series = []models.GlucoseDataPoint{}
		predReq := models.NewPredictionRequest(req.Parameters, eval.EvaluatedAt)
		if result, err := s.fetch(ctx, eval, predReq); err == nil {
			eval.SyntheticBasis = true
			eval.Series = GenerateSeries(eval.Period, req.Profile)
			s.splice(eval, result)
		}
	}

	return eval
}

// Latest returns the most recent non-stale evaluation, or nil
func (s *Service) Latest() *Evaluation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *Service) fetch(ctx context.Context, eval *Evaluation, req models.PredictionRequest) (*models.PredictionResult, error) {
	s.mu.RLock()
	predictor := s.predictor
	s.mu.RUnlock()

	if predictor == nil {
		eval.PredictionError = ErrNoPredictor.Error()
		return nil, ErrNoPredictor
	}

	start := time.Now()
	result, err := predictor.Predict(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		s.observe(OutcomeUnavailable, elapsed)
		eval.PredictionError = err.Error()
		s.logger.Warn("live prediction unavailable",
			"evaluation", eval.ID, "state", eval.State, "error", err)
		return nil, err
	}

	s.observe(OutcomeSuccess, elapsed)
	s.logger.Debug("live prediction received",
		"evaluation", eval.ID, "predicted", result.PredictedGlucose30Min, "elapsed", elapsed)
	return result, nil
}

func (s *Service) splice(eval *Evaluation, result *models.PredictionResult) {
	if SpliceLivePrediction(eval.Series, result.PredictedGlucose30Min) {
		value := result.PredictedGlucose30Min
		eval.LivePrediction = &value
	}
}

func (s *Service) observe(outcome string, elapsed time.Duration) {
	if s.observer != nil {
		s.observer.ObservePrediction(outcome, elapsed)
	}
}

func (s *Service) publish(eval *Evaluation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if eval.Sequence < s.latestSeq {
		eval.Stale = true
		s.logger.Debug("discarding stale evaluation",
			"evaluation", eval.ID, "sequence", eval.Sequence, "latest", s.latestSeq)
		return
	}
	s.latest = eval
	s.latestSeq = eval.Sequence
}
