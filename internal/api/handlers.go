package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrcode/glucotrend/internal/app"
	"github.com/mrcode/glucotrend/internal/influence"
	"github.com/mrcode/glucotrend/internal/models"
	"github.com/mrcode/glucotrend/internal/prediction"
)

// Handler serves the consumer interface
type Handler struct {
	predictions *prediction.Service
	trends      *app.TrendService
	now         func() time.Time
}

// NewHandler creates a handler. trends may be nil when no session is kept.
func NewHandler(predictions *prediction.Service, trends *app.TrendService) *Handler {
	return &Handler{
		predictions: predictions,
		trends:      trends,
		now:         time.Now,
	}
}

// StatisticsResponse is SummaryStatistics plus the improvement over the 70% baseline
type StatisticsResponse struct {
	models.SummaryStatistics
	Improvement float64 `json:"improvement"`
}

// PhaseResponse carries the menstrual phase label, null when not applicable
type PhaseResponse struct {
	Phase *influence.Phase `json:"phase"`
}

// LogsRequest is a batch of tagged log entries evaluated at Now
type LogsRequest struct {
	Now  *time.Time         `json:"now"`
	Logs []models.LogRecord `json:"logs"`
}

// LogsResponse holds the parameters and lifestyle influence derived from logs
type LogsResponse struct {
	Parameters         models.RealModeParameters `json:"parameters"`
	Missing            []string                  `json:"missing"`
	Complete           bool                      `json:"complete"`
	LifestyleInfluence float64                   `json:"lifestyleInfluence"`
	Profile            *models.UserProfile       `json:"profile,omitempty"`
}

// SessionResponse is the current session and its latest report
type SessionResponse struct {
	Session prediction.Request `json:"session"`
	Report  *app.Report        `json:"report"`
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

func normalizeProfile(p *models.UserProfile) {
	p.Gender = models.ParseGender(string(p.Gender))
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "glucotrend",
	})
}

// Series composes a glucose series for the posted request without touching the session
func (h *Handler) Series(c *gin.Context) {
	var req prediction.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	normalizeProfile(&req.Profile)

	eval := h.predictions.Evaluate(c.Request.Context(), req)
	c.JSON(http.StatusOK, app.NewReport(eval, req.Profile))
}

// Statistics returns the summary statistics for a profile
func (h *Handler) Statistics(c *gin.Context) {
	var profile models.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		badRequest(c, err)
		return
	}
	normalizeProfile(&profile)

	stats := prediction.Statistics(profile)
	c.JSON(http.StatusOK, StatisticsResponse{SummaryStatistics: stats, Improvement: stats.Improvement()})
}

// Phase returns the menstrual phase label for a profile
func (h *Handler) Phase(c *gin.Context) {
	var profile models.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		badRequest(c, err)
		return
	}
	normalizeProfile(&profile)

	var resp PhaseResponse
	if phase, ok := influence.MenstrualPhase(profile); ok {
		resp.Phase = &phase
	}
	c.JSON(http.StatusOK, resp)
}

// ParametersFromLogs derives the real-mode parameters from logged entries
func (h *Handler) ParametersFromLogs(c *gin.Context) {
	var req LogsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	now := h.now()
	if req.Now != nil {
		now = *req.Now
	}
	logs := models.Entries(req.Logs)

	params := prediction.ParametersFromLogs(logs, now)
	resp := LogsResponse{
		Parameters:         params,
		Missing:            params.Missing(),
		Complete:           params.Complete(),
		LifestyleInfluence: prediction.LifestyleInfluence(logs, now),
	}
	if resp.Missing == nil {
		resp.Missing = []string{}
	}
	if profile, ok := prediction.LatestProfile(logs); ok {
		resp.Profile = &profile
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) requireTrends(c *gin.Context) bool {
	if h.trends == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session service not running"})
		return false
	}
	return true
}

// GetSession returns the current session and report
func (h *Handler) GetSession(c *gin.Context) {
	if !h.requireTrends(c) {
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Session: h.trends.Session(), Report: h.trends.Current()})
}

// UpdateSession replaces the session inputs and re-evaluates
func (h *Handler) UpdateSession(c *gin.Context) {
	if !h.requireTrends(c) {
		return
	}
	var req prediction.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	normalizeProfile(&req.Profile)

	report := h.trends.UpdateSession(c.Request.Context(), req)
	c.JSON(http.StatusOK, SessionResponse{Session: h.trends.Session(), Report: report})
}

// RefreshSession re-evaluates the current session now
func (h *Handler) RefreshSession(c *gin.Context) {
	if !h.requireTrends(c) {
		return
	}
	report := h.trends.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, SessionResponse{Session: h.trends.Session(), Report: report})
}

// GetSettings returns the persisted settings
func (h *Handler) GetSettings(c *gin.Context) {
	if !h.requireTrends(c) {
		return
	}
	c.JSON(http.StatusOK, h.trends.GetSettings())
}

// SaveSettings validates and persists settings
func (h *Handler) SaveSettings(c *gin.Context) {
	if !h.requireTrends(c) {
		return
	}
	settings := h.trends.GetSettings()
	if err := c.ShouldBindJSON(settings); err != nil {
		badRequest(c, err)
		return
	}
	if settings.RefreshInterval < 30 || settings.RefreshInterval > 600 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshInterval must be between 30 and 600 seconds"})
		return
	}
	settings.DefaultPeriod = models.ParsePeriod(string(settings.DefaultPeriod))

	if err := h.trends.SaveSettings(settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "saving settings: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.trends.GetSettings())
}

// TestNotification sends a sample desktop alert
func (h *Handler) TestNotification(c *gin.Context) {
	if !h.requireTrends(c) {
		return
	}
	if err := h.trends.SendTestNotification(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, app.ErrNoAlerter) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": "sending test notification: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
