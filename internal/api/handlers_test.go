package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcode/glucotrend/internal/app"
	"github.com/mrcode/glucotrend/internal/metrics"
	"github.com/mrcode/glucotrend/internal/models"
	"github.com/mrcode/glucotrend/internal/notifications"
	"github.com/mrcode/glucotrend/internal/prediction"
)

type stubPredictor struct {
	value float64
	err   error
}

func (p stubPredictor) Predict(context.Context, models.PredictionRequest) (*models.PredictionResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &models.PredictionResult{PredictedGlucose30Min: p.value}, nil
}

const exampleProfileJSON = `{
	"gender": "female",
	"isPregnant": false,
	"menstrualCycleDay": 14,
	"sleepQuality": 7,
	"sleepDuration": 7.5,
	"currentStress": 3,
	"yearsSinceDiagnosis": 9
}`

func newTestRouter(t *testing.T, predictor prediction.Predictor) (*gin.Engine, *app.TrendService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	collector, err := metrics.NewCollector()
	require.NoError(t, err)

	predictions := prediction.NewService(predictor, prediction.WithObserver(collector))
	trends := app.NewTrendService(models.DefaultSettings(), predictions, app.WithGauge(collector))
	router := NewRouter(NewHandler(predictions, trends), RouterConfig{Collector: collector})
	return router, trends
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestSeries_DemoWithLivePrediction(t *testing.T) {
	router, _ := newTestRouter(t, stubPredictor{value: 125.5})

	w := do(router, http.MethodPost, "/api/v1/series",
		`{"period":"days","useDemoData":true,"profile":`+exampleProfileJSON+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "demo", body["state"])
	assert.Equal(t, "Ovulation", body["phase"])
	assert.Equal(t, 125.5, body["livePrediction"])

	series := body["series"].([]any)
	require.Len(t, series, 15)
	last := series[len(series)-1].(map[string]any)
	assert.Equal(t, true, last["realPrediction"])
	assert.Equal(t, 125.5, last["predicted"])

	stats := body["statistics"].(map[string]any)
	assert.GreaterOrEqual(t, stats["accuracy"].(float64), 87.0)
	assert.LessOrEqual(t, stats["accuracy"].(float64), 96.0)
}

func TestSeries_LeavesSessionUntouched(t *testing.T) {
	router, trends := newTestRouter(t, stubPredictor{value: 125.5})

	w := do(router, http.MethodPost, "/api/v1/series", `{"period":"weeks","useDemoData":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.NotContains(t, decode(t, w), "sequence")
	assert.Nil(t, trends.Current())

	report := trends.Refresh(context.Background())
	assert.False(t, report.Stale)
	assert.Equal(t, uint64(1), report.Sequence)
}

func TestSeries_RealIncompleteIsEmpty(t *testing.T) {
	router, _ := newTestRouter(t, stubPredictor{value: 125.5})

	w := do(router, http.MethodPost, "/api/v1/series",
		`{"period":"days","useDemoData":false,"parameters":{"glucose":140,"hr_mean_30min":80}}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "real_incomplete", body["state"])
	assert.Equal(t, []any{}, body["series"])
	assert.Len(t, body["missingParameters"], 4)
}

func TestSeries_AdapterFailureStillReturnsDemoSeries(t *testing.T) {
	router, _ := newTestRouter(t, stubPredictor{err: errors.New("prediction unavailable: API error 502")})

	w := do(router, http.MethodPost, "/api/v1/series", `{"period":"weeks","useDemoData":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Len(t, body["series"], 8)
	assert.Contains(t, body["predictionError"], "502")
	assert.NotContains(t, body, "livePrediction")
}

func TestSeries_BadBody(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(router, http.MethodPost, "/api/v1/series", `{"period":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestStatistics(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(router, http.MethodPost, "/api/v1/statistics", exampleProfileJSON)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, 96.0, body["accuracy"])
	assert.InDelta(t, 73.0-70, body["improvement"], 1e-9)
	assert.InDelta(t, 73.0, body["tir"], 1e-9)
}

func TestPhase(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	tests := []struct {
		body     string
		expected any
	}{
		{`{"gender":"female","menstrualCycleDay":5}`, "Menstrual"},
		{`{"gender":"Female","menstrualCycleDay":13}`, "Follicular"},
		{`{"gender":"female","menstrualCycleDay":16}`, "Luteal"},
		{`{"gender":"female","isPregnant":true,"menstrualCycleDay":14}`, nil},
		{`{"gender":"male","menstrualCycleDay":14}`, nil},
	}

	for _, tt := range tests {
		w := do(router, http.MethodPost, "/api/v1/phase", tt.body)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Contains(t, body, "phase")
		assert.Equal(t, tt.expected, body["phase"], tt.body)
	}
}

func TestParametersFromLogs(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(router, http.MethodPost, "/api/v1/parameters/from-logs", `{
		"now": "2026-03-01T12:00:00Z",
		"logs": [
			{"kind": "glucose", "at": "2026-03-01T11:55:00Z", "value": 131},
			{"kind": "meal", "at": "2026-03-01T11:40:00Z", "carbs": 40, "protein": 15, "fat": 10},
			{"kind": "exercise", "at": "2026-03-01T11:40:00Z", "intensity": "moderate", "durationMinutes": 10, "heartRateMean": 120}
		]
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["complete"])
	assert.Equal(t, []any{}, body["missing"])

	params := body["parameters"].(map[string]any)
	assert.Equal(t, 131.0, params["glucose"])
	assert.Equal(t, 120.0, params["hr_mean_30min"])
	assert.Equal(t, 10.0, params["activity_30min"])
	assert.Equal(t, 40.0, params["carbs_30min"])

	// meal 20 min ago: +20, moderate session ended 10 min ago: -8*(1-1/24)
	assert.InDelta(t, 20-8*(1-(10.0/60)/4), body["lifestyleInfluence"], 1e-9)
}

func TestParametersFromLogs_UnknownKind(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(router, http.MethodPost, "/api/v1/parameters/from-logs",
		`{"logs":[{"kind":"insulin","at":"2026-03-01T11:55:00Z"}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown log kind")
}

func TestSession_UpdateAndGet(t *testing.T) {
	router, trends := newTestRouter(t, stubPredictor{value: 140})

	w := do(router, http.MethodGet, "/api/v1/session", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["report"])

	w = do(router, http.MethodPut, "/api/v1/session",
		`{"period":"months","useDemoData":true,"profile":`+exampleProfileJSON+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	session := body["session"].(map[string]any)
	assert.Equal(t, "months", session["period"])
	report := body["report"].(map[string]any)
	assert.Len(t, report["series"], 6)
	assert.Equal(t, 140.0, report["livePrediction"])

	require.NotNil(t, trends.Current())
	w = do(router, http.MethodGet, "/api/v1/session", "")
	assert.Equal(t, trends.Current().ID, decode(t, w)["report"].(map[string]any)["id"])

	w = do(router, http.MethodPost, "/api/v1/session/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, report["id"], decode(t, w)["report"].(map[string]any)["id"])
}

func TestSession_WithoutTrendService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(NewHandler(prediction.NewService(nil), nil), RouterConfig{})

	w := do(router, http.MethodGet, "/api/v1/session", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSettings_RejectsBadRefreshInterval(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(router, http.MethodPut, "/api/v1/settings", `{"refreshInterval": 5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodGet, "/api/v1/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 300.0, decode(t, w)["refreshInterval"])
}

func TestSettings_Save(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("APPDATA", dir)

	router, trends := newTestRouter(t, nil)

	w := do(router, http.MethodPut, "/api/v1/settings", `{"refreshInterval": 60, "unit": "mmol/L", "defaultPeriod": "decades"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, 60.0, body["refreshInterval"])
	assert.Equal(t, "months", body["defaultPeriod"])
	assert.Equal(t, "mmol/L", trends.GetSettings().Unit)
	assert.Equal(t, 180.0, body["targetHigh"])
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, stubPredictor{value: 125.5})

	do(router, http.MethodPost, "/api/v1/series", `{"period":"days","useDemoData":true}`)
	w := do(router, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `glucotrend_prediction_requests_total{outcome="success"} 1`)
	assert.Contains(t, w.Body.String(), `glucotrend_http_requests_total{method="POST",path="/api/v1/series",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/series", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTestNotification(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var titles []string
	alerts := notifications.NewManager(models.DefaultSettings(), nil)
	alerts.SetNotifier(func(title, _ string) error {
		titles = append(titles, title)
		return nil
	})
	predictions := prediction.NewService(nil)
	trends := app.NewTrendService(models.DefaultSettings(), predictions, app.WithAlerter(alerts))
	router := NewRouter(NewHandler(predictions, trends), RouterConfig{})

	w := do(router, http.MethodPost, "/api/v1/notifications/test", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "sent", decode(t, w)["status"])
	assert.Equal(t, []string{"GlucoTrend"}, titles)
}

func TestTestNotification_NoAlerter(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(router, http.MethodPost, "/api/v1/notifications/test", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "alerts not configured")
}
