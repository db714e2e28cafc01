// Package predictapi provides a client for the remote 30-minute glucose prediction endpoint
package predictapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/mrcode/glucotrend/internal/models"
)

// DefaultTimeout bounds one prediction call when no timeout is configured
const DefaultTimeout = 10 * time.Second

// ErrPredictionUnavailable is matched by every failure of Predict
var ErrPredictionUnavailable = errors.New("prediction unavailable")

// UnavailableError describes why a prediction could not be obtained.
// StatusCode is 0 when no HTTP response was received.
type UnavailableError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnavailableError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("prediction unavailable: API error %d: %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return "prediction unavailable: " + e.Err.Error()
	default:
		return ErrPredictionUnavailable.Error()
	}
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrPredictionUnavailable) hold for any UnavailableError
func (e *UnavailableError) Is(target error) bool {
	return target == ErrPredictionUnavailable
}

// Client handles communication with the prediction service
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a new prediction client. A non-positive timeout uses DefaultTimeout.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url: strings.TrimSpace(url),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// URL returns the configured endpoint
func (c *Client) URL() string {
	return c.url
}

// buildRequest creates the POST request carrying the feature vector
func (c *Client) buildRequest(ctx context.Context, payload models.PredictionRequest) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

// doRequest executes an HTTP request and returns the response body
func (c *Client) doRequest(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UnavailableError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return body, nil
}

// Predict submits one feature vector and returns the forecast.
// It makes a single attempt; every failure matches ErrPredictionUnavailable.
func (c *Client) Predict(ctx context.Context, payload models.PredictionRequest) (*models.PredictionResult, error) {
	if c.url == "" {
		return nil, &UnavailableError{Err: errors.New("no prediction URL configured")}
	}

	req, err := c.buildRequest(ctx, payload)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}

	body, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Predicted *float64 `json:"predicted_glucose_30min"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &UnavailableError{Err: fmt.Errorf("parsing prediction: %w", err)}
	}
	if decoded.Predicted == nil {
		return nil, &UnavailableError{Err: errors.New("parsing prediction: predicted_glucose_30min missing or null")}
	}
	if math.IsNaN(*decoded.Predicted) || math.IsInf(*decoded.Predicted, 0) {
		return nil, &UnavailableError{Err: fmt.Errorf("parsing prediction: non-finite value %v", *decoded.Predicted)}
	}

	result := models.PredictionResult{PredictedGlucose30Min: *decoded.Predicted}
	return &result, nil
}
