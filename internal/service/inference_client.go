package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"callmood/internal/config"
	"callmood/internal/metrics"
	"callmood/internal/model"
)

// AnalyzeRequest asks the backend to analyze a registered call.
type AnalyzeRequest struct {
	CallID             string                     `json:"call_id"`
	RecordingURL       string                     `json:"recording_multi_channel_url"`
	TranscriptSegments []model.RawTranscriptEntry `json:"retell_transcript_segments,omitempty"`
	Metadata           map[string]any             `json:"retell_metadata,omitempty"`
}

// InferenceClient wraps emotion inference backend calls
type InferenceClient struct {
	cfg        config.InferenceConfig
	httpClient *http.Client
	metrics    *metrics.Metrics
	log        *logrus.Entry
	backoff    time.Duration
}

// NewInferenceClient creates a new inference backend client
func NewInferenceClient(cfg config.InferenceConfig, m *metrics.Metrics, logger *logrus.Logger) *InferenceClient {
	return &InferenceClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		metrics: m,
		log:     logger.WithField("component", "inference"),
		backoff: time.Second,
	}
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// doRequest performs an HTTP request with retry logic. Transport failures
// and overload statuses are retried with exponential backoff; any other
// status is handed back to the caller.
func (c *InferenceClient) doRequest(ctx context.Context, op, method, path string, body []byte, contentType string) (int, []byte, error) {
	if !c.cfg.IsEnabled() {
		return 0, nil, ErrInferenceDisabled
	}
	endpoint := c.cfg.Endpoint(path)
	log := c.log.WithFields(logrus.Fields{"op": op, "method": method, "path": path})
	log.Debug("Inference request")

	attempts := c.cfg.MaxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := time.Duration(math.Pow(2, float64(attempt-1))) * c.backoff
			log.WithField("attempt", attempt).Warnf("Retrying in %v", wait)
			select {
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to create request: %w", err)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("Accept", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.metrics.InferenceRequest(op, "transport_error")
			if ctx.Err() != nil {
				return 0, nil, ctx.Err()
			}
			log.WithError(err).Warn("Inference request failed")
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		c.metrics.InferenceRequest(op, strconv.Itoa(resp.StatusCode))
		if err != nil {
			lastErr = err
			continue
		}

		if retryable(resp.StatusCode) {
			lastErr = fmt.Errorf("backend returned %d", resp.StatusCode)
			continue
		}

		log.WithField("status", resp.StatusCode).Debug("Inference response")
		return resp.StatusCode, respBody, nil
	}

	log.WithError(lastErr).Errorf("Max retries (%d) exceeded", c.cfg.MaxRetries)
	return 0, nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// errorDetail pulls a human readable message out of an error body.
func errorDetail(body []byte) string {
	var payload struct {
		Detail       any    `json:"detail"`
		ErrorMessage string `json:"error_message"`
		Error        string `json:"error"`
		Message      string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.ErrorMessage != "":
			return payload.ErrorMessage
		case payload.Detail != nil:
			if s, ok := payload.Detail.(string); ok {
				return s
			}
			encoded, _ := json.Marshal(payload.Detail)
			return string(encoded)
		case payload.Error != "":
			return payload.Error
		case payload.Message != "":
			return payload.Message
		}
	}
	if len(body) > 0 {
		return string(body)
	}
	return "Unknown error occurred"
}

func callPath(callID, suffix string) string {
	return "/retell/calls/" + url.PathEscape(callID) + suffix
}

// Start asks the backend to (re)analyze a call.
func (c *InferenceClient) Start(ctx context.Context, req AnalyzeRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	status, body, err := c.doRequest(ctx, "start", http.MethodPost, callPath(req.CallID, "/analyze?force=true"), payload, "application/json")
	if err != nil {
		return err
	}
	if status >= 400 {
		return &AnalysisError{StatusCode: status, Message: errorDetail(body)}
	}
	return nil
}

// Fetch reads the backend's current analysis of a call. ErrNotReady means
// the analysis is still running or has not been published yet.
func (c *InferenceClient) Fetch(ctx context.Context, callID string) (*model.AnalysisResponse, error) {
	status, body, err := c.doRequest(ctx, "fetch", http.MethodGet, callPath(callID, "/analysis"), nil, "")
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, ErrNotReady
	}
	if status >= 400 {
		return nil, &AnalysisError{StatusCode: status, Message: errorDetail(body)}
	}

	var resp model.AnalysisResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	switch {
	case resp.Status == string(model.StatusProcessing):
		return nil, ErrNotReady
	case resp.Status == string(model.StatusError) || !resp.Success:
		return nil, &AnalysisError{StatusCode: http.StatusInternalServerError, Message: errorDetail(body)}
	case resp.Results == nil:
		return nil, ErrNotReady
	}
	return &resp, nil
}

// Poll fetches until the analysis is ready, fails, or the poll timeout
// elapses.
func (c *InferenceClient) Poll(ctx context.Context, callID string) (*model.AnalysisResponse, error) {
	if c.cfg.PollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.PollTimeout)
		defer cancel()
	}

	interval := c.cfg.PollInterval
	if interval <= 0 {
		interval = config.DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		resp, err := c.Fetch(ctx, callID)
		if err == nil {
			return resp, nil
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, pollTimeout()
		}
		if !errors.Is(err, ErrNotReady) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, pollTimeout()
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// pollTimeout is reported however the deadline surfaces: between ticks,
// inside a request or during a retry backoff.
func pollTimeout() *AnalysisError {
	return &AnalysisError{StatusCode: http.StatusGatewayTimeout, Message: "Timed out waiting for analysis results"}
}

// AnalyzeUpload sends an audio file for one-off analysis.
func (c *InferenceClient) AnalyzeUpload(ctx context.Context, filename string, audio io.Reader) (*model.AnalysisResponse, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	status, body, err := c.doRequest(ctx, "upload", http.MethodPost, "/analyze", buf.Bytes(), form.FormDataContentType())
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, &AnalysisError{StatusCode: status, Message: errorDetail(body)}
	}

	var resp model.AnalysisResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	return &resp, nil
}
