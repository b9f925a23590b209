package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"guesthouse/pkg/model"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	adminSecretHeader  = "X-Admin-Secret"
)

// AcknowledgmentClient talks to the acknowledgments API over HTTP.
type AcknowledgmentClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewAcknowledgmentClient(baseURL string) *AcknowledgmentClient {
	return &AcknowledgmentClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}
}

// APIError is a non-2xx answer decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func (c *AcknowledgmentClient) Acknowledge(ctx context.Context, req *model.AcknowledgmentRequest) (*model.AcknowledgmentCreated, error) {
	var out model.AcknowledgmentCreated
	if err := call(ctx, c, http.MethodPost, "/api/acknowledge", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AcknowledgmentClient) List(ctx context.Context, adminSecret string) ([]model.Booking, error) {
	var out []model.Booking
	headers := map[string]string{adminSecretHeader: adminSecret}
	if err := call(ctx, c, http.MethodGet, "/api/acknowledgments", nil, headers, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AcknowledgmentClient) BlockedDates(ctx context.Context) ([]model.DateRange, error) {
	var out []model.DateRange
	if err := call(ctx, c, http.MethodGet, "/api/blocked-dates", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AcknowledgmentClient) EmailExists(ctx context.Context, email string) (bool, error) {
	var out model.EmailCheckResult
	if err := call(ctx, c, http.MethodGet, "/api/check-email/"+url.PathEscape(email), nil, nil, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

func (c *AcknowledgmentClient) Cancel(ctx context.Context, req model.CancelRequest) (*model.CancellationResult, error) {
	var out model.CancellationResult
	if err := call(ctx, c, http.MethodPost, "/api/cancel-booking", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AcknowledgmentClient) CorrectGovtID(ctx context.Context, req model.GovtIDCorrectionRequest) (*model.CorrectionResult, error) {
	var out model.CorrectionResult
	if err := call(ctx, c, http.MethodPost, "/api/update-govt-id", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AcknowledgmentClient) CorrectDOB(ctx context.Context, req model.DOBCorrectionRequest) (*model.CorrectionResult, error) {
	var out model.CorrectionResult
	if err := call(ctx, c, http.MethodPost, "/api/update-dob", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func call[T any](ctx context.Context, c *AcknowledgmentClient, method, path string, body any, headers map[string]string, out *T) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope[T]
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Error}
	}
	*out = env.Data
	return nil
}

// WaitForHealthy polls /health until it answers 200 or maxWait elapses.
func (c *AcknowledgmentClient) WaitForHealthy(ctx context.Context, maxWait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
		if err != nil {
			return err
		}
		resp, err := c.HTTPClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("service did not become healthy within %v", maxWait)
		case <-ticker.C:
		}
	}
}
