// Package pricing talks to the external price prediction model.
package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Day     int    `json:"day"`
	Weather string `json:"weather"`
	Demand  string `json:"demand"`
}

// PredictResponse is the model's answer.
type PredictResponse struct {
	PredictedPrice float64 `json:"predicted_price"`
}

// StatusError reports a non-2xx answer from the model.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("pricing API returned %d", e.StatusCode)
	}
	return fmt.Sprintf("pricing API returned %d: %s", e.StatusCode, e.Body)
}

// Client calls the prediction endpoint over traced HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient instantiates the pricing client with sane defaults.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("pricing base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{baseURL: baseURL, http: httpClient}, nil
}

// Predict posts the market signals and returns the predicted price.
func (c *Client) Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error) {
	if c == nil || c.http == nil {
		return nil, errors.New("pricing client not configured")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call pricing API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	var out PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode pricing response: %w", err)
	}
	return &out, nil
}
