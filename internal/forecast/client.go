// Package forecast is the HTTP client for the external cash-flow
// prediction model server. The server exposes a single POST /predict
// endpoint taking a feature sequence and returning the predicted net
// cash flow; model internals live entirely on that side.
package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient points at the model server, e.g. "http://localhost:8060".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type predictRequest struct {
	Sequence [][]float64 `json:"sequence"`
}

type predictResponse struct {
	PredictedNetCashFlow float64 `json:"predicted_net_cashflow"`
}

// PredictNetCashFlow implements core.Predictor.
func (c *Client) PredictNetCashFlow(ctx context.Context, sequence [][]float64) (float64, error) {
	body, err := json.Marshal(predictRequest{Sequence: sequence})
	if err != nil {
		return 0, fmt.Errorf("failed to encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("predict request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("model server returned status %d", resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("failed to decode predict response: %w", err)
	}
	return out.PredictedNetCashFlow, nil
}
