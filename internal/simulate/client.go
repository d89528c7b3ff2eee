// Package simulate talks to the external simulation API and schedules
// debounced re-simulation runs as plan state changes.
package simulate

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/iwvelando/mortgage-planner/internal/request"
)

// MonthPoint is one month of the upstream projection.
type MonthPoint struct {
	PeriodIndex     int     `json:"period_index"`
	Date            string  `json:"date"`
	MortgageBalance float64 `json:"mortgage_balance"`
	SavingsBalance  float64 `json:"savings_balance"`
	Payment         float64 `json:"payment"`
	Interest        float64 `json:"interest"`
}

// Result is the month-by-month projection returned by POST /simulate.
type Result struct {
	Months []MonthPoint `json:"months"`
}

// APIError carries an error surfaced by the upstream API, with the message
// extracted from its error payload.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("simulation API error (status %d): %s", e.Status, e.Message)
}

// Client issues requests against the external simulation API.
type Client struct {
	baseURL    string
	httpClient *fasthttp.Client
	timeout    time.Duration
	logger     *zap.Logger
}

// NewClient builds a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &fasthttp.Client{},
		timeout:    timeout,
		logger:     logger,
	}
}

// Simulate posts the assembled request body and parses the projection.
func (c *Client) Simulate(req request.SimulationRequest) (*Result, error) {
	raw, err := c.SimulateRaw(req)
	if err != nil {
		return nil, err
	}
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode simulation response: %w", err)
	}
	return &result, nil
}

// SimulateRaw posts the assembled request body and returns the raw response
// bytes, used for cache population.
func (c *Client) SimulateRaw(req request.SimulationRequest) ([]byte, error) {
	body, err := request.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode simulation request: %w", err)
	}
	return c.do(fasthttp.MethodPost, "/simulate", body)
}

// SimulateCSV posts the assembled request body and returns the downloadable
// CSV file contents.
func (c *Client) SimulateCSV(req request.SimulationRequest) ([]byte, error) {
	body, err := request.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode simulation request: %w", err)
	}
	return c.do(fasthttp.MethodPost, "/simulate/csv", body)
}

// Sample fetches the upstream default request body.
func (c *Client) Sample() (request.SimulationRequest, error) {
	raw, err := c.do(fasthttp.MethodGet, "/simulate/sample", nil)
	if err != nil {
		return request.SimulationRequest{}, err
	}
	var sample request.SimulationRequest
	if err := json.Unmarshal(raw, &sample); err != nil {
		return request.SimulationRequest{}, fmt.Errorf("failed to decode sample request: %w", err)
	}
	return sample, nil
}

// Health checks the upstream health endpoint.
func (c *Client) Health() error {
	_, err := c.do(fasthttp.MethodGet, "/", nil)
	return err
}

func (c *Client) do(method, path string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	if err := c.httpClient.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, fmt.Errorf("simulation API request failed: %w", err)
	}

	status := resp.StatusCode()
	responseBody := append([]byte(nil), resp.Body()...)
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		apiErr := &APIError{Status: status, Message: extractErrorMessage(responseBody)}
		c.logger.Warn("simulation API returned an error",
			zap.String("op", "simulate.Client.do"),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("error", apiErr.Message),
		)
		return nil, apiErr
	}

	return responseBody, nil
}

// extractErrorMessage pulls the message out of an upstream {"error": "..."}
// payload, falling back to the raw body.
func extractErrorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "unknown error"
	}
	return msg
}
