package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"jaldrishti/internal/models"
)

// Client talks to a running jaldrishti server.
type Client struct {
	http *resty.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(req *resty.Request, method, path string, out any) error {
	var body apiResponse
	resp, err := req.SetResult(&body).SetError(&body).Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		msg := body.Error
		if msg == "" {
			msg = resp.Status()
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body.Data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Status fetches the aggregate system status.
func (c *Client) Status(ctx context.Context) (models.SystemStatus, error) {
	var st models.SystemStatus
	err := c.do(c.http.R().SetContext(ctx), resty.MethodGet, "/api/v1/status", &st)
	return st, err
}

// Alerts lists alerts, optionally filtered by status.
func (c *Client) Alerts(ctx context.Context, status string) ([]models.Alert, error) {
	req := c.http.R().SetContext(ctx)
	if status != "" {
		req.SetQueryParam("status", status)
	}
	var alerts []models.Alert
	err := c.do(req, resty.MethodGet, "/api/v1/alerts", &alerts)
	return alerts, err
}

// LatestReadings fetches the newest reading per location.
func (c *Client) LatestReadings(ctx context.Context) ([]models.Reading, error) {
	var readings []models.Reading
	err := c.do(c.http.R().SetContext(ctx), resty.MethodGet, "/api/v1/readings/latest", &readings)
	return readings, err
}

// UpdateAlertStatus changes the status of one alert.
func (c *Client) UpdateAlertStatus(ctx context.Context, id, status string) error {
	req := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"status": status})
	return c.do(req, resty.MethodPut, "/api/v1/alerts/{id}/status", nil)
}
