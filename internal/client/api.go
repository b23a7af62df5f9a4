// Package client implements the Echo API client: a bearer-token client for
// the mobile/CLI side, an offline entry queue with sync-on-login, and the
// web session bridge that keeps server cookies and the CSRF token aligned
// with the identity provider's session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/models"
)

// Error kinds carried by APIError.
const (
	KindConfig      = "config"
	KindMissingCSRF = "missing_csrf"
	KindNetwork     = "network"
	KindAPI         = "api"
)

// APIError describes a failed API call.
type APIError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
}

// Client is a bearer-token API client for the Echo backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *common.Logger
}

// NewClient creates an API client. baseURL is required.
func NewClient(baseURL, token string, logger *common.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, &APIError{Kind: KindConfig, Message: "API base URL is required"}
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}, nil
}

// SetToken replaces the bearer token used on subsequent calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Kind: KindAPI, Message: "failed to encode request: " + err.Error()}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &APIError{Kind: KindAPI, Message: err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Kind: KindNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		msg := apiErr.Error
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{StatusCode: resp.StatusCode, Kind: KindAPI, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{Kind: KindAPI, Message: "failed to decode response: " + err.Error()}
		}
	}
	return nil
}

// Login authenticates a local account and returns a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return "", err
	}
	c.token = out.Token
	return out.Token, nil
}

// CreateEntry submits one journal entry.
func (c *Client) CreateEntry(ctx context.Context, text string, tags []string) (*models.Entry, string, error) {
	var out struct {
		Entry    *models.Entry `json:"entry"`
		OneLiner string        `json:"one_liner"`
	}
	err := c.do(ctx, http.MethodPost, "/api/entries", map[string]interface{}{
		"text":   text,
		"tags":   tags,
		"source": models.SourceMobile,
	}, &out)
	if err != nil {
		return nil, "", err
	}
	return out.Entry, out.OneLiner, nil
}

// ListEntries fetches recent entries.
func (c *Client) ListEntries(ctx context.Context, limit int) ([]*models.Entry, error) {
	path := "/api/entries"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Entries []*models.Entry `json:"entries"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// GetEntry fetches one entry by ID.
func (c *Client) GetEntry(ctx context.Context, entryID string) (*models.Entry, error) {
	var out models.Entry
	if err := c.do(ctx, http.MethodGet, "/api/entries/"+url.PathEscape(entryID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Insights fetches the dashboard summary for the trailing window.
func (c *Client) Insights(ctx context.Context, days int) (*models.InsightsSummary, error) {
	path := "/api/insights/summary"
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}
	var out models.InsightsSummary
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summary fetches the recap for "day", "week", or "month".
func (c *Client) Summary(ctx context.Context, period string) (*models.PeriodSummary, error) {
	path := "/api/summary"
	if period != "" {
		path += "?period=" + url.QueryEscape(period)
	}
	var out models.PeriodSummary
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func dateRangeQuery(start, end time.Time) string {
	q := url.Values{}
	if !start.IsZero() {
		q.Set("start", start.Format("2006-01-02"))
	}
	if !end.IsZero() {
		q.Set("end", end.Format("2006-01-02"))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// DailyAnalytics fetches per-day metrics for the date range. Zero times
// fall back to the server's default window.
func (c *Client) DailyAnalytics(ctx context.Context, start, end time.Time) ([]*models.DailyMetric, error) {
	var out struct {
		Daily []*models.DailyMetric `json:"daily"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/analytics/daily"+dateRangeQuery(start, end), nil, &out); err != nil {
		return nil, err
	}
	return out.Daily, nil
}

// WeeklyAnalytics fetches per-week metrics for the date range.
func (c *Client) WeeklyAnalytics(ctx context.Context, start, end time.Time) ([]*models.WeeklyMetric, error) {
	var out struct {
		Weekly []*models.WeeklyMetric `json:"weekly"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/analytics/weekly"+dateRangeQuery(start, end), nil, &out); err != nil {
		return nil, err
	}
	return out.Weekly, nil
}

// DigestPref reads whether the weekly digest is enabled.
func (c *Client) DigestPref(ctx context.Context) (bool, error) {
	var out struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/digest/pref", nil, &out); err != nil {
		return false, err
	}
	return out.Enabled, nil
}

// SetDigestPref toggles the weekly digest.
func (c *Client) SetDigestPref(ctx context.Context, enabled bool) (bool, error) {
	var out struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/digest/pref", map[string]bool{"enabled": enabled}, &out); err != nil {
		return false, err
	}
	return out.Enabled, nil
}

// CopingKit fetches the user's pinned coping actions.
func (c *Client) CopingKit(ctx context.Context) ([]string, error) {
	var out struct {
		Actions []string `json:"actions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/coping/kit", nil, &out); err != nil {
		return nil, err
	}
	return out.Actions, nil
}

// SaveCopingKit replaces the user's pinned coping actions.
func (c *Client) SaveCopingKit(ctx context.Context, actions []string) ([]string, error) {
	var out struct {
		Actions []string `json:"actions"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/coping/kit", map[string]interface{}{"actions": actions}, &out); err != nil {
		return nil, err
	}
	return out.Actions, nil
}

// Triggers fetches the trigger library with computed stats.
func (c *Client) Triggers(ctx context.Context) ([]models.TriggerWithStats, error) {
	var out []models.TriggerWithStats
	if err := c.do(ctx, http.MethodGet, "/api/triggers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveTrigger creates or replaces a named trigger word list.
func (c *Client) SaveTrigger(ctx context.Context, name string, words []string) (*models.Trigger, error) {
	var out models.Trigger
	if err := c.do(ctx, http.MethodPost, "/api/triggers", map[string]interface{}{
		"name":  name,
		"words": words,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTrigger removes the named trigger.
func (c *Client) DeleteTrigger(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/api/triggers/"+url.PathEscape(name), nil, nil)
}

// CalendarStatus reports whether a calendar is connected.
func (c *Client) CalendarStatus(ctx context.Context) (bool, error) {
	var out struct {
		Connected bool `json:"connected"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/calendar/status", nil, &out); err != nil {
		return false, err
	}
	return out.Connected, nil
}

// Profile fetches the user's display name.
func (c *Client) Profile(ctx context.Context) (string, error) {
	var out struct {
		FullName string `json:"full_name"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &out); err != nil {
		return "", err
	}
	return out.FullName, nil
}

// SaveProfile stores the user's display name.
func (c *Client) SaveProfile(ctx context.Context, fullName string) (string, error) {
	var out struct {
		FullName string `json:"full_name"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/profile", map[string]string{"full_name": fullName}, &out); err != nil {
		return "", err
	}
	return out.FullName, nil
}

// Health checks the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}
