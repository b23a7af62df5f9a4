package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/echo-journal/echo/internal/common"
)

// CSRFCell holds the in-memory CSRF token. It is process-wide state with a
// defined lifecycle: empty at start, written only by the session bridge,
// read by the web client on every mutating call. Never persisted.
type CSRFCell struct {
	mu    sync.Mutex
	token string
}

// Set stores the current token. An empty string invalidates it.
func (c *CSRFCell) Set(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Get returns the current token, or empty when invalidated.
func (c *CSRFCell) Get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// WebClient is the cookie-authenticated API client used by the web side of
// the bridge. It carries a cookie jar for the HttpOnly session cookies and
// guards every mutating request with the CSRF cell.
type WebClient struct {
	baseURL string
	cell    *CSRFCell
	http    *http.Client
	logger  *common.Logger
}

// NewWebClient creates a cookie-authenticated client. baseURL is required.
func NewWebClient(baseURL string, cell *CSRFCell, logger *common.Logger) (*WebClient, error) {
	if baseURL == "" {
		return nil, &APIError{Kind: KindConfig, Message: "API base URL is required"}
	}
	if cell == nil {
		cell = &CSRFCell{}
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, &APIError{Kind: KindConfig, Message: "failed to create cookie jar: " + err.Error()}
	}
	return &WebClient{
		baseURL: baseURL,
		cell:    cell,
		http:    &http.Client{Jar: jar, Timeout: 30 * time.Second},
		logger:  logger,
	}, nil
}

// CSRF returns the client's token cell.
func (c *WebClient) CSRF() *CSRFCell {
	return c.cell
}

// Do performs an API call with cookies included. Every non-GET/HEAD request
// must carry the current CSRF token; when the cell is empty the request is
// rejected locally, before any network I/O.
func (c *WebClient) Do(ctx context.Context, method, path string, body, out interface{}) error {
	mutating := method != http.MethodGet && method != http.MethodHead
	token := c.cell.Get()
	if mutating && token == "" {
		return &APIError{StatusCode: http.StatusBadRequest, Kind: KindMissingCSRF, Message: "missing CSRF token"}
	}

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
	if mutating {
		req.Header.Set("X-CSRF-Token", token)
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

// postBridge calls one of the auth bridge endpoints directly, bypassing the
// CSRF guard: the bridge endpoints are what mint the token in the first place.
func (c *WebClient) postBridge(ctx context.Context, path string, body interface{}) (int, string, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, "", err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return 0, "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	var payload struct {
		CSRFToken string `json:"csrfToken"`
	}
	json.NewDecoder(resp.Body).Decode(&payload)
	return resp.StatusCode, payload.CSRFToken, nil
}
