// Package api is the HTTP JSON client for the notes server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Makepad-fr/tada/internal/metrics"
	"github.com/Makepad-fr/tada/internal/model"
)

// SessionHeader carries the per-client correlation id.
const SessionHeader = "X-Client-Session"

// ErrNotConfirmed is returned when /change-notes answers without "OK".
var ErrNotConfirmed = errors.New("change not confirmed by server")

// StatusError is a non-2xx reply.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Client talks to the notes API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics attaches request instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		session: uuid.NewString(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the correlation id sent with every request.
func (c *Client) Session() string { return c.session }

// ListNotes fetches one page of the full listing.
func (c *Client) ListNotes(ctx context.Context, offset int) ([]model.Note, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	return c.getPage(ctx, "notes", q)
}

// SearchNotes fetches one page of notes matching query.
func (c *Client) SearchNotes(ctx context.Context, offset int, query string) ([]model.Note, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("search", query)
	return c.getPage(ctx, "notes-search", q)
}

// ChangeNotes posts buffered edits. A nil error means the server confirmed them.
func (c *Client) ChangeNotes(ctx context.Context, req model.ChangeRequest) error {
	// The server expects arrays, never null.
	if req.NotesChecked == nil {
		req.NotesChecked = []model.CheckEdit{}
	}
	if req.NotesPosition == nil {
		req.NotesPosition = []model.PositionEdit{}
	}

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var resp model.ChangeResponse
	if err := c.do(ctx, http.MethodPost, "change-notes", nil, data, &resp); err != nil {
		return err
	}
	if resp.Message != model.MessageOK {
		return fmt.Errorf("%w: message %q", ErrNotConfirmed, resp.Message)
	}
	return nil
}

func (c *Client) getPage(ctx context.Context, endpoint string, q url.Values) ([]model.Note, error) {
	var page model.NotesPage
	if err := c.do(ctx, http.MethodGet, endpoint, q, nil, &page); err != nil {
		return nil, err
	}
	return page.Notes, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, q url.Values, body []byte, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.metrics.ObserveRequest(endpoint, outcome, time.Since(start))
	}()

	u := c.baseURL + "/" + endpoint
	if len(q) > 0 {
		u += "?" + encodeQuery(q)
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(SessionHeader, c.session)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("API request",
		slog.String("method", method),
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)),
		slog.String("session", c.session))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w (body: %s)", err, string(respBody))
	}
	return nil
}

// encodeQuery escapes spaces as %20 rather than +, the way browsers'
// encodeURIComponent does. A literal + is already escaped as %2B by Encode.
func encodeQuery(q url.Values) string {
	return strings.ReplaceAll(q.Encode(), "+", "%20")
}
