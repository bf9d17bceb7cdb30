// Package remote adapts the fleet server REST API to the check-in source
// and sink interfaces.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/core/logging"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Options configures a Client.
type Options struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	UserAgent string

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks JSON over HTTP to the fleet server.
type Client struct {
	baseURL   string
	token     string
	userAgent string
	client    *http.Client
	log       zerolog.Logger
}

// New creates a client. An empty BaseURL yields a client whose every call
// fails with checkin.ErrNoConnectivity, so cached data can still be served.
func New(opts Options, log zerolog.Logger) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		token:     opts.Token,
		userAgent: opts.UserAgent,
		client:    hc,
		log:       log.With().Str("component", "remote").Logger(),
	}
}

// checkInResponse is the optional body of a check-in reply.
type checkInResponse struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// FetchItems lists a driver's items of one kind.
func (c *Client) FetchItems(ctx context.Context, kind checkin.Kind, driverID string) ([]checkin.Item, error) {
	path := "/drivers/" + url.PathEscape(driverID) + "/" + kind.Plural()

	var items []checkin.Item
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].Kind == "" {
			items[i].Kind = kind
		}
	}
	return items, nil
}

// CheckIn submits one item. A 2xx reply with "success": false is treated as
// a rejection.
func (c *Client) CheckIn(ctx context.Context, kind checkin.Kind, id checkin.ID) error {
	path := "/" + kind.Plural() + "/" + url.PathEscape(string(id)) + "/check-in"

	var resp checkInResponse
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &resp); err != nil {
		return err
	}

	if resp.Success != nil && !*resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "check-in was not accepted"
		}
		return &checkin.RemoteRejectedError{Code: http.StatusOK, Message: msg}
	}
	return nil
}

// Configured reports whether a server base URL is set.
func (c *Client) Configured() bool { return c.baseURL != "" }

// Ping checks that the server answers HTTP at its base URL. Any response,
// including an error status, counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: no fleet server configured", checkin.ErrNoConnectivity)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return checkin.Unexpected("build request", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return transportError(ctx, err)
	}
	_ = resp.Body.Close()
	return nil
}

// Source adapts the client to checkin.ItemSource for one kind.
func (c *Client) Source(kind checkin.Kind) checkin.ItemSource {
	return checkin.SourceFunc(func(ctx context.Context, subjectID string) ([]checkin.Item, error) {
		return c.FetchItems(ctx, kind, subjectID)
	})
}

// Sink adapts the client to checkin.SubmissionSink for one kind.
func (c *Client) Sink(kind checkin.Kind) checkin.SubmissionSink {
	return checkin.SinkFunc(func(ctx context.Context, id checkin.ID) error {
		return c.CheckIn(ctx, kind, id)
	})
}

func (c *Client) do(ctx context.Context, method, path string, payload, dest any) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: no fleet server configured", checkin.ErrNoConnectivity)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return checkin.Unexpected("encode request", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return checkin.Unexpected("build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if batchID := logging.GetBatchID(ctx); batchID != "" {
		req.Header.Set("X-Batch-ID", batchID)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return transportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readErrorResponse(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(ctx, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return checkin.Unexpected("decode response", err)
	}
	return nil
}

// transportError maps a failed round trip. Caller cancellation is returned
// as is; everything else means the server could not be reached.
func transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", checkin.ErrNoConnectivity, err)
}

func readErrorResponse(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(data, &payload); err == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &checkin.RemoteRejectedError{Code: resp.StatusCode, Message: msg}
}
