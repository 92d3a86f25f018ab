// Package playground is a client for the Rust playground execute API.
package playground

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

	"github.com/deixis/tomorin/internal/ctxlog"
	"github.com/deixis/tomorin/internal/snippet"
)

// DefaultURL is the public execute endpoint.
const DefaultURL = "https://play.rust-lang.org/execute"

// ErrTransport wraps failures to reach the service or decode its reply.
var ErrTransport = errors.New("playground request failed")

// StatusError is returned for a non-2xx reply.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("playground returned %d: %s", e.StatusCode, msg)
}

// Request is the JSON body of an execute call.
type Request struct {
	Channel   string `json:"channel"`
	Edition   string `json:"edition"`
	Mode      string `json:"mode"`
	CrateType string `json:"crateType"`
	Tests     bool   `json:"tests"`
	Backtrace bool   `json:"backtrace"`
	Code      string `json:"code"`
}

// Result is the JSON reply of an execute call.
type Result struct {
	Success bool   `json:"success"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
}

// Client executes compile units on the playground.
// It holds no per-request state and is safe for concurrent use.
type Client struct {
	HTTP    *http.Client
	URL     string
	Channel string
	Edition string
}

// New returns a Client for url with the given request timeout.
func New(url, channel, edition string, timeout time.Duration) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		URL:     url,
		Channel: channel,
		Edition: edition,
	}
}

// NewRequest builds the execute body for u.
func (c *Client) NewRequest(u snippet.CompileUnit) Request {
	return Request{
		Channel:   c.ChannelName(),
		Edition:   c.editionName(),
		Mode:      "debug",
		CrateType: "bin",
		Code:      u.Code(),
	}
}

// ChannelName returns the release channel requests are sent with.
func (c *Client) ChannelName() string {
	if c.Channel != "" {
		return c.Channel
	}
	return "nightly"
}

func (c *Client) editionName() string {
	if c.Edition != "" {
		return c.Edition
	}
	return "2024"
}

// Execute compiles and runs u in a single attempt. A transport failure or a
// non-2xx status is returned as an error, never as a Result.
func (c *Client) Execute(ctx context.Context, u snippet.CompileUnit) (Result, error) {
	body, err := json.Marshal(c.NewRequest(u))
	if err != nil {
		return Result{}, fmt.Errorf("encoding request: %w", err)
	}

	url := c.URL
	if url == "" {
		url = DefaultURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}

	log := ctxlog.FromContext(ctx)
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()
	log.Debug("playground replied", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Result{}, &StatusError{StatusCode: resp.StatusCode, Body: string(msg)}
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("%w: decoding reply: %w", ErrTransport, err)
	}
	return res, nil
}
