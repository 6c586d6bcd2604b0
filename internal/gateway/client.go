// Package gateway is the remote data gateway: typed JSON calls against the
// platform REST API, cookie credentials on every request, anti-forgery echo
// on state-changing methods.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/oklog/ulid/v2"

	"smartorder/pkg/logger"
)

const (
	// DefaultCSRFCookie is the cookie whose value is echoed back as the
	// X-CSRF-Token header on state-changing calls.
	DefaultCSRFCookie = "csrf_token"
	csrfHeader        = "X-CSRF-Token"
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	CSRFCookie string // defaults to DefaultCSRFCookie

	// OnSessionExpired is the 401 side effect: the browser build navigated
	// to the root path; the console injects its own teardown here. Invoked
	// exactly once per 401 response, before the typed error is returned.
	OnSessionExpired func(message string)

	Log *logger.Logger
}

// Client performs the HTTP calls. There is no retry, no timeout and no
// cancellation beyond the caller's context (the UI's only backpressure is a
// disabled saving state).
type Client struct {
	base           *url.URL
	http           *http.Client
	csrfCookie     string
	sessionExpired func(message string)
	log            *logger.Logger
}

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("gateway base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("gateway base url %q: scheme and host required", cfg.BaseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	csrf := cfg.CSRFCookie
	if csrf == "" {
		csrf = DefaultCSRFCookie
	}
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		base:           base,
		http:           &http.Client{Jar: jar},
		csrfCookie:     csrf,
		sessionExpired: cfg.OnSessionExpired,
		log:            log,
	}, nil
}

// SetCookie seeds a cookie into the jar for the gateway's host. The console
// uses it to install a session issued out of band.
func (c *Client) SetCookie(name, value string) {
	c.http.Jar.SetCookies(c.base, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
}

func (c *Client) csrfToken() string {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == c.csrfCookie {
			return ck.Value
		}
	}
	return ""
}

func stateChanging(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// Request performs one JSON call. A 204 or empty body resolves to nil. Any
// non-2xx status becomes a *APIError; a 401 additionally fires the
// session-expired hook before returning.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("request path %q: %w", path, err)
	}
	target := c.base.String() + ref.String()

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if stateChanging(method) {
		if token := c.csrfToken(); token != "" {
			req.Header.Set(csrfHeader, token)
		}
	}

	reqID := ulid.Make().String()
	c.log.Debugw("gateway request", "req_id", reqID, "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		msg := extractMessage(raw, resp.StatusCode)
		c.log.Warnw("session expired", "req_id", reqID, "path", path)
		if c.sessionExpired != nil {
			c.sessionExpired(msg)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg, Body: raw}

	case resp.StatusCode == http.StatusForbidden:
		return nil, &APIError{
			Status:    resp.StatusCode,
			Message:   extractMessage(raw, resp.StatusCode),
			Forbidden: true,
			Body:      raw,
		}

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.log.Warnw("gateway error", "req_id", reqID, "method", method, "path", path, "status", resp.StatusCode)
		return nil, &APIError{Status: resp.StatusCode, Message: extractMessage(raw, resp.StatusCode), Body: raw}
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}
