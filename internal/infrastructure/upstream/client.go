// Package upstream is the HTTP client for the RealSpark platform API. It is
// a faithful forwarder: upstream statuses and bodies pass through verbatim,
// and failures keep their raw response body for later normalization.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/realspark/console-gateway/internal/core/domain"
	"github.com/realspark/console-gateway/internal/core/ports"
)

const maxErrorBody = 64 << 10

// Error is a non-2xx upstream reply. The raw body is retained so the
// notification relay can extract whichever message shape the backend used.
type Error struct {
	Status int
	Body   []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream returned %d", e.Status)
}

// ResponseBody returns the raw upstream error body.
func (e *Error) ResponseBody() []byte { return e.Body }

// StatusCode returns the upstream HTTP status.
func (e *Error) StatusCode() int { return e.Status }

// Client talks to the platform API.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "upstream").Logger(),
	}
}

type loginPayload struct {
	Token     string       `json:"token"`
	User      *domain.User `json:"user"`
	Role      string       `json:"role"`
	ExpiresAt string       `json:"expires_at"`
}

// loginEnvelope tolerates both observed success shapes: the flat
// {token,user,...} body and the nested {data:{token,user,...}} body.
type loginEnvelope struct {
	loginPayload
	Data *loginPayload `json:"data"`
}

// Login performs the credential exchange. A non-2xx reply comes back as
// *Error with the body intact; this client never rewrites upstream failures.
func (c *Client) Login(ctx context.Context, identifier, password string) (*ports.LoginResult, error) {
	reqBody, err := json.Marshal(map[string]string{
		"identifier": identifier,
		"password":   password,
	})
	if err != nil {
		return nil, fmt.Errorf("encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, fmt.Errorf("read login response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Status: resp.StatusCode, Body: body}
	}

	var envelope loginEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}

	payload := envelope.loginPayload
	if payload.Token == "" && envelope.Data != nil {
		payload = *envelope.Data
	}

	return &ports.LoginResult{
		Token:     payload.Token,
		User:      payload.User,
		Role:      payload.Role,
		ExpiresAt: parseExpiry(payload.ExpiresAt),
	}, nil
}

// Forward relays a console feature call with the session's bearer token.
// Upstream replies of every status come back verbatim; only transport
// failures are errors.
func (c *Client) Forward(ctx context.Context, token, method, path string, query url.Values, body []byte) (*ports.UpstreamResponse, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	return &ports.UpstreamResponse{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   respBody,
	}, nil
}

func parseExpiry(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
