// Package marketapi is the authenticated REST client for the marketplace
// backend. Every request carries the current session token as a bearer
// credential; failures come back as *domain.HTTPError and are never retried.
package marketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atongani/market-client/internal/api/metrics"
	"github.com/atongani/market-client/internal/core/domain"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultLoginPath = "/api/auth/login/"
	maxPayload       = 1 << 20
)

// TokenSource yields the current session token, or "" when logged out.
type TokenSource interface {
	Token() string
}

// Config captures the settings of a Client.
type Config struct {
	BaseURL   string
	LoginPath string
	Timeout   time.Duration
	// HTTPClient overrides the default client; its Timeout is left untouched.
	HTTPClient *http.Client
}

// Client issues requests against the marketplace backend.
type Client struct {
	baseURL   *url.URL
	loginPath string
	http      *http.Client
	tokens    TokenSource
	log       zerolog.Logger
}

// New returns a Client for cfg.BaseURL reading tokens from tokens.
func New(cfg Config, tokens TokenSource, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("marketapi: invalid base url %q", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = defaultLoginPath
	}

	return &Client{
		baseURL:   base,
		loginPath: loginPath,
		http:      hc,
		tokens:    tokens,
		log:       log,
	}, nil
}

// Do sends a request to path and decodes a JSON response into out (which may
// be nil). route is the endpoint template used for metrics.
func (c *Client) Do(ctx context.Context, method, route, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.APIRequestDuration.WithLabelValues(route, "error").Observe(time.Since(start).Seconds())
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("backend request failed")
		return fmt.Errorf("%s %s: %w: %v", method, path, domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	metrics.APIRequestDuration.WithLabelValues(route, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("request_id", req.Header.Get("X-Request-ID")).
		Dur("elapsed", time.Since(start)).
		Msg("backend request")

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w: %v", method, path, domain.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.HTTPError{
			StatusCode: resp.StatusCode,
			Payload:    payload,
			Problem:    decodeProblem(payload),
		}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// decodeProblem classifies an error payload. It returns nil when the
// payload matches none of the known shapes.
func decodeProblem(payload []byte) domain.Problem {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil
	}

	switch payload[0] {
	case '"':
		var s string
		if json.Unmarshal(payload, &s) == nil && s != "" {
			return domain.MessageProblem(s)
		}
	case '[':
		if msgs := messagesOf(payload); len(msgs) > 0 {
			return domain.MessageProblem(strings.Join(msgs, " "))
		}
	case '{':
		return decodeObjectProblem(payload)
	}
	return nil
}

// decodeObjectProblem walks the object token by token so that field order
// matches the response body. A "detail" member wins over field errors.
func decodeObjectProblem(payload []byte) domain.Problem {
	dec := json.NewDecoder(bytes.NewReader(payload))
	if _, err := dec.Token(); err != nil {
		return nil
	}

	var fields domain.FieldProblem
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil
		}

		if key == "detail" {
			var s string
			if json.Unmarshal(raw, &s) == nil && s != "" {
				return domain.MessageProblem(s)
			}
		}
		if msgs := messagesOf(raw); len(msgs) > 0 {
			fields = append(fields, domain.FieldError{Field: key, Messages: msgs})
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func messagesOf(raw json.RawMessage) []string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var list []json.RawMessage
	if json.Unmarshal(raw, &list) != nil {
		return nil
	}
	var out []string
	for _, item := range list {
		if json.Unmarshal(item, &s) == nil && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// isHTTPStatus reports whether err is an HTTPError with the given code.
func isHTTPStatus(err error, code int) bool {
	var he *domain.HTTPError
	return errors.As(err, &he) && he.StatusCode == code
}

// Ping reports whether the backend answers at all. Any response below 500
// counts as reachable; authentication is not checked.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping: %w: %v", domain.ErrTransport, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayload))
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return &domain.HTTPError{StatusCode: resp.StatusCode}
	}
	return nil
}
