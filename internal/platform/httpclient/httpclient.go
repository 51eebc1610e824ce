package httpclient

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
)

const (
	DefaultTimeout = 5 * time.Second

	maxBody = 1 << 20
)

// Client envuelve *http.Client para adapters que hablan JSON con un servicio fijo.
type Client struct {
	http    *http.Client
	baseURL string
	headers map[string]string
}

type Option func(*Client)

// WithHeader agrega un header a todos los requests.
func WithHeader(k, v string) Option {
	return func(c *Client) {
		if strings.TrimSpace(k) != "" {
			c.headers[k] = v
		}
	}
}

// WithTransport permite inyectar un RoundTripper (tests).
func WithTransport(tr http.RoundTripper) Option {
	return func(c *Client) { c.http.Transport = tr }
}

func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		headers: map[string]string{},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// StatusError representa una respuesta no-2xx.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

// PostJSON envía in como JSON a path y decodifica la respuesta en out (si no es nil).
func (c *Client) PostJSON(ctx context.Context, path string, headers map[string]string, in, out any) error {
	if c == nil {
		return errors.New("httpclient: nil client")
	}

	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("httpclient: marshal: %w", err)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("httpclient: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: do: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("httpclient: unmarshal: %w", err)
	}
	return nil
}
