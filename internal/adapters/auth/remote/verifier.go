package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-wellness/internal/platform/httpclient"
	"pet-wellness/internal/ports/auth"
)

var (
	ErrTokenEmpty   = errors.New("token is empty")
	ErrUnauthorized = errors.New("token rejected")
	ErrUpstream     = errors.New("auth upstream error")
)

const (
	verifyPath    = "/v1/tokens/verify"
	apiKeyHeader  = "X-Api-Key"
	verifyTimeout = 5 * time.Second
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Verifier implementa auth.AuthVerifier contra un servicio de identidad HTTP.
type Verifier struct {
	client *httpclient.Client
}

var _ auth.AuthVerifier = (*Verifier)(nil)

func NewVerifier(cfg Config, opts ...httpclient.Option) (*Verifier, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("auth verifier: api key is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = verifyTimeout
	}
	opts = append([]httpclient.Option{httpclient.WithHeader(apiKeyHeader, strings.TrimSpace(cfg.APIKey))}, opts...)

	c, err := httpclient.New(cfg.BaseURL, timeout, opts...)
	if err != nil {
		return nil, fmt.Errorf("auth verifier: %w", err)
	}
	return &Verifier{client: c}, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var out struct {
		UserID   string `json:"user_id"`
		Email    string `json:"email"`
		TenantID string `json:"tenant_id"`
	}
	err := v.client.PostJSON(ctx, verifyPath,
		map[string]string{"Authorization": "Bearer " + token},
		map[string]string{"token": token},
		&out,
	)

	var se *httpclient.StatusError
	switch {
	case errors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden):
		return auth.Claims{}, ErrUnauthorized
	case err != nil:
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	uid := strings.TrimSpace(out.UserID)
	if uid == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing user_id", ErrUpstream)
	}
	return auth.Claims{
		UserID:   uid,
		Email:    strings.TrimSpace(out.Email),
		TenantID: strings.TrimSpace(out.TenantID),
	}, nil
}
