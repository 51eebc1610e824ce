package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newIdentityServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != verifyPath || r.Header.Get(apiKeyHeader) != "secret" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		var in struct {
			Token string `json:"token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)

		switch in.Token {
		case "good":
			_ = json.NewEncoder(w).Encode(map[string]string{"user_id": " user-1 ", "email": "a@b.c"})
		case "anonymous":
			_ = json.NewEncoder(w).Encode(map[string]string{})
		case "broken":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.Error(w, "nope", http.StatusUnauthorized)
		}
	}))
}

func TestVerifier(t *testing.T) {
	srv := newIdentityServer(t)
	defer srv.Close()

	v, err := NewVerifier(Config{BaseURL: srv.URL, APIKey: "secret"})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	ctx := context.Background()

	claims, err := v.Verify(ctx, "good")
	if err != nil || claims.UserID != "user-1" || claims.Email != "a@b.c" {
		t.Fatalf("claims=%+v err=%v", claims, err)
	}

	if _, err := v.Verify(ctx, "expired"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := v.Verify(ctx, "broken"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if _, err := v.Verify(ctx, "anonymous"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream for missing user_id, got %v", err)
	}
	if _, err := v.Verify(ctx, "  "); !errors.Is(err, ErrTokenEmpty) {
		t.Fatalf("expected ErrTokenEmpty, got %v", err)
	}
}

func TestNewVerifier_Validation(t *testing.T) {
	if _, err := NewVerifier(Config{BaseURL: "http://auth"}); err == nil {
		t.Fatalf("expected error without api key")
	}
	if _, err := NewVerifier(Config{BaseURL: "::bad", APIKey: "k"}); err == nil {
		t.Fatalf("expected error for bad url")
	}
}
