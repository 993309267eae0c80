// Package integration contains tests that verify the import API's full
// handler wiring (router, middleware chain, issuer) against fakes for the
// object store and rate-limit counter.
package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/catalogops/import-pipeline/internal/auth/basicauth"
	"github.com/catalogops/import-pipeline/internal/auth/ratelimit"
	"github.com/catalogops/import-pipeline/internal/importapi/handler"
	"github.com/catalogops/import-pipeline/internal/importapi/issuer"
	"github.com/catalogops/import-pipeline/internal/importapi/router"
	"github.com/catalogops/import-pipeline/pkg/health"
)

type fakePresigner struct{}

func (fakePresigner) PresignedUpload(ctx context.Context, key, contentType string, ttl time.Duration) (*url.URL, error) {
	return url.Parse("https://storage.local/import-products/" + key + "?signature=abc")
}

type fakeCounter struct {
	counts map[string]int64
}

func (f *fakeCounter) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	if f.counts == nil {
		f.counts = make(map[string]int64)
	}
	f.counts[key]++
	return f.counts[key], nil
}

func newImportServer(t *testing.T, credentials map[string]string, rateLimit int) *httptest.Server {
	t.Helper()

	iss := issuer.New(fakePresigner{}, "uploaded/", "text/csv", 5*time.Minute)
	h := handler.New(iss, nil)
	gate := basicauth.NewGate(credentials)
	limiter := ratelimit.New(&fakeCounter{}, rateLimit, time.Minute)

	srv := httptest.NewServer(router.New(h, gate, limiter, health.NewChecker(), nil, 5*time.Second))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url, authorization string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestImportIssuesGrant(t *testing.T) {
	srv := newImportServer(t, map[string]string{"user": "pass"}, 100)

	resp := get(t, srv.URL+"/import?name=products.csv", "Basic dXNlcjpwYXNz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var grant struct {
		URL       string `json:"url"`
		Key       string `json:"key"`
		ExpiresIn int    `json:"expiresIn"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if grant.Key != "uploaded/products.csv" {
		t.Errorf("expected key uploaded/products.csv, got %q", grant.Key)
	}
	if grant.ExpiresIn != 300 {
		t.Errorf("expected expiresIn 300, got %d", grant.ExpiresIn)
	}
	if grant.URL == "" {
		t.Error("expected non-empty grant url")
	}
}

func TestImportMissingNameIs400(t *testing.T) {
	srv := newImportServer(t, map[string]string{"user": "pass"}, 100)

	resp := get(t, srv.URL+"/import", "Basic dXNlcjpwYXNz")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestImportWithoutCredentialIs401(t *testing.T) {
	srv := newImportServer(t, map[string]string{"user": "pass"}, 100)

	resp := get(t, srv.URL+"/import?name=products.csv", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestImportWrongPasswordIs403(t *testing.T) {
	srv := newImportServer(t, map[string]string{"user": "other"}, 100)

	resp := get(t, srv.URL+"/import?name=products.csv", "Basic dXNlcjpwYXNz")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
}

func TestImportRateLimited(t *testing.T) {
	srv := newImportServer(t, map[string]string{"user": "pass"}, 1)

	first := get(t, srv.URL+"/import?name=a.csv", "Basic dXNlcjpwYXNz")
	if first.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", first.StatusCode)
	}
	second := get(t, srv.URL+"/import?name=a.csv", "Basic dXNlcjpwYXNz")
	if second.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", second.StatusCode)
	}
}

func TestHealthWithoutCredential(t *testing.T) {
	srv := newImportServer(t, map[string]string{"user": "pass"}, 100)

	resp := get(t, srv.URL+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
