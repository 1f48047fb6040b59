package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fedikit/fedicache/entities"
)

func TestNew_PanicsOnEmptyBaseURL(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty baseURL")
		}
	}()
	New("", "token")
}

func TestClient_AuthAndUserAgentHeaders(t *testing.T) {
	t.Parallel()
	var gotAuth, gotUA, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotReqID = r.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode(&entities.Account{ID: "a1"})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-token", WithUserAgent("fedicache-test/1.0"))
	defer func() { _ = c.Close() }()

	if _, err := c.Accounts.Get(context.Background(), "a1"); err != nil {
		t.Fatalf("get account: %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("unexpected Authorization header %q", gotAuth)
	}
	if gotUA != "fedicache-test/1.0" {
		t.Fatalf("unexpected User-Agent %q", gotUA)
	}
	if gotReqID == "" {
		t.Fatal("expected a generated X-Request-ID header")
	}
}

func TestClient_AnonymousWithoutToken(t *testing.T) {
	t.Parallel()
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		_ = json.NewEncoder(w).Encode([]*entities.Status{})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	defer func() { _ = c.Close() }()

	if _, err := c.Timelines.Public(context.Background(), false, nil); err != nil {
		t.Fatalf("public timeline: %v", err)
	}
	if sawAuth {
		t.Fatal("anonymous client must not send an Authorization header")
	}
}

func TestClient_TimelineCursorChaining(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery == "" {
			w.Header().Set("Link", `<http://`+r.Host+`/api/v1/timelines/home?max_id=b>; rel="next"`)
			_ = json.NewEncoder(w).Encode([]*entities.Status{{ID: "a"}, {ID: "b"}})
			return
		}
		_ = json.NewEncoder(w).Encode([]*entities.Status{{ID: "c"}})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	defer func() { _ = c.Close() }()

	ctx := context.Background()
	first, err := c.Timelines.Home(ctx, nil)
	if err != nil || first.Next == nil {
		t.Fatalf("first page: %+v, err %v", first, err)
	}
	second, err := c.Timelines.Home(ctx, first.Next)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Items) != 1 || second.Items[0].ID != "c" || second.Next != nil {
		t.Fatalf("unexpected second page: %+v", second)
	}
}

func TestClient_CloseIdempotent(t *testing.T) {
	t.Parallel()
	c := New("http://example.invalid", "tok")
	if err := c.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	defer func() { _ = c.Close() }()

	_, err := c.Statuses.Get(context.Background(), "s1")
	if !IsRetryable(err) {
		t.Fatalf("429 must be retryable, got %v", err)
	}
	if IsUnauthorized(err) || IsForbidden(err) || IsNotFound(err) || IsValidation(err) {
		t.Fatalf("misclassified 429: %v", err)
	}
}
