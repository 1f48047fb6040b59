package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fedikit/fedicache/internal/apierr"
	"github.com/fedikit/fedicache/entities"
)

func TestParseLink(t *testing.T) {
	t.Parallel()
	header := `<https://example.social/api/v1/timelines/home?max_id=100>; rel="next", ` +
		`<https://example.social/api/v1/timelines/home?min_id=200>; rel="prev"`

	next, prev := parseLink(header)
	if next == nil || next.Query != "max_id=100" {
		t.Fatalf("unexpected next cursor: %+v", next)
	}
	if prev == nil || prev.Query != "min_id=200" {
		t.Fatalf("unexpected prev cursor: %+v", prev)
	}

	next, prev = parseLink("")
	if next != nil || prev != nil {
		t.Fatal("empty header must yield nil cursors")
	}
}

func TestGetPage_CursorChaining(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.RawQuery {
		case "":
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/timelines/home?max_id=b>; rel="next"`, "http://"+r.Host))
			_ = json.NewEncoder(w).Encode([]*entities.Status{{ID: "a"}, {ID: "b"}})
		case "max_id=b":
			_ = json.NewEncoder(w).Encode([]*entities.Status{{ID: "c"}})
		default:
			t.Errorf("unexpected query %q", r.URL.RawQuery)
			http.Error(w, "bad query", http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	first, err := HomeTimeline(ctx, srv.Client(), srv.URL, nil)
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Items) != 2 || first.Items[0].ID != "a" {
		t.Fatalf("unexpected first page: %+v", first.Items)
	}
	if first.Next == nil {
		t.Fatal("expected next cursor")
	}

	second, err := HomeTimeline(ctx, srv.Client(), srv.URL, first.Next)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Items) != 1 || second.Items[0].ID != "c" {
		t.Fatalf("unexpected second page: %+v", second.Items)
	}
	if second.Next != nil {
		t.Fatal("last page must carry no next cursor")
	}
}

func TestGetPage_PartialAndTotalHeaders(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Partial", "true")
		w.Header().Set("X-Total-Count", "42")
		_ = json.NewEncoder(w).Encode([]*entities.Status{{ID: "s1"}})
	}))
	defer srv.Close()

	page, err := HomeTimeline(context.Background(), srv.Client(), srv.URL, nil)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !page.Partial {
		t.Fatal("X-Partial not honoured")
	}
	if page.Total == nil || *page.Total != 42 {
		t.Fatalf("X-Total-Count not honoured: %v", page.Total)
	}
}

func TestGetPage_EmptyIDRejected(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]*entities.Status{{ID: ""}})
	}))
	defer srv.Close()

	_, err := HomeTimeline(context.Background(), srv.Client(), srv.URL, nil)
	if !apierr.IsValidation(err) {
		t.Fatalf("expected validation error for empty-id item, got %v", err)
	}
}

func TestGetPage_MalformedBody(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	_, err := HomeTimeline(context.Background(), srv.Client(), srv.URL, nil)
	if !apierr.IsValidation(err) {
		t.Fatalf("expected validation error for malformed body, got %v", err)
	}
}

func TestGetPage_LocalParam(t *testing.T) {
	t.Parallel()
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]*entities.Status{})
	}))
	defer srv.Close()

	if _, err := PublicTimeline(context.Background(), srv.Client(), srv.URL, true, nil); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotQuery != "local=true" {
		t.Fatalf("expected local=true, got %q", gotQuery)
	}

	// A cursor overrides the params verbatim.
	cur := &entities.Cursor{Query: "max_id=9"}
	if _, err := PublicTimeline(context.Background(), srv.Client(), srv.URL, true, cur); err != nil {
		t.Fatalf("fetch with cursor: %v", err)
	}
	if gotQuery != "max_id=9" {
		t.Fatalf("cursor must override params, got %q", gotQuery)
	}
}
