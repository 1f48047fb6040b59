// Package api holds the per-resource request functions behind the client
// facade. Every function is stateless: it takes the http client and base URL
// explicitly, performs exactly one request, and classifies failures via
// apierr before returning.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/fedikit/fedicache/internal/apierr"
	"github.com/fedikit/fedicache/entities"
)

// HTTPClient is the subset of *http.Client the api layer needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const maxErrBody = 512

func do(ctx context.Context, hc HTTPClient, method, rawURL string, payload any, operation string) (*http.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, apierr.NewNetworkError(operation, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		_ = resp.Body.Close()
		return nil, apierr.NewHTTPError(resp.StatusCode, string(snippet), operation)
	}
	return resp, nil
}

// getJSON performs a GET and decodes a single entity-shaped response.
func getJSON[T any](ctx context.Context, hc HTTPClient, rawURL, resource string) (T, error) {
	var out T
	resp, err := do(ctx, hc, http.MethodGet, rawURL, nil, "get "+resource)
	if err != nil {
		return out, err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, apierr.NewValidationError(resource, err)
	}
	return out, nil
}

// postJSON performs a POST with an optional JSON payload and decodes the
// response entity.
func postJSON[T any](ctx context.Context, hc HTTPClient, rawURL string, payload any, resource string) (T, error) {
	var out T
	resp, err := do(ctx, hc, http.MethodPost, rawURL, payload, "post "+resource)
	if err != nil {
		return out, err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, apierr.NewValidationError(resource, err)
	}
	return out, nil
}

// postNoBody performs a POST and discards the response body.
func postNoBody(ctx context.Context, hc HTTPClient, rawURL, resource string) error {
	resp, err := do(ctx, hc, http.MethodPost, rawURL, nil, "post "+resource)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// del performs a DELETE and decodes the response entity if out is non-nil.
func del(ctx context.Context, hc HTTPClient, rawURL, resource string, out any) error {
	resp, err := do(ctx, hc, http.MethodDelete, rawURL, nil, "delete "+resource)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apierr.NewValidationError(resource, err)
	}
	return nil
}

// validateIDs rejects payloads whose entities carry no id, protecting the
// store from corrupt data.
func validateIDs[E entities.Entity](resource string, items []E) error {
	for _, e := range items {
		if e.EntityID() == "" {
			return apierr.NewValidationError(resource, fmt.Errorf("entity with empty id"))
		}
	}
	return nil
}

// joinQuery appends query parameters to a path.
func joinQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
