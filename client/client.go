// Package client is a typed REST client for Mastodon/Pleroma-compatible
// servers. It is the wire boundary of the SDK: every method performs exactly
// one request, list methods return cursor pages, and failures come back
// classified so the query layer can decide retry and redirect policy.
package client

import (
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Client is the API entry point. Resource groups hang off it so call sites
// read client.Accounts.Get, client.Timelines.Home, and so on.
type Client struct {
	baseURL   string
	http      *http.Client
	token     string
	userAgent string

	closedOnce uint32 // ensures Close is idempotent

	Accounts      *AccountsService
	Statuses      *StatusesService
	Timelines     *TimelinesService
	Notifications *NotificationsService
	Groups        *GroupsService
}

// New constructs a Client for the given instance. accessToken may be empty
// for endpoints that allow anonymous reads (public timelines).
func New(baseURL, accessToken string, opts ...Option) *Client {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}

	c := &Client{
		baseURL: baseURL,
		token:   accessToken,
		http:    &http.Client{Timeout: 30 * time.Second},
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}

	c.wrapTransport()

	c.Accounts = &AccountsService{c: c}
	c.Statuses = &StatusesService{c: c}
	c.Timelines = &TimelinesService{c: c}
	c.Notifications = &NotificationsService{c: c}
	c.Groups = &GroupsService{c: c}
	return c
}

// wrapTransport installs the auth/UA wrapper above whatever transport the
// options configured, so debug logging sees the final outgoing request.
func (c *Client) wrapTransport() {
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.http.Transport = &authTransport{base: base, token: c.token, userAgent: c.userAgent}
}

// authTransport adds the Authorization, User-Agent and X-Request-ID headers
// to every request without mutating the caller's request. The request id
// correlates debug dumps and server logs for one round trip.
type authTransport struct {
	base      http.RoundTripper
	token     string
	userAgent string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	if t.token != "" {
		cloned.Header.Set("Authorization", "Bearer "+t.token)
	}
	if t.userAgent != "" {
		cloned.Header.Set("User-Agent", t.userAgent)
	}
	if cloned.Header.Get("X-Request-ID") == "" {
		cloned.Header.Set("X-Request-ID", uuid.NewString())
	}
	return t.base.RoundTrip(cloned)
}

// BaseURL returns the configured instance URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Close releases client resources. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	c.http.CloseIdleConnections()
	return nil
}

// debugLoggingRequested checks if HTTP debug logging should be enabled via
// FEDICACHE_DEBUG=true or the generic DEBUG=true.
func debugLoggingRequested() bool {
	return os.Getenv("FEDICACHE_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
