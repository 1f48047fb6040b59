package api

import (
	"fmt"
	"net/http"
)

// errRT simulates a transport-level failure: the request never reaches a
// server.
type errRT struct{}

func (errRT) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, fmt.Errorf("dial tcp: connection refused")
}

func errClient() *http.Client { return &http.Client{Transport: errRT{}} }
