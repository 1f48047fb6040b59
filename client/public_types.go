package client

import "github.com/fedikit/fedicache/client/internal/api"

// Public type aliases so SDK consumers can import only the client package
// for request payloads.
type (
	CreateStatusRequest = api.CreateStatusRequest
	StatusContext       = api.StatusContext
)
