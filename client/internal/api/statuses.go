package api

import (
	"context"
	"fmt"

	"github.com/fedikit/fedicache/internal/apierr"
	"github.com/fedikit/fedicache/entities"
)

// CreateStatusRequest is the payload for POST /api/v1/statuses.
type CreateStatusRequest struct {
	Status      string `json:"status"`
	SpoilerText string `json:"spoiler_text,omitempty"`
	Visibility  string `json:"visibility,omitempty"`
	InReplyToID string `json:"in_reply_to_id,omitempty"`
}

// StatusContext holds the reply thread around a status.
type StatusContext struct {
	Ancestors   []*entities.Status `json:"ancestors"`
	Descendants []*entities.Status `json:"descendants"`
}

// GetStatus retrieves a status by id.
func GetStatus(ctx context.Context, hc HTTPClient, baseURL, id string) (*entities.Status, error) {
	st, err := getJSON[*entities.Status](ctx, hc, fmt.Sprintf("%s/api/v1/statuses/%s", baseURL, id), "status")
	if err != nil {
		return nil, err
	}
	if st.ID == "" {
		return nil, apierr.NewValidationError("status", fmt.Errorf("empty id"))
	}
	return st, nil
}

// CreateStatus publishes a new status.
func CreateStatus(ctx context.Context, hc HTTPClient, baseURL string, req CreateStatusRequest) (*entities.Status, error) {
	st, err := postJSON[*entities.Status](ctx, hc, baseURL+"/api/v1/statuses", req, "status")
	if err != nil {
		return nil, err
	}
	if st.ID == "" {
		return nil, apierr.NewValidationError("status", fmt.Errorf("empty id"))
	}
	return st, nil
}

// DeleteStatus removes a status.
func DeleteStatus(ctx context.Context, hc HTTPClient, baseURL, id string) error {
	return del(ctx, hc, fmt.Sprintf("%s/api/v1/statuses/%s", baseURL, id), "status", nil)
}

// Favourite marks a status as favourited and returns the updated status.
func Favourite(ctx context.Context, hc HTTPClient, baseURL, id string) (*entities.Status, error) {
	return postJSON[*entities.Status](ctx, hc, fmt.Sprintf("%s/api/v1/statuses/%s/favourite", baseURL, id), nil, "status")
}

// Unfavourite removes a favourite and returns the updated status.
func Unfavourite(ctx context.Context, hc HTTPClient, baseURL, id string) (*entities.Status, error) {
	return postJSON[*entities.Status](ctx, hc, fmt.Sprintf("%s/api/v1/statuses/%s/unfavourite", baseURL, id), nil, "status")
}

// GetStatusContext retrieves ancestors and descendants of a status.
func GetStatusContext(ctx context.Context, hc HTTPClient, baseURL, id string) (*StatusContext, error) {
	return getJSON[*StatusContext](ctx, hc, fmt.Sprintf("%s/api/v1/statuses/%s/context", baseURL, id), "status context")
}
