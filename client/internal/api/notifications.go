package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fedikit/fedicache/internal/apierr"
	"github.com/fedikit/fedicache/entities"
)

// ListNotifications fetches one page of notifications, optionally filtered
// by type.
func ListNotifications(ctx context.Context, hc HTTPClient, baseURL string, types []string, cur *entities.Cursor) (entities.Page[*entities.Notification], error) {
	params := url.Values{}
	for _, t := range types {
		params.Add("types[]", t)
	}
	return getPage[*entities.Notification](ctx, hc, baseURL, "/api/v1/notifications", params, cur, "notifications")
}

// GetNotification retrieves a single notification by id.
func GetNotification(ctx context.Context, hc HTTPClient, baseURL, id string) (*entities.Notification, error) {
	n, err := getJSON[*entities.Notification](ctx, hc, fmt.Sprintf("%s/api/v1/notifications/%s", baseURL, id), "notification")
	if err != nil {
		return nil, err
	}
	if n.ID == "" {
		return nil, apierr.NewValidationError("notification", fmt.Errorf("empty id"))
	}
	return n, nil
}

// DismissNotification removes a single notification server-side.
func DismissNotification(ctx context.Context, hc HTTPClient, baseURL, id string) error {
	return postNoBody(ctx, hc, fmt.Sprintf("%s/api/v1/notifications/%s/dismiss", baseURL, id), "notification")
}
