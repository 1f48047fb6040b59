package api

import (
	"context"
	"net/url"

	"github.com/fedikit/fedicache/entities"
)

// HomeTimeline fetches one page of the authenticated account's home feed.
// The page may come back Partial while the server is still assembling the
// streamed feed; callers should poll again in that case.
func HomeTimeline(ctx context.Context, hc HTTPClient, baseURL string, cur *entities.Cursor) (entities.Page[*entities.Status], error) {
	return getPage[*entities.Status](ctx, hc, baseURL, "/api/v1/timelines/home", nil, cur, "home timeline")
}

// PublicTimeline fetches one page of the public feed. local limits it to the
// origin instance.
func PublicTimeline(ctx context.Context, hc HTTPClient, baseURL string, local bool, cur *entities.Cursor) (entities.Page[*entities.Status], error) {
	params := url.Values{}
	if local {
		params.Set("local", "true")
	}
	return getPage[*entities.Status](ctx, hc, baseURL, "/api/v1/timelines/public", params, cur, "public timeline")
}

// TagTimeline fetches one page of statuses carrying the hashtag.
func TagTimeline(ctx context.Context, hc HTTPClient, baseURL, tag string, cur *entities.Cursor) (entities.Page[*entities.Status], error) {
	return getPage[*entities.Status](ctx, hc, baseURL, "/api/v1/timelines/tag/"+url.PathEscape(tag), nil, cur, "tag timeline")
}
