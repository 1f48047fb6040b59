package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fedikit/fedicache/internal/apierr"
	"github.com/fedikit/fedicache/entities"
)

// GetAccount retrieves an account by id.
func GetAccount(ctx context.Context, hc HTTPClient, baseURL, id string) (*entities.Account, error) {
	acc, err := getJSON[*entities.Account](ctx, hc, fmt.Sprintf("%s/api/v1/accounts/%s", baseURL, id), "account")
	if err != nil {
		return nil, err
	}
	if acc.ID == "" {
		return nil, apierr.NewValidationError("account", fmt.Errorf("empty id"))
	}
	return acc, nil
}

// LookupAccount resolves an account by its webfinger handle before the id is
// known.
func LookupAccount(ctx context.Context, hc HTTPClient, baseURL, acct string) (*entities.Account, error) {
	q := url.Values{"acct": {acct}}
	acc, err := getJSON[*entities.Account](ctx, hc, baseURL+joinQuery("/api/v1/accounts/lookup", q), "account")
	if err != nil {
		return nil, err
	}
	if acc.ID == "" {
		return nil, apierr.NewValidationError("account", fmt.Errorf("empty id"))
	}
	return acc, nil
}

// Relationships fetches the authenticated account's relationships with every
// listed account in a single round trip.
func Relationships(ctx context.Context, hc HTTPClient, baseURL string, ids []string) ([]*entities.Relationship, error) {
	q := url.Values{}
	for _, id := range ids {
		q.Add("id[]", id)
	}
	rels, err := getJSON[[]*entities.Relationship](ctx, hc, baseURL+joinQuery("/api/v1/accounts/relationships", q), "relationships")
	if err != nil {
		return nil, err
	}
	if err := validateIDs("relationships", rels); err != nil {
		return nil, err
	}
	return rels, nil
}

// FollowAccount follows the account and returns the updated relationship.
func FollowAccount(ctx context.Context, hc HTTPClient, baseURL, id string) (*entities.Relationship, error) {
	return postJSON[*entities.Relationship](ctx, hc, fmt.Sprintf("%s/api/v1/accounts/%s/follow", baseURL, id), nil, "relationship")
}

// UnfollowAccount unfollows the account and returns the updated relationship.
func UnfollowAccount(ctx context.Context, hc HTTPClient, baseURL, id string) (*entities.Relationship, error) {
	return postJSON[*entities.Relationship](ctx, hc, fmt.Sprintf("%s/api/v1/accounts/%s/unfollow", baseURL, id), nil, "relationship")
}

// AccountStatuses lists an account's statuses, one page per call.
func AccountStatuses(ctx context.Context, hc HTTPClient, baseURL, id string, cur *entities.Cursor) (entities.Page[*entities.Status], error) {
	return getPage[*entities.Status](ctx, hc, baseURL, fmt.Sprintf("/api/v1/accounts/%s/statuses", id), nil, cur, "statuses")
}

// FollowRequests lists pending follow requests.
func FollowRequests(ctx context.Context, hc HTTPClient, baseURL string, cur *entities.Cursor) (entities.Page[*entities.Account], error) {
	return getPage[*entities.Account](ctx, hc, baseURL, "/api/v1/follow_requests", nil, cur, "follow_requests")
}

// AuthorizeFollowRequest accepts a pending follow request.
func AuthorizeFollowRequest(ctx context.Context, hc HTTPClient, baseURL, id string) error {
	return postNoBody(ctx, hc, fmt.Sprintf("%s/api/v1/follow_requests/%s/authorize", baseURL, id), "follow_request")
}

// RejectFollowRequest declines a pending follow request.
func RejectFollowRequest(ctx context.Context, hc HTTPClient, baseURL, id string) error {
	return postNoBody(ctx, hc, fmt.Sprintf("%s/api/v1/follow_requests/%s/reject", baseURL, id), "follow_request")
}
