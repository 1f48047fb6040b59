package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fedikit/fedicache/internal/apierr"
	"github.com/fedikit/fedicache/entities"
)

// GetGroup retrieves a group by id.
func GetGroup(ctx context.Context, hc HTTPClient, baseURL, id string) (*entities.Group, error) {
	g, err := getJSON[*entities.Group](ctx, hc, fmt.Sprintf("%s/api/v1/groups/%s", baseURL, id), "group")
	if err != nil {
		return nil, err
	}
	if g.ID == "" {
		return nil, apierr.NewValidationError("group", fmt.Errorf("empty id"))
	}
	return g, nil
}

// ListGroups fetches one page of the authenticated account's groups.
func ListGroups(ctx context.Context, hc HTTPClient, baseURL string, cur *entities.Cursor) (entities.Page[*entities.Group], error) {
	return getPage[*entities.Group](ctx, hc, baseURL, "/api/v1/groups", nil, cur, "groups")
}

// GroupRelationships fetches membership relationships for every listed group
// in a single round trip.
func GroupRelationships(ctx context.Context, hc HTTPClient, baseURL string, ids []string) ([]*entities.GroupRelationship, error) {
	q := url.Values{}
	for _, id := range ids {
		q.Add("id[]", id)
	}
	rels, err := getJSON[[]*entities.GroupRelationship](ctx, hc, baseURL+joinQuery("/api/v1/groups/relationships", q), "group_relationships")
	if err != nil {
		return nil, err
	}
	if err := validateIDs("group_relationships", rels); err != nil {
		return nil, err
	}
	return rels, nil
}

// JoinGroup joins the group and returns the updated relationship.
func JoinGroup(ctx context.Context, hc HTTPClient, baseURL, id string) (*entities.GroupRelationship, error) {
	return postJSON[*entities.GroupRelationship](ctx, hc, fmt.Sprintf("%s/api/v1/groups/%s/join", baseURL, id), nil, "group_relationship")
}

// LeaveGroup leaves the group and returns the updated relationship.
func LeaveGroup(ctx context.Context, hc HTTPClient, baseURL, id string) (*entities.GroupRelationship, error) {
	return postJSON[*entities.GroupRelationship](ctx, hc, fmt.Sprintf("%s/api/v1/groups/%s/leave", baseURL, id), nil, "group_relationship")
}
