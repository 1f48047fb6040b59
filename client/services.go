package client

import (
	"context"

	"github.com/fedikit/fedicache/client/internal/api"
	"github.com/fedikit/fedicache/entities"
)

// Resource services delegate to the stateless functions in internal/api.
// Each method is one network request; list methods take an optional cursor
// and return the adjacent page exactly as the server advertised it.

// AccountsService covers accounts, relationships and follow requests.
type AccountsService struct{ c *Client }

// Get retrieves an account by id.
func (s *AccountsService) Get(ctx context.Context, id string) (*entities.Account, error) {
	return api.GetAccount(ctx, s.c.http, s.c.baseURL, id)
}

// Lookup resolves an account by webfinger handle ("user@example.social").
func (s *AccountsService) Lookup(ctx context.Context, acct string) (*entities.Account, error) {
	return api.LookupAccount(ctx, s.c.http, s.c.baseURL, acct)
}

// Relationships fetches relationships with all listed accounts in one call.
func (s *AccountsService) Relationships(ctx context.Context, ids []string) ([]*entities.Relationship, error) {
	return api.Relationships(ctx, s.c.http, s.c.baseURL, ids)
}

// Follow follows an account.
func (s *AccountsService) Follow(ctx context.Context, id string) (*entities.Relationship, error) {
	return api.FollowAccount(ctx, s.c.http, s.c.baseURL, id)
}

// Unfollow unfollows an account.
func (s *AccountsService) Unfollow(ctx context.Context, id string) (*entities.Relationship, error) {
	return api.UnfollowAccount(ctx, s.c.http, s.c.baseURL, id)
}

// Statuses lists an account's statuses.
func (s *AccountsService) Statuses(ctx context.Context, id string, cur *entities.Cursor) (entities.Page[*entities.Status], error) {
	return api.AccountStatuses(ctx, s.c.http, s.c.baseURL, id, cur)
}

// FollowRequests lists pending follow requests.
func (s *AccountsService) FollowRequests(ctx context.Context, cur *entities.Cursor) (entities.Page[*entities.Account], error) {
	return api.FollowRequests(ctx, s.c.http, s.c.baseURL, cur)
}

// AuthorizeFollowRequest accepts a pending follow request.
func (s *AccountsService) AuthorizeFollowRequest(ctx context.Context, id string) error {
	return api.AuthorizeFollowRequest(ctx, s.c.http, s.c.baseURL, id)
}

// RejectFollowRequest declines a pending follow request.
func (s *AccountsService) RejectFollowRequest(ctx context.Context, id string) error {
	return api.RejectFollowRequest(ctx, s.c.http, s.c.baseURL, id)
}

// StatusesService covers statuses and status actions.
type StatusesService struct{ c *Client }

// Get retrieves a status by id.
func (s *StatusesService) Get(ctx context.Context, id string) (*entities.Status, error) {
	return api.GetStatus(ctx, s.c.http, s.c.baseURL, id)
}

// Create publishes a new status.
func (s *StatusesService) Create(ctx context.Context, req CreateStatusRequest) (*entities.Status, error) {
	return api.CreateStatus(ctx, s.c.http, s.c.baseURL, req)
}

// Delete removes a status.
func (s *StatusesService) Delete(ctx context.Context, id string) error {
	return api.DeleteStatus(ctx, s.c.http, s.c.baseURL, id)
}

// Favourite favourites a status.
func (s *StatusesService) Favourite(ctx context.Context, id string) (*entities.Status, error) {
	return api.Favourite(ctx, s.c.http, s.c.baseURL, id)
}

// Unfavourite removes a favourite.
func (s *StatusesService) Unfavourite(ctx context.Context, id string) (*entities.Status, error) {
	return api.Unfavourite(ctx, s.c.http, s.c.baseURL, id)
}

// Context retrieves the reply thread around a status.
func (s *StatusesService) Context(ctx context.Context, id string) (*StatusContext, error) {
	return api.GetStatusContext(ctx, s.c.http, s.c.baseURL, id)
}

// TimelinesService covers feed reads.
type TimelinesService struct{ c *Client }

// Home fetches one page of the home feed.
func (s *TimelinesService) Home(ctx context.Context, cur *entities.Cursor) (entities.Page[*entities.Status], error) {
	return api.HomeTimeline(ctx, s.c.http, s.c.baseURL, cur)
}

// Public fetches one page of the public feed.
func (s *TimelinesService) Public(ctx context.Context, local bool, cur *entities.Cursor) (entities.Page[*entities.Status], error) {
	return api.PublicTimeline(ctx, s.c.http, s.c.baseURL, local, cur)
}

// Tag fetches one page of a hashtag feed.
func (s *TimelinesService) Tag(ctx context.Context, tag string, cur *entities.Cursor) (entities.Page[*entities.Status], error) {
	return api.TagTimeline(ctx, s.c.http, s.c.baseURL, tag, cur)
}

// NotificationsService covers notifications.
type NotificationsService struct{ c *Client }

// List fetches one page of notifications.
func (s *NotificationsService) List(ctx context.Context, types []string, cur *entities.Cursor) (entities.Page[*entities.Notification], error) {
	return api.ListNotifications(ctx, s.c.http, s.c.baseURL, types, cur)
}

// Get retrieves a notification by id.
func (s *NotificationsService) Get(ctx context.Context, id string) (*entities.Notification, error) {
	return api.GetNotification(ctx, s.c.http, s.c.baseURL, id)
}

// Dismiss removes a notification server-side.
func (s *NotificationsService) Dismiss(ctx context.Context, id string) error {
	return api.DismissNotification(ctx, s.c.http, s.c.baseURL, id)
}

// GroupsService covers groups and group membership.
type GroupsService struct{ c *Client }

// Get retrieves a group by id.
func (s *GroupsService) Get(ctx context.Context, id string) (*entities.Group, error) {
	return api.GetGroup(ctx, s.c.http, s.c.baseURL, id)
}

// List fetches one page of the account's groups.
func (s *GroupsService) List(ctx context.Context, cur *entities.Cursor) (entities.Page[*entities.Group], error) {
	return api.ListGroups(ctx, s.c.http, s.c.baseURL, cur)
}

// Relationships fetches membership state for all listed groups in one call.
func (s *GroupsService) Relationships(ctx context.Context, ids []string) ([]*entities.GroupRelationship, error) {
	return api.GroupRelationships(ctx, s.c.http, s.c.baseURL, ids)
}

// Join joins a group.
func (s *GroupsService) Join(ctx context.Context, id string) (*entities.GroupRelationship, error) {
	return api.JoinGroup(ctx, s.c.http, s.c.baseURL, id)
}

// Leave leaves a group.
func (s *GroupsService) Leave(ctx context.Context, id string) (*entities.GroupRelationship, error) {
	return api.LeaveGroup(ctx, s.c.http, s.c.baseURL, id)
}
