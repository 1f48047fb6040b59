// Package entities defines the normalized domain types shared by the REST
// client, the entity store and the streaming layer.
//
// Entities are plain records with a stable string id. No entity owns another:
// the wire format embeds related objects (a Status arrives with its Account
// inline), and Normalize splits those embeds into id references plus
// standalone entities before anything reaches the store.
package entities

import "time"

// EntityType names one bucket of the entity store.
type EntityType string

const (
	TypeAccount           EntityType = "accounts"
	TypeStatus            EntityType = "statuses"
	TypeRelationship      EntityType = "relationships"
	TypeNotification      EntityType = "notifications"
	TypeGroup             EntityType = "groups"
	TypeGroupRelationship EntityType = "group_relationships"
	TypeTag               EntityType = "tags"
)

// Entity is any domain object with a stable string id.
type Entity interface {
	EntityID() string
}

// Typed pairs an entity with its type for bulk import.
type Typed struct {
	Type   EntityType
	Entity Entity
}

// Account is a fediverse actor.
type Account struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Acct           string    `json:"acct"`
	DisplayName    string    `json:"display_name"`
	Note           string    `json:"note,omitempty"`
	URL            string    `json:"url,omitempty"`
	Avatar         string    `json:"avatar,omitempty"`
	Locked         bool      `json:"locked,omitempty"`
	Bot            bool      `json:"bot,omitempty"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
	StatusesCount  int64     `json:"statuses_count"`
	CreatedAt      time.Time `json:"created_at"`
}

func (a *Account) EntityID() string { return a.ID }

// Relationship describes how the authenticated account relates to another
// account. Its id equals the target account's id.
type Relationship struct {
	ID         string `json:"id"`
	Following  bool   `json:"following"`
	FollowedBy bool   `json:"followed_by"`
	Requested  bool   `json:"requested"`
	Blocking   bool   `json:"blocking"`
	Muting     bool   `json:"muting"`
	Note       string `json:"note,omitempty"`
}

func (r *Relationship) EntityID() string { return r.ID }

// Status is a post. On the wire it embeds its author and, for reblogs, the
// reblogged status; after Normalize only AccountID and ReblogID remain set.
type Status struct {
	ID              string     `json:"id"`
	AccountID       string     `json:"-"`
	Account         *Account   `json:"account,omitempty"`
	Content         string     `json:"content"`
	SpoilerText     string     `json:"spoiler_text,omitempty"`
	Visibility      string     `json:"visibility,omitempty"`
	InReplyToID     string     `json:"in_reply_to_id,omitempty"`
	ReblogID        string     `json:"-"`
	Reblog          *Status    `json:"reblog,omitempty"`
	Tags            []Tag      `json:"tags,omitempty"`
	RepliesCount    int64      `json:"replies_count"`
	ReblogsCount    int64      `json:"reblogs_count"`
	FavouritesCount int64      `json:"favourites_count"`
	Favourited      bool       `json:"favourited,omitempty"`
	Reblogged       bool       `json:"reblogged,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	EditedAt        *time.Time `json:"edited_at,omitempty"`

	// Deleted marks a tombstone left in place of a deleted status so
	// consumers can render a placeholder instead of a gap. Never set on
	// the wire.
	Deleted bool `json:"-"`
}

func (s *Status) EntityID() string { return s.ID }

// Notification is delivered with its actor and, when relevant, the subject
// status embedded; after Normalize only the id references remain.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	AccountID string    `json:"-"`
	Account   *Account  `json:"account,omitempty"`
	StatusID  string    `json:"-"`
	Status    *Status   `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) EntityID() string { return n.ID }

// Group is a Pleroma/Mastodon group entity.
type Group struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	Note         string    `json:"note,omitempty"`
	Locked       bool      `json:"locked,omitempty"`
	MembersCount int64     `json:"members_count"`
	CreatedAt    time.Time `json:"created_at"`
}

func (g *Group) EntityID() string { return g.ID }

// GroupRelationship describes the authenticated account's membership in a
// group. Its id equals the group's id.
type GroupRelationship struct {
	ID        string `json:"id"`
	Member    bool   `json:"member"`
	Requested bool   `json:"requested"`
	Role      string `json:"role,omitempty"`
}

func (gr *GroupRelationship) EntityID() string { return gr.ID }

// Tag is a hashtag. Its name doubles as its id.
type Tag struct {
	Name      string `json:"name"`
	URL       string `json:"url,omitempty"`
	Following bool   `json:"following,omitempty"`
}

func (t *Tag) EntityID() string { return t.Name }
