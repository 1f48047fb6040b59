package query

import (
	"context"

	"github.com/fedikit/fedicache/entities"
	"github.com/fedikit/fedicache/store"
)

// AccountWithRelationship is the read-time join of an account and the
// authenticated account's relationship with it. The join is recomputed on
// every call — relationships are fetched separately and never denormalized
// into the account record.
type AccountWithRelationship struct {
	Account      *entities.Account
	Relationship *entities.Relationship
}

// AccountsWithRelationships resolves ids to accounts already in the store
// and joins each with its relationship, batch-fetching the relationships not
// yet cached in a single call.
func AccountsWithRelationships(ctx context.Context, c *Cache, ids []string, fetch BatchFetchFunc[*entities.Relationship]) ([]AccountWithRelationship, error) {
	rels, err := FetchBatched(ctx, c, entities.TypeRelationship, ids, fetch, false)
	if err != nil {
		return nil, err
	}
	accounts := c.store.GetMany(entities.TypeAccount, ids)
	out := make([]AccountWithRelationship, 0, len(ids))
	for _, id := range ids {
		acc, ok := accounts[id].(*entities.Account)
		if !ok {
			continue
		}
		out = append(out, AccountWithRelationship{Account: acc, Relationship: rels[id]})
	}
	return out, nil
}

// Follow optimistically marks the account as followed — relationship flag up,
// follower count up — then runs call. On failure the exact prior values are
// restored before the error is returned; on success the server's
// relationship is imported.
func Follow(ctx context.Context, c *Cache, accountID string, call FetchFunc[*entities.Relationship]) (*entities.Relationship, error) {
	rb := c.store.OptimisticMutate(store.Changes{
		entities.TypeAccount: {
			accountID: func(e entities.Entity) entities.Entity {
				a := *(e.(*entities.Account))
				a.FollowersCount++
				return &a
			},
		},
		entities.TypeRelationship: {
			accountID: func(e entities.Entity) entities.Entity {
				r := *(e.(*entities.Relationship))
				r.Following = true
				r.Requested = true
				return &r
			},
		},
	})

	rel, err := call(ctx)
	if err != nil {
		rb.Rollback()
		return nil, err
	}
	c.store.ImportOne(entities.TypeRelationship, rel)
	mutationsTotal.WithLabelValues("follow").Inc()
	return rel, nil
}

// Unfollow is the inverse action: relationship flag down, follower count
// down (clamped at zero, matching the saturating server counter), with the
// same rollback-on-failure contract.
func Unfollow(ctx context.Context, c *Cache, accountID string, call FetchFunc[*entities.Relationship]) (*entities.Relationship, error) {
	rb := c.store.OptimisticMutate(store.Changes{
		entities.TypeAccount: {
			accountID: func(e entities.Entity) entities.Entity {
				a := *(e.(*entities.Account))
				if a.FollowersCount > 0 {
					a.FollowersCount--
				}
				return &a
			},
		},
		entities.TypeRelationship: {
			accountID: func(e entities.Entity) entities.Entity {
				r := *(e.(*entities.Relationship))
				r.Following = false
				r.Requested = false
				return &r
			},
		},
	})

	rel, err := call(ctx)
	if err != nil {
		rb.Rollback()
		return nil, err
	}
	c.store.ImportOne(entities.TypeRelationship, rel)
	mutationsTotal.WithLabelValues("unfollow").Inc()
	return rel, nil
}

// JoinGroup optimistically bumps the member count and membership flag, with
// rollback on failure.
func JoinGroup(ctx context.Context, c *Cache, groupID string, call FetchFunc[*entities.GroupRelationship]) (*entities.GroupRelationship, error) {
	rb := c.store.OptimisticMutate(store.Changes{
		entities.TypeGroup: {
			groupID: func(e entities.Entity) entities.Entity {
				g := *(e.(*entities.Group))
				g.MembersCount++
				return &g
			},
		},
		entities.TypeGroupRelationship: {
			groupID: func(e entities.Entity) entities.Entity {
				gr := *(e.(*entities.GroupRelationship))
				gr.Member = true
				return &gr
			},
		},
	})

	rel, err := call(ctx)
	if err != nil {
		rb.Rollback()
		return nil, err
	}
	c.store.ImportOne(entities.TypeGroupRelationship, rel)
	mutationsTotal.WithLabelValues("join_group").Inc()
	return rel, nil
}
