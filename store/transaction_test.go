package store

import (
	"testing"

	"github.com/fedikit/fedicache/entities"
)

func bumpFollowers(by int64) func(entities.Entity) entities.Entity {
	return func(e entities.Entity) entities.Entity {
		a := *(e.(*entities.Account))
		a.FollowersCount += by
		return &a
	}
}

func TestTransaction_AppliesTransforms(t *testing.T) {
	t.Parallel()
	st := New()
	st.ImportOne(entities.TypeAccount, &entities.Account{ID: "a1", FollowersCount: 5})

	st.Transaction(Changes{
		entities.TypeAccount: {"a1": bumpFollowers(1)},
	})

	got, _ := st.Get(entities.TypeAccount, "a1")
	if n := got.(*entities.Account).FollowersCount; n != 6 {
		t.Fatalf("expected 6 followers, got %d", n)
	}
}

func TestTransaction_SkipsAbsentIDs(t *testing.T) {
	t.Parallel()
	st := New()

	// Neither the bucket nor the id exists; must be a silent no-op.
	st.Transaction(Changes{
		entities.TypeAccount: {"ghost": bumpFollowers(1)},
	})
	if st.Len(entities.TypeAccount) != 0 {
		t.Fatal("transaction must not create entities")
	}
}

func TestOptimisticMutate_RollbackRestoresPriorValues(t *testing.T) {
	t.Parallel()
	st := New()
	st.ImportOne(entities.TypeAccount, &entities.Account{ID: "a1", FollowersCount: 5})
	st.ImportOne(entities.TypeRelationship, &entities.Relationship{ID: "a1"})

	rb := st.OptimisticMutate(Changes{
		entities.TypeAccount: {"a1": bumpFollowers(1)},
		entities.TypeRelationship: {
			"a1": func(e entities.Entity) entities.Entity {
				r := *(e.(*entities.Relationship))
				r.Following = true
				return &r
			},
		},
	})

	got, _ := st.Get(entities.TypeAccount, "a1")
	if n := got.(*entities.Account).FollowersCount; n != 6 {
		t.Fatalf("forward mutation not applied, followers=%d", n)
	}

	rb.Rollback()

	got, _ = st.Get(entities.TypeAccount, "a1")
	if n := got.(*entities.Account).FollowersCount; n != 5 {
		t.Fatalf("rollback must restore followers to 5, got %d", n)
	}
	rel, _ := st.Get(entities.TypeRelationship, "a1")
	if rel.(*entities.Relationship).Following {
		t.Fatal("rollback must restore relationship flag")
	}
}

func TestOptimisticMutate_RollbackIdempotent(t *testing.T) {
	t.Parallel()
	st := New()
	st.ImportOne(entities.TypeAccount, &entities.Account{ID: "a1", FollowersCount: 5})

	rb := st.OptimisticMutate(Changes{
		entities.TypeAccount: {"a1": bumpFollowers(1)},
	})

	// A concurrent server refresh lands between mutation and rollback.
	st.ImportOne(entities.TypeAccount, &entities.Account{ID: "a1", FollowersCount: 9})

	rb.Rollback()
	rb.Rollback()

	got, _ := st.Get(entities.TypeAccount, "a1")
	if n := got.(*entities.Account).FollowersCount; n != 5 {
		t.Fatalf("expected snapshot value 5 after single rollback, got %d", n)
	}
}

func TestOptimisticMutate_RollbackSkipsRemovedEntities(t *testing.T) {
	t.Parallel()
	st := New()
	st.ImportOne(entities.TypeNotification, &entities.Notification{ID: "n1", Type: "follow"})

	rb := st.OptimisticMutate(Changes{
		entities.TypeNotification: {
			"n1": func(e entities.Entity) entities.Entity {
				n := *(e.(*entities.Notification))
				n.Type = "mention"
				return &n
			},
		},
	})

	st.Delete(entities.TypeNotification, "n1")
	rb.Rollback()

	if _, ok := st.Get(entities.TypeNotification, "n1"); ok {
		t.Fatal("rollback must not resurrect a removed entity")
	}
}

func TestOptimisticMutate_TransformDoesNotAliasSnapshot(t *testing.T) {
	t.Parallel()
	st := New()
	st.ImportOne(entities.TypeAccount, &entities.Account{ID: "a1", FollowersCount: 5})

	rb := st.OptimisticMutate(Changes{
		entities.TypeAccount: {"a1": bumpFollowers(1)},
	})

	// Mutate the live value again before rolling back; the snapshot must be
	// the pre-mutation value, not whatever the live pointer holds now.
	st.Transaction(Changes{
		entities.TypeAccount: {"a1": bumpFollowers(10)},
	})
	rb.Rollback()

	got, _ := st.Get(entities.TypeAccount, "a1")
	if n := got.(*entities.Account).FollowersCount; n != 5 {
		t.Fatalf("snapshot aliased live value: followers=%d", n)
	}
}
