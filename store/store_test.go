package store

import (
	"reflect"
	"testing"

	"github.com/fedikit/fedicache/entities"
)

func TestStore_ImportIdempotent(t *testing.T) {
	t.Parallel()
	st := New()

	acc := &entities.Account{ID: "a1", Acct: "alice@example.social"}
	st.ImportOne(entities.TypeAccount, acc)
	st.ImportOne(entities.TypeAccount, acc)
	st.Import(map[entities.EntityType][]entities.Entity{
		entities.TypeAccount: {acc},
	})

	if n := st.Len(entities.TypeAccount); n != 1 {
		t.Fatalf("expected 1 account after repeated imports, got %d", n)
	}
	got, ok := st.Get(entities.TypeAccount, "a1")
	if !ok || got.(*entities.Account).Acct != "alice@example.social" {
		t.Fatalf("unexpected entity: %v (ok=%v)", got, ok)
	}
}

func TestStore_ImportSplitsEmbeds(t *testing.T) {
	t.Parallel()
	st := New()

	st.ImportOne(entities.TypeStatus, &entities.Status{
		ID:      "s1",
		Account: &entities.Account{ID: "a1", Acct: "alice"},
	})

	got, ok := st.Get(entities.TypeStatus, "s1")
	if !ok {
		t.Fatal("status not stored")
	}
	if s := got.(*entities.Status); s.Account != nil || s.AccountID != "a1" {
		t.Fatalf("status stored denormalized: %+v", s)
	}
	if _, ok := st.Get(entities.TypeAccount, "a1"); !ok {
		t.Fatal("embedded account not stored standalone")
	}
}

func TestStore_LastWriteWins(t *testing.T) {
	t.Parallel()
	st := New()

	st.ImportOne(entities.TypeAccount, &entities.Account{ID: "a1", DisplayName: "old"})
	st.ImportOne(entities.TypeAccount, &entities.Account{ID: "a1", DisplayName: "new"})

	got, _ := st.Get(entities.TypeAccount, "a1")
	if got.(*entities.Account).DisplayName != "new" {
		t.Fatalf("expected last write to win, got %+v", got)
	}
	if st.Len(entities.TypeAccount) != 1 {
		t.Fatalf("duplicate entry after upsert")
	}
}

func TestStore_ImportSkipsEmptyID(t *testing.T) {
	t.Parallel()
	st := New()
	st.ImportOne(entities.TypeAccount, &entities.Account{})
	if st.Len(entities.TypeAccount) != 0 {
		t.Fatal("entity with empty id must not be stored")
	}
}

func TestStore_GetMany(t *testing.T) {
	t.Parallel()
	st := New()
	st.ImportOne(entities.TypeStatus, &entities.Status{ID: "s1"})
	st.ImportOne(entities.TypeStatus, &entities.Status{ID: "s2"})

	got := st.GetMany(entities.TypeStatus, []string{"s1", "s2", "s3"})
	if len(got) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(got))
	}
	if _, ok := got["s3"]; ok {
		t.Fatal("absent id must not appear in result")
	}
}

func TestStore_FindInsertionOrder(t *testing.T) {
	t.Parallel()
	st := New()
	st.ImportOne(entities.TypeAccount, &entities.Account{ID: "a1", Acct: "dup"})
	st.ImportOne(entities.TypeAccount, &entities.Account{ID: "a2", Acct: "dup"})

	got, ok := st.Find(entities.TypeAccount, func(e entities.Entity) bool {
		return e.(*entities.Account).Acct == "dup"
	})
	if !ok || got.EntityID() != "a1" {
		t.Fatalf("expected first-inserted match a1, got %v (ok=%v)", got, ok)
	}

	if _, ok := st.Find(entities.TypeAccount, func(entities.Entity) bool { return false }); ok {
		t.Fatal("no-match predicate must report not found")
	}
}

func TestStore_MarkDeletedTombstonesStatus(t *testing.T) {
	t.Parallel()
	st := New()
	st.ImportOne(entities.TypeStatus, &entities.Status{ID: "s1", Content: "gone soon"})

	st.MarkDeleted(entities.TypeStatus, "s1")

	got, ok := st.Get(entities.TypeStatus, "s1")
	if !ok {
		t.Fatal("tombstoned status must stay resolvable")
	}
	s := got.(*entities.Status)
	if !s.Deleted || s.Content != "gone soon" {
		t.Fatalf("expected in-place tombstone, got %+v", s)
	}
}

func TestStore_MarkDeletedRemovesNonStatus(t *testing.T) {
	t.Parallel()
	st := New()
	st.ImportOne(entities.TypeNotification, &entities.Notification{ID: "n1"})

	st.MarkDeleted(entities.TypeNotification, "n1")

	if _, ok := st.Get(entities.TypeNotification, "n1"); ok {
		t.Fatal("non-status entity must be removed outright")
	}
}

func TestStore_Reset(t *testing.T) {
	t.Parallel()
	st := New()
	st.ImportOne(entities.TypeAccount, &entities.Account{ID: "a1"})
	st.ImportOne(entities.TypeStatus, &entities.Status{ID: "s1"})

	st.Reset()

	if st.Len(entities.TypeAccount)+st.Len(entities.TypeStatus) != 0 {
		t.Fatal("reset must drop every bucket")
	}
}

func TestMinifyPage_RoundTrip(t *testing.T) {
	t.Parallel()
	st := New()

	total := 2
	page := entities.Page[*entities.Status]{
		Items: []*entities.Status{
			{ID: "s1", Content: "one", Account: &entities.Account{ID: "a1"}},
			{ID: "s2", Content: "two"},
		},
		Next:    &entities.Cursor{Query: "max_id=s2"},
		Partial: true,
		Total:   &total,
	}

	min := MinifyPage(st, entities.TypeStatus, page)

	if !reflect.DeepEqual(min.Items, []string{"s1", "s2"}) {
		t.Fatalf("unexpected id page: %v", min.Items)
	}
	if min.Next == nil || min.Next.Query != "max_id=s2" || !min.Partial || *min.Total != 2 {
		t.Fatalf("page metadata not carried: %+v", min)
	}

	// Resolving the ids back yields the full entities.
	for _, id := range min.Items {
		e, ok := st.Get(entities.TypeStatus, id)
		if !ok {
			t.Fatalf("minified entity %s missing from store", id)
		}
		if e.(*entities.Status).Content == "" {
			t.Fatalf("entity %s lost its payload", id)
		}
	}
	if _, ok := st.Get(entities.TypeAccount, "a1"); !ok {
		t.Fatal("embedded account not imported during minify")
	}
}

func TestMinifyPageFunc_Projection(t *testing.T) {
	t.Parallel()
	st := New()

	page := entities.Page[*entities.Account]{
		Items: []*entities.Account{{ID: "a1", Acct: "alice"}, {ID: "a2", Acct: "bob"}},
	}
	min := MinifyPageFunc(st, entities.TypeAccount, page, func(a *entities.Account) string { return a.Acct })
	if !reflect.DeepEqual(min.Items, []string{"alice", "bob"}) {
		t.Fatalf("unexpected projection: %v", min.Items)
	}
	if st.Len(entities.TypeAccount) != 2 {
		t.Fatal("projection must still import full entities")
	}
}
