package store

import "github.com/fedikit/fedicache/entities"

// MinifyPage imports every entity of page into st and returns an id-only
// page. Cursors, Partial and Total carry over unchanged; a nil cursor stays
// nil. Minification is a pure synchronous transform over an already
// successful response and cannot fail; fetch failures belong to the caller.
func MinifyPage[E entities.Entity](st *Store, typ entities.EntityType, page entities.Page[E]) entities.Page[string] {
	for _, e := range page.Items {
		st.ImportOne(typ, e)
	}
	return entities.MapPage(page, func(e E) string { return e.EntityID() })
}

// MinifyPageFunc is MinifyPage with a caller-supplied projection instead of
// the entity id. The side effect of importing every full entity is the same.
func MinifyPageFunc[E entities.Entity, K any](st *Store, typ entities.EntityType, page entities.Page[E], project func(E) K) entities.Page[K] {
	for _, e := range page.Items {
		st.ImportOne(typ, e)
	}
	return entities.MapPage(page, project)
}
