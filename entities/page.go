package entities

// Cursor is an opaque pagination token: the raw query fragment identifying
// the adjacent page. Cursors are plain values, safe to serialize and to hold
// across sessions; fetching a page is a stateless call taking a cursor rather
// than a captured closure.
type Cursor struct {
	Query string
}

// Page is one page of a cursor-paginated listing. A nil Prev/Next means no
// further page exists in that direction. Partial signals the server returned
// an incomplete page and the caller should poll again.
type Page[T any] struct {
	Items   []T
	Prev    *Cursor
	Next    *Cursor
	Partial bool
	Total   *int
}

// MapPage applies fn to every item, preserving cursors, Partial and Total.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := Page[U]{Prev: p.Prev, Next: p.Next, Partial: p.Partial, Total: p.Total}
	if len(p.Items) > 0 {
		out.Items = make([]U, len(p.Items))
		for i, it := range p.Items {
			out.Items[i] = fn(it)
		}
	}
	return out
}
