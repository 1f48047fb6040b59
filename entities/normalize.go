package entities

// Normalize returns a copy of e with embedded entities replaced by id
// references, plus the extracted entities, themselves normalized. The input
// is never mutated. Entities without embeds are returned as-is.
func Normalize(typ EntityType, e Entity) (Entity, []Typed) {
	switch v := e.(type) {
	case *Status:
		return normalizeStatus(v)
	case *Notification:
		return normalizeNotification(v)
	default:
		return e, nil
	}
}

func normalizeStatus(s *Status) (Entity, []Typed) {
	if s.Account == nil && s.Reblog == nil {
		return s, nil
	}
	cp := *s
	var nested []Typed
	if cp.Account != nil {
		cp.AccountID = cp.Account.ID
		nested = append(nested, Typed{TypeAccount, cp.Account})
		cp.Account = nil
	}
	if cp.Reblog != nil {
		cp.ReblogID = cp.Reblog.ID
		inner, more := normalizeStatus(cp.Reblog)
		nested = append(nested, Typed{TypeStatus, inner})
		nested = append(nested, more...)
		cp.Reblog = nil
	}
	return &cp, nested
}

func normalizeNotification(n *Notification) (Entity, []Typed) {
	if n.Account == nil && n.Status == nil {
		return n, nil
	}
	cp := *n
	var nested []Typed
	if cp.Account != nil {
		cp.AccountID = cp.Account.ID
		nested = append(nested, Typed{TypeAccount, cp.Account})
		cp.Account = nil
	}
	if cp.Status != nil {
		cp.StatusID = cp.Status.ID
		inner, more := normalizeStatus(cp.Status)
		nested = append(nested, Typed{TypeStatus, inner})
		nested = append(nested, more...)
		cp.Status = nil
	}
	return &cp, nested
}
