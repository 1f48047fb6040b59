// Package streaming consumes the server's live event channel and merges
// incoming entity notices into the same caches the paginated fetchers
// populate. Events of one channel are applied strictly in receipt order;
// feed insertions dedupe by id, so replays after a reconnect collapse.
package streaming

import (
	"encoding/json"
	"fmt"

	"github.com/fedikit/fedicache/entities"
)

// Op is the operation carried by a stream event.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event is one server-pushed entity notice. For create/update the payload
// is the full entity; for delete it is the bare id.
type Event struct {
	Op         Op                  `json:"op"`
	EntityType entities.EntityType `json:"entityType"`
	Payload    json.RawMessage     `json:"payload"`
}

// decodeEntity unmarshals a create/update payload into its concrete type.
func decodeEntity(typ entities.EntityType, raw json.RawMessage) (entities.Entity, error) {
	var e entities.Entity
	switch typ {
	case entities.TypeAccount:
		e = &entities.Account{}
	case entities.TypeStatus:
		e = &entities.Status{}
	case entities.TypeRelationship:
		e = &entities.Relationship{}
	case entities.TypeNotification:
		e = &entities.Notification{}
	case entities.TypeGroup:
		e = &entities.Group{}
	case entities.TypeGroupRelationship:
		e = &entities.GroupRelationship{}
	case entities.TypeTag:
		e = &entities.Tag{}
	default:
		return nil, fmt.Errorf("unknown entity type %q", typ)
	}
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, err
	}
	if e.EntityID() == "" {
		return nil, fmt.Errorf("%s event with empty id", typ)
	}
	return e, nil
}

// decodeDeleteID unmarshals a delete payload: either a bare id string or an
// object carrying an "id" field.
func decodeDeleteID(raw json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil && id != "" {
		return id, nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", err
	}
	if obj.ID == "" {
		return "", fmt.Errorf("delete event with empty id")
	}
	return obj.ID, nil
}
