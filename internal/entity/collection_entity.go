package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Collection is a user-curated set of heterogeneous references. Implicit
// collections ("favorites", "watchlist") are rows with a well-known key,
// created lazily per user.
type Collection struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Key       string
	Name      string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// CollectionMember holds one typed payload inside a collection. The payload
// shape is owned by the collection service; this core only reads it through
// scope.ParseMemberPayload.
type CollectionMember struct {
	Id           uuid.UUID
	CollectionId uuid.UUID
	Payload      json.RawMessage
	CreatedAt    time.Time
}
