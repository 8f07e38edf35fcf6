package contract

import (
	"context"
	"encoding/json"

	"ai-academy-be/internal/entity"
	"ai-academy-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CollectionRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Collection, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Collection, error)

	// FindMemberPayloads returns the raw typed payloads of every member of
	// the user's collection addressed by key (a collection id or an
	// implicit key like "favorites"). Missing collection yields an empty
	// slice, not an error.
	FindMemberPayloads(ctx context.Context, userId uuid.UUID, collectionKey string) ([]json.RawMessage, error)
}
