package mapper

import (
	"encoding/json"
	"time"

	"ai-academy-be/internal/entity"
	"ai-academy-be/internal/model"
)

type CollectionMapper struct{}

func NewCollectionMapper() *CollectionMapper {
	return &CollectionMapper{}
}

func (m *CollectionMapper) ToEntity(e *model.Collection) *entity.Collection {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.Collection{
		Id:        e.Id,
		UserId:    e.UserId,
		Key:       e.Key,
		Name:      e.Name,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: e.DeletedAt.Valid,
	}
}

func (m *CollectionMapper) MemberToEntity(e *model.CollectionMember) *entity.CollectionMember {
	if e == nil {
		return nil
	}

	return &entity.CollectionMember{
		Id:           e.Id,
		CollectionId: e.CollectionId,
		Payload:      json.RawMessage(e.Payload),
		CreatedAt:    e.CreatedAt,
	}
}

func (m *CollectionMapper) MembersToEntities(members []*model.CollectionMember) []*entity.CollectionMember {
	entities := make([]*entity.CollectionMember, len(members))
	for i, e := range members {
		entities[i] = m.MemberToEntity(e)
	}
	return entities
}
