package implementation

import (
	"context"
	"encoding/json"
	"errors"

	"ai-academy-be/internal/entity"
	"ai-academy-be/internal/mapper"
	"ai-academy-be/internal/model"
	"ai-academy-be/internal/repository/contract"
	"ai-academy-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CollectionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CollectionMapper
}

func NewCollectionRepository(db *gorm.DB) contract.CollectionRepository {
	return &CollectionRepositoryImpl{
		db:     db,
		mapper: mapper.NewCollectionMapper(),
	}
}

func (r *CollectionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CollectionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Collection, error) {
	var m model.Collection
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CollectionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Collection, error) {
	var models []*model.Collection
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Collection, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

// FindMemberPayloads resolves a collection by id or well-known key, always
// bounded to the requesting user, and returns its members' raw payloads.
// A missing collection is an empty result, not an error: an empty scope
// contribution is the safe reading of "nothing favorited yet".
func (r *CollectionRepositoryImpl) FindMemberPayloads(ctx context.Context, userId uuid.UUID, collectionKey string) ([]json.RawMessage, error) {
	query := r.db.WithContext(ctx).Model(&model.Collection{}).Where("user_id = ?", userId)

	if id, err := uuid.Parse(collectionKey); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("key = ?", collectionKey)
	}

	var collection model.Collection
	if err := query.First(&collection).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []json.RawMessage{}, nil
		}
		return nil, err
	}

	var members []*model.CollectionMember
	err := r.db.WithContext(ctx).
		Where("collection_id = ?", collection.Id).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}

	payloads := make([]json.RawMessage, len(members))
	for i, m := range members {
		payloads[i] = json.RawMessage(m.Payload)
	}
	return payloads, nil
}
