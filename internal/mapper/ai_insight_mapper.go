package mapper

import (
	"time"

	"ai-academy-be/internal/entity"
	"ai-academy-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type AIInsightMapper struct{}

func NewAIInsightMapper() *AIInsightMapper {
	return &AIInsightMapper{}
}

func (m *AIInsightMapper) ToEntity(e *model.AIInsight) *entity.AIInsight {
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

	return &entity.AIInsight{
		Id:                   e.Id,
		UserId:               e.UserId,
		Insight:              e.Insight,
		Category:             e.Category,
		Confidence:           e.Confidence,
		SourceAgent:          e.SourceAgent,
		SourceConversationId: e.SourceConversationId,
		EmbeddingValue:       e.EmbeddingValue.Slice(),
		ExtractedAt:          e.ExtractedAt,
		LastReferencedAt:     e.LastReferencedAt,
		ReferenceCount:       e.ReferenceCount,
		IsValidated:          e.IsValidated,
		ExpiresAt:            e.ExpiresAt,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            updatedAt,
		DeletedAt:            deletedAt,
		IsDeleted:            e.DeletedAt.Valid,
	}
}

func (m *AIInsightMapper) ToModel(e *entity.AIInsight) *model.AIInsight {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.AIInsight{
		Id:                   e.Id,
		UserId:               e.UserId,
		Insight:              e.Insight,
		Category:             e.Category,
		Confidence:           e.Confidence,
		SourceAgent:          e.SourceAgent,
		SourceConversationId: e.SourceConversationId,
		EmbeddingValue:       pgvector.NewVector(e.EmbeddingValue),
		ExtractedAt:          e.ExtractedAt,
		LastReferencedAt:     e.LastReferencedAt,
		ReferenceCount:       e.ReferenceCount,
		IsValidated:          e.IsValidated,
		ExpiresAt:            e.ExpiresAt,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            updatedAt,
		DeletedAt:            deletedAt,
	}
}

func (m *AIInsightMapper) ToEntities(insights []*model.AIInsight) []*entity.AIInsight {
	entities := make([]*entity.AIInsight, len(insights))
	for i, e := range insights {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
