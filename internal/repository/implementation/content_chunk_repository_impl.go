package implementation

import (
	"context"

	"ai-academy-be/internal/entity"
	"ai-academy-be/internal/mapper"
	"ai-academy-be/internal/model"
	"ai-academy-be/internal/repository/contract"
	"ai-academy-be/pkg/scope"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ContentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContentChunkMapper
}

func NewContentChunkRepository(db *gorm.DB) contract.ContentChunkRepository {
	return &ContentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewContentChunkMapper(),
	}
}

func (r *ContentChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.ContentChunk) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.ContentChunk) error {
	models := make([]*model.ContentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

// SearchSimilarInScope applies the RAGScope as a hard SQL filter on top of
// vector similarity. The deny-all check is explicit and runs before any
// query; empty IN-lists are never trusted to fail closed.
func (r *ContentChunkRepositoryImpl) SearchSimilarInScope(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, ragScope *scope.RAGScope) ([]*contract.ScoredContentChunk, error) {
	if ragScope == nil || ragScope.IsDenyAll() {
		return []*contract.ScoredContentChunk{}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.ContentChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("content_chunks").
		Select("content_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("deleted_at IS NULL")

	switch {
	case ragScope.IsGlobalAcademy:
		query = query.Where("source = ?", entity.ChunkSourceCourse)
	case ragScope.IsAllConversations:
		query = query.Where("source = ? AND user_id = ?", entity.ChunkSourceConversation, userId)
	default:
		courseIds := ragScope.CourseIds()
		itemIds := ragScope.ItemIds()
		switch {
		case len(courseIds) > 0 && len(itemIds) > 0:
			query = query.Where("course_id IN ? OR item_id IN ?", courseIds, itemIds)
		case len(courseIds) > 0:
			query = query.Where("course_id IN ?", courseIds)
		default:
			query = query.Where("item_id IN ?", itemIds)
		}
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredContentChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredContentChunk{
			Chunk:      r.mapper.ToEntity(&res.ContentChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
