package implementation

import (
	"context"
	"errors"
	"time"

	"ai-academy-be/internal/entity"
	"ai-academy-be/internal/mapper"
	"ai-academy-be/internal/model"
	"ai-academy-be/internal/repository/contract"
	"ai-academy-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type AIInsightRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AIInsightMapper
}

func NewAIInsightRepository(db *gorm.DB) contract.AIInsightRepository {
	return &AIInsightRepositoryImpl{
		db:     db,
		mapper: mapper.NewAIInsightMapper(),
	}
}

func (r *AIInsightRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AIInsightRepositoryImpl) Create(ctx context.Context, insight *entity.AIInsight) error {
	m := r.mapper.ToModel(insight)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*insight = *r.mapper.ToEntity(m)
	return nil
}

func (r *AIInsightRepositoryImpl) Update(ctx context.Context, insight *entity.AIInsight) error {
	m := r.mapper.ToModel(insight)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*insight = *r.mapper.ToEntity(m)
	return nil
}

func (r *AIInsightRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.AIInsight{}, id).Error
}

func (r *AIInsightRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AIInsight, error) {
	var m model.AIInsight
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AIInsightRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AIInsight, error) {
	var models []*model.AIInsight
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *AIInsightRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.AIInsight{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore runs the novelty search in the database.
// Cosine distance in pgvector is 1 - cosine_similarity, so we compute
// 1 - (embedding_value <=> query_vector) and filter on the threshold.
func (r *AIInsightRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]*contract.ScoredInsight, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.AIInsight
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("ai_insights").
		Select("ai_insights.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("user_id = ?", userId).
		Where("deleted_at IS NULL").
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredInsight, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredInsight{
			Insight:    r.mapper.ToEntity(&res.AIInsight),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *AIInsightRepositoryImpl) TouchReferences(ctx context.Context, ids []uuid.UUID, referencedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.AIInsight{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"reference_count":    gorm.Expr("reference_count + 1"),
			"last_referenced_at": referencedAt,
		}).Error
}

func (r *AIInsightRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Unscoped().
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Delete(&model.AIInsight{})
	return res.RowsAffected, res.Error
}
