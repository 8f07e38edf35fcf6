package contract

import (
	"context"
	"time"

	"ai-academy-be/internal/entity"
	"ai-academy-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredInsight wraps a stored insight with its similarity against a query
// embedding (1.0 = identical).
type ScoredInsight struct {
	Insight    *entity.AIInsight
	Similarity float64
}

// AIInsightRepository is the insight store adapter: per-user partitioned,
// append-with-updates. Similarity search runs in the database via pgvector.
type AIInsightRepository interface {
	Create(ctx context.Context, insight *entity.AIInsight) error
	Update(ctx context.Context, insight *entity.AIInsight) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AIInsight, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AIInsight, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SearchSimilarWithScore returns the user's insights whose cosine
	// similarity against the query embedding is at least threshold, best
	// match first.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]*ScoredInsight, error)

	// TouchReferences bumps reference_count by exactly 1 and sets
	// last_referenced_at for every given insight. Required observable
	// side effect of prompt injection, not an optimization.
	TouchReferences(ctx context.Context, ids []uuid.UUID, referencedAt time.Time) error

	// DeleteExpired hard-removes deadline insights whose expiry elapsed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
