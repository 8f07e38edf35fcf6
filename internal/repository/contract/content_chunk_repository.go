package contract

import (
	"context"

	"ai-academy-be/internal/entity"
	"ai-academy-be/pkg/scope"

	"github.com/google/uuid"
)

// ScoredContentChunk wraps a retrieved chunk with its similarity score.
type ScoredContentChunk struct {
	Chunk      *entity.ContentChunk
	Similarity float64
}

type ContentChunkRepository interface {
	Create(ctx context.Context, chunk *entity.ContentChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.ContentChunk) error

	// SearchSimilarInScope retrieves chunks by embedding similarity,
	// bounded by the given RAGScope. A deny-all scope returns nothing
	// without touching the database.
	SearchSimilarInScope(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, ragScope *scope.RAGScope) ([]*ScoredContentChunk, error)
}
