package insight

import (
	"context"
	"fmt"
	"time"

	"ai-academy-be/internal/constant"
	"ai-academy-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// Searcher is the similarity lookup the novelty check runs against. The store
// adapter implements it over pgvector.
type Searcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]SimilarInsight, error)
}

const (
	noveltySearchAttempts = 3
	noveltyRetryBaseDelay = 200 * time.Millisecond
)

// NoveltyChecker classifies an extracted candidate against the user's stored
// insights: save when nothing close exists, skip when a near-duplicate does,
// merge when the top hit overlaps without being identical.
type NoveltyChecker struct {
	searcher Searcher
	logger   logger.ILogger
}

func NewNoveltyChecker(searcher Searcher, log logger.ILogger) *NoveltyChecker {
	return &NoveltyChecker{
		searcher: searcher,
		logger:   log,
	}
}

// Check runs the banded novelty decision for one candidate embedding.
// Only the single highest-similarity hit ever becomes a merge target.
func (c *NoveltyChecker) Check(ctx context.Context, userId uuid.UUID, embedding []float32) (*NoveltyResult, error) {
	hits, err := c.searchWithRetry(ctx, userId, embedding)
	if err != nil {
		return nil, fmt.Errorf("novelty search: %w", err)
	}

	if len(hits) == 0 {
		return &NoveltyResult{
			IsNovel: true,
			Action:  constant.NoveltyActionSave,
		}, nil
	}

	top := hits[0]
	result := &NoveltyResult{
		SimilarInsights: hits,
	}

	switch {
	case top.Similarity >= constant.SimilarityDuplicateThreshold:
		result.Action = constant.NoveltyActionSkip
		result.Target = &top
	case top.Similarity >= constant.SimilarityMergeThreshold:
		result.Action = constant.NoveltyActionMerge
		result.Target = &top
	default:
		result.IsNovel = true
		result.Action = constant.NoveltyActionSave
	}

	return result, nil
}

// searchWithRetry retries the similarity search with backoff. A transient
// store failure must not silently turn a duplicate into a save, so giving up
// surfaces an error instead of an empty hit list.
func (c *NoveltyChecker) searchWithRetry(ctx context.Context, userId uuid.UUID, embedding []float32) ([]SimilarInsight, error) {
	var lastErr error
	for attempt := 0; attempt < noveltySearchAttempts; attempt++ {
		if attempt > 0 {
			delay := noveltyRetryBaseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		hits, err := c.searcher.SearchSimilar(ctx, embedding, constant.NoveltySearchLimit, userId, constant.SimilarityNoveltyCheckRadius)
		if err == nil {
			return hits, nil
		}

		lastErr = err
		c.logger.Warn("insight.novelty", "similarity search failed, retrying", map[string]interface{}{
			"attempt": attempt + 1,
			"userId":  userId.String(),
			"error":   err.Error(),
		})
	}
	return nil, lastErr
}
