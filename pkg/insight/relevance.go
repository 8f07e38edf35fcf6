package insight

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ai-academy-be/internal/constant"
	"ai-academy-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// Toucher records that insights were injected into a prompt. The store adapter
// implements it by bumping reference_count and last_referenced_at.
type Toucher interface {
	TouchReferences(ctx context.Context, ids []uuid.UUID, referencedAt time.Time) error
}

// RelevanceFormatter buckets retrieved insights into prompt-injection tiers.
type RelevanceFormatter struct {
	toucher Toucher
	topK    int
	logger  logger.ILogger
}

func NewRelevanceFormatter(toucher Toucher, topK int, log logger.ILogger) *RelevanceFormatter {
	if topK <= 0 {
		topK = constant.RelevanceTopK
	}
	return &RelevanceFormatter{
		toucher: toucher,
		topK:    topK,
		logger:  log,
	}
}

// Tier sorts the hits by similarity and assigns each to a tier:
// high (>= 0.70), medium (>= 0.50), low (below both thresholds but within the
// overall top K by rank), or omitted. Every insight that lands in a tier gets
// its reference touched.
func (f *RelevanceFormatter) Tier(ctx context.Context, hits []SimilarInsight) *RelevanceTiers {
	sorted := make([]SimilarInsight, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Similarity > sorted[j].Similarity
	})

	tiers := &RelevanceTiers{}
	var touched []uuid.UUID

	for rank, hit := range sorted {
		line := formatInsightLine(hit)
		switch {
		case hit.Similarity >= constant.SimilarityHighRelevance:
			tiers.HighRelevance = append(tiers.HighRelevance, line)
		case hit.Similarity >= constant.SimilarityMediumRelevance:
			tiers.MediumRelevance = append(tiers.MediumRelevance, line)
		case rank < f.topK:
			tiers.LowRelevance = append(tiers.LowRelevance, line)
		default:
			continue
		}
		touched = append(touched, hit.Id)
	}

	if len(touched) > 0 {
		if err := f.toucher.TouchReferences(ctx, touched, time.Now()); err != nil {
			// The response still goes out; the counts catch up next turn.
			f.logger.Error("insight.relevance", "failed to touch injected insights", map[string]interface{}{
				"count": len(touched),
				"error": err.Error(),
			})
		}
	}

	return tiers
}

func formatInsightLine(hit SimilarInsight) string {
	return fmt.Sprintf("[%s] %s", hit.Category, hit.Content)
}
