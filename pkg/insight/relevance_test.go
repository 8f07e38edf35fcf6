package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-academy-be/internal/constant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToucher struct {
	touched []uuid.UUID
	err     error
}

func (f *fakeToucher) TouchReferences(ctx context.Context, ids []uuid.UUID, referencedAt time.Time) error {
	f.touched = append(f.touched, ids...)
	return f.err
}

func scoredHit(content string, similarity float64) SimilarInsight {
	return SimilarInsight{
		Id:         uuid.New(),
		Content:    content,
		Category:   constant.InsightCategoryGoal,
		Similarity: similarity,
	}
}

func TestTierThresholds(t *testing.T) {
	toucher := &fakeToucher{}
	formatter := NewRelevanceFormatter(toucher, 2, nopLogger{})

	hits := []SimilarInsight{
		scoredHit("wants to ship by June", 0.85),
		scoredHit("prefers async communication", 0.55),
		scoredHit("once mentioned gardening", 0.30),
	}

	tiers := formatter.Tier(context.Background(), hits)
	require.NotNil(t, tiers)

	assert.Equal(t, []string{"[goal] wants to ship by June"}, tiers.HighRelevance)
	assert.Equal(t, []string{"[goal] prefers async communication"}, tiers.MediumRelevance)
	// Rank 2 with topK=2: below every threshold and outside the top K, so
	// the weakest hit is omitted entirely.
	assert.Empty(t, tiers.LowRelevance)

	assert.Len(t, toucher.touched, 2)
}

func TestTierLowTierWithinTopK(t *testing.T) {
	toucher := &fakeToucher{}
	formatter := NewRelevanceFormatter(toucher, 5, nopLogger{})

	hits := []SimilarInsight{
		scoredHit("works in fintech", 0.45),
		scoredHit("likes concise answers", 0.30),
	}

	tiers := formatter.Tier(context.Background(), hits)
	assert.Empty(t, tiers.HighRelevance)
	assert.Empty(t, tiers.MediumRelevance)
	assert.Len(t, tiers.LowRelevance, 2)
	assert.Len(t, toucher.touched, 2)
}

func TestTierSortsBeforeRanking(t *testing.T) {
	toucher := &fakeToucher{}
	formatter := NewRelevanceFormatter(toucher, 1, nopLogger{})

	// Unsorted input: the 0.40 hit must win the single low slot over 0.20.
	hits := []SimilarInsight{
		scoredHit("weaker", 0.20),
		scoredHit("stronger", 0.40),
	}

	tiers := formatter.Tier(context.Background(), hits)
	require.Len(t, tiers.LowRelevance, 1)
	assert.Equal(t, "[goal] stronger", tiers.LowRelevance[0])
}

func TestTierBoundaryValues(t *testing.T) {
	toucher := &fakeToucher{}
	formatter := NewRelevanceFormatter(toucher, 5, nopLogger{})

	hits := []SimilarInsight{
		scoredHit("exactly high", constant.SimilarityHighRelevance),
		scoredHit("exactly medium", constant.SimilarityMediumRelevance),
	}

	tiers := formatter.Tier(context.Background(), hits)
	assert.Equal(t, []string{"[goal] exactly high"}, tiers.HighRelevance)
	assert.Equal(t, []string{"[goal] exactly medium"}, tiers.MediumRelevance)
}

func TestTierEmptyInput(t *testing.T) {
	toucher := &fakeToucher{}
	formatter := NewRelevanceFormatter(toucher, 5, nopLogger{})

	tiers := formatter.Tier(context.Background(), nil)
	assert.True(t, tiers.IsEmpty())
	assert.Empty(t, toucher.touched)
}

func TestTierTouchFailureStillReturnsTiers(t *testing.T) {
	toucher := &fakeToucher{err: errors.New("db down")}
	formatter := NewRelevanceFormatter(toucher, 5, nopLogger{})

	tiers := formatter.Tier(context.Background(), []SimilarInsight{
		scoredHit("still injected", 0.9),
	})
	assert.Len(t, tiers.HighRelevance, 1)
}
