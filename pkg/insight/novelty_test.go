package insight

import (
	"context"
	"errors"
	"testing"

	"ai-academy-be/internal/constant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeSearcher struct {
	hits     []SimilarInsight
	err      error
	failures int
	calls    int
}

func (f *fakeSearcher) SearchSimilar(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]SimilarInsight, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("store unavailable")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func hit(similarity float64) SimilarInsight {
	return SimilarInsight{
		Id:         uuid.New(),
		Content:    "manages a team of 5",
		Category:   constant.InsightCategoryRole,
		Similarity: similarity,
	}
}

func TestNoveltyCheckBands(t *testing.T) {
	tests := []struct {
		name       string
		hits       []SimilarInsight
		wantAction string
		wantNovel  bool
		wantTarget bool
	}{
		{
			name:       "no similar insights saves",
			hits:       nil,
			wantAction: constant.NoveltyActionSave,
			wantNovel:  true,
		},
		{
			name:       "below merge threshold saves",
			hits:       []SimilarInsight{hit(0.79)},
			wantAction: constant.NoveltyActionSave,
			wantNovel:  true,
		},
		{
			name:       "duplicate threshold skips",
			hits:       []SimilarInsight{hit(0.92)},
			wantAction: constant.NoveltyActionSkip,
			wantTarget: true,
		},
		{
			name:       "above duplicate threshold skips",
			hits:       []SimilarInsight{hit(0.97)},
			wantAction: constant.NoveltyActionSkip,
			wantTarget: true,
		},
		{
			name:       "merge band lower bound merges",
			hits:       []SimilarInsight{hit(0.80)},
			wantAction: constant.NoveltyActionMerge,
			wantTarget: true,
		},
		{
			name:       "merge band interior merges",
			hits:       []SimilarInsight{hit(0.85), hit(0.82), hit(0.78)},
			wantAction: constant.NoveltyActionMerge,
			wantTarget: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewNoveltyChecker(&fakeSearcher{hits: tt.hits}, nopLogger{})

			result, err := checker.Check(context.Background(), uuid.New(), []float32{0.1, 0.2})
			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, result.Action)
			assert.Equal(t, tt.wantNovel, result.IsNovel)
			if tt.wantTarget {
				require.NotNil(t, result.Target)
				assert.Equal(t, tt.hits[0].Similarity, result.Target.Similarity)
			} else {
				assert.Nil(t, result.Target)
			}
		})
	}
}

func TestNoveltyCheckTargetIsTopHit(t *testing.T) {
	top := hit(0.88)
	searcher := &fakeSearcher{hits: []SimilarInsight{top, hit(0.84), hit(0.81)}}
	checker := NewNoveltyChecker(searcher, nopLogger{})

	result, err := checker.Check(context.Background(), uuid.New(), []float32{0.1})
	require.NoError(t, err)
	require.NotNil(t, result.Target)
	assert.Equal(t, top.Id, result.Target.Id)
	assert.Len(t, result.SimilarInsights, 3)
}

func TestNoveltyCheckRetriesTransientFailure(t *testing.T) {
	searcher := &fakeSearcher{hits: []SimilarInsight{hit(0.95)}, failures: 2}
	checker := NewNoveltyChecker(searcher, nopLogger{})

	result, err := checker.Check(context.Background(), uuid.New(), []float32{0.1})
	require.NoError(t, err)
	assert.Equal(t, constant.NoveltyActionSkip, result.Action)
	assert.Equal(t, 3, searcher.calls)
}

func TestNoveltyCheckExhaustedRetriesErrors(t *testing.T) {
	searcher := &fakeSearcher{failures: noveltySearchAttempts}
	checker := NewNoveltyChecker(searcher, nopLogger{})

	_, err := checker.Check(context.Background(), uuid.New(), []float32{0.1})
	require.Error(t, err)
	assert.Equal(t, noveltySearchAttempts, searcher.calls)
}
