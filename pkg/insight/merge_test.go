package insight

import (
	"context"
	"errors"
	"testing"

	"ai-academy-be/internal/constant"
	"ai-academy-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.calls++
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, nil)
}

func mergeFixtures() (*SimilarInsight, *ExtractedInsight) {
	existing := &SimilarInsight{
		Id:         uuid.New(),
		Content:    "manages a team of 5",
		Category:   constant.InsightCategoryRole,
		Similarity: 0.85,
	}
	candidate := &ExtractedInsight{
		Category:   constant.InsightCategoryRole,
		Content:    "manages a team of 12",
		Confidence: constant.InsightConfidenceHigh,
	}
	return existing, candidate
}

func TestMergeDecideVerdicts(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		wantMerge   bool
		wantAction  string
		wantContent string
	}{
		{
			name:        "merge verdict with content",
			reply:       `{"action":"merge","merged_content":"manages a team that grew from 5 to 12"}`,
			wantMerge:   true,
			wantAction:  constant.MergeActionMerge,
			wantContent: "manages a team that grew from 5 to 12",
		},
		{
			name:        "replace verdict uses candidate content",
			reply:       `{"action":"replace"}`,
			wantMerge:   true,
			wantAction:  constant.MergeActionReplace,
			wantContent: "manages a team of 12",
		},
		{
			name:       "skip verdict",
			reply:      `{"action":"skip"}`,
			wantAction: constant.MergeActionSkip,
		},
		{
			name:        "fenced json is tolerated",
			reply:       "```json\n{\"action\":\"merge\",\"merged_content\":\"combined fact\"}\n```",
			wantMerge:   true,
			wantAction:  constant.MergeActionMerge,
			wantContent: "combined fact",
		},
		{
			name:        "prose around json is tolerated",
			reply:       `Sure! Here is the verdict: {"action":"merge","merged_content":"combined"} Hope that helps.`,
			wantMerge:   true,
			wantAction:  constant.MergeActionMerge,
			wantContent: "combined",
		},
		{
			name:       "merge without merged_content degrades to skip",
			reply:      `{"action":"merge"}`,
			wantAction: constant.MergeActionSkip,
		},
		{
			name:       "unknown action degrades to skip",
			reply:      `{"action":"combine","merged_content":"x"}`,
			wantAction: constant.MergeActionSkip,
		},
		{
			name:       "garbage reply degrades to skip",
			reply:      "I cannot decide.",
			wantAction: constant.MergeActionSkip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewMergeEngine(&fakeLLM{reply: tt.reply}, nopLogger{})
			existing, candidate := mergeFixtures()

			decision := engine.Decide(context.Background(), existing, candidate)
			assert.Equal(t, tt.wantMerge, decision.ShouldMerge)
			assert.Equal(t, tt.wantAction, decision.Action)
			assert.Equal(t, tt.wantContent, decision.MergedContent)
		})
	}
}

func TestMergeDecideNetworkErrorSkipsWithoutRetry(t *testing.T) {
	provider := &fakeLLM{err: errors.New("connection refused")}
	engine := NewMergeEngine(provider, nopLogger{})
	existing, candidate := mergeFixtures()

	decision := engine.Decide(context.Background(), existing, candidate)
	assert.False(t, decision.ShouldMerge)
	assert.Equal(t, constant.MergeActionSkip, decision.Action)
	assert.Equal(t, 1, provider.calls)
}
