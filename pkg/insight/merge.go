package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-academy-be/internal/constant"
	"ai-academy-be/internal/pkg/logger"
	"ai-academy-be/pkg/llm"
)

// MergeEngine resolves the merge band [0.80, 0.92): similarity says the
// candidate overlaps the stored insight, the model decides whether that
// overlap is an update, a duplicate, or genuinely new information.
type MergeEngine struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

func NewMergeEngine(provider llm.LLMProvider, log logger.ILogger) *MergeEngine {
	return &MergeEngine{
		provider: provider,
		logger:   log,
	}
}

type mergeVerdict struct {
	Action        string `json:"action"`
	MergedContent string `json:"merged_content"`
}

// Decide asks the model for a verdict on existing vs candidate. It never
// returns an error: any failure (network, malformed reply, unknown action)
// degrades to skip, keeping the stored insight untouched. A skipped update is
// recoverable on the next conversation; a corrupted merge is not. No retry.
func (e *MergeEngine) Decide(ctx context.Context, existing *SimilarInsight, candidate *ExtractedInsight) *MergeDecision {
	skip := &MergeDecision{Action: constant.MergeActionSkip}

	prompt := fmt.Sprintf(constant.MergeVerdictPromptV1, existing.Content, candidate.Content)

	raw, err := e.provider.Generate(ctx, prompt, llm.WithTemperature(0.1))
	if err != nil {
		e.logger.Warn("insight.merge", "merge verdict call failed, skipping candidate", map[string]interface{}{
			"existingId": existing.Id.String(),
			"error":      err.Error(),
		})
		return skip
	}

	verdict, err := parseMergeVerdict(raw)
	if err != nil {
		e.logger.Warn("insight.merge", "merge verdict unparseable, skipping candidate", map[string]interface{}{
			"existingId": existing.Id.String(),
			"raw":        raw,
			"error":      err.Error(),
		})
		return skip
	}

	switch verdict.Action {
	case constant.MergeActionSkip:
		return skip
	case constant.MergeActionReplace:
		return &MergeDecision{
			ShouldMerge:   true,
			Action:        constant.MergeActionReplace,
			MergedContent: candidate.Content,
		}
	case constant.MergeActionMerge:
		if strings.TrimSpace(verdict.MergedContent) == "" {
			e.logger.Warn("insight.merge", "merge verdict missing merged_content, skipping candidate", map[string]interface{}{
				"existingId": existing.Id.String(),
			})
			return skip
		}
		return &MergeDecision{
			ShouldMerge:   true,
			Action:        constant.MergeActionMerge,
			MergedContent: strings.TrimSpace(verdict.MergedContent),
		}
	default:
		e.logger.Warn("insight.merge", "merge verdict has unknown action, skipping candidate", map[string]interface{}{
			"existingId": existing.Id.String(),
			"action":     verdict.Action,
		})
		return skip
	}
}

// parseMergeVerdict tolerates the usual model wrappers: markdown fences and
// prose around the JSON object.
func parseMergeVerdict(raw string) (*mergeVerdict, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var verdict mergeVerdict
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &verdict); err != nil {
		return nil, err
	}
	return &verdict, nil
}
