package insight

import (
	"time"

	"github.com/google/uuid"
)

// ExtractedInsight is a candidate fact about the user, produced by the
// generation service's inline tags. It lives for one response: either it
// becomes a stored insight or it is dropped.
type ExtractedInsight struct {
	Category             string `json:"category"`
	Content              string `json:"content"`
	Confidence           string `json:"confidence"` // "high" | "medium" | "low"
	SourceAgent          string `json:"sourceAgent"`
	SourceConversationId string `json:"sourceConversationId,omitempty"`
}

// SimilarInsight is a stored insight that came back from the novelty search,
// with its similarity against the candidate.
type SimilarInsight struct {
	Id         uuid.UUID `json:"id"`
	Content    string    `json:"content"`
	Category   string    `json:"category"`
	Similarity float64   `json:"similarity"`
}

// NoveltyResult is the outcome of checking a candidate against the user's
// stored insights. Target is the single highest-similarity hit and is the only
// one ever acted on; SimilarInsights carries the rest for diagnostics.
type NoveltyResult struct {
	IsNovel         bool             `json:"isNovel"`
	Action          string           `json:"action"` // constant.NoveltyAction*
	Target          *SimilarInsight  `json:"target,omitempty"`
	SimilarInsights []SimilarInsight `json:"similarInsights"`
}

// MergeDecision is the merge engine's verdict for a candidate that landed in
// the merge band.
type MergeDecision struct {
	ShouldMerge   bool   `json:"shouldMerge"`
	Action        string `json:"action"` // constant.MergeAction*
	MergedContent string `json:"mergedContent,omitempty"`
}

// PendingInsight parks an extracted candidate for manual approval. Keyed by a
// temporary id, held in session-scoped memory, never persisted.
type PendingInsight struct {
	Id        string           `json:"id"`
	UserId    uuid.UUID        `json:"userId"`
	SessionId uuid.UUID        `json:"sessionId"`
	Insight   ExtractedInsight `json:"insight"`
	Status    string           `json:"status"` // constant.PendingStatus*
	CreatedAt time.Time        `json:"createdAt"`
}

// RelevanceTiers buckets stored insights for prompt injection.
type RelevanceTiers struct {
	HighRelevance   []string `json:"highRelevance"`
	MediumRelevance []string `json:"mediumRelevance"`
	LowRelevance    []string `json:"lowRelevance"`
}

// IsEmpty reports whether no insight landed in any tier.
func (t *RelevanceTiers) IsEmpty() bool {
	return len(t.HighRelevance) == 0 && len(t.MediumRelevance) == 0 && len(t.LowRelevance) == 0
}
