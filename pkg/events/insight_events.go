package events

import "time"

const (
	EventInsightSaved   = "INSIGHT_SAVED"
	EventInsightMerged  = "INSIGHT_MERGED"
	EventInsightSkipped = "INSIGHT_SKIPPED"
	EventInsightExpired = "INSIGHT_EXPIRED"
)

// NewInsightSavedEvent marks a novel insight persisted for a user.
func NewInsightSavedEvent(userId, insightId, category string) Event {
	return BaseEvent{
		Type: EventInsightSaved,
		Data: map[string]interface{}{
			"user_id":    userId,
			"insight_id": insightId,
			"category":   category,
		},
		OccurredAt: time.Now(),
	}
}

// NewInsightMergedEvent marks a candidate folded into an existing insight.
func NewInsightMergedEvent(userId, insightId, action string) Event {
	return BaseEvent{
		Type: EventInsightMerged,
		Data: map[string]interface{}{
			"user_id":    userId,
			"insight_id": insightId,
			"action":     action,
		},
		OccurredAt: time.Now(),
	}
}

// NewInsightSkippedEvent marks a candidate dropped as a near-duplicate.
func NewInsightSkippedEvent(userId, reason string) Event {
	return BaseEvent{
		Type: EventInsightSkipped,
		Data: map[string]interface{}{
			"user_id": userId,
			"reason":  reason,
		},
		OccurredAt: time.Now(),
	}
}

// NewInsightExpiredEvent marks deadline insights swept after their expiry.
func NewInsightExpiredEvent(count int64) Event {
	return BaseEvent{
		Type: EventInsightExpired,
		Data: map[string]interface{}{
			"count": count,
		},
		OccurredAt: time.Now(),
	}
}
