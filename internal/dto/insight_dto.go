package dto

import (
	"time"

	"github.com/google/uuid"
)

type InsightResponse struct {
	Id               uuid.UUID  `json:"id"`
	Insight          string     `json:"insight"`
	Category         string     `json:"category"`
	Confidence       string     `json:"confidence"`
	SourceAgent      string     `json:"source_agent,omitempty"`
	ExtractedAt      time.Time  `json:"extracted_at"`
	LastReferencedAt *time.Time `json:"last_referenced_at,omitempty"`
	ReferenceCount   int        `json:"reference_count"`
	IsValidated      *bool      `json:"is_validated,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
}

type PendingInsightResponse struct {
	Id         string `json:"id"`
	Category   string `json:"category"`
	Content    string `json:"content"`
	Confidence string `json:"confidence"`
	Status     string `json:"status"`
}

type ValidateInsightRequest struct {
	Id          uuid.UUID
	IsValidated bool `json:"is_validated"`
}

// ExtractInsightsMessage is the watermill payload enqueued after a complete
// chat turn. RawChat still carries the inline tags.
type ExtractInsightsMessage struct {
	UserId        uuid.UUID `json:"user_id"`
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	RawChat       string    `json:"raw_chat"`
	SourceAgent   string    `json:"source_agent"`
	AutoSave      bool      `json:"auto_save"`
}
