package entity

import (
	"time"

	"github.com/google/uuid"
)

// AIInsight is the durable record of one fact learned about a user. Owned
// exclusively by that user; written only by the novelty/merge pipeline and
// touched by the relevance formatter when injected into a prompt.
type AIInsight struct {
	Id                   uuid.UUID
	UserId               uuid.UUID
	Insight              string
	Category             string
	Confidence           string
	SourceAgent          string
	SourceConversationId *uuid.UUID
	EmbeddingValue       []float32
	ExtractedAt          time.Time
	LastReferencedAt     *time.Time
	ReferenceCount       int
	IsValidated          *bool
	// ExpiresAt is only ever set for deadline-category insights.
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
