package entity

import (
	"time"

	"github.com/google/uuid"
)

// Content chunk sources.
const (
	ChunkSourceCourse       = "course"
	ChunkSourceConversation = "conversation"
)

// ContentChunk is one embedded slice of retrievable academy content: course
// material (shared, keyed by course id), a standalone item (lesson, file or
// note, keyed by item id), or a conversation-derived chunk (per user).
type ContentChunk struct {
	Id             uuid.UUID
	Document       string
	EmbeddingValue []float32
	Source         string
	CourseId       *int
	ItemId         *string
	UserId         *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
