package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type AIInsight struct {
	Id                   uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId               uuid.UUID       `gorm:"type:uuid;not null;index"`
	Insight              string          `gorm:"type:text;not null"`
	Category             string          `gorm:"type:varchar(32);not null;index"`
	Confidence           string          `gorm:"type:varchar(16);not null"`
	SourceAgent          string          `gorm:"type:varchar(64)"`
	SourceConversationId *uuid.UUID      `gorm:"type:uuid"`
	EmbeddingValue       pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 dimensionality
	ExtractedAt          time.Time       `gorm:"not null"`
	LastReferencedAt     *time.Time
	ReferenceCount       int `gorm:"default:0;not null"`
	IsValidated          *bool
	ExpiresAt            *time.Time     `gorm:"index"`
	CreatedAt            time.Time      `gorm:"autoCreateTime"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime"`
	DeletedAt            gorm.DeletedAt `gorm:"index"`
}

func (AIInsight) TableName() string {
	return "ai_insights"
}
