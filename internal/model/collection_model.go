package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Collection struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index:idx_collections_user_key"`
	Key       string         `gorm:"type:varchar(64);not null;index:idx_collections_user_key"`
	Name      string         `gorm:"type:varchar(255)"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Collection) TableName() string {
	return "collections"
}

type CollectionMember struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CollectionId uuid.UUID `gorm:"type:uuid;not null;index"`
	// Payload is the heterogeneous typed reference written by the
	// collection service (course/lesson/file/note).
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (CollectionMember) TableName() string {
	return "collection_members"
}
