package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id     uuid.UUID
	UserId uuid.UUID
	Title  string
	// AutoSaveInsights controls whether extracted insights are written
	// directly or parked for manual approval.
	AutoSaveInsights bool
	CreatedAt        time.Time
	UpdatedAt        *time.Time
	DeletedAt        *time.Time
	IsDeleted        bool
}
