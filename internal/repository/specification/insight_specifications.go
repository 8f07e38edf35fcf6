package specification

import (
	"time"

	"gorm.io/gorm"
)

// ByCategory filters insights by their category value.
type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}

// NotExpired drops deadline insights whose expiry has elapsed. Insights
// without an expiry always pass.
type NotExpired struct {
	Now time.Time
}

func (s NotExpired) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("expires_at IS NULL OR expires_at > ?", s.Now)
}

// ValidatedOnly keeps insights the user has explicitly confirmed.
type ValidatedOnly struct{}

func (s ValidatedOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_validated = ?", true)
}
