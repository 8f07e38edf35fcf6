package memory

import (
	"time"

	"ai-academy-be/pkg/insight"

	"github.com/patrickmn/go-cache"
)

// PendingInsightRepository holds manual-approval candidates in memory.
// Entries expire with the session: an unreviewed candidate is simply dropped.
type PendingInsightRepository struct {
	cache *cache.Cache
}

func NewPendingInsightRepository() *PendingInsightRepository {
	// Default expiration 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &PendingInsightRepository{
		cache: c,
	}
}

func (r *PendingInsightRepository) Save(pending *insight.PendingInsight) {
	r.cache.Set(pending.Id, pending, cache.DefaultExpiration)
}

func (r *PendingInsightRepository) Get(id string) (*insight.PendingInsight, bool) {
	if x, found := r.cache.Get(id); found {
		return x.(*insight.PendingInsight), true
	}
	return nil, false
}

func (r *PendingInsightRepository) Delete(id string) {
	r.cache.Delete(id)
}

// FindBySession returns all pending candidates for one chat session.
func (r *PendingInsightRepository) FindBySession(sessionId string) []*insight.PendingInsight {
	var out []*insight.PendingInsight
	for _, item := range r.cache.Items() {
		p, ok := item.Object.(*insight.PendingInsight)
		if ok && p.SessionId.String() == sessionId {
			out = append(out, p)
		}
	}
	return out
}
