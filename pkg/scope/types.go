// FILE: pkg/scope/types.go
// PURPOSE: Retrieval scope types for the RAG layer

package scope

// Page context kinds, as sent by the client with each chat turn.
const (
	ContextGlobalAcademy    = "GLOBAL_ACADEMY"
	ContextCourse           = "COURSE"
	ContextAllConversations = "ALL_CONVERSATIONS"
	ContextCollection       = "COLLECTION"
)

// Well-known implicit collection keys. These resolve without a collection id:
// every user has exactly one of each.
const (
	CollectionKeyFavorites = "favorites"
	CollectionKeyWatchlist = "watchlist"
)

// PageContext describes where in the UI a chat turn originated.
type PageContext struct {
	Type string `json:"type"`
	// Id is the course id for COURSE contexts and the collection id (or a
	// well-known key) for COLLECTION contexts.
	Id string `json:"id,omitempty"`
}

// RAGScope bounds what the retrieval layer may return for one turn. Computed
// fresh per request, never stored.
//
// Invariant: at most one of IsGlobalAcademy / IsAllConversations is set. A
// scope with neither flag and empty id sets denies all retrieval.
type RAGScope struct {
	IsGlobalAcademy    bool            `json:"isGlobalAcademy"`
	IsAllConversations bool            `json:"isAllConversations"`
	AllowedCourseIds   map[int]bool    `json:"allowedCourseIds"`
	AllowedItemIds     map[string]bool `json:"allowedItemIds"`
}

// NewScope returns an empty (deny-all) scope.
func NewScope() *RAGScope {
	return &RAGScope{
		AllowedCourseIds: make(map[int]bool),
		AllowedItemIds:   make(map[string]bool),
	}
}

func (s *RAGScope) AddCourse(courseId int) {
	s.AllowedCourseIds[courseId] = true
}

func (s *RAGScope) AddItem(itemId string) {
	if itemId != "" {
		s.AllowedItemIds[itemId] = true
	}
}

// IsDenyAll reports whether this scope permits no retrieval at all. This is
// the explicit fail-closed check the retrieval layer must consult before
// issuing any query; empty-set SQL semantics are not trusted to enforce it.
func (s *RAGScope) IsDenyAll() bool {
	return !s.IsGlobalAcademy &&
		!s.IsAllConversations &&
		len(s.AllowedCourseIds) == 0 &&
		len(s.AllowedItemIds) == 0
}

// CourseIds returns the allowed course ids as a slice (unordered).
func (s *RAGScope) CourseIds() []int {
	ids := make([]int, 0, len(s.AllowedCourseIds))
	for id := range s.AllowedCourseIds {
		ids = append(ids, id)
	}
	return ids
}

// ItemIds returns the allowed item ids as a slice (unordered).
func (s *RAGScope) ItemIds() []string {
	ids := make([]string, 0, len(s.AllowedItemIds))
	for id := range s.AllowedItemIds {
		ids = append(ids, id)
	}
	return ids
}
