// FILE: pkg/scope/resolver.go
// PURPOSE: Maps page contexts to retrieval scopes

package scope

import (
	"context"
	"encoding/json"
	"strconv"

	"ai-academy-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// CollectionSource is the narrow read contract the resolver needs from the
// collection service. Key is either a collection id or a well-known implicit
// key ("favorites", "watchlist"). Only the requesting user's collections are
// ever queried.
type CollectionSource interface {
	FindMemberPayloads(ctx context.Context, userId uuid.UUID, collectionKey string) ([]json.RawMessage, error)
}

// Resolver computes the RAGScope for a chat turn. Read-only, no shared state;
// safe to call concurrently for different users.
type Resolver struct {
	collections CollectionSource
	logger      logger.ILogger
}

func NewResolver(collections CollectionSource, log logger.ILogger) *Resolver {
	return &Resolver{
		collections: collections,
		logger:      log,
	}
}

// Resolve maps a page context to a retrieval scope. Total: it never returns an
// error. Anything it cannot classify resolves to deny-all with a warning, never
// to global scope. An unrecognized context must narrow retrieval, not widen it.
func (r *Resolver) Resolve(ctx context.Context, userId uuid.UUID, pageCtx PageContext) *RAGScope {
	scope := NewScope()

	switch pageCtx.Type {
	case ContextGlobalAcademy:
		scope.IsGlobalAcademy = true
		return scope

	case ContextCourse:
		courseId, err := strconv.Atoi(pageCtx.Id)
		if err != nil || courseId <= 0 {
			r.logger.Warn("scope_resolver", "Course context with invalid course id, denying retrieval", map[string]interface{}{
				"user_id":   userId.String(),
				"course_id": pageCtx.Id,
			})
			return scope
		}
		scope.AddCourse(courseId)
		return scope

	case ContextAllConversations:
		scope.IsAllConversations = true
		return scope

	case ContextCollection:
		return r.resolveCollection(ctx, userId, pageCtx.Id, scope)

	default:
		r.logger.Warn("scope_resolver", "Unclassified page context, denying retrieval", map[string]interface{}{
			"user_id":      userId.String(),
			"context_type": pageCtx.Type,
		})
		return scope
	}
}

// resolveCollection accumulates scope contributions from each member of a
// collection. An empty collection stays deny-all; a mixed collection yields
// the union of its members' contributions.
func (r *Resolver) resolveCollection(ctx context.Context, userId uuid.UUID, key string, scope *RAGScope) *RAGScope {
	if key == "" {
		r.logger.Warn("scope_resolver", "Collection context without key, denying retrieval", map[string]interface{}{
			"user_id": userId.String(),
		})
		return scope
	}

	payloads, err := r.collections.FindMemberPayloads(ctx, userId, key)
	if err != nil {
		r.logger.Warn("scope_resolver", "Collection lookup failed, denying retrieval", map[string]interface{}{
			"user_id":    userId.String(),
			"collection": key,
			"error":      err.Error(),
		})
		return scope
	}

	for _, raw := range payloads {
		ref, err := ParseMemberPayload(raw)
		if err != nil {
			// Unknown member kinds are skipped, never fatal.
			r.logger.Warn("scope_resolver", "Skipping unrecognized collection member", map[string]interface{}{
				"user_id":    userId.String(),
				"collection": key,
				"error":      err.Error(),
			})
			continue
		}

		switch m := ref.(type) {
		case CourseReference:
			scope.AddCourse(m.CourseId)
		case LessonReference:
			scope.AddItem(m.LessonId)
		case FileReference:
			scope.AddItem(m.FileId)
		case FreeformNoteReference:
			scope.AddItem(m.NoteId)
		}
	}

	return scope
}
