package scope

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeCollections struct {
	payloads map[string][]json.RawMessage
	err      error
}

func (f *fakeCollections) FindMemberPayloads(ctx context.Context, userId uuid.UUID, collectionKey string) ([]json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.payloads[collectionKey], nil
}

func raws(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(items))
	for i, s := range items {
		out[i] = json.RawMessage(s)
	}
	return out
}

func TestResolveGlobalAcademy(t *testing.T) {
	r := NewResolver(&fakeCollections{}, nopLogger{})

	scope := r.Resolve(context.Background(), uuid.New(), PageContext{Type: ContextGlobalAcademy})
	assert.True(t, scope.IsGlobalAcademy)
	assert.False(t, scope.IsDenyAll())
	assert.Empty(t, scope.AllowedCourseIds)
}

func TestResolveCourse(t *testing.T) {
	r := NewResolver(&fakeCollections{}, nopLogger{})

	scope := r.Resolve(context.Background(), uuid.New(), PageContext{Type: ContextCourse, Id: "42"})
	assert.False(t, scope.IsDenyAll())
	assert.Equal(t, map[int]bool{42: true}, scope.AllowedCourseIds)
	assert.Empty(t, scope.AllowedItemIds)
}

func TestResolveCourseInvalidIdDeniesAll(t *testing.T) {
	r := NewResolver(&fakeCollections{}, nopLogger{})

	for _, id := range []string{"", "abc", "-3", "0"} {
		scope := r.Resolve(context.Background(), uuid.New(), PageContext{Type: ContextCourse, Id: id})
		assert.True(t, scope.IsDenyAll(), "course id %q must deny", id)
	}
}

func TestResolveAllConversations(t *testing.T) {
	r := NewResolver(&fakeCollections{}, nopLogger{})

	scope := r.Resolve(context.Background(), uuid.New(), PageContext{Type: ContextAllConversations})
	assert.True(t, scope.IsAllConversations)
	assert.False(t, scope.IsDenyAll())
}

func TestResolveFavoritesCollection(t *testing.T) {
	collections := &fakeCollections{payloads: map[string][]json.RawMessage{
		CollectionKeyFavorites: raws(
			`{"type":"course-reference","courseId":42}`,
			`{"type":"course-reference","courseId":7}`,
			`{"type":"lesson-reference","lessonId":"lesson-9","courseId":42}`,
		),
	}}
	r := NewResolver(collections, nopLogger{})

	scope := r.Resolve(context.Background(), uuid.New(), PageContext{Type: ContextCollection, Id: CollectionKeyFavorites})
	require.False(t, scope.IsDenyAll())
	assert.Equal(t, map[int]bool{42: true, 7: true}, scope.AllowedCourseIds)
	// The lesson contributes only its item id. Its courseId field must not
	// widen the scope to the whole course.
	assert.Equal(t, map[string]bool{"lesson-9": true}, scope.AllowedItemIds)
}

func TestResolveCollectionMixedMembers(t *testing.T) {
	collections := &fakeCollections{payloads: map[string][]json.RawMessage{
		"my-collection": raws(
			`{"type":"file-reference","fileId":"file-1"}`,
			`{"type":"freeform-note","noteId":"note-1"}`,
			`{"type":"playlist-reference","playlistId":"p-1"}`,
			`not even json`,
		),
	}}
	r := NewResolver(collections, nopLogger{})

	scope := r.Resolve(context.Background(), uuid.New(), PageContext{Type: ContextCollection, Id: "my-collection"})
	// Unknown kinds and malformed payloads are skipped, the rest survive.
	assert.Equal(t, map[string]bool{"file-1": true, "note-1": true}, scope.AllowedItemIds)
	assert.Empty(t, scope.AllowedCourseIds)
}

func TestResolveEmptyCollectionDeniesAll(t *testing.T) {
	r := NewResolver(&fakeCollections{}, nopLogger{})

	scope := r.Resolve(context.Background(), uuid.New(), PageContext{Type: ContextCollection, Id: CollectionKeyWatchlist})
	assert.True(t, scope.IsDenyAll())
}

func TestResolveCollectionLookupErrorDeniesAll(t *testing.T) {
	r := NewResolver(&fakeCollections{err: errors.New("db down")}, nopLogger{})

	scope := r.Resolve(context.Background(), uuid.New(), PageContext{Type: ContextCollection, Id: CollectionKeyFavorites})
	assert.True(t, scope.IsDenyAll())
}

func TestResolveUnclassifiedContextDeniesAll(t *testing.T) {
	r := NewResolver(&fakeCollections{}, nopLogger{})

	for _, typ := range []string{"", "DASHBOARD", "garbage"} {
		scope := r.Resolve(context.Background(), uuid.New(), PageContext{Type: typ})
		assert.True(t, scope.IsDenyAll(), "context %q must deny", typ)
	}
}

func TestParseMemberPayload(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    MemberReference
		wantErr bool
	}{
		{
			name: "course reference",
			raw:  `{"type":"course-reference","courseId":42}`,
			want: CourseReference{CourseId: 42},
		},
		{
			name: "lesson reference keeps only lesson id",
			raw:  `{"type":"lesson-reference","lessonId":"l-1","courseId":42}`,
			want: LessonReference{LessonId: "l-1"},
		},
		{
			name: "file reference",
			raw:  `{"type":"file-reference","fileId":"f-1"}`,
			want: FileReference{FileId: "f-1"},
		},
		{
			name: "freeform note",
			raw:  `{"type":"freeform-note","noteId":"n-1"}`,
			want: FreeformNoteReference{NoteId: "n-1"},
		},
		{
			name:    "course reference without id",
			raw:     `{"type":"course-reference"}`,
			wantErr: true,
		},
		{
			name:    "unknown type",
			raw:     `{"type":"playlist-reference"}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			raw:     `{{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMemberPayload(json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
