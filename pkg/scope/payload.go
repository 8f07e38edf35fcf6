// FILE: pkg/scope/payload.go
// PURPOSE: Tagged union over collection member payloads

package scope

import (
	"encoding/json"
	"fmt"
)

// Member payload type discriminators, as written by the collection service.
const (
	MemberTypeCourse       = "course-reference"
	MemberTypeLesson       = "lesson-reference"
	MemberTypeFile         = "file-reference"
	MemberTypeFreeformNote = "freeform-note"
)

// MemberReference is what a single collection member contributes to a scope.
// Exactly one of the four concrete kinds.
type MemberReference interface {
	memberRef()
}

// CourseReference widens the scope to a whole course.
type CourseReference struct {
	CourseId int
}

// LessonReference contributes one lesson as an item. It deliberately does NOT
// contribute the lesson's parent course: favoriting a lesson must not open up
// the entire course.
type LessonReference struct {
	LessonId string
}

// FileReference contributes an uploaded file as an item.
type FileReference struct {
	FileId string
}

// FreeformNoteReference contributes a user note as an item.
type FreeformNoteReference struct {
	NoteId string
}

func (CourseReference) memberRef()       {}
func (LessonReference) memberRef()       {}
func (FileReference) memberRef()         {}
func (FreeformNoteReference) memberRef() {}

type memberPayload struct {
	Type     string `json:"type"`
	CourseId int    `json:"courseId,omitempty"`
	LessonId string `json:"lessonId,omitempty"`
	FileId   string `json:"fileId,omitempty"`
	NoteId   string `json:"noteId,omitempty"`
}

// ParseMemberPayload decodes a raw member payload into its reference kind.
// The type discriminator is authoritative; a stray courseId on a
// lesson-reference does not turn it into a course. Unknown or incomplete
// payloads return an error and the member is skipped by the caller.
func ParseMemberPayload(raw json.RawMessage) (MemberReference, error) {
	var p memberPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("unmarshal member payload: %w", err)
	}

	switch p.Type {
	case MemberTypeCourse:
		if p.CourseId <= 0 {
			return nil, fmt.Errorf("course-reference without courseId")
		}
		return CourseReference{CourseId: p.CourseId}, nil
	case MemberTypeLesson:
		if p.LessonId == "" {
			return nil, fmt.Errorf("lesson-reference without lessonId")
		}
		return LessonReference{LessonId: p.LessonId}, nil
	case MemberTypeFile:
		if p.FileId == "" {
			return nil, fmt.Errorf("file-reference without fileId")
		}
		return FileReference{FileId: p.FileId}, nil
	case MemberTypeFreeformNote:
		if p.NoteId == "" {
			return nil, fmt.Errorf("freeform-note without noteId")
		}
		return FreeformNoteReference{NoteId: p.NoteId}, nil
	default:
		return nil, fmt.Errorf("unknown member type %q", p.Type)
	}
}
