package dto

import (
	"time"

	"ai-academy-be/pkg/scope"
	"ai-academy-be/pkg/stream"

	"github.com/google/uuid"
)

type CreateChatSessionRequest struct {
	Title string `json:"title"`
	// AutoSaveInsights defaults to the server-side setting when omitted.
	AutoSaveInsights *bool `json:"auto_save_insights"`
}

type CreateChatSessionResponse struct {
	Id               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	AutoSaveInsights bool      `json:"auto_save_insights"`
}

type ChatSessionResponse struct {
	Id               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	AutoSaveInsights bool       `json:"auto_save_insights"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

type SendChatRequest struct {
	ChatSessionId uuid.UUID         `json:"chat_session_id" validate:"required"`
	Message       string            `json:"message" validate:"required"`
	PageContext   scope.PageContext `json:"page_context"`
}

type SendChatResponse struct {
	ChatSessionId       uuid.UUID                   `json:"chat_session_id"`
	Reply               string                      `json:"reply"`
	FollowUpSuggestions []stream.FollowUpSuggestion `json:"follow_up_suggestions,omitempty"`
	PendingInsights     []PendingInsightResponse    `json:"pending_insights,omitempty"`
	AutoSavedCount      int                         `json:"auto_saved_count"`
	// Truncated flags an incomplete model stream; no insight extraction ran.
	Truncated bool `json:"truncated,omitempty"`
}

type ChatMessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Chat      string    `json:"chat"`
	CreatedAt time.Time `json:"created_at"`
}
