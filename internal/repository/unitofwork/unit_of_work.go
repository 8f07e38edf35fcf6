package unitofwork

import (
	"context"

	"ai-academy-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	AIInsightRepository() contract.AIInsightRepository
	CollectionRepository() contract.CollectionRepository
	ContentChunkRepository() contract.ContentChunkRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
}
