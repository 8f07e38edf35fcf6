package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-academy-be/internal/constant"
	"ai-academy-be/internal/dto"
	"ai-academy-be/internal/entity"
	"ai-academy-be/internal/pkg/logger"
	"ai-academy-be/internal/repository/contract"
	"ai-academy-be/internal/repository/specification"
	"ai-academy-be/internal/repository/unitofwork"
	"ai-academy-be/pkg/embedding"
	"ai-academy-be/pkg/insight"
	"ai-academy-be/pkg/llm"
	"ai-academy-be/pkg/scope"
	"ai-academy-be/pkg/stream"

	"github.com/google/uuid"
)

const (
	chatSourceAgent    = "academy-chat"
	contentSearchLimit = 8
	historyWindow      = 20
)

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateChatSessionRequest) (*dto.CreateChatSessionResponse, error)
	ListSessions(ctx context.Context, userId uuid.UUID) ([]dto.ChatSessionResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]dto.ChatMessageResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error

	// Send runs one chat turn: scope resolution, scoped retrieval, insight
	// tiering, generation, stream decoding, persistence, async extraction.
	Send(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

type chatService struct {
	uowFactory        unitofwork.RepositoryFactory
	scopeResolver     *scope.Resolver
	embeddingProvider embedding.EmbeddingProvider
	llmProvider       llm.LLMProvider
	insightService    IInsightService
	publisherService  IPublisherService
	autoSaveDefault   bool
	logger            logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	scopeResolver *scope.Resolver,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	insightService IInsightService,
	publisherService IPublisherService,
	autoSaveDefault bool,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:        uowFactory,
		scopeResolver:     scopeResolver,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		insightService:    insightService,
		publisherService:  publisherService,
		autoSaveDefault:   autoSaveDefault,
		logger:            log,
	}
}

func (s *chatService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateChatSessionRequest) (*dto.CreateChatSessionResponse, error) {
	autoSave := s.autoSaveDefault
	if req.AutoSaveInsights != nil {
		autoSave = *req.AutoSaveInsights
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "New conversation"
	}

	session := &entity.ChatSession{
		Id:               uuid.New(),
		UserId:           userId,
		Title:            title,
		AutoSaveInsights: autoSave,
		CreatedAt:        time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.ensureUser(ctx, uow, userId); err != nil {
		return nil, err
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	return &dto.CreateChatSessionResponse{
		Id:               session.Id,
		Title:            session.Title,
		AutoSaveInsights: session.AutoSaveInsights,
	}, nil
}

func (s *chatService) ListSessions(ctx context.Context, userId uuid.UUID) ([]dto.ChatSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ChatSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, dto.ChatSessionResponse{
			Id:               session.Id,
			Title:            session.Title,
			AutoSaveInsights: session.AutoSaveInsights,
			CreatedAt:        session.CreatedAt,
			UpdatedAt:        session.UpdatedAt,
		})
	}
	return out, nil
}

func (s *chatService) GetHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]dto.ChatMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.ownedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ChatMessageResponse, 0, len(messages))
	for _, msg := range messages {
		out = append(out, dto.ChatMessageResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			CreatedAt: msg.CreatedAt,
		})
	}
	return out, nil
}

func (s *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.ownedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, session.Id); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *chatService) Send(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.ownedSession(ctx, uow, userId, req.ChatSessionId)
	if err != nil {
		return nil, err
	}

	// 1. Resolve retrieval scope from the page context. Never fails; the
	// worst case is deny-all.
	ragScope := s.scopeResolver.Resolve(ctx, userId, req.PageContext)

	// 2. Embed the query once, shared by content retrieval and insight
	// tiering.
	embRes, err := s.embeddingProvider.Generate(req.Message, embedding.TaskTypeQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryEmbedding := embRes.Embedding.Values

	// 3. Scoped content retrieval. The repository short-circuits deny-all.
	chunks, err := uow.ContentChunkRepository().SearchSimilarInScope(ctx, queryEmbedding, contentSearchLimit, userId, ragScope)
	if err != nil {
		s.logger.Warn("chat_service", "Content retrieval failed, answering without context", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		chunks = nil
	}

	// 4. Insight tiering (touches reference counters).
	tiers, err := s.insightService.GetRelevantTiers(ctx, userId, queryEmbedding)
	if err != nil {
		s.logger.Warn("chat_service", "Insight tiering failed, answering without memory", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		tiers = &insight.RelevanceTiers{}
	}

	// 5. Generate.
	history, err := s.recentHistory(ctx, uow, session.Id)
	if err != nil {
		return nil, err
	}
	messages := s.buildMessages(tiers, chunkDocuments(chunks), history, req.Message)

	rawReply, err := s.llmProvider.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	// 6. Decode the accumulated stream.
	decoded := stream.Decode(rawReply)

	// 7. Persist both sides of the turn.
	now := time.Now()
	userMsg := &entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          req.Message,
		RawChat:       req.Message,
		Role:          "user",
		ChatSessionId: session.Id,
		CreatedAt:     now,
	}
	assistantMsg := &entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          decoded.Content,
		RawChat:       decoded.RawContent,
		Role:          "assistant",
		ChatSessionId: session.Id,
		CreatedAt:     now.Add(time.Millisecond),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()
	if err := uow.ChatMessageRepository().Create(ctx, userMsg); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantMsg); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// 8. Enqueue extraction, but never for a truncated stream: a cut-off
	// response may carry half-written tags.
	if !decoded.Truncated {
		s.enqueueExtraction(ctx, userId, session, decoded.RawContent)
	}

	return s.buildResponse(session, decoded), nil
}

// ensureUser mirrors the academy-platform identity into a local row on first
// contact. Accounts are provisioned upstream; the token is the source of truth.
func (s *chatService) ensureUser(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) error {
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return uow.UserRepository().Create(ctx, &entity.User{
		Id:        userId,
		CreatedAt: time.Now(),
	})
}

func (s *chatService) ownedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("chat session not found: %s", sessionId)
	}
	return session, nil
}

func (s *chatService) recentHistory(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]llm.Message, error) {
	rows, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: historyWindow, Offset: 0},
	)
	if err != nil {
		return nil, err
	}

	// Reverse to chronological order.
	history := make([]llm.Message, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		history = append(history, llm.Message{
			Role:    rows[i].Role,
			Content: rows[i].Chat,
		})
	}
	return history, nil
}

func (s *chatService) buildMessages(tiers *insight.RelevanceTiers, docs []string, history []llm.Message, userMessage string) []llm.Message {
	var sb strings.Builder
	sb.WriteString("You are the AI learning assistant of an online academy.\n")

	if !tiers.IsEmpty() {
		sb.WriteString("\nWhat you know about this user:\n")
		if len(tiers.HighRelevance) > 0 {
			sb.WriteString("Directly relevant now:\n")
			for _, line := range tiers.HighRelevance {
				sb.WriteString("- " + line + "\n")
			}
		}
		if len(tiers.MediumRelevance) > 0 {
			sb.WriteString("Possibly relevant:\n")
			for _, line := range tiers.MediumRelevance {
				sb.WriteString("- " + line + "\n")
			}
		}
		if len(tiers.LowRelevance) > 0 {
			sb.WriteString("Background:\n")
			for _, line := range tiers.LowRelevance {
				sb.WriteString("- " + line + "\n")
			}
		}
	}

	if len(docs) > 0 {
		sb.WriteString("\nCourse material for this question:\n")
		for _, doc := range docs {
			sb.WriteString("---\n" + doc + "\n")
		}
	}

	sb.WriteString("\nWhen the user reveals a durable fact about themselves, wrap it inline as ")
	sb.WriteString(`<insight category="..." confidence="...">fact</insight>. `)
	sb.WriteString("Valid categories: project, role, challenge, goal, preference, experience, skill, context, deadline.\n")
	sb.WriteString(fmt.Sprintf("End your reply with %sJSON%s containing pendingInsights and followUpSuggestions.\n",
		stream.MetadataStartMarker, stream.MetadataEndMarker))

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: sb.String()})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: userMessage})
	return messages
}

func (s *chatService) enqueueExtraction(ctx context.Context, userId uuid.UUID, session *entity.ChatSession, rawChat string) {
	payload := dto.ExtractInsightsMessage{
		UserId:        userId,
		ChatSessionId: session.Id,
		RawChat:       rawChat,
		SourceAgent:   chatSourceAgent,
		AutoSave:      session.AutoSaveInsights,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("chat_service", "Failed to marshal extraction payload", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if err := s.publisherService.Publish(ctx, payloadJson); err != nil {
		s.logger.Error("chat_service", "Failed to enqueue insight extraction", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
	}
}

func (s *chatService) buildResponse(session *entity.ChatSession, decoded *stream.DecodeResult) *dto.SendChatResponse {
	res := &dto.SendChatResponse{
		ChatSessionId: session.Id,
		Reply:         decoded.Content,
		Truncated:     decoded.Truncated,
	}

	if decoded.Metadata != nil {
		res.FollowUpSuggestions = decoded.Metadata.FollowUpSuggestions
		res.AutoSavedCount = decoded.Metadata.AutoSavedCount
		for _, candidate := range decoded.Metadata.PendingInsights {
			res.PendingInsights = append(res.PendingInsights, dto.PendingInsightResponse{
				Category:   candidate.Category,
				Content:    candidate.Content,
				Confidence: candidate.Confidence,
				Status:     constant.PendingStatusPending,
			})
		}
	}
	return res
}

func chunkDocuments(chunks []*contract.ScoredContentChunk) []string {
	docs := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if c.Chunk != nil {
			docs = append(docs, c.Chunk.Document)
		}
	}
	return docs
}
