package service

import (
	"context"
	"fmt"
	"time"

	"ai-academy-be/internal/constant"
	"ai-academy-be/internal/dto"
	"ai-academy-be/internal/entity"
	"ai-academy-be/internal/pkg/logger"
	"ai-academy-be/internal/repository/contract"
	"ai-academy-be/internal/repository/memory"
	"ai-academy-be/internal/repository/specification"
	"ai-academy-be/internal/repository/unitofwork"
	"ai-academy-be/pkg/embedding"
	"ai-academy-be/pkg/events"
	"ai-academy-be/pkg/insight"
	"ai-academy-be/pkg/lock"
	"ai-academy-be/pkg/nats"

	"github.com/google/uuid"
)

type IInsightService interface {
	// SaveCandidate runs one extracted candidate through the full write
	// pipeline: embed, novelty check, merge verdict, store write.
	SaveCandidate(ctx context.Context, userId uuid.UUID, candidate insight.ExtractedInsight) (string, error)

	// GetRelevantTiers retrieves the user's insights by similarity against a
	// query embedding and buckets them for prompt injection.
	GetRelevantTiers(ctx context.Context, userId uuid.UUID, queryEmbedding []float32) (*insight.RelevanceTiers, error)

	ParkPending(userId, sessionId uuid.UUID, candidate insight.ExtractedInsight) *insight.PendingInsight
	ListPending(userId, sessionId uuid.UUID) []dto.PendingInsightResponse
	ApprovePending(ctx context.Context, userId uuid.UUID, pendingId string) (string, error)
	DeclinePending(ctx context.Context, userId uuid.UUID, pendingId string) error

	List(ctx context.Context, userId uuid.UUID) ([]dto.InsightResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Validate(ctx context.Context, userId uuid.UUID, req *dto.ValidateInsightRequest) error

	SweepExpired(ctx context.Context) (int64, error)
}

type insightService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	noveltyChecker    *insight.NoveltyChecker
	mergeEngine       *insight.MergeEngine
	relevance         *insight.RelevanceFormatter
	pendingRepo       *memory.PendingInsightRepository
	eventPublisher    *nats.Publisher
	locker            *lock.RedisLocker
	logger            logger.ILogger
}

func NewInsightService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	noveltyChecker *insight.NoveltyChecker,
	mergeEngine *insight.MergeEngine,
	relevance *insight.RelevanceFormatter,
	pendingRepo *memory.PendingInsightRepository,
	eventPublisher *nats.Publisher,
	locker *lock.RedisLocker,
	log logger.ILogger,
) IInsightService {
	return &insightService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		noveltyChecker:    noveltyChecker,
		mergeEngine:       mergeEngine,
		relevance:         relevance,
		pendingRepo:       pendingRepo,
		eventPublisher:    eventPublisher,
		locker:            locker,
		logger:            log,
	}
}

// NewInsightSearcher adapts the store contract to the novelty checker's
// read-side interface.
func NewInsightSearcher(repo contract.AIInsightRepository) insight.Searcher {
	return &insightSearcher{repo: repo}
}

type insightSearcher struct {
	repo contract.AIInsightRepository
}

func (a *insightSearcher) SearchSimilar(ctx context.Context, emb []float32, limit int, userId uuid.UUID, threshold float64) ([]insight.SimilarInsight, error) {
	scored, err := a.repo.SearchSimilarWithScore(ctx, emb, limit, userId, threshold)
	if err != nil {
		return nil, err
	}
	hits := make([]insight.SimilarInsight, 0, len(scored))
	for _, s := range scored {
		hits = append(hits, insight.SimilarInsight{
			Id:         s.Insight.Id,
			Content:    s.Insight.Insight,
			Category:   s.Insight.Category,
			Similarity: s.Similarity,
		})
	}
	return hits, nil
}

func (s *insightService) SaveCandidate(ctx context.Context, userId uuid.UUID, candidate insight.ExtractedInsight) (string, error) {
	embRes, err := s.embeddingProvider.Generate(candidate.Content, embedding.TaskTypeDocument)
	if err != nil {
		return "", fmt.Errorf("embed candidate: %w", err)
	}
	candidateEmbedding := embRes.Embedding.Values

	novelty, err := s.noveltyChecker.Check(ctx, userId, candidateEmbedding)
	if err != nil {
		// Exhausted retries. Skipping keeps the store consistent; the fact
		// can resurface in a later conversation.
		s.logger.Warn("insight_service", "Novelty check failed, skipping candidate", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return constant.NoveltyActionSkip, nil
	}

	switch novelty.Action {
	case constant.NoveltyActionSave:
		return s.createInsight(ctx, userId, candidate, candidateEmbedding)

	case constant.NoveltyActionSkip:
		s.publishEvent(ctx, events.NewInsightSkippedEvent(userId.String(), "duplicate"))
		return constant.NoveltyActionSkip, nil

	case constant.NoveltyActionMerge:
		return s.mergeInto(ctx, userId, novelty.Target, candidate)

	default:
		return constant.NoveltyActionSkip, nil
	}
}

func (s *insightService) createInsight(ctx context.Context, userId uuid.UUID, candidate insight.ExtractedInsight, emb []float32) (string, error) {
	now := time.Now()
	row := &entity.AIInsight{
		Id:             uuid.New(),
		UserId:         userId,
		Insight:        candidate.Content,
		Category:       candidate.Category,
		Confidence:     candidate.Confidence,
		SourceAgent:    candidate.SourceAgent,
		EmbeddingValue: emb,
		ExtractedAt:    now,
		CreatedAt:      now,
	}
	if candidate.SourceConversationId != "" {
		if convId, err := uuid.Parse(candidate.SourceConversationId); err == nil {
			row.SourceConversationId = &convId
		}
	}
	if candidate.Category == constant.InsightCategoryDeadline {
		expires := now.Add(constant.DeadlineInsightTTL)
		row.ExpiresAt = &expires
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.AIInsightRepository().Create(ctx, row); err != nil {
		return "", fmt.Errorf("create insight: %w", err)
	}

	s.publishEvent(ctx, events.NewInsightSavedEvent(userId.String(), row.Id.String(), row.Category))
	return constant.NoveltyActionSave, nil
}

func (s *insightService) mergeInto(ctx context.Context, userId uuid.UUID, target *insight.SimilarInsight, candidate insight.ExtractedInsight) (string, error) {
	decision := s.mergeEngine.Decide(ctx, target, &candidate)
	if !decision.ShouldMerge {
		s.publishEvent(ctx, events.NewInsightSkippedEvent(userId.String(), "merge_verdict_skip"))
		return constant.NoveltyActionSkip, nil
	}

	// The stored text changes, so its embedding must be regenerated from the
	// merged content or later similarity checks would compare against stale
	// vectors.
	embRes, err := s.embeddingProvider.Generate(decision.MergedContent, embedding.TaskTypeDocument)
	if err != nil {
		s.logger.Warn("insight_service", "Failed to embed merged content, skipping merge", map[string]interface{}{
			"user_id":    userId.String(),
			"insight_id": target.Id.String(),
			"error":      err.Error(),
		})
		return constant.NoveltyActionSkip, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.AIInsightRepository().FindOne(ctx,
		specification.ByID{ID: target.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return "", fmt.Errorf("load merge target: %w", err)
	}
	if existing == nil {
		// Deleted between search and merge. Save the candidate as new.
		return s.createInsight(ctx, userId, candidate, embRes.Embedding.Values)
	}

	now := time.Now()
	existing.Insight = decision.MergedContent
	existing.Confidence = candidate.Confidence
	existing.EmbeddingValue = embRes.Embedding.Values
	existing.ExtractedAt = now
	existing.UpdatedAt = &now
	// A merged insight is no longer exactly what the user confirmed.
	existing.IsValidated = nil

	if err := uow.AIInsightRepository().Update(ctx, existing); err != nil {
		return "", fmt.Errorf("update merged insight: %w", err)
	}

	s.publishEvent(ctx, events.NewInsightMergedEvent(userId.String(), existing.Id.String(), decision.Action))
	return constant.NoveltyActionMerge, nil
}

func (s *insightService) GetRelevantTiers(ctx context.Context, userId uuid.UUID, queryEmbedding []float32) (*insight.RelevanceTiers, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Threshold 0: the low tier deliberately admits weak matches, the
	// formatter decides what is injected.
	scored, err := uow.AIInsightRepository().SearchSimilarWithScore(ctx, queryEmbedding, 20, userId, 0)
	if err != nil {
		return nil, fmt.Errorf("insight relevance search: %w", err)
	}

	// The HNSW index is approximate. Re-score the shortlist exactly before
	// tiering so the 0.70/0.50 cutoffs apply to true similarities.
	hits := make([]insight.SimilarInsight, 0, len(scored))
	for _, sc := range scored {
		hits = append(hits, insight.SimilarInsight{
			Id:         sc.Insight.Id,
			Content:    sc.Insight.Insight,
			Category:   sc.Insight.Category,
			Similarity: insight.CosineSimilarity(queryEmbedding, sc.Insight.EmbeddingValue),
		})
	}

	return s.relevance.Tier(ctx, hits), nil
}

func (s *insightService) ParkPending(userId, sessionId uuid.UUID, candidate insight.ExtractedInsight) *insight.PendingInsight {
	pending := &insight.PendingInsight{
		Id:        uuid.NewString(),
		UserId:    userId,
		SessionId: sessionId,
		Insight:   candidate,
		Status:    constant.PendingStatusPending,
		CreatedAt: time.Now(),
	}
	s.pendingRepo.Save(pending)
	return pending
}

func (s *insightService) ListPending(userId, sessionId uuid.UUID) []dto.PendingInsightResponse {
	out := []dto.PendingInsightResponse{}
	for _, pending := range s.pendingRepo.FindBySession(sessionId.String()) {
		if pending.UserId != userId {
			continue
		}
		out = append(out, dto.PendingInsightResponse{
			Id:         pending.Id,
			Category:   pending.Insight.Category,
			Content:    pending.Insight.Content,
			Confidence: pending.Insight.Confidence,
			Status:     pending.Status,
		})
	}
	return out
}

func (s *insightService) ApprovePending(ctx context.Context, userId uuid.UUID, pendingId string) (string, error) {
	pending, found := s.pendingRepo.Get(pendingId)
	if !found {
		return "", fmt.Errorf("pending insight not found: %s", pendingId)
	}
	if pending.UserId != userId {
		return "", fmt.Errorf("pending insight not found: %s", pendingId)
	}

	// An approval can race the background extractor working on the same
	// user. Wait briefly for the per-user lock instead of failing the call.
	if s.locker != nil {
		if err := s.locker.AcquireUserWait(ctx, userId.String(), 3*time.Second); err != nil {
			return "", fmt.Errorf("insight store busy: %w", err)
		}
		defer s.locker.ReleaseUser(ctx, userId.String())
	}

	action, err := s.SaveCandidate(ctx, userId, pending.Insight)
	if err != nil {
		return "", err
	}

	pending.Status = constant.PendingStatusSaved
	s.pendingRepo.Delete(pendingId)
	return action, nil
}

func (s *insightService) DeclinePending(ctx context.Context, userId uuid.UUID, pendingId string) error {
	pending, found := s.pendingRepo.Get(pendingId)
	if !found || pending.UserId != userId {
		return fmt.Errorf("pending insight not found: %s", pendingId)
	}
	pending.Status = constant.PendingStatusDeclined
	s.pendingRepo.Delete(pendingId)
	return nil
}

func (s *insightService) List(ctx context.Context, userId uuid.UUID) ([]dto.InsightResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.AIInsightRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.NotExpired{Now: time.Now()},
		specification.OrderBy{Field: "extracted_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.InsightResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.InsightResponse{
			Id:               row.Id,
			Insight:          row.Insight,
			Category:         row.Category,
			Confidence:       row.Confidence,
			SourceAgent:      row.SourceAgent,
			ExtractedAt:      row.ExtractedAt,
			LastReferencedAt: row.LastReferencedAt,
			ReferenceCount:   row.ReferenceCount,
			IsValidated:      row.IsValidated,
			ExpiresAt:        row.ExpiresAt,
		})
	}
	return out, nil
}

func (s *insightService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.AIInsightRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("insight not found: %s", id)
	}
	return uow.AIInsightRepository().Delete(ctx, id)
}

func (s *insightService) Validate(ctx context.Context, userId uuid.UUID, req *dto.ValidateInsightRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.AIInsightRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("insight not found: %s", req.Id)
	}

	now := time.Now()
	existing.IsValidated = &req.IsValidated
	existing.UpdatedAt = &now
	return uow.AIInsightRepository().Update(ctx, existing)
}

func (s *insightService) SweepExpired(ctx context.Context) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.AIInsightRepository().DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("insight_service", "Swept expired deadline insights", map[string]interface{}{
			"count": count,
		})
		s.publishEvent(ctx, events.NewInsightExpiredEvent(count))
	}
	return count, nil
}

// publishEvent is fire-and-forget: the pipeline outcome is already durable,
// the bus is auxiliary.
func (s *insightService) publishEvent(ctx context.Context, evt events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("insight_service", "Failed to publish insight event", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}
