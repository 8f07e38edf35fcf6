package service

import (
	"context"
	"encoding/json"

	"ai-academy-be/internal/dto"
	"ai-academy-be/internal/pkg/logger"
	"ai-academy-be/pkg/lock"
	"ai-academy-be/pkg/stream"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the extraction queue. One message is one completed
// chat turn; it fans out into zero or more insight candidates.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	insightService IInsightService
	locker         *lock.RedisLocker
	logger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	insightService IInsightService,
	locker *lock.RedisLocker,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		insightService: insightService,
		locker:         locker,
		logger:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ExtractInsightsMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer_service", "Failed to unmarshal extraction message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	candidates := stream.ExtractInsights(payload.RawChat, payload.SourceAgent, payload.ChatSessionId.String())
	if len(candidates) == 0 {
		msg.Ack()
		return
	}

	// Writes for one user are serialized: two concurrent extractions could
	// otherwise both pass the novelty check and store the same fact twice.
	acquired, err := cs.locker.AcquireUser(ctx, payload.UserId.String())
	if err != nil {
		cs.logger.Error("consumer_service", "Insight lock error", map[string]interface{}{
			"user_id": payload.UserId.String(),
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}
	if !acquired {
		// Another worker holds the user's lock; requeue.
		msg.Nack()
		return
	}
	defer func() {
		if err := cs.locker.ReleaseUser(ctx, payload.UserId.String()); err != nil {
			cs.logger.Warn("consumer_service", "Failed to release insight lock", map[string]interface{}{
				"user_id": payload.UserId.String(),
				"error":   err.Error(),
			})
		}
	}()

	for _, candidate := range candidates {
		if !payload.AutoSave {
			cs.insightService.ParkPending(payload.UserId, payload.ChatSessionId, candidate)
			continue
		}

		action, err := cs.insightService.SaveCandidate(ctx, payload.UserId, candidate)
		if err != nil {
			// A hard store failure skips this candidate only; the rest of
			// the batch still runs.
			cs.logger.Error("consumer_service", "Candidate pipeline failed", map[string]interface{}{
				"user_id":  payload.UserId.String(),
				"category": candidate.Category,
				"error":    err.Error(),
			})
			continue
		}

		cs.logger.Info("consumer_service", "Candidate processed", map[string]interface{}{
			"user_id":  payload.UserId.String(),
			"category": candidate.Category,
			"action":   action,
		})
	}

	msg.Ack()
}
