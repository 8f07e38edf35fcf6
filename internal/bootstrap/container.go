package bootstrap

import (
	"context"
	"log"

	"ai-academy-be/internal/config"
	"ai-academy-be/internal/controller"
	"ai-academy-be/internal/pkg/logger"
	"ai-academy-be/internal/repository/implementation"
	"ai-academy-be/internal/repository/memory"
	"ai-academy-be/internal/repository/unitofwork"
	"ai-academy-be/internal/service"
	"ai-academy-be/pkg/embedding"
	"ai-academy-be/pkg/insight"
	"ai-academy-be/pkg/llm/factory"
	"ai-academy-be/pkg/lock"
	"ai-academy-be/pkg/scope"

	pktNats "ai-academy-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	InsightController controller.IInsightController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	InsightService  service.IInsightService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	insightLogger := logger.NewIsolatedLogger(cfg.App.InsightLogFilePath)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	locker := lock.NewRedisLocker(rdb, cfg.Insight.LockTTL)

	// 5. Domain components
	collectionRepo := implementation.NewCollectionRepository(db)
	scopeResolver := scope.NewResolver(collectionRepo, sysLogger)

	insightRepo := implementation.NewAIInsightRepository(db)
	noveltyChecker := insight.NewNoveltyChecker(service.NewInsightSearcher(insightRepo), insightLogger)
	mergeEngine := insight.NewMergeEngine(llmProvider, insightLogger)
	relevanceFormatter := insight.NewRelevanceFormatter(insightRepo, 0, insightLogger)

	pendingRepo := memory.NewPendingInsightRepository()

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Insight.ExtractTopic, pubSub)

	insightService := service.NewInsightService(
		uowFactory,
		embeddingProvider,
		noveltyChecker,
		mergeEngine,
		relevanceFormatter,
		pendingRepo,
		natsPub,
		locker,
		insightLogger,
	)

	chatService := service.NewChatService(
		uowFactory,
		scopeResolver,
		embeddingProvider,
		llmProvider,
		insightService,
		publisherService,
		cfg.Insight.AutoSaveDefault,
		sysLogger,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Insight.ExtractTopic,
		insightService,
		locker,
		insightLogger,
	)

	// 7. Controllers
	return &Container{
		ChatController:    controller.NewChatController(chatService),
		InsightController: controller.NewInsightController(insightService),

		ConsumerService: consumerService,
		InsightService:  insightService,

		Logger: sysLogger,
	}
}
