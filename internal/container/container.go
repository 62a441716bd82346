package container

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gangwonlab/tour-concierge/config"
	"github.com/gangwonlab/tour-concierge/internal/api/catalog"
	"github.com/gangwonlab/tour-concierge/internal/api/chat"
	generativeAI "github.com/gangwonlab/tour-concierge/internal/api/generativeai"
	"github.com/gangwonlab/tour-concierge/internal/api/itinerary"
	"github.com/gangwonlab/tour-concierge/internal/api/rag"
	"github.com/gangwonlab/tour-concierge/internal/api/review"
	"github.com/gangwonlab/tour-concierge/internal/types"
)

// Container holds all application dependencies. ChatHandler is nil when no
// model credential was resolved; the router serves a configuration error
// for those routes and everything else keeps working.
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	ReviewHandler    *review.Handler
	CatalogHandler   *catalog.Handler
	ItineraryHandler *itinerary.Handler
	ChatHandler      *chat.Handler
}

// NewContainer initializes and returns a new dependency container.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	catalogRepo, err := catalog.NewRepository()
	if err != nil {
		logger.Error("Failed to load embedded catalog", slog.Any("error", err))
		return nil, err
	}
	catalogService := catalog.NewService(catalogRepo)

	reviewRepo := review.NewRepository(cfg.Data.ReviewsDir, logger)
	reviewService := review.NewService(reviewRepo, logger)

	itineraryService := itinerary.NewService(reviewService, logger)

	c := &Container{
		Config:           cfg,
		Logger:           logger,
		ReviewHandler:    review.NewHandler(reviewService, logger),
		CatalogHandler:   catalog.NewHandler(catalogService, logger),
		ItineraryHandler: itinerary.NewHandler(itineraryService, logger),
	}

	apiKey := cfg.ResolveAPIKey()
	aiClient, err := generativeAI.NewAIClient(ctx, apiKey, cfg.LLM.Model, cfg.LLM.Temperature, logger)
	if err != nil {
		if errors.Is(err, types.ErrNotConfigured) {
			logger.Warn("No model credential resolved, chat is disabled")
			return c, nil
		}
		return nil, err
	}
	embeddingService, err := generativeAI.NewEmbeddingService(ctx, apiKey, cfg.LLM.EmbeddingModel, logger)
	if err != nil {
		return nil, err
	}

	composer := rag.NewComposer(reviewService, catalogService)
	splitter := rag.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	ragService := rag.NewService(embeddingService, composer, splitter,
		cfg.LLM.EmbeddingModel, cfg.RAG.TopK, cfg.RAG.EmbedBatchSize, logger)

	chatService := chat.NewService(chat.NewRepository(), aiClient, ragService, logger)
	c.ChatHandler = chat.NewHandler(chatService, logger)
	return c, nil
}
