package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"github.com/manak-ai/retrieval/internal/auth"
	"github.com/manak-ai/retrieval/internal/cache"
	"github.com/manak-ai/retrieval/internal/client"
	"github.com/manak-ai/retrieval/internal/config"
	"github.com/manak-ai/retrieval/internal/embedder"
	"github.com/manak-ai/retrieval/internal/eventbus"
	"github.com/manak-ai/retrieval/internal/indexer"
	"github.com/manak-ai/retrieval/internal/ingestion"
	"github.com/manak-ai/retrieval/internal/llm"
	"github.com/manak-ai/retrieval/internal/metadata"
	"github.com/manak-ai/retrieval/internal/overview"
	"github.com/manak-ai/retrieval/internal/reranker"
	"github.com/manak-ai/retrieval/internal/retriever"
	"github.com/manak-ai/retrieval/internal/server"
	"github.com/manak-ai/retrieval/internal/service"
	"github.com/manak-ai/retrieval/internal/summarizer"
	"github.com/manak-ai/retrieval/internal/tool"
	"github.com/manak-ai/retrieval/internal/vectorstore"
)

const serviceName = "retrieval"

func main() {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		slog.Error("failed to run service", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Info("starting retrieval service", "http_port", cfg.Server.Port, "environment", cfg.Server.Environment)

	vectorStore, err := vectorstore.NewQdrantStore(ctx, cfg.Qdrant.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to qdrant: %w", err)
	}
	defer vectorStore.Close()
	logger.Info("connected to qdrant", "url", cfg.Qdrant.URL)

	var metaStore *metadata.Store
	metaStore, err = metadata.New(ctx, cfg.Database.URL)
	if err != nil {
		logger.Warn("metadata store unavailable, indexing runs will not be recorded", "error", err)
		metaStore = nil
	} else {
		defer metaStore.Close()
		logger.Info("connected to metadata store")
	}

	embeddingCache, err := cache.New(cache.Config{
		Enabled: cfg.Redis.Enabled,
		Addr:    cfg.Redis.Addr,
		TTL:     cfg.Redis.TTL,
	})
	if err != nil {
		logger.Warn("embedding cache unavailable, embeddings will not be cached", "error", err)
		embeddingCache = nil
	}

	embed := embedder.NewOllamaEmbedder(embedder.OllamaConfig{
		BaseURL: cfg.Ollama.URL,
		Model:   cfg.Models.Embedding,
		Logger:  logger,
	})
	logger.Info("initialized embedder", "model", cfg.Models.Embedding)

	llmClient := llm.NewOllamaClient(
		llm.WithBaseURL(cfg.Ollama.URL),
		llm.WithModel(cfg.Models.LLM),
	)
	logger.Info("initialized llm client", "model", cfg.Models.LLM)

	crossEncoder := reranker.NewLLMCrossEncoder(llmClient, cfg.Models.LLM)

	extractive := summarizer.NewExtractive(embed, 3)
	abstractive := summarizer.NewAbstractive(llmClient, cfg.Models.LLM, 400, 80)
	hybrid := summarizer.NewHybrid(extractive, abstractive)
	hierarchical := summarizer.NewHierarchical(extractive, hybrid)

	documentCoord := vectorstore.NewCoordinator(vectorStore, embed, embeddingCache, vectorstore.ArtifactClass("document"))
	repositoryCoord := vectorstore.NewCoordinator(vectorStore, embed, embeddingCache, vectorstore.ArtifactClass("repository"))
	if err := documentCoord.EnsureCollections(ctx); err != nil {
		return fmt.Errorf("ensure document collections: %w", err)
	}
	if err := repositoryCoord.EnsureCollections(ctx); err != nil {
		return fmt.Errorf("ensure repository collections: %w", err)
	}

	documentOverviewBuilder := overview.NewDocumentOverviewBuilder(hierarchical, logger)
	repositoryOverviewBuilder := overview.NewRepositoryOverviewBuilder(hierarchical, logger)

	documentChunker := ingestion.NewDocumentChunker(ingestion.DefaultDocumentChunkerConfig())
	repositoryChunker := ingestion.NewRepositoryChunker(ingestion.DefaultRepositoryChunkerConfig(), logger)

	var runs indexer.RunRecorder
	if metaStore != nil {
		runs = metaStore
	}
	documentIndexer := indexer.NewDocumentIndexer(documentChunker, documentOverviewBuilder, documentCoord, runs, logger)
	repositoryIndexer := indexer.NewRepositoryIndexer(repositoryChunker, repositoryOverviewBuilder, repositoryCoord, runs, logger)

	documentRetriever := retriever.New(documentCoord, embed, crossEncoder, hybrid, retriever.Config{
		ArtifactIDField:  "doc_id",
		RerankTopK:       cfg.Retriever.RerankTopK,
		FinalSummaryTopK: cfg.Retriever.FinalSummaryTopK,
	}, logger)
	repositoryRetriever := retriever.New(repositoryCoord, embed, crossEncoder, hybrid, retriever.Config{
		ArtifactIDField:  "repository_id",
		RerankTopK:       cfg.Retriever.RerankTopK,
		FinalSummaryTopK: cfg.Retriever.FinalSummaryTopK,
	}, logger)

	identity := auth.NewIdentityClient(auth.IdentityClientConfig{
		IssuerURI:    cfg.Security.IssuerURI,
		ClientID:     cfg.Security.ClientID,
		ClientSecret: cfg.Security.ClientSecret,
	})

	documentClient := client.NewDocumentServiceClient(cfg.Clients.DocumentServiceURL, identity)
	repositoryClient := client.NewRepositoryServiceClient(cfg.Clients.RepositoryServiceURL, identity)

	documentService := service.NewDocumentService(documentClient, documentIndexer, documentRetriever, nil, logger)
	repositoryService := service.NewRepositoryService(repositoryClient, repositoryIndexer, repositoryRetriever, nil, logger)

	dispatcher := tool.New(logger)
	tool.RegisterBuiltins(dispatcher, documentService, repositoryService)

	kafkaWriter := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Kafka.BootstrapServers),
		Topic:                  cfg.Kafka.ToolsTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	defer kafkaWriter.Close()
	publisher := eventbus.New(kafkaWriter, cfg.Kafka.ToolsTopic, serviceName, logger)
	publisher.PublishToolsAnnouncement(ctx, toolDescriptors(dispatcher))

	// Constructed so its registration against the same dispatcher stays
	// exercised; this binary does not serve it on any transport.
	_ = tool.NewMCPServer(dispatcher, serviceName, "1.0.0")

	httpServer := server.New(server.Config{
		Port:           cfg.Server.Port,
		ServiceName:    serviceName,
		Logger:         logger,
		AllowedOrigins: []string{"*"},
	}, documentService, repositoryService, dispatcher)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down HTTP server", "error", err)
	}
	logger.Info("service stopped")
	return nil
}

func toolDescriptors(d *tool.Dispatcher) []eventbus.ToolDescriptor {
	ids := d.ToolIDs()
	out := make([]eventbus.ToolDescriptor, len(ids))
	for i, id := range ids {
		out[i] = eventbus.ToolDescriptor{ToolID: id, Description: "hierarchical semantic retrieval tool: " + id}
	}
	return out
}
