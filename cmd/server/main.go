package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/api/option"

	"github.com/pablocarmonaesparza/education-sub001/internal/api"
	"github.com/pablocarmonaesparza/education-sub001/internal/config"
	"github.com/pablocarmonaesparza/education-sub001/internal/handlers"
	"github.com/pablocarmonaesparza/education-sub001/internal/llm"
	"github.com/pablocarmonaesparza/education-sub001/internal/registry"
	"github.com/pablocarmonaesparza/education-sub001/internal/services"
	"github.com/pablocarmonaesparza/education-sub001/internal/store/postgres"
)

func main() {
	log.Println("Starting education tutoring backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Database Connection Pool
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Unable to create database connection pool: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(dbCtx); err != nil {
		log.Fatalf("FATAL: Unable to ping database: %v", err)
	}
	log.Println("Database connection pool established.")

	pgStore := postgres.NewPostgresStore(dbpool)

	// 3. Upstream clients. The genai client is shared by the Gemini stream
	// adapter and the embedding generator.
	genaiClient, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatalf("FATAL: Failed to create GenAI client: %v", err)
	}
	defer func() {
		if err := genaiClient.Close(); err != nil {
			log.Printf("WARN: error closing GenAI client: %v", err)
		}
	}()

	modelRegistry := registry.NewDefault()
	providers := map[registry.ProviderID]llm.Provider{
		registry.ProviderOpenAI:    llm.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL),
		registry.ProviderAnthropic: llm.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL),
		registry.ProviderGoogle:    llm.NewGeminiProvider(genaiClient),
	}
	embedder := llm.NewGeminiEmbedder(genaiClient, cfg.EmbeddingModel)

	// 4. Services
	retrievalService, err := services.NewRetrievalService(context.Background(), pgStore)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize retrieval service: %v", err)
	}
	contextService := services.NewContextService(pgStore, embedder, retrievalService)
	chatService := services.NewChatService(pgStore, modelRegistry, providers, contextService)
	authService := services.NewAuthService(pgStore, cfg)
	conversationService := services.NewConversationService(pgStore)
	log.Println("Services initialized.")

	// 5. Handlers & Router
	routerDeps := api.RouterDependencies{
		AuthHandler:         handlers.NewAuthHandler(authService),
		ChatHandler:         handlers.NewChatHandlers(chatService),
		ConversationHandler: handlers.NewConversationHandlers(conversationService),
		ModelsHandler:       handlers.NewModelsHandler(modelRegistry),
		Config:              cfg,
	}
	router := api.NewRouter(routerDeps)
	log.Println("HTTP router configured.")

	// 6. Configure and Start HTTP Server. No WriteTimeout: chat responses
	// stream for as long as generation runs.
	server := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v", cfg.HTTPPort, err)
		}
	}()

	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
	}
	log.Println("Server shutdown complete.")
}
