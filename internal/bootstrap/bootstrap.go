package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/time/rate"

	"github.com/gaiachat/horizon-rag/internal/config"
	"github.com/gaiachat/horizon-rag/internal/core/ports"
	"github.com/gaiachat/horizon-rag/internal/core/usecase"
	"github.com/gaiachat/horizon-rag/internal/infrastructure/llm/azureopenai"
	"github.com/gaiachat/horizon-rag/internal/infrastructure/llm/ollama"
	"github.com/gaiachat/horizon-rag/internal/infrastructure/resilience"
	"github.com/gaiachat/horizon-rag/internal/infrastructure/telemetry"
	"github.com/gaiachat/horizon-rag/internal/infrastructure/telemetry/csvlog"
	"github.com/gaiachat/horizon-rag/internal/infrastructure/telemetry/natspub"
	pgtelemetry "github.com/gaiachat/horizon-rag/internal/infrastructure/telemetry/postgres"
	"github.com/gaiachat/horizon-rag/internal/infrastructure/tokenizer/tiktoken"
	"github.com/gaiachat/horizon-rag/internal/infrastructure/vector/qdrant"
	"github.com/gaiachat/horizon-rag/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Metrics *metrics.HTTPServerMetrics

	// NewChatService builds one orchestrator per conversation session; each
	// keeps its own history and feedback window.
	NewChatService func(sessionID string) ports.ChatService
	Evaluator      ports.Evaluator
	Telemetry      ports.TelemetrySink

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	executor := resilience.NewExecutor(resilience.Config{})

	tokenCounter, err := tiktoken.New(cfg.TokenizerEncoding)
	if err != nil {
		return nil, fmt.Errorf("init tokenizer: %w", err)
	}

	llmClient := azureopenai.New(azureopenai.Config{
		APIKey:     cfg.AzureOpenAIAPIKey,
		Endpoint:   cfg.AzureOpenAIEndpoint,
		APIVersion: cfg.AzureOpenAIAPIVersion,
		Model:      cfg.AzureOpenAIModel,
	}, executor)

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaJudgeModel, cfg.OllamaEmbedModel, executor)
	embedder := ollama.NewEmbedder(ollamaClient)
	judge := ollama.NewJudge(ollamaClient)

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, executor)

	if err := os.MkdirAll(filepath.Dir(cfg.TelemetryCSVPath), 0o755); err != nil {
		return nil, fmt.Errorf("init telemetry dir: %w", err)
	}
	csvSink, err := csvlog.NewSink(cfg.TelemetryCSVPath)
	if err != nil {
		return nil, fmt.Errorf("init telemetry log: %w", err)
	}

	sinks := []ports.TelemetrySink{csvSink}
	var db *sql.DB
	if cfg.PostgresDSN != "" {
		db, err = sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		pgSink := pgtelemetry.NewSink(db)
		if err := pgSink.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure telemetry schema: %w", err)
		}
		sinks = append(sinks, pgSink)
	}
	var publisher *natspub.Publisher
	if cfg.NATSURL != "" {
		publisher, err = natspub.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natspub.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init telemetry publisher: %w", err)
		}
		sinks = append(sinks, publisher)
	}
	telemetrySink := telemetry.NewFanout(sinks...)

	serverMetrics := metrics.NewHTTPServerMetrics("horizon-rag")
	turnRecorder := serverMetrics.TurnRecorder("api")

	rewordUC := usecase.NewRewordUseCase(llmClient, tokenCounter)
	retrieveUC := usecase.NewHybridRetrieveUseCase(embedder, vectorDB, cfg.RAGFusionRRFK)
	generateUC := usecase.NewGenerateUseCase(llmClient, tokenCounter)

	newChatService := func(string) ports.ChatService {
		budget := usecase.NewHistoryBudget(tokenCounter, cfg.HistoryTokenLimit)
		return usecase.NewChatUseCase(rewordUC, retrieveUC, generateUC, budget, telemetrySink, cfg.RAGTopK).
			WithObserver(turnRecorder)
	}

	var limiter *rate.Limiter
	if cfg.EvalRequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.EvalRequestsPerSecond), 1)
	}
	evaluator := usecase.NewEvalUseCase(rewordUC, retrieveUC, generateUC, embedder, judge, limiter, cfg.RAGTopK)

	return &App{
		Config:         cfg,
		Metrics:        serverMetrics,
		NewChatService: newChatService,
		Evaluator:      evaluator,
		Telemetry:      telemetrySink,

		closeFn: func() {
			_ = telemetrySink.Close()
			if db != nil {
				_ = db.Close()
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
