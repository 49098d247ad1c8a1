package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/termlens/internal/config"
	"github.com/kirillkom/termlens/internal/core/ports"
	"github.com/kirillkom/termlens/internal/core/usecase"
	"github.com/kirillkom/termlens/internal/infrastructure/analysisparser"
	natsevents "github.com/kirillkom/termlens/internal/infrastructure/events/nats"
	"github.com/kirillkom/termlens/internal/infrastructure/extractor"
	"github.com/kirillkom/termlens/internal/infrastructure/extractor/ocr"
	"github.com/kirillkom/termlens/internal/infrastructure/extractor/pdfparse"
	"github.com/kirillkom/termlens/internal/infrastructure/extractor/pdfscrape"
	"github.com/kirillkom/termlens/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/termlens/internal/infrastructure/handoff"
	"github.com/kirillkom/termlens/internal/infrastructure/knowledge"
	"github.com/kirillkom/termlens/internal/infrastructure/llm"
	"github.com/kirillkom/termlens/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/termlens/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/termlens/internal/infrastructure/llm/openai"
	"github.com/kirillkom/termlens/internal/infrastructure/report/xlsx"
	"github.com/kirillkom/termlens/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/termlens/internal/infrastructure/resilience"
	"github.com/kirillkom/termlens/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/termlens/internal/observability/metrics"
)

type App struct {
	Config config.Config

	AnalyzeUC *usecase.AnalyzeUseCase
	ChatUC    *usecase.ChatUseCase
	Knowledge *knowledge.Base
	Renderer  *xlsx.Renderer
	Metrics   *metrics.HTTPServerMetrics

	closeFns []func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	app := &App{Config: cfg}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	kb, err := loadKnowledge(cfg)
	if err != nil {
		return nil, err
	}
	app.Knowledge = kb

	httpMetrics := metrics.NewHTTPServerMetrics(service)
	pipelineMetrics := metrics.NewPipelineMetrics(httpMetrics.Registry(), service)
	app.Metrics = httpMetrics

	executor := resilience.NewExecutor(llmResilienceConfig(cfg))
	executor.OnStateChange(func(operation string, _, to gobreaker.State) {
		pipelineMetrics.SetBreakerState(operation, int(to))
	})

	baseModel, err := newChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var (
		summarizer ports.Summarizer
		chatModel  ports.ChatModel
	)
	if baseModel != nil {
		summarizer = llm.NewSummarizer(llm.NewResilientModel(baseModel, executor, "summarize"), cfg.StructuredOutput)
		chatModel = llm.NewResilientModel(baseModel, executor, "chat")
	}

	parser, err := analysisparser.NewStructuredParser(analysisparser.NewHeadingParser())
	if err != nil {
		return nil, fmt.Errorf("init analysis parser: %w", err)
	}

	textExtractor, err := newExtractor(cfg)
	if err != nil {
		return nil, err
	}

	handoffStore, err := app.newHandoffStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var events ports.EventPublisher
	if cfg.NATSURL != "" {
		publisher, err := natsevents.New(cfg.NATSURL, cfg.NATSSubject, natsevents.Options{
			ResilienceExecutor: resilience.NewExecutor(eventResilienceConfig()),
		})
		if err != nil {
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		app.closeFns = append(app.closeFns, publisher.Close)
		events = publisher
	}

	app.AnalyzeUC = usecase.NewAnalyzeUseCase(textExtractor, summarizer, parser, handoffStore, events, pipelineMetrics)
	app.ChatUC = usecase.NewChatUseCase(kb, chatModel, handoffStore, pipelineMetrics)
	app.Renderer = xlsx.NewRenderer()

	slog.Info("bootstrap_completed",
		"llm_provider", cfg.LLMProvider,
		"pdf_mode", cfg.PDFExtractionMode,
		"handoff_backend", cfg.HandoffBackend,
		"events_enabled", events != nil,
	)
	ok = true
	return app, nil
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}

func loadKnowledge(cfg config.Config) (*knowledge.Base, error) {
	if cfg.KnowledgeFile != "" {
		kb, err := knowledge.LoadFile(cfg.KnowledgeFile)
		if err != nil {
			return nil, fmt.Errorf("load knowledge file: %w", err)
		}
		return kb, nil
	}
	kb, err := knowledge.Load()
	if err != nil {
		return nil, fmt.Errorf("load embedded knowledge: %w", err)
	}
	return kb, nil
}

// newChatModel returns nil without error when LLM_PROVIDER is none.
func newChatModel(ctx context.Context, cfg config.Config) (ports.ChatModel, error) {
	switch cfg.LLMProvider {
	case "ollama":
		return ollama.New(cfg.OllamaURL, cfg.OllamaModel, cfg.LLMTimeout), nil
	case "openai":
		return openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.LLMTimeout), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
		client, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		return client, nil
	case "none", "":
		slog.Warn("llm_disabled", "reason", "LLM_PROVIDER is none; analyses use the standard checklist")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

func newExtractor(cfg config.Config) (*extractor.Dispatcher, error) {
	var pdf ports.TextExtractor
	switch cfg.PDFExtractionMode {
	case "scrape", "":
		pdf = pdfscrape.NewExtractor()
	case "parse":
		pdf = pdfparse.NewExtractor()
	default:
		return nil, fmt.Errorf("unknown PDF_EXTRACTION_MODE %q", cfg.PDFExtractionMode)
	}

	scratch, err := localfs.New(cfg.ScratchDir)
	if err != nil {
		return nil, fmt.Errorf("init scratch storage: %w", err)
	}
	engine := ocr.NewTesseract(ocr.TesseractConfig{
		Binary:      cfg.TesseractBinary,
		Language:    cfg.TesseractLanguage,
		TessdataDir: cfg.TessdataDir,
	}, nil, scratch)

	return extractor.NewDispatcher(pdf, ocr.NewExtractor(engine), plaintext.NewExtractor()), nil
}

// newHandoffStore returns nil without error when HANDOFF_BACKEND is none.
func (a *App) newHandoffStore(ctx context.Context, cfg config.Config) (ports.HandoffStore, error) {
	switch cfg.HandoffBackend {
	case "memory", "":
		return handoff.NewMemoryStore(cfg.HandoffTTL), nil
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closeFns = append(a.closeFns, closeDB(db))
		if err := postgres.Migrate(ctx, db); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return postgres.NewHandoffRepository(db, cfg.HandoffTTL), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown HANDOFF_BACKEND %q", cfg.HandoffBackend)
	}
}

func closeDB(db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			slog.Warn("postgres_close_failed", "error", err)
		}
	}
}

func llmResilienceConfig(cfg config.Config) resilience.Config {
	rc := resilience.DefaultConfig()
	rc.RetryMaxAttempts = cfg.LLMRetryMaxAttempts
	rc.RetryInitialBackoff = cfg.LLMRetryInitialBackoff
	rc.AttemptTimeout = cfg.LLMAttemptTimeout
	rc.BreakerEnabled = cfg.LLMBreakerEnabled
	rc.BreakerOpenTimeout = cfg.LLMBreakerOpenTimeout
	return rc
}

func eventResilienceConfig() resilience.Config {
	rc := resilience.DefaultConfig()
	rc.RetryMaxAttempts = 2
	rc.AttemptTimeout = 2 * time.Second
	rc.BreakerOpenTimeout = 10 * time.Second
	return rc
}
