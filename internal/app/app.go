// Package app assembles dispatchrag from configuration: it loads the corpus,
// builds the index once, wires the provider chain and exposes the HTTP handler.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/matiasleandrokruk/dispatchrag/internal/api"
	"github.com/matiasleandrokruk/dispatchrag/internal/api/handlers"
	"github.com/matiasleandrokruk/dispatchrag/internal/api/mcpserver"
	"github.com/matiasleandrokruk/dispatchrag/internal/domain/completion"
	"github.com/matiasleandrokruk/dispatchrag/internal/domain/prediction"
	"github.com/matiasleandrokruk/dispatchrag/internal/domain/retrieval"
	"github.com/matiasleandrokruk/dispatchrag/internal/domain/severity"
	"github.com/matiasleandrokruk/dispatchrag/internal/infra/config"
	"github.com/matiasleandrokruk/dispatchrag/internal/infra/corpus"
	"github.com/matiasleandrokruk/dispatchrag/internal/infra/eventbus"
	"github.com/matiasleandrokruk/dispatchrag/internal/infra/llm"
	"github.com/matiasleandrokruk/dispatchrag/internal/infra/sqlite"
	"github.com/matiasleandrokruk/dispatchrag/internal/version"
)

// App holds the long-lived services. The index inside Engine is immutable.
type App struct {
	Config      config.Config
	Logger      *zap.Logger
	Engine      *retrieval.Engine
	Providers   *llm.Router
	Completer   *completion.Orchestrator
	Classifier  *severity.Classifier
	Predictions *prediction.Service
	Bus         *eventbus.Bus
	MCP         *mcpserver.Server
	Handler     http.Handler

	// Set only when DATABASE_PATH is configured.
	DB       *sql.DB
	Store    *prediction.Store
	Recorder *prediction.Recorder

	recorderDone chan struct{}
}

// Build loads the corpus and wires every service. Corpus and index failures
// are returned; the caller should treat them as fatal.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := corpus.LoadCSV(cfg.CorpusPath)
	if err != nil {
		return nil, err
	}
	index, err := retrieval.Build(entries)
	if err != nil {
		return nil, err
	}
	logger.Info("corpus indexed",
		zap.String("path", cfg.CorpusPath),
		zap.Int("entries", index.Len()),
		zap.Int("terms", index.Dimension()),
	)

	router, err := BuildProviders(cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Engine:    retrieval.NewEngine(index, cfg.TopK),
		Providers: router,
		Bus:       eventbus.New(),
	}

	temperature := cfg.CompletionTemperature
	a.Completer = completion.NewOrchestrator(router.Chain(), completion.Options{
		Timeout:     cfg.LLMTimeout,
		Temperature: &temperature,
		MaxTokens:   cfg.CompletionMaxTokens,
	}, logger)
	a.Classifier = severity.NewClassifier(severityProvider(cfg, router, logger), cfg.LLMTimeout, cfg.SeverityMaxTokens, logger)

	a.Predictions = prediction.NewService(prediction.Deps{
		Retriever:  a.Engine,
		Completer:  a.Completer,
		Classifier: a.Classifier,
		Bus:        a.Bus,
		Logger:     logger,
	}, prediction.ParseVariant(cfg.ResponseVariant))

	if cfg.DatabasePath != "" {
		if err := a.openHistory(ctx); err != nil {
			return nil, err
		}
	}

	a.MCP, err = mcpserver.New(&mcpserver.Ports{
		Retriever:  a.Engine,
		Predictor:  a.Predictions,
		Classifier: a.Classifier,
	}, version.Name, version.Version)
	if err != nil {
		a.closeDB()
		return nil, err
	}

	deps := api.Deps{
		Generator: a.Predictions,
		Providers: newKeyAvailability(cfg),
		MCP:       a.MCP.Handler(),
		Logger:    logger,
	}
	if a.Store != nil {
		deps.Predictions = a.Store
	}
	a.Handler = api.NewRouter(deps)
	return a, nil
}

func (a *App) openHistory(ctx context.Context) error {
	db, err := sqlite.NewDB(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("open prediction history: %w", err)
	}
	applied, err := sqlite.MigrateUp(ctx, db)
	if err != nil {
		db.Close() //nolint:errcheck
		return fmt.Errorf("migrate prediction history: %w", err)
	}
	for _, m := range applied {
		a.Logger.Info("migration applied", zap.Int("version", m.Version), zap.String("name", m.Name))
	}
	a.DB = db
	a.Store = prediction.NewStore(db)
	if n, err := a.Store.Count(ctx); err == nil {
		a.Logger.Info("prediction history opened", zap.String("path", a.Config.DatabasePath), zap.Int("records", n))
	}
	a.Recorder = prediction.NewRecorder(a.Store, a.Logger)
	return nil
}

// Start launches the prediction recorder when history is enabled. The
// subscription is taken before returning so no served prediction is missed.
// The recorder outlives ctx; only Close stops it, after the bus has drained.
func (a *App) Start(ctx context.Context) {
	if a.Recorder == nil || a.recorderDone != nil {
		return
	}
	events := a.Bus.Subscribe(eventbus.TopicPredictionServed)
	a.recorderDone = make(chan struct{})
	go func() {
		defer close(a.recorderDone)
		a.Recorder.Run(context.WithoutCancel(ctx), events)
	}()
}

// Close stops the bus, waits for the recorder to flush and closes the database.
func (a *App) Close() error {
	a.Bus.Close()
	if a.recorderDone != nil {
		<-a.recorderDone
	}
	if n := a.Bus.Dropped(); n > 0 {
		a.Logger.Warn("prediction events dropped", zap.Uint64("count", n))
	}
	return a.closeDB()
}

func (a *App) closeDB() error {
	if a.DB == nil {
		return nil
	}
	err := a.DB.Close()
	a.DB = nil
	return err
}

// BuildProviders registers the configured providers in LLM_PROVIDERS order.
// Hosted providers without an API key are skipped; unknown names are logged
// and skipped. An empty chain is valid: every completion is then unavailable.
func BuildProviders(cfg config.Config, logger *zap.Logger) (*llm.Router, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := llm.NewRouter()
	for _, name := range cfg.Providers {
		p, err := newProvider(name, cfg)
		switch {
		case errors.Is(err, llm.ErrMissingAPIKey):
			logger.Warn("provider skipped: no API key", zap.String("provider", name))
			continue
		case errors.Is(err, errUnknownProvider):
			logger.Warn("provider skipped: unknown name", zap.String("provider", name))
			continue
		case err != nil:
			return nil, fmt.Errorf("configure provider %s: %w", name, err)
		}
		router.Register(name, p)
	}
	if len(router.Names()) == 0 {
		logger.Warn("no LLM providers configured; completions will be unavailable")
	} else {
		logger.Info("provider chain", zap.Strings("providers", router.Names()))
	}
	return router, nil
}

var errUnknownProvider = errors.New("unknown provider")

// keyAvailability reports a hosted provider as available when its API key is
// set, whether or not it sits in the completion chain.
type keyAvailability map[string]bool

func (k keyAvailability) Available(name string) bool { return k[name] }

func newKeyAvailability(cfg config.Config) keyAvailability {
	return keyAvailability{
		handlers.ProviderOpenAI:    cfg.OpenAI.APIKey != "",
		handlers.ProviderAnthropic: cfg.Anthropic.APIKey != "",
	}
}

func newProvider(name string, cfg config.Config) (llm.LLMProvider, error) {
	switch name {
	case "openai":
		p, err := llm.NewOpenAIProvider(llm.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case "anthropic":
		p, err := llm.NewAnthropicProvider(llm.AnthropicConfig{
			APIKey:  cfg.Anthropic.APIKey,
			BaseURL: cfg.Anthropic.BaseURL,
			Model:   cfg.Anthropic.Model,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case "ollama":
		return llm.NewOllamaProvider(cfg.Ollama.BaseURL, cfg.Ollama.Model), nil
	default:
		return nil, errUnknownProvider
	}
}

// severityProvider picks SEVERITY_PROVIDER when registered, else the head of
// the chain. Nil means the classifier always returns the default level.
func severityProvider(cfg config.Config, router *llm.Router, logger *zap.Logger) llm.LLMProvider {
	if cfg.SeverityProvider != "" {
		if p, err := router.Get(cfg.SeverityProvider); err == nil {
			return p
		}
		logger.Warn("severity provider not registered; using chain head",
			zap.String("provider", cfg.SeverityProvider))
	}
	p, err := router.Route(context.Background())
	if err != nil {
		return nil
	}
	return p
}
