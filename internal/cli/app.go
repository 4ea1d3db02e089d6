// Package cli implements the vesselquery command surface: one-shot queries,
// an interactive session, data ingest and inspection commands.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"

	"github.com/vesselquery/server/internal/agent/graph"
	"github.com/vesselquery/server/internal/agent/graph/conversations"
	"github.com/vesselquery/server/internal/agent/graph/planner"
	"github.com/vesselquery/server/internal/agent/model"
	"github.com/vesselquery/server/internal/agent/repo"
	"github.com/vesselquery/server/internal/core"
	"github.com/vesselquery/server/internal/store"
	logx "github.com/vesselquery/server/pkg/logger"
	pkgredis "github.com/vesselquery/server/pkg/redis"
)

// AppConfig defines all configurable parameters, sourced from environment
// variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config
	Store model.StoreConfig

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Planner   model.PlannerModelConfig
	Session   model.SessionConfig
	Loitering model.LoiteringConfig
	Output    model.OutputConfig
}

// LoadConfig reads .env (best effort) and the process environment into an
// AppConfig, then initialises logging for the configured environment.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(".env"); err != nil {
		logx.Debug().Msg("No .env file loaded")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment config: %w", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	return &cfg, nil
}

// App bundles the wired service for the interactive commands.
type App struct {
	Config  *AppConfig
	Runner  graph.Runner
	Memory  *conversations.Manager
	Store   *store.SQLitePositionStore
	Archive model.TranscriptRepository

	rdb *redis.Client
}

// NewApp wires the full query service: position store, optional Redis
// transcript archive, session memory, planner and the compiled graph.
func NewApp(ctx context.Context, cfg *AppConfig) (*App, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening position store: %w", err)
	}

	app := &App{Config: cfg, Store: st}

	var archive model.TranscriptRepository
	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New()
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("initialising Redis client: %w", err)
		}
		ttl, err := time.ParseDuration(cfg.Session.ArchiveTTL)
		if err != nil {
			rdb.Close()
			st.Close()
			return nil, fmt.Errorf("invalid SESSION_ARCHIVE_TTL %q: %w", cfg.Session.ArchiveTTL, err)
		}
		app.rdb = rdb
		archive = repo.NewRedisTranscriptRepository(rdb, ttl)
		logx.Info().Msg("Transcript archive enabled")
	}
	app.Archive = archive
	app.Memory = conversations.NewManager(cfg.Session, archive)

	pl, err := planner.NewGeminiPlanner(ctx, planner.GeminiConfig{
		APIKey:       cfg.APIKey,
		BaseURL:      cfg.BaseURL,
		Model:        cfg.Planner,
		DefaultLimit: cfg.Output.DefaultLimit,
	})
	if err != nil {
		app.Close()
		return nil, err
	}

	runner, err := graph.BuildQueryGraph(ctx, graph.Config{
		Planner: pl,
		Store:   st,
		Memory:  app.Memory,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Runner = runner

	return app, nil
}

// Close releases the store and Redis connections.
func (a *App) Close() {
	if a.rdb != nil {
		a.rdb.Close()
	}
	if a.Store != nil {
		a.Store.Close()
	}
}
