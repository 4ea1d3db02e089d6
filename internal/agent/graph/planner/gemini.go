// Package planner holds the external planning-service implementations. The
// LLM here is a planner only: it is called once per run, its output is parsed
// and schema-checked, and nothing it says is ever executed.
package planner

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/vesselquery/server/internal/agent/graph/parsers"
	"github.com/vesselquery/server/internal/agent/graph/prompts"
	"github.com/vesselquery/server/internal/agent/model"
	errx "github.com/vesselquery/server/internal/core/error"
	logx "github.com/vesselquery/server/pkg/logger"
)

// GeminiConfig configures the Gemini-backed planner.
type GeminiConfig struct {
	APIKey       string
	BaseURL      string
	Model        model.PlannerModelConfig
	DefaultLimit int
}

// GeminiPlanner implements model.Planner on top of the Eino Gemini chat model.
type GeminiPlanner struct {
	chat         *gemini.ChatModel
	modelName    string
	defaultLimit int
}

func NewGeminiPlanner(ctx context.Context, cfg GeminiConfig) (*GeminiPlanner, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	chat, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model.Model,
		Temperature: &cfg.Model.Temperature,
		MaxTokens:   &cfg.Model.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating planner model")
		return nil, fmt.Errorf("error creating planner model: %w", err)
	}

	return &GeminiPlanner{
		chat:         chat,
		modelName:    cfg.Model.Model,
		defaultLimit: cfg.DefaultLimit,
	}, nil
}

func (p *GeminiPlanner) ModelName() string {
	return p.modelName
}

// Plan renders the planner prompt, calls the model once, and parses the
// structured intent from its output. Every failure surfaces as a translation
// fault.
func (p *GeminiPlanner) Plan(ctx context.Context, req model.PlanRequest) (*model.StructuredIntent, error) {
	systemPrompt, err := prompts.RenderPlannerSystem(ctx, p.defaultLimit)
	if err != nil {
		return nil, errx.NewFault(errx.FaultTranslation, err, "planner prompt rendering failed")
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(prompts.RenderPlannerUser(req)),
	}

	out, err := p.chat.Generate(ctx, messages)
	if err != nil {
		logx.Error().Err(err).Str("model", p.modelName).Msg("Planner model call failed")
		return nil, errx.NewFault(errx.FaultTranslation, err, "planner model call failed")
	}
	if out == nil {
		return nil, errx.Faultf(errx.FaultTranslation, "planner returned no message")
	}

	return parsers.ParseIntentResponse(out.Content)
}

var _ model.Planner = (*GeminiPlanner)(nil)
