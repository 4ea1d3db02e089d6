package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/vesselquery/server/internal/agent/model"
)

//go:embed template/planner_prompt.txt
var plannerSystemPrompt string

// RenderPlannerSystem renders the planner system prompt via the Eino prompt
// component. Routing through the component triggers Prompt callbacks, so the
// final prompt is observable like any other graph input.
func RenderPlannerSystem(ctx context.Context, defaultLimit int) (string, error) {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}

	// Replace known tokens only; the template is full of JSON braces that
	// must not be treated as format directives.
	content := strings.NewReplacer(
		"{default_limit}", strconv.Itoa(defaultLimit),
	).Replace(plannerSystemPrompt)

	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("planner prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("planner prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}

// RenderPlannerUser builds the user message: prior conversation context,
// optional reference hints, then the query itself.
func RenderPlannerUser(req model.PlanRequest) string {
	var b strings.Builder

	if len(req.Transcript) > 0 {
		b.WriteString("<conversation_context>\n")
		for _, turn := range req.Transcript {
			if turn.Content == "" {
				continue
			}
			switch turn.Role {
			case model.RoleUser:
				b.WriteString("UserMessage(" + turn.Content + ")\n")
			case model.RoleAssistant:
				b.WriteString("AssistantMessage(" + turn.Content + ")\n")
			}
		}
		b.WriteString("</conversation_context>\n")
	}

	if len(req.ContextVessels) > 0 || req.ContextDomain != "" {
		b.WriteString("<reference_context>\n")
		if len(req.ContextVessels) > 0 {
			b.WriteString("vessels: " + strings.Join(req.ContextVessels, ", ") + "\n")
		}
		if req.ContextDomain != "" {
			b.WriteString("domain: " + string(req.ContextDomain) + "\n")
		}
		b.WriteString("</reference_context>\n")
	}

	b.WriteString("Query: " + req.Query)
	return b.String()
}
