package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesselquery/server/internal/agent/model"
)

func TestRenderPlannerSystem(t *testing.T) {
	out, err := RenderPlannerSystem(context.Background(), 100)
	require.NoError(t, err)

	assert.Contains(t, out, "domain_intent")
	assert.Contains(t, out, "100")
	assert.NotContains(t, out, "{default_limit}")
}

func TestRenderPlannerSystemDefaultLimitFallback(t *testing.T) {
	out, err := RenderPlannerSystem(context.Background(), 0)
	require.NoError(t, err)
	assert.Contains(t, out, "50")
}

func TestRenderPlannerUserQueryOnly(t *testing.T) {
	out := RenderPlannerUser(model.PlanRequest{Query: "show the track"})
	assert.Equal(t, "Query: show the track", out)
}

func TestRenderPlannerUserWithTranscript(t *testing.T) {
	out := RenderPlannerUser(model.PlanRequest{
		Query: "now on a map",
		Transcript: []model.Turn{
			{Role: model.RoleUser, Content: "show trajectory of 367001234"},
			{Role: model.RoleAssistant, Content: "Found 11 results"},
		},
	})

	assert.True(t, strings.HasPrefix(out, "<conversation_context>\n"))
	assert.Contains(t, out, "UserMessage(show trajectory of 367001234)")
	assert.Contains(t, out, "AssistantMessage(Found 11 results)")
	assert.True(t, strings.HasSuffix(out, "Query: now on a map"))
}

func TestRenderPlannerUserWithReferenceContext(t *testing.T) {
	out := RenderPlannerUser(model.PlanRequest{
		Query:          "show it again",
		ContextVessels: []string{"367001234", "367005678"},
		ContextDomain:  model.DomainLoitering,
	})

	assert.Contains(t, out, "<reference_context>")
	assert.Contains(t, out, "vessels: 367001234, 367005678")
	assert.Contains(t, out, "domain: loitering")
}

func TestRenderPlannerUserSkipsEmptyTurns(t *testing.T) {
	out := RenderPlannerUser(model.PlanRequest{
		Query: "q",
		Transcript: []model.Turn{
			{Role: model.RoleUser, Content: ""},
			{Role: model.RoleUser, Content: "real"},
		},
	})
	assert.Contains(t, out, "UserMessage(real)")
	assert.Equal(t, 1, strings.Count(out, "UserMessage("))
}
