// Package graph composes the query pipeline: reference resolution, intent
// planning, validation, vessel and time resolution, the domain branches and
// response building, wired as a compiled eino graph.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	"github.com/vesselquery/server/internal/agent/graph/conversations"
	"github.com/vesselquery/server/internal/agent/graph/nodes"
	"github.com/vesselquery/server/internal/agent/graph/observers"
	"github.com/vesselquery/server/internal/agent/loitering"
	"github.com/vesselquery/server/internal/agent/model"
	"github.com/vesselquery/server/internal/agent/resolve"
	"github.com/vesselquery/server/internal/agent/respond"
	"github.com/vesselquery/server/internal/agent/validate"
	logx "github.com/vesselquery/server/pkg/logger"
)

// Runner executes the compiled graph for one user query.
type Runner interface {
	Run(ctx context.Context, in model.QueryInput) (*model.RunResult, error)
}

// Config holds every collaborator needed to compose the full query graph.
type Config struct {
	Planner   model.Planner
	Store     model.PositionStore
	Memory    *conversations.Manager
	Validator *validate.Validator
	Detector  *loitering.Detector
	Builder   *respond.Builder

	// Now supplies the reference clock for relative time resolution.
	// Defaults to time.Now; tests inject a fixed instant.
	Now func() time.Time
}

// GraphBuilder handles the construction of the query pipeline graph.
type GraphBuilder struct {
	config *Config
	graph  *compose.Graph[*model.RunState, *model.RunState]
}

type graphRunner struct {
	runnable compose.Runnable[*model.RunState, *model.RunState]
	memory   *conversations.Manager
	planner  model.Planner
}

// Run creates a fresh run state, invokes the graph and extracts the result.
// Graph-internal faults surface on RunResult.Error, not on the Go error,
// which is reserved for infrastructure failures of the runnable itself.
func (r *graphRunner) Run(ctx context.Context, in model.QueryInput) (*model.RunResult, error) {
	modelName := in.Model
	if modelName == "" {
		modelName = r.planner.ModelName()
	}

	st := &model.RunState{
		RunID:      uuid.NewString(),
		SessionID:  in.SessionID,
		Query:      in.Query,
		ModelName:  modelName,
		Transcript: r.memory.Transcript(in.SessionID),
	}

	runLog := logx.WithRun(st.RunID, st.SessionID)
	runLog.Info().Msg("Processing query")

	out, err := r.runnable.Invoke(ctx, st, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return nil, fmt.Errorf("graph invocation: %w", err)
	}

	res := &model.RunResult{
		Success:     !out.Failed(),
		Result:      out.Result,
		Trace:       out.Trace,
		Error:       out.Err,
		Fault:       out.Fault,
		Intent:      out.Intent,
		VesselCount: len(out.VesselIDs),
	}
	if out.Failed() {
		runLog.Warn().Str("fault", string(out.Fault)).Str("error", out.Err).Msg("Run failed")
	} else {
		runLog.Info().Int("vessels", res.VesselCount).Msg("Run completed")
	}
	return res, nil
}

// BuildQueryGraph validates the config, builds and compiles the graph, and
// returns a Runner.
func BuildQueryGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.Planner == nil {
		return nil, fmt.Errorf("planner is nil")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("position store is nil")
	}
	if cfg.Memory == nil {
		return nil, fmt.Errorf("session memory is nil")
	}
	if cfg.Validator == nil {
		cfg.Validator = validate.New()
	}
	if cfg.Detector == nil {
		cfg.Detector = loitering.NewDetector(model.LoiteringConfig{})
	}
	if cfg.Builder == nil {
		cfg.Builder = respond.NewBuilder()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	builder := &GraphBuilder{
		config: &cfg,
		graph:  compose.NewGraph[*model.RunState, *model.RunState](),
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	runnable, err := builder.compile(ctx)
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Query graph built successfully")
	return &graphRunner{runnable: runnable, memory: cfg.Memory, planner: cfg.Planner}, nil
}

// addNodes adds all processing stages to the graph.
func (b *GraphBuilder) addNodes() {
	resolver := resolve.NewVesselResolver(b.config.Store)

	b.graph.AddLambdaNode(nodes.NodeResolveReferences,
		nodes.NewResolveReferencesNode(b.config.Memory))

	b.graph.AddLambdaNode(nodes.NodeParseIntent,
		nodes.NewParseIntentNode(b.config.Planner))

	b.graph.AddLambdaNode(nodes.NodeValidatePlan,
		nodes.NewValidatePlanNode(b.config.Validator))

	b.graph.AddLambdaNode(nodes.NodeResolveVessels,
		nodes.NewResolveVesselsNode(resolver, b.config.Now))

	b.graph.AddLambdaNode(nodes.NodeTrajectory,
		nodes.NewTrajectoryNode(b.config.Store))

	b.graph.AddLambdaNode(nodes.NodeLoitering,
		nodes.NewLoiteringNode(b.config.Store, b.config.Detector))

	b.graph.AddLambdaNode(nodes.NodeResponseBuilder,
		nodes.NewResponseBuilderNode(b.config.Builder, b.config.Memory))
}

// addEdges creates the unconditional flow connections between stages.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeResolveReferences},
		{nodes.NodeResolveReferences, nodes.NodeParseIntent},
		{nodes.NodeParseIntent, nodes.NodeValidatePlan},
		{nodes.NodeTrajectory, nodes.NodeResponseBuilder},
		{nodes.NodeLoitering, nodes.NodeResponseBuilder},
		{nodes.NodeResponseBuilder, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the two conditional routing points: validation gate
// and domain dispatch.
func (b *GraphBuilder) addBranches() error {
	validationBranch := compose.NewGraphBranch(
		nodes.NewValidationCondition(),
		map[string]bool{
			nodes.NodeResolveVessels: true,
			compose.END:              true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeValidatePlan, validationBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding validation branch")
		return fmt.Errorf("error adding validation branch: %w", err)
	}

	domainBranch := compose.NewGraphBranch(
		nodes.NewDomainCondition(),
		map[string]bool{
			nodes.NodeTrajectory: true,
			nodes.NodeLoitering:  true,
			compose.END:          true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeResolveVessels, domainBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding domain branch")
		return fmt.Errorf("error adding domain branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph. The pipeline is acyclic so a
// small step ceiling is enough.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[*model.RunState, *model.RunState], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(20))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
