package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesselquery/server/internal/agent/graph/conversations"
	"github.com/vesselquery/server/internal/agent/model"
	errx "github.com/vesselquery/server/internal/core/error"
	"github.com/vesselquery/server/internal/store"
)

var fixedNow = time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

// stubPlanner returns canned intents and records what it was asked.
type stubPlanner struct {
	intent   *model.StructuredIntent
	err      error
	panicMsg string
	requests []model.PlanRequest
}

func (p *stubPlanner) Plan(_ context.Context, req model.PlanRequest) (*model.StructuredIntent, error) {
	p.requests = append(p.requests, req)
	if p.panicMsg != "" {
		panic(p.panicMsg)
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.intent, nil
}

func (p *stubPlanner) ModelName() string { return "stub-planner" }

func trajectoryIntent(mmsi string) *model.StructuredIntent {
	return &model.StructuredIntent{
		Domain:      model.DomainTrajectory,
		Task:        model.TaskShow,
		VesselScope: model.ScopeSingle,
		Vessels:     []model.VesselIdentifier{{MMSI: mmsi}},
		Time:        model.TimeConstraint{Mode: model.TimeModeRelative, Relative: "last_24h"},
		Spatial:     model.SpatialConstraint{Type: model.SpatialNone},
		Execution:   model.ExecutionMode{DataSource: model.DataSourceRawAIS},
		Output:      model.OutputSpec{Format: model.FormatTable, Limit: 50},
	}
}

func loiteringIntent() *model.StructuredIntent {
	in := trajectoryIntent("")
	in.Domain = model.DomainLoitering
	in.Task = model.TaskDetect
	in.VesselScope = model.ScopeAll
	in.Vessels = nil
	return in
}

// seedStore loads two vessels into a fresh in-memory store: one dwelling at
// anchor speed for five hours, one transiting at 15 knots.
func seedStore(t *testing.T) *store.SQLitePositionStore {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	var points []model.TrackPoint
	start := fixedNow.Add(-6 * time.Hour)
	for i := 0; i <= 10; i++ {
		at := start.Add(time.Duration(i*30) * time.Minute)
		points = append(points,
			model.TrackPoint{Timestamp: at, MMSI: "367001234", Latitude: 10.0, Longitude: 20.0, SOG: 0.5, COG: 0},
			model.TrackPoint{Timestamp: at, MMSI: "367005678", Latitude: 30.0 + float64(i), Longitude: 40.0, SOG: 15.0, COG: 90},
		)
	}
	require.NoError(t, s.InsertPoints(context.Background(), points))
	return s
}

func buildTestRunner(t *testing.T, pl model.Planner, st model.PositionStore, mem *conversations.Manager) Runner {
	t.Helper()
	if mem == nil {
		mem = conversations.NewManager(model.SessionConfig{}, nil)
	}
	runner, err := BuildQueryGraph(context.Background(), Config{
		Planner: pl,
		Store:   st,
		Memory:  mem,
		Now:     func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return runner
}

func TestRunTrajectoryQuery(t *testing.T) {
	st := seedStore(t)
	pl := &stubPlanner{intent: trajectoryIntent("367001234")}
	runner := buildTestRunner(t, pl, st, nil)

	res, err := runner.Run(context.Background(), model.QueryInput{
		SessionID: "s1",
		Query:     "show trajectory of vessel 367001234 in the last 24 hours",
	})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Empty(t, res.Error)
	require.NotNil(t, res.Result)
	assert.Equal(t, model.FormatTable, res.Result.Format)
	assert.Equal(t, 11, res.Result.Count)
	assert.Equal(t, 1, res.VesselCount)
	assert.NotEmpty(t, res.Trace)
	require.NotNil(t, res.Intent)
	assert.Equal(t, model.DomainTrajectory, res.Intent.Domain)
}

func TestRunLoiteringQuery(t *testing.T) {
	st := seedStore(t)
	pl := &stubPlanner{intent: loiteringIntent()}
	runner := buildTestRunner(t, pl, st, nil)

	res, err := runner.Run(context.Background(), model.QueryInput{
		SessionID: "s1",
		Query:     "which vessels were loitering in the last 24 hours?",
	})
	require.NoError(t, err)

	assert.True(t, res.Success)
	require.NotNil(t, res.Result)
	// Only the anchored vessel qualifies; the transiter never slows down.
	assert.Equal(t, 1, res.Result.Count)
	assert.Equal(t, 2, res.VesselCount)

	rows, ok := res.Result.Data.([]map[string]any)
	require.True(t, ok)
	assert.Equal(t, "367001234", rows[0]["mmsi"])
	assert.InDelta(t, 5.0, rows[0]["dwell_time_hours"].(float64), 1e-9)
}

func TestRunValidationFailureTerminates(t *testing.T) {
	st := seedStore(t)
	bad := trajectoryIntent("367001234")
	bad.Vessels = nil // scope single with no vessels
	pl := &stubPlanner{intent: bad}
	mem := conversations.NewManager(model.SessionConfig{}, nil)
	runner := buildTestRunner(t, pl, st, mem)

	res, err := runner.Run(context.Background(), model.QueryInput{SessionID: "s1", Query: "bad query"})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Validation failed")
	assert.Equal(t, errx.FaultValidation, res.Fault)
	assert.Nil(t, res.Result)
	// Failed runs never commit to session memory.
	assert.Empty(t, mem.Transcript("s1"))
}

func TestRunPredictionFallsBackToTrajectory(t *testing.T) {
	st := seedStore(t)
	in := trajectoryIntent("367001234")
	in.Domain = model.DomainPrediction
	in.Task = model.TaskPredict
	pl := &stubPlanner{intent: in}
	runner := buildTestRunner(t, pl, st, nil)

	res, err := runner.Run(context.Background(), model.QueryInput{
		SessionID: "s1",
		Query:     "predict where vessel 367001234 goes next",
	})
	require.NoError(t, err)

	// No prediction pipeline exists; the run serves the raw track instead
	// and says so in the trace.
	assert.True(t, res.Success)
	require.NotNil(t, res.Result)
	assert.Equal(t, 11, res.Result.Count)
	assert.Contains(t, res.Trace, "Prediction pipeline unavailable; falling back to trajectory")
}

func TestRunPlannerFailureTerminates(t *testing.T) {
	st := seedStore(t)
	pl := &stubPlanner{err: errx.Faultf(errx.FaultTranslation, "model unavailable")}
	runner := buildTestRunner(t, pl, st, nil)

	res, err := runner.Run(context.Background(), model.QueryInput{SessionID: "s1", Query: "anything"})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "model unavailable")
	assert.Equal(t, errx.FaultTranslation, res.Fault)
	assert.Nil(t, res.Result)
}

func TestRunStagePanicIsContained(t *testing.T) {
	st := seedStore(t)
	pl := &stubPlanner{panicMsg: "planner blew up"}
	runner := buildTestRunner(t, pl, st, nil)

	res, err := runner.Run(context.Background(), model.QueryInput{SessionID: "s1", Query: "anything"})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "parse_intent failed: internal fault")
	assert.Equal(t, errx.FaultAnalytical, res.Fault)
	assert.Nil(t, res.Result)
}

func TestRunCommitsMemoryOnSuccess(t *testing.T) {
	st := seedStore(t)
	pl := &stubPlanner{intent: trajectoryIntent("367001234")}
	mem := conversations.NewManager(model.SessionConfig{}, nil)
	runner := buildTestRunner(t, pl, st, mem)

	_, err := runner.Run(context.Background(), model.QueryInput{SessionID: "s1", Query: "show the track"})
	require.NoError(t, err)

	transcript := mem.Transcript("s1")
	require.Len(t, transcript, 2)
	assert.Equal(t, model.RoleUser, transcript[0].Role)
	assert.Equal(t, "show the track", transcript[0].Content)
	assert.Equal(t, model.RoleAssistant, transcript[1].Role)
}

func TestRunFollowUpCarriesReferenceContext(t *testing.T) {
	st := seedStore(t)
	pl := &stubPlanner{intent: trajectoryIntent("367001234")}
	mem := conversations.NewManager(model.SessionConfig{}, nil)
	runner := buildTestRunner(t, pl, st, mem)
	ctx := context.Background()

	_, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Query: "show trajectory of 367001234"})
	require.NoError(t, err)

	_, err = runner.Run(ctx, model.QueryInput{SessionID: "s1", Query: "now show it on a map"})
	require.NoError(t, err)

	require.Len(t, pl.requests, 2)
	assert.Empty(t, pl.requests[0].ContextVessels)
	assert.Equal(t, []string{"367001234"}, pl.requests[1].ContextVessels)
	// The prior exchange reaches the planner as transcript context.
	assert.Len(t, pl.requests[1].Transcript, 2)
}

func TestRunFreshSessionsAreIndependent(t *testing.T) {
	st := seedStore(t)
	pl := &stubPlanner{intent: trajectoryIntent("367001234")}
	mem := conversations.NewManager(model.SessionConfig{}, nil)
	runner := buildTestRunner(t, pl, st, mem)
	ctx := context.Background()

	_, err := runner.Run(ctx, model.QueryInput{SessionID: "a", Query: "show trajectory of 367001234"})
	require.NoError(t, err)

	_, err = runner.Run(ctx, model.QueryInput{SessionID: "b", Query: "now show it on a map"})
	require.NoError(t, err)

	// Session b has no context; the pronoun resolves to nothing.
	assert.Empty(t, pl.requests[1].ContextVessels)
}

func TestBuildQueryGraphRequiresCollaborators(t *testing.T) {
	_, err := BuildQueryGraph(context.Background(), Config{})
	assert.Error(t, err)
}
