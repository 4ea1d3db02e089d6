// Package nodes holds the stage implementations of the query graph. Every
// stage takes the run state, does one unit of work, appends a trace entry and
// hands the state on. Internal faults land in RunState.Err; nothing is ever
// raised past the graph boundary.
package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"

	"github.com/vesselquery/server/internal/agent/graph/conversations"
	"github.com/vesselquery/server/internal/agent/loitering"
	"github.com/vesselquery/server/internal/agent/model"
	"github.com/vesselquery/server/internal/agent/resolve"
	"github.com/vesselquery/server/internal/agent/respond"
	"github.com/vesselquery/server/internal/agent/validate"
	errx "github.com/vesselquery/server/internal/core/error"
	logx "github.com/vesselquery/server/pkg/logger"
)

// guarded wraps a stage body into a graph lambda. It skips work once the run
// has failed, recovers panics into the run error, and never returns a Go
// error so the graph always completes with a full state.
func guarded(name string, body func(ctx context.Context, st *model.RunState) error) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, st *model.RunState) (out *model.RunState, _ error) {
		out = st
		if st.Failed() {
			return st, nil
		}
		defer func() {
			if r := recover(); r != nil {
				logx.Error().Str("node", name).Str("run_id", st.RunID).Msgf("stage panic recovered: %v", r)
				st.FailWith(errx.FaultAnalytical, fmt.Sprintf("%s failed: internal fault", name))
			}
		}()

		logx.Debug().Str("node", name).Str("run_id", st.RunID).Msg("Stage start")
		if err := body(ctx, st); err != nil {
			st.FailWith(errx.FaultOf(err), fmt.Sprintf("%s failed: %v", name, err))
		}
		return st, nil
	})
}

// NewResolveReferencesNode consults session memory for anaphoric references
// before planning. Hints are recorded on the state; the planner decides what
// to do with them.
func NewResolveReferencesNode(mem *conversations.Manager) *compose.Lambda {
	return guarded(NodeResolveReferences, func(ctx context.Context, st *model.RunState) error {
		st.AddTrace("Resolving references")

		res := mem.Resolve(st.SessionID, st.Query)
		if res.HasReference {
			st.ReferencedVessels = res.Vessels
			st.ReferencedDomain = res.Domain
			st.AddTrace(fmt.Sprintf("Resolved references: vessels=%v domain=%s", res.Vessels, res.Domain))
		}
		return nil
	})
}

// NewParseIntentNode calls the external planner exactly once and records the
// structured intent. Planner faults terminate the run; there is no default
// intent.
func NewParseIntentNode(planner model.Planner) *compose.Lambda {
	return guarded(NodeParseIntent, func(ctx context.Context, st *model.RunState) error {
		st.AddTrace("Parsing intent with planner")

		intent, err := planner.Plan(ctx, model.PlanRequest{
			Query:          st.Query,
			Transcript:     st.Transcript,
			ContextVessels: st.ReferencedVessels,
			ContextDomain:  st.ReferencedDomain,
		})
		if err != nil {
			return err
		}
		st.Intent = intent
		logx.Debug().Str("run_id", st.RunID).Str("intent", intent.JSON()).Msg("Planner intent")
		st.AddTrace(fmt.Sprintf("Intent: %s/%s", intent.Domain, intent.Task))
		return nil
	})
}

// NewValidatePlanNode gates continuation on the accumulated rule violations.
func NewValidatePlanNode(validator *validate.Validator) *compose.Lambda {
	return guarded(NodeValidatePlan, func(ctx context.Context, st *model.RunState) error {
		st.AddTrace("Validating plan")

		st.Violations = validator.Validate(st.Intent)
		if len(st.Violations) > 0 {
			st.FailWith(errx.FaultValidation, "Validation failed: "+strings.Join(st.Violations, "; "))
			return nil
		}
		st.AddTrace("Plan validated successfully")
		return nil
	})
}

// NewValidationCondition routes to End when the run errored or validation
// found violations; this is the only point where validation terminates a run.
func NewValidationCondition() func(context.Context, *model.RunState) (string, error) {
	return func(_ context.Context, st *model.RunState) (string, error) {
		if st.Failed() || len(st.Violations) > 0 {
			return compose.END, nil
		}
		return NodeResolveVessels, nil
	}
}

// NewResolveVesselsNode resolves vessel identifiers against the dataset and
// the time constraint into an absolute window. Clock injected for
// reproducible runs.
func NewResolveVesselsNode(resolver *resolve.VesselResolver, now func() time.Time) *compose.Lambda {
	return guarded(NodeResolveVessels, func(ctx context.Context, st *model.RunState) error {
		st.AddTrace("Resolving vessel identifiers")

		ids, notes, err := resolver.Resolve(ctx, st.Intent)
		if err != nil {
			return err
		}
		st.VesselIDs = ids
		for _, note := range notes {
			st.AddTrace(note)
		}
		st.AddTrace(fmt.Sprintf("Resolved %d vessel(s)", len(ids)))

		window, err := resolve.ResolveWindow(st.Intent.Time, now())
		if err != nil {
			return err
		}
		st.Window = &window
		st.AddTrace(fmt.Sprintf("Time range: %s to %s",
			window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339)))
		return nil
	})
}

// NewDomainCondition routes by the intent's domain. Trajectory and listing
// share the trajectory branch; prediction falls back to it explicitly until
// a prediction pipeline exists. An already-failed run goes straight to End.
func NewDomainCondition() func(context.Context, *model.RunState) (string, error) {
	return func(_ context.Context, st *model.RunState) (string, error) {
		if st.Failed() {
			return compose.END, nil
		}
		switch st.Intent.Domain {
		case model.DomainLoitering:
			st.AddTrace("Routing to loitering pipeline")
			return NodeLoitering, nil
		case model.DomainPrediction:
			st.AddTrace("Prediction pipeline unavailable; falling back to trajectory")
			logx.Warn().Str("run_id", st.RunID).Msg("Prediction domain routed to trajectory fallback")
			return NodeTrajectory, nil
		default:
			st.AddTrace("Routing to trajectory pipeline")
			return NodeTrajectory, nil
		}
	}
}

// NewTrajectoryNode fetches the raw track for the resolved vessels.
func NewTrajectoryNode(store model.PositionStore) *compose.Lambda {
	return guarded(NodeTrajectory, func(ctx context.Context, st *model.RunState) error {
		st.AddTrace("Fetching trajectory data")

		track, err := store.FetchTrack(ctx, st.VesselIDs, *st.Window, st.Intent.Output.Limit)
		if err != nil {
			return err
		}
		st.Track = track
		st.AddTrace(fmt.Sprintf("Fetched %d trajectory points", len(track)))
		return nil
	})
}

// loiteringFetchFactor over-fetches raw points relative to the output limit
// so segmentation sees enough context.
const loiteringFetchFactor = 10

// NewLoiteringNode fetches the track and runs the loitering detector over it.
func NewLoiteringNode(store model.PositionStore, detector *loitering.Detector) *compose.Lambda {
	return guarded(NodeLoitering, func(ctx context.Context, st *model.RunState) error {
		st.AddTrace("Detecting loitering")

		track, err := store.FetchTrack(ctx, st.VesselIDs, *st.Window, st.Intent.Output.Limit*loiteringFetchFactor)
		if err != nil {
			return err
		}
		st.Track = track

		st.Events = detector.Detect(track, &st.Intent.Spatial)
		st.AddTrace(fmt.Sprintf("Detected %d loitering events", len(st.Events)))
		return nil
	})
}

// NewResponseBuilderNode formats the result and, only then, commits the run
// to session memory. Failed runs never reach this stage's body, so failed
// runs never pollute context.
func NewResponseBuilderNode(builder *respond.Builder, mem *conversations.Manager) *compose.Lambda {
	return guarded(NodeResponseBuilder, func(ctx context.Context, st *model.RunState) error {
		st.AddTrace("Building response")

		var response *model.Response
		if st.Intent.Domain == model.DomainLoitering {
			response = builder.BuildLoitering(st.Events, st.Intent.Output.Format, st.Intent.Output.Limit)
		} else {
			response = builder.BuildTrack(st.Track, st.Intent.Output.Format, st.Intent.Output.Limit)
		}
		st.Result = response
		st.AddTrace("Response built successfully")

		mem.Append(ctx, st.SessionID, model.RoleUser, st.Query)
		mem.Append(ctx, st.SessionID, model.RoleAssistant, response.Message)
		mem.UpdateVesselContext(st.SessionID, st.VesselIDs)
		mem.UpdateDomainContext(st.SessionID, st.Intent.Domain)
		return nil
	})
}
