// Package parsers turns raw planner output into structured intents. The
// planner is an LLM and its output is hostile until proven otherwise: size
// guards, strict enum checks and panic recovery all live here.
package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vesselquery/server/internal/agent/model"
	errx "github.com/vesselquery/server/internal/core/error"
	logx "github.com/vesselquery/server/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 64 * 1024 // 64KB
	minLimit      = 1
	maxLimit      = 10000
	defaultLimit  = 50
)

// ParseIntentResponse extracts and validates the canonical intent JSON from
// raw planner output. Planners wrap JSON in prose often enough that the
// first-`{`/last-`}` slice is taken before decoding.
func ParseIntentResponse(content string) (intent *model.StructuredIntent, err error) {
	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "intent_parser").Msgf("panic recovered: %v", r)
			err = errx.NewFault(errx.FaultTranslation, fmt.Errorf("intent parser panic: %v", r), "planner output could not be parsed")
			intent = nil
		}
	}()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errx.Faultf(errx.FaultTranslation, "planner returned empty response")
	}
	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "intent_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, errx.Faultf(errx.FaultTranslation, "no JSON object found in planner response")
	}

	var parsed model.StructuredIntent
	if err := json.Unmarshal([]byte(content[start:end+1]), &parsed); err != nil {
		return nil, errx.NewFault(errx.FaultTranslation, err, "planner response is not valid intent JSON")
	}

	applyDefaults(&parsed)
	if err := checkStructure(&parsed); err != nil {
		return nil, err
	}

	logx.Debug().
		Str("domain", string(parsed.Domain)).
		Str("task", string(parsed.Task)).
		Msg("Parsed structured intent")
	return &parsed, nil
}

// applyDefaults fills the sub-objects a planner may legitimately omit.
func applyDefaults(in *model.StructuredIntent) {
	if in.Time.Mode == "" {
		in.Time.Mode = model.TimeModeRelative
	}
	if in.Spatial.Type == "" {
		in.Spatial.Type = model.SpatialNone
	}
	if in.Execution.DataSource == "" {
		in.Execution.DataSource = model.DataSourceRawAIS
	}
	if in.Output.Format == "" {
		in.Output.Format = model.FormatTable
	}
	if in.Output.Limit == 0 {
		in.Output.Limit = defaultLimit
	}
	if in.Vessels == nil {
		in.Vessels = []model.VesselIdentifier{}
	}
}

// checkStructure rejects values outside the closed enums. Logical rules
// (cardinality, time ordering, ...) belong to the validator; this is purely
// the schema boundary.
func checkStructure(in *model.StructuredIntent) error {
	switch in.Domain {
	case model.DomainTrajectory, model.DomainLoitering, model.DomainPrediction, model.DomainListing:
	default:
		return errx.Faultf(errx.FaultTranslation, "unknown domain_intent %q", in.Domain)
	}

	switch in.Task {
	case model.TaskShow, model.TaskPredict, model.TaskDetect, model.TaskList:
	default:
		return errx.Faultf(errx.FaultTranslation, "unknown task_intent %q", in.Task)
	}

	switch in.VesselScope {
	case model.ScopeSingle, model.ScopeMultiple, model.ScopeAll:
	default:
		return errx.Faultf(errx.FaultTranslation, "unknown vessel_scope %q", in.VesselScope)
	}

	switch in.Time.Mode {
	case model.TimeModeRelative, model.TimeModeAbsolute:
	default:
		return errx.Faultf(errx.FaultTranslation, "unknown time_constraint.mode %q", in.Time.Mode)
	}

	switch in.Spatial.Type {
	case model.SpatialNone, model.SpatialCoastalDistance, model.SpatialPolygon:
	default:
		return errx.Faultf(errx.FaultTranslation, "unknown spatial_constraint.type %q", in.Spatial.Type)
	}

	switch in.Execution.DataSource {
	case model.DataSourceRawAIS, model.DataSourceMLPredictions, model.DataSourceModelInference:
	default:
		return errx.Faultf(errx.FaultTranslation, "unknown execution_mode.data_source %q", in.Execution.DataSource)
	}

	switch in.Output.Format {
	case model.FormatMap, model.FormatTable, model.FormatSummary:
	default:
		return errx.Faultf(errx.FaultTranslation, "unknown output.format %q", in.Output.Format)
	}

	if in.Output.Limit < minLimit || in.Output.Limit > maxLimit {
		return errx.Faultf(errx.FaultTranslation, "output.limit %d outside [%d, %d]", in.Output.Limit, minLimit, maxLimit)
	}

	return nil
}
