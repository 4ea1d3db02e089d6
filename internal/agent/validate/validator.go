// Package validate checks structured intents for logical consistency before
// any analytics run. Validation is pure: the same intent always yields the
// same violation list, and all rules are evaluated so the caller sees every
// problem at once.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vesselquery/server/internal/agent/model"
	logx "github.com/vesselquery/server/pkg/logger"
)

var mmsiPattern = regexp.MustCompile(`^\d{9}$`)

// unsafeTokens is a defense-in-depth denylist scanned over the intent's
// string values. The intent is pure data; none of these should ever appear
// in planner output.
var unsafeTokens = []string{"exec", "eval", "import", "os.", "subprocess", "__"}

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Validate returns the accumulated rule violations for the intent; an empty
// list means valid. A nil intent is a single violation rather than a panic.
func (v *Validator) Validate(intent *model.StructuredIntent) []string {
	if intent == nil {
		return []string{"intent is missing"}
	}

	var errs []string

	// 1. Vessel scope / vessel list cardinality.
	switch intent.VesselScope {
	case model.ScopeSingle:
		if len(intent.Vessels) != 1 {
			errs = append(errs, "vessel_scope is 'single' but vessels list does not contain exactly 1 vessel")
		}
	case model.ScopeMultiple:
		if len(intent.Vessels) < 2 {
			errs = append(errs, "vessel_scope is 'multiple' but vessels list contains less than 2 vessels")
		}
	case model.ScopeAll:
		if len(intent.Vessels) > 0 {
			errs = append(errs, "vessel_scope is 'all' but vessels list is not empty")
		}
	}

	// 2. MMSI format.
	for _, vessel := range intent.Vessels {
		if vessel.MMSI != "" && !ValidMMSI(vessel.MMSI) {
			errs = append(errs, fmt.Sprintf("Invalid MMSI format: %s", vessel.MMSI))
		}
	}

	// 3. Time constraints.
	switch intent.Time.Mode {
	case model.TimeModeRelative:
		if intent.Time.Relative == "" {
			errs = append(errs, "Time mode is 'relative' but no relative expression provided")
		}
	case model.TimeModeAbsolute:
		if intent.Time.Start == "" || intent.Time.End == "" {
			errs = append(errs, "Time mode is 'absolute' but start/end not provided")
		} else if !validTimeRange(intent.Time.Start, intent.Time.End) {
			errs = append(errs, "Invalid time range: start must be before end")
		}
	}

	// 4. Spatial constraints.
	if intent.Spatial.Type == model.SpatialCoastalDistance {
		if intent.Spatial.DistanceNM == nil || *intent.Spatial.DistanceNM <= 0 {
			errs = append(errs, "Spatial type is 'coastal_distance' but distance_nm is invalid")
		}
	}
	if intent.Spatial.Type == model.SpatialPolygon && intent.Spatial.PolygonType == "" {
		errs = append(errs, "Spatial type is 'polygon' but polygon_type not provided")
	}

	// 5. Execution mode.
	if intent.Execution.DataSource == model.DataSourceModelInference && intent.Execution.ModelName == "" {
		errs = append(errs, "Execution mode is 'model_inference' but model_name not provided")
	}

	// 6. Domain/task compatibility.
	if intent.Domain == model.DomainLoitering && intent.Task != model.TaskDetect && intent.Task != model.TaskShow {
		errs = append(errs, fmt.Sprintf("Incompatible: domain_intent 'loitering' with task_intent '%s'", intent.Task))
	}
	if intent.Domain == model.DomainPrediction && intent.Task != model.TaskPredict {
		errs = append(errs, fmt.Sprintf("Incompatible: domain_intent 'prediction' with task_intent '%s'", intent.Task))
	}

	// 7. Denylist scan over the intent's string values. Schema key names are
	// fixed and never scanned; "execution_mode" would otherwise trip the
	// "exec" token on every intent.
	values := stringValues(intent)
	for _, token := range unsafeTokens {
		if containsToken(values, token) {
			errs = append(errs, fmt.Sprintf("Unsafe keyword detected: %s", token))
		}
	}

	if len(errs) > 0 {
		logx.Warn().Int("violations", len(errs)).Msg("Intent validation failed")
	} else {
		logx.Debug().Msg("Intent validation passed")
	}

	return errs
}

// IsValid reports whether the intent passes every rule.
func (v *Validator) IsValid(intent *model.StructuredIntent) bool {
	return len(v.Validate(intent)) == 0
}

// ValidMMSI reports whether the value matches the fixed 9-decimal-digit MMSI
// pattern.
func ValidMMSI(mmsi string) bool {
	return mmsiPattern.MatchString(strings.TrimSpace(mmsi))
}

// stringValues collects every planner-supplied string in the intent,
// enum fields included.
func stringValues(in *model.StructuredIntent) []string {
	values := []string{
		string(in.Domain), string(in.Task), string(in.VesselScope),
		in.Time.Mode, in.Time.Relative, in.Time.Start, in.Time.End,
		in.Spatial.Type, in.Spatial.PolygonType, in.Spatial.PolygonID,
		in.Execution.DataSource, in.Execution.ModelName,
		in.Output.Format,
	}
	for _, vessel := range in.Vessels {
		values = append(values, vessel.IMO, vessel.MMSI, vessel.Name)
	}
	return values
}

func containsToken(values []string, token string) bool {
	for _, v := range values {
		if strings.Contains(v, token) {
			return true
		}
	}
	return false
}

func validTimeRange(start, end string) bool {
	s, err := model.ParseTimestamp(start)
	if err != nil {
		return false
	}
	e, err := model.ParseTimestamp(end)
	if err != nil {
		return false
	}
	return s.Before(e)
}
