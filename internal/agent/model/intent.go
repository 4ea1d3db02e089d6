package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Domain is the high-level analytical domain of a query.
type Domain string

const (
	DomainTrajectory Domain = "trajectory"
	DomainLoitering  Domain = "loitering"
	DomainPrediction Domain = "prediction"
	DomainListing    Domain = "listing"
)

// Task is the specific operation requested within a domain.
type Task string

const (
	TaskShow    Task = "show"
	TaskPredict Task = "predict"
	TaskDetect  Task = "detect"
	TaskList    Task = "list"
)

// Scope describes how many vessels the query targets.
type Scope string

const (
	ScopeSingle   Scope = "single"
	ScopeMultiple Scope = "multiple"
	ScopeAll      Scope = "all"
)

// Time constraint modes.
const (
	TimeModeRelative = "relative"
	TimeModeAbsolute = "absolute"
)

// Spatial constraint types.
const (
	SpatialNone            = "none"
	SpatialCoastalDistance = "coastal_distance"
	SpatialPolygon         = "polygon"
)

// Data sources for execution.
const (
	DataSourceRawAIS         = "raw_ais"
	DataSourceMLPredictions  = "ml_predictions"
	DataSourceModelInference = "model_inference"
)

// Output formats.
const (
	FormatMap     = "map"
	FormatTable   = "table"
	FormatSummary = "summary"
)

// VesselIdentifier names a vessel by any of the identifiers the planner may
// extract. All fields are optional; the validator and resolver decide what is
// usable.
type VesselIdentifier struct {
	IMO  string `json:"imo,omitempty"`
	MMSI string `json:"mmsi,omitempty"`
	Name string `json:"name,omitempty"`
}

// TimeConstraint is either a relative expression (last_6h, yesterday, ...) or
// an absolute start/end pair in ISO format.
type TimeConstraint struct {
	Mode     string `json:"mode"`
	Relative string `json:"relative,omitempty"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
}

// SpatialConstraint restricts results geographically. Coastal-distance and
// polygon filtering are capability stubs for now; the types are still
// validated so the planner contract stays stable.
type SpatialConstraint struct {
	Type        string   `json:"type"`
	DistanceNM  *float64 `json:"distance_nm,omitempty"`
	PolygonType string   `json:"polygon_type,omitempty"`
	PolygonID   string   `json:"polygon_id,omitempty"`
}

// ExecutionMode selects the data source backing the query.
type ExecutionMode struct {
	DataSource string `json:"data_source"`
	ModelName  string `json:"model_name,omitempty"`
}

// OutputSpec controls result formatting.
type OutputSpec struct {
	Format string `json:"format"`
	Limit  int    `json:"limit"`
}

// StructuredIntent is the canonical, schema-validated representation of one
// analytical request. It is produced by the external planner and is pure
// data; it must never contain directives interpretable as code.
type StructuredIntent struct {
	Domain      Domain             `json:"domain_intent"`
	Task        Task               `json:"task_intent"`
	VesselScope Scope              `json:"vessel_scope"`
	Vessels     []VesselIdentifier `json:"vessels"`
	Time        TimeConstraint     `json:"time_constraint"`
	Spatial     SpatialConstraint  `json:"spatial_constraint"`
	Execution   ExecutionMode      `json:"execution_mode"`
	Output      OutputSpec         `json:"output"`
}

// JSON renders the intent serialized form for logs and trace output.
func (in *StructuredIntent) JSON() string {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Sprintf("%+v", *in)
	}
	return string(b)
}

// timestampLayouts are the accepted ISO shapes for absolute constraints; the
// planner emits zone-less ISO, stored data carries RFC3339.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-style timestamp string.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
