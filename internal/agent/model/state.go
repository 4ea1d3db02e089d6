package model

import errx "github.com/vesselquery/server/internal/core/error"

// Turn is one transcript entry.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Transcript roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// QueryInput is the public input for processing one user query.
type QueryInput struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	Model     string `json:"model,omitempty"`
}

// ReferenceResolution is what conversational memory recovers from a query
// before planning.
type ReferenceResolution struct {
	Vessels      []string
	Domain       Domain
	HasReference bool
}

// Response is one formatted run result.
type Response struct {
	Format  string   `json:"format"`
	Data    any      `json:"data"`
	Columns []string `json:"columns,omitempty"`
	Count   int      `json:"count"`
	Message string   `json:"message"`
}

// RunState is the single mutable record threaded through the stage graph for
// one query. It is created fresh per run, owned exclusively by that run, and
// discarded once the result is extracted.
//
// Invariant: once Err is non-empty no stage may touch Result; every stage
// body guards on Err before doing work and the conditional edges terminate
// the run at the next decision point.
type RunState struct {
	RunID     string
	SessionID string
	Query     string
	ModelName string

	// Prior conversation, copied from session memory at run start.
	Transcript []Turn

	// Reference resolution from session memory.
	ReferencedVessels []string
	ReferencedDomain  Domain

	// Planning and validation.
	Intent     *StructuredIntent
	Violations []string

	// Resolved entities.
	VesselIDs []string
	Window    *TimeWindow

	// Execution results. Track is the intermediate point table; Events is
	// populated only by the loitering branch.
	Track  []TrackPoint
	Events []LoiteringEvent
	Result *Response

	// Metadata.
	Trace []string
	Err   string
	Fault errx.Fault
}

// AddTrace appends one human-readable execution log entry.
func (s *RunState) AddTrace(entry string) {
	s.Trace = append(s.Trace, entry)
}

// Fail records a terminal error. The first failure wins; later stages are
// no-ops once Err is set.
func (s *RunState) Fail(msg string) {
	s.FailWith("", msg)
}

// FailWith records a terminal error together with its pipeline fault
// classification. The first failure wins.
func (s *RunState) FailWith(kind errx.Fault, msg string) {
	if s.Err == "" {
		s.Err = msg
		s.Fault = kind
	}
}

// Failed reports whether the run already hit a terminal error.
func (s *RunState) Failed() bool {
	return s.Err != ""
}

// RunResult is the graph's output to its caller.
type RunResult struct {
	Success     bool              `json:"success"`
	Result      *Response         `json:"result,omitempty"`
	Trace       []string          `json:"execution_log"`
	Error       string            `json:"error,omitempty"`
	Fault       errx.Fault        `json:"fault,omitempty"`
	Intent      *StructuredIntent `json:"canonical_intent,omitempty"`
	VesselCount int               `json:"vessel_count"`
}
