package model

import "context"

// PlanRequest is everything the external planner sees for one query.
type PlanRequest struct {
	Query      string
	Transcript []Turn
	// Reference hints recovered by conversational memory; the planner may use
	// them to ground pronouns, never to invent vessels.
	ContextVessels []string
	ContextDomain  Domain
}

// Planner translates a natural-language query into a structured intent. It is
// called once per run and any failure is a terminal translation fault, never
// a default intent.
type Planner interface {
	Plan(ctx context.Context, req PlanRequest) (*StructuredIntent, error)

	// ModelName identifies the underlying model for trace output.
	ModelName() string
}

// PositionStore serves raw AIS position records.
type PositionStore interface {
	// FetchTrack returns points for the given vessels inside the window,
	// ordered by timestamp ascending, capped at limit rows. An empty vessel
	// list means "no matching vessels" and yields an empty result, not an
	// error.
	FetchTrack(ctx context.Context, vesselIDs []string, window TimeWindow, limit int) ([]TrackPoint, error)

	// ListVesselIDs returns every distinct vessel id in the dataset.
	ListVesselIDs(ctx context.Context) ([]string, error)

	// HasVessel reports whether the vessel id occurs in the dataset.
	HasVessel(ctx context.Context, mmsi string) (bool, error)
}

// TranscriptRepository persists session transcripts. The in-process session
// memory stays authoritative; repositories back the optional archive and the
// history surface.
type TranscriptRepository interface {
	AppendTurn(ctx context.Context, sessionID string, turn Turn) error
	LoadTranscript(ctx context.Context, sessionID string) ([]Turn, error)
	ClearTranscript(ctx context.Context, sessionID string) error
	TurnCount(ctx context.Context, sessionID string) (int, error)
}
