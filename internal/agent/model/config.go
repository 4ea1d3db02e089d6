package model

// ================ Config ================

// PlannerModelConfig tunes the LLM used purely as the query planner.
type PlannerModelConfig struct {
	Model       string  `envconfig:"PLANNER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"PLANNER_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"PLANNER_TEMPERATURE" default:"0"`
}

// SessionConfig bounds the per-session conversational memory and the TTL of
// the optional transcript archive.
type SessionConfig struct {
	MaxTranscript int    `envconfig:"SESSION_MAX_TRANSCRIPT" default:"10"`
	ArchiveTTL    string `envconfig:"SESSION_ARCHIVE_TTL" default:"15m"`
}

// LoiteringConfig carries the detector thresholds. The segmentation gap is a
// deliberately separate knob from the dwell threshold.
type LoiteringConfig struct {
	SpeedThresholdKnots float64 `envconfig:"LOITERING_SPEED_THRESHOLD_KNOTS" default:"2.0"`
	MinDwellHours       float64 `envconfig:"LOITERING_MIN_DWELL_HOURS" default:"4.0"`
	SegmentGapHours     float64 `envconfig:"LOITERING_SEGMENT_GAP_HOURS" default:"1.0"`
}

// StoreConfig locates the AIS position store.
type StoreConfig struct {
	Path string `envconfig:"STORE_PATH" default:"ais.db"`
}

// OutputConfig holds service-level output defaults.
type OutputConfig struct {
	DefaultLimit int `envconfig:"OUTPUT_DEFAULT_LIMIT" default:"50"`
}
