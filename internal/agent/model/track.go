package model

import "time"

// TrackPoint is one AIS position report.
type TrackPoint struct {
	Timestamp    time.Time `json:"timestamp"`
	MMSI         string    `json:"mmsi"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	SOG          float64   `json:"sog"`
	COG          float64   `json:"cog"`
	Interpolated bool      `json:"interpolated"`
}

// LoiteringEvent summarizes one qualifying low-speed dwell segment for one
// vessel. Events are derived per run and never persisted.
type LoiteringEvent struct {
	MMSI            string    `json:"mmsi"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DwellTimeHours  float64   `json:"dwell_time_hours"`
	CenterLatitude  float64   `json:"center_latitude"`
	CenterLongitude float64   `json:"center_longitude"`
	NumPoints       int       `json:"num_points"`
	AvgSpeed        float64   `json:"avg_speed"`
}

// TimeWindow is a resolved absolute time range.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// TrackStats aggregates a track for summary output.
type TrackStats struct {
	TotalPoints   int
	UniqueVessels int
	TimeSpanHours float64
	AvgSpeed      float64
	MaxSpeed      float64
}
