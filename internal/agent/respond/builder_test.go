package respond

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesselquery/server/internal/agent/model"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func samplePoints() []model.TrackPoint {
	return []model.TrackPoint{
		{Timestamp: base, MMSI: "367001234", Latitude: 10.0, Longitude: 20.0, SOG: 5.0, COG: 90.0},
		{Timestamp: base.Add(time.Hour), MMSI: "367001234", Latitude: 10.1, Longitude: 20.1, SOG: 7.0, COG: 95.0},
		{Timestamp: base.Add(2 * time.Hour), MMSI: "367005678", Latitude: 11.0, Longitude: 21.0, SOG: 3.0, COG: 180.0},
	}
}

func sampleEvents() []model.LoiteringEvent {
	return []model.LoiteringEvent{
		{
			MMSI:            "367001234",
			StartTime:       base,
			EndTime:         base.Add(5 * time.Hour),
			DwellTimeHours:  5.0,
			CenterLatitude:  10.0,
			CenterLongitude: 20.0,
			NumPoints:       11,
			AvgSpeed:        0.5,
		},
	}
}

func TestBuildTrackTable(t *testing.T) {
	b := NewBuilder()
	res := b.BuildTrack(samplePoints(), model.FormatTable, 50)

	assert.Equal(t, model.FormatTable, res.Format)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, trackColumns, res.Columns)

	rows, ok := res.Data.([]map[string]any)
	require.True(t, ok)
	require.Len(t, rows, 3)
	assert.Equal(t, "367001234", rows[0]["mmsi"])
	assert.Equal(t, base.Format(time.RFC3339), rows[0]["timestamp"])
}

func TestBuildTrackHonorsLimit(t *testing.T) {
	b := NewBuilder()
	res := b.BuildTrack(samplePoints(), model.FormatTable, 2)
	assert.Equal(t, 2, res.Count)
}

func TestBuildTrackMap(t *testing.T) {
	b := NewBuilder()
	res := b.BuildTrack(samplePoints(), model.FormatMap, 50)

	assert.Equal(t, model.FormatMap, res.Format)
	fc, ok := res.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "FeatureCollection", fc["type"])

	features, ok := fc["features"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, features, 3)

	geom := features[0]["geometry"].(map[string]any)
	assert.Equal(t, "Point", geom["type"])
	// GeoJSON order: longitude first.
	coords := geom["coordinates"].([]any)
	assert.Equal(t, 20.0, coords[0])
	assert.Equal(t, 10.0, coords[1])

	props := features[0]["properties"].(map[string]any)
	assert.Equal(t, "367001234", props["mmsi"])
	assert.NotContains(t, props, "latitude")
	assert.NotContains(t, props, "longitude")
}

func TestBuildTrackSummary(t *testing.T) {
	b := NewBuilder()
	res := b.BuildTrack(samplePoints(), model.FormatSummary, 50)

	assert.Equal(t, model.FormatSummary, res.Format)
	assert.Equal(t, 3, res.Count)
	assert.Contains(t, res.Message, "Found 3 records")
	assert.Contains(t, res.Message, "from 2 vessel(s)")
	assert.Contains(t, res.Message, "Average speed: 5.00 knots")
	assert.Contains(t, res.Message, "Max speed: 7.00 knots")
}

func TestBuildTrackEmpty(t *testing.T) {
	b := NewBuilder()
	res := b.BuildTrack(nil, model.FormatTable, 50)
	assert.Equal(t, 0, res.Count)
	assert.Nil(t, res.Data)
	assert.Equal(t, "No results found", res.Message)
}

func TestBuildLoiteringTable(t *testing.T) {
	b := NewBuilder()
	res := b.BuildLoitering(sampleEvents(), model.FormatTable, 50)

	assert.Equal(t, model.FormatTable, res.Format)
	assert.Equal(t, 1, res.Count)
	rows := res.Data.([]map[string]any)
	assert.Equal(t, 5.0, rows[0]["dwell_time_hours"])
	assert.Equal(t, 10.0, rows[0]["center_latitude"])
}

func TestBuildLoiteringMapFallsBackToTable(t *testing.T) {
	b := NewBuilder()
	res := b.BuildLoitering(sampleEvents(), model.FormatMap, 50)

	// Loitering rows carry center_* keys, not latitude/longitude, so the
	// map format degrades to a table instead of emitting broken features.
	assert.Equal(t, model.FormatTable, res.Format)
	assert.Equal(t, loiteringColumns, res.Columns)
}

func TestBuildLoiteringSummary(t *testing.T) {
	b := NewBuilder()
	res := b.BuildLoitering(sampleEvents(), model.FormatSummary, 50)

	assert.Contains(t, res.Message, "Found 1 records")
	assert.Contains(t, res.Message, "Total dwell time: 5.00 hours")
}

func TestUnknownFormatDefaultsToTable(t *testing.T) {
	b := NewBuilder()
	res := b.BuildTrack(samplePoints(), "csv", 50)
	assert.Equal(t, model.FormatTable, res.Format)
}

func TestTrackStats(t *testing.T) {
	stats := TrackStats(samplePoints())
	assert.Equal(t, 3, stats.TotalPoints)
	assert.Equal(t, 2, stats.UniqueVessels)
	assert.InDelta(t, 5.0, stats.AvgSpeed, 1e-9)
	assert.InDelta(t, 7.0, stats.MaxSpeed, 1e-9)
	assert.InDelta(t, 2.0, stats.TimeSpanHours, 1e-9)

	assert.Equal(t, model.TrackStats{}, TrackStats(nil))
}
