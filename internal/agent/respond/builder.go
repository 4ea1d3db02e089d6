// Package respond formats pipeline results for the caller: row tables,
// map-ready point features, or a one-sentence natural-language summary.
package respond

import (
	"fmt"
	"strings"
	"time"

	"github.com/vesselquery/server/internal/agent/model"
	logx "github.com/vesselquery/server/pkg/logger"
)

var trackColumns = []string{"timestamp", "latitude", "longitude", "mmsi", "sog", "cog", "interpolated"}

var loiteringColumns = []string{
	"mmsi", "start_time", "end_time", "dwell_time_hours",
	"center_latitude", "center_longitude", "num_points", "avg_speed",
}

type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// BuildTrack formats a trajectory result.
func (b *Builder) BuildTrack(points []model.TrackPoint, format string, limit int) *model.Response {
	if len(points) > limit && limit > 0 {
		points = points[:limit]
	}
	rows := make([]map[string]any, 0, len(points))
	for _, p := range points {
		rows = append(rows, map[string]any{
			"timestamp":    p.Timestamp.Format(time.RFC3339),
			"latitude":     p.Latitude,
			"longitude":    p.Longitude,
			"mmsi":         p.MMSI,
			"sog":          p.SOG,
			"cog":          p.COG,
			"interpolated": p.Interpolated,
		})
	}
	if format == model.FormatSummary {
		return summaryResponse(trackSummary(points), len(points))
	}
	return b.build(rows, trackColumns, format)
}

// BuildLoitering formats a loitering-detection result.
func (b *Builder) BuildLoitering(events []model.LoiteringEvent, format string, limit int) *model.Response {
	if len(events) > limit && limit > 0 {
		events = events[:limit]
	}
	rows := make([]map[string]any, 0, len(events))
	for _, e := range events {
		rows = append(rows, map[string]any{
			"mmsi":             e.MMSI,
			"start_time":       e.StartTime.Format(time.RFC3339),
			"end_time":         e.EndTime.Format(time.RFC3339),
			"dwell_time_hours": e.DwellTimeHours,
			"center_latitude":  e.CenterLatitude,
			"center_longitude": e.CenterLongitude,
			"num_points":       e.NumPoints,
			"avg_speed":        e.AvgSpeed,
		})
	}
	if format == model.FormatSummary {
		return summaryResponse(loiteringSummary(events), len(events))
	}
	// Loitering rows carry centroid coordinates under center_* keys, so the
	// map format falls back to a table rather than emitting bogus features.
	return b.build(rows, loiteringColumns, format)
}

func (b *Builder) build(rows []map[string]any, columns []string, format string) *model.Response {
	if len(rows) == 0 {
		return &model.Response{Format: format, Data: nil, Count: 0, Message: "No results found"}
	}

	switch format {
	case model.FormatMap:
		return mapResponse(rows, columns)
	case model.FormatTable:
		return tableResponse(rows, columns)
	default:
		logx.Warn().Str("format", format).Msg("Unknown output format; defaulting to table")
		return tableResponse(rows, columns)
	}
}

func tableResponse(rows []map[string]any, columns []string) *model.Response {
	return &model.Response{
		Format:  model.FormatTable,
		Data:    rows,
		Columns: columns,
		Count:   len(rows),
		Message: fmt.Sprintf("Found %d results", len(rows)),
	}
}

// mapResponse emits one point feature per row. Rows without latitude and
// longitude fields fall back to the table format.
func mapResponse(rows []map[string]any, columns []string) *model.Response {
	if _, ok := rows[0]["latitude"]; !ok {
		logx.Warn().Msg("Rows missing latitude/longitude; falling back to table format")
		return tableResponse(rows, columns)
	}
	if _, ok := rows[0]["longitude"]; !ok {
		logx.Warn().Msg("Rows missing latitude/longitude; falling back to table format")
		return tableResponse(rows, columns)
	}

	features := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		props := make(map[string]any, len(row))
		for k, v := range row {
			if k == "latitude" || k == "longitude" {
				continue
			}
			props[k] = v
		}
		features = append(features, map[string]any{
			"type": "Feature",
			"geometry": map[string]any{
				"type":        "Point",
				"coordinates": []any{row["longitude"], row["latitude"]},
			},
			"properties": props,
		})
	}

	return &model.Response{
		Format: model.FormatMap,
		Data: map[string]any{
			"type":     "FeatureCollection",
			"features": features,
		},
		Count:   len(features),
		Message: fmt.Sprintf("Found %d points", len(features)),
	}
}

func summaryResponse(text string, count int) *model.Response {
	return &model.Response{
		Format:  model.FormatSummary,
		Data:    text,
		Count:   count,
		Message: text,
	}
}

func trackSummary(points []model.TrackPoint) string {
	if len(points) == 0 {
		return "No results found"
	}
	stats := TrackStats(points)
	parts := []string{
		fmt.Sprintf("Found %d records", stats.TotalPoints),
		fmt.Sprintf("from %d vessel(s)", stats.UniqueVessels),
		fmt.Sprintf("between %s and %s",
			minTrackTime(points).Format(time.RFC3339),
			maxTrackTime(points).Format(time.RFC3339)),
		fmt.Sprintf("Average speed: %.2f knots, Max speed: %.2f knots", stats.AvgSpeed, stats.MaxSpeed),
	}
	return strings.Join(parts, ". ") + "."
}

func loiteringSummary(events []model.LoiteringEvent) string {
	if len(events) == 0 {
		return "No results found"
	}
	vessels := make(map[string]struct{})
	var totalDwell, sumSpeed, maxSpeed float64
	for _, e := range events {
		vessels[e.MMSI] = struct{}{}
		totalDwell += e.DwellTimeHours
		sumSpeed += e.AvgSpeed
		if e.AvgSpeed > maxSpeed {
			maxSpeed = e.AvgSpeed
		}
	}
	parts := []string{
		fmt.Sprintf("Found %d records", len(events)),
		fmt.Sprintf("from %d vessel(s)", len(vessels)),
		fmt.Sprintf("Average speed: %.2f knots, Max speed: %.2f knots",
			sumSpeed/float64(len(events)), maxSpeed),
		fmt.Sprintf("Total dwell time: %.2f hours, Average: %.2f hours",
			totalDwell, totalDwell/float64(len(events))),
	}
	return strings.Join(parts, ". ") + "."
}

// TrackStats computes summary statistics for a track.
func TrackStats(points []model.TrackPoint) model.TrackStats {
	if len(points) == 0 {
		return model.TrackStats{}
	}
	vessels := make(map[string]struct{})
	var sumSpeed, maxSpeed float64
	for _, p := range points {
		vessels[p.MMSI] = struct{}{}
		sumSpeed += p.SOG
		if p.SOG > maxSpeed {
			maxSpeed = p.SOG
		}
	}
	stats := model.TrackStats{
		TotalPoints:   len(points),
		UniqueVessels: len(vessels),
		AvgSpeed:      sumSpeed / float64(len(points)),
		MaxSpeed:      maxSpeed,
	}
	if len(points) > 1 {
		stats.TimeSpanHours = maxTrackTime(points).Sub(minTrackTime(points)).Hours()
	}
	return stats
}

func minTrackTime(points []model.TrackPoint) time.Time {
	min := points[0].Timestamp
	for _, p := range points[1:] {
		if p.Timestamp.Before(min) {
			min = p.Timestamp
		}
	}
	return min
}

func maxTrackTime(points []model.TrackPoint) time.Time {
	max := points[0].Timestamp
	for _, p := range points[1:] {
		if p.Timestamp.After(max) {
			max = p.Timestamp
		}
	}
	return max
}
