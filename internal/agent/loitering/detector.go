// Package loitering detects low-speed dwell behavior in vessel tracks.
//
// The algorithm is a single left-to-right scan per vessel, not a clustering
// pass: points below the speed threshold are segmented wherever consecutive
// timestamps drift more than the gap apart, and each segment long enough in
// wall time becomes one event.
package loitering

import (
	"sort"

	"github.com/vesselquery/server/internal/agent/model"
	logx "github.com/vesselquery/server/pkg/logger"
)

// Default thresholds, matching the service configuration defaults.
const (
	DefaultSpeedThresholdKnots = 2.0
	DefaultMinDwellHours       = 4.0
	DefaultSegmentGapHours     = 1.0
)

// Detector holds the three independent thresholds. The segmentation gap is
// deliberately decoupled from the dwell threshold.
type Detector struct {
	SpeedThresholdKnots float64
	MinDwellHours       float64
	SegmentGapHours     float64
}

func NewDetector(cfg model.LoiteringConfig) *Detector {
	d := &Detector{
		SpeedThresholdKnots: cfg.SpeedThresholdKnots,
		MinDwellHours:       cfg.MinDwellHours,
		SegmentGapHours:     cfg.SegmentGapHours,
	}
	if d.SpeedThresholdKnots <= 0 {
		d.SpeedThresholdKnots = DefaultSpeedThresholdKnots
	}
	if d.MinDwellHours <= 0 {
		d.MinDwellHours = DefaultMinDwellHours
	}
	if d.SegmentGapHours <= 0 {
		d.SegmentGapHours = DefaultSegmentGapHours
	}
	return d
}

// Detect finds loitering events in the track. The function is pure: it never
// mutates its input and identical input always yields identical output, with
// events ordered by vessel id then start time.
func (d *Detector) Detect(points []model.TrackPoint, spatial *model.SpatialConstraint) []model.LoiteringEvent {
	slow := make([]model.TrackPoint, 0, len(points))
	for _, p := range points {
		if p.SOG < d.SpeedThresholdKnots {
			slow = append(slow, p)
		}
	}
	if len(slow) == 0 {
		logx.Debug().Msg("No slow-moving points; no loitering possible")
		return nil
	}

	byVessel := make(map[string][]model.TrackPoint)
	for _, p := range slow {
		byVessel[p.MMSI] = append(byVessel[p.MMSI], p)
	}
	vessels := make([]string, 0, len(byVessel))
	for mmsi := range byVessel {
		vessels = append(vessels, mmsi)
	}
	sort.Strings(vessels)

	var events []model.LoiteringEvent
	for _, mmsi := range vessels {
		track := byVessel[mmsi]
		sort.SliceStable(track, func(i, j int) bool {
			return track[i].Timestamp.Before(track[j].Timestamp)
		})
		events = append(events, d.detectForVessel(mmsi, track)...)
	}

	if spatial != nil && spatial.Type != model.SpatialNone {
		events = filterForConstraint(*spatial).apply(events)
	}

	logx.Debug().Int("events", len(events)).Msg("Loitering detection complete")
	return events
}

func (d *Detector) detectForVessel(mmsi string, track []model.TrackPoint) []model.LoiteringEvent {
	var events []model.LoiteringEvent
	segStart := 0
	for i := 1; i <= len(track); i++ {
		if i < len(track) {
			gap := track[i].Timestamp.Sub(track[i-1].Timestamp).Hours()
			if gap <= d.SegmentGapHours {
				continue
			}
		}
		if ev, ok := d.segmentEvent(mmsi, track[segStart:i]); ok {
			events = append(events, ev)
		}
		segStart = i
	}
	return events
}

// segmentEvent turns one maximal contiguous segment into an event when it has
// at least two points and its span reaches the dwell threshold (ties
// included).
func (d *Detector) segmentEvent(mmsi string, seg []model.TrackPoint) (model.LoiteringEvent, bool) {
	if len(seg) < 2 {
		return model.LoiteringEvent{}, false
	}

	start := seg[0].Timestamp
	end := seg[len(seg)-1].Timestamp
	dwell := end.Sub(start).Hours()
	if dwell < d.MinDwellHours {
		return model.LoiteringEvent{}, false
	}

	var sumLat, sumLon, sumSpeed float64
	for _, p := range seg {
		sumLat += p.Latitude
		sumLon += p.Longitude
		sumSpeed += p.SOG
	}
	n := float64(len(seg))

	return model.LoiteringEvent{
		MMSI:            mmsi,
		StartTime:       start,
		EndTime:         end,
		DwellTimeHours:  dwell,
		CenterLatitude:  sumLat / n,
		CenterLongitude: sumLon / n,
		NumPoints:       len(seg),
		AvgSpeed:        sumSpeed / n,
	}, true
}
