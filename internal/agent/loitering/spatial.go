package loitering

import (
	"github.com/vesselquery/server/internal/agent/model"
	logx "github.com/vesselquery/server/pkg/logger"
)

// spatialFilter post-filters emitted events by a spatial constraint. Each
// constraint type maps to its own variant so adding real geometry later is a
// localized change.
type spatialFilter interface {
	apply(events []model.LoiteringEvent) []model.LoiteringEvent
}

func filterForConstraint(c model.SpatialConstraint) spatialFilter {
	switch c.Type {
	case model.SpatialCoastalDistance:
		var dist float64
		if c.DistanceNM != nil {
			dist = *c.DistanceNM
		}
		return coastalDistanceFilter{distanceNM: dist}
	case model.SpatialPolygon:
		return polygonFilter{polygonType: c.PolygonType, polygonID: c.PolygonID}
	default:
		return passAllFilter{}
	}
}

type passAllFilter struct{}

func (passAllFilter) apply(events []model.LoiteringEvent) []model.LoiteringEvent {
	return events
}

// coastalDistanceFilter needs coastline data that the service does not carry
// yet; until then it passes every event through and says so.
type coastalDistanceFilter struct {
	distanceNM float64
}

func (f coastalDistanceFilter) apply(events []model.LoiteringEvent) []model.LoiteringEvent {
	logx.Warn().Float64("distance_nm", f.distanceNM).
		Msg("Coastal distance filtering not yet implemented; passing all events")
	return events
}

// polygonFilter needs polygon data (EEZ, TTW, fishing zones); until then it
// passes every event through and says so.
type polygonFilter struct {
	polygonType string
	polygonID   string
}

func (f polygonFilter) apply(events []model.LoiteringEvent) []model.LoiteringEvent {
	logx.Warn().Str("polygon_type", f.polygonType).Str("polygon_id", f.polygonID).
		Msg("Polygon filtering not yet implemented; passing all events")
	return events
}
