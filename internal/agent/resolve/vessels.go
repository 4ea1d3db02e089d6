// Package resolve maps planner-level references (vessel identifiers,
// relative time expressions) onto dataset-level values.
package resolve

import (
	"context"
	"fmt"

	"github.com/vesselquery/server/internal/agent/model"
	errx "github.com/vesselquery/server/internal/core/error"
	logx "github.com/vesselquery/server/pkg/logger"
)

// VesselResolver maps vessel identifiers (IMO/MMSI/name) to the MMSIs
// actually present in the position store.
type VesselResolver struct {
	store model.PositionStore
}

func NewVesselResolver(store model.PositionStore) *VesselResolver {
	return &VesselResolver{store: store}
}

// Resolve returns the resolved MMSI list plus trace notes for identifiers
// that were dropped. Unresolvable identifiers are never fatal; a store
// failure is.
func (r *VesselResolver) Resolve(ctx context.Context, intent *model.StructuredIntent) ([]string, []string, error) {
	if intent.VesselScope == model.ScopeAll {
		ids, err := r.store.ListVesselIDs(ctx)
		if err != nil {
			return nil, nil, errx.NewFault(errx.FaultResolution, err, "list vessels")
		}
		return ids, nil, nil
	}

	var resolved []string
	var notes []string
	for _, vessel := range intent.Vessels {
		switch {
		case vessel.MMSI != "":
			ok, err := r.store.HasVessel(ctx, vessel.MMSI)
			if err != nil {
				return nil, nil, errx.NewFault(errx.FaultResolution, err, fmt.Sprintf("verify mmsi %s", vessel.MMSI))
			}
			if ok {
				resolved = append(resolved, vessel.MMSI)
			} else {
				notes = append(notes, fmt.Sprintf("MMSI not found in dataset: %s", vessel.MMSI))
				logx.Warn().Str("mmsi", vessel.MMSI).Msg("MMSI not found in dataset")
			}

		// IMO and name lookup need vessel metadata the dataset does not
		// carry; dropped with a note instead of failing the run.
		case vessel.IMO != "":
			notes = append(notes, fmt.Sprintf("IMO resolution not available: %s", vessel.IMO))
		case vessel.Name != "":
			notes = append(notes, fmt.Sprintf("Name resolution not available: %s", vessel.Name))
		}
	}

	return resolved, notes, nil
}
