package resolve

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesselquery/server/internal/agent/model"
	errx "github.com/vesselquery/server/internal/core/error"
)

// fakeStore implements model.PositionStore over a fixed vessel set.
type fakeStore struct {
	vessels []string
	failing bool
}

func (f *fakeStore) FetchTrack(_ context.Context, _ []string, _ model.TimeWindow, _ int) ([]model.TrackPoint, error) {
	return nil, nil
}

func (f *fakeStore) ListVesselIDs(_ context.Context) ([]string, error) {
	if f.failing {
		return nil, fmt.Errorf("store down")
	}
	return f.vessels, nil
}

func (f *fakeStore) HasVessel(_ context.Context, mmsi string) (bool, error) {
	if f.failing {
		return false, fmt.Errorf("store down")
	}
	for _, v := range f.vessels {
		if v == mmsi {
			return true, nil
		}
	}
	return false, nil
}

func TestResolveScopeAll(t *testing.T) {
	r := NewVesselResolver(&fakeStore{vessels: []string{"367001234", "367005678"}})

	ids, notes, err := r.Resolve(context.Background(), &model.StructuredIntent{
		VesselScope: model.ScopeAll,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"367001234", "367005678"}, ids)
	assert.Empty(t, notes)
}

func TestResolveKnownMMSI(t *testing.T) {
	r := NewVesselResolver(&fakeStore{vessels: []string{"367001234"}})

	ids, notes, err := r.Resolve(context.Background(), &model.StructuredIntent{
		VesselScope: model.ScopeSingle,
		Vessels:     []model.VesselIdentifier{{MMSI: "367001234"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"367001234"}, ids)
	assert.Empty(t, notes)
}

func TestResolveUnknownMMSIDroppedWithNote(t *testing.T) {
	r := NewVesselResolver(&fakeStore{vessels: []string{"367001234"}})

	ids, notes, err := r.Resolve(context.Background(), &model.StructuredIntent{
		VesselScope: model.ScopeMultiple,
		Vessels: []model.VesselIdentifier{
			{MMSI: "367001234"},
			{MMSI: "999999999"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"367001234"}, ids)
	require.Len(t, notes, 1)
	assert.Equal(t, "MMSI not found in dataset: 999999999", notes[0])
}

func TestResolveIMOAndNameNotSupported(t *testing.T) {
	r := NewVesselResolver(&fakeStore{})

	ids, notes, err := r.Resolve(context.Background(), &model.StructuredIntent{
		VesselScope: model.ScopeMultiple,
		Vessels: []model.VesselIdentifier{
			{IMO: "9074729"},
			{Name: "EVER GIVEN"},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, ids)
	require.Len(t, notes, 2)
	assert.Contains(t, notes[0], "IMO resolution not available")
	assert.Contains(t, notes[1], "Name resolution not available")
}

func TestResolveStoreFailureIsFatal(t *testing.T) {
	r := NewVesselResolver(&fakeStore{failing: true})

	_, _, err := r.Resolve(context.Background(), &model.StructuredIntent{
		VesselScope: model.ScopeSingle,
		Vessels:     []model.VesselIdentifier{{MMSI: "367001234"}},
	})
	require.Error(t, err)
	assert.Equal(t, errx.FaultResolution, errx.FaultOf(err))
}
