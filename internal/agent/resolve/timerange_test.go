package resolve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesselquery/server/internal/agent/model"
	errx "github.com/vesselquery/server/internal/core/error"
)

// A Wednesday, mid-afternoon UTC.
var refNow = time.Date(2024, 3, 6, 15, 30, 0, 0, time.UTC)

func relative(expr string) model.TimeConstraint {
	return model.TimeConstraint{Mode: model.TimeModeRelative, Relative: expr}
}

func TestResolveWindowAbsolute(t *testing.T) {
	w, err := ResolveWindow(model.TimeConstraint{
		Mode:  model.TimeModeAbsolute,
		Start: "2024-01-01T00:00:00Z",
		End:   "2024-01-31",
	}, refNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), w.End)
}

func TestResolveWindowAbsoluteBadTimestamp(t *testing.T) {
	_, err := ResolveWindow(model.TimeConstraint{
		Mode:  model.TimeModeAbsolute,
		Start: "not-a-time",
		End:   "2024-01-31",
	}, refNow)
	require.Error(t, err)
	assert.Equal(t, errx.FaultResolution, errx.FaultOf(err))
}

func TestResolveWindowLastHours(t *testing.T) {
	w, err := ResolveWindow(relative("last_6h"), refNow)
	require.NoError(t, err)
	assert.Equal(t, refNow.Add(-6*time.Hour), w.Start)
	assert.Equal(t, refNow, w.End)
}

func TestResolveWindowLastDays(t *testing.T) {
	w, err := ResolveWindow(relative("last_3d"), refNow)
	require.NoError(t, err)
	assert.Equal(t, refNow.AddDate(0, 0, -3), w.Start)
	assert.Equal(t, refNow, w.End)
}

func TestResolveWindowLastWeek(t *testing.T) {
	w, err := ResolveWindow(relative("last_week"), refNow)
	require.NoError(t, err)
	assert.Equal(t, refNow.AddDate(0, 0, -7), w.Start)
	assert.Equal(t, refNow, w.End)
}

func TestResolveWindowLastWeekend(t *testing.T) {
	w, err := ResolveWindow(relative("last_weekend"), refNow)
	require.NoError(t, err)
	// Preceding Saturday 2024-03-02 through Sunday 2024-03-03.
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, 3, w.End.Day())
	assert.Equal(t, 23, w.End.Hour())
}

func TestResolveWindowLastWeekendOnSunday(t *testing.T) {
	sunday := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	w, err := ResolveWindow(relative("last_weekend"), sunday)
	require.NoError(t, err)
	// On a Sunday the previous full weekend is meant, not the running one.
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, 3, w.End.Day())
}

func TestResolveWindowToday(t *testing.T) {
	w, err := ResolveWindow(relative("today"), refNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, refNow, w.End)
}

func TestResolveWindowYesterday(t *testing.T) {
	w, err := ResolveWindow(relative("yesterday"), refNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, 5, w.End.Day())
	assert.Equal(t, 23, w.End.Hour())
	assert.True(t, w.End.Before(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)))
}

func TestResolveWindowUnknownFallsBackToLast24h(t *testing.T) {
	w, err := ResolveWindow(relative("fortnight_ago"), refNow)
	require.NoError(t, err)
	assert.Equal(t, refNow.AddDate(0, 0, -1), w.Start)
	assert.Equal(t, refNow, w.End)
}

func TestResolveWindowNormalizesCaseAndSpace(t *testing.T) {
	w, err := ResolveWindow(relative("  LAST_12H "), refNow)
	require.NoError(t, err)
	assert.Equal(t, refNow.Add(-12*time.Hour), w.Start)
}
