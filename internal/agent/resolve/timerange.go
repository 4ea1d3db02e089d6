package resolve

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vesselquery/server/internal/agent/model"
	errx "github.com/vesselquery/server/internal/core/error"
	logx "github.com/vesselquery/server/pkg/logger"
)

var (
	lastHoursPattern = regexp.MustCompile(`^last_(\d+)h$`)
	lastDaysPattern  = regexp.MustCompile(`^last_(\d+)d$`)
)

// ResolveWindow turns a time constraint into an absolute window. The current
// time is injected so runs stay reproducible under test.
func ResolveWindow(tc model.TimeConstraint, now time.Time) (model.TimeWindow, error) {
	if tc.Mode == model.TimeModeAbsolute {
		start, err := model.ParseTimestamp(tc.Start)
		if err != nil {
			return model.TimeWindow{}, errx.NewFault(errx.FaultResolution, err, "parse start")
		}
		end, err := model.ParseTimestamp(tc.End)
		if err != nil {
			return model.TimeWindow{}, errx.NewFault(errx.FaultResolution, err, "parse end")
		}
		return model.TimeWindow{Start: start, End: end}, nil
	}
	return parseRelative(tc.Relative, now), nil
}

// parseRelative maps the supported relative vocabulary to a window ending at
// now (or at the end of the named period). Unrecognized expressions fall back
// to the last 24 hours with a logged warning rather than failing the run.
func parseRelative(expr string, now time.Time) model.TimeWindow {
	expr = strings.ToLower(strings.TrimSpace(expr))

	if m := lastHoursPattern.FindStringSubmatch(expr); m != nil {
		hours, _ := strconv.Atoi(m[1])
		return model.TimeWindow{Start: now.Add(-time.Duration(hours) * time.Hour), End: now}
	}

	if m := lastDaysPattern.FindStringSubmatch(expr); m != nil {
		days, _ := strconv.Atoi(m[1])
		return model.TimeWindow{Start: now.AddDate(0, 0, -days), End: now}
	}

	switch expr {
	case "last_week":
		return model.TimeWindow{Start: now.AddDate(0, 0, -7), End: now}

	case "last_weekend":
		// The Saturday/Sunday pair preceding now.
		daysSinceSunday := int(now.Weekday())
		if daysSinceSunday == 0 {
			daysSinceSunday = 7
		}
		lastSunday := now.AddDate(0, 0, -daysSinceSunday)
		lastSaturday := lastSunday.AddDate(0, 0, -1)
		start := startOfDay(lastSaturday)
		end := endOfDay(lastSunday)
		return model.TimeWindow{Start: start, End: end}

	case "today":
		return model.TimeWindow{Start: startOfDay(now), End: now}

	case "yesterday":
		y := now.AddDate(0, 0, -1)
		return model.TimeWindow{Start: startOfDay(y), End: endOfDay(y)}
	}

	logx.Warn().Str("expression", expr).Msg("Unrecognized relative time expression; using last 24 hours")
	return model.TimeWindow{Start: now.AddDate(0, 0, -1), End: now}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
