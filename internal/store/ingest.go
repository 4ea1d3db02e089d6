package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/vesselquery/server/internal/agent/model"
	logx "github.com/vesselquery/server/pkg/logger"
)

// CSVColumns maps the store schema onto the column names of an AIS extract.
// Defaults follow the upstream dataset layout.
type CSVColumns struct {
	Timestamp    string
	MMSI         string
	Latitude     string
	Longitude    string
	SOG          string
	COG          string
	Interpolated string
}

func DefaultCSVColumns() CSVColumns {
	return CSVColumns{
		Timestamp:    "BaseDateTime",
		MMSI:         "MMSI",
		Latitude:     "LAT",
		Longitude:    "LON",
		SOG:          "SOG",
		COG:          "COG",
		Interpolated: "interpolated",
	}
}

// timestamp layouts seen in AIS extracts
var csvTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

const ingestBatchSize = 5000

// IngestCSV streams an AIS CSV extract into the store in batches. Rows with a
// malformed timestamp or coordinates are skipped and counted, not fatal.
func (s *SQLitePositionStore) IngestCSV(ctx context.Context, r io.Reader, cols CSVColumns) (inserted, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read csv header: %w", err)
	}
	idx, err := headerIndex(header, cols)
	if err != nil {
		return 0, 0, err
	}

	batch := make([]model.TrackPoint, 0, ingestBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.InsertPoints(ctx, batch); err != nil {
			return err
		}
		inserted += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return inserted, skipped, fmt.Errorf("read csv record: %w", err)
		}

		point, ok := parseRecord(record, idx)
		if !ok {
			skipped++
			continue
		}
		batch = append(batch, point)
		if len(batch) >= ingestBatchSize {
			if err := flush(); err != nil {
				return inserted, skipped, err
			}
		}
	}
	if err := flush(); err != nil {
		return inserted, skipped, err
	}

	logx.Info().Int("inserted", inserted).Int("skipped", skipped).Msg("CSV ingest complete")
	return inserted, skipped, nil
}

type columnIndex struct {
	ts, mmsi, lat, lon, sog, cog, interpolated int
}

func headerIndex(header []string, cols CSVColumns) (columnIndex, error) {
	find := func(name string, required bool) (int, error) {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i, nil
			}
		}
		if required {
			return -1, fmt.Errorf("csv missing required column %q", name)
		}
		return -1, nil
	}

	var idx columnIndex
	var err error
	if idx.ts, err = find(cols.Timestamp, true); err != nil {
		return idx, err
	}
	if idx.mmsi, err = find(cols.MMSI, true); err != nil {
		return idx, err
	}
	if idx.lat, err = find(cols.Latitude, true); err != nil {
		return idx, err
	}
	if idx.lon, err = find(cols.Longitude, true); err != nil {
		return idx, err
	}
	if idx.sog, err = find(cols.SOG, true); err != nil {
		return idx, err
	}
	if idx.cog, err = find(cols.COG, true); err != nil {
		return idx, err
	}
	idx.interpolated, _ = find(cols.Interpolated, false)
	return idx, nil
}

func parseRecord(record []string, idx columnIndex) (model.TrackPoint, bool) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var ts time.Time
	var err error
	for _, layout := range csvTimeLayouts {
		if ts, err = time.Parse(layout, field(idx.ts)); err == nil {
			break
		}
	}
	if err != nil {
		return model.TrackPoint{}, false
	}

	lat, err := strconv.ParseFloat(field(idx.lat), 64)
	if err != nil || lat < -90 || lat > 90 {
		return model.TrackPoint{}, false
	}
	lon, err := strconv.ParseFloat(field(idx.lon), 64)
	if err != nil || lon < -180 || lon > 180 {
		return model.TrackPoint{}, false
	}
	sog, err := strconv.ParseFloat(field(idx.sog), 64)
	if err != nil {
		return model.TrackPoint{}, false
	}
	cog, _ := strconv.ParseFloat(field(idx.cog), 64)

	mmsi := field(idx.mmsi)
	if mmsi == "" {
		return model.TrackPoint{}, false
	}

	interpolated := false
	if v := field(idx.interpolated); v != "" {
		interpolated = v == "1" || strings.EqualFold(v, "true")
	}

	return model.TrackPoint{
		Timestamp:    ts.UTC(),
		MMSI:         mmsi,
		Latitude:     lat,
		Longitude:    lon,
		SOG:          sog,
		COG:          cog,
		Interpolated: interpolated,
	}, true
}
