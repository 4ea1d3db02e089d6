// Package store implements the position-record store over SQLite. AIS points
// live in a single table indexed by (mmsi, ts); timestamps are stored as
// RFC3339 strings so lexical order matches chronological order.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vesselquery/server/internal/agent/model"
	errx "github.com/vesselquery/server/internal/core/error"
	logx "github.com/vesselquery/server/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS ais (
	ts           TEXT NOT NULL,
	mmsi         TEXT NOT NULL,
	lat          REAL NOT NULL,
	lon          REAL NOT NULL,
	sog          REAL NOT NULL,
	cog          REAL NOT NULL,
	interpolated INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_ais_mmsi_ts ON ais (mmsi, ts);
CREATE INDEX IF NOT EXISTS idx_ais_ts ON ais (ts);
`

// SQLitePositionStore implements model.PositionStore.
type SQLitePositionStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path. ":memory:" works for
// tests.
func Open(path string) (*SQLitePositionStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open position store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize position store schema: %w", err)
	}
	logx.Debug().Str("path", path).Msg("Position store opened")
	return &SQLitePositionStore{db: db}, nil
}

func (s *SQLitePositionStore) Close() error {
	return s.db.Close()
}

// FetchTrack returns points for the given vessels inside the window, ordered
// by timestamp ascending. An empty vessel list signifies "no matching
// vessels" and yields an empty result, not a fault.
func (s *SQLitePositionStore) FetchTrack(ctx context.Context, vesselIDs []string, window model.TimeWindow, limit int) ([]model.TrackPoint, error) {
	if len(vesselIDs) == 0 {
		return []model.TrackPoint{}, nil
	}
	if limit <= 0 {
		limit = 1000
	}

	placeholders := strings.Repeat("?,", len(vesselIDs))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		SELECT ts, mmsi, lat, lon, sog, cog, interpolated
		FROM ais
		WHERE mmsi IN (%s) AND ts >= ? AND ts <= ?
		ORDER BY ts ASC
		LIMIT ?`, placeholders)

	args := make([]any, 0, len(vesselIDs)+3)
	for _, id := range vesselIDs {
		args = append(args, id)
	}
	args = append(args,
		window.Start.UTC().Format(time.RFC3339),
		window.End.UTC().Format(time.RFC3339),
		limit,
	)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer rows.Close()

	var points []model.TrackPoint
	for rows.Next() {
		var (
			ts           string
			p            model.TrackPoint
			interpolated int
		)
		if err := rows.Scan(&ts, &p.MMSI, &p.Latitude, &p.Longitude, &p.SOG, &p.COG, &interpolated); err != nil {
			return nil, errx.WrapStore(err)
		}
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("malformed timestamp %q in store: %w", ts, err)
		}
		p.Timestamp = t
		p.Interpolated = interpolated != 0
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapStore(err)
	}

	logx.Debug().Int("points", len(points)).Int("vessels", len(vesselIDs)).Msg("Fetched track")
	return points, nil
}

func (s *SQLitePositionStore) ListVesselIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT mmsi FROM ais ORDER BY mmsi`)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errx.WrapStore(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapStore(err)
	}
	return ids, nil
}

func (s *SQLitePositionStore) HasVessel(ctx context.Context, mmsi string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM ais WHERE mmsi = ?)`, mmsi).Scan(&exists)
	if err != nil {
		return false, errx.WrapStore(err)
	}
	return exists != 0, nil
}

// InsertPoints writes a batch of points inside one transaction.
func (s *SQLitePositionStore) InsertPoints(ctx context.Context, points []model.TrackPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errx.WrapStore(err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO ais (ts, mmsi, lat, lon, sog, cog, interpolated) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errx.WrapStore(err)
	}
	defer stmt.Close()

	for _, p := range points {
		interpolated := 0
		if p.Interpolated {
			interpolated = 1
		}
		if _, err := stmt.ExecContext(ctx,
			p.Timestamp.UTC().Format(time.RFC3339),
			p.MMSI, p.Latitude, p.Longitude, p.SOG, p.COG, interpolated,
		); err != nil {
			tx.Rollback()
			return errx.WrapStore(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errx.WrapStore(err)
	}

	logx.Debug().Int("points", len(points)).Msg("Inserted points")
	return nil
}

var _ model.PositionStore = (*SQLitePositionStore)(nil)
