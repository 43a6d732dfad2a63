package db

import (
	"context"
	"fmt"
	"time"

	"skyportal/pkg/adsb"
)

// SightingRepository records normalized aircraft states into the sighting
// log. The log is append-only history; the live aircraft set never lives
// here (it is owned by the refresh controller and replaced every cycle).
type SightingRepository struct {
	db *DB
}

// NewSightingRepository creates a repository over an open connection.
func NewSightingRepository(db *DB) *SightingRepository {
	return &SightingRepository{db: db}
}

// RecordBatch writes one row per aircraft in a refresh cycle's kept set.
// The whole batch goes into a single transaction so a partial cycle is
// never visible.
func (r *SightingRepository) RecordBatch(ctx context.Context, source string, apiTime time.Time, aircraft []adsb.AircraftState) error {
	if len(aircraft) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sightings (
			icao, callsign, lat, lon, track_deg, ground_speed_mps,
			on_ground, baro_altitude_m, geo_altitude_m, vertical_rate_mps,
			category, source, api_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ac := range aircraft {
		_, err := stmt.ExecContext(ctx,
			ac.ICAO,
			ac.Callsign,
			ac.Lat,
			ac.Lon,
			ac.Track,
			ac.GroundSpeedMPS,
			ac.OnGround,
			ac.BaroAltitudeM,
			ac.GeoAltitudeM,
			ac.VerticalRateMPS,
			int(ac.Category),
			source,
			apiTime,
		)
		if err != nil {
			return fmt.Errorf("failed to insert sighting for %s: %w", ac.ICAO, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sightings: %w", err)
	}

	return nil
}

// CountSince reports how many sightings have been recorded after the cutoff.
func (r *SightingRepository) CountSince(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sightings WHERE seen_at >= $1`,
		cutoff,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sightings: %w", err)
	}
	return count, nil
}
