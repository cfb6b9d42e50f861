package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"evcharge/backend/services/catalog-service/internal/geo"
	"evcharge/backend/services/catalog-service/internal/models"
)

// StationRepository persists logical stations and their connector, price and
// amenity child rows.
//
// Expected schema:
//
//	stations(id uuid primary key default gen_random_uuid(), external_id text,
//	    source_id text, name text, operator text, latitude double precision,
//	    longitude double precision, address text, city text, state text,
//	    postal_code text, open_24x7 boolean, parking_type text,
//	    trust_score int, last_verified timestamptz,
//	    created_at timestamptz, updated_at timestamptz)
//	station_connectors(id bigserial, station_id uuid references stations,
//	    connector_type text, power_kw double precision, is_dc_fast boolean,
//	    connector_count int, vehicle_class text)
//	station_prices(id bigserial, station_id uuid references stations,
//	    connector_type text, model text, amount numeric)
//	station_amenities(station_id uuid primary key references stations,
//	    restroom boolean, food boolean, lounge boolean, wifi boolean, notes text)
type StationRepository struct {
	db *sql.DB
}

// NewStationRepository returns repository.
func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

const stationColumns = `
	id, external_id, source_id, name, operator, latitude, longitude,
	address, city, state, postal_code, open_24x7, parking_type,
	trust_score, last_verified, created_at, updated_at
`

// metersPerDegreeLat is close enough for the small bounding boxes used here.
const metersPerDegreeLat = 111320.0

// FindWithinRadius returns stations within the given great-circle distance of
// a point. A bounding box narrows the SQL scan; the exact haversine filter
// runs in Go.
func (r *StationRepository) FindWithinRadius(ctx context.Context, lat, lng, meters float64) ([]models.Station, error) {
	latDelta := meters / metersPerDegreeLat
	lngDelta := latDelta
	if cos := math.Cos(lat * math.Pi / 180); cos > 0.01 {
		lngDelta = meters / (metersPerDegreeLat * cos)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM stations
		WHERE latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4
		ORDER BY id
	`, stationColumns)

	rows, err := r.db.QueryContext(ctx, query,
		lat-latDelta, lat+latDelta,
		lng-lngDelta, lng+lngDelta,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		station, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		if geo.DistanceMeters(lat, lng, station.Latitude, station.Longitude) >= meters {
			continue
		}
		stations = append(stations, station)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range stations {
		if err := r.loadChildren(ctx, &stations[i]); err != nil {
			return nil, err
		}
	}
	return stations, nil
}

// List returns stations for the query layer, most recently updated first.
func (r *StationRepository) List(ctx context.Context, limit int) ([]models.Station, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM stations
		ORDER BY updated_at DESC
		LIMIT $1
	`, stationColumns)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		station, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		stations = append(stations, station)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range stations {
		if err := r.loadChildren(ctx, &stations[i]); err != nil {
			return nil, err
		}
	}
	return stations, nil
}

// Insert creates a brand-new logical station with its child rows in one
// transaction.
func (r *StationRepository) Insert(ctx context.Context, station *models.Station) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO stations (
			external_id, source_id, name, operator, latitude, longitude,
			address, city, state, postal_code, open_24x7, parking_type,
			trust_score, last_verified, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, query,
		station.ExternalID,
		station.SourceID,
		station.Name,
		station.Operator,
		station.Latitude,
		station.Longitude,
		station.Address,
		station.City,
		station.State,
		station.PostalCode,
		station.Open24x7,
		station.ParkingType,
		station.TrustScore,
		station.LastVerified,
	).Scan(&station.ID, &station.CreatedAt, &station.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertChildren(ctx, tx, station); err != nil {
		return err
	}
	return tx.Commit()
}

// Update overwrites a station's descriptive fields and fully replaces its
// child rows. The whole sequence runs in one transaction under a per-station
// advisory lock so an overlapping manual sync cannot interleave with a
// scheduled one on the same logical station.
func (r *StationRepository) Update(ctx context.Context, station *models.Station) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, station.ID); err != nil {
		return err
	}

	const query = `
		UPDATE stations
		SET name = $2,
		    operator = $3,
		    address = $4,
		    city = $5,
		    state = $6,
		    postal_code = $7,
		    open_24x7 = $8,
		    parking_type = $9,
		    trust_score = $10,
		    last_verified = $11,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := tx.ExecContext(ctx, query,
		station.ID,
		station.Name,
		station.Operator,
		station.Address,
		station.City,
		station.State,
		station.PostalCode,
		station.Open24x7,
		station.ParkingType,
		station.TrustScore,
		station.LastVerified,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	for _, table := range []string{"station_connectors", "station_prices", "station_amenities"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE station_id = $1`, table), station.ID); err != nil {
			return err
		}
	}
	if err := insertChildren(ctx, tx, station); err != nil {
		return err
	}
	return tx.Commit()
}

func insertChildren(ctx context.Context, tx *sql.Tx, station *models.Station) error {
	const connectorQuery = `
		INSERT INTO station_connectors (station_id, connector_type, power_kw, is_dc_fast, connector_count, vehicle_class)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, c := range station.Connectors {
		if _, err := tx.ExecContext(ctx, connectorQuery,
			station.ID, c.Type, c.PowerKW, c.IsDCFast, c.Count, c.VehicleClass,
		); err != nil {
			return err
		}
	}

	const priceQuery = `
		INSERT INTO station_prices (station_id, connector_type, model, amount)
		VALUES ($1, $2, $3, $4)
	`
	for _, p := range station.Prices {
		if _, err := tx.ExecContext(ctx, priceQuery,
			station.ID, p.ConnectorType, p.Model, p.Amount,
		); err != nil {
			return err
		}
	}

	if station.Amenities != nil {
		const amenityQuery = `
			INSERT INTO station_amenities (station_id, restroom, food, lounge, wifi, notes)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		a := station.Amenities
		if _, err := tx.ExecContext(ctx, amenityQuery,
			station.ID, a.Restroom, a.Food, a.Lounge, a.WiFi, a.Notes,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *StationRepository) loadChildren(ctx context.Context, station *models.Station) error {
	const connectorQuery = `
		SELECT connector_type, power_kw, is_dc_fast, connector_count, vehicle_class
		FROM station_connectors
		WHERE station_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, connectorQuery, station.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var c models.ConnectorSpec
		if err := rows.Scan(&c.Type, &c.PowerKW, &c.IsDCFast, &c.Count, &c.VehicleClass); err != nil {
			return err
		}
		station.Connectors = append(station.Connectors, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	const priceQuery = `
		SELECT connector_type, model, amount
		FROM station_prices
		WHERE station_id = $1
		ORDER BY id
	`
	priceRows, err := r.db.QueryContext(ctx, priceQuery, station.ID)
	if err != nil {
		return err
	}
	defer priceRows.Close()
	for priceRows.Next() {
		var p models.PriceSpec
		if err := priceRows.Scan(&p.ConnectorType, &p.Model, &p.Amount); err != nil {
			return err
		}
		station.Prices = append(station.Prices, p)
	}
	if err := priceRows.Err(); err != nil {
		return err
	}

	const amenityQuery = `
		SELECT restroom, food, lounge, wifi, notes
		FROM station_amenities
		WHERE station_id = $1
	`
	var a models.AmenitySpec
	err = r.db.QueryRowContext(ctx, amenityQuery, station.ID).Scan(&a.Restroom, &a.Food, &a.Lounge, &a.WiFi, &a.Notes)
	switch {
	case err == sql.ErrNoRows:
		// no amenity row is the common case
	case err != nil:
		return err
	default:
		station.Amenities = &a
	}
	return nil
}

func scanStation(rows *sql.Rows) (models.Station, error) {
	var s models.Station
	err := rows.Scan(
		&s.ID,
		&s.ExternalID,
		&s.SourceID,
		&s.Name,
		&s.Operator,
		&s.Latitude,
		&s.Longitude,
		&s.Address,
		&s.City,
		&s.State,
		&s.PostalCode,
		&s.Open24x7,
		&s.ParkingType,
		&s.TrustScore,
		&s.LastVerified,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}
