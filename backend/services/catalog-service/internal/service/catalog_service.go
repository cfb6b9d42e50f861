package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"evcharge/backend/services/catalog-service/internal/models"
)

// Query limits.
const (
	defaultNearbyRadiusMeters = 2000.0
	maxNearbyRadiusMeters     = 25000.0
)

// ErrInvalidQuery reports out-of-range query coordinates.
var ErrInvalidQuery = errors.New("catalog: invalid query coordinates")

// StationLister is the read side of the storage contract.
type StationLister interface {
	FindWithinRadius(ctx context.Context, lat, lng, meters float64) ([]models.Station, error)
}

// NearbyResult is a nearby query answer. When grouping applies, Groups is
// populated instead of Stations.
type NearbyResult struct {
	Stations []models.Station        `json:"stations,omitempty"`
	Groups   []models.GroupedStation `json:"groups,omitempty"`
	Grouped  bool                    `json:"grouped"`
}

// CatalogService answers read queries against the canonical station catalog.
type CatalogService struct {
	stations StationLister
	grouper  *Grouper
	logger   *zap.Logger
}

// NewCatalogService builds the query service.
func NewCatalogService(stations StationLister, grouper *Grouper, logger *zap.Logger) *CatalogService {
	return &CatalogService{stations: stations, grouper: grouper, logger: logger}
}

// Nearby lists stations around a point. With groupDuplicates set, co-located
// stations from different networks collapse into GroupedStation entries.
func (c *CatalogService) Nearby(ctx context.Context, lat, lng, radiusMeters float64, groupDuplicates bool) (NearbyResult, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return NearbyResult{}, ErrInvalidQuery
	}
	if radiusMeters <= 0 {
		radiusMeters = defaultNearbyRadiusMeters
	}
	if radiusMeters > maxNearbyRadiusMeters {
		radiusMeters = maxNearbyRadiusMeters
	}

	stations, err := c.stations.FindWithinRadius(ctx, lat, lng, radiusMeters)
	if err != nil {
		return NearbyResult{}, err
	}

	if groupDuplicates && c.grouper.ShouldGroup(stations) {
		return NearbyResult{Groups: c.grouper.Group(stations), Grouped: true}, nil
	}
	return NearbyResult{Stations: stations}, nil
}
