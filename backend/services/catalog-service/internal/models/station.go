package models

import (
	"errors"
	"strings"
	"time"
)

// Pricing models.
const (
	PricePerKWh    = "per_kwh"
	PricePerMinute = "per_minute"
	PriceFlat      = "flat"
)

// DCFastPowerThresholdKW marks a connector as DC fast by rated power alone.
const DCFastPowerThresholdKW = 50.0

// ConnectorSpec describes one connector type installed at a station.
type ConnectorSpec struct {
	Type         string  `db:"connector_type" json:"type"`
	PowerKW      float64 `db:"power_kw" json:"power_kw"`
	IsDCFast     bool    `db:"is_dc_fast" json:"is_dc_fast"`
	Count        int     `db:"count" json:"count"`
	VehicleClass string  `db:"vehicle_class" json:"vehicle_class,omitempty"`
}

var dcFastTypeKeywords = []string{"ccs", "chademo", "supercharger", "gb/t dc", "gbt-dc"}

// DeriveDCFast computes the DC-fast flag from rated power and connector type.
func (c *ConnectorSpec) DeriveDCFast() {
	if c.PowerKW >= DCFastPowerThresholdKW {
		c.IsDCFast = true
		return
	}
	lower := strings.ToLower(c.Type)
	for _, kw := range dcFastTypeKeywords {
		if strings.Contains(lower, kw) {
			c.IsDCFast = true
			return
		}
	}
	c.IsDCFast = false
}

// PriceSpec describes pricing for a connector type, or station-wide when
// ConnectorType is empty.
type PriceSpec struct {
	ConnectorType string  `db:"connector_type" json:"connector_type,omitempty"`
	Model         string  `db:"model" json:"model"`
	Amount        float64 `db:"amount" json:"amount"`
}

// AmenitySpec lists on-site amenities reported by a source.
type AmenitySpec struct {
	Restroom bool   `db:"restroom" json:"restroom"`
	Food     bool   `db:"food" json:"food"`
	Lounge   bool   `db:"lounge" json:"lounge"`
	WiFi     bool   `db:"wifi" json:"wifi"`
	Notes    string `db:"notes" json:"notes,omitempty"`
}

// StationRecord is the canonical ingestion unit produced by source adapters.
type StationRecord struct {
	ExternalID   string          `db:"external_id" json:"external_id,omitempty"`
	SourceID     string          `db:"source_id" json:"source_id"`
	Name         string          `db:"name" json:"name"`
	Operator     string          `db:"operator" json:"operator"`
	Latitude     float64         `db:"latitude" json:"latitude"`
	Longitude    float64         `db:"longitude" json:"longitude"`
	Address      string          `db:"address" json:"address"`
	City         string          `db:"city" json:"city"`
	State        string          `db:"state" json:"state"`
	PostalCode   string          `db:"postal_code" json:"postal_code"`
	Open24x7     bool            `db:"open_24x7" json:"open_24x7"`
	ParkingType  string          `db:"parking_type" json:"parking_type,omitempty"`
	Connectors   []ConnectorSpec `json:"connectors"`
	Prices       []PriceSpec     `json:"prices"`
	Amenities    *AmenitySpec    `json:"amenities,omitempty"`
	TrustScore   int             `db:"trust_score" json:"trust_score"`
	LastVerified time.Time       `db:"last_verified" json:"last_verified"`
}

// Validation errors.
var (
	ErrInvalidCoordinates = errors.New("station: coordinates out of range")
	ErrInvalidTrustScore  = errors.New("station: trust score out of range")
	ErrMissingName        = errors.New("station: name is required")
	ErrMissingSource      = errors.New("station: source id is required")
)

// Validate checks the record invariants before it enters the sync pipeline.
func (r *StationRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(r.SourceID) == "" {
		return ErrMissingSource
	}
	if r.Latitude < -90 || r.Latitude > 90 || r.Longitude < -180 || r.Longitude > 180 {
		return ErrInvalidCoordinates
	}
	if r.TrustScore < 0 || r.TrustScore > 100 {
		return ErrInvalidTrustScore
	}
	return nil
}

// TotalConnectors sums physical connector counts.
func (r StationRecord) TotalConnectors() int {
	total := 0
	for _, c := range r.Connectors {
		total += c.Count
	}
	return total
}

// Station is a persisted logical station assembled from one or more sources.
type Station struct {
	ID string `db:"id" json:"id"`
	StationRecord
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
