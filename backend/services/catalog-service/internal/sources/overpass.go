package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"evcharge/backend/services/catalog-service/internal/models"
)

const (
	overpassSourceID = "overpass"
	overpassBaseURL  = "https://overpass-api.de/api/interpreter"
	overpassTrust    = 55
)

// OverpassConfig configures the OpenStreetMap Overpass adapter, which pulls
// crowdsourced charging_station nodes inside a bounding box.
type OverpassConfig struct {
	BaseURL       string
	South         float64
	West          float64
	North         float64
	East          float64
	IntervalHours int
}

// Overpass adapts OSM charging_station nodes into canonical records.
type Overpass struct {
	cfg    OverpassConfig
	client *http.Client
	logger *zap.Logger
}

// NewOverpass builds the adapter. A nil client gets a timeout-bounded default.
func NewOverpass(cfg OverpassConfig, client *http.Client, logger *zap.Logger) *Overpass {
	if cfg.BaseURL == "" {
		cfg.BaseURL = overpassBaseURL
	}
	if cfg.IntervalHours <= 0 {
		cfg.IntervalHours = 24
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Overpass{cfg: cfg, client: client, logger: logger}
}

// ID implements Source.
func (o *Overpass) ID() string { return overpassSourceID }

// Interval implements Source.
func (o *Overpass) Interval() time.Duration {
	return time.Duration(o.cfg.IntervalHours) * time.Hour
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

// Fetch implements Source.
func (o *Overpass) Fetch(ctx context.Context) ([]models.StationRecord, error) {
	query := fmt.Sprintf(
		`[out:json][timeout:60];node["amenity"="charging_station"](%f,%f,%f,%f);out;`,
		o.cfg.South, o.cfg.West, o.cfg.North, o.cfg.East,
	)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("overpass: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass: unexpected status %d", resp.StatusCode)
	}

	var payload overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("overpass: decode response: %w", err)
	}

	records := make([]models.StationRecord, 0, len(payload.Elements))
	for _, el := range payload.Elements {
		rec, ok := o.mapElement(el)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// socketTags maps OSM socket:* tag suffixes to canonical connector types,
// in the order connectors are emitted.
var socketTags = []struct {
	suffix   string
	connType string
}{
	{"type2", "Type 2"},
	{"type2_combo", "CCS2"},
	{"chademo", "CHAdeMO"},
	{"type1", "Type 1"},
	{"tesla_supercharger", "Tesla Supercharger"},
}

func (o *Overpass) mapElement(el overpassElement) (models.StationRecord, bool) {
	name := el.Tags["name"]
	if name == "" {
		name = el.Tags["operator"]
	}

	rec := models.StationRecord{
		ExternalID:   strconv.FormatInt(el.ID, 10),
		SourceID:     o.ID(),
		Name:         name,
		Operator:     el.Tags["operator"],
		Latitude:     el.Lat,
		Longitude:    el.Lon,
		Address:      el.Tags["addr:street"],
		City:         el.Tags["addr:city"],
		State:        el.Tags["addr:state"],
		PostalCode:   el.Tags["addr:postcode"],
		Open24x7:     el.Tags["opening_hours"] == "24/7",
		TrustScore:   overpassTrust,
		LastVerified: time.Now().UTC(),
	}

	for _, tag := range socketTags {
		countStr, ok := el.Tags["socket:"+tag.suffix]
		if !ok || countStr == "no" || countStr == "0" {
			continue
		}
		count, err := strconv.Atoi(countStr)
		if err != nil || count < 1 {
			count = 1 // "yes" and junk values mean at least one socket
		}
		spec := models.ConnectorSpec{
			Type:    tag.connType,
			PowerKW: parseOutputKW(el.Tags["socket:"+tag.suffix+":output"]),
			Count:   count,
		}
		spec.DeriveDCFast()
		rec.Connectors = append(rec.Connectors, spec)
	}

	if el.Tags["fee"] == "no" {
		rec.Prices = []models.PriceSpec{{Model: models.PriceFlat, Amount: 0}}
	} else {
		rec.Prices = []models.PriceSpec{{Model: models.PricePerKWh, Amount: 18}}
	}

	if err := rec.Validate(); err != nil {
		if o.logger != nil {
			o.logger.Debug("skipping malformed osm node",
				zap.Int64("node_id", el.ID),
				zap.Error(err))
		}
		return models.StationRecord{}, false
	}
	return rec, true
}

// parseOutputKW reads OSM output values like "22 kW" or "50kW".
func parseOutputKW(raw string) float64 {
	raw = strings.TrimSpace(strings.ToLower(raw))
	raw = strings.TrimSuffix(raw, "kw")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
