package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"evcharge/backend/services/catalog-service/internal/models"
)

const (
	openChargeMapSourceID = "openchargemap"
	openChargeMapBaseURL  = "https://api.openchargemap.io/v3"
	openChargeMapTrust    = 70
)

// OpenChargeMapConfig configures the Open Charge Map adapter. The adapter
// pulls POIs around a center point; zero values get sensible defaults.
type OpenChargeMapConfig struct {
	APIKey        string
	BaseURL       string
	Latitude      float64
	Longitude     float64
	DistanceKM    float64
	MaxResults    int
	IntervalHours int
}

// OpenChargeMap adapts the Open Charge Map POI API into canonical records.
type OpenChargeMap struct {
	cfg    OpenChargeMapConfig
	client *http.Client
	logger *zap.Logger
}

// NewOpenChargeMap builds the adapter. A nil client gets a timeout-bounded default.
func NewOpenChargeMap(cfg OpenChargeMapConfig, client *http.Client, logger *zap.Logger) *OpenChargeMap {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openChargeMapBaseURL
	}
	if cfg.DistanceKM <= 0 {
		cfg.DistanceKM = 50
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 500
	}
	if cfg.IntervalHours <= 0 {
		cfg.IntervalHours = 6
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &OpenChargeMap{cfg: cfg, client: client, logger: logger}
}

// ID implements Source.
func (o *OpenChargeMap) ID() string { return openChargeMapSourceID }

// Interval implements Source.
func (o *OpenChargeMap) Interval() time.Duration {
	return time.Duration(o.cfg.IntervalHours) * time.Hour
}

// ocmPOI is the subset of the Open Charge Map POI payload the adapter reads.
type ocmPOI struct {
	ID          int64  `json:"ID"`
	UsageCost   string `json:"UsageCost"`
	AddressInfo struct {
		Title           string  `json:"Title"`
		AddressLine1    string  `json:"AddressLine1"`
		Town            string  `json:"Town"`
		StateOrProvince string  `json:"StateOrProvince"`
		Postcode        string  `json:"Postcode"`
		Latitude        float64 `json:"Latitude"`
		Longitude       float64 `json:"Longitude"`
	} `json:"AddressInfo"`
	OperatorInfo *struct {
		Title string `json:"Title"`
	} `json:"OperatorInfo"`
	Connections []struct {
		PowerKW  float64 `json:"PowerKW"`
		Quantity int     `json:"Quantity"`
		Level    *struct {
			IsFastChargeCapable bool `json:"IsFastChargeCapable"`
		} `json:"Level"`
		ConnectionType *struct {
			Title string `json:"Title"`
		} `json:"ConnectionType"`
	} `json:"Connections"`
	DateLastVerified string `json:"DateLastVerified"`
}

// Fetch implements Source. Malformed POIs are skipped; only transport-level
// failures abort the call.
func (o *OpenChargeMap) Fetch(ctx context.Context) ([]models.StationRecord, error) {
	endpoint := fmt.Sprintf("%s/poi", o.cfg.BaseURL)
	params := url.Values{}
	params.Set("output", "json")
	params.Set("latitude", strconv.FormatFloat(o.cfg.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(o.cfg.Longitude, 'f', -1, 64))
	params.Set("distance", strconv.FormatFloat(o.cfg.DistanceKM, 'f', -1, 64))
	params.Set("distanceunit", "KM")
	params.Set("maxresults", strconv.Itoa(o.cfg.MaxResults))
	if o.cfg.APIKey != "" {
		params.Set("key", o.cfg.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("openchargemap: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openchargemap: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openchargemap: unexpected status %d", resp.StatusCode)
	}

	var pois []ocmPOI
	if err := json.NewDecoder(resp.Body).Decode(&pois); err != nil {
		return nil, fmt.Errorf("openchargemap: decode response: %w", err)
	}

	records := make([]models.StationRecord, 0, len(pois))
	for _, poi := range pois {
		rec, ok := o.mapPOI(poi)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (o *OpenChargeMap) mapPOI(poi ocmPOI) (models.StationRecord, bool) {
	rec := models.StationRecord{
		ExternalID: strconv.FormatInt(poi.ID, 10),
		SourceID:   o.ID(),
		Name:       poi.AddressInfo.Title,
		Latitude:   poi.AddressInfo.Latitude,
		Longitude:  poi.AddressInfo.Longitude,
		Address:    poi.AddressInfo.AddressLine1,
		City:       poi.AddressInfo.Town,
		State:      poi.AddressInfo.StateOrProvince,
		PostalCode: poi.AddressInfo.Postcode,
		TrustScore: openChargeMapTrust,
	}
	if poi.OperatorInfo != nil {
		rec.Operator = poi.OperatorInfo.Title
	}

	for _, conn := range poi.Connections {
		spec := models.ConnectorSpec{
			PowerKW: conn.PowerKW,
			Count:   conn.Quantity,
		}
		if spec.Count < 1 {
			spec.Count = 1
		}
		if conn.ConnectionType != nil {
			spec.Type = conn.ConnectionType.Title
		}
		spec.DeriveDCFast()
		if conn.Level != nil && conn.Level.IsFastChargeCapable {
			spec.IsDCFast = true
		}
		rec.Connectors = append(rec.Connectors, spec)
	}

	rec.Prices = []models.PriceSpec{estimatePrice(poi.UsageCost)}

	if poi.DateLastVerified != "" {
		if ts, err := time.Parse(time.RFC3339, poi.DateLastVerified); err == nil {
			rec.LastVerified = ts.UTC()
		}
	}
	if rec.LastVerified.IsZero() {
		rec.LastVerified = time.Now().UTC()
	}

	if err := rec.Validate(); err != nil {
		if o.logger != nil {
			o.logger.Debug("skipping malformed poi",
				zap.Int64("poi_id", poi.ID),
				zap.Error(err))
		}
		return models.StationRecord{}, false
	}
	return rec, true
}

// estimatePrice turns Open Charge Map's free-text usage cost into a spec,
// falling back to a provider-level per-kWh estimate when the field is blank
// or unparseable.
func estimatePrice(usageCost string) models.PriceSpec {
	const defaultPerKWh = 18.0 // INR, typical Indian public charging tariff

	if usageCost == "" {
		return models.PriceSpec{Model: models.PricePerKWh, Amount: defaultPerKWh}
	}
	if amount, ok := firstNumber(usageCost); ok {
		return models.PriceSpec{Model: models.PricePerKWh, Amount: amount}
	}
	return models.PriceSpec{Model: models.PricePerKWh, Amount: defaultPerKWh}
}

func firstNumber(s string) (float64, bool) {
	start := -1
	for i, r := range s {
		isNumRune := (r >= '0' && r <= '9') || r == '.'
		if isNumRune && start < 0 {
			start = i
			continue
		}
		if !isNumRune && start >= 0 {
			if v, err := strconv.ParseFloat(s[start:i], 64); err == nil {
				return v, true
			}
			start = -1
		}
	}
	if start >= 0 {
		if v, err := strconv.ParseFloat(s[start:], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
