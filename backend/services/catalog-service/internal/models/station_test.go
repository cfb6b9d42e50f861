package models

import (
	"testing"
	"time"
)

func validRecord() StationRecord {
	return StationRecord{
		SourceID:     "test",
		Name:         "Tata Power MG Road",
		Latitude:     12.9716,
		Longitude:    77.5946,
		TrustScore:   70,
		LastVerified: time.Now().UTC(),
	}
}

func TestStationRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*StationRecord)
		wantErr error
	}{
		{"valid", func(r *StationRecord) {}, nil},
		{"missing name", func(r *StationRecord) { r.Name = "  " }, ErrMissingName},
		{"missing source", func(r *StationRecord) { r.SourceID = "" }, ErrMissingSource},
		{"latitude too high", func(r *StationRecord) { r.Latitude = 90.5 }, ErrInvalidCoordinates},
		{"latitude too low", func(r *StationRecord) { r.Latitude = -91 }, ErrInvalidCoordinates},
		{"longitude too high", func(r *StationRecord) { r.Longitude = 181 }, ErrInvalidCoordinates},
		{"longitude too low", func(r *StationRecord) { r.Longitude = -180.1 }, ErrInvalidCoordinates},
		{"trust negative", func(r *StationRecord) { r.TrustScore = -1 }, ErrInvalidTrustScore},
		{"trust above 100", func(r *StationRecord) { r.TrustScore = 101 }, ErrInvalidTrustScore},
		{"boundary coordinates ok", func(r *StationRecord) { r.Latitude = -90; r.Longitude = 180 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)
			if err := rec.Validate(); err != tt.wantErr {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDeriveDCFast(t *testing.T) {
	tests := []struct {
		name string
		spec ConnectorSpec
		want bool
	}{
		{"high power", ConnectorSpec{Type: "Type 2", PowerKW: 50}, true},
		{"low power ac", ConnectorSpec{Type: "Type 2", PowerKW: 22}, false},
		{"ccs by type", ConnectorSpec{Type: "CCS2", PowerKW: 0}, true},
		{"chademo by type", ConnectorSpec{Type: "CHAdeMO", PowerKW: 40}, true},
		{"supercharger by type", ConnectorSpec{Type: "Tesla Supercharger", PowerKW: 0}, true},
		{"plain socket", ConnectorSpec{Type: "Wall socket", PowerKW: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.spec.DeriveDCFast()
			if tt.spec.IsDCFast != tt.want {
				t.Fatalf("IsDCFast = %v, want %v", tt.spec.IsDCFast, tt.want)
			}
		})
	}
}

func TestTotalConnectors(t *testing.T) {
	rec := validRecord()
	rec.Connectors = []ConnectorSpec{
		{Type: "Type 2", Count: 4},
		{Type: "CCS2", Count: 2},
	}
	if got := rec.TotalConnectors(); got != 6 {
		t.Fatalf("TotalConnectors = %d, want 6", got)
	}
}
