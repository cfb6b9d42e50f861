package merge

import (
	"testing"
	"time"

	"evcharge/backend/services/catalog-service/internal/models"
)

func TestApplyTrustScoreMonotonic(t *testing.T) {
	existing := &models.Station{
		StationRecord: models.StationRecord{Name: "Station A", TrustScore: 70},
	}

	// a lower-trust source never downgrades
	Apply(existing, models.StationRecord{Name: "Station A", TrustScore: 40})
	if existing.TrustScore != 70 {
		t.Fatalf("trust score downgraded to %d", existing.TrustScore)
	}

	// a higher-trust source upgrades
	Apply(existing, models.StationRecord{Name: "Station A", TrustScore: 90})
	if existing.TrustScore != 90 {
		t.Fatalf("trust score = %d, want 90", existing.TrustScore)
	}
}

func TestApplyTrustScoreMonotonicAcrossSequences(t *testing.T) {
	existing := &models.Station{
		StationRecord: models.StationRecord{Name: "Station A", TrustScore: 10},
	}

	for _, trust := range []int{55, 30, 70, 0, 70, 100, 20} {
		before := existing.TrustScore
		Apply(existing, models.StationRecord{Name: "Station A", TrustScore: trust})
		if existing.TrustScore < before {
			t.Fatalf("trust score decreased from %d to %d after merging trust %d", before, existing.TrustScore, trust)
		}
	}
	if existing.TrustScore != 100 {
		t.Fatalf("final trust score = %d, want 100", existing.TrustScore)
	}
}

func TestApplyDescriptiveFieldsFreshestWins(t *testing.T) {
	verified := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	existing := &models.Station{
		StationRecord: models.StationRecord{
			Name:     "Old Name",
			Operator: "Old Network",
			Address:  "Old Street",
			City:     "Old City",
			Open24x7: false,
		},
	}

	Apply(existing, models.StationRecord{
		Name:         "New Name",
		Operator:     "New Network",
		Address:      "New Street",
		City:         "Bengaluru",
		State:        "Karnataka",
		PostalCode:   "560001",
		Open24x7:     true,
		ParkingType:  "public",
		LastVerified: verified,
	})

	if existing.Name != "New Name" || existing.Operator != "New Network" {
		t.Fatalf("descriptive fields not overwritten: %+v", existing.StationRecord)
	}
	if existing.City != "Bengaluru" || existing.State != "Karnataka" || existing.PostalCode != "560001" {
		t.Fatalf("address fields not overwritten: %+v", existing.StationRecord)
	}
	if !existing.Open24x7 || existing.ParkingType != "public" {
		t.Fatalf("flags not overwritten: %+v", existing.StationRecord)
	}
	if !existing.LastVerified.Equal(verified) {
		t.Fatalf("last verified = %v, want %v", existing.LastVerified, verified)
	}
}

func TestApplyReplacesConnectorAndPriceLists(t *testing.T) {
	existing := &models.Station{
		StationRecord: models.StationRecord{
			Name: "Station A",
			Connectors: []models.ConnectorSpec{
				{Type: "Type 2", PowerKW: 22, Count: 4},
			},
			Prices: []models.PriceSpec{
				{Model: models.PricePerKWh, Amount: 20},
			},
		},
	}

	Apply(existing, models.StationRecord{
		Name: "Station A",
		Connectors: []models.ConnectorSpec{
			{Type: "CCS2", PowerKW: 60, IsDCFast: true, Count: 2},
		},
		Prices: []models.PriceSpec{
			{Model: models.PricePerMinute, Amount: 5},
			{ConnectorType: "CCS2", Model: models.PricePerKWh, Amount: 24},
		},
	})

	if len(existing.Connectors) != 1 || existing.Connectors[0].Type != "CCS2" {
		t.Fatalf("connector list not replaced: %+v", existing.Connectors)
	}
	if len(existing.Prices) != 2 {
		t.Fatalf("price list not replaced: %+v", existing.Prices)
	}
}

func TestApplyKeepsAmenitiesWhenIncomingHasNone(t *testing.T) {
	amenities := &models.AmenitySpec{Restroom: true, Food: true}
	existing := &models.Station{
		StationRecord: models.StationRecord{Name: "Station A", Amenities: amenities},
	}

	Apply(existing, models.StationRecord{Name: "Station A"})
	if existing.Amenities != amenities {
		t.Fatal("amenities dropped by a record without amenity data")
	}

	incoming := &models.AmenitySpec{WiFi: true}
	Apply(existing, models.StationRecord{Name: "Station A", Amenities: incoming})
	if existing.Amenities != incoming {
		t.Fatal("amenities not replaced by incoming amenity data")
	}
}
