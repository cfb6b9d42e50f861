package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

const overpassSamplePayload = `{
  "elements": [
    {
      "type": "node",
      "id": 555111,
      "lat": 12.9701,
      "lon": 77.5932,
      "tags": {
        "amenity": "charging_station",
        "name": "Ather Grid - Church Street",
        "operator": "Ather Energy",
        "addr:street": "Church Street",
        "addr:city": "Bengaluru",
        "addr:postcode": "560001",
        "opening_hours": "24/7",
        "fee": "no",
        "socket:type2": "2",
        "socket:type2:output": "22 kW",
        "socket:chademo": "yes"
      }
    },
    {
      "type": "node",
      "id": 555222,
      "lat": 12.9800,
      "lon": 77.6000,
      "tags": {
        "amenity": "charging_station",
        "operator": "Statiq"
      }
    },
    {
      "type": "node",
      "id": 555333,
      "lat": 12.9900,
      "lon": 77.6100,
      "tags": {
        "amenity": "charging_station"
      }
    }
  ]
}`

func newOverpassTestAdapter(t *testing.T, handler http.HandlerFunc) *Overpass {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOverpass(OverpassConfig{
		BaseURL: server.URL,
		South:   12.8, West: 77.4, North: 13.2, East: 77.8,
	}, server.Client(), zap.NewNop())
}

func TestOverpassFetchMapsNodes(t *testing.T) {
	adapter := newOverpassTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("data") == "" {
			t.Error("missing overpass query")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(overpassSamplePayload))
	})

	records, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// the nameless, operator-less node is skipped
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	rec := records[0]
	if rec.Name != "Ather Grid - Church Street" {
		t.Errorf("name = %q", rec.Name)
	}
	if rec.SourceID != "overpass" || rec.ExternalID != "555111" {
		t.Errorf("identity = %q/%q", rec.SourceID, rec.ExternalID)
	}
	if !rec.Open24x7 {
		t.Error("24/7 opening hours not mapped")
	}
	if rec.TrustScore != 55 {
		t.Errorf("trust = %d, want 55", rec.TrustScore)
	}

	if len(rec.Connectors) != 2 {
		t.Fatalf("got %d connectors, want 2: %+v", len(rec.Connectors), rec.Connectors)
	}
	type2 := rec.Connectors[0]
	if type2.Type != "Type 2" || type2.Count != 2 || type2.PowerKW != 22 || type2.IsDCFast {
		t.Errorf("type2 connector mapped wrong: %+v", type2)
	}
	chademo := rec.Connectors[1]
	if chademo.Type != "CHAdeMO" || chademo.Count != 1 || !chademo.IsDCFast {
		t.Errorf("chademo connector mapped wrong (yes should mean one socket): %+v", chademo)
	}

	if len(rec.Prices) != 1 || rec.Prices[0].Amount != 0 {
		t.Errorf("fee=no should map to a zero flat price: %+v", rec.Prices)
	}

	// nameless node falls back to operator
	if records[1].Name != "Statiq" {
		t.Errorf("operator fallback name = %q", records[1].Name)
	}
}

func TestOverpassFetchTransportError(t *testing.T) {
	adapter := newOverpassTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	if _, err := adapter.Fetch(context.Background()); err == nil {
		t.Fatal("expected transport error for non-200 status")
	}
}

func TestParseOutputKW(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"22 kW", 22},
		{"50kW", 50},
		{"7.4 kW", 7.4},
		{"", 0},
		{"unknown", 0},
	}

	for _, tt := range tests {
		if got := parseOutputKW(tt.in); got != tt.want {
			t.Errorf("parseOutputKW(%q) = %f, want %f", tt.in, got, tt.want)
		}
	}
}
