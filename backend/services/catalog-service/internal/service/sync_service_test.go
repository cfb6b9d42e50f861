package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"evcharge/backend/services/catalog-service/internal/geo"
	"evcharge/backend/services/catalog-service/internal/match"
	"evcharge/backend/services/catalog-service/internal/models"
	"evcharge/backend/services/catalog-service/internal/sources"
)

type fakeSource struct {
	id       string
	interval time.Duration
	records  []models.StationRecord
	err      error

	mu    sync.Mutex
	calls int
}

func (f *fakeSource) ID() string { return f.id }

func (f *fakeSource) Interval() time.Duration {
	if f.interval <= 0 {
		return time.Hour
	}
	return f.interval
}

func (f *fakeSource) Fetch(ctx context.Context) ([]models.StationRecord, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeSource) fetchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStationStore struct {
	mu        sync.Mutex
	stations  []models.Station
	nextID    int
	insertErr error
	updateErr error
	findErr   error
}

func (s *fakeStationStore) FindWithinRadius(ctx context.Context, lat, lng, meters float64) ([]models.Station, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []models.Station
	for _, st := range s.stations {
		if geo.DistanceMeters(lat, lng, st.Latitude, st.Longitude) < meters {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *fakeStationStore) Insert(ctx context.Context, station *models.Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.nextID++
	station.ID = fmt.Sprintf("station-%d", s.nextID)
	s.stations = append(s.stations, *station)
	return nil
}

func (s *fakeStationStore) Update(ctx context.Context, station *models.Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	for i := range s.stations {
		if s.stations[i].ID == station.ID {
			s.stations[i] = *station
			return nil
		}
	}
	return errors.New("not found")
}

func (s *fakeStationStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stations)
}

func (s *fakeStationStore) byID(id string) (models.Station, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.stations {
		if st.ID == id {
			return st, true
		}
	}
	return models.Station{}, false
}

type fakeSyncLog struct {
	mu       sync.Mutex
	appended []models.SyncResult
}

func (l *fakeSyncLog) Append(ctx context.Context, result models.SyncResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appended = append(l.appended, result)
	return nil
}

func (l *fakeSyncLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.appended)
}

func newTestSyncService(t *testing.T, store *fakeStationStore, log *fakeSyncLog, srcs ...sources.Source) *SyncService {
	t.Helper()
	registry, err := sources.NewRegistry(srcs...)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return NewSyncService(registry, store, log, nil, match.NewMatcher(0), time.Minute, zap.NewNop())
}

func testRecord(sourceID, name string, lat, lng float64, trust int) models.StationRecord {
	return models.StationRecord{
		SourceID:     sourceID,
		Name:         name,
		Latitude:     lat,
		Longitude:    lng,
		TrustScore:   trust,
		LastVerified: time.Now().UTC(),
	}
}

func TestSyncOneUnknownSource(t *testing.T) {
	svc := newTestSyncService(t, &fakeStationStore{}, &fakeSyncLog{})

	_, err := svc.SyncOne(context.Background(), "nope")
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestSyncOneInsertsNewStations(t *testing.T) {
	store := &fakeStationStore{}
	log := &fakeSyncLog{}
	src := &fakeSource{id: "a", records: []models.StationRecord{
		testRecord("a", "Tata Power MG Road", 12.9716, 77.5946, 70),
		testRecord("a", "Ather Grid Whitefield", 12.9698, 77.7500, 70),
	}}
	svc := newTestSyncService(t, store, log, src)

	result, err := svc.SyncOne(context.Background(), "a")
	if err != nil {
		t.Fatalf("SyncOne: %v", err)
	}
	if result.Inserted != 2 || result.Updated != 0 || result.Errored != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if store.count() != 2 {
		t.Fatalf("store has %d stations, want 2", store.count())
	}
	if log.count() != 1 {
		t.Fatalf("sync log has %d rows, want 1", log.count())
	}
}

func TestSyncOneMergesMatchingStation(t *testing.T) {
	store := &fakeStationStore{}
	log := &fakeSyncLog{}

	seed := &models.Station{StationRecord: testRecord("a", "Tata Power - MG Road", 12.9716, 77.5946, 70)}
	if err := store.Insert(context.Background(), seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	src := &fakeSource{id: "b", records: []models.StationRecord{
		testRecord("b", "tata power mg road!!", 12.97158, 77.59455, 55),
	}}
	svc := newTestSyncService(t, store, log, src)

	result, err := svc.SyncOne(context.Background(), "b")
	if err != nil {
		t.Fatalf("SyncOne: %v", err)
	}
	if result.Updated != 1 || result.Inserted != 0 {
		t.Fatalf("expected an update, not a duplicate insert: %+v", result)
	}
	if store.count() != 1 {
		t.Fatalf("store has %d stations, want 1", store.count())
	}

	merged, ok := store.byID(seed.ID)
	if !ok {
		t.Fatal("seeded station disappeared")
	}
	if merged.TrustScore != 70 {
		t.Fatalf("trust score downgraded to %d", merged.TrustScore)
	}
	if merged.Name != "tata power mg road!!" {
		t.Fatalf("descriptive fields not overwritten, name = %q", merged.Name)
	}
}

func TestSyncOneDistantSameNameInsertsNew(t *testing.T) {
	store := &fakeStationStore{}
	log := &fakeSyncLog{}

	seed := &models.Station{StationRecord: testRecord("a", "Tata Power MG Road", 12.9716, 77.5946, 70)}
	if err := store.Insert(context.Background(), seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// identical name, roughly 200 m away
	src := &fakeSource{id: "b", records: []models.StationRecord{
		testRecord("b", "Tata Power MG Road", 12.9734, 77.5946, 55),
	}}
	svc := newTestSyncService(t, store, log, src)

	result, err := svc.SyncOne(context.Background(), "b")
	if err != nil {
		t.Fatalf("SyncOne: %v", err)
	}
	if result.Inserted != 1 || result.Updated != 0 {
		t.Fatalf("expected a distinct insert: %+v", result)
	}
	if store.count() != 2 {
		t.Fatalf("store has %d stations, want 2", store.count())
	}
}

func TestSyncOneCountsRecordErrorsAndContinues(t *testing.T) {
	store := &fakeStationStore{}
	log := &fakeSyncLog{}

	bad := testRecord("a", "Broken", 95, 77.5946, 70) // latitude out of range
	good := testRecord("a", "Fine Station", 12.9716, 77.5946, 70)
	src := &fakeSource{id: "a", records: []models.StationRecord{bad, good}}
	svc := newTestSyncService(t, store, log, src)

	result, err := svc.SyncOne(context.Background(), "a")
	if err != nil {
		t.Fatalf("SyncOne: %v", err)
	}
	if result.Errored != 1 || result.Inserted != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
}

func TestSyncOneFetchFailure(t *testing.T) {
	store := &fakeStationStore{}
	log := &fakeSyncLog{}
	src := &fakeSource{id: "a", err: errors.New("connection refused")}
	svc := newTestSyncService(t, store, log, src)

	result, err := svc.SyncOne(context.Background(), "a")
	if err != nil {
		t.Fatalf("SyncOne: %v", err)
	}
	if !result.FetchFailed {
		t.Fatal("expected fetch failure to be reported in the result")
	}
	if result.ErrorMessage == "" {
		t.Fatal("expected error message in result")
	}
	if log.count() != 1 {
		t.Fatalf("failed pass not logged, log has %d rows", log.count())
	}
}

func TestSyncAllIsolatesSourceFailures(t *testing.T) {
	store := &fakeStationStore{}
	log := &fakeSyncLog{}

	srcA := &fakeSource{id: "a", records: []models.StationRecord{
		testRecord("a", "Station A", 12.90, 77.50, 70),
	}}
	srcB := &fakeSource{id: "b", err: errors.New("provider down")}
	srcC := &fakeSource{id: "c", records: []models.StationRecord{
		testRecord("c", "Station C", 12.95, 77.60, 60),
	}}
	svc := newTestSyncService(t, store, log, srcA, srcB, srcC)

	results := svc.SyncAll(context.Background())
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	byID := make(map[string]models.SyncResult, len(results))
	for _, res := range results {
		byID[res.SourceID] = res
	}

	if res := byID["a"]; res.FetchFailed || res.Inserted != 1 || res.Errored != 0 {
		t.Fatalf("source a affected by sibling failure: %+v", res)
	}
	if res := byID["c"]; res.FetchFailed || res.Inserted != 1 || res.Errored != 0 {
		t.Fatalf("source c affected by sibling failure: %+v", res)
	}
	if res := byID["b"]; !res.FetchFailed {
		t.Fatalf("source b failure not reported: %+v", res)
	}
	if log.count() != 3 {
		t.Fatalf("sync log has %d rows, want 3", log.count())
	}
}
