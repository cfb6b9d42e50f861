package match

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"evcharge/backend/services/catalog-service/internal/geo"
	"evcharge/backend/services/catalog-service/internal/models"
)

// DefaultRadiusMeters is the proximity threshold used for both sync-time
// identity matching and presentation-time grouping.
const DefaultRadiusMeters = 50.0

// Matcher decides whether an incoming record and an existing station are the
// same physical charging location.
type Matcher struct {
	RadiusMeters float64
}

// NewMatcher returns a matcher with the given radius, falling back to the
// default when radius is not positive.
func NewMatcher(radiusMeters float64) *Matcher {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}
	return &Matcher{RadiusMeters: radiusMeters}
}

// IsSameStation applies the base identity rule: within the radius and
// name-similar.
func (m *Matcher) IsSameStation(existing models.Station, rec models.StationRecord) bool {
	dist := geo.DistanceMeters(existing.Latitude, existing.Longitude, rec.Latitude, rec.Longitude)
	if dist >= m.RadiusMeters {
		return false
	}
	return NamesSimilar(existing.Name, rec.Name)
}

// Score rates how well an existing station matches the incoming record.
// Candidates failing the distance or name test score 0; qualifying candidates
// score in (0, 1], a blend of proximity and name closeness.
func (m *Matcher) Score(existing models.Station, rec models.StationRecord) float64 {
	dist := geo.DistanceMeters(existing.Latitude, existing.Longitude, rec.Latitude, rec.Longitude)
	if dist >= m.RadiusMeters {
		return 0
	}
	nameScore := nameCloseness(existing.Name, rec.Name)
	if nameScore == 0 {
		return 0
	}
	proximity := 1 - dist/m.RadiusMeters
	return 0.5*proximity + 0.5*nameScore
}

// Best returns the highest-scoring qualifying candidate. Ranking by score
// instead of taking the first positional match keeps the decision independent
// of storage return order.
func (m *Matcher) Best(candidates []models.Station, rec models.StationRecord) (*models.Station, float64, bool) {
	var best *models.Station
	bestScore := 0.0
	for i := range candidates {
		score := m.Score(candidates[i], rec)
		if score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}
	return best, bestScore, best != nil
}

func nameCloseness(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.9
	}
	if d := levenshtein.ComputeDistance(na, nb); d < maxNameEditDistance {
		return float64(maxNameEditDistance-d) / float64(maxNameEditDistance)
	}
	return 0
}
