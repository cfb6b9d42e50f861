package service

import (
	"sort"
	"strings"

	"evcharge/backend/services/catalog-service/internal/geo"
	"evcharge/backend/services/catalog-service/internal/match"
	"evcharge/backend/services/catalog-service/internal/models"
)

// landmarkKeywords mark names worth preferring as a group's display name:
// shared venues where several networks typically install chargers.
var landmarkKeywords = []string{
	"mall", "airport", "metro", "plaza", "forum",
	"marriott", "hyatt", "hilton", "radisson", "novotel", "taj", "itc",
}

// Grouper clusters co-located stations from different networks into one
// display unit. It operates on query results only and never writes anything.
type Grouper struct {
	RadiusMeters float64
}

// NewGrouper returns a grouper with the given clustering radius, defaulting
// to the shared matching radius.
func NewGrouper(radiusMeters float64) *Grouper {
	if radiusMeters <= 0 {
		radiusMeters = match.DefaultRadiusMeters
	}
	return &Grouper{RadiusMeters: radiusMeters}
}

// ShouldGroup reports whether any two stations in the list would cluster.
func (g *Grouper) ShouldGroup(stations []models.Station) bool {
	for i := range stations {
		for j := i + 1; j < len(stations); j++ {
			if g.sameLocation(stations[i], stations[j]) {
				return true
			}
		}
	}
	return false
}

// Group clusters the input in a single pass. Each not-yet-consumed station
// seeds a cluster collecting every remaining station within the radius with
// a similar name. The result is deterministic for a given input order and
// idempotent: grouping an already singleton-per-cluster list again yields
// the same clusters.
func (g *Grouper) Group(stations []models.Station) []models.GroupedStation {
	consumed := make([]bool, len(stations))
	groups := make([]models.GroupedStation, 0, len(stations))

	for i := range stations {
		if consumed[i] {
			continue
		}
		consumed[i] = true
		members := []models.Station{stations[i]}

		for j := i + 1; j < len(stations); j++ {
			if consumed[j] {
				continue
			}
			if g.sameLocation(stations[i], stations[j]) {
				consumed[j] = true
				members = append(members, stations[j])
			}
		}

		groups = append(groups, buildGroup(members))
	}
	return groups
}

func (g *Grouper) sameLocation(a, b models.Station) bool {
	dist := geo.DistanceMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
	if dist >= g.RadiusMeters {
		return false
	}
	return match.NamesSimilar(a.Name, b.Name)
}

func buildGroup(members []models.Station) models.GroupedStation {
	group := models.GroupedStation{
		Name:      representativeName(members),
		Latitude:  members[0].Latitude,
		Longitude: members[0].Longitude,
		Address:   members[0].Address,
	}

	for _, m := range members {
		group.Members = append(group.Members, models.GroupMember{
			Operator:   m.Operator,
			StationID:  m.ID,
			Name:       m.Name,
			Connectors: m.Connectors,
			Prices:     m.Prices,
		})
		group.TotalConnectors += m.TotalConnectors()
	}

	sort.SliceStable(group.Members, func(i, j int) bool {
		return connectorCount(group.Members[i]) > connectorCount(group.Members[j])
	})
	return group
}

// representativeName prefers a member named after a known landmark, then the
// longest member name.
func representativeName(members []models.Station) string {
	for _, kw := range landmarkKeywords {
		for _, m := range members {
			if strings.Contains(match.NormalizeName(m.Name), kw) {
				return m.Name
			}
		}
	}

	longest := members[0].Name
	for _, m := range members[1:] {
		if len(m.Name) > len(longest) {
			longest = m.Name
		}
	}
	return longest
}

func connectorCount(m models.GroupMember) int {
	total := 0
	for _, c := range m.Connectors {
		total += c.Count
	}
	return total
}
