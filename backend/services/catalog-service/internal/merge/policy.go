package merge

import "evcharge/backend/services/catalog-service/internal/models"

// Apply folds an incoming record into an existing logical station in place.
//
// Trust score only ever goes up: a later, lower-trust source never downgrades
// a station. Descriptive fields follow freshest-wins and are overwritten by
// the incoming record. Connector and price lists are replaced wholesale — a
// source's list is its complete current view of the station's hardware.
// Amenities replace prior amenities only when the incoming record carries any.
func Apply(existing *models.Station, incoming models.StationRecord) {
	if incoming.TrustScore > existing.TrustScore {
		existing.TrustScore = incoming.TrustScore
	}

	existing.Name = incoming.Name
	existing.Operator = incoming.Operator
	existing.Address = incoming.Address
	existing.City = incoming.City
	existing.State = incoming.State
	existing.PostalCode = incoming.PostalCode
	existing.Open24x7 = incoming.Open24x7
	existing.ParkingType = incoming.ParkingType
	existing.LastVerified = incoming.LastVerified

	existing.Connectors = incoming.Connectors
	existing.Prices = incoming.Prices
	if incoming.Amenities != nil {
		existing.Amenities = incoming.Amenities
	}
}
