package models

// GroupMember is one network operator's presence inside a GroupedStation.
type GroupMember struct {
	Operator   string          `json:"operator"`
	StationID  string          `json:"station_id"`
	Name       string          `json:"name"`
	Connectors []ConnectorSpec `json:"connectors"`
	Prices     []PriceSpec     `json:"prices"`
}

// GroupedStation is a presentation-only aggregate of co-located stations
// run by different networks. It is built per query and never persisted.
type GroupedStation struct {
	Name            string        `json:"name"`
	Latitude        float64       `json:"latitude"`
	Longitude       float64       `json:"longitude"`
	Address         string        `json:"address"`
	Members         []GroupMember `json:"members"`
	TotalConnectors int           `json:"total_connectors"`
}
