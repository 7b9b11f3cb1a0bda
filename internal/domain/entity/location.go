package entity

// Location types as reported by the reference data source
const (
	LocationTypeAirport = "AIRPORT"
	LocationTypeCity    = "CITY"
)

// Location represents a resolved airport or city
type Location struct {
	CityCode    string `json:"cityCode" bson:"cityCode"`
	AirportCode string `json:"airportCode" bson:"airportCode"`
	CityName    string `json:"cityName" bson:"cityName"`
	AirportName string `json:"airportName" bson:"airportName"`
	Type        string `json:"type" bson:"type"`
}

// SearchCode returns the IATA code used for flight searches
func (l *Location) SearchCode() string {
	if l == nil {
		return ""
	}
	if l.CityCode != "" {
		return l.CityCode
	}
	return l.AirportCode
}

// DisplayName returns the name shown to the user
func (l *Location) DisplayName() string {
	if l == nil {
		return ""
	}
	switch {
	case l.CityName != "":
		return l.CityName
	case l.AirportName != "":
		return l.AirportName
	default:
		return l.SearchCode()
	}
}
