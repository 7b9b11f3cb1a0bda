package entity

// FlightSearchParams is what gets sent to the flight offers provider
type FlightSearchParams struct {
	OriginCode      string
	DestinationCode string
	Date            string
	CabinClass      CabinClass
}

// FlightSearchResult is the provider response: raw offers plus the carrier dictionary
type FlightSearchResult struct {
	Flights  []FlightOffer
	Carriers map[string]string
}

// FlightOffer mirrors the provider's flight-offer object, only the fields we render
type FlightOffer struct {
	ID          string      `json:"id"`
	Itineraries []Itinerary `json:"itineraries"`
	Price       OfferPrice  `json:"price"`
}

type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	CarrierCode string      `json:"carrierCode"`
	Number      string      `json:"number"`
	Departure   FlightPoint `json:"departure"`
	Arrival     FlightPoint `json:"arrival"`
	Duration    string      `json:"duration,omitempty"`
}

type FlightPoint struct {
	IataCode string `json:"iataCode"`
	At       string `json:"at"`
}

type OfferPrice struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// FirstSegment returns the first segment of the outbound itinerary, or nil
func (o *FlightOffer) FirstSegment() *Segment {
	if o == nil || len(o.Itineraries) == 0 || len(o.Itineraries[0].Segments) == 0 {
		return nil
	}
	return &o.Itineraries[0].Segments[0]
}
