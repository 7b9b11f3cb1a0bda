package entity

import (
	"errors"
	"time"
)

// TripType classifies a flight query
type TripType string

const (
	TripTypeOneWay    TripType = "ONE_WAY"
	TripTypeRoundTrip TripType = "ROUND_TRIP"
	TripTypeMultiCity TripType = "MULTI_CITY"
)

// CabinClass is the fare class attached to a query before first execution
type CabinClass string

const (
	CabinEconomy        CabinClass = "ECONOMY"
	CabinPremiumEconomy CabinClass = "PREMIUM_ECONOMY"
	CabinBusiness       CabinClass = "BUSINESS"
	CabinFirst          CabinClass = "FIRST"
)

// DateLayout is the only date format accepted from users
const DateLayout = "2006-01-02"

var ErrReturnBeforeDeparture = errors.New("return date must be after departure date")

// Label returns a human readable cabin name
func (c CabinClass) Label() string {
	switch c {
	case CabinPremiumEconomy:
		return "Premium Economy"
	case CabinBusiness:
		return "Business"
	case CabinFirst:
		return "First"
	default:
		return "Economy"
	}
}

// FlightQuery is the evolving draft of a search. Empty strings mean "not set".
type FlightQuery struct {
	TripType    TripType   `json:"tripType"`
	Origin      *Location  `json:"origin,omitempty"`
	Destination *Location  `json:"destination,omitempty"`
	Date        string     `json:"date,omitempty"`
	ReturnDate  string     `json:"returnDate,omitempty"`
	CabinClass  CabinClass `json:"cabinClass"`
}

// NewFlightQuery creates an empty draft for the given trip type
func NewFlightQuery(tripType TripType) *FlightQuery {
	return &FlightQuery{
		TripType:   tripType,
		CabinClass: CabinEconomy,
	}
}

// IsComplete reports whether origin, destination and date are all set
func (q *FlightQuery) IsComplete() bool {
	return q != nil && q.Origin != nil && q.Destination != nil && q.Date != ""
}

// HasRoute reports whether both ends of the route are known
func (q *FlightQuery) HasRoute() bool {
	return q != nil && q.Origin != nil && q.Destination != nil
}

// ValidateDates checks that a return date, when present, is strictly later than the departure
func (q *FlightQuery) ValidateDates() error {
	if q == nil || q.ReturnDate == "" || q.Date == "" {
		return nil
	}
	if !DateBefore(q.Date, q.ReturnDate) {
		return ErrReturnBeforeDeparture
	}
	return nil
}

// Clone returns a copy that can be modified independently. Locations are immutable and shared.
func (q *FlightQuery) Clone() *FlightQuery {
	if q == nil {
		return nil
	}
	c := *q
	return &c
}

// DateBefore reports whether a is strictly earlier than b, both in DateLayout
func DateBefore(a, b string) bool {
	ta, errA := time.Parse(DateLayout, a)
	tb, errB := time.Parse(DateLayout, b)
	if errA != nil || errB != nil {
		return a < b
	}
	return ta.Before(tb)
}
