package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightbot-service/internal/domain/entity"
)

func offerDeparting(id, at string) entity.FlightOffer {
	return entity.FlightOffer{
		ID: id,
		Itineraries: []entity.Itinerary{{
			Duration: "PT9H50M",
			Segments: []entity.Segment{{
				CarrierCode: "AI",
				Number:      "161",
				Departure:   entity.FlightPoint{IataCode: "DEL", At: at},
				Arrival:     entity.FlightPoint{IataCode: "LHR", At: "2025-12-10T13:05:00"},
			}},
		}},
		Price: entity.OfferPrice{Total: "52000.00", Currency: "INR"},
	}
}

func TestFormatOffer(t *testing.T) {
	offer := offerDeparting("1", "2025-12-10T08:15:00")

	got := FormatOffer(offer, 0, map[string]string{"AI": "AIR INDIA"})
	assert.Equal(t, "1. AIR INDIA (AI161) — ₹52000.00\n   DEL 08:15 → LHR 13:05\n   9h 50m · 0 stops", got)
}

func TestFormatOffer_ConnectingFlight(t *testing.T) {
	offer := entity.FlightOffer{
		Itineraries: []entity.Itinerary{{
			Duration: "PT14H",
			Segments: []entity.Segment{
				{CarrierCode: "EK", Number: "511", Departure: entity.FlightPoint{IataCode: "DEL", At: "2025-12-10T04:05:00+05:30"}, Arrival: entity.FlightPoint{IataCode: "DXB", At: "2025-12-10T06:20:00"}},
				{CarrierCode: "EK", Number: "1", Departure: entity.FlightPoint{IataCode: "DXB", At: "2025-12-10T08:10:00"}, Arrival: entity.FlightPoint{IataCode: "LHR", At: "bad"}},
			},
		}},
		Price: entity.OfferPrice{Total: "610.20", Currency: "EUR"},
	}

	got := FormatOffer(offer, 2, nil)
	assert.Equal(t, "3. EK (EK511) — €610.20\n   DEL 04:05 → LHR —\n   14h 0m · 1 stop", got)
}

func TestFormatOffer_MissingSegments(t *testing.T) {
	assert.Equal(t, "2. Flight details unavailable", FormatOffer(entity.FlightOffer{}, 1, nil))
	assert.Equal(t, "1. Flight details unavailable", FormatOffer(entity.FlightOffer{
		Itineraries: []entity.Itinerary{{Duration: "PT1H"}},
	}, 0, nil))
}

func TestFormatDuration(t *testing.T) {
	tests := map[string]string{
		"PT9H50M": "9h 50m",
		"PT2H":    "2h 0m",
		"PT45M":   "0h 45m",
		"P1DT2H":  "—",
		"bogus":   "—",
		"":        "—",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatDuration(in), in)
	}
}

func TestFormatStopsAndPrice(t *testing.T) {
	assert.Equal(t, "0 stops", FormatStops(0))
	assert.Equal(t, "1 stop", FormatStops(1))
	assert.Equal(t, "2 stops", FormatStops(2))

	assert.Equal(t, "$120.00", FormatPrice(entity.OfferPrice{Total: "120.00", Currency: "USD"}))
	assert.Equal(t, "£99", FormatPrice(entity.OfferPrice{Total: "99", Currency: "gbp"}))
	assert.Equal(t, "AED 450", FormatPrice(entity.OfferPrice{Total: "450", Currency: "AED"}))
	assert.Equal(t, "—", FormatPrice(entity.OfferPrice{}))
}

func TestAirlineName(t *testing.T) {
	carriers := map[string]string{"6E": "INDIGO"}
	assert.Equal(t, "INDIGO", AirlineName("6E", carriers))
	assert.Equal(t, "UK", AirlineName("UK", carriers))
	assert.Equal(t, "Unknown Airline", AirlineName("", carriers))
}

func TestSortOffers(t *testing.T) {
	offers := []entity.FlightOffer{
		offerDeparting("late", "2025-12-10T10:00:00"),
		offerDeparting("early-a", "2025-12-10T08:00:00"),
		offerDeparting("no-time", ""),
		offerDeparting("garbage", "soon"),
		offerDeparting("early-b", "2025-12-10T08:00:00"),
		{ID: "no-itinerary"},
		offerDeparting("garbage-2", "25:99"),
	}

	sorted := SortOffers(offers)
	require.Len(t, sorted, 5)

	ids := make([]string, len(sorted))
	for i, o := range sorted {
		ids[i] = o.ID
	}
	assert.Equal(t, []string{"early-a", "early-b", "late", "garbage", "garbage-2"}, ids)
}

func TestFormatOffers_UnparseableDepartureIsKept(t *testing.T) {
	items := FormatOffers([]entity.FlightOffer{
		offerDeparting("garbage", "soon"),
		offerDeparting("early", "2025-12-10T06:30:00"),
	}, nil)

	require.Len(t, items, 2)
	assert.Contains(t, items[0], "DEL 06:30")
	assert.Contains(t, items[1], "2. AI (AI161)")
	assert.Contains(t, items[1], "DEL —")
}

func TestFormatOffers_NumbersAfterSorting(t *testing.T) {
	items := FormatOffers([]entity.FlightOffer{
		offerDeparting("late", "2025-12-10T10:00:00"),
		offerDeparting("early", "2025-12-10T06:30:00"),
	}, nil)

	require.Len(t, items, 2)
	assert.Contains(t, items[0], "1. AI (AI161)")
	assert.Contains(t, items[0], "DEL 06:30")
	assert.Contains(t, items[1], "2. AI (AI161)")
	assert.Contains(t, items[1], "DEL 10:00")
}
