package utils

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"flightbot-service/internal/domain/entity"
)

const (
	placeholder    = "—"
	unknownAirline = "Unknown Airline"
)

var durationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?`)

// timestamp layouts seen in provider payloads, most specific first
var offerTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

var currencySymbols = map[string]string{
	"INR": "₹",
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
}

// ParseOfferTime parses a segment timestamp, keeping the local wall clock it carries
func ParseOfferTime(at string) (time.Time, bool) {
	for _, layout := range offerTimeLayouts {
		if t, err := time.Parse(layout, at); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatClock renders a timestamp as 24-hour HH:MM, "—" when unparseable
func FormatClock(at string) string {
	t, ok := ParseOfferTime(at)
	if !ok {
		return placeholder
	}
	return t.Format("15:04")
}

// FormatDuration renders an ISO-8601 duration such as PT9H50M as "9h 50m"
func FormatDuration(d string) string {
	m := durationPattern.FindStringSubmatch(d)
	if m == nil {
		return placeholder
	}
	hours, minutes := 0, 0
	if m[1] != "" {
		hours, _ = strconv.Atoi(m[1])
	}
	if m[2] != "" {
		minutes, _ = strconv.Atoi(m[2])
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// FormatStops renders the number of intermediate stops
func FormatStops(stops int) string {
	if stops == 1 {
		return "1 stop"
	}
	return fmt.Sprintf("%d stops", stops)
}

// FormatPrice prefixes the amount with a currency symbol when one is known
func FormatPrice(price entity.OfferPrice) string {
	if price.Total == "" {
		return placeholder
	}
	if symbol, ok := currencySymbols[strings.ToUpper(price.Currency)]; ok {
		return symbol + price.Total
	}
	if price.Currency == "" {
		return price.Total
	}
	return price.Currency + " " + price.Total
}

// AirlineName looks the carrier up in the dictionary, falling back to the raw code
func AirlineName(code string, carriers map[string]string) string {
	if name := carriers[code]; name != "" {
		return name
	}
	if code != "" {
		return code
	}
	return unknownAirline
}

// FormatOffer renders one offer as a plain-text block numbered index+1
func FormatOffer(offer entity.FlightOffer, index int, carriers map[string]string) string {
	if len(offer.Itineraries) == 0 || len(offer.Itineraries[0].Segments) == 0 {
		return fmt.Sprintf("%d. Flight details unavailable", index+1)
	}

	itinerary := offer.Itineraries[0]
	first := itinerary.Segments[0]
	last := itinerary.Segments[len(itinerary.Segments)-1]

	header := fmt.Sprintf("%d. %s", index+1, AirlineName(first.CarrierCode, carriers))
	if first.CarrierCode != "" && first.Number != "" {
		header += fmt.Sprintf(" (%s%s)", first.CarrierCode, first.Number)
	}

	return fmt.Sprintf("%s — %s\n   %s %s → %s %s\n   %s · %s",
		header,
		FormatPrice(offer.Price),
		first.Departure.IataCode, FormatClock(first.Departure.At),
		last.Arrival.IataCode, FormatClock(last.Arrival.At),
		FormatDuration(itinerary.Duration),
		FormatStops(len(itinerary.Segments)-1),
	)
}

// SortOffers drops offers without a first departure time and orders the rest by
// that time. Equal times keep provider order. Offers whose time does not parse
// are kept after the parsed ones, in provider order.
func SortOffers(offers []entity.FlightOffer) []entity.FlightOffer {
	type timedOffer struct {
		offer     entity.FlightOffer
		departure time.Time
		parsed    bool
	}

	timed := make([]timedOffer, 0, len(offers))
	for _, offer := range offers {
		seg := offer.FirstSegment()
		if seg == nil || seg.Departure.At == "" {
			continue
		}
		departure, ok := ParseOfferTime(seg.Departure.At)
		timed = append(timed, timedOffer{offer: offer, departure: departure, parsed: ok})
	}

	sort.SliceStable(timed, func(i, j int) bool {
		if timed[i].parsed != timed[j].parsed {
			return timed[i].parsed
		}
		return timed[i].parsed && timed[i].departure.Before(timed[j].departure)
	})

	sorted := make([]entity.FlightOffer, len(timed))
	for i, t := range timed {
		sorted[i] = t.offer
	}
	return sorted
}

// FormatOffers sorts offers and renders each one
func FormatOffers(offers []entity.FlightOffer, carriers map[string]string) []string {
	sorted := SortOffers(offers)
	items := make([]string, len(sorted))
	for i, offer := range sorted {
		items[i] = FormatOffer(offer, i, carriers)
	}
	return items
}
