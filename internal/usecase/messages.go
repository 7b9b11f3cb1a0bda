package usecase

import (
	"fmt"
	"strings"

	"flightbot-service/internal/domain/entity"
)

// Intent replies
const (
	MsgCancelled = "❌ Flight search cancelled."
	MsgReset     = "✅ All set. Let’s start fresh.\n\nYou can reply: Flights"
	MsgGreeting  = "👋 Hi! I can help you find flights.\n\nTry:\nflight from delhi to london on 2025-12-10"
	MsgFallback  = "I can help with flights ✈️\n\nTry saying:\nflights"
)

// Prompts
const (
	MsgUsage          = "✈️ Tell me about your trip like this:\nflight from delhi to london on 2025-12-10"
	MsgTripTypeMenu   = "✈️ What kind of trip are you planning?\n\n1. One-way\n2. Round-trip\n3. Multi-city\n\nReply with 1, 2 or 3"
	MsgComingSoon     = "🚧 That trip type is coming soon. Reply 1 for a one-way search."
	MsgRoutePrompt    = "🛫 Where are you flying? Reply like:\ndelhi to london"
	MsgDatePrompt     = "📅 What date would you like to travel? (YYYY-MM-DD)"
	MsgNewOrigin      = "🛫 Where would you like to fly from?"
	MsgNewDestination = "🛬 Where would you like to fly to?"
	MsgCabinMenu      = "💺 Choose a cabin class:\n\n1. Economy\n2. Premium Economy\n3. Business\n4. First"
	MsgChangeWhat     = "✏️ What would you like to change?\n\nReply: date, origin, destination or class"
	MsgChangeAfter    = "✏️ What would you like to change?\n\nReply: date, origin or destination"
)

// Errors and refusals
const (
	MsgClassLocked          = "⚠️ Cabin class can’t be changed after a search. Reply cancel to start a new search."
	MsgSameRoute            = "⚠️ Origin and destination must be different."
	MsgMissingDetails       = "⚠️ Missing trip details. Please start again."
	MsgNoFlights            = "Sorry, I couldn’t find flights for that route and date."
	MsgProviderDown         = "⚠️ I couldn’t reach the flight service right now. Please try again shortly."
	MsgUnknownLocation      = "❓ I couldn’t recognise one of those places. Please use a major city or airport, for example Delhi or LHR."
	MsgReturnOrder          = "⚠️ Your return date must be after your departure date."
	MsgReturnUnsupported    = "↩️ Return flights can’t be searched yet.\n\nReply remove return to search one-way, or cancel to stop."
	MsgMultiCityUnsupported = "🚧 Multi-city search is coming soon. Reply cancel and send a single route."
	MsgNoCachedResults      = "⚠️ No results loaded. Reply run search to search again."
	MsgSomethingWrong       = "⚠️ Something went wrong. Please try again."
)

const (
	resultsMoreFooter = "Reply:\n• Show more — for more flights\n• Change date / origin / destination — to modify\n• Cancel — to stop"
	resultsLastFooter = "Reply:\n• Change date / origin / destination — to modify\n• Cancel — to stop"
)

// LocationLabel renders "Delhi (DEL)", or just the code when no name is known
func LocationLabel(l *entity.Location) string {
	name, code := l.DisplayName(), l.SearchCode()
	if name == "" || strings.EqualFold(name, code) {
		return code
	}
	return fmt.Sprintf("%s (%s)", name, code)
}

// ConfirmationMessage lists the query and the replies accepted before searching
func ConfirmationMessage(q *entity.FlightQuery) string {
	var b strings.Builder
	b.WriteString("✈️ Please confirm your flight search:\n\n")
	fmt.Fprintf(&b, "From: %s\n", LocationLabel(q.Origin))
	fmt.Fprintf(&b, "To: %s\n", LocationLabel(q.Destination))
	fmt.Fprintf(&b, "Departure: %s\n", q.Date)
	if q.ReturnDate != "" {
		fmt.Fprintf(&b, "Return: %s\n", q.ReturnDate)
	}
	fmt.Fprintf(&b, "Class: %s\n", q.CabinClass.Label())
	b.WriteString("\nReply:\n")
	b.WriteString("• Yes — to search\n")
	b.WriteString("• Change date — to modify date\n")
	b.WriteString("• Change — to edit origin, destination or class\n")
	if q.ReturnDate != "" {
		b.WriteString("• Remove return — to search one-way\n")
	}
	b.WriteString("• Cancel — to stop")
	return b.String()
}

// ResultsMessage wraps a page of offers with a header and the follow-up options
func ResultsMessage(q *entity.FlightQuery, page string, exhausted bool) string {
	header := fmt.Sprintf("✈️ Flights from %s to %s on %s (%s):",
		LocationLabel(q.Origin), LocationLabel(q.Destination), q.Date, q.CabinClass.Label())
	return header + "\n\n" + MorePageMessage(page, exhausted)
}

// MorePageMessage is a follow-up page with its footer
func MorePageMessage(page string, exhausted bool) string {
	footer := resultsMoreFooter
	if exhausted {
		footer = resultsLastFooter
	}
	return page + "\n\n" + footer
}

// AmendedMessage acknowledges a post-search amendment
func AmendedMessage(field, value string) string {
	return fmt.Sprintf("✅ %s updated to %s.\n\nReply run search to see flights.", field, value)
}

// DepartureAfterReturnMessage rejects a new date that would break the trip order
func DepartureAfterReturnMessage(returnDate string) string {
	return fmt.Sprintf("⚠️ Your departure date must be before your return date (%s). %s", returnDate, MsgDatePrompt)
}

// ChangePrompt is the question asked when a field is about to be amended
func ChangePrompt(target entity.ChangeTarget) string {
	switch target {
	case entity.ChangeDate:
		return MsgDatePrompt
	case entity.ChangeOrigin:
		return MsgNewOrigin
	case entity.ChangeDestination:
		return MsgNewDestination
	case entity.ChangeClass:
		return MsgCabinMenu
	}
	return MsgChangeWhat
}
