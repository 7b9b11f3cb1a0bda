package utils

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/internal/domain/repository"
	"flightbot-service/pkg/logger"
)

var (
	ErrUnknownLocation   = errors.New("UNKNOWN_LOCATION")
	ErrInvalidReturnDate = errors.New("INVALID_RETURN_DATE")
)

var (
	fullRoutePattern     = regexp.MustCompile(`flights?\s+(?:from\s+)?(.+?)\s+to\s+(.+?)\s+on\s+(\d{4}-\d{2}-\d{2})$`)
	partialRoutePattern  = regexp.MustCompile(`flights?\s+(?:from\s+)?(.+?)\s+to\s+(.+?)$`)
	isoDatePattern       = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	malformedDatePattern = regexp.MustCompile(`\b\d{2}-\d{2}-\d{4}\b`)
	exactDatePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

var (
	returnMarkers    = []string{"return", "returning", "round trip", "roundtrip"}
	multiCityMarkers = []string{" via ", " stopover ", " multi "}

	// stripped from the front of the origin span, e.g. "flight round trip delhi to london"
	originNoise = []string{"round trip ", "roundtrip ", "return ", "one way ", "one-way ", "from "}
	// the destination span ends where any of these start
	destinationStops = append([]string{" on ", " return", " round trip", " roundtrip"}, multiCityMarkers...)
)

// queryTokens is everything a single pass over the text extracts
type queryTokens struct {
	origin          string
	destination     string
	routeDate       string
	dates           []string
	returnIntent    bool
	multiCityIntent bool
	malformedDate   bool
}

// FlightQueryParser turns free text into a FlightQuery draft
type FlightQueryParser struct {
	locationRepo repository.LocationRepository
	logger       logger.Logger
}

// NewFlightQueryParser creates a new parser resolving places through locationRepo
func NewFlightQueryParser(locationRepo repository.LocationRepository, logger logger.Logger) *FlightQueryParser {
	return &FlightQueryParser{
		locationRepo: locationRepo,
		logger:       logger,
	}
}

// Parse extracts a flight query from text.
// It returns (nil, nil) when the text does not look like a supported query,
// ErrUnknownLocation / ErrInvalidReturnDate for recoverable user errors and
// any other error when a resolver call failed.
func (p *FlightQueryParser) Parse(ctx context.Context, text string) (*entity.FlightQuery, error) {
	tokens, ok := tokenizeFlightQuery(text)
	if !ok {
		p.logger.Debug("No flight route pattern found", "text", text)
		return nil, nil
	}

	p.logger.Debug("Tokenized flight query",
		"origin", tokens.origin,
		"destination", tokens.destination,
		"dates", tokens.dates,
		"returnIntent", tokens.returnIntent,
		"multiCityIntent", tokens.multiCityIntent)

	date := tokens.routeDate
	if len(tokens.dates) > 0 {
		date = tokens.dates[0]
	}

	// Reject ambiguous formats before spending lookups
	if tokens.malformedDate {
		return nil, nil
	}
	for _, d := range tokens.dates {
		if !IsCalendarDate(d) {
			return nil, nil
		}
	}

	// Never fabricate a return date
	if tokens.returnIntent && len(tokens.dates) < 2 {
		return nil, nil
	}

	returnDate := ""
	if tokens.returnIntent {
		returnDate = tokens.dates[1]
		if !entity.DateBefore(date, returnDate) {
			return nil, ErrInvalidReturnDate
		}
	}

	origin, destination, err := p.resolveRoute(ctx, tokens.origin, tokens.destination)
	if err != nil {
		return nil, err
	}

	tripType := entity.TripTypeOneWay
	switch {
	case tokens.multiCityIntent:
		tripType = entity.TripTypeMultiCity
	case tokens.returnIntent:
		tripType = entity.TripTypeRoundTrip
	}

	return &entity.FlightQuery{
		TripType:    tripType,
		Origin:      origin,
		Destination: destination,
		Date:        date,
		ReturnDate:  returnDate,
		CabinClass:  entity.CabinEconomy,
	}, nil
}

// resolveRoute looks up both ends concurrently. An unresolved place wins over transport errors.
func (p *FlightQueryParser) resolveRoute(ctx context.Context, originText, destinationText string) (*entity.Location, *entity.Location, error) {
	var (
		wg                  sync.WaitGroup
		origin, destination *entity.Location
		originErr, destErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		origin, originErr = p.locationRepo.Resolve(ctx, originText)
	}()
	go func() {
		defer wg.Done()
		destination, destErr = p.locationRepo.Resolve(ctx, destinationText)
	}()
	wg.Wait()

	if (originErr == nil && origin == nil) || (destErr == nil && destination == nil) {
		p.logger.Info("Unknown location in flight query",
			"origin", originText,
			"originFound", origin != nil,
			"destination", destinationText,
			"destinationFound", destination != nil)
		return nil, nil, ErrUnknownLocation
	}
	if originErr != nil {
		return nil, nil, fmt.Errorf("failed to resolve origin %q: %w", originText, originErr)
	}
	if destErr != nil {
		return nil, nil, fmt.Errorf("failed to resolve destination %q: %w", destinationText, destErr)
	}

	return origin, destination, nil
}

// tokenizeFlightQuery runs the route patterns and collects dates and markers in one pass
func tokenizeFlightQuery(text string) (*queryTokens, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	normalized := strings.ToLower(cleaned)

	t := &queryTokens{}
	if m := fullRoutePattern.FindStringSubmatch(normalized); m != nil {
		t.origin, t.destination, t.routeDate = m[1], m[2], m[3]
	} else if m := partialRoutePattern.FindStringSubmatch(normalized); m != nil {
		t.origin, t.destination = m[1], m[2]
	} else {
		return nil, false
	}

	t.dates = isoDatePattern.FindAllString(normalized, -1)
	t.returnIntent = containsAny(normalized, returnMarkers)
	t.multiCityIntent = containsAny(normalized, multiCityMarkers)
	t.malformedDate = malformedDatePattern.MatchString(normalized)

	t.origin = cleanOriginSpan(t.origin)
	t.destination = cleanDestinationSpan(t.destination)
	if t.origin == "" || t.destination == "" {
		return nil, false
	}

	return t, true
}

func cleanOriginSpan(span string) string {
	span = strings.TrimSpace(span)
	for trimmed := true; trimmed; {
		trimmed = false
		for _, noise := range originNoise {
			if strings.HasPrefix(span, noise) {
				span = strings.TrimSpace(strings.TrimPrefix(span, noise))
				trimmed = true
			}
		}
	}
	return cutAtFirst(span, destinationStops)
}

func cleanDestinationSpan(span string) string {
	return cutAtFirst(strings.TrimSpace(span), destinationStops)
}

// cutAtFirst truncates span at the earliest marker or date
func cutAtFirst(span string, markers []string) string {
	end := len(span)
	for _, marker := range markers {
		if idx := strings.Index(span, marker); idx >= 0 && idx < end {
			end = idx
		}
	}
	for _, re := range []*regexp.Regexp{isoDatePattern, malformedDatePattern} {
		if loc := re.FindStringIndex(span); loc != nil && loc[0] < end {
			end = loc[0]
		}
	}
	return strings.TrimSpace(span[:end])
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// IsCalendarDate reports whether s is a real date in YYYY-MM-DD form
func IsCalendarDate(s string) bool {
	_, err := time.Parse(entity.DateLayout, s)
	return err == nil
}

// ParseISODate accepts a reply that is exactly one YYYY-MM-DD date
func ParseISODate(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !exactDatePattern.MatchString(text) || !IsCalendarDate(text) {
		return "", false
	}
	return text, true
}

// RouteQueryText builds the synthetic query used to re-resolve one end of a route
func RouteQueryText(origin, destination string) string {
	return fmt.Sprintf("flight from %s to %s", strings.TrimSpace(origin), strings.TrimSpace(destination))
}
