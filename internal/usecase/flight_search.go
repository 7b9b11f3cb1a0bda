package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/internal/domain/repository"
	"flightbot-service/pkg/logger"
	"flightbot-service/pkg/metrics"
	"flightbot-service/pkg/utils"
)

var errIncompleteQuery = errors.New("incomplete flight query")

// SearchOutcome is a formatted provider answer
type SearchOutcome struct {
	Items    []string
	Executed *entity.ExecutedSearch
}

// FlightSearchService runs a query against the offers provider and renders the offers
type FlightSearchService struct {
	offerRepo   repository.FlightOfferRepository
	airlineRepo repository.AirlineRepository
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// NewFlightSearchService creates a new search service. airlineRepo may be nil.
func NewFlightSearchService(
	offerRepo repository.FlightOfferRepository,
	airlineRepo repository.AirlineRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *FlightSearchService {
	return &FlightSearchService{
		offerRepo:   offerRepo,
		airlineRepo: airlineRepo,
		metrics:     metrics,
		logger:      logger,
	}
}

// Search executes q. Only origin, destination, date and cabin class are sent.
func (s *FlightSearchService) Search(ctx context.Context, q *entity.FlightQuery) (*SearchOutcome, error) {
	if !q.IsComplete() {
		return nil, errIncompleteQuery
	}

	params := entity.FlightSearchParams{
		OriginCode:      q.Origin.SearchCode(),
		DestinationCode: q.Destination.SearchCode(),
		Date:            q.Date,
		CabinClass:      q.CabinClass,
	}

	start := time.Now()
	result, err := s.offerRepo.Search(ctx, params)
	s.metrics.SearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("flight_search").Inc()
		return nil, fmt.Errorf("flight search %s-%s on %s failed: %w", params.OriginCode, params.DestinationCode, params.Date, err)
	}
	s.metrics.SearchesExecuted.Inc()

	carriers := s.carrierNames(ctx, result)
	items := utils.FormatOffers(result.Flights, carriers)

	s.logger.Info("Flight search completed",
		"origin", params.OriginCode,
		"destination", params.DestinationCode,
		"date", params.Date,
		"offers", len(result.Flights),
		"usable", len(items))

	return &SearchOutcome{
		Items:    items,
		Executed: entity.ExecutedSearchFor(q),
	}, nil
}

// carrierNames fills carriers missing from the provider dictionary from the airline table
func (s *FlightSearchService) carrierNames(ctx context.Context, result *entity.FlightSearchResult) map[string]string {
	carriers := make(map[string]string, len(result.Carriers))
	for code, name := range result.Carriers {
		carriers[code] = name
	}
	if s.airlineRepo == nil {
		return carriers
	}

	var missing []string
	seen := make(map[string]bool)
	for i := range result.Flights {
		seg := result.Flights[i].FirstSegment()
		if seg == nil || seg.CarrierCode == "" || carriers[seg.CarrierCode] != "" || seen[seg.CarrierCode] {
			continue
		}
		seen[seg.CarrierCode] = true
		missing = append(missing, seg.CarrierCode)
	}
	if len(missing) == 0 {
		return carriers
	}

	names, err := s.airlineRepo.NamesByCodes(ctx, missing)
	if err != nil {
		s.logger.Warn("Failed to load airline names", "codes", missing, "error", err)
		return carriers
	}
	for code, name := range names {
		carriers[code] = name
	}
	return carriers
}
