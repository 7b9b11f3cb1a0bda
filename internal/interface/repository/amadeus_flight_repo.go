package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/internal/domain/repository"
	"flightbot-service/pkg/logger"
)

const amadeusFlightOffersPath = "/v2/shopping/flight-offers"

// AmadeusFlightOfferRepository searches one-way offers with the Amadeus flight offers search
type AmadeusFlightOfferRepository struct {
	api       amadeusClient
	maxOffers int
	logger    logger.Logger
}

// NewAmadeusFlightOfferRepository creates a new Amadeus flight offer repository
func NewAmadeusFlightOfferRepository(client *http.Client, baseURL string, maxOffers int, logger logger.Logger) repository.FlightOfferRepository {
	if maxOffers <= 0 {
		maxOffers = 5
	}
	return &AmadeusFlightOfferRepository{
		api:       newAmadeusClient(client, baseURL),
		maxOffers: maxOffers,
		logger:    logger,
	}
}

type flightOffersResponse struct {
	// kept raw so that a non-list payload can be told apart from an empty one
	Data         json.RawMessage `json:"data"`
	Dictionaries struct {
		Carriers map[string]string `json:"carriers"`
	} `json:"dictionaries"`
}

// Search runs a single adult search. Return dates are never sent.
func (r *AmadeusFlightOfferRepository) Search(ctx context.Context, params entity.FlightSearchParams) (*entity.FlightSearchResult, error) {
	query := url.Values{}
	query.Set("originLocationCode", params.OriginCode)
	query.Set("destinationLocationCode", params.DestinationCode)
	query.Set("departureDate", params.Date)
	query.Set("adults", "1")
	query.Set("max", strconv.Itoa(r.maxOffers))
	if params.CabinClass != "" {
		query.Set("travelClass", string(params.CabinClass))
	}

	r.logger.Info("Searching Amadeus flight offers",
		"origin", params.OriginCode,
		"destination", params.DestinationCode,
		"date", params.Date,
		"cabinClass", params.CabinClass)

	var response flightOffersResponse
	if err := r.api.getJSON(ctx, amadeusFlightOffersPath, query, &response); err != nil {
		return nil, err
	}

	offers, err := decodeOffers(response.Data)
	if err != nil {
		return nil, err
	}

	carriers := response.Dictionaries.Carriers
	if carriers == nil {
		carriers = map[string]string{}
	}

	r.logger.Info("Amadeus flight offers received", "count", len(offers))

	return &entity.FlightSearchResult{
		Flights:  offers,
		Carriers: carriers,
	}, nil
}

func decodeOffers(raw json.RawMessage) ([]entity.FlightOffer, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []entity.FlightOffer{}, nil
	}
	if trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: data is not a list", repository.ErrMalformedResponse)
	}

	var offers []entity.FlightOffer
	if err := json.Unmarshal(trimmed, &offers); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrMalformedResponse, err)
	}
	return offers, nil
}
