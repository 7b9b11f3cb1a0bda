package repository

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/internal/domain/repository"
	"flightbot-service/pkg/logger"
)

const amadeusLocationsPath = "/v1/reference-data/locations"

// AmadeusLocationRepository resolves places with the Amadeus airport & city search
type AmadeusLocationRepository struct {
	api    amadeusClient
	logger logger.Logger
}

// NewAmadeusLocationRepository creates a new Amadeus location repository
func NewAmadeusLocationRepository(client *http.Client, baseURL string, logger logger.Logger) repository.LocationRepository {
	return &AmadeusLocationRepository{
		api:    newAmadeusClient(client, baseURL),
		logger: logger,
	}
}

type amadeusLocationsResponse struct {
	Data []amadeusLocation `json:"data"`
}

type amadeusLocation struct {
	SubType  string `json:"subType"`
	Name     string `json:"name"`
	IataCode string `json:"iataCode"`
	Address  struct {
		CityName string `json:"cityName"`
		CityCode string `json:"cityCode"`
	} `json:"address"`
}

// Resolve returns the first airport among the matches, else the first match
func (r *AmadeusLocationRepository) Resolve(ctx context.Context, query string) (*entity.Location, error) {
	keyword := strings.TrimSpace(query)
	if keyword == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("keyword", strings.ToUpper(keyword))
	params.Set("subType", "CITY,AIRPORT")
	params.Set("page[limit]", "5")

	var response amadeusLocationsResponse
	if err := r.api.getJSON(ctx, amadeusLocationsPath, params, &response); err != nil {
		r.logger.Error("Amadeus location lookup failed", "keyword", keyword, "error", err)
		return nil, err
	}

	if len(response.Data) == 0 {
		r.logger.Debug("No Amadeus location match", "keyword", keyword)
		return nil, nil
	}

	chosen := response.Data[0]
	for _, candidate := range response.Data {
		if candidate.SubType == entity.LocationTypeAirport {
			chosen = candidate
			break
		}
	}

	location := &entity.Location{
		CityCode: chosen.Address.CityCode,
		CityName: chosen.Address.CityName,
		Type:     chosen.SubType,
	}
	if chosen.SubType == entity.LocationTypeAirport {
		location.AirportCode = chosen.IataCode
		location.AirportName = chosen.Name
	} else if location.CityCode == "" {
		location.CityCode = chosen.IataCode
	}
	if location.CityName == "" && chosen.SubType == entity.LocationTypeCity {
		location.CityName = chosen.Name
	}

	return location, nil
}
