package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormLocationRepository resolves places from the airport reference table
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GORM location repository
func NewGormLocationRepository(db *gorm.DB) repository.LocationRepository {
	return &GormLocationRepository{
		db: db,
	}
}

// AirportListing GORM model for database mapping
type AirportListing struct {
	ID          uint           `gorm:"primaryKey"`
	AirportCode string         `gorm:"column:airportcode;unique"`
	AirportName string         `gorm:"column:airport_name"`
	CityCode    string         `gorm:"column:citycode"`
	CityName    string         `gorm:"column:cityname"`
	GmtTz       string         `gorm:"column:gmttz"`
	TzName      string         `gorm:"column:tzname"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the default table name
func (AirportListing) TableName() string {
	return "m_timezone_list"
}

// Resolve matches a three letter airport code first, then a city code or city name.
// It returns (nil, nil) when the table has no row for the query.
func (r *GormLocationRepository) Resolve(ctx context.Context, query string) (*entity.Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	code := strings.ToUpper(query)

	if len(query) == 3 {
		listing, err := r.first(ctx, "airportcode = ?", code)
		if err != nil || listing != nil {
			return listing, err
		}
	}

	return r.first(ctx, "citycode = ? OR LOWER(cityname) = ?", code, strings.ToLower(query))
}

func (r *GormLocationRepository) first(ctx context.Context, where string, args ...interface{}) (*entity.Location, error) {
	var listing AirportListing
	result := r.db.WithContext(ctx).Where(where, args...).Order("id").First(&listing)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	// Convert GORM model to domain entity
	return &entity.Location{
		CityCode:    listing.CityCode,
		AirportCode: listing.AirportCode,
		CityName:    listing.CityName,
		AirportName: listing.AirportName,
		Type:        entity.LocationTypeAirport,
	}, nil
}
