package entity

import (
	"time"
)

// Airline represents a carrier from the reference table
type Airline struct {
	ID        uint
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
