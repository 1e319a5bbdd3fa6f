package repositories

import "placereview/internal/models"

// PlaceRepository defines the interface for place data access.
// Lookup is by coordinates: places have no natural key other than
// their (latitude, longitude) pair.
type PlaceRepository interface {
	Create(place *models.Place) error
	GetByID(id uint) (*models.Place, error)
	// GetByLocation matches latitude and longitude by exact equality.
	GetByLocation(latitude, longitude float64) (*models.Place, error)
	// GetNearestWithin returns the place closest to (latitude, longitude)
	// inside the square box of the given radius in degrees.
	GetNearestWithin(latitude, longitude, radius float64) (*models.Place, error)
}
