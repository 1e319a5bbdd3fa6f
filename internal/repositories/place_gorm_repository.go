package repositories

import (
	"fmt"

	"placereview/internal/models"

	"gorm.io/gorm"
)

// GORMPlaceRepository is a GORM implementation of PlaceRepository.
type GORMPlaceRepository struct {
	db *gorm.DB
}

// NewGORMPlaceRepository creates a new instance of GORMPlaceRepository.
func NewGORMPlaceRepository(db *gorm.DB) *GORMPlaceRepository {
	return &GORMPlaceRepository{
		db: db,
	}
}

// Create inserts a new place.
func (r *GORMPlaceRepository) Create(place *models.Place) error {
	if err := r.db.Create(place).Error; err != nil {
		return fmt.Errorf("failed to create place: %w", err)
	}
	return nil
}

// GetByID retrieves a single place by its ID.
func (r *GORMPlaceRepository) GetByID(id uint) (*models.Place, error) {
	var place models.Place
	if err := r.db.First(&place, "place_id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get place by ID %d: %w", id, err)
	}
	return &place, nil
}

// GetByLocation retrieves a place by exact coordinate equality.
func (r *GORMPlaceRepository) GetByLocation(latitude, longitude float64) (*models.Place, error) {
	var place models.Place
	err := r.db.First(&place, "latitude = ? AND longitude = ?", latitude, longitude).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get place at (%f, %f): %w", latitude, longitude, err)
	}
	return &place, nil
}

// GetNearestWithin retrieves the place closest to the given coordinates
// inside the square box of the given radius in degrees. Candidate sets are
// small enough that the nearest pick happens in memory.
func (r *GORMPlaceRepository) GetNearestWithin(latitude, longitude, radius float64) (*models.Place, error) {
	var candidates []models.Place
	err := r.db.
		Where("latitude BETWEEN ? AND ?", latitude-radius, latitude+radius).
		Where("longitude BETWEEN ? AND ?", longitude-radius, longitude+radius).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get places near (%f, %f): %w", latitude, longitude, err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no place near (%f, %f): %w", latitude, longitude, gorm.ErrRecordNotFound)
	}

	nearest := candidates[0]
	best := squaredDistance(nearest.Latitude, nearest.Longitude, latitude, longitude)
	for _, candidate := range candidates[1:] {
		if d := squaredDistance(candidate.Latitude, candidate.Longitude, latitude, longitude); d < best {
			nearest, best = candidate, d
		}
	}
	return &nearest, nil
}

func squaredDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return (lat1-lat2)*(lat1-lat2) + (lon1-lon2)*(lon1-lon2)
}
