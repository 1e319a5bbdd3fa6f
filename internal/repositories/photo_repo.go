package repositories

import "placereview/internal/models"

// PhotoRepository defines the interface for place-level photo data access.
type PhotoRepository interface {
	Create(photo *models.Photo) error
	ListByPlace(placeID uint) ([]models.Photo, error)
}
