package repositories

import (
	"fmt"

	"placereview/internal/models"

	"gorm.io/gorm"
)

// GORMPhotoRepository is a GORM implementation of PhotoRepository.
type GORMPhotoRepository struct {
	db *gorm.DB
}

// NewGORMPhotoRepository creates a new instance of GORMPhotoRepository.
func NewGORMPhotoRepository(db *gorm.DB) *GORMPhotoRepository {
	return &GORMPhotoRepository{
		db: db,
	}
}

// Create inserts a new place photo.
func (r *GORMPhotoRepository) Create(photo *models.Photo) error {
	if err := r.db.Create(photo).Error; err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// ListByPlace retrieves all photos for a place, newest first.
func (r *GORMPhotoRepository) ListByPlace(placeID uint) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.
		Where("place_id = ?", placeID).
		Order("uploaded_at DESC, photo_id DESC").
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photos for place %d: %w", placeID, err)
	}
	return photos, nil
}
