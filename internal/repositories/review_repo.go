package repositories

import "placereview/internal/models"

// ReviewRepository defines the interface for review data access.
// All list queries return the denormalized ReviewDetail read model,
// ordered newest first. No pagination.
type ReviewRepository interface {
	Create(review *models.Review) error
	GetByID(id uint) (*models.ReviewDetail, error)
	GetAll() ([]models.ReviewDetail, error)
	// GetByExactLocation filters by exact coordinate equality on the place.
	GetByExactLocation(latitude, longitude float64) ([]models.ReviewDetail, error)
	// GetByBoundingBox returns reviews whose place falls within
	// [lat-r, lat+r] x [lon-r, lon+r].
	GetByBoundingBox(latitude, longitude, radius float64) ([]models.ReviewDetail, error)
}
