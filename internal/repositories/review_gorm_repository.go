package repositories

import (
	"fmt"

	"placereview/internal/models"

	"gorm.io/gorm"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{
		db: db,
	}
}

// Create inserts a new review. The database enforces rating in [1,5]
// with a check constraint.
func (r *GORMReviewRepository) Create(review *models.Review) error {
	if err := r.db.Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// detailQuery joins reviews with the reviewer's username and the place fields.
// review_id is the tiebreaker so ordering stays deterministic when rows share
// a creation timestamp.
func (r *GORMReviewRepository) detailQuery() *gorm.DB {
	return r.db.Table("reviews r").
		Select(`r.review_id, r.user_id, u.username, r.place_id,
			p.name AS place_name, p.address, p.latitude, p.longitude,
			r.rating, r.title, r.comment, r.image_path, r.created_at`).
		Joins("JOIN users u ON r.user_id = u.user_id").
		Joins("JOIN places p ON r.place_id = p.place_id").
		Order("r.created_at DESC, r.review_id DESC")
}

// GetByID retrieves a single denormalized review by its ID.
func (r *GORMReviewRepository) GetByID(id uint) (*models.ReviewDetail, error) {
	var details []models.ReviewDetail
	if err := r.detailQuery().Where("r.review_id = ?", id).Scan(&details).Error; err != nil {
		return nil, fmt.Errorf("failed to get review by ID %d: %w", id, err)
	}
	if len(details) == 0 {
		return nil, fmt.Errorf("review %d not found: %w", id, gorm.ErrRecordNotFound)
	}
	return &details[0], nil
}

// GetAll retrieves every review, newest first.
func (r *GORMReviewRepository) GetAll() ([]models.ReviewDetail, error) {
	var details []models.ReviewDetail
	if err := r.detailQuery().Scan(&details).Error; err != nil {
		return nil, fmt.Errorf("failed to get all reviews: %w", err)
	}
	return details, nil
}

// GetByExactLocation retrieves reviews whose place matches the coordinates exactly.
func (r *GORMReviewRepository) GetByExactLocation(latitude, longitude float64) ([]models.ReviewDetail, error) {
	var details []models.ReviewDetail
	err := r.detailQuery().
		Where("p.latitude = ? AND p.longitude = ?", latitude, longitude).
		Scan(&details).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews at (%f, %f): %w", latitude, longitude, err)
	}
	return details, nil
}

// GetByBoundingBox retrieves reviews whose place falls inside the square box.
// The box is a cheap proxy for "within ~1 km" at the default radius; longitude
// degrees shrink toward the poles, so it is only an approximation.
func (r *GORMReviewRepository) GetByBoundingBox(latitude, longitude, radius float64) ([]models.ReviewDetail, error) {
	var details []models.ReviewDetail
	err := r.detailQuery().
		Where("p.latitude BETWEEN ? AND ?", latitude-radius, latitude+radius).
		Where("p.longitude BETWEEN ? AND ?", longitude-radius, longitude+radius).
		Scan(&details).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews near (%f, %f): %w", latitude, longitude, err)
	}
	return details, nil
}
