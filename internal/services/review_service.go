package services

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"

	"placereview/internal/models"
	"placereview/internal/repositories"
	"placereview/pkg/uploads"

	"gorm.io/gorm"
)

// DefaultSearchRadius is the bounding-box half-width in degrees used for
// proximity queries, roughly 1 km at moderate latitudes.
const DefaultSearchRadius = 0.009

// CreateReviewInput carries the validated fields of a review submission.
// The review's title doubles as the place name when the coordinate is new.
type CreateReviewInput struct {
	UserID    uint
	Title     string
	Comment   string
	Rating    int
	Latitude  float64
	Longitude float64
	Address   string
	Image     *multipart.FileHeader
}

// ReviewService orchestrates place resolution, image storage and review
// persistence.
type ReviewService struct {
	reviewRepo repositories.ReviewRepository
	resolver   *PlaceResolver
	uploads    *uploads.Store
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviewRepo repositories.ReviewRepository, resolver *PlaceResolver, uploadStore *uploads.Store) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		resolver:   resolver,
		uploads:    uploadStore,
	}
}

// CreateReview resolves the place for the submitted coordinates, stores the
// attached image if any, and inserts the review. There is no transaction
// spanning the file store and the database; if the insert fails after the
// image was written, the file is removed as compensating cleanup.
func (s *ReviewService) CreateReview(input CreateReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrRatingOutOfRange
	}

	place, err := s.resolver.Resolve(input.Title, input.Address, input.Latitude, input.Longitude, nil)
	if err != nil {
		return nil, err
	}

	imagePath := ""
	if input.Image != nil {
		imagePath, err = s.uploads.Save(input.Image)
		if err != nil {
			return nil, err
		}
	}

	review := &models.Review{
		UserID:    input.UserID,
		PlaceID:   place.PlaceID,
		Rating:    input.Rating,
		Title:     input.Title,
		Comment:   input.Comment,
		ImagePath: imagePath,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		if imagePath != "" {
			if cleanupErr := s.uploads.Remove(imagePath); cleanupErr != nil {
				log.Printf("Failed to clean up orphaned upload %s: %v", imagePath, cleanupErr)
			}
		}
		if isCheckViolation(err) {
			return nil, ErrRatingOutOfRange
		}
		return nil, fmt.Errorf("failed to create review for place %d: %w", place.PlaceID, err)
	}
	return review, nil
}

// GetReview retrieves a single denormalized review.
func (s *ReviewService) GetReview(id uint) (*models.ReviewDetail, error) {
	detail, err := s.reviewRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return detail, nil
}

// ListReviews returns every review, newest first.
func (s *ReviewService) ListReviews() ([]models.ReviewDetail, error) {
	return s.reviewRepo.GetAll()
}

// ListReviewsNear returns reviews whose place falls within the default
// bounding box around the given coordinates.
func (s *ReviewService) ListReviewsNear(latitude, longitude float64) ([]models.ReviewDetail, error) {
	return s.reviewRepo.GetByBoundingBox(latitude, longitude, DefaultSearchRadius)
}

// ListReviewsAt returns reviews whose place matches the coordinates exactly.
func (s *ReviewService) ListReviewsAt(latitude, longitude float64) ([]models.ReviewDetail, error) {
	return s.reviewRepo.GetByExactLocation(latitude, longitude)
}

// isCheckViolation detects a check-constraint failure on insert. Postgres
// reports SQLSTATE 23514, SQLite spells it out.
func isCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "23514") || strings.Contains(msg, "check constraint")
}
