package services

import (
	"errors"
	"fmt"
	"mime/multipart"

	"placereview/internal/models"
	"placereview/internal/repositories"
	"placereview/pkg/uploads"

	"gorm.io/gorm"
)

// PlaceService exposes place lookups and place-level photo uploads, which
// are independent of per-review images.
type PlaceService struct {
	placeRepo repositories.PlaceRepository
	photoRepo repositories.PhotoRepository
	uploads   *uploads.Store
}

// NewPlaceService creates a new PlaceService.
func NewPlaceService(placeRepo repositories.PlaceRepository, photoRepo repositories.PhotoRepository, uploadStore *uploads.Store) *PlaceService {
	return &PlaceService{
		placeRepo: placeRepo,
		photoRepo: photoRepo,
		uploads:   uploadStore,
	}
}

// GetPlace retrieves a place by id.
func (s *PlaceService) GetPlace(id uint) (*models.Place, error) {
	place, err := s.placeRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return place, nil
}

// ListPhotos returns all photos attached to a place, newest first.
func (s *PlaceService) ListPhotos(placeID uint) ([]models.Photo, error) {
	if _, err := s.GetPlace(placeID); err != nil {
		return nil, err
	}
	return s.photoRepo.ListByPlace(placeID)
}

// AddPhoto stores an uploaded image and attaches it to the place. As with
// reviews, a failed insert after the file write removes the file again.
func (s *PlaceService) AddPhoto(placeID uint, file *multipart.FileHeader) (*models.Photo, error) {
	if _, err := s.GetPlace(placeID); err != nil {
		return nil, err
	}

	path, err := s.uploads.Save(file)
	if err != nil {
		return nil, err
	}

	photo := &models.Photo{
		PlaceID:  placeID,
		PhotoURL: path,
	}
	if err := s.photoRepo.Create(photo); err != nil {
		if cleanupErr := s.uploads.Remove(path); cleanupErr != nil {
			err = fmt.Errorf("%w (cleanup of %s also failed: %v)", err, path, cleanupErr)
		}
		return nil, fmt.Errorf("failed to attach photo to place %d: %w", placeID, err)
	}
	return photo, nil
}
