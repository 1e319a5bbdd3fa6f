package services

import (
	"errors"
	"fmt"

	"placereview/internal/models"
	"placereview/internal/repositories"

	"gorm.io/gorm"
)

// PlaceResolver implements find-or-create for places keyed on exact
// coordinate equality. Map-picking clients repeat coordinates exactly for
// the same venue, which is what makes the exact match workable; two clicks
// a meter apart still create two places. Callers wanting fuzzier matching
// must opt into ResolveWithin explicitly.
type PlaceResolver struct {
	placeRepo repositories.PlaceRepository
}

// NewPlaceResolver creates a new PlaceResolver.
func NewPlaceResolver(placeRepo repositories.PlaceRepository) *PlaceResolver {
	return &PlaceResolver{
		placeRepo: placeRepo,
	}
}

// Resolve returns the place at exactly (latitude, longitude), creating it
// with the given fields on a miss. On a hit the stored place is returned
// untouched even when name or address differ from the request: the first
// writer wins permanently.
//
// Two concurrent requests for the same new coordinate can both miss the
// lookup and both insert; the schema has no uniqueness constraint on
// coordinates to arbitrate, so duplicates under race are accepted.
func (r *PlaceResolver) Resolve(name, address string, latitude, longitude float64, categoryID *uint) (*models.Place, error) {
	place, err := r.placeRepo.GetByLocation(latitude, longitude)
	if err == nil {
		return place, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to resolve place at (%f, %f): %w", latitude, longitude, err)
	}

	return r.create(name, address, latitude, longitude, categoryID)
}

// ResolveWithin is the opt-in distance-threshold variant: it returns the
// nearest existing place inside the square box of the given radius in
// degrees, creating a new place only when the box is empty.
func (r *PlaceResolver) ResolveWithin(name, address string, latitude, longitude, radius float64, categoryID *uint) (*models.Place, error) {
	place, err := r.placeRepo.GetNearestWithin(latitude, longitude, radius)
	if err == nil {
		return place, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to resolve place near (%f, %f): %w", latitude, longitude, err)
	}

	return r.create(name, address, latitude, longitude, categoryID)
}

func (r *PlaceResolver) create(name, address string, latitude, longitude float64, categoryID *uint) (*models.Place, error) {
	if categoryID == nil {
		defaultID := models.DefaultCategoryID
		categoryID = &defaultID
	}

	place := &models.Place{
		Name:       name,
		Address:    address,
		Latitude:   latitude,
		Longitude:  longitude,
		CategoryID: categoryID,
	}
	if err := r.placeRepo.Create(place); err != nil {
		return nil, fmt.Errorf("failed to create place at (%f, %f): %w", latitude, longitude, err)
	}
	return place, nil
}
