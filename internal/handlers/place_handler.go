package handlers

import (
	"errors"
	"log"

	"placereview/internal/services"
	"placereview/pkg/uploads"

	"github.com/gofiber/fiber/v2"
)

// PlaceHandler handles HTTP requests for places and their photos.
type PlaceHandler struct {
	placeService *services.PlaceService
}

// NewPlaceHandler creates a new PlaceHandler.
func NewPlaceHandler(placeService *services.PlaceService) *PlaceHandler {
	return &PlaceHandler{
		placeService: placeService,
	}
}

// RegisterRoutes registers the public place routes.
func (h *PlaceHandler) RegisterRoutes(router fiber.Router) {
	placeRoutes := router.Group("/places")
	placeRoutes.Get("/:id", h.HandleGetPlace)
	placeRoutes.Get("/:id/photos", h.HandleGetPhotos)
}

// RegisterProtectedRoutes registers the routes that require a valid session.
func (h *PlaceHandler) RegisterProtectedRoutes(router fiber.Router) {
	placeRoutes := router.Group("/places")
	placeRoutes.Post("/:id/photos", h.HandleAddPhoto)
}

// HandleGetPlace retrieves a place by id.
func (h *PlaceHandler) HandleGetPlace(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid place id",
		})
	}

	place, err := h.placeService.GetPlace(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Place not found",
			})
		}
		log.Printf("Error getting place %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve place",
		})
	}
	return c.JSON(place)
}

// HandleGetPhotos lists the photos attached to a place.
func (h *PlaceHandler) HandleGetPhotos(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid place id",
		})
	}

	photos, err := h.placeService.ListPhotos(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Place not found",
			})
		}
		log.Printf("Error listing photos for place %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve photos",
		})
	}
	return c.JSON(photos)
}

// HandleAddPhoto attaches an uploaded image to a place.
func (h *PlaceHandler) HandleAddPhoto(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid place id",
		})
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A photo file is required",
		})
	}

	photo, err := h.placeService.AddPhoto(id, file)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Place not found",
			})
		case errors.Is(err, uploads.ErrUnsupportedExtension):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Unsupported image extension",
			})
		default:
			log.Printf("Error adding photo to place %d: %v", id, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not add photo",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(photo)
}
