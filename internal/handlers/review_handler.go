package handlers

import (
	"errors"
	"log"
	"strconv"

	"placereview/internal/services"
	"placereview/pkg/uploads"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles HTTP requests for reviews.
type ReviewHandler struct {
	reviewService *services.ReviewService
	validate      *validator.Validate
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validate:      validator.New(),
	}
}

// RegisterRoutes registers the public review routes.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router) {
	reviewRoutes := router.Group("/reviews")
	reviewRoutes.Get("/", h.HandleGetReviews)
	reviewRoutes.Get("/:id", h.HandleGetReviewByID)
}

// RegisterProtectedRoutes registers the routes that require a valid session.
func (h *ReviewHandler) RegisterProtectedRoutes(router fiber.Router) {
	reviewRoutes := router.Group("/reviews")
	reviewRoutes.Post("/", h.HandleCreateReview)
}

// CreateReviewRequest represents the multipart fields of a review submission.
type CreateReviewRequest struct {
	Title     string  `validate:"required,max=200"`
	Comment   string  `validate:"required"`
	Rating    int     `validate:"min=1,max=5"`
	Latitude  float64 `validate:"min=-90,max=90"`
	Longitude float64 `validate:"min=-180,max=180"`
	Address   string  `validate:"required"`
}

// HandleGetReviews returns all reviews, or the reviews near a coordinate
// when latitude and longitude query parameters are present. Proximity is a
// bounding-box filter with the default radius.
func (h *ReviewHandler) HandleGetReviews(c *fiber.Ctx) error {
	latParam := c.Query("latitude")
	lonParam := c.Query("longitude")

	if latParam != "" && lonParam != "" {
		latitude, err := strconv.ParseFloat(latParam, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid latitude",
			})
		}
		longitude, err := strconv.ParseFloat(lonParam, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid longitude",
			})
		}

		reviews, err := h.reviewService.ListReviewsNear(latitude, longitude)
		if err != nil {
			log.Printf("Error getting reviews near (%f, %f): %v", latitude, longitude, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not retrieve reviews",
			})
		}
		return c.JSON(reviews)
	}

	reviews, err := h.reviewService.ListReviews()
	if err != nil {
		log.Printf("Error getting all reviews: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve reviews",
		})
	}
	return c.JSON(reviews)
}

// HandleGetReviewByID retrieves a single denormalized review.
func (h *ReviewHandler) HandleGetReviewByID(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid review id",
		})
	}

	review, err := h.reviewService.GetReview(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Review not found",
			})
		}
		log.Printf("Error getting review %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve review",
		})
	}
	return c.JSON(review)
}

// HandleCreateReview accepts a multipart review submission with an optional
// image. The reviewer is taken from the session, never from the form.
func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	req, err := h.parseCreateRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid form field",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationMessages(err),
		})
	}

	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authenticated",
		})
	}

	input := services.CreateReviewInput{
		UserID:    userID,
		Title:     req.Title,
		Comment:   req.Comment,
		Rating:    req.Rating,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
	}

	// The image is optional; a missing file field is not an error.
	if file, err := c.FormFile("image"); err == nil && file != nil {
		input.Image = file
	}

	review, err := h.reviewService.CreateReview(input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRatingOutOfRange), errors.Is(err, uploads.ErrUnsupportedExtension):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid review",
				"error":   err.Error(),
			})
		default:
			log.Printf("Error creating review for user %d: %v", userID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not create review",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Review added successfully",
		"review_id":  review.ReviewID,
		"id":         review.ReviewID,
		"title":      review.Title,
		"address":    req.Address,
		"latitude":   req.Latitude,
		"longitude":  req.Longitude,
		"image_path": review.ImagePath,
		"created_at": review.CreatedAt,
	})
}

// parseCreateRequest pulls the typed fields out of the multipart form.
func (h *ReviewHandler) parseCreateRequest(c *fiber.Ctx) (*CreateReviewRequest, error) {
	rating, err := strconv.Atoi(c.FormValue("rating"))
	if err != nil {
		return nil, errors.New("rating must be an integer")
	}
	latitude, err := strconv.ParseFloat(c.FormValue("latitude"), 64)
	if err != nil {
		return nil, errors.New("latitude must be a number")
	}
	longitude, err := strconv.ParseFloat(c.FormValue("longitude"), 64)
	if err != nil {
		return nil, errors.New("longitude must be a number")
	}

	return &CreateReviewRequest{
		Title:     c.FormValue("title"),
		Comment:   c.FormValue("comment"),
		Rating:    rating,
		Latitude:  latitude,
		Longitude: longitude,
		Address:   c.FormValue("address"),
	}, nil
}
