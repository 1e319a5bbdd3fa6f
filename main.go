package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"placereview/internal/handlers"
	"placereview/internal/middleware"
	"placereview/internal/models"
	"placereview/internal/repositories"
	"placereview/internal/services"
	"placereview/pkg/uploads"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_URL", "host=localhost user=temp password=temp dbname=placereview port=5432 sslmode=disable")
	viper.SetDefault("JWT_SECRET", "change-me-in-production")
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	databaseURL := viper.GetString("DATABASE_URL")
	jwtSecret := viper.GetString("JWT_SECRET")
	uploadDir := viper.GetString("UPLOAD_DIR")
	corsOrigins := viper.GetString("CORS_ORIGINS")

	// --- Database ---
	db, err := connectDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- File storage for uploaded images ---
	uploadStore, err := uploads.NewStore(uploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize upload store: %v", err)
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	placeRepo := repositories.NewGORMPlaceRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	photoRepo := repositories.NewGORMPhotoRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, jwtSecret)
	placeResolver := services.NewPlaceResolver(placeRepo)
	reviewService := services.NewReviewService(reviewRepo, placeResolver, uploadStore)
	placeService := services.NewPlaceService(placeRepo, photoRepo, uploadStore)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	placeHandler := handlers.NewPlaceHandler(placeService)

	// --- Fiber app ---
	app := fiber.New()

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowCredentials: true,
	}))

	// Uploaded images are served back by relative path.
	app.Static("/uploads", uploadDir)

	// Public routes.
	authHandler.RegisterRoutes(app)
	api := app.Group("/api")
	reviewHandler.RegisterRoutes(api)
	placeHandler.RegisterRoutes(api)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Routes that require a valid session cookie. These go last: the auth
	// middleware guards everything registered after it.
	authRequired := middleware.AuthRequired(authService)
	authHandler.RegisterProtectedRoutes(app.Group("", authRequired))
	protectedAPI := api.Group("", authRequired)
	reviewHandler.RegisterProtectedRoutes(protectedAPI)
	placeHandler.RegisterProtectedRoutes(protectedAPI)

	// --- Start HTTP server with graceful shutdown ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// connectDB opens the Postgres connection with bounded backoff. Retries
// happen only here at startup; per-request operations are never retried.
func connectDB(dsn string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			return db, nil
		}
		wait := time.Duration(attempt) * time.Second
		log.Printf("Database connection attempt %d failed: %v (retrying in %s)", attempt, err, wait)
		time.Sleep(wait)
	}
	return nil, err
}

// migrate creates the schema and seeds the static category list.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Place{},
		&models.Review{},
		&models.Photo{},
	); err != nil {
		return err
	}
	return seedCategories(db)
}

// seedCategories inserts the fixed category list, only when the table is empty.
func seedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, name := range models.SeedCategories {
		if err := db.Create(&models.Category{CategoryName: name}).Error; err != nil {
			return err
		}
	}
	log.Printf("Seeded %d categories", len(models.SeedCategories))
	return nil
}
