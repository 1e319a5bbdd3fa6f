package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"placereview/internal/handlers"
	"placereview/internal/middleware"
	"placereview/internal/models"
	"placereview/internal/repositories"
	"placereview/internal/services"
	"placereview/pkg/uploads"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds the whole application against a per-test in-memory SQLite
// database, mirroring the wiring in main.go.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Place{},
		&models.Review{},
		&models.Photo{},
	))
	for _, name := range models.SeedCategories {
		require.NoError(t, db.Create(&models.Category{CategoryName: name}).Error)
	}

	uploadStore, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)

	userRepo := repositories.NewGORMUserRepository(db)
	placeRepo := repositories.NewGORMPlaceRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	photoRepo := repositories.NewGORMPhotoRepository(db)

	authService := services.NewAuthService(userRepo, jwtSecret)
	placeResolver := services.NewPlaceResolver(placeRepo)
	reviewService := services.NewReviewService(reviewRepo, placeResolver, uploadStore)
	placeService := services.NewPlaceService(placeRepo, photoRepo, uploadStore)

	authHandler := handlers.NewAuthHandler(authService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	placeHandler := handlers.NewPlaceHandler(placeService)

	app := fiber.New()

	authHandler.RegisterRoutes(app)
	api := app.Group("/api")
	reviewHandler.RegisterRoutes(api)
	placeHandler.RegisterRoutes(api)

	authRequired := middleware.AuthRequired(authService)
	authHandler.RegisterProtectedRoutes(app.Group("", authRequired))
	protectedAPI := api.Group("", authRequired)
	reviewHandler.RegisterProtectedRoutes(protectedAPI)
	placeHandler.RegisterProtectedRoutes(protectedAPI)

	return app
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	encoded, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func registerUser(t *testing.T, app *fiber.App, username, email, password string) *http.Response {
	t.Helper()
	req := jsonRequest(http.MethodPost, "/users/create", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// loginUser logs in and returns the session cookie.
func loginUser(t *testing.T, app *fiber.App, email, password string) *http.Cookie {
	t.Helper()
	req := jsonRequest(http.MethodPost, "/users/login", map[string]interface{}{
		"email":       email,
		"password":    password,
		"remember_me": false,
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.AccessTokenCookie {
			return cookie
		}
	}
	t.Fatal("login response did not set the access_token cookie")
	return nil
}

func TestRegister(t *testing.T) {
	app := setupApp(t)

	resp := registerUser(t, app, "alice", "alice@x.com", "password123")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	// The password hash never leaves the server.
	assert.NotContains(t, string(raw), "password_hash")
	assert.NotContains(t, string(raw), "$2a$")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice@x.com", user["email"])

	// Same email again is a conflict, even with a fresh username.
	resp = registerUser(t, app, "alice2", "alice@x.com", "password123")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Same username with a fresh email is a conflict too.
	resp = registerUser(t, app, "alice", "alice2@x.com", "password123")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Short passwords are rejected before hashing.
	resp = registerUser(t, app, "bob", "bob@x.com", "short")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "alice", "alice@x.com", "password123")

	cookie := loginUser(t, app, "alice@x.com", "password123")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int((24 * 60 * 60)), cookie.MaxAge)

	// The cookie value is a verifiable token carrying the id and email claims.
	token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
		return []byte("test_jwt_secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "1", claims["id"])
	assert.Equal(t, "alice@x.com", claims["email"])
}

func TestLoginFailures(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "alice", "alice@x.com", "password123")

	// Wrong password and unknown email produce the same response, and
	// neither sets a cookie.
	for _, attempt := range []map[string]interface{}{
		{"email": "alice@x.com", "password": "wrongpassword"},
		{"email": "nobody@x.com", "password": "password123"},
	} {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/users/login", attempt), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Empty(t, resp.Cookies())
		body := decodeBody(t, resp)
		assert.Equal(t, "Invalid credentials", body["message"])
	}
}

func TestRememberMeExtendsCookie(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "alice", "alice@x.com", "password123")

	req := jsonRequest(http.MethodPost, "/users/login", map[string]interface{}{
		"email":       "alice@x.com",
		"password":    "password123",
		"remember_me": true,
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.AccessTokenCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, int((30 * 24 * 60 * 60)), cookie.MaxAge)
}

func TestLogout(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "alice", "alice@x.com", "password123")

	// Logout without a session is rejected.
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/users/logout", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	cookie := loginUser(t, app, "alice@x.com", "password123")
	req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The response expires the cookie.
	for _, c := range resp.Cookies() {
		if c.Name == middleware.AccessTokenCookie {
			assert.Empty(t, c.Value)
		}
	}
}

func TestProtectedRoutesRequireCookie(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "alice", "alice@x.com", "password123")

	// No cookie.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/me", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Garbage cookie.
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: "not.a.token"})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Valid session.
	cookie := loginUser(t, app, "alice@x.com", "password123")
	req = httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, float64(1), user["id"])
	assert.Equal(t, "alice@x.com", user["email"])
}

// postReview submits a multipart review as the session owner.
func postReview(t *testing.T, app *fiber.App, cookie *http.Cookie, title string, rating int, latitude, longitude float64) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"title":     title,
		"comment":   "Worth a visit",
		"rating":    strconv.Itoa(rating),
		"latitude":  strconv.FormatFloat(latitude, 'f', -1, 64),
		"longitude": strconv.FormatFloat(longitude, 'f', -1, 64),
		"address":   "1 Main St",
	}
	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reviews/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestCreateAndQueryReviews(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "alice", "alice@x.com", "password123")
	cookie := loginUser(t, app, "alice@x.com", "password123")

	// Creating a review requires a session.
	resp := postReview(t, app, nil, "Blue Cafe", 4, 13.75, 100.50)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postReview(t, app, cookie, "Blue Cafe", 4, 13.75, 100.50)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	reviewID := int(created["review_id"].(float64))

	// Out-of-range ratings are client errors.
	resp = postReview(t, app, cookie, "Blue Cafe", 6, 13.75, 100.50)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = postReview(t, app, cookie, "Blue Cafe", 0, 13.75, 100.50)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// A second review far away, for the proximity check below.
	resp = postReview(t, app, cookie, "North Cafe", 3, 13.77, 100.50)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// All reviews, newest first.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/reviews/", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &all))
	require.Len(t, all, 2)
	assert.Equal(t, "North Cafe", all[0]["place_name"])
	assert.Equal(t, "alice", all[0]["user_name"])

	// Proximity query only returns the nearby review.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/reviews/?latitude=13.75&longitude=100.50", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var nearby []map[string]interface{}
	raw, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &nearby))
	require.Len(t, nearby, 1)
	assert.Equal(t, "Blue Cafe", nearby[0]["place_name"])

	// Nothing within the box of a distant coordinate.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/reviews/?latitude=14.50&longitude=101.00", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var distant []map[string]interface{}
	raw, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &distant))
	assert.Empty(t, distant)

	// Fetch by id, and a miss.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/reviews/%d", reviewID), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/reviews/99999", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPlacePhotos(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "alice", "alice@x.com", "password123")
	cookie := loginUser(t, app, "alice@x.com", "password123")

	resp := postReview(t, app, cookie, "Blue Cafe", 4, 13.75, 100.50)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	reviewID := int(created["review_id"].(float64))

	// Find the resolved place through the review detail.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/reviews/%d", reviewID), nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decodeBody(t, resp)
	placeID := int(detail["place_id"].(float64))

	// No photos yet.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/places/%d/photos", placeID), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Attach a photo.
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("photo", "front.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/places/%d/photos", placeID), &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(cookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Unknown place is a 404.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/places/99999/photos", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
