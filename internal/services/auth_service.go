package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"placereview/internal/models"
	"placereview/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// maxPasswordBytes matches bcrypt's input limit. Passwords are truncated
	// to this length at both hash time and verify time so the two sides
	// always agree on the bytes being compared.
	maxPasswordBytes = 72

	sessionTTL  = 24 * time.Hour
	rememberTTL = 30 * 24 * time.Hour
)

// AuthService handles password hashing, session token issuance and
// verification, and the register/login/user-management flows.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
	}
}

// HashPassword produces a salted one-way hash. Each call yields a different
// hash for the same input; compare only via CheckPassword.
func (s *AuthService) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(truncatePassword(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether candidate matches the stored hash.
func (s *AuthService) CheckPassword(candidate, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), truncatePassword(candidate)) == nil
}

func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

// TokenTTL returns the session lifetime for the given remember-me choice.
func (s *AuthService) TokenTTL(remember bool) time.Duration {
	if remember {
		return rememberTTL
	}
	return sessionTTL
}

// IssueToken signs a session token carrying the user's id and email.
// The id claim is serialized as a string to avoid numeric-precision
// ambiguity in JSON consumers.
func (s *AuthService) IssueToken(userID uint, email string, remember bool) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    strconv.FormatUint(uint64(userID), 10),
		"email": email,
		"exp":   jwt.TimeFunc().Add(s.TokenTTL(remember)).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// VerifyToken parses and validates a session token. A malformed or badly
// signed token fails with ErrTokenInvalid even when its embedded expiry has
// also passed; only a correctly signed token can fail with ErrTokenExpired.
func (s *AuthService) VerifyToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			structural := jwt.ValidationErrorMalformed |
				jwt.ValidationErrorUnverifiable |
				jwt.ValidationErrorSignatureInvalid
			if ve.Errors&structural != 0 {
				return nil, ErrTokenInvalid
			}
			if ve.Errors&jwt.ValidationErrorExpired != 0 {
				return nil, ErrTokenExpired
			}
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Register creates a new user with a hashed password. Duplicate email or
// username comes back as a field-specific error.
func (s *AuthService) Register(username, email, password string) (*models.User, error) {
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(user); err != nil {
		// Two registrations can race past the lookups above; the unique
		// indexes arbitrate and the loser lands here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if _, lookupErr := s.userRepo.GetByEmail(email); lookupErr == nil {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// Login authenticates by email and password and issues a session token.
// Unknown email and wrong password both map to ErrInvalidCredentials.
func (s *AuthService) Login(email, password string, remember bool) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !s.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.UserID, user.Email, remember)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetUser retrieves a user by id.
func (s *AuthService) GetUser(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateUser applies the non-empty fields to an existing user. A new
// password is re-hashed before storage.
func (s *AuthService) UpdateUser(id uint, username, email, password string) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if username != "" {
		user.Username = username
	}
	if email != "" {
		user.Email = email
	}
	if password != "" {
		hash, err := s.HashPassword(password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return user, nil
}

// DeleteUser removes a user; owned reviews cascade with it.
func (s *AuthService) DeleteUser(id uint) error {
	if err := s.userRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}
