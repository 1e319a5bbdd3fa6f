package services

import "errors"

// Sentinel errors separating client faults from storage failures.
// Handlers map these to HTTP status codes with errors.Is; anything
// else is treated as a server error.
var (
	// ErrNotFound covers missing users, reviews and places.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidCredentials is returned for login failures regardless of
	// whether the email exists or the password is wrong. Collapsing the two
	// cases avoids revealing which emails are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired means the token was well formed and correctly signed
	// but its expiry has passed.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid means the token's structure or signature did not
	// verify. A tampered token is always invalid, never expired.
	ErrTokenInvalid = errors.New("could not validate credentials")

	// ErrNotAuthenticated means no session cookie accompanied the request.
	ErrNotAuthenticated = errors.New("not authenticated")

	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")

	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
)
