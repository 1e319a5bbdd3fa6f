package middleware

import (
	"errors"
	"strconv"

	"placereview/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AccessTokenCookie is the cookie carrying the signed session token.
const AccessTokenCookie = "access_token"

// AuthRequired is a Fiber middleware that reads the session token from the
// cookie and rejects the request when it is missing, expired or invalid.
// Expired and invalid tokens are reported with distinct messages.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(AccessTokenCookie)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authenticated",
			})
		}

		claims, err := authService.VerifyToken(tokenString)
		if err != nil {
			message := "Could not validate credentials"
			if errors.Is(err, services.ErrTokenExpired) {
				message = "Token has expired"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": message,
			})
		}

		// The id claim is issued as a string; turn it back into the
		// numeric user id for handlers.
		idClaim, _ := claims["id"].(string)
		userID, err := strconv.ParseUint(idClaim, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Could not validate credentials",
			})
		}

		c.Locals("user_id", uint(userID))
		c.Locals("email", claims["email"])

		return c.Next()
	}
}
