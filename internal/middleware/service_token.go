package middleware

import (
	"crypto/subtle"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/dto"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ServiceTokenRequired guards internal endpoints called by the content services. With
// no SERVICE_TOKEN configured every request is refused.
func ServiceTokenRequired(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !HasServiceToken(c, cfg) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Code: services.CodeUnauthorized, Message: "Invalid service token",
			})
		}
		return c.Next()
	}
}

// HasServiceToken reports whether the request carries the configured service token.
func HasServiceToken(c *fiber.Ctx, cfg *config.Config) bool {
	expected := []byte(cfg.ServiceToken)
	got := []byte(c.Get("X-Service-Token"))
	return len(expected) > 0 && subtle.ConstantTimeCompare(got, expected) == 1
}
