package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/chat-ticketing/internal/domain"
)

// RequireProfile ensures the principal has one of the allowed profiles.
func RequireProfile(allowed ...domain.Profile) fiber.Handler {
	allowedSet := make(map[domain.Profile]struct{}, len(allowed))
	for _, profile := range allowed {
		allowedSet[profile] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.User.Profile]; !exists {
			return fiber.NewError(http.StatusForbidden, "insufficient profile")
		}
		return c.Next()
	}
}

// RequireElevated restricts a route to admin and superadmin agents.
func RequireElevated() fiber.Handler {
	return RequireProfile(domain.ProfileAdmin, domain.ProfileSuperAdmin)
}
