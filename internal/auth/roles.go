package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vendor-signup-service/internal/domain"
	apperrors "github.com/spec-kit/vendor-signup-service/pkg/util/errorutil"
)

// RequireRole ensures the admin principal has one of the allowed roles.
// With no roles given any authenticated admin passes.
func RequireRole(allowed ...domain.AdminRole) fiber.Handler {
	allowedSet := make(map[domain.AdminRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Admin == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Admin.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
