package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vendor-signup-service/internal/api/dto"
	"github.com/spec-kit/vendor-signup-service/internal/auth"
	"github.com/spec-kit/vendor-signup-service/internal/domain"
	"github.com/spec-kit/vendor-signup-service/internal/service"
	apperrors "github.com/spec-kit/vendor-signup-service/pkg/util/errorutil"
)

// AuthHandler exposes admin login.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	admin, token, exp, err := h.authService.Login(c.UserContext(), req.PhoneNumber, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "login successful",
		"data": fiber.Map{
			"admin": adminResponse(admin),
			"auth":  dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": adminResponse(principal.Admin)})
}

func adminResponse(admin *domain.Admin) dto.AdminResponse {
	return dto.AdminResponse{
		ID:          admin.ID,
		Name:        admin.Name,
		PhoneNumber: admin.PhoneNumber,
		Role:        string(admin.Role),
	}
}
