package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/vendor-signup-service/internal/auth"
	"github.com/spec-kit/vendor-signup-service/internal/config"
	"github.com/spec-kit/vendor-signup-service/internal/domain"
	"github.com/spec-kit/vendor-signup-service/internal/repository"
	apperrors "github.com/spec-kit/vendor-signup-service/pkg/util/errorutil"
)

const bootstrapAdminID = "admin-1"

// AuthService coordinates admin login.
type AuthService struct {
	admins   repository.AdminRepository
	tokenMgr *auth.TokenManager
	hasher   auth.PasswordHasher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, admins repository.AdminRepository) *AuthService {
	return &AuthService{
		admins:   admins,
		tokenMgr: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.App.Name, cfg.Auth.AccessTokenTTLMinutes),
		hasher:   auth.NewPasswordHasher(cfg.Auth.BcryptCost),
	}
}

// BootstrapAdmin builds the console operator described by config. A plaintext
// password is hashed here so only the hash is kept in memory.
func BootstrapAdmin(cfg config.AuthConfig) (domain.Admin, error) {
	hash := strings.TrimSpace(cfg.AdminPasswordHash)
	if hash == "" {
		if cfg.AdminPassword == "" {
			return domain.Admin{}, errors.New("AUTH_ADMIN_PASSWORD or AUTH_ADMIN_PASSWORD_HASH required")
		}
		hashed, err := auth.NewPasswordHasher(cfg.BcryptCost).Hash(cfg.AdminPassword)
		if err != nil {
			return domain.Admin{}, err
		}
		hash = hashed
	}
	return domain.Admin{
		ID:           bootstrapAdminID,
		Name:         cfg.AdminName,
		PhoneNumber:  cfg.AdminPhone,
		PasswordHash: hash,
		Role:         domain.AdminRoleAdmin,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Login authenticates an admin by phone number and returns a signed token.
func (s *AuthService) Login(ctx context.Context, phone, password string) (*domain.Admin, string, time.Time, error) {
	admin, err := s.admins.GetByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized(auth.ErrInvalidCredentials.Error())
		}
		return nil, "", time.Time{}, err
	}
	if !admin.Active {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("admin inactive")
	}
	if err := s.hasher.Compare(admin.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized(err.Error())
	}
	token, exp, err := s.tokenMgr.GenerateToken(admin)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return admin, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
