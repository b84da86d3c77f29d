package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/vendor-signup-service/internal/domain"
	apperrors "github.com/spec-kit/vendor-signup-service/pkg/util/errorutil"
)

// AdminRepository defines lookup access for console operators.
type AdminRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Admin, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Admin, error)
}

type memoryAdminRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.Admin
	byPhone map[string]string
}

// NewMemoryAdminRepository returns a fixed set of operators, typically provisioned from config.
func NewMemoryAdminRepository(admins ...domain.Admin) AdminRepository {
	repo := &memoryAdminRepository{
		byID:    make(map[string]domain.Admin, len(admins)),
		byPhone: make(map[string]string, len(admins)),
	}
	for _, admin := range admins {
		repo.byID[admin.ID] = admin
		repo.byPhone[admin.PhoneNumber] = admin.ID
	}
	return repo
}

func (r *memoryAdminRepository) GetByID(_ context.Context, id string) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	admin, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFound("admin", nil)
	}
	return &admin, nil
}

func (r *memoryAdminRepository) GetByPhone(_ context.Context, phone string) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPhone[phone]
	if !ok {
		return nil, apperrors.NewNotFound("admin", nil)
	}
	admin := r.byID[id]
	return &admin, nil
}
