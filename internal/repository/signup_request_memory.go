package repository

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/vendor-signup-service/internal/domain"
	apperrors "github.com/spec-kit/vendor-signup-service/pkg/util/errorutil"
)

// memorySignupRequestRepository keeps requests in process memory. Records are
// copied on the way in and out so callers never share storage with the store.
type memorySignupRequestRepository struct {
	mu      sync.RWMutex
	order   []string
	records map[string]domain.SignupRequest
	latency time.Duration
}

// MemoryOption tunes the in-memory store.
type MemoryOption func(*memorySignupRequestRepository)

// WithLatency delays every call by d to mimic a remote round-trip.
func WithLatency(d time.Duration) MemoryOption {
	return func(r *memorySignupRequestRepository) {
		r.latency = d
	}
}

// NewMemorySignupRequestRepository returns an in-process store seeded with the given records.
func NewMemorySignupRequestRepository(seed []domain.SignupRequest, opts ...MemoryOption) (SignupRequestRepository, error) {
	repo := &memorySignupRequestRepository{
		records: make(map[string]domain.SignupRequest, len(seed)),
	}
	for _, opt := range opts {
		opt(repo)
	}
	for i := range seed {
		if err := repo.insert(seed[i]); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (r *memorySignupRequestRepository) List(ctx context.Context) ([]domain.SignupRequest, error) {
	if err := r.roundTrip(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.SignupRequest, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.records[id])
	}
	return result, nil
}

func (r *memorySignupRequestRepository) GetByID(ctx context.Context, id string) (*domain.SignupRequest, error) {
	if err := r.roundTrip(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.records[id]
	if !ok {
		return nil, notFound(id)
	}
	return &req, nil
}

func (r *memorySignupRequestRepository) Replace(ctx context.Context, id string, updated *domain.SignupRequest) error {
	if updated == nil {
		return apperrors.NewValidationError("replacement record required", map[string]any{"id": id})
	}
	if err := r.roundTrip(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return notFound(id)
	}
	record := *updated
	record.ID = id
	r.records[id] = record
	return nil
}

func (r *memorySignupRequestRepository) Create(ctx context.Context, request *domain.SignupRequest) error {
	if request == nil {
		return apperrors.NewValidationError("record required", nil)
	}
	if err := r.roundTrip(ctx); err != nil {
		return err
	}
	return r.insert(*request)
}

func (r *memorySignupRequestRepository) Count(ctx context.Context) (int, error) {
	if err := r.roundTrip(ctx); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order), nil
}

func (r *memorySignupRequestRepository) insert(request domain.SignupRequest) error {
	if request.ID == "" {
		return apperrors.NewValidationError("id required", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[request.ID]; exists {
		return duplicate(request.ID)
	}
	r.records[request.ID] = request
	r.order = append(r.order, request.ID)
	return nil
}

// roundTrip waits out the simulated latency, surfacing cancellation as a transport failure.
func (r *memorySignupRequestRepository) roundTrip(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewTransportError(err)
	}
	if r.latency <= 0 {
		return nil
	}
	timer := time.NewTimer(r.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return apperrors.NewTransportError(ctx.Err())
	case <-timer.C:
		return nil
	}
}
