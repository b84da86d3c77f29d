package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/vendor-signup-service/internal/domain"
	apperrors "github.com/spec-kit/vendor-signup-service/pkg/util/errorutil"
)

// SignupRequestHistoryRepository stores audit entries.
type SignupRequestHistoryRepository interface {
	Create(ctx context.Context, history *domain.SignupRequestHistory) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.SignupRequestHistory, error)
}

type signupRequestHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewSignupRequestHistoryRepository builds repository.
func NewSignupRequestHistoryRepository(pool *pgxpool.Pool) SignupRequestHistoryRepository {
	return &signupRequestHistoryRepository{pool: pool}
}

func (r *signupRequestHistoryRepository) Create(ctx context.Context, history *domain.SignupRequestHistory) error {
	const query = `
        INSERT INTO signup_request_history (request_id, action, old_status, new_status, actor_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id::text, created_at`
	if err := r.pool.QueryRow(ctx, query,
		history.RequestID,
		history.Action,
		history.OldStatus,
		history.NewStatus,
		history.ActorID,
	).Scan(&history.ID, &history.CreatedAt); err != nil {
		return apperrors.NewTransportError(err)
	}
	return nil
}

func (r *signupRequestHistoryRepository) ListByRequest(ctx context.Context, requestID string) ([]domain.SignupRequestHistory, error) {
	const query = `
        SELECT id::text, request_id, action, old_status, new_status, actor_id, created_at
        FROM signup_request_history WHERE request_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, apperrors.NewTransportError(err)
	}
	defer rows.Close()

	result := []domain.SignupRequestHistory{}
	for rows.Next() {
		var history domain.SignupRequestHistory
		if err := rows.Scan(
			&history.ID,
			&history.RequestID,
			&history.Action,
			&history.OldStatus,
			&history.NewStatus,
			&history.ActorID,
			&history.CreatedAt,
		); err != nil {
			return nil, apperrors.NewTransportError(err)
		}
		result = append(result, history)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewTransportError(err)
	}
	return result, nil
}

type memorySignupRequestHistoryRepository struct {
	mu      sync.RWMutex
	entries map[string][]domain.SignupRequestHistory
	now     func() time.Time
}

// NewMemorySignupRequestHistoryRepository keeps history in process memory.
func NewMemorySignupRequestHistoryRepository() SignupRequestHistoryRepository {
	return &memorySignupRequestHistoryRepository{
		entries: make(map[string][]domain.SignupRequestHistory),
		now:     time.Now,
	}
}

func (r *memorySignupRequestHistoryRepository) Create(_ context.Context, history *domain.SignupRequestHistory) error {
	if history.ID == "" {
		history.ID = uuid.NewString()
	}
	if history.CreatedAt.IsZero() {
		history.CreatedAt = r.now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[history.RequestID] = append(r.entries[history.RequestID], *history)
	return nil
}

func (r *memorySignupRequestHistoryRepository) ListByRequest(_ context.Context, requestID string) ([]domain.SignupRequestHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.SignupRequestHistory{}, r.entries[requestID]...), nil
}
