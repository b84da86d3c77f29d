package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/vendor-signup-service/internal/domain"
	apperrors "github.com/spec-kit/vendor-signup-service/pkg/util/errorutil"
)

const signupRequestResource = "signup request"

// SignupRequestRepository holds signup requests addressable by id.
type SignupRequestRepository interface {
	// List returns every request in insertion order.
	List(ctx context.Context) ([]domain.SignupRequest, error)
	GetByID(ctx context.Context, id string) (*domain.SignupRequest, error)
	// Replace swaps the stored record for id with updated.
	Replace(ctx context.Context, id string, updated *domain.SignupRequest) error
	Create(ctx context.Context, request *domain.SignupRequest) error
	Count(ctx context.Context) (int, error)
}

type signupRequestRepository struct {
	pool *pgxpool.Pool
}

// NewSignupRequestRepository returns a Postgres-backed implementation.
func NewSignupRequestRepository(pool *pgxpool.Pool) SignupRequestRepository {
	return &signupRequestRepository{pool: pool}
}

func (r *signupRequestRepository) List(ctx context.Context) ([]domain.SignupRequest, error) {
	const query = `
        SELECT id, full_name, email, phone_number, address, company_name, reason_for_signup,
               password, requested_date, status
        FROM signup_requests ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewTransportError(err)
	}
	defer rows.Close()

	result := []domain.SignupRequest{}
	for rows.Next() {
		var req domain.SignupRequest
		if err := scanSignupRequest(rows, &req); err != nil {
			return nil, apperrors.NewTransportError(err)
		}
		result = append(result, req)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewTransportError(err)
	}
	return result, nil
}

func (r *signupRequestRepository) GetByID(ctx context.Context, id string) (*domain.SignupRequest, error) {
	const query = `
        SELECT id, full_name, email, phone_number, address, company_name, reason_for_signup,
               password, requested_date, status
        FROM signup_requests WHERE id=$1`
	var req domain.SignupRequest
	if err := scanSignupRequest(r.pool.QueryRow(ctx, query, id), &req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, apperrors.NewTransportError(err)
	}
	return &req, nil
}

func (r *signupRequestRepository) Replace(ctx context.Context, id string, updated *domain.SignupRequest) error {
	const query = `
        UPDATE signup_requests SET full_name=$1, email=$2, phone_number=$3, address=$4,
            company_name=$5, reason_for_signup=$6, password=$7, requested_date=$8, status=$9,
            updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		updated.FullName,
		updated.Email,
		updated.PhoneNumber,
		updated.Address,
		updated.CompanyName,
		updated.ReasonForSignup,
		updated.Password,
		updated.RequestedDate,
		updated.Status,
		id,
	)
	if err != nil {
		return apperrors.NewTransportError(err)
	}
	if cmd.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

func (r *signupRequestRepository) Create(ctx context.Context, request *domain.SignupRequest) error {
	const query = `
        INSERT INTO signup_requests (id, full_name, email, phone_number, address, company_name,
            reason_for_signup, password, requested_date, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.pool.Exec(ctx, query,
		request.ID,
		request.FullName,
		request.Email,
		request.PhoneNumber,
		request.Address,
		request.CompanyName,
		request.ReasonForSignup,
		request.Password,
		request.RequestedDate,
		request.Status,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return duplicate(request.ID)
		}
		return apperrors.NewTransportError(err)
	}
	return nil
}

func (r *signupRequestRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM signup_requests`).Scan(&count); err != nil {
		return 0, apperrors.NewTransportError(err)
	}
	return count, nil
}

func scanSignupRequest(row pgx.Row, req *domain.SignupRequest) error {
	return row.Scan(
		&req.ID,
		&req.FullName,
		&req.Email,
		&req.PhoneNumber,
		&req.Address,
		&req.CompanyName,
		&req.ReasonForSignup,
		&req.Password,
		&req.RequestedDate,
		&req.Status,
	)
}

func notFound(id string) error {
	return apperrors.NewNotFound(signupRequestResource, map[string]any{"id": id})
}

func duplicate(id string) error {
	return apperrors.NewConflict("signup request already exists", map[string]any{"id": id})
}
