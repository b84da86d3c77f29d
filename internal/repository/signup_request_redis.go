package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/vendor-signup-service/internal/domain"
	apperrors "github.com/spec-kit/vendor-signup-service/pkg/util/errorutil"
)

// signupRequestDocument is the JSON shape stored per request in Redis.
type signupRequestDocument struct {
	ID              string              `json:"id"`
	FullName        string              `json:"full_name"`
	Email           string              `json:"email"`
	PhoneNumber     string              `json:"phone_number,omitempty"`
	Address         string              `json:"address"`
	CompanyName     string              `json:"company_name,omitempty"`
	ReasonForSignup string              `json:"reason_for_signup,omitempty"`
	Password        string              `json:"password,omitempty"`
	RequestedDate   time.Time           `json:"requested_date"`
	Status          domain.SignupStatus `json:"status"`
}

type redisSignupRequestRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisSignupRequestRepository stores each request as a JSON string plus an
// insertion-ordered id list.
func NewRedisSignupRequestRepository(client *redis.Client, keyPrefix string, logger *zap.Logger) SignupRequestRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisSignupRequestRepository{client: client, prefix: keyPrefix, logger: logger}
}

func (r *redisSignupRequestRepository) recordKey(id string) string {
	return r.prefix + ":signup_request:" + id
}

func (r *redisSignupRequestRepository) indexKey() string {
	return r.prefix + ":signup_requests:index"
}

func (r *redisSignupRequestRepository) List(ctx context.Context) ([]domain.SignupRequest, error) {
	ids, err := r.client.LRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, apperrors.NewTransportError(err)
	}
	result := make([]domain.SignupRequest, 0, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.recordKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, apperrors.NewTransportError(err)
	}
	for i, val := range values {
		raw, ok := val.(string)
		if !ok {
			r.logger.Warn("signup request indexed but missing", zap.String("id", ids[i]), zap.String("index", r.indexKey()))
			continue
		}
		req, err := decodeSignupRequest([]byte(raw))
		if err != nil {
			return nil, apperrors.NewTransportError(err)
		}
		result = append(result, *req)
	}
	return result, nil
}

func (r *redisSignupRequestRepository) GetByID(ctx context.Context, id string) (*domain.SignupRequest, error) {
	raw, err := r.client.Get(ctx, r.recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound(id)
		}
		return nil, apperrors.NewTransportError(err)
	}
	req, err := decodeSignupRequest(raw)
	if err != nil {
		return nil, apperrors.NewTransportError(err)
	}
	return req, nil
}

func (r *redisSignupRequestRepository) Replace(ctx context.Context, id string, updated *domain.SignupRequest) error {
	if updated == nil {
		return apperrors.NewValidationError("replacement record required", map[string]any{"id": id})
	}
	record := *updated
	record.ID = id
	payload, err := encodeSignupRequest(&record)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	// XX only overwrites an existing key, so an absent id is reported rather than created.
	ok, err := r.client.SetXX(ctx, r.recordKey(id), payload, 0).Result()
	if err != nil {
		return apperrors.NewTransportError(err)
	}
	if !ok {
		return notFound(id)
	}
	return nil
}

func (r *redisSignupRequestRepository) Create(ctx context.Context, request *domain.SignupRequest) error {
	if request == nil || request.ID == "" {
		return apperrors.NewValidationError("id required", nil)
	}
	payload, err := encodeSignupRequest(request)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	created, err := r.client.SetNX(ctx, r.recordKey(request.ID), payload, 0).Result()
	if err != nil {
		return apperrors.NewTransportError(err)
	}
	if !created {
		return duplicate(request.ID)
	}
	if err := r.client.RPush(ctx, r.indexKey(), request.ID).Err(); err != nil {
		// undo the record so a retry does not hit CONFLICT on an unindexed key
		if delErr := r.client.Del(ctx, r.recordKey(request.ID)).Err(); delErr != nil {
			r.logger.Error("signup request left unindexed",
				zap.String("id", request.ID),
				zap.NamedError("index_error", err),
				zap.NamedError("cleanup_error", delErr),
			)
		}
		return apperrors.NewTransportError(err)
	}
	return nil
}

func (r *redisSignupRequestRepository) Count(ctx context.Context) (int, error) {
	n, err := r.client.LLen(ctx, r.indexKey()).Result()
	if err != nil {
		return 0, apperrors.NewTransportError(err)
	}
	return int(n), nil
}

func encodeSignupRequest(req *domain.SignupRequest) ([]byte, error) {
	return json.Marshal(signupRequestDocument{
		ID:              req.ID,
		FullName:        req.FullName,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Address:         req.Address,
		CompanyName:     req.CompanyName,
		ReasonForSignup: req.ReasonForSignup,
		Password:        req.Password,
		RequestedDate:   req.RequestedDate,
		Status:          req.Status,
	})
}

func decodeSignupRequest(raw []byte) (*domain.SignupRequest, error) {
	var doc signupRequestDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &domain.SignupRequest{
		ID:              doc.ID,
		FullName:        doc.FullName,
		Email:           doc.Email,
		PhoneNumber:     doc.PhoneNumber,
		Address:         doc.Address,
		CompanyName:     doc.CompanyName,
		ReasonForSignup: doc.ReasonForSignup,
		Password:        doc.Password,
		RequestedDate:   doc.RequestedDate,
		Status:          doc.Status,
	}, nil
}
