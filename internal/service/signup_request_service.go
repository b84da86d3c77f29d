package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/vendor-signup-service/internal/domain"
	"github.com/spec-kit/vendor-signup-service/internal/events"
	"github.com/spec-kit/vendor-signup-service/internal/observability"
	"github.com/spec-kit/vendor-signup-service/internal/repository"
	"github.com/spec-kit/vendor-signup-service/internal/workflow"
	apperrors "github.com/spec-kit/vendor-signup-service/pkg/util/errorutil"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// SignupRequestService is the single entry point for the signup approval workflow.
// It takes no per-request lock: two concurrent actions on the same id may both
// read the old status, and callers are expected to keep one action in flight per id.
type SignupRequestService struct {
	requests   repository.SignupRequestRepository
	history    repository.SignupRequestHistoryRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	validate   *validator.Validate
	now        func() time.Time
}

// SignupRequestDependencies bundles collaborators for the signup request service.
type SignupRequestDependencies struct {
	RequestRepo repository.SignupRequestRepository
	HistoryRepo repository.SignupRequestHistoryRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Clock       func() time.Time
}

// SignupRequestFilter narrows and paginates the admin listing.
type SignupRequestFilter struct {
	Statuses []domain.SignupStatus
	Search   string
	Page     int
	PageSize int
}

// SignupRequestPage is one page of the admin listing.
type SignupRequestPage struct {
	Items      []domain.SignupRequest
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// SignupSubmission is an applicant's signup form.
type SignupSubmission struct {
	FullName        string `validate:"required,max=120"`
	Email           string `validate:"required,email"`
	PhoneNumber     string `validate:"omitempty,min=7,max=20"`
	Address         string `validate:"required,max=300"`
	CompanyName     string `validate:"max=160"`
	ReasonForSignup string `validate:"max=1000"`
	Password        string `validate:"required,min=8,max=72"`
}

// NewSignupRequestService constructs the service.
func NewSignupRequestService(deps SignupRequestDependencies) *SignupRequestService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &SignupRequestService{
		requests:   deps.RequestRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		validate:   validator.New(),
		now:        clock,
	}
}

// ListRequests returns every signup request in store order.
func (s *SignupRequestService) ListRequests(ctx context.Context) ([]domain.SignupRequest, error) {
	list, err := s.requests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list signup requests: %w", err)
	}
	return list, nil
}

// ListRequestsPage filters by status and search term, orders newest first and slices one page.
func (s *SignupRequestService) ListRequestsPage(ctx context.Context, filter SignupRequestFilter) (*SignupRequestPage, error) {
	all, err := s.ListRequests(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.SignupRequest, 0, len(all))
	for _, req := range all {
		if matchesFilter(req, filter) {
			matched = append(matched, req)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].RequestedDate.After(matched[j].RequestedDate)
	})

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	totalPages := (len(matched) + pageSize - 1) / pageSize

	// compare page numbers before multiplying so a huge page cannot overflow start
	items := matched[:0:0]
	if page <= totalPages {
		start := (page - 1) * pageSize
		end := start + pageSize
		if end > len(matched) {
			end = len(matched)
		}
		items = matched[start:end]
	}

	return &SignupRequestPage{
		Items:      items,
		Total:      len(matched),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// GetRequest fetches a single signup request.
func (s *SignupRequestService) GetRequest(ctx context.Context, id string) (*domain.SignupRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get signup request %s: %w", id, err)
	}
	return req, nil
}

// ListHistory returns the transitions recorded for a request, oldest first.
func (s *SignupRequestService) ListHistory(ctx context.Context, id string) ([]domain.SignupRequestHistory, error) {
	if _, err := s.GetRequest(ctx, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.SignupRequestHistory{}, nil
	}
	entries, err := s.history.ListByRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list history %s: %w", id, err)
	}
	return entries, nil
}

// Approve moves a pending request to approved.
func (s *SignupRequestService) Approve(ctx context.Context, actorID, id string) (*domain.SignupRequest, error) {
	return s.apply(ctx, actorID, id, domain.SignupActionApprove)
}

// Reject moves a pending request to rejected.
func (s *SignupRequestService) Reject(ctx context.Context, actorID, id string) (*domain.SignupRequest, error) {
	return s.apply(ctx, actorID, id, domain.SignupActionReject)
}

// SendToVendor marks an approved request as handed to vendor onboarding. The hand-off
// itself happens in subscribers of EventSignupRequestSentToVendor.
func (s *SignupRequestService) SendToVendor(ctx context.Context, actorID, id string) (*domain.SignupRequest, error) {
	return s.apply(ctx, actorID, id, domain.SignupActionSendToVendor)
}

// SubmitRequest records a new applicant signup in PENDING_APPROVAL.
func (s *SignupRequestService) SubmitRequest(ctx context.Context, input SignupSubmission) (*domain.SignupRequest, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	input.Address = strings.TrimSpace(input.Address)
	input.CompanyName = strings.TrimSpace(input.CompanyName)
	input.ReasonForSignup = strings.TrimSpace(input.ReasonForSignup)

	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.NewValidationError("invalid signup submission", validationDetails(err))
	}

	req := &domain.SignupRequest{
		ID:              uuid.NewString(),
		FullName:        input.FullName,
		Email:           input.Email,
		PhoneNumber:     input.PhoneNumber,
		Address:         input.Address,
		CompanyName:     input.CompanyName,
		ReasonForSignup: input.ReasonForSignup,
		Password:        input.Password,
		RequestedDate:   s.now().UTC(),
		Status:          domain.SignupStatusPendingApproval,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("submit signup request: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventSignupRequestSubmitted,
		RequestID: req.ID,
		Payload: events.SubmittedPayload{
			FullName: req.FullName,
			Email:    req.Email,
		},
	})
	s.logger.Info("signup request submitted", zap.String("request_id", req.ID))
	return req, nil
}

// apply runs one workflow action: lookup, transition, persist. Nothing is written
// unless the transition is legal, and only Status differs between input and output.
func (s *SignupRequestService) apply(ctx context.Context, actorID, id string, action domain.SignupAction) (*domain.SignupRequest, error) {
	current, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(action, id, err)
	}

	next, err := workflow.Transition(current.Status, action)
	if err != nil {
		return nil, s.fail(action, id, err)
	}

	updated := current.WithStatus(next)
	if err := s.requests.Replace(ctx, id, &updated); err != nil {
		return nil, s.fail(action, id, err)
	}

	s.metrics.RecordTransition(string(action), "ok")
	s.logger.Info("signup request transitioned",
		zap.String("request_id", id),
		zap.String("action", string(action)),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next)),
		zap.String("actor_id", actorID),
	)

	s.recordHistory(ctx, actorID, action, current.Status, &updated)
	s.publishEvent(ctx, events.Event{
		Type:      events.EventForAction(action),
		RequestID: id,
		Actor:     adminActor(actorID),
		Payload:   transitionPayload(action, current.Status, &updated),
	})
	return &updated, nil
}

func (s *SignupRequestService) fail(action domain.SignupAction, id string, err error) error {
	code := apperrors.CodeOf(err)
	s.metrics.RecordTransition(string(action), code)
	if code == apperrors.CodeTransport || code == apperrors.CodeInternal {
		s.logger.Error("signup request action failed",
			zap.String("request_id", id),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
	return fmt.Errorf("%s %s: %w", action, id, err)
}

// recordHistory and publishEvent run after the status is persisted, so their
// failures are logged rather than returned.
func (s *SignupRequestService) recordHistory(ctx context.Context, actorID string, action domain.SignupAction, oldStatus domain.SignupStatus, updated *domain.SignupRequest) {
	if s.history == nil {
		return
	}
	entry := &domain.SignupRequestHistory{
		RequestID: updated.ID,
		Action:    action,
		OldStatus: oldStatus,
		NewStatus: updated.Status,
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record signup history", zap.String("request_id", updated.ID), zap.Error(err))
	}
}

func (s *SignupRequestService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("request_id", event.RequestID),
			zap.Error(err),
		)
	}
}

func transitionPayload(action domain.SignupAction, oldStatus domain.SignupStatus, req *domain.SignupRequest) any {
	if action != domain.SignupActionSendToVendor {
		return events.StatusChangedPayload{OldStatus: oldStatus, NewStatus: req.Status}
	}
	return events.VendorHandoffPayload{
		OldStatus:       oldStatus,
		NewStatus:       req.Status,
		FullName:        req.FullName,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Address:         req.Address,
		CompanyName:     req.CompanyName,
		ReasonForSignup: req.ReasonForSignup,
		RequestedDate:   req.RequestedDate,
	}
}

func adminActor(adminID string) events.Actor {
	actor := events.Actor{Type: domain.SubjectTypeAdmin}
	if adminID != "" {
		actor.AdminID = &adminID
	}
	return actor
}

func matchesFilter(req domain.SignupRequest, filter SignupRequestFilter) bool {
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if req.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	if term == "" {
		return true
	}
	for _, field := range []string{req.FullName, req.Email, req.CompanyName, req.PhoneNumber} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func validationDetails(err error) map[string]any {
	details := map[string]any{}
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	return details
}
