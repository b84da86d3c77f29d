package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/vendor-signup-service/internal/domain"
	"github.com/spec-kit/vendor-signup-service/internal/events"
	"github.com/spec-kit/vendor-signup-service/internal/observability"
	"github.com/spec-kit/vendor-signup-service/internal/repository"
	apperrors "github.com/spec-kit/vendor-signup-service/pkg/util/errorutil"
)

var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

type fixture struct {
	svc        *SignupRequestService
	repo       repository.SignupRequestRepository
	history    repository.SignupRequestHistoryRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	published  []events.Event
}

func newFixture(t *testing.T, seed ...domain.SignupRequest) *fixture {
	t.Helper()
	repo, err := repository.NewMemorySignupRequestRepository(seed)
	require.NoError(t, err)
	return newFixtureWithRepo(t, repo)
}

func newFixtureWithRepo(t *testing.T, repo repository.SignupRequestRepository) *fixture {
	t.Helper()
	f := &fixture{
		repo:       repo,
		history:    repository.NewMemorySignupRequestHistoryRepository(),
		dispatcher: events.NewInMemoryDispatcher(),
		metrics:    observability.NewMetrics(prometheus.NewRegistry()),
	}
	for _, et := range []events.EventType{
		events.EventSignupRequestSubmitted,
		events.EventSignupRequestApproved,
		events.EventSignupRequestRejected,
		events.EventSignupRequestSentToVendor,
	} {
		f.dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.published = append(f.published, e)
			return nil
		})
	}
	f.svc = NewSignupRequestService(SignupRequestDependencies{
		RequestRepo: repo,
		HistoryRepo: f.history,
		Dispatcher:  f.dispatcher,
		Metrics:     f.metrics,
		Clock:       func() time.Time { return fixedNow },
	})
	return f
}

func pending(id string) domain.SignupRequest {
	return domain.SignupRequest{
		ID:              id,
		FullName:        "Test User",
		Email:           id + "@example.com",
		PhoneNumber:     "9876543210",
		Address:         "12, R. S. Puram, Coimbatore",
		CompanyName:     "Covai Fresh",
		ReasonForSignup: "Selling greens",
		Password:        "Pass@4321",
		RequestedDate:   fixedNow.Add(-48 * time.Hour),
		Status:          domain.SignupStatusPendingApproval,
	}
}

func withStatus(req domain.SignupRequest, status domain.SignupStatus) domain.SignupRequest {
	req.Status = status
	return req
}

func storedStatus(t *testing.T, repo repository.SignupRequestRepository, id string) domain.SignupStatus {
	t.Helper()
	req, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return req.Status
}

func TestApproveThenSendToVendorThenApproveFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, pending("r1"))
	before := pending("r1")

	approved, err := f.svc.Approve(ctx, "admin-1", "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.SignupStatusApproved, approved.Status)
	assert.Equal(t, withStatus(before, domain.SignupStatusApproved), *approved)

	sent, err := f.svc.SendToVendor(ctx, "admin-1", "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.SignupStatusSentToVendor, sent.Status)
	assert.Equal(t, withStatus(before, domain.SignupStatusSentToVendor), *sent)

	_, err = f.svc.Approve(ctx, "admin-1", "r1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
	assert.Equal(t, domain.SignupStatusSentToVendor, storedStatus(t, f.repo, "r1"))
}

func TestRejectThenSendToVendorFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.SignupRequest{ID: "r2", Status: domain.SignupStatusPendingApproval})

	rejected, err := f.svc.Reject(ctx, "admin-1", "r2")
	require.NoError(t, err)
	assert.Equal(t, domain.SignupStatusRejected, rejected.Status)

	_, err = f.svc.SendToVendor(ctx, "admin-1", "r2")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
	assert.Equal(t, domain.SignupStatusRejected, storedStatus(t, f.repo, "r2"))
}

func TestRejectTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, pending("r1"))

	first, err := f.svc.Reject(ctx, "admin-1", "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.SignupStatusRejected, first.Status)

	_, err = f.svc.Reject(ctx, "admin-1", "r1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
	assert.Equal(t, domain.SignupStatusRejected, storedStatus(t, f.repo, "r1"))
}

func TestActionsOnMissingIDReturnNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, pending("r1"))

	actions := map[string]func(context.Context, string, string) (*domain.SignupRequest, error){
		"approve":        f.svc.Approve,
		"reject":         f.svc.Reject,
		"send_to_vendor": f.svc.SendToVendor,
	}
	for name, action := range actions {
		_, err := action(ctx, "admin-1", "missing-id")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound), name)
		assert.ErrorContains(t, err, "missing-id", name)

		count, err := f.repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count, name)
	}
	assert.Empty(t, f.published)
}

func TestTerminalStatesRejectEveryAction(t *testing.T) {
	ctx := context.Background()
	for _, status := range []domain.SignupStatus{domain.SignupStatusRejected, domain.SignupStatusSentToVendor} {
		f := newFixture(t, withStatus(pending("r1"), status))
		for _, action := range []func(context.Context, string, string) (*domain.SignupRequest, error){
			f.svc.Approve, f.svc.Reject, f.svc.SendToVendor,
		} {
			_, err := action(ctx, "admin-1", "r1")
			assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition), status)
			assert.Equal(t, status, storedStatus(t, f.repo, "r1"))
		}
	}
}

func TestApprovedCannotBeRejectedOrReapproved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, withStatus(pending("r1"), domain.SignupStatusApproved))

	_, err := f.svc.Reject(ctx, "admin-1", "r1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
	_, err = f.svc.Approve(ctx, "admin-1", "r1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
	assert.Equal(t, domain.SignupStatusApproved, storedStatus(t, f.repo, "r1"))
}

func TestPendingCannotBeSentToVendor(t *testing.T) {
	f := newFixture(t, pending("r1"))

	_, err := f.svc.SendToVendor(context.Background(), "admin-1", "r1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
	assert.Equal(t, domain.SignupStatusPendingApproval, storedStatus(t, f.repo, "r1"))
}

func TestActionTouchesOnlyTargetRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, pending("r1"), pending("r2"))

	_, err := f.svc.Approve(ctx, "admin-1", "r1")
	require.NoError(t, err)

	other, err := f.repo.GetByID(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, pending("r2"), *other)
}

func TestTransitionsRecordHistoryAndEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, pending("r1"))

	_, err := f.svc.Approve(ctx, "admin-1", "r1")
	require.NoError(t, err)
	_, err = f.svc.SendToVendor(ctx, "admin-2", "r1")
	require.NoError(t, err)

	history, err := f.svc.ListHistory(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.SignupActionApprove, history[0].Action)
	assert.Equal(t, domain.SignupStatusPendingApproval, history[0].OldStatus)
	assert.Equal(t, domain.SignupStatusApproved, history[0].NewStatus)
	require.NotNil(t, history[1].ActorID)
	assert.Equal(t, "admin-2", *history[1].ActorID)

	require.Len(t, f.published, 2)
	assert.Equal(t, events.EventSignupRequestApproved, f.published[0].Type)
	assert.Equal(t, events.StatusChangedPayload{
		OldStatus: domain.SignupStatusPendingApproval,
		NewStatus: domain.SignupStatusApproved,
	}, f.published[0].Payload)

	handoff, ok := f.published[1].Payload.(events.VendorHandoffPayload)
	require.True(t, ok)
	assert.Equal(t, "r1@example.com", handoff.Email)
	assert.Equal(t, "Covai Fresh", handoff.CompanyName)
	assert.Equal(t, fixedNow, f.published[1].Timestamp)
	assert.NotEmpty(t, f.published[1].ID)
}

func TestHandlerFailureDoesNotFailTransition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, withStatus(pending("r1"), domain.SignupStatusApproved))
	f.dispatcher.Subscribe(events.EventSignupRequestSentToVendor, func(context.Context, events.Event) error {
		return errors.New("smtp unavailable")
	})

	sent, err := f.svc.SendToVendor(ctx, "admin-1", "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.SignupStatusSentToVendor, sent.Status)
}

func TestTransitionMetrics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, pending("r1"))
	registry := prometheus.NewRegistry()
	f.svc.metrics = observability.NewMetrics(registry)

	_, _ = f.svc.Approve(ctx, "admin-1", "r1")
	_, _ = f.svc.Approve(ctx, "admin-1", "r1")
	_, _ = f.svc.Reject(ctx, "admin-1", "nope")

	count, err := testutil.GatherAndCount(registry, "vendor_signup_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

// failingRepository wraps a store and fails chosen operations with a transport error.
type failingRepository struct {
	repository.SignupRequestRepository
	failList    bool
	failReplace bool
}

func (r *failingRepository) List(ctx context.Context) ([]domain.SignupRequest, error) {
	if r.failList {
		return nil, apperrors.NewTransportError(errors.New("connection refused"))
	}
	return r.SignupRequestRepository.List(ctx)
}

func (r *failingRepository) Replace(ctx context.Context, id string, updated *domain.SignupRequest) error {
	if r.failReplace {
		return apperrors.NewTransportError(errors.New("connection reset"))
	}
	return r.SignupRequestRepository.Replace(ctx, id, updated)
}

func TestTransportErrorsPropagateAndLeaveStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	inner, err := repository.NewMemorySignupRequestRepository([]domain.SignupRequest{pending("r1")})
	require.NoError(t, err)
	repo := &failingRepository{SignupRequestRepository: inner, failReplace: true, failList: true}
	f := newFixtureWithRepo(t, repo)

	_, err = f.svc.Approve(ctx, "admin-1", "r1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeTransport))
	assert.ErrorContains(t, err, "approve r1")
	assert.Equal(t, domain.SignupStatusPendingApproval, storedStatus(t, inner, "r1"))
	assert.Empty(t, f.published)

	_, err = f.svc.ListRequests(ctx)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeTransport))

	repo.failReplace = false
	approved, err := f.svc.Approve(ctx, "admin-1", "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.SignupStatusApproved, approved.Status)
}

func TestListRequestsReturnsStoreOrder(t *testing.T) {
	f := newFixture(t, pending("r1"), pending("r2"), pending("r3"))

	list, err := f.svc.ListRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "r1", list[0].ID)
	assert.Equal(t, "r3", list[2].ID)
}

func TestListRequestsPage(t *testing.T) {
	seed := repository.DemoSignupRequests(fixedNow)
	f := newFixture(t, seed...)
	ctx := context.Background()

	page, err := f.svc.ListRequestsPage(ctx, SignupRequestFilter{Page: 1, PageSize: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 4)
	assert.Equal(t, "signupTN001", page.Items[0].ID)

	page, err = f.svc.ListRequestsPage(ctx, SignupRequestFilter{Page: 2, PageSize: 4})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "signupTN006", page.Items[1].ID)

	page, err = f.svc.ListRequestsPage(ctx, SignupRequestFilter{Page: 9, PageSize: 4})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 6, page.Total)

	page, err = f.svc.ListRequestsPage(ctx, SignupRequestFilter{
		Statuses: []domain.SignupStatus{domain.SignupStatusPendingApproval},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, defaultPageSize, page.PageSize)

	page, err = f.svc.ListRequestsPage(ctx, SignupRequestFilter{Search: "MADURAI"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "signupTN003", page.Items[0].ID)
}

func TestListRequestsPageOutOfRange(t *testing.T) {
	f := newFixture(t, repository.DemoSignupRequests(fixedNow)...)
	ctx := context.Background()

	for _, pageNo := range []int{3, 1<<62 + 1, math.MaxInt} {
		var page *SignupRequestPage
		var err error
		require.NotPanics(t, func() {
			page, err = f.svc.ListRequestsPage(ctx, SignupRequestFilter{Page: pageNo, PageSize: 3})
		})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.NotNil(t, page.Items)
		assert.Equal(t, 6, page.Total)
		assert.Equal(t, 2, page.TotalPages)
		assert.Equal(t, pageNo, page.Page)
	}

	page, err := f.svc.ListRequestsPage(ctx, SignupRequestFilter{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
}

func TestGetRequest(t *testing.T) {
	f := newFixture(t, pending("r1"))

	got, err := f.svc.GetRequest(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, pending("r1"), *got)

	_, err = f.svc.GetRequest(context.Background(), "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = f.svc.ListHistory(context.Background(), "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestSubmitRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	req, err := f.svc.SubmitRequest(ctx, SignupSubmission{
		FullName:    "  Priya Murugan ",
		Email:       "Priya@Example.co.in",
		PhoneNumber: "9123456780",
		Address:     "45, Usman Road, Chennai",
		Password:    "Pass@9876",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, "Priya Murugan", req.FullName)
	assert.Equal(t, "priya@example.co.in", req.Email)
	assert.Equal(t, "Pass@9876", req.Password)
	assert.Equal(t, fixedNow, req.RequestedDate)
	assert.Equal(t, domain.SignupStatusPendingApproval, req.Status)

	stored, err := f.repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, *req, *stored)
	require.Len(t, f.published, 1)
	assert.Equal(t, events.EventSignupRequestSubmitted, f.published[0].Type)
}

func TestSubmitRequestValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SubmitRequest(context.Background(), SignupSubmission{
		FullName: "Priya",
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidation, de.Code)
	assert.Equal(t, "email", de.Details["Email"])
	assert.Equal(t, "required", de.Details["Address"])
	assert.Equal(t, "min", de.Details["Password"])

	count, err := f.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}
