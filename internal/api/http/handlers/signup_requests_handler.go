package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vendor-signup-service/internal/api/dto"
	"github.com/spec-kit/vendor-signup-service/internal/auth"
	"github.com/spec-kit/vendor-signup-service/internal/domain"
	"github.com/spec-kit/vendor-signup-service/internal/service"
	"github.com/spec-kit/vendor-signup-service/internal/workflow"
	apperrors "github.com/spec-kit/vendor-signup-service/pkg/util/errorutil"
)

// SignupRequestsHandler serves the signup review endpoints.
type SignupRequestsHandler struct {
	service *service.SignupRequestService
}

// NewSignupRequestsHandler constructs handler.
func NewSignupRequestsHandler(signupService *service.SignupRequestService) *SignupRequestsHandler {
	return &SignupRequestsHandler{service: signupService}
}

// Submit POST /signup-requests.
func (h *SignupRequestsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}
	created, err := h.service.SubmitRequest(c.UserContext(), service.SignupSubmission{
		FullName:        req.FullName,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Address:         req.Address,
		CompanyName:     req.CompanyName,
		ReasonForSignup: req.ReasonForSignup,
		Password:        req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": signupRequestResponse(created)})
}

// List GET /admin/signup-requests.
func (h *SignupRequestsHandler) List(c *fiber.Ctx) error {
	filter, err := parseListQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListRequestsPage(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.SignupRequestResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, signupRequestResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": dto.PageMeta{
			Page:       page.Page,
			PageSize:   page.PageSize,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	})
}

// Get GET /admin/signup-requests/:id.
func (h *SignupRequestsHandler) Get(c *fiber.Ctx) error {
	req, err := h.service.GetRequest(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": signupRequestResponse(req)})
}

// History GET /admin/signup-requests/:id/history.
func (h *SignupRequestsHandler) History(c *fiber.Ctx) error {
	entries, err := h.service.ListHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	resp := make([]dto.SignupRequestHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.SignupRequestHistoryResponse{
			ID:        entry.ID,
			Action:    entry.Action,
			OldStatus: entry.OldStatus,
			NewStatus: entry.NewStatus,
			ActorID:   entry.ActorID,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Approve POST /admin/signup-requests/:id/approve.
func (h *SignupRequestsHandler) Approve(c *fiber.Ctx) error {
	return h.runAction(c, h.service.Approve)
}

// Reject POST /admin/signup-requests/:id/reject.
func (h *SignupRequestsHandler) Reject(c *fiber.Ctx) error {
	return h.runAction(c, h.service.Reject)
}

// SendToVendor POST /admin/signup-requests/:id/send-to-vendor.
func (h *SignupRequestsHandler) SendToVendor(c *fiber.Ctx) error {
	return h.runAction(c, h.service.SendToVendor)
}

type signupAction func(ctx context.Context, actorID, id string) (*domain.SignupRequest, error)

func (h *SignupRequestsHandler) runAction(c *fiber.Ctx, action signupAction) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	updated, err := action(c.UserContext(), principal.Admin.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": signupRequestResponse(updated)})
}

func parseListQuery(c *fiber.Ctx) (service.SignupRequestFilter, error) {
	var q dto.SignupRequestListQuery
	if err := c.QueryParser(&q); err != nil {
		return service.SignupRequestFilter{}, apperrors.NewValidationError("invalid query", nil)
	}
	if err := validateStruct(q); err != nil {
		return service.SignupRequestFilter{}, err
	}
	filter := service.SignupRequestFilter{
		Search:   strings.TrimSpace(q.Search),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	for _, raw := range strings.Split(q.Status, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		status, ok := domain.ParseSignupStatus(raw)
		if !ok {
			return service.SignupRequestFilter{}, apperrors.NewValidationError("invalid status filter", map[string]any{
				"status":  raw,
				"allowed": domain.SignupStatuses(),
			})
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	return filter, nil
}

func signupRequestResponse(req *domain.SignupRequest) dto.SignupRequestResponse {
	return dto.SignupRequestResponse{
		ID:              req.ID,
		FullName:        req.FullName,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Address:         req.Address,
		CompanyName:     req.CompanyName,
		ReasonForSignup: req.ReasonForSignup,
		Password:        dto.MaskedPassword,
		RequestedDate:   req.RequestedDate,
		Status:          req.Status,
		StatusLabel:     req.Status.Label(),
		AllowedActions:  workflow.AllowedActions(req.Status),
		Terminal:        workflow.IsTerminal(req.Status),
	}
}
