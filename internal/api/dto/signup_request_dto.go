package dto

import (
	"time"

	"github.com/spec-kit/vendor-signup-service/internal/domain"
)

// MaskedPassword replaces applicant passwords in every response.
const MaskedPassword = "********"

// SignupRequestResponse is the admin view of a signup request.
type SignupRequestResponse struct {
	ID              string                `json:"id"`
	FullName        string                `json:"full_name"`
	Email           string                `json:"email"`
	PhoneNumber     string                `json:"phone_number,omitempty"`
	Address         string                `json:"address"`
	CompanyName     string                `json:"company_name,omitempty"`
	ReasonForSignup string                `json:"reason_for_signup,omitempty"`
	Password        string                `json:"password"`
	RequestedDate   time.Time             `json:"requested_date"`
	Status          domain.SignupStatus   `json:"status"`
	StatusLabel     string                `json:"status_label"`
	AllowedActions  []domain.SignupAction `json:"allowed_actions"`
	Terminal        bool                  `json:"terminal"`
}

// SignupRequestListQuery captures admin listing parameters.
type SignupRequestListQuery struct {
	Status   string `query:"status"`
	Search   string `query:"search" validate:"max=100"`
	Page     int    `query:"page" validate:"gte=0,lte=1000000"`
	PageSize int    `query:"page_size" validate:"gte=0,lte=100"`
}

// PageMeta describes pagination of a list response.
type PageMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// SignupRequestHistoryResponse is one audit entry.
type SignupRequestHistoryResponse struct {
	ID        string              `json:"id"`
	Action    domain.SignupAction `json:"action"`
	OldStatus domain.SignupStatus `json:"old_status"`
	NewStatus domain.SignupStatus `json:"new_status"`
	ActorID   *string             `json:"actor_id,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// SubmitSignupRequest is the public signup form payload.
type SubmitSignupRequest struct {
	FullName        string `json:"full_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phone_number"`
	Address         string `json:"address" validate:"required"`
	CompanyName     string `json:"company_name"`
	ReasonForSignup string `json:"reason_for_signup"`
	Password        string `json:"password" validate:"required"`
}
