package events

import (
	"time"

	"github.com/spec-kit/vendor-signup-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSignupRequestSubmitted    EventType = "signup_request.submitted"
	EventSignupRequestApproved     EventType = "signup_request.approved"
	EventSignupRequestRejected     EventType = "signup_request.rejected"
	EventSignupRequestSentToVendor EventType = "signup_request.sent_to_vendor"
)

// EventForAction maps a workflow action to the event published after it succeeds.
func EventForAction(action domain.SignupAction) EventType {
	switch action {
	case domain.SignupActionApprove:
		return EventSignupRequestApproved
	case domain.SignupActionReject:
		return EventSignupRequestRejected
	case domain.SignupActionSendToVendor:
		return EventSignupRequestSentToVendor
	default:
		return ""
	}
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	AdminID *string            `json:"admin_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	RequestID string    `json:"request_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// StatusChangedPayload accompanies approve and reject events.
type StatusChangedPayload struct {
	OldStatus domain.SignupStatus `json:"old_status"`
	NewStatus domain.SignupStatus `json:"new_status"`
}

// VendorHandoffPayload carries the applicant details handed to vendor onboarding.
// The applicant password is deliberately absent.
type VendorHandoffPayload struct {
	OldStatus       domain.SignupStatus `json:"old_status"`
	NewStatus       domain.SignupStatus `json:"new_status"`
	FullName        string              `json:"full_name"`
	Email           string              `json:"email"`
	PhoneNumber     string              `json:"phone_number,omitempty"`
	Address         string              `json:"address"`
	CompanyName     string              `json:"company_name,omitempty"`
	ReasonForSignup string              `json:"reason_for_signup,omitempty"`
	RequestedDate   time.Time           `json:"requested_date"`
}

// SubmittedPayload accompanies new signup requests.
type SubmittedPayload struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}
