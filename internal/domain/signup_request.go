package domain

import (
	"strings"
	"time"
)

// SignupStatus enumerates lifecycle states for vendor signup requests.
type SignupStatus string

const (
	SignupStatusPendingApproval SignupStatus = "PENDING_APPROVAL"
	SignupStatusApproved        SignupStatus = "APPROVED"
	SignupStatusSentToVendor    SignupStatus = "SENT_TO_VENDOR"
	SignupStatusRejected        SignupStatus = "REJECTED"
)

var signupStatusLabels = map[SignupStatus]string{
	SignupStatusPendingApproval: "Pending Approval",
	SignupStatusApproved:        "Approved",
	SignupStatusSentToVendor:    "Sent To Vendor",
	SignupStatusRejected:        "Rejected",
}

// SignupStatuses lists every status in workflow order.
func SignupStatuses() []SignupStatus {
	return []SignupStatus{
		SignupStatusPendingApproval,
		SignupStatusApproved,
		SignupStatusSentToVendor,
		SignupStatusRejected,
	}
}

// Label returns the human readable form used by the admin console.
func (s SignupStatus) Label() string {
	if label, ok := signupStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Valid reports whether s is a known status.
func (s SignupStatus) Valid() bool {
	_, ok := signupStatusLabels[s]
	return ok
}

// ParseSignupStatus accepts either the wire value or the display label.
func ParseSignupStatus(raw string) (SignupStatus, bool) {
	raw = strings.TrimSpace(raw)
	candidate := SignupStatus(strings.ToUpper(strings.ReplaceAll(raw, " ", "_")))
	if candidate.Valid() {
		return candidate, true
	}
	return "", false
}

// SignupAction enumerates administrative actions on a signup request.
type SignupAction string

const (
	SignupActionApprove      SignupAction = "approve"
	SignupActionReject       SignupAction = "reject"
	SignupActionSendToVendor SignupAction = "send_to_vendor"
)

// SignupActions lists every action.
func SignupActions() []SignupAction {
	return []SignupAction{SignupActionApprove, SignupActionReject, SignupActionSendToVendor}
}

// SignupRequest is a prospective vendor's application awaiting review.
// Only Status changes after creation.
type SignupRequest struct {
	ID              string
	FullName        string
	Email           string
	PhoneNumber     string
	Address         string
	CompanyName     string
	ReasonForSignup string
	Password        string
	RequestedDate   time.Time
	Status          SignupStatus
}

// WithStatus returns a copy of r carrying the given status.
func (r SignupRequest) WithStatus(status SignupStatus) SignupRequest {
	r.Status = status
	return r
}
