package domain

import "time"

// SignupRequestHistory is an immutable audit entry for one status transition.
type SignupRequestHistory struct {
	ID        string
	RequestID string
	Action    SignupAction
	OldStatus SignupStatus
	NewStatus SignupStatus
	ActorID   *string
	CreatedAt time.Time
}
