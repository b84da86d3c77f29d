// Package workflow holds the signup request state machine.
package workflow

import (
	"fmt"

	"github.com/spec-kit/vendor-signup-service/internal/domain"
	apperrors "github.com/spec-kit/vendor-signup-service/pkg/util/errorutil"
)

type edge struct {
	from   domain.SignupStatus
	action domain.SignupAction
}

// transitions is the complete set of legal moves. Any pair missing here is rejected.
var transitions = map[edge]domain.SignupStatus{
	{domain.SignupStatusPendingApproval, domain.SignupActionApprove}: domain.SignupStatusApproved,
	{domain.SignupStatusPendingApproval, domain.SignupActionReject}:  domain.SignupStatusRejected,
	{domain.SignupStatusApproved, domain.SignupActionSendToVendor}:   domain.SignupStatusSentToVendor,
}

// Transition returns the status reached by applying action to current.
func Transition(current domain.SignupStatus, action domain.SignupAction) (domain.SignupStatus, error) {
	next, ok := transitions[edge{from: current, action: action}]
	if !ok {
		return "", apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot %s a request that is %s", actionVerb(action), current.Label()),
			map[string]any{
				"status": current,
				"action": action,
			},
		)
	}
	return next, nil
}

// AllowedActions lists the actions that succeed from status, in a stable order.
func AllowedActions(status domain.SignupStatus) []domain.SignupAction {
	allowed := []domain.SignupAction{}
	for _, action := range domain.SignupActions() {
		if _, ok := transitions[edge{from: status, action: action}]; ok {
			allowed = append(allowed, action)
		}
	}
	return allowed
}

// IsTerminal reports whether no action can leave status.
func IsTerminal(status domain.SignupStatus) bool {
	return len(AllowedActions(status)) == 0
}

func actionVerb(action domain.SignupAction) string {
	switch action {
	case domain.SignupActionSendToVendor:
		return "send to vendor"
	case "":
		return "apply an empty action to"
	default:
		return string(action)
	}
}
