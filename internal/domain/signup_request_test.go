package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSignupStatus(t *testing.T) {
	cases := map[string]SignupStatus{
		"PENDING_APPROVAL": SignupStatusPendingApproval,
		"Pending Approval": SignupStatusPendingApproval,
		" sent to vendor ": SignupStatusSentToVendor,
		"rejected":         SignupStatusRejected,
		"Approved":         SignupStatusApproved,
	}
	for raw, want := range cases {
		got, ok := ParseSignupStatus(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := ParseSignupStatus("archived")
	assert.False(t, ok)
}

func TestSignupStatusLabel(t *testing.T) {
	assert.Equal(t, "Sent To Vendor", SignupStatusSentToVendor.Label())
	assert.Equal(t, "UNKNOWN", SignupStatus("UNKNOWN").Label())
}

func TestWithStatusLeavesOriginalUntouched(t *testing.T) {
	original := SignupRequest{ID: "r1", FullName: "Test User", Status: SignupStatusPendingApproval}
	updated := original.WithStatus(SignupStatusApproved)

	assert.Equal(t, SignupStatusPendingApproval, original.Status)
	assert.Equal(t, SignupStatusApproved, updated.Status)
	assert.Equal(t, original.FullName, updated.FullName)
}
