package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplicationTransitions(t *testing.T) {
	tests := []struct {
		from, to ApplicationStatus
		ok       bool
	}{
		{ApplicationSubmitted, ApplicationUnderReview, true},
		{ApplicationSubmitted, ApplicationRejected, true},
		{ApplicationUnderReview, ApplicationRejected, true},
		{ApplicationWaitlisted, ApplicationRejected, true},
		{ApplicationSelected, ApplicationAdmitted, true},
		{ApplicationSelected, ApplicationRejected, false},
		{ApplicationAdmitted, ApplicationRejected, false},
		{ApplicationRejected, ApplicationUnderReview, false},
		{ApplicationSubmitted, ApplicationAdmitted, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestPayrollTransitions(t *testing.T) {
	assert.True(t, PayrollPending.CanTransitionTo(PayrollApproved))
	assert.True(t, PayrollPending.CanTransitionTo(PayrollRejected))
	assert.True(t, PayrollApproved.CanTransitionTo(PayrollPaid))
	assert.False(t, PayrollPending.CanTransitionTo(PayrollPaid))
	assert.False(t, PayrollPaid.CanTransitionTo(PayrollApproved))
	assert.False(t, PayrollRejected.CanTransitionTo(PayrollApproved))
}

func TestNoticeIsActiveAt(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	expires := now.Add(time.Hour)
	n := &Notice{PublishAt: now.Add(-time.Hour), ExpiresAt: &expires}

	assert.True(t, n.IsActiveAt(now))
	assert.False(t, n.IsActiveAt(now.Add(2*time.Hour)))
	assert.False(t, n.IsActiveAt(now.Add(-2*time.Hour)))
}

func TestBookIssueEffectiveStatus(t *testing.T) {
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	issue := &BookIssue{Status: BookIssued, DueOn: due}

	assert.Equal(t, BookIssued, issue.EffectiveStatus(due))
	assert.Equal(t, BookOverdue, issue.EffectiveStatus(due.AddDate(0, 0, 1)))

	issue.Status = BookReturned
	assert.Equal(t, BookReturned, issue.EffectiveStatus(due.AddDate(0, 0, 5)))
}

func TestRoleIsValid(t *testing.T) {
	assert.True(t, RoleLibrarian.IsValid())
	assert.False(t, Role("STUDENT").IsValid())
}
