// Package sla computes phase deadlines for tickets. It never mutates a
// ticket; the sweeper turns its answers into ordinary close commands.
package sla

import (
	"time"

	"github.com/spec-kit/request-workflow/internal/domain"
)

// Phase names the SLA phase a ticket is currently measured against.
type Phase string

const (
	PhaseApproval   Phase = "APPROVAL"
	PhaseProcessing Phase = "PROCESSING"
	PhaseNone       Phase = "NONE"
)

// Status is the evaluated SLA position of a ticket at a point in time.
type Status struct {
	Phase              Phase
	ApprovalDeadline   *time.Time
	ProcessingDeadline *time.Time
	Deadline           *time.Time
	Overdue            bool
	OverdueBy          time.Duration
}

// ApprovalDeadline returns submittedAt + approval budget, nil when no budget
// is configured or approval was never required.
func ApprovalDeadline(t *domain.Ticket) *time.Time {
	if !t.RequiresApproval || t.SLA.ApprovalHours <= 0 {
		return nil
	}
	d := t.SubmittedAt.Add(time.Duration(t.SLA.ApprovalHours) * time.Hour)
	return &d
}

// ProcessingDeadline returns routedAt + processing budget, nil until the
// ticket is routed or when no budget is configured.
func ProcessingDeadline(t *domain.Ticket) *time.Time {
	if t.RoutedAt == nil || t.SLA.ProcessingHours <= 0 {
		return nil
	}
	d := t.RoutedAt.Add(time.Duration(t.SLA.ProcessingHours) * time.Hour)
	return &d
}

// Evaluate computes the ticket's SLA status at the given instant.
func Evaluate(t *domain.Ticket, now time.Time) Status {
	status := Status{
		Phase:              PhaseNone,
		ApprovalDeadline:   ApprovalDeadline(t),
		ProcessingDeadline: ProcessingDeadline(t),
	}
	switch {
	case t.Status.Terminal() || t.Closed():
		return status
	case inApprovalPhase(t.Status):
		status.Phase = PhaseApproval
		status.Deadline = status.ApprovalDeadline
	case t.RoutedAt != nil:
		status.Phase = PhaseProcessing
		status.Deadline = status.ProcessingDeadline
	default:
		return status
	}
	if status.Deadline != nil && now.After(*status.Deadline) {
		status.Overdue = true
		status.OverdueBy = now.Sub(*status.Deadline)
	}
	return status
}

// AutoCloseEligible reports whether the sweeper may force-close the ticket:
// overdue in its processing phase with the policy flag set.
func AutoCloseEligible(t *domain.Ticket, now time.Time) bool {
	if !t.SLA.AutoCloseOnBreach {
		return false
	}
	status := Evaluate(t, now)
	return status.Overdue && status.Phase == PhaseProcessing
}

func inApprovalPhase(s domain.TicketStatus) bool {
	switch s {
	case domain.StatusSubmitted, domain.StatusPendingApprovalL1,
		domain.StatusPendingApprovalL2, domain.StatusPendingApprovalL3:
		return true
	}
	return false
}
