package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/events"
	apperrors "github.com/spec-kit/request-workflow/pkg/util"
)

// AssignmentService binds routed tickets to specialists.
type AssignmentService struct {
	core *Core
}

// NewAssignmentService constructs the service.
func NewAssignmentService(core *Core) *AssignmentService {
	return &AssignmentService{core: core}
}

// AssignInput describes an assignment command.
type AssignInput struct {
	SpecialistID   string
	SpecialistName string
	Queue          string
	Notes          string
	Actor          Actor
}

// AssignToSpecialist binds a ticket to a specialist. Valid from In Queue, or
// from Reopened once approval completed (reopen never repeats approval).
func (s *AssignmentService) AssignToSpecialist(ctx context.Context, ticketNumber string, input AssignInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.SpecialistID) == "" {
		return nil, apperrors.NewValidationError("specialist id required", nil)
	}
	return s.core.run(ctx, ticketNumber, func(t *domain.Ticket, tx *txn) error {
		if t.Status.Terminal() || t.Closed() {
			return apperrors.NewInvalidTransition("assign", string(t.Status))
		}
		assignable := t.Status == domain.StatusInQueue ||
			(t.Status == domain.StatusReopened && t.ApprovalCompleted)
		if !assignable {
			return apperrors.NewInvalidTransition("assign", string(t.Status))
		}

		now := s.core.now()
		prev := t.Status
		queue := input.Queue
		if queue == "" && t.Route != nil {
			queue = t.Route.SpecialistQueue
		}
		assigneeID := input.SpecialistID
		t.Assignment = domain.Assignment{
			AssigneeID:   &assigneeID,
			AssigneeName: input.SpecialistName,
			Queue:        queue,
			AssignedAt:   &now,
			AssignedBy:   input.Actor.ID,
			Notes:        input.Notes,
		}
		t.Progress = domain.ProgressNotStarted
		t.Status = domain.StatusAssigned
		tx.record(statusEntry(t, domain.EventAssigned, "ticket_assigned", input.Actor,
			fmt.Sprintf("assigned to %s", displayName(input.SpecialistName, input.SpecialistID)), prev, now))
		tx.emit(workflowEvent(t, events.EventTicketAssigned, input.Actor, events.TicketAssignedPayload{
			AssigneeID:   input.SpecialistID,
			AssigneeName: input.SpecialistName,
			Queue:        queue,
		}))
		return nil
	})
}

// ReassignInput describes a reassignment command.
type ReassignInput struct {
	SpecialistID   string
	SpecialistName string
	Reason         string
	Actor          Actor
}

// Reassign moves a ticket to a new specialist. Valid from any non-terminal,
// non-closed status. The history entry records the previous assignee so the
// timeline can reconstruct handovers across reopen cycles.
func (s *AssignmentService) Reassign(ctx context.Context, ticketNumber string, input ReassignInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.SpecialistID) == "" {
		return nil, apperrors.NewValidationError("specialist id required", nil)
	}
	return s.core.run(ctx, ticketNumber, func(t *domain.Ticket, tx *txn) error {
		if t.Status.Terminal() || t.Closed() {
			return apperrors.NewInvalidTransition("reassign", string(t.Status))
		}
		if !t.ApprovalCompleted {
			return apperrors.NewInvalidTransition("reassign", string(t.Status))
		}

		now := s.core.now()
		prev := t.Status
		previousAssignee := displayName(t.Assignment.AssigneeName, t.ActiveAssignee())
		queue := t.Assignment.Queue
		if queue == "" && t.Route != nil {
			queue = t.Route.SpecialistQueue
		}

		assigneeID := input.SpecialistID
		t.Assignment = domain.Assignment{
			AssigneeID:   &assigneeID,
			AssigneeName: input.SpecialistName,
			Queue:        queue,
			AssignedAt:   &now,
			AssignedBy:   input.Actor.ID,
			Notes:        input.Reason,
		}
		t.Progress = domain.ProgressNotStarted
		t.PauseReason = ""
		t.Status = domain.StatusAssigned
		tx.record(statusEntry(t, domain.EventReassigned, "ticket_reassigned", input.Actor,
			reassignDetail(previousAssignee, input.SpecialistName, input.SpecialistID, input.Reason), prev, now))
		tx.emit(workflowEvent(t, events.EventTicketReassigned, input.Actor, events.TicketAssignedPayload{
			AssigneeID:       input.SpecialistID,
			AssigneeName:     input.SpecialistName,
			Queue:            queue,
			PreviousAssignee: previousAssignee,
		}))
		return nil
	})
}

func reassignDetail(previous, newName, newID, reason string) string {
	detail := fmt.Sprintf("reassigned from %s to %s", orUnassigned(previous), displayName(newName, newID))
	if strings.TrimSpace(reason) != "" {
		detail += ": " + strings.TrimSpace(reason)
	}
	return detail
}

func orUnassigned(name string) string {
	if name == "" {
		return "unassigned"
	}
	return name
}

func displayName(name, id string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return id
}
