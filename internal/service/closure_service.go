package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/events"
	apperrors "github.com/spec-kit/request-workflow/pkg/util"
)

// ClosureService closes, cancels and reopens tickets.
type ClosureService struct {
	core *Core
}

// NewClosureService constructs the service.
func NewClosureService(core *Core) *ClosureService {
	return &ClosureService{core: core}
}

// Close finishes a ticket's current cycle. Valid from Confirmed, or from
// Work Completed when the category does not require user sign-off. Closed is
// terminal except for Reopen.
func (s *ClosureService) Close(ctx context.Context, ticketNumber string, actor Actor, note string) (*domain.Ticket, error) {
	return s.core.run(ctx, ticketNumber, func(t *domain.Ticket, tx *txn) error {
		switch t.Status {
		case domain.StatusConfirmed:
		case domain.StatusWorkCompleted:
			if t.RequiresConfirmation {
				return apperrors.NewInvalidTransition("close", string(t.Status))
			}
		default:
			return apperrors.NewInvalidTransition("close", string(t.Status))
		}
		reason := domain.ReasonManual
		if t.UserConfirmedAt != nil {
			reason = domain.ReasonConfirmed
		}
		s.applyClosure(t, tx, actor, note, reason, domain.StatusClosed, domain.EventClosed)
		return nil
	})
}

// AutoClose force-closes an SLA-breached ticket. The sweeper issues it as an
// ordinary command under the same locking discipline; it holds no special
// privilege beyond skipping the confirmation gate.
func (s *ClosureService) AutoClose(ctx context.Context, ticketNumber string, note string) (*domain.Ticket, error) {
	actor := Actor{ID: "system", Name: "SLA sweep"}
	return s.core.run(ctx, ticketNumber, func(t *domain.Ticket, tx *txn) error {
		if t.Status.Terminal() || t.Closed() {
			return apperrors.NewInvalidTransition("auto_close", string(t.Status))
		}
		s.applyClosure(t, tx, actor, note, domain.ReasonAutoClosed, domain.StatusAutoClosed, domain.EventAutoClosed)
		return nil
	})
}

// Cancel withdraws a ticket from any non-terminal status. Non-recoverable:
// unlike Closed, a Cancelled ticket cannot be reopened.
func (s *ClosureService) Cancel(ctx context.Context, ticketNumber string, actor Actor, reason string) (*domain.Ticket, error) {
	return s.core.run(ctx, ticketNumber, func(t *domain.Ticket, tx *txn) error {
		if t.Status.Terminal() || t.Closed() {
			return apperrors.NewInvalidTransition("cancel", string(t.Status))
		}
		s.applyClosure(t, tx, actor, reason, domain.ReasonCancelled, domain.StatusCancelled, domain.EventCancelled)
		return nil
	})
}

// Reopen starts a new cycle on a closed ticket. The same entity is reused:
// assignment is cleared (the previous assignment survives in history),
// approval is never repeated, and the workflow re-enters at the assignment
// stage. Reopening an already-Reopened ticket fails with InvalidTransition.
func (s *ClosureService) Reopen(ctx context.Context, ticketNumber string, actor Actor, reason string) (*domain.Ticket, error) {
	return s.core.run(ctx, ticketNumber, func(t *domain.Ticket, tx *txn) error {
		if !t.Closed() {
			return apperrors.NewInvalidTransition("reopen", string(t.Status))
		}
		now := s.core.now()
		prev := t.Status
		previousAssignee := displayName(t.Assignment.AssigneeName, t.ActiveAssignee())

		t.Status = domain.StatusReopened
		t.ReopenCount++
		t.Assignment.AssigneeID = nil
		t.Assignment.AssigneeName = ""
		t.Assignment.AssignedAt = nil
		t.Progress = domain.ProgressNotStarted
		t.PauseReason = ""
		t.Resolution = domain.Resolution{}
		t.UserConfirmedAt = nil
		t.ClosedAt = nil
		t.ClosedBy = ""
		t.ClosingNote = ""
		t.ClosingReason = ""

		detail := fmt.Sprintf("reopened (cycle %d), previously handled by %s",
			t.ReopenCount+1, orUnassigned(previousAssignee))
		if strings.TrimSpace(reason) != "" {
			detail += ": " + strings.TrimSpace(reason)
		}
		tx.record(statusEntry(t, domain.EventReopened, "ticket_reopened", actor, detail, prev, now))
		tx.emit(workflowEvent(t, events.EventTicketReopened, actor, events.StatusChangedPayload{
			OldStatus: prev, NewStatus: t.Status, Detail: strings.TrimSpace(reason),
		}))
		return nil
	})
}

func (s *ClosureService) applyClosure(t *domain.Ticket, tx *txn, actor Actor, note string, reason domain.ClosingReason, status domain.TicketStatus, kind domain.EventKind) {
	now := s.core.now()
	prev := t.Status
	t.Status = status
	t.ClosedAt = &now
	t.ClosedBy = actor.ID
	t.ClosingNote = strings.TrimSpace(note)
	t.ClosingReason = reason

	eventType := events.EventTicketClosed
	if reason == domain.ReasonCancelled {
		eventType = events.EventTicketCancelled
	}
	tx.record(statusEntry(t, kind, "ticket_"+strings.ToLower(string(reason)), actor, t.ClosingNote, prev, now))
	tx.emit(workflowEvent(t, eventType, actor, events.StatusChangedPayload{
		OldStatus: prev, NewStatus: t.Status, Detail: t.ClosingNote,
	}))
}
