package service

import (
	"context"
	"strings"

	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/events"
	apperrors "github.com/spec-kit/request-workflow/pkg/util"
)

// ProgressService tracks specialist work states and user confirmation. The
// specialist-facing progress state is orthogonal to ticket status, but status
// stays synchronized with it.
type ProgressService struct {
	core *Core
}

// NewProgressService constructs the service.
func NewProgressService(core *Core) *ProgressService {
	return &ProgressService{core: core}
}

// StartWork moves an assigned ticket into In Progress.
func (s *ProgressService) StartWork(ctx context.Context, ticketNumber string, actor Actor) (*domain.Ticket, error) {
	return s.core.run(ctx, ticketNumber, func(t *domain.Ticket, tx *txn) error {
		if t.Status != domain.StatusAssigned {
			return apperrors.NewInvalidTransition("start_work", string(t.Status))
		}
		now := s.core.now()
		prev := t.Status
		t.Progress = domain.ProgressInProgress
		t.Status = domain.StatusInProgress
		tx.record(statusEntry(t, domain.EventWorkStarted, "work_started", actor, "", prev, now))
		tx.emit(workflowEvent(t, events.EventProgressChanged, actor, events.StatusChangedPayload{
			OldStatus: prev, NewStatus: t.Status,
		}))
		return nil
	})
}

// Pause puts in-progress work on hold, capturing an optional reason.
func (s *ProgressService) Pause(ctx context.Context, ticketNumber string, actor Actor, reason string) (*domain.Ticket, error) {
	return s.core.run(ctx, ticketNumber, func(t *domain.Ticket, tx *txn) error {
		if t.Status != domain.StatusInProgress {
			return apperrors.NewInvalidTransition("pause", string(t.Status))
		}
		now := s.core.now()
		prev := t.Status
		t.Progress = domain.ProgressOnHold
		t.PauseReason = strings.TrimSpace(reason)
		t.Status = domain.StatusPaused
		tx.record(statusEntry(t, domain.EventPaused, "work_paused", actor, t.PauseReason, prev, now))
		tx.emit(workflowEvent(t, events.EventProgressChanged, actor, events.StatusChangedPayload{
			OldStatus: prev, NewStatus: t.Status, Detail: t.PauseReason,
		}))
		return nil
	})
}

// Resume returns paused work to In Progress.
func (s *ProgressService) Resume(ctx context.Context, ticketNumber string, actor Actor) (*domain.Ticket, error) {
	return s.core.run(ctx, ticketNumber, func(t *domain.Ticket, tx *txn) error {
		if t.Status != domain.StatusPaused {
			return apperrors.NewInvalidTransition("resume", string(t.Status))
		}
		now := s.core.now()
		prev := t.Status
		t.Progress = domain.ProgressInProgress
		t.PauseReason = ""
		t.Status = domain.StatusInProgress
		tx.record(statusEntry(t, domain.EventResumed, "work_resumed", actor, "", prev, now))
		tx.emit(workflowEvent(t, events.EventProgressChanged, actor, events.StatusChangedPayload{
			OldStatus: prev, NewStatus: t.Status,
		}))
		return nil
	})
}

// CompleteWork records specialist completion. Valid only while assigned and
// not paused. When the category requires user sign-off the ticket moves to
// Awaiting User Confirmation, otherwise it becomes closure-eligible at Work
// Completed.
func (s *ProgressService) CompleteWork(ctx context.Context, ticketNumber string, actor Actor, notes string) (*domain.Ticket, error) {
	return s.core.run(ctx, ticketNumber, func(t *domain.Ticket, tx *txn) error {
		if t.Status != domain.StatusAssigned && t.Status != domain.StatusInProgress {
			return apperrors.NewInvalidTransition("complete_work", string(t.Status))
		}
		if t.ActiveAssignee() == "" {
			return apperrors.NewInvalidTransition("complete_work", string(t.Status))
		}
		now := s.core.now()
		prev := t.Status
		t.Progress = domain.ProgressCompleted
		t.Resolution = domain.Resolution{
			Notes:      strings.TrimSpace(notes),
			ResolvedBy: actor.ID,
			ResolvedAt: &now,
		}
		if t.RequiresConfirmation {
			t.Status = domain.StatusAwaitingConfirmation
		} else {
			t.Status = domain.StatusWorkCompleted
		}
		tx.record(statusEntry(t, domain.EventWorkCompleted, "work_completed", actor, t.Resolution.Notes, prev, now))
		tx.emit(workflowEvent(t, events.EventWorkCompleted, actor, events.StatusChangedPayload{
			OldStatus: prev, NewStatus: t.Status, Detail: t.Resolution.Notes,
		}))
		return nil
	})
}

// ConfirmCompletion records the requesting user's sign-off. Valid only from
// Awaiting User Confirmation.
func (s *ProgressService) ConfirmCompletion(ctx context.Context, ticketNumber string, actor Actor, feedback string) (*domain.Ticket, error) {
	return s.core.run(ctx, ticketNumber, func(t *domain.Ticket, tx *txn) error {
		if t.Status != domain.StatusAwaitingConfirmation {
			return apperrors.NewInvalidTransition("confirm_completion", string(t.Status))
		}
		now := s.core.now()
		prev := t.Status
		t.Status = domain.StatusConfirmed
		t.UserConfirmedAt = &now
		tx.record(statusEntry(t, domain.EventConfirmed, "completion_confirmed", actor,
			strings.TrimSpace(feedback), prev, now))
		tx.emit(workflowEvent(t, events.EventTicketConfirmed, actor, events.StatusChangedPayload{
			OldStatus: prev, NewStatus: t.Status, Detail: strings.TrimSpace(feedback),
		}))
		return nil
	})
}
