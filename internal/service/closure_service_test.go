package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/request-workflow/internal/domain"
	apperrors "github.com/spec-kit/request-workflow/pkg/util"
)

// Full lifecycle of a confirmation-gated IT request: submit, approve, route,
// assign, complete, confirm, close.
func TestFullLifecycle_HardwareRequest(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.createTicket(t, domain.ModuleIT, "hardware")

	_, err := h.approvals.Decide(ctx, ticket.TicketNumber, DecisionInput{
		Level: domain.LevelL1, Decision: domain.DecisionApproved, Actor: Actor{ID: "mgr-1", Name: "Li Chen"},
	})
	require.NoError(t, err)
	_, err = h.routing.Route(ctx, ticket.TicketNumber, Actor{ID: "sys"})
	require.NoError(t, err)
	_, err = h.assignments.AssignToSpecialist(ctx, ticket.TicketNumber, AssignInput{
		SpecialistID: "spec-1", SpecialistName: "Kim Park", Actor: Actor{ID: "coord-1"},
	})
	require.NoError(t, err)
	_, err = h.progress.StartWork(ctx, ticket.TicketNumber, Actor{ID: "spec-1"})
	require.NoError(t, err)
	_, err = h.progress.CompleteWork(ctx, ticket.TicketNumber, Actor{ID: "spec-1"}, "laptop delivered")
	require.NoError(t, err)
	_, err = h.progress.ConfirmCompletion(ctx, ticket.TicketNumber, Actor{ID: "emp-1"}, "all good")
	require.NoError(t, err)

	closed, err := h.closures.Close(ctx, ticket.TicketNumber, Actor{ID: "spec-1"}, "delivered and confirmed")
	require.NoError(t, err)
	require.Equal(t, domain.StatusClosed, closed.Status)
	require.Equal(t, domain.ReasonConfirmed, closed.ClosingReason)
	require.NotNil(t, closed.ClosedAt)

	kinds := h.historyKinds(t, ticket.ID)
	require.Equal(t, []domain.EventKind{
		domain.EventSubmitted,
		domain.EventApprovalOpened,
		domain.EventApproved,
		domain.EventRouted,
		domain.EventAssigned,
		domain.EventWorkStarted,
		domain.EventWorkCompleted,
		domain.EventConfirmed,
		domain.EventClosed,
	}, kinds)
}

func TestClose_WithoutConfirmationGate(t *testing.T) {
	h := newHarness(t)
	ticket := h.closedTicket(t)
	require.Equal(t, domain.StatusClosed, ticket.Status)
	require.Equal(t, domain.ReasonManual, ticket.ClosingReason)
}

func TestClose_InvalidStates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	queued := h.createTicket(t, domain.ModuleIT, "software")
	_, err := h.closures.Close(ctx, queued.TicketNumber, Actor{ID: "spec-1"}, "")
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	closed := h.closedTicket(t)
	_, err = h.closures.Close(ctx, closed.TicketNumber, Actor{ID: "spec-1"}, "")
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestCancel_NonTerminalTicket(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.createTicket(t, domain.ModuleIT, "hardware")

	cancelled, err := h.closures.Cancel(ctx, ticket.TicketNumber, Actor{ID: "emp-1"}, "no longer needed")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.Equal(t, domain.ReasonCancelled, cancelled.ClosingReason)

	// cancellation is non-recoverable
	_, err = h.closures.Reopen(ctx, ticket.TicketNumber, Actor{ID: "emp-1"}, "")
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
	_, err = h.closures.Cancel(ctx, ticket.TicketNumber, Actor{ID: "emp-1"}, "again")
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestAutoClose(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.assignedTicket(t)

	closed, err := h.closures.AutoClose(ctx, ticket.TicketNumber, "processing SLA breached by 2h")
	require.NoError(t, err)
	require.Equal(t, domain.StatusAutoClosed, closed.Status)
	require.Equal(t, domain.ReasonAutoClosed, closed.ClosingReason)
	require.Equal(t, "system", closed.ClosedBy)

	// auto-closed tickets are reopenable like manually closed ones
	reopened, err := h.closures.Reopen(ctx, ticket.TicketNumber, Actor{ID: "emp-1"}, "not actually done")
	require.NoError(t, err)
	require.Equal(t, domain.StatusReopened, reopened.Status)
}

func TestReopen_StartsNewCycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.closedTicket(t)

	reopened, err := h.closures.Reopen(ctx, ticket.TicketNumber, Actor{ID: "emp-1"}, "issue came back")
	require.NoError(t, err)
	require.Equal(t, domain.StatusReopened, reopened.Status)
	require.Equal(t, 1, reopened.ReopenCount)
	// approval is never repeated; routing survives
	require.True(t, reopened.ApprovalCompleted)
	require.NotNil(t, reopened.Route)
	// work state resets for the new cycle
	require.Empty(t, reopened.ActiveAssignee())
	require.Equal(t, domain.ProgressNotStarted, reopened.Progress)
	require.Nil(t, reopened.ClosedAt)
	require.Empty(t, reopened.ClosingReason)
	require.Nil(t, reopened.UserConfirmedAt)
}

func TestReopen_TwiceWithoutCloseFails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.closedTicket(t)

	_, err := h.closures.Reopen(ctx, ticket.TicketNumber, Actor{ID: "emp-1"}, "round two")
	require.NoError(t, err)
	_, err = h.closures.Reopen(ctx, ticket.TicketNumber, Actor{ID: "emp-1"}, "round three")
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestReopen_MultipleCycles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.closedTicket(t)

	for cycle := 1; cycle <= 2; cycle++ {
		reopened, err := h.closures.Reopen(ctx, ticket.TicketNumber, Actor{ID: "emp-1"}, "again")
		require.NoError(t, err)
		require.Equal(t, cycle, reopened.ReopenCount)

		_, err = h.assignments.AssignToSpecialist(ctx, ticket.TicketNumber, AssignInput{
			SpecialistID: "spec-2", SpecialistName: "Ana Costa", Actor: Actor{ID: "coord-1"},
		})
		require.NoError(t, err)
		_, err = h.progress.StartWork(ctx, ticket.TicketNumber, Actor{ID: "spec-2"})
		require.NoError(t, err)
		_, err = h.progress.CompleteWork(ctx, ticket.TicketNumber, Actor{ID: "spec-2"}, "fixed again")
		require.NoError(t, err)
		closed, err := h.closures.Close(ctx, ticket.TicketNumber, Actor{ID: "spec-2"}, "")
		require.NoError(t, err)
		require.Equal(t, domain.StatusClosed, closed.Status)
	}

	kinds := h.historyKinds(t, ticket.ID)
	reopenCount := 0
	for _, kind := range kinds {
		if kind == domain.EventReopened {
			reopenCount++
		}
	}
	require.Equal(t, 2, reopenCount)
}

// History entry timestamps never go backwards within one ticket.
func TestHistory_Monotone(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.assignedTicket(t)
	h.clock.Advance(time.Minute)
	_, err := h.progress.StartWork(ctx, ticket.TicketNumber, Actor{ID: "spec-1"})
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	_, err = h.progress.CompleteWork(ctx, ticket.TicketNumber, Actor{ID: "spec-1"}, "done")
	require.NoError(t, err)

	entries, err := h.store.History().ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	for i := 1; i < len(entries); i++ {
		require.False(t, entries[i].CreatedAt.Before(entries[i-1].CreatedAt))
	}
}
