package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/request-workflow/internal/domain"
	apperrors "github.com/spec-kit/request-workflow/pkg/util"
)

func TestStartWork(t *testing.T) {
	h := newHarness(t)
	ticket := h.assignedTicket(t)

	started, err := h.progress.StartWork(context.Background(), ticket.TicketNumber, Actor{ID: "spec-1"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusInProgress, started.Status)
	require.Equal(t, domain.ProgressInProgress, started.Progress)
}

func TestStartWork_BeforeAssignmentFails(t *testing.T) {
	h := newHarness(t)
	ticket := h.createTicket(t, domain.ModuleIT, "software")

	_, err := h.progress.StartWork(context.Background(), ticket.TicketNumber, Actor{ID: "spec-1"})
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestPauseAndResume(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.assignedTicket(t)

	_, err := h.progress.StartWork(ctx, ticket.TicketNumber, Actor{ID: "spec-1"})
	require.NoError(t, err)

	paused, err := h.progress.Pause(ctx, ticket.TicketNumber, Actor{ID: "spec-1"}, "waiting on parts")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaused, paused.Status)
	require.Equal(t, domain.ProgressOnHold, paused.Progress)
	require.Equal(t, "waiting on parts", paused.PauseReason)

	// completion is blocked while paused
	_, err = h.progress.CompleteWork(ctx, ticket.TicketNumber, Actor{ID: "spec-1"}, "done")
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	resumed, err := h.progress.Resume(ctx, ticket.TicketNumber, Actor{ID: "spec-1"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusInProgress, resumed.Status)
	require.Empty(t, resumed.PauseReason)
}

func TestCompleteWork_WithoutConfirmationGate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.assignedTicket(t)

	_, err := h.progress.StartWork(ctx, ticket.TicketNumber, Actor{ID: "spec-1"})
	require.NoError(t, err)
	completed, err := h.progress.CompleteWork(ctx, ticket.TicketNumber, Actor{ID: "spec-1"}, "reinstalled")
	require.NoError(t, err)
	require.Equal(t, domain.StatusWorkCompleted, completed.Status)
	require.Equal(t, domain.ProgressCompleted, completed.Progress)
	require.Equal(t, "reinstalled", completed.Resolution.Notes)
	require.Equal(t, "spec-1", completed.Resolution.ResolvedBy)
}

func TestCompleteWork_WithConfirmationGate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.createTicket(t, domain.ModuleIT, "hardware")

	_, err := h.approvals.Decide(ctx, ticket.TicketNumber, DecisionInput{
		Level: domain.LevelL1, Decision: domain.DecisionApproved, Actor: Actor{ID: "mgr-1"},
	})
	require.NoError(t, err)
	_, err = h.routing.Route(ctx, ticket.TicketNumber, Actor{ID: "sys"})
	require.NoError(t, err)
	_, err = h.assignments.AssignToSpecialist(ctx, ticket.TicketNumber, AssignInput{
		SpecialistID: "spec-1", SpecialistName: "Kim Park", Actor: Actor{ID: "coord-1"},
	})
	require.NoError(t, err)

	completed, err := h.progress.CompleteWork(ctx, ticket.TicketNumber, Actor{ID: "spec-1"}, "replaced keyboard")
	require.NoError(t, err)
	require.Equal(t, domain.StatusAwaitingConfirmation, completed.Status)

	// close is gated on the user's sign-off
	_, err = h.closures.Close(ctx, ticket.TicketNumber, Actor{ID: "spec-1"}, "")
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	confirmed, err := h.progress.ConfirmCompletion(ctx, ticket.TicketNumber, Actor{ID: "emp-1"}, "works now")
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.UserConfirmedAt)
}

func TestCompleteWork_DirectlyFromAssigned(t *testing.T) {
	h := newHarness(t)
	ticket := h.assignedTicket(t)

	completed, err := h.progress.CompleteWork(context.Background(), ticket.TicketNumber, Actor{ID: "spec-1"}, "quick fix")
	require.NoError(t, err)
	require.Equal(t, domain.StatusWorkCompleted, completed.Status)
}

func TestConfirmCompletion_WrongStateFails(t *testing.T) {
	h := newHarness(t)
	ticket := h.assignedTicket(t)

	_, err := h.progress.ConfirmCompletion(context.Background(), ticket.TicketNumber, Actor{ID: "emp-1"}, "")
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}
