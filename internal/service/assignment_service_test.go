package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/request-workflow/internal/domain"
	apperrors "github.com/spec-kit/request-workflow/pkg/util"
)

func TestAssign_FromInQueue(t *testing.T) {
	h := newHarness(t)
	ticket := h.createTicket(t, domain.ModuleIT, "software")

	assigned, err := h.assignments.AssignToSpecialist(context.Background(), ticket.TicketNumber, AssignInput{
		SpecialistID:   "spec-1",
		SpecialistName: "Kim Park",
		Actor:          Actor{ID: "coord-1"},
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusAssigned, assigned.Status)
	require.Equal(t, "spec-1", assigned.ActiveAssignee())
	require.Equal(t, "Kim Park", assigned.Assignment.AssigneeName)
	// queue defaults to the routed specialist queue
	require.Equal(t, "it-software", assigned.Assignment.Queue)
	require.Equal(t, domain.ProgressNotStarted, assigned.Progress)
}

func TestAssign_BeforeQueueFails(t *testing.T) {
	h := newHarness(t)
	ticket := h.createTicket(t, domain.ModuleIT, "hardware")

	_, err := h.assignments.AssignToSpecialist(context.Background(), ticket.TicketNumber, AssignInput{
		SpecialistID: "spec-1",
		Actor:        Actor{ID: "coord-1"},
	})
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestAssign_RequiresSpecialistID(t *testing.T) {
	h := newHarness(t)
	ticket := h.createTicket(t, domain.ModuleIT, "software")

	_, err := h.assignments.AssignToSpecialist(context.Background(), ticket.TicketNumber, AssignInput{
		Actor: Actor{ID: "coord-1"},
	})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestReassign_RecordsPreviousAssignee(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.assignedTicket(t)

	reassigned, err := h.assignments.Reassign(ctx, ticket.TicketNumber, ReassignInput{
		SpecialistID:   "spec-2",
		SpecialistName: "Ana Costa",
		Reason:         "on leave",
		Actor:          Actor{ID: "coord-1"},
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusAssigned, reassigned.Status)
	require.Equal(t, "spec-2", reassigned.ActiveAssignee())

	entries, err := h.store.History().ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	require.Equal(t, domain.EventReassigned, last.Kind)
	require.Contains(t, last.Detail, "Kim Park")
	require.Contains(t, last.Detail, "Ana Costa")
}

func TestReassign_WhileInProgress(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.assignedTicket(t)

	_, err := h.progress.StartWork(ctx, ticket.TicketNumber, Actor{ID: "spec-1"})
	require.NoError(t, err)

	reassigned, err := h.assignments.Reassign(ctx, ticket.TicketNumber, ReassignInput{
		SpecialistID:   "spec-2",
		SpecialistName: "Ana Costa",
		Actor:          Actor{ID: "coord-1"},
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusAssigned, reassigned.Status)
}

func TestReassign_ClosedTicketFails(t *testing.T) {
	h := newHarness(t)
	ticket := h.closedTicket(t)

	_, err := h.assignments.Reassign(context.Background(), ticket.TicketNumber, ReassignInput{
		SpecialistID: "spec-2",
		Actor:        Actor{ID: "coord-1"},
	})
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestAssign_AfterReopen(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.closedTicket(t)

	reopened, err := h.closures.Reopen(ctx, ticket.TicketNumber, Actor{ID: "emp-1"}, "issue came back")
	require.NoError(t, err)
	require.Equal(t, domain.StatusReopened, reopened.Status)
	require.Empty(t, reopened.ActiveAssignee())

	assigned, err := h.assignments.AssignToSpecialist(ctx, ticket.TicketNumber, AssignInput{
		SpecialistID:   "spec-3",
		SpecialistName: "Sam Okafor",
		Actor:          Actor{ID: "coord-1"},
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusAssigned, assigned.Status)
	require.Equal(t, "spec-3", assigned.ActiveAssignee())
}
