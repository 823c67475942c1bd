package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/request-workflow/internal/domain"
	apperrors "github.com/spec-kit/request-workflow/pkg/util"
)

func TestRoute_AfterApproval(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.createTicket(t, domain.ModuleIT, "hardware")

	_, err := h.approvals.Decide(ctx, ticket.TicketNumber, DecisionInput{
		Level:    domain.LevelL1,
		Decision: domain.DecisionApproved,
		Actor:    Actor{ID: "mgr-1"},
	})
	require.NoError(t, err)

	routed, err := h.routing.Route(ctx, ticket.TicketNumber, Actor{ID: "sys"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusInQueue, routed.Status)
	require.NotNil(t, routed.Route)
	require.Equal(t, "it-processing", routed.Route.ProcessingQueue)
	require.Equal(t, "it-hardware", routed.Route.SpecialistQueue)
	require.NotNil(t, routed.RoutedAt)
}

func TestRoute_BeforeApprovalFails(t *testing.T) {
	h := newHarness(t)
	ticket := h.createTicket(t, domain.ModuleIT, "hardware")

	_, err := h.routing.Route(context.Background(), ticket.TicketNumber, Actor{ID: "sys"})
	require.True(t, apperrors.HasCode(err, apperrors.CodeNotApprovable))
}

func TestRoute_Idempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.createTicket(t, domain.ModuleIT, "software")
	require.NotNil(t, ticket.Route)
	firstRoutedAt := ticket.Route.RoutedAt

	h.clock.Advance(time.Hour)
	again, err := h.routing.Route(ctx, ticket.TicketNumber, Actor{ID: "sys"})
	require.NoError(t, err)
	require.Equal(t, firstRoutedAt, again.Route.RoutedAt)

	kinds := h.historyKinds(t, ticket.ID)
	routedCount := 0
	for _, kind := range kinds {
		if kind == domain.EventRouted {
			routedCount++
		}
	}
	require.Equal(t, 1, routedCount)
}

func TestRoute_PolicyGap(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	// maintenance has no specialist queue configured
	ticket := h.createTicket(t, domain.ModuleFacilities, "maintenance")
	require.Equal(t, domain.StatusApproved, ticket.Status)

	_, err := h.routing.Route(ctx, ticket.TicketNumber, Actor{ID: "sys"})
	require.True(t, apperrors.HasCode(err, apperrors.CodePolicyNotFound))

	// the failed command left no mutation behind
	unchanged, _, err := h.intake.History(ctx, ticket.TicketNumber)
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, unchanged.Status)
	require.Nil(t, unchanged.Route)
}

func TestRoute_RoutedImpliesApprovalCompleted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, sub := range []string{"hardware", "software"} {
		ticket := h.createTicket(t, domain.ModuleIT, sub)
		if ticket.RequiresApproval {
			_, err := h.approvals.Decide(ctx, ticket.TicketNumber, DecisionInput{
				Level:    domain.LevelL1,
				Decision: domain.DecisionApproved,
				Actor:    Actor{ID: "mgr-1"},
			})
			require.NoError(t, err)
			_, err = h.routing.Route(ctx, ticket.TicketNumber, Actor{ID: "sys"})
			require.NoError(t, err)
		}
		current, _, err := h.intake.History(ctx, ticket.TicketNumber)
		require.NoError(t, err)
		if current.Route != nil {
			require.True(t, current.ApprovalCompleted)
		}
	}
}
