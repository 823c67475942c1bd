package service

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/events"
	"github.com/spec-kit/request-workflow/internal/policy"
	apperrors "github.com/spec-kit/request-workflow/pkg/util"
)

// RoutingService resolves a post-approval ticket to its destination queues.
type RoutingService struct {
	core *Core
}

// NewRoutingService constructs the service.
func NewRoutingService(core *Core) *RoutingService {
	return &RoutingService{core: core}
}

// Route moves an approval-complete ticket into its processing and specialist
// queues. Fails with NotApprovable before approval completes. Idempotent: an
// already-routed ticket keeps its existing route; the destination is never
// re-derived for the same ticket.
func (s *RoutingService) Route(ctx context.Context, ticketNumber string, actor Actor) (*domain.Ticket, error) {
	return s.core.run(ctx, ticketNumber, func(t *domain.Ticket, tx *txn) error {
		if t.Route != nil {
			return nil
		}
		if !t.ApprovalCompleted {
			return apperrors.NewNotApprovable(t.TicketNumber)
		}
		if t.Status.Terminal() || t.Closed() {
			return apperrors.NewInvalidTransition("route", string(t.Status))
		}
		pol, err := s.core.policies.Resolve(t.Module, t.SubCategory)
		if err != nil {
			return err
		}
		if pol.SpecialistQueue == "" {
			return apperrors.NewPolicyNotFound(string(t.Module), t.SubCategory)
		}
		applyRoute(t, pol, actor, tx, s.core.now())
		return nil
	})
}

// applyRoute sets the routing block and walks the ticket through Routed into
// In Queue. Shared with intake for approval-bypassed tickets.
func applyRoute(t *domain.Ticket, pol policy.CategoryPolicy, actor Actor, tx *txn, now time.Time) {
	prev := t.Status
	t.Route = &domain.Route{
		ProcessingQueue: pol.ProcessingQueue,
		SpecialistQueue: pol.SpecialistQueue,
		RoutedAt:        now,
	}
	routedAt := now
	t.RoutedAt = &routedAt
	// Routed is transient: the ticket lands In Queue in the same command.
	t.Status = domain.StatusInQueue
	tx.record(statusEntry(t, domain.EventRouted, "ticket_routed", actor,
		fmt.Sprintf("routed to %s / %s", pol.ProcessingQueue, pol.SpecialistQueue), prev, now))
	tx.emit(workflowEvent(t, events.EventTicketRouted, actor, events.TicketRoutedPayload{
		ProcessingQueue: pol.ProcessingQueue,
		SpecialistQueue: pol.SpecialistQueue,
	}))
}
