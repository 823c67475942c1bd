package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/events"
	"github.com/spec-kit/request-workflow/internal/policy"
	"github.com/spec-kit/request-workflow/internal/repository"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	store       *repository.MemoryStore
	clock       *fakeClock
	dispatcher  events.Dispatcher
	intake      *IntakeService
	approvals   *ApprovalService
	routing     *RoutingService
	assignments *AssignmentService
	progress    *ProgressService
	closures    *ClosureService

	mu        sync.Mutex
	published []events.Event
}

func testPolicies() []policy.CategoryPolicy {
	return []policy.CategoryPolicy{
		{
			Module:               domain.ModuleIT,
			SubCategory:          "hardware",
			RequiresApproval:     true,
			ApprovalLevels:       1,
			ProcessingQueue:      "it-processing",
			SpecialistQueue:      "it-hardware",
			RequiresConfirmation: true,
			ApprovalSLAHours:     24,
			ProcessingSLAHours:   72,
		},
		{
			Module:             domain.ModuleIT,
			SubCategory:        "software",
			RequiresApproval:   false,
			ProcessingQueue:    "it-processing",
			SpecialistQueue:    "it-software",
			ProcessingSLAHours: 1,
			AutoCloseOnBreach:  true,
		},
		{
			Module:           domain.ModuleFinance,
			SubCategory:      "budget",
			RequiresApproval: true,
			ApprovalLevels:   3,
			ProcessingQueue:  "fin-processing",
			SpecialistQueue:  "fin-budget",
		},
		{
			Module:           domain.ModuleFacilities,
			SubCategory:      "maintenance",
			RequiresApproval: false,
		},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	table, err := policy.NewTable(testPolicies())
	require.NoError(t, err)

	h := &harness{
		store:      repository.NewMemoryStore(),
		clock:      &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		dispatcher: events.NewInMemoryDispatcher(),
	}
	h.dispatcher.SubscribeAll(func(ctx context.Context, event events.Event) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.published = append(h.published, event)
		return nil
	})

	core := NewCore(CoreDependencies{
		TicketRepo:  h.store.Tickets(),
		HistoryRepo: h.store.History(),
		Dispatcher:  h.dispatcher,
		Policies:    table,
		Clock:       h.clock.Now,
	})
	h.intake = NewIntakeService(IntakeDependencies{
		Core:             core,
		ConversationRepo: h.store.Conversations(),
		DefaultSLA:       domain.SLABudget{ApprovalHours: 24, ProcessingHours: 72},
	})
	h.approvals = NewApprovalService(core)
	h.routing = NewRoutingService(core)
	h.assignments = NewAssignmentService(core)
	h.progress = NewProgressService(core)
	h.closures = NewClosureService(core)
	return h
}

func (h *harness) publishedTypes() []events.EventType {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]events.EventType, 0, len(h.published))
	for _, event := range h.published {
		types = append(types, event.Type)
	}
	return types
}

func (h *harness) historyKinds(t *testing.T, ticketID string) []domain.EventKind {
	t.Helper()
	entries, err := h.store.History().ListByTicket(context.Background(), ticketID)
	require.NoError(t, err)
	kinds := make([]domain.EventKind, 0, len(entries))
	for _, entry := range entries {
		kinds = append(kinds, entry.Kind)
	}
	return kinds
}

func (h *harness) createTicket(t *testing.T, module domain.Module, subCategory string) *domain.Ticket {
	t.Helper()
	ticket, err := h.intake.CreateTicket(context.Background(), TicketCreateInput{
		Module:      module,
		SubCategory: subCategory,
		Subject:     "test request",
		Description: "details",
		Urgency:     domain.UrgencyMedium,
		Requester:   domain.Requester{ID: "emp-1", Name: "Dana Reyes"},
	})
	require.NoError(t, err)
	return ticket
}

// assignedTicket walks a software ticket (no approval, auto-routed) to Assigned.
func (h *harness) assignedTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket := h.createTicket(t, domain.ModuleIT, "software")
	require.Equal(t, domain.StatusInQueue, ticket.Status)
	assigned, err := h.assignments.AssignToSpecialist(context.Background(), ticket.TicketNumber, AssignInput{
		SpecialistID:   "spec-1",
		SpecialistName: "Kim Park",
		Actor:          Actor{ID: "coord-1", Name: "Coordinator"},
	})
	require.NoError(t, err)
	return assigned
}

// closedTicket walks a software ticket all the way to Closed.
func (h *harness) closedTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket := h.assignedTicket(t)
	ctx := context.Background()
	_, err := h.progress.StartWork(ctx, ticket.TicketNumber, Actor{ID: "spec-1"})
	require.NoError(t, err)
	_, err = h.progress.CompleteWork(ctx, ticket.TicketNumber, Actor{ID: "spec-1"}, "done")
	require.NoError(t, err)
	closed, err := h.closures.Close(ctx, ticket.TicketNumber, Actor{ID: "spec-1"}, "")
	require.NoError(t, err)
	return closed
}
