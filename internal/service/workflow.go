package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/events"
	"github.com/spec-kit/request-workflow/internal/policy"
	"github.com/spec-kit/request-workflow/internal/repository"
	apperrors "github.com/spec-kit/request-workflow/pkg/util"
)

// Actor identifies who issued a workflow command.
type Actor struct {
	ID   string
	Name string
}

// Core bundles the collaborators every workflow service shares: the ticket
// store, the policy table, the per-ticket lock registry, the event dispatcher
// and the clock.
type Core struct {
	tickets    repository.TicketRepository
	history    repository.HistoryRepository
	dispatcher events.Dispatcher
	policies   *policy.Table
	locks      *TicketLocks
	now        func() time.Time
}

// CoreDependencies bundles construction inputs for Core.
type CoreDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.HistoryRepository
	Dispatcher  events.Dispatcher
	Policies    *policy.Table
	Locks       *TicketLocks
	Clock       func() time.Time
}

// NewCore constructs the shared workflow core.
func NewCore(deps CoreDependencies) *Core {
	core := &Core{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		policies:   deps.Policies,
		locks:      deps.Locks,
		now:        deps.Clock,
	}
	if core.locks == nil {
		core.locks = NewTicketLocks()
	}
	if core.now == nil {
		core.now = time.Now
	}
	return core
}

// txn accumulates the history entries and post-commit events of one command.
// Nothing in it becomes observable unless the repository write succeeds.
type txn struct {
	entries   []domain.HistoryEntry
	published []events.Event
}

func (tx *txn) record(entry domain.HistoryEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	tx.entries = append(tx.entries, entry)
}

func (tx *txn) emit(event events.Event) {
	tx.published = append(tx.published, event)
}

// run executes one mutating command under the ticket's exclusive lock:
// load, apply, persist aggregate + history in one repository transaction,
// then publish events. A command error leaves zero mutation behind.
func (c *Core) run(ctx context.Context, ticketNumber string, fn func(t *domain.Ticket, tx *txn) error) (*domain.Ticket, error) {
	unlock := c.locks.Lock(ticketNumber)
	defer unlock()

	ticket, err := c.getByNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	tx := &txn{}
	if err := fn(ticket, tx); err != nil {
		return nil, err
	}
	if err := c.tickets.Update(ctx, ticket, tx.entries); err != nil {
		return nil, apperrors.MapError(err)
	}
	c.publishAll(ctx, tx.published)
	return ticket, nil
}

func (c *Core) getByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	ticket, err := c.tickets.GetByNumber(ctx, ticketNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_number": ticketNumber})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (c *Core) publishAll(ctx context.Context, published []events.Event) {
	if c.dispatcher == nil {
		return
	}
	for _, event := range published {
		if event.ID == "" {
			event.ID = uuid.NewString()
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = c.now()
		}
		_ = c.dispatcher.Publish(ctx, event)
	}
}

// statusEntry builds a history entry for a status transition.
func statusEntry(t *domain.Ticket, kind domain.EventKind, action string, actor Actor, detail string, prev domain.TicketStatus, at time.Time) domain.HistoryEntry {
	prevCopy := prev
	newCopy := t.Status
	return domain.HistoryEntry{
		TicketID:   t.ID,
		Kind:       kind,
		Action:     action,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Detail:     detail,
		PrevStatus: &prevCopy,
		NewStatus:  &newCopy,
		CreatedAt:  at,
	}
}

func workflowEvent(t *domain.Ticket, eventType events.EventType, actor Actor, payload any) events.Event {
	return events.Event{
		Type:         eventType,
		TicketID:     t.ID,
		TicketNumber: t.TicketNumber,
		Actor:        events.Actor{ID: actor.ID, Name: actor.Name},
		Payload:      payload,
	}
}
