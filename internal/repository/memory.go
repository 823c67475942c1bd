package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/request-workflow/internal/domain"
)

// MemoryStore backs the repository interfaces with process memory. It serves
// tests and the DSN-less bootstrap path; like the database implementations,
// Create/Update apply the aggregate and its history entries atomically.
type MemoryStore struct {
	mu       sync.RWMutex
	tickets  map[string]*domain.Ticket
	byNumber map[string]string
	history  map[string][]domain.HistoryEntry
	messages map[string][]domain.Message
	audit    map[string][]domain.AuditRecord
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tickets:  make(map[string]*domain.Ticket),
		byNumber: make(map[string]string),
		history:  make(map[string][]domain.HistoryEntry),
		messages: make(map[string][]domain.Message),
		audit:    make(map[string][]domain.AuditRecord),
	}
}

// Tickets returns the store as a TicketRepository.
func (s *MemoryStore) Tickets() TicketRepository { return (*memoryTickets)(s) }

// History returns the store as a HistoryRepository.
func (s *MemoryStore) History() HistoryRepository { return (*memoryHistory)(s) }

// Conversations returns the store as a ConversationRepository.
func (s *MemoryStore) Conversations() ConversationRepository { return (*memoryConversations)(s) }

// Audit returns the store as an AuditRepository.
func (s *MemoryStore) Audit() AuditRepository { return (*memoryAudit)(s) }

type memoryTickets MemoryStore

func (m *memoryTickets) Create(ctx context.Context, ticket *domain.Ticket, entries []domain.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	m.tickets[ticket.ID] = cloneTicket(ticket)
	m.byNumber[ticket.TicketNumber] = ticket.ID
	m.history[ticket.ID] = append(m.history[ticket.ID], entries...)
	return nil
}

func (m *memoryTickets) Update(ctx context.Context, ticket *domain.Ticket, entries []domain.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	m.tickets[ticket.ID] = cloneTicket(ticket)
	m.history[ticket.ID] = append(m.history[ticket.ID], entries...)
	return nil
}

func (m *memoryTickets) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneTicket(ticket), nil
}

func (m *memoryTickets) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byNumber[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneTicket(m.tickets[id]), nil
}

func (m *memoryTickets) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []domain.Ticket
	for _, ticket := range m.tickets {
		if !matchesFilter(ticket, filter) {
			continue
		}
		result = append(result, *cloneTicket(ticket))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(result) {
		return nil, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

func (m *memoryTickets) ListActive(ctx context.Context) ([]domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []domain.Ticket
	for _, ticket := range m.tickets {
		if ticket.Status.Terminal() {
			continue
		}
		result = append(result, *cloneTicket(ticket))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func matchesFilter(ticket *domain.Ticket, filter TicketFilter) bool {
	if len(filter.Modules) > 0 && !containsModule(filter.Modules, ticket.Module) {
		return false
	}
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
		return false
	}
	if len(filter.Urgencies) > 0 && !containsUrgency(filter.Urgencies, ticket.Urgency) {
		return false
	}
	if filter.RequesterID != nil && ticket.Requester.ID != *filter.RequesterID {
		return false
	}
	if filter.AssigneeID != nil && ticket.ActiveAssignee() != *filter.AssigneeID {
		return false
	}
	if filter.Queue != nil {
		if ticket.Route == nil || ticket.Route.SpecialistQueue != *filter.Queue {
			return false
		}
	}
	return true
}

func containsModule(list []domain.Module, v domain.Module) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsStatus(list []domain.TicketStatus, v domain.TicketStatus) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsUrgency(list []domain.Urgency, v domain.Urgency) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

type memoryHistory MemoryStore

func (m *memoryHistory) ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.history[ticketID]
	out := make([]domain.HistoryEntry, len(entries))
	copy(out, entries)
	return out, nil
}

type memoryConversations MemoryStore

func (m *memoryConversations) Create(ctx context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	m.messages[msg.TicketID] = append(m.messages[msg.TicketID], *msg)
	return nil
}

func (m *memoryConversations) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.messages[ticketID]
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

type memoryAudit MemoryStore

func (m *memoryAudit) Append(ctx context.Context, record *domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	m.audit[record.TicketID] = append(m.audit[record.TicketID], *record)
	return nil
}

func (m *memoryAudit) ListByTicket(ctx context.Context, ticketID string, limit int) ([]domain.AuditRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := m.audit[ticketID]
	out := make([]domain.AuditRecord, len(records))
	copy(out, records)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func cloneTicket(t *domain.Ticket) *domain.Ticket {
	clone := *t
	clone.Approvals = append([]domain.ApprovalRecord(nil), t.Approvals...)
	if t.Route != nil {
		route := *t.Route
		clone.Route = &route
	}
	if t.Assignment.AssigneeID != nil {
		id := *t.Assignment.AssigneeID
		clone.Assignment.AssigneeID = &id
	}
	clone.UserConfirmedAt = cloneTime(t.UserConfirmedAt)
	clone.Resolution.ResolvedAt = cloneTime(t.Resolution.ResolvedAt)
	clone.Assignment.AssignedAt = cloneTime(t.Assignment.AssignedAt)
	clone.ClosedAt = cloneTime(t.ClosedAt)
	clone.RoutedAt = cloneTime(t.RoutedAt)
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
