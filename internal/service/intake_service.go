package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/request-workflow/internal/cache"
	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/events"
	"github.com/spec-kit/request-workflow/internal/repository"
	apperrors "github.com/spec-kit/request-workflow/pkg/util"
)

// IntakeService creates tickets and owns the read path (listing, detail,
// conversation). Creation performs the policy lookup and the initial approval
// submit in one step.
type IntakeService struct {
	core          *Core
	conversations repository.ConversationRepository
	listCache     cache.ListCache
	defaultSLA    domain.SLABudget
}

// IntakeDependencies bundles inputs for the intake service.
type IntakeDependencies struct {
	Core             *Core
	ConversationRepo repository.ConversationRepository
	ListCache        cache.ListCache
	DefaultSLA       domain.SLABudget
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	return &IntakeService{
		core:          deps.Core,
		conversations: deps.ConversationRepo,
		listCache:     deps.ListCache,
		defaultSLA:    deps.DefaultSLA,
	}
}

// TicketCreateInput describes the intake payload.
type TicketCreateInput struct {
	Module      domain.Module
	SubCategory string
	Subject     string
	Description string
	Urgency     domain.Urgency
	Requester   domain.Requester
}

// CreateTicket runs intake: policy lookup, approval submit (or bypass), and,
// for bypassed tickets with a configured queue, immediate routing. A missing
// policy entry never blocks creation; the ticket degrades to no-approval and
// stays unrouted until the policy gap is fixed.
func (s *IntakeService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if !input.Module.Valid() {
		return nil, apperrors.NewValidationError("unknown module", map[string]any{"module": input.Module})
	}
	if strings.TrimSpace(input.Subject) == "" || strings.TrimSpace(input.SubCategory) == "" {
		return nil, apperrors.NewValidationError("subject and sub_category required", nil)
	}
	if strings.TrimSpace(input.Requester.ID) == "" {
		return nil, apperrors.NewValidationError("requester id required", nil)
	}
	if input.Urgency == "" {
		input.Urgency = domain.UrgencyMedium
	}

	now := s.core.now()
	ticket := &domain.Ticket{
		ID:           uuid.NewString(),
		TicketNumber: generateTicketNumber(input.Module),
		Module:       input.Module,
		SubCategory:  strings.TrimSpace(input.SubCategory),
		Subject:      strings.TrimSpace(input.Subject),
		Description:  strings.TrimSpace(input.Description),
		Urgency:      input.Urgency,
		Requester:    input.Requester,
		Progress:     domain.ProgressNotStarted,
		Status:       domain.StatusSubmitted,
		SLA:          s.defaultSLA,
		SubmittedAt:  now,
	}

	var policyFound bool
	pol, err := s.core.policies.Resolve(input.Module, input.SubCategory)
	switch {
	case err == nil:
		policyFound = true
		ticket.RequiresApproval = pol.RequiresApproval
		ticket.RequiredLevels = pol.ApprovalLevels
		ticket.RequiresConfirmation = pol.RequiresConfirmation
		if pol.ApprovalSLAHours > 0 {
			ticket.SLA.ApprovalHours = pol.ApprovalSLAHours
		}
		if pol.ProcessingSLAHours > 0 {
			ticket.SLA.ProcessingHours = pol.ProcessingSLAHours
		}
		ticket.SLA.AutoCloseOnBreach = pol.AutoCloseOnBreach
	case apperrors.HasCode(err, apperrors.CodePolicyNotFound):
		// intake must never be blocked by a configuration gap
		ticket.RequiresApproval = false
	default:
		return nil, apperrors.MapError(err)
	}

	tx := &txn{}
	submittedStatus := ticket.Status
	tx.record(domain.HistoryEntry{
		TicketID:  ticket.ID,
		Kind:      domain.EventSubmitted,
		Action:    "ticket_submitted",
		ActorID:   input.Requester.ID,
		ActorName: input.Requester.Name,
		Detail:    ticket.Subject,
		NewStatus: &submittedStatus,
		CreatedAt: now,
	})
	tx.emit(workflowEvent(ticket, events.EventTicketCreated, Actor{ID: input.Requester.ID, Name: input.Requester.Name}, events.TicketCreatedPayload{
		Module:           ticket.Module,
		SubCategory:      ticket.SubCategory,
		Urgency:          ticket.Urgency,
		RequiresApproval: ticket.RequiresApproval,
		RequesterID:      input.Requester.ID,
	}))

	requester := Actor{ID: input.Requester.ID, Name: input.Requester.Name}
	if ticket.RequiresApproval {
		openApprovalLevel(ticket, domain.LevelL1, requester, tx, now)
	} else {
		bypassApproval(ticket, requester, tx, now)
		if policyFound && pol.SpecialistQueue != "" {
			applyRoute(ticket, pol, requester, tx, now)
		}
	}

	if err := s.core.tickets.Create(ctx, ticket, tx.entries); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.core.publishAll(ctx, tx.published)
	return ticket, nil
}

// ListTickets serves filtered listings through the read-through cache.
func (s *IntakeService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	key := cache.FilterKey(filter)
	if s.listCache != nil {
		if tickets, ok := s.listCache.Get(ctx, key); ok {
			return tickets, nil
		}
	}
	tickets, err := s.core.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.listCache != nil {
		s.listCache.Set(ctx, key, tickets)
	}
	return tickets, nil
}

// GetTicket returns the aggregate with its conversation and history.
func (s *IntakeService) GetTicket(ctx context.Context, ticketNumber string) (*domain.Ticket, []domain.Message, []domain.HistoryEntry, error) {
	ticket, err := s.core.getByNumber(ctx, ticketNumber)
	if err != nil {
		return nil, nil, nil, err
	}
	msgs, err := s.conversations.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	history, err := s.core.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	return ticket, msgs, history, nil
}

// History returns the raw audit trail for a ticket.
func (s *IntakeService) History(ctx context.Context, ticketNumber string) (*domain.Ticket, []domain.HistoryEntry, error) {
	ticket, err := s.core.getByNumber(ctx, ticketNumber)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.core.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, history, nil
}

// MessageInput describes a conversation append.
type MessageInput struct {
	SenderRole  domain.SenderRole
	SenderName  string
	Body        string
	Attachments []domain.AttachmentReference
}

// AddMessage appends to the conversation thread. Allowed at any non-closed
// status; independent of workflow transitions.
func (s *IntakeService) AddMessage(ctx context.Context, ticketNumber string, input MessageInput) (*domain.Message, error) {
	if strings.TrimSpace(input.Body) == "" {
		return nil, apperrors.NewValidationError("message body required", nil)
	}
	ticket, err := s.core.getByNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	if ticket.Closed() || ticket.Status == domain.StatusCancelled {
		return nil, apperrors.NewInvalidTransition("add_message", string(ticket.Status))
	}

	msg := &domain.Message{
		ID:          uuid.NewString(),
		TicketID:    ticket.ID,
		SenderRole:  input.SenderRole,
		SenderName:  input.SenderName,
		Body:        strings.TrimSpace(input.Body),
		Attachments: input.Attachments,
		CreatedAt:   s.core.now(),
	}
	for i := range msg.Attachments {
		if msg.Attachments[i].ID == "" {
			msg.Attachments[i].ID = uuid.NewString()
		}
	}
	if err := s.conversations.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.core.publishAll(ctx, []events.Event{
		workflowEvent(ticket, events.EventMessageAdded, Actor{Name: input.SenderName}, events.MessageAddedPayload{
			MessageID:   msg.ID,
			SenderRole:  msg.SenderRole,
			BodyPreview: stringPreview(msg.Body, 120),
		}),
	})
	return msg, nil
}

func generateTicketNumber(module domain.Module) string {
	prefix := map[domain.Module]string{
		domain.ModuleIT:         "IT",
		domain.ModuleFacilities: "FAC",
		domain.ModuleFinance:    "FIN",
	}[module]
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
