package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/events"
	"github.com/spec-kit/request-workflow/internal/repository"
)

// AuditService writes a structured compliance record for every committed
// workflow event, independent of the ticket's own history log. Write failures
// are logged and never block the business transition.
type AuditService struct {
	dispatcher events.Dispatcher
	records    repository.AuditRepository
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, records repository.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		records:    records,
		logger:     logger,
	}
}

// RegisterHandlers subscribes the sink to every event type.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.SubscribeAll(a.handle)
}

func (a *AuditService) handle(ctx context.Context, event events.Event) error {
	record := &domain.AuditRecord{
		ID:       uuid.NewString(),
		TicketID: event.TicketID,
		ActorID:  event.Actor.ID,
		Action:   string(event.Type),
		Severity: severityFor(event.Type),
	}
	if payload, ok := event.Payload.(events.StatusChangedPayload); ok {
		record.Before = map[string]any{"status": payload.OldStatus}
		record.After = map[string]any{"status": payload.NewStatus, "detail": payload.Detail}
	}
	if a.records != nil {
		if err := a.records.Append(ctx, record); err != nil {
			a.logger.Warn("audit record write failed",
				zap.String("ticket_id", event.TicketID),
				zap.String("action", record.Action),
				zap.Error(err))
		}
	}
	a.logger.Info("audit",
		zap.String("ticket_id", event.TicketID),
		zap.String("actor_id", record.ActorID),
		zap.String("action", record.Action),
		zap.String("severity", string(record.Severity)),
	)
	return nil
}

func severityFor(eventType events.EventType) domain.AuditSeverity {
	switch eventType {
	case events.EventTicketRejected, events.EventTicketCancelled:
		return domain.AuditWarning
	default:
		return domain.AuditInfo
	}
}
