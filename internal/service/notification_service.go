package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/request-workflow/internal/config"
	"github.com/spec-kit/request-workflow/internal/directory"
	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/events"
)

// NotificationService turns committed workflow events into outbound
// notifications. Delivery is fire-and-forget: failures are logged and never
// retried, and never affect the transition that produced the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	directory  directory.Directory
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, dir directory.Directory, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		directory:  dir,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to the workflow events that notify someone.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.notifyRequester)
	n.dispatcher.Subscribe(events.EventApprovalRequired, n.notifyApprover)
	n.dispatcher.Subscribe(events.EventTicketApproved, n.notifyRequester)
	n.dispatcher.Subscribe(events.EventTicketRejected, n.notifyRequester)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.notifyAssignee)
	n.dispatcher.Subscribe(events.EventTicketReassigned, n.notifyAssignee)
	n.dispatcher.Subscribe(events.EventWorkCompleted, n.notifyRequester)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.notifyRequester)
	n.dispatcher.Subscribe(events.EventTicketReopened, n.notifyAssignee)
}

func (n *NotificationService) notifyRequester(ctx context.Context, event events.Event) error {
	n.deliver(ctx, event, "requester", "")
	return nil
}

func (n *NotificationService) notifyApprover(ctx context.Context, event events.Event) error {
	recipient := ""
	if payload, ok := event.Payload.(events.ApprovalRequiredPayload); ok {
		recipient = payload.RecipientRole
		if identity, err := n.lookupManager(ctx, event, payload.Level); err == nil {
			recipient = identity.Email
		}
	}
	n.deliver(ctx, event, "approver", recipient)
	return nil
}

func (n *NotificationService) notifyAssignee(ctx context.Context, event events.Event) error {
	recipient := ""
	if payload, ok := event.Payload.(events.TicketAssignedPayload); ok {
		recipient = payload.AssigneeID
	}
	n.deliver(ctx, event, "specialist", recipient)
	return nil
}

func (n *NotificationService) lookupManager(ctx context.Context, event events.Event, level domain.ApprovalLevel) (directory.Identity, error) {
	if n.directory == nil {
		return directory.Identity{}, context.Canceled
	}
	module := moduleFromTicketNumber(event.TicketNumber)
	return n.directory.ManagerForLevel(ctx, module, level)
}

// deliver is the stubbed transport boundary. A real deployment swaps this for
// an email/webhook client; the engine's contract ends at the log line.
func (n *NotificationService) deliver(ctx context.Context, event events.Event, recipientRole, recipientID string) {
	n.logger.Info("notification",
		zap.String("ticket_number", event.TicketNumber),
		zap.String("event_type", string(event.Type)),
		zap.String("recipient_role", recipientRole),
		zap.String("recipient_id", recipientID),
		zap.String("webhook_url", n.cfg.WebhookURL),
	)
}

func moduleFromTicketNumber(number string) domain.Module {
	switch {
	case len(number) >= 3 && number[:3] == "FAC":
		return domain.ModuleFacilities
	case len(number) >= 3 && number[:3] == "FIN":
		return domain.ModuleFinance
	default:
		return domain.ModuleIT
	}
}
