package events

import (
	"time"

	"github.com/spec-kit/request-workflow/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated    EventType = "ticket_created"
	EventApprovalRequired EventType = "approval_required"
	EventTicketApproved   EventType = "ticket_approved"
	EventTicketRejected   EventType = "ticket_rejected"
	EventTicketRouted     EventType = "ticket_routed"
	EventTicketAssigned   EventType = "ticket_assigned"
	EventTicketReassigned EventType = "ticket_reassigned"
	EventProgressChanged  EventType = "progress_changed"
	EventWorkCompleted    EventType = "work_completed"
	EventTicketConfirmed  EventType = "ticket_confirmed"
	EventTicketClosed     EventType = "ticket_closed"
	EventTicketReopened   EventType = "ticket_reopened"
	EventTicketCancelled  EventType = "ticket_cancelled"
	EventMessageAdded     EventType = "message_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Event represents a domain event emitted by the workflow services after a
// command's transaction commits.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	TicketID     string    `json:"ticket_id"`
	TicketNumber string    `json:"ticket_number"`
	Actor        Actor     `json:"actor"`
	Timestamp    time.Time `json:"timestamp"`
	Payload      any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Module           domain.Module  `json:"module"`
	SubCategory      string         `json:"sub_category"`
	Urgency          domain.Urgency `json:"urgency"`
	RequiresApproval bool           `json:"requires_approval"`
	RequesterID      string         `json:"requester_id"`
}

// ApprovalRequiredPayload payload; RecipientRole carries the approver role for
// the notification service.
type ApprovalRequiredPayload struct {
	Level         domain.ApprovalLevel `json:"level"`
	RecipientRole string               `json:"recipient_role"`
}

// ApprovalDecidedPayload payload for approved/rejected events.
type ApprovalDecidedPayload struct {
	Level     domain.ApprovalLevel    `json:"level"`
	Decision  domain.ApprovalDecision `json:"decision"`
	Remarks   string                  `json:"remarks,omitempty"`
	Completed bool                    `json:"completed"`
}

// TicketRoutedPayload payload.
type TicketRoutedPayload struct {
	ProcessingQueue string `json:"processing_queue"`
	SpecialistQueue string `json:"specialist_queue"`
}

// TicketAssignedPayload payload; carries the previous assignee on reassignment.
type TicketAssignedPayload struct {
	AssigneeID       string `json:"assignee_id"`
	AssigneeName     string `json:"assignee_name,omitempty"`
	Queue            string `json:"queue,omitempty"`
	PreviousAssignee string `json:"previous_assignee,omitempty"`
}

// StatusChangedPayload payload for progress, completion, closure, reopen.
type StatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Detail    string              `json:"detail,omitempty"`
}

// MessageAddedPayload payload.
type MessageAddedPayload struct {
	MessageID   string            `json:"message_id"`
	SenderRole  domain.SenderRole `json:"sender_role"`
	BodyPreview string            `json:"body_preview"`
}
