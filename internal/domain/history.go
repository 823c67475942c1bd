package domain

import "time"

// EventKind is the typed label for a history entry. The timeline builder
// derives "was ever in state" answers from kinds, never from free-text parsing.
type EventKind string

const (
	EventSubmitted        EventKind = "SUBMITTED"
	EventApprovalOpened   EventKind = "APPROVAL_OPENED"
	EventApproved         EventKind = "APPROVED"
	EventRejected         EventKind = "REJECTED"
	EventApprovalBypassed EventKind = "APPROVAL_BYPASSED"
	EventRouted           EventKind = "ROUTED"
	EventAssigned         EventKind = "ASSIGNED"
	EventReassigned       EventKind = "REASSIGNED"
	EventWorkStarted      EventKind = "WORK_STARTED"
	EventPaused           EventKind = "PAUSED"
	EventResumed          EventKind = "RESUMED"
	EventWorkCompleted    EventKind = "WORK_COMPLETED"
	EventConfirmed        EventKind = "CONFIRMED"
	EventClosed           EventKind = "CLOSED"
	EventAutoClosed       EventKind = "AUTO_CLOSED"
	EventCancelled        EventKind = "CANCELLED"
	EventReopened         EventKind = "REOPENED"
)

// HistoryEntry is one immutable record in the ticket's append-only audit trail.
type HistoryEntry struct {
	ID         string
	TicketID   string
	Kind       EventKind
	Action     string
	ActorID    string
	ActorName  string
	Detail     string
	PrevStatus *TicketStatus
	NewStatus  *TicketStatus
	CreatedAt  time.Time
}
