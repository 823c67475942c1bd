package domain

import "time"

// Module is the top-level service-request category. Immutable after creation.
type Module string

const (
	ModuleIT         Module = "IT"
	ModuleFacilities Module = "FACILITIES"
	ModuleFinance    Module = "FINANCE"
)

// Valid reports whether m is a known module.
func (m Module) Valid() bool {
	switch m {
	case ModuleIT, ModuleFacilities, ModuleFinance:
		return true
	}
	return false
}

// Urgency is an ordered scale used for SLA weighting.
type Urgency string

const (
	UrgencyLow      Urgency = "LOW"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyCritical Urgency = "CRITICAL"
)

var urgencyRank = map[Urgency]int{
	UrgencyLow:      0,
	UrgencyMedium:   1,
	UrgencyHigh:     2,
	UrgencyCritical: 3,
}

// Rank returns the ordering position of the urgency (Low < Medium < High < Critical).
func (u Urgency) Rank() int {
	return urgencyRank[u]
}

// TicketStatus enumerates lifecycle states for service requests.
type TicketStatus string

const (
	StatusDraft                TicketStatus = "DRAFT"
	StatusSubmitted            TicketStatus = "SUBMITTED"
	StatusPendingApprovalL1    TicketStatus = "PENDING_APPROVAL_L1"
	StatusPendingApprovalL2    TicketStatus = "PENDING_APPROVAL_L2"
	StatusPendingApprovalL3    TicketStatus = "PENDING_APPROVAL_L3"
	StatusApproved             TicketStatus = "APPROVED"
	StatusRejected             TicketStatus = "REJECTED"
	StatusRouted               TicketStatus = "ROUTED"
	StatusInQueue              TicketStatus = "IN_QUEUE"
	StatusAssigned             TicketStatus = "ASSIGNED"
	StatusInProgress           TicketStatus = "IN_PROGRESS"
	StatusPaused               TicketStatus = "PAUSED"
	StatusWorkCompleted        TicketStatus = "WORK_COMPLETED"
	StatusAwaitingConfirmation TicketStatus = "AWAITING_USER_CONFIRMATION"
	StatusConfirmed            TicketStatus = "CONFIRMED"
	StatusClosed               TicketStatus = "CLOSED"
	StatusAutoClosed           TicketStatus = "AUTO_CLOSED"
	StatusCancelled            TicketStatus = "CANCELLED"
	StatusReopened             TicketStatus = "REOPENED"
)

// Terminal reports whether no further workflow command may mutate the ticket.
// Closed and AutoClosed remain reopenable.
func (s TicketStatus) Terminal() bool {
	switch s {
	case StatusClosed, StatusAutoClosed, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// ClosingReason records why a ticket left the workflow.
type ClosingReason string

const (
	ReasonManual     ClosingReason = "MANUAL"
	ReasonConfirmed  ClosingReason = "CONFIRMED"
	ReasonAutoClosed ClosingReason = "AUTO_CLOSED"
	ReasonCancelled  ClosingReason = "CANCELLED"
)

// Route holds destination queues resolved from the category policy.
// Nil until approval has completed.
type Route struct {
	ProcessingQueue string    `json:"processing_queue"`
	SpecialistQueue string    `json:"specialist_queue"`
	RoutedAt        time.Time `json:"routed_at"`
}

// Assignment binds a ticket to a specialist.
type Assignment struct {
	AssigneeID   *string    `json:"assignee_id,omitempty"`
	AssigneeName string     `json:"assignee_name,omitempty"`
	Queue        string     `json:"queue,omitempty"`
	AssignedAt   *time.Time `json:"assigned_at,omitempty"`
	AssignedBy   string     `json:"assigned_by,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// ProgressState is the specialist-facing work state, kept in sync with Status.
type ProgressState string

const (
	ProgressNotStarted ProgressState = "NOT_STARTED"
	ProgressInProgress ProgressState = "IN_PROGRESS"
	ProgressOnHold     ProgressState = "ON_HOLD"
	ProgressCompleted  ProgressState = "COMPLETED"
)

// Resolution records how the specialist finished the work.
type Resolution struct {
	Notes      string     `json:"notes,omitempty"`
	ResolvedBy string     `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// SLABudget carries the configured hour budgets for a ticket's phases.
type SLABudget struct {
	ApprovalHours     int  `json:"approval_hours"`
	ProcessingHours   int  `json:"processing_hours"`
	AutoCloseOnBreach bool `json:"auto_close_on_breach"`
}

// Requester identifies the employee who raised the request.
type Requester struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// Ticket is the aggregate root for a service request. All mutation goes
// through the workflow services under the per-ticket lock.
type Ticket struct {
	ID           string
	TicketNumber string

	Module      Module
	SubCategory string
	Subject     string
	Description string
	Urgency     Urgency
	Requester   Requester

	RequiresApproval     bool
	RequiredLevels       int
	CurrentApprovalLevel ApprovalLevel
	ApprovalCompleted    bool
	Approvals            []ApprovalRecord

	Route      *Route
	Assignment Assignment
	Progress   ProgressState

	RequiresConfirmation bool
	UserConfirmedAt      *time.Time
	PauseReason          string
	Resolution           Resolution

	SLA SLABudget

	Status      TicketStatus
	ReopenCount int

	ClosedAt      *time.Time
	ClosedBy      string
	ClosingNote   string
	ClosingReason ClosingReason

	SubmittedAt time.Time
	RoutedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ActiveAssignee returns the current assignee id, empty when unassigned.
func (t *Ticket) ActiveAssignee() string {
	if t.Assignment.AssigneeID == nil {
		return ""
	}
	return *t.Assignment.AssigneeID
}

// Closed reports whether the ticket sits in a reopenable closed state.
func (t *Ticket) Closed() bool {
	return t.Status == StatusClosed || t.Status == StatusAutoClosed
}
