package dto

import (
	"time"

	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/sla"
	"github.com/spec-kit/request-workflow/internal/timeline"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Module      domain.Module  `json:"module"`
	SubCategory string         `json:"sub_category"`
	Subject     string         `json:"subject"`
	Description string         `json:"description"`
	Urgency     domain.Urgency `json:"urgency"`
	Requester   RequesterInput `json:"requester"`
}

// RequesterInput identifies the employee opening the ticket.
type RequesterInput struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           string               `json:"id"`
	TicketNumber string               `json:"ticket_number"`
	Module       domain.Module        `json:"module"`
	SubCategory  string               `json:"sub_category"`
	Subject      string               `json:"subject"`
	Urgency      domain.Urgency       `json:"urgency"`
	Status       domain.TicketStatus  `json:"status"`
	Progress     domain.ProgressState `json:"progress"`
	AssigneeName string               `json:"assignee_name,omitempty"`
	Queue        string               `json:"queue,omitempty"`
	ReopenCount  int                  `json:"reopen_count"`
	SubmittedAt  time.Time            `json:"submitted_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID                   string                  `json:"id"`
	TicketNumber         string                  `json:"ticket_number"`
	Module               domain.Module           `json:"module"`
	SubCategory          string                  `json:"sub_category"`
	Subject              string                  `json:"subject"`
	Description          string                  `json:"description"`
	Urgency              domain.Urgency          `json:"urgency"`
	Requester            domain.Requester        `json:"requester"`
	Status               domain.TicketStatus     `json:"status"`
	Progress             domain.ProgressState    `json:"progress"`
	RequiresApproval     bool                    `json:"requires_approval"`
	RequiredLevels       int                     `json:"required_levels"`
	CurrentApprovalLevel domain.ApprovalLevel    `json:"current_approval_level"`
	ApprovalCompleted    bool                    `json:"approval_completed"`
	Approvals            []domain.ApprovalRecord `json:"approvals"`
	Route                *domain.Route           `json:"route"`
	Assignment           domain.Assignment       `json:"assignment"`
	RequiresConfirmation bool                    `json:"requires_confirmation"`
	UserConfirmedAt      *time.Time              `json:"user_confirmed_at"`
	PauseReason          string                  `json:"pause_reason,omitempty"`
	Resolution           domain.Resolution       `json:"resolution"`
	ReopenCount          int                     `json:"reopen_count"`
	ClosedAt             *time.Time              `json:"closed_at"`
	ClosingReason        domain.ClosingReason    `json:"closing_reason,omitempty"`
	ClosingNote          string                  `json:"closing_note,omitempty"`
	SubmittedAt          time.Time               `json:"submitted_at"`
	RoutedAt             *time.Time              `json:"routed_at"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
	Messages             []MessageResponse       `json:"messages"`
	History              []HistoryResponse       `json:"history"`
}

// MessageResponse represents a conversation entry.
type MessageResponse struct {
	ID          string               `json:"id"`
	SenderRole  domain.SenderRole    `json:"sender_role"`
	SenderName  string               `json:"sender_name"`
	Body        string               `json:"body"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	SenderRole  domain.SenderRole   `json:"sender_role"`
	SenderName  string              `json:"sender_name"`
	Body        string              `json:"body"`
	Attachments []AttachmentRequest `json:"attachments"`
}

// AttachmentRequest describes attachment input.
type AttachmentRequest struct {
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

// HistoryResponse is one audit trail entry.
type HistoryResponse struct {
	ID         string               `json:"id"`
	Kind       domain.EventKind     `json:"kind"`
	Action     string               `json:"action"`
	ActorID    string               `json:"actor_id,omitempty"`
	ActorName  string               `json:"actor_name,omitempty"`
	Detail     string               `json:"detail,omitempty"`
	PrevStatus *domain.TicketStatus `json:"prev_status,omitempty"`
	NewStatus  *domain.TicketStatus `json:"new_status,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

// TimelineResponse is the ordered progress view.
type TimelineResponse struct {
	TicketNumber string              `json:"ticket_number"`
	Status       domain.TicketStatus `json:"status"`
	Steps        []timeline.Step     `json:"steps"`
}

// SLAResponse is the evaluated SLA position of a ticket.
type SLAResponse struct {
	TicketNumber       string     `json:"ticket_number"`
	Phase              sla.Phase  `json:"phase"`
	ApprovalDeadline   *time.Time `json:"approval_deadline,omitempty"`
	ProcessingDeadline *time.Time `json:"processing_deadline,omitempty"`
	Deadline           *time.Time `json:"deadline,omitempty"`
	Overdue            bool       `json:"overdue"`
	OverdueSeconds     int64      `json:"overdue_seconds"`
}
