package dto

import (
	"github.com/spec-kit/request-workflow/internal/domain"
)

// DecisionRequest payload for an approval verdict.
type DecisionRequest struct {
	Level    domain.ApprovalLevel    `json:"level"`
	Decision domain.ApprovalDecision `json:"decision"`
	Remarks  string                  `json:"remarks"`
}

// AssignRequest payload.
type AssignRequest struct {
	SpecialistID   string `json:"specialist_id"`
	SpecialistName string `json:"specialist_name"`
	Queue          string `json:"queue"`
	Notes          string `json:"notes"`
}

// ReassignRequest payload.
type ReassignRequest struct {
	SpecialistID   string `json:"specialist_id"`
	SpecialistName string `json:"specialist_name"`
	Reason         string `json:"reason"`
}

// PauseRequest payload.
type PauseRequest struct {
	Reason string `json:"reason"`
}

// CompleteRequest payload.
type CompleteRequest struct {
	Notes string `json:"notes"`
}

// ConfirmRequest payload.
type ConfirmRequest struct {
	Feedback string `json:"feedback"`
}

// CloseRequest payload.
type CloseRequest struct {
	Note string `json:"note"`
}

// CancelRequest payload.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// ReopenRequest payload.
type ReopenRequest struct {
	Reason string `json:"reason"`
}
