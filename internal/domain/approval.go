package domain

import "time"

// ApprovalLevel identifies which sequential sign-off stage may act now.
type ApprovalLevel string

const (
	LevelNone ApprovalLevel = "NONE"
	LevelL1   ApprovalLevel = "L1"
	LevelL2   ApprovalLevel = "L2"
	LevelL3   ApprovalLevel = "L3"
)

var levelOrder = []ApprovalLevel{LevelL1, LevelL2, LevelL3}

// LevelAt returns the approval level for a 1-based index, LevelNone when out of range.
func LevelAt(index int) ApprovalLevel {
	if index < 1 || index > len(levelOrder) {
		return LevelNone
	}
	return levelOrder[index-1]
}

// Index returns the 1-based position of the level, 0 for LevelNone.
func (l ApprovalLevel) Index() int {
	for i, level := range levelOrder {
		if level == l {
			return i + 1
		}
	}
	return 0
}

// PendingStatus maps an approval level to its waiting ticket status.
func (l ApprovalLevel) PendingStatus() TicketStatus {
	switch l {
	case LevelL1:
		return StatusPendingApprovalL1
	case LevelL2:
		return StatusPendingApprovalL2
	case LevelL3:
		return StatusPendingApprovalL3
	}
	return StatusSubmitted
}

// ApprovalDecision is the state of a single level record.
type ApprovalDecision string

const (
	DecisionPending  ApprovalDecision = "PENDING"
	DecisionApproved ApprovalDecision = "APPROVED"
	DecisionRejected ApprovalDecision = "REJECTED"
)

// ApprovalRecord captures one opened approval level.
type ApprovalRecord struct {
	Level        ApprovalLevel    `json:"level"`
	ApproverID   string           `json:"approver_id,omitempty"`
	ApproverName string           `json:"approver_name,omitempty"`
	Decision     ApprovalDecision `json:"decision"`
	OpenedAt     time.Time        `json:"opened_at"`
	DecidedAt    *time.Time       `json:"decided_at,omitempty"`
	Remarks      string           `json:"remarks,omitempty"`
}

// ApprovalRecordFor returns the record for the given level, nil when not opened.
func (t *Ticket) ApprovalRecordFor(level ApprovalLevel) *ApprovalRecord {
	for i := range t.Approvals {
		if t.Approvals[i].Level == level {
			return &t.Approvals[i]
		}
	}
	return nil
}

// PendingApprovals counts level records still awaiting a decision.
func (t *Ticket) PendingApprovals() int {
	n := 0
	for i := range t.Approvals {
		if t.Approvals[i].Decision == DecisionPending {
			n++
		}
	}
	return n
}
