package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/events"
	apperrors "github.com/spec-kit/request-workflow/pkg/util"
)

// ApprovalService advances a ticket through its sequential approval levels.
type ApprovalService struct {
	core *Core
}

// NewApprovalService constructs the service.
func NewApprovalService(core *Core) *ApprovalService {
	return &ApprovalService{core: core}
}

// DecisionInput describes one approver's verdict on an open level.
type DecisionInput struct {
	Level    domain.ApprovalLevel
	Decision domain.ApprovalDecision
	Actor    Actor
	Remarks  string
}

// Decide applies an approver's verdict. A decision aimed at a level that is
// not currently open fails with StaleLevel; a second decision on the same
// level fails with AlreadyDecided. A rejection is terminal: no later level is
// ever opened and approvalCompleted stays false permanently.
func (s *ApprovalService) Decide(ctx context.Context, ticketNumber string, input DecisionInput) (*domain.Ticket, error) {
	if input.Decision != domain.DecisionApproved && input.Decision != domain.DecisionRejected {
		return nil, apperrors.NewValidationError("decision must be APPROVED or REJECTED", nil)
	}
	return s.core.run(ctx, ticketNumber, func(t *domain.Ticket, tx *txn) error {
		if t.Status.Terminal() {
			return apperrors.NewInvalidTransition("approval_decision", string(t.Status))
		}
		if input.Level != t.CurrentApprovalLevel || input.Level == domain.LevelNone {
			return apperrors.NewStaleLevel(string(input.Level), string(t.CurrentApprovalLevel))
		}
		record := t.ApprovalRecordFor(input.Level)
		if record == nil {
			return apperrors.NewStaleLevel(string(input.Level), string(t.CurrentApprovalLevel))
		}
		if record.Decision != domain.DecisionPending {
			return apperrors.NewAlreadyDecided(string(input.Level))
		}

		now := s.core.now()
		prev := t.Status
		record.Decision = input.Decision
		record.ApproverID = input.Actor.ID
		record.ApproverName = input.Actor.Name
		record.DecidedAt = &now
		record.Remarks = strings.TrimSpace(input.Remarks)

		if input.Decision == domain.DecisionRejected {
			t.Status = domain.StatusRejected
			t.CurrentApprovalLevel = domain.LevelNone
			tx.record(statusEntry(t, domain.EventRejected, "approval_rejected", input.Actor,
				rejectionDetail(input.Level, record.Remarks), prev, now))
			tx.emit(workflowEvent(t, events.EventTicketRejected, input.Actor, events.ApprovalDecidedPayload{
				Level:    input.Level,
				Decision: domain.DecisionRejected,
				Remarks:  record.Remarks,
			}))
			return nil
		}

		completed := input.Level.Index() >= t.RequiredLevels
		if completed {
			t.ApprovalCompleted = true
			t.CurrentApprovalLevel = domain.LevelNone
			t.Status = domain.StatusApproved
			tx.record(statusEntry(t, domain.EventApproved, "approval_granted", input.Actor,
				fmt.Sprintf("approved at %s", input.Level), prev, now))
		} else {
			next := domain.LevelAt(input.Level.Index() + 1)
			tx.record(statusEntry(t, domain.EventApproved, "approval_granted", input.Actor,
				fmt.Sprintf("approved at %s", input.Level), prev, now))
			openApprovalLevel(t, next, input.Actor, tx, now)
		}
		tx.emit(workflowEvent(t, events.EventTicketApproved, input.Actor, events.ApprovalDecidedPayload{
			Level:     input.Level,
			Decision:  domain.DecisionApproved,
			Remarks:   record.Remarks,
			Completed: completed,
		}))
		return nil
	})
}

// openApprovalLevel opens the given level as the single pending record and
// moves the ticket into the matching waiting status.
func openApprovalLevel(t *domain.Ticket, level domain.ApprovalLevel, actor Actor, tx *txn, now time.Time) {
	prev := t.Status
	t.CurrentApprovalLevel = level
	t.Status = level.PendingStatus()
	t.Approvals = append(t.Approvals, domain.ApprovalRecord{
		Level:    level,
		Decision: domain.DecisionPending,
		OpenedAt: now,
	})
	tx.record(statusEntry(t, domain.EventApprovalOpened, "approval_opened", actor,
		fmt.Sprintf("awaiting %s approval", level), prev, now))
	tx.emit(workflowEvent(t, events.EventApprovalRequired, actor, events.ApprovalRequiredPayload{
		Level:         level,
		RecipientRole: "manager_" + strings.ToLower(string(level)),
	}))
}

// bypassApproval marks an approval-free ticket as completed immediately.
func bypassApproval(t *domain.Ticket, actor Actor, tx *txn, now time.Time) {
	prev := t.Status
	t.ApprovalCompleted = true
	t.CurrentApprovalLevel = domain.LevelNone
	t.Status = domain.StatusApproved
	tx.record(statusEntry(t, domain.EventApprovalBypassed, "approval_bypassed", actor,
		"no approval required for this category", prev, now))
}

func rejectionDetail(level domain.ApprovalLevel, remarks string) string {
	if remarks == "" {
		return fmt.Sprintf("rejected at %s", level)
	}
	return fmt.Sprintf("rejected at %s: %s", level, remarks)
}
