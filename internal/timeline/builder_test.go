package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/request-workflow/internal/domain"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func entry(kind domain.EventKind, detail string, offset time.Duration) domain.HistoryEntry {
	return domain.HistoryEntry{
		Kind:      kind,
		Detail:    detail,
		CreatedAt: base.Add(offset),
	}
}

func labels(steps []Step) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Label)
	}
	return out
}

func stepByLabel(t *testing.T, steps []Step, label string) Step {
	t.Helper()
	for _, s := range steps {
		if s.Label == label {
			return s
		}
	}
	t.Fatalf("no step labelled %q", label)
	return Step{}
}

func TestBuild_InProgressTicket(t *testing.T) {
	decided := base.Add(time.Hour)
	ticket := &domain.Ticket{
		Module:               domain.ModuleIT,
		Status:               domain.StatusInProgress,
		Requester:            domain.Requester{Name: "Dana Reyes"},
		RequiresApproval:     true,
		RequiredLevels:       1,
		ApprovalCompleted:    true,
		RequiresConfirmation: true,
		Approvals: []domain.ApprovalRecord{{
			Level:        domain.LevelL1,
			ApproverName: "Li Chen",
			Decision:     domain.DecisionApproved,
			OpenedAt:     base,
			DecidedAt:    &decided,
		}},
		Route:       &domain.Route{ProcessingQueue: "it-processing", SpecialistQueue: "it-hardware", RoutedAt: decided},
		SubmittedAt: base,
	}
	history := []domain.HistoryEntry{
		entry(domain.EventSubmitted, "", 0),
		entry(domain.EventApprovalOpened, "", 0),
		entry(domain.EventApproved, "approved at L1", time.Hour),
		entry(domain.EventRouted, "routed to it-processing / it-hardware", time.Hour),
		entry(domain.EventAssigned, "assigned to Kim Park", 2*time.Hour),
		entry(domain.EventWorkStarted, "", 3*time.Hour),
	}

	steps := Build(ticket, history)
	require.Equal(t, []string{
		"Submitted", "Level 1 Approval", "In Queue", "Assigned",
		"In Progress", "Work Completed", "Confirmed", "Closed",
	}, labels(steps))

	require.Equal(t, StepCompleted, stepByLabel(t, steps, "Level 1 Approval").Status)
	require.Contains(t, stepByLabel(t, steps, "Level 1 Approval").Description, "Li Chen")
	require.Equal(t, "Queued for it-hardware", stepByLabel(t, steps, "In Queue").Description)
	require.Equal(t, "Was assigned to Kim Park", stepByLabel(t, steps, "Assigned").Description)
	require.Equal(t, StepActive, stepByLabel(t, steps, "In Progress").Status)
	require.Equal(t, StepPending, stepByLabel(t, steps, "Work Completed").Status)
	require.Equal(t, StepPending, stepByLabel(t, steps, "Closed").Status)
}

func TestBuild_RejectionTruncates(t *testing.T) {
	decidedL1 := base.Add(time.Hour)
	decidedL2 := base.Add(2 * time.Hour)
	ticket := &domain.Ticket{
		Module:           domain.ModuleFinance,
		Status:           domain.StatusRejected,
		RequiresApproval: true,
		RequiredLevels:   3,
		Approvals: []domain.ApprovalRecord{
			{Level: domain.LevelL1, ApproverName: "Li Chen", Decision: domain.DecisionApproved, DecidedAt: &decidedL1},
			{Level: domain.LevelL2, ApproverName: "Ed Novak", Decision: domain.DecisionRejected, DecidedAt: &decidedL2, Remarks: "over budget"},
		},
		SubmittedAt: base,
	}

	steps := Build(ticket, nil)
	require.Equal(t, []string{"Submitted", "Level 1 Approval", "Level 2 Approval"}, labels(steps))
	last := steps[len(steps)-1]
	require.Equal(t, StepRejected, last.Status)
	require.Contains(t, last.Description, "over budget")
}

func TestBuild_PendingApprovalIsActive(t *testing.T) {
	ticket := &domain.Ticket{
		Module:               domain.ModuleFinance,
		Status:               domain.StatusPendingApprovalL1,
		RequiresApproval:     true,
		RequiredLevels:       3,
		CurrentApprovalLevel: domain.LevelL1,
		Approvals: []domain.ApprovalRecord{
			{Level: domain.LevelL1, Decision: domain.DecisionPending, OpenedAt: base},
		},
		SubmittedAt: base,
	}

	steps := Build(ticket, nil)
	approval := stepByLabel(t, steps, "Level 1 Approval")
	require.Equal(t, StepActive, approval.Status)
	// approver unknown until someone decides
	require.Equal(t, "Awaiting manager approval", approval.Description)
}

func TestBuild_CancelledTicket(t *testing.T) {
	ticket := &domain.Ticket{
		Module:      domain.ModuleIT,
		Status:      domain.StatusCancelled,
		SubmittedAt: base,
	}
	history := []domain.HistoryEntry{
		entry(domain.EventSubmitted, "", 0),
		entry(domain.EventCancelled, "no longer needed", time.Hour),
	}

	steps := Build(ticket, history)
	require.Equal(t, []string{"Submitted", "Cancelled"}, labels(steps))
	require.Equal(t, StepRejected, stepByLabel(t, steps, "Cancelled").Status)
	require.Equal(t, "no longer needed", stepByLabel(t, steps, "Cancelled").Description)
}

// A twice-reopened ticket renders each finished cycle as its own block with an
// ordinal suffix, never collapsing repeated assignments or closures.
func TestBuild_DoubleReopen(t *testing.T) {
	ticket := &domain.Ticket{
		Module:            domain.ModuleIT,
		Status:            domain.StatusReopened,
		ApprovalCompleted: true,
		ReopenCount:       2,
		Route:             &domain.Route{SpecialistQueue: "it-software", RoutedAt: base},
		SubmittedAt:       base,
	}
	history := []domain.HistoryEntry{
		entry(domain.EventSubmitted, "", 0),
		entry(domain.EventApprovalBypassed, "", 0),
		entry(domain.EventRouted, "", 0),
		entry(domain.EventAssigned, "assigned to Kim Park", time.Hour),
		entry(domain.EventWorkStarted, "", 2*time.Hour),
		entry(domain.EventWorkCompleted, "", 3*time.Hour),
		entry(domain.EventClosed, "", 4*time.Hour),
		entry(domain.EventReopened, "issue came back", 5*time.Hour),
		entry(domain.EventAssigned, "assigned to Ana Costa", 6*time.Hour),
		entry(domain.EventWorkStarted, "", 7*time.Hour),
		entry(domain.EventClosed, "", 8*time.Hour),
		entry(domain.EventReopened, "still broken", 9*time.Hour),
	}

	steps := Build(ticket, history)
	got := labels(steps)
	require.Equal(t, []string{
		"Submitted",
		"Assigned (1st)", "In Progress (1st)", "Closed (1st)",
		"Reopened",
		"Assigned (2nd)", "In Progress (2nd)", "Closed (2nd)",
		"Reopened",
		"Reassigned", "In Progress", "Closed",
	}, got)

	// the live cycle has not started: reassignment pending, reopen active
	require.Equal(t, StepActive, steps[8].Status)
	require.Equal(t, StepPending, stepByLabel(t, steps, "Reassigned").Status)
	require.Equal(t, "Was assigned to Ana Costa", stepByLabel(t, steps, "Assigned (2nd)").Description)
}

func TestBuild_AssigneeFallback(t *testing.T) {
	ticket := &domain.Ticket{
		Module:            domain.ModuleIT,
		Status:            domain.StatusAssigned,
		ApprovalCompleted: true,
		Route:             &domain.Route{SpecialistQueue: "it-software", RoutedAt: base},
		SubmittedAt:       base,
	}
	history := []domain.HistoryEntry{
		entry(domain.EventSubmitted, "", 0),
		entry(domain.EventRouted, "", 0),
		entry(domain.EventAssigned, "", time.Hour),
	}

	steps := Build(ticket, history)
	require.Equal(t, "Was assigned to IT specialist", stepByLabel(t, steps, "Assigned").Description)
	require.Equal(t, StepActive, stepByLabel(t, steps, "Assigned").Status)
}

func TestBuild_PausedShowsHoldReason(t *testing.T) {
	ticket := &domain.Ticket{
		Module:            domain.ModuleIT,
		Status:            domain.StatusPaused,
		ApprovalCompleted: true,
		PauseReason:       "waiting on parts",
		Route:             &domain.Route{SpecialistQueue: "it-hardware", RoutedAt: base},
		SubmittedAt:       base,
	}
	history := []domain.HistoryEntry{
		entry(domain.EventSubmitted, "", 0),
		entry(domain.EventRouted, "", 0),
		entry(domain.EventAssigned, "assigned to Kim Park", time.Hour),
		entry(domain.EventWorkStarted, "", 2*time.Hour),
		entry(domain.EventPaused, "waiting on parts", 3*time.Hour),
	}

	steps := Build(ticket, history)
	inProgress := stepByLabel(t, steps, "In Progress")
	require.Equal(t, StepActive, inProgress.Status)
	require.Equal(t, "On hold: waiting on parts", inProgress.Description)
}
