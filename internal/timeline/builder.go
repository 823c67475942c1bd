// Package timeline derives the human-facing progress view of a ticket from
// its append-only history. Nothing here mutates state; the view is recomputed
// on every read.
package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/request-workflow/internal/domain"
)

// StepStatus is the rendering state of one display step.
type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepActive    StepStatus = "active"
	StepPending   StepStatus = "pending"
	StepRejected  StepStatus = "rejected"
)

// Step is one entry in the ordered progress view.
type Step struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	Status      StepStatus `json:"status"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	Description string     `json:"description,omitempty"`
}

// Build renders the ordered display steps for a ticket. Reopened tickets get
// one block of steps per cycle; earlier cycles render as completed history,
// the live cycle reflects current state.
func Build(t *domain.Ticket, history []domain.HistoryEntry) []Step {
	b := &builder{ticket: t, history: history}

	b.submittedStep()
	if rejected := b.approvalSteps(); rejected {
		return b.steps
	}
	if t.Status == domain.StatusCancelled {
		b.cancelledStep()
		return b.steps
	}

	cycles := splitCycles(history)
	if len(cycles) == 1 {
		b.linearSteps(cycles[0])
		return b.steps
	}
	for i, cycle := range cycles {
		last := i == len(cycles)-1
		if i > 0 {
			b.reopenedStep(cycle.reopenEntry, last)
		}
		if last {
			b.liveCycleSteps(cycle, i)
		} else {
			b.closedCycleSteps(cycle, i)
		}
	}
	return b.steps
}

type builder struct {
	ticket  *domain.Ticket
	history []domain.HistoryEntry
	steps   []Step
	seq     int
}

func (b *builder) add(label string, status StepStatus, ts *time.Time, description string) {
	b.seq++
	b.steps = append(b.steps, Step{
		ID:          fmt.Sprintf("step-%d", b.seq),
		Label:       label,
		Status:      status,
		Timestamp:   ts,
		Description: description,
	})
}

func (b *builder) submittedStep() {
	ts := b.ticket.SubmittedAt
	desc := "Submitted"
	if b.ticket.Requester.Name != "" {
		desc = "Submitted by " + b.ticket.Requester.Name
	}
	b.add("Submitted", StepCompleted, &ts, desc)
}

// approvalSteps emits one step per opened level and reports whether the chain
// was rejected, which truncates the whole view.
func (b *builder) approvalSteps() bool {
	if !b.ticket.RequiresApproval {
		return false
	}
	for i := range b.ticket.Approvals {
		record := &b.ticket.Approvals[i]
		label := fmt.Sprintf("Level %d Approval", record.Level.Index())
		switch record.Decision {
		case domain.DecisionApproved:
			b.add(label, StepCompleted, record.DecidedAt, "Approved by "+approverName(record))
		case domain.DecisionRejected:
			desc := "Rejected by " + approverName(record)
			if record.Remarks != "" {
				desc += ": " + record.Remarks
			}
			b.add(label, StepRejected, record.DecidedAt, desc)
			return true
		default:
			status := StepPending
			if record.Level == b.ticket.CurrentApprovalLevel {
				status = StepActive
			}
			opened := record.OpenedAt
			b.add(label, status, &opened, "Awaiting "+approverName(record)+" approval")
		}
	}
	return false
}

func (b *builder) cancelledStep() {
	entry := lastOfKind(b.history, domain.EventCancelled)
	b.add("Cancelled", StepRejected, entryTime(entry), entryDetail(entry, "Request cancelled"))
}

// cycle is one pass through assignment/progress/closure, delimited by reopen
// entries in the history.
type cycle struct {
	reopenEntry *domain.HistoryEntry
	entries     []domain.HistoryEntry
}

func splitCycles(history []domain.HistoryEntry) []cycle {
	cycles := []cycle{{}}
	for i := range history {
		entry := history[i]
		if entry.Kind == domain.EventReopened {
			cycles = append(cycles, cycle{reopenEntry: &history[i]})
			continue
		}
		cycles[len(cycles)-1].entries = append(cycles[len(cycles)-1].entries, entry)
	}
	return cycles
}

func (b *builder) reopenedStep(entry *domain.HistoryEntry, live bool) {
	status := StepCompleted
	if live && b.ticket.Status == domain.StatusReopened {
		status = StepActive
	}
	b.add("Reopened", status, entryTime(entry), entryDetail(entry, "Request reopened"))
}

// closedCycleSteps renders a finished cycle: everything that happened in it is
// settled history, so every step is completed.
func (b *builder) closedCycleSteps(c cycle, index int) {
	suffix := " (" + ordinal(index+1) + ")"
	if assigned := lastOfKinds(c.entries, domain.EventAssigned, domain.EventReassigned); assigned != nil {
		b.add(assignLabel(assigned)+suffix, StepCompleted, entryTime(assigned), assignDescription(assigned, b.ticket.Module))
	}
	if started := lastOfKind(c.entries, domain.EventWorkStarted); started != nil {
		b.add("In Progress"+suffix, StepCompleted, entryTime(started), entryDetail(started, "Work in progress"))
	}
	if confirmed := lastOfKind(c.entries, domain.EventConfirmed); confirmed != nil {
		b.add("Confirmed"+suffix, StepCompleted, entryTime(confirmed), entryDetail(confirmed, "Completion confirmed"))
	}
	if closed := lastOfKinds(c.entries, domain.EventClosed, domain.EventAutoClosed); closed != nil {
		b.add("Closed"+suffix, StepCompleted, entryTime(closed), entryDetail(closed, "Request closed"))
	}
}

// liveCycleSteps renders the post-reopen cycle against current ticket state.
func (b *builder) liveCycleSteps(c cycle, index int) {
	t := b.ticket
	assigned := lastOfKinds(c.entries, domain.EventAssigned, domain.EventReassigned)
	started := lastOfKind(c.entries, domain.EventWorkStarted)
	closed := lastOfKinds(c.entries, domain.EventClosed, domain.EventAutoClosed)

	switch {
	case assigned != nil:
		status := StepCompleted
		if t.Status == domain.StatusAssigned {
			status = StepActive
		}
		b.add("Reassigned", status, entryTime(assigned), assignDescription(assigned, t.Module))
	default:
		b.add("Reassigned", StepPending, nil, "Awaiting reassignment")
	}

	switch {
	case started != nil:
		status := StepCompleted
		if t.Status == domain.StatusInProgress || t.Status == domain.StatusPaused {
			status = StepActive
		}
		b.add("In Progress", status, entryTime(started), entryDetail(started, "Work in progress"))
	default:
		b.add("In Progress", StepPending, nil, "")
	}

	switch {
	case closed != nil:
		b.add("Closed", StepCompleted, entryTime(closed), entryDetail(closed, "Request closed"))
	default:
		b.add("Closed", StepPending, nil, "")
	}
	_ = index
}

// linearSteps renders the never-reopened flow: Routed, Assigned, In Progress,
// Work Completed, optional Confirmed, Closed — each completed if its event
// occurred, active if it is where the ticket currently sits, pending ahead.
func (b *builder) linearSteps(c cycle) {
	t := b.ticket

	routed := lastOfKind(c.entries, domain.EventRouted)
	if routed != nil || t.Route != nil {
		status := StepCompleted
		if t.Status == domain.StatusInQueue {
			status = StepActive
		}
		b.add("In Queue", status, entryTime(routed), routeDescription(routed, t))
	} else if !t.ApprovalCompleted || t.Status == domain.StatusApproved {
		// unrouted: either approvals still running or a policy gap
		b.add("In Queue", StepPending, nil, "")
	}

	assigned := lastOfKinds(c.entries, domain.EventAssigned, domain.EventReassigned)
	if assigned != nil {
		status := StepCompleted
		if t.Status == domain.StatusAssigned {
			status = StepActive
		}
		b.add("Assigned", status, entryTime(assigned), assignDescription(assigned, t.Module))
	} else {
		b.add("Assigned", StepPending, nil, "")
	}

	started := lastOfKind(c.entries, domain.EventWorkStarted)
	if started != nil {
		status := StepCompleted
		if t.Status == domain.StatusInProgress || t.Status == domain.StatusPaused {
			status = StepActive
		}
		desc := entryDetail(started, "Work in progress")
		if t.Status == domain.StatusPaused {
			desc = pauseDescription(c.entries)
		}
		b.add("In Progress", status, entryTime(started), desc)
	} else {
		b.add("In Progress", StepPending, nil, "")
	}

	completedEntry := lastOfKind(c.entries, domain.EventWorkCompleted)
	if completedEntry != nil {
		status := StepCompleted
		if t.Status == domain.StatusWorkCompleted || t.Status == domain.StatusAwaitingConfirmation {
			status = StepActive
		}
		b.add("Work Completed", status, entryTime(completedEntry), entryDetail(completedEntry, "Work completed"))
	} else {
		b.add("Work Completed", StepPending, nil, "")
	}

	if t.RequiresConfirmation {
		confirmed := lastOfKind(c.entries, domain.EventConfirmed)
		switch {
		case confirmed != nil:
			b.add("Confirmed", StepCompleted, entryTime(confirmed), entryDetail(confirmed, "Completion confirmed"))
		case t.Status == domain.StatusAwaitingConfirmation:
			b.add("Confirmed", StepActive, nil, "Awaiting "+fallbackName(t.Requester.Name, "requester")+" confirmation")
		default:
			b.add("Confirmed", StepPending, nil, "")
		}
	}

	closed := lastOfKinds(c.entries, domain.EventClosed, domain.EventAutoClosed)
	if closed != nil {
		b.add("Closed", StepCompleted, entryTime(closed), entryDetail(closed, "Request closed"))
	} else {
		b.add("Closed", StepPending, nil, "")
	}
}

func approverName(record *domain.ApprovalRecord) string {
	if record.ApproverName != "" {
		return record.ApproverName
	}
	if record.ApproverID != "" {
		return record.ApproverID
	}
	return "manager"
}

func assignLabel(entry *domain.HistoryEntry) string {
	if entry.Kind == domain.EventReassigned {
		return "Reassigned"
	}
	return "Assigned"
}

// assignDescription synthesizes "Was assigned to <name>" from the entry,
// degrading to a generic specialist label when no name survives.
func assignDescription(entry *domain.HistoryEntry, module domain.Module) string {
	detail := entry.Detail
	for _, prefix := range []string{"assigned to ", "reassigned from "} {
		if idx := strings.Index(detail, prefix); idx >= 0 {
			return "Was " + detail[idx:]
		}
	}
	return "Was assigned to " + specialistFallback(module)
}

func specialistFallback(module domain.Module) string {
	switch module {
	case domain.ModuleIT:
		return "IT specialist"
	case domain.ModuleFacilities:
		return "Facilities specialist"
	case domain.ModuleFinance:
		return "Finance specialist"
	}
	return "specialist"
}

func routeDescription(entry *domain.HistoryEntry, t *domain.Ticket) string {
	if t.Route != nil {
		return "Queued for " + t.Route.SpecialistQueue
	}
	return entryDetail(entry, "Routed")
}

func pauseDescription(entries []domain.HistoryEntry) string {
	paused := lastOfKind(entries, domain.EventPaused)
	if paused != nil && paused.Detail != "" {
		return "On hold: " + paused.Detail
	}
	return "On hold"
}

func lastOfKind(entries []domain.HistoryEntry, kind domain.EventKind) *domain.HistoryEntry {
	return lastOfKinds(entries, kind)
}

func lastOfKinds(entries []domain.HistoryEntry, kinds ...domain.EventKind) *domain.HistoryEntry {
	for i := len(entries) - 1; i >= 0; i-- {
		for _, kind := range kinds {
			if entries[i].Kind == kind {
				return &entries[i]
			}
		}
	}
	return nil
}

func entryTime(entry *domain.HistoryEntry) *time.Time {
	if entry == nil {
		return nil
	}
	ts := entry.CreatedAt
	return &ts
}

func entryDetail(entry *domain.HistoryEntry, fallback string) string {
	if entry == nil || strings.TrimSpace(entry.Detail) == "" {
		return fallback
	}
	return entry.Detail
}

func fallbackName(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}
