package domain

import "time"

// AuditSeverity grades compliance records.
type AuditSeverity string

const (
	AuditInfo     AuditSeverity = "INFO"
	AuditWarning  AuditSeverity = "WARNING"
	AuditCritical AuditSeverity = "CRITICAL"
)

// AuditRecord is a structured compliance entry, written independently of the
// ticket's own history log. Failure to persist one never blocks a transition.
type AuditRecord struct {
	ID        string
	TicketID  string
	ActorID   string
	Action    string
	Before    map[string]any
	After     map[string]any
	Severity  AuditSeverity
	CreatedAt time.Time
}
