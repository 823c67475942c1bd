package domain

import "time"

// SenderRole indicates who authored a conversation message.
type SenderRole string

const (
	SenderRequester  SenderRole = "REQUESTER"
	SenderSpecialist SenderRole = "SPECIALIST"
	SenderApprover   SenderRole = "APPROVER"
	SenderSystem     SenderRole = "SYSTEM"
)

// Message is one entry in the human conversation thread, independent of the
// machine audit history.
type Message struct {
	ID          string
	TicketID    string
	SenderRole  SenderRole
	SenderName  string
	Body        string
	Attachments []AttachmentReference
	CreatedAt   time.Time
}

// AttachmentReference stores metadata for message attachments; the blob itself
// lives in external storage.
type AttachmentReference struct {
	ID         string
	MessageID  string
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
}
