package domain

import "time"

// Notification is created exclusively as a side effect of an assignment
// transition. Clients poll for unread entries; only IsRead is mutable.
type Notification struct {
	ID              int64
	RecipientUserID int64
	TicketID        int64
	Message         string
	SentAt          time.Time
	IsRead          bool
}
