package domain

import "time"

// Comment length bounds enforced at the service boundary.
const (
	CommentMinLength = 2
	CommentMaxLength = 4000
)

// Comment is an append-only entry in a ticket's discussion thread.
type Comment struct {
	ID        int64
	TicketID  int64
	AuthorID  int64
	Content   string
	CreatedAt time.Time
}

// Attachment stores metadata for a file attached to a ticket; the bytes
// themselves live in an external store addressed by StorageKey.
type Attachment struct {
	ID         int64
	TicketID   int64
	FileName   string
	StorageKey string
	AddedAt    time.Time
}
