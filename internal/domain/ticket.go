package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen                TicketStatus = "OPEN"
	TicketStatusInProgress          TicketStatus = "IN_PROGRESS"
	TicketStatusToClose             TicketStatus = "TO_CLOSE"
	TicketStatusRejected            TicketStatus = "REJECTED"
	TicketStatusTransferredExternal TicketStatus = "TRANSFERRED_EXTERNAL"
	TicketStatusClosed              TicketStatus = "CLOSED"
)

// AllTicketStatuses lists every status in enumeration order, used by
// reporting to emit zero counts for absent statuses.
var AllTicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusToClose,
	TicketStatusRejected,
	TicketStatusTransferredExternal,
	TicketStatusClosed,
}

// IsTerminal reports whether no further internal processing is possible.
// TRANSFERRED_EXTERNAL is terminal for the technician track but the chief
// may still close it later, so it is not terminal here.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusClosed || s == TicketStatusRejected
}

// Valid reports whether s is a member of the fixed enumeration.
func (s TicketStatus) Valid() bool {
	for _, candidate := range AllTicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// TicketType distinguishes software assistance from hardware intervention.
type TicketType string

const (
	TicketTypeAssistance   TicketType = "ASSISTANCE"
	TicketTypeIntervention TicketType = "INTERVENTION"
)

// Valid reports whether t is a known ticket type.
func (t TicketType) Valid() bool {
	return t == TicketTypeAssistance || t == TicketTypeIntervention
}

// Ticket is the aggregate for support requests. Tickets are never deleted;
// closure is a terminal status, not removal.
type Ticket struct {
	ID            int64
	Type          TicketType
	Description   string
	Status        TicketStatus
	CreatedByID   int64
	AssignedToID  *int64
	ApplicationID *int64
	MaterielID    *int64
	DepartmentID  *int64
	CreatedAt     time.Time
	// TakenInChargeAt is stamped the first time a technician moves the
	// ticket to IN_PROGRESS and is immutable afterwards.
	TakenInChargeAt *time.Time
	ClosedAt        *time.Time
	// ProcessingMinutes is derived at close time, never user-supplied.
	ProcessingMinutes     *int
	ExternalTicketNumber  *string
	ExternalTransferredAt *time.Time
	UpdatedAt             time.Time
}
