package policy

import "github.com/spec-kit/it-helpdesk/internal/domain"

// Operation identifies a capability a route or service may require. Grants
// live in a single table keyed by (role, operation) so the rules cannot
// drift between endpoints.
type Operation string

const (
	OpCreateTicket        Operation = "ticket.create"
	OpCloseOwnTicket      Operation = "ticket.close_own"
	OpProcessTicket       Operation = "ticket.process"
	OpAssignTicket        Operation = "ticket.assign"
	OpListSubordinates    Operation = "directory.subordinates"
	OpRecommendTechnician Operation = "technician.recommend"
	OpViewReporting       Operation = "reporting.view"
	OpManageCatalog       Operation = "catalog.manage"
	OpManageUsers         Operation = "user.manage"
)

var grants = map[domain.Role]map[Operation]struct{}{
	domain.RoleEmployee: {
		OpCreateTicket:     {},
		OpCloseOwnTicket:   {},
		OpListSubordinates: {},
	},
	domain.RoleTechnician: {
		OpProcessTicket: {},
	},
	domain.RoleChief: {
		OpAssignTicket:        {},
		OpRecommendTechnician: {},
		OpViewReporting:       {},
		OpManageCatalog:       {},
		OpManageUsers:         {},
	},
}

// Allows reports whether the role is granted the operation.
func Allows(role domain.Role, op Operation) bool {
	ops, ok := grants[role]
	if !ok {
		return false
	}
	_, ok = ops[op]
	return ok
}

// IsSupervisor reports whether requester supervises other: the requester
// must hold a supervisory rank, both must belong to the same department and
// the other's rank must be strictly lower.
func IsSupervisor(requester, other *domain.User) bool {
	if requester == nil || other == nil {
		return false
	}
	if requester.HierarchyCode <= 0 {
		return false
	}
	if requester.DepartmentID == nil || other.DepartmentID == nil {
		return false
	}
	if *requester.DepartmentID != *other.DepartmentID {
		return false
	}
	return other.HierarchyCode < requester.HierarchyCode
}

// CanReadTicket decides read access for a (user, ticket) pair. The creator
// argument carries the ticket creator's hierarchy position, needed for the
// supervisor rule.
func CanReadTicket(actor *domain.User, ticket *domain.Ticket, creator *domain.User) bool {
	if actor == nil || ticket == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleChief:
		return true
	case domain.RoleTechnician:
		if ticket.AssignedToID != nil && *ticket.AssignedToID == actor.ID {
			return true
		}
		return ticket.CreatedByID == actor.ID
	case domain.RoleEmployee:
		if ticket.CreatedByID == actor.ID {
			return true
		}
		return IsSupervisor(actor, creator)
	}
	return false
}

// CanComment decides comment-write access. Strictly narrower than read
// access: hierarchical supervisors may read but never comment.
func CanComment(actor *domain.User, ticket *domain.Ticket) bool {
	if actor == nil || ticket == nil {
		return false
	}
	if actor.Role == domain.RoleChief {
		return true
	}
	if ticket.CreatedByID == actor.ID {
		return true
	}
	return ticket.AssignedToID != nil && *ticket.AssignedToID == actor.ID &&
		actor.Role == domain.RoleTechnician
}
