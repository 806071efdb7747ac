package service

import (
	"context"
	"sort"

	"github.com/spec-kit/it-helpdesk/internal/domain"
	"github.com/spec-kit/it-helpdesk/internal/policy"
	"github.com/spec-kit/it-helpdesk/internal/repository"
	apperrors "github.com/spec-kit/it-helpdesk/pkg/util/errorutil"
)

const recommendationSize = 5

// TechnicianLoad annotates a technician with the count of tickets currently
// open or in progress under their name.
type TechnicianLoad struct {
	Technician domain.User
	ActiveLoad int
}

// WorkloadService ranks technicians by active load to recommend an
// assignee. It is a pure read-side recommendation; acting on it is a
// separate reassignment by the chief.
type WorkloadService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
}

// NewWorkloadService constructs the service.
func NewWorkloadService(tickets repository.TicketRepository, users repository.UserRepository) *WorkloadService {
	return &WorkloadService{tickets: tickets, users: users}
}

// Recommend returns up to five technicians sorted by ascending active load,
// ties broken by id so repeated calls on the same data rank identically.
func (s *WorkloadService) Recommend(ctx context.Context, actor *domain.User) ([]TechnicianLoad, error) {
	if !policy.Allows(actor.Role, policy.OpRecommendTechnician) {
		return nil, apperrors.NewForbidden("chief role required")
	}

	roster, err := s.users.ListByRole(ctx, domain.RoleTechnician)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	loads, err := s.tickets.CountActiveByTechnician(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ranked := make([]TechnicianLoad, 0, len(roster))
	for _, technician := range roster {
		ranked = append(ranked, TechnicianLoad{
			Technician: technician,
			ActiveLoad: loads[technician.ID],
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ActiveLoad != ranked[j].ActiveLoad {
			return ranked[i].ActiveLoad < ranked[j].ActiveLoad
		}
		return ranked[i].Technician.ID < ranked[j].Technician.ID
	})

	if len(ranked) > recommendationSize {
		ranked = ranked[:recommendationSize]
	}
	return ranked, nil
}
