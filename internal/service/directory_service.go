package service

import (
	"context"
	"strings"

	"github.com/spec-kit/it-helpdesk/internal/domain"
	"github.com/spec-kit/it-helpdesk/internal/policy"
	"github.com/spec-kit/it-helpdesk/internal/repository"
	apperrors "github.com/spec-kit/it-helpdesk/pkg/util/errorutil"
)

// DirectoryService covers the organizational surface around tickets:
// subordinate listing, the technician roster, user provisioning and the
// static catalogs. These are plain persistence wrappers; the only
// invariants are uniqueness and referential integrity.
type DirectoryService struct {
	users        repository.UserRepository
	departments  repository.DepartmentRepository
	applications repository.ApplicationRepository
	materiels    repository.MaterielRepository
	auth         *AuthService
}

// DirectoryDependencies bundles repositories for the directory service.
type DirectoryDependencies struct {
	UserRepo        repository.UserRepository
	DepartmentRepo  repository.DepartmentRepository
	ApplicationRepo repository.ApplicationRepository
	MaterielRepo    repository.MaterielRepository
	Auth            *AuthService
}

// UserCreateInput describes chief-side user provisioning.
type UserCreateInput struct {
	Name          string
	Surname       string
	Email         string
	Password      string
	Role          domain.Role
	HierarchyCode int
	DepartmentID  *int64
}

// NewDirectoryService constructs the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{
		users:        deps.UserRepo,
		departments:  deps.DepartmentRepo,
		applications: deps.ApplicationRepo,
		materiels:    deps.MaterielRepo,
		auth:         deps.Auth,
	}
}

// ListSubordinates returns the actor's subordinates: same department,
// strictly lower hierarchy code, closest-ranked first.
func (s *DirectoryService) ListSubordinates(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if actor.HierarchyCode <= 0 || actor.DepartmentID == nil {
		return []domain.User{}, nil
	}
	subordinates, err := s.users.ListSubordinates(ctx, *actor.DepartmentID, actor.HierarchyCode)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return subordinates, nil
}

// ListTechnicians returns the technician roster for the chief.
func (s *DirectoryService) ListTechnicians(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if !policy.Allows(actor.Role, policy.OpManageUsers) {
		return nil, apperrors.NewForbidden("chief role required")
	}
	roster, err := s.users.ListByRole(ctx, domain.RoleTechnician)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return roster, nil
}

// CreateUser provisions an account; chief only.
func (s *DirectoryService) CreateUser(ctx context.Context, actor *domain.User, input UserCreateInput) (*domain.User, error) {
	if !policy.Allows(actor.Role, policy.OpManageUsers) {
		return nil, apperrors.NewForbidden("chief role required")
	}
	if input.Role != domain.RoleEmployee && input.Role != domain.RoleTechnician && input.Role != domain.RoleChief {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
	}
	if input.HierarchyCode < 0 {
		return nil, apperrors.NewValidationError("hierarchy code must be non-negative", nil)
	}

	hash, err := s.auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user := &domain.User{
		Name:          strings.TrimSpace(input.Name),
		Surname:       strings.TrimSpace(input.Surname),
		Email:         strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash:  hash,
		Role:          input.Role,
		HierarchyCode: input.HierarchyCode,
		DepartmentID:  input.DepartmentID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// CreateDepartment inserts a department; names are unique case-insensitively.
func (s *DirectoryService) CreateDepartment(ctx context.Context, actor *domain.User, name string, responsibleUserID *int64) (*domain.Department, error) {
	if err := s.requireCatalogAccess(actor, &name); err != nil {
		return nil, err
	}
	dept := &domain.Department{Name: name, ResponsibleUserID: responsibleUserID}
	if err := s.departments.Create(ctx, dept); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("department name already exists", map[string]any{"name": name})
		}
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// ListDepartments lists every department.
func (s *DirectoryService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return departments, nil
}

// CreateApplication inserts a software catalog entry.
func (s *DirectoryService) CreateApplication(ctx context.Context, actor *domain.User, name string) (*domain.Application, error) {
	if err := s.requireCatalogAccess(actor, &name); err != nil {
		return nil, err
	}
	app := &domain.Application{Name: name}
	if err := s.applications.Create(ctx, app); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("application name already exists", map[string]any{"name": name})
		}
		return nil, apperrors.MapError(err)
	}
	return app, nil
}

// ListApplications lists the software catalog.
func (s *DirectoryService) ListApplications(ctx context.Context) ([]domain.Application, error) {
	applications, err := s.applications.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return applications, nil
}

// CreateMateriel inserts a hardware catalog entry.
func (s *DirectoryService) CreateMateriel(ctx context.Context, actor *domain.User, name string) (*domain.Materiel, error) {
	if err := s.requireCatalogAccess(actor, &name); err != nil {
		return nil, err
	}
	materiel := &domain.Materiel{Name: name}
	if err := s.materiels.Create(ctx, materiel); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("materiel name already exists", map[string]any{"name": name})
		}
		return nil, apperrors.MapError(err)
	}
	return materiel, nil
}

// ListMateriels lists the hardware catalog.
func (s *DirectoryService) ListMateriels(ctx context.Context) ([]domain.Materiel, error) {
	materiels, err := s.materiels.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return materiels, nil
}

func (s *DirectoryService) requireCatalogAccess(actor *domain.User, name *string) error {
	if !policy.Allows(actor.Role, policy.OpManageCatalog) {
		return apperrors.NewForbidden("chief role required")
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	*name = trimmed
	return nil
}
