package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/it-helpdesk/internal/config"
	"github.com/spec-kit/it-helpdesk/internal/domain"
)

type directoryFixture struct {
	service *DirectoryService
	users   *memUserRepo
	chief   domain.User
}

func newDirectoryFixture(t *testing.T) *directoryFixture {
	t.Helper()
	users := newMemUserRepo()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4}}
	authService := NewAuthService(cfg, users)

	fx := &directoryFixture{
		users: users,
		service: NewDirectoryService(DirectoryDependencies{
			UserRepo:        users,
			DepartmentRepo:  newMemDepartmentRepo(),
			ApplicationRepo: newMemApplicationRepo(),
			MaterielRepo:    newMemMaterielRepo(),
			Auth:            authService,
		}),
	}
	fx.chief = users.add(domain.User{
		Name: "Carol", Surname: "Dupont", Email: "carol@corp.test", Role: domain.RoleChief, HierarchyCode: 9,
	})
	return fx
}

func TestListSubordinatesOrdering(t *testing.T) {
	fx := newDirectoryFixture(t)
	deptID := int64(1)

	supervisor := fx.users.add(domain.User{
		Name: "Sam", Surname: "Leroy", Email: "sam@corp.test",
		Role: domain.RoleEmployee, HierarchyCode: 5, DepartmentID: &deptID,
	})
	fx.users.add(domain.User{
		Name: "Bea", Surname: "Low", Email: "bea@corp.test",
		Role: domain.RoleEmployee, HierarchyCode: 1, DepartmentID: &deptID,
	})
	fx.users.add(domain.User{
		Name: "Abe", Surname: "Mid", Email: "abe@corp.test",
		Role: domain.RoleEmployee, HierarchyCode: 3, DepartmentID: &deptID,
	})
	fx.users.add(domain.User{
		Name: "Zoe", Surname: "Mid", Email: "zoe@corp.test",
		Role: domain.RoleEmployee, HierarchyCode: 3, DepartmentID: &deptID,
	})
	// peers and higher-ups never appear
	fx.users.add(domain.User{
		Name: "Pat", Surname: "Peer", Email: "pat@corp.test",
		Role: domain.RoleEmployee, HierarchyCode: 5, DepartmentID: &deptID,
	})
	// other departments never appear either
	otherDept := int64(2)
	fx.users.add(domain.User{
		Name: "Nia", Surname: "Other", Email: "nia@corp.test",
		Role: domain.RoleEmployee, HierarchyCode: 1, DepartmentID: &otherDept,
	})

	subordinates, err := fx.service.ListSubordinates(context.Background(), &supervisor)
	require.NoError(t, err)

	require.Len(t, subordinates, 3)
	assert.Equal(t, "Abe", subordinates[0].Name)
	assert.Equal(t, "Zoe", subordinates[1].Name)
	assert.Equal(t, "Bea", subordinates[2].Name)
}

func TestListSubordinatesEmptyForLeafUsers(t *testing.T) {
	fx := newDirectoryFixture(t)
	deptID := int64(1)

	leaf := fx.users.add(domain.User{
		Name: "Bea", Surname: "Low", Email: "bea@corp.test",
		Role: domain.RoleEmployee, HierarchyCode: 0, DepartmentID: &deptID,
	})
	subordinates, err := fx.service.ListSubordinates(context.Background(), &leaf)
	require.NoError(t, err)
	assert.Empty(t, subordinates)

	floating := fx.users.add(domain.User{
		Name: "Omar", Surname: "Kone", Email: "omar@corp.test",
		Role: domain.RoleEmployee, HierarchyCode: 5,
	})
	subordinates, err = fx.service.ListSubordinates(context.Background(), &floating)
	require.NoError(t, err)
	assert.Empty(t, subordinates)
}

func TestCreateUserChiefOnly(t *testing.T) {
	fx := newDirectoryFixture(t)

	input := UserCreateInput{
		Name: "New", Surname: "Hire", Email: "New.Hire@corp.test",
		Password: "s3cret-pass", Role: domain.RoleTechnician,
	}

	employee := fx.users.add(domain.User{
		Name: "Alice", Surname: "Martin", Email: "alice@corp.test", Role: domain.RoleEmployee,
	})
	_, err := fx.service.CreateUser(context.Background(), &employee, input)
	requireDomainCode(t, err, "FORBIDDEN")

	created, err := fx.service.CreateUser(context.Background(), &fx.chief, input)
	require.NoError(t, err)
	assert.Equal(t, "new.hire@corp.test", created.Email)
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, input.Password, created.PasswordHash)

	_, err = fx.service.CreateUser(context.Background(), &fx.chief, UserCreateInput{
		Name: "Bad", Surname: "Role", Email: "bad@corp.test",
		Password: "s3cret-pass", Role: domain.Role("SUPERADMIN"),
	})
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestCatalogCreationChiefOnly(t *testing.T) {
	fx := newDirectoryFixture(t)

	employee := fx.users.add(domain.User{
		Name: "Alice", Surname: "Martin", Email: "alice@corp.test", Role: domain.RoleEmployee,
	})

	_, err := fx.service.CreateDepartment(context.Background(), &employee, "Accounting", nil)
	requireDomainCode(t, err, "FORBIDDEN")

	dept, err := fx.service.CreateDepartment(context.Background(), &fx.chief, "  Accounting  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Accounting", dept.Name)

	_, err = fx.service.CreateApplication(context.Background(), &fx.chief, "   ")
	requireDomainCode(t, err, "VALIDATION_FAILED")

	app, err := fx.service.CreateApplication(context.Background(), &fx.chief, "Payroll Suite")
	require.NoError(t, err)
	assert.NotZero(t, app.ID)

	materiel, err := fx.service.CreateMateriel(context.Background(), &fx.chief, "Laptop Dock")
	require.NoError(t, err)
	assert.NotZero(t, materiel.ID)
}
