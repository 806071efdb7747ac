package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/it-helpdesk/internal/auth"
	"github.com/spec-kit/it-helpdesk/internal/config"
	"github.com/spec-kit/it-helpdesk/internal/domain"
)

func newAuthFixture(t *testing.T) (*AuthService, *memUserRepo) {
	t.Helper()
	users := newMemUserRepo()
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}}
	return NewAuthService(cfg, users), users
}

func TestLoginIssuesTokenWithIdentityContext(t *testing.T) {
	svc, users := newAuthFixture(t)

	hash, err := auth.HashPassword("correct horse", 4)
	require.NoError(t, err)
	deptID := int64(3)
	stored := users.add(domain.User{
		Name: "Alice", Surname: "Martin", Email: "alice@corp.test",
		PasswordHash: hash, Role: domain.RoleEmployee,
		HierarchyCode: 2, DepartmentID: &deptID,
	})

	user, token, expiresAt, err := svc.Login(context.Background(), "alice@corp.test", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, user.ID)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)
	assert.Equal(t, domain.RoleEmployee, claims.Role)
	assert.Equal(t, 2, claims.HierarchyCode)
	require.NotNil(t, claims.DepartmentID)
	assert.Equal(t, deptID, *claims.DepartmentID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, users := newAuthFixture(t)

	hash, err := auth.HashPassword("correct horse", 4)
	require.NoError(t, err)
	users.add(domain.User{
		Name: "Alice", Surname: "Martin", Email: "alice@corp.test",
		PasswordHash: hash, Role: domain.RoleEmployee,
	})

	_, _, _, err = svc.Login(context.Background(), "alice@corp.test", "wrong password")
	requireDomainCode(t, err, "UNAUTHORIZED")

	// unknown accounts fail the same way, not with a 404
	_, _, _, err = svc.Login(context.Background(), "ghost@corp.test", "whatever")
	requireDomainCode(t, err, "UNAUTHORIZED")
}

func TestTokenRejectedAcrossSecrets(t *testing.T) {
	users := newMemUserRepo()
	user := users.add(domain.User{
		Name: "Alice", Surname: "Martin", Email: "alice@corp.test", Role: domain.RoleEmployee,
	})

	manager := auth.NewTokenManager("test-secret", 1)
	token, _, err := manager.GenerateToken(&user)
	require.NoError(t, err)

	_, err = manager.ParseToken(token)
	require.NoError(t, err)

	other := auth.NewTokenManager("different-secret", 1)
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}
