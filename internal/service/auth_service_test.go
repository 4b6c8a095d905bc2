package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/repair-service/internal/auth"
	"github.com/spec-kit/repair-service/internal/config"
	"github.com/spec-kit/repair-service/internal/domain"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

func newAuthService(users *mockUserRepo) *AuthService {
	return NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 30,
		BcryptCost:            bcrypt.MinCost,
	}, users)
}

func TestLoginIssuesToken(t *testing.T) {
	hashed, err := auth.HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	storeID := int64(2)
	lastLoginStamped := false
	users := &mockUserRepo{
		GetByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			assert.Equal(t, "mina", username)
			return &domain.User{ID: 12, Username: "mina", PasswordHash: hashed, Role: domain.RoleManager, StoreID: &storeID}, nil
		},
		UpdateLastLoginFn: func(ctx context.Context, id int64) error {
			lastLoginStamped = true
			return nil
		},
	}
	svc := newAuthService(users)

	result, err := svc.Login(context.Background(), "mina", "s3cret")
	require.NoError(t, err)
	assert.True(t, lastLoginStamped)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, int64(12), result.User.ID)

	claims, err := svc.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)
	assert.Equal(t, domain.RoleManager, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	hashed, err := auth.HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	users := &mockUserRepo{
		GetByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 12, Username: "mina", PasswordHash: hashed, Role: domain.RoleStaff}, nil
		},
	}
	svc := newAuthService(users)

	_, err = svc.Login(context.Background(), "mina", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newAuthService(&mockUserRepo{})

	_, err := svc.Login(context.Background(), "ghost", "whatever")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}
