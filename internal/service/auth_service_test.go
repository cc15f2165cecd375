package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-api/internal/password"
	"go-auth-api/internal/repository"
	"go-auth-api/internal/token"
	"go-auth-api/pkg/apierror"
)

func newTestService() (*AuthService, *repository.MemoryUserRepository) {
	users := repository.NewMemoryUserRepository()
	tokens := token.NewManager("test-secret", 30*time.Minute, 7*24*time.Hour)
	return NewAuthService(users, password.NewHasher(), tokens), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	pair, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.Equal(t, int64(1800), pair.ExpiresIn)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other12345")
	require.Error(t, err)

	var apiErr *apierror.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "ALREADY_REGISTERED", apiErr.Code)
	assert.Equal(t, 400, apiErr.HTTPStatus)

	// The duplicate check is case-insensitive, matching the store's
	// unique index.
	_, err = svc.Register(ctx, "ALICE", "other12345")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "ALREADY_REGISTERED", apiErr.Code)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
		field    string
	}{
		{"short username", "ab", "password123", "username"},
		{"long username", string(make([]byte, 51)), "password123", "username"},
		{"short password", "alice", "short", "password"},
		{"long password", "alice", string(make([]byte, 73)), "password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.username, tc.password)
			require.Error(t, err)

			var apiErr *apierror.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
			assert.Equal(t, 422, apiErr.HTTPStatus)
			assert.Equal(t, tc.field, apiErr.Details)
		})
	}
}

func TestLoginDoesNotLeakWhichHalfFailed(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "alice", "not-the-password")
	_, unknownUser := svc.Login(ctx, "nonexistent", "anything-at-all")

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestRefreshIssuesNewPairForSameSubject(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	tokens := token.NewManager("test-secret", 30*time.Minute, 7*24*time.Hour)

	_, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	renewed, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	subject, err := tokens.ValidateAccess(renewed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)

	// No rotation: the original refresh token stays usable.
	again, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, again.AccessToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	require.Error(t, err)

	var apiErr *apierror.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.HTTPStatus)
}

func TestWhoami(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	user, err := svc.Whoami(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "alice", user.Username)

	// A refresh token never authenticates a resource request.
	_, err = svc.Whoami(ctx, pair.RefreshToken)
	require.Error(t, err)

	// Valid token, user deleted after issuance.
	require.NoError(t, users.Delete(ctx, registered.ID))
	_, err = svc.Whoami(ctx, pair.AccessToken)
	require.Error(t, err)

	var apiErr *apierror.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, 404, apiErr.HTTPStatus)
}
