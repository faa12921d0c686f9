package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/cookshelf/backend/internal/errors"
	"github.com/cookshelf/backend/internal/repository"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	_, db := newTestService(t, nil)
	return NewAuthService(repository.NewUserRepository(db), "test-secret")
}

func TestRegisterAndLogin(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "alice@example.com", "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	token, err := auth.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.False(t, claims.IsAdmin)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "bob@example.com", "bob", "correct-horse")
	require.NoError(t, err)

	_, err = auth.Login(ctx, "bob@example.com", "wrong-horse")
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))

	// Unknown email yields the same error message as a bad password.
	_, err = auth.Login(ctx, "nobody@example.com", "whatever")
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	auth := newTestAuthService(t)

	_, err := auth.Register(context.Background(), "carol@example.com", "carol", "short")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalid))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "dup@example.com", "first", "password-one")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "dup@example.com", "second", "password-two")
	assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	auth := newTestAuthService(t)
	other := NewAuthService(nil, "different-secret")

	token, err := other.GenerateToken(&TokenClaims{UserID: 1, Username: "mallory"})
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))
}
