package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "s3cret-pass")

	w = env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]string](t, w)
	token := body["token"]
	require.NotEmpty(t, token)

	// The issued token authenticates a write.
	w = env.request(t, http.MethodPost, "/api/v1/recipes", token, map[string]any{"name": "First dish"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestLoginBadPassword(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":    "bob@example.com",
		"username": "bob",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "bob@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]any{
		"email":    "dup@example.com",
		"username": "first",
		"password": "password-one",
	}
	w := env.request(t, http.MethodPost, "/api/v1/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	payload["username"] = "second"
	w = env.request(t, http.MethodPost, "/api/v1/auth/register", "", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
