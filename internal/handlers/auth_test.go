package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"name":     "",
		"email":    "not-an-email",
		"password": "short",
	})

	require.Equal(t, http.StatusBadRequest, resp.Code)

	payload := decode(t, resp)
	details, ok := payload["details"].(map[string]interface{})
	require.True(t, ok, "expected per-field details: %s", resp.Body.String())
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "Alice", "alice@example.com")

	resp := env.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"name":     "Alice Again",
		"email":    "Alice@Example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusConflict, resp.Code, resp.Body.String())
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "Alice", "alice@example.com")

	resp := env.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = env.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "nobody@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestMeRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = env.do(t, http.MethodGet, "/auth/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestMeAndUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")

	resp := env.do(t, http.MethodGet, "/auth/me", alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	user := decode(t, resp)["user"].(map[string]interface{})
	assert.Equal(t, "Alice", user["name"])
	assert.Equal(t, "alice@example.com", user["email"])

	resp = env.do(t, http.MethodPatch, "/auth/me", alice.Token, gin.H{
		"name": "Alice Cooper",
		"bio":  "drummer",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	user = decode(t, resp)["user"].(map[string]interface{})
	assert.Equal(t, "Alice Cooper", user["name"])
	assert.Equal(t, "drummer", user["bio"])
}

func TestRefreshRotation(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "Alice", "alice@example.com")

	resp := env.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	refreshToken := decode(t, resp)["refresh_token"].(string)

	resp = env.do(t, http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": refreshToken})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	rotated := decode(t, resp)
	assert.NotEmpty(t, rotated["token"])
	assert.NotEmpty(t, rotated["refresh_token"])

	// The old refresh token was revoked by the rotation.
	resp = env.do(t, http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": refreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")

	resp := env.do(t, http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": alice.Token})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogoutRevokesRefreshTokens(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "Alice", "alice@example.com")

	resp := env.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	login := decode(t, resp)
	token := login["token"].(string)
	refreshToken := login["refresh_token"].(string)

	resp = env.do(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = env.do(t, http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": refreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")

	resp := env.do(t, http.MethodPost, "/auth/change-password", alice.Token, gin.H{
		"current_password": "wrong",
		"new_password":     "newpassword123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = env.do(t, http.MethodPost, "/auth/change-password", alice.Token, gin.H{
		"current_password": "password123",
		"new_password":     "newpassword123",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = env.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = env.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "newpassword123",
	})
	assert.Equal(t, http.StatusOK, resp.Code)
}
