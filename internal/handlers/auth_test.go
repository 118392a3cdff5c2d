package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/deepchat/internal/models"
	"github.com/Skotchmaster/deepchat/internal/store"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	pair := env.register("test_user", "password")
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "bearer", pair.TokenType)

	// Duplicate username is a 400.
	payload := map[string]string{"username": "test_user", "password": "password"}
	_, c := env.doJSONRequest(http.MethodPost, "/register", payload)
	requireHTTPError(t, env.A.Register(c), http.StatusBadRequest)
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/register", map[string]string{"username": "nopw"})
	requireHTTPError(t, env.A.Register(c), http.StatusBadRequest)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register("test_user", "password")

	rec, c := env.doJSONRequest(http.MethodPost, "/login", map[string]string{
		"username": "test_user",
		"password": "password",
	})
	require.NoError(t, env.A.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var pair models.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.register("test_user", "password")

	for _, payload := range []map[string]string{
		{"username": "test_user", "password": "wrong"},
		{"username": "nobody", "password": "password"},
	} {
		_, c := env.doJSONRequest(http.MethodPost, "/login", payload)
		requireHTTPError(t, env.A.Login(c), http.StatusUnauthorized)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	env := newTestEnv(t)
	pair := env.register("test_user", "password")

	rec, c := env.doJSONRequest(http.MethodPost, "/refresh", map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	require.NoError(t, env.A.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var rotated models.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The rotated-away token is now unknown: 404.
	_, c = env.doJSONRequest(http.MethodPost, "/refresh", map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	requireHTTPError(t, env.A.Refresh(c), http.StatusNotFound)
}

func TestRefreshStaleSessionEndpoint(t *testing.T) {
	env := newTestEnv(t)
	pair := env.register("test_user", "password")

	sess := models.Session{
		Username:        "test_user",
		RefreshToken:    pair.RefreshToken,
		AccessExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt:       time.Now().Add(-time.Hour),
	}
	require.NoError(t, env.Store.Upsert(context.Background(), store.Sessions, "test_user", sess))

	_, c := env.doJSONRequest(http.MethodPost, "/refresh", map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	requireHTTPError(t, env.A.Refresh(c), http.StatusUnauthorized)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	pair := env.register("test_user", "password")

	rec, c := env.doJSONRequest(http.MethodPost, "/logout", map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	require.NoError(t, env.A.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Successfully logged out", resp["detail"])

	// Double logout is a 404.
	_, c = env.doJSONRequest(http.MethodPost, "/logout", map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	requireHTTPError(t, env.A.Logout(c), http.StatusNotFound)
}
