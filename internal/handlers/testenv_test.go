package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/deepchat/internal/auth"
	"github.com/Skotchmaster/deepchat/internal/handlers"
	"github.com/Skotchmaster/deepchat/internal/models"
	"github.com/Skotchmaster/deepchat/internal/store"
	"github.com/Skotchmaster/deepchat/internal/tokens"
)

type testEnv struct {
	T     *testing.T
	E     *echo.Echo
	Store *store.Memory
	Guard *auth.Guard

	A     *handlers.AuthHandler
	Pres  *handlers.PresentationHandler
	Purch *handlers.PurchaseHandler
	Subs  *handlers.SubscriptionHandler
}

func newTestEnv(t *testing.T) *testEnv {
	mem := store.NewMemory()
	codec := &tokens.Codec{
		Secret:     []byte("test-secret"),
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	svc := &auth.Service{Store: mem, Codec: codec}

	return &testEnv{
		T:     t,
		E:     echo.New(),
		Store: mem,
		Guard: &auth.Guard{Store: mem, Codec: codec},
		A:     &handlers.AuthHandler{Svc: svc},
		Pres:  &handlers.PresentationHandler{Store: mem, Index: "presentations"},
		Purch: &handlers.PurchaseHandler{Store: mem},
		Subs:  &handlers.SubscriptionHandler{Store: mem},
	}
}

func (env *testEnv) doJSONRequest(method, path string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) register(username, password string) models.TokenPair {
	env.T.Helper()

	payload := map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/register", payload)
	require.NoError(env.T, env.A.Register(c))
	require.Equal(env.T, http.StatusOK, rec.Code)

	var pair models.TokenPair
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &pair))
	return pair
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
}
