package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/deepchat/internal/handlers"
	"github.com/Skotchmaster/deepchat/internal/models"
)

func withParam(c echo.Context, name, value string) {
	c.SetParamNames(name)
	c.SetParamValues(value)
}

func createPresentation(t *testing.T, env *testEnv, title string, price int) models.Presentation {
	t.Helper()

	rec, c := env.doJSONRequest(http.MethodPost, "/presentations", map[string]any{
		"title": title,
		"price": price,
	})
	require.NoError(t, env.Pres.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var p models.Presentation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.NotEmpty(t, p.ID)
	return p
}

func TestPresentationCRUD(t *testing.T) {
	env := newTestEnv(t)

	p := createPresentation(t, env, "Intro to Go", 42)

	rec, c := env.doJSONRequest(http.MethodGet, "/presentations/"+p.ID, nil)
	withParam(c, "id", p.ID)
	require.NoError(t, env.Pres.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Presentation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, p, got)

	rec, c = env.doJSONRequest(http.MethodPut, "/presentations/"+p.ID, map[string]any{
		"title": "Advanced Go",
		"price": 99,
	})
	withParam(c, "id", p.ID)
	require.NoError(t, env.Pres.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, c = env.doJSONRequest(http.MethodGet, "/presentations", nil)
	require.NoError(t, env.Pres.List(c))
	var items []models.Presentation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	require.Equal(t, "Advanced Go", items[0].Title)

	rec, c = env.doJSONRequest(http.MethodDelete, "/presentations/"+p.ID, nil)
	withParam(c, "id", p.ID)
	require.NoError(t, env.Pres.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, c = env.doJSONRequest(http.MethodDelete, "/presentations/"+p.ID, nil)
	withParam(c, "id", p.ID)
	requireHTTPError(t, env.Pres.Delete(c), http.StatusNotFound)
}

func TestPresentationNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodGet, "/presentations/missing", nil)
	withParam(c, "id", "missing")
	requireHTTPError(t, env.Pres.Get(c), http.StatusNotFound)

	_, c = env.doJSONRequest(http.MethodPut, "/presentations/missing", map[string]any{"title": "x"})
	withParam(c, "id", "missing")
	requireHTTPError(t, env.Pres.Update(c), http.StatusNotFound)
}

func TestPurchaseCreateChecksReferences(t *testing.T) {
	env := newTestEnv(t)
	env.register("alice", "pw1")
	p := createPresentation(t, env, "Intro to Go", 42)

	// Unknown user.
	_, c := env.doJSONRequest(http.MethodPost, "/purchases", map[string]string{
		"user_id":         "ghost",
		"presentation_id": p.ID,
	})
	requireHTTPError(t, env.Purch.Create(c), http.StatusNotFound)

	// Unknown presentation.
	_, c = env.doJSONRequest(http.MethodPost, "/purchases", map[string]string{
		"user_id":         "alice",
		"presentation_id": "missing",
	})
	requireHTTPError(t, env.Purch.Create(c), http.StatusNotFound)

	rec, c := env.doJSONRequest(http.MethodPost, "/purchases", map[string]string{
		"user_id":         "alice",
		"presentation_id": p.ID,
	})
	require.NoError(t, env.Purch.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var purchase models.Purchase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &purchase))
	require.Equal(t, "alice", purchase.UserID)
	require.WithinDuration(t, time.Now(), purchase.PurchaseDate, 5*time.Second)
}

func TestPurchaseListByUser(t *testing.T) {
	env := newTestEnv(t)
	env.register("alice", "pw1")
	env.register("bob", "pw2")
	p := createPresentation(t, env, "Intro to Go", 42)

	for _, user := range []string{"alice", "alice", "bob"} {
		rec, c := env.doJSONRequest(http.MethodPost, "/purchases", map[string]string{
			"user_id":         user,
			"presentation_id": p.ID,
		})
		require.NoError(t, env.Purch.Create(c))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, c := env.doJSONRequest(http.MethodGet, "/purchases/user/alice", nil)
	withParam(c, "user_id", "alice")
	require.NoError(t, env.Purch.ListByUser(c))

	var items []models.Purchase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
}

func TestSubscriptionValidation(t *testing.T) {
	env := newTestEnv(t)
	env.register("alice", "pw1")

	// Bad type.
	_, c := env.doJSONRequest(http.MethodPost, "/subscriptions", map[string]any{
		"user_id": "alice",
		"type":    "gold",
		"status":  "active",
	})
	requireHTTPError(t, env.Subs.Create(c), http.StatusBadRequest)

	// Bad status.
	_, c = env.doJSONRequest(http.MethodPost, "/subscriptions", map[string]any{
		"user_id": "alice",
		"type":    "standard",
		"status":  "paused",
	})
	requireHTTPError(t, env.Subs.Create(c), http.StatusBadRequest)

	// Unknown user.
	_, c = env.doJSONRequest(http.MethodPost, "/subscriptions", map[string]any{
		"user_id": "ghost",
		"type":    "standard",
		"status":  "active",
	})
	requireHTTPError(t, env.Subs.Create(c), http.StatusNotFound)
}

type failingStore struct{}

var errStoreDown = errors.New("dial tcp 127.0.0.1:27017: connection refused")

func (failingStore) Get(ctx context.Context, collection, key string, out any) error {
	return errStoreDown
}

func (failingStore) FindOne(ctx context.Context, collection, field, value string, out any) error {
	return errStoreDown
}

func (failingStore) List(ctx context.Context, collection string, out any) error {
	return errStoreDown
}

func (failingStore) ListByField(ctx context.Context, collection, field, value string, out any) error {
	return errStoreDown
}

func (failingStore) Upsert(ctx context.Context, collection, key string, doc any) error {
	return errStoreDown
}

func (failingStore) Delete(ctx context.Context, collection, key string) (bool, error) {
	return false, errStoreDown
}

// Store failures surface as a fixed 500 body; the underlying error stays on
// the server side.
func TestStoreFailuresAreNotEchoed(t *testing.T) {
	env := newTestEnv(t)

	pres := &handlers.PresentationHandler{Store: failingStore{}, Index: "presentations"}
	purch := &handlers.PurchaseHandler{Store: failingStore{}}
	subs := &handlers.SubscriptionHandler{Store: failingStore{}}

	_, c := env.doJSONRequest(http.MethodGet, "/presentations", nil)
	listErr := pres.List(c)

	_, c = env.doJSONRequest(http.MethodGet, "/purchases/p1", nil)
	withParam(c, "id", "p1")
	getErr := purch.Get(c)

	_, c = env.doJSONRequest(http.MethodDelete, "/subscriptions/s1", nil)
	withParam(c, "id", "s1")
	delErr := subs.Delete(c)

	for _, err := range []error{listErr, getErr, delErr} {
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "expected HTTPError, got %v", err)
		require.Equal(t, http.StatusInternalServerError, he.Code)
		require.Equal(t, "internal error", he.Message)
		require.NotContains(t, fmt.Sprint(he.Message), "connection refused")
	}
}

func TestSubscriptionCRUD(t *testing.T) {
	env := newTestEnv(t)
	env.register("alice", "pw1")

	start := time.Now().UTC().Truncate(time.Second)
	end := start.AddDate(0, 1, 0)

	rec, c := env.doJSONRequest(http.MethodPost, "/subscriptions", map[string]any{
		"user_id":    "alice",
		"type":       "premium",
		"status":     "active",
		"start_date": start,
		"end_date":   end,
	})
	require.NoError(t, env.Subs.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var sub models.Subscription
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
	require.Equal(t, models.SubscriptionPremium, sub.Type)

	rec, c = env.doJSONRequest(http.MethodPut, "/subscriptions/"+sub.ID, map[string]any{
		"user_id":    "alice",
		"type":       "premium",
		"status":     "inactive",
		"start_date": start,
		"end_date":   end,
	})
	withParam(c, "id", sub.ID)
	require.NoError(t, env.Subs.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Subscription
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, models.StatusInactive, updated.Status)

	rec, c = env.doJSONRequest(http.MethodDelete, "/subscriptions/"+sub.ID, nil)
	withParam(c, "id", sub.ID)
	require.NoError(t, env.Subs.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, c = env.doJSONRequest(http.MethodGet, "/subscriptions/"+sub.ID, nil)
	withParam(c, "id", sub.ID)
	requireHTTPError(t, env.Subs.Get(c), http.StatusNotFound)
}
