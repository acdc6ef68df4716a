package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fastshift/internal/database"
	"github.com/iliyamo/fastshift/internal/identity"
	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/repository"
	"github.com/iliyamo/fastshift/internal/router"
	"github.com/iliyamo/fastshift/internal/service"
	"github.com/iliyamo/fastshift/internal/store"
)

const secret = "test-secret"

type api struct {
	t  *testing.T
	e  *echo.Echo
	st *store.Store
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(context.Background(), db, repository.SQLite))
	st := repository.NewStore(db)
	t.Cleanup(func() { _ = st.Close() })

	v, err := identity.NewVerifier(identity.Config{Secret: secret})
	require.NoError(t, err)

	e := echo.New()
	router.Register(e, router.Deps{
		Services: service.New(service.Deps{Store: st}),
		Verifier: v,
	})
	return &api{t: t, e: e, st: st}
}

func token(t *testing.T, email string) string {
	t.Helper()
	tok, err := identity.Issue(identity.IssueParams{Secret: secret, Subject: "uid-" + email, Email: email, TTL: time.Hour})
	require.NoError(t, err)
	return tok.Token
}

// do sends a JSON request as email; an empty email sends no credential.
func (a *api) do(method, path, email string, body any) (int, map[string]any, []any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if email != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(a.t, email))
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var (
		obj map[string]any
		arr []any
	)
	raw := rec.Body.Bytes()
	if len(raw) > 0 && raw[0] == '[' {
		require.NoError(a.t, json.Unmarshal(raw, &arr))
	} else if len(raw) > 0 && raw[0] == '{' {
		require.NoError(a.t, json.Unmarshal(raw, &obj))
	}
	return rec.Code, obj, arr
}

func (a *api) user(email, role string) {
	a.t.Helper()
	code, _, _ := a.do(http.MethodPost, "/users", "", map[string]any{"email": email, "name": email})
	require.Equal(a.t, http.StatusOK, code)
	if role != model.RoleUser {
		_, err := a.st.Users.SetRoleByEmail(context.Background(), email, role)
		require.NoError(a.t, err)
	}
}

func TestBookPayAndReadHistory(t *testing.T) {
	a := newAPI(t)

	code, body, _ := a.do(http.MethodPost, "/parcels", "", map[string]any{
		"created_by": "a@x.com", "title": "Docs", "cost": 120,
	})
	require.Equal(t, http.StatusCreated, code)
	parcelID, _ := body["insertedId"].(string)
	require.NotEmpty(t, parcelID)

	code, body, _ = a.do(http.MethodPost, "/payments", "", map[string]any{
		"parcel_id": parcelID, "amount": 120, "transaction_id": "tx1", "created_by": "a@x.com",
	})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["payment_id"])

	code, body, _ = a.do(http.MethodGet, "/payments?email=a@x.com", "a@x.com", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	code, body, _ = a.do(http.MethodGet, "/all-parcels/"+parcelID, "", nil)
	require.Equal(t, http.StatusOK, code)
	doc := body["data"].(map[string]any)
	assert.Equal(t, "paid", doc["payment_status"])
	assert.Equal(t, "not_collected", doc["delivery_status"])
	assert.Equal(t, "Docs", doc["title"])
}

func TestPaymentValidation(t *testing.T) {
	a := newAPI(t)

	code, body, _ := a.do(http.MethodPost, "/payments", "", map[string]any{"parcel_id": "p1"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing required fields", body["message"])

	code, _, _ = a.do(http.MethodPost, "/payments", "", map[string]any{
		"parcel_id": "missing", "amount": 10, "transaction_id": "tx", "created_by": "a@x.com",
	})
	assert.Equal(t, http.StatusNotFound, code)

	code, _, _ = a.do(http.MethodPost, "/create-payment-intent", "", map[string]any{"amountInCents": 0})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body, _ = a.do(http.MethodPost, "/create-payment-intent", "", map[string]any{"amountInCents": 500})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, false, body["success"])
}

func TestGuards(t *testing.T) {
	a := newAPI(t)
	a.user("user@x.com", model.RoleUser)
	a.user("boss@x.com", model.RoleAdmin)

	code, body, _ := a.do(http.MethodGet, "/riders/pending", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized access", body["message"])

	code, body, _ = a.do(http.MethodGet, "/riders/pending", "user@x.com", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Forbidden access", body["message"])

	code, _, arr := a.do(http.MethodGet, "/riders/pending", "boss@x.com", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, arr)

	// never signed in: no user record, so no role
	code, _, _ = a.do(http.MethodGet, "/users/search?q=x", "ghost@x.com", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _, _ = a.do(http.MethodGet, "/users/search", "boss@x.com", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	req := httptest.NewRequest(http.MethodGet, "/my-parcels?email=a@x.com", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMyParcelsOwnership(t *testing.T) {
	a := newAPI(t)
	_, _, _ = a.do(http.MethodPost, "/parcels", "", map[string]any{"created_by": "a@x.com"})

	code, _, _ := a.do(http.MethodGet, "/my-parcels?email=b@x.com", "a@x.com", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _, _ = a.do(http.MethodGet, "/my-parcels", "a@x.com", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body, _ := a.do(http.MethodGet, "/my-parcels?email=A@x.com", "a@x.com", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])
}

func TestDeliveryLifecycle(t *testing.T) {
	a := newAPI(t)
	a.user("boss@x.com", model.RoleAdmin)
	a.user("rider@x.com", model.RoleUser)

	_, body, _ := a.do(http.MethodPost, "/riders", "", map[string]any{
		"name": "Rider", "email": "rider@x.com", "district": "Dhaka", "bike": "Honda",
	})
	riderID := body["insertedId"].(string)

	code, body, _ := a.do(http.MethodPatch, "/riders/status/"+riderID, "boss@x.com", map[string]any{"status": "active"})
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["modifiedCount"])

	code, body, _ = a.do(http.MethodGet, "/users/rider@x.com/role", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "rider", body["role"])

	_, body, _ = a.do(http.MethodPost, "/parcels", "", map[string]any{"created_by": "a@x.com"})
	parcelID := body["insertedId"].(string)

	// delivered before assignment is a no-op
	code, body, _ = a.do(http.MethodPatch, "/parcels/"+parcelID+"/delivered", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["modifiedCount"])

	// unpaid parcels are not assignable
	code, body, _ = a.do(http.MethodPatch, "/parcels/"+parcelID+"/assign", "", map[string]any{"rider_id": riderID})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])

	_, _, _ = a.do(http.MethodPost, "/payments", "", map[string]any{
		"parcel_id": parcelID, "amount": "55.50", "transaction_id": "tx", "created_by": "a@x.com",
	})
	_, body, _ = a.do(http.MethodGet, "/parcels/assignable", "", nil)
	assert.EqualValues(t, 1, body["count"])

	code, body, _ = a.do(http.MethodPatch, "/parcels/"+parcelID+"/assign", "", map[string]any{"rider_id": riderID})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	code, _, _ = a.do(http.MethodGet, "/parcels/rider-tasks?email=rider@x.com", "boss@x.com", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _, tasks := a.do(http.MethodGet, "/parcels/rider-tasks?email=rider@x.com", "rider@x.com", nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, tasks, 1)

	code, body, _ = a.do(http.MethodPatch, "/parcels/"+parcelID+"/picked-up", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["modifiedCount"])

	code, _, _ = a.do(http.MethodPatch, "/parcels/"+parcelID+"/delivered", "", map[string]any{"delivery_status": "lost"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body, _ = a.do(http.MethodPatch, "/parcels/"+parcelID+"/delivered", "", map[string]any{"delivery_status": "service_center_delivered"})
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["modifiedCount"])

	_, _, done := a.do(http.MethodGet, "/parcels/rider-completed?email=rider@x.com", "rider@x.com", nil)
	require.Len(t, done, 1)

	_, body, _ = a.do(http.MethodPatch, "/parcels/"+parcelID+"/cashout", "", nil)
	assert.EqualValues(t, 1, body["modifiedCount"])
	_, body, _ = a.do(http.MethodPatch, "/parcels/"+parcelID+"/cashout", "", nil)
	assert.EqualValues(t, 0, body["modifiedCount"])

	_, _, counts := a.do(http.MethodGet, "/parcels/delivery/status-count", "", nil)
	require.Len(t, counts, 1)
	assert.Equal(t, "service_center_delivered", counts[0].(map[string]any)["status"])
}

func TestUsersAndTrackings(t *testing.T) {
	a := newAPI(t)

	code, body, _ := a.do(http.MethodPost, "/users", "", map[string]any{"email": "new@x.com"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["inserted"])

	code, body, _ = a.do(http.MethodPost, "/users", "", map[string]any{"email": "NEW@x.com"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["inserted"])
	assert.Equal(t, "User already exist", body["message"])

	code, _, _ = a.do(http.MethodGet, "/users/nobody@x.com/role", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _, _ = a.do(http.MethodPost, "/trackings", "", map[string]any{"tracking_id": "PCL-1"})
	assert.Equal(t, http.StatusBadRequest, code)

	for _, status := range []string{"picked", "hub"} {
		code, _, _ = a.do(http.MethodPost, "/trackings", "", map[string]any{
			"tracking_id": "PCL-1", "status": status, "location": "Dhaka",
		})
		require.Equal(t, http.StatusCreated, code)
	}
	_, _, events := a.do(http.MethodGet, "/trackings/PCL-1", "", nil)
	require.Len(t, events, 2)
	assert.Equal(t, "picked", events[0].(map[string]any)["status"])
	assert.Equal(t, "Dhaka", events[0].(map[string]any)["location"])
}

func TestDeleteAndPublicRoutes(t *testing.T) {
	a := newAPI(t)

	code, _, _ := a.do(http.MethodDelete, "/parcels/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	_, body, _ := a.do(http.MethodPost, "/parcels", "", map[string]any{"created_by": "a@x.com"})
	code, body, _ = a.do(http.MethodDelete, "/parcels/"+body["insertedId"].(string), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["deletedCount"])

	code, _, _ = a.do(http.MethodGet, "/riders/available", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "FastShift")
}

func TestServerStampedFieldsAreOverwritten(t *testing.T) {
	a := newAPI(t)

	code, body, _ := a.do(http.MethodPost, "/parcels", "", map[string]any{
		"created_by": "a@x.com", "created_at": "2025-07-01 10:00:00", "title": "Docs",
	})
	require.Equal(t, http.StatusCreated, code)
	_, body, _ = a.do(http.MethodGet, "/all-parcels/"+body["insertedId"].(string), "", nil)
	doc := body["data"].(map[string]any)
	assert.NotEqual(t, "2025-07-01 10:00:00", doc["created_at"])
	assert.Equal(t, "Docs", doc["title"])

	code, _, _ = a.do(http.MethodPost, "/riders", "", map[string]any{
		"name": "R", "email": "r@x.com", "district": "Dhaka", "created_at": 1751364000000,
	})
	assert.Equal(t, http.StatusOK, code)

	code, _, _ = a.do(http.MethodPost, "/trackings", "", map[string]any{
		"tracking_id": "PCL-9", "status": "hub", "timestamp": "now",
	})
	assert.Equal(t, http.StatusCreated, code)
	_, _, events := a.do(http.MethodGet, "/trackings/PCL-9", "", nil)
	require.Len(t, events, 1)
	assert.NotEqual(t, "now", events[0].(map[string]any)["timestamp"])
}

func TestPaymentHistoryEchoesNumericAmount(t *testing.T) {
	a := newAPI(t)
	_, body, _ := a.do(http.MethodPost, "/parcels", "", map[string]any{"created_by": "a@x.com"})
	_, _, _ = a.do(http.MethodPost, "/payments", "", map[string]any{
		"parcel_id": body["insertedId"], "amount": 500, "transaction_id": "tx1", "created_by": "a@x.com",
	})
	// paying twice for the same parcel is still recorded
	code, _, _ := a.do(http.MethodPost, "/payments", "", map[string]any{
		"parcel_id": body["insertedId"], "amount": 500, "transaction_id": "tx2", "created_by": "a@x.com",
	})
	require.Equal(t, http.StatusOK, code)

	_, body, _ = a.do(http.MethodGet, "/payments?email=a@x.com", "a@x.com", nil)
	items := body["data"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, float64(500), items[0].(map[string]any)["amount"])
}
