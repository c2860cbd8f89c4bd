package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallery-backend-go/internal/core"
	"gallery-backend-go/internal/middleware"
	"gallery-backend-go/internal/models"
)

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, newStripe(t, ""), newMemUserRepo())

	rec := app.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"UP"}`, rec.Body.String())

	payload := []byte(fmt.Sprintf(`{"id":"evt_m","object":"event","type":"invoice.paid","created":%d,"data":{"object":{"id":"in_1","object":"invoice"}}}`, time.Now().Unix()))
	rec = postWebhook(app, payload, signPayload(testWebhookSecret, payload, time.Now().Unix()))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `gallery_webhook_events_total{event_type="invoice.paid",outcome="ignored"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUserEndpoints(t *testing.T) {
	users := newMemUserRepo()
	app := newTestApp(t, newStripe(t, ""), users)

	rec := app.do(http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodGet, "/api/v1/users/me", "", bearer("tok-u1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(http.MethodPost, "/api/v1/users/initialize", "", bearer("tok-u1"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "u1@example.com", user.Email)
	assert.Equal(t, models.SubscriptionInactive, user.Subscription.Status)

	rec = app.do(http.MethodPost, "/api/v1/users/initialize", "", bearer("tok-u1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/api/v1/users/me/subscription", "", bearer("tok-u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	var sub models.Subscription
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
	assert.Equal(t, models.SubscriptionInactive, sub.Status)

	rec = app.do(http.MethodPut, "/api/v1/users/me/preferences", `{}`, bearer("tok-u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadAvatarEndpoint(t *testing.T) {
	users := newMemUserRepo(&models.User{ID: "u1"})
	app := newTestApp(t, newStripe(t, ""), users)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="me.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/me/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer tok-u1")
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"url":"https://files.test/profile-images/u1"}`, rec.Body.String())
}

func TestContentEndpoints(t *testing.T) {
	users := newMemUserRepo(
		&models.User{ID: "u1"},
		&models.User{ID: "boss", Role: models.RoleAdmin},
	)
	app := newTestApp(t, newStripe(t, ""), users)

	rec := app.do(http.MethodGet, "/api/v1/content/c1", "", bearer("tok-u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"for u1"`)

	app.content.getErr = core.ErrSubscriptionRequired
	rec = app.do(http.MethodGet, "/api/v1/content/c1", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	app.content.getErr = core.ErrContentNotFound
	rec = app.do(http.MethodGet, "/api/v1/content/c1", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(http.MethodGet, "/api/v1/content?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(http.MethodDelete, "/api/v1/content/c1", "", bearer("tok-u1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUploadContentEndpoint(t *testing.T) {
	users := newMemUserRepo(&models.User{ID: "boss", Role: models.RoleAdmin})
	app := newTestApp(t, newStripe(t, ""), users)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Sunsets"))
	require.NoError(t, mw.WriteField("isPublic", "true"))
	for _, name := range []string{"a.jpg", "b.jpg"} {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		h.Set("Content-Type", "image/jpeg")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, _ = part.Write([]byte(name))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/content", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer tok-admin")
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, app.content.uploaded, 2)
	assert.Equal(t, "image/jpeg", app.content.uploaded[0].ContentType)

	var created []models.ContentSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Sunsets", created[1].Title)
}

func TestAdminEndpoints(t *testing.T) {
	users := newMemUserRepo(&models.User{ID: "u1"}, &models.User{ID: "boss", Role: models.RoleAdmin})
	app := newTestApp(t, newStripe(t, ""), users)

	rec := app.do(http.MethodGet, "/api/v1/admin/stats", "", bearer("tok-u1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodGet, "/api/v1/admin/stats", "", bearer("tok-admin"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalUsers":3,"activeSubscribers":1,"totalContent":7}`, rec.Body.String())
}

func TestTrackEventEndpoint(t *testing.T) {
	app := newTestApp(t, newStripe(t, ""), newMemUserRepo())

	rec := app.do(http.MethodPost, "/api/v1/analytics/events", `{"action":"view_content"}`, bearer("tok-u1"))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = app.do(http.MethodPost, "/api/v1/analytics/events", `{}`, bearer("tok-u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorBodiesShareOneShape(t *testing.T) {
	app := newTestApp(t, newStripe(t, ""), newMemUserRepo())

	// Aborted by the auth middleware.
	rec := app.do(http.MethodGet, "/api/v1/users/me", "", bearer("tok-unknown"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var fromMiddleware middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fromMiddleware))
	assert.Equal(t, "Invalid or expired authentication token", fromMiddleware.Error)

	// Written by a handler.
	rec = app.do(http.MethodPost, "/create-portal-session", `{}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var fromHandler ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fromHandler))
	assert.NotEmpty(t, fromHandler.Error)

	var shared middleware.ErrorResponse = fromHandler
	assert.Equal(t, fromHandler.Error, shared.Error)
}
