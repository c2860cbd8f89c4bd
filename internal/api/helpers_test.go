package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"gallery-backend-go/internal/core"
	"gallery-backend-go/internal/db"
	"gallery-backend-go/internal/models"
	"gallery-backend-go/internal/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testWebhookSecret = "whsec_test"

func signPayload(secret string, payload []byte, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// memUserRepo is an in-memory db.UserRepository.
type memUserRepo struct {
	mu        sync.Mutex
	users     map[string]*models.User
	updateErr error
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	r := &memUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user '%s': %w", userID, db.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) UpdateFields(_ context.Context, userID string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user '%s': %w", userID, db.ErrNotFound)
	}
	if v, ok := fields["photoURL"].(string); ok {
		u.PhotoURL = v
	}
	return nil
}

func (r *memUserRepo) UpdateSubscription(_ context.Context, userID string, change models.SubscriptionChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user '%s': %w", userID, db.ErrNotFound)
	}
	u.Subscription.Status = change.Status
	u.Subscription.CustomerID = change.CustomerID
	u.Subscription.SubscriptionID = change.SubscriptionID
	u.Subscription.PriceID = change.PriceID
	return nil
}

func (r *memUserRepo) FindByCustomerID(_ context.Context, customerID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Subscription.CustomerID == customerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("customer '%s': %w", customerID, db.ErrNotFound)
}

func (r *memUserRepo) List(context.Context, models.SubscriptionStatus, int) ([]*models.User, error) {
	return nil, nil
}

func (r *memUserRepo) Count(context.Context, models.SubscriptionStatus) (int64, error) {
	return 0, nil
}

func (r *memUserRepo) subscription(id string) models.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id].Subscription
}

type fakeVerifier map[string]string

func (f fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if uid, ok := f[idToken]; ok {
		return &auth.Token{UID: uid, Claims: map[string]interface{}{"email": uid + "@example.com"}}, nil
	}
	return nil, errors.New("invalid token")
}

// stubContent is a core.ContentService returning canned answers.
type stubContent struct {
	core.ContentService
	getErr   error
	uploaded []core.UploadFile
}

func (s *stubContent) Get(_ context.Context, viewerID, contentID string) (*models.ContentSet, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &models.ContentSet{ID: contentID, Title: "for " + viewerID}, nil
}

func (s *stubContent) Upload(_ context.Context, _ string, files []core.UploadFile, meta models.ContentMetadata) ([]*models.ContentSet, error) {
	s.uploaded = files
	out := make([]*models.ContentSet, 0, len(files))
	for i, f := range files {
		out = append(out, &models.ContentSet{ID: fmt.Sprintf("c%d", i), Title: meta.Title, FileName: f.Name})
	}
	return out, nil
}

type stubAdmin struct{}

func (stubAdmin) Stats(context.Context) (*models.DashboardStats, error) {
	return &models.DashboardStats{TotalUsers: 3, ActiveSubscribers: 1, TotalContent: 7}, nil
}

func (stubAdmin) ListUsers(context.Context, models.SubscriptionStatus, int) ([]*models.User, error) {
	return []*models.User{}, nil
}

type memStore struct{}

func (memStore) Upload(_ context.Context, path, _ string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	return "https://files.test/" + path, nil
}

func (memStore) DeletePrefix(context.Context, string) error { return nil }

type noopAnalytics struct{}

func (noopAnalytics) Track(context.Context, string, string, map[string]interface{}) error { return nil }

type testApp struct {
	router  *gin.Engine
	users   *memUserRepo
	content *stubContent
	metrics *observability.Metrics
}

// newTestApp wires real billing and user services around in-memory storage.
func newTestApp(t *testing.T, provider core.PaymentProvider, users *memUserRepo) *testApp {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	content := &stubContent{}

	svc := Services{
		Users:     core.NewUserService(users, nil, memStore{}, logger),
		Billing:   core.NewBillingService(provider, users, nil, core.BillingConfig{ClientURL: "https://gallery.example"}, logger),
		Content:   content,
		Analytics: noopAnalytics{},
		Admin:     stubAdmin{},
	}
	router := gin.New()
	SetupRoutes(router, logger, fakeVerifier{"tok-u1": "u1", "tok-admin": "boss"}, svc, metrics)
	return &testApp{router: router, users: users, content: content, metrics: metrics}
}

func (a *testApp) do(method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
