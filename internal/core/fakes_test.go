package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"firebase.google.com/go/v4/auth"

	"gallery-backend-go/internal/db"
	"gallery-backend-go/internal/models"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*models.User
	changes []models.SubscriptionChange
	// updateErr, when set, fails every UpdateSubscription/UpdateFields call.
	updateErr error
	countErr  error
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return fmt.Errorf("user with ID '%s' already exists", user.ID)
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, db.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) UpdateFields(_ context.Context, userID string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("update user '%s': %w", userID, db.ErrNotFound)
	}
	for path, v := range fields {
		switch path {
		case "displayName":
			u.DisplayName = v.(string)
		case "bio":
			u.Bio = v.(string)
		case "photoURL":
			u.PhotoURL = v.(string)
		case "socialLinks":
			u.SocialLinks = v.(map[string]string)
		case "notificationPreferences":
			u.NotificationPreferences = v.(map[string]bool)
		case "privacySettings":
			u.PrivacySettings = v.(map[string]bool)
		}
	}
	return nil
}

func (r *fakeUserRepo) UpdateSubscription(_ context.Context, userID string, change models.SubscriptionChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("update subscription for user '%s': %w", userID, db.ErrNotFound)
	}
	u.Subscription.Status = change.Status
	u.Subscription.CustomerID = change.CustomerID
	u.Subscription.SubscriptionID = change.SubscriptionID
	u.Subscription.PriceID = change.PriceID
	r.changes = append(r.changes, change)
	return nil
}

func (r *fakeUserRepo) FindByCustomerID(_ context.Context, customerID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Subscription.CustomerID == customerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user with customer ID '%s' not found: %w", customerID, db.ErrNotFound)
}

func (r *fakeUserRepo) List(_ context.Context, status models.SubscriptionStatus, limit int) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if status == "" || u.Subscription.Status == status {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, status models.SubscriptionStatus) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	users, _ := r.List(ctx, status, 0)
	return int64(len(users)), nil
}

func (r *fakeUserRepo) user(id string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

type fakeProvider struct {
	event        *BillingEvent
	constructErr error

	checkoutReq  CheckoutRequest
	checkoutURL  string
	portalCustID string
	portalReturn string
	portalURL    string
	canceledSub  string
	err          error
}

func (p *fakeProvider) ConstructEvent(_ []byte, _ string) (*BillingEvent, error) {
	if p.constructErr != nil {
		return nil, p.constructErr
	}
	return p.event, nil
}

func (p *fakeProvider) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (string, error) {
	p.checkoutReq = req
	if p.err != nil {
		return "", p.err
	}
	return p.checkoutURL, nil
}

func (p *fakeProvider) CreatePortalSession(_ context.Context, customerID, returnURL string) (string, error) {
	p.portalCustID = customerID
	p.portalReturn = returnURL
	if p.err != nil {
		return "", p.err
	}
	return p.portalURL, nil
}

func (p *fakeProvider) CancelSubscriptionAtPeriodEnd(_ context.Context, subscriptionID string) error {
	p.canceledSub = subscriptionID
	return p.err
}

type fakeLedger struct {
	seen       map[string]bool
	seenErr    error
	remembered []string
}

func (l *fakeLedger) Seen(_ context.Context, eventID string) (bool, error) {
	if l.seenErr != nil {
		return false, l.seenErr
	}
	return l.seen[eventID], nil
}

func (l *fakeLedger) Remember(_ context.Context, eventID string) error {
	l.remembered = append(l.remembered, eventID)
	return nil
}

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string]string
	deleted   []string
	uploadErr error
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string]string{}} }

func (s *fakeStore) Upload(_ context.Context, path, _ string, r io.Reader) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = string(b)
	return "https://files.test/" + path, nil
}

func (s *fakeStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for path := range s.objects {
		if strings.HasPrefix(path, prefix) {
			delete(s.objects, path)
		}
	}
	s.deleted = append(s.deleted, prefix)
	return nil
}

type fakeIdentity struct {
	calls int
	err   error
}

func (f *fakeIdentity) UpdateUser(_ context.Context, uid string, _ *auth.UserToUpdate) (*auth.UserRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &auth.UserRecord{UserInfo: &auth.UserInfo{UID: uid}}, nil
}

type fakeContentRepo struct {
	mu    sync.Mutex
	items map[string]*models.ContentSet
}

func newFakeContentRepo(items ...*models.ContentSet) *fakeContentRepo {
	r := &fakeContentRepo{items: map[string]*models.ContentSet{}}
	for _, c := range items {
		r.items[c.ID] = c
	}
	return r
}

func (r *fakeContentRepo) Create(_ context.Context, content *models.ContentSet) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if content.ID == "" {
		content.ID = fmt.Sprintf("content-%d", len(r.items)+1)
	}
	cp := *content
	r.items[content.ID] = &cp
	return content.ID, nil
}

func (r *fakeContentRepo) GetByID(_ context.Context, contentID string) (*models.ContentSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[contentID]
	if !ok {
		return nil, fmt.Errorf("content with ID '%s' not found: %w", contentID, db.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeContentRepo) ListPublic(_ context.Context, limit int) ([]*models.ContentSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ContentSet
	for _, c := range r.items {
		if c.IsPublic {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeContentRepo) Delete(_ context.Context, contentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[contentID]; !ok {
		return fmt.Errorf("delete content '%s': %w", contentID, db.ErrNotFound)
	}
	delete(r.items, contentID)
	return nil
}

func (r *fakeContentRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

type fakeCommentRepo struct {
	byContent map[string][]*models.Comment
	lastLimit int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{byContent: map[string][]*models.Comment{}}
}

func (r *fakeCommentRepo) Create(_ context.Context, contentID string, comment *models.Comment) (string, error) {
	comment.ID = fmt.Sprintf("comment-%d", len(r.byContent[contentID])+1)
	comment.ContentID = contentID
	r.byContent[contentID] = append(r.byContent[contentID], comment)
	return comment.ID, nil
}

func (r *fakeCommentRepo) ListByContentID(_ context.Context, contentID string, limit int) ([]*models.Comment, error) {
	r.lastLimit = limit
	return r.byContent[contentID], nil
}

type fakeAnalyticsRepo struct {
	events []*models.AnalyticsEvent
	err    error
}

func (r *fakeAnalyticsRepo) Create(_ context.Context, event *models.AnalyticsEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *fakeAnalyticsRepo) actions() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

var errBoom = errors.New("boom")

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

func uploadOf(name, contentType, body string) UploadFile {
	return UploadFile{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return nopCloser{strings.NewReader(body)}, nil
		},
	}
}
