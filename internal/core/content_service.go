package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gallery-backend-go/internal/blob"
	"gallery-backend-go/internal/db"
	"gallery-backend-go/internal/models"
)

// Custom errors for the ContentService
var (
	ErrContentNotFound      = errors.New("content not found")
	ErrSubscriptionRequired = errors.New("an active subscription is required for this content")
)

const (
	defaultContentLimit = 10
	defaultCommentLimit = 20
	maxListLimit        = 100
	maxCommentLength    = 2000
	maxUploadFileBytes  = 200 << 20
)

// contentService implements the ContentService interface.
type contentService struct {
	contentRepo db.ContentRepository
	commentRepo db.CommentRepository
	userRepo    db.UserRepository
	store       blob.Store
	analytics   AnalyticsService
	logger      *zap.Logger
}

// NewContentService creates a new ContentService instance.
func NewContentService(
	cr db.ContentRepository,
	cmr db.CommentRepository,
	ur db.UserRepository,
	store blob.Store,
	analytics AnalyticsService,
	logger *zap.Logger,
) ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &contentService{
		contentRepo: cr,
		commentRepo: cmr,
		userRepo:    ur,
		store:       store,
		analytics:   analytics,
		logger:      logger,
	}
}

// Upload stores each file under content/{id}/{name} and creates one content
// set per file sharing the supplied metadata.
func (s *contentService) Upload(ctx context.Context, uploaderID string, files []UploadFile, meta models.ContentMetadata) ([]*models.ContentSet, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: at least one file is required", ErrInvalidInput)
	}
	if strings.TrimSpace(meta.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	for _, f := range files {
		if mediaType(f.ContentType) == "" {
			return nil, fmt.Errorf("%w: %s is not an image or video", ErrInvalidInput, f.Name)
		}
		if f.Size > maxUploadFileBytes {
			return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidInput, f.Name, maxUploadFileBytes)
		}
	}

	created := make([]*models.ContentSet, 0, len(files))
	for _, f := range files {
		content, err := s.uploadOne(ctx, f, meta)
		if err != nil {
			return created, err
		}
		created = append(created, content)
		s.track(ctx, uploaderID, "content_upload", map[string]interface{}{
			"contentId": content.ID,
			"type":      f.ContentType,
		})
	}
	return created, nil
}

func (s *contentService) uploadOne(ctx context.Context, f UploadFile, meta models.ContentMetadata) (*models.ContentSet, error) {
	contentID := uuid.NewString()
	name := blob.ObjectName(f.Name)
	path := fmt.Sprintf("content/%s/%s", contentID, name)

	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %q: %w", f.Name, err)
	}
	defer r.Close()

	url, err := s.store.Upload(ctx, path, f.ContentType, r)
	if err != nil {
		return nil, err
	}

	thumbnail := meta.ThumbnailURL
	if thumbnail == "" {
		thumbnail = url
	}
	content := &models.ContentSet{
		ID:           contentID,
		Title:        meta.Title,
		Description:  meta.Description,
		URL:          url,
		ThumbnailURL: thumbnail,
		Type:         mediaType(f.ContentType),
		FileName:     name,
		StoragePath:  path,
		Size:         f.Size,
		IsPublic:     meta.IsPublic,
		Tags:         meta.Tags,
		Category:     meta.Category,
		Price:        meta.Price,
	}
	if _, err := s.contentRepo.Create(ctx, content); err != nil {
		return nil, fmt.Errorf("failed to create content in repository: %w", err)
	}
	return content, nil
}

func (s *contentService) Get(ctx context.Context, viewerID, contentID string) (*models.ContentSet, error) {
	content, err := s.contentRepo.GetByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: content with ID '%s'", ErrContentNotFound, contentID)
		}
		return nil, fmt.Errorf("failed to get content '%s': %w", contentID, err)
	}
	if content.IsPublic {
		return content, nil
	}

	if viewerID == "" {
		return nil, ErrSubscriptionRequired
	}
	viewer, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrSubscriptionRequired
		}
		return nil, fmt.Errorf("failed to load viewer '%s': %w", viewerID, err)
	}
	if !viewer.IsAdmin() && !viewer.Subscription.Status.Entitled() {
		return nil, ErrSubscriptionRequired
	}
	return content, nil
}

func (s *contentService) ListPublic(ctx context.Context, limit int) ([]*models.ContentSet, error) {
	items, err := s.contentRepo.ListPublic(ctx, clampLimit(limit, defaultContentLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to list public content: %w", err)
	}
	if items == nil {
		items = []*models.ContentSet{}
	}
	return items, nil
}

// Delete removes the stored files and the content document.
func (s *contentService) Delete(ctx context.Context, actorID, contentID string) error {
	if _, err := s.contentRepo.GetByID(ctx, contentID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: content with ID '%s'", ErrContentNotFound, contentID)
		}
		return fmt.Errorf("failed to get content '%s': %w", contentID, err)
	}

	if err := s.store.DeletePrefix(ctx, "content/"+contentID+"/"); err != nil {
		return err
	}
	if err := s.contentRepo.Delete(ctx, contentID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: content with ID '%s'", ErrContentNotFound, contentID)
		}
		return fmt.Errorf("failed to delete content '%s': %w", contentID, err)
	}

	s.track(ctx, actorID, "content_delete", map[string]interface{}{"contentId": contentID})
	return nil
}

func (s *contentService) AddComment(ctx context.Context, userID, contentID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrInvalidInput)
	}
	if len(text) > maxCommentLength {
		return nil, fmt.Errorf("%w: comment must be at most %d characters", ErrInvalidInput, maxCommentLength)
	}
	if _, err := s.Get(ctx, userID, contentID); err != nil {
		return nil, err
	}

	comment := &models.Comment{UserID: userID, Text: text}
	if _, err := s.commentRepo.Create(ctx, contentID, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

func (s *contentService) ListComments(ctx context.Context, contentID string, limit int) ([]*models.Comment, error) {
	comments, err := s.commentRepo.ListByContentID(ctx, contentID, clampLimit(limit, defaultCommentLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for content '%s': %w", contentID, err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

// track records an analytics event; failures never fail the caller.
func (s *contentService) track(ctx context.Context, userID, action string, metadata map[string]interface{}) {
	if s.analytics == nil {
		return
	}
	if err := s.analytics.Track(ctx, userID, action, metadata); err != nil {
		s.logger.Warn("Failed to record analytics event", zap.String("action", action), zap.Error(err))
	}
}

// mediaType returns "image" or "video" for a MIME type, or "" otherwise.
func mediaType(contentType string) string {
	kind, _, _ := strings.Cut(contentType, "/")
	switch kind {
	case "image", "video":
		return kind
	}
	return ""
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
