package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"gallery-backend-go/internal/models"
)

const contentCollection = "contentSets"

// firestoreContentRepository implements the ContentRepository interface using Firestore.
type firestoreContentRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreContentRepository creates a new instance of firestoreContentRepository.
func NewFirestoreContentRepository(client *firestore.Client, logger *zap.Logger) ContentRepository {
	if client == nil {
		panic("Firestore client is not initialized for ContentRepository")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &firestoreContentRepository{client: client, logger: logger}
}

// Create adds a new content document. A caller-provided ID is used as the
// document ID so storage paths and documents share it; otherwise one is generated.
func (r *firestoreContentRepository) Create(ctx context.Context, content *models.ContentSet) (string, error) {
	coll := r.client.Collection(contentCollection)
	docRef := coll.NewDoc()
	if content.ID != "" {
		docRef = coll.Doc(content.ID)
	}
	content.ID = docRef.ID

	if _, err := docRef.Create(ctx, content); err != nil {
		return "", fmt.Errorf("failed to create content: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a content document by its ID.
func (r *firestoreContentRepository) GetByID(ctx context.Context, contentID string) (*models.ContentSet, error) {
	if contentID == "" {
		return nil, errors.New("contentID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(contentCollection).Doc(contentID).Get(ctx)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("content with ID '%s'", contentID))
	}

	var content models.ContentSet
	if err := docSnap.DataTo(&content); err != nil {
		return nil, fmt.Errorf("failed to decode content data for ID '%s': %w", contentID, err)
	}
	content.ID = docSnap.Ref.ID
	return &content, nil
}

// ListPublic returns public content sets, newest first.
func (r *firestoreContentRepository) ListPublic(ctx context.Context, limit int) ([]*models.ContentSet, error) {
	query := r.client.Collection(contentCollection).
		Where("isPublic", "==", true).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var items []*models.ContentSet
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate public content: %w", err)
		}

		var content models.ContentSet
		if err := doc.DataTo(&content); err != nil {
			r.logger.Warn("Skipping undecodable content document", zap.String("contentID", doc.Ref.ID), zap.Error(err))
			continue
		}
		content.ID = doc.Ref.ID
		items = append(items, &content)
	}
	return items, nil
}

// Delete removes a content document. Comments in its subcollection are left
// in place; Firestore does not cascade.
func (r *firestoreContentRepository) Delete(ctx context.Context, contentID string) error {
	if contentID == "" {
		return errors.New("contentID cannot be empty for Delete operation")
	}
	if _, err := r.client.Collection(contentCollection).Doc(contentID).Delete(ctx, firestore.Exists); err != nil {
		return classify(err, fmt.Sprintf("delete content '%s'", contentID))
	}
	return nil
}

// Count returns the total number of content documents.
func (r *firestoreContentRepository) Count(ctx context.Context) (int64, error) {
	return countQuery(ctx, r.client.Collection(contentCollection).Query)
}
