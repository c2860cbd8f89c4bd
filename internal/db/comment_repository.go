package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"gallery-backend-go/internal/models"
)

const commentsSubcollection = "comments"

type firestoreCommentRepository struct {
	client *firestore.Client
}

// NewFirestoreCommentRepository creates a CommentRepository backed by the
// contentSets/{id}/comments subcollection.
func NewFirestoreCommentRepository(client *firestore.Client) CommentRepository {
	if client == nil {
		panic("Firestore client is not initialized for CommentRepository")
	}
	return &firestoreCommentRepository{client: client}
}

func (r *firestoreCommentRepository) comments(contentID string) *firestore.CollectionRef {
	return r.client.Collection(contentCollection).Doc(contentID).Collection(commentsSubcollection)
}

func (r *firestoreCommentRepository) Create(ctx context.Context, contentID string, comment *models.Comment) (string, error) {
	if contentID == "" {
		return "", errors.New("contentID cannot be empty for comment Create operation")
	}
	docRef := r.comments(contentID).NewDoc()
	comment.ID = docRef.ID
	comment.ContentID = contentID
	if _, err := docRef.Create(ctx, comment); err != nil {
		return "", fmt.Errorf("failed to create comment on content '%s': %w", contentID, err)
	}
	return docRef.ID, nil
}

func (r *firestoreCommentRepository) ListByContentID(ctx context.Context, contentID string, limit int) ([]*models.Comment, error) {
	if contentID == "" {
		return nil, errors.New("contentID cannot be empty for comment List operation")
	}
	query := r.comments(contentID).OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var comments []*models.Comment
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate comments for content '%s': %w", contentID, err)
		}
		var comment models.Comment
		if err := doc.DataTo(&comment); err != nil {
			return nil, fmt.Errorf("failed to decode comment '%s': %w", doc.Ref.ID, err)
		}
		comment.ID = doc.Ref.ID
		comment.ContentID = contentID
		comments = append(comments, &comment)
	}
	return comments, nil
}
