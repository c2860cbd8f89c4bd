package db

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gallery-backend-go/internal/models"
)

const usersCollection = "users"

// firestoreUserRepository implements the UserRepository interface using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	if client == nil {
		panic("Firestore client is not initialized for UserRepository")
	}
	return &firestoreUserRepository{client: client}
}

// Create adds a new user document. The Firebase Auth UID is the document ID.
func (r *firestoreUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("user with ID '%s' already exists: %w", user.ID, err)
		}
		return fmt.Errorf("failed to create user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// GetByID retrieves a user document by its ID.
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("user with ID '%s'", userID))
	}
	return decodeUser(docSnap)
}

// UpdateFields writes the given field paths and a server updatedAt.
// The document must already exist.
func (r *firestoreUserRepository) UpdateFields(ctx context.Context, userID string, fields map[string]interface{}) error {
	if userID == "" {
		return errors.New("userID cannot be empty for UpdateFields operation")
	}
	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	updates := make([]firestore.Update, 0, len(fields)+1)
	for _, path := range paths {
		updates = append(updates, firestore.Update{Path: path, Value: fields[path]})
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})

	if _, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, updates); err != nil {
		return classify(err, fmt.Sprintf("update user '%s'", userID))
	}
	return nil
}

// UpdateSubscription merges the change into the subscription sub-object with
// field-path updates, leaving sibling fields untouched. No ordering check is
// made against previous writes: the last call wins.
func (r *firestoreUserRepository) UpdateSubscription(ctx context.Context, userID string, change models.SubscriptionChange) error {
	if userID == "" {
		return errors.New("userID cannot be empty for UpdateSubscription operation")
	}
	updates := []firestore.Update{
		{Path: "subscription.status", Value: string(change.Status)},
		{Path: "subscription.customerId", Value: change.CustomerID},
		{Path: "subscription.subscriptionId", Value: change.SubscriptionID},
		{Path: "subscription.priceId", Value: change.PriceID},
		{Path: "subscription.updatedAt", Value: firestore.ServerTimestamp},
	}
	if _, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, updates); err != nil {
		return classify(err, fmt.Sprintf("update subscription for user '%s'", userID))
	}
	return nil
}

// FindByCustomerID returns the user whose entitlement record references the
// given billing customer.
func (r *firestoreUserRepository) FindByCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	if customerID == "" {
		return nil, errors.New("customerID cannot be empty for FindByCustomerID operation")
	}
	iter := r.client.Collection(usersCollection).
		Where("subscription.customerId", "==", customerID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("user with customer ID '%s' not found: %w", customerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by customer ID '%s': %w", customerID, err)
	}
	return decodeUser(doc)
}

// List returns up to limit users ordered by creation time, newest first.
// An empty status returns users of any subscription status.
func (r *firestoreUserRepository) List(ctx context.Context, subStatus models.SubscriptionStatus, limit int) ([]*models.User, error) {
	query := r.usersQuery(subStatus).OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var users []*models.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", err)
		}
		user, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// Count returns the number of users, optionally filtered by subscription status.
func (r *firestoreUserRepository) Count(ctx context.Context, subStatus models.SubscriptionStatus) (int64, error) {
	return countQuery(ctx, r.usersQuery(subStatus))
}

func (r *firestoreUserRepository) usersQuery(subStatus models.SubscriptionStatus) firestore.Query {
	query := r.client.Collection(usersCollection).Query
	if subStatus != "" {
		query = query.Where("subscription.status", "==", string(subStatus))
	}
	return query
}

func decodeUser(doc *firestore.DocumentSnapshot) (*models.User, error) {
	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", doc.Ref.ID, err)
	}
	user.ID = doc.Ref.ID
	return &user, nil
}
