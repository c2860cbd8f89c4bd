package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"

	"gallery-backend-go/internal/blob"
	"gallery-backend-go/internal/db"
	"gallery-backend-go/internal/models"
)

// ErrUserNotFound is returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

const maxAvatarBytes = 5 << 20

// userService implements the UserService interface.
type userService struct {
	userRepo db.UserRepository
	identity IdentityUpdater
	store    blob.Store
	logger   *zap.Logger
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository, identity IdentityUpdater, store blob.Store, logger *zap.Logger) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		userRepo: userRepo,
		identity: identity,
		store:    store,
		logger:   logger,
	}
}

// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates a
// new one whose entitlement record starts as inactive.
// Returns the user, a boolean indicating if the user was created, and an error if any.
func (s *userService) GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}

	now := time.Now().UTC()
	newUser := &models.User{
		ID:          userID,
		Email:       email,
		DisplayName: displayName,
		PhotoURL:    photoURL,
		Subscription: models.Subscription{
			Status:    models.SubscriptionInactive,
			UpdatedAt: now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, false, fmt.Errorf("failed to create user (id: %s) after not found: %w", userID, err)
	}
	s.logger.Info("User profile created", zap.String("userID", userID))
	return newUser, true, nil
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	fields := map[string]interface{}{}
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if len(name) > 100 {
			return nil, fmt.Errorf("%w: displayName must be at most 100 characters", ErrInvalidInput)
		}
		fields["displayName"] = name
	}
	if req.Bio != nil {
		if len(*req.Bio) > 1000 {
			return nil, fmt.Errorf("%w: bio must be at most 1000 characters", ErrInvalidInput)
		}
		fields["bio"] = *req.Bio
	}
	if req.SocialLinks != nil {
		fields["socialLinks"] = *req.SocialLinks
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no profile fields provided", ErrInvalidInput)
	}

	if err := s.updateFields(ctx, userID, fields); err != nil {
		return nil, err
	}

	if name, ok := fields["displayName"].(string); ok && s.identity != nil {
		if _, err := s.identity.UpdateUser(ctx, userID, (&auth.UserToUpdate{}).DisplayName(name)); err != nil {
			// The profile document is the source the front end reads; the Auth
			// record catches up on the next profile update.
			s.logger.Warn("Failed to sync display name to Firebase Auth", zap.String("userID", userID), zap.Error(err))
		}
	}

	return s.GetByID(ctx, userID)
}

func (s *userService) UpdatePreferences(ctx context.Context, userID string, req models.UpdatePreferencesRequest) error {
	fields := map[string]interface{}{}
	if req.NotificationPreferences != nil {
		fields["notificationPreferences"] = req.NotificationPreferences
	}
	if req.PrivacySettings != nil {
		fields["privacySettings"] = req.PrivacySettings
	}
	if len(fields) == 0 {
		return fmt.Errorf("%w: no preferences provided", ErrInvalidInput)
	}
	return s.updateFields(ctx, userID, fields)
}

// UploadAvatar stores the image at profile-images/{uid} and points both the
// profile document and the Auth record at it.
func (s *userService) UploadAvatar(ctx context.Context, userID string, file UploadFile) (string, error) {
	if !strings.HasPrefix(file.ContentType, "image/") {
		return "", fmt.Errorf("%w: avatar must be an image", ErrInvalidInput)
	}
	if file.Size > maxAvatarBytes {
		return "", fmt.Errorf("%w: avatar exceeds %d bytes", ErrInvalidInput, maxAvatarBytes)
	}

	r, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open avatar upload: %w", err)
	}
	defer r.Close()

	url, err := s.store.Upload(ctx, "profile-images/"+userID, file.ContentType, r)
	if err != nil {
		return "", err
	}

	if s.identity != nil {
		if _, err := s.identity.UpdateUser(ctx, userID, (&auth.UserToUpdate{}).PhotoURL(url)); err != nil {
			s.logger.Warn("Failed to sync photo URL to Firebase Auth", zap.String("userID", userID), zap.Error(err))
		}
	}
	if err := s.updateFields(ctx, userID, map[string]interface{}{"photoURL": url}); err != nil {
		return "", err
	}
	return url, nil
}

func (s *userService) GetSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user.Subscription, nil
}

func (s *userService) updateFields(ctx context.Context, userID string, fields map[string]interface{}) error {
	if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return fmt.Errorf("failed to update user '%s': %w", userID, err)
	}
	return nil
}
