package core

import (
	"context"
	"fmt"
	"strings"

	"gallery-backend-go/internal/db"
	"gallery-backend-go/internal/models"
)

// analyticsService implements the AnalyticsService interface.
type analyticsService struct {
	repo db.AnalyticsRepository
}

// NewAnalyticsService creates a new AnalyticsService instance.
func NewAnalyticsService(repo db.AnalyticsRepository) AnalyticsService {
	return &analyticsService{repo: repo}
}

// Track stores one analytics event. The timestamp is assigned by the server.
func (s *analyticsService) Track(ctx context.Context, userID, action string, metadata map[string]interface{}) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return fmt.Errorf("%w: action is required", ErrInvalidInput)
	}
	if s.repo == nil {
		return fmt.Errorf("AnalyticsRepository not initialized in AnalyticsService")
	}

	event := &models.AnalyticsEvent{
		UserID:   userID,
		Action:   action,
		Metadata: metadata,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create analytics event via repository: %w", err)
	}
	return nil
}
