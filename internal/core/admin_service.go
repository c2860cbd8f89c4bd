package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"gallery-backend-go/internal/db"
	"gallery-backend-go/internal/models"
)

const defaultUserListLimit = 50

type adminService struct {
	userRepo    db.UserRepository
	contentRepo db.ContentRepository
}

// NewAdminService creates a new AdminService instance.
func NewAdminService(userRepo db.UserRepository, contentRepo db.ContentRepository) AdminService {
	return &adminService{userRepo: userRepo, contentRepo: contentRepo}
}

// Stats counts users, entitled subscribers and content sets concurrently.
func (s *adminService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.userRepo.Count(gctx, "")
		if err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		stats.TotalUsers = n
		return nil
	})
	g.Go(func() error {
		n, err := s.userRepo.Count(gctx, models.SubscriptionActive)
		if err != nil {
			return fmt.Errorf("failed to count active subscribers: %w", err)
		}
		stats.ActiveSubscribers = n
		return nil
	})
	g.Go(func() error {
		n, err := s.contentRepo.Count(gctx)
		if err != nil {
			return fmt.Errorf("failed to count content: %w", err)
		}
		stats.TotalContent = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *adminService) ListUsers(ctx context.Context, status models.SubscriptionStatus, limit int) ([]*models.User, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown subscription status %q", ErrInvalidInput, status)
	}
	if limit <= 0 {
		limit = defaultUserListLimit
	} else if limit > maxListLimit {
		limit = maxListLimit
	}
	users, err := s.userRepo.List(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}
