package service

import (
	"context"

	"careconnect-backend/internal/models"
	"careconnect-backend/internal/observability"
)

const recentActivityLimit = 50

// ActivityService appends and reads the per-user activity trail
type ActivityService struct {
	activityRepo ActivityStore
}

func NewActivityService(activityRepo ActivityStore) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// Record appends an entry. Failures are logged and never fail the caller's
// operation.
func (s *ActivityService) Record(ctx context.Context, actor Actor, action, details string) {
	userID := actor.UserID
	entry := &models.ActivityLog{
		UserID:   &userID,
		UserRole: actor.Role,
		Action:   action,
		Details:  details,
	}
	if err := s.activityRepo.CreateActivityLog(ctx, entry); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}

// Recent returns the actor's latest entries, newest first
func (s *ActivityService) Recent(ctx context.Context, actor Actor) ([]models.ActivityLog, error) {
	return s.activityRepo.RecentByUser(ctx, actor.UserID, recentActivityLimit)
}
