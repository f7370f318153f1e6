package repository

import (
	"context"

	"careconnect-backend/internal/models"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepo(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// CreateActivityLog appends an activity log entry
func (r *ActivityRepository) CreateActivityLog(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// RecentByUser returns a user's latest entries, newest first
func (r *ActivityRepository) RecentByUser(ctx context.Context, userID uint, limit int) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
