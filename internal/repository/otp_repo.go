package repository

import (
	"context"
	"errors"

	"careconnect-backend/internal/models"

	"gorm.io/gorm"
)

type OTPRepository struct {
	db *gorm.DB
}

func NewOTPRepo(db *gorm.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// DeleteUnverified removes pending codes for one contact and purpose
func (r *OTPRepository) DeleteUnverified(ctx context.Context, channel, contact, purpose string) error {
	return r.db.WithContext(ctx).
		Where("channel = ? AND contact = ? AND purpose = ? AND is_verified = ?", channel, contact, purpose, false).
		Delete(&models.OTP{}).Error
}

func (r *OTPRepository) CreateOTP(ctx context.Context, otp *models.OTP) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

// FindLatestUnverified returns the newest pending code matching all fields
func (r *OTPRepository) FindLatestUnverified(ctx context.Context, channel, contact, purpose, code string) (*models.OTP, error) {
	var otp models.OTP
	err := r.db.WithContext(ctx).
		Where("channel = ? AND contact = ? AND purpose = ? AND code = ? AND is_verified = ?", channel, contact, purpose, code, false).
		Order("created_at DESC, id DESC").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOTPNotFound
		}
		return nil, err
	}
	return &otp, nil
}

func (r *OTPRepository) MarkVerified(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.OTP{}).
		Where("id = ?", id).
		Update("is_verified", true).Error
}
