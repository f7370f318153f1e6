package models

import "time"

const (
	OTPChannelEmail = "email"
	OTPChannelPhone = "phone"
)

const (
	PurposeEmailVerification = "email_verification"
	PurposePasswordReset     = "password_reset"
)

// OTP represents the otps table
type OTP struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Channel    string    `gorm:"size:10;not null;index:idx_otp_lookup" json:"channel"`
	Contact    string    `gorm:"size:254;not null;index:idx_otp_lookup" json:"contact"`
	Purpose    string    `gorm:"size:30;not null;index:idx_otp_lookup" json:"purpose"`
	Code       string    `gorm:"size:6;not null" json:"-"`
	IsVerified bool      `gorm:"default:false" json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `gorm:"not null" json:"expires_at"`
}

// TableName specifies the table name for OTP model
func (OTP) TableName() string {
	return "otps"
}

// IsExpired reports whether the code is past its expiry at now
func (o *OTP) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
