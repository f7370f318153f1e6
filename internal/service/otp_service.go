package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"careconnect-backend/internal/apperr"
	"careconnect-backend/internal/models"
	"careconnect-backend/internal/notify"
	"careconnect-backend/internal/observability"
	"careconnect-backend/internal/repository"
)

const (
	verificationTTL  = 10 * time.Minute
	passwordResetTTL = 15 * time.Minute
)

const (
	msgInvalidOTP = "Invalid OTP"
	msgExpiredOTP = "OTP has expired. Please request a new one."
	msgSendFailed = "Failed to send OTP. Please try again."
	msgOTPLimited = "Too many OTP requests. Please wait a minute and try again."
)

type OTPService struct {
	otpRepo OTPStore
	mailer  Sender
	sms     Sender
	limiter Limiter
	now     Clock
}

// NewOTPService wires code storage with the email and phone channels.
// A nil limiter disables rate limiting.
func NewOTPService(otpRepo OTPStore, mailer, sms Sender, limiter Limiter) *OTPService {
	return &OTPService{
		otpRepo: otpRepo,
		mailer:  mailer,
		sms:     sms,
		limiter: limiter,
		now:     time.Now,
	}
}

// Issue replaces any pending code for (channel, contact, purpose) with a
// fresh one and delivers it
func (s *OTPService) Issue(ctx context.Context, channel, contact, purpose string) error {
	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, channel+":"+contact)
		if err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("otp rate limiter unavailable")
		} else if !ok {
			return apperr.RateLimited(msgOTPLimited)
		}
	}

	if err := s.otpRepo.DeleteUnverified(ctx, channel, contact, purpose); err != nil {
		return fmt.Errorf("failed to clear pending otps: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	now := s.now()
	otp := &models.OTP{
		Channel:   channel,
		Contact:   contact,
		Purpose:   purpose,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(ttlFor(purpose)),
	}
	if err := s.otpRepo.CreateOTP(ctx, otp); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if err := s.deliver(ctx, channel, contact, purpose, code); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("channel", channel).Msg("otp delivery failed")
		return apperr.Unavailable(msgSendFailed)
	}
	return nil
}

// Verify consumes the newest pending code matching every field
func (s *OTPService) Verify(ctx context.Context, channel, contact, purpose, code string) error {
	otp, err := s.otpRepo.FindLatestUnverified(ctx, channel, contact, purpose, code)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return apperr.Validation(msgInvalidOTP)
		}
		return fmt.Errorf("failed to look up otp: %w", err)
	}

	if otp.IsExpired(s.now()) {
		return apperr.Validation(msgExpiredOTP)
	}

	if err := s.otpRepo.MarkVerified(ctx, otp.ID); err != nil {
		return fmt.Errorf("failed to mark otp verified: %w", err)
	}
	return nil
}

func (s *OTPService) deliver(ctx context.Context, channel, contact, purpose, code string) error {
	if channel == models.OTPChannelPhone {
		return s.sms.Send(ctx, notify.Message{
			To:   contact,
			Body: fmt.Sprintf("Your CareConnect verification code is %s. It expires in 10 minutes.", code),
		})
	}
	return s.mailer.Send(ctx, composeOTPEmail(contact, code, purpose))
}

func ttlFor(purpose string) time.Duration {
	if purpose == models.PurposePasswordReset {
		return passwordResetTTL
	}
	return verificationTTL
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func composeOTPEmail(to, code, purpose string) notify.Message {
	if purpose == models.PurposePasswordReset {
		return notify.Message{
			To:      to,
			Subject: "CareConnect - Password Reset OTP",
			Body: "Hello,\n\n" +
				"You have requested to reset your password for your CareConnect account.\n\n" +
				"Your OTP code is: " + code + "\n\n" +
				"This OTP will expire in 15 minutes.\n\n" +
				"If you did not request this password reset, please ignore this email.\n\n" +
				"Best regards,\nCareConnect Team\n",
		}
	}
	return notify.Message{
		To:      to,
		Subject: "CareConnect - Email Verification OTP",
		Body: "Hello,\n\n" +
			"Thank you for registering with CareConnect!\n\n" +
			"Your OTP code for email verification is: " + code + "\n\n" +
			"This OTP will expire in 10 minutes.\n\n" +
			"If you did not create an account with CareConnect, please ignore this email.\n\n" +
			"Best regards,\nCareConnect Team\n",
	}
}
