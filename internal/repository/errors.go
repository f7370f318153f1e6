package repository

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrTokenNotFound     = errors.New("refresh token not found or revoked")
	ErrHospitalNotFound  = errors.New("hospital not found")
	ErrProviderNotFound  = errors.New("ambulance provider not found")
	ErrAmbulanceNotFound = errors.New("ambulance not found")
	ErrDuplicateVehicle  = errors.New("vehicle number already registered")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrOTPNotFound       = errors.New("otp not found")
)
