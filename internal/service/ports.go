package service

import (
	"context"
	"time"

	"careconnect-backend/internal/models"
	"careconnect-backend/internal/notify"
	"careconnect-backend/internal/repository"
)

// Actor is the authenticated user performing an operation
type Actor struct {
	UserID uint
	Role   string
}

type UserStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	PhoneTaken(ctx context.Context, phone string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uint, hash string) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	RevokeRefreshTokenByHash(ctx context.Context, hash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID uint) error
}

type HospitalStore interface {
	Search(ctx context.Context, filter repository.HospitalFilter) ([]models.Hospital, error)
	GetAllHospitals(ctx context.Context) ([]models.Hospital, error)
	GetHospitalByID(ctx context.Context, id uint) (*models.Hospital, error)
	GetHospitalsByIDs(ctx context.Context, ids []uint) ([]models.Hospital, error)
	GetHospitalByOwner(ctx context.Context, ownerID uint) (*models.Hospital, error)
	Cities(ctx context.Context) ([]string, error)
	UpdateHospital(ctx context.Context, hospital *models.Hospital) error
}

type ProviderStore interface {
	ListWithAmbulances(ctx context.Context) ([]models.AmbulanceProvider, error)
	GetProviderByID(ctx context.Context, id uint) (*models.AmbulanceProvider, error)
	GetProviderByOwner(ctx context.Context, ownerID uint) (*models.AmbulanceProvider, error)
	UpdateProvider(ctx context.Context, provider *models.AmbulanceProvider) error
}

type AmbulanceStore interface {
	ListByProvider(ctx context.Context, providerID uint) ([]models.Ambulance, error)
	GetByNumber(ctx context.Context, providerID uint, number string) (*models.Ambulance, error)
	NumberTaken(ctx context.Context, number string) (bool, error)
	CreateAmbulance(ctx context.Context, ambulance *models.Ambulance) error
	UpdateAmbulance(ctx context.Context, ambulance *models.Ambulance) error
	DeleteAmbulance(ctx context.Context, id uint) error
}

type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	ListByProvider(ctx context.Context, providerID uint, status string) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Booking, error)
	ActiveAmbulanceIDs(ctx context.Context) ([]uint, error)
	WithinTx(ctx context.Context, fn func(repository.BookingUnit) error) error
}

type ActivityStore interface {
	CreateActivityLog(ctx context.Context, entry *models.ActivityLog) error
	RecentByUser(ctx context.Context, userID uint, limit int) ([]models.ActivityLog, error)
}

type OTPStore interface {
	DeleteUnverified(ctx context.Context, channel, contact, purpose string) error
	CreateOTP(ctx context.Context, otp *models.OTP) error
	FindLatestUnverified(ctx context.Context, channel, contact, purpose, code string) (*models.OTP, error)
	MarkVerified(ctx context.Context, id uint) error
}

// Sender delivers a notification; notify.Sender satisfies it
type Sender = notify.Sender

// Limiter caps attempts per key; ratelimit.Limiter satisfies it
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Clock is overridden in tests
type Clock func() time.Time
