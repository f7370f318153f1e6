package repository

import (
	"context"
	"errors"

	"careconnect-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingUnit is the set of reads and writes available inside one booking
// transaction. Lock calls hold the row until the transaction ends.
type BookingUnit interface {
	LockBooking(bookingID, providerID uint) (*models.Booking, error)
	LockAmbulance(ambulanceID, providerID uint) (*models.Ambulance, error)
	HasOtherActiveBooking(ambulanceID, excludeBookingID uint) (bool, error)
	SaveBooking(booking *models.Booking) error
	SaveAmbulance(ambulance *models.Ambulance) error
}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepo(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateBooking creates a new booking
func (r *BookingRepository) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

// ListByProvider returns a provider's bookings, newest first, optionally
// narrowed to one status
func (r *BookingRepository) ListByProvider(ctx context.Context, providerID uint, status string) ([]models.Booking, error) {
	q := r.db.WithContext(ctx).
		Preload("User").Preload("Hospital").Preload("Ambulance").
		Where("provider_id = ?", providerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var bookings []models.Booking
	err := q.Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

// ListByUser returns a user's own bookings, newest first
func (r *BookingRepository) ListByUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Provider").Preload("Hospital").Preload("Ambulance").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// ActiveAmbulanceIDs returns the ambulances referenced by an active booking
func (r *BookingRepository) ActiveAmbulanceIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("status IN ? AND ambulance_id IS NOT NULL", models.ActiveBookingStatuses).
		Distinct("ambulance_id").
		Pluck("ambulance_id", &ids).Error
	return ids, err
}

// WithinTx runs fn in one database transaction. Any error returned by fn
// rolls everything back and is returned unchanged.
func (r *BookingRepository) WithinTx(ctx context.Context, fn func(BookingUnit) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&bookingUnit{tx: tx})
	})
}

type bookingUnit struct {
	tx *gorm.DB
}

func (u *bookingUnit) LockBooking(bookingID, providerID uint) (*models.Booking, error) {
	var booking models.Booking
	err := u.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND provider_id = ?", bookingID, providerID).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (u *bookingUnit) LockAmbulance(ambulanceID, providerID uint) (*models.Ambulance, error) {
	var ambulance models.Ambulance
	err := u.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND provider_id = ?", ambulanceID, providerID).
		First(&ambulance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAmbulanceNotFound
		}
		return nil, err
	}
	return &ambulance, nil
}

func (u *bookingUnit) HasOtherActiveBooking(ambulanceID, excludeBookingID uint) (bool, error) {
	var count int64
	err := u.tx.Model(&models.Booking{}).
		Where("ambulance_id = ? AND id <> ? AND status IN ?", ambulanceID, excludeBookingID, models.ActiveBookingStatuses).
		Count(&count).Error
	return count > 0, err
}

func (u *bookingUnit) SaveBooking(booking *models.Booking) error {
	return u.tx.Omit(clause.Associations).Save(booking).Error
}

func (u *bookingUnit) SaveAmbulance(ambulance *models.Ambulance) error {
	return u.tx.Save(ambulance).Error
}
