package repository

import (
	"context"
	"errors"
	"strings"

	"careconnect-backend/internal/models"

	"gorm.io/gorm"
)

type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepo(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

// ListWithAmbulances returns every provider with its fleet loaded
func (r *ProviderRepository) ListWithAmbulances(ctx context.Context) ([]models.AmbulanceProvider, error) {
	var providers []models.AmbulanceProvider
	err := r.db.WithContext(ctx).Preload("Ambulances").Order("name ASC").Find(&providers).Error
	return providers, err
}

// GetProviderByID retrieves a provider by ID
func (r *ProviderRepository) GetProviderByID(ctx context.Context, id uint) (*models.AmbulanceProvider, error) {
	var provider models.AmbulanceProvider
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return &provider, nil
}

// GetProviderByOwner retrieves the provider administered by a user
func (r *ProviderRepository) GetProviderByOwner(ctx context.Context, ownerID uint) (*models.AmbulanceProvider, error) {
	var provider models.AmbulanceProvider
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return &provider, nil
}

func (r *ProviderRepository) CreateProvider(ctx context.Context, provider *models.AmbulanceProvider) error {
	return r.db.WithContext(ctx).Create(provider).Error
}

func (r *ProviderRepository) UpdateProvider(ctx context.Context, provider *models.AmbulanceProvider) error {
	return r.db.WithContext(ctx).Omit("Ambulances").Save(provider).Error
}

type AmbulanceRepository struct {
	db *gorm.DB
}

func NewAmbulanceRepo(db *gorm.DB) *AmbulanceRepository {
	return &AmbulanceRepository{db: db}
}

// ListByProvider returns a provider's fleet ordered by vehicle number
func (r *AmbulanceRepository) ListByProvider(ctx context.Context, providerID uint) ([]models.Ambulance, error) {
	var ambulances []models.Ambulance
	err := r.db.WithContext(ctx).Where("provider_id = ?", providerID).Order("vehicle_number ASC").Find(&ambulances).Error
	return ambulances, err
}

// GetByNumber finds a vehicle by its number within one provider's fleet
func (r *AmbulanceRepository) GetByNumber(ctx context.Context, providerID uint, number string) (*models.Ambulance, error) {
	var ambulance models.Ambulance
	err := r.db.WithContext(ctx).
		Where("provider_id = ? AND vehicle_number = ?", providerID, number).
		First(&ambulance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAmbulanceNotFound
		}
		return nil, err
	}
	return &ambulance, nil
}

// NumberTaken reports whether any provider already registered number,
// ignoring case
func (r *AmbulanceRepository) NumberTaken(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Ambulance{}).
		Where("LOWER(vehicle_number) = ?", strings.ToLower(number)).
		Count(&count).Error
	return count > 0, err
}

// CreateAmbulance inserts a vehicle; a number lost to a concurrent insert
// comes back as ErrDuplicateVehicle
func (r *AmbulanceRepository) CreateAmbulance(ctx context.Context, ambulance *models.Ambulance) error {
	err := r.db.WithContext(ctx).Create(ambulance).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateVehicle
	}
	return err
}

func (r *AmbulanceRepository) UpdateAmbulance(ctx context.Context, ambulance *models.Ambulance) error {
	return r.db.WithContext(ctx).Save(ambulance).Error
}

func (r *AmbulanceRepository) DeleteAmbulance(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Ambulance{}, id).Error
}
