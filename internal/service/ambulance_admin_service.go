package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"careconnect-backend/internal/apperr"
	"careconnect-backend/internal/catalog"
	"careconnect-backend/internal/models"
	"careconnect-backend/internal/repository"

	"gorm.io/datatypes"
)

const (
	maxVehicleNumber = 50
	maxDriverName    = 255
	maxDriverPhone   = 20

	defaultDriverName  = "Not Assigned"
	defaultDriverPhone = "N/A"

	msgVehicleNotFound = "Ambulance not found"

	// LastUpdatedLayout renders provider timestamps on the dashboard
	LastUpdatedLayout = "03:04 PM, Jan 02, 2006"
)

// FleetStats summarizes a provider's vehicles
type FleetStats struct {
	Total        int    `json:"total_ambulances"`
	Available    int    `json:"available_ambulances"`
	ALS          int    `json:"als_count"`
	BLS          int    `json:"bls_count"`
	NonEmergency int    `json:"non_emergency_count"`
	LastUpdated  string `json:"last_updated"`
}

// AmbulanceDashboard is the provider admin overview
type AmbulanceDashboard struct {
	Provider *models.AmbulanceProvider `json:"provider"`
	Stats    FleetStats                `json:"stats"`
}

// AmbulanceInput is the add/edit vehicle form
type AmbulanceInput struct {
	Number      string   `json:"ambulance_number"`
	Type        string   `json:"ambulance_type"`
	DriverName  string   `json:"driver_name"`
	DriverPhone string   `json:"driver_phone"`
	Facilities  []string `json:"facilities"`
	IsAvailable bool     `json:"is_available"`
}

// ProviderPricing is the fare form
type ProviderPricing struct {
	BaseFare        float64 `json:"base_fare"`
	PerKM           float64 `json:"per_km"`
	OxygenCharge    float64 `json:"oxygen_charge"`
	AttendantCharge float64 `json:"attendant_charge"`
}

func providerPricingOf(m datatypes.JSONMap) ProviderPricing {
	return ProviderPricing{
		BaseFare:        models.PriceOf(m, "base_fare"),
		PerKM:           models.PriceOf(m, "per_km"),
		OxygenCharge:    models.PriceOf(m, "oxygen_charge"),
		AttendantCharge: models.PriceOf(m, "attendant_charge"),
	}
}

type AmbulanceAdminService struct {
	providerRepo  ProviderStore
	ambulanceRepo AmbulanceStore
	activity      *ActivityService
}

func NewAmbulanceAdminService(providerRepo ProviderStore, ambulanceRepo AmbulanceStore, activity *ActivityService) *AmbulanceAdminService {
	return &AmbulanceAdminService{
		providerRepo:  providerRepo,
		ambulanceRepo: ambulanceRepo,
		activity:      activity,
	}
}

// Provider returns the provider the actor administers
func (s *AmbulanceAdminService) Provider(ctx context.Context, actor Actor) (*models.AmbulanceProvider, error) {
	provider, err := s.providerRepo.GetProviderByOwner(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return nil, apperr.NotFound(msgProviderNotFound)
		}
		return nil, err
	}
	return provider, nil
}

func (s *AmbulanceAdminService) Dashboard(ctx context.Context, actor Actor) (*AmbulanceDashboard, error) {
	provider, err := s.Provider(ctx, actor)
	if err != nil {
		return nil, err
	}
	stats, err := s.stats(ctx, provider)
	if err != nil {
		return nil, err
	}
	return &AmbulanceDashboard{Provider: provider, Stats: stats}, nil
}

// LiveStats is the polling variant of Dashboard
func (s *AmbulanceAdminService) LiveStats(ctx context.Context, actor Actor) (FleetStats, error) {
	provider, err := s.Provider(ctx, actor)
	if err != nil {
		return FleetStats{}, err
	}
	return s.stats(ctx, provider)
}

func (s *AmbulanceAdminService) stats(ctx context.Context, provider *models.AmbulanceProvider) (FleetStats, error) {
	fleet, err := s.ambulanceRepo.ListByProvider(ctx, provider.ID)
	if err != nil {
		return FleetStats{}, err
	}

	stats := FleetStats{Total: len(fleet), LastUpdated: provider.UpdatedAt.Format(LastUpdatedLayout)}
	for _, a := range fleet {
		if a.IsAvailable {
			stats.Available++
		}
		switch a.Type {
		case models.AmbulanceALS:
			stats.ALS++
		case models.AmbulanceBLS:
			stats.BLS++
		case models.AmbulanceNonEmergency:
			stats.NonEmergency++
		}
	}
	return stats, nil
}

func (s *AmbulanceAdminService) ListAmbulances(ctx context.Context, actor Actor) ([]models.Ambulance, error) {
	provider, err := s.Provider(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.ambulanceRepo.ListByProvider(ctx, provider.ID)
}

// AddAmbulance registers a vehicle. Numbers are unique across all
// providers, compared case-insensitively.
func (s *AmbulanceAdminService) AddAmbulance(ctx context.Context, actor Actor, in AmbulanceInput) (*models.Ambulance, error) {
	provider, err := s.Provider(ctx, actor)
	if err != nil {
		return nil, err
	}

	number := truncate(strings.TrimSpace(in.Number), maxVehicleNumber)
	vehicleType := strings.TrimSpace(in.Type)
	if number == "" || vehicleType == "" {
		return nil, apperr.Validation("Ambulance number and type are required")
	}
	if !catalog.IsAmbulanceType(vehicleType) {
		return nil, apperr.Validation("Invalid ambulance type")
	}

	taken, err := s.ambulanceRepo.NumberTaken(ctx, number)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Validation(fmt.Sprintf("Ambulance %s already exists", number))
	}

	ambulance := &models.Ambulance{
		ProviderID:    provider.ID,
		VehicleNumber: number,
		Type:          vehicleType,
		DriverName:    orDefault(truncate(strings.TrimSpace(in.DriverName), maxDriverName), defaultDriverName),
		DriverPhone:   orDefault(truncate(strings.TrimSpace(in.DriverPhone), maxDriverPhone), defaultDriverPhone),
		Status:        models.VehicleAvailable,
		Facilities:    models.StringList(catalog.Canonical(catalog.AmbulanceFacilities, in.Facilities)),
		IsAvailable:   in.IsAvailable,
	}
	if err := s.ambulanceRepo.CreateAmbulance(ctx, ambulance); err != nil {
		if errors.Is(err, repository.ErrDuplicateVehicle) {
			return nil, apperr.Validation(fmt.Sprintf("Ambulance %s already exists", number))
		}
		return nil, fmt.Errorf("failed to add ambulance: %w", err)
	}

	s.activity.Record(ctx, actor, "add_ambulance", fmt.Sprintf("Added ambulance %s (%s)", number, vehicleType))
	return ambulance, nil
}

// EditAmbulance updates type, driver and facilities of a vehicle the
// provider owns. The number itself is not editable.
func (s *AmbulanceAdminService) EditAmbulance(ctx context.Context, actor Actor, in AmbulanceInput) (*models.Ambulance, error) {
	provider, err := s.Provider(ctx, actor)
	if err != nil {
		return nil, err
	}
	ambulance, err := s.ownedAmbulance(ctx, provider.ID, in.Number)
	if err != nil {
		return nil, err
	}

	if t := strings.TrimSpace(in.Type); t != "" {
		if !catalog.IsAmbulanceType(t) {
			return nil, apperr.Validation("Invalid ambulance type")
		}
		ambulance.Type = t
	}
	ambulance.DriverName = orDefault(truncate(strings.TrimSpace(in.DriverName), maxDriverName), defaultDriverName)
	ambulance.DriverPhone = orDefault(truncate(strings.TrimSpace(in.DriverPhone), maxDriverPhone), defaultDriverPhone)
	ambulance.Facilities = models.StringList(catalog.Canonical(catalog.AmbulanceFacilities, in.Facilities))

	if err := s.ambulanceRepo.UpdateAmbulance(ctx, ambulance); err != nil {
		return nil, fmt.Errorf("failed to update ambulance: %w", err)
	}

	s.activity.Record(ctx, actor, "edit_ambulance", "Updated ambulance "+ambulance.VehicleNumber)
	return ambulance, nil
}

func (s *AmbulanceAdminService) DeleteAmbulance(ctx context.Context, actor Actor, number string) error {
	provider, err := s.Provider(ctx, actor)
	if err != nil {
		return err
	}
	ambulance, err := s.ownedAmbulance(ctx, provider.ID, number)
	if err != nil {
		return err
	}

	if err := s.ambulanceRepo.DeleteAmbulance(ctx, ambulance.ID); err != nil {
		return fmt.Errorf("failed to delete ambulance: %w", err)
	}

	s.activity.Record(ctx, actor, "delete_ambulance", "Deleted ambulance "+ambulance.VehicleNumber)
	return nil
}

func (s *AmbulanceAdminService) ToggleAvailability(ctx context.Context, actor Actor, number string, available bool) (*models.Ambulance, error) {
	provider, err := s.Provider(ctx, actor)
	if err != nil {
		return nil, err
	}
	ambulance, err := s.ownedAmbulance(ctx, provider.ID, number)
	if err != nil {
		return nil, err
	}

	ambulance.IsAvailable = available
	if err := s.ambulanceRepo.UpdateAmbulance(ctx, ambulance); err != nil {
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}

	state := "unavailable"
	if available {
		state = "available"
	}
	s.activity.Record(ctx, actor, "toggle_availability", fmt.Sprintf("Set ambulance %s to %s", ambulance.VehicleNumber, state))
	return ambulance, nil
}

func (s *AmbulanceAdminService) ownedAmbulance(ctx context.Context, providerID uint, number string) (*models.Ambulance, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, apperr.NotFound(msgVehicleNotFound)
	}
	ambulance, err := s.ambulanceRepo.GetByNumber(ctx, providerID, number)
	if err != nil {
		if errors.Is(err, repository.ErrAmbulanceNotFound) {
			return nil, apperr.NotFound(msgVehicleNotFound)
		}
		return nil, err
	}
	return ambulance, nil
}

func (s *AmbulanceAdminService) Pricing(ctx context.Context, actor Actor) (ProviderPricing, error) {
	provider, err := s.Provider(ctx, actor)
	if err != nil {
		return ProviderPricing{}, err
	}
	return providerPricingOf(provider.Pricing), nil
}

func (s *AmbulanceAdminService) UpdatePricing(ctx context.Context, actor Actor, p ProviderPricing) (*models.AmbulanceProvider, error) {
	provider, err := s.Provider(ctx, actor)
	if err != nil {
		return nil, err
	}
	if p.BaseFare < 0 || p.PerKM < 0 || p.OxygenCharge < 0 || p.AttendantCharge < 0 {
		return nil, apperr.Validation("Prices cannot be negative")
	}

	provider.Pricing = datatypes.JSONMap{
		"base_fare":        p.BaseFare,
		"per_km":           p.PerKM,
		"oxygen_charge":    p.OxygenCharge,
		"attendant_charge": p.AttendantCharge,
	}
	if err := s.providerRepo.UpdateProvider(ctx, provider); err != nil {
		return nil, fmt.Errorf("failed to update pricing: %w", err)
	}

	s.activity.Record(ctx, actor, "update_pricing", fmt.Sprintf(
		"Updated pricing - Base: ₹%g, Per KM: ₹%g, Oxygen: ₹%g, Attendant: ₹%g",
		p.BaseFare, p.PerKM, p.OxygenCharge, p.AttendantCharge,
	))
	return provider, nil
}

// ServiceArea returns the city catalog and the provider's current selection
func (s *AmbulanceAdminService) ServiceArea(ctx context.Context, actor Actor) (cities []string, current []string, err error) {
	provider, err := s.Provider(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	return catalog.ServiceCities, provider.ServiceArea, nil
}

func (s *AmbulanceAdminService) UpdateServiceArea(ctx context.Context, actor Actor, cities []string) (*models.AmbulanceProvider, error) {
	provider, err := s.Provider(ctx, actor)
	if err != nil {
		return nil, err
	}

	selected := catalog.Canonical(catalog.ServiceCities, cities)
	provider.ServiceArea = models.StringList(selected)
	if err := s.providerRepo.UpdateProvider(ctx, provider); err != nil {
		return nil, fmt.Errorf("failed to update service area: %w", err)
	}

	s.activity.Record(ctx, actor, "update_service_area", "Updated service areas: "+strings.Join(selected, ", "))
	return provider, nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
