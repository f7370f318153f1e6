package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"careconnect-backend/internal/apperr"
	"careconnect-backend/internal/availability"
	"careconnect-backend/internal/catalog"
	"careconnect-backend/internal/models"
	"careconnect-backend/internal/repository"

	"gorm.io/datatypes"
)

const msgHospitalNotFound = "Hospital information not found. Please contact administrator."

// BedCounts is one submission of the bed form: available and capacity per
// category
type BedCounts struct {
	Total              int `json:"total_beds"`
	TotalCapacity      int `json:"total_beds_capacity"`
	ICU                int `json:"icu_beds"`
	ICUCapacity        int `json:"icu_beds_capacity"`
	Oxygen             int `json:"oxygen_beds"`
	OxygenCapacity     int `json:"oxygen_beds_capacity"`
	Ventilator         int `json:"ventilators"`
	VentilatorCapacity int `json:"ventilators_capacity"`
	Isolation          int `json:"isolation_beds"`
	IsolationCapacity  int `json:"isolation_beds_capacity"`
}

func bedCountsOf(h *models.Hospital) BedCounts {
	return BedCounts{
		Total:              h.BedsTotal,
		TotalCapacity:      h.BedsTotalCapacity,
		ICU:                h.BedsICU,
		ICUCapacity:        h.BedsICUCapacity,
		Oxygen:             h.BedsOxygen,
		OxygenCapacity:     h.BedsOxygenCapacity,
		Ventilator:         h.BedsVentilator,
		VentilatorCapacity: h.BedsVentilatorCapacity,
		Isolation:          h.BedsIsolation,
		IsolationCapacity:  h.BedsIsolationCapacity,
	}
}

func (b BedCounts) validate() error {
	values := []int{
		b.Total, b.TotalCapacity, b.ICU, b.ICUCapacity, b.Oxygen,
		b.OxygenCapacity, b.Ventilator, b.VentilatorCapacity, b.Isolation, b.IsolationCapacity,
	}
	for _, v := range values {
		if v < 0 {
			return apperr.Validation("Bed counts cannot be negative")
		}
	}

	checks := []struct {
		available, capacity int
		label               string
	}{
		{b.Total, b.TotalCapacity, "Total beds"},
		{b.ICU, b.ICUCapacity, "ICU beds"},
		{b.Oxygen, b.OxygenCapacity, "Oxygen beds"},
		{b.Ventilator, b.VentilatorCapacity, "Ventilators"},
		{b.Isolation, b.IsolationCapacity, "Isolation beds"},
	}
	for _, c := range checks {
		if c.capacity > 0 && c.available > c.capacity {
			return apperr.Validation(c.label + " available cannot be greater than total capacity")
		}
	}
	return nil
}

// HospitalPricing is the bed tariff form
type HospitalPricing struct {
	GeneralBed   float64 `json:"general_bed"`
	ICUBed       float64 `json:"icu_bed"`
	OxygenBed    float64 `json:"oxygen_bed"`
	Ventilator   float64 `json:"ventilator"`
	IsolationBed float64 `json:"isolation_bed"`
}

func (p HospitalPricing) toMap() datatypes.JSONMap {
	return datatypes.JSONMap{
		"general_bed":   p.GeneralBed,
		"icu_bed":       p.ICUBed,
		"oxygen_bed":    p.OxygenBed,
		"ventilator":    p.Ventilator,
		"isolation_bed": p.IsolationBed,
	}
}

func hospitalPricingOf(m datatypes.JSONMap) HospitalPricing {
	return HospitalPricing{
		GeneralBed:   models.PriceOf(m, "general_bed"),
		ICUBed:       models.PriceOf(m, "icu_bed"),
		OxygenBed:    models.PriceOf(m, "oxygen_bed"),
		Ventilator:   models.PriceOf(m, "ventilator"),
		IsolationBed: models.PriceOf(m, "isolation_bed"),
	}
}

// HospitalDashboard is the admin's overview
type HospitalDashboard struct {
	Hospital    *models.Hospital `json:"hospital"`
	Beds        BedCounts        `json:"beds"`
	LastUpdated time.Time        `json:"last_updated"`
}

// HospitalLiveStats is the admin polling payload
type HospitalLiveStats struct {
	Total      availability.Triple `json:"total"`
	ICU        availability.Triple `json:"icu"`
	Oxygen     availability.Triple `json:"oxygen"`
	Ventilator availability.Triple `json:"ventilator"`
	Isolation  availability.Triple `json:"isolation"`
	UpdatedAt  string              `json:"updated_at"`
}

type HospitalAdminService struct {
	hospitalRepo HospitalStore
	activity     *ActivityService
}

func NewHospitalAdminService(hospitalRepo HospitalStore, activity *ActivityService) *HospitalAdminService {
	return &HospitalAdminService{hospitalRepo: hospitalRepo, activity: activity}
}

// Hospital returns the record the actor administers
func (s *HospitalAdminService) Hospital(ctx context.Context, actor Actor) (*models.Hospital, error) {
	hospital, err := s.hospitalRepo.GetHospitalByOwner(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrHospitalNotFound) {
			return nil, apperr.NotFound(msgHospitalNotFound)
		}
		return nil, err
	}
	return hospital, nil
}

func (s *HospitalAdminService) Dashboard(ctx context.Context, actor Actor) (*HospitalDashboard, error) {
	hospital, err := s.Hospital(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &HospitalDashboard{Hospital: hospital, Beds: bedCountsOf(hospital), LastUpdated: hospital.UpdatedAt}, nil
}

func (s *HospitalAdminService) LiveStats(ctx context.Context, actor Actor) (*HospitalLiveStats, error) {
	h, err := s.Hospital(ctx, actor)
	if err != nil {
		return nil, err
	}
	beds := bedsOf(h)
	return &HospitalLiveStats{
		Total:      availability.Bed(h.BedsTotal, h.BedsTotalCapacity),
		ICU:        beds.ICU,
		Oxygen:     beds.Oxygen,
		Ventilator: beds.Ventilator,
		Isolation:  beds.Isolation,
		UpdatedAt:  h.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func (s *HospitalAdminService) Beds(ctx context.Context, actor Actor) (BedCounts, error) {
	hospital, err := s.Hospital(ctx, actor)
	if err != nil {
		return BedCounts{}, err
	}
	return bedCountsOf(hospital), nil
}

// UpdateBeds replaces all ten counters; nothing is stored when any check fails
func (s *HospitalAdminService) UpdateBeds(ctx context.Context, actor Actor, beds BedCounts) (*models.Hospital, error) {
	hospital, err := s.Hospital(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := beds.validate(); err != nil {
		return nil, err
	}

	hospital.BedsTotal, hospital.BedsTotalCapacity = beds.Total, beds.TotalCapacity
	hospital.BedsICU, hospital.BedsICUCapacity = beds.ICU, beds.ICUCapacity
	hospital.BedsOxygen, hospital.BedsOxygenCapacity = beds.Oxygen, beds.OxygenCapacity
	hospital.BedsVentilator, hospital.BedsVentilatorCapacity = beds.Ventilator, beds.VentilatorCapacity
	hospital.BedsIsolation, hospital.BedsIsolationCapacity = beds.Isolation, beds.IsolationCapacity

	if err := s.hospitalRepo.UpdateHospital(ctx, hospital); err != nil {
		return nil, fmt.Errorf("failed to update beds: %w", err)
	}

	s.activity.Record(ctx, actor, "update_beds", fmt.Sprintf(
		"Updated bed availability - Total: %d/%d, ICU: %d/%d, Oxygen: %d/%d, Ventilators: %d/%d, Isolation: %d/%d",
		beds.Total, beds.TotalCapacity, beds.ICU, beds.ICUCapacity, beds.Oxygen, beds.OxygenCapacity,
		beds.Ventilator, beds.VentilatorCapacity, beds.Isolation, beds.IsolationCapacity,
	))
	return hospital, nil
}

// Facilities returns the facility catalog with the hospital's selection marked
func (s *HospitalAdminService) Facilities(ctx context.Context, actor Actor) ([]catalog.Selectable, error) {
	hospital, err := s.Hospital(ctx, actor)
	if err != nil {
		return nil, err
	}
	return catalog.Mark(catalog.HospitalFacilities, hospital.Facilities), nil
}

// UpdateFacilities stores the selected catalog ids as display names
func (s *HospitalAdminService) UpdateFacilities(ctx context.Context, actor Actor, ids []string) (*models.Hospital, error) {
	hospital, err := s.Hospital(ctx, actor)
	if err != nil {
		return nil, err
	}

	selected := catalog.NamesByID(catalog.HospitalFacilities, ids)
	hospital.Facilities = models.StringList(selected)
	if err := s.hospitalRepo.UpdateHospital(ctx, hospital); err != nil {
		return nil, fmt.Errorf("failed to update facilities: %w", err)
	}

	s.activity.Record(ctx, actor, "update_facilities", "Updated facilities: "+strings.Join(selected, ", "))
	return hospital, nil
}

func (s *HospitalAdminService) Pricing(ctx context.Context, actor Actor) (HospitalPricing, error) {
	hospital, err := s.Hospital(ctx, actor)
	if err != nil {
		return HospitalPricing{}, err
	}
	return hospitalPricingOf(hospital.PricingInfo), nil
}

func (s *HospitalAdminService) UpdatePricing(ctx context.Context, actor Actor, p HospitalPricing) (*models.Hospital, error) {
	hospital, err := s.Hospital(ctx, actor)
	if err != nil {
		return nil, err
	}
	if p.GeneralBed < 0 || p.ICUBed < 0 || p.OxygenBed < 0 || p.Ventilator < 0 || p.IsolationBed < 0 {
		return nil, apperr.Validation("Prices cannot be negative")
	}

	hospital.PricingInfo = p.toMap()
	if err := s.hospitalRepo.UpdateHospital(ctx, hospital); err != nil {
		return nil, fmt.Errorf("failed to update pricing: %w", err)
	}

	s.activity.Record(ctx, actor, "update_pricing", fmt.Sprintf(
		"Updated pricing - General: ₹%g, ICU: ₹%g, Oxygen: ₹%g, Ventilator: ₹%g, Isolation: ₹%g",
		p.GeneralBed, p.ICUBed, p.OxygenBed, p.Ventilator, p.IsolationBed,
	))
	return hospital, nil
}

// Insurances returns the insurer catalog with accepted insurers marked
func (s *HospitalAdminService) Insurances(ctx context.Context, actor Actor) ([]catalog.Selectable, error) {
	hospital, err := s.Hospital(ctx, actor)
	if err != nil {
		return nil, err
	}
	return catalog.Mark(catalog.Insurers, hospital.AcceptedInsurers()), nil
}

func (s *HospitalAdminService) UpdateInsurances(ctx context.Context, actor Actor, ids []string) (*models.Hospital, error) {
	hospital, err := s.Hospital(ctx, actor)
	if err != nil {
		return nil, err
	}

	selected := catalog.NamesByID(catalog.Insurers, ids)
	hospital.InsuranceProviders = datatypes.JSONMap{"accepted": selected}
	if err := s.hospitalRepo.UpdateHospital(ctx, hospital); err != nil {
		return nil, fmt.Errorf("failed to update insurance providers: %w", err)
	}

	details := "None"
	if len(selected) > 0 {
		details = strings.Join(selected, ", ")
	}
	s.activity.Record(ctx, actor, "update_insurances", "Updated insurance providers: "+details)
	return hospital, nil
}
