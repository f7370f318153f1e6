package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"careconnect-backend/internal/apperr"
	"careconnect-backend/internal/availability"
	"careconnect-backend/internal/models"
	"careconnect-backend/internal/repository"
)

const maxCompare = 4

// HospitalBeds holds the four patient-facing bed categories
type HospitalBeds struct {
	ICU        availability.Triple `json:"icu"`
	Oxygen     availability.Triple `json:"oxygen"`
	Ventilator availability.Triple `json:"ventilator"`
	Isolation  availability.Triple `json:"isolation"`
}

func bedsOf(h *models.Hospital) HospitalBeds {
	return HospitalBeds{
		ICU:        availability.Bed(h.BedsICU, h.BedsICUCapacity),
		Oxygen:     availability.Bed(h.BedsOxygen, h.BedsOxygenCapacity),
		Ventilator: availability.Bed(h.BedsVentilator, h.BedsVentilatorCapacity),
		Isolation:  availability.Bed(h.BedsIsolation, h.BedsIsolationCapacity),
	}
}

// HospitalResult is a hospital enriched for the search listing
type HospitalResult struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Address     string       `json:"address"`
	City        string       `json:"city"`
	Type        string       `json:"type"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	Beds        HospitalBeds `json:"beds"`
	Facilities  []string     `json:"facilities"`
	Distance    float64      `json:"distance"`
	Latitude    float64      `json:"latitude"`
	Longitude   float64      `json:"longitude"`
	LastUpdated string       `json:"last_updated"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// HospitalQuery is the search form. Mode "name" with a non-empty Name
// searches names only; anything else is a location search.
type HospitalQuery struct {
	Mode       string
	Name       string
	Location   string
	Type       string
	Facilities []string
}

func (q HospitalQuery) byName() bool {
	return q.Mode == "name" && strings.TrimSpace(q.Name) != ""
}

// ComparedHospital is one column of the comparison table
type ComparedHospital struct {
	HospitalResult
	Percentages map[string]float64     `json:"percentages"`
	HasFacility map[string]bool        `json:"has_facility"`
	Pricing     map[string]interface{} `json:"pricing"`
	Insurers    []string               `json:"accepted_insurers"`
}

// CompareResult either lists hospitals or, for a single id, points the
// caller at the ambulance directory for that hospital
type CompareResult struct {
	Hospitals  []ComparedHospital `json:"hospitals,omitempty"`
	RedirectTo string             `json:"redirect_to,omitempty"`
}

// LiveHospital is the polling payload for one hospital
type LiveHospital struct {
	ID        string       `json:"id"`
	Beds      HospitalBeds `json:"beds"`
	UpdatedAt string       `json:"updated_at"`
}

// ProviderQuery filters the ambulance directory
type ProviderQuery struct {
	City       string
	Type       string
	HospitalID string
}

// ProviderDirectory is the ambulance directory view
type ProviderDirectory struct {
	Providers          []models.AmbulanceProvider `json:"providers"`
	Cities             []string                   `json:"cities"`
	SearchCity         string                     `json:"search_city"`
	SearchType         string                     `json:"search_type"`
	SelectedHospital   *models.Hospital           `json:"selected_hospital"`
	ActiveAmbulanceIDs []uint                     `json:"active_booking_ambulance_ids"`
	TotalResults       int                        `json:"total_results"`
}

type SearchService struct {
	hospitalRepo HospitalStore
	providerRepo ProviderStore
	bookingRepo  BookingStore
	now          Clock
}

func NewSearchService(hospitalRepo HospitalStore, providerRepo ProviderStore, bookingRepo BookingStore) *SearchService {
	return &SearchService{
		hospitalRepo: hospitalRepo,
		providerRepo: providerRepo,
		bookingRepo:  bookingRepo,
		now:          time.Now,
	}
}

// HomeCities lists the cities that have at least one hospital
func (s *SearchService) HomeCities(ctx context.Context) ([]string, error) {
	return s.hospitalRepo.Cities(ctx)
}

// SearchHospitals runs the name or location search
func (s *SearchService) SearchHospitals(ctx context.Context, q HospitalQuery) ([]HospitalResult, error) {
	filter := repository.HospitalFilter{}
	if q.byName() {
		filter.Name = q.Name
	} else {
		filter.Location = q.Location
		filter.Type = q.Type
		for _, f := range q.Facilities {
			switch strings.ToLower(strings.TrimSpace(f)) {
			case "icu":
				filter.RequireICU = true
			case "oxygen":
				filter.RequireOxygen = true
			case "ventilator":
				filter.RequireVentilator = true
			case "isolation":
				filter.RequireIsolation = true
			}
		}
	}

	hospitals, err := s.hospitalRepo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	results := make([]HospitalResult, 0, len(hospitals))
	for i := range hospitals {
		results = append(results, s.enrich(&hospitals[i], now))
	}

	if q.byName() {
		sort.SliceStable(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	} else {
		sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	}
	return results, nil
}

func (s *SearchService) enrich(h *models.Hospital, now time.Time) HospitalResult {
	var lat, lng float64
	if h.Latitude != nil && h.Longitude != nil {
		lat, lng = *h.Latitude, *h.Longitude
	} else {
		lat, lng = availability.PlaceholderCoordinates(h.City)
	}

	return HospitalResult{
		ID:          h.ID,
		Name:        h.Name,
		Address:     h.Address,
		City:        h.City,
		Type:        h.Type,
		Email:       h.Email,
		Phone:       h.Phone,
		Beds:        bedsOf(h),
		Facilities:  h.Facilities,
		Distance:    availability.PlaceholderDistance(h.ID),
		Latitude:    lat,
		Longitude:   lng,
		LastUpdated: availability.RelativeLabel(now, h.UpdatedAt),
		UpdatedAt:   h.UpdatedAt,
	}
}

// CompareHospitals builds the side-by-side view for up to four ids
func (s *SearchService) CompareHospitals(ctx context.Context, idsParam string) (*CompareResult, error) {
	raw := splitIDs(idsParam)
	if len(raw) == 0 {
		return nil, apperr.Validation("Please select hospitals to compare")
	}
	if len(raw) > maxCompare {
		raw = raw[:maxCompare]
	}
	if len(raw) == 1 {
		return &CompareResult{RedirectTo: "/user/ambulances?hospital_id=" + raw[0]}, nil
	}

	now := s.now()
	compared := []ComparedHospital{}
	for _, part := range raw {
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			continue
		}
		h, err := s.hospitalRepo.GetHospitalByID(ctx, uint(id))
		if err != nil {
			if errors.Is(err, repository.ErrHospitalNotFound) {
				continue
			}
			return nil, err
		}
		compared = append(compared, s.compareEntry(h, now))
	}

	if len(compared) == 0 {
		return nil, apperr.NotFound("No hospitals found for comparison")
	}
	return &CompareResult{Hospitals: compared}, nil
}

func (s *SearchService) compareEntry(h *models.Hospital, now time.Time) ComparedHospital {
	result := s.enrich(h, now)
	beds := result.Beds

	pricing := map[string]interface{}{}
	for k, v := range h.PricingInfo {
		pricing[k] = v
	}

	return ComparedHospital{
		HospitalResult: result,
		Percentages: map[string]float64{
			"icu":        availability.Percentage(beds.ICU.Available, beds.ICU.Total),
			"oxygen":     availability.Percentage(beds.Oxygen.Available, beds.Oxygen.Total),
			"ventilator": availability.Percentage(beds.Ventilator.Available, beds.Ventilator.Total),
			"isolation":  availability.Percentage(beds.Isolation.Available, beds.Isolation.Total),
		},
		HasFacility: map[string]bool{
			"icu":        h.BedsICU > 0,
			"oxygen":     h.BedsOxygen > 0,
			"ventilator": h.BedsVentilator > 0,
			"isolation":  h.BedsIsolation > 0,
		},
		Pricing:  pricing,
		Insurers: h.AcceptedInsurers(),
	}
}

// LiveAvailability returns current bed triples for the listed hospitals,
// or for every hospital when no numeric id is given
func (s *SearchService) LiveAvailability(ctx context.Context, idsParam string) ([]LiveHospital, error) {
	var ids []uint
	for _, part := range splitIDs(idsParam) {
		if !isDigits(part) {
			continue
		}
		if id, err := strconv.ParseUint(part, 10, 64); err == nil {
			ids = append(ids, uint(id))
		}
	}

	var hospitals []models.Hospital
	var err error
	if len(ids) == 0 {
		hospitals, err = s.hospitalRepo.GetAllHospitals(ctx)
	} else {
		hospitals, err = s.hospitalRepo.GetHospitalsByIDs(ctx, ids)
	}
	if err != nil {
		return nil, err
	}

	payload := make([]LiveHospital, 0, len(hospitals))
	for i := range hospitals {
		h := &hospitals[i]
		payload = append(payload, LiveHospital{
			ID:        strconv.FormatUint(uint64(h.ID), 10),
			Beds:      bedsOf(h),
			UpdatedAt: h.UpdatedAt.Format(time.RFC3339),
		})
	}
	return payload, nil
}

// SearchProviders lists providers serving the city that still have a
// bookable vehicle
func (s *SearchService) SearchProviders(ctx context.Context, q ProviderQuery) (*ProviderDirectory, error) {
	dir := &ProviderDirectory{SearchCity: strings.TrimSpace(q.City), SearchType: strings.TrimSpace(q.Type)}

	if q.HospitalID != "" {
		if id, err := strconv.ParseUint(strings.TrimSpace(q.HospitalID), 10, 64); err == nil {
			h, err := s.hospitalRepo.GetHospitalByID(ctx, uint(id))
			if err != nil && !errors.Is(err, repository.ErrHospitalNotFound) {
				return nil, err
			}
			dir.SelectedHospital = h
		}
	}
	if dir.SelectedHospital != nil && dir.SearchCity == "" {
		dir.SearchCity = strings.TrimSpace(dir.SelectedHospital.City)
	}

	activeIDs, err := s.bookingRepo.ActiveAmbulanceIDs(ctx)
	if err != nil {
		return nil, err
	}
	committed := make(map[uint]bool, len(activeIDs))
	for _, id := range activeIDs {
		committed[id] = true
	}
	dir.ActiveAmbulanceIDs = activeIDs

	providers, err := s.providerRepo.ListWithAmbulances(ctx)
	if err != nil {
		return nil, err
	}

	cities := map[string]bool{}
	dir.Providers = []models.AmbulanceProvider{}
	for _, p := range providers {
		for _, c := range p.ServiceArea {
			cities[c] = true
		}
		if dir.SearchCity != "" && !p.ServiceArea.Contains(dir.SearchCity) {
			continue
		}
		if hasBookableAmbulance(p.Ambulances, dir.SearchType, committed) {
			dir.Providers = append(dir.Providers, p)
		}
	}

	dir.Cities = make([]string, 0, len(cities))
	for c := range cities {
		dir.Cities = append(dir.Cities, c)
	}
	sort.Strings(dir.Cities)
	dir.TotalResults = len(dir.Providers)
	return dir, nil
}

func hasBookableAmbulance(fleet []models.Ambulance, vehicleType string, committed map[uint]bool) bool {
	for _, a := range fleet {
		if vehicleType != "" && a.Type != vehicleType {
			continue
		}
		if a.IsAvailable && !committed[a.ID] {
			return true
		}
	}
	return false
}

func splitIDs(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
