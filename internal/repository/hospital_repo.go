package repository

import (
	"context"
	"errors"
	"strings"

	"careconnect-backend/internal/models"

	"gorm.io/gorm"
)

// HospitalFilter narrows a hospital search. Empty fields do not filter.
type HospitalFilter struct {
	// Name matches a substring of the hospital name only
	Name string
	// Location matches a substring of city, address or name
	Location          string
	Type              string
	RequireICU        bool
	RequireOxygen     bool
	RequireVentilator bool
	RequireIsolation  bool
}

type HospitalRepository struct {
	db *gorm.DB
}

func NewHospitalRepo(db *gorm.DB) *HospitalRepository {
	return &HospitalRepository{db: db}
}

// Search returns hospitals matching filter, ordered by name
func (r *HospitalRepository) Search(ctx context.Context, filter HospitalFilter) ([]models.Hospital, error) {
	q := r.db.WithContext(ctx).Model(&models.Hospital{})

	if name := strings.TrimSpace(filter.Name); name != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(name))
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		p := likePattern(loc)
		q = q.Where("(LOWER(city) LIKE ? OR LOWER(address) LIKE ? OR LOWER(name) LIKE ?)", p, p, p)
	}
	if filter.Type != "" && filter.Type != "all" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.RequireICU {
		q = q.Where("beds_icu > 0")
	}
	if filter.RequireOxygen {
		q = q.Where("beds_oxygen > 0")
	}
	if filter.RequireVentilator {
		q = q.Where("beds_ventilator > 0")
	}
	if filter.RequireIsolation {
		q = q.Where("beds_isolation > 0")
	}

	var hospitals []models.Hospital
	err := q.Order("name ASC").Find(&hospitals).Error
	return hospitals, err
}

// GetAllHospitals retrieves every hospital ordered by name
func (r *HospitalRepository) GetAllHospitals(ctx context.Context) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	err := r.db.WithContext(ctx).Order("name ASC").Find(&hospitals).Error
	return hospitals, err
}

// GetHospitalByID retrieves a hospital by ID
func (r *HospitalRepository) GetHospitalByID(ctx context.Context, id uint) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&hospital).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHospitalNotFound
		}
		return nil, err
	}
	return &hospital, nil
}

// GetHospitalsByIDs retrieves the hospitals that exist among ids
func (r *HospitalRepository) GetHospitalsByIDs(ctx context.Context, ids []uint) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	if len(ids) == 0 {
		return hospitals, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&hospitals).Error
	return hospitals, err
}

// GetHospitalByOwner retrieves the hospital administered by a user
func (r *HospitalRepository) GetHospitalByOwner(ctx context.Context, ownerID uint) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&hospital).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHospitalNotFound
		}
		return nil, err
	}
	return &hospital, nil
}

// Cities returns the distinct non-empty hospital cities, sorted
func (r *HospitalRepository) Cities(ctx context.Context) ([]string, error) {
	var cities []string
	err := r.db.WithContext(ctx).Model(&models.Hospital{}).
		Where("city <> ''").
		Distinct("city").
		Order("city ASC").
		Pluck("city", &cities).Error
	return cities, err
}

// CreateHospital creates a new hospital
func (r *HospitalRepository) CreateHospital(ctx context.Context, hospital *models.Hospital) error {
	return r.db.WithContext(ctx).Create(hospital).Error
}

// UpdateHospital updates an existing hospital
func (r *HospitalRepository) UpdateHospital(ctx context.Context, hospital *models.Hospital) error {
	return r.db.WithContext(ctx).Save(hospital).Error
}

// likePattern lower-cases s, escapes LIKE wildcards and wraps it in %
func likePattern(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return "%" + s + "%"
}
