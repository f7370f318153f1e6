package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	HospitalGovernment = "government"
	HospitalPrivate    = "private"
)

// Hospital represents the hospitals table
type Hospital struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"not null;size:255;index" json:"name"`
	Address string `gorm:"type:text" json:"address"`
	City    string `gorm:"size:100;index" json:"city"`
	Type    string `gorm:"type:enum('government','private');default:'private'" json:"type"`
	Email   string `gorm:"size:254" json:"email"`
	Phone   string `gorm:"size:20" json:"phone"`

	BedsTotal              int `gorm:"default:0" json:"beds_total"`
	BedsTotalCapacity      int `gorm:"default:0" json:"beds_total_capacity"`
	BedsICU                int `gorm:"column:beds_icu;default:0" json:"beds_icu"`
	BedsICUCapacity        int `gorm:"column:beds_icu_capacity;default:0" json:"beds_icu_capacity"`
	BedsOxygen             int `gorm:"default:0" json:"beds_oxygen"`
	BedsOxygenCapacity     int `gorm:"default:0" json:"beds_oxygen_capacity"`
	BedsVentilator         int `gorm:"default:0" json:"beds_ventilator"`
	BedsVentilatorCapacity int `gorm:"default:0" json:"beds_ventilator_capacity"`
	BedsIsolation          int `gorm:"default:0" json:"beds_isolation"`
	BedsIsolationCapacity  int `gorm:"default:0" json:"beds_isolation_capacity"`

	Facilities         StringList        `gorm:"type:text" json:"facilities"`
	PricingInfo        datatypes.JSONMap `gorm:"type:json" json:"pricing_info"`
	InsuranceProviders datatypes.JSONMap `gorm:"type:json" json:"insurance_providers"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	OwnerID   *uint     `gorm:"index" json:"owner_id"`
	Owner     *User     `gorm:"foreignKey:OwnerID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Hospital model
func (Hospital) TableName() string {
	return "hospitals"
}

// AcceptedInsurers returns the insurer names stored under "accepted"
func (h *Hospital) AcceptedInsurers() []string {
	return stringSlice(h.InsuranceProviders["accepted"])
}

// stringSlice reads a JSON array that may come back as []interface{}
func stringSlice(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

// PriceOf reads a numeric price from a pricing map, zero when absent
func PriceOf(m datatypes.JSONMap, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
