package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AmbulanceALS          = "ALS"
	AmbulanceBLS          = "BLS"
	AmbulanceNonEmergency = "Non-Emergency"
)

const (
	VehicleAvailable   = "available"
	VehicleBusy        = "busy"
	VehicleMaintenance = "maintenance"
	VehicleOffline     = "offline"
)

// AmbulanceProvider represents the ambulance_providers table
type AmbulanceProvider struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"not null;size:255" json:"name"`
	Address     string            `gorm:"type:text" json:"address"`
	City        string            `gorm:"size:100;index" json:"city"`
	Email       string            `gorm:"size:254" json:"email"`
	Phone       string            `gorm:"size:20" json:"phone"`
	ServiceArea StringList        `gorm:"type:text" json:"service_area"`
	Pricing     datatypes.JSONMap `gorm:"type:json" json:"pricing"`
	OwnerID     *uint             `gorm:"index" json:"owner_id"`
	Owner       *User             `gorm:"foreignKey:OwnerID" json:"-"`
	Ambulances  []Ambulance       `gorm:"foreignKey:ProviderID" json:"ambulances,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TableName specifies the table name for AmbulanceProvider model
func (AmbulanceProvider) TableName() string {
	return "ambulance_providers"
}

// Ambulance represents the ambulances table
type Ambulance struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ProviderID    uint       `gorm:"not null;index" json:"provider_id"`
	VehicleNumber string     `gorm:"uniqueIndex;not null;size:50" json:"vehicle_number"`
	Type          string     `gorm:"type:enum('ALS','BLS','Non-Emergency');default:'BLS'" json:"type"`
	DriverName    string     `gorm:"size:255" json:"driver_name"`
	DriverPhone   string     `gorm:"size:20" json:"driver_phone"`
	Status        string     `gorm:"type:enum('available','busy','maintenance','offline');default:'available'" json:"status"`
	Facilities    StringList `gorm:"type:text" json:"facilities"`
	IsAvailable   bool       `gorm:"default:true" json:"is_available"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Ambulance model
func (Ambulance) TableName() string {
	return "ambulances"
}
