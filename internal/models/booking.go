package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	BookingPending    = "pending"
	BookingConfirmed  = "confirmed"
	BookingInProgress = "in_progress"
	BookingCompleted  = "completed"
	BookingCancelled  = "cancelled"
)

// ActiveBookingStatuses commit their ambulance
var ActiveBookingStatuses = []string{BookingPending, BookingConfirmed, BookingInProgress}

// IsTerminalBookingStatus reports whether no further transition is allowed
func IsTerminalBookingStatus(status string) bool {
	return status == BookingCompleted || status == BookingCancelled
}

// Booking represents the bookings table
type Booking struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	ProviderID     uint           `gorm:"not null;index" json:"provider_id"`
	HospitalID     uint           `gorm:"not null;index" json:"hospital_id"`
	AmbulanceID    *uint          `gorm:"index" json:"ambulance_id"`
	PatientName    string         `gorm:"not null;size:255" json:"patient_name"`
	PatientPhone   string         `gorm:"not null;size:20" json:"patient_phone"`
	ContactPerson  string         `gorm:"size:255" json:"contact_person"`
	ContactPhone   string         `gorm:"size:20" json:"contact_phone"`
	PickupLocation string         `gorm:"type:text;not null" json:"pickup_location"`
	DropLocation   string         `gorm:"type:text" json:"drop_location"`
	PickupDate     datatypes.Date `json:"pickup_date"`
	PickupTime     datatypes.Time `json:"pickup_time"`
	EmergencyType  string         `gorm:"size:50;default:'non-emergency'" json:"emergency_type"`
	Notes          string         `gorm:"type:text" json:"notes"`
	Status         string         `gorm:"type:enum('pending','confirmed','in_progress','completed','cancelled');default:'pending';index" json:"status"`

	User      *User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Provider  *AmbulanceProvider `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Hospital  *Hospital          `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
	Ambulance *Ambulance         `gorm:"foreignKey:AmbulanceID;constraint:OnDelete:SET NULL;" json:"ambulance,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Booking model
func (Booking) TableName() string {
	return "bookings"
}
