// Package catalog holds the fixed option lists that admins pick from.
// Selections are always stored in catalog order, whatever order they
// were submitted in.
package catalog

import "strings"

// Option is one selectable entry: a stable id and its display name
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var HospitalFacilities = []Option{
	{"icu", "ICU (Intensive Care Unit)"},
	{"nicu", "NICU (Neonatal ICU)"},
	{"emergency", "Emergency Ward"},
	{"operation_theatre", "Operation Theatre"},
	{"diagnostic_lab", "Diagnostic Lab"},
	{"radiology", "Radiology (X-Ray)"},
	{"ct_scan", "CT Scan"},
	{"mri", "MRI"},
	{"pharmacy", "Pharmacy"},
	{"blood_bank", "Blood Bank"},
	{"ambulance", "Ambulance Service"},
	{"cafeteria", "Cafeteria"},
}

var Insurers = []Option{
	{"star_health", "Star Health Insurance"},
	{"icici_lombard", "ICICI Lombard"},
	{"hdfc_ergo", "HDFC ERGO"},
	{"bajaj_allianz", "Bajaj Allianz"},
	{"max_bupa", "Max Bupa"},
	{"apollo_munich", "Apollo Munich"},
	{"reliance_health", "Reliance Health Insurance"},
	{"care_health", "Care Health Insurance"},
	{"niva_bupa", "Niva Bupa"},
	{"tata_aig", "Tata AIG"},
	{"united_india", "United India Insurance"},
	{"national_insurance", "National Insurance"},
	{"new_india", "New India Assurance"},
	{"oriental_insurance", "Oriental Insurance"},
	{"cghs", "CGHS (Central Government Health Scheme)"},
	{"esic", "ESIC (Employees State Insurance)"},
}

var AmbulanceFacilities = []string{
	"Oxygen Support",
	"Basic Monitoring",
	"Paramedic",
	"Attendant",
	"Stretcher",
	"First Aid Kit",
	"Defibrillator",
	"Ventilator",
}

var ServiceCities = []string{
	"Mumbai", "Delhi", "Bangalore", "Hyderabad", "Chennai",
	"Kolkata", "Pune", "Ahmedabad", "Jaipur", "Surat",
	"Lucknow", "Kanpur", "Nagpur", "Indore", "Thane",
	"Bhopal", "Visakhapatnam", "Pimpri-Chinchwad", "Patna", "Vadodara",
}

var AmbulanceTypes = []Option{
	{"ALS", "Advanced Life Support"},
	{"BLS", "Basic Life Support"},
	{"Non-Emergency", "Non-Emergency Transport"},
}

// Selectable pairs each selectable option with whether it is selected
type Selectable struct {
	Option
	Selected bool `json:"selected"`
}

// Mark flags the options whose display name appears in selected
func Mark(options []Option, selected []string) []Selectable {
	out := make([]Selectable, 0, len(options))
	for _, opt := range options {
		out = append(out, Selectable{Option: opt, Selected: containsFold(selected, opt.Name)})
	}
	return out
}

// NamesByID resolves option ids to display names in catalog order.
// Unknown ids are dropped.
func NamesByID(options []Option, ids []string) []string {
	names := []string{}
	for _, opt := range options {
		if containsFold(ids, opt.ID) {
			names = append(names, opt.Name)
		}
	}
	return names
}

// Canonical keeps the values of list that appear in selected, in list
// order and with list spelling. Unknown values are dropped.
func Canonical(list []string, selected []string) []string {
	out := []string{}
	for _, v := range list {
		if containsFold(selected, v) {
			out = append(out, v)
		}
	}
	return out
}

// IsAmbulanceType reports whether t is a known vehicle category
func IsAmbulanceType(t string) bool {
	for _, opt := range AmbulanceTypes {
		if opt.ID == t {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), v) {
			return true
		}
	}
	return false
}
