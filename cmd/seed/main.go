// Command seed loads sample accounts, hospitals and ambulance providers.
// Running it again skips every account that already exists.
package main

import (
	"context"
	"errors"
	"fmt"

	"careconnect-backend/internal/config"
	"careconnect-backend/internal/database"
	"careconnect-backend/internal/models"
	"careconnect-backend/internal/observability"
	"careconnect-backend/internal/repository"
	"careconnect-backend/pkg/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

const samplePassword = "CareConnect@123"

type sampleHospital struct {
	owner    string
	hospital models.Hospital
}

type sampleProvider struct {
	owner      string
	provider   models.AmbulanceProvider
	ambulances []models.Ambulance
}

func floatPtr(f float64) *float64 { return &f }

var hospitals = []sampleHospital{
	{
		owner: "cityhospital",
		hospital: models.Hospital{
			Name: "City General Hospital", Address: "12 MG Road", City: "Mumbai", Type: models.HospitalPrivate,
			Email: "contact@citygeneral.in", Phone: "9876500001",
			BedsTotal: 120, BedsTotalCapacity: 200,
			BedsICU: 8, BedsICUCapacity: 20,
			BedsOxygen: 30, BedsOxygenCapacity: 50,
			BedsVentilator: 2, BedsVentilatorCapacity: 10,
			BedsIsolation: 0, BedsIsolationCapacity: 15,
			Facilities:         models.StringList{"ICU (Intensive Care Unit)", "Emergency Ward", "Pharmacy"},
			PricingInfo:        datatypes.JSONMap{"general_bed": 1500.0, "icu_bed": 8000.0, "oxygen_bed": 3000.0, "ventilator": 12000.0, "isolation_bed": 2500.0},
			InsuranceProviders: datatypes.JSONMap{"accepted": []string{"Star Health Insurance", "HDFC ERGO"}},
			Latitude:           floatPtr(19.0760),
			Longitude:          floatPtr(72.8777),
		},
	},
	{
		owner: "aiimsdelhi",
		hospital: models.Hospital{
			Name: "Government Medical College", Address: "Ansari Nagar", City: "Delhi", Type: models.HospitalGovernment,
			Email: "info@gmc.gov.in", Phone: "9876500002",
			BedsTotal: 400, BedsTotalCapacity: 600,
			BedsICU: 25, BedsICUCapacity: 60,
			BedsOxygen: 90, BedsOxygenCapacity: 120,
			BedsVentilator: 10, BedsVentilatorCapacity: 30,
			BedsIsolation: 12, BedsIsolationCapacity: 40,
			Facilities:         models.StringList{"ICU (Intensive Care Unit)", "Blood Bank", "CT Scan", "MRI"},
			PricingInfo:        datatypes.JSONMap{"general_bed": 200.0, "icu_bed": 1500.0},
			InsuranceProviders: datatypes.JSONMap{"accepted": []string{"CGHS (Central Government Health Scheme)", "ESIC (Employees State Insurance)"}},
		},
	},
}

var providers = []sampleProvider{
	{
		owner: "rapidcare",
		provider: models.AmbulanceProvider{
			Name: "RapidCare Ambulance", Address: "45 Link Road", City: "Mumbai",
			Email: "dispatch@rapidcare.in", Phone: "9876500101",
			ServiceArea: models.StringList{"Mumbai", "Thane", "Pune"},
			Pricing:     datatypes.JSONMap{"base_fare": 500.0, "per_km": 25.0, "oxygen_charge": 300.0, "attendant_charge": 200.0},
		},
		ambulances: []models.Ambulance{
			{VehicleNumber: "MH01AB1234", Type: models.AmbulanceALS, DriverName: "Ramesh Patil", DriverPhone: "9876500111",
				Facilities: models.StringList{"Oxygen Support", "Paramedic", "Defibrillator"}, IsAvailable: true},
			{VehicleNumber: "MH01AB5678", Type: models.AmbulanceBLS, DriverName: "Suresh Naik", DriverPhone: "9876500112",
				Facilities: models.StringList{"Oxygen Support", "Stretcher"}, IsAvailable: true},
		},
	},
	{
		owner: "lifeline",
		provider: models.AmbulanceProvider{
			Name: "Lifeline Emergency Services", Address: "7 Ring Road", City: "Delhi",
			Email: "help@lifeline.in", Phone: "9876500102",
			ServiceArea: models.StringList{"Delhi"},
			Pricing:     datatypes.JSONMap{"base_fare": 400.0, "per_km": 20.0},
		},
		ambulances: []models.Ambulance{
			{VehicleNumber: "DL03CD4321", Type: models.AmbulanceNonEmergency, DriverName: "Amit Kumar", DriverPhone: "9876500121",
				Facilities: models.StringList{"Stretcher", "Attendant"}, IsAvailable: true},
		},
	},
}

func main() {
	cfg := config.LoadConfig()
	observability.InitLogger(cfg.App.Name+"-seed", cfg.App.IsProduction())

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	s := &seeder{
		users:      repository.NewUserRepo(db),
		hospitals:  repository.NewHospitalRepo(db),
		providers:  repository.NewProviderRepo(db),
		ambulances: repository.NewAmbulanceRepo(db),
	}
	if err := s.run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().Str("password", samplePassword).Msg("sample data ready")
}

type seeder struct {
	users      *repository.UserRepository
	hospitals  *repository.HospitalRepository
	providers  *repository.ProviderRepository
	ambulances *repository.AmbulanceRepository
}

func (s *seeder) run(ctx context.Context) error {
	if _, _, err := s.ensureUser(ctx, "patient", "patient@careconnect.local", "9876500000", models.RoleUser); err != nil {
		return err
	}

	for i, sample := range hospitals {
		owner, created, err := s.ensureUser(ctx, sample.owner, sample.owner+"@careconnect.local", fmt.Sprintf("98765002%02d", i), models.RoleHospital)
		if err != nil {
			return err
		}
		if !created {
			continue
		}
		h := sample.hospital
		h.OwnerID = &owner.ID
		if err := s.hospitals.CreateHospital(ctx, &h); err != nil {
			return fmt.Errorf("create hospital %s: %w", h.Name, err)
		}
		log.Info().Str("hospital", h.Name).Msg("seeded hospital")
	}

	for i, sample := range providers {
		owner, created, err := s.ensureUser(ctx, sample.owner, sample.owner+"@careconnect.local", fmt.Sprintf("98765003%02d", i), models.RoleAmbulance)
		if err != nil {
			return err
		}
		if !created {
			continue
		}
		p := sample.provider
		p.OwnerID = &owner.ID
		if err := s.providers.CreateProvider(ctx, &p); err != nil {
			return fmt.Errorf("create provider %s: %w", p.Name, err)
		}
		for _, a := range sample.ambulances {
			taken, err := s.ambulances.NumberTaken(ctx, a.VehicleNumber)
			if err != nil {
				return err
			}
			if taken {
				continue
			}
			a.ProviderID = p.ID
			a.Status = models.VehicleAvailable
			if err := s.ambulances.CreateAmbulance(ctx, &a); err != nil {
				return fmt.Errorf("create ambulance %s: %w", a.VehicleNumber, err)
			}
		}
		log.Info().Str("provider", p.Name).Int("ambulances", len(sample.ambulances)).Msg("seeded provider")
	}
	return nil
}

// ensureUser returns the existing account or creates it; created is false
// when the username was already present
func (s *seeder) ensureUser(ctx context.Context, username, email, phone, role string) (*models.User, bool, error) {
	existing, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, err
	}

	hash, err := utils.HashPassword(samplePassword)
	if err != nil {
		return nil, false, err
	}
	user := &models.User{
		Username:     username,
		Email:        email,
		Phone:        phone,
		Country:      "India",
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user %s: %w", username, err)
	}
	return user, true, nil
}
