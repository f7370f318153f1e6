package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"careconnect-backend/internal/apperr"
	"careconnect-backend/internal/models"
	"careconnect-backend/internal/repository"

	"gorm.io/datatypes"
)

const (
	msgSelectAmbulance    = "Please select an ambulance to assign"
	msgAmbulanceNotFound  = "Selected ambulance not found"
	msgAmbulanceBusy      = "Selected ambulance is not available. Please select another ambulance."
	msgAmbulanceCommitted = "Selected ambulance already has an active booking. Please select another ambulance."
	msgBookingNotFound    = "Booking not found"
	msgProviderNotFound   = "Provider information not found"
	msgRequiredFields     = "Please fill all required fields"
	msgInvalidTargets     = "Invalid hospital or provider selected"
)

const defaultEmergencyType = "non-emergency"

// Outcome classifies the result of a booking command
type Outcome string

const (
	OutcomeOk               Outcome = "ok"
	OutcomeConflict         Outcome = "conflict"
	OutcomeNotFound         Outcome = "not_found"
	OutcomeValidationFailed Outcome = "validation_failed"
	OutcomeInvalidState     Outcome = "invalid_state"
	OutcomeError            Outcome = "error"
)

// OutcomeOf maps a command error to its Outcome
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeOk
	}
	switch apperr.KindOf(err) {
	case apperr.KindConflict:
		return OutcomeConflict
	case apperr.KindNotFound:
		return OutcomeNotFound
	case apperr.KindValidation:
		return OutcomeValidationFailed
	case apperr.KindInvalidState:
		return OutcomeInvalidState
	default:
		return OutcomeError
	}
}

// AcceptBooking assigns one of the provider's vehicles to a pending booking
type AcceptBooking struct {
	ProviderID  uint
	BookingID   uint
	AmbulanceID uint
}

// CreateBookingInput is the general user's booking request
type CreateBookingInput struct {
	HospitalID     uint
	ProviderID     uint
	PickupLocation string
	DropLocation   string
	PickupDate     string
	PickupTime     string
	PatientName    string
	PatientPhone   string
	ContactPerson  string
	ContactPhone   string
	EmergencyType  string
	Notes          string
}

// ProviderBookings is the provider's booking board
type ProviderBookings struct {
	Provider             *models.AmbulanceProvider `json:"provider"`
	Bookings             []models.Booking          `json:"bookings"`
	StatusFilter         string                    `json:"status_filter"`
	AssignableAmbulances []models.Ambulance        `json:"available_ambulances"`
}

type BookingService struct {
	bookingRepo   BookingStore
	hospitalRepo  HospitalStore
	providerRepo  ProviderStore
	ambulanceRepo AmbulanceStore
	activity      *ActivityService
}

func NewBookingService(
	bookingRepo BookingStore,
	hospitalRepo HospitalStore,
	providerRepo ProviderStore,
	ambulanceRepo AmbulanceStore,
	activity *ActivityService,
) *BookingService {
	return &BookingService{
		bookingRepo:   bookingRepo,
		hospitalRepo:  hospitalRepo,
		providerRepo:  providerRepo,
		ambulanceRepo: ambulanceRepo,
		activity:      activity,
	}
}

// Create records a pending request. No vehicle is attached until a
// provider accepts it.
func (s *BookingService) Create(ctx context.Context, actor Actor, in CreateBookingInput) (*models.Booking, error) {
	in = trimBookingInput(in)
	if in.HospitalID == 0 || in.ProviderID == 0 || in.PickupLocation == "" || in.PickupDate == "" ||
		in.PickupTime == "" || in.PatientName == "" || in.PatientPhone == "" {
		return nil, apperr.Validation(msgRequiredFields)
	}

	pickupDate, err := time.Parse("2006-01-02", in.PickupDate)
	if err != nil {
		return nil, apperr.Validation("Please enter a valid pickup date (YYYY-MM-DD)")
	}
	pickupTime, err := time.Parse("15:04", in.PickupTime)
	if err != nil {
		return nil, apperr.Validation("Please enter a valid pickup time (HH:MM)")
	}

	hospital, err := s.hospitalRepo.GetHospitalByID(ctx, in.HospitalID)
	if err != nil {
		if errors.Is(err, repository.ErrHospitalNotFound) {
			return nil, apperr.Validation(msgInvalidTargets)
		}
		return nil, err
	}
	provider, err := s.providerRepo.GetProviderByID(ctx, in.ProviderID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return nil, apperr.Validation(msgInvalidTargets)
		}
		return nil, err
	}

	booking := &models.Booking{
		UserID:         actor.UserID,
		ProviderID:     provider.ID,
		HospitalID:     hospital.ID,
		PatientName:    in.PatientName,
		PatientPhone:   in.PatientPhone,
		ContactPerson:  firstNonEmpty(in.ContactPerson, in.PatientName),
		ContactPhone:   firstNonEmpty(in.ContactPhone, in.PatientPhone),
		PickupLocation: in.PickupLocation,
		DropLocation:   firstNonEmpty(in.DropLocation, fmt.Sprintf("%s, %s, %s", hospital.Name, hospital.Address, hospital.City)),
		PickupDate:     datatypes.Date(pickupDate),
		PickupTime:     datatypes.NewTime(pickupTime.Hour(), pickupTime.Minute(), 0, 0),
		EmergencyType:  firstNonEmpty(in.EmergencyType, defaultEmergencyType),
		Notes:          in.Notes,
		Status:         models.BookingPending,
	}
	if err := s.bookingRepo.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	booking.Provider = provider
	booking.Hospital = hospital

	s.activity.Record(ctx, actor, "book_ambulance", fmt.Sprintf(
		"Booked ambulance from %s to %s. Pickup: %s on %s at %s. Patient: %s",
		provider.Name, hospital.Name, in.PickupLocation, in.PickupDate, in.PickupTime, in.PatientName,
	))
	return booking, nil
}

// Accept resolves the actor's provider and runs the accept command
func (s *BookingService) Accept(ctx context.Context, actor Actor, bookingID, ambulanceID uint) (*models.Booking, error) {
	provider, err := s.providerFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.AcceptBooking(ctx, actor, AcceptBooking{
		ProviderID:  provider.ID,
		BookingID:   bookingID,
		AmbulanceID: ambulanceID,
	})
}

// AcceptBooking confirms a pending booking and commits the vehicle in one
// transaction: either both rows change or neither does
func (s *BookingService) AcceptBooking(ctx context.Context, actor Actor, cmd AcceptBooking) (*models.Booking, error) {
	if cmd.AmbulanceID == 0 {
		return nil, apperr.Validation(msgSelectAmbulance)
	}

	var accepted *models.Booking
	var vehicle string
	err := s.bookingRepo.WithinTx(ctx, func(tx repository.BookingUnit) error {
		booking, err := lockBooking(tx, cmd.BookingID, cmd.ProviderID)
		if err != nil {
			return err
		}
		if !ValidTransition(ActionAccept, booking.Status) {
			return apperr.InvalidState(fmt.Sprintf("Booking #%d is %s and can no longer be accepted", booking.ID, booking.Status))
		}

		ambulance, err := tx.LockAmbulance(cmd.AmbulanceID, cmd.ProviderID)
		if err != nil {
			if errors.Is(err, repository.ErrAmbulanceNotFound) {
				return apperr.NotFound(msgAmbulanceNotFound)
			}
			return err
		}
		if !ambulance.IsAvailable {
			return apperr.Conflict(msgAmbulanceBusy)
		}
		committed, err := tx.HasOtherActiveBooking(ambulance.ID, booking.ID)
		if err != nil {
			return err
		}
		if committed {
			return apperr.Conflict(msgAmbulanceCommitted)
		}

		booking.AmbulanceID = &ambulance.ID
		booking.Status = TargetStatus(ActionAccept)
		if err := tx.SaveBooking(booking); err != nil {
			return err
		}
		ambulance.IsAvailable = false
		if err := tx.SaveAmbulance(ambulance); err != nil {
			return err
		}

		booking.Ambulance = ambulance
		accepted = booking
		vehicle = ambulance.VehicleNumber
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actor, "accept_booking",
		fmt.Sprintf("Accepted booking #%d and assigned ambulance %s", accepted.ID, vehicle))
	return accepted, nil
}

// Reject cancels a pending booking
func (s *BookingService) Reject(ctx context.Context, actor Actor, bookingID uint) (*models.Booking, error) {
	booking, err := s.transition(ctx, actor, bookingID, ActionReject, nil)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor, "reject_booking", fmt.Sprintf("Rejected booking #%d", booking.ID))
	return booking, nil
}

// Start marks a confirmed booking as under way
func (s *BookingService) Start(ctx context.Context, actor Actor, bookingID uint) (*models.Booking, error) {
	booking, err := s.transition(ctx, actor, bookingID, ActionStart, nil)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor, "start_booking", fmt.Sprintf("Started trip for booking #%d", booking.ID))
	return booking, nil
}

// Complete closes a non-terminal booking and frees its vehicle
func (s *BookingService) Complete(ctx context.Context, actor Actor, bookingID uint) (*models.Booking, error) {
	release := func(tx repository.BookingUnit, booking *models.Booking) error {
		if booking.AmbulanceID == nil {
			return nil
		}
		ambulance, err := tx.LockAmbulance(*booking.AmbulanceID, booking.ProviderID)
		if errors.Is(err, repository.ErrAmbulanceNotFound) {
			// the vehicle was deleted after assignment
			return nil
		}
		if err != nil {
			return err
		}
		ambulance.IsAvailable = true
		return tx.SaveAmbulance(ambulance)
	}

	booking, err := s.transition(ctx, actor, bookingID, ActionComplete, release)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor, "complete_booking", fmt.Sprintf("Marked booking #%d as completed", booking.ID))
	return booking, nil
}

func (s *BookingService) transition(
	ctx context.Context,
	actor Actor,
	bookingID uint,
	action string,
	after func(repository.BookingUnit, *models.Booking) error,
) (*models.Booking, error) {
	provider, err := s.providerFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	var result *models.Booking
	err = s.bookingRepo.WithinTx(ctx, func(tx repository.BookingUnit) error {
		booking, err := lockBooking(tx, bookingID, provider.ID)
		if err != nil {
			return err
		}
		if !ValidTransition(action, booking.Status) {
			return apperr.InvalidState(fmt.Sprintf("Booking #%d is %s and cannot be %s", booking.ID, booking.Status, pastTense(action)))
		}

		booking.Status = TargetStatus(action)
		if err := tx.SaveBooking(booking); err != nil {
			return err
		}
		if after != nil {
			if err := after(tx, booking); err != nil {
				return err
			}
		}
		result = booking
		return nil
	})
	return result, err
}

// ProviderBoard lists the provider's bookings and the vehicles that can
// still be assigned
func (s *BookingService) ProviderBoard(ctx context.Context, actor Actor, status string) (*ProviderBookings, error) {
	provider, err := s.providerFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	status = strings.TrimSpace(status)
	filter := status
	if filter == "all" {
		filter = ""
	}
	if status == "" {
		status = "all"
	}

	bookings, err := s.bookingRepo.ListByProvider(ctx, provider.ID, filter)
	if err != nil {
		return nil, err
	}
	assignable, err := s.AssignableAmbulances(ctx, provider.ID)
	if err != nil {
		return nil, err
	}

	return &ProviderBookings{
		Provider:             provider,
		Bookings:             bookings,
		StatusFilter:         status,
		AssignableAmbulances: assignable,
	}, nil
}

// AssignableAmbulances are available vehicles not held by an active booking
func (s *BookingService) AssignableAmbulances(ctx context.Context, providerID uint) ([]models.Ambulance, error) {
	fleet, err := s.ambulanceRepo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	activeIDs, err := s.bookingRepo.ActiveAmbulanceIDs(ctx)
	if err != nil {
		return nil, err
	}
	committed := make(map[uint]bool, len(activeIDs))
	for _, id := range activeIDs {
		committed[id] = true
	}

	out := []models.Ambulance{}
	for _, a := range fleet {
		if a.IsAvailable && !committed[a.ID] {
			out = append(out, a)
		}
	}
	return out, nil
}

// UserBookings lists the requests made by a general user
func (s *BookingService) UserBookings(ctx context.Context, actor Actor) ([]models.Booking, error) {
	return s.bookingRepo.ListByUser(ctx, actor.UserID)
}

func (s *BookingService) providerFor(ctx context.Context, actor Actor) (*models.AmbulanceProvider, error) {
	provider, err := s.providerRepo.GetProviderByOwner(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return nil, apperr.NotFound(msgProviderNotFound)
		}
		return nil, err
	}
	return provider, nil
}

func lockBooking(tx repository.BookingUnit, bookingID, providerID uint) (*models.Booking, error) {
	booking, err := tx.LockBooking(bookingID, providerID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperr.NotFound(msgBookingNotFound)
		}
		return nil, err
	}
	return booking, nil
}

func pastTense(action string) string {
	switch action {
	case ActionReject:
		return "rejected"
	case ActionStart:
		return "started"
	case ActionComplete:
		return "completed"
	default:
		return action + "ed"
	}
}

func trimBookingInput(in CreateBookingInput) CreateBookingInput {
	in.PickupLocation = strings.TrimSpace(in.PickupLocation)
	in.DropLocation = strings.TrimSpace(in.DropLocation)
	in.PickupDate = strings.TrimSpace(in.PickupDate)
	in.PickupTime = strings.TrimSpace(in.PickupTime)
	in.PatientName = strings.TrimSpace(in.PatientName)
	in.PatientPhone = strings.TrimSpace(in.PatientPhone)
	in.ContactPerson = strings.TrimSpace(in.ContactPerson)
	in.ContactPhone = strings.TrimSpace(in.ContactPhone)
	in.EmergencyType = strings.TrimSpace(in.EmergencyType)
	in.Notes = strings.TrimSpace(in.Notes)
	return in
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
