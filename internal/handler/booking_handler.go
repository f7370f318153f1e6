package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"careconnect-backend/internal/models"
	"careconnect-backend/internal/service"
	"careconnect-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService *service.BookingService
}

func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

type BookAmbulanceRequest struct {
	HospitalID     uint   `json:"hospital_id"`
	ProviderID     uint   `json:"provider_id"`
	PickupLocation string `json:"pickup_location"`
	DropLocation   string `json:"drop_location"`
	PickupDate     string `json:"pickup_date"`
	PickupTime     string `json:"pickup_time"`
	PatientName    string `json:"patient_name"`
	PatientPhone   string `json:"patient_phone"`
	ContactPerson  string `json:"contact_person"`
	ContactPhone   string `json:"contact_phone"`
	EmergencyType  string `json:"emergency_type"`
	Notes          string `json:"notes"`
}

type AcceptBookingRequest struct {
	AmbulanceID uint `json:"ambulance_id"`
}

// BookAmbulance records a pending request for the chosen provider
func (h *BookingHandler) BookAmbulance(c *gin.Context) {
	var req BookAmbulanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), actorFrom(c), service.CreateBookingInput{
		HospitalID:     req.HospitalID,
		ProviderID:     req.ProviderID,
		PickupLocation: req.PickupLocation,
		DropLocation:   req.DropLocation,
		PickupDate:     req.PickupDate,
		PickupTime:     req.PickupTime,
		PatientName:    req.PatientName,
		PatientPhone:   req.PatientPhone,
		ContactPerson:  req.ContactPerson,
		ContactPhone:   req.ContactPhone,
		EmergencyType:  req.EmergencyType,
		Notes:          req.Notes,
	})
	if err != nil {
		respondError(c, err, "Failed to create booking. Please try again.")
		return
	}

	providerName := ""
	if booking.Provider != nil {
		providerName = booking.Provider.Name
	}
	message := fmt.Sprintf(
		"Ambulance booking request submitted successfully! Booking ID: #%d. Provider: %s will contact you at %s.",
		booking.ID, providerName, booking.ContactPhone,
	)
	utils.DataMessageResponse(c, http.StatusCreated, message, gin.H{
		"booking":  booking,
		"redirect": "/user/bookings",
	})
}

// MyBookings lists the caller's own requests
func (h *BookingHandler) MyBookings(c *gin.Context) {
	bookings, err := h.bookingService.UserBookings(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err, "Failed to fetch bookings")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// ListBookings is the provider's booking board, filtered by ?status
func (h *BookingHandler) ListBookings(c *gin.Context) {
	board, err := h.bookingService.ProviderBoard(c.Request.Context(), actorFrom(c), c.DefaultQuery("status", "all"))
	if err != nil {
		respondError(c, err, "Failed to fetch bookings")
		return
	}
	utils.SuccessResponse(c, board)
}

func (h *BookingHandler) Accept(c *gin.Context) {
	id, ok := pathID(c, "booking")
	if !ok {
		return
	}
	// an empty body leaves AmbulanceID unset for the service to reject
	var req AcceptBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	booking, err := h.bookingService.Accept(c.Request.Context(), actorFrom(c), id, req.AmbulanceID)
	if err != nil {
		respondError(c, err, "Failed to accept booking")
		return
	}

	vehicle := ""
	if booking.Ambulance != nil {
		vehicle = booking.Ambulance.VehicleNumber
	}
	h.respondBooking(c, booking, fmt.Sprintf("Booking #%d accepted and ambulance %s assigned!", booking.ID, vehicle))
}

func (h *BookingHandler) Reject(c *gin.Context) {
	id, ok := pathID(c, "booking")
	if !ok {
		return
	}
	booking, err := h.bookingService.Reject(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err, "Failed to reject booking")
		return
	}
	h.respondBooking(c, booking, fmt.Sprintf("Booking #%d rejected", booking.ID))
}

func (h *BookingHandler) Start(c *gin.Context) {
	id, ok := pathID(c, "booking")
	if !ok {
		return
	}
	booking, err := h.bookingService.Start(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err, "Failed to start trip")
		return
	}
	h.respondBooking(c, booking, fmt.Sprintf("Booking #%d is now in progress", booking.ID))
}

func (h *BookingHandler) Complete(c *gin.Context) {
	id, ok := pathID(c, "booking")
	if !ok {
		return
	}
	booking, err := h.bookingService.Complete(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err, "Failed to complete booking")
		return
	}
	h.respondBooking(c, booking, fmt.Sprintf("Booking #%d marked as completed!", booking.ID))
}

func (h *BookingHandler) respondBooking(c *gin.Context, booking *models.Booking, message string) {
	utils.DataMessageResponse(c, http.StatusOK, message, gin.H{
		"booking": booking,
		"outcome": service.OutcomeOk,
	})
}
