package handler

import (
	"fmt"
	"net/http"

	"careconnect-backend/internal/service"
	"careconnect-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AmbulanceHandler serves the provider admin pages
type AmbulanceHandler struct {
	ambulanceService *service.AmbulanceAdminService
}

func NewAmbulanceHandler(ambulanceService *service.AmbulanceAdminService) *AmbulanceHandler {
	return &AmbulanceHandler{
		ambulanceService: ambulanceService,
	}
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

type ServiceAreaRequest struct {
	Cities []string `json:"service_cities"`
}

func (h *AmbulanceHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.ambulanceService.Dashboard(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err, "Failed to load dashboard")
		return
	}
	utils.SuccessResponse(c, dashboard)
}

// DashboardStats is polled by the dashboard
func (h *AmbulanceHandler) DashboardStats(c *gin.Context) {
	stats, err := h.ambulanceService.LiveStats(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err, "Failed to load statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AmbulanceHandler) ListAmbulances(c *gin.Context) {
	ambulances, err := h.ambulanceService.ListAmbulances(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err, "Failed to fetch ambulances")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"ambulances": ambulances,
		"count":      len(ambulances),
	})
}

func (h *AmbulanceHandler) AddAmbulance(c *gin.Context) {
	var req service.AmbulanceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ambulance, err := h.ambulanceService.AddAmbulance(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err, "Failed to add ambulance")
		return
	}
	utils.DataMessageResponse(c, http.StatusCreated,
		fmt.Sprintf("Ambulance %s added successfully!", ambulance.VehicleNumber), ambulance)
}

// EditAmbulance updates the vehicle named by the :number path parameter
func (h *AmbulanceHandler) EditAmbulance(c *gin.Context) {
	var req service.AmbulanceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Number = c.Param("number")

	ambulance, err := h.ambulanceService.EditAmbulance(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err, "Failed to update ambulance")
		return
	}
	utils.DataMessageResponse(c, http.StatusOK,
		fmt.Sprintf("Ambulance %s updated successfully!", ambulance.VehicleNumber), ambulance)
}

func (h *AmbulanceHandler) DeleteAmbulance(c *gin.Context) {
	if err := h.ambulanceService.DeleteAmbulance(c.Request.Context(), actorFrom(c), c.Param("number")); err != nil {
		respondError(c, err, "Failed to delete ambulance")
		return
	}
	utils.MessageResponse(c, "Ambulance deleted successfully!")
}

func (h *AmbulanceHandler) SetAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsAvailable == nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "is_available is required")
		return
	}

	ambulance, err := h.ambulanceService.ToggleAvailability(c.Request.Context(), actorFrom(c), c.Param("number"), *req.IsAvailable)
	if err != nil {
		respondError(c, err, "Failed to update availability")
		return
	}
	utils.DataMessageResponse(c, http.StatusOK, "Ambulance availability updated!", ambulance)
}

func (h *AmbulanceHandler) GetPricing(c *gin.Context) {
	pricing, err := h.ambulanceService.Pricing(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err, "Failed to load pricing")
		return
	}
	utils.SuccessResponse(c, pricing)
}

func (h *AmbulanceHandler) UpdatePricing(c *gin.Context) {
	var req service.ProviderPricing
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Please enter valid prices")
		return
	}

	provider, err := h.ambulanceService.UpdatePricing(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err, "Failed to update pricing")
		return
	}
	utils.DataMessageResponse(c, http.StatusOK, "Pricing updated successfully!", provider)
}

func (h *AmbulanceHandler) GetServiceArea(c *gin.Context) {
	cities, current, err := h.ambulanceService.ServiceArea(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err, "Failed to load service area")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"cities":        cities,
		"service_areas": current,
	})
}

func (h *AmbulanceHandler) UpdateServiceArea(c *gin.Context) {
	var req ServiceAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	provider, err := h.ambulanceService.UpdateServiceArea(c.Request.Context(), actorFrom(c), req.Cities)
	if err != nil {
		respondError(c, err, "Failed to update service area")
		return
	}
	utils.DataMessageResponse(c, http.StatusOK, "Service area updated successfully!", provider)
}
