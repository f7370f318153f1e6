package handler

import (
	"net/http"

	"careconnect-backend/internal/service"
	"careconnect-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type HospitalHandler struct {
	hospitalService *service.HospitalAdminService
}

func NewHospitalHandler(hospitalService *service.HospitalAdminService) *HospitalHandler {
	return &HospitalHandler{
		hospitalService: hospitalService,
	}
}

type SelectionRequest struct {
	Facilities []string `json:"facilities"`
	Insurances []string `json:"insurances"`
}

// Dashboard shows the administered hospital with its current bed counts
func (h *HospitalHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.hospitalService.Dashboard(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err, "Failed to load dashboard")
		return
	}
	utils.SuccessResponse(c, dashboard)
}

// DashboardStats is polled by the dashboard
func (h *HospitalHandler) DashboardStats(c *gin.Context) {
	stats, err := h.hospitalService.LiveStats(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err, "Failed to load statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *HospitalHandler) GetBeds(c *gin.Context) {
	beds, err := h.hospitalService.Beds(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err, "Failed to load bed availability")
		return
	}
	utils.SuccessResponse(c, beds)
}

func (h *HospitalHandler) UpdateBeds(c *gin.Context) {
	var req service.BedCounts
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Please enter valid numbers for all bed fields")
		return
	}

	hospital, err := h.hospitalService.UpdateBeds(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err, "Failed to update beds")
		return
	}
	utils.DataMessageResponse(c, http.StatusOK, "Bed availability updated successfully!", hospital)
}

func (h *HospitalHandler) GetFacilities(c *gin.Context) {
	facilities, err := h.hospitalService.Facilities(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err, "Failed to load facilities")
		return
	}
	utils.SuccessResponse(c, gin.H{"facilities": facilities})
}

func (h *HospitalHandler) UpdateFacilities(c *gin.Context) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	hospital, err := h.hospitalService.UpdateFacilities(c.Request.Context(), actorFrom(c), req.Facilities)
	if err != nil {
		respondError(c, err, "Failed to update facilities")
		return
	}
	utils.DataMessageResponse(c, http.StatusOK, "Facilities updated successfully!", hospital)
}

func (h *HospitalHandler) GetPricing(c *gin.Context) {
	pricing, err := h.hospitalService.Pricing(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err, "Failed to load pricing")
		return
	}
	utils.SuccessResponse(c, pricing)
}

func (h *HospitalHandler) UpdatePricing(c *gin.Context) {
	var req service.HospitalPricing
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Please enter valid prices")
		return
	}

	hospital, err := h.hospitalService.UpdatePricing(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err, "Failed to update pricing")
		return
	}
	utils.DataMessageResponse(c, http.StatusOK, "Pricing updated successfully!", hospital)
}

func (h *HospitalHandler) GetInsurances(c *gin.Context) {
	insurances, err := h.hospitalService.Insurances(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err, "Failed to load insurance providers")
		return
	}
	utils.SuccessResponse(c, gin.H{"insurances": insurances})
}

func (h *HospitalHandler) UpdateInsurances(c *gin.Context) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	hospital, err := h.hospitalService.UpdateInsurances(c.Request.Context(), actorFrom(c), req.Insurances)
	if err != nil {
		respondError(c, err, "Failed to update insurance providers")
		return
	}
	utils.DataMessageResponse(c, http.StatusOK, "Insurance providers updated successfully!", hospital)
}
