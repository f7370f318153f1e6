package handler

import (
	"net/http"

	"careconnect-backend/internal/catalog"
	"careconnect-backend/internal/service"
	"careconnect-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the patient-facing search and comparison pages
type UserHandler struct {
	searchService *service.SearchService
}

func NewUserHandler(searchService *service.SearchService) *UserHandler {
	return &UserHandler{
		searchService: searchService,
	}
}

// Landing is the public entry point
func (h *UserHandler) Landing(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"service": "CareConnect",
		"login":   "/auth/login",
		"signup":  "/auth/signup",
	})
}

// Home lists the cities offered on the search form
func (h *UserHandler) Home(c *gin.Context) {
	cities, err := h.searchService.HomeCities(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load cities")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"cities":          cities,
		"ambulance_types": catalog.AmbulanceTypes,
	})
}

// Search serves both the search and results pages
func (h *UserHandler) Search(c *gin.Context) {
	q := service.HospitalQuery{
		Mode:       c.DefaultQuery("search_type", "location"),
		Name:       c.Query("hospital_name"),
		Location:   c.Query("location"),
		Type:       c.Query("hospital_type"),
		Facilities: c.QueryArray("facility"),
	}

	results, err := h.searchService.SearchHospitals(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "Failed to search hospitals")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"hospitals":     results,
		"total_results": len(results),
		"search_type":   q.Mode,
		"hospital_name": q.Name,
		"location":      q.Location,
		"hospital_type": q.Type,
		"facilities":    q.Facilities,
	})
}

// Compare shows up to four hospitals side by side
func (h *UserHandler) Compare(c *gin.Context) {
	result, err := h.searchService.CompareHospitals(c.Request.Context(), c.Query("ids"))
	if err != nil {
		respondError(c, err, "Failed to compare hospitals")
		return
	}
	if result.RedirectTo != "" {
		utils.SuccessResponse(c, gin.H{"redirect": result.RedirectTo})
		return
	}
	utils.SuccessResponse(c, gin.H{
		"hospitals": result.Hospitals,
		"count":     len(result.Hospitals),
	})
}

// Ambulances is the provider directory
func (h *UserHandler) Ambulances(c *gin.Context) {
	dir, err := h.searchService.SearchProviders(c.Request.Context(), service.ProviderQuery{
		City:       c.Query("city"),
		Type:       c.Query("type"),
		HospitalID: c.Query("hospital_id"),
	})
	if err != nil {
		respondError(c, err, "Failed to load ambulance providers")
		return
	}
	utils.SuccessResponse(c, dir)
}

// LiveAvailability is polled by open result pages
func (h *UserHandler) LiveAvailability(c *gin.Context) {
	payload, err := h.searchService.LiveAvailability(c.Request.Context(), c.Query("ids"))
	if err != nil {
		respondError(c, err, "Failed to fetch availability")
		return
	}
	c.JSON(http.StatusOK, gin.H{"hospitals": payload})
}
