package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"careconnect-backend/internal/middleware"
	"careconnect-backend/internal/models"
	"careconnect-backend/internal/repository"
	"careconnect-backend/internal/service"
	"careconnect-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memProviders struct {
	byOwner map[uint]*models.AmbulanceProvider
}

func (m *memProviders) ListWithAmbulances(context.Context) ([]models.AmbulanceProvider, error) {
	return nil, nil
}

func (m *memProviders) GetProviderByID(context.Context, uint) (*models.AmbulanceProvider, error) {
	return nil, repository.ErrProviderNotFound
}

func (m *memProviders) GetProviderByOwner(_ context.Context, ownerID uint) (*models.AmbulanceProvider, error) {
	p, ok := m.byOwner[ownerID]
	if !ok {
		return nil, repository.ErrProviderNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProviders) UpdateProvider(context.Context, *models.AmbulanceProvider) error { return nil }

func newProviderRouter(t *testing.T) *gin.Engine {
	t.Helper()
	utils.InitJWT("access-test", "refresh-test", time.Minute, time.Hour)

	owner := uint(5)
	providers := &memProviders{byOwner: map[uint]*models.AmbulanceProvider{
		owner: {ID: 2, Name: "RapidCare Ambulance", OwnerID: &owner},
	}}
	bookings := service.NewBookingService(nil, nil, providers, nil, service.NewActivityService(&memActivity{}))
	h := NewBookingHandler(bookings)

	r := gin.New()
	g := r.Group("/ambulance", middleware.AuthMiddleware(), middleware.RequireRole(models.RoleAmbulance))
	g.POST("/bookings/:id/accept", h.Accept)
	return r
}

func TestAcceptWithoutBodyAsksForAmbulance(t *testing.T) {
	r := newProviderRouter(t)

	w := call(t, r, http.MethodPost, "/ambulance/bookings/3/accept", 5, models.RoleAmbulance, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please select an ambulance to assign", decode(t, w)["error"])
}

func TestAcceptRejectsMalformedBody(t *testing.T) {
	r := newProviderRouter(t)

	w := call(t, r, http.MethodPost, "/ambulance/bookings/3/accept", 5, models.RoleAmbulance, "not-an-object")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", decode(t, w)["error"])
}
