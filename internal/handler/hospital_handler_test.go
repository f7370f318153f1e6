package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
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

type memHospitals struct {
	mu      sync.Mutex
	byOwner map[uint]*models.Hospital
}

func (m *memHospitals) Search(context.Context, repository.HospitalFilter) ([]models.Hospital, error) {
	return nil, nil
}

func (m *memHospitals) GetAllHospitals(context.Context) ([]models.Hospital, error) { return nil, nil }

func (m *memHospitals) GetHospitalByID(context.Context, uint) (*models.Hospital, error) {
	return nil, repository.ErrHospitalNotFound
}

func (m *memHospitals) GetHospitalsByIDs(context.Context, []uint) ([]models.Hospital, error) {
	return nil, nil
}

func (m *memHospitals) GetHospitalByOwner(_ context.Context, ownerID uint) (*models.Hospital, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.byOwner[ownerID]
	if !ok {
		return nil, repository.ErrHospitalNotFound
	}
	cp := *h
	return &cp, nil
}

func (m *memHospitals) Cities(context.Context) ([]string, error) { return nil, nil }

func (m *memHospitals) UpdateHospital(_ context.Context, h *models.Hospital) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *h
	m.byOwner[*h.OwnerID] = &cp
	return nil
}

type memActivity struct {
	mu      sync.Mutex
	entries []models.ActivityLog
}

func (m *memActivity) CreateActivityLog(_ context.Context, entry *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memActivity) RecentByUser(_ context.Context, userID uint, _ int) ([]models.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ActivityLog{}
	for i := len(m.entries) - 1; i >= 0; i-- {
		if e := m.entries[i]; e.UserID != nil && *e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func newHospitalRouter(t *testing.T) (*gin.Engine, *memHospitals) {
	t.Helper()
	utils.InitJWT("access-test", "refresh-test", time.Minute, time.Hour)

	owner := uint(7)
	hospitals := &memHospitals{byOwner: map[uint]*models.Hospital{
		owner: {ID: 1, Name: "City General Hospital", OwnerID: &owner, BedsICU: 2, BedsICUCapacity: 10},
	}}
	activity := service.NewActivityService(&memActivity{})
	h := NewHospitalHandler(service.NewHospitalAdminService(hospitals, activity))
	logs := NewActivityHandler(activity)

	r := gin.New()
	g := r.Group("/hospital", middleware.AuthMiddleware(), middleware.RequireRole(models.RoleHospital))
	g.GET("/beds", h.GetBeds)
	g.PUT("/beds", h.UpdateBeds)
	g.GET("/api/dashboard-stats", h.DashboardStats)
	g.GET("/activity-logs", logs.Logs)
	return r, hospitals
}

func call(t *testing.T, r http.Handler, method, path string, userID uint, role string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = jsonBody(t, body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	token, err := utils.GenerateAccessToken(userID, role)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateBedsRoundTrip(t *testing.T) {
	r, hospitals := newHospitalRouter(t)

	w := call(t, r, http.MethodPut, "/hospital/beds", 7, models.RoleHospital, service.BedCounts{
		Total: 50, TotalCapacity: 100, ICU: 4, ICUCapacity: 10,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bed availability updated successfully!", decode(t, w)["message"])
	assert.Equal(t, 4, hospitals.byOwner[7].BedsICU)

	w = call(t, r, http.MethodGet, "/hospital/api/dashboard-stats", 7, models.RoleHospital, nil)
	require.Equal(t, http.StatusOK, w.Code)
	icu := decode(t, w)["icu"].(map[string]interface{})
	assert.Equal(t, float64(4), icu["available"])
	assert.Equal(t, float64(10), icu["total"])

	w = call(t, r, http.MethodGet, "/hospital/activity-logs", 7, models.RoleHospital, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])
}

func TestUpdateBedsRejectsOverCapacity(t *testing.T) {
	r, hospitals := newHospitalRouter(t)

	w := call(t, r, http.MethodPut, "/hospital/beds", 7, models.RoleHospital, service.BedCounts{ICU: 12, ICUCapacity: 10})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ICU beds available cannot be greater than total capacity", decode(t, w)["error"])
	assert.Equal(t, 2, hospitals.byOwner[7].BedsICU)
}

func TestHospitalRoutesRefuseOtherRoles(t *testing.T) {
	r, _ := newHospitalRouter(t)

	w := call(t, r, http.MethodGet, "/hospital/beds", 7, models.RoleAmbulance, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, middleware.DeniedMessage, decode(t, w)["error"])
}

func TestHospitalAdminWithoutRecord(t *testing.T) {
	r, _ := newHospitalRouter(t)

	w := call(t, r, http.MethodGet, "/hospital/beds", 99, models.RoleHospital, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Hospital information not found. Please contact administrator.", decode(t, w)["error"])
}
