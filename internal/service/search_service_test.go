package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"careconnect-backend/internal/apperr"
	"careconnect-backend/internal/availability"
	"careconnect-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newSearchFixture() (*world, *SearchService) {
	w := newWorld()
	svc := NewSearchService(fakeHospitals{w}, fakeProviders{w}, fakeBookings{w})
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return w, svc
}

func TestSearchByNameIgnoresLocationFilters(t *testing.T) {
	w, svc := newSearchFixture()
	w.addHospital(models.Hospital{Name: "Apollo Chennai", City: "Chennai", Type: models.HospitalPrivate})
	w.addHospital(models.Hospital{Name: "Apollo Hyderabad", City: "Hyderabad", Type: models.HospitalPrivate, BedsICU: 2, BedsICUCapacity: 10})
	w.addHospital(models.Hospital{Name: "KEM", City: "Mumbai", Type: models.HospitalGovernment})

	results, err := svc.SearchHospitals(context.Background(), HospitalQuery{
		Mode:       "name",
		Name:       "apollo",
		Type:       models.HospitalGovernment,
		Facilities: []string{"icu"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Apollo Chennai", results[0].Name)
	assert.Equal(t, "Apollo Hyderabad", results[1].Name)

	assert.Equal(t, availability.Triple{Available: 2, Total: 10, Status: availability.StatusLimited}, results[1].Beds.ICU)
	assert.Equal(t, availability.StatusNone, results[0].Beds.ICU.Status)
}

func TestSearchByLocationAppliesFilters(t *testing.T) {
	w, svc := newSearchFixture()
	w.addHospital(models.Hospital{Name: "KEM", City: "Mumbai", Type: models.HospitalGovernment, BedsICU: 4, BedsICUCapacity: 5})
	w.addHospital(models.Hospital{Name: "JJ", City: "Mumbai", Type: models.HospitalGovernment})
	w.addHospital(models.Hospital{Name: "Lilavati", City: "Mumbai", Type: models.HospitalPrivate, BedsICU: 1})

	results, err := svc.SearchHospitals(context.Background(), HospitalQuery{
		Location:   "mumbai",
		Type:       models.HospitalGovernment,
		Facilities: []string{"ICU"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "KEM", results[0].Name)
	assert.Equal(t, availability.PlaceholderDistance(results[0].ID), results[0].Distance)
}

func TestSearchByLocationSortsByDistance(t *testing.T) {
	w, svc := newSearchFixture()
	for _, name := range []string{"A", "B", "C", "D"} {
		w.addHospital(models.Hospital{Name: name, City: "Pune"})
	}

	results, err := svc.SearchHospitals(context.Background(), HospitalQuery{Location: "Pune"})
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Distance, results[i].Distance)
	}
}

func TestCompareHospitals(t *testing.T) {
	w, svc := newSearchFixture()
	ctx := context.Background()
	a := w.addHospital(models.Hospital{
		Name: "KEM", City: "Mumbai", BedsICU: 5, BedsICUCapacity: 10,
		PricingInfo:        datatypes.JSONMap{"icu_bed": 2500.0},
		InsuranceProviders: datatypes.JSONMap{"accepted": []interface{}{"Star Health"}},
	})
	b := w.addHospital(models.Hospital{Name: "JJ", City: "Mumbai"})

	_, err := svc.CompareHospitals(ctx, " , ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	single, err := svc.CompareHospitals(ctx, "12")
	require.NoError(t, err)
	assert.Equal(t, "/user/ambulances?hospital_id=12", single.RedirectTo)

	_, err = svc.CompareHospitals(ctx, "x,9998,9999")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	res, err := svc.CompareHospitals(ctx, idList(a.ID, b.ID, 9999))
	require.NoError(t, err)
	require.Len(t, res.Hospitals, 2)
	kem := res.Hospitals[0]
	assert.Equal(t, 50.0, kem.Percentages["icu"])
	assert.True(t, kem.HasFacility["icu"])
	assert.False(t, kem.HasFacility["oxygen"])
	assert.Equal(t, 2500.0, kem.Pricing["icu_bed"])
	assert.Equal(t, []string{"Star Health"}, kem.Insurers)
}

func TestCompareCapsAtFour(t *testing.T) {
	w, svc := newSearchFixture()
	var ids []uint
	for i := 0; i < 6; i++ {
		ids = append(ids, w.addHospital(models.Hospital{Name: "H", City: "Pune"}).ID)
	}

	res, err := svc.CompareHospitals(context.Background(), idList(ids...))
	require.NoError(t, err)
	assert.Len(t, res.Hospitals, 4)
}

func TestLiveAvailability(t *testing.T) {
	w, svc := newSearchFixture()
	a := w.addHospital(models.Hospital{Name: "KEM", BedsOxygen: 1, BedsOxygenCapacity: 10})
	w.addHospital(models.Hospital{Name: "JJ"})

	all, err := svc.LiveAvailability(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := svc.LiveAvailability(context.Background(), idList(a.ID)+",abc")
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, availability.StatusVeryLimited, some[0].Beds.Oxygen.Status)
}

func TestSearchProvidersHidesFullyCommittedFleets(t *testing.T) {
	w, svc := newSearchFixture()
	busy := w.addProvider(models.AmbulanceProvider{Name: "Busy", ServiceArea: models.StringList{"Mumbai"}})
	free := w.addProvider(models.AmbulanceProvider{Name: "Free", ServiceArea: models.StringList{"Mumbai", "Thane"}})
	w.addProvider(models.AmbulanceProvider{Name: "Elsewhere", ServiceArea: models.StringList{"Delhi"}})

	held := w.addAmbulance(models.Ambulance{ProviderID: busy.ID, VehicleNumber: "B1", Type: models.AmbulanceALS, IsAvailable: true})
	w.addBooking(models.Booking{ProviderID: busy.ID, AmbulanceID: uintPtr(held.ID), Status: models.BookingConfirmed})
	w.addAmbulance(models.Ambulance{ProviderID: free.ID, VehicleNumber: "F1", Type: models.AmbulanceBLS, IsAvailable: true})

	hospital := w.addHospital(models.Hospital{Name: "KEM", City: "mumbai"})

	dir, err := svc.SearchProviders(context.Background(), ProviderQuery{HospitalID: idList(hospital.ID)})
	require.NoError(t, err)
	assert.Equal(t, "mumbai", dir.SearchCity)
	require.Len(t, dir.Providers, 1)
	assert.Equal(t, "Free", dir.Providers[0].Name)
	assert.Equal(t, []string{"Delhi", "Mumbai", "Thane"}, dir.Cities)
	assert.Equal(t, []uint{held.ID}, dir.ActiveAmbulanceIDs)

	dir, err = svc.SearchProviders(context.Background(), ProviderQuery{City: "Mumbai", Type: models.AmbulanceALS})
	require.NoError(t, err)
	assert.Empty(t, dir.Providers)
}

func idList(ids ...uint) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += strconv.FormatUint(uint64(id), 10)
	}
	return out
}
