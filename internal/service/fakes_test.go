package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"careconnect-backend/internal/models"
	"careconnect-backend/internal/notify"
	"careconnect-backend/internal/repository"
)

// world is an in-memory database shared by the fake stores. A booking
// transaction holds mu for its whole duration and restores a snapshot of
// bookings and ambulances when fn fails.
type world struct {
	mu         sync.Mutex
	nextID     uint
	users      map[uint]*models.User
	tokens     []*models.RefreshToken
	hospitals  map[uint]*models.Hospital
	providers  map[uint]*models.AmbulanceProvider
	ambulances map[uint]*models.Ambulance
	bookings   map[uint]*models.Booking
	logs       []models.ActivityLog
	otps       []*models.OTP

	failSaveAmbulance bool
	// raceVehicleNumber simulates another request inserting the same number
	// between the existence check and the insert
	raceVehicleNumber string
}

func newWorld() *world {
	return &world{
		nextID:     100,
		users:      map[uint]*models.User{},
		hospitals:  map[uint]*models.Hospital{},
		providers:  map[uint]*models.AmbulanceProvider{},
		ambulances: map[uint]*models.Ambulance{},
		bookings:   map[uint]*models.Booking{},
	}
}

func (w *world) id() uint {
	w.nextID++
	return w.nextID
}

func (w *world) addHospital(h models.Hospital) *models.Hospital {
	w.mu.Lock()
	defer w.mu.Unlock()
	if h.ID == 0 {
		h.ID = w.id()
	}
	w.hospitals[h.ID] = &h
	return &h
}

func (w *world) addProvider(p models.AmbulanceProvider) *models.AmbulanceProvider {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p.ID == 0 {
		p.ID = w.id()
	}
	w.providers[p.ID] = &p
	return &p
}

func (w *world) addAmbulance(a models.Ambulance) *models.Ambulance {
	w.mu.Lock()
	defer w.mu.Unlock()
	if a.ID == 0 {
		a.ID = w.id()
	}
	w.ambulances[a.ID] = &a
	return &a
}

func (w *world) addBooking(b models.Booking) *models.Booking {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b.ID == 0 {
		b.ID = w.id()
	}
	w.bookings[b.ID] = &b
	return &b
}

func (w *world) booking(id uint) models.Booking {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.bookings[id]
}

func (w *world) ambulance(id uint) models.Ambulance {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.ambulances[id]
}

func (w *world) actions() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := []string{}
	for _, l := range w.logs {
		out = append(out, l.Action)
	}
	return out
}

type fakeUsers struct{ *world }

func (f fakeUsers) FindByID(_ context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f fakeUsers) taken(match func(*models.User) bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			return true
		}
	}
	return false
}

func (f fakeUsers) UsernameTaken(_ context.Context, username string) (bool, error) {
	return f.taken(func(u *models.User) bool { return u.Username == username }), nil
}

func (f fakeUsers) EmailTaken(_ context.Context, email string) (bool, error) {
	return f.taken(func(u *models.User) bool { return u.Email == email }), nil
}

func (f fakeUsers) PhoneTaken(_ context.Context, phone string) (bool, error) {
	return f.taken(func(u *models.User) bool { return u.Phone == phone }), nil
}

func (f fakeUsers) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = f.id()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f fakeUsers) UpdatePassword(_ context.Context, userID uint, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (f fakeUsers) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token.ID = f.id()
	cp := *token
	f.tokens = append(f.tokens, &cp)
	return nil
}

func (f fakeUsers) FindRefreshTokenByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.TokenHash == hash && !t.Revoked {
			cp := *t
			if u, ok := f.users[t.UserID]; ok {
				cp.User = *u
			}
			return &cp, nil
		}
	}
	return nil, repository.ErrTokenNotFound
}

func (f fakeUsers) RevokeRefreshTokenByHash(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.TokenHash == hash {
			t.Revoked = true
		}
	}
	return nil
}

func (f fakeUsers) RevokeAllRefreshTokens(_ context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

type fakeHospitals struct{ *world }

func (f fakeHospitals) Search(_ context.Context, filter repository.HospitalFilter) ([]models.Hospital, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	contains := func(s, sub string) bool { return strings.Contains(strings.ToLower(s), strings.ToLower(sub)) }

	out := []models.Hospital{}
	for _, h := range f.hospitals {
		if filter.Name != "" && !contains(h.Name, filter.Name) {
			continue
		}
		if filter.Location != "" && !contains(h.City, filter.Location) && !contains(h.Address, filter.Location) && !contains(h.Name, filter.Location) {
			continue
		}
		if filter.Type != "" && filter.Type != "all" && h.Type != filter.Type {
			continue
		}
		if (filter.RequireICU && h.BedsICU <= 0) || (filter.RequireOxygen && h.BedsOxygen <= 0) ||
			(filter.RequireVentilator && h.BedsVentilator <= 0) || (filter.RequireIsolation && h.BedsIsolation <= 0) {
			continue
		}
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeHospitals) GetAllHospitals(_ context.Context) ([]models.Hospital, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Hospital{}
	for _, h := range f.hospitals {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeHospitals) GetHospitalByID(_ context.Context, id uint) (*models.Hospital, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h, ok := f.hospitals[id]; ok {
		cp := *h
		return &cp, nil
	}
	return nil, repository.ErrHospitalNotFound
}

func (f fakeHospitals) GetHospitalsByIDs(_ context.Context, ids []uint) ([]models.Hospital, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Hospital{}
	for _, id := range ids {
		if h, ok := f.hospitals[id]; ok {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (f fakeHospitals) GetHospitalByOwner(_ context.Context, ownerID uint) (*models.Hospital, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.hospitals {
		if h.OwnerID != nil && *h.OwnerID == ownerID {
			cp := *h
			return &cp, nil
		}
	}
	return nil, repository.ErrHospitalNotFound
}

func (f fakeHospitals) Cities(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, h := range f.hospitals {
		if h.City != "" && !seen[h.City] {
			seen[h.City] = true
			out = append(out, h.City)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f fakeHospitals) UpdateHospital(_ context.Context, hospital *models.Hospital) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *hospital
	f.hospitals[hospital.ID] = &cp
	return nil
}

type fakeProviders struct{ *world }

func (f fakeProviders) ListWithAmbulances(_ context.Context) ([]models.AmbulanceProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.AmbulanceProvider{}
	for _, p := range f.providers {
		cp := *p
		cp.Ambulances = nil
		for _, a := range f.ambulances {
			if a.ProviderID == p.ID {
				cp.Ambulances = append(cp.Ambulances, *a)
			}
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeProviders) GetProviderByID(_ context.Context, id uint) (*models.AmbulanceProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.providers[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrProviderNotFound
}

func (f fakeProviders) GetProviderByOwner(_ context.Context, ownerID uint) (*models.AmbulanceProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.providers {
		if p.OwnerID != nil && *p.OwnerID == ownerID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrProviderNotFound
}

func (f fakeProviders) UpdateProvider(_ context.Context, provider *models.AmbulanceProvider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *provider
	f.providers[provider.ID] = &cp
	return nil
}

type fakeAmbulances struct{ *world }

func (f fakeAmbulances) ListByProvider(_ context.Context, providerID uint) ([]models.Ambulance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Ambulance{}
	for _, a := range f.ambulances {
		if a.ProviderID == providerID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VehicleNumber < out[j].VehicleNumber })
	return out, nil
}

func (f fakeAmbulances) GetByNumber(_ context.Context, providerID uint, number string) (*models.Ambulance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.ambulances {
		if a.ProviderID == providerID && a.VehicleNumber == number {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrAmbulanceNotFound
}

func (f fakeAmbulances) NumberTaken(_ context.Context, number string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.ambulances {
		if strings.EqualFold(a.VehicleNumber, number) {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeAmbulances) CreateAmbulance(_ context.Context, ambulance *models.Ambulance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.raceVehicleNumber != "" && strings.EqualFold(f.raceVehicleNumber, ambulance.VehicleNumber) {
		return repository.ErrDuplicateVehicle
	}
	ambulance.ID = f.id()
	cp := *ambulance
	f.ambulances[ambulance.ID] = &cp
	return nil
}

func (f fakeAmbulances) UpdateAmbulance(_ context.Context, ambulance *models.Ambulance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *ambulance
	f.ambulances[ambulance.ID] = &cp
	return nil
}

func (f fakeAmbulances) DeleteAmbulance(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ambulances, id)
	return nil
}

type fakeBookings struct{ *world }

func (f fakeBookings) CreateBooking(_ context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking.ID = f.id()
	cp := *booking
	f.bookings[booking.ID] = &cp
	return nil
}

func (f fakeBookings) ListByProvider(_ context.Context, providerID uint, status string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Booking{}
	for _, b := range f.bookings {
		if b.ProviderID == providerID && (status == "" || b.Status == status) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f fakeBookings) ListByUser(_ context.Context, userID uint) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Booking{}
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f fakeBookings) ActiveAmbulanceIDs(_ context.Context) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[uint]bool{}
	out := []uint{}
	for _, b := range f.bookings {
		if b.AmbulanceID != nil && !models.IsTerminalBookingStatus(b.Status) && !seen[*b.AmbulanceID] {
			seen[*b.AmbulanceID] = true
			out = append(out, *b.AmbulanceID)
		}
	}
	return out, nil
}

func (f fakeBookings) WithinTx(_ context.Context, fn func(repository.BookingUnit) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	bookings := make(map[uint]models.Booking, len(f.bookings))
	for id, b := range f.bookings {
		bookings[id] = *b
	}
	ambulances := make(map[uint]models.Ambulance, len(f.ambulances))
	for id, a := range f.ambulances {
		ambulances[id] = *a
	}

	if err := fn(fakeUnit{f.world}); err != nil {
		f.bookings = map[uint]*models.Booking{}
		for id, b := range bookings {
			b := b
			f.bookings[id] = &b
		}
		f.ambulances = map[uint]*models.Ambulance{}
		for id, a := range ambulances {
			a := a
			f.ambulances[id] = &a
		}
		return err
	}
	return nil
}

var errSaveFailed = errors.New("save failed")

// fakeUnit runs with world.mu already held by WithinTx
type fakeUnit struct{ *world }

func (u fakeUnit) LockBooking(bookingID, providerID uint) (*models.Booking, error) {
	b, ok := u.bookings[bookingID]
	if !ok || b.ProviderID != providerID {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (u fakeUnit) LockAmbulance(ambulanceID, providerID uint) (*models.Ambulance, error) {
	a, ok := u.ambulances[ambulanceID]
	if !ok || a.ProviderID != providerID {
		return nil, repository.ErrAmbulanceNotFound
	}
	cp := *a
	return &cp, nil
}

func (u fakeUnit) HasOtherActiveBooking(ambulanceID, excludeBookingID uint) (bool, error) {
	for _, b := range u.bookings {
		if b.ID != excludeBookingID && b.AmbulanceID != nil && *b.AmbulanceID == ambulanceID &&
			!models.IsTerminalBookingStatus(b.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (u fakeUnit) SaveBooking(booking *models.Booking) error {
	cp := *booking
	u.bookings[booking.ID] = &cp
	return nil
}

func (u fakeUnit) SaveAmbulance(ambulance *models.Ambulance) error {
	if u.failSaveAmbulance {
		return errSaveFailed
	}
	cp := *ambulance
	u.ambulances[ambulance.ID] = &cp
	return nil
}

type fakeActivity struct{ *world }

func (f fakeActivity) CreateActivityLog(_ context.Context, entry *models.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = f.id()
	f.logs = append(f.logs, *entry)
	return nil
}

func (f fakeActivity) RecentByUser(_ context.Context, userID uint, limit int) ([]models.ActivityLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ActivityLog{}
	for i := len(f.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if l := f.logs[i]; l.UserID != nil && *l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeOTPs struct{ *world }

func (f fakeOTPs) DeleteUnverified(_ context.Context, channel, contact, purpose string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.otps[:0]
	for _, o := range f.otps {
		if o.Channel == channel && o.Contact == contact && o.Purpose == purpose && !o.IsVerified {
			continue
		}
		kept = append(kept, o)
	}
	f.otps = kept
	return nil
}

func (f fakeOTPs) CreateOTP(_ context.Context, otp *models.OTP) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	otp.ID = f.id()
	cp := *otp
	f.otps = append(f.otps, &cp)
	return nil
}

func (f fakeOTPs) FindLatestUnverified(_ context.Context, channel, contact, purpose, code string) (*models.OTP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.otps) - 1; i >= 0; i-- {
		o := f.otps[i]
		if o.Channel == channel && o.Contact == contact && o.Purpose == purpose && o.Code == code && !o.IsVerified {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrOTPNotFound
}

func (f fakeOTPs) MarkVerified(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.otps {
		if o.ID == id {
			o.IsVerified = true
		}
	}
	return nil
}

func (f fakeOTPs) pending() []models.OTP {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.OTP{}
	for _, o := range f.otps {
		if !o.IsVerified {
			out = append(out, *o)
		}
	}
	return out
}

type recordingSender struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) last() notify.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return notify.Message{}
	}
	return s.sent[len(s.sent)-1]
}

type fixedLimiter struct{ allow bool }

func (l fixedLimiter) Allow(context.Context, string) (bool, error) {
	return l.allow, nil
}

func uintPtr(v uint) *uint { return &v }
