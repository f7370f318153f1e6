package service

import "careconnect-backend/internal/models"

const (
	ActionAccept   = "accept"
	ActionReject   = "reject"
	ActionStart    = "start"
	ActionComplete = "complete"
)

var bookingTransitions = map[string]struct {
	from []string
	to   string
}{
	ActionAccept:   {from: []string{models.BookingPending}, to: models.BookingConfirmed},
	ActionReject:   {from: []string{models.BookingPending}, to: models.BookingCancelled},
	ActionStart:    {from: []string{models.BookingConfirmed}, to: models.BookingInProgress},
	ActionComplete: {from: []string{models.BookingPending, models.BookingConfirmed, models.BookingInProgress}, to: models.BookingCompleted},
}

// ValidTransition reports whether action may be applied to a booking in
// status from
func ValidTransition(action, from string) bool {
	t, ok := bookingTransitions[action]
	if !ok {
		return false
	}
	for _, s := range t.from {
		if s == from {
			return true
		}
	}
	return false
}

// TargetStatus is the status a booking ends in after action
func TargetStatus(action string) string {
	return bookingTransitions[action].to
}
