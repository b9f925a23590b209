package events

import (
	"context"
	"time"

	"guesthouse/pkg/model"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingCorrected = "booking.corrected"

	SchemaVersion = "1"
	Source        = "guesthouse-acknowledgments"
)

// BookingEvent is the audit record published after a booking changes. It
// carries the stay and head counts only; guest identity documents and dates
// of birth never leave the store.
type BookingEvent struct {
	Type         string     `json:"type"`
	BookingID    string     `json:"bookingId"`
	CheckInDate  model.Date `json:"checkInDate"`
	CheckOutDate model.Date `json:"checkOutDate"`
	GuestCount   int        `json:"guestCount"`
	ChildCount   int        `json:"childCount"`
	Field        string     `json:"field,omitempty"`
	GuestIndex   *int       `json:"guestIndex,omitempty"`
	OccurredAt   time.Time  `json:"occurredAt"`
}

func newEvent(eventType string, b *model.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:         eventType,
		BookingID:    b.ID,
		CheckInDate:  b.CheckInDate,
		CheckOutDate: b.CheckOutDate,
		GuestCount:   b.GuestCount,
		ChildCount:   b.ChildCount,
		OccurredAt:   at.UTC(),
	}
}

func Created(b *model.Booking, at time.Time) BookingEvent {
	return newEvent(TypeBookingCreated, b, at)
}

func Cancelled(b *model.Booking, at time.Time) BookingEvent {
	return newEvent(TypeBookingCancelled, b, at)
}

// Corrected names the corrected field and guest; the new value is not included.
func Corrected(b *model.Booking, field string, guestIndex *int, at time.Time) BookingEvent {
	e := newEvent(TypeBookingCorrected, b, at)
	e.Field = field
	e.GuestIndex = guestIndex
	return e
}

// Publisher delivers booking events on a best-effort basis. Publish never
// fails the caller; delivery problems are logged by the implementation.
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent)
	Close() error
}

type noopPublisher struct{}

// Noop is used when no broker is configured.
func Noop() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, BookingEvent) {}

func (noopPublisher) Close() error { return nil }
