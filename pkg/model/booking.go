package model

import (
	"time"
)

type GovtIDType string

const (
	GovtIDAadhar         GovtIDType = "Aadhar"
	GovtIDDrivingLicense GovtIDType = "DrivingLicense"
	GovtIDPassport       GovtIDType = "Passport"
)

// Guest is an adult on the booking. Children are counted, not tracked.
type Guest struct {
	Name         string     `json:"name" bson:"name"`
	DateOfBirth  Date       `json:"dob" bson:"dob"`
	GovtIDType   GovtIDType `json:"govtIdType" bson:"govt_id_type"`
	GovtIDNumber string     `json:"govtIdNumber" bson:"govt_id_number"`
}

type PrimaryGuest struct {
	Guest `bson:",inline"`
	Email string `json:"email" bson:"email"`
}

type Booking struct {
	ID               string       `json:"id,omitempty" bson:"_id,omitempty"`
	PrimaryGuest     PrimaryGuest `json:"primaryGuest" bson:"primary_guest"`
	GuestCount       int          `json:"guestCount" bson:"guest_count"`
	ChildCount       int          `json:"childCount" bson:"child_count"`
	RelationshipType *string      `json:"relationshipType" bson:"relationship_type"`
	AdditionalGuests []Guest      `json:"additionalGuests" bson:"additional_guests"`
	CheckInDate      Date         `json:"checkInDate" bson:"check_in_date"`
	CheckOutDate     Date         `json:"checkOutDate" bson:"check_out_date"`
	Cancelled        bool         `json:"cancelled" bson:"cancelled"`
	CancelledAt      *time.Time   `json:"cancelledAt,omitempty" bson:"cancelled_at,omitempty"`
	SubmittedAt      time.Time    `json:"submittedAt" bson:"submitted_at"`
	OriginIP         string       `json:"originIp,omitempty" bson:"origin_ip"`
	Version          int64        `json:"-" bson:"version"`
}

func (b *Booking) Range() DateRange {
	return DateRange{CheckIn: b.CheckInDate, CheckOut: b.CheckOutDate}
}

func (b *Booking) TotalPeople() int {
	return b.GuestCount + b.ChildCount
}

// GuestAt resolves a guest index: nil addresses the primary guest, otherwise
// the index is into AdditionalGuests. ok is false when the index is out of range.
func (b *Booking) GuestAt(index *int) (Guest, bool) {
	if index == nil {
		return b.PrimaryGuest.Guest, true
	}
	if *index < 0 || *index >= len(b.AdditionalGuests) {
		return Guest{}, false
	}
	return b.AdditionalGuests[*index], true
}

// WithGuest returns a copy of b with the addressed guest replaced. The
// additional guest slice is copied, never mutated in place.
func (b Booking) WithGuest(index *int, g Guest) Booking {
	if index == nil {
		b.PrimaryGuest.Guest = g
		return b
	}
	guests := make([]Guest, len(b.AdditionalGuests))
	copy(guests, b.AdditionalGuests)
	guests[*index] = g
	b.AdditionalGuests = guests
	return b
}
