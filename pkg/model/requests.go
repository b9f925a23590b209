package model

import "time"

// GuestInput is an additional guest as posted by the form. Dates stay strings
// until the validator parses them so that a bad date maps to its own error kind.
type GuestInput struct {
	Name         string `json:"name" validate:"required"`
	DOB          string `json:"dob" validate:"required"`
	GovtIDType   string `json:"govtIdType" validate:"required"`
	GovtIDNumber string `json:"govtIdNumber" validate:"required"`
}

type AcknowledgmentRequest struct {
	Name             string       `json:"name" validate:"required"`
	Email            string       `json:"email" validate:"required,guest_email"`
	DOB              string       `json:"dob" validate:"required"`
	GovtIDType       string       `json:"govtIdType" validate:"required"`
	GovtIDNumber     string       `json:"govtIdNumber" validate:"required"`
	GuestCount       *int         `json:"guestCount" validate:"required"`
	ChildCount       *int         `json:"childCount"`
	RelationshipType *string      `json:"relationshipType"`
	AdditionalGuests []GuestInput `json:"additionalGuests"`
	CheckInDate      string       `json:"checkInDate" validate:"required"`
	CheckOutDate     string       `json:"checkOutDate" validate:"required"`
}

type CancelRequest struct {
	AdminSecret string `json:"adminSecret"`
	BookingID   string `json:"bookingId"`
}

type GovtIDCorrectionRequest struct {
	AdminSecret  string `json:"adminSecret"`
	BookingID    string `json:"bookingId"`
	GuestIndex   *int   `json:"guestIndex,omitempty"`
	GovtIDNumber string `json:"govtIdNumber"`
}

type DOBCorrectionRequest struct {
	AdminSecret string `json:"adminSecret"`
	BookingID   string `json:"bookingId"`
	GuestIndex  *int   `json:"guestIndex,omitempty"`
	DOB         string `json:"dob"`
}

type AcknowledgmentCreated struct {
	ID           string    `json:"id"`
	SubmittedAt  time.Time `json:"submittedAt"`
	CheckInDate  Date      `json:"checkInDate"`
	CheckOutDate Date      `json:"checkOutDate"`
}

type CancellationResult struct {
	ID               string    `json:"id"`
	FreedRange       DateRange `json:"freedRange"`
	AlreadyCancelled bool      `json:"alreadyCancelled"`
}

type CorrectionResult struct {
	ID         string `json:"id"`
	GuestIndex *int   `json:"guestIndex,omitempty"`
	Field      string `json:"field"`
}

type EmailCheckResult struct {
	Exists bool `json:"exists"`
}
