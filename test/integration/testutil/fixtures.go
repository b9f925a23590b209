//go:build integration

package testutil

import (
	"time"

	"guesthouse/pkg/model"
)

type RequestBuilder struct {
	req model.AcknowledgmentRequest
}

// NewRequestBuilder starts from a single adult staying one night, daysAhead
// days from now.
func NewRequestBuilder(daysAhead int) *RequestBuilder {
	one := 1
	in := time.Now().AddDate(0, 0, daysAhead)
	return &RequestBuilder{
		req: model.AcknowledgmentRequest{
			Name:         "Asha Rao",
			Email:        "asha@example.com",
			DOB:          "1990-04-12",
			GovtIDType:   "Aadhar",
			GovtIDNumber: "1234 5678 9012",
			GuestCount:   &one,
			CheckInDate:  in.Format(model.DateLayout),
			CheckOutDate: in.AddDate(0, 0, 1).Format(model.DateLayout),
		},
	}
}

func (b *RequestBuilder) WithEmail(email string) *RequestBuilder {
	b.req.Email = email
	return b
}

func (b *RequestBuilder) WithNights(n int) *RequestBuilder {
	in, _ := time.Parse(model.DateLayout, b.req.CheckInDate)
	b.req.CheckOutDate = in.AddDate(0, 0, n).Format(model.DateLayout)
	return b
}

func (b *RequestBuilder) WithCompanion(relationship string, guest model.GuestInput) *RequestBuilder {
	count := *b.req.GuestCount + 1
	b.req.GuestCount = &count
	b.req.RelationshipType = &relationship
	b.req.AdditionalGuests = append(b.req.AdditionalGuests, guest)
	return b
}

func (b *RequestBuilder) Build() *model.AcknowledgmentRequest {
	req := b.req
	req.AdditionalGuests = append([]model.GuestInput(nil), b.req.AdditionalGuests...)
	return &req
}

func Companion() model.GuestInput {
	return model.GuestInput{
		Name:         "Vikram Rao",
		DOB:          "1988-11-02",
		GovtIDType:   "Passport",
		GovtIDNumber: "k1234567",
	}
}
