package sanitizer

import (
	"guesthouse/pkg/model"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func sanitizeGuest(g model.GuestInput) model.GuestInput {
	return model.GuestInput{
		Name:         NormalizeName(g.Name),
		DOB:          TrimAndNormalize(g.DOB),
		GovtIDType:   TrimAndNormalize(g.GovtIDType),
		GovtIDNumber: NormalizeGovtIDNumber(g.GovtIDNumber),
	}
}

// SanitizeAcknowledgment returns a normalized copy of req. The input is not modified.
func SanitizeAcknowledgment(req *model.AcknowledgmentRequest) *model.AcknowledgmentRequest {
	out := *req
	out.Name = NormalizeName(req.Name)
	out.Email = NormalizeEmail(req.Email)
	out.DOB = TrimAndNormalize(req.DOB)
	out.GovtIDType = TrimAndNormalize(req.GovtIDType)
	out.GovtIDNumber = NormalizeGovtIDNumber(req.GovtIDNumber)
	out.RelationshipType = OptionalString(req.RelationshipType)
	out.CheckInDate = TrimAndNormalize(req.CheckInDate)
	out.CheckOutDate = TrimAndNormalize(req.CheckOutDate)

	if req.AdditionalGuests != nil {
		out.AdditionalGuests = make([]model.GuestInput, len(req.AdditionalGuests))
		for i, g := range req.AdditionalGuests {
			out.AdditionalGuests[i] = sanitizeGuest(g)
		}
	}
	return &out
}
