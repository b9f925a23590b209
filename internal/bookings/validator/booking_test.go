package validator

import (
	"strings"
	"testing"
	"time"

	apperrors "guesthouse/pkg/errors"
	"guesthouse/pkg/locale"
	"guesthouse/pkg/logger"
	"guesthouse/pkg/model"
)

// Every test runs on 2025-06-15 at the property.
var testToday = model.NewDate(2025, time.June, 15)

func newTestValidator() *BookingValidator {
	clock := locale.FixedClock(time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC))
	return NewBookingValidator(clock, logger.Discard())
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func validRequest() *model.AcknowledgmentRequest {
	return &model.AcknowledgmentRequest{
		Name:         "Asha Rao",
		Email:        "asha@example.com",
		DOB:          "1990-05-01",
		GovtIDType:   "Aadhar",
		GovtIDNumber: "123456789012",
		GuestCount:   intPtr(1),
		ChildCount:   intPtr(0),
		CheckInDate:  "2025-07-01",
		CheckOutDate: "2025-07-03",
	}
}

func extraGuest(name string) model.GuestInput {
	return model.GuestInput{Name: name, DOB: "1988-01-20", GovtIDType: "Passport", GovtIDNumber: "K1234567"}
}

func TestValidate_ValidSingleGuest(t *testing.T) {
	v := newTestValidator()
	req := validRequest()
	req.RelationshipType = strPtr("Friends")

	booking, err := v.Validate(req)
	if err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if booking.PrimaryGuest.GovtIDType != model.GovtIDAadhar {
		t.Errorf("GovtIDType = %s", booking.PrimaryGuest.GovtIDType)
	}
	if booking.RelationshipType != nil {
		t.Errorf("relationship must be dropped for a single person, got %q", *booking.RelationshipType)
	}
	if booking.CheckInDate.String() != "2025-07-01" || booking.CheckOutDate.String() != "2025-07-03" {
		t.Errorf("unexpected stay %s - %s", booking.CheckInDate, booking.CheckOutDate)
	}
	if len(booking.AdditionalGuests) != 0 {
		t.Errorf("expected no additional guests")
	}
}

func TestValidate_ChildrenCountTowardParty(t *testing.T) {
	v := newTestValidator()

	req := validRequest()
	req.ChildCount = intPtr(1)
	if _, err := v.Validate(req); apperrors.Kind(err) != apperrors.CodeMissingRelationship {
		t.Fatalf("adult with child and no relationship: got %v", err)
	}

	req.RelationshipType = strPtr("Parent")
	booking, err := v.Validate(req)
	if err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if booking.TotalPeople() != 2 || booking.RelationshipType == nil || *booking.RelationshipType != "Parent" {
		t.Errorf("unexpected party: people=%d relationship=%v", booking.TotalPeople(), booking.RelationshipType)
	}
}

func TestValidate_ErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *model.AcknowledgmentRequest)
		wantKind string
	}{
		{name: "missing name", mutate: func(r *model.AcknowledgmentRequest) { r.Name = "" }, wantKind: apperrors.CodeMissingField},
		{name: "missing guest count", mutate: func(r *model.AcknowledgmentRequest) { r.GuestCount = nil }, wantKind: apperrors.CodeMissingField},
		{name: "missing check-out", mutate: func(r *model.AcknowledgmentRequest) { r.CheckOutDate = "" }, wantKind: apperrors.CodeMissingField},
		{name: "missing field wins over bad email", mutate: func(r *model.AcknowledgmentRequest) {
			r.Email = "not-an-email"
			r.GovtIDNumber = ""
		}, wantKind: apperrors.CodeMissingField},
		{name: "email without domain dot", mutate: func(r *model.AcknowledgmentRequest) { r.Email = "asha@example" }, wantKind: apperrors.CodeInvalidEmail},
		{name: "email with space", mutate: func(r *model.AcknowledgmentRequest) { r.Email = "as ha@example.com" }, wantKind: apperrors.CodeInvalidEmail},
		{name: "unparseable dob", mutate: func(r *model.AcknowledgmentRequest) { r.DOB = "01/05/1990" }, wantKind: apperrors.CodeUnderageOrInvalidDOB},
		{name: "future dob", mutate: func(r *model.AcknowledgmentRequest) { r.DOB = "2030-01-01" }, wantKind: apperrors.CodeUnderageOrInvalidDOB},
		{name: "unknown id type", mutate: func(r *model.AcknowledgmentRequest) { r.GovtIDType = "VoterID" }, wantKind: apperrors.CodeInvalidGovtID},
		{name: "zero adults", mutate: func(r *model.AcknowledgmentRequest) { r.GuestCount = intPtr(0) }, wantKind: apperrors.CodeGuestCountMismatch},
		{name: "negative children", mutate: func(r *model.AcknowledgmentRequest) { r.ChildCount = intPtr(-1) }, wantKind: apperrors.CodeGuestCountMismatch},
		{name: "child without relationship", mutate: func(r *model.AcknowledgmentRequest) { r.ChildCount = intPtr(1) }, wantKind: apperrors.CodeMissingRelationship},
		{name: "blank relationship", mutate: func(r *model.AcknowledgmentRequest) {
			r.ChildCount = intPtr(2)
			r.RelationshipType = strPtr("   ")
		}, wantKind: apperrors.CodeMissingRelationship},
		{name: "check-in yesterday", mutate: func(r *model.AcknowledgmentRequest) { r.CheckInDate = "2025-06-14" }, wantKind: apperrors.CodeInvalidDateRange},
		{name: "same day checkout", mutate: func(r *model.AcknowledgmentRequest) { r.CheckOutDate = r.CheckInDate }, wantKind: apperrors.CodeInvalidDateRange},
		{name: "checkout before checkin", mutate: func(r *model.AcknowledgmentRequest) { r.CheckOutDate = "2025-06-30" }, wantKind: apperrors.CodeInvalidDateRange},
		{name: "garbage check-in", mutate: func(r *model.AcknowledgmentRequest) { r.CheckInDate = "next week" }, wantKind: apperrors.CodeInvalidDateRange},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := v.Validate(req)
			if err == nil {
				t.Fatalf("Validate() expected %s, got nil", tt.wantKind)
			}
			if got := apperrors.Kind(err); got != tt.wantKind {
				t.Errorf("Validate() kind = %s, want %s (%v)", got, tt.wantKind, err)
			}
		})
	}
}

func TestValidate_CheckInTodayAccepted(t *testing.T) {
	req := validRequest()
	req.CheckInDate = "2025-06-15"
	req.CheckOutDate = "2025-06-16"

	if _, err := newTestValidator().Validate(req); err != nil {
		t.Errorf("check-in today should be accepted, got %v", err)
	}
}

func TestValidateDOB_AgeBoundary(t *testing.T) {
	tests := []struct {
		name    string
		dob     string
		wantErr bool
	}{
		{name: "exactly 18 today", dob: "2007-06-15", wantErr: false},
		{name: "18 tomorrow", dob: "2007-06-16", wantErr: true},
		{name: "17 years 364 days", dob: "2007-06-16", wantErr: true},
		{name: "turned 18 yesterday", dob: "2007-06-14", wantErr: false},
		{name: "born today", dob: "2025-06-15", wantErr: true},
		{name: "senior", dob: "1940-02-29", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateDOB(tt.dob, testToday)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateDOB(%s) error = %v, wantErr %v", tt.dob, err, tt.wantErr)
			}
			if err != nil && apperrors.Kind(err) != apperrors.CodeUnderageOrInvalidDOB {
				t.Errorf("kind = %s", apperrors.Kind(err))
			}
		})
	}
}

func TestAge_LeapDayBirthday(t *testing.T) {
	dob := model.NewDate(2004, time.February, 29)

	if got := Age(dob, model.NewDate(2022, time.February, 28)); got != 17 {
		t.Errorf("Age on Feb 28 = %d, want 17", got)
	}
	if got := Age(dob, model.NewDate(2022, time.March, 1)); got != 18 {
		t.Errorf("Age on Mar 1 = %d, want 18", got)
	}
}

func TestValidateGovtID(t *testing.T) {
	tests := []struct {
		name     string
		idType   string
		number   string
		wantType model.GovtIDType
		wantErr  bool
	}{
		{name: "aadhar 12 digits", idType: "Aadhar", number: "123456789012", wantType: model.GovtIDAadhar},
		{name: "aadhar with dashes", idType: "Aadhar", number: "1234-5678-9012", wantErr: true},
		{name: "aadhar 11 digits", idType: "Aadhar", number: "12345678901", wantErr: true},
		{name: "aadhar letters", idType: "Aadhar", number: "12345678901A", wantErr: true},
		{name: "aadhaar spelling", idType: "Aadhaar", number: "123456789012", wantType: model.GovtIDAadhar},
		{name: "driving license 8", idType: "DrivingLicense", number: "MH122011", wantType: model.GovtIDDrivingLicense},
		{name: "driving license with space in type", idType: "Driving License", number: "MH1220110012345", wantType: model.GovtIDDrivingLicense},
		{name: "driving license 21", idType: "DrivingLicense", number: "ABCDEFGHIJ12345678901", wantErr: true},
		{name: "driving license 7", idType: "DrivingLicense", number: "MH12201", wantErr: true},
		{name: "passport 6", idType: "Passport", number: "K12345", wantType: model.GovtIDPassport},
		{name: "passport 10", idType: "passport", number: "K123456789", wantType: model.GovtIDPassport},
		{name: "passport 11", idType: "Passport", number: "K1234567890", wantErr: true},
		{name: "passport lower case not normalized here", idType: "Passport", number: "k1234567", wantErr: true},
		{name: "unknown type", idType: "PAN", number: "ABCDE1234F", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, _, err := ValidateGovtID(tt.idType, tt.number)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateGovtID(%s, %s) error = %v, wantErr %v", tt.idType, tt.number, err, tt.wantErr)
			}
			if err != nil {
				if apperrors.Kind(err) != apperrors.CodeInvalidGovtID {
					t.Errorf("kind = %s", apperrors.Kind(err))
				}
				return
			}
			if gotType != tt.wantType {
				t.Errorf("type = %s, want %s", gotType, tt.wantType)
			}
		})
	}
}

func TestValidate_AdditionalGuestCount(t *testing.T) {
	tests := []struct {
		name     string
		extras   []model.GuestInput
		wantKind string
	}{
		{name: "three adults one extra", extras: []model.GuestInput{extraGuest("Ravi")}, wantKind: apperrors.CodeGuestCountMismatch},
		{name: "three adults three extras", extras: []model.GuestInput{extraGuest("Ravi"), extraGuest("Meera"), extraGuest("Kiran")}, wantKind: apperrors.CodeGuestCountMismatch},
		{name: "three adults none", extras: nil, wantKind: apperrors.CodeGuestCountMismatch},
		{name: "three adults two extras", extras: []model.GuestInput{extraGuest("Ravi"), extraGuest("Meera")}},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.GuestCount = intPtr(3)
			req.RelationshipType = strPtr("Family")
			req.AdditionalGuests = tt.extras

			booking, err := v.Validate(req)
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				if len(booking.AdditionalGuests) != 2 || booking.AdditionalGuests[1].Name != "Meera" {
					t.Errorf("unexpected additional guests %+v", booking.AdditionalGuests)
				}
				return
			}
			if got := apperrors.Kind(err); got != tt.wantKind {
				t.Errorf("kind = %s, want %s", got, tt.wantKind)
			}
		})
	}
}

func TestValidate_AdditionalGuestErrorsNameTheGuest(t *testing.T) {
	tests := []struct {
		name       string
		second     model.GuestInput
		wantKind   string
		wantPrefix string
	}{
		{
			name:       "underage second extra guest",
			second:     model.GuestInput{Name: "Kid", DOB: "2010-01-01", GovtIDType: "Passport", GovtIDNumber: "K1234567"},
			wantKind:   apperrors.CodeUnderageOrInvalidDOB,
			wantPrefix: "Guest 3: ",
		},
		{
			name:       "bad id on second extra guest",
			second:     model.GuestInput{Name: "Meera", DOB: "1990-01-01", GovtIDType: "Aadhar", GovtIDNumber: "1234"},
			wantKind:   apperrors.CodeInvalidGovtID,
			wantPrefix: "Guest 3: ",
		},
		{
			name:       "missing name on second extra guest",
			second:     model.GuestInput{DOB: "1990-01-01", GovtIDType: "Aadhar", GovtIDNumber: "123456789012"},
			wantKind:   apperrors.CodeMissingField,
			wantPrefix: "Guest 3: ",
		},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.GuestCount = intPtr(3)
			req.RelationshipType = strPtr("Family")
			req.AdditionalGuests = []model.GuestInput{extraGuest("Ravi"), tt.second}

			_, err := v.Validate(req)
			appErr := apperrors.AsAppError(err)
			if appErr.Code != tt.wantKind {
				t.Fatalf("kind = %s, want %s (%v)", appErr.Code, tt.wantKind, err)
			}
			if !strings.HasPrefix(appErr.Message, tt.wantPrefix) {
				t.Errorf("message %q should start with %q", appErr.Message, tt.wantPrefix)
			}
			if appErr.Details["guest"] != 3 {
				t.Errorf("details guest = %v, want 3", appErr.Details["guest"])
			}
		})
	}
}

func TestNormalizeGovtIDType(t *testing.T) {
	for raw, want := range map[string]model.GovtIDType{
		"Aadhar":          model.GovtIDAadhar,
		"AADHAAR":         model.GovtIDAadhar,
		"Driving License": model.GovtIDDrivingLicense,
		"driving_licence": model.GovtIDDrivingLicense,
		"DrivingLicense":  model.GovtIDDrivingLicense,
		"Passport":        model.GovtIDPassport,
	} {
		got, ok := NormalizeGovtIDType(raw)
		if !ok || got != want {
			t.Errorf("NormalizeGovtIDType(%q) = %s, %v; want %s", raw, got, ok, want)
		}
	}
	if _, ok := NormalizeGovtIDType("Ration Card"); ok {
		t.Errorf("unknown type should not normalize")
	}
}
