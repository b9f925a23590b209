package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	apperrors "guesthouse/pkg/errors"
	"guesthouse/pkg/locale"
	"guesthouse/pkg/logger"
	"guesthouse/pkg/model"

	"github.com/go-playground/validator/v10"
)

const (
	MinimumAge = 18

	tagRequired   = "required"
	tagGuestEmail = "guest_email"

	msgMissingFields = "All fields are required"
	msgInvalidEmail  = "Invalid email format"
	msgInvalidDOB    = "Please enter a valid date of birth. You must be at least 18 years old."
	msgInvalidGovtID = "Please enter a valid government ID number."
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	govtIDPatterns = map[model.GovtIDType]*regexp.Regexp{
		model.GovtIDAadhar:         regexp.MustCompile(`^\d{12}$`),
		model.GovtIDDrivingLicense: regexp.MustCompile(`^[A-Z0-9]{8,20}$`),
		model.GovtIDPassport:       regexp.MustCompile(`^[A-Z0-9]{6,10}$`),
	}

	govtIDAliases = map[string]model.GovtIDType{
		"aadhar":         model.GovtIDAadhar,
		"aadhaar":        model.GovtIDAadhar,
		"drivinglicense": model.GovtIDDrivingLicense,
		"drivinglicence": model.GovtIDDrivingLicense,
		"passport":       model.GovtIDPassport,
	}
)

type BookingValidator struct {
	validate *validator.Validate
	clock    locale.Clock
	logger   *logger.Logger
}

func NewBookingValidator(clock locale.Clock, log *logger.Logger) *BookingValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation(tagGuestEmail, validateGuestEmail); err != nil {
		log.Fatal("Failed to register 'guest_email' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		clock:    clock,
		logger:   log,
	}
}

func validateGuestEmail(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

// Validate checks a sanitized submission and returns the booking it describes.
// Rules run in a fixed order and the first failure is returned.
func (v *BookingValidator) Validate(req *model.AcknowledgmentRequest) (*model.Booking, error) {
	if err := v.validateStruct(req, ""); err != nil {
		return nil, err
	}

	today := v.clock.Today()

	dob, err := ValidateDOB(req.DOB, today)
	if err != nil {
		return nil, err
	}

	idType, idNumber, err := ValidateGovtID(req.GovtIDType, req.GovtIDNumber)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		PrimaryGuest: model.PrimaryGuest{
			Guest: model.Guest{
				Name:         req.Name,
				DateOfBirth:  dob,
				GovtIDType:   idType,
				GovtIDNumber: idNumber,
			},
			Email: req.Email,
		},
		GuestCount: *req.GuestCount,
	}
	if req.ChildCount != nil {
		booking.ChildCount = *req.ChildCount
	}

	if err := validateCounts(booking, req.RelationshipType); err != nil {
		return nil, err
	}

	booking.AdditionalGuests, err = v.validateAdditionalGuests(req.AdditionalGuests, booking.GuestCount, today)
	if err != nil {
		return nil, err
	}

	stay, err := ValidateStay(req.CheckInDate, req.CheckOutDate, today)
	if err != nil {
		return nil, err
	}
	booking.CheckInDate = stay.CheckIn
	booking.CheckOutDate = stay.CheckOut

	return booking, nil
}

func (v *BookingValidator) validateStruct(s any, prefix string) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.InvalidRequest("Invalid request body")
	}
	return v.translateValidationErrors(validationErrs, prefix)
}

// translateValidationErrors reports a missing field before a malformed one,
// whatever order the struct declares them in.
func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors, prefix string) error {
	for _, fe := range errs {
		if fe.Tag() == tagRequired {
			return apperrors.MissingField(prefix + msgMissingFields).
				WithDetails(map[string]any{"field": fe.Field()})
		}
	}

	fe := errs[0]
	switch fe.Tag() {
	case tagGuestEmail:
		return apperrors.InvalidEmail(prefix + msgInvalidEmail).
			WithDetails(map[string]any{"field": fe.Field()})
	default:
		return apperrors.InvalidRequest(fmt.Sprintf("%s%s is invalid", prefix, fe.Field())).
			WithDetails(map[string]any{"field": fe.Field()})
	}
}

// validateCounts checks the party size on b and sets its relationship. A
// single person has no relationship to record, so any value sent is dropped.
func validateCounts(b *model.Booking, relationship *string) error {
	if b.GuestCount < 1 {
		return apperrors.GuestCountMismatch("Guest count must be at least 1").
			WithDetails(map[string]any{"field": "guestCount"})
	}
	if b.ChildCount < 0 {
		return apperrors.GuestCountMismatch("Child count cannot be negative").
			WithDetails(map[string]any{"field": "childCount"})
	}

	if b.TotalPeople() == 1 {
		b.RelationshipType = nil
		return nil
	}
	if relationship == nil || strings.TrimSpace(*relationship) == "" {
		return apperrors.MissingRelationship("Relationship type is required when more than one person is staying").
			WithDetails(map[string]any{"field": "relationshipType"})
	}
	b.RelationshipType = relationship
	return nil
}

func (v *BookingValidator) validateAdditionalGuests(inputs []model.GuestInput, guestCount int, today model.Date) ([]model.Guest, error) {
	want := guestCount - 1
	if len(inputs) != want {
		return nil, apperrors.GuestCountMismatch(
			fmt.Sprintf("Expected %d additional guest(s) for %d adults, got %d", want, guestCount, len(inputs)),
		).WithDetails(map[string]any{"field": "additionalGuests", "expected": want, "got": len(inputs)})
	}

	guests := make([]model.Guest, 0, len(inputs))
	for i := range inputs {
		// The primary guest is Guest 1.
		ordinal := i + 2
		prefix := fmt.Sprintf("Guest %d: ", ordinal)

		if err := v.validateStruct(&inputs[i], prefix); err != nil {
			return nil, withGuest(err, ordinal)
		}

		dob, err := ValidateDOB(inputs[i].DOB, today)
		if err != nil {
			return nil, withGuest(prefixed(err, prefix), ordinal)
		}

		idType, idNumber, err := ValidateGovtID(inputs[i].GovtIDType, inputs[i].GovtIDNumber)
		if err != nil {
			return nil, withGuest(prefixed(err, prefix), ordinal)
		}

		guests = append(guests, model.Guest{
			Name:         inputs[i].Name,
			DateOfBirth:  dob,
			GovtIDType:   idType,
			GovtIDNumber: idNumber,
		})
	}
	return guests, nil
}

func prefixed(err error, prefix string) error {
	appErr := apperrors.AsAppError(err)
	return apperrors.New(appErr.Code, prefix+appErr.Message, appErr.HTTPStatus).WithDetails(appErr.Details)
}

func withGuest(err error, ordinal int) error {
	appErr := apperrors.AsAppError(err)
	details := map[string]any{"guest": ordinal}
	for k, val := range appErr.Details {
		details[k] = val
	}
	appErr.Details = details
	return appErr
}

// Age counts completed years between dob and today.
func Age(dob, today model.Date) int {
	years := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		years--
	}
	return years
}

// ValidateDOB parses a YYYY-MM-DD date of birth and enforces the adult rule.
func ValidateDOB(raw string, today model.Date) (model.Date, error) {
	dob, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, apperrors.UnderageOrInvalidDOB(msgInvalidDOB).
			WithDetails(map[string]any{"field": "dob"})
	}
	if !dob.Before(today) || Age(dob, today) < MinimumAge {
		return model.Date{}, apperrors.UnderageOrInvalidDOB(msgInvalidDOB).
			WithDetails(map[string]any{"field": "dob"})
	}
	return dob, nil
}

// NormalizeGovtIDType maps the accepted spellings onto the canonical type.
func NormalizeGovtIDType(raw string) (model.GovtIDType, bool) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(raw))
	t, ok := govtIDAliases[key]
	return t, ok
}

// ValidateGovtID checks number against the format of its type. The number is
// expected to be normalized already; dashes are not removed.
func ValidateGovtID(rawType, number string) (model.GovtIDType, string, error) {
	idType, ok := NormalizeGovtIDType(rawType)
	if !ok {
		return "", "", apperrors.InvalidGovtID(fmt.Sprintf("Unsupported government ID type: %s", rawType)).
			WithDetails(map[string]any{"field": "govtIdType"})
	}
	if !govtIDPatterns[idType].MatchString(number) {
		return "", "", apperrors.InvalidGovtID(msgInvalidGovtID).
			WithDetails(map[string]any{"field": "govtIdNumber", "govtIdType": string(idType)})
	}
	return idType, number, nil
}

// ValidateStay parses the stay dates. Check-in may be today but not earlier,
// and check-out must fall on a later day.
func ValidateStay(rawCheckIn, rawCheckOut string, today model.Date) (model.DateRange, error) {
	checkIn, err := model.ParseDate(rawCheckIn)
	if err != nil {
		return model.DateRange{}, apperrors.InvalidDateRange("Invalid check-in date").
			WithDetails(map[string]any{"field": "checkInDate"})
	}
	checkOut, err := model.ParseDate(rawCheckOut)
	if err != nil {
		return model.DateRange{}, apperrors.InvalidDateRange("Invalid check-out date").
			WithDetails(map[string]any{"field": "checkOutDate"})
	}

	if checkIn.Before(today) {
		return model.DateRange{}, apperrors.InvalidDateRange("Check-in date cannot be in the past").
			WithDetails(map[string]any{"field": "checkInDate"})
	}
	if !checkOut.After(checkIn) {
		return model.DateRange{}, apperrors.InvalidDateRange("Check-out date must be after check-in date").
			WithDetails(map[string]any{"field": "checkOutDate"})
	}
	return model.NewDateRange(checkIn, checkOut), nil
}
