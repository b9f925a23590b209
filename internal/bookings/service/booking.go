package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "guesthouse/internal/bookings/errors"
	"guesthouse/internal/bookings/events"
	"guesthouse/internal/bookings/repository"
	"guesthouse/internal/bookings/validator"
	"guesthouse/pkg/auth"
	mongotx "guesthouse/pkg/db/mongo"
	apperrors "guesthouse/pkg/errors"
	"guesthouse/pkg/locale"
	"guesthouse/pkg/logger"
	"guesthouse/pkg/model"
	"guesthouse/pkg/sanitizer"
)

const (
	FieldGovtIDNumber = "govtIdNumber"
	FieldDOB          = "dob"

	defaultCorrectionAttempts = 3

	msgDateConflict     = "These dates are already booked. Please choose different dates."
	msgUnauthorized     = "Unauthorized"
	msgRecordFailed     = "Failed to record acknowledgment"
	msgConcurrentChange = "The booking was changed by another request. Please try again."
)

type BookingService interface {
	Create(ctx context.Context, req *model.AcknowledgmentRequest, originIP string) (*model.Booking, error)
	Cancel(ctx context.Context, credential, id string) (*model.CancellationResult, error)
	CorrectGovtID(ctx context.Context, credential, id string, guestIndex *int, number string) (*model.CorrectionResult, error)
	CorrectDOB(ctx context.Context, credential, id string, guestIndex *int, dob string) (*model.CorrectionResult, error)
	BlockedDates(ctx context.Context) ([]model.DateRange, error)
	ListAll(ctx context.Context, credential string) ([]*model.Booking, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type Options struct {
	// CorrectionAttempts bounds the optimistic retry loop of cancel and
	// correction writes.
	CorrectionAttempts int
}

type bookingService struct {
	repo       repository.BookingRepository
	lockRepo   repository.UnitLockRepository
	validator  *validator.BookingValidator
	authorizer auth.OperatorAuthorizer
	publisher  events.Publisher
	clock      locale.Clock
	log        *logger.Logger
	attempts   int
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.UnitLockRepository,
	validator *validator.BookingValidator,
	authorizer auth.OperatorAuthorizer,
	publisher events.Publisher,
	clock locale.Clock,
	log *logger.Logger,
	opts Options,
) BookingService {
	if publisher == nil {
		publisher = events.Noop()
	}
	if authorizer == nil {
		authorizer = auth.DenyAll{}
	}
	attempts := opts.CorrectionAttempts
	if attempts < 1 {
		attempts = defaultCorrectionAttempts
	}
	return &bookingService{
		repo:       repo,
		lockRepo:   lockRepo,
		validator:  validator,
		authorizer: authorizer,
		publisher:  publisher,
		clock:      clock,
		log:        log,
		attempts:   attempts,
	}
}

// Create validates the submission and commits it inside a transaction that
// first takes the unit lock, then rescans for overlap, then inserts.
func (s *bookingService) Create(ctx context.Context, req *model.AcknowledgmentRequest, originIP string) (*model.Booking, error) {
	if req == nil {
		return nil, apperrors.InvalidRequest("Invalid request body")
	}

	booking, err := s.validator.Validate(sanitizer.SanitizeAcknowledgment(req))
	if err != nil {
		s.log.Warn("Booking validation failed",
			"code", apperrors.Kind(err),
			"error", err,
		)
		return nil, err
	}

	booking.SubmittedAt = s.clock.Now().UTC()
	booking.OriginIP = originIP
	stay := booking.Range()

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		booking.ID = ""

		if _, err := s.lockRepo.Acquire(txCtx); err != nil {
			return err
		}

		candidates, err := s.repo.FindOverlapping(txCtx, stay)
		if err != nil {
			return err
		}
		if conflict, found := model.FirstConflict(stay, activeRanges(candidates)); found {
			return dateConflict(stay, conflict)
		}

		return s.repo.Create(txCtx, booking)
	})
	if err != nil {
		return nil, s.mapCreateError(err, stay)
	}

	s.log.Info("Booking created successfully",
		"id", booking.ID,
		"check_in", booking.CheckInDate.String(),
		"check_out", booking.CheckOutDate.String(),
		"nights", stay.Nights(),
		"guest_count", booking.GuestCount,
		"child_count", booking.ChildCount,
	)
	s.publisher.Publish(ctx, events.Created(booking, booking.SubmittedAt))
	return booking, nil
}

// activeRanges narrows store candidates to the stays that still hold dates.
func activeRanges(bookings []*model.Booking) []model.DateRange {
	ranges := make([]model.DateRange, 0, len(bookings))
	for _, b := range bookings {
		if !b.Cancelled {
			ranges = append(ranges, b.Range())
		}
	}
	return ranges
}

func dateConflict(proposed, existing model.DateRange) *apperrors.AppError {
	return apperrors.DateConflict(msgDateConflict).WithDetails(map[string]any{
		"checkInDate":  proposed.CheckIn.String(),
		"checkOutDate": proposed.CheckOut.String(),
		"conflictWith": existing,
	})
}

// mapCreateError presents a store-level conflict exactly like one found by the
// overlap scan.
func (s *bookingService) mapCreateError(err error, stay model.DateRange) error {
	if appErr, ok := asAppError(err); ok {
		if appErr.Code == apperrors.CodeDateConflict {
			s.log.Warn("Booking rejected, dates overlap", "check_in", stay.CheckIn.String(), "check_out", stay.CheckOut.String())
		}
		return appErr
	}

	switch {
	case errors.Is(err, bookingserrors.ErrDateConflict):
		s.log.Warn("Booking rejected by store constraint", "check_in", stay.CheckIn.String(), "check_out", stay.CheckOut.String())
		return dateConflict(stay, stay)
	case errors.Is(err, mongotx.ErrRetriesExhausted):
		s.log.Warn("Booking rejected after lock contention", "check_in", stay.CheckIn.String(), "check_out", stay.CheckOut.String(), "error", err)
		return apperrors.DateConflict(msgDateConflict).WithDetails(map[string]any{
			"checkInDate":  stay.CheckIn.String(),
			"checkOutDate": stay.CheckOut.String(),
		})
	}

	s.log.Error("Failed to create booking", "error", err)
	return apperrors.StoreUnavailable(msgRecordFailed, err)
}

func asAppError(err error) (*apperrors.AppError, bool) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func (s *bookingService) authorize(credential, operation string) error {
	if !s.authorizer.Authorize(credential) {
		s.log.Warn("Operator credential rejected", "operation", operation)
		return apperrors.Unauthorized(msgUnauthorized)
	}
	return nil
}

// findBooking treats a malformed id like an unknown one since it cannot exist.
func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.log.Error("Failed to retrieve booking", "id", id, "error", err)
		return nil, apperrors.StoreUnavailable("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, credential, id string) (*model.CancellationResult, error) {
	if err := s.authorize(credential, "cancel"); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperrors.MissingField("Booking ID is required").WithDetails(map[string]any{"field": "bookingId"})
	}

	for attempt := 1; attempt <= s.attempts; attempt++ {
		booking, err := s.findBooking(ctx, id)
		if err != nil {
			return nil, err
		}

		if booking.Cancelled {
			s.log.Info("Booking already cancelled", "id", id)
			return &model.CancellationResult{ID: id, FreedRange: booking.Range(), AlreadyCancelled: true}, nil
		}

		now := s.clock.Now().UTC()
		err = s.repo.Cancel(ctx, id, booking.Version, now)
		if err == nil {
			booking.Cancelled = true
			booking.CancelledAt = &now
			s.log.Info("Booking cancelled successfully",
				"id", id,
				"check_in", booking.CheckInDate.String(),
				"check_out", booking.CheckOutDate.String(),
			)
			s.publisher.Publish(ctx, events.Cancelled(booking, now))
			return &model.CancellationResult{ID: id, FreedRange: booking.Range()}, nil
		}
		if !errors.Is(err, bookingserrors.ErrVersionConflict) {
			s.log.Error("Failed to cancel booking", "id", id, "error", err)
			return nil, apperrors.StoreUnavailable("Failed to cancel booking", err)
		}
		if err := waitRetry(ctx, attempt); err != nil {
			return nil, apperrors.StoreUnavailable("Failed to cancel booking", err)
		}
	}

	s.log.Warn("Cancel retry budget exhausted", "id", id, "attempts", s.attempts)
	return nil, apperrors.ConcurrentModification(msgConcurrentChange)
}

func (s *bookingService) CorrectGovtID(ctx context.Context, credential, id string, guestIndex *int, number string) (*model.CorrectionResult, error) {
	if err := s.authorize(credential, "correct_govt_id"); err != nil {
		return nil, err
	}
	number = sanitizer.NormalizeGovtIDNumber(number)
	if id == "" || number == "" {
		return nil, apperrors.MissingField("All fields are required")
	}

	return s.correctGuest(ctx, id, guestIndex, FieldGovtIDNumber, func(g model.Guest) (model.Guest, error) {
		_, checked, err := validator.ValidateGovtID(string(g.GovtIDType), number)
		if err != nil {
			return g, err
		}
		g.GovtIDNumber = checked
		return g, nil
	})
}

func (s *bookingService) CorrectDOB(ctx context.Context, credential, id string, guestIndex *int, dob string) (*model.CorrectionResult, error) {
	if err := s.authorize(credential, "correct_dob"); err != nil {
		return nil, err
	}
	dob = sanitizer.TrimAndNormalize(dob)
	if id == "" || dob == "" {
		return nil, apperrors.MissingField("All fields are required")
	}

	parsed, err := validator.ValidateDOB(dob, s.clock.Today())
	if err != nil {
		return nil, err
	}

	return s.correctGuest(ctx, id, guestIndex, FieldDOB, func(g model.Guest) (model.Guest, error) {
		g.DateOfBirth = parsed
		return g, nil
	})
}

// correctGuest reads the booking, replaces one guest on a copy and writes the
// whole guest list back guarded by the version read.
func (s *bookingService) correctGuest(
	ctx context.Context,
	id string,
	guestIndex *int,
	field string,
	apply func(model.Guest) (model.Guest, error),
) (*model.CorrectionResult, error) {
	for attempt := 1; attempt <= s.attempts; attempt++ {
		booking, err := s.findBooking(ctx, id)
		if err != nil {
			return nil, err
		}

		current, ok := booking.GuestAt(guestIndex)
		if !ok {
			return nil, apperrors.InvalidGuestIndex(
				fmt.Sprintf("Guest index %d is out of range; booking has %d additional guest(s)", *guestIndex, len(booking.AdditionalGuests)),
			).WithDetails(map[string]any{"field": "guestIndex"})
		}

		updated, err := apply(current)
		if err != nil {
			return nil, err
		}

		next := booking.WithGuest(guestIndex, updated)
		err = s.repo.ReplaceGuests(ctx, id, booking.Version, next.PrimaryGuest, next.AdditionalGuests)
		if err == nil {
			s.log.Info("Booking guest corrected",
				"id", id,
				"field", field,
				"guest", guestLabel(guestIndex),
			)
			s.publisher.Publish(ctx, events.Corrected(&next, field, guestIndex, s.clock.Now()))
			return &model.CorrectionResult{ID: id, GuestIndex: guestIndex, Field: field}, nil
		}
		if !errors.Is(err, bookingserrors.ErrVersionConflict) {
			s.log.Error("Failed to correct booking", "id", id, "field", field, "error", err)
			return nil, apperrors.StoreUnavailable("Failed to update booking", err)
		}
		if err := waitRetry(ctx, attempt); err != nil {
			return nil, apperrors.StoreUnavailable("Failed to update booking", err)
		}
	}

	s.log.Warn("Correction retry budget exhausted", "id", id, "field", field, "attempts", s.attempts)
	return nil, apperrors.ConcurrentModification(msgConcurrentChange)
}

func guestLabel(index *int) string {
	if index == nil {
		return "primary"
	}
	return fmt.Sprintf("additional[%d]", *index)
}

func waitRetry(ctx context.Context, attempt int) error {
	t := time.NewTimer(mongotx.Backoff(attempt + 1))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *bookingService) BlockedDates(ctx context.Context) ([]model.DateRange, error) {
	ranges, err := s.repo.FindActiveRanges(ctx)
	if err != nil {
		s.log.Error("Failed to fetch blocked dates", "error", err)
		return nil, apperrors.StoreUnavailable("Failed to fetch blocked dates", err)
	}
	return ranges, nil
}

func (s *bookingService) ListAll(ctx context.Context, credential string) ([]*model.Booking, error) {
	if err := s.authorize(credential, "list"); err != nil {
		return nil, err
	}

	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list bookings", "error", err)
		return nil, apperrors.StoreUnavailable("Failed to fetch acknowledgments", err)
	}

	s.log.Debug("Bookings listed", "count", len(bookings))
	return bookings, nil
}

// EmailExists backs the legacy one-booking-per-email check. Cancelled
// bookings count.
func (s *bookingService) EmailExists(ctx context.Context, email string) (bool, error) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return false, apperrors.MissingField("Email is required").WithDetails(map[string]any{"field": "email"})
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to check email", "error", err)
		return false, apperrors.StoreUnavailable("Failed to check email", err)
	}
	return exists, nil
}
