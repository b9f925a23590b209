package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "guesthouse/internal/bookings/errors"
	"guesthouse/pkg/config"
	mongotx "guesthouse/pkg/db/mongo"
	"guesthouse/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

// TxFunc is the body of a store transaction. The context it receives must be
// passed to every repository call that should join the transaction.
type TxFunc func(ctx context.Context) error

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context) ([]*model.Booking, error)
	FindActiveRanges(ctx context.Context) ([]model.DateRange, error)
	FindOverlapping(ctx context.Context, stay model.DateRange) ([]*model.Booking, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Cancel(ctx context.Context, id string, version int64, at time.Time) error
	ReplaceGuests(ctx context.Context, id string, version int64, primary model.PrimaryGuest, additional []model.Guest) error

	ExecuteTransaction(ctx context.Context, fn TxFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client, cfg.StoreTxMaxAttempts),
	}
}

// withTimeout bounds a single store call. Inside a transaction the
// SessionContext is returned unchanged since wrapping it detaches the session.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func activeOverlapFilter(stay model.DateRange) bson.M {
	return bson.M{
		"cancelled":      false,
		"check_in_date":  bson.M{"$lt": stay.CheckOut},
		"check_out_date": bson.M{"$gt": stay.CheckIn},
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.SubmittedAt = booking.SubmittedAt.UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", bookingserrors.ErrDateConflict, booking.Range())
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// FindAll returns every booking, cancelled ones included, newest first.
func (r *mongoBookingRepository) FindAll(ctx context.Context) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) FindActiveRanges(ctx context.Context) ([]model.DateRange, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "check_in_date", Value: 1}}).
		SetProjection(bson.M{"_id": 0, "check_in_date": 1, "check_out_date": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"cancelled": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find active ranges: %w", err)
	}
	defer cursor.Close(ctx)

	ranges := []model.DateRange{}
	if err = cursor.All(ctx, &ranges); err != nil {
		return nil, fmt.Errorf("failed to decode active ranges: %w", err)
	}
	return ranges, nil
}

func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, stay model.DateRange) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "check_in_date", Value: 1}})

	cursor, err := r.collection.Find(ctx, activeOverlapFilter(stay), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"primary_guest.email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count bookings by email: %w", err)
	}
	return count > 0, nil
}

// Cancel flips an active booking to cancelled if it is still at version.
func (r *mongoBookingRepository) Cancel(ctx context.Context, id string, version int64, at time.Time) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid, "cancelled": false, "version": version}
	update := bson.M{
		"$set": bson.M{
			"cancelled":    true,
			"cancelled_at": at.UTC().Truncate(time.Millisecond),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", bookingserrors.ErrVersionConflict, id)
	}
	return nil
}

// ReplaceGuests writes the whole guest list back if the booking is still at version.
func (r *mongoBookingRepository) ReplaceGuests(ctx context.Context, id string, version int64, primary model.PrimaryGuest, additional []model.Guest) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	if additional == nil {
		additional = []model.Guest{}
	}

	filter := bson.M{"_id": oid, "version": version}
	update := bson.M{
		"$set": bson.M{
			"primary_guest":     primary,
			"additional_guests": additional,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update guests: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", bookingserrors.ErrVersionConflict, id)
	}
	return nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn TxFunc) error {
	return r.txManager.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		return fn(sc)
	})
}
