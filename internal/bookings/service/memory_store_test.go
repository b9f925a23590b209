package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	bookingserrors "guesthouse/internal/bookings/errors"
	"guesthouse/internal/bookings/repository"
	"guesthouse/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryStore stands in for the Mongo repositories. Transactions run one at a
// time and roll back on error, which is what the unit lock buys in Mongo.
type memoryStore struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	bookings map[string]model.Booking
	sequence int64
	calls    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{bookings: map[string]model.Booking{}}
}

var (
	_ repository.BookingRepository  = (*memoryStore)(nil)
	_ repository.UnitLockRepository = (*memoryStore)(nil)
)

func (m *memoryStore) touch() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *memoryStore) storeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *memoryStore) ExecuteTransaction(ctx context.Context, fn repository.TxFunc) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := make(map[string]model.Booking, len(m.bookings))
	for k, v := range m.bookings {
		snapshot[k] = v
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.bookings = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memoryStore) Acquire(ctx context.Context) (int64, error) {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence++
	return m.sequence, nil
}

func (m *memoryStore) Create(ctx context.Context, booking *model.Booking) error {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.bookings {
		if !b.Cancelled && b.CheckInDate.Equal(booking.CheckInDate) && b.CheckOutDate.Equal(booking.CheckOutDate) {
			return fmt.Errorf("%w: %s", bookingserrors.ErrDateConflict, booking.Range())
		}
	}

	booking.ID = primitive.NewObjectID().Hex()
	m.bookings[booking.ID] = *booking
	return nil
}

func (m *memoryStore) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.touch()
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	return &b, nil
}

func (m *memoryStore) FindAll(ctx context.Context) ([]*model.Booking, error) {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (m *memoryStore) FindActiveRanges(ctx context.Context) ([]model.DateRange, error) {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.DateRange{}
	for _, b := range m.bookings {
		if !b.Cancelled {
			out = append(out, b.Range())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return out, nil
}

func (m *memoryStore) FindOverlapping(ctx context.Context, stay model.DateRange) ([]*model.Booking, error) {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if !b.Cancelled && b.Range().Overlaps(stay) {
			b := b
			out = append(out, &b)
		}
	}
	return out, nil
}

func (m *memoryStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.PrimaryGuest.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) Cancel(ctx context.Context, id string, version int64, at time.Time) error {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Cancelled || b.Version != version {
		return fmt.Errorf("%w: %s", bookingserrors.ErrVersionConflict, id)
	}
	b.Cancelled = true
	b.CancelledAt = &at
	b.Version++
	m.bookings[id] = b
	return nil
}

func (m *memoryStore) ReplaceGuests(ctx context.Context, id string, version int64, primary model.PrimaryGuest, additional []model.Guest) error {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Version != version {
		return fmt.Errorf("%w: %s", bookingserrors.ErrVersionConflict, id)
	}
	b.PrimaryGuest = primary
	b.AdditionalGuests = additional
	b.Version++
	m.bookings[id] = b
	return nil
}

func (m *memoryStore) get(id string) model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookings[id]
}
