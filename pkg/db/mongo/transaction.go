package mongo

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	apperrors "guesthouse/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	labelTransientTransaction = "TransientTransactionError"
	labelUnknownCommitResult  = "UnknownTransactionCommitResult"

	baseBackoff = 20 * time.Millisecond
)

// ErrRetriesExhausted is returned when every attempt hit a transient
// transaction error, typically a write conflict on a shared document.
var ErrRetriesExhausted = errors.New("transaction retry budget exhausted")

type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client      *mongo.Client
	maxAttempts int
}

func NewTransactionManager(client *mongo.Client, maxAttempts int) TransactionManager {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &mongoTransactionManager{
		client:      client,
		maxAttempts: maxAttempts,
	}
}

// ExecuteTransaction runs fn in a snapshot transaction, retrying the whole
// function on transient errors at most maxAttempts times. session.WithTransaction
// is not used because it retries for up to two minutes.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(context.WithoutCancel(ctx))

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	var lastErr error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, Backoff(attempt)); err != nil {
				return err
			}
		}

		err = mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
			if err := sc.StartTransaction(txnOpts); err != nil {
				return err
			}
			if err := fn(sc); err != nil {
				_ = sc.AbortTransaction(context.WithoutCancel(sc))
				return err
			}
			return m.commit(sc)
		})
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			if apperrors.IsAppError(err) {
				return err
			}
			return fmt.Errorf("transaction failed: %w", err)
		}
		lastErr = err
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, m.maxAttempts, lastErr)
}

func (m *mongoTransactionManager) commit(sc mongo.SessionContext) error {
	var err error
	for i := 0; i < m.maxAttempts; i++ {
		err = sc.CommitTransaction(sc)
		if err == nil || !HasLabel(err, labelUnknownCommitResult) {
			return err
		}
	}
	return err
}

// IsTransient reports whether err carries the TransientTransactionError label.
func IsTransient(err error) bool {
	return HasLabel(err, labelTransientTransaction)
}

func HasLabel(err error, label string) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorLabel(label)
	}
	return false
}

// Backoff grows exponentially with attempt and adds up to 50% jitter so that
// losers of the same conflict do not retry in lockstep.
func Backoff(attempt int) time.Duration {
	if attempt < 2 {
		return 0
	}
	d := baseBackoff << (attempt - 2)
	return d + time.Duration(rand.Int64N(int64(d)/2+1))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
