package repository

import (
	"context"
	"fmt"
	"time"

	"guesthouse/pkg/config"
	"guesthouse/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const UnitLockCollectionName = "Unit_locks"

// UnitLockRepository guards the single bookable unit.
type UnitLockRepository interface {
	// Acquire bumps the lock document and returns its new sequence. It only
	// serializes anything when ctx belongs to a transaction.
	Acquire(ctx context.Context) (int64, error)
}

type mongoUnitLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewUnitLockRepository(cfg *config.Config) UnitLockRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoUnitLockRepository{
		cfg:        cfg,
		collection: db.Collection(UnitLockCollectionName),
	}
}

func (r *mongoUnitLockRepository) Acquire(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"sequence": 1},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var lock model.UnitLock
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": model.UnitLockID}, update, opts).Decode(&lock)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire unit lock: %w", err)
	}
	return lock.Sequence, nil
}
