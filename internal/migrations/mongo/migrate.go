package mongo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"guesthouse/internal/bookings/repository"
	"guesthouse/internal/migrations/mongo/validators"
	"guesthouse/pkg/logger"
	"guesthouse/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	MigrationsCollection = "Schema_migrations"

	ActiveStayIndexName = "uniq_active_stay"
)

// Migration is applied at most once per database and recorded by Version.
type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, db *mongo.Database) error
}

type appliedMigration struct {
	Version     int       `bson:"_id"`
	Description string    `bson:"description"`
	AppliedAt   time.Time `bson:"applied_at"`
}

var (
	BookingsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "cancelled", Value: 1},
				{Key: "check_in_date", Value: 1},
				{Key: "check_out_date", Value: 1},
			},
			Options: options.Index().SetName("active_ranges"),
		},
		{
			Keys:    bson.D{{Key: "primary_guest.email", Value: 1}},
			Options: options.Index().SetName("primary_email"),
		},
		{
			Keys:    bson.D{{Key: "submitted_at", Value: -1}},
			Options: options.Index().SetName("submitted_desc"),
		},
	}

	// ActiveStayIndex only rejects identical stays; wider overlaps are
	// excluded by the unit lock taken in every create transaction.
	ActiveStayIndex = mongo.IndexModel{
		Keys: bson.D{
			{Key: "check_in_date", Value: 1},
			{Key: "check_out_date", Value: 1},
		},
		Options: options.Index().
			SetName(ActiveStayIndexName).
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"cancelled": false}),
	}
)

// Migrations returns the full ordered history.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "create collections with schema validators",
			Up: func(ctx context.Context, db *mongo.Database) error {
				if err := ensureCollection(ctx, db, repository.CollectionName, validators.BookingValidator); err != nil {
					return err
				}
				return ensureCollection(ctx, db, repository.UnitLockCollectionName, validators.UnitLockValidator)
			},
		},
		{
			Version:     2,
			Description: "booking query indexes",
			Up: func(ctx context.Context, db *mongo.Database) error {
				return ensureIndexes(ctx, db, repository.CollectionName, BookingsIndexes)
			},
		},
		{
			Version:     3,
			Description: "partial unique index on active stays",
			Up: func(ctx context.Context, db *mongo.Database) error {
				return ensureIndexes(ctx, db, repository.CollectionName, []mongo.IndexModel{ActiveStayIndex})
			},
		},
		{
			Version:     4,
			Description: "seed unit lock document",
			Up:          seedUnitLock,
		},
	}
}

// Pending returns the migrations not yet applied, in version order. It fails
// on duplicate or non-positive versions.
func Pending(all []Migration, applied map[int]bool) ([]Migration, error) {
	sorted := make([]Migration, len(all))
	copy(sorted, all)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	var pending []Migration
	seen := make(map[int]bool, len(sorted))
	for _, m := range sorted {
		if m.Version < 1 {
			return nil, fmt.Errorf("migration %q has invalid version %d", m.Description, m.Version)
		}
		if seen[m.Version] {
			return nil, fmt.Errorf("duplicate migration version %d", m.Version)
		}
		seen[m.Version] = true
		if !applied[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// Run applies every pending migration and returns how many ran.
func Run(ctx context.Context, db *mongo.Database, log *logger.Logger) (int, error) {
	log.Info("Running Mongo migrations", "database", db.Name())

	applied, err := loadApplied(ctx, db)
	if err != nil {
		return 0, err
	}

	pending, err := Pending(Migrations(), applied)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		log.Info("Schema is up to date", "applied", len(applied))
		return 0, nil
	}

	history := db.Collection(MigrationsCollection)
	for _, m := range pending {
		log.Info("Applying migration", "version", m.Version, "description", m.Description)
		if err := m.Up(ctx, db); err != nil {
			return 0, fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}
		record := appliedMigration{
			Version:     m.Version,
			Description: m.Description,
			AppliedAt:   time.Now().UTC(),
		}
		if _, err := history.InsertOne(ctx, record); err != nil {
			return 0, fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}

	log.Info("All migrations applied successfully", "count", len(pending))
	return len(pending), nil
}

func loadApplied(ctx context.Context, db *mongo.Database) (map[int]bool, error) {
	cursor, err := db.Collection(MigrationsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to read migration history: %w", err)
	}
	defer cursor.Close(ctx)

	var records []appliedMigration
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode migration history: %w", err)
	}

	applied := make(map[int]bool, len(records))
	for _, r := range records {
		applied[r.Version] = true
	}
	return applied, nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		return fmt.Errorf("failed updating validator for %s: %w", name, err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	_, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("failed creating indexes on %s: %w", name, err)
	}
	return nil
}

func seedUnitLock(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(repository.UnitLockCollectionName).UpdateOne(ctx,
		bson.M{"_id": model.UnitLockID},
		bson.M{"$setOnInsert": bson.M{
			"sequence":   int64(0),
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed seeding unit lock: %w", err)
	}
	return nil
}
