package client

import (
	"context"
	"time"

	"guesthouse/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoOptions struct {
	URI         string
	ConnTimeout time.Duration
	MaxPoolSize uint64
	MinPoolSize uint64
}

type MongoClient struct {
	Client *mongo.Client
}

// NewMongoClient connects and pings the primary. Transactions need a
// replica set, so a standalone server fails later on the first booking.
func NewMongoClient(log *logger.Logger, opts MongoOptions) *MongoClient {
	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(opts.ConnTimeout).
		SetServerSelectionTimeout(opts.ConnTimeout)
	if opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(opts.MaxPoolSize)
	}
	if opts.MinPoolSize > 0 {
		clientOpts.SetMinPoolSize(opts.MinPoolSize)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB",
		"max_pool_size", opts.MaxPoolSize,
		"min_pool_size", opts.MinPoolSize,
	)
	return &MongoClient{Client: client}
}

func (m *MongoClient) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

func (m *MongoClient) Disconnect(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
