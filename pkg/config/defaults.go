package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "guesthouse"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoMaxPoolSize  = 50
	DefaultMongoMinPoolSize  = 0

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultPropertyTimezone = "Asia/Kolkata"

	DefaultStoreTxMaxAttempts = 3

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute
	DefaultTrustProxyHeaders = false

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 64 * 1024 // 64KB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
