package kafka_config

import "time"

const (
	// Empty means publishing is disabled
	DefaultKafkaBrokers = ""

	DefaultBookingEventsTopic = "guesthouse.booking-events"

	// Producer defaults
	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // Require all replicas
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false
	DefaultProducerWriteTimeout = 5 * time.Second

	// Middleware defaults
	DefaultEnableMiddleware = true
)
