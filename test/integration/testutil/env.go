//go:build integration

package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"guesthouse/pkg/client"
)

const (
	DefaultHealthCheckTimeout = 3 * ConnectionTimeout
	DefaultAdminSecret        = "integration-secret"
)

type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
	ServerPort   string
	AdminSecret  string
}

func NewTestEnv() *TestEnv {
	mongoURI := getEnv("TEST_MONGO_URI", DefaultMongoURI)
	dbName := getEnv("TEST_DB_NAME", DefaultDatabaseName)
	serverPort := getEnv("TEST_SERVER_PORT", "8080")
	serverURL := getEnv("TEST_SERVER_URL", fmt.Sprintf("http://localhost:%s", serverPort))

	return &TestEnv{
		MongoURI:     mongoURI,
		DatabaseName: dbName,
		ServerURL:    serverURL,
		ServerPort:   serverPort,
		AdminSecret:  getEnv("TEST_ADMIN_SECRET", DefaultAdminSecret),
	}
}

// Setup empties the bookings collection and waits for the service. The
// collection itself is kept so its validator and indexes survive.
func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *client.AcknowledgmentClient) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanCollection(t, BookingsCollection)

	c := client.NewAcknowledgmentClient(e.ServerURL)
	ctx, cancel := context.WithTimeout(context.Background(), DefaultHealthCheckTimeout+time.Second)
	defer cancel()
	if err := c.WaitForHealthy(ctx, DefaultHealthCheckTimeout); err != nil {
		t.Fatalf("service not ready: %v", err)
	}

	return mongo, c
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanCollection(t, BookingsCollection)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
