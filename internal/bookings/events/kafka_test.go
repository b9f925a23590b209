package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"guesthouse/pkg/kafka"
	"guesthouse/pkg/logger"
	"guesthouse/pkg/middleware"
	"guesthouse/pkg/model"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	mu       sync.Mutex
	messages []kafkago.Message
	err      error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func sampleBooking() *model.Booking {
	return &model.Booking{
		ID: "665f1c2e8b3c4a0012345678",
		PrimaryGuest: model.PrimaryGuest{
			Guest: model.Guest{
				Name:         "Asha Rao",
				DateOfBirth:  model.NewDate(1990, time.May, 1),
				GovtIDType:   model.GovtIDAadhar,
				GovtIDNumber: "123456789012",
			},
			Email: "asha@example.com",
		},
		GuestCount:   1,
		CheckInDate:  model.NewDate(2025, time.July, 1),
		CheckOutDate: model.NewDate(2025, time.July, 3),
	}
}

func TestKafkaPublisher_PublishesKeyedEventWithoutPII(t *testing.T) {
	w := &captureWriter{}
	p := NewKafkaPublisher(kafka.NewProducerWithWriter(w, "booking-events"), time.Second, logger.Discard())

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	p.Publish(ctx, Created(sampleBooking(), time.Now()))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "665f1c2e8b3c4a0012345678", string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, TypeBookingCreated, headers[kafka.HeaderEventType])
	assert.Equal(t, "req-42", headers[kafka.HeaderCorrelationID])
	assert.Equal(t, Source, headers[kafka.HeaderSource])

	body := string(msg.Value)
	assert.NotContains(t, body, "123456789012")
	assert.NotContains(t, body, "1990-05-01")
	assert.NotContains(t, body, "asha@example.com")

	var decoded BookingEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "2025-07-01", decoded.CheckInDate.String())
	assert.Equal(t, int64(1), p.Stats().Published)
}

func TestKafkaPublisher_FailureIsSwallowed(t *testing.T) {
	w := &captureWriter{err: errors.New("dial tcp: connection refused")}
	p := NewKafkaPublisher(kafka.NewProducerWithWriter(w, "booking-events"), time.Second, logger.Discard())

	assert.NotPanics(t, func() {
		p.Publish(context.Background(), Cancelled(sampleBooking(), time.Now()))
	})
	assert.Equal(t, int64(1), p.Stats().Failed)
	assert.Equal(t, int64(0), p.Stats().Published)
}

func TestCorrected_NamesFieldOnly(t *testing.T) {
	idx := 0
	e := Corrected(sampleBooking(), "govtIdNumber", &idx, time.Now())

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"field":"govtIdNumber"`))
	assert.True(t, strings.Contains(string(data), `"guestIndex":0`))
	assert.Equal(t, TypeBookingCorrected, e.Type)
}

func TestNew_DisabledWithoutBrokers(t *testing.T) {
	p, err := New(nil, logger.Discard())
	require.NoError(t, err)
	_, isKafka := p.(*KafkaPublisher)
	assert.False(t, isKafka)
	assert.NoError(t, p.Close())
}
