package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func mustBuild(t *testing.T, mb *MessageBuilder) Message {
	t.Helper()
	msg, err := mb.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return msg
}

func TestProducer_PublishWritesKeyValueAndHeaders(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "booking-events")

	msg := mustBuild(t, NewMessage().
		WithKey("65f0c0ffee").
		WithValue(map[string]string{"type": "booking.created"}).
		WithEventType("booking.created").
		WithCorrelationID("req-1"))

	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(w.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.messages))
	}
	got := w.messages[0]
	if string(got.Key) != "65f0c0ffee" {
		t.Errorf("key = %s", got.Key)
	}
	headers := map[string]string{}
	for _, h := range got.Headers {
		headers[h.Key] = string(h.Value)
	}
	if headers[HeaderEventType] != "booking.created" || headers[HeaderCorrelationID] != "req-1" || headers[HeaderEventID] == "" {
		t.Errorf("unexpected headers %v", headers)
	}
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{}, "t")

	if err := p.Publish(context.Background(), Message{Value: []byte("x")}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
	if err := p.Publish(context.Background(), Message{Key: "k"}); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("expected ErrEmptyValue, got %v", err)
	}
}

func TestProducer_MiddlewareOrderAndClose(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "t")

	var order []string
	for _, name := range []string{"outer", "inner"} {
		name := name
		p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	msg := mustBuild(t, NewMessage().WithKey("k").WithValue("v"))
	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("middleware order = %v", order)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("Close() error = %v, closed = %v", err, w.closed)
	}
	if err := p.Publish(context.Background(), msg); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("expected ErrProducerClosed after Close, got %v", err)
	}
}

func TestMessageBuilder_InvalidValue(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorType
	}{
		{nil, ErrorTypeUnknown},
		{errors.New("dial tcp: connection refused"), ErrorTypeTransient},
		{errors.New("context deadline exceeded"), ErrorTypeTransient},
		{ErrEmptyKey, ErrorTypePermanent},
		{errors.New("[3] Unknown Topic Or Partition"), ErrorTypePermanent},
	}
	for _, tt := range tests {
		if got := ClassifyError(tt.err); got != tt.want {
			t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
