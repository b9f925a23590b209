package app

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"guesthouse/pkg/config"
	"guesthouse/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type routeHandler func(*httprouter.Router)

func (f routeHandler) RegisterRoutes(r *httprouter.Router) { f(r) }

func okRoute(path string, method string) routeHandler {
	return func(r *httprouter.Router) {
		r.Handle(method, path, func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			w.WriteHeader(http.StatusOK)
		})
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1024,
		ReadTimeout:       time.Second,
		WriteTimeout:      time.Second,
		IdleTimeout:       time.Second,
		ShutdownTimeout:   time.Second,
		Log:               logger.Discard(),
	}
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	a := NewApplication(testConfig())
	a.SetApp(okRoute("/api/acknowledge", http.MethodPost), routeHandler(func(r *httprouter.Router) {
		okRoute("/health", http.MethodGet)(r)
		okRoute("/ready", http.MethodGet)(r)
	}))
	t.Cleanup(a.Stop)
	return a
}

func TestApplication_RateLimitAppliesToAPIOnly(t *testing.T) {
	a := newTestApp(t)

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/acknowledge", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "192.0.2.10:5555"
		w := httptest.NewRecorder()
		a.Handler().ServeHTTP(w, req)
		return w.Code
	}

	if got := post(); got != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", got)
	}
	if got := post(); got != http.StatusOK {
		t.Fatalf("second request: expected 200, got %d", got)
	}
	if got := post(); got != http.StatusTooManyRequests {
		t.Fatalf("third request: expected 429, got %d", got)
	}

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "192.0.2.10:5555"
		w := httptest.NewRecorder()
		a.Handler().ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("health must not be rate limited, got %d", w.Code)
		}
	}
}

func TestApplication_TrustedProxyKeysOnForwardedFor(t *testing.T) {
	cfg := testConfig()
	cfg.TrustProxyHeaders = true
	a := NewApplication(cfg)
	a.SetApp(okRoute("/api/acknowledge", http.MethodPost), okRoute("/health", http.MethodGet))
	t.Cleanup(a.Stop)

	post := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/acknowledge", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwarded)
		req.RemoteAddr = "10.0.0.1:5555"
		w := httptest.NewRecorder()
		a.Handler().ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if got := post("203.0.113.1"); got != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, got)
		}
	}
	if got := post("203.0.113.1"); got != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for the same forwarded client, got %d", got)
	}
	if got := post("203.0.113.2"); got != http.StatusOK {
		t.Errorf("another client behind the proxy should pass, got %d", got)
	}
}

func TestApplication_RejectsNonJSONPost(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/acknowledge", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id on rejected requests")
	}
}

func TestApplication_StopRunsClosersInOrder(t *testing.T) {
	a := newTestApp(t)

	var order []string
	a.OnShutdown("events", func() error {
		order = append(order, "events")
		return errors.New("broker gone")
	})
	a.OnShutdown("mongo", func() error {
		order = append(order, "mongo")
		return nil
	})

	a.Stop()

	if strings.Join(order, ",") != "events,mongo" {
		t.Errorf("unexpected closer order %v", order)
	}
}
