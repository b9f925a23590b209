package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "guesthouse/pkg/errors"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"

	maxSweepInterval = time.Hour
)

var (
	// ErrKeyReused means the key was first seen with a different request body.
	ErrKeyReused = errors.New("idempotency key reused with a different request")
	// ErrKeyInFlight means the first request under the key has not finished.
	ErrKeyInFlight = errors.New("idempotency key already in progress")
)

// IdempotencyStore keeps successful responses to POST requests so a retried
// submission replays the first answer instead of reaching the service again.
//
// Begin reserves key for a request body fingerprint. It returns the stored
// response when the same request already completed, ErrKeyReused when the
// fingerprint differs and ErrKeyInFlight while the reservation is pending.
// Every successful Begin must be followed by Complete or Abandon.
type IdempotencyStore interface {
	Begin(key, fingerprint string) (*CachedResponse, error)
	Complete(key string, response *CachedResponse)
	Abandon(key string)
	Stop()
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

type idempotencyEntry struct {
	fingerprint string
	response    *CachedResponse // nil while pending
	storedAt    time.Time
}

type InMemoryIdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		entries: make(map[string]*idempotencyEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	interval := ttl
	if interval <= 0 || interval > maxSweepInterval {
		interval = maxSweepInterval
	}
	go s.sweep(interval)

	return s
}

func (s *InMemoryIdempotencyStore) Begin(key, fingerprint string) (*CachedResponse, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && now.Sub(e.storedAt) <= s.ttl {
		switch {
		case e.fingerprint != fingerprint:
			return nil, ErrKeyReused
		case e.response == nil:
			return nil, ErrKeyInFlight
		default:
			return e.response, nil
		}
	}

	s.entries[key] = &idempotencyEntry{fingerprint: fingerprint, storedAt: now}
	return nil, nil
}

func (s *InMemoryIdempotencyStore) Complete(key string, response *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.response = response
		e.storedAt = time.Now()
	}
}

func (s *InMemoryIdempotencyStore) Abandon(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && e.response == nil {
		delete(s.entries, key)
	}
}

func (s *InMemoryIdempotencyStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.mu.Lock()
			for key, e := range s.entries {
				if now.Sub(e.storedAt) > s.ttl {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

type recordingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

// Idempotency replays 2xx responses for POST requests that repeat a key with
// the same body on the same route. The body includes any operator secret, so a
// replay never answers a request that did not carry the original credential.
// Failed attempts release the key and may be retried.
func Idempotency(store IdempotencyStore, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = IdempotencyKeyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := idempotencyKey(r, headerName)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			fingerprint, err := fingerprintBody(r)
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					writeError(w, http.StatusRequestEntityTooLarge, apperrors.CodeInvalidRequest, "Request body too large")
					return
				}
				writeError(w, http.StatusBadRequest, apperrors.CodeInvalidRequest, "Invalid request body")
				return
			}

			cached, err := store.Begin(key, fingerprint)
			switch {
			case errors.Is(err, ErrKeyReused):
				writeError(w, http.StatusUnprocessableEntity, apperrors.CodeInvalidRequest,
					"Idempotency-Key was already used for a different request")
				return
			case errors.Is(err, ErrKeyInFlight):
				writeError(w, http.StatusConflict, apperrors.CodeConcurrentModification,
					"A request with this Idempotency-Key is still being processed")
				return
			case cached != nil:
				replay(w, cached)
				return
			}

			completed := false
			defer func() {
				if !completed {
					store.Abandon(key)
				}
			}()

			rw := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			if rw.status >= 200 && rw.status < 300 {
				store.Complete(key, &CachedResponse{
					StatusCode: rw.status,
					Headers:    w.Header().Clone(),
					Body:       bytes.Clone(rw.body.Bytes()),
				})
				completed = true
			}
		})
	}
}

// idempotencyKey scopes the client key to method and path; one key reused on
// two endpoints never replays the wrong response.
func idempotencyKey(r *http.Request, headerName string) string {
	if r.Method != http.MethodPost {
		return ""
	}
	key := strings.TrimSpace(r.Header.Get(headerName))
	if key == "" {
		return ""
	}
	return r.Method + " " + r.URL.Path + " " + key
}

// fingerprintBody hashes the body and leaves an identical copy on r.
func fingerprintBody(r *http.Request) (string, error) {
	var body []byte
	if r.Body != nil {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return "", err
		}
		_ = r.Body.Close()
		body = b
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

func replay(w http.ResponseWriter, cached *CachedResponse) {
	h := w.Header()
	for name, values := range cached.Headers {
		for _, v := range values {
			h.Add(name, v)
		}
	}
	h.Set(ReplayedHeader, "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}
