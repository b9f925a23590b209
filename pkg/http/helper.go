package http

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	apperrors "guesthouse/pkg/errors"
)

const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderRealIP       = "X-Real-IP"
)

// DecodeJSON decodes the request body into dst. Any decoding failure,
// including an empty or oversized body, is an InvalidRequest error.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperrors.InvalidRequest("Invalid request body")
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.InvalidRequest("Request body too large")
		}
		return apperrors.InvalidRequest("Invalid request body")
	}
	if dec.More() {
		return apperrors.InvalidRequest("Invalid request body")
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.InvalidRequest("Invalid request body")
	}
	return nil
}

// ClientIP returns the first X-Forwarded-For entry, then X-Real-IP, then the
// host part of RemoteAddr. It is informational only and never trusted for auth.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get(HeaderForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get(HeaderRealIP)); ip != "" {
		return ip
	}
	return RemoteIP(r)
}

// RemoteIP is the host part of the connection's peer address. Unlike
// ClientIP it ignores headers the client can set.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
