package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Event is one normalized request of the trace.
type Event struct {
	// Timestamp is the request time in seconds. Events arrive in nondecreasing order.
	Timestamp int64
	// Size is the object size in bytes.
	Size uint64
	// BytesOut is the number of bytes sent to the client.
	BytesOut uint64
	// CacheKey identifies the object in every layer.
	CacheKey   string
	CustomerID string
	URL        string
	// Line is the raw access line, kept only by layers that store it.
	Line   string
	Status HTTPStatus
}

// Normalize substitutes BytesOut for a zero Size. The chain requires Size > 0.
func (e *Event) Normalize() {
	if e.Size == 0 {
		e.Size = e.BytesOut
	}
}

// HTTPStatus is the cache status of the access line, e.g. "TCP_MISS/200".
type HTTPStatus struct {
	Text string
	Code int
}

// ParseStatus splits "TEXT/CODE". A missing code yields 0.
func ParseStatus(s string) (HTTPStatus, error) {
	text, code, found := strings.Cut(s, "/")
	if !found || code == "" {
		return HTTPStatus{Text: text}, nil
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return HTTPStatus{}, fmt.Errorf("parse status code %q: %w", s, err)
	}
	return HTTPStatus{Text: text, Code: n}, nil
}

func (s HTTPStatus) String() string {
	if s.Code == 0 {
		return s.Text
	}
	return s.Text + "/" + strconv.Itoa(s.Code)
}
