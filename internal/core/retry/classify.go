package retry

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Class determines how the retry loop handles an error.
type Class int

const (
	ClassTerminal Class = iota
	ClassRetryable
)

func (c Class) String() string {
	switch c {
	case ClassRetryable:
		return "retryable"
	default:
		return "terminal"
	}
}

// Classifier maps an error to a Class.
type Classifier func(err error) Class

// Coded is implemented by errors that carry a status code from the remote
// service. Structured codes take precedence over message markers.
type Coded interface {
	error
	StatusCode() int
}

// TransientMarkers are the lower-case substrings that mark a message as
// transient when no structured code is available.
var TransientMarkers = []string{
	"429",
	"quota",
	"limit",
	"503",
	"deadline",
}

var retryableCodes = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

type taggedError struct {
	err   error
	class Class
}

func (e *taggedError) Error() string { return e.err.Error() }

func (e *taggedError) Unwrap() error { return e.err }

// Retryable tags err as transient regardless of its message.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &taggedError{err: err, class: ClassRetryable}
}

// Terminal tags err as permanent regardless of its message.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &taggedError{err: err, class: ClassTerminal}
}

// ClassifyError is the default Classifier.
//
// Order: explicit tags, caller cancellation, structured status codes, then
// case-insensitive substring markers on the message.
func ClassifyError(err error) Class {
	if err == nil {
		return ClassTerminal
	}

	var tagged *taggedError
	if errors.As(err, &tagged) {
		return tagged.class
	}

	if errors.Is(err, context.Canceled) {
		return ClassTerminal
	}

	var coded Coded
	if errors.As(err, &coded) && coded.StatusCode() > 0 {
		if retryableCodes[coded.StatusCode()] {
			return ClassRetryable
		}
		return ClassTerminal
	}

	if HasTransientMarker(err.Error()) {
		return ClassRetryable
	}
	return ClassTerminal
}

// HasTransientMarker reports whether msg contains any TransientMarkers.
func HasTransientMarker(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range TransientMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// IsTransient reports whether err would be retried by the default classifier.
// Callers use it to tell "service busy" apart from hard failures.
func IsTransient(err error) bool {
	return ClassifyError(err) == ClassRetryable
}
