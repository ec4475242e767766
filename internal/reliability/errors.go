package reliability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Kind classifies failures so callers can decide between fallback, retry and surfacing.
type Kind int

const (
	KindOther Kind = iota
	KindValidation
	KindRateLimited
	KindInvalidCredential
	KindTransient
	KindGeneration
	KindAudioDevice
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRateLimited:
		return "rate_limited"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindTransient:
		return "transient"
	case KindGeneration:
		return "generation"
	case KindAudioDevice:
		return "audio_device"
	case KindStorage:
		return "storage"
	default:
		return "other"
	}
}

// Error is a classified failure. RetryAfter is only meaningful for KindRateLimited.
type Error struct {
	Kind       Kind
	Op         string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Kind == KindRateLimited && e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter.Round(time.Millisecond))
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with a kind and operation name.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validation reports a caller input problem.
func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

// RateLimited reports a rejected admission with a concrete wait.
func RateLimited(op string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, Op: op, RetryAfter: retryAfter, Err: errors.New("rate limit exceeded")}
}

// KindOf returns the kind of the first *Error in err's chain.
// Unclassified network timeouts count as transient.
func KindOf(err error) Kind {
	if err == nil {
		return KindOther
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTransient
	}
	return KindOther
}

// RetryAfterOf returns the retry hint carried by a rate-limit error, or zero.
func RetryAfterOf(err error) time.Duration {
	var re *Error
	if errors.As(err, &re) && re.Kind == KindRateLimited {
		return re.RetryAfter
	}
	return 0
}

// IsRetryable reports whether another attempt may succeed.
// Credential, validation and rate-limit failures are never retried.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return KindOf(err) == KindTransient
}

// FromHTTPStatus classifies an unsuccessful upstream HTTP response.
func FromHTTPStatus(op string, status int, body string) *Error {
	err := fmt.Errorf("status %d, body: %s", status, body)
	switch {
	case status == 401 || status == 403:
		return New(KindInvalidCredential, op, err)
	case status == 429:
		return &Error{Kind: KindRateLimited, Op: op, Err: err}
	case IsRetryableHTTPStatus(status):
		return New(KindTransient, op, err)
	default:
		return New(KindOther, op, err)
	}
}

// FromTransport classifies an error returned by an HTTP client before any response arrived.
func FromTransport(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return New(KindTransient, op, err)
}
