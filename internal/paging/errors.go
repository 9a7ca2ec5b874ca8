package paging

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/asteroid-belt/pantry/internal/spoonacular"
)

// Kind classifies a failed page load.
type Kind int

const (
	KindInvalidCredentials Kind = iota + 1
	KindQuotaExhausted
	KindRateLimited
	KindRemoteServer
	KindTransport
	KindFetch
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindQuotaExhausted:
		return "quota_exhausted"
	case KindRateLimited:
		return "rate_limited"
	case KindRemoteServer:
		return "remote_server"
	case KindTransport:
		return "transport"
	case KindFetch:
		return "fetch"
	default:
		return "unknown"
	}
}

// Error is a classified page load failure.
// StatusCode is set for KindRemoteServer and the other HTTP kinds.
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindInvalidCredentials:
		msg = "api key rejected"
	case KindQuotaExhausted:
		msg = "api quota exhausted"
	case KindRateLimited:
		msg = "rate limited by api"
	case KindRemoteServer:
		msg = fmt.Sprintf("remote server error (status %d)", e.StatusCode)
	case KindTransport:
		msg = "network request failed"
	case KindFetch:
		msg = "could not load recipes"
	default:
		msg = "page load failed"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrQuotaExhausted     = &Error{Kind: KindQuotaExhausted}
	ErrRateLimited        = &Error{Kind: KindRateLimited}
	ErrRemoteServer       = &Error{Kind: KindRemoteServer}
	ErrTransport          = &Error{Kind: KindTransport}
	ErrFetch              = &Error{Kind: KindFetch}
)

// KindOf returns the Kind of err, or 0 when err is not a classified error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// classifyRemote maps a remote client failure onto the taxonomy.
func classifyRemote(err error) *Error {
	if errors.Is(err, spoonacular.ErrMissingAPIKey) {
		return &Error{Kind: KindInvalidCredentials, Err: err}
	}

	var statusErr *spoonacular.StatusError
	if errors.As(err, &statusErr) {
		e := &Error{StatusCode: statusErr.StatusCode, Err: err}
		switch statusErr.StatusCode {
		case http.StatusUnauthorized:
			e.Kind = KindInvalidCredentials
		case http.StatusPaymentRequired:
			e.Kind = KindQuotaExhausted
		case http.StatusTooManyRequests:
			e.Kind = KindRateLimited
		default:
			e.Kind = KindRemoteServer
		}
		return e
	}

	return &Error{Kind: KindTransport, Err: err}
}

// fetchError wraps a local store failure.
func fetchError(err error) *Error {
	return &Error{Kind: KindFetch, Err: err}
}
