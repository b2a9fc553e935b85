package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNoSession means the session store holds no token.
	ErrNoSession = errors.New("not logged in")
	// ErrSessionInvalid means the backend rejected the stored token. The
	// session has been cleared by the time a caller sees this error.
	ErrSessionInvalid = errors.New("session expired, please log in again")
	// ErrIdentityUnconfirmed means who-am-I failed right after a fresh login.
	ErrIdentityUnconfirmed = errors.New("could not confirm identity after login")
	// ErrTransport wraps failures where no HTTP response was received.
	ErrTransport = errors.New("request failed")
	// ErrForbidden is returned when the resolved role may not perform an action.
	ErrForbidden = errors.New("access forbidden")
)

// Problem is the decoded body of a backend error response. It is either a
// MessageProblem or a FieldProblem.
type Problem interface {
	problem()
	// Messages returns every message carried by the problem, in order.
	Messages() []string
}

// MessageProblem is a single human-readable message, either a bare JSON
// string or the "detail" member of an object.
type MessageProblem string

func (MessageProblem) problem() {}

func (m MessageProblem) Messages() []string { return []string{string(m)} }

// FieldError holds the messages reported for one request field.
type FieldError struct {
	Field    string
	Messages []string
}

// FieldProblem is a field-keyed validation response. Order follows the key
// order of the response body.
type FieldProblem []FieldError

func (FieldProblem) problem() {}

func (f FieldProblem) Messages() []string {
	var out []string
	for _, fe := range f {
		for _, m := range fe.Messages {
			out = append(out, fe.Field+": "+m)
		}
	}
	return out
}

// String joins every field message as "field: message".
func (f FieldProblem) String() string {
	return strings.Join(f.Messages(), ", ")
}

// HTTPError is returned by the API client for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Payload    []byte
	// Problem is nil when the payload matched no known error shape.
	Problem Problem
}

func (e *HTTPError) Error() string {
	if e.Problem != nil {
		if msgs := e.Problem.Messages(); len(msgs) > 0 {
			return fmt.Sprintf("http %d: %s", e.StatusCode, strings.Join(msgs, ", "))
		}
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsUnauthorized reports whether err is an HTTP 401 from the backend.
func IsUnauthorized(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.StatusCode == http.StatusUnauthorized
}

// Summary extracts a single user-facing message from err: the message of a
// MessageProblem, the first message of the first field of a FieldProblem,
// the text of a ValidationError, or fallback.
func Summary(err error, fallback string) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var he *HTTPError
	if !errors.As(err, &he) || he.Problem == nil {
		return fallback
	}
	switch p := he.Problem.(type) {
	case MessageProblem:
		if p != "" {
			return string(p)
		}
	case FieldProblem:
		if len(p) > 0 && len(p[0].Messages) > 0 {
			return p[0].Messages[0]
		}
	}
	return fallback
}

// FieldSummary joins all field messages of err when the backend answered
// with a field map, and otherwise behaves like Summary.
func FieldSummary(err error, fallback string) string {
	var he *HTTPError
	if errors.As(err, &he) {
		if fp, ok := he.Problem.(FieldProblem); ok && len(fp) > 0 {
			return fp.String()
		}
	}
	return Summary(err, fallback)
}

// ValidationError is a client-side pre-submission failure. No request has
// been sent when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
