// Package apperror is the error taxonomy shared by handlers. Every error that
// reaches a client is rendered as {"error": message} with a stable status
// code; the wrapped cause is for logs only.
package apperror

import (
	"encoding/json"
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindConflict
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Public messages. Keep them generic: they must not reveal whether an
// account exists or why a token was rejected.
const (
	MsgInvalidInput          = "Invalid input"
	MsgInvalidCredentials    = "Invalid credentials"
	MsgAuthorizationRequired = "Authorization required"
	MsgUnauthorized          = "Unauthorized"
	MsgForbidden             = "Forbidden"
	MsgEmailInUse            = "Email in use"
	MsgServerError           = "Server error"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + ": " + e.Message
	}
	return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func Validation(cause error) *Error { return New(KindValidation, MsgInvalidInput, cause) }

func Conflict(msg string, cause error) *Error { return New(KindConflict, msg, cause) }

func Storage(cause error) *Error { return New(KindStorage, MsgServerError, cause) }

func Internal(cause error) *Error { return New(KindInternal, MsgServerError, cause) }

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Write renders err as {"error": message}. Errors outside the taxonomy are
// reported as a 500 with the generic message.
func Write(w http.ResponseWriter, err error) {
	var e *Error
	if !errors.As(err, &e) {
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": MsgServerError})
		return
	}
	WriteJSON(w, e.Kind.Status(), map[string]string{"error": e.Message})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
